package service

import (
	"strings"

	"github.com/prepdash/backend/internal/models"
)

type FilterState struct {
	SelectedStates       []string             `json:"selectedStates"`
	SelectedRegion       string               `json:"selectedRegion"`
	ReadinessRange       [2]int               `json:"readinessRange"`
	SelectedHazardLevels []models.HazardLevel `json:"selectedHazardLevels"`
}

// DefaultFilterState selects everything: all regions, the full readiness
// band and every hazard level.
func DefaultFilterState() FilterState {
	return FilterState{
		SelectedRegion:       RegionAll,
		ReadinessRange:       [2]int{MinReadiness, MaxReadiness},
		SelectedHazardLevels: append([]models.HazardLevel(nil), models.HazardLevels...),
	}
}

// SelectRegion expands region into its member states. RegionAll clears the
// state selection.
func (s *FilterState) SelectRegion(region string) {
	s.SelectedRegion = region
	if region == RegionAll || region == "" {
		s.SelectedRegion = RegionAll
		s.SelectedStates = nil
		return
	}
	s.SelectedStates = RegionStates(region)
}

// SelectState narrows the selection to one state and moves the region to
// the one containing it. An empty code clears the selection.
func (s *FilterState) SelectState(code string) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		s.SelectedStates = nil
	} else {
		s.SelectedStates = []string{code}
	}
	s.SelectedRegion = RegionForState(code)
}

// SetReadinessMin applies the form guard 0 <= min <= max. It reports
// whether the value was accepted.
func (s *FilterState) SetReadinessMin(v int) bool {
	if v < 0 || v > s.ReadinessRange[1] {
		return false
	}
	s.ReadinessRange[0] = v
	return true
}

// SetReadinessMax applies the form guard min <= max <= 100.
func (s *FilterState) SetReadinessMax(v int) bool {
	if v > 100 || v < s.ReadinessRange[0] {
		return false
	}
	s.ReadinessRange[1] = v
	return true
}

type FilterStage struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type FilterResult struct {
	Facilities []models.Facility `json:"facilities"`
	Stages     []FilterStage     `json:"stages"`
}

// Filter runs the state, readiness and hazard stages over the full list and
// deduplicates by composite key, last write wins.
func Filter(facilities []models.Facility, state FilterState) FilterResult {
	result := FilterResult{}
	result.Stages = append(result.Stages, FilterStage{Name: "all", Count: len(facilities)})

	afterState := facilities
	if len(state.SelectedStates) > 0 {
		selected := toSet(state.SelectedStates)
		afterState = filterFacilities(afterState, func(f models.Facility) bool {
			_, ok := selected[f.State]
			return ok
		})
	}
	result.Stages = append(result.Stages, FilterStage{Name: "state_rule", Count: len(afterState)})

	lo, hi := state.ReadinessRange[0], state.ReadinessRange[1]
	afterReadiness := filterFacilities(afterState, func(f models.Facility) bool {
		return f.ReadinessScore >= lo && f.ReadinessScore <= hi
	})
	result.Stages = append(result.Stages, FilterStage{Name: "readiness_rule", Count: len(afterReadiness)})

	afterHazard := afterReadiness
	if n := len(state.SelectedHazardLevels); n > 0 && n < len(models.HazardLevels) {
		levels := map[models.HazardLevel]struct{}{}
		for _, h := range state.SelectedHazardLevels {
			levels[h] = struct{}{}
		}
		afterHazard = filterFacilities(afterHazard, func(f models.Facility) bool {
			_, ok := levels[f.HazardLevel]
			return ok
		})
	}
	result.Stages = append(result.Stages, FilterStage{Name: "hazard_rule", Count: len(afterHazard)})

	result.Facilities = Dedupe(afterHazard)
	result.Stages = append(result.Stages, FilterStage{Name: "dedupe", Count: len(result.Facilities)})
	return result
}

// Dedupe keeps one facility per composite key. Later entries replace
// earlier ones; the position of a key's first occurrence is kept.
func Dedupe(facilities []models.Facility) []models.Facility {
	index := map[string]int{}
	out := make([]models.Facility, 0, len(facilities))
	for _, f := range facilities {
		key := f.Key()
		if i, ok := index[key]; ok {
			out[i] = f
			continue
		}
		index[key] = len(out)
		out = append(out, f)
	}
	return out
}

func filterFacilities(facilities []models.Facility, keep func(models.Facility) bool) []models.Facility {
	out := make([]models.Facility, 0, len(facilities))
	for _, f := range facilities {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out
}

func toSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[v] = struct{}{}
	}
	return out
}
