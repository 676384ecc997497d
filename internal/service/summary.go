package service

import (
	"sort"

	"github.com/prepdash/backend/internal/models"
)

const (
	OtherStatesBucket   = "Other States"
	BedsAvailableBucket = "Beds Available"
	BedsOccupiedBucket  = "Beds Occupied"

	// stateFoldShare is the share of facilities below which a state is
	// folded into OtherStatesBucket.
	stateFoldShare = 0.05
	availableShare = 0.74
	occupiedShare  = 0.26
	minTotalStaff  = 300

	DefaultTotalBeds  = 5861
	DefaultTotalStaff = 1250
)

// FloorPolicy is the minimum bed total reported for a view. The nationwide
// and filtered views use different floors; keep them separate.
type FloorPolicy struct {
	Name    string
	MinBeds int
}

var (
	NationwideFloor = FloorPolicy{Name: "nationwide", MinBeds: 1000}
	FilteredFloor   = FloorPolicy{Name: "filtered", MinBeds: 100}
)

func DefaultStateDistribution() []models.DistributionBucket {
	return []models.DistributionBucket{
		{Name: "Florida", Value: 35},
		{Name: "Texas", Value: 28},
		{Name: "California", Value: 22},
		{Name: "Georgia", Value: 14},
		{Name: "Tennessee", Value: 11},
		{Name: OtherStatesBucket, Value: 20},
	}
}

func DefaultHazardDistribution() []models.DistributionBucket {
	return []models.DistributionBucket{
		{Name: string(models.HazardExtreme), Value: 15},
		{Name: string(models.HazardVeryHigh), Value: 32},
		{Name: string(models.HazardHigh), Value: 48},
		{Name: string(models.HazardModerate), Value: 25},
		{Name: string(models.HazardLow), Value: 10},
	}
}

func DefaultResourceDistribution() []models.DistributionBucket {
	return []models.DistributionBucket{
		{Name: BedsAvailableBucket, Value: 4361},
		{Name: BedsOccupiedBucket, Value: 1500},
	}
}

// DefaultSummary is what the dashboard shows when it has no data.
func DefaultSummary() models.Summary {
	return models.Summary{
		TotalBeds:            DefaultTotalBeds,
		TotalStaff:           DefaultTotalStaff,
		StateDistribution:    DefaultStateDistribution(),
		HazardDistribution:   DefaultHazardDistribution(),
		ResourceDistribution: DefaultResourceDistribution(),
	}
}

// Summarize computes chart figures for facilities under the given floor.
// Distributions that come out empty fall back to their defaults.
func Summarize(facilities []models.Facility, floor FloorPolicy) models.Summary {
	beds := TotalBeds(facilities, floor)
	states := StateDistribution(facilities)
	if len(states) == 0 {
		states = DefaultStateDistribution()
	}
	return models.Summary{
		TotalBeds:            beds,
		TotalStaff:           TotalStaff(facilities),
		StateDistribution:    states,
		HazardDistribution:   HazardDistribution(facilities, DefaultHazardDistribution()),
		ResourceDistribution: ResourceDistribution(beds),
	}
}

func TotalBeds(facilities []models.Facility, floor FloorPolicy) int {
	sum := 0
	for _, f := range facilities {
		sum += f.BedCapacity
	}
	if sum < floor.MinBeds {
		return floor.MinBeds
	}
	return sum
}

func TotalStaff(facilities []models.Facility) int {
	sum := 0
	for _, f := range facilities {
		sum += f.EmergencyStaff
	}
	if sum < minTotalStaff {
		return minTotalStaff
	}
	return sum
}

// StateDistribution counts facilities per state by full name. States under
// five percent of the total are folded into a trailing "Other States" bucket.
func StateDistribution(facilities []models.Facility) []models.DistributionBucket {
	counts := map[string]int{}
	var order []string
	for _, f := range facilities {
		if _, ok := counts[f.State]; !ok {
			order = append(order, f.State)
		}
		counts[f.State]++
	}

	threshold := float64(len(facilities)) * stateFoldShare
	var main []models.DistributionBucket
	other := 0
	for _, state := range order {
		count := counts[state]
		if float64(count) >= threshold {
			main = append(main, models.DistributionBucket{Name: StateName(state), Value: count})
		} else {
			other += count
		}
	}
	sort.SliceStable(main, func(i, j int) bool {
		return main[i].Value > main[j].Value
	})
	if other > 0 {
		main = append(main, models.DistributionBucket{Name: OtherStatesBucket, Value: other})
	}
	return main
}

// HazardDistribution counts facilities per hazard level in fixed order. If
// every count is zero, previous is returned unchanged.
func HazardDistribution(facilities []models.Facility, previous []models.DistributionBucket) []models.DistributionBucket {
	counts := map[models.HazardLevel]int{}
	for _, f := range facilities {
		if f.HazardLevel != "" {
			counts[f.HazardLevel]++
		}
	}
	out := make([]models.DistributionBucket, 0, len(models.HazardLevels))
	nonzero := false
	for _, level := range models.HazardLevels {
		v := counts[level]
		if v > 0 {
			nonzero = true
		}
		out = append(out, models.DistributionBucket{Name: string(level), Value: v})
	}
	if !nonzero {
		return previous
	}
	return out
}

// ResourceDistribution splits beds with the assumed 74/26 occupancy.
func ResourceDistribution(totalBeds int) []models.DistributionBucket {
	return []models.DistributionBucket{
		{Name: BedsAvailableBucket, Value: roundHalfUp(float64(totalBeds) * availableShare)},
		{Name: BedsOccupiedBucket, Value: roundHalfUp(float64(totalBeds) * occupiedShare)},
	}
}

type ProcessResult struct {
	Facilities []models.Facility `json:"facilities"`
	Summary    models.Summary    `json:"summary"`
}

// ProcessData aggregates raw records and summarizes them for the unfiltered
// view. No records at all yields the canned default summary.
func ProcessData(records []models.PersonRecord, rng RandomSource) ProcessResult {
	if len(records) == 0 {
		return ProcessResult{Facilities: []models.Facility{}, Summary: DefaultSummary()}
	}
	facilities := Aggregate(records, rng)
	return ProcessResult{
		Facilities: facilities,
		Summary:    Summarize(facilities, NationwideFloor),
	}
}
