package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/prepdash/backend/internal/kv"
	"github.com/prepdash/backend/internal/metrics"
	"github.com/prepdash/backend/internal/models"
	"github.com/prepdash/backend/internal/service"
)

const (
	SnapshotKey = "dashboardData"
	LayoutsKey  = "dashboardLayouts"

	RefreshInterval = 30 * time.Minute

	offlineMessage = "Using cached data. Some features may be limited."
)

// ErrStale is returned by Refresh when a newer refresh was applied while
// this one was in flight. Its result is discarded.
var ErrStale = errors.New("dashboard: stale refresh discarded")

// State is a copy of what the dashboard currently shows.
type State struct {
	Facilities  []models.Facility     `json:"facilities"`
	Filtered    []models.Facility     `json:"filtered"`
	Stages      []service.FilterStage `json:"stages"`
	Summary     models.Summary        `json:"summary"`
	Filters     service.FilterState   `json:"filters"`
	Local       int                   `json:"local"`
	Nearby      int                   `json:"nearby"`
	Offline     bool                  `json:"offline"`
	Message     string                `json:"message,omitempty"`
	LastUpdated time.Time             `json:"lastUpdated"`
}

type View struct {
	Fetcher Fetcher
	Cache   kv.Store
	Logger  zerolog.Logger
	// Seed fixes the synthetic metrics; zero draws fresh values each refresh.
	Seed int64
	Now  func() time.Time

	mu      sync.Mutex
	issued  uint64
	applied uint64
	state   State
}

func NewView(fetcher Fetcher, cache kv.Store, logger zerolog.Logger) *View {
	v := &View{Fetcher: fetcher, Cache: cache, Logger: logger}
	v.state.Filters = service.DefaultFilterState()
	v.state.Summary = service.DefaultSummary()
	return v
}

func (v *View) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now()
}

// State returns a snapshot safe to read without holding the view lock.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := v.state
	s.Facilities = append([]models.Facility(nil), s.Facilities...)
	s.Filtered = append([]models.Facility(nil), s.Filtered...)
	s.Stages = append([]service.FilterStage(nil), s.Stages...)
	s.Filters.SelectedStates = append([]string(nil), s.Filters.SelectedStates...)
	s.Filters.SelectedHazardLevels = append([]models.HazardLevel(nil), s.Filters.SelectedHazardLevels...)
	return s
}

// Refresh fetches the selected states and reprocesses everything. When the
// fetch fails the last cached snapshot is used and the view is marked
// offline; with no snapshot either, already loaded facilities are kept.
// Each call takes a sequence number; results older than the last applied
// one are dropped with ErrStale.
func (v *View) Refresh(ctx context.Context) error {
	v.mu.Lock()
	v.issued++
	seq := v.issued
	states := append([]string(nil), v.state.Filters.SelectedStates...)
	v.mu.Unlock()

	data, fetchErr := v.Fetcher.Fetch(ctx, states)
	offline := fetchErr != nil
	cached := false
	updated := v.now()
	if offline {
		v.Logger.Warn().Err(fetchErr).Uint64("seq", seq).Msg("dashboard fetch failed, using cache")
		snap, ok := v.loadSnapshot(ctx)
		data = models.DataResponse{Local: snap.Local, Nearby: snap.Nearby}
		if ok {
			updated = snap.Timestamp
			cached = true
		}
	}

	records := data.All()
	result := service.ProcessData(records, service.NewRandomSource(v.Seed))

	v.mu.Lock()
	defer v.mu.Unlock()
	if seq <= v.applied {
		metrics.DashboardRefreshTotal.WithLabelValues("stale").Inc()
		v.Logger.Debug().Uint64("seq", seq).Uint64("applied", v.applied).Msg("stale refresh discarded")
		return ErrStale
	}
	v.applied = seq

	if !offline {
		v.saveSnapshot(ctx, models.Snapshot{Local: data.Local, Nearby: data.Nearby, Timestamp: updated})
		metrics.DashboardRefreshTotal.WithLabelValues("online").Inc()
	} else {
		metrics.DashboardRefreshTotal.WithLabelValues("offline").Inc()
	}

	if offline && !cached && len(v.state.Facilities) > 0 {
		v.state.Offline = true
		v.state.Message = offlineMessage
		return nil
	}

	if len(records) > 0 {
		result.Summary.HazardDistribution = service.HazardDistribution(result.Facilities, v.state.Summary.HazardDistribution)
	}
	v.state.Facilities = result.Facilities
	v.state.Summary = result.Summary
	v.state.Local = len(data.Local)
	v.state.Nearby = len(data.Nearby)
	v.state.Offline = offline
	v.state.Message = ""
	if offline {
		v.state.Message = offlineMessage
	}
	v.state.LastUpdated = updated
	v.applyFiltersLocked()
	metrics.FacilitiesAggregated.Set(float64(len(result.Facilities)))
	return nil
}

func (v *View) loadSnapshot(ctx context.Context) (models.Snapshot, bool) {
	var snap models.Snapshot
	if v.Cache == nil {
		return snap, false
	}
	if err := kv.GetJSON(ctx, v.Cache, SnapshotKey, &snap); err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			v.Logger.Error().Err(err).Msg("failed to read cached snapshot")
		}
		return models.Snapshot{}, false
	}
	return snap, true
}

func (v *View) saveSnapshot(ctx context.Context, snap models.Snapshot) {
	if v.Cache == nil {
		return
	}
	if err := kv.SetJSON(ctx, v.Cache, SnapshotKey, snap); err != nil {
		v.Logger.Error().Err(err).Msg("failed to cache snapshot")
	}
}

// applyFiltersLocked re-runs the filter over the full list. Only the bed
// total follows the filter; the distributions keep describing everything.
// With no facilities the totals from processing are left alone.
func (v *View) applyFiltersLocked() {
	if len(v.state.Facilities) == 0 {
		v.state.Filtered = []models.Facility{}
		v.state.Stages = nil
		return
	}
	res := service.Filter(v.state.Facilities, v.state.Filters)
	v.state.Filtered = res.Facilities
	v.state.Stages = res.Stages
	v.state.Summary.TotalBeds = service.TotalBeds(res.Facilities, service.FilteredFloor)
}

// SetFilters replaces the whole filter state without refetching.
func (v *View) SetFilters(fs service.FilterState) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Filters = fs
	v.applyFiltersLocked()
}

// SetRegion selects a region and refetches, since the server query depends
// on the selected states.
func (v *View) SetRegion(ctx context.Context, region string) error {
	v.mu.Lock()
	v.state.Filters.SelectRegion(region)
	v.applyFiltersLocked()
	v.mu.Unlock()
	return v.Refresh(ctx)
}

// SetState selects a single state (empty clears) and refetches.
func (v *View) SetState(ctx context.Context, code string) error {
	v.mu.Lock()
	v.state.Filters.SelectState(code)
	v.applyFiltersLocked()
	v.mu.Unlock()
	return v.Refresh(ctx)
}

// SetReadinessRange applies both bounds if 0 <= min <= max <= 100 and
// reports whether they were accepted.
func (v *View) SetReadinessRange(min, max int) bool {
	if min < 0 || max > 100 || min > max {
		return false
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Filters.ReadinessRange = [2]int{min, max}
	v.applyFiltersLocked()
	return true
}

func (v *View) SetHazardLevels(levels []models.HazardLevel) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Filters.SelectedHazardLevels = append([]models.HazardLevel(nil), levels...)
	v.applyFiltersLocked()
}

// ToggleHazardLevel adds or removes one level from the selection.
func (v *View) ToggleHazardLevel(level models.HazardLevel) {
	v.mu.Lock()
	defer v.mu.Unlock()
	levels := v.state.Filters.SelectedHazardLevels
	out := make([]models.HazardLevel, 0, len(models.HazardLevels))
	found := false
	for _, l := range levels {
		if l == level {
			found = true
			continue
		}
		out = append(out, l)
	}
	if !found {
		out = append(out, level)
	}
	v.state.Filters.SelectedHazardLevels = out
	v.applyFiltersLocked()
}
