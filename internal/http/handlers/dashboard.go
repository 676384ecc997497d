package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prepdash/backend/internal/dashboard"
	"github.com/prepdash/backend/internal/models"
	"github.com/prepdash/backend/internal/service"
	"github.com/prepdash/backend/internal/utils"
)

type DashboardResponse struct {
	Facilities      []models.Facility     `json:"facilities"`
	Stages          []service.FilterStage `json:"stages"`
	Summary         models.Summary        `json:"summary"`
	FilteredSummary models.Summary        `json:"filtered_summary"`
	Filters         service.FilterState   `json:"filters"`
	Offline         bool                  `json:"offline"`
	Message         string                `json:"message,omitempty"`
	LastUpdated     time.Time             `json:"lastUpdated"`
}

var dashboardParams = []string{"states", "state", "region", "min_readiness", "max_readiness", "hazard", "seed"}

// @Summary Dashboard figures
// @Description Facilities and chart figures. Without filter params the live nationwide view is returned.
// @Tags dashboard
// @Produce json
// @Param states query []string false "state codes" collectionFormat(multi)
// @Param state query string false "single state code"
// @Param region query string false "region name or All"
// @Param min_readiness query int false "minimum readiness"
// @Param max_readiness query int false "maximum readiness"
// @Param hazard query []string false "hazard levels" collectionFormat(multi)
// @Param seed query string false "integer or token that fixes the synthetic metrics"
// @Success 200 {object} DashboardResponse
// @Failure 400 {object} map[string]any
// @Router /api/dashboard [get]
func (h *Handler) Dashboard(c *gin.Context) {
	if h.Live != nil && !hasAnyQuery(c, dashboardParams) {
		c.JSON(http.StatusOK, dashboardResponse(h.Live.State()))
		return
	}

	filters, err := parseFilters(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	seed := parseSeed(c.Query("seed"))

	view := dashboard.NewView(dashboard.DirectoryFetcher{Directory: h.Directory}, nil, h.Logger)
	view.Seed = seed
	view.SetFilters(filters)
	if err := view.Refresh(c.Request.Context()); err != nil {
		writeError(c, http.StatusInternalServerError, "DASHBOARD_ERROR", "Failed to build dashboard", err.Error())
		return
	}
	c.JSON(http.StatusOK, dashboardResponse(view.State()))
}

// parseSeed takes an integer seed as is and hashes any other token, so a
// dashboard link can carry a readable seed such as "drill-2024".
func parseSeed(raw string) int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	return utils.SeedFromString(raw)
}

func dashboardResponse(s dashboard.State) DashboardResponse {
	facilities := make([]models.Facility, 0, len(s.Filtered))
	for _, f := range s.Filtered {
		f.Staff = nil
		facilities = append(facilities, f)
	}
	filtered := s.Summary
	if len(s.Facilities) > 0 {
		filtered = service.Summarize(s.Filtered, service.FilteredFloor)
	}
	return DashboardResponse{
		Facilities:      facilities,
		Stages:          s.Stages,
		Summary:         s.Summary,
		FilteredSummary: filtered,
		Filters:         s.Filters,
		Offline:         s.Offline,
		Message:         s.Message,
		LastUpdated:     s.LastUpdated,
	}
}

type filterError string

func (e filterError) Error() string { return string(e) }

// parseFilters builds a filter state from query params. Region is applied
// first so explicit states can narrow it.
func parseFilters(c *gin.Context) (service.FilterState, error) {
	fs := service.DefaultFilterState()

	if region := strings.TrimSpace(c.Query("region")); region != "" {
		if region != service.RegionAll && service.RegionStates(region) == nil {
			return fs, filterError("unknown region " + region)
		}
		fs.SelectRegion(region)
	}
	if state := strings.TrimSpace(c.Query("state")); state != "" {
		fs.SelectState(state)
	}
	if states := queryStates(c); len(states) > 0 {
		fs.SelectedStates = states
	}

	lo, hi := fs.ReadinessRange[0], fs.ReadinessRange[1]
	if raw := strings.TrimSpace(c.Query("min_readiness")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fs, filterError("min_readiness must be an integer")
		}
		lo = v
	}
	if raw := strings.TrimSpace(c.Query("max_readiness")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fs, filterError("max_readiness must be an integer")
		}
		hi = v
	}
	if lo < 0 || hi > 100 || lo > hi {
		return fs, filterError("readiness range must satisfy 0 <= min <= max <= 100")
	}
	fs.ReadinessRange = [2]int{lo, hi}

	var levels []models.HazardLevel
	for _, raw := range c.QueryArray("hazard") {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			level, ok := parseHazardLevel(part)
			if !ok {
				return fs, filterError("unknown hazard level " + part)
			}
			levels = append(levels, level)
		}
	}
	if len(levels) > 0 {
		fs.SelectedHazardLevels = levels
	}
	return fs, nil
}

func parseHazardLevel(raw string) (models.HazardLevel, bool) {
	for _, level := range models.HazardLevels {
		if strings.EqualFold(string(level), raw) {
			return level, true
		}
	}
	return "", false
}

func hasAnyQuery(c *gin.Context, names []string) bool {
	q := c.Request.URL.Query()
	for _, name := range names {
		if _, ok := q[name]; ok {
			return true
		}
	}
	return false
}

// @Summary Regions
// @Tags dashboard
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/regions [get]
func (h *Handler) Regions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"order":   append([]string{service.RegionAll}, service.RegionNames...),
		"regions": service.Regions(),
		"codes":   service.StateCodes(),
		"states":  service.StateNames(),
	})
}

// @Summary Dashboard layouts
// @Tags layouts
// @Produce json
// @Success 200 {object} models.Layouts
// @Router /api/layouts [get]
func (h *Handler) GetLayouts(c *gin.Context) {
	layouts, err := dashboard.LoadLayouts(c.Request.Context(), h.Cache)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "CACHE_ERROR", "Failed to load layouts", err.Error())
		return
	}
	c.JSON(http.StatusOK, layouts)
}

// @Summary Save dashboard layouts
// @Tags layouts
// @Accept json
// @Produce json
// @Param payload body models.Layouts true "layouts by breakpoint"
// @Success 200 {object} models.Layouts
// @Failure 400 {object} map[string]any
// @Router /api/layouts [put]
func (h *Handler) PutLayouts(c *gin.Context) {
	var layouts models.Layouts
	if err := c.ShouldBindJSON(&layouts); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if len(layouts) == 0 {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "at least one breakpoint is required", nil)
		return
	}
	if err := dashboard.SaveLayouts(c.Request.Context(), h.Cache, layouts); err != nil {
		writeError(c, http.StatusInternalServerError, "CACHE_ERROR", "Failed to save layouts", err.Error())
		return
	}
	c.JSON(http.StatusOK, layouts)
}

// @Summary Reset dashboard layouts
// @Tags layouts
// @Produce json
// @Success 200 {object} models.Layouts
// @Router /api/layouts [delete]
func (h *Handler) ResetLayouts(c *gin.Context) {
	if err := dashboard.ResetLayouts(c.Request.Context(), h.Cache); err != nil {
		writeError(c, http.StatusInternalServerError, "CACHE_ERROR", "Failed to reset layouts", err.Error())
		return
	}
	c.JSON(http.StatusOK, dashboard.DefaultLayouts())
}
