// Package tui renders the preparedness dashboard in a terminal.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/prepdash/backend/internal/dashboard"
	"github.com/prepdash/backend/internal/models"
	"github.com/prepdash/backend/internal/service"
)

const (
	readinessStep  = 5
	requestTimeout = 45 * time.Second
)

// RefreshedMsg tells the app the view has new data. The scheduler sends it
// from outside the program.
type RefreshedMsg struct {
	Err error
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	valueStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF"))
	offlineStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1A1A1A")).Background(lipgloss.Color("#F5A623")).Padding(0, 1)
	onlineStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1A1A1A")).Background(lipgloss.Color("#7ED321")).Padding(0, 1)
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444444")).Padding(0, 1)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555"))

	hazardColors = map[models.HazardLevel]lipgloss.Color{
		models.HazardExtreme:  "#D0021B",
		models.HazardVeryHigh: "#F5A623",
		models.HazardHigh:     "#F8E71C",
		models.HazardModerate: "#4A90E2",
		models.HazardLow:      "#7ED321",
	}
)

type App struct {
	view    *dashboard.View
	table   table.Model
	regions []string

	width      int
	height     int
	loading    bool
	statusMsg  string
	err        error
	regionIdx  int
	lastRender dashboard.State
}

func NewApp(view *dashboard.View) *App {
	columns := []table.Column{
		{Title: "Facility", Width: 28},
		{Title: "City", Width: 16},
		{Title: "State", Width: 6},
		{Title: "Hazard", Width: 10},
		{Title: "Readiness", Width: 9},
		{Title: "Beds", Width: 6},
		{Title: "Emergency", Width: 9},
		{Title: "Staff", Width: 6},
	}
	t := table.New(table.WithColumns(columns), table.WithFocused(true), table.WithHeight(12))
	styles := table.DefaultStyles()
	styles.Header = styles.Header.BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).Bold(true)
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#5B8DEF"))
	t.SetStyles(styles)

	a := &App{
		view:    view,
		table:   t,
		regions: append([]string{service.RegionAll}, service.RegionNames...),
		loading: true,
	}
	a.syncRegionIndex()
	a.syncTable()
	return a
}

func (a *App) Init() tea.Cmd {
	return a.refresh()
}

func (a *App) refresh() tea.Cmd {
	return a.run(a.view.Refresh)
}

// run executes a view operation off the UI loop and reports back.
func (a *App) run(op func(ctx context.Context) error) tea.Cmd {
	a.loading = true
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return RefreshedMsg{Err: op(ctx)}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.table.SetHeight(max(5, msg.Height-16))
		return a, nil

	case RefreshedMsg:
		a.loading = false
		a.err = nil
		if msg.Err != nil && !errors.Is(msg.Err, dashboard.ErrStale) {
			a.err = msg.Err
		}
		a.syncTable()
		st := a.lastRender
		if st.Offline {
			a.statusMsg = st.Message
		} else {
			a.statusMsg = "Updated " + st.LastUpdated.Format("15:04:05")
		}
		return a, nil

	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "ctrl+c", "q":
			return a, tea.Quit
		case "r":
			a.statusMsg = "Refreshing..."
			return a, a.refresh()
		case "]", "[":
			step := 1
			if key == "[" {
				step = len(a.regions) - 1
			}
			a.regionIdx = (a.regionIdx + step) % len(a.regions)
			region := a.regions[a.regionIdx]
			a.statusMsg = "Region: " + region
			return a, a.run(func(ctx context.Context) error { return a.view.SetRegion(ctx, region) })
		case "1", "2", "3", "4", "5":
			i, _ := strconv.Atoi(key)
			a.view.ToggleHazardLevel(models.HazardLevels[i-1])
			a.syncTable()
			return a, nil
		case "+", "-", ">", "<":
			a.adjustReadiness(key)
			a.syncTable()
			return a, nil
		}
	}

	var cmd tea.Cmd
	a.table, cmd = a.table.Update(msg)
	return a, cmd
}

func (a *App) adjustReadiness(key string) {
	r := a.view.State().Filters.ReadinessRange
	switch key {
	case "+":
		r[0] += readinessStep
	case "-":
		r[0] -= readinessStep
	case ">":
		r[1] += readinessStep
	case "<":
		r[1] -= readinessStep
	}
	if !a.view.SetReadinessRange(r[0], r[1]) {
		a.statusMsg = fmt.Sprintf("Readiness range %d-%d not allowed", r[0], r[1])
		return
	}
	a.statusMsg = fmt.Sprintf("Readiness %d-%d", r[0], r[1])
}

func (a *App) syncRegionIndex() {
	region := a.view.State().Filters.SelectedRegion
	for i, r := range a.regions {
		if r == region {
			a.regionIdx = i
			return
		}
	}
	a.regionIdx = 0
}

func (a *App) syncTable() {
	st := a.view.State()
	a.lastRender = st
	rows := make([]table.Row, 0, len(st.Filtered))
	for _, f := range st.Filtered {
		rows = append(rows, table.Row{
			f.Name,
			f.City,
			f.State,
			string(f.HazardLevel),
			strconv.Itoa(f.ReadinessScore),
			strconv.Itoa(f.BedCapacity),
			strconv.Itoa(f.EmergencyStaff),
			strconv.Itoa(f.TotalStaff),
		})
	}
	a.table.SetRows(rows)
}

func (a *App) View() string {
	st := a.lastRender
	var b strings.Builder

	badge := onlineStyle.Render("ONLINE")
	if st.Offline {
		badge = offlineStyle.Render("OFFLINE")
	}
	b.WriteString(titleStyle.Render("PREPAREDNESS DASHBOARD") + "  " + badge + "\n\n")

	b.WriteString(stat("Total beds", st.Summary.TotalBeds) + "   " +
		stat("Emergency staff", st.Summary.TotalStaff) + "   " +
		stat("Facilities", len(st.Filtered)) + "\n")
	if !st.LastUpdated.IsZero() {
		b.WriteString(labelStyle.Render("Last updated "+st.LastUpdated.Local().Format("Jan 2 15:04")) + "\n")
	}
	b.WriteString("\n")

	panels := lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Render(renderHazards(st)),
		" ",
		panelStyle.Render(renderBuckets("States", st.Summary.StateDistribution, 6)),
		" ",
		panelStyle.Render(renderBuckets("Resources", st.Summary.ResourceDistribution, 2)),
	)
	b.WriteString(panels + "\n")
	b.WriteString(renderFilters(st.Filters) + "\n\n")
	b.WriteString(a.table.View() + "\n")

	switch {
	case a.err != nil:
		b.WriteString(errorStyle.Render("Error: "+a.err.Error()) + "\n")
	case a.loading:
		b.WriteString(labelStyle.Render("Loading...") + "\n")
	case a.statusMsg != "":
		b.WriteString(labelStyle.Render(a.statusMsg) + "\n")
	}
	b.WriteString(helpStyle.Render("r refresh · [ ] region · 1-5 hazard · +/- min · </> max · q quit"))
	return b.String()
}

func stat(label string, v int) string {
	return labelStyle.Render(label+": ") + valueStyle.Render(strconv.Itoa(v))
}

func renderHazards(st dashboard.State) string {
	selected := map[models.HazardLevel]bool{}
	for _, h := range st.Filters.SelectedHazardLevels {
		selected[h] = true
	}
	lines := []string{valueStyle.Render("Hazards")}
	for i, level := range models.HazardLevels {
		count := 0
		for _, bucket := range st.Summary.HazardDistribution {
			if bucket.Name == string(level) {
				count = bucket.Value
			}
		}
		mark := " "
		if selected[level] {
			mark = "x"
		}
		name := lipgloss.NewStyle().Foreground(hazardColors[level]).Render(fmt.Sprintf("%-9s", level))
		lines = append(lines, fmt.Sprintf("%d [%s] %s %4d", i+1, mark, name, count))
	}
	return strings.Join(lines, "\n")
}

func renderBuckets(title string, buckets []models.DistributionBucket, limit int) string {
	lines := []string{valueStyle.Render(title)}
	for i, bucket := range buckets {
		if i >= limit {
			lines = append(lines, labelStyle.Render(fmt.Sprintf("+%d more", len(buckets)-limit)))
			break
		}
		lines = append(lines, fmt.Sprintf("%-16s %6d", bucket.Name, bucket.Value))
	}
	return strings.Join(lines, "\n")
}

func renderFilters(fs service.FilterState) string {
	states := "all"
	if len(fs.SelectedStates) > 0 {
		states = strings.Join(fs.SelectedStates, ",")
	}
	return labelStyle.Render(fmt.Sprintf("Region %s · States %s · Readiness %d-%d",
		fs.SelectedRegion, states, fs.ReadinessRange[0], fs.ReadinessRange[1]))
}
