package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/prepdash/backend/internal/dashboard"
	"github.com/prepdash/backend/internal/kv"
	"github.com/prepdash/backend/internal/models"
)

type staticFetcher struct {
	data   models.DataResponse
	err    error
	states [][]string
}

func (f *staticFetcher) Fetch(ctx context.Context, states []string) (models.DataResponse, error) {
	f.states = append(f.states, states)
	return f.data, f.err
}

func record(location, city, state string) models.PersonRecord {
	return models.PersonRecord{Location: location, City: city, State: state, IsMedical: models.MedicalCategory}
}

func newTestApp(t *testing.T, f *staticFetcher) *App {
	t.Helper()
	view := dashboard.NewView(f, kv.NewMemory(), zerolog.Nop())
	view.Seed = 5
	return NewApp(view)
}

// runCommands feeds each command's message back into Update until the
// chain ends.
func runCommands(t *testing.T, app *App, cmd tea.Cmd) *App {
	t.Helper()
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			break
		}
		next, nextCmd := app.Update(msg)
		var ok bool
		app, ok = next.(*App)
		if !ok {
			t.Fatalf("unexpected model type: %T", next)
		}
		cmd = nextCmd
	}
	return app
}

func press(t *testing.T, app *App, key string) *App {
	t.Helper()
	var msg tea.KeyMsg
	if len(key) == 1 {
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	} else {
		msg = tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	next, cmd := app.Update(msg)
	return runCommands(t, next.(*App), cmd)
}

func fixture() *staticFetcher {
	return &staticFetcher{data: models.DataResponse{
		Local: []models.PersonRecord{
			record("Tampa General", "Tampa", "FL"),
			record("Ochsner", "New Orleans", "LA"),
		},
		Nearby: []models.PersonRecord{record("Mass General", "Boston", "MA")},
	}}
}

func TestInitLoadsFacilities(t *testing.T) {
	app := newTestApp(t, fixture())
	app = runCommands(t, app, app.Init())

	if app.loading {
		t.Fatalf("expected loading to finish")
	}
	if got := len(app.table.Rows()); got != 3 {
		t.Fatalf("expected 3 rows, got %d", got)
	}
	out := app.View()
	for _, want := range []string{"ONLINE", "Tampa General", "Total beds"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q", want)
		}
	}
}

func TestOfflineBadgeWithoutCache(t *testing.T) {
	f := fixture()
	f.err = context.DeadlineExceeded
	app := newTestApp(t, f)
	app = runCommands(t, app, app.Init())
	if !strings.Contains(app.View(), "OFFLINE") {
		t.Fatalf("expected offline badge")
	}
	if !strings.Contains(app.statusMsg, "cached data") {
		t.Fatalf("expected offline status message, got %q", app.statusMsg)
	}
}

func TestHazardToggleFiltersRows(t *testing.T) {
	app := newTestApp(t, fixture())
	app = runCommands(t, app, app.Init())

	// Deselect Extreme: the LA facility drops out.
	app = press(t, app, "1")
	if got := len(app.table.Rows()); got != 2 {
		t.Fatalf("expected 2 rows after toggling Extreme off, got %d", got)
	}
	app = press(t, app, "1")
	if got := len(app.table.Rows()); got != 3 {
		t.Fatalf("expected 3 rows after toggling back, got %d", got)
	}
}

func TestRegionKeyRefetches(t *testing.T) {
	f := fixture()
	app := newTestApp(t, f)
	app = runCommands(t, app, app.Init())

	app = press(t, app, "]")
	st := app.view.State()
	if st.Filters.SelectedRegion != "Northeast" {
		t.Fatalf("expected Northeast, got %s", st.Filters.SelectedRegion)
	}
	if len(f.states) != 2 || len(f.states[1]) == 0 {
		t.Fatalf("expected a refetch with region states, got %v", f.states)
	}
	if got := len(app.table.Rows()); got != 1 {
		t.Fatalf("expected only the MA facility, got %d", got)
	}

	app = press(t, app, "[")
	if got := app.view.State().Filters.SelectedRegion; got != "All" {
		t.Fatalf("expected All after stepping back, got %s", got)
	}
}

func TestReadinessKeysRespectGuards(t *testing.T) {
	app := newTestApp(t, fixture())
	app = runCommands(t, app, app.Init())

	for i := 0; i < 3; i++ {
		app = press(t, app, ">")
	}
	if got := app.view.State().Filters.ReadinessRange[1]; got != 100 {
		t.Fatalf("expected max capped at 100, got %d", got)
	}
	if !strings.Contains(app.statusMsg, "not allowed") {
		t.Fatalf("expected rejection message, got %q", app.statusMsg)
	}
	app = press(t, app, "-")
	if got := app.view.State().Filters.ReadinessRange[0]; got != 65 {
		t.Fatalf("expected min 65, got %d", got)
	}
}

func TestQuitKey(t *testing.T) {
	app := newTestApp(t, fixture())
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	if err != nil || cfg.APIURL != "http://localhost:8080" {
		t.Fatalf("expected defaults for missing file, got %+v (%v)", cfg, err)
	}

	path := filepath.Join(dir, DefaultConfigFile)
	content := "api_url: http://prep.example.com\nrefresh: 10m\nseed: 9\nfilters:\n  region: Southeast\n  min_readiness: 80\n  hazard_levels: [Extreme, High]\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err = LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "http://prep.example.com" || cfg.Seed != 9 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	d, _ := cfg.RefreshInterval()
	if d.Minutes() != 10 {
		t.Fatalf("expected 10m refresh, got %s", d)
	}
	fs := cfg.FilterState()
	if fs.SelectedRegion != "Southeast" || fs.ReadinessRange != [2]int{80, 95} || len(fs.SelectedHazardLevels) != 2 {
		t.Fatalf("unexpected filter state %+v", fs)
	}
}

func TestLoadConfigRejectsShortRefresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	if err := os.WriteFile(path, []byte("refresh: 5s\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected error for sub-minute refresh")
	}
}
