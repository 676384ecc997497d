package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/prepdash/backend/internal/dashboard"
	"github.com/prepdash/backend/internal/kv"
	"github.com/prepdash/backend/internal/tui"
)

func main() {
	configPath := flag.String("config", tui.DefaultConfigFile, "path to the dashboard config file")
	logPath := flag.String("log", "", "write logs to this file")
	flag.Parse()

	cfg, err := tui.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	interval, _ := cfg.RefreshInterval()

	// The terminal belongs to the UI, so logs go to a file or nowhere.
	logger := zerolog.Nop()
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer f.Close()
		logger = zerolog.New(f).With().Timestamp().Str("service", "prepdash-dashboard").Logger()
	}

	var cache kv.Store
	if client := kv.OpenRedis(cfg.RedisAddr, "", cfg.RedisDB); client != nil {
		defer client.Close()
		cache = kv.NewRedis(client, "prepdash:tui:", 0)
	} else {
		file, err := kv.NewFile(cfg.CacheDir)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cache = file
	}

	fetcher := &dashboard.HTTPFetcher{BaseURL: cfg.APIURL, Client: &http.Client{Timeout: 30 * time.Second}}
	view := dashboard.NewView(fetcher, cache, logger)
	view.Seed = cfg.Seed
	view.SetFilters(cfg.FilterState())

	p := tea.NewProgram(tui.NewApp(view), tea.WithAltScreen())

	scheduler, err := dashboard.NewScheduler(view, interval, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	scheduler.OnRefresh = func() { p.Send(tui.RefreshedMsg{}) }
	scheduler.Start()
	defer scheduler.Stop()

	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
