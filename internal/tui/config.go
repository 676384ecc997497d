package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/prepdash/backend/internal/models"
	"github.com/prepdash/backend/internal/service"
)

const DefaultConfigFile = "prepdash.yaml"

// Config is read from prepdash.yaml. Every field is optional.
type Config struct {
	APIURL    string        `yaml:"api_url"`
	Refresh   string        `yaml:"refresh"`
	CacheDir  string        `yaml:"cache_dir"`
	RedisAddr string        `yaml:"redis_addr"`
	RedisDB   int           `yaml:"redis_db"`
	Seed      int64         `yaml:"seed"`
	Filters   FiltersConfig `yaml:"filters"`
}

type FiltersConfig struct {
	Region       string   `yaml:"region"`
	State        string   `yaml:"state,omitempty"`
	MinReadiness *int     `yaml:"min_readiness,omitempty"`
	MaxReadiness *int     `yaml:"max_readiness,omitempty"`
	HazardLevels []string `yaml:"hazard_levels,omitempty"`
}

func DefaultConfig() Config {
	cacheDir := ".prepdash"
	if dir, err := os.UserConfigDir(); err == nil {
		cacheDir = filepath.Join(dir, "prepdash")
	}
	return Config{
		APIURL:   "http://localhost:8080",
		Refresh:  "30m",
		CacheDir: cacheDir,
		Filters:  FiltersConfig{Region: service.RegionAll},
	}
}

// LoadConfig reads path over the defaults. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if _, err := cfg.RefreshInterval(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) RefreshInterval() (time.Duration, error) {
	if c.Refresh == "" {
		return 30 * time.Minute, nil
	}
	d, err := time.ParseDuration(c.Refresh)
	if err != nil {
		return 0, fmt.Errorf("invalid refresh %q: %w", c.Refresh, err)
	}
	if d < time.Minute {
		return 0, fmt.Errorf("refresh %s is below one minute", d)
	}
	return d, nil
}

// FilterState turns the configured filters into the initial selection.
// Out-of-range readiness bounds are ignored.
func (c Config) FilterState() service.FilterState {
	fs := service.DefaultFilterState()
	if c.Filters.State != "" {
		fs.SelectState(c.Filters.State)
	} else if c.Filters.Region != "" {
		fs.SelectRegion(c.Filters.Region)
	}
	if c.Filters.MaxReadiness != nil {
		fs.SetReadinessMax(*c.Filters.MaxReadiness)
	}
	if c.Filters.MinReadiness != nil {
		fs.SetReadinessMin(*c.Filters.MinReadiness)
	}
	if len(c.Filters.HazardLevels) > 0 {
		fs.SelectedHazardLevels = nil
		for _, h := range c.Filters.HazardLevels {
			fs.SelectedHazardLevels = append(fs.SelectedHazardLevels, models.HazardLevel(h))
		}
	}
	return fs
}
