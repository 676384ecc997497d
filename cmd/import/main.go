package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/prepdash/backend/internal/db"
	"github.com/prepdash/backend/internal/geocode"
	"github.com/prepdash/backend/internal/importer"
)

func main() {
	file := flag.String("file", "", "path to the persons CSV export")
	envFile := flag.String("env", ".env", "env file to load before reading settings")
	withGeocode := flag.Bool("geocode", false, "geocode rows without coordinates")
	force := flag.Bool("force", false, "re-geocode every row")
	appendRows := flag.Bool("append", false, "add rows instead of replacing the directory")
	migrate := flag.Bool("migrate", true, "apply the schema before importing")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("file", *envFile).Msg("failed to load env file")
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, err := zerolog.ParseLevel(envOr("LOG_LEVEL", "info"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := log.Level(level).With().Str("service", "prepdash-import").Logger()

	if *file == "" {
		logger.Fatal().Msg("-file is required")
	}
	f, err := os.Open(*file)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open csv")
	}
	defer f.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := db.New(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect db")
	}
	defer store.Close()
	if *migrate {
		if err := store.Migrate(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to migrate db")
		}
	}

	var geocoder geocode.Geocoder
	if *withGeocode {
		geocoder, err = geocode.New(envOr("GEOCODER", "nominatim"), os.Getenv("NOMINATIM_URL"), os.Getenv("GOOGLE_MAPS_API_KEY"), envOr("GEOCODE_REGION", "us"))
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure geocoder")
		}
	}

	imp := &importer.Importer{Sink: store, Geocoder: geocoder, Country: envOr("GEOCODE_COUNTRY", "USA"), Logger: logger}
	summary, err := imp.Import(ctx, f, importer.Options{Geocode: *withGeocode, Force: *force, Append: *appendRows})
	if err != nil {
		for _, msg := range summary.Errors {
			logger.Error().Msg(msg)
		}
		logger.Fatal().Err(err).Str("file", *file).Msg("import failed")
	}
	logger.Info().
		Int("parsed", summary.Parsed).
		Int("inserted", summary.Inserted).
		Int("medical", summary.Medical).
		Int("geocoded", summary.Geocoded).
		Int64("elapsed_ms", summary.ElapsedMs).
		Msg("import finished")
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
