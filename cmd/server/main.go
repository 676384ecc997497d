package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/prepdash/backend/internal/config"
	"github.com/prepdash/backend/internal/dashboard"
	"github.com/prepdash/backend/internal/db"
	"github.com/prepdash/backend/internal/geocode"
	httpapi "github.com/prepdash/backend/internal/http"
	"github.com/prepdash/backend/internal/importer"
	"github.com/prepdash/backend/internal/kv"
	"github.com/prepdash/backend/internal/mail"
	"github.com/prepdash/backend/internal/service"
)

// @title prepdash API
// @version 1.0
// @description Facility directory and preparedness dashboard backend.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "prepdash-backend").Logger()

	ctx := context.Background()
	store, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect db")
	}
	defer store.Close()

	if cfg.AutoMigrate {
		if err := store.Migrate(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to migrate db")
		}
	}

	geocoder, err := geocode.New(cfg.Geocoder, cfg.NominatimURL, cfg.GoogleMapsAPIKey, cfg.GeocodeRegion)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure geocoder")
	}
	if geocoder == nil {
		logger.Info().Msg("geocoding disabled")
	}

	var cache kv.Store
	if client := kv.OpenRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); client != nil {
		defer client.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, cache calls will fail until it recovers")
		}
		cancel()
		cache = kv.NewRedis(client, "prepdash:", cfg.CacheTTL)
		logger.Info().Str("addr", cfg.RedisAddr).Msg("using redis cache")
	} else {
		cache = kv.NewMemory()
		logger.Info().Msg("using in-memory cache")
	}

	var mailer mail.Sender
	if cfg.SMTPHost == "" {
		mailer = mail.LogSender{Logger: logger}
		logger.Info().Msg("smtp not configured, emails will be logged")
	} else {
		mailer = mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)
	}

	directory := &service.Directory{Store: store, Geocoder: geocoder, Country: cfg.GeocodeCountry, Logger: logger}
	imp := &importer.Importer{Sink: store, Geocoder: geocoder, Country: cfg.GeocodeCountry, Logger: logger}

	live := dashboard.NewView(dashboard.DirectoryFetcher{Directory: directory}, cache, logger)
	if err := live.Refresh(ctx); err != nil {
		logger.Warn().Err(err).Msg("initial dashboard refresh failed")
	}
	scheduler, err := dashboard.NewScheduler(live, cfg.DashboardRefresh, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to schedule dashboard refresh")
	}
	scheduler.Start()

	router := httpapi.Router(cfg, store, directory, imp, mailer, cache, live, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	scheduler.Stop()
	logger.Info().Msg("server stopped")
}
