package httpapi

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/prepdash/backend/internal/config"
	"github.com/prepdash/backend/internal/dashboard"
	"github.com/prepdash/backend/internal/http/handlers"
	"github.com/prepdash/backend/internal/http/middleware"
	"github.com/prepdash/backend/internal/importer"
	"github.com/prepdash/backend/internal/kv"
	"github.com/prepdash/backend/internal/mail"
	"github.com/prepdash/backend/internal/metrics"
	"github.com/prepdash/backend/internal/service"

	_ "github.com/prepdash/backend/docs"
)

func Router(cfg config.Config, store handlers.Store, directory *service.Directory, imp *importer.Importer, mailer mail.Sender, cache kv.Store, live *dashboard.View, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.MaxMultipartMemory = cfg.MaxUploadSizeMB << 20

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.AdminKeyHeader, middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		for _, origin := range strings.Split(cfg.CORSAllowed, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				corsCfg.AllowOrigins = append(corsCfg.AllowOrigins, origin)
			}
		}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Store:     store,
		Directory: directory,
		Importer:  imp,
		Mailer:    mailer,
		Cache:     cache,
		Live:      live,
		Validator: validator.New(),
		Logger:    logger,
	}

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	{
		api.GET("/data/", h.Data)
		api.POST("/send-email/", h.SendEmail)
		api.GET("/dashboard", h.Dashboard)
		api.GET("/regions", h.Regions)
		api.GET("/layouts", h.GetLayouts)
		api.PUT("/layouts", h.PutLayouts)
		api.DELETE("/layouts", h.ResetLayouts)
		api.GET("/imports/latest", h.RunsLatest)
	}

	admin := api.Group("")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/import", h.Import)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
