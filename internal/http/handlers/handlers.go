package handlers

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/prepdash/backend/internal/dashboard"
	"github.com/prepdash/backend/internal/db"
	"github.com/prepdash/backend/internal/importer"
	"github.com/prepdash/backend/internal/kv"
	"github.com/prepdash/backend/internal/mail"
	"github.com/prepdash/backend/internal/service"
)

// Store is the part of the database the handlers touch directly. Person
// queries go through the Directory.
type Store interface {
	Ping(ctx context.Context) error
	CountPersons(ctx context.Context) (int64, error)
	GetLatestRun(ctx context.Context) (db.ImportRun, error)
}

type Handler struct {
	Store     Store
	Directory *service.Directory
	Importer  *importer.Importer
	Mailer    mail.Sender
	Cache     kv.Store
	// Live is the nationwide view kept fresh by the scheduler.
	Live      *dashboard.View
	Validator *validator.Validate
	Logger    zerolog.Logger
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	persons, err := h.Store.CountPersons(ctx)
	if err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "persons": persons})
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// queryStates accepts both repeated and comma separated states params.
func queryStates(c *gin.Context) []string {
	var out []string
	for _, raw := range c.QueryArray("states") {
		for _, s := range strings.Split(raw, ",") {
			s = strings.ToUpper(strings.TrimSpace(s))
			if s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func validateExt(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".csv"
}
