package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"github.com/prepdash/backend/internal/importer"
)

// @Summary Import persons CSV
// @Description Replace the person directory with an uploaded CSV export
// @Tags import
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "persons.csv"
// @Param geocode query bool false "geocode rows without coordinates"
// @Param force query bool false "re-geocode every row"
// @Param append query bool false "add rows instead of replacing the directory"
// @Success 200 {object} importer.Summary
// @Failure 400 {object} map[string]any
// @Router /api/import [post]
func (h *Handler) Import(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "file required", nil)
		return
	}
	if !validateExt(fh.Filename) {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "file must be .csv", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "failed to open upload", err.Error())
		return
	}
	defer f.Close()

	opts := importer.Options{
		Geocode: queryBool(c, "geocode"),
		Force:   queryBool(c, "force"),
		Append:  queryBool(c, "append"),
	}
	summary, err := h.Importer.Import(c.Request.Context(), f, opts)
	if err != nil {
		if errors.Is(err, importer.ErrInvalidCSV) {
			writeError(c, http.StatusBadRequest, "CSV_PARSE_ERROR", "CSV validation errors", summary.Errors)
			return
		}
		h.Logger.Error().Err(err).Msg("import failed")
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to import persons", err.Error())
		return
	}

	if h.Live != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if err := h.Live.Refresh(ctx); err != nil {
				h.Logger.Debug().Err(err).Msg("post-import refresh skipped")
			}
		}()
	}
	c.JSON(http.StatusOK, summary)
}

// @Summary Latest import run
// @Tags import
// @Produce json
// @Success 200 {object} db.ImportRun
// @Failure 404 {object} map[string]any
// @Router /api/imports/latest [get]
func (h *Handler) RunsLatest(c *gin.Context) {
	run, err := h.Store.GetLatestRun(c.Request.Context())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "No import runs found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load import run", err.Error())
		return
	}
	c.JSON(http.StatusOK, run)
}

func queryBool(c *gin.Context, name string) bool {
	v := strings.ToLower(strings.TrimSpace(c.Query(name)))
	return v == "1" || v == "true" || v == "yes"
}
