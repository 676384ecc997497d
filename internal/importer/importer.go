package importer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/prepdash/backend/internal/geocode"
	"github.com/prepdash/backend/internal/metrics"
	"github.com/prepdash/backend/internal/models"
)

const (
	RunRunning = "RUNNING"
	RunSuccess = "SUCCESS"
	RunFailed  = "FAILED"
)

var ErrInvalidCSV = errors.New("csv validation errors")

// Sink is where parsed records end up.
type Sink interface {
	ReplacePersons(ctx context.Context, persons []models.PersonRecord) (int64, error)
	InsertPersons(ctx context.Context, persons []models.PersonRecord) (int64, error)
	CreateRun(ctx context.Context, status string) (int64, error)
	FinishRun(ctx context.Context, runID int64, status string, summary []byte) error
}

type Summary struct {
	Parsed    int      `json:"parsed"`
	Inserted  int      `json:"inserted"`
	Geocoded  int      `json:"geocoded"`
	Medical   int      `json:"medical"`
	Errors    []string `json:"errors"`
	ElapsedMs int64    `json:"elapsed_ms"`
}

type Importer struct {
	Sink     Sink
	Geocoder geocode.Geocoder
	Country  string
	Logger   zerolog.Logger
}

type Options struct {
	// Geocode fills missing coordinates before insert.
	Geocode bool
	// Force re-geocodes rows that already have coordinates.
	Force bool
	// Append adds the rows to the directory instead of replacing it.
	Append bool
}

// Import parses r, optionally geocodes it and replaces the directory, or
// appends to it with Options.Append. The run is recorded whether or not it
// succeeds. Parse errors abort before the table is touched.
func (im *Importer) Import(ctx context.Context, r io.Reader, opts Options) (Summary, error) {
	start := time.Now()
	summary := Summary{Errors: []string{}}

	runID, err := im.Sink.CreateRun(ctx, RunRunning)
	if err != nil {
		return summary, err
	}
	finish := func(status string) {
		summary.ElapsedMs = time.Since(start).Milliseconds()
		b, _ := json.Marshal(summary)
		if err := im.Sink.FinishRun(ctx, runID, status, b); err != nil {
			im.Logger.Error().Err(err).Int64("run_id", runID).Msg("failed to finish import run")
		}
	}

	persons, errs := ParsePersonsCSV(r)
	summary.Parsed = len(persons)
	summary.Errors = append(summary.Errors, errs...)
	if len(errs) > 0 {
		finish(RunFailed)
		return summary, ErrInvalidCSV
	}
	for _, p := range persons {
		if p.Medical() {
			summary.Medical++
		}
	}

	if opts.Geocode && im.Geocoder != nil {
		summary.Geocoded = im.fillCoordinates(ctx, persons, opts.Force)
	}

	write := im.Sink.ReplacePersons
	if opts.Append {
		write = im.Sink.InsertPersons
	}
	inserted, err := write(ctx, persons)
	if err != nil {
		summary.Errors = append(summary.Errors, err.Error())
		finish(RunFailed)
		return summary, err
	}
	summary.Inserted = int(inserted)
	metrics.PersonsImportedTotal.Add(float64(inserted))
	finish(RunSuccess)

	im.Logger.Info().
		Int("parsed", summary.Parsed).
		Int("inserted", summary.Inserted).
		Int("geocoded", summary.Geocoded).
		Bool("append", opts.Append).
		Msg("persons imported")
	return summary, nil
}

// fillCoordinates geocodes each distinct facility address once and copies
// the result to every person there.
func (im *Importer) fillCoordinates(ctx context.Context, persons []models.PersonRecord, force bool) int {
	type point struct {
		lat, lon float64
		ok       bool
	}
	resolved := map[string]point{}
	count := 0
	for i := range persons {
		if !geocode.ShouldGeocode(persons[i], force) {
			continue
		}
		query := geocode.FacilityQuery(im.Country, persons[i])
		pt, seen := resolved[query]
		if !seen {
			lat, lon, _, _, err := im.Geocoder.Geocode(ctx, query)
			if err != nil {
				im.Logger.Warn().Err(err).Str("query", query).Msg("geocode failed")
			}
			pt = point{lat: lat, lon: lon, ok: err == nil}
			resolved[query] = pt
		}
		if !pt.ok {
			continue
		}
		persons[i].Latitude = models.NewCoordinate(pt.lat)
		persons[i].Longitude = models.NewCoordinate(pt.lon)
		count++
	}
	return count
}
