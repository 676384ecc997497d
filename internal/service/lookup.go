package service

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/prepdash/backend/internal/geocode"
	"github.com/prepdash/backend/internal/models"
	"github.com/prepdash/backend/internal/utils"
)

const (
	DefaultRadiusMiles = 50.0
	// nationwideLocalSplit keeps the local/nearby response shape for the
	// nationwide query; the split itself carries no meaning.
	nationwideLocalSplit = 100

	DefaultCenterLat = 37.773972
	DefaultCenterLon = -122.431297
)

var (
	ErrInvalidZip = errors.New("invalid zip code")

	zipPattern = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
)

// PersonStore is the directory backing the data endpoint.
type PersonStore interface {
	ListPersons(ctx context.Context, states []string) ([]models.PersonRecord, error)
	ListPersonsByZip(ctx context.Context, zip string) ([]models.PersonRecord, error)
	ListMedicalOutsideZip(ctx context.Context, zip string) ([]models.PersonRecord, error)
}

type Directory struct {
	Store    PersonStore
	Geocoder geocode.Geocoder
	Country  string
	Logger   zerolog.Logger
}

// ValidateZip checks the zip code entry form format: five digits with an
// optional four digit extension.
func ValidateZip(zip string) bool {
	return zipPattern.MatchString(strings.TrimSpace(zip))
}

// ParseRadius reads a radius in miles, falling back to the default on
// missing or malformed input.
func ParseRadius(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultRadiusMiles
	}
	r, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return DefaultRadiusMiles
	}
	return r
}

func (d *Directory) Nationwide(ctx context.Context, states []string) (models.DataResponse, error) {
	persons, err := d.Store.ListPersons(ctx, states)
	if err != nil {
		return models.DataResponse{}, err
	}
	resp := models.DataResponse{Local: []models.PersonRecord{}, Nearby: []models.PersonRecord{}}
	if len(persons) <= nationwideLocalSplit {
		resp.Local = append(resp.Local, persons...)
		return resp, nil
	}
	resp.Local = append(resp.Local, persons[:nationwideLocalSplit]...)
	resp.Nearby = append(resp.Nearby, persons[nationwideLocalSplit:]...)
	return resp, nil
}

// Nearby returns the people registered at zip and the medical staff from
// other zip codes within radius miles of it.
func (d *Directory) Nearby(ctx context.Context, zip string, radius float64) (models.DataResponse, error) {
	if len(zip) != 5 || !ValidateZip(zip) {
		return models.DataResponse{}, ErrInvalidZip
	}

	local, err := d.Store.ListPersonsByZip(ctx, zip)
	if err != nil {
		return models.DataResponse{}, err
	}
	lat, lon := d.center(ctx, zip, local)

	others, err := d.Store.ListMedicalOutsideZip(ctx, zip)
	if err != nil {
		return models.DataResponse{}, err
	}
	nearby := []models.PersonRecord{}
	for _, p := range others {
		if !p.Latitude.Valid || !p.Longitude.Valid {
			continue
		}
		if utils.HaversineMiles(lat, lon, p.Latitude.Value, p.Longitude.Value) <= radius {
			nearby = append(nearby, p)
		}
	}
	if local == nil {
		local = []models.PersonRecord{}
	}
	return models.DataResponse{Local: local, Nearby: nearby}, nil
}

func (d *Directory) center(ctx context.Context, zip string, local []models.PersonRecord) (float64, float64) {
	if len(local) > 0 {
		first := local[0]
		if first.Latitude.Valid && first.Longitude.Valid {
			return first.Latitude.Value, first.Longitude.Value
		}
		return DefaultCenterLat, DefaultCenterLon
	}
	if d.Geocoder != nil {
		lat, lon, _, _, err := d.Geocoder.Geocode(ctx, geocode.BuildGeocodeQuery(d.Country, zip))
		if err == nil {
			return lat, lon
		}
		d.Logger.Warn().Err(err).Str("zip_code", zip).Msg("zip centroid geocode failed")
	}
	return DefaultCenterLat, DefaultCenterLon
}
