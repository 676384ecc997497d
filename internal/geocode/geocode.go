package geocode

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/prepdash/backend/internal/metrics"
	"github.com/prepdash/backend/internal/models"
)

var ErrNotFound = errors.New("geocode not found")

type Geocoder interface {
	Geocode(ctx context.Context, query string) (lat float64, lon float64, displayName string, confidence float64, err error)
}

// BuildGeocodeQuery joins the non-empty parts, country first.
func BuildGeocodeQuery(country string, parts ...string) string {
	out := []string{}
	if c := strings.TrimSpace(country); c != "" {
		out = append(out, c)
	}
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}

// FacilityQuery builds the lookup for a person's facility address.
func FacilityQuery(country string, p models.PersonRecord) string {
	return BuildGeocodeQuery(country, p.Location, p.City, p.State, p.ZipCode)
}

func ShouldGeocode(p models.PersonRecord, force bool) bool {
	if force {
		return true
	}
	return !p.Latitude.Valid || !p.Longitude.Valid
}

func observe(provider string, err error) {
	result := "ok"
	switch {
	case errors.Is(err, ErrNotFound):
		result = "not_found"
	case err != nil:
		result = "error"
	}
	metrics.GeocodeRequestsTotal.WithLabelValues(provider, result).Inc()
}

// New picks a geocoder by provider name. "none" disables geocoding and
// returns a nil Geocoder.
func New(provider, nominatimURL, googleAPIKey, region string) (Geocoder, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", "nominatim":
		return &NominatimGeocoder{BaseURL: nominatimURL, CountryCodes: region}, nil
	case "google":
		g, err := NewGoogleGeocoder(googleAPIKey, region)
		if err != nil {
			return nil, err
		}
		return g, nil
	case "none", "off":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown geocoder %q", provider)
	}
}
