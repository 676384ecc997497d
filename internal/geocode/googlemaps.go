package geocode

import (
	"context"
	"fmt"
	"sync"

	"googlemaps.github.io/maps"
)

// GoogleGeocoder resolves queries through the Google Maps geocoding API.
type GoogleGeocoder struct {
	client *maps.Client
	region string

	mu    sync.Mutex
	cache map[string]nominatimResult
}

func NewGoogleGeocoder(apiKey string, region string) (*GoogleGeocoder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("google maps api key is empty")
	}
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	return &GoogleGeocoder{client: client, region: region, cache: map[string]nominatimResult{}}, nil
}

func (g *GoogleGeocoder) Geocode(ctx context.Context, query string) (float64, float64, string, float64, error) {
	g.mu.Lock()
	if cached, ok := g.cache[query]; ok {
		g.mu.Unlock()
		return cached.Lat, cached.Lon, cached.DisplayName, cached.Confidence, nil
	}
	g.mu.Unlock()

	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{Address: query, Region: g.region})
	if err != nil {
		observe("google", err)
		return 0, 0, "", 0, err
	}
	result, err := parseGoogleResults(results)
	observe("google", err)
	if err != nil {
		return 0, 0, "", 0, err
	}

	g.mu.Lock()
	g.cache[query] = result
	g.mu.Unlock()
	return result.Lat, result.Lon, result.DisplayName, result.Confidence, nil
}

func parseGoogleResults(results []maps.GeocodingResult) (nominatimResult, error) {
	if len(results) == 0 {
		return nominatimResult{}, ErrNotFound
	}
	r := results[0]
	return nominatimResult{
		Lat:         r.Geometry.Location.Lat,
		Lon:         r.Geometry.Location.Lng,
		DisplayName: r.FormattedAddress,
		Confidence:  locationTypeConfidence(r.Geometry.LocationType),
	}, nil
}

func locationTypeConfidence(locationType string) float64 {
	switch locationType {
	case "ROOFTOP":
		return 1.0
	case "RANGE_INTERPOLATED":
		return 0.8
	case "GEOMETRIC_CENTER":
		return 0.6
	default:
		return 0.4
	}
}
