package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/prepdash/backend/internal/metrics"
)

func TestParseNominatimItems(t *testing.T) {
	items := []nominatimItem{
		{
			Lat:         "27.9506",
			Lon:         "-82.4572",
			DisplayName: "Tampa, Hillsborough County, Florida, United States",
			Importance:  0.72,
		},
	}
	res, err := parseNominatimItems(items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Lat != 27.9506 || res.Lon != -82.4572 {
		t.Fatalf("unexpected coordinates: %+v", res)
	}
	if res.DisplayName != "Tampa, Hillsborough County, Florida, United States" {
		t.Fatalf("unexpected display name: %s", res.DisplayName)
	}
	if res.Confidence != 0.72 {
		t.Fatalf("unexpected confidence: %f", res.Confidence)
	}
}

func TestParseNominatimItemsEmpty(t *testing.T) {
	if _, err := parseNominatimItems(nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNominatimGeocodeCachesByQuery(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.URL.Query().Get("countrycodes") != "us" {
			t.Errorf("expected countrycodes=us, got %q", r.URL.RawQuery)
		}
		if r.Header.Get("User-Agent") != "prepdash-test" {
			t.Errorf("unexpected user agent %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"27.9506","lon":"-82.4572","display_name":"Tampa","importance":0.6}]`))
	}))
	defer srv.Close()

	g := &NominatimGeocoder{BaseURL: srv.URL, UserAgent: "prepdash-test", MinInterval: time.Millisecond, CountryCodes: "us"}
	for i := 0; i < 2; i++ {
		lat, lon, name, _, err := g.Geocode(context.Background(), "USA, 33612")
		if err != nil {
			t.Fatalf("geocode: %v", err)
		}
		if lat != 27.9506 || lon != -82.4572 || name != "Tampa" {
			t.Fatalf("unexpected result %f %f %s", lat, lon, name)
		}
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected one upstream call, got %d", got)
	}
}

func TestNominatimGeocodeHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	g := &NominatimGeocoder{BaseURL: srv.URL, MinInterval: time.Millisecond}
	if _, _, _, _, err := g.Geocode(context.Background(), "USA, 00000"); err == nil {
		t.Fatalf("expected error on 503")
	}
}

func TestNominatimGeocodeCountsLookups(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("q") == "USA, 99999" {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_, _ = w.Write([]byte(`[{"lat":"29.7604","lon":"-95.3698","display_name":"Houston","importance":0.5}]`))
	}))
	defer srv.Close()

	ok := metrics.GeocodeRequestsTotal.WithLabelValues("nominatim", "ok")
	missing := metrics.GeocodeRequestsTotal.WithLabelValues("nominatim", "not_found")
	okBefore, missingBefore := testutil.ToFloat64(ok), testutil.ToFloat64(missing)

	g := &NominatimGeocoder{BaseURL: srv.URL, MinInterval: time.Millisecond}
	if _, _, _, _, err := g.Geocode(context.Background(), "USA, 77030"); err != nil {
		t.Fatalf("geocode: %v", err)
	}
	if _, _, _, _, err := g.Geocode(context.Background(), "USA, 99999"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if got := testutil.ToFloat64(ok) - okBefore; got != 1 {
		t.Fatalf("expected one ok lookup, got %v", got)
	}
	if got := testutil.ToFloat64(missing) - missingBefore; got != 1 {
		t.Fatalf("expected one not_found lookup, got %v", got)
	}
}
