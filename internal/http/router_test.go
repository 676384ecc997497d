package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/prepdash/backend/internal/config"
	"github.com/prepdash/backend/internal/db"
	"github.com/prepdash/backend/internal/kv"
	"github.com/prepdash/backend/internal/mail"
	"github.com/prepdash/backend/internal/service"
)

type okStore struct{}

func (okStore) Ping(ctx context.Context) error { return nil }

func (okStore) CountPersons(ctx context.Context) (int64, error) { return 0, nil }

func (okStore) GetLatestRun(ctx context.Context) (db.ImportRun, error) {
	return db.ImportRun{ID: 1, Status: "SUCCESS"}, nil
}

func testConfig() config.Config {
	return config.Config{CORSAllowed: "*", AdminKey: "k", MaxUploadSizeMB: 1}
}

func TestRouterRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dir := &service.Directory{Logger: zerolog.Nop()}
	r := Router(testConfig(), okStore{}, dir, nil, mail.LogSender{Logger: zerolog.Nop()}, kv.NewMemory(), nil, zerolog.Nop())

	cases := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/api/regions", http.StatusOK},
		{http.MethodGet, "/api/layouts", http.StatusOK},
		{http.MethodGet, "/api/imports/latest", http.StatusOK},
		{http.MethodPost, "/api/import", http.StatusUnauthorized},
		{http.MethodGet, "/api/data/?zip_code=1", http.StatusBadRequest},
	}
	for _, tc := range cases {
		req, _ := http.NewRequest(tc.method, tc.path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != tc.want {
			t.Fatalf("%s %s: expected %d, got %d", tc.method, tc.path, tc.want, w.Code)
		}
		if w.Header().Get("X-Request-Id") == "" {
			t.Fatalf("%s %s: missing request id", tc.method, tc.path)
		}
	}
}

func TestRouterExposesMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := Router(testConfig(), okStore{}, &service.Directory{}, nil, mail.LogSender{}, kv.NewMemory(), nil, zerolog.Nop())

	req, _ := http.NewRequest(http.MethodGet, "/healthz", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	req, _ = http.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "prepdash_http_requests_total") {
		t.Fatalf("expected request counter in metrics output")
	}
}
