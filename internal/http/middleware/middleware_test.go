package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/prepdash/backend/internal/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAdminKey(t *testing.T) {
	r := gin.New()
	r.POST("/import", AdminKey("s3cret"), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req, _ := http.NewRequest(http.MethodPost, "/import", nil)
	if w := serve(r, req); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", w.Code)
	}

	req, _ = http.NewRequest(http.MethodPost, "/import", nil)
	req.Header.Set(AdminKeyHeader, "wrong")
	if w := serve(r, req); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong key, got %d", w.Code)
	}

	req, _ = http.NewRequest(http.MethodPost, "/import", nil)
	req.Header.Set(AdminKeyHeader, "s3cret")
	if w := serve(r, req); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 with key, got %d", w.Code)
	}
}

func TestAdminKeyOpenWhenUnset(t *testing.T) {
	r := gin.New()
	r.POST("/import", AdminKey(""), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	req, _ := http.NewRequest(http.MethodPost, "/import", nil)
	if w := serve(r, req); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDHeader)) })

	req, _ := http.NewRequest(http.MethodGet, "/x", nil)
	w := serve(r, req)
	rid := w.Header().Get(RequestIDHeader)
	if !strings.HasPrefix(rid, "req_") || w.Body.String() != rid {
		t.Fatalf("expected generated id, header=%q body=%q", rid, w.Body.String())
	}

	req, _ = http.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "abc")
	if w := serve(r, req); w.Header().Get(RequestIDHeader) != "abc" {
		t.Fatalf("expected incoming id to be kept")
	}
}

func TestMetricsCountsByRoute(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.GET("/api/widgets/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	counter := metrics.RequestsTotal.WithLabelValues(http.MethodGet, "/api/widgets/:id", "200")
	before := testutil.ToFloat64(counter)
	for _, id := range []string{"1", "2"} {
		req, _ := http.NewRequest(http.MethodGet, "/api/widgets/"+id, nil)
		serve(r, req)
	}
	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Fatalf("expected 2 requests counted, got %v", got)
	}
}
