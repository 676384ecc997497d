package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prepdash/backend/internal/models"
	"github.com/prepdash/backend/internal/service"
)

// Fetcher loads the raw person records for the selected states. An empty
// selection means nationwide.
type Fetcher interface {
	Fetch(ctx context.Context, states []string) (models.DataResponse, error)
}

// HTTPFetcher reads the data endpoint of a running server.
type HTTPFetcher struct {
	BaseURL string
	Client  *http.Client
}

func (f *HTTPFetcher) Fetch(ctx context.Context, states []string) (models.DataResponse, error) {
	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	q := url.Values{}
	q.Set("nationwide", "true")
	for _, s := range states {
		q.Add("states", s)
	}
	endpoint := strings.TrimRight(f.BaseURL, "/") + "/api/data/?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.DataResponse{}, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return models.DataResponse{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.DataResponse{}, fmt.Errorf("data endpoint: %s", resp.Status)
	}

	var out models.DataResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return models.DataResponse{}, fmt.Errorf("decode data response: %w", err)
	}
	return out, nil
}

// DirectoryFetcher reads straight from the directory, for views hosted in
// the server process.
type DirectoryFetcher struct {
	Directory *service.Directory
}

func (f DirectoryFetcher) Fetch(ctx context.Context, states []string) (models.DataResponse, error) {
	return f.Directory.Nationwide(ctx, states)
}
