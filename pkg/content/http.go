package content

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

func NewHTTPSource(baseURL string, client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: 8 * time.Second}
	}
	return &HTTPSource{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// HTTPSource reads the list layout from static hosting, e.g. the data directory of a deployed
// site.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

func (s *HTTPSource) Fetch(ctx context.Context) ([]Entry, error) {
	return fetchEntries(ctx, s.open)
}

func (s *HTTPSource) Packs(ctx context.Context) ([]Pack, error) {
	return fetchPacks(ctx, s.open)
}

func (s *HTTPSource) open(ctx context.Context, name string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/"+name, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, fmt.Errorf("%s: %w", name, errMissing)
	case resp.StatusCode != http.StatusOK:
		resp.Body.Close()
		return nil, fmt.Errorf("%s: unexpected status %d", name, resp.StatusCode)
	}
	return resp.Body, nil
}
