package gbp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/infinitas/crm/internal/config"
)

// LocationFetcher pulls fresh location data from the Business Information API.
type LocationFetcher interface {
	FetchLocation(ctx context.Context, accessToken, locationID string) (map[string]any, error)
}

// googleClient is the outbound API client. All calls pass through a shared
// token-bucket throttle so a burst of tenant syncs cannot exhaust the
// upstream quota.
type googleClient struct {
	http    *http.Client
	limiter *rate.Limiter
	baseURL string
}

// NewGoogleClient creates a throttled Business Information API client.
func NewGoogleClient(cfg config.GBPConfig) LocationFetcher {
	return &googleClient{
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		baseURL: cfg.BaseURL,
	}
}

// FetchLocation retrieves one location resource. Blocks on the throttle
// until a slot is available or ctx is done.
func (c *googleClient) FetchLocation(ctx context.Context, accessToken, locationID string) (map[string]any, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for api slot: %w", err)
	}

	url := fmt.Sprintf("%s/%s?readMask=title,phoneNumbers,categories,storefrontAddress,websiteUri,regularHours,metadata", c.baseURL, locationID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building location request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching location: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading location response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("location fetch returned %d", resp.StatusCode)
	}

	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("decoding location response: %w", err)
	}
	data["fetched_at"] = time.Now().UTC().Format(time.RFC3339)
	return data, nil
}
