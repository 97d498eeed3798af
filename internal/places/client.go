// Package places provides a client for the LocationIQ search API.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/eventpilot/eventpilot/internal/types"
	"go.uber.org/zap"
)

// Client handles communication with the LocationIQ API.
type Client struct {
	baseURL    string
	apiKey     string
	limit      int
	httpClient *http.Client
	logger     *zap.Logger
}

// Config holds client configuration.
type Config struct {
	BaseURL string        // e.g., "https://us1.locationiq.com/v1"
	APIKey  string        // LocationIQ API key
	Limit   int           // Max results per search
	Timeout time.Duration // Request timeout
}

// DefaultConfig returns sensible defaults; the API key must still be set.
func DefaultConfig() Config {
	return Config{
		BaseURL: "https://us1.locationiq.com/v1",
		Limit:   5,
		Timeout: 15 * time.Second,
	}
}

// NewClient creates a new LocationIQ client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Limit == 0 {
		cfg.Limit = 5
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		limit:   cfg.Limit,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// searchResult is one entry of the LocationIQ search response.
type searchResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Type        string `json:"type"`
	Icon        string `json:"icon"`
}

// FindPlaces searches for venues in a region. When brand is set it takes
// precedence over the generic query type (e.g. "McDonald's" over
// "restaurant"). Filler like "around" is stripped from the region before
// the combined query is built.
func (c *Client) FindPlaces(ctx context.Context, queryType, brand, region string) ([]types.Place, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("no LocationIQ API key configured")
	}

	query := queryType
	if brand != "" {
		query = brand
	}
	region = strings.TrimSpace(strings.ReplaceAll(region, "around", ""))

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("q", strings.TrimSpace(query+" "+region))
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(c.limit))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/search.php?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("locationiq returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	c.logger.Debug("place search complete",
		zap.String("query", query),
		zap.String("region", region),
		zap.Int("results", len(results)))

	found := make([]types.Place, 0, len(results))
	for _, r := range results {
		found = append(found, types.Place{
			Name:      r.DisplayName,
			Latitude:  r.Lat,
			Longitude: r.Lon,
			Type:      r.Type,
			Icon:      r.Icon,
		})
	}
	return found, nil
}
