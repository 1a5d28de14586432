// Package usgs fetches earthquake events from the USGS fdsnws feed.
package usgs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/seismonet/quake-risk-service/internal/domain"
)

// Client queries the USGS fdsnws event API for GeoJSON earthquake records.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a USGS feed client. baseURL is the fdsnws query
// endpoint, e.g. https://earthquake.usgs.gov/fdsnws/event/1/query.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		logger:  logger,
	}
}

// FetchEvents returns events between start and end with magnitude at or
// above minMagnitude, up to limit records. Features the feed returns in a
// shape we cannot use are skipped with a warning; only transport and decode
// failures are errors.
func (c *Client) FetchEvents(ctx context.Context, start, end time.Time, minMagnitude float64, limit int) ([]domain.Earthquake, error) {
	params := url.Values{
		"format":       {"geojson"},
		"starttime":    {start.UTC().Format("2006-01-02")},
		"endtime":      {end.UTC().Format("2006-01-02")},
		"minmagnitude": {strconv.FormatFloat(minMagnitude, 'f', -1, 64)},
		"limit":        {strconv.Itoa(limit)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("usgs feed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("usgs API error: status %d: %s", resp.StatusCode, body)
	}

	var feed response
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	events := make([]domain.Earthquake, 0, len(feed.Features))
	for _, f := range feed.Features {
		event, err := parseFeature(f)
		if err != nil {
			c.logger.Warn("skipping malformed feature", "feature_id", f.ID, "error", err)
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

// parseFeature converts one GeoJSON feature into an Earthquake. Coordinates
// are [longitude, latitude, depth]; depth defaults to 0 when absent and
// magnitude stays nil when the feed has not assigned one yet.
func parseFeature(f feature) (domain.Earthquake, error) {
	if f.ID == "" {
		return domain.Earthquake{}, fmt.Errorf("feature has no id")
	}
	if len(f.Geometry.Coordinates) < 2 {
		return domain.Earthquake{}, fmt.Errorf("feature has %d coordinates", len(f.Geometry.Coordinates))
	}
	if f.Properties.Time == 0 {
		return domain.Earthquake{}, fmt.Errorf("feature has no timestamp")
	}

	depth := 0.0
	if len(f.Geometry.Coordinates) > 2 {
		depth = f.Geometry.Coordinates[2]
	}

	region := f.Properties.Place
	if region == "" {
		region = "Unknown"
	}

	return domain.Earthquake{
		USGSID:    f.ID,
		Longitude: f.Geometry.Coordinates[0],
		Latitude:  f.Geometry.Coordinates[1],
		Magnitude: f.Properties.Mag,
		DepthKm:   &depth,
		Region:    region,
		Time:      time.UnixMilli(f.Properties.Time).UTC(),
	}, nil
}

// USGS GeoJSON response types.

type response struct {
	Features []feature `json:"features"`
}

type feature struct {
	ID         string     `json:"id"`
	Properties properties `json:"properties"`
	Geometry   geometry   `json:"geometry"`
}

type properties struct {
	Mag   *float64 `json:"mag"`
	Place string   `json:"place"`
	Time  int64    `json:"time"` // millisecond epoch
}

type geometry struct {
	Coordinates []float64 `json:"coordinates"` // [lon, lat, depth]
}
