// Package geo resolves free-text addresses to coordinates via a
// Nominatim-compatible search endpoint.
package geo

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "net/http"
    "net/url"
    "strings"
    "time"

    "golang.org/x/time/rate"

    "tourplan/internal/metrics"
    "tourplan/internal/model"
)

// ErrNotFound means the provider returned zero results for the query.
var ErrNotFound = errors.New("location not found")

// Geocoder is the lookup interface the planner depends on.
type Geocoder interface {
    Resolve(ctx context.Context, query string) (model.GeoPoint, error)
}

// Client talks to a Nominatim-style /search endpoint. Lookups are
// rate-limited client-side; the public instance allows one request per
// second.
type Client struct {
    BaseURL   string
    UserAgent string
    HTTP      *http.Client
    limiter   *rate.Limiter
}

// NewClient builds a Client with the given requests-per-second limit.
func NewClient(baseURL, userAgent string, rps float64) *Client {
    if rps <= 0 {
        rps = 1
    }
    return &Client{
        BaseURL:   strings.TrimRight(baseURL, "/"),
        UserAgent: userAgent,
        HTTP:      &http.Client{Timeout: 10 * time.Second},
        limiter:   rate.NewLimiter(rate.Limit(rps), 1),
    }
}

type searchResult struct {
    Lat         string `json:"lat"`
    Lon         string `json:"lon"`
    DisplayName string `json:"display_name"`
}

// Resolve returns the first match's coordinates. ErrNotFound when the
// provider has no results; transport and decode failures are returned
// as-is so the caller can abort the whole add-stop operation.
func (c *Client) Resolve(ctx context.Context, query string) (model.GeoPoint, error) {
    if err := c.limiter.Wait(ctx); err != nil {
        return model.GeoPoint{}, err
    }
    u := fmt.Sprintf("%s/search?format=json&q=%s", c.BaseURL, url.QueryEscape(query))
    req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
    if err != nil {
        return model.GeoPoint{}, err
    }
    if c.UserAgent != "" {
        req.Header.Set("User-Agent", c.UserAgent)
    }
    resp, err := c.HTTP.Do(req)
    if err != nil {
        metrics.GeocodeRequests.WithLabelValues("error").Inc()
        return model.GeoPoint{}, err
    }
    defer func() { _ = resp.Body.Close() }()
    if resp.StatusCode != http.StatusOK {
        metrics.GeocodeRequests.WithLabelValues("error").Inc()
        return model.GeoPoint{}, fmt.Errorf("geocoder status %d", resp.StatusCode)
    }
    var results []searchResult
    if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
        metrics.GeocodeRequests.WithLabelValues("error").Inc()
        return model.GeoPoint{}, err
    }
    if len(results) == 0 {
        metrics.GeocodeRequests.WithLabelValues("not_found").Inc()
        return model.GeoPoint{}, ErrNotFound
    }
    var pt model.GeoPoint
    if _, err := fmt.Sscanf(results[0].Lat, "%f", &pt.Lat); err != nil {
        return model.GeoPoint{}, fmt.Errorf("bad lat %q", results[0].Lat)
    }
    if _, err := fmt.Sscanf(results[0].Lon, "%f", &pt.Lng); err != nil {
        return model.GeoPoint{}, fmt.Errorf("bad lon %q", results[0].Lon)
    }
    metrics.GeocodeRequests.WithLabelValues("ok").Inc()
    return pt, nil
}

// BuildQuery assembles the geocoder query from postal parts, omitting
// empty components.
func BuildQuery(in model.StopIn) string {
    parts := []string{}
    for _, p := range []string{in.Address, in.City, in.State, in.Zip} {
        if strings.TrimSpace(p) != "" {
            parts = append(parts, strings.TrimSpace(p))
        }
    }
    if len(parts) == 0 {
        return strings.TrimSpace(in.Name)
    }
    return strings.Join(parts, ", ")
}
