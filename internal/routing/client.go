// Package routing computes driving routes over ordered coordinate lists
// using an OSRM-compatible directions service.
package routing

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "net/http"
    "strings"
    "time"

    "tourplan/internal/metrics"
    "tourplan/internal/model"
)

// MetersToMiles is the provider's meters-to-miles conversion factor.
const MetersToMiles = 0.000621371

// ErrNoRoute means the provider answered but found no driving route.
var ErrNoRoute = errors.New("no route found")

// RouteResult is the outcome of a full-sequence route request. Leg miles
// are kept unrounded; presentation code rounds where it needs to.
type RouteResult struct {
    Path       []model.GeoPoint
    LegMiles   []float64
    TotalMiles float64
}

// Step is a single turn-by-turn maneuver within a leg.
type Step struct {
    ManeuverType string
    Modifier     string
    RoadName     string
    Meters       float64
}

// LegDetail is one stop-to-stop leg from the per-leg call path, with
// optional turn-by-turn steps for itinerary reports.
type LegDetail struct {
    Meters      float64
    DurationSec float64
    Steps       []Step
}

// Router is the full-sequence interface the planner depends on.
type Router interface {
    Route(ctx context.Context, pts []model.GeoPoint) (RouteResult, error)
}

// LegRouter is the per-leg interface the report aggregator depends on.
type LegRouter interface {
    Leg(ctx context.Context, from, to model.GeoPoint, withSteps bool) (LegDetail, error)
}

// Client talks to an OSRM /route/v1/driving endpoint.
type Client struct {
    BaseURL string
    HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
    return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: &http.Client{Timeout: 15 * time.Second}}
}

type osrmResponse struct {
    Code   string `json:"code"`
    Routes []struct {
        Geometry string  `json:"geometry"`
        Distance float64 `json:"distance"`
        Duration float64 `json:"duration"`
        Legs     []struct {
            Distance float64 `json:"distance"`
            Duration float64 `json:"duration"`
            Steps    []struct {
                Name     string  `json:"name"`
                Distance float64 `json:"distance"`
                Maneuver struct {
                    Type     string `json:"type"`
                    Modifier string `json:"modifier"`
                } `json:"maneuver"`
            } `json:"steps"`
        } `json:"legs"`
    } `json:"routes"`
}

// Route issues a single request over the whole stop sequence with a
// full-geometry overview. Requires at least two points.
func (c *Client) Route(ctx context.Context, pts []model.GeoPoint) (RouteResult, error) {
    if len(pts) < 2 {
        return RouteResult{}, fmt.Errorf("need at least 2 points, have %d", len(pts))
    }
    u := c.BaseURL + "/route/v1/driving/" + waypoints(pts) + "?overview=full"
    res, err := c.fetch(ctx, u)
    if err != nil {
        metrics.RoutingRequests.WithLabelValues("full", "error").Inc()
        return RouteResult{}, err
    }
    r := res.Routes[0]
    out := RouteResult{Path: DecodePolyline(r.Geometry)}
    for _, leg := range r.Legs {
        miles := leg.Distance * MetersToMiles
        out.LegMiles = append(out.LegMiles, miles)
        out.TotalMiles += miles
    }
    metrics.RoutingRequests.WithLabelValues("full", "ok").Inc()
    return out, nil
}

// Leg issues a request for a single consecutive pair, optionally with
// turn-by-turn steps. Used by the report path, which routes the filtered
// committed sequence pair by pair so a failed leg can be skipped without
// losing the rest.
func (c *Client) Leg(ctx context.Context, from, to model.GeoPoint, withSteps bool) (LegDetail, error) {
    u := c.BaseURL + "/route/v1/driving/" + waypoints([]model.GeoPoint{from, to}) + "?overview=full"
    if withSteps {
        u += "&steps=true&annotations=true"
    }
    res, err := c.fetch(ctx, u)
    if err != nil {
        metrics.RoutingRequests.WithLabelValues("leg", "error").Inc()
        return LegDetail{}, err
    }
    r := res.Routes[0]
    out := LegDetail{Meters: r.Distance, DurationSec: r.Duration}
    if len(r.Legs) > 0 {
        for _, s := range r.Legs[0].Steps {
            out.Steps = append(out.Steps, Step{
                ManeuverType: s.Maneuver.Type,
                Modifier:     s.Maneuver.Modifier,
                RoadName:     s.Name,
                Meters:       s.Distance,
            })
        }
    }
    metrics.RoutingRequests.WithLabelValues("leg", "ok").Inc()
    return out, nil
}

func (c *Client) fetch(ctx context.Context, u string) (*osrmResponse, error) {
    req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
    if err != nil {
        return nil, err
    }
    resp, err := c.HTTP.Do(req)
    if err != nil {
        return nil, err
    }
    defer func() { _ = resp.Body.Close() }()
    if resp.StatusCode != http.StatusOK {
        return nil, fmt.Errorf("router status %d", resp.StatusCode)
    }
    var res osrmResponse
    if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
        return nil, err
    }
    if res.Code != "Ok" || len(res.Routes) == 0 {
        return nil, ErrNoRoute
    }
    return &res, nil
}

// waypoints renders points as the lng,lat;lng,lat path segment the
// provider expects.
func waypoints(pts []model.GeoPoint) string {
    parts := make([]string, len(pts))
    for i, p := range pts {
        parts[i] = fmt.Sprintf("%f,%f", p.Lng, p.Lat)
    }
    return strings.Join(parts, ";")
}
