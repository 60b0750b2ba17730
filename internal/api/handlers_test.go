package api

import (
    "bytes"
    "context"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "sync"
    "testing"
    "time"

    "tourplan/internal/cache"
    "tourplan/internal/model"
    "tourplan/internal/planner"
    "tourplan/internal/report"
    "tourplan/internal/routing"
    "tourplan/internal/store"
)

type stubGeo struct {
    mu    sync.Mutex
    calls int
}

func (g *stubGeo) Resolve(ctx context.Context, query string) (model.GeoPoint, error) {
    g.mu.Lock()
    defer g.mu.Unlock()
    g.calls++
    return model.GeoPoint{Lat: float64(g.calls), Lng: -float64(g.calls)}, nil
}

type stubRouter struct{}

func (stubRouter) Route(ctx context.Context, pts []model.GeoPoint) (routing.RouteResult, error) {
    legs := make([]float64, len(pts)-1)
    total := 0.0
    for i := range legs {
        legs[i] = 10
        total += 10
    }
    return routing.RouteResult{Path: pts, LegMiles: legs, TotalMiles: total}, nil
}

func (stubRouter) Leg(ctx context.Context, from, to model.GeoPoint, withSteps bool) (routing.LegDetail, error) {
    return routing.LegDetail{Meters: 17000, DurationSec: 900}, nil
}

func newTestServer(t *testing.T) *Server {
    t.Helper()
    st := store.NewMemory()
    broker := NewBroker()
    pl := planner.New(planner.Options{
        Geocoder: &stubGeo{},
        Router:   stubRouter{},
        Store:    st,
        Snapshot: cache.NewMemory(),
        Now:      func() time.Time { return time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC) },
        OnRouteUpdate: func(ri model.RouteInfo) {
            broker.Publish(routeTopic, SSEEvent{Type: "route.updated", Data: map[string]any{"route": ri}})
        },
    })
    rb := report.NewBuilder(st, stubRouter{}, 0.65)
    rb.Now = func() time.Time { return time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC) }
    return &Server{Planner: pl, Store: st, Report: rb, Broker: broker}
}

func postJSON(t *testing.T, h http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
    t.Helper()
    b, _ := json.Marshal(body)
    rr := httptest.NewRecorder()
    req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
    req.Header.Set("Content-Type", "application/json")
    h(rr, req)
    return rr
}

func addStop(t *testing.T, s *Server, name string) model.Stop {
    t.Helper()
    rr := postJSON(t, s.StopsHandler, "/v1/stops", model.StopIn{Name: name})
    if rr.Code != http.StatusCreated {
        t.Fatalf("add stop: %d %s", rr.Code, rr.Body.String())
    }
    var stop model.Stop
    if err := json.Unmarshal(rr.Body.Bytes(), &stop); err != nil {
        t.Fatalf("decode: %v", err)
    }
    return stop
}

func TestHealthReady(t *testing.T) {
    s := newTestServer(t)
    rr := httptest.NewRecorder()
    s.HealthHandler(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
    if rr.Code != 200 {
        t.Fatalf("health: got %d", rr.Code)
    }
    rr = httptest.NewRecorder()
    s.ReadyHandler(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
    if rr.Code != 200 {
        t.Fatalf("ready: got %d", rr.Code)
    }
}

func TestStopsCreateListDelete(t *testing.T) {
    s := newTestServer(t)
    stop := addStop(t, s, "Nashville, TN")
    addStop(t, s, "Memphis, TN")

    rr := httptest.NewRecorder()
    s.StopsHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/stops", nil))
    if rr.Code != 200 {
        t.Fatalf("list: %d", rr.Code)
    }
    var res struct {
        Items []model.Stop `json:"items"`
    }
    _ = json.Unmarshal(rr.Body.Bytes(), &res)
    if len(res.Items) != 2 {
        t.Fatalf("expected 2 stops, got %d", len(res.Items))
    }

    rr = httptest.NewRecorder()
    s.StopByIDHandler(rr, httptest.NewRequest(http.MethodDelete, "/v1/stops/"+stop.ID, nil))
    if rr.Code != http.StatusNoContent {
        t.Fatalf("delete: %d %s", rr.Code, rr.Body.String())
    }
    rr = httptest.NewRecorder()
    s.StopByIDHandler(rr, httptest.NewRequest(http.MethodDelete, "/v1/stops/"+stop.ID, nil))
    if rr.Code != http.StatusNotFound {
        t.Fatalf("double delete: %d", rr.Code)
    }
}

func TestReorderEndpoint(t *testing.T) {
    s := newTestServer(t)
    a := addStop(t, s, "a")
    addStop(t, s, "b")
    addStop(t, s, "c")

    rr := postJSON(t, s.ReorderHandler, "/v1/stops/reorder", model.ReorderRequest{From: 0, To: 2})
    if rr.Code != 200 {
        t.Fatalf("reorder: %d %s", rr.Code, rr.Body.String())
    }
    var res struct {
        Items []model.Stop `json:"items"`
    }
    _ = json.Unmarshal(rr.Body.Bytes(), &res)
    if res.Items[2].ID != a.ID {
        t.Fatalf("stop not moved: %+v", res.Items)
    }

    rr = postJSON(t, s.ReorderHandler, "/v1/stops/reorder", model.ReorderRequest{From: 0, To: 9})
    if rr.Code != http.StatusConflict {
        t.Fatalf("bad reorder: %d", rr.Code)
    }
}

func TestCommitEndpointConfirmFlow(t *testing.T) {
    s := newTestServer(t)
    if _, err := s.Store.CreateTour(context.Background(), model.TourIn{Title: "t"}); err != nil {
        t.Fatalf("tour: %v", err)
    }
    a := addStop(t, s, "a")
    b := addStop(t, s, "b")

    rr := postJSON(t, func(w http.ResponseWriter, r *http.Request) { s.StopByIDHandler(w, r) },
        "/v1/stops/"+a.ID+"/commit", model.CommitRequest{Date: "2026-09-01"})
    if rr.Code != 200 {
        t.Fatalf("commit a: %d %s", rr.Code, rr.Body.String())
    }

    // a day away from the committed neighbor: 409 with the conflict info
    rr = postJSON(t, func(w http.ResponseWriter, r *http.Request) { s.StopByIDHandler(w, r) },
        "/v1/stops/"+b.ID+"/commit", model.CommitRequest{Date: "2026-09-02"})
    if rr.Code != http.StatusConflict {
        t.Fatalf("tight commit: %d %s", rr.Code, rr.Body.String())
    }
    var conflict struct {
        SuggestedDate   string `json:"suggestedDate"`
        Neighbor        string `json:"neighbor"`
        ConfirmRequired bool   `json:"confirmRequired"`
    }
    _ = json.Unmarshal(rr.Body.Bytes(), &conflict)
    if !conflict.ConfirmRequired || conflict.Neighbor != "a" {
        t.Fatalf("conflict payload: %s", rr.Body.String())
    }

    rr = postJSON(t, func(w http.ResponseWriter, r *http.Request) { s.StopByIDHandler(w, r) },
        "/v1/stops/"+b.ID+"/commit", model.CommitRequest{Date: "2026-09-02", Confirm: true})
    if rr.Code != 200 {
        t.Fatalf("confirmed commit: %d %s", rr.Code, rr.Body.String())
    }
    var committed model.Stop
    _ = json.Unmarshal(rr.Body.Bytes(), &committed)
    if !committed.Committed || committed.GigID == "" || !committed.GigLinked {
        t.Fatalf("commit result: %+v", committed)
    }

    // committed stops cannot be deleted
    rr2 := httptest.NewRecorder()
    s.StopByIDHandler(rr2, httptest.NewRequest(http.MethodDelete, "/v1/stops/"+a.ID, nil))
    if rr2.Code != http.StatusConflict {
        t.Fatalf("delete committed: %d", rr2.Code)
    }
}

func TestRouteEndpointAndStreamEvents(t *testing.T) {
    s := newTestServer(t)
    ch := s.Broker.Subscribe(routeTopic)
    defer s.Broker.Unsubscribe(routeTopic, ch)

    addStop(t, s, "a")
    addStop(t, s, "b")
    s.Planner.WaitForRecompute()

    rr := httptest.NewRecorder()
    s.RouteHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/route", nil))
    if rr.Code != 200 {
        t.Fatalf("route: %d", rr.Code)
    }
    var route model.RouteInfo
    _ = json.Unmarshal(rr.Body.Bytes(), &route)
    if route.TotalMiles != 10 || len(route.LegMiles) != 1 {
        t.Fatalf("route body: %+v", route)
    }

    // mutations published route.updated events
    select {
    case evt := <-ch:
        if evt.Type != "route.updated" {
            t.Fatalf("event type: %s", evt.Type)
        }
    case <-time.After(time.Second):
        t.Fatal("no route.updated event")
    }
}

func TestToursEndpoints(t *testing.T) {
    s := newTestServer(t)
    rr := postJSON(t, s.ToursHandler, "/v1/tours", model.TourIn{Title: "Fall Run"})
    if rr.Code != http.StatusCreated {
        t.Fatalf("create tour: %d", rr.Code)
    }
    var tour model.Tour
    _ = json.Unmarshal(rr.Body.Bytes(), &tour)
    if !tour.IsDefault {
        t.Fatalf("first tour should default: %+v", tour)
    }

    rr = postJSON(t, s.ToursHandler, "/v1/tours", model.TourIn{Title: "Winter Run"})
    var second model.Tour
    _ = json.Unmarshal(rr.Body.Bytes(), &second)

    rr2 := httptest.NewRecorder()
    s.TourByIDHandler(rr2, httptest.NewRequest(http.MethodPost, "/v1/tours/"+second.ID+"/default", nil))
    if rr2.Code != http.StatusNoContent {
        t.Fatalf("set default: %d", rr2.Code)
    }

    rr2 = httptest.NewRecorder()
    s.TourByIDHandler(rr2, httptest.NewRequest(http.MethodGet, "/v1/tours/"+second.ID, nil))
    if rr2.Code != 200 {
        t.Fatalf("get tour: %d", rr2.Code)
    }
    _ = json.Unmarshal(rr2.Body.Bytes(), &second)
    if !second.IsDefault {
        t.Fatalf("default not set: %+v", second)
    }

    rr = postJSON(t, s.ToursHandler, "/v1/tours", model.TourIn{})
    if rr.Code != http.StatusBadRequest {
        t.Fatalf("missing title: %d", rr.Code)
    }
}

func TestItineraryEndpoint(t *testing.T) {
    s := newTestServer(t)
    if _, err := s.Store.CreateTour(context.Background(), model.TourIn{Title: "t"}); err != nil {
        t.Fatalf("tour: %v", err)
    }
    a := addStop(t, s, "a")
    b := addStop(t, s, "b")
    for i, stop := range []model.Stop{a, b} {
        date := map[int]string{0: "2026-09-01", 1: "2026-09-05"}[i]
        rr := postJSON(t, func(w http.ResponseWriter, r *http.Request) { s.StopByIDHandler(w, r) },
            "/v1/stops/"+stop.ID+"/commit", model.CommitRequest{Date: date})
        if rr.Code != 200 {
            t.Fatalf("commit: %d %s", rr.Code, rr.Body.String())
        }
    }

    rr := httptest.NewRecorder()
    s.ItineraryHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/reports/itinerary?financials=true", nil))
    if rr.Code != 200 {
        t.Fatalf("itinerary: %d %s", rr.Code, rr.Body.String())
    }
    var rep model.ItineraryReport
    _ = json.Unmarshal(rr.Body.Bytes(), &rep)
    if len(rep.Stops) != 2 || rep.TotalMiles != 11 || rep.Financials == nil {
        t.Fatalf("report: %+v", rep)
    }

    rr = httptest.NewRecorder()
    s.ItineraryHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/reports/itinerary?tourId=missing", nil))
    if rr.Code != http.StatusNotFound {
        t.Fatalf("missing tour: %d", rr.Code)
    }
}
