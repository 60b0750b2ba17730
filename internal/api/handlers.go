package api

import (
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "net/http"
    "strings"
    "time"

    "tourplan/internal/buildinfo"
    "tourplan/internal/geo"
    "tourplan/internal/model"
    "tourplan/internal/planner"
    "tourplan/internal/store"
)

// StopsHandler handles GET and POST /v1/stops
func (s *Server) StopsHandler(w http.ResponseWriter, r *http.Request) {
    switch r.Method {
    case http.MethodGet:
        writeJSON(w, 200, map[string]any{"items": s.Planner.Stops()})
    case http.MethodPost:
        var in model.StopIn
        if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
            writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
            return
        }
        stop, err := s.Planner.AddStop(r.Context(), in)
        if errors.Is(err, geo.ErrNotFound) {
            writeProblem(w, http.StatusNotFound, "Address not found", err.Error(), r.URL.Path)
            return
        }
        if err != nil {
            writeProblem(w, http.StatusBadGateway, "Geocoding failed", err.Error(), r.URL.Path)
            return
        }
        writeJSON(w, http.StatusCreated, stop)
    default:
        w.WriteHeader(http.StatusMethodNotAllowed)
    }
}

// ReorderHandler handles POST /v1/stops/reorder
func (s *Server) ReorderHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    var req model.ReorderRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
        return
    }
    stops, err := s.Planner.Reorder(r.Context(), req.From, req.To)
    if errors.Is(err, planner.ErrReorderRejected) {
        writeProblem(w, http.StatusConflict, "Reorder rejected", err.Error(), r.URL.Path)
        return
    }
    if err != nil {
        writeProblem(w, http.StatusInternalServerError, "Reorder failed", err.Error(), r.URL.Path)
        return
    }
    writeJSON(w, 200, map[string]any{"items": stops})
}

// StopByIDHandler handles DELETE /v1/stops/{id} and POST /v1/stops/{id}/commit
func (s *Server) StopByIDHandler(w http.ResponseWriter, r *http.Request) {
    rest := strings.TrimPrefix(r.URL.Path, "/v1/stops/")
    parts := strings.Split(rest, "/")
    if len(parts) == 0 || parts[0] == "" {
        writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
        return
    }
    id := parts[0]

    if len(parts) > 1 && parts[1] == "commit" {
        if r.Method != http.MethodPost {
            w.WriteHeader(http.StatusMethodNotAllowed)
            return
        }
        s.commitStop(w, r, id)
        return
    }

    if r.Method != http.MethodDelete {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    err := s.Planner.DeleteStop(r.Context(), id)
    switch {
    case errors.Is(err, planner.ErrStopNotFound):
        writeProblem(w, http.StatusNotFound, "Stop not found", "", r.URL.Path)
    case errors.Is(err, planner.ErrCommittedDelete):
        writeProblem(w, http.StatusConflict, "Stop is committed", err.Error(), r.URL.Path)
    case err != nil:
        writeProblem(w, http.StatusInternalServerError, "Delete failed", err.Error(), r.URL.Path)
    default:
        w.WriteHeader(http.StatusNoContent)
    }
}

func (s *Server) commitStop(w http.ResponseWriter, r *http.Request, id string) {
    var req model.CommitRequest
    if r.Body != nil {
        if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
            writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
            return
        }
    }
    stop, err := s.Planner.CommitStop(r.Context(), id, req)
    var conf *planner.ConfirmRequiredError
    switch {
    case errors.As(err, &conf):
        // the caller repeats the request with confirm=true to proceed
        writeJSON(w, http.StatusConflict, map[string]any{
            "title":           "Tight schedule",
            "detail":          conf.Error(),
            "suggestedDate":   conf.SuggestedDate,
            "neighbor":        conf.NeighborName,
            "neighborDate":    conf.NeighborDate,
            "confirmRequired": true,
        })
    case errors.Is(err, planner.ErrStopNotFound):
        writeProblem(w, http.StatusNotFound, "Stop not found", "", r.URL.Path)
    case errors.Is(err, planner.ErrAlreadyCommitted):
        writeProblem(w, http.StatusConflict, "Already committed", err.Error(), r.URL.Path)
    case errors.Is(err, planner.ErrBadDate), errors.Is(err, planner.ErrDateOutOfOrder):
        writeProblem(w, http.StatusUnprocessableEntity, "Invalid date", err.Error(), r.URL.Path)
    case err != nil:
        writeProblem(w, http.StatusInternalServerError, "Commit failed", err.Error(), r.URL.Path)
    default:
        writeJSON(w, 200, stop)
    }
}

// RouteHandler handles GET /v1/route
func (s *Server) RouteHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodGet {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    writeJSON(w, 200, s.Planner.Route())
}

// RouteStreamHandler handles GET /v1/route/stream (SSE)
func (s *Server) RouteStreamHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodGet {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    flusher, ok := w.(http.Flusher)
    if !ok {
        writeProblem(w, 500, "Streaming unsupported", "", r.URL.Path)
        return
    }
    w.Header().Set("Content-Type", "text/event-stream")
    w.Header().Set("Cache-Control", "no-cache")
    w.Header().Set("Connection", "keep-alive")

    ch := s.Broker.Subscribe(routeTopic)
    defer s.Broker.Unsubscribe(routeTopic, ch)

    // initial heartbeat
    fmt.Fprintf(w, "event: heartbeat\n")
    fmt.Fprintf(w, "data: {\"ts\":\"%s\"}\n\n", time.Now().Format(time.RFC3339))
    flusher.Flush()

    notify := r.Context().Done()
    for {
        select {
        case <-notify:
            return
        case evt, ok := <-ch:
            if !ok {
                return
            }
            b, _ := json.Marshal(evt.Data)
            fmt.Fprintf(w, "event: %s\n", evt.Type)
            fmt.Fprintf(w, "data: %s\n\n", string(b))
            flusher.Flush()
        case <-time.After(15 * time.Second):
            fmt.Fprintf(w, "event: heartbeat\n")
            fmt.Fprintf(w, "data: {\"ts\":\"%s\"}\n\n", time.Now().Format(time.RFC3339))
            flusher.Flush()
        }
    }
}

// ToursHandler handles GET and POST /v1/tours
func (s *Server) ToursHandler(w http.ResponseWriter, r *http.Request) {
    switch r.Method {
    case http.MethodGet:
        tours, err := s.Store.ListTours(r.Context())
        if err != nil {
            writeProblem(w, http.StatusInternalServerError, "List tours failed", err.Error(), r.URL.Path)
            return
        }
        writeJSON(w, 200, map[string]any{"items": tours})
    case http.MethodPost:
        var in model.TourIn
        if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
            writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
            return
        }
        if strings.TrimSpace(in.Title) == "" {
            writeProblem(w, http.StatusBadRequest, "Missing title", "", r.URL.Path)
            return
        }
        tour, err := s.Store.CreateTour(r.Context(), in)
        if err != nil {
            writeProblem(w, http.StatusInternalServerError, "Create tour failed", err.Error(), r.URL.Path)
            return
        }
        writeJSON(w, http.StatusCreated, tour)
    default:
        w.WriteHeader(http.StatusMethodNotAllowed)
    }
}

// TourByIDHandler handles GET /v1/tours/{id} and POST /v1/tours/{id}/default
func (s *Server) TourByIDHandler(w http.ResponseWriter, r *http.Request) {
    rest := strings.TrimPrefix(r.URL.Path, "/v1/tours/")
    parts := strings.Split(rest, "/")
    if len(parts) == 0 || parts[0] == "" {
        writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
        return
    }
    id := parts[0]

    if len(parts) > 1 && parts[1] == "default" {
        if r.Method != http.MethodPost {
            w.WriteHeader(http.StatusMethodNotAllowed)
            return
        }
        err := s.Store.SetDefaultTour(r.Context(), id)
        if errors.Is(err, store.ErrNotFound) {
            writeProblem(w, http.StatusNotFound, "Tour not found", "", r.URL.Path)
            return
        }
        if err != nil {
            writeProblem(w, http.StatusInternalServerError, "Set default failed", err.Error(), r.URL.Path)
            return
        }
        w.WriteHeader(http.StatusNoContent)
        return
    }

    if r.Method != http.MethodGet {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    tour, err := s.Store.GetTour(r.Context(), id)
    if errors.Is(err, store.ErrNotFound) {
        writeProblem(w, http.StatusNotFound, "Tour not found", "", r.URL.Path)
        return
    }
    if err != nil {
        writeProblem(w, http.StatusInternalServerError, "Get tour failed", err.Error(), r.URL.Path)
        return
    }
    writeJSON(w, 200, tour)
}

// ItineraryHandler handles GET /v1/reports/itinerary
func (s *Server) ItineraryHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodGet {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    q := r.URL.Query()
    opts := model.ItineraryOptions{
        IncludeDirections: q.Get("directions") == "true",
        IncludeFinancials: q.Get("financials") == "true",
        IncludeContacts:   q.Get("contacts") == "true",
    }
    rep, err := s.Report.Build(r.Context(), q.Get("tourId"), opts)
    if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrNoDefaultTour) {
        writeProblem(w, http.StatusNotFound, "Tour not found", err.Error(), r.URL.Path)
        return
    }
    if err != nil {
        writeProblem(w, http.StatusInternalServerError, "Report failed", err.Error(), r.URL.Path)
        return
    }
    writeJSON(w, 200, rep)
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
    writeJSON(w, 200, map[string]any{"status": "ok", "build": buildinfo.Info()})
}

func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
    if s.ready != nil {
        if err := s.ready(r.Context()); err != nil {
            writeProblem(w, http.StatusServiceUnavailable, "Not ready", err.Error(), r.URL.Path)
            return
        }
    }
    writeJSON(w, 200, map[string]any{"status": "ready"})
}
