package geo

import (
    "context"
    "errors"
    "net/http"
    "net/http/httptest"
    "testing"

    "tourplan/internal/model"
)

func TestResolveFirstResult(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if r.URL.Path != "/search" {
            t.Errorf("unexpected path %s", r.URL.Path)
        }
        if q := r.URL.Query().Get("q"); q != "Nashville, TN" {
            t.Errorf("unexpected query %q", q)
        }
        w.Header().Set("Content-Type", "application/json")
        _, _ = w.Write([]byte(`[{"lat":"36.1627","lon":"-86.7816","display_name":"Nashville"},{"lat":"0","lon":"0"}]`))
    }))
    defer srv.Close()

    c := NewClient(srv.URL, "test", 100)
    pt, err := c.Resolve(context.Background(), "Nashville, TN")
    if err != nil {
        t.Fatalf("resolve: %v", err)
    }
    if pt.Lat != 36.1627 || pt.Lng != -86.7816 {
        t.Fatalf("wrong coordinates: %+v", pt)
    }
}

func TestResolveNotFound(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        _, _ = w.Write([]byte(`[]`))
    }))
    defer srv.Close()

    c := NewClient(srv.URL, "test", 100)
    _, err := c.Resolve(context.Background(), "Nowhere At All")
    if !errors.Is(err, ErrNotFound) {
        t.Fatalf("expected ErrNotFound, got %v", err)
    }
}

func TestResolveNetworkError(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
    srv.Close() // refuse connections

    c := NewClient(srv.URL, "test", 100)
    _, err := c.Resolve(context.Background(), "anything")
    if err == nil || errors.Is(err, ErrNotFound) {
        t.Fatalf("expected transport error, got %v", err)
    }
}

func TestBuildQuery(t *testing.T) {
    q := BuildQuery(model.StopIn{Name: "Exit/In", Address: "2208 Elliston Pl", City: "Nashville", State: "TN", Zip: "37203"})
    if q != "2208 Elliston Pl, Nashville, TN, 37203" {
        t.Fatalf("got %q", q)
    }
    // empty parts dropped; bare name falls back to the display name
    if q := BuildQuery(model.StopIn{Name: "Memphis, TN"}); q != "Memphis, TN" {
        t.Fatalf("got %q", q)
    }
    if q := BuildQuery(model.StopIn{Name: "x", City: "Austin", State: "TX"}); q != "Austin, TX" {
        t.Fatalf("got %q", q)
    }
}
