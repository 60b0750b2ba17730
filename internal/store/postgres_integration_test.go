//go:build postgres_integration

package store

import (
    "os"
    "testing"

    "tourplan/internal/model"
)

func TestPostgresConnectivityAndMigrate(t *testing.T) {
    dsn := os.Getenv("DATABASE_URL")
    if dsn == "" { t.Skip("DATABASE_URL not set; skipping integration test") }
    p, err := NewPostgres(dsn)
    if err != nil { t.Fatalf("NewPostgres: %v", err) }
    if err := p.Ping(t.Context()); err != nil { t.Fatalf("Ping: %v", err) }
    if err := p.MigrateDir("../../db/migrations"); err != nil { t.Fatalf("MigrateDir: %v", err) }
    tour, err := p.CreateTour(t.Context(), model.TourIn{Title: "integration"})
    if err != nil { t.Fatalf("CreateTour: %v", err) }
    if err := p.SetDefaultTour(t.Context(), tour.ID); err != nil { t.Fatalf("SetDefaultTour: %v", err) }
    id, err := p.CreateGig(t.Context(), model.Gig{Venue: "v", GigDate: "2026-09-01", GigStatus: "pending"})
    if err != nil { t.Fatalf("CreateGig: %v", err) }
    if err := p.LinkGigToDefaultTour(t.Context(), id); err != nil { t.Fatalf("Link: %v", err) }
    gigs, err := p.ListGigs(t.Context(), tour.ID)
    if err != nil { t.Fatalf("ListGigs: %v", err) }
    if len(gigs) == 0 { t.Fatal("expected linked gig in listing") }
}
