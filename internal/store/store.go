// Package store persists gig and tour records. Gigs are the booking
// records committed stops are backed by; every gig is linked to the
// caller's default tour through a junction row.
package store

import (
    "context"
    "errors"

    "tourplan/internal/model"
)

var ErrNotFound = errors.New("not found")

// ErrNoDefaultTour means a gig could not be linked because no tour is
// marked default. Link callers record the gig as unlinked and the
// reconcile worker retries once a default exists.
var ErrNoDefaultTour = errors.New("no default tour")

// Store is the persistence interface used by the planner, the report
// aggregator and the reconcile worker.
type Store interface {
    // Gigs
    CreateGig(ctx context.Context, g model.Gig) (string, error)
    GetGig(ctx context.Context, id string) (model.Gig, error)
    // LinkGigToDefaultTour attaches the gig to the current default tour
    // and marks it linked. Idempotent for an already-linked gig.
    LinkGigToDefaultTour(ctx context.Context, gigID string) error
    // ListGigs returns the gigs linked to a tour ordered by gig date.
    ListGigs(ctx context.Context, tourID string) ([]model.Gig, error)
    ListUnlinkedGigs(ctx context.Context, limit int) ([]model.Gig, error)

    // Tours
    CreateTour(ctx context.Context, in model.TourIn) (model.Tour, error)
    GetTour(ctx context.Context, id string) (model.Tour, error)
    GetDefaultTour(ctx context.Context) (model.Tour, error)
    SetDefaultTour(ctx context.Context, id string) error
    ListTours(ctx context.Context) ([]model.Tour, error)
}
