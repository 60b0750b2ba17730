package reconcile

import (
    "context"
    "errors"
    "sync"
    "testing"
    "time"

    "tourplan/internal/model"
    "tourplan/internal/store"
)

type flakyStore struct {
    *store.Memory
    mu       sync.Mutex
    failures int // link calls that fail before succeeding
    calls    int
}

func (f *flakyStore) LinkGigToDefaultTour(ctx context.Context, gigID string) error {
    f.mu.Lock()
    f.calls++
    fail := f.calls <= f.failures
    f.mu.Unlock()
    if fail {
        return errors.New("link unavailable")
    }
    return f.Memory.LinkGigToDefaultTour(ctx, gigID)
}

func TestWorkerLinksUnlinkedGigs(t *testing.T) {
    ctx := context.Background()
    fs := &flakyStore{Memory: store.NewMemory()}
    if _, err := fs.Memory.CreateTour(ctx, model.TourIn{Title: "t"}); err != nil {
        t.Fatalf("tour: %v", err)
    }
    id, err := fs.Memory.CreateGig(ctx, model.Gig{Venue: "v", GigDate: "2026-09-01"})
    if err != nil {
        t.Fatalf("gig: %v", err)
    }

    w := NewWorker(fs)
    w.MaxAttempts = 5
    w.processOnce()

    g, err := fs.Memory.GetGig(ctx, id)
    if err != nil || !g.TourLinked {
        t.Fatalf("gig not reconciled: %+v %v", g, err)
    }
    unlinked, _ := fs.Memory.ListUnlinkedGigs(ctx, 10)
    if len(unlinked) != 0 {
        t.Fatalf("still unlinked: %+v", unlinked)
    }
}

func TestWorkerRetriesThenSucceeds(t *testing.T) {
    ctx := context.Background()
    fs := &flakyStore{Memory: store.NewMemory(), failures: 2}
    _, _ = fs.Memory.CreateTour(ctx, model.TourIn{Title: "t"})
    id, _ := fs.Memory.CreateGig(ctx, model.Gig{Venue: "v", GigDate: "2026-09-01"})

    w := NewWorker(fs)
    w.MaxAttempts = 5
    for i := 0; i < 3; i++ {
        w.processOnce()
    }
    g, _ := fs.Memory.GetGig(ctx, id)
    if !g.TourLinked {
        t.Fatalf("gig not linked after retries: %+v", g)
    }
}

func TestWorkerGivesUpAfterMaxAttempts(t *testing.T) {
    ctx := context.Background()
    fs := &flakyStore{Memory: store.NewMemory(), failures: 1 << 30}
    _, _ = fs.Memory.CreateGig(ctx, model.Gig{Venue: "v", GigDate: "2026-09-01"})

    w := NewWorker(fs)
    w.MaxAttempts = 2
    for i := 0; i < 5; i++ {
        w.processOnce()
    }
    fs.mu.Lock()
    calls := fs.calls
    fs.mu.Unlock()
    if calls != 2 {
        t.Fatalf("expected exactly MaxAttempts link calls, got %d", calls)
    }
}

func TestWorkerStartStop(t *testing.T) {
    fs := &flakyStore{Memory: store.NewMemory()}
    w := NewWorker(fs)
    w.Interval = 10 * time.Millisecond
    w.Start()
    time.Sleep(30 * time.Millisecond)
    close(w.Stop)
}

func TestNextBackoffBounded(t *testing.T) {
    if nextBackoff(0) != 50*time.Millisecond {
        t.Fatalf("first backoff = %v", nextBackoff(0))
    }
    if nextBackoff(3) != 400*time.Millisecond {
        t.Fatalf("third backoff = %v", nextBackoff(3))
    }
    if nextBackoff(100) > 5*time.Second {
        t.Fatalf("backoff unbounded: %v", nextBackoff(100))
    }
}
