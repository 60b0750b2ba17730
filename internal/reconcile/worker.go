// Package reconcile retries the tour link for gigs that were created
// but not attached to the default tour, closing the gap left by the
// best-effort two-step commit.
package reconcile

import (
    "context"
    "os"
    "strconv"
    "sync"
    "time"

    "github.com/sirupsen/logrus"

    "tourplan/internal/logger"
    "tourplan/internal/metrics"
    "tourplan/internal/store"
)

type Worker struct {
    Store       store.Store
    Stop        chan struct{}
    Interval    time.Duration
    MaxAttempts int
    Log         *logrus.Logger

    mu       sync.Mutex
    attempts map[string]int // gig id -> failed link attempts
}

func NewWorker(s store.Store) *Worker {
    max := 10
    if v := os.Getenv("RECONCILE_MAX_ATTEMPTS"); v != "" {
        if n, err := strconv.Atoi(v); err == nil && n > 0 {
            max = n
        }
    }
    return &Worker{
        Store:       s,
        Stop:        make(chan struct{}),
        Interval:    5 * time.Second,
        MaxAttempts: max,
        Log:         logger.L(),
        attempts:    map[string]int{},
    }
}

func (w *Worker) Start() {
    go func() {
        ticker := time.NewTicker(w.Interval)
        defer ticker.Stop()
        for {
            select {
            case <-w.Stop:
                return
            case <-ticker.C:
                w.processOnce()
            }
        }
    }()
}

// processOnce links every due unlinked gig. Per-gig exponential backoff
// keeps a persistently failing link from hammering the store; gigs past
// MaxAttempts are abandoned and logged.
func (w *Worker) processOnce() {
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()

    gigs, err := w.Store.ListUnlinkedGigs(ctx, 50)
    if err != nil || len(gigs) == 0 {
        return
    }
    for _, g := range gigs {
        w.mu.Lock()
        n := w.attempts[g.ID]
        w.mu.Unlock()
        if n >= w.MaxAttempts {
            continue
        }

        err := w.Store.LinkGigToDefaultTour(ctx, g.ID)
        if err == nil {
            metrics.GigLinkRetries.WithLabelValues("ok").Inc()
            w.Log.WithField("gigId", g.ID).Info("reconciled gig tour link")
            w.mu.Lock()
            delete(w.attempts, g.ID)
            w.mu.Unlock()
            continue
        }

        metrics.GigLinkRetries.WithLabelValues("error").Inc()
        w.mu.Lock()
        w.attempts[g.ID] = n + 1
        abandoned := w.attempts[g.ID] >= w.MaxAttempts
        w.mu.Unlock()
        if abandoned {
            w.Log.WithError(err).WithField("gigId", g.ID).Error("giving up on gig tour link")
        } else {
            w.Log.WithError(err).WithFields(logrus.Fields{"gigId": g.ID, "attempt": n + 1}).
                Warn("gig tour link retry failed")
        }
        time.Sleep(nextBackoff(n))
    }
}

func nextBackoff(attempts int) time.Duration {
    if attempts < 0 {
        attempts = 0
    }
    if attempts > 6 {
        attempts = 6
    }
    base := 50 * time.Millisecond * time.Duration(1<<attempts)
    if base > 5*time.Second {
        base = 5 * time.Second
    }
    return base
}
