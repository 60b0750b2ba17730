// Package cache persists a wholesale snapshot of the working stop list,
// keyed per session. The snapshot is not authoritative: it is read once
// on load and overwritten after every mutation so a restarted process
// picks up the route where the user left it.
package cache

import (
    "context"
    "sync"

    "tourplan/internal/model"
)

// Snapshot loads and saves the full stop list for a session key. Load
// returns (nil, nil) when no snapshot exists yet.
type Snapshot interface {
    Load(ctx context.Context, key string) ([]model.Stop, error)
    Save(ctx context.Context, key string, stops []model.Stop) error
}

// Memory is the in-process snapshot used when no REDIS_URL is set.
type Memory struct {
    mu   sync.Mutex
    data map[string][]model.Stop
}

func NewMemory() *Memory {
    return &Memory{data: map[string][]model.Stop{}}
}

func (m *Memory) Load(ctx context.Context, key string) ([]model.Stop, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    stops, ok := m.data[key]
    if !ok {
        return nil, nil
    }
    out := make([]model.Stop, len(stops))
    copy(out, stops)
    return out, nil
}

func (m *Memory) Save(ctx context.Context, key string, stops []model.Stop) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    cp := make([]model.Stop, len(stops))
    copy(cp, stops)
    m.data[key] = cp
    return nil
}
