package store

import (
    "context"
    "sort"
    "sync"

    "github.com/google/uuid"

    "tourplan/internal/model"
)

// Memory is a simple in-memory store used when no DATABASE_URL is set.
type Memory struct {
    mu      sync.Mutex
    gigs    map[string]model.Gig // id -> gig
    gigTour map[string]string    // gig id -> tour id
    tours   map[string]model.Tour
}

func NewMemory() *Memory {
    return &Memory{
        gigs:    map[string]model.Gig{},
        gigTour: map[string]string{},
        tours:   map[string]model.Tour{},
    }
}

func (m *Memory) CreateGig(ctx context.Context, g model.Gig) (string, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    g.ID = uuid.NewString()
    g.TourLinked = false
    m.gigs[g.ID] = g
    return g.ID, nil
}

func (m *Memory) GetGig(ctx context.Context, id string) (model.Gig, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    g, ok := m.gigs[id]
    if !ok {
        return model.Gig{}, ErrNotFound
    }
    return g, nil
}

func (m *Memory) LinkGigToDefaultTour(ctx context.Context, gigID string) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    g, ok := m.gigs[gigID]
    if !ok {
        return ErrNotFound
    }
    if g.TourLinked {
        return nil
    }
    def, ok := m.defaultTourLocked()
    if !ok {
        return ErrNoDefaultTour
    }
    m.gigTour[gigID] = def.ID
    g.TourLinked = true
    m.gigs[gigID] = g
    return nil
}

func (m *Memory) ListGigs(ctx context.Context, tourID string) ([]model.Gig, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    var out []model.Gig
    for id, g := range m.gigs {
        if m.gigTour[id] == tourID {
            out = append(out, g)
        }
    }
    sort.Slice(out, func(i, j int) bool { return out[i].GigDate < out[j].GigDate })
    return out, nil
}

func (m *Memory) ListUnlinkedGigs(ctx context.Context, limit int) ([]model.Gig, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    var out []model.Gig
    for _, g := range m.gigs {
        if !g.TourLinked {
            out = append(out, g)
        }
    }
    sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
    if limit > 0 && len(out) > limit {
        out = out[:limit]
    }
    return out, nil
}

func (m *Memory) CreateTour(ctx context.Context, in model.TourIn) (model.Tour, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    t := model.Tour{
        ID:        uuid.NewString(),
        Title:     in.Title,
        StartDate: in.StartDate,
        EndDate:   in.EndDate,
    }
    // First tour becomes the default automatically.
    if _, hasDefault := m.defaultTourLocked(); !hasDefault || in.IsDefault {
        m.clearDefaultLocked()
        t.IsDefault = true
    }
    m.tours[t.ID] = t
    return t, nil
}

func (m *Memory) GetTour(ctx context.Context, id string) (model.Tour, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    t, ok := m.tours[id]
    if !ok {
        return model.Tour{}, ErrNotFound
    }
    return t, nil
}

func (m *Memory) GetDefaultTour(ctx context.Context) (model.Tour, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    if t, ok := m.defaultTourLocked(); ok {
        return t, nil
    }
    return model.Tour{}, ErrNoDefaultTour
}

func (m *Memory) SetDefaultTour(ctx context.Context, id string) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    t, ok := m.tours[id]
    if !ok {
        return ErrNotFound
    }
    m.clearDefaultLocked()
    t.IsDefault = true
    m.tours[id] = t
    return nil
}

func (m *Memory) ListTours(ctx context.Context) ([]model.Tour, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    out := make([]model.Tour, 0, len(m.tours))
    for _, t := range m.tours {
        out = append(out, t)
    }
    sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
    return out, nil
}

func (m *Memory) defaultTourLocked() (model.Tour, bool) {
    for _, t := range m.tours {
        if t.IsDefault {
            return t, true
        }
    }
    return model.Tour{}, false
}

func (m *Memory) clearDefaultLocked() {
    for id, t := range m.tours {
        if t.IsDefault {
            t.IsDefault = false
            m.tours[id] = t
        }
    }
}
