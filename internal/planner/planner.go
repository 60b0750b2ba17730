// Package planner owns the stop list for the active tour. All mutation
// goes through the Planner's operations; route recomputation runs
// asynchronously and stale results are discarded by generation.
package planner

import (
    "context"
    "errors"
    "fmt"
    "sync"
    "time"

    "github.com/google/uuid"
    "github.com/sirupsen/logrus"

    "tourplan/internal/cache"
    "tourplan/internal/geo"
    "tourplan/internal/logger"
    "tourplan/internal/metrics"
    "tourplan/internal/model"
    "tourplan/internal/routing"
    "tourplan/internal/store"
)

var (
    ErrStopNotFound     = errors.New("stop not found")
    ErrAlreadyCommitted = errors.New("stop already committed")
    ErrCommittedDelete  = errors.New("committed stops cannot be deleted")
    ErrBadDate          = errors.New("bad date, want YYYY-MM-DD")
    // ErrDateOutOfOrder means the commit date would break chronological
    // order with a committed neighbor.
    ErrDateOutOfOrder = errors.New("date breaks committed order")
)

// ConfirmRequiredError pauses a commit whose date sits a day or less
// from a committed neighbor. Repeating the request with confirm set
// pushes the commit through; declining leaves state untouched.
type ConfirmRequiredError struct {
    SuggestedDate string
    NeighborName  string
    NeighborDate  string
}

func (e *ConfirmRequiredError) Error() string {
    return fmt.Sprintf("date %s is within a day of %q (%s); confirmation required",
        e.SuggestedDate, e.NeighborName, e.NeighborDate)
}

// Options wires the planner's collaborators. Now and Log default to
// time.Now and the shared logger.
type Options struct {
    Geocoder      geo.Geocoder
    Router        routing.Router
    Store         store.Store
    Snapshot      cache.Snapshot
    SessionKey    string
    Log           *logrus.Logger
    Now           func() time.Time
    OnRouteUpdate func(model.RouteInfo)
}

// Planner is the stop store plus the ordering, scheduling and commit
// logic layered on top of it.
type Planner struct {
    mu    sync.Mutex
    stops []model.Stop
    gen   uint64
    route model.RouteInfo

    wg sync.WaitGroup // in-flight recomputations

    geocoder geo.Geocoder
    router   routing.Router
    store    store.Store
    snap     cache.Snapshot
    key      string
    log      *logrus.Logger
    now      func() time.Time
    onRoute  func(model.RouteInfo)
}

func New(opts Options) *Planner {
    p := &Planner{
        geocoder: opts.Geocoder,
        router:   opts.Router,
        store:    opts.Store,
        snap:     opts.Snapshot,
        key:      opts.SessionKey,
        log:      opts.Log,
        now:      opts.Now,
        onRoute:  opts.OnRouteUpdate,
    }
    if p.key == "" {
        p.key = "default"
    }
    if p.log == nil {
        p.log = logger.L()
    }
    if p.now == nil {
        p.now = time.Now
    }
    return p
}

// Load restores the stop list from the snapshot cache and kicks off a
// route recomputation for it.
func (p *Planner) Load(ctx context.Context) error {
    if p.snap == nil {
        return nil
    }
    stops, err := p.snap.Load(ctx, p.key)
    if err != nil {
        return err
    }
    p.mu.Lock()
    defer p.mu.Unlock()
    p.stops = stops
    p.gen++
    p.recomputeLocked()
    return nil
}

// Stops returns a copy of the current list.
func (p *Planner) Stops() []model.Stop {
    p.mu.Lock()
    defer p.mu.Unlock()
    out := make([]model.Stop, len(p.stops))
    copy(out, p.stops)
    return out
}

// WaitForRecompute blocks until every in-flight route recomputation
// has finished or been discarded. Test hook.
func (p *Planner) WaitForRecompute() {
    p.wg.Wait()
}

// Route returns the latest applied route.
func (p *Planner) Route() model.RouteInfo {
    p.mu.Lock()
    defer p.mu.Unlock()
    return p.route
}

// AddStop geocodes the input and appends a new uncommitted stop. Any
// geocoding failure aborts the whole operation; no partial stop is
// created.
func (p *Planner) AddStop(ctx context.Context, in model.StopIn) (model.Stop, error) {
    if in.Name == "" {
        return model.Stop{}, errors.New("name is required")
    }
    pt, err := p.geocoder.Resolve(ctx, geo.BuildQuery(in))
    if err != nil {
        return model.Stop{}, err
    }
    stop := model.Stop{
        ID:       uuid.NewString(),
        Name:     in.Name,
        Address:  in.Address,
        City:     in.City,
        State:    in.State,
        Zip:      in.Zip,
        Location: pt,
    }
    p.mu.Lock()
    defer p.mu.Unlock()
    p.stops = append(p.stops, stop)
    p.afterMutationLocked(ctx)
    return stop, nil
}

// DeleteStop removes an uncommitted stop.
func (p *Planner) DeleteStop(ctx context.Context, id string) error {
    p.mu.Lock()
    defer p.mu.Unlock()
    idx := p.indexLocked(id)
    if idx < 0 {
        return ErrStopNotFound
    }
    if p.stops[idx].Committed {
        return ErrCommittedDelete
    }
    p.stops = append(p.stops[:idx], p.stops[idx+1:]...)
    p.afterMutationLocked(ctx)
    return nil
}

// Reorder moves a stop to a new index, enforcing the committed-neighbor
// bounds. On rejection nothing changes.
func (p *Planner) Reorder(ctx context.Context, from, to int) ([]model.Stop, error) {
    p.mu.Lock()
    defer p.mu.Unlock()
    next, err := Reorder(p.stops, from, to)
    if err != nil {
        return nil, err
    }
    p.stops = next
    p.afterMutationLocked(ctx)
    out := make([]model.Stop, len(p.stops))
    copy(out, p.stops)
    return out, nil
}

// CommitStop schedules a stop onto the calendar: pick or validate the
// date, detect tight-schedule conflicts, create the backing gig record,
// link it to the default tour, then mark the stop committed. Gig
// creation failure aborts with no state change; a tour-link failure is
// recorded as GigLinked=false and left for the reconcile worker.
func (p *Planner) CommitStop(ctx context.Context, id string, req model.CommitRequest) (model.Stop, error) {
    p.mu.Lock()
    defer p.mu.Unlock()

    idx := p.indexLocked(id)
    if idx < 0 {
        return model.Stop{}, ErrStopNotFound
    }
    stop := p.stops[idx]
    if stop.Committed {
        return model.Stop{}, ErrAlreadyCommitted
    }

    date := req.Date
    if date == "" {
        date = SuggestDate(p.stops, idx, p.now())
    }
    if _, err := parseDay(date); err != nil {
        return model.Stop{}, fmt.Errorf("%w: %q", ErrBadDate, date)
    }

    prev, next := committedNeighborIdx(p.stops, idx)
    if prev >= 0 && date < p.stops[prev].ScheduledDate {
        return model.Stop{}, fmt.Errorf("%w: %s is before %q (%s)", ErrDateOutOfOrder,
            date, p.stops[prev].Name, p.stops[prev].ScheduledDate)
    }
    if next >= 0 && date > p.stops[next].ScheduledDate {
        return model.Stop{}, fmt.Errorf("%w: %s is after %q (%s)", ErrDateOutOfOrder,
            date, p.stops[next].Name, p.stops[next].ScheduledDate)
    }
    if !req.Confirm {
        for _, n := range []int{prev, next} {
            if n >= 0 && IsTooTight(date, p.stops[n].ScheduledDate) {
                return model.Stop{}, &ConfirmRequiredError{
                    SuggestedDate: date,
                    NeighborName:  p.stops[n].Name,
                    NeighborDate:  p.stops[n].ScheduledDate,
                }
            }
        }
    }

    gigID, err := p.store.CreateGig(ctx, gigFromStop(stop, date))
    if err != nil {
        return model.Stop{}, fmt.Errorf("create gig: %w", err)
    }
    linked := true
    if err := p.store.LinkGigToDefaultTour(ctx, gigID); err != nil {
        linked = false
        p.log.WithError(err).WithField("gigId", gigID).Warn("gig created but tour link failed; will reconcile")
    }

    stop.Committed = true
    stop.ScheduledDate = date
    stop.GigID = gigID
    stop.GigLinked = linked
    p.stops[idx] = stop
    p.saveSnapshotLocked(ctx)
    return stop, nil
}

// gigFromStop builds the auto-created booking record with the standard
// operational defaults.
func gigFromStop(s model.Stop, date string) model.Gig {
    return model.Gig{
        Venue:          s.Name,
        VenueAddress:   s.Address,
        VenueCity:      s.City,
        VenueState:     s.State,
        VenueZip:       s.Zip,
        Location:       s.Location,
        GigDate:        date,
        LoadInTime:     "17:00",
        SoundCheckTime: "18:00",
        SetTime:        "20:00",
        GigStatus:      "pending",
        Notes:          "Created automatically from the tour route planner",
    }
}

func (p *Planner) indexLocked(id string) int {
    for i, s := range p.stops {
        if s.ID == id {
            return i
        }
    }
    return -1
}

// afterMutationLocked bumps the generation, persists the snapshot and
// schedules a route recomputation for the new list.
func (p *Planner) afterMutationLocked(ctx context.Context) {
    p.gen++
    p.saveSnapshotLocked(ctx)
    p.recomputeLocked()
}

func (p *Planner) saveSnapshotLocked(ctx context.Context) {
    if p.snap == nil {
        return
    }
    cp := make([]model.Stop, len(p.stops))
    copy(cp, p.stops)
    if err := p.snap.Save(ctx, p.key, cp); err != nil {
        p.log.WithError(err).Warn("stop snapshot save failed")
    }
}

// recomputeLocked snapshots the list under the lock and routes it in
// the background. The response is applied only if no newer mutation
// happened in the meantime.
func (p *Planner) recomputeLocked() {
    gen := p.gen
    stops := make([]model.Stop, len(p.stops))
    copy(stops, p.stops)

    if len(stops) < 2 {
        p.route = model.RouteInfo{Stops: stops, Generation: gen}
        if p.onRoute != nil {
            route := p.route
            p.wg.Add(1)
            go func() {
                defer p.wg.Done()
                p.onRoute(route)
            }()
        }
        return
    }

    pts := make([]model.GeoPoint, len(stops))
    for i, s := range stops {
        pts[i] = s.Location
    }
    p.wg.Add(1)
    go p.recompute(gen, stops, pts)
}

func (p *Planner) recompute(gen uint64, stops []model.Stop, pts []model.GeoPoint) {
    defer p.wg.Done()
    ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
    defer cancel()

    res, err := p.router.Route(ctx, pts)
    if err != nil {
        metrics.RouteRecomputes.WithLabelValues("error").Inc()
        p.log.WithError(err).Warn("route recompute failed; keeping previous route")
        return
    }

    p.mu.Lock()
    if gen != p.gen {
        p.mu.Unlock()
        metrics.RouteRecomputes.WithLabelValues("stale").Inc()
        return
    }
    p.route = model.RouteInfo{
        Stops:      stops,
        LegMiles:   res.LegMiles,
        TotalMiles: res.TotalMiles,
        Path:       res.Path,
        Generation: gen,
    }
    route := p.route
    p.mu.Unlock()

    metrics.RouteRecomputes.WithLabelValues("applied").Inc()
    if p.onRoute != nil {
        p.onRoute(route)
    }
}
