package planner

import (
    "errors"
    "fmt"

    "tourplan/internal/model"
)

// ErrReorderRejected means the move would put a committed stop outside
// its committed neighbors, breaking chronological order.
var ErrReorderRejected = errors.New("reorder rejected")

// Reorder moves the stop at from to index to and returns the new list.
// Uncommitted stops move freely. A committed stop may not cross the
// nearest committed stop on either side; such moves return the original
// list unchanged and an error wrapping ErrReorderRejected. Pure
// function, no shared state.
func Reorder(stops []model.Stop, from, to int) ([]model.Stop, error) {
    if from < 0 || from >= len(stops) || to < 0 || to >= len(stops) {
        return stops, fmt.Errorf("%w: index out of range (from=%d to=%d len=%d)", ErrReorderRejected, from, to, len(stops))
    }
    if from == to {
        return stops, nil
    }
    if stops[from].Committed {
        prev, next := committedNeighborIdx(stops, from)
        if prev >= 0 && to <= prev {
            return stops, fmt.Errorf("%w: %q is scheduled after %q (%s)", ErrReorderRejected,
                stops[from].Name, stops[prev].Name, stops[prev].ScheduledDate)
        }
        if next >= 0 && to >= next {
            return stops, fmt.Errorf("%w: %q is scheduled before %q (%s)", ErrReorderRejected,
                stops[from].Name, stops[next].Name, stops[next].ScheduledDate)
        }
    }
    moved := stops[from]
    out := make([]model.Stop, 0, len(stops))
    out = append(out, stops[:from]...)
    out = append(out, stops[from+1:]...)
    out = append(out, model.Stop{})
    copy(out[to+1:], out[to:])
    out[to] = moved
    return out, nil
}

// committedNeighborIdx returns the indices of the nearest committed
// stops before and after i by current list position, or -1 when absent.
func committedNeighborIdx(stops []model.Stop, i int) (prev, next int) {
    prev, next = -1, -1
    for j := i - 1; j >= 0; j-- {
        if stops[j].Committed {
            prev = j
            break
        }
    }
    for j := i + 1; j < len(stops); j++ {
        if stops[j].Committed {
            next = j
            break
        }
    }
    return prev, next
}
