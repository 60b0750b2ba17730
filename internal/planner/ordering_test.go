package planner

import (
    "errors"
    "testing"

    "tourplan/internal/model"
)

func stopList(names ...string) []model.Stop {
    out := make([]model.Stop, len(names))
    for i, n := range names {
        out[i] = model.Stop{ID: n, Name: n}
    }
    return out
}

func ids(stops []model.Stop) []string {
    out := make([]string, len(stops))
    for i, s := range stops {
        out[i] = s.ID
    }
    return out
}

func equalIDs(a []string, b ...string) bool {
    if len(a) != len(b) {
        return false
    }
    for i := range a {
        if a[i] != b[i] {
            return false
        }
    }
    return true
}

func TestReorderUncommittedMovesFreely(t *testing.T) {
    base := stopList("a", "b", "c", "d")
    for to := 0; to < len(base); to++ {
        got, err := Reorder(base, 2, to)
        if err != nil {
            t.Fatalf("move to %d: %v", to, err)
        }
        if got[to].ID != "c" {
            t.Fatalf("move to %d: c not at target, got %v", to, ids(got))
        }
    }
}

func TestReorderMoveSemantics(t *testing.T) {
    got, err := Reorder(stopList("a", "b", "c", "d"), 0, 2)
    if err != nil {
        t.Fatalf("reorder: %v", err)
    }
    if !equalIDs(ids(got), "b", "c", "a", "d") {
        t.Fatalf("got %v", ids(got))
    }
    got, err = Reorder(stopList("a", "b", "c", "d"), 3, 1)
    if err != nil {
        t.Fatalf("reorder: %v", err)
    }
    if !equalIDs(ids(got), "a", "d", "b", "c") {
        t.Fatalf("got %v", ids(got))
    }
}

func TestReorderCommittedBoundedByNeighbors(t *testing.T) {
    // a(9/01) b c(9/05) d e(9/09)
    base := stopList("a", "b", "c", "d", "e")
    for i, d := range map[int]string{0: "2026-09-01", 2: "2026-09-05", 4: "2026-09-09"} {
        base[i].Committed = true
        base[i].ScheduledDate = d
    }

    // within bounds: c may swap across the uncommitted b or d
    got, err := Reorder(base, 2, 1)
    if err != nil {
        t.Fatalf("in-bounds move rejected: %v", err)
    }
    if !equalIDs(ids(got), "a", "c", "b", "d", "e") {
        t.Fatalf("got %v", ids(got))
    }

    // before the committed predecessor: rejected, input unchanged
    got, err = Reorder(base, 2, 0)
    if !errors.Is(err, ErrReorderRejected) {
        t.Fatalf("expected ErrReorderRejected, got %v", err)
    }
    if !equalIDs(ids(got), "a", "b", "c", "d", "e") {
        t.Fatalf("list mutated on rejection: %v", ids(got))
    }

    // past the committed successor: rejected
    if _, err := Reorder(base, 2, 4); !errors.Is(err, ErrReorderRejected) {
        t.Fatalf("expected ErrReorderRejected, got %v", err)
    }
}

func TestReorderOutOfRange(t *testing.T) {
    base := stopList("a", "b")
    for _, c := range [][2]int{{-1, 0}, {0, 2}, {5, 0}} {
        if _, err := Reorder(base, c[0], c[1]); !errors.Is(err, ErrReorderRejected) {
            t.Fatalf("from=%d to=%d: expected rejection, got %v", c[0], c[1], err)
        }
    }
}

func TestReorderNoCommittedNeighbors(t *testing.T) {
    // a lone committed stop has no bounds at all
    base := stopList("a", "b", "c")
    base[1].Committed = true
    base[1].ScheduledDate = "2026-09-05"
    got, err := Reorder(base, 1, 0)
    if err != nil {
        t.Fatalf("unbounded committed move rejected: %v", err)
    }
    if !equalIDs(ids(got), "b", "a", "c") {
        t.Fatalf("got %v", ids(got))
    }
}
