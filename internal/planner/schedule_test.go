package planner

import (
    "testing"
    "time"

    "tourplan/internal/model"
)

func committed(id, date string) model.Stop {
    return model.Stop{ID: id, Name: id, Committed: true, ScheduledDate: date}
}

func TestSuggestDateMidpoint(t *testing.T) {
    stops := []model.Stop{
        committed("a", "2024-01-01"),
        {ID: "b", Name: "b"},
        committed("c", "2024-01-03"),
    }
    if got := SuggestDate(stops, 1, time.Now()); got != "2024-01-02" {
        t.Fatalf("got %s, want 2024-01-02", got)
    }
    // midpoint of an even gap truncates to the earlier day
    stops[2].ScheduledDate = "2024-01-02"
    if got := SuggestDate(stops, 1, time.Now()); got != "2024-01-01" {
        t.Fatalf("got %s, want 2024-01-01", got)
    }
}

func TestSuggestDateOneNeighbor(t *testing.T) {
    stops := []model.Stop{committed("a", "2024-03-10"), {ID: "b"}}
    if got := SuggestDate(stops, 1, time.Now()); got != "2024-03-11" {
        t.Fatalf("after lone prev: got %s", got)
    }
    stops = []model.Stop{{ID: "b"}, committed("a", "2024-03-10")}
    if got := SuggestDate(stops, 0, time.Now()); got != "2024-03-09" {
        t.Fatalf("before lone next: got %s", got)
    }
}

func TestSuggestDateNoNeighbors(t *testing.T) {
    today := time.Date(2026, 8, 28, 15, 30, 0, 0, time.UTC)
    stops := []model.Stop{{ID: "a"}, {ID: "b"}}
    if got := SuggestDate(stops, 0, today); got != "2026-08-28" {
        t.Fatalf("got %s, want today", got)
    }
}

func TestSuggestDateUsesListPositionNotDate(t *testing.T) {
    // neighbors are picked by position in the list, not by date value
    stops := []model.Stop{
        committed("far", "2024-06-01"),
        committed("near", "2024-06-10"),
        {ID: "x"},
        committed("after", "2024-06-12"),
    }
    if got := SuggestDate(stops, 2, time.Now()); got != "2024-06-11" {
        t.Fatalf("got %s, want 2024-06-11", got)
    }
}

func TestIsTooTight(t *testing.T) {
    cases := []struct {
        a, b string
        want bool
    }{
        {"2024-05-10", "2024-05-10", true},
        {"2024-05-10", "2024-05-11", true},
        {"2024-05-11", "2024-05-10", true},
        {"2024-05-10", "2024-05-12", false},
        {"2024-05-12", "2024-05-10", false},
    }
    for _, c := range cases {
        if got := IsTooTight(c.a, c.b); got != c.want {
            t.Fatalf("IsTooTight(%s, %s) = %v, want %v", c.a, c.b, got, c.want)
        }
    }
}
