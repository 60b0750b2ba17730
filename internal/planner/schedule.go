package planner

import (
    "time"

    "tourplan/internal/model"
)

const dayFormat = "2006-01-02"

func parseDay(s string) (time.Time, error) {
    return time.Parse(dayFormat, s)
}

// SuggestDate picks a calendar date for the stop at idx from its
// committed neighbors by list position: the midpoint of both neighbor
// dates truncated to the day, one day after a lone predecessor, one day
// before a lone successor, or today when the stop has no committed
// neighbors. The result always lands inside [prev, next] as long as the
// list itself is in chronological order.
func SuggestDate(stops []model.Stop, idx int, today time.Time) string {
    prev, next := committedNeighborIdx(stops, idx)
    switch {
    case prev >= 0 && next >= 0:
        p, errP := parseDay(stops[prev].ScheduledDate)
        n, errN := parseDay(stops[next].ScheduledDate)
        if errP == nil && errN == nil {
            return p.Add(n.Sub(p) / 2).Truncate(24 * time.Hour).Format(dayFormat)
        }
    case prev >= 0:
        if p, err := parseDay(stops[prev].ScheduledDate); err == nil {
            return p.AddDate(0, 0, 1).Format(dayFormat)
        }
    case next >= 0:
        if n, err := parseDay(stops[next].ScheduledDate); err == nil {
            return n.AddDate(0, 0, -1).Format(dayFormat)
        }
    }
    return today.Format(dayFormat)
}

// IsTooTight reports whether two dates are a day or less apart. A tight
// pair of adjacent committed stops needs explicit confirmation before
// the commit goes through.
func IsTooTight(candidate, neighbor string) bool {
    c, err := parseDay(candidate)
    if err != nil {
        return false
    }
    n, err := parseDay(neighbor)
    if err != nil {
        return false
    }
    days := int(c.Sub(n).Hours() / 24)
    if days < 0 {
        days = -days
    }
    return days <= 1
}
