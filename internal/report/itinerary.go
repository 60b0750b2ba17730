// Package report builds the forward-looking itinerary: committed gigs
// dated today or later, re-routed over the filtered sequence, with
// optional turn-by-turn directions and a financial roll-up.
package report

import (
    "context"
    "fmt"
    "math"
    "strings"
    "time"

    "github.com/sirupsen/logrus"

    "tourplan/internal/logger"
    "tourplan/internal/model"
    "tourplan/internal/routing"
    "tourplan/internal/store"
)

// Builder aggregates the report from the gig store and the per-leg
// routing path.
type Builder struct {
    Store       store.Store
    Legs        routing.LegRouter
    RatePerMile float64
    Log         *logrus.Logger
    Now         func() time.Time
}

func NewBuilder(s store.Store, legs routing.LegRouter, ratePerMile float64) *Builder {
    if ratePerMile <= 0 {
        ratePerMile = 0.65
    }
    return &Builder{Store: s, Legs: legs, RatePerMile: ratePerMile, Log: logger.L(), Now: time.Now}
}

// Build assembles the itinerary for a tour; an empty tourID means the
// default tour. Leg routing failures are logged and skipped so one bad
// leg does not sink the whole report.
func (b *Builder) Build(ctx context.Context, tourID string, opts model.ItineraryOptions) (model.ItineraryReport, error) {
    var tour model.Tour
    var err error
    if tourID == "" {
        tour, err = b.Store.GetDefaultTour(ctx)
    } else {
        tour, err = b.Store.GetTour(ctx, tourID)
    }
    if err != nil {
        return model.ItineraryReport{}, err
    }

    gigs, err := b.Store.ListGigs(ctx, tour.ID)
    if err != nil {
        return model.ItineraryReport{}, err
    }

    // forward-looking only: keep gigs dated today or later. ListGigs is
    // already date-ascending, so the filtered slice stays sorted.
    today := b.Now().Format("2006-01-02")
    upcoming := gigs[:0:0]
    for _, g := range gigs {
        if g.GigDate >= today {
            upcoming = append(upcoming, g)
        }
    }

    out := model.ItineraryReport{
        TourID:    tour.ID,
        TourTitle: tour.Title,
        StartDate: tour.StartDate,
        EndDate:   tour.EndDate,
    }

    // leg distances are recomputed over the filtered sequence: skipping
    // past gigs changes adjacency, so the live route's legs do not apply.
    totalMiles := 0.0
    legMiles := make([]float64, len(upcoming)) // [i] = distance into stop i, 0 for the first
    for i := 1; i < len(upcoming); i++ {
        from, to := upcoming[i-1], upcoming[i]
        leg, err := b.Legs.Leg(ctx, from.Location, to.Location, opts.IncludeDirections)
        if err != nil {
            b.Log.WithError(err).WithFields(logrus.Fields{"from": from.Venue, "to": to.Venue}).
                Warn("leg routing failed; skipping leg in report")
            continue
        }
        miles := leg.Meters * routing.MetersToMiles
        legMiles[i] = miles
        totalMiles += miles
        if opts.IncludeDirections {
            out.Directions = append(out.Directions, model.DirectionsLeg{
                FromVenue:     from.Venue,
                ToVenue:       to.Venue,
                Steps:         FormatSteps(leg.Steps),
                Miles:         int(math.Ceil(miles)),
                EstimatedTime: FormatDuration(leg.DurationSec),
            })
        }
    }

    for i, g := range upcoming {
        s := model.ItineraryStop{
            Venue:   g.Venue,
            Date:    g.GigDate,
            Address: formatAddress(g),
            LoadIn:  g.LoadInTime,
            SetTime: g.SetTime,
        }
        if i > 0 && legMiles[i] > 0 {
            s.MilesFromPrevious = int(math.Ceil(legMiles[i]))
        }
        if opts.IncludeContacts {
            s.Contact = &model.ContactInfo{Name: g.ContactName, Phone: g.ContactPhone, Email: g.ContactEmail}
        }
        out.Stops = append(out.Stops, s)
    }

    out.TotalMiles = int(math.Ceil(totalMiles))

    if opts.IncludeFinancials {
        fin := &model.Financials{}
        for _, g := range upcoming {
            fin.TotalDeposits += g.DepositAmount
            fin.TotalContracts += g.ContractTotal
        }
        fin.EstimatedExpenses = totalMiles * b.RatePerMile
        out.Financials = fin
    }
    return out, nil
}

// FormatSteps renders maneuver steps as instructions: the maneuver type
// and modifier, "onto {road}" when the road is named, "for {n} miles"
// when the step has a distance, first letter capitalized. Steps whose
// whole instruction is the bare word "Turn" carry no information and
// are dropped.
func FormatSteps(steps []routing.Step) []string {
    var out []string
    for _, s := range steps {
        instruction := s.ManeuverType
        if s.Modifier != "" {
            instruction += " " + s.Modifier
        }
        if s.RoadName != "" {
            instruction += " onto " + s.RoadName
        }
        if s.Meters > 0 {
            instruction += fmt.Sprintf(" for %d miles", int(math.Ceil(s.Meters*routing.MetersToMiles)))
        }
        instruction = capitalize(instruction)
        if instruction == "Turn" {
            continue
        }
        out = append(out, instruction)
    }
    return out
}

// FormatDuration renders seconds as "3h 45m".
func FormatDuration(seconds float64) string {
    total := int(seconds)
    return fmt.Sprintf("%dh %dm", total/3600, (total%3600)/60)
}

func formatAddress(g model.Gig) string {
    left := strings.TrimLeft(fmt.Sprintf("%s, %s, %s %s", g.VenueAddress, g.VenueCity, g.VenueState, g.VenueZip), ", ")
    return strings.TrimSpace(left)
}

func capitalize(s string) string {
    if s == "" {
        return s
    }
    return strings.ToUpper(s[:1]) + s[1:]
}
