package model

// Core domain types for the tour route planner.

// GeoPoint is a WGS84 coordinate pair.
type GeoPoint struct {
    Lat float64 `json:"lat"`
    Lng float64 `json:"lng"`
}

// Stop is a single waypoint in the tour route. A stop starts out
// uncommitted and becomes committed once a gig record has been created
// and dated for it; committed stops carry a ScheduledDate and can no
// longer be deleted or moved across their committed neighbors.
type Stop struct {
    ID            string   `json:"id"`
    Name          string   `json:"name"`
    Address       string   `json:"address,omitempty"`
    City          string   `json:"city,omitempty"`
    State         string   `json:"state,omitempty"`
    Zip           string   `json:"zip,omitempty"`
    Location      GeoPoint `json:"location"`
    Committed     bool     `json:"committed"`
    ScheduledDate string   `json:"scheduledDate,omitempty"` // YYYY-MM-DD, set iff committed
    GigID         string   `json:"gigId,omitempty"`
    // GigLinked is false when the gig record was created but could not be
    // attached to the default tour; the reconcile worker retries those.
    GigLinked bool `json:"gigLinked,omitempty"`
}

// RouteInfo is the derived driving route over the current stop list,
// recomputed whenever the list changes and has at least two stops.
type RouteInfo struct {
    Stops      []Stop     `json:"stops"`
    LegMiles   []float64  `json:"legMiles"`   // one per consecutive stop pair, unrounded
    TotalMiles float64    `json:"totalMiles"` // sum of unrounded leg miles
    Path       []GeoPoint `json:"path"`       // decoded driving geometry for rendering
    Generation uint64     `json:"generation"` // stop-list version this route was computed from
}

// Gig is the persisted booking record a committed stop is backed by.
type Gig struct {
    ID             string   `json:"id"`
    Venue          string   `json:"venue"`
    VenueAddress   string   `json:"venueAddress,omitempty"`
    VenueCity      string   `json:"venueCity,omitempty"`
    VenueState     string   `json:"venueState,omitempty"`
    VenueZip       string   `json:"venueZip,omitempty"`
    Location       GeoPoint `json:"location"`
    GigDate        string   `json:"gigDate"` // YYYY-MM-DD
    LoadInTime     string   `json:"loadInTime,omitempty"`
    SoundCheckTime string   `json:"soundCheckTime,omitempty"`
    SetTime        string   `json:"setTime,omitempty"`
    ContactName    string   `json:"contactName,omitempty"`
    ContactPhone   string   `json:"contactPhone,omitempty"`
    ContactEmail   string   `json:"contactEmail,omitempty"`
    DepositAmount  float64  `json:"depositAmount"`
    ContractTotal  float64  `json:"contractTotal"`
    GigStatus      string   `json:"gigStatus"` // pending, confirmed, completed, cancelled
    Notes          string   `json:"notes,omitempty"`
    TourLinked     bool     `json:"tourLinked"`
}

// Tour is the grouping newly committed gigs are linked to. Exactly one
// tour per tenant is the default at any time.
type Tour struct {
    ID        string `json:"id"`
    Title     string `json:"title"`
    StartDate string `json:"startDate,omitempty"`
    EndDate   string `json:"endDate,omitempty"`
    IsDefault bool   `json:"isDefault"`
}

// TourIn is the create payload for a tour.
type TourIn struct {
    Title     string `json:"title"`
    StartDate string `json:"startDate,omitempty"`
    EndDate   string `json:"endDate,omitempty"`
    IsDefault bool   `json:"isDefault,omitempty"`
}

// StopIn is the add-stop payload. The display name is required; postal
// fields are optional and joined into the geocoder query.
type StopIn struct {
    Name    string `json:"name"`
    Address string `json:"address,omitempty"`
    City    string `json:"city,omitempty"`
    State   string `json:"state,omitempty"`
    Zip     string `json:"zip,omitempty"`
}

// ReorderRequest moves the stop at From to index To.
type ReorderRequest struct {
    From int `json:"from"`
    To   int `json:"to"`
}

// CommitRequest schedules a stop. Date is optional; when empty the
// planner suggests one from the committed neighbors. Confirm must be set
// to push a commit through a tight-schedule warning.
type CommitRequest struct {
    Date    string `json:"date,omitempty"` // YYYY-MM-DD
    Confirm bool   `json:"confirm,omitempty"`
}

// ItineraryOptions selects the optional report sections.
type ItineraryOptions struct {
    IncludeDirections bool
    IncludeFinancials bool
    IncludeContacts   bool
}

// ItineraryStop is one scheduled stop in the forward-looking report.
type ItineraryStop struct {
    Venue   string       `json:"venue"`
    Date    string       `json:"date"`
    Address string       `json:"address"`
    LoadIn  string       `json:"loadIn,omitempty"`
    SetTime string       `json:"setTime,omitempty"`
    Contact *ContactInfo `json:"contact,omitempty"`
    // Distance from the previous stop in the filtered sequence, rounded up
    // for display. Zero for the first stop.
    MilesFromPrevious int `json:"milesFromPrevious,omitempty"`
}

// ContactInfo is the per-gig contact block, included on request.
type ContactInfo struct {
    Name  string `json:"name,omitempty"`
    Phone string `json:"phone,omitempty"`
    Email string `json:"email,omitempty"`
}

// DirectionsLeg is the turn-by-turn section between two report stops.
type DirectionsLeg struct {
    FromVenue     string   `json:"fromVenue"`
    ToVenue       string   `json:"toVenue"`
    Steps         []string `json:"steps"`
    Miles         int      `json:"miles"`         // ceil of the unrounded leg miles
    EstimatedTime string   `json:"estimatedTime"` // "3h 45m"
}

// Financials is the report money roll-up.
type Financials struct {
    TotalDeposits     float64 `json:"totalDeposits"`
    TotalContracts    float64 `json:"totalContracts"`
    EstimatedExpenses float64 `json:"estimatedExpenses"` // totalMiles * rate per mile
}

// ItineraryReport is the forward-looking tour report: committed stops
// dated today or later, in date order.
type ItineraryReport struct {
    TourID     string          `json:"tourId"`
    TourTitle  string          `json:"tourTitle,omitempty"`
    StartDate  string          `json:"startDate,omitempty"`
    EndDate    string          `json:"endDate,omitempty"`
    TotalMiles int             `json:"totalMiles"` // ceil of the unrounded sum
    Stops      []ItineraryStop `json:"stops"`
    Directions []DirectionsLeg `json:"directions,omitempty"`
    Financials *Financials     `json:"financials,omitempty"`
}
