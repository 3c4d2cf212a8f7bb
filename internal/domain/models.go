package domain

import "time"

// BookingStatus is the lifecycle state of a reservation in the ledger.
type BookingStatus string

const (
	StatusActive    BookingStatus = "ACTIVE"
	StatusCancelled BookingStatus = "CANCELLED"
)

// Booking is one reservation record from the ledger snapshot. Records are
// read-only after load; only derived fields (LeadTimeDays, NormalizedRate)
// are filled in afterwards.
type Booking struct {
	ID            string        `json:"id"`
	BookingDate   time.Time     `json:"booking_date"`
	PropertyCode  string        `json:"property_code"`
	Country       string        `json:"country"`
	Adults        int           `json:"adults"`
	Children      int           `json:"children"`
	Channel       string        `json:"channel"`
	Entry         time.Time     `json:"entry"`
	Departure     time.Time     `json:"departure"`
	Nights        int           `json:"nights"`
	GrossStay     float64       `json:"gross_stay"`
	PropertyID    string        `json:"property_id"`
	RatePlan      string        `json:"rate_plan"`
	Status        BookingStatus `json:"status"`
	PartySize     int           `json:"party_size"`
	NonRefundable bool          `json:"non_refundable"`

	// Derived after load.
	LeadTimeDays   int     `json:"lead_time_days"`
	NormalizedRate float64 `json:"normalized_rate"`
}

// StayCovers reports whether the booking occupies the given night.
// The stay window is [entry, departure): the departure day is not slept.
func (b Booking) StayCovers(day time.Time) bool {
	return !b.Entry.After(day) && b.Departure.After(day)
}

// Category is the ordinal quality tier of a property, worst to best.
type Category string

const (
	CategoryEconomy  Category = "Economy"
	CategoryComfort  Category = "Comfort"
	CategorySuperior Category = "Superior"
	CategoryPremium  Category = "Premium"
)

var categoryOrder = []Category{CategoryEconomy, CategoryComfort, CategorySuperior, CategoryPremium}

// Ordinal returns the category's rank (Economy=0 .. Premium=3).
func (c Category) Ordinal() (int, bool) {
	for i, cat := range categoryOrder {
		if cat == c {
			return i, true
		}
	}
	return 0, false
}

// CategoryFromOrdinal is the inverse of Ordinal.
func CategoryFromOrdinal(i int) (Category, bool) {
	if i < 0 || i >= len(categoryOrder) {
		return "", false
	}
	return categoryOrder[i], true
}

// Property is one manageable unit from the registry. The validity window
// [Opening, Closing) bounds the days the unit is sellable.
type Property struct {
	ID       string    `json:"id"`
	Category Category  `json:"category"`
	Zone     string    `json:"zone"`
	Rooms    int       `json:"rooms"`
	Opening  time.Time `json:"opening"`
	Closing  time.Time `json:"closing"`
}

// OpenOn reports whether the property is sellable on the given day.
func (p Property) OpenOn(day time.Time) bool {
	return !p.Opening.After(day) && p.Closing.After(day)
}

// Segment groups interchangeable properties for rate and occupancy analysis.
type Segment struct {
	Category Category `json:"category"`
	Zone     string   `json:"zone"`
	Rooms    int      `json:"rooms"`
}

// SegmentCell is one (day, segment) combination of the monthly analysis grid.
// Rate is nil until observed or imputed.
type SegmentCell struct {
	Date     time.Time `json:"date"`
	Category Category  `json:"category"`
	Zone     string    `json:"zone"`
	Rooms    int       `json:"rooms"`
	Rate     *float64  `json:"rate"`
	Imputed  bool      `json:"imputed"`
}

// Segment returns the cell's segment key.
func (c SegmentCell) Segment() Segment {
	return Segment{Category: c.Category, Zone: c.Zone, Rooms: c.Rooms}
}

// ADRResult is the imputed month grid filtered to one segment, plus the
// grid-wide maximum rate used to scale chart axes.
type ADRResult struct {
	Segment Segment       `json:"segment"`
	Period  Period        `json:"period"`
	Days    []SegmentCell `json:"days"`
	MaxRate float64       `json:"max_rate"`
}

// OccupancyDay is one day of available/sold room counts for a segment.
// Occupancy is nil when no rooms were available.
type OccupancyDay struct {
	Date      time.Time `json:"date"`
	Available int       `json:"available"`
	Sold      int       `json:"sold"`
	Occupancy *float64  `json:"occupancy"`
}

// RevPARDay is one day of revenue per available room for a segment.
type RevPARDay struct {
	Date   time.Time `json:"date"`
	RevPAR *float64  `json:"revpar"`
}

// PaceDay is one booking-date bucket of the booking pace report.
type PaceDay struct {
	Date         time.Time `json:"date"`
	Active       int       `json:"active"`
	Cancelled    int       `json:"cancelled"`
	Total        int       `json:"total"`
	CancelledPct float64   `json:"cancelled_pct"`
}

// LeadTimeDay is the mean booking lead time for one booking date.
type LeadTimeDay struct {
	Date         time.Time `json:"date"`
	MeanLeadTime float64   `json:"mean_lead_time"`
}

// LeadTimeReport carries the per-date means plus the raw lead-time values
// for histogram rendering.
type LeadTimeReport struct {
	Days   []LeadTimeDay `json:"days"`
	Values []int         `json:"values"`
}

// CountryCount is one country's booking count within a date range.
type CountryCount struct {
	Country string `json:"country"`
	Count   int    `json:"count"`
}
