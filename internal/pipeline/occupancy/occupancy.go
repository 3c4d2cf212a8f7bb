// Package occupancy derives per-day available and sold room-night counts
// for one segment from the property registry and the cleaned ledger.
package occupancy

import (
	"github.com/shopspring/decimal"

	"github.com/stayops/revdash/internal/domain"
)

// Series computes, for every calendar day of the period, how many units of
// the segment were sellable and how many were occupied. The booking slice
// must already be cleaned with the direct channel kept in: an own-website
// sale still occupies the room.
//
// Occupancy is sold/available as a percentage rounded to 2 decimals; when
// nothing was available it is nil, never a division error.
func Series(props []domain.Property, bookings []domain.Booking, period domain.Period, seg domain.Segment) []domain.OccupancyDay {
	start, end := period.Start(), period.End()

	// Registry restricted to the segment and the month window up front.
	var units []domain.Property
	for _, p := range props {
		if p.Category != seg.Category || p.Zone != seg.Zone || p.Rooms != seg.Rooms {
			continue
		}
		if p.Opening.After(end) || p.Closing.Before(start) {
			continue
		}
		units = append(units, p)
	}

	idx := make(map[string]domain.Property, len(units))
	for _, p := range units {
		idx[p.ID] = p
	}

	// Active month-overlapping bookings belonging to one of the segment's
	// units. Departure must be strictly after month start for the booking
	// to occupy any night of the month.
	var stays []domain.Booking
	for _, b := range bookings {
		if b.Status != domain.StatusActive {
			continue
		}
		if b.Entry.After(end) || !b.Departure.After(start) {
			continue
		}
		if _, ok := idx[b.PropertyID]; !ok {
			continue
		}
		stays = append(stays, b)
	}

	days := make([]domain.OccupancyDay, 0, period.Days())
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		day := domain.OccupancyDay{Date: d}
		for _, p := range units {
			if p.OpenOn(d) {
				day.Available++
			}
		}
		for _, b := range stays {
			if b.StayCovers(d) {
				day.Sold++
			}
		}
		if day.Available > 0 {
			pct := round2(float64(day.Sold) / float64(day.Available) * 100)
			day.Occupancy = &pct
		}
		days = append(days, day)
	}

	return days
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
