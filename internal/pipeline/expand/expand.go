// Package expand explodes month-overlapping bookings into per-night rate
// contributions and aggregates them onto a (day x segment) grid.
package expand

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/stayops/revdash/internal/domain"
	"github.com/stayops/revdash/pkg/logger"
)

// FilterMonth keeps active bookings with at least one night inside the
// period: entry on or before month end and departure on or after month start.
func FilterMonth(bookings []domain.Booking, period domain.Period) []domain.Booking {
	start, end := period.Start(), period.End()
	out := make([]domain.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.Status != domain.StatusActive {
			continue
		}
		if b.Entry.After(end) || b.Departure.Before(start) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// BuildGrid aggregates normalized booking rates onto the full month grid:
// every calendar day of the period crossed with every segment observed in
// the bookings. A cell's rate is the mean of the normalized rates of all
// bookings whose [entry, departure) interval covers that day; days no
// booking covers get a nil rate and the imputed flag.
//
// Bookings whose property id is missing from the registry carry no segment
// and are dropped (logged at debug level).
//
// Contributions are accumulated per booking night rather than scanned per
// cell, so the cost is O(bookings x nights-in-month), not
// O(days x segments x bookings).
func BuildGrid(bookings []domain.Booking, props map[string]domain.Property, period domain.Period) []domain.SegmentCell {
	start := period.Start()
	days := period.Days()

	// Per segment, per day-index, the rate samples covering that night.
	samples := make(map[domain.Segment][][]float64)
	dropped := 0

	for _, b := range bookings {
		p, ok := props[b.PropertyID]
		if !ok {
			dropped++
			continue
		}
		seg := domain.Segment{Category: p.Category, Zone: p.Zone, Rooms: p.Rooms}
		if _, ok := samples[seg]; !ok {
			samples[seg] = make([][]float64, days)
		}

		first := dayIndex(start, b.Entry, days)
		last := dayIndex(start, b.Departure, days+1) - 1 // departure night not slept
		if last >= days {
			last = days - 1
		}
		for i := first; i <= last; i++ {
			samples[seg][i] = append(samples[seg][i], b.NormalizedRate)
		}
	}

	if dropped > 0 {
		logger.Log.Debug().Int("count", dropped).Msg("bookings without registry match dropped from grid")
	}

	segments := make([]domain.Segment, 0, len(samples))
	for seg := range samples {
		segments = append(segments, seg)
	}
	sortSegments(segments)

	cells := make([]domain.SegmentCell, 0, len(segments)*days)
	for _, seg := range segments {
		for i := 0; i < days; i++ {
			cell := domain.SegmentCell{
				Date:     start.AddDate(0, 0, i),
				Category: seg.Category,
				Zone:     seg.Zone,
				Rooms:    seg.Rooms,
			}
			if s := samples[seg][i]; len(s) > 0 {
				mean := stat.Mean(s, nil)
				cell.Rate = &mean
			} else {
				cell.Imputed = true
			}
			cells = append(cells, cell)
		}
	}

	return cells
}

// dayIndex clamps t to [0, max) as an offset in days from start.
func dayIndex(start, t time.Time, max int) int {
	idx := int(t.Sub(start).Hours() / 24)
	if idx < 0 {
		return 0
	}
	if idx > max {
		return max
	}
	return idx
}

func sortSegments(segments []domain.Segment) {
	sort.Slice(segments, func(i, j int) bool {
		oi, _ := segments[i].Category.Ordinal()
		oj, _ := segments[j].Category.Ordinal()
		if oi != oj {
			return oi < oj
		}
		if segments[i].Zone != segments[j].Zone {
			return segments[i].Zone < segments[j].Zone
		}
		return segments[i].Rooms < segments[j].Rooms
	})
}

// FilterSegment keeps only the cells of one segment, preserving day order.
func FilterSegment(cells []domain.SegmentCell, seg domain.Segment) []domain.SegmentCell {
	out := make([]domain.SegmentCell, 0, 31)
	for _, c := range cells {
		if c.Segment() == seg {
			out = append(out, c)
		}
	}
	return out
}
