package expand

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stayops/revdash/internal/domain"
)

var march = domain.Period{Year: 2025, Month: time.March}

func day(d int) time.Time {
	return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC)
}

func superiorA() map[string]domain.Property {
	return map[string]domain.Property{
		"P-01": {ID: "P-01", Category: domain.CategorySuperior, Zone: "A", Rooms: 2},
	}
}

func stay(id string, entry, departure time.Time, rate float64) domain.Booking {
	return domain.Booking{
		ID:             id,
		PropertyID:     "P-01",
		Status:         domain.StatusActive,
		Entry:          entry,
		Departure:      departure,
		NormalizedRate: rate,
	}
}

func TestFilterMonth(t *testing.T) {
	bookings := []domain.Booking{
		stay("in", day(10), day(12), 100),
		stay("straddles-start", time.Date(2025, 2, 25, 0, 0, 0, 0, time.UTC), day(3), 100),
		stay("straddles-end", day(30), time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC), 100),
		stay("before", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC), 100),
		stay("after", time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC), time.Date(2025, 4, 9, 0, 0, 0, 0, time.UTC), 100),
	}
	cancelled := stay("cancelled", day(10), day(12), 100)
	cancelled.Status = domain.StatusCancelled
	bookings = append(bookings, cancelled)

	got := FilterMonth(bookings, march)
	require.Len(t, got, 3)
	ids := []string{got[0].ID, got[1].ID, got[2].ID}
	require.ElementsMatch(t, []string{"in", "straddles-start", "straddles-end"}, ids)
}

func TestBuildGridCoversExactlyTheMonth(t *testing.T) {
	cells := BuildGrid([]domain.Booking{stay("r1", day(10), day(12), 100)}, superiorA(), march)
	require.Len(t, cells, 31)

	seen := make(map[time.Time]bool)
	for _, c := range cells {
		require.Equal(t, time.March, c.Date.Month())
		require.Equal(t, 2025, c.Date.Year())
		require.False(t, seen[c.Date], "duplicate date %s", c.Date)
		seen[c.Date] = true
	}
	require.Len(t, seen, 31)
}

func TestBuildGridObservedMeanScenario(t *testing.T) {
	// Two week-long bookings, both normalized to 100: every covered night
	// observes mean 100, every other night needs imputation.
	bookings := []domain.Booking{
		stay("r1", day(1), day(8), 100),
		stay("r2", day(1), day(8), 100),
	}

	cells := BuildGrid(bookings, superiorA(), march)
	require.Len(t, cells, 31)

	for _, c := range cells {
		require.Equal(t, domain.CategorySuperior, c.Category)
		require.Equal(t, "A", c.Zone)
		require.Equal(t, 2, c.Rooms)

		if c.Date.Day() <= 7 {
			require.NotNil(t, c.Rate, "day %d", c.Date.Day())
			require.InDelta(t, 100.0, *c.Rate, 1e-9)
			require.False(t, c.Imputed)
		} else {
			// Departure day (the 8th) is not slept, so it is unobserved.
			require.Nil(t, c.Rate, "day %d", c.Date.Day())
			require.True(t, c.Imputed)
		}
	}
}

func TestBuildGridAveragesDistinctRates(t *testing.T) {
	bookings := []domain.Booking{
		stay("r1", day(10), day(12), 90),
		stay("r2", day(11), day(13), 110),
	}

	cells := BuildGrid(bookings, superiorA(), march)
	byDay := make(map[int]domain.SegmentCell)
	for _, c := range cells {
		byDay[c.Date.Day()] = c
	}

	require.InDelta(t, 90.0, *byDay[10].Rate, 1e-9)
	require.InDelta(t, 100.0, *byDay[11].Rate, 1e-9) // both bookings cover the 11th
	require.InDelta(t, 110.0, *byDay[12].Rate, 1e-9)
	require.Nil(t, byDay[13].Rate)
}

func TestBuildGridClampsCrossMonthStays(t *testing.T) {
	// Stay from Feb 25 to Apr 2 contributes to every March night only.
	bookings := []domain.Booking{
		stay("r1", time.Date(2025, 2, 25, 0, 0, 0, 0, time.UTC), time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC), 80),
	}

	cells := BuildGrid(bookings, superiorA(), march)
	require.Len(t, cells, 31)
	for _, c := range cells {
		require.NotNil(t, c.Rate)
		require.InDelta(t, 80.0, *c.Rate, 1e-9)
	}
}

func TestBuildGridDropsUnregisteredProperties(t *testing.T) {
	b := stay("r1", day(10), day(12), 100)
	b.PropertyID = "ghost"

	cells := BuildGrid([]domain.Booking{b}, superiorA(), march)
	require.Empty(t, cells)
}

func TestFilterSegment(t *testing.T) {
	props := superiorA()
	props["P-02"] = domain.Property{ID: "P-02", Category: domain.CategoryEconomy, Zone: "B", Rooms: 1}

	b2 := stay("r2", day(5), day(7), 60)
	b2.PropertyID = "P-02"

	cells := BuildGrid([]domain.Booking{stay("r1", day(10), day(12), 100), b2}, props, march)
	require.Len(t, cells, 62)

	got := FilterSegment(cells, domain.Segment{Category: domain.CategorySuperior, Zone: "A", Rooms: 2})
	require.Len(t, got, 31)
	for _, c := range got {
		require.Equal(t, domain.CategorySuperior, c.Category)
	}
}
