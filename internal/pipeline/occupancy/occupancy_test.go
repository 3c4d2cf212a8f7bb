package occupancy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stayops/revdash/internal/domain"
)

var march = domain.Period{Year: 2025, Month: time.March}

var segSuperiorA = domain.Segment{Category: domain.CategorySuperior, Zone: "A", Rooms: 2}

func unit(id string, opening, closing time.Time) domain.Property {
	return domain.Property{
		ID:       id,
		Category: domain.CategorySuperior,
		Zone:     "A",
		Rooms:    2,
		Opening:  opening,
		Closing:  closing,
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func activeStay(id, propertyID string, entry, departure time.Time) domain.Booking {
	return domain.Booking{
		ID:         id,
		PropertyID: propertyID,
		Status:     domain.StatusActive,
		Entry:      entry,
		Departure:  departure,
	}
}

func TestSeriesAvailabilityFollowsValidityWindows(t *testing.T) {
	props := []domain.Property{
		unit("P-01", date(2024, 1, 1), date(2026, 1, 1)),
		// Second unit opens mid-month.
		unit("P-02", date(2025, 3, 15), date(2026, 1, 1)),
		// A different segment never counts.
		{ID: "P-03", Category: domain.CategoryEconomy, Zone: "A", Rooms: 2,
			Opening: date(2024, 1, 1), Closing: date(2026, 1, 1)},
	}

	days := Series(props, nil, march, segSuperiorA)
	require.Len(t, days, 31)

	require.Equal(t, 1, days[0].Available)
	require.Equal(t, 1, days[13].Available) // Mar 14
	require.Equal(t, 2, days[14].Available) // Mar 15, second unit opens
	require.Equal(t, 2, days[30].Available)
}

func TestSeriesOccupancyBounds(t *testing.T) {
	props := []domain.Property{
		unit("P-01", date(2024, 1, 1), date(2026, 1, 1)),
		unit("P-02", date(2024, 1, 1), date(2026, 1, 1)),
	}
	bookings := []domain.Booking{
		activeStay("r1", "P-01", date(2025, 3, 10), date(2025, 3, 15)),
		activeStay("r2", "P-02", date(2025, 3, 12), date(2025, 3, 14)),
	}

	days := Series(props, bookings, march, segSuperiorA)
	for _, d := range days {
		require.GreaterOrEqual(t, d.Sold, 0)
		require.LessOrEqual(t, d.Sold, d.Available)
		if d.Occupancy != nil {
			require.GreaterOrEqual(t, *d.Occupancy, 0.0)
			require.LessOrEqual(t, *d.Occupancy, 100.0)
		}
	}

	// Mar 12: both units sold out of two available.
	require.Equal(t, 2, days[11].Sold)
	require.NotNil(t, days[11].Occupancy)
	require.InDelta(t, 100.0, *days[11].Occupancy, 1e-9)

	// Mar 10: one of two sold.
	require.Equal(t, 1, days[9].Sold)
	require.InDelta(t, 50.0, *days[9].Occupancy, 1e-9)

	// Mar 15 is r1's departure day, not slept.
	require.Equal(t, 0, days[14].Sold)
	require.InDelta(t, 0.0, *days[14].Occupancy, 1e-9)
}

func TestSeriesZeroAvailableYieldsNilOccupancy(t *testing.T) {
	// Unit closes Mar 15: from then on nothing is available and occupancy
	// is undefined rather than a division error.
	props := []domain.Property{unit("P-01", date(2024, 1, 1), date(2025, 3, 15))}

	days := Series(props, nil, march, segSuperiorA)
	require.NotNil(t, days[13].Occupancy) // Mar 14 still open
	require.Nil(t, days[14].Occupancy)
	require.Nil(t, days[30].Occupancy)
	require.Equal(t, 0, days[14].Available)
}

func TestSeriesIgnoresCancelledAndForeignBookings(t *testing.T) {
	props := []domain.Property{unit("P-01", date(2024, 1, 1), date(2026, 1, 1))}

	cancelled := activeStay("r1", "P-01", date(2025, 3, 10), date(2025, 3, 15))
	cancelled.Status = domain.StatusCancelled
	foreign := activeStay("r2", "P-99", date(2025, 3, 10), date(2025, 3, 15))

	days := Series(props, []domain.Booking{cancelled, foreign}, march, segSuperiorA)
	for _, d := range days {
		require.Equal(t, 0, d.Sold)
	}
}

func TestSeriesRoundsToTwoDecimals(t *testing.T) {
	props := []domain.Property{
		unit("P-01", date(2024, 1, 1), date(2026, 1, 1)),
		unit("P-02", date(2024, 1, 1), date(2026, 1, 1)),
		unit("P-03", date(2024, 1, 1), date(2026, 1, 1)),
	}
	bookings := []domain.Booking{
		activeStay("r1", "P-01", date(2025, 3, 10), date(2025, 3, 11)),
	}

	days := Series(props, bookings, march, segSuperiorA)
	require.NotNil(t, days[9].Occupancy)
	require.InDelta(t, 33.33, *days[9].Occupancy, 1e-9)
}
