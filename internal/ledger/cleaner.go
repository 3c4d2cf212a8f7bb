package ledger

import (
	"strings"
	"time"

	"github.com/stayops/revdash/internal/domain"
	"github.com/stayops/revdash/pkg/logger"
)

// baseDenylist names the test, maintenance and non-market channels that
// never count towards market metrics.
var baseDenylist = []string{
	"idealista",
	"NO VACACIONAL",
	"CUNA",
	"PRUEBA",
	"Parking",
	"Propietario",
	"LETMALAGA",
}

// directChannel is the own-website sales channel. Rate analysis excludes it
// (direct prices are not market-set); occupancy keeps it (a sold night is a
// sold night).
const directChannel = "DIRECTAS"

// badPropertyCodes are two retired units that still appear in old snapshots.
var badPropertyCodes = map[string]bool{
	"Puerto_7_5-209": true,
	"Puerto_7_5-210": true,
}

// Clean filters the raw ledger down to analyzable market bookings:
// denylisted channels out, provisional/parking units out, duplicates
// collapsed to their first occurrence, date fields truncated to calendar
// days. includeDirect keeps the own-website channel in the result.
func Clean(bookings []domain.Booking, includeDirect bool) []domain.Booking {
	denied := make(map[string]bool, len(baseDenylist)+1)
	for _, ch := range baseDenylist {
		denied[ch] = true
	}
	if !includeDirect {
		denied[directChannel] = true
	}

	seen := make(map[string]bool, len(bookings))
	cleaned := make([]domain.Booking, 0, len(bookings))
	for _, b := range bookings {
		if denied[b.Channel] {
			continue
		}
		if strings.Contains(b.PropertyCode, "Provisional") ||
			strings.Contains(b.PropertyCode, "Park") ||
			badPropertyCodes[b.PropertyCode] {
			continue
		}
		if seen[b.ID] {
			continue
		}
		seen[b.ID] = true

		b.Entry = truncateDay(b.Entry)
		b.Departure = truncateDay(b.Departure)
		b.BookingDate = truncateDay(b.BookingDate)
		cleaned = append(cleaned, b)
	}

	logger.Log.Debug().
		Int("raw", len(bookings)).
		Int("cleaned", len(cleaned)).
		Bool("include_direct", includeDirect).
		Msg("ledger cleaned")

	return cleaned
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
