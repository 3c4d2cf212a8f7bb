package ledger

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/stayops/revdash/internal/domain"
)

// preferredSheet is the sheet name the PMS export uses. When absent the
// first sheet is read instead.
const preferredSheet = "RESERVAS"

// Ledger column names. The export schema is fixed; a missing required
// column fails the whole load.
const (
	colBookingID       = "Booking ID"
	colBookingDate     = "Booking Date"
	colProperty        = "Property"
	colCountry         = "Country"
	colAdults          = "Adults"
	colChildren        = "Children"
	colChannel         = "Channel"
	colCheckIn         = "Check In"
	colCheckOut        = "Check Out"
	colNights          = "Nights"
	colStayAmount      = "Stay Amount"
	colEstablishmentID = "Establishment ID"
	colRatePlan        = "Rate Plan"
	colStatus          = "Status"
)

var requiredColumns = []string{
	colBookingID, colBookingDate, colProperty, colCountry, colAdults,
	colChildren, colChannel, colCheckIn, colCheckOut, colNights,
	colStayAmount, colEstablishmentID, colRatePlan, colStatus,
}

// dateLayouts covers the formats the PMS export has been seen to emit.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006",
	"1-2-06",
	"01-02-06",
	time.RFC3339,
}

// Read loads the full reservations ledger from an xlsx snapshot. It fails
// on an unreadable file, a missing required column, or an unparsable row;
// there is no silent fallback.
func Read(path string) ([]domain.Booking, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open ledger %s: %v", domain.ErrSourceRead, path, err)
	}
	defer f.Close()

	sheet, err := pickSheet(f)
	if err != nil {
		return nil, err
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %s: %v", domain.ErrSourceRead, sheet, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, fmt.Errorf("%w: ledger %s is empty", domain.ErrSourceRead, path)
	}
	header, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", domain.ErrSourceRead, err)
	}

	colMap := make(map[string]int, len(header))
	for i, col := range header {
		colMap[strings.TrimSpace(col)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := colMap[col]; !ok {
			return nil, fmt.Errorf("%w: ledger missing required column %q", domain.ErrSourceRead, col)
		}
	}

	var bookings []domain.Booking
	line := 1
	for rows.Next() {
		line++
		record, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("%w: read row %d: %v", domain.ErrSourceRead, line, err)
		}
		if isBlank(record) {
			continue
		}

		b, err := parseRow(record, colMap)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", domain.ErrSourceRead, line, err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("%w: iterate rows: %v", domain.ErrSourceRead, err)
	}

	return bookings, nil
}

func pickSheet(f *excelize.File) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("%w: workbook has no sheets", domain.ErrSourceRead)
	}
	for _, s := range sheets {
		if s == preferredSheet {
			return s, nil
		}
	}
	return sheets[0], nil
}

func parseRow(record []string, colMap map[string]int) (domain.Booking, error) {
	get := func(col string) string {
		if idx, ok := colMap[col]; ok && idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}

	b := domain.Booking{
		ID:           get(colBookingID),
		PropertyCode: get(colProperty),
		Country:      get(colCountry),
		Channel:      get(colChannel),
		PropertyID:   get(colEstablishmentID),
		RatePlan:     get(colRatePlan),
	}
	if b.ID == "" {
		return b, fmt.Errorf("missing booking id")
	}

	var err error
	if b.BookingDate, err = parseDate(get(colBookingDate)); err != nil {
		return b, fmt.Errorf("booking date: %v", err)
	}
	if b.Entry, err = parseDate(get(colCheckIn)); err != nil {
		return b, fmt.Errorf("check in: %v", err)
	}
	if b.Departure, err = parseDate(get(colCheckOut)); err != nil {
		return b, fmt.Errorf("check out: %v", err)
	}
	if b.Nights, err = parseInt(get(colNights)); err != nil {
		return b, fmt.Errorf("nights: %v", err)
	}
	if b.Adults, err = parseInt(get(colAdults)); err != nil {
		return b, fmt.Errorf("adults: %v", err)
	}
	if b.Children, err = parseInt(get(colChildren)); err != nil {
		return b, fmt.Errorf("children: %v", err)
	}
	if b.GrossStay, err = parseFloat(get(colStayAmount)); err != nil {
		return b, fmt.Errorf("stay amount: %v", err)
	}
	if b.Status, err = parseStatus(get(colStatus)); err != nil {
		return b, err
	}

	if plan := get(colRatePlan); plan != "" {
		b.PartySize, b.NonRefundable, err = ParseRatePlan(plan)
		if err != nil {
			return b, err
		}
	}

	b.LeadTimeDays = leadTimeDays(b.BookingDate, b.Entry)

	return b, nil
}

// ParseRatePlan decodes a plan code such as "04 PAX NR": the leading two
// characters are the party size, a trailing NR marks a non-refundable rate.
func ParseRatePlan(plan string) (party int, nonRefundable bool, err error) {
	if len(plan) < 2 {
		return 0, false, fmt.Errorf("malformed rate plan %q", plan)
	}
	party, err = strconv.Atoi(strings.TrimSpace(plan[:2]))
	if err != nil {
		return 0, false, fmt.Errorf("malformed rate plan %q", plan)
	}
	switch strings.TrimSpace(plan[2:]) {
	case "PAX NR":
		return party, true, nil
	case "PAX":
		return party, false, nil
	default:
		return 0, false, fmt.Errorf("malformed rate plan %q", plan)
	}
}

// parseStatus accepts both the current export values and the legacy
// Spanish ones still present in older snapshots.
func parseStatus(s string) (domain.BookingStatus, error) {
	switch strings.ToUpper(s) {
	case "ACTIVE", "ACTIVA":
		return domain.StatusActive, nil
	case "CANCELLED", "ANULADA":
		return domain.StatusCancelled, nil
	default:
		return "", fmt.Errorf("unknown status %q", s)
	}
}

// leadTimeDays is the whole-day gap between booking and arrival, counting
// the arrival day itself.
func leadTimeDays(booked, entry time.Time) int {
	return int(math.Round(entry.Sub(booked).Hours()/24)) + 1
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable date %q", s)
}

func parseInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	f, err := parseFloat(s)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("unparsable number %q", s)
	}
	return f, nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
