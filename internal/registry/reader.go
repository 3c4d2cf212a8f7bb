// Package registry loads the property registry snapshot: one row per
// manageable unit with its segment attributes and validity window.
package registry

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/stayops/revdash/internal/domain"
)

const (
	colID       = "ID"
	colCategory = "Category"
	colZone     = "Zone"
	colRooms    = "Rooms"
	colOpening  = "Opening"
	colClosing  = "Closing"
)

var requiredColumns = []string{colID, colCategory, colZone, colRooms, colOpening, colClosing}

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
	"1-2-06",
	"01-02-06",
}

// Read loads all properties from the registry xlsx. Fails loud on an
// unreadable file or malformed rows.
func Read(path string) ([]domain.Property, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open registry %s: %v", domain.ErrSourceRead, path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: registry %s has no sheets", domain.ErrSourceRead, path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: read registry sheet: %v", domain.ErrSourceRead, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: registry %s is empty", domain.ErrSourceRead, path)
	}

	colMap := make(map[string]int, len(rows[0]))
	for i, col := range rows[0] {
		colMap[strings.TrimSpace(col)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := colMap[col]; !ok {
			return nil, fmt.Errorf("%w: registry missing required column %q", domain.ErrSourceRead, col)
		}
	}

	props := make([]domain.Property, 0, len(rows)-1)
	for n, record := range rows[1:] {
		if isBlank(record) {
			continue
		}
		p, err := parseRow(record, colMap)
		if err != nil {
			return nil, fmt.Errorf("%w: registry row %d: %v", domain.ErrSourceRead, n+2, err)
		}
		props = append(props, p)
	}

	return props, nil
}

// Index maps properties by id for segment joins.
func Index(props []domain.Property) map[string]domain.Property {
	idx := make(map[string]domain.Property, len(props))
	for _, p := range props {
		idx[p.ID] = p
	}
	return idx
}

func parseRow(record []string, colMap map[string]int) (domain.Property, error) {
	get := func(col string) string {
		if idx, ok := colMap[col]; ok && idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}

	p := domain.Property{
		ID:   get(colID),
		Zone: get(colZone),
	}
	if p.ID == "" {
		return p, fmt.Errorf("missing property id")
	}

	p.Category = domain.Category(get(colCategory))
	if _, ok := p.Category.Ordinal(); !ok {
		return p, fmt.Errorf("unknown category %q", get(colCategory))
	}

	rooms, err := strconv.Atoi(get(colRooms))
	if err != nil {
		return p, fmt.Errorf("unparsable room count %q", get(colRooms))
	}
	p.Rooms = rooms

	if p.Opening, err = parseDate(get(colOpening)); err != nil {
		return p, fmt.Errorf("opening: %v", err)
	}
	if p.Closing, err = parseDate(get(colClosing)); err != nil {
		return p, fmt.Errorf("closing: %v", err)
	}
	if p.Opening.After(p.Closing) {
		return p, fmt.Errorf("opening %s after closing %s", p.Opening.Format("2006-01-02"), p.Closing.Format("2006-01-02"))
	}

	return p, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable date %q", s)
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
