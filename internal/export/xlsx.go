// Package export serializes an imputed month grid to an xlsx file named
// after its segment filter.
package export

import (
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/stayops/revdash/internal/domain"
)

const sheetName = "ADR"

// FileName is the deterministic export name for a segment:
// Data_<category>_hab_<rooms>_<zone>.xlsx.
func FileName(seg domain.Segment) string {
	return fmt.Sprintf("Data_%s_hab_%d_%s.xlsx", seg.Category, seg.Rooms, seg.Zone)
}

// WriteGrid writes the result's day rows to dir and returns the full path.
func WriteGrid(dir string, res *domain.ADRResult) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return "", fmt.Errorf("rename sheet: %w", err)
	}

	header := []any{"Date", "Category", "Zone", "Rooms", "ADR", "Imputed"}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}

	for i, day := range res.Days {
		row := []any{
			day.Date.Format("2006-01-02"),
			string(day.Category),
			day.Zone,
			day.Rooms,
			rateValue(day.Rate),
			day.Imputed,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return "", fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	path := filepath.Join(dir, FileName(res.Segment))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save export %s: %w", path, err)
	}
	return path, nil
}

func rateValue(r *float64) any {
	if r == nil {
		return nil
	}
	return *r
}
