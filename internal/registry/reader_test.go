package registry

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/stayops/revdash/internal/domain"
)

func writeRegistryFixture(t *testing.T, rows [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	header := []any{"ID", "Category", "Zone", "Rooms", "Opening", "Closing"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	path := filepath.Join(t.TempDir(), "properties.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func TestReadParsesProperties(t *testing.T) {
	path := writeRegistryFixture(t, [][]any{
		{"P-01", "Superior", "Centro", "2", "2024-01-01", "2026-01-01"},
		{"P-02", "Economy", "Puerto", "1", "2024-06-15", "2025-06-15"},
	})

	props, err := Read(path)
	require.NoError(t, err)
	require.Len(t, props, 2)

	p := props[0]
	require.Equal(t, "P-01", p.ID)
	require.Equal(t, domain.CategorySuperior, p.Category)
	require.Equal(t, "Centro", p.Zone)
	require.Equal(t, 2, p.Rooms)
	require.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), p.Opening)
	require.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), p.Closing)

	idx := Index(props)
	require.Equal(t, "Puerto", idx["P-02"].Zone)
}

func TestReadRejectsUnknownCategory(t *testing.T) {
	path := writeRegistryFixture(t, [][]any{
		{"P-01", "Luxury", "Centro", "2", "2024-01-01", "2026-01-01"},
	})

	_, err := Read(path)
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrSourceRead))
}

func TestReadRejectsInvertedValidityWindow(t *testing.T) {
	path := writeRegistryFixture(t, [][]any{
		{"P-01", "Superior", "Centro", "2", "2026-01-01", "2024-01-01"},
	})

	_, err := Read(path)
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrSourceRead))
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.xlsx"))
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrSourceRead))
}
