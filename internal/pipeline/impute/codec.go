// Package impute fills unobserved grid cells by K-nearest-neighbor
// imputation over the cells' encoded categorical and temporal features.
package impute

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/stayops/revdash/internal/domain"
)

const secondsPerDay = 86400

// Codec is the reversible encoding between a SegmentCell and its numeric
// feature vector. Layout: [zone one-hot..., date ordinal, category ordinal,
// rooms, rate]. Rate is NaN when unobserved. The zone vocabulary is sorted
// so the encoding is deterministic for a given grid.
type Codec struct {
	zones []string
}

// NewCodec builds a codec whose zone vocabulary is the set of zones present
// in the given cells.
func NewCodec(cells []domain.SegmentCell) *Codec {
	seen := make(map[string]bool)
	var zones []string
	for _, c := range cells {
		if !seen[c.Zone] {
			seen[c.Zone] = true
			zones = append(zones, c.Zone)
		}
	}
	sort.Strings(zones)
	return &Codec{zones: zones}
}

// Width returns the feature vector length.
func (c *Codec) Width() int {
	return len(c.zones) + 4
}

// rateIndex is the position of the (possibly missing) rate feature.
func (c *Codec) rateIndex() int {
	return c.Width() - 1
}

// Encode maps a cell to its feature vector.
func (c *Codec) Encode(cell domain.SegmentCell) ([]float64, error) {
	vec := make([]float64, c.Width())

	zi := sort.SearchStrings(c.zones, cell.Zone)
	if zi >= len(c.zones) || c.zones[zi] != cell.Zone {
		return nil, fmt.Errorf("zone %q not in codec vocabulary", cell.Zone)
	}
	vec[zi] = 1

	ord, ok := cell.Category.Ordinal()
	if !ok {
		return nil, fmt.Errorf("unknown category %q", cell.Category)
	}

	n := len(c.zones)
	vec[n] = float64(cell.Date.Unix() / secondsPerDay)
	vec[n+1] = float64(ord)
	vec[n+2] = float64(cell.Rooms)
	if cell.Rate != nil {
		vec[n+3] = *cell.Rate
	} else {
		vec[n+3] = math.NaN()
	}

	return vec, nil
}

// Decode reconstructs a cell from its feature vector. The one-hot zone is
// resolved by argmax, the category by rounding its ordinal bucket.
func (c *Codec) Decode(vec []float64) (domain.SegmentCell, error) {
	if len(vec) != c.Width() {
		return domain.SegmentCell{}, fmt.Errorf("feature vector has %d values, want %d", len(vec), c.Width())
	}

	zi, best := 0, math.Inf(-1)
	for i := 0; i < len(c.zones); i++ {
		if vec[i] > best {
			best = vec[i]
			zi = i
		}
	}
	if len(c.zones) == 0 {
		return domain.SegmentCell{}, fmt.Errorf("codec has empty zone vocabulary")
	}

	n := len(c.zones)
	cat, ok := domain.CategoryFromOrdinal(int(math.Round(vec[n+1])))
	if !ok {
		return domain.SegmentCell{}, fmt.Errorf("category ordinal %v out of range", vec[n+1])
	}

	cell := domain.SegmentCell{
		Date:     time.Unix(int64(vec[n])*secondsPerDay, 0).UTC(),
		Category: cat,
		Zone:     c.zones[zi],
		Rooms:    int(math.Round(vec[n+2])),
	}
	if !math.IsNaN(vec[n+3]) {
		r := vec[n+3]
		cell.Rate = &r
	}

	return cell, nil
}
