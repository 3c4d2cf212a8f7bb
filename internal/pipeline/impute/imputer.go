package impute

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/stayops/revdash/internal/domain"
)

// DefaultNeighbors is the neighbor count used when the caller does not
// choose one.
const DefaultNeighbors = 5

// Imputer fills missing rates on a month grid. Neighbors are ranked by
// Euclidean distance over every encoded feature except the rate itself, so
// proximity in date, category, zone and room count all pull together.
type Imputer struct {
	neighbors int
}

func New(neighbors int) *Imputer {
	if neighbors <= 0 {
		neighbors = DefaultNeighbors
	}
	return &Imputer{neighbors: neighbors}
}

// Fill returns a copy of the grid with every nil rate replaced by the mean
// rate of the k nearest observed cells, plus the maximum rate across the
// filled grid. Cells that were filled keep Imputed=true. A grid with fewer
// observed cells than k fails with ErrInsufficientData; a grid with no
// missing cells is returned unchanged (modulo the max-rate computation).
func (im *Imputer) Fill(cells []domain.SegmentCell) ([]domain.SegmentCell, float64, error) {
	codec := NewCodec(cells)

	matrix := make([][]float64, len(cells))
	var donors, receivers []int
	for i, c := range cells {
		vec, err := codec.Encode(c)
		if err != nil {
			return nil, 0, fmt.Errorf("encode cell %d: %w", i, err)
		}
		matrix[i] = vec
		if c.Rate != nil {
			donors = append(donors, i)
		} else {
			receivers = append(receivers, i)
		}
	}

	if len(receivers) > 0 && len(donors) < im.neighbors {
		return nil, 0, fmt.Errorf("%w: %d observed cells, need at least %d",
			domain.ErrInsufficientData, len(donors), im.neighbors)
	}

	ri := codec.rateIndex()
	for _, r := range receivers {
		matrix[r][ri] = im.nearestMean(matrix, donors, matrix[r])
	}

	out := make([]domain.SegmentCell, len(cells))
	maxRate := math.Inf(-1)
	for i, vec := range matrix {
		cell, err := codec.Decode(vec)
		if err != nil {
			return nil, 0, fmt.Errorf("decode cell %d: %w", i, err)
		}
		cell.Imputed = cells[i].Imputed
		out[i] = cell
		if cell.Rate != nil && *cell.Rate > maxRate {
			maxRate = *cell.Rate
		}
	}
	if math.IsInf(maxRate, -1) {
		maxRate = 0
	}

	return out, maxRate, nil
}

// nearestMean averages the rates of the k donors closest to target in the
// non-rate feature subspace.
func (im *Imputer) nearestMean(matrix [][]float64, donors []int, target []float64) float64 {
	ri := len(target) - 1

	type scored struct {
		dist float64
		rate float64
	}
	ranked := make([]scored, 0, len(donors))
	for _, d := range donors {
		ranked = append(ranked, scored{
			dist: floats.Distance(matrix[d][:ri], target[:ri], 2),
			rate: matrix[d][ri],
		})
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].dist < ranked[j].dist })

	k := im.neighbors
	if k > len(ranked) {
		k = len(ranked)
	}
	rates := make([]float64, k)
	for i := 0; i < k; i++ {
		rates[i] = ranked[i].rate
	}
	return stat.Mean(rates, nil)
}
