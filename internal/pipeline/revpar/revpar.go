// Package revpar joins a segment's rate series with its occupancy series
// into revenue per available room.
package revpar

import (
	"github.com/shopspring/decimal"

	"github.com/stayops/revdash/internal/domain"
)

// Join left-joins the rate series to the occupancy series on date and
// computes RevPAR = rate x occupancy / 100, rounded to 2 decimals. A day
// with no occupancy match, nil occupancy or nil rate yields nil RevPAR.
func Join(rates []domain.SegmentCell, occupancy []domain.OccupancyDay) []domain.RevPARDay {
	occByDate := make(map[int64]*float64, len(occupancy))
	for _, o := range occupancy {
		occByDate[o.Date.Unix()] = o.Occupancy
	}

	out := make([]domain.RevPARDay, 0, len(rates))
	for _, r := range rates {
		day := domain.RevPARDay{Date: r.Date}
		if occ, ok := occByDate[r.Date.Unix()]; ok && occ != nil && r.Rate != nil {
			v := round2(*r.Rate * *occ / 100)
			day.RevPAR = &v
		}
		out = append(out, day)
	}
	return out
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
