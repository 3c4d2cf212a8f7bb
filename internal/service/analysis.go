package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
	"gonum.org/v1/gonum/stat"

	"github.com/stayops/revdash/internal/cache"
	"github.com/stayops/revdash/internal/config"
	"github.com/stayops/revdash/internal/domain"
	"github.com/stayops/revdash/internal/export"
	"github.com/stayops/revdash/internal/ledger"
	"github.com/stayops/revdash/internal/pipeline/expand"
	"github.com/stayops/revdash/internal/pipeline/impute"
	"github.com/stayops/revdash/internal/pipeline/occupancy"
	"github.com/stayops/revdash/internal/pipeline/rate"
	"github.com/stayops/revdash/internal/pipeline/revpar"
	"github.com/stayops/revdash/internal/registry"
)

// Booking pace window bounds.
const (
	MinPaceDays = 7
	MaxPaceDays = 30
)

const topCountries = 10

// AnalysisService runs the reporting pipeline against the configured
// ledger and registry snapshots. Every request re-reads the sources;
// results are memoized under fingerprinted keys and concurrent identical
// requests are coalesced, so the re-read is usually a stat call.
type AnalysisService struct {
	data  config.DataConfig
	cache cache.AnalysisCache
	group singleflight.Group
}

func NewAnalysisService(data config.DataConfig, c cache.AnalysisCache) *AnalysisService {
	if c == nil {
		c = cache.NewMemoryCache()
	}
	return &AnalysisService{data: data, cache: c}
}

// ADRGrid runs the full rate pipeline for the period and returns the
// imputed month grid filtered to the requested segment.
func (s *AnalysisService) ADRGrid(ctx context.Context, period domain.Period, seg domain.Segment) (*domain.ADRResult, error) {
	key, err := s.key("adr", period, seg)
	if err != nil {
		return nil, err
	}
	return cached(ctx, s, key, func() (*domain.ADRResult, error) {
		return s.computeADR(period, seg)
	})
}

// Occupancy returns the per-day available/sold/occupancy series for the
// segment over the period.
func (s *AnalysisService) Occupancy(ctx context.Context, period domain.Period, seg domain.Segment) ([]domain.OccupancyDay, error) {
	key, err := s.key("occupancy", period, seg)
	if err != nil {
		return nil, err
	}
	return cached(ctx, s, key, func() ([]domain.OccupancyDay, error) {
		return s.computeOccupancy(period, seg)
	})
}

// RevPAR joins the segment's imputed rate series with its occupancy series.
func (s *AnalysisService) RevPAR(ctx context.Context, period domain.Period, seg domain.Segment) ([]domain.RevPARDay, error) {
	key, err := s.key("revpar", period, seg)
	if err != nil {
		return nil, err
	}
	return cached(ctx, s, key, func() ([]domain.RevPARDay, error) {
		adr, err := s.computeADR(period, seg)
		if err != nil {
			return nil, err
		}
		occ, err := s.computeOccupancy(period, seg)
		if err != nil {
			return nil, err
		}
		return revpar.Join(adr.Days, occ), nil
	})
}

// Export writes the segment's imputed month grid to the export directory
// and returns the file path.
func (s *AnalysisService) Export(ctx context.Context, period domain.Period, seg domain.Segment) (string, error) {
	adr, err := s.ADRGrid(ctx, period, seg)
	if err != nil {
		return "", err
	}
	path, err := export.WriteGrid(s.data.ExportDir, adr)
	if err != nil {
		return "", err
	}
	log.Info().Str("path", path).Msg("grid exported")
	return path, nil
}

// BookingPace returns per booking-date counts of active vs cancelled
// bookings over the trailing days window.
func (s *AnalysisService) BookingPace(ctx context.Context, days int) ([]domain.PaceDay, error) {
	if days < MinPaceDays || days > MaxPaceDays {
		return nil, fmt.Errorf("%w: pace window %d outside [%d,%d]", domain.ErrInvalidBooking, days, MinPaceDays, MaxPaceDays)
	}
	fp, err := cache.Fingerprint(s.data.LedgerPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceRead, err)
	}
	key := cache.Key("pace", fp, strconv.Itoa(days))
	return cached(ctx, s, key, func() ([]domain.PaceDay, error) {
		return s.computePace(days)
	})
}

// LeadTimes returns the lead-time distribution of active bookings booked
// within [from, to].
func (s *AnalysisService) LeadTimes(ctx context.Context, from, to time.Time) (*domain.LeadTimeReport, error) {
	fp, err := cache.Fingerprint(s.data.LedgerPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceRead, err)
	}
	key := cache.Key("lead_time", fp, from.Format("2006-01-02"), to.Format("2006-01-02"))
	return cached(ctx, s, key, func() (*domain.LeadTimeReport, error) {
		return s.computeLeadTimes(from, to)
	})
}

// Countries returns the top booking countries within [from, to], ascending
// by count.
func (s *AnalysisService) Countries(ctx context.Context, from, to time.Time) ([]domain.CountryCount, error) {
	fp, err := cache.Fingerprint(s.data.LedgerPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceRead, err)
	}
	key := cache.Key("countries", fp, from.Format("2006-01-02"), to.Format("2006-01-02"))
	return cached(ctx, s, key, func() ([]domain.CountryCount, error) {
		return s.computeCountries(from, to)
	})
}

func (s *AnalysisService) computeADR(period domain.Period, seg domain.Segment) (*domain.ADRResult, error) {
	bookings, err := s.loadLedger(false)
	if err != nil {
		return nil, err
	}
	props, err := registry.Read(s.data.RegistryPath)
	if err != nil {
		return nil, err
	}

	window := expand.FilterMonth(bookings, period)
	for i := range window {
		if err := rate.NormalizeBooking(&window[i]); err != nil {
			return nil, err
		}
	}

	grid := expand.BuildGrid(window, registry.Index(props), period)
	if len(grid) == 0 {
		// No bookings touch the month at all: nothing to impute from,
		// rendered downstream as an empty chart.
		return &domain.ADRResult{Segment: seg, Period: period, Days: []domain.SegmentCell{}}, nil
	}

	filled, maxRate, err := impute.New(impute.DefaultNeighbors).Fill(grid)
	if err != nil {
		return nil, err
	}

	return &domain.ADRResult{
		Segment: seg,
		Period:  period,
		Days:    expand.FilterSegment(filled, seg),
		MaxRate: maxRate,
	}, nil
}

func (s *AnalysisService) computeOccupancy(period domain.Period, seg domain.Segment) ([]domain.OccupancyDay, error) {
	bookings, err := s.loadLedger(true)
	if err != nil {
		return nil, err
	}
	props, err := registry.Read(s.data.RegistryPath)
	if err != nil {
		return nil, err
	}
	return occupancy.Series(props, bookings, period, seg), nil
}

func (s *AnalysisService) computePace(days int) ([]domain.PaceDay, error) {
	bookings, err := s.loadLedger(true)
	if err != nil {
		return nil, err
	}

	active := make(map[time.Time]int)
	cancelled := make(map[time.Time]int)
	for _, b := range bookings {
		switch b.Status {
		case domain.StatusActive:
			active[b.BookingDate]++
		case domain.StatusCancelled:
			cancelled[b.BookingDate]++
		}
	}

	dates := make([]time.Time, 0, len(active))
	for d := range active {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	if len(dates) > days {
		dates = dates[len(dates)-days:]
	}

	out := make([]domain.PaceDay, 0, len(dates))
	for _, d := range dates {
		day := domain.PaceDay{
			Date:      d,
			Active:    active[d],
			Cancelled: cancelled[d],
		}
		day.Total = day.Active + day.Cancelled
		if day.Total > 0 {
			day.CancelledPct = math.Round(float64(day.Cancelled)/float64(day.Total)*10000) / 100
		}
		out = append(out, day)
	}
	return out, nil
}

func (s *AnalysisService) computeLeadTimes(from, to time.Time) (*domain.LeadTimeReport, error) {
	bookings, err := s.loadLedger(true)
	if err != nil {
		return nil, err
	}

	perDate := make(map[time.Time][]float64)
	var values []int
	for _, b := range bookings {
		if b.Status != domain.StatusActive {
			continue
		}
		if b.BookingDate.Before(from) || b.BookingDate.After(to) {
			continue
		}
		perDate[b.BookingDate] = append(perDate[b.BookingDate], float64(b.LeadTimeDays))
		values = append(values, b.LeadTimeDays)
	}

	dates := make([]time.Time, 0, len(perDate))
	for d := range perDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	report := &domain.LeadTimeReport{Values: values}
	for _, d := range dates {
		report.Days = append(report.Days, domain.LeadTimeDay{
			Date:         d,
			MeanLeadTime: math.Round(stat.Mean(perDate[d], nil)),
		})
	}
	return report, nil
}

func (s *AnalysisService) computeCountries(from, to time.Time) ([]domain.CountryCount, error) {
	bookings, err := s.loadLedger(true)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, b := range bookings {
		if b.Status != domain.StatusActive {
			continue
		}
		if b.BookingDate.Before(from) || b.BookingDate.After(to) {
			continue
		}
		counts[b.Country]++
	}

	out := make([]domain.CountryCount, 0, len(counts))
	for c, n := range counts {
		out = append(out, domain.CountryCount{Country: c, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count < out[j].Count
		}
		return out[i].Country < out[j].Country
	})
	if len(out) > topCountries {
		out = out[len(out)-topCountries:]
	}
	return out, nil
}

func (s *AnalysisService) loadLedger(includeDirect bool) ([]domain.Booking, error) {
	raw, err := ledger.Read(s.data.LedgerPath)
	if err != nil {
		return nil, err
	}
	return ledger.Clean(raw, includeDirect), nil
}

// key builds a cache key discriminated by both source fingerprints and the
// request parameters.
func (s *AnalysisService) key(op string, period domain.Period, seg domain.Segment) (string, error) {
	ledgerFP, err := cache.Fingerprint(s.data.LedgerPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSourceRead, err)
	}
	registryFP, err := cache.Fingerprint(s.data.RegistryPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSourceRead, err)
	}
	return cache.Key(op, ledgerFP, registryFP, period.String(),
		string(seg.Category), seg.Zone, strconv.Itoa(seg.Rooms)), nil
}

// cached serves the computation from cache when possible, otherwise runs it
// once (coalescing concurrent identical requests) and stores the result.
func cached[T any](ctx context.Context, s *AnalysisService, key string, compute func() (T, error)) (T, error) {
	var zero T

	var out T
	if ok, err := s.cache.Get(ctx, key, &out); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache get failed")
	} else if ok {
		return out, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		res, err := compute()
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, key, res); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache set failed")
		}
		return res, nil
	})
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}
