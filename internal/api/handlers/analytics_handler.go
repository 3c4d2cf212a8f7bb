package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/stayops/revdash/internal/domain"
	"github.com/stayops/revdash/internal/service"
)

type AnalyticsHandler struct {
	service *service.AnalysisService
}

func NewAnalyticsHandler(svc *service.AnalysisService) *AnalyticsHandler {
	return &AnalyticsHandler{service: svc}
}

// GetADR handles GET /analytics/adr?period=MM/YYYY&category=&zone=&rooms=.
func (h *AnalyticsHandler) GetADR(c *gin.Context) {
	period, seg, err := parseSegmentQuery(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.service.ADRGrid(c.Request.Context(), period, seg)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetOccupancy handles GET /analytics/occupancy.
func (h *AnalyticsHandler) GetOccupancy(c *gin.Context) {
	period, seg, err := parseSegmentQuery(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	days, err := h.service.Occupancy(c.Request.Context(), period, seg)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"segment": seg, "days": days})
}

// GetRevPAR handles GET /analytics/revpar.
func (h *AnalyticsHandler) GetRevPAR(c *gin.Context) {
	period, seg, err := parseSegmentQuery(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	days, err := h.service.RevPAR(c.Request.Context(), period, seg)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"segment": seg, "days": days})
}

// ExportGrid handles POST /analytics/export. The grid is written server
// side; the response carries the file path.
func (h *AnalyticsHandler) ExportGrid(c *gin.Context) {
	period, seg, err := parseSegmentQuery(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	path, err := h.service.Export(c.Request.Context(), period, seg)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": path})
}

// GetPace handles GET /analytics/pace?days=N.
func (h *AnalyticsHandler) GetPace(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", strconv.Itoa(service.MinPaceDays)))
	if err != nil {
		badRequest(c, fmt.Errorf("unparsable days %q", c.Query("days")))
		return
	}

	pace, err := h.service.BookingPace(c.Request.Context(), days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": pace})
}

// GetLeadTimes handles GET /analytics/lead_time?from=&to=.
func (h *AnalyticsHandler) GetLeadTimes(c *gin.Context) {
	from, to, err := parseRangeQuery(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	report, err := h.service.LeadTimes(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetCountries handles GET /analytics/countries?from=&to=.
func (h *AnalyticsHandler) GetCountries(c *gin.Context) {
	from, to, err := parseRangeQuery(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	countries, err := h.service.Countries(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"countries": countries})
}

func parseSegmentQuery(c *gin.Context) (domain.Period, domain.Segment, error) {
	var seg domain.Segment

	period, err := domain.ParsePeriod(c.Query("period"))
	if err != nil {
		return domain.Period{}, seg, err
	}

	seg.Category = domain.Category(strings.TrimSpace(c.Query("category")))
	if _, ok := seg.Category.Ordinal(); !ok {
		return period, seg, fmt.Errorf("unknown category %q", c.Query("category"))
	}

	seg.Zone = strings.TrimSpace(c.Query("zone"))
	if seg.Zone == "" {
		return period, seg, fmt.Errorf("zone is required")
	}

	rooms, err := strconv.Atoi(c.Query("rooms"))
	if err != nil || rooms < 1 {
		return period, seg, fmt.Errorf("unparsable room count %q", c.Query("rooms"))
	}
	seg.Rooms = rooms

	return period, seg, nil
}

func parseRangeQuery(c *gin.Context) (time.Time, time.Time, error) {
	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("unparsable from date %q", c.Query("from"))
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("unparsable to date %q", c.Query("to"))
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("to date precedes from date")
	}
	return from, to, nil
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// respondError maps pipeline errors to status codes: validation failures
// are the client's problem, missing imputation data is unprocessable, and
// everything else is a server failure.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidPeriod), errors.Is(err, domain.ErrInvalidBooking):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInsufficientData):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Msg("analytics request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
