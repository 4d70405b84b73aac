package api

import (
	"context"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seo-suite/backend/store"
)

// reportDays is the number of days covered by the dashboard and analytics.
const reportDays = 30

// DashboardStats summarises a user's recent activity.
type DashboardStats struct {
	TotalScans     int `json:"totalScans"`
	AverageScore   int `json:"averageScore"`
	TotalKeywords  int `json:"totalKeywords"`
	TotalCitations int `json:"totalCitations"`
}

// Analytics is a daily time series over the report window. All slices are
// aligned with Dates.
type Analytics struct {
	Dates           []string   `json:"dates"`
	SeoScans        []int      `json:"seoScans"`
	HeatMaps        []int      `json:"heatMaps"`
	Citations       []int      `json:"citations"`
	AverageSeoScore []*float64 `json:"averageSeoScore"`
}

type history struct {
	scans     []store.SeoScan
	heatMaps  []store.HeatMap
	citations []store.CitationCheck
}

func (s *Server) recentHistory(ctx context.Context, uid string, since time.Time) (*history, error) {
	scans, err := s.store.ListSeoScans(ctx, uid, since)
	if err != nil {
		return nil, err
	}
	heatMaps, err := s.store.ListHeatMaps(ctx, uid, since)
	if err != nil {
		return nil, err
	}
	citations, err := s.store.ListCitationChecks(ctx, uid, since)
	if err != nil {
		return nil, err
	}
	return &history{scans: scans, heatMaps: heatMaps, citations: citations}, nil
}

func windowStart(now time.Time) time.Time {
	day := now.UTC().Truncate(24 * time.Hour)
	return day.AddDate(0, 0, -(reportDays - 1))
}

func (s *Server) dashboardStats(c *gin.Context) {
	h, err := s.recentHistory(c.Request.Context(), userID(c), windowStart(s.now()))
	if err != nil {
		s.writeError(c, err, "Failed to fetch dashboard stats")
		return
	}
	c.JSON(http.StatusOK, buildDashboardStats(h))
}

func (s *Server) analytics(c *gin.Context) {
	now := s.now()
	h, err := s.recentHistory(c.Request.Context(), userID(c), windowStart(now))
	if err != nil {
		s.writeError(c, err, "Failed to fetch analytics data")
		return
	}
	c.JSON(http.StatusOK, buildAnalytics(now, h))
}

func buildDashboardStats(h *history) DashboardStats {
	stats := DashboardStats{
		TotalScans: len(h.scans) + len(h.heatMaps) + len(h.citations),
	}

	var sum, scored int
	for _, scan := range h.scans {
		sum += scan.Score
		scored++
	}
	for _, check := range h.citations {
		sum += check.Score
		scored++
		for _, citation := range check.Citations.V {
			if citation.Found {
				stats.TotalCitations++
			}
		}
	}
	if scored > 0 {
		stats.AverageScore = int(math.Round(float64(sum) / float64(scored)))
	}

	for _, m := range h.heatMaps {
		stats.TotalKeywords += len(m.Keywords.V)
	}
	return stats
}

func buildAnalytics(now time.Time, h *history) Analytics {
	start := windowStart(now)
	out := Analytics{
		Dates:           make([]string, reportDays),
		SeoScans:        make([]int, reportDays),
		HeatMaps:        make([]int, reportDays),
		Citations:       make([]int, reportDays),
		AverageSeoScore: make([]*float64, reportDays),
	}
	for i := range out.Dates {
		out.Dates[i] = start.AddDate(0, 0, i).Format("2006-01-02")
	}

	// index maps a timestamp to its slot, or -1 outside the window.
	index := func(t time.Time) int {
		i := int(t.UTC().Sub(start) / (24 * time.Hour))
		if t.Before(start) || i >= reportDays {
			return -1
		}
		return i
	}

	scoreSums := make([]int, reportDays)
	for _, scan := range h.scans {
		if i := index(scan.CreatedAt); i >= 0 {
			out.SeoScans[i]++
			scoreSums[i] += scan.Score
		}
	}
	for _, m := range h.heatMaps {
		if i := index(m.CreatedAt); i >= 0 {
			out.HeatMaps[i]++
		}
	}
	for _, check := range h.citations {
		if i := index(check.CreatedAt); i >= 0 {
			out.Citations[i]++
		}
	}
	for i, n := range out.SeoScans {
		if n > 0 {
			avg := math.Round(float64(scoreSums[i])/float64(n)*100) / 100
			out.AverageSeoScore[i] = &avg
		}
	}
	return out
}
