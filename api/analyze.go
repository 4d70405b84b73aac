package api

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/seo-suite/backend/analyzer"
	"github.com/seo-suite/backend/store"
)

type urlRequest struct {
	URL string `json:"url"`
}

type heatmapRequest struct {
	URL      string  `json:"url"`
	Keywords *string `json:"keywords"`
}

func bindURL(c *gin.Context) (string, error) {
	var req urlRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.URL) == "" {
		return "", invalid("URL is required")
	}
	return strings.TrimSpace(req.URL), nil
}

// lockUser serialises quota-counted work of one user and returns the unlock.
func (s *Server) lockUser(uid string) func() {
	mu, _ := s.userLocks.LoadOrStore(uid, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

// runAnalysis enforces the quota of a signed-in caller, runs the tool and
// persists the result for that caller. Anonymous callers get the result only.
// The check and the save happen under the caller's lock so concurrent
// requests cannot overshoot the monthly limit.
func runAnalysis[T any](
	s *Server,
	c *gin.Context,
	tool store.Tool,
	run func(ctx context.Context) (*T, error),
	save func(ctx context.Context, userID string, result *T) error,
) {
	ctx := c.Request.Context()
	uid := userID(c)

	if uid != "" {
		unlock := s.lockUser(uid)
		defer unlock()
		if err := s.quota.Check(ctx, uid, tool); err != nil {
			s.writeError(c, err, "Failed to check subscription limit")
			return
		}
	}

	result, err := run(ctx)
	if err != nil {
		s.writeError(c, err, "Failed to analyze URL")
		return
	}

	if uid != "" {
		if err := save(ctx, uid, result); err != nil {
			s.writeError(c, err, "Failed to save analysis")
			return
		}
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) seoScan(c *gin.Context) {
	target, err := bindURL(c)
	if err != nil {
		s.writeError(c, err, "")
		return
	}
	runAnalysis(s, c, store.ToolSEO,
		func(ctx context.Context) (*analyzer.SeoScanResult, error) {
			return s.analyzer.ScanSEO(ctx, target)
		},
		func(ctx context.Context, uid string, r *analyzer.SeoScanResult) error {
			_, err := s.store.SaveSeoScan(ctx, uid, r)
			return err
		})
}

func (s *Server) keywordHeatmap(c *gin.Context) {
	var req heatmapRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.URL) == "" || req.Keywords == nil {
		s.writeError(c, invalid("URL and keywords are required"), "")
		return
	}
	target := strings.TrimSpace(req.URL)
	keywords := analyzer.ParseKeywords(*req.Keywords)

	runAnalysis(s, c, store.ToolHeatMap,
		func(ctx context.Context) (*analyzer.KeywordHeatmapResult, error) {
			return s.analyzer.KeywordHeatmap(ctx, target, keywords)
		},
		func(ctx context.Context, uid string, r *analyzer.KeywordHeatmapResult) error {
			_, err := s.store.SaveHeatMap(ctx, uid, r)
			return err
		})
}

func (s *Server) citationCheck(c *gin.Context) {
	target, err := bindURL(c)
	if err != nil {
		s.writeError(c, err, "")
		return
	}
	runAnalysis(s, c, store.ToolCitation,
		func(ctx context.Context) (*analyzer.CitationResult, error) {
			return s.analyzer.Citations(ctx, target)
		},
		func(ctx context.Context, uid string, r *analyzer.CitationResult) error {
			_, err := s.store.SaveCitationCheck(ctx, uid, r)
			return err
		})
}
