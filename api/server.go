// Package api exposes the analysis tools and account features over HTTP.
package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/seo-suite/backend/analyzer"
	"github.com/seo-suite/backend/auth"
	"github.com/seo-suite/backend/billing"
	"github.com/seo-suite/backend/logging"
	"github.com/seo-suite/backend/middleware"
	"github.com/seo-suite/backend/searchconsole"
	"github.com/seo-suite/backend/stats"
	"github.com/seo-suite/backend/store"
)

// Paths of the public analysis endpoints.
const (
	PathSeoScan        = "/api/v1/seo-scan"
	PathKeywordHeatmap = "/api/v1/keyword-heatmap"
	PathCitations      = "/api/v1/citation-management"
)

// Deps are the collaborators of the HTTP layer. All of them are built
// once at startup and shared by every request.
type Deps struct {
	Store         *store.Store
	Analyzer      *analyzer.Analyzer
	Tokens        *auth.TokenIssuer
	Quota         *billing.QuotaChecker
	Billing       *billing.Service
	SearchConsole *searchconsole.Connector
	Requests      *logging.Statistics
	Usage         *stats.Storage
	Limiter       *middleware.RateLimiter
	Log           *logrus.Logger

	CORSOrigin    string
	SecureCookies bool
}

// Server holds the handlers.
type Server struct {
	store         *store.Store
	analyzer      *analyzer.Analyzer
	tokens        *auth.TokenIssuer
	quota         *billing.QuotaChecker
	billing       *billing.Service
	searchConsole *searchconsole.Connector
	requests      *logging.Statistics
	usage         *stats.Storage
	limiter       *middleware.RateLimiter
	log           *logrus.Logger
	corsOrigin    string
	secureCookies bool
	now           func() time.Time

	// userLocks holds a *sync.Mutex per user id.
	userLocks sync.Map
}

func NewServer(d Deps) *Server {
	return &Server{
		store:         d.Store,
		analyzer:      d.Analyzer,
		tokens:        d.Tokens,
		quota:         d.Quota,
		billing:       d.Billing,
		searchConsole: d.SearchConsole,
		requests:      d.Requests,
		usage:         d.Usage,
		limiter:       d.Limiter,
		log:           d.Log,
		corsOrigin:    d.CORSOrigin,
		secureCookies: d.SecureCookies,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Router builds the gin engine with every route and middleware.
func (s *Server) Router() *gin.Engine {
	r := gin.New()

	r.Use(middleware.ErrorHandler(s.log))
	r.Use(logging.RequestLogger(s.log))
	r.Use(middleware.CORS(s.corsOrigin))
	if s.limiter != nil {
		r.Use(s.limiter.RateLimit())
	}
	r.Use(middleware.StatsMiddleware(s.requests, s.usage, middleware.AnalysisRoutes{
		PathSeoScan:        stats.ToolSEO,
		PathKeywordHeatmap: stats.ToolHeatMap,
		PathCitations:      stats.ToolCitation,
	}, s.log))

	ops := r.Group("/api")
	{
		ops.GET("/health", s.health)
		ops.GET("/statistics", s.statistics)
	}

	v1 := r.Group("/api/v1")

	public := v1.Group("", middleware.OptionalAuth(s.tokens))
	{
		public.POST("/seo-scan", s.seoScan)
		public.POST("/keyword-heatmap", s.keywordHeatmap)
		public.POST("/citation-management", s.citationCheck)

		public.POST("/auth/register", s.register)
		public.POST("/auth/login", s.login)
		public.POST("/auth/logout", s.logout)

		public.POST("/webhooks/stripe", s.stripeWebhook)
	}

	protected := v1.Group("", middleware.RequireAuth(s.tokens))
	{
		protected.GET("/seo-scan/history", s.seoScanHistory)
		protected.GET("/keyword-heatmap/history", s.heatMapHistory)
		protected.GET("/citation-management/history", s.citationHistory)
		protected.GET("/seo-scan/history/export", s.exportHistory(store.ToolSEO))
		protected.GET("/keyword-heatmap/history/export", s.exportHistory(store.ToolHeatMap))
		protected.GET("/citation-management/history/export", s.exportHistory(store.ToolCitation))

		protected.GET("/dashboard/stats", s.dashboardStats)
		protected.GET("/analytics", s.analytics)

		protected.GET("/subscription", s.subscription)
		protected.POST("/subscription/create", s.createSubscription)

		protected.GET("/notifications", s.notifications)
		protected.PUT("/notifications/:id/read", s.markNotificationRead)

		protected.GET("/projects", s.projects)
		protected.POST("/projects", s.createProject)

		protected.POST("/google-search-console/connect", s.connectSearchConsole)
	}

	return r
}

func (s *Server) health(c *gin.Context) {
	status := "ok"
	code := http.StatusOK
	if err := s.store.Ping(c.Request.Context()); err != nil {
		s.log.WithError(err).Warn("Health check: database unreachable")
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"status": status})
}

func (s *Server) statistics(c *gin.Context) {
	out := s.requests.Snapshot()
	month := s.usage.GetCurrentStats()
	out["month"] = gin.H{
		"seoScans":  month.SeoScans,
		"heatMaps":  month.HeatMaps,
		"citations": month.Citations,
		"failures":  month.Failures,
	}
	totals := make(map[string]int)
	for _, m := range s.usage.GetAllMonths() {
		if ms, ok := s.usage.GetMonthlyStats(m); ok {
			totals[m] = ms.Total()
		}
	}
	out["history"] = totals
	c.JSON(http.StatusOK, out)
}

// userID returns the id of the session user, or "" for anonymous requests.
func userID(c *gin.Context) string {
	if claims, ok := middleware.ClaimsFrom(c); ok {
		return claims.UserID
	}
	return ""
}
