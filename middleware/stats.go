package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/seo-suite/backend/logging"
	"github.com/seo-suite/backend/stats"
)

// AnalysisRoutes maps the full path of each analysis endpoint to its tool.
type AnalysisRoutes map[string]string

// StatsMiddleware tracks visitors and analysis requests. Analysis requests
// are recorded in both the request statistics and the monthly usage counters.
func StatsMiddleware(requests *logging.Statistics, usage *stats.Storage, routes AnalysisRoutes, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requests.TrackVisitor(c.ClientIP())

		tool, isAnalysis := routes[c.FullPath()]
		var target string
		if isAnalysis {
			target = peekURL(c)
		}

		c.Next()

		if !isAnalysis {
			return
		}
		failed := c.Writer.Status() >= 400
		requests.TrackAnalysis(target, float64(time.Since(start).Milliseconds()), failed)
		usage.Record(tool, failed)

		// Persist every 100 analysis requests
		if requests.Requests()%100 == 0 {
			go func() {
				if err := requests.Save(); err != nil {
					log.WithError(err).Error("Failed to save request statistics")
				}
			}()
		}
	}
}

// maxPeekBody bounds how much of a request body is buffered to find its url.
const maxPeekBody = 64 << 10

type peekedBody struct {
	io.Reader
	io.Closer
}

// peekURL reads the url field of a JSON body and restores the body for the
// handler. Only the first maxPeekBody bytes are buffered; the rest is left
// unread behind them.
func peekURL(c *gin.Context) string {
	if c.Request.Body == nil {
		return ""
	}
	original := c.Request.Body
	head, err := io.ReadAll(io.LimitReader(original, maxPeekBody))
	c.Request.Body = peekedBody{Reader: io.MultiReader(bytes.NewReader(head), original), Closer: original}
	if err != nil {
		return ""
	}
	var req struct {
		URL string `json:"url"`
	}
	if json.Unmarshal(head, &req) != nil {
		return ""
	}
	return req.URL
}
