package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/seo-suite/backend/analyzer"
	"github.com/seo-suite/backend/auth"
	"github.com/seo-suite/backend/billing"
	"github.com/seo-suite/backend/export"
	"github.com/seo-suite/backend/searchconsole"
	"github.com/seo-suite/backend/store"
)

// ErrValidation marks malformed request input.
var ErrValidation = errors.New("validation error")

// ValidationError carries a message safe to show to the client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Is makes errors.Is(err, ErrValidation) true.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// writeError converts err into a JSON error response. fallback is the
// message used for internal failures, whose details are only logged.
func (s *Server) writeError(c *gin.Context, err error, fallback string) {
	status, message := classify(err, fallback)

	entry := s.log.WithFields(logrus.Fields{
		"path":   c.Request.URL.Path,
		"status": status,
	}).WithError(err)
	if status >= http.StatusInternalServerError {
		entry.Error(fallback)
	} else {
		entry.Debug("Request rejected")
	}

	c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

func classify(err error, fallback string) (int, string) {
	var validation *ValidationError
	var quota *billing.QuotaError
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, validation.Message
	case errors.Is(err, analyzer.ErrInvalidURL):
		return http.StatusBadRequest, "Invalid URL provided"
	case errors.Is(err, billing.ErrInvalidPlan):
		return http.StatusBadRequest, "Invalid plan selected"
	case errors.Is(err, export.ErrUnsupportedFormat):
		return http.StatusBadRequest, "Unsupported export format"
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusBadRequest, "User already exists"
	case errors.Is(err, billing.ErrInvalidWebhook):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, "Invalid or expired token"
	case errors.As(err, &quota):
		return http.StatusForbidden, quota.Error()
	case errors.Is(err, billing.ErrNoSubscription):
		return http.StatusForbidden, "No active subscription found"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, analyzer.ErrFetch):
		return http.StatusInternalServerError, fmt.Sprintf("%s: %v", fallback, err)
	case errors.Is(err, searchconsole.ErrNotConfigured):
		return http.StatusServiceUnavailable, "Google Search Console is not configured"
	}
	return http.StatusInternalServerError, fallback
}
