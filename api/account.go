package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/seo-suite/backend/billing"
)

// maxWebhookBody bounds the payload read from the payment provider.
const maxWebhookBody = 64 << 10

func (s *Server) subscription(c *gin.Context) {
	sub, usage, err := s.quota.Usage(c.Request.Context(), userID(c))
	if err != nil {
		s.writeError(c, err, "Failed to fetch subscription")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"plan":      sub.Plan,
		"status":    sub.Status,
		"startDate": sub.StartDate,
		"endDate":   sub.EndDate,
		"limits":    billing.PlanLimits[sub.Plan],
		"usage":     usage,
	})
}

func (s *Server) createSubscription(c *gin.Context) {
	var req struct {
		Plan string `json:"plan"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Plan == "" {
		s.writeError(c, invalid("Plan is required"), "")
		return
	}
	ctx := c.Request.Context()

	user, err := s.store.GetUserByID(ctx, userID(c))
	if err != nil {
		s.writeError(c, err, "Failed to create subscription")
		return
	}

	result, err := s.billing.ChangePlan(ctx, user, req.Plan)
	if err != nil {
		s.writeError(c, err, "Failed to create subscription")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) stripeWebhook(c *gin.Context) {
	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		s.writeError(c, invalid("No signature found"), "")
		return
	}

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		s.writeError(c, invalid("Failed to read webhook body"), "")
		return
	}

	if err := s.billing.HandleWebhook(c.Request.Context(), payload, signature); err != nil {
		s.writeError(c, err, "Webhook handler failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (s *Server) notifications(c *gin.Context) {
	list, err := s.store.ListNotifications(c.Request.Context(), userID(c))
	if err != nil {
		s.writeError(c, err, "Failed to fetch notifications")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) markNotificationRead(c *gin.Context) {
	n, err := s.store.MarkNotificationRead(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		s.writeError(c, err, "Failed to mark notification as read")
		return
	}
	c.JSON(http.StatusOK, n)
}

func (s *Server) projects(c *gin.Context) {
	list, err := s.store.ListProjects(c.Request.Context(), userID(c))
	if err != nil {
		s.writeError(c, err, "Failed to fetch projects")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) createProject(c *gin.Context) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		s.writeError(c, invalid("Project name is required"), "")
		return
	}

	p, err := s.store.CreateProject(c.Request.Context(), userID(c), strings.TrimSpace(req.Name), req.Description)
	if err != nil {
		s.writeError(c, err, "Failed to create project")
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (s *Server) connectSearchConsole(c *gin.Context) {
	authURL, err := s.searchConsole.Connect(c.Request.Context(), userID(c))
	if err != nil {
		s.writeError(c, err, "Failed to connect to Google Search Console")
		return
	}
	c.JSON(http.StatusOK, gin.H{"authUrl": authURL})
}
