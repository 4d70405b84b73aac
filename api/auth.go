package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/seo-suite/backend/auth"
	"github.com/seo-suite/backend/middleware"
	"github.com/seo-suite/backend/store"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func bindCredentials(c *gin.Context) (*credentials, error) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, invalid("Email and password are required")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Password == "" {
		return nil, invalid("Email and password are required")
	}
	return &req, nil
}

func (s *Server) register(c *gin.Context) {
	req, err := bindCredentials(c)
	if err != nil {
		s.writeError(c, err, "")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.writeError(c, err, "Failed to register user")
		return
	}

	user, err := s.store.CreateUser(c.Request.Context(), req.Email, req.Name, hash)
	if err != nil {
		s.writeError(c, err, "Failed to register user")
		return
	}

	s.log.WithField("user_id", user.ID).Info("User registered")
	c.JSON(http.StatusOK, user)
}

func (s *Server) login(c *gin.Context) {
	req, err := bindCredentials(c)
	if err != nil {
		s.writeError(c, err, "")
		return
	}
	ctx := c.Request.Context()

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if errors.Is(err, store.ErrNotFound) {
		err = auth.ErrInvalidCredentials
	}
	if err != nil {
		s.writeError(c, err, "Failed to login")
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		s.writeError(c, err, "Failed to login")
		return
	}

	plan := store.PlanFree
	if sub, err := s.store.GetSubscription(ctx, user.ID); err == nil {
		plan = sub.Plan
	} else if !errors.Is(err, store.ErrNotFound) {
		s.writeError(c, err, "Failed to login")
		return
	}

	token, err := s.tokens.Issue(user.ID, user.Email, plan)
	if err != nil {
		s.writeError(c, err, "Failed to login")
		return
	}

	s.setTokenCookie(c, token, int(s.tokens.TTL().Seconds()))
	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

func (s *Server) logout(c *gin.Context) {
	s.setTokenCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) setTokenCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, value, maxAge, "/", "", s.secureCookies, true)
}
