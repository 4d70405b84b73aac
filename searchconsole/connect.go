// Package searchconsole starts the Google Search Console OAuth2 flow.
package searchconsole

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Scopes requested from Google.
var Scopes = []string{
	"https://www.googleapis.com/auth/webmasters",
	"https://www.googleapis.com/auth/webmasters.readonly",
}

// ErrNotConfigured is returned when no client credentials are set.
var ErrNotConfigured = errors.New("google search console is not configured")

// StateStore remembers which user started an OAuth flow.
type StateStore interface {
	SaveGoogleAuthState(ctx context.Context, userID, state string) error
}

// Connector builds consent URLs for Search Console access.
type Connector struct {
	config *oauth2.Config
	states StateStore
}

func NewConnector(clientID, clientSecret, redirectURL string, states StateStore) *Connector {
	return &Connector{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       Scopes,
			Endpoint:     google.Endpoint,
		},
		states: states,
	}
}

// Connect records a fresh state for userID and returns the consent URL.
// Offline access and a forced consent prompt make Google issue a refresh token.
func (c *Connector) Connect(ctx context.Context, userID string) (string, error) {
	if c.config.ClientID == "" {
		return "", ErrNotConfigured
	}
	state := uuid.NewString()
	if err := c.states.SaveGoogleAuthState(ctx, userID, state); err != nil {
		return "", fmt.Errorf("failed to generate authentication URL: %w", err)
	}
	return c.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent")), nil
}
