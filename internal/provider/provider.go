// Package provider implements the authorization-code exchanges and
// resource clients for the integrated third-party services. Each provider
// is its own type behind the Provider interface so shared admission and
// session logic never branches on provider identity.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/stellium/stellium/internal/core"
)

// ErrAuthRejected reports that the provider refused a stored credential.
// Handlers must invalidate the session artifact before surfacing it.
var ErrAuthRejected = errors.New("provider rejected credential")

// Token is the result of a completed code exchange.
type Token struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in,omitempty"`
}

// Provider is one third-party integration. Exchange drives the full
// authorization-code flow for its provider, including any provider-specific
// follow-up exchange, and returns a token ready for the session store.
type Provider interface {
	ID() core.ProviderID
	TokenTTL() time.Duration
	Exchange(ctx context.Context, code string) (*Token, error)
}

// Config carries the registered client credentials for one provider.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	TokenURL     string
	APIBaseURL   string
}

func defaultClient(client *http.Client) *http.Client {
	if client != nil {
		return client
	}
	return &http.Client{Timeout: 10 * time.Second}
}

// exchangeError hides the provider's raw response from callers while keeping
// the status code for logs.
func exchangeError(provider core.ProviderID, status int) error {
	return fmt.Errorf("%s token exchange failed with status %d", provider, status)
}

func authClassStatus(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusBadRequest
}
