package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/stellium/stellium/internal/core"
)

// MusicTokenTTL mirrors the music provider's access-token lifetime.
const MusicTokenTTL = time.Hour

// MusicProfile is the minimal projection of a connected music account.
type MusicProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	URL         string `json:"url,omitempty"`
}

// MusicClient integrates the music provider: a single authorization-code
// exchange yields a short-lived token.
type MusicClient struct {
	Config Config
	Client *http.Client
}

// ID implements Provider.
func (c *MusicClient) ID() core.ProviderID { return core.ProviderMusic }

// TokenTTL implements Provider.
func (c *MusicClient) TokenTTL() time.Duration { return MusicTokenTTL }

// Exchange swaps an authorization code for an access token. Any non-success
// response is terminal for the attempt; the caller must restart the flow.
func (c *MusicClient) Exchange(ctx context.Context, code string) (*Token, error) {
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {c.Config.RedirectURI},
		"client_id":     {c.Config.ClientID},
		"client_secret": {c.Config.ClientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Config.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := defaultClient(c.Client).Do(req)
	if err != nil {
		return nil, fmt.Errorf("music token exchange: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body

	if resp.StatusCode != http.StatusOK {
		return nil, exchangeError(core.ProviderMusic, resp.StatusCode)
	}

	var token Token
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("decode music token response: %w", err)
	}
	if token.AccessToken == "" {
		return nil, exchangeError(core.ProviderMusic, resp.StatusCode)
	}
	return &token, nil
}

// Profile fetches the connected account projected to a stable minimal shape.
// Auth-class rejections return ErrAuthRejected so the caller tears down the
// session artifact.
func (c *MusicClient) Profile(ctx context.Context, accessToken string) (*MusicProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Config.APIBaseURL+"/me", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := defaultClient(c.Client).Do(req)
	if err != nil {
		return nil, fmt.Errorf("music profile: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body

	if authClassStatus(resp.StatusCode) {
		return nil, ErrAuthRejected
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("music profile failed with status %d", resp.StatusCode)
	}

	var raw struct {
		ID           string `json:"id"`
		DisplayName  string `json:"display_name"`
		ExternalURLs struct {
			Web string `json:"web"`
		} `json:"external_urls"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode music profile: %w", err)
	}

	return &MusicProfile{
		ID:          raw.ID,
		DisplayName: raw.DisplayName,
		URL:         raw.ExternalURLs.Web,
	}, nil
}
