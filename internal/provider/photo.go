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

// PhotoTokenTTL mirrors the photo provider's long-lived token lifetime.
const PhotoTokenTTL = 60 * 24 * time.Hour

// PhotoMedia is the minimal projection of one media item.
type PhotoMedia struct {
	ID        string `json:"id"`
	MediaType string `json:"media_type"`
	MediaURL  string `json:"media_url"`
	Caption   string `json:"caption,omitempty"`
}

// PhotoClient integrates the photo provider. Its exchange is two-step: the
// authorization code buys a short-lived token, which is immediately traded
// for a long-lived one. The connection is not established until both
// exchanges succeed.
type PhotoClient struct {
	Config Config
	Client *http.Client
}

// ID implements Provider.
func (c *PhotoClient) ID() core.ProviderID { return core.ProviderPhoto }

// TokenTTL implements Provider.
func (c *PhotoClient) TokenTTL() time.Duration { return PhotoTokenTTL }

// Exchange runs both exchanges and returns the long-lived token. A failure
// at either step fails the whole flow; no partial credential survives.
func (c *PhotoClient) Exchange(ctx context.Context, code string) (*Token, error) {
	shortLived, err := c.exchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return c.exchangeLongLived(ctx, shortLived.AccessToken)
}

func (c *PhotoClient) exchangeCode(ctx context.Context, code string) (*Token, error) {
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
		return nil, fmt.Errorf("photo token exchange: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body

	if resp.StatusCode != http.StatusOK {
		return nil, exchangeError(core.ProviderPhoto, resp.StatusCode)
	}

	var token Token
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("decode photo token response: %w", err)
	}
	if token.AccessToken == "" {
		return nil, exchangeError(core.ProviderPhoto, resp.StatusCode)
	}
	return &token, nil
}

func (c *PhotoClient) exchangeLongLived(ctx context.Context, shortLived string) (*Token, error) {
	query := url.Values{
		"grant_type":    {"access_token_exchange"},
		"client_secret": {c.Config.ClientSecret},
		"access_token":  {shortLived},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Config.APIBaseURL+"/access_token?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := defaultClient(c.Client).Do(req)
	if err != nil {
		return nil, fmt.Errorf("photo long-lived exchange: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("photo long-lived exchange failed with status %d", resp.StatusCode)
	}

	var token Token
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("decode photo long-lived response: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("photo long-lived exchange returned no token")
	}
	return &token, nil
}

// Media lists the connected account's still images. Video and other media
// types are filtered out before the response leaves this package.
func (c *PhotoClient) Media(ctx context.Context, accessToken string) ([]PhotoMedia, error) {
	query := url.Values{
		"fields":       {"id,media_type,media_url,caption"},
		"access_token": {accessToken},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Config.APIBaseURL+"/me/media?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := defaultClient(c.Client).Do(req)
	if err != nil {
		return nil, fmt.Errorf("photo media: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body

	if authClassStatus(resp.StatusCode) {
		return nil, ErrAuthRejected
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("photo media failed with status %d", resp.StatusCode)
	}

	var raw struct {
		Data []PhotoMedia `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode photo media: %w", err)
	}

	media := make([]PhotoMedia, 0, len(raw.Data))
	for _, item := range raw.Data {
		switch item.MediaType {
		case "IMAGE", "CAROUSEL_ALBUM":
			media = append(media, item)
		}
	}
	return media, nil
}
