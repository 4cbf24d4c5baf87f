// Package session holds provider tokens in signed, client-held cookies.
// The server keeps no copy of an issued token; "connected" for a provider
// means exactly that Read returns a value.
package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/stellium/stellium/internal/core"
)

const (
	// MusicCookie and PhotoCookie are the client-held artifact names.
	MusicCookie = "music_token"
	PhotoCookie = "photo_token"
)

// CookieName maps a provider to its session artifact name.
func CookieName(provider core.ProviderID) string {
	if provider == core.ProviderPhoto {
		return PhotoCookie
	}
	return MusicCookie
}

// Codec signs and verifies provider session cookies. Secure should be true
// everywhere except local development.
type Codec struct {
	secret []byte
	secure bool
}

// NewCodec creates a codec with the given signing secret.
func NewCodec(secret string, secure bool) (*Codec, error) {
	trimmed := strings.TrimSpace(secret)
	if trimmed == "" {
		return nil, errors.New("session secret is required")
	}
	return &Codec{secret: []byte(trimmed), secure: secure}, nil
}

// Issue writes the provider token into a signed, script-inaccessible cookie.
// ttl must reflect the provider's actual token lifetime; the transport
// enforces expiry via MaxAge, not server-side bookkeeping.
func (c *Codec) Issue(w http.ResponseWriter, provider core.ProviderID, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName(provider),
		Value:    c.encode(token),
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Read returns the token for a provider, or ok=false when the cookie is
// absent, malformed, or fails signature verification.
func (c *Codec) Read(r *http.Request, provider core.ProviderID) (string, bool) {
	cookie, err := r.Cookie(CookieName(provider))
	if err != nil {
		return "", false
	}
	return c.decode(cookie.Value)
}

// Clear deletes the provider's session artifact immediately.
func (c *Codec) Clear(w http.ResponseWriter, provider core.ProviderID) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName(provider),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c *Codec) encode(token string) string {
	payload := base64.RawURLEncoding.EncodeToString([]byte(token))
	return payload + "." + c.sign(payload)
}

func (c *Codec) decode(value string) (string, bool) {
	payload, sig, ok := strings.Cut(value, ".")
	if !ok || payload == "" {
		return "", false
	}
	if !hmac.Equal([]byte(c.sign(payload)), []byte(sig)) {
		return "", false
	}
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return "", false
	}
	return string(raw), true
}

func (c *Codec) sign(payload string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
