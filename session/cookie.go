package session

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

// CookieCodec signs session IDs into cookies.
type CookieCodec struct {
	codec  *securecookie.SecureCookie
	name   string
	secure bool
	maxAge time.Duration
}

// NewCookieCodec creates a codec that signs with secret.
func NewCookieCodec(secret, name string, secure bool, maxAge time.Duration) *CookieCodec {
	codec := securecookie.New([]byte(secret), nil)
	codec.MaxAge(int(maxAge.Seconds()))
	return &CookieCodec{
		codec:  codec,
		name:   name,
		secure: secure,
		maxAge: maxAge,
	}
}

// Name returns the cookie name.
func (c *CookieCodec) Name() string {
	return c.name
}

// Write sets the signed session cookie on the response.
func (c *CookieCodec) Write(w http.ResponseWriter, sessionID string) error {
	encoded, err := c.codec.Encode(c.name, sessionID)
	if err != nil {
		return fmt.Errorf("failed to encode session cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    encoded,
		Path:     "/",
		MaxAge:   int(c.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Read returns the session ID carried by the request cookie.
func (c *CookieCodec) Read(r *http.Request) (string, error) {
	cookie, err := r.Cookie(c.name)
	if err != nil {
		return "", err
	}

	var sessionID string
	if err := c.codec.Decode(c.name, cookie.Value, &sessionID); err != nil {
		return "", fmt.Errorf("failed to decode session cookie: %w", err)
	}
	return sessionID, nil
}

// Clear expires the cookie on the client.
func (c *CookieCodec) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
