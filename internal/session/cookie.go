package session

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	AccessCookieName  = "access_token"
	RefreshCookieName = "refresh_token"
	cookiePath        = "/"
)

type CookieOptions struct {
	Secure   bool
	Domain   string
	SameSite http.SameSite
}

// Cookies binds session tokens to HttpOnly cookies. Path and Domain are the
// same for set and clear, otherwise browsers keep the old cookie.
type Cookies struct {
	opts CookieOptions
}

func NewCookies(opts CookieOptions) *Cookies {
	return &Cookies{opts: opts}
}

func (c *Cookies) Attach(w http.ResponseWriter, pair Pair) {
	http.SetCookie(w, c.cookie(AccessCookieName, pair.Access))
	http.SetCookie(w, c.cookie(RefreshCookieName, pair.Refresh))
}

// AttachAccess rotates the access cookie and leaves the refresh cookie alone.
func (c *Cookies) AttachAccess(w http.ResponseWriter, access Token) {
	http.SetCookie(w, c.cookie(AccessCookieName, access))
}

// Extract reads a named cookie. A missing or empty cookie is reported as
// absent, never as an error.
func (c *Cookies) Extract(r *http.Request, name string) (string, bool) {
	cookie, err := r.Cookie(name)
	if err != nil {
		return "", false
	}

	value := strings.TrimSpace(cookie.Value)
	if value == "" {
		return "", false
	}

	return value, true
}

func (c *Cookies) Clear(w http.ResponseWriter) {
	for _, name := range []string{AccessCookieName, RefreshCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     cookiePath,
			Domain:   c.opts.Domain,
			MaxAge:   -1,
			Expires:  time.Unix(0, 0),
			HttpOnly: true,
			Secure:   c.opts.Secure,
			SameSite: c.opts.SameSite,
		})
	}
}

func (c *Cookies) cookie(name string, token Token) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    token.Value,
		Path:     cookiePath,
		Domain:   c.opts.Domain,
		MaxAge:   int(token.Lifetime().Seconds()),
		Expires:  token.ExpiresAt.UTC(),
		HttpOnly: true,
		Secure:   c.opts.Secure,
		SameSite: c.opts.SameSite,
	}
}

// ParseSameSite maps a config value to http.SameSite. An empty value leaves
// the attribute off the cookie.
func ParseSameSite(raw string) (http.SameSite, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return 0, nil
	case "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return 0, fmt.Errorf("unsupported SameSite value %q", raw)
	}
}
