// Package cookie sets and reads the storefront's cookies with consistent
// domain, path and security attributes.
package cookie

import (
	"net/http"
	"time"
)

// Cookie names.
const (
	// CartCookieName carries the anonymous cart id.
	CartCookieName = "harvansh_cart"
)

// CartMaxAge is how long a cart cookie survives without activity.
const CartMaxAge = 30 * 24 * time.Hour

// Config holds the attributes shared by every cookie the server sets.
type Config struct {
	// Domain scopes cookies. Empty means host-only.
	Domain string

	// Secure restricts cookies to HTTPS. True in production.
	Secure bool
}

func NewConfig(domain string, secure bool) *Config {
	return &Config{Domain: domain, Secure: secure}
}

func (c *Config) build(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Domain:   c.Domain,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Set writes an HttpOnly, SameSite=Lax cookie valid for maxAge.
func (c *Config) Set(w http.ResponseWriter, name, value string, maxAge time.Duration) {
	http.SetCookie(w, c.build(name, value, int(maxAge/time.Second)))
}

// SetCart stores cartID in the cart cookie.
func (c *Config) SetCart(w http.ResponseWriter, cartID string) {
	c.Set(w, CartCookieName, cartID, CartMaxAge)
}

// Get returns the value of the named cookie, or "" when absent.
func Get(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
