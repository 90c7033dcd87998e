package security

import (
	"net/http"
	"time"
)

// SessionCookieName is the cookie carrying the session JWT.
const SessionCookieName = "token"

// SessionCookie builds the session cookie set on sign-up and sign-in.
// The Secure flag is only set in production so that local development
// over plain HTTP keeps working.
func SessionCookie(token string, ttl time.Duration, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearSessionCookie builds the expired cookie set on sign-out.
func ClearSessionCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
