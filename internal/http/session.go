package http

import (
	"net/http"
	"time"

	"ledger/internal/core"
)

// SessionCookieName names the cookie carrying the session token.
const SessionCookieName = "sessionId"

// sessionHandler receives the caller's session token as an argument.
type sessionHandler func(w http.ResponseWriter, r *http.Request, sessionID string) error

// SessionCookies reads and issues the session cookie.
type SessionCookies struct {
	maxAge time.Duration
	secure bool
}

func NewSessionCookies(maxAge time.Duration, secure bool) *SessionCookies {
	return &SessionCookies{maxAge: maxAge, secure: secure}
}

// Token returns the session token of r, or "" when there is none.
func (sc *SessionCookies) Token(r *http.Request) string {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// Require rejects requests without a session token as Unauthorized and
// passes the token to h otherwise.
func (sc *SessionCookies) Require(h sessionHandler) appHandler {
	return func(w http.ResponseWriter, r *http.Request) error {
		sessionID := sc.Token(r)
		if sessionID == "" {
			return core.ErrUnauthorized()
		}
		return h(w, r, sessionID)
	}
}

// Resolve returns the caller's token, minting one when absent. minted
// reports whether the caller must be sent a new cookie.
func (sc *SessionCookies) Resolve(r *http.Request) (sessionID string, minted bool) {
	if sessionID = sc.Token(r); sessionID != "" {
		return sessionID, false
	}
	return core.NewSessionID(), true
}

// Cookie builds the Set-Cookie value for a newly minted token.
func (sc *SessionCookies) Cookie(sessionID string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(sc.maxAge / time.Second),
		Expires:  time.Now().Add(sc.maxAge),
		HttpOnly: true,
		Secure:   sc.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
