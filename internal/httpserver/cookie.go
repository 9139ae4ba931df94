// apps/go-server/internal/httpserver/cookie.go
//
// Session cookie.
// The cookie remembers which session a browser is playing so requests may
// omit `sid`. It carries an HS256 JWT whose `sid` claim names the session;
// it identifies a game, not a user.

package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

// sessionClaims is the JWT payload stored in the cookie.
type sessionClaims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

// signSession creates a token for sid that expires after CookieTTL.
func (s *Server) signSession(sid string, now time.Time) (string, time.Time, error) {
	exp := now.Add(s.opts.CookieTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		SID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	ss, err := t.SignedString(s.opts.Secret)
	return ss, exp, err
}

// parseSession validates a token and returns its sid claim.
func (s *Server) parseSession(token string) (string, error) {
	var claims sessionClaims
	t, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.opts.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !t.Valid || claims.SID == "" {
		return "", errors.New("invalid session token")
	}
	return claims.SID, nil
}

// setSessionCookie writes the session cookie with appropriate security attributes.
func (s *Server) setSessionCookie(w http.ResponseWriter, sid string) {
	tok, exp, err := s.signSession(sid, time.Now())
	if err != nil {
		// The response still carries sid; the client can send it explicitly.
		log.Warn().Err(err).Str("sid", sid).Msg("sign session cookie")
		return
	}
	sameSite := http.SameSiteLaxMode
	if s.opts.Secure {
		sameSite = http.SameSiteNoneMode // required for cross-site contexts when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    tok,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.Secure,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// sidFromCookie returns the session id remembered by the cookie, or "".
func (s *Server) sidFromCookie(r *http.Request) string {
	c, err := r.Cookie(s.opts.CookieName)
	if err != nil || c.Value == "" {
		return ""
	}
	sid, err := s.parseSession(c.Value)
	if err != nil {
		return ""
	}
	return sid
}
