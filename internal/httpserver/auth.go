// internal/httpserver/auth.go
//
// Session handle tokens.
// Creating a session returns an HS256 JWT whose "sid" claim names the session.
// Every /sessions/{id} route requires that token as a bearer credential, and the
// claim must match the id in the path. Tokens do not expire: a token outliving its
// session only ever gets 404.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
)

var errInvalidToken = errors.New("invalid token")

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// signSessionToken issues a token for session id.
func (s *Server) signSessionToken(id string) (string, error) {
	claims := sessionClaims{
		SessionID: id,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(s.opts.Now()),
			Issuer:   "minigames",
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.opts.Secret)
}

// parseSessionToken verifies tok and returns its session id.
func (s *Server) parseSessionToken(tok string) (string, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return s.opts.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.opts.Now),
	)
	if err != nil || !token.Valid || claims.SessionID == "" {
		return "", errInvalidToken
	}
	return claims.SessionID, nil
}

// bearer extracts the token from "Authorization: Bearer <token>".
func bearer(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return ""
}

type ctxSessionKey struct{}

// requireSession enforces a valid token for the session named in the path.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := bearer(r)
		if tok == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		sid, err := s.parseSessionToken(tok)
		if err != nil || sid != chi.URLParam(r, "id") {
			writeError(w, http.StatusUnauthorized, "invalid_token")
			return
		}
		ctx := context.WithValue(r.Context(), ctxSessionKey{}, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionID returns the id authenticated by requireSession.
func sessionID(r *http.Request) string {
	id, _ := r.Context().Value(ctxSessionKey{}).(string)
	return id
}

func defaultNow() time.Time { return time.Now() }
