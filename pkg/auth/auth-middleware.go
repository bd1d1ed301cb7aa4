package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

/* There are two solutions to avoiding cyclic imports between `auth` and `users` packages:
1. merge the two in the users package
2. adopt and maintain an interface as a dependency in the auth package
*/

type contextKey string

const sessionKey contextKey = "session"

type userChecker interface {
	ExistsUserId(id string) bool
}

// Auth verifies the bearer token on protected routes and stores the resolved session in
// the request context. Tokens outlive account deletions, hence the existence check.
func Auth(notary *Notary, ur userChecker) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, request *http.Request) {

			raw, err := parseBearer(request)
			if err != nil {
				reportUnauthorised(w)
				return
			}

			session, err := notary.VerifyToken(raw)
			if err != nil {
				reportUnauthorised(w)
				return
			}

			// verify the user still exists
			if ur.ExistsUserId(session.UserId) {
				next.ServeHTTP(w, request.WithContext(context.WithValue(request.Context(), sessionKey, session)))
			} else {
				reportUnauthorised(w)
			}
		})
	}
}

// Identify resolves the session like Auth does, but lets anonymous requests through;
// handlers on such routes should treat a missing session as a guest visit.
func Identify(notary *Notary, ur userChecker) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, request *http.Request) {

			if raw, err := parseBearer(request); err == nil {
				if session, err := notary.VerifyToken(raw); err == nil && ur.ExistsUserId(session.UserId) {
					request = request.WithContext(context.WithValue(request.Context(), sessionKey, session))
				}
			}

			next.ServeHTTP(w, request)
		})
	}
}

// parseBearer extracts the raw session token from the authorization header.
func parseBearer(request *http.Request) (string, error) {
	var header = request.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") && len(header) > 7 {
		return header[7:], nil
	}
	return "", errors.New("bad authorization header")
}

// MustGetUser returns the session established by the Auth middleware; panicking on its
// absence reveals missing middleware on a protected route during development.
func MustGetUser(request *http.Request) Session {
	var session = request.Context().Value(sessionKey)
	if session == nil {
		panic("missing authentication middleware on protected route")
	}
	return session.(Session)
}

// GetUserId returns the authenticated user's id, or an error when the route lacks the
// authentication middleware.
func GetUserId(request *http.Request) (string, error) {
	if session, ok := request.Context().Value(sessionKey).(Session); ok {
		return session.UserId, nil
	}
	return "", errors.New("missing session in request context")
}

func reportUnauthorised(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
}
