package http

import (
	"context"
	"net"
	"net/http"
	"strings"
)

type contextKey string

const (
	ctxUserID contextKey = "userID"
	ctxRole   contextKey = "role"
)

// TokenVerifier validates a bearer token and returns (userID, role).
type TokenVerifier interface {
	VerifyToken(token string) (string, string, error)
}

// withAuth rejects requests without a valid bearer token and stashes the
// caller's identity in the request context.
func withAuth(verifier TokenVerifier, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "no token, authorization denied"})
			return
		}
		userID, role, err := verifier.VerifyToken(token)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "token is not valid"})
			return
		}
		ctx := context.WithValue(r.Context(), ctxUserID, userID)
		ctx = context.WithValue(ctx, ctxRole, role)
		next(w, r.WithContext(ctx))
	}
}

// withRole additionally requires the authenticated caller to have role.
func withRole(verifier TokenVerifier, role string, next http.HandlerFunc) http.HandlerFunc {
	return withAuth(verifier, func(w http.ResponseWriter, r *http.Request) {
		if callerRole(r.Context()) != role {
			writeJSON(w, http.StatusForbidden, errorBody{Error: "access denied, " + role + " role required"})
			return
		}
		next(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	// also accept a bare token, matching the websocket query parameter path
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	return token
}

func callerID(ctx context.Context) string {
	id, _ := ctx.Value(ctxUserID).(string)
	return id
}

func callerRole(ctx context.Context) string {
	role, _ := ctx.Value(ctxRole).(string)
	return role
}

// clientOrigin derives the throttle origin for a request: the first
// X-Forwarded-For hop when present, the remote host otherwise.
func clientOrigin(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
