// Package auth resolves caller identities from bearer tokens and gates the
// catalog endpoints behind them.
package auth

import (
	"context"
	"net/http"
	"strings"
)

// Identity is the resolved caller principal.
type Identity struct {
	Username string
	ID       string
}

type contextKey struct{}

var identityKey = contextKey{}

// WithIdentity adds an Identity to the context.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// GetIdentity retrieves the Identity from context, or nil.
func GetIdentity(ctx context.Context) *Identity {
	if id, ok := ctx.Value(identityKey).(*Identity); ok {
		return id
	}
	return nil
}

// Authenticator resolves an Identity from a request, or nil when the
// credential is missing or invalid.
type Authenticator interface {
	Authenticate(r *http.Request) *Identity
}

// Middleware requires a resolved identity for every path outside publicPaths.
// Failures get a uniform 401; the response never says why the credential was
// rejected.
func Middleware(authenticator Authenticator, publicPaths []string) func(http.Handler) http.Handler {
	publicSet := make(map[string]bool, len(publicPaths))
	for _, p := range publicPaths {
		publicSet[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r.URL.Path, publicSet) {
				next.ServeHTTP(w, r)
				return
			}

			if id := authenticator.Authenticate(r); id != nil {
				next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("WWW-Authenticate", `Bearer realm="anime"`)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"could not validate credentials"}`))
		})
	}
}

// isPublicPath checks exact matches plus "/prefix/*" patterns.
func isPublicPath(path string, publicSet map[string]bool) bool {
	if publicSet[path] {
		return true
	}
	for p := range publicSet {
		if strings.HasSuffix(p, "/*") {
			prefix := strings.TrimSuffix(p, "*")
			if strings.HasPrefix(path, prefix) {
				return true
			}
		}
	}
	return false
}
