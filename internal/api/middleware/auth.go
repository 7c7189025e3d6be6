package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/example/dscommerce/internal/auth"
)

// AccessTokenCookie is the cookie browsers may carry the token in.
const AccessTokenCookie = "access_token"

// ExtractToken extracts the bearer token from the Authorization header or,
// failing that, from the access token cookie.
func ExtractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

type contextKey string

const identityContextKey contextKey = "identity"

// Identify resolves the request credential into an Identity and stores it in
// the request context. It never rejects a request: a missing or invalid
// token resolves to auth.Anonymous and the decision is left to the handler.
func Identify(jwtService *auth.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := jwtService.Resolve(ExtractToken(r))
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// WithIdentity returns a copy of ctx carrying id
func WithIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFrom retrieves the caller identity; Anonymous when none was set.
func IdentityFrom(ctx context.Context) auth.Identity {
	id, ok := ctx.Value(identityContextKey).(auth.Identity)
	if !ok {
		return auth.Anonymous
	}
	return id
}
