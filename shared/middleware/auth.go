// Package middleware provides the HTTP middleware shared by the services.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/formation-hub/shared/auth"
	"github.com/vasapolrittideah/formation-hub/shared/response"
)

// Messages returned by the role gate.
const (
	MsgMissingToken = "unauthorized, missing token"
	MsgInvalidToken = "unauthorized, invalid token"
	MsgInvalidRole  = "forbidden, invalid role"
)

// TokenVerifier decodes and validates access tokens.
type TokenVerifier interface {
	VerifyToken(token string) (*auth.Claims, error)
}

type contextKey struct{}

var userClaimsKey = contextKey{}

// ClaimsFromContext returns the claims attached by the role gate.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(userClaimsKey).(*auth.Claims)
	return claims, ok
}

// ContextWithClaims returns a copy of ctx carrying claims.
func ContextWithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, userClaimsKey, claims)
}

// RequireRoles returns middleware that only admits requests carrying a valid
// access token whose role is one of roles.
//
// Flow:
//  1. Read the Authorization header (401 when absent)
//  2. Strip an optional "Bearer " prefix (401 when nothing is left)
//  3. Verify the token (401 on any verification failure)
//  4. Check the role against the allowed set (403 when not allowed)
//  5. Attach the claims to the request context and call next
func RequireRoles(verifier TokenVerifier, logger *zerolog.Logger, roles ...auth.Role) func(http.Handler) http.Handler {
	allowed := make(map[auth.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				response.Error(w, http.StatusUnauthorized, MsgMissingToken)
				return
			}

			token := extractToken(header)
			if token == "" {
				response.Error(w, http.StatusUnauthorized, MsgMissingToken)
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				logger.Warn().Err(err).Str("path", r.URL.Path).Msg("rejected request with invalid token")
				response.Error(w, http.StatusUnauthorized, MsgInvalidToken)
				return
			}

			if !allowed[claims.Role] {
				logger.Warn().
					Str("user_id", claims.UserID).
					Str("role", string(claims.Role)).
					Str("path", r.URL.Path).
					Msg("rejected request with insufficient role")
				response.Error(w, http.StatusForbidden, MsgInvalidRole)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
		})
	}
}

// RequireAdmin admits admins only.
func RequireAdmin(verifier TokenVerifier, logger *zerolog.Logger) func(http.Handler) http.Handler {
	return RequireRoles(verifier, logger, auth.RoleAdmin)
}

// RequireUser admits any authenticated identity.
func RequireUser(verifier TokenVerifier, logger *zerolog.Logger) func(http.Handler) http.Handler {
	return RequireRoles(verifier, logger, auth.RoleAdmin, auth.RoleUser)
}

// extractToken accepts both "Bearer <token>" and a raw "<token>".
func extractToken(header string) string {
	header = strings.TrimSpace(header)

	const prefix = "bearer"
	if len(header) >= len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		rest := header[len(prefix):]
		if rest == "" || rest[0] == ' ' {
			return strings.TrimSpace(rest)
		}
	}

	return header
}
