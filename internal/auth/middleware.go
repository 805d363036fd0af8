package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"portal/infrastructure"
	"portal/pkg/jwt"
)

type contextKey struct{}

// TokenValidator verifies an access token and returns its claims.
type TokenValidator interface {
	ValidateToken(token string) (*jwt.Claims, error)
}

type AuthMiddleware struct {
	tokens TokenValidator
}

func NewAuthMiddleware(tokens TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Middleware rejects requests without a valid bearer token and stores the
// caller's user id in the request context.
func (am *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := am.Authenticate(r)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"ok": false, "error": err.Error()})
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// Authenticate validates the token carried by r and returns its user id.
func (am *AuthMiddleware) Authenticate(r *http.Request) (string, error) {
	claims, err := am.tokens.ValidateToken(TokenFromRequest(r))
	if err != nil {
		if errors.Is(err, infrastructure.ErrTokenExpired) || errors.Is(err, infrastructure.ErrMissingToken) {
			return "", err
		}
		return "", infrastructure.ErrInvalidToken
	}
	return claims.UserID, nil
}

// TokenFromRequest reads the bearer token from the Authorization header,
// falling back to the token query parameter that browser websockets use.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// UserID returns the authenticated user id stored by Middleware.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKey{}).(string)
	return id, ok && id != ""
}
