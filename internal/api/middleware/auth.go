package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/horizon-ai/sowlens/internal/api"
	"github.com/horizon-ai/sowlens/internal/domain"
)

type contextKey string

type AuthValidator interface {
	ValidateAPIKey(ctx context.Context, token string) error
}

// StaticKeyValidator checks bearer tokens against a single configured key.
type StaticKeyValidator struct {
	key string
}

func NewStaticKeyValidator(key string) *StaticKeyValidator {
	return &StaticKeyValidator{key: key}
}

func (v *StaticKeyValidator) ValidateAPIKey(ctx context.Context, token string) error {
	if v.key == "" || subtle.ConstantTimeCompare([]byte(v.key), []byte(token)) != 1 {
		return domain.ErrInvalidAPIKey
	}
	return nil
}

func APIKeyAuth(validator AuthValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				api.Error(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				api.Error(w, http.StatusUnauthorized, "invalid authorization format")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")

			if err := validator.ValidateAPIKey(r.Context(), token); err != nil {
				api.Error(w, http.StatusUnauthorized, "invalid api key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
