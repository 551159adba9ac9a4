package middleware

import (
	"net/http"
	"strings"

	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

// TokenHeader carries the session token on cart routes.
const TokenHeader = "auth-token"

// TokenValidator turns a raw token into an identity.
type TokenValidator interface {
	Validate(raw string) (auth.Identity, error)
}

// Auth rejects requests without a valid auth-token header with 401 and
// stores the identity in the request context otherwise.
func Auth(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(TokenHeader))
			if raw == "" {
				response.Unauthorized(w, "Please authenticate using a valid token")
				return
			}

			id, err := tokens.Validate(raw)
			if err != nil {
				logger.WithCtx(r.Context()).Debug("token rejected", "error", err)
				response.Unauthorized(w, "Please authenticate using a valid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}
