package middleware

import (
	"net/http"
	"strings"

	"github.com/trendora/trendora-backend/pkg/logger"
)

const sessionTokenHeader = "X-Session-Token"

// GuestSession seeds the context with the opaque guest token carried by the
// storefront. The token identifies carts and orders placed before signup.
func GuestSession(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimSpace(r.Header.Get(sessionTokenHeader))
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithSessionToken(r.Context(), token)
			if logg != nil {
				ctx = logg.WithSessionToken(ctx, token)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
