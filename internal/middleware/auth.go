package middleware

import (
	"net/http"
	"strings"

	"storefront/internal/auth"
	"storefront/internal/handler"
	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// Authenticate resolves the bearer token to a user and stores it in the request context.
func Authenticate(authn auth.Authenticator, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				logger.Debug().Str("path", r.URL.Path).Msg("missing bearer token")
				handler.RespondError(w, r, model.ErrInvalidToken, logger)
				return
			}

			user, err := authn.Resolve(r.Context(), token)
			if err != nil {
				handler.RespondError(w, r, err, logger)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	}
}

// RequireRole rejects authenticated users without the given role.
func RequireRole(role string, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, _ := auth.UserFromContext(r.Context())
			if err := auth.RequireRole(user, role); err != nil {
				if user != nil {
					logger.Warn().
						Str("user_id", user.ID.String()).
						Str("path", r.URL.Path).
						Msg("insufficient role")
				}
				handler.RespondError(w, r, err, logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
