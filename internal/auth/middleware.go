package auth

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/mzhyrko/accounts-be/internal/models"
	"github.com/rs/zerolog/log"
)

// AccountFinder resolves the full account record, session token included,
// for the authorization gate.
type AccountFinder interface {
	FindUserByID(id string) (models.User, error)
}

type contextKey string

// userContextKey is the context key the gate stores the resolved account under.
const userContextKey = contextKey("authUser")

// WithUser attaches the resolved account to ctx for downstream handlers.
func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the account attached by Middleware, if any.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userContextKey).(models.User)
	return user, ok
}

// Middleware creates a middleware for protecting routes. A request passes
// only when it carries a Bearer token whose signature verifies AND whose
// value equals the account's currently active token. Signature validity
// alone is not enough: a newer login overwrites the active token and
// thereby revokes every earlier one.
func Middleware(codec *TokenCodec, finder AccountFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Not authorized", http.StatusUnauthorized)
				return
			}

			scheme, tokenStr, found := strings.Cut(authHeader, " ")
			if !found || scheme != "Bearer" || tokenStr == "" {
				http.Error(w, "Not authorized", http.StatusUnauthorized)
				return
			}

			userID, err := codec.Verify(tokenStr)
			if err != nil {
				http.Error(w, "Not authorized", http.StatusUnauthorized)
				return
			}

			user, err := finder.FindUserByID(userID)
			if err != nil {
				log.Debug().Err(err).Str("user_id", userID).Msg("Token subject did not resolve to an account")
				http.Error(w, "Not authorized", http.StatusUnauthorized)
				return
			}

			if user.ActiveToken == "" ||
				subtle.ConstantTimeCompare([]byte(user.ActiveToken), []byte(tokenStr)) != 1 {
				http.Error(w, "Not authorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}
