package handler

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-manager-api/internal/model"
	"github.com/BuzzLyutic/task-manager-api/internal/service"
)

// Authenticator resolves a raw bearer token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (model.PublicUser, error)
}

type userCtxKey struct{}

// UserFromContext returns the user set by RequireUser.
func UserFromContext(ctx context.Context) (model.PublicUser, bool) {
	u, ok := ctx.Value(userCtxKey{}).(model.PublicUser)
	return u, ok
}

// RequireUser rejects requests without a valid bearer token and puts the
// authenticated user into the request context.
func RequireUser(a Authenticator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				handleErrors(w, r, logger, service.ErrUnauthorized)
				return
			}

			u, err := a.Authenticate(r.Context(), token)
			if err != nil {
				handleErrors(w, r, logger, err)
				return
			}

			ctx := context.WithValue(r.Context(), userCtxKey{}, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
