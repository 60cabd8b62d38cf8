package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-manager-api/internal/auth"
	"github.com/BuzzLyutic/task-manager-api/internal/model"
	"github.com/BuzzLyutic/task-manager-api/internal/repo"
)

// AuthGateway resolves a bearer token to the user it was issued for.
type AuthGateway struct {
	tokens auth.TokenService
	users  repo.UserRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewAuthGateway(tokens auth.TokenService, users repo.UserRepository, logger *zap.Logger) *AuthGateway {
	return &AuthGateway{
		tokens: tokens,
		users:  users,
		logger: logger,
		now:    time.Now,
	}
}

// Authenticate returns ErrUnauthorized for a bad or expired token and for a
// token whose user no longer exists; callers cannot tell these apart.
func (g *AuthGateway) Authenticate(ctx context.Context, token string) (model.PublicUser, error) {
	userID, err := g.tokens.Validate(token, g.now())
	if err != nil {
		g.logger.Debug("token rejected", zap.Error(err))
		return model.PublicUser{}, ErrUnauthorized
	}

	u, err := g.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrorNotFound) {
			g.logger.Debug("token subject not found", zap.Int64("user_id", userID))
			return model.PublicUser{}, ErrUnauthorized
		}
		return model.PublicUser{}, errors.Wrap(err, "lookup token subject")
	}
	return u.Public(), nil
}
