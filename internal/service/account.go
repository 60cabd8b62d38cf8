package service

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-manager-api/internal/auth"
	"github.com/BuzzLyutic/task-manager-api/internal/model"
	"github.com/BuzzLyutic/task-manager-api/internal/repo"
)

type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=3,max=100"`
	Email    string `json:"email" validate:"required,max=255,emailaddr"`
	Password string `json:"password" validate:"required,min=6,max=255"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AccountService handles registration and login.
type AccountService struct {
	users  repo.UserRepository
	hasher auth.PasswordHasher
	tokens auth.TokenService
	logger *zap.Logger
	now    func() time.Time

	// decoyHash is checked when the email is unknown so that a miss costs
	// the same as a wrong password.
	decoyHash string
}

func NewAccountService(users repo.UserRepository, hasher auth.PasswordHasher, tokens auth.TokenService, logger *zap.Logger) (*AccountService, error) {
	decoy, err := hasher.Hash("decoy-password-never-matches")
	if err != nil {
		return nil, errors.Wrap(err, "prepare decoy hash")
	}
	return &AccountService{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		logger:    logger,
		now:       time.Now,
		decoyHash: decoy,
	}, nil
}

// Register validates the input, rejects a taken email with repo.ErrorConflict,
// and stores the new user with a hashed password.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (model.PublicUser, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := validateStruct(in); err != nil {
		return model.PublicUser{}, err
	}

	_, err := s.users.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return model.PublicUser{}, errors.Wrap(repo.ErrorConflict, "email already registered")
	case !errors.Is(err, repo.ErrorNotFound):
		return model.PublicUser{}, errors.Wrap(err, "lookup user by email")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return model.PublicUser{}, errors.Wrap(err, "hash password")
	}

	// The unique index still decides a race between two registrations.
	u, err := s.users.Create(ctx, model.User{
		Name:           in.Name,
		Email:          in.Email,
		HashedPassword: hash,
	})
	if err != nil {
		if errors.Is(err, repo.ErrorConflict) {
			return model.PublicUser{}, errors.Wrap(repo.ErrorConflict, "email already registered")
		}
		return model.PublicUser{}, errors.Wrap(err, "create user")
	}

	s.logger.Info("user registered", zap.Int64("user_id", u.ID))
	return u.Public(), nil
}

// Login returns a bearer token. Unknown email and wrong password both yield ErrUnauthorized.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (model.Token, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return model.Token{}, ErrUnauthorized
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrorNotFound) {
			s.hasher.Check(in.Password, s.decoyHash)
			return model.Token{}, ErrUnauthorized
		}
		return model.Token{}, errors.Wrap(err, "lookup user by email")
	}
	if !s.hasher.Check(in.Password, u.HashedPassword) {
		return model.Token{}, ErrUnauthorized
	}

	token, err := s.tokens.Issue(u.ID, s.now())
	if err != nil {
		return model.Token{}, errors.Wrap(err, "issue token")
	}
	return model.Token{AccessToken: token, TokenType: "bearer"}, nil
}
