package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// DefaultTokenTTL is how long an access token stays valid after issuance.
const DefaultTokenTTL = 30 * time.Minute

var (
	ErrExpiredToken     = errors.New("token expired")
	ErrMalformedToken   = errors.New("token malformed")
	ErrInvalidSignature = errors.New("token signature invalid")
)

// TokenService issues and validates signed access tokens carrying a user id.
type TokenService interface {
	Issue(userID int64, now time.Time) (string, error)
	Validate(token string, now time.Time) (int64, error)
}

// JWTService signs HMAC JWTs with a process-wide secret.
type JWTService struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
}

// NewJWTService builds a token service. algorithm must be one of HS256, HS384 or HS512;
// empty selects HS256. A non-positive ttl selects DefaultTokenTTL.
func NewJWTService(secret, algorithm string, ttl time.Duration) (*JWTService, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must be provided")
	}
	if algorithm == "" {
		algorithm = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, errors.Errorf("unsupported jwt algorithm %q", algorithm)
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &JWTService{
		secret: []byte(secret),
		method: method,
		ttl:    ttl,
	}, nil
}

func (s *JWTService) TTL() time.Duration {
	return s.ttl
}

// Issue mints a token for userID that expires ttl after now.
func (s *JWTService) Issue(userID int64, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		ID:        uuid.NewString(),
	}
	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}

// Validate checks signature and expiry against now and returns the subject user id.
// A token is expired once now reaches its exp claim.
func (s *JWTService) Validate(token string, now time.Time) (int64, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return 0, classify(err)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, errors.Wrap(ErrMalformedToken, "subject is not a user id")
	}
	return userID, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return errors.Wrap(ErrInvalidSignature, err.Error())
	case errors.Is(err, jwt.ErrTokenExpired):
		return errors.Wrap(ErrExpiredToken, err.Error())
	default:
		return errors.Wrap(ErrMalformedToken, err.Error())
	}
}
