// Package auth implements password hashing and bearer token issuance.
package auth

import (
	"crypto/sha256"
	"encoding/base64"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// bcrypt only looks at the first 72 bytes of its input.
const bcryptMaxInput = 72

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Check(password, hash string) bool
}

// BcryptHasher is a PasswordHasher backed by bcrypt with a configurable cost.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher with the given cost. Zero selects bcrypt.DefaultCost.
func NewBcryptHasher(cost int) (*BcryptHasher, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, errors.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &BcryptHasher{cost: cost}, nil
}

// Hash returns a salted bcrypt hash. Every call uses a fresh salt.
func (h *BcryptHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword(prepare(password), h.cost)
	if err != nil {
		return "", errors.Wrap(err, "bcrypt generate")
	}
	return string(b), nil
}

// Check reports whether password matches hash. The comparison is constant time.
func (h *BcryptHasher) Check(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), prepare(password)) == nil
}

// prepare folds passwords longer than bcrypt's input limit into a digest so
// that every byte of the password counts.
func prepare(password string) []byte {
	if len(password) <= bcryptMaxInput {
		return []byte(password)
	}
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}
