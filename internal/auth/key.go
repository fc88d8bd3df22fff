package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// KeyVerifier checks shared secrets against a stored bcrypt hash,
// so the plain webhook key never has to live in configuration.
type KeyVerifier struct {
	hash []byte
}

// NewKeyVerifier returns nil when hash is empty.
func NewKeyVerifier(hash string) (*KeyVerifier, error) {
	if hash == "" {
		return nil, nil
	}
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, errors.New("webhook key hash is not a bcrypt hash")
	}
	return &KeyVerifier{hash: []byte(hash)}, nil
}

// Verify returns nil on success, or an error on failure.
func (v *KeyVerifier) Verify(key string) error {
	return bcrypt.CompareHashAndPassword(v.hash, []byte(key))
}

// HashKey hashes key with the given bcrypt cost.
func HashKey(key string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(key), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}
