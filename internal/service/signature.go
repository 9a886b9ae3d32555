package service

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/bnema/scribe/internal/port"
)

var (
	_ port.SignatureVerifier = NoopVerifier{}
	_ port.SignatureVerifier = (*SharedSecretVerifier)(nil)
)

var ErrSecretMismatch = errors.New("callback token does not match")

// NoopVerifier accepts every callback.
type NoopVerifier struct{}

func (NoopVerifier) Verify([]byte, string) error { return nil }

// SharedSecretVerifier checks the auth header value the provider echoes on
// each callback against a bcrypt hash of the configured secret.
type SharedSecretVerifier struct {
	hash []byte
}

// NewSharedSecretVerifier accepts an existing bcrypt hash.
func NewSharedSecretVerifier(hash string) (*SharedSecretVerifier, error) {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, err
	}
	return &SharedSecretVerifier{hash: []byte(hash)}, nil
}

// NewSharedSecretVerifierFromSecret hashes secret once at startup.
func NewSharedSecretVerifierFromSecret(secret string) (*SharedSecretVerifier, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &SharedSecretVerifier{hash: hash}, nil
}

func (v *SharedSecretVerifier) Verify(_ []byte, signature string) error {
	if err := bcrypt.CompareHashAndPassword(v.hash, []byte(signature)); err != nil {
		return ErrSecretMismatch
	}
	return nil
}
