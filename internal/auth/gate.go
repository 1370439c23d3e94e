// Package auth guards the host role behind a shared secret.
package auth

import (
	"crypto/subtle"
	"errors"
)

var (
	ErrInvalidSecret   = errors.New("invalid host secret")
	ErrHostDisabled    = errors.New("host role disabled")
	ErrTooManyAttempts = errors.New("too many host attempts")
)

// SecretGate compares the presented password with the configured secret
// in constant time. An empty secret disables the host role entirely.
type SecretGate struct {
	Secret  string
	Limiter *AttemptLimiter
}

func NewSecretGate(secret string, limiter *AttemptLimiter) *SecretGate {
	return &SecretGate{Secret: secret, Limiter: limiter}
}

func (g *SecretGate) Admit(remote string, password string) error {
	if g.Limiter != nil && !g.Limiter.Allow(remote) {
		return ErrTooManyAttempts
	}
	if g.Secret == "" {
		return ErrHostDisabled
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(g.Secret)) != 1 {
		return ErrInvalidSecret
	}
	return nil
}
