package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSecretGate(t *testing.T) {
	g := NewSecretGate("1080148", nil)
	assert.NoError(t, g.Admit("1.2.3.4:5000", "1080148"))
	assert.ErrorIs(t, g.Admit("1.2.3.4:5000", "nope"), ErrInvalidSecret)
	assert.ErrorIs(t, g.Admit("1.2.3.4:5000", ""), ErrInvalidSecret)
}

func TestSecretGateDisabledWithoutSecret(t *testing.T) {
	g := NewSecretGate("", nil)
	assert.ErrorIs(t, g.Admit("1.2.3.4:5000", ""), ErrHostDisabled)
}

func TestSecretGateRateLimited(t *testing.T) {
	g := NewSecretGate("pw", NewAttemptLimiter(1, 2))
	assert.ErrorIs(t, g.Admit("1.2.3.4:1", "bad"), ErrInvalidSecret)
	assert.ErrorIs(t, g.Admit("1.2.3.4:2", "bad"), ErrInvalidSecret)
	// Burst spent; the port does not matter.
	assert.ErrorIs(t, g.Admit("1.2.3.4:3", "pw"), ErrTooManyAttempts)
	// Another host is unaffected.
	assert.NoError(t, g.Admit("5.6.7.8:1", "pw"))
}

func TestAttemptLimiterRefillsAndEvicts(t *testing.T) {
	now := time.Unix(1000, 0)
	l := NewAttemptLimiter(60, 1)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))

	now = now.Add(time.Second)
	assert.True(t, l.Allow("a"))

	now = now.Add(time.Hour)
	assert.True(t, l.Allow("b"))
	l.mu.Lock()
	_, stale := l.limiters["a"]
	l.mu.Unlock()
	assert.False(t, stale)
}

func TestAttemptLimiterDisabled(t *testing.T) {
	l := NewAttemptLimiter(0, 0)
	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow("a"))
	}
}
