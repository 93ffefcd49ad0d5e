package worker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	assert.Equal(t, 5, limiter.defaultBurst)

	l2 := NewLimiter(10, -1)
	assert.Equal(t, 5, l2.defaultBurst, "negative burst falls back to the default")
}

func TestLimiter_DisabledAllowsEverything(t *testing.T) {
	limiter := NewLimiter(0, 1)
	require.False(t, limiter.Enabled(), "rate 0 disables the limiter")

	for i := 0; i < 100; i++ {
		require.True(t, limiter.Allow("value_mapping"), "event %d refused by disabled limiter", i)
	}
	assert.Empty(t, limiter.Suppressed())

	var nilLimiter *Limiter
	assert.True(t, nilLimiter.Allow("x"), "nil limiter should allow")
}

func TestLimiter_RateLimit(t *testing.T) {
	// 0.01 per second, burst 2
	limiter := NewLimiter(0.01, 2)

	require.True(t, limiter.Allow("value_mapping"))
	require.True(t, limiter.Allow("value_mapping"))
	assert.False(t, limiter.Allow("value_mapping"), "tokens exhausted")
	assert.False(t, limiter.Allow("value_mapping"), "tokens exhausted")

	// Other keys have their own budget
	assert.True(t, limiter.Allow("mixed_types"))

	suppressed := limiter.Suppressed()
	assert.Equal(t, int64(2), suppressed["value_mapping"])
	assert.NotContains(t, suppressed, "mixed_types")
}
