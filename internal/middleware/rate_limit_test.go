package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIPRateLimiter_EvictsIdleVisitors(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	l := NewIPRateLimiter(1, 1)
	l.now = func() time.Time { return now }

	first := l.GetLimiter("10.0.0.1")
	l.GetLimiter("10.0.0.2")
	assert.Len(t, l.visitors, 2)

	now = now.Add(5 * time.Minute)
	assert.Same(t, first, l.GetLimiter("10.0.0.1"))

	now = now.Add(limiterIdleTTL + time.Second)
	l.GetLimiter("10.0.0.3")

	assert.Len(t, l.visitors, 1)
	assert.Contains(t, l.visitors, "10.0.0.3")
}

func TestIPRateLimiter_ActiveVisitorKeepsLimiter(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	l := NewIPRateLimiter(1, 1)
	l.now = func() time.Time { return now }

	first := l.GetLimiter("10.0.0.1")
	for n := 0; n < 4; n++ {
		now = now.Add(limiterIdleTTL / 2)
		assert.Same(t, first, l.GetLimiter("10.0.0.1"))
	}
}
