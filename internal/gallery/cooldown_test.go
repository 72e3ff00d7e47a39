package gallery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateNeverReposted(t *testing.T) {
	eval := NewEvaluator(72 * time.Hour)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	v := eval.Evaluate(nil, now)
	assert.False(t, v.Active)
	assert.Zero(t, v.HoursRemaining)

	var zero time.Time
	v = eval.Evaluate(&zero, now)
	assert.False(t, v.Active)
	assert.Zero(t, v.HoursRemaining)
}

func TestEvaluateWindowElapsed(t *testing.T) {
	eval := NewEvaluator(72 * time.Hour)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	for _, ago := range []time.Duration{72 * time.Hour, 73 * time.Hour, 30 * 24 * time.Hour} {
		last := now.Add(-ago)
		v := eval.Evaluate(&last, now)
		assert.False(t, v.Active, "reposted %s ago should be eligible", ago)
		assert.Zero(t, v.HoursRemaining)
	}
}

func TestEvaluateWithinWindow(t *testing.T) {
	eval := NewEvaluator(72 * time.Hour)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		ago  time.Duration
		want float64
	}{
		{10 * time.Hour, 62},
		{time.Hour, 71},
		{0, 72},
		{71*time.Hour + 54*time.Minute, 0.1},
	}
	for _, tt := range tests {
		last := now.Add(-tt.ago)
		v := eval.Evaluate(&last, now)
		assert.True(t, v.Active, "reposted %s ago should be locked", tt.ago)
		assert.InDelta(t, tt.want, v.HoursRemaining, 1e-9)
	}
}

func TestEvaluateFractionalHoursAndDisplayCeiling(t *testing.T) {
	eval := NewEvaluator(72 * time.Hour)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	last := now.Add(-(71*time.Hour + 54*time.Minute)) // 0.1h remaining
	v := eval.Evaluate(&last, now)
	assert.True(t, v.Active)
	assert.Less(t, v.HoursRemaining, 1.0)
	// display rounds up, never down: 0.1h shows as 1h, not "ready"
	assert.Equal(t, 1, v.DisplayHours())

	assert.Equal(t, 0, Verdict{}.DisplayHours())
}

func TestEvaluatorInjectedWindow(t *testing.T) {
	eval := NewEvaluator(2 * time.Hour)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	last := now.Add(-time.Hour)
	v := eval.Evaluate(&last, now)
	assert.True(t, v.Active)
	assert.InDelta(t, 1.0, v.HoursRemaining, 1e-9)

	// non-positive windows fall back to the 72h default
	assert.Equal(t, DefaultCooldownWindow, NewEvaluator(0).Window())
}
