package gallery

import (
	"math"
	"time"
)

// DefaultCooldownWindow is the repost cooldown applied to every asset unless
// the evaluator is constructed with a different window.
const DefaultCooldownWindow = 72 * time.Hour

// Verdict is the derived cooldown state for one asset. It is never stored;
// callers recompute it from the asset and the current time.
type Verdict struct {
	Active         bool
	HoursRemaining float64
}

// DisplayHours rounds the remaining time up to whole hours for presentation.
// Rounding up means an asset with 0.1h left still shows 1h instead of a
// false "ready".
func (v Verdict) DisplayHours() int {
	if !v.Active {
		return 0
	}
	return int(math.Ceil(v.HoursRemaining))
}

// Evaluator computes repost eligibility against a fixed cooldown window.
// It holds no mutable state and is safe to share.
type Evaluator struct {
	window time.Duration
}

func NewEvaluator(window time.Duration) Evaluator {
	if window <= 0 {
		window = DefaultCooldownWindow
	}
	return Evaluator{window: window}
}

// Window returns the configured cooldown duration.
func (e Evaluator) Window() time.Duration {
	return e.window
}

// Evaluate reports whether the cooldown is still active for an asset last
// reposted at the given time. A nil or zero timestamp means the asset was
// never reposted and is always eligible. HoursRemaining is fractional;
// presentation code rounds via Verdict.DisplayHours.
func (e Evaluator) Evaluate(lastRepostedAt *time.Time, now time.Time) Verdict {
	if lastRepostedAt == nil || lastRepostedAt.IsZero() {
		return Verdict{}
	}

	remaining := e.window - now.Sub(*lastRepostedAt)
	if remaining <= 0 {
		return Verdict{}
	}

	return Verdict{
		Active:         true,
		HoursRemaining: remaining.Hours(),
	}
}
