package gallery

import "time"

// Stats are derived counts over the canonical collection. Like a projection
// they are recomputed on demand and never stored.
type Stats struct {
	Total          int `json:"total"`
	Watermarked    int `json:"watermarked"`
	Unprotected    int `json:"unprotected"`
	CooldownReady  int `json:"cooldownReady"`
	CooldownLocked int `json:"cooldownLocked"`
}

func ComputeStats(assets []Asset, eval Evaluator, now time.Time) Stats {
	var st Stats
	st.Total = len(assets)
	for _, a := range assets {
		if a.Watermarked {
			st.Watermarked++
		} else {
			st.Unprotected++
		}
		if eval.Evaluate(a.LastRepostedAt, now).Active {
			st.CooldownLocked++
		} else {
			st.CooldownReady++
		}
	}
	return st
}
