package gallery

import (
	"sort"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/text/cases"
)

// FilterPreset selects which assets appear in a projected view. Presets are
// mutually exclusive.
type FilterPreset string

const (
	FilterAll            FilterPreset = "all"
	FilterWatermarked    FilterPreset = "watermarked"
	FilterUnprotected    FilterPreset = "unprotected"
	FilterCooldownReady  FilterPreset = "cooldownReady"
	FilterCooldownLocked FilterPreset = "cooldownLocked"
)

// SortOrder is a total order over assets; ties keep canonical order.
type SortOrder string

const (
	SortNewest           SortOrder = "newest"
	SortOldest           SortOrder = "oldest"
	SortSizeDesc         SortOrder = "sizeDesc"
	SortSizeAsc          SortOrder = "sizeAsc"
	SortRecentlyReposted SortOrder = "recentlyReposted"
)

// Query are the projection parameters. An empty or whitespace-only Search is
// no search; an empty Filter or Sort falls back to FilterAll / SortNewest.
type Query struct {
	Filter FilterPreset
	Sort   SortOrder
	Search string
}

// Project derives a filtered and sorted view of assets. The input slice is
// never mutated; the result is a fresh slice. Filtering runs before sorting,
// and sorting is stable so equal keys keep canonical order.
func Project(assets []Asset, q Query, eval Evaluator, now time.Time) []Asset {
	fold := cases.Fold()
	search := strings.TrimSpace(q.Search)
	needle := ""
	if search != "" {
		needle = fold.String(search)
	}

	out := make([]Asset, 0, len(assets))
	for _, a := range assets {
		if !matchFilter(a, q.Filter, eval, now) {
			continue
		}
		if needle != "" && !strings.Contains(fold.String(a.Filename), needle) {
			continue
		}
		out = append(out, a)
	}

	sortAssets(out, q.Sort)
	return out
}

func matchFilter(a Asset, f FilterPreset, eval Evaluator, now time.Time) bool {
	switch f {
	case FilterWatermarked:
		return a.Watermarked
	case FilterUnprotected:
		return !a.Watermarked
	case FilterCooldownReady:
		return !eval.Evaluate(a.LastRepostedAt, now).Active
	case FilterCooldownLocked:
		return eval.Evaluate(a.LastRepostedAt, now).Active
	default:
		return true
	}
}

func sortAssets(assets []Asset, order SortOrder) {
	var less func(a, b Asset) bool
	switch order {
	case SortOldest:
		less = func(a, b Asset) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case SortSizeDesc:
		less = func(a, b Asset) bool { return a.Bytes > b.Bytes }
	case SortSizeAsc:
		less = func(a, b Asset) bool { return a.Bytes < b.Bytes }
	case SortRecentlyReposted:
		// never-reposted assets sort last
		less = func(a, b Asset) bool {
			switch {
			case a.LastRepostedAt == nil:
				return false
			case b.LastRepostedAt == nil:
				return true
			default:
				return a.LastRepostedAt.After(*b.LastRepostedAt)
			}
		}
	default: // SortNewest
		less = func(a, b Asset) bool { return a.CreatedAt.After(b.CreatedAt) }
	}

	sort.SliceStable(assets, func(i, j int) bool { return less(assets[i], assets[j]) })
}

// View projects the canonical store with a small LRU memo keyed on store
// version and query. The cache is an optimization only; cooldown-dependent
// filters additionally key on a one-minute time bucket so stale verdicts age
// out. Returned slices are shared with the cache and must be treated as
// read-only by callers.
type View struct {
	store *Store
	eval  Evaluator
	now   func() time.Time
	cache *lru.Cache[viewKey, []Asset]
}

type viewKey struct {
	version uint64
	filter  FilterPreset
	sort    SortOrder
	search  string
	bucket  int64
}

const viewCacheSize = 32

func NewView(store *Store, eval Evaluator) *View {
	cache, _ := lru.New[viewKey, []Asset](viewCacheSize)
	return &View{
		store: store,
		eval:  eval,
		now:   time.Now,
		cache: cache,
	}
}

// Project returns the current projection for q.
func (v *View) Project(q Query) []Asset {
	now := v.now()

	key := viewKey{
		version: v.store.Version(),
		filter:  q.Filter,
		sort:    q.Sort,
		search:  strings.TrimSpace(q.Search),
	}
	if q.Filter == FilterCooldownReady || q.Filter == FilterCooldownLocked {
		key.bucket = now.Unix() / 60
	}

	if cached, ok := v.cache.Get(key); ok {
		return cached
	}

	projected := Project(v.store.Snapshot(), q, v.eval, now)
	v.cache.Add(key, projected)
	return projected
}
