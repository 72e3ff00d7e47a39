package gallery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func viewFixture(now time.Time) []Asset {
	ts := func(d time.Duration) *time.Time {
		t := now.Add(-d)
		return &t
	}
	return []Asset{
		{ID: 1, Filename: "Sunset-Beach.jpg", Bytes: 500, Watermarked: true, CreatedAt: now.Add(-5 * time.Hour), LastRepostedAt: ts(10 * time.Hour)},
		{ID: 2, Filename: "forest.png", Bytes: 2000, Watermarked: false, CreatedAt: now.Add(-4 * time.Hour)},
		{ID: 3, Filename: "city_night.jpg", Bytes: 1500, Watermarked: true, CreatedAt: now.Add(-3 * time.Hour), LastRepostedAt: ts(80 * time.Hour)},
		{ID: 4, Filename: "SUNSET-dunes.png", Bytes: 100, Watermarked: false, CreatedAt: now.Add(-2 * time.Hour), LastRepostedAt: ts(2 * time.Hour)},
		{ID: 5, Filename: "river.jpg", Bytes: 800, Watermarked: true, CreatedAt: now.Add(-1 * time.Hour), LastRepostedAt: ts(40 * time.Hour)},
	}
}

func TestProjectFilters(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	eval := NewEvaluator(72 * time.Hour)
	assets := viewFixture(now)

	tests := []struct {
		filter FilterPreset
		want   []int64
	}{
		{FilterAll, []int64{5, 4, 3, 2, 1}}, // default sort newest
		{FilterWatermarked, []int64{5, 3, 1}},
		{FilterUnprotected, []int64{4, 2}},
		{FilterCooldownReady, []int64{3, 2}},
		{FilterCooldownLocked, []int64{5, 4, 1}},
	}
	for _, tt := range tests {
		got := Project(assets, Query{Filter: tt.filter}, eval, now)
		assert.Equal(t, tt.want, ids(got), "filter %s", tt.filter)
	}
}

func TestProjectSortOrders(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	eval := NewEvaluator(72 * time.Hour)
	assets := viewFixture(now)

	tests := []struct {
		sort SortOrder
		want []int64
	}{
		{SortNewest, []int64{5, 4, 3, 2, 1}},
		{SortOldest, []int64{1, 2, 3, 4, 5}},
		{SortSizeDesc, []int64{2, 3, 5, 1, 4}},
		{SortSizeAsc, []int64{4, 1, 5, 3, 2}},
		// never-reposted asset 2 sorts last
		{SortRecentlyReposted, []int64{4, 1, 5, 3, 2}},
	}
	for _, tt := range tests {
		got := Project(assets, Query{Sort: tt.sort}, eval, now)
		assert.Equal(t, tt.want, ids(got), "sort %s", tt.sort)
	}
}

func TestProjectSearchFoldsCase(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	eval := NewEvaluator(72 * time.Hour)
	assets := viewFixture(now)

	got := Project(assets, Query{Search: "sunset", Sort: SortOldest}, eval, now)
	assert.Equal(t, []int64{1, 4}, ids(got))

	// whitespace-only search is no search
	got = Project(assets, Query{Search: "   ", Sort: SortOldest}, eval, now)
	assert.Len(t, got, 5)
}

func TestProjectPure(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	eval := NewEvaluator(72 * time.Hour)
	assets := viewFixture(now)
	before := make([]Asset, len(assets))
	copy(before, assets)

	q := Query{Filter: FilterWatermarked, Sort: SortSizeAsc, Search: "j"}
	first := Project(assets, q, eval, now)
	second := Project(assets, q, eval, now)

	assert.Equal(t, first, second)
	assert.Equal(t, before, assets, "projection must not mutate its input")
}

// filter cooldownLocked + sort recentlyReposted: exactly the locked assets,
// most recently reposted first.
func TestProjectLockedRecentlyReposted(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	eval := NewEvaluator(72 * time.Hour)
	assets := viewFixture(now) // 3 locked (1, 4, 5), 2 not

	got := Project(assets, Query{Filter: FilterCooldownLocked, Sort: SortRecentlyReposted}, eval, now)
	require.Equal(t, []int64{4, 1, 5}, ids(got))
}

func TestViewMemoization(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore()
	store.Replace(viewFixture(now))

	view := NewView(store, NewEvaluator(72*time.Hour))
	view.now = func() time.Time { return now }

	q := Query{Filter: FilterWatermarked, Sort: SortSizeAsc}
	first := view.Project(q)
	assert.Equal(t, []int64{1, 5, 3}, ids(first))

	// unchanged store: identical result
	assert.Equal(t, first, view.Project(q))

	// a store change invalidates the memo via the version key
	store.Append([]Asset{{ID: 6, Filename: "new.jpg", Bytes: 1, Watermarked: true, CreatedAt: now}})
	assert.Equal(t, []int64{6, 1, 5, 3}, ids(view.Project(q)))
}

func TestComputeStats(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	eval := NewEvaluator(72 * time.Hour)

	st := ComputeStats(viewFixture(now), eval, now)
	assert.Equal(t, Stats{
		Total:          5,
		Watermarked:    3,
		Unprotected:    2,
		CooldownReady:  2,
		CooldownLocked: 3,
	}, st)

	assert.Zero(t, ComputeStats(nil, eval, now))
}
