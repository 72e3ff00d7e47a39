package gallery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAsset(id int64, filename string) Asset {
	return Asset{
		ID:        id,
		Filename:  filename,
		MimeType:  "image/jpeg",
		Bytes:     1024 * id,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(id) * time.Hour),
	}
}

func ids(assets []Asset) []int64 {
	out := make([]int64, 0, len(assets))
	for _, a := range assets {
		out = append(out, a.ID)
	}
	return out
}

func TestStoreReplace(t *testing.T) {
	s := NewStore()
	s.Replace([]Asset{testAsset(1, "a.jpg"), testAsset(2, "b.jpg")})
	assert.Equal(t, []int64{1, 2}, ids(s.Snapshot()))

	s.Replace([]Asset{testAsset(3, "c.jpg")})
	assert.Equal(t, []int64{3}, ids(s.Snapshot()))
	assert.False(t, s.Has(1))
}

func TestStoreAppendDedupKeepsFirstSeenOrder(t *testing.T) {
	s := NewStore()
	s.Replace([]Asset{testAsset(1, "a.jpg"), testAsset(2, "b.jpg")})

	// page 2 re-delivers asset 2 with newer attributes plus a new asset
	updated := testAsset(2, "b-renamed.jpg")
	s.Append([]Asset{updated, testAsset(3, "c.jpg")})

	snap := s.Snapshot()
	require.Equal(t, []int64{1, 2, 3}, ids(snap))
	assert.Equal(t, "b-renamed.jpg", snap[1].Filename, "server truth wins over stale local state")
}

func TestStoreAppendIdempotent(t *testing.T) {
	s := NewStore()
	s.Replace([]Asset{testAsset(1, "a.jpg")})

	page := []Asset{testAsset(2, "b.jpg"), testAsset(3, "c.jpg")}
	s.Append(page)
	first := s.Snapshot()
	v := s.Version()

	s.Append(page)
	assert.Equal(t, first, s.Snapshot())
	assert.Equal(t, v, s.Version(), "re-applying an identical page must not bump the version")
}

func TestStorePatch(t *testing.T) {
	s := NewStore()
	s.Replace([]Asset{testAsset(1, "a.jpg")})

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.True(t, s.Patch(1, Patch{LastRepostedAt: &ts}))

	a, ok := s.Get(1)
	require.True(t, ok)
	require.NotNil(t, a.LastRepostedAt)
	assert.True(t, a.LastRepostedAt.Equal(ts))

	// identical patch is idempotent
	v := s.Version()
	require.True(t, s.Patch(1, Patch{LastRepostedAt: &ts}))
	assert.Equal(t, v, s.Version())

	// missing id must not panic, just report false
	assert.False(t, s.Patch(99, Patch{LastRepostedAt: &ts}))

	// empty patch leaves the asset alone
	require.True(t, s.Patch(1, Patch{}))
	a, _ = s.Get(1)
	assert.True(t, a.LastRepostedAt.Equal(ts))
}

func TestStoreSnapshotIsACopy(t *testing.T) {
	s := NewStore()
	s.Replace([]Asset{testAsset(1, "a.jpg")})

	snap := s.Snapshot()
	snap[0].Filename = "mutated.jpg"

	a, _ := s.Get(1)
	assert.Equal(t, "a.jpg", a.Filename)
}

func TestStoreSubscribe(t *testing.T) {
	s := NewStore()

	var calls int
	unsub := s.Subscribe(func() { calls++ })

	s.Replace([]Asset{testAsset(1, "a.jpg")})
	s.Append([]Asset{testAsset(2, "b.jpg")})
	assert.Equal(t, 2, calls)

	// appending nothing new does not notify
	s.Append([]Asset{testAsset(2, "b.jpg")})
	assert.Equal(t, 2, calls)

	unsub()
	s.Replace(nil)
	assert.Equal(t, 2, calls)
}
