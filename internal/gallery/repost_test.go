package gallery

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReposter struct {
	mu      sync.Mutex
	calls   []RepostRequest
	respond func(req RepostRequest) (*RepostResult, error)
}

func (f *fakeReposter) SubmitRepost(ctx context.Context, req RepostRequest) (*RepostResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if f.respond != nil {
		return f.respond(req)
	}
	return &RepostResult{}, nil
}

func (f *fakeReposter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestSubmitNotFound(t *testing.T) {
	store := NewStore()
	rp := &fakeReposter{}
	o := NewOrchestrator(store, NewEvaluator(0), rp)

	err := o.Submit(context.Background(), RepostRequest{AssetID: 42, Subreddit: "pics", Title: "hi"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, rp.callCount(), "precondition failures resolve without a network call")
}

func TestSubmitCooldownActive(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore()
	a := testAsset(1, "a.jpg")
	last := now.Add(-10 * time.Hour)
	a.LastRepostedAt = &last
	store.Replace([]Asset{a})

	rp := &fakeReposter{}
	o := NewOrchestrator(store, NewEvaluator(72*time.Hour), rp)
	o.now = func() time.Time { return now }

	err := o.Submit(context.Background(), RepostRequest{AssetID: 1, Subreddit: "pics", Title: "hi"})

	var cdErr *CooldownActiveError
	require.ErrorAs(t, err, &cdErr)
	assert.InDelta(t, 62.0, cdErr.HoursRemaining, 1e-9)
	assert.Zero(t, rp.callCount())
}

func TestSubmitSuccessPatchesStore(t *testing.T) {
	store := NewStore()
	store.Replace([]Asset{testAsset(2, "b.jpg")})

	serverTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rp := &fakeReposter{respond: func(req RepostRequest) (*RepostResult, error) {
		return &RepostResult{RepostedAt: &serverTime}, nil
	}}
	o := NewOrchestrator(store, NewEvaluator(72*time.Hour), rp)

	var events []RepostEvent
	o.Subscribe(func(evt RepostEvent) { events = append(events, evt) })

	require.NoError(t, o.Submit(context.Background(), RepostRequest{AssetID: 2, Subreddit: "pics", Title: "hi"}))

	a, _ := store.Get(2)
	require.NotNil(t, a.LastRepostedAt)
	assert.True(t, a.LastRepostedAt.Equal(serverTime), "server-reported timestamp wins")
	assert.False(t, o.InFlight(2))

	require.Len(t, events, 1)
	assert.NoError(t, events[0].Err)
	assert.True(t, events[0].RepostedAt.Equal(serverTime))
}

func TestSubmitFallsBackToLocalTime(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore()
	store.Replace([]Asset{testAsset(1, "a.jpg")})

	rp := &fakeReposter{respond: func(req RepostRequest) (*RepostResult, error) {
		return &RepostResult{}, nil // server omitted repostedAt
	}}
	o := NewOrchestrator(store, NewEvaluator(72*time.Hour), rp)
	o.now = func() time.Time { return now }

	require.NoError(t, o.Submit(context.Background(), RepostRequest{AssetID: 1, Subreddit: "pics", Title: "hi"}))

	a, _ := store.Get(1)
	require.NotNil(t, a.LastRepostedAt)
	assert.True(t, a.LastRepostedAt.Equal(now))
}

func TestSubmitFailureLeavesStoreUntouchedAndAllowsRetry(t *testing.T) {
	store := NewStore()
	store.Replace([]Asset{testAsset(1, "a.jpg")})

	fail := true
	rp := &fakeReposter{respond: func(req RepostRequest) (*RepostResult, error) {
		if fail {
			return nil, &ServerError{StatusCode: 502, Message: "reddit unavailable"}
		}
		return &RepostResult{}, nil
	}}
	o := NewOrchestrator(store, NewEvaluator(72*time.Hour), rp)

	err := o.Submit(context.Background(), RepostRequest{AssetID: 1, Subreddit: "pics", Title: "hi"})
	var srvErr *ServerError
	require.ErrorAs(t, err, &srvErr)
	assert.Equal(t, "reddit unavailable", srvErr.Message)

	a, _ := store.Get(1)
	assert.Nil(t, a.LastRepostedAt, "no partial patch on failure")
	assert.False(t, o.InFlight(1), "failure releases the in-flight guard")

	// failure does not leave the asset permanently locked
	fail = false
	require.NoError(t, o.Submit(context.Background(), RepostRequest{AssetID: 1, Subreddit: "pics", Title: "hi"}))
}

// Two overlapping submissions for the same asset: exactly one network
// mutation, the second call fails with ErrAlreadyInProgress.
func TestSubmitDuplicateGuard(t *testing.T) {
	store := NewStore()
	store.Replace([]Asset{testAsset(1, "a.jpg"), testAsset(2, "b.jpg")})

	entered := make(chan struct{})
	release := make(chan struct{})
	rp := &fakeReposter{respond: func(req RepostRequest) (*RepostResult, error) {
		if req.AssetID == 1 {
			close(entered)
			<-release
		}
		return &RepostResult{}, nil
	}}
	o := NewOrchestrator(store, NewEvaluator(72*time.Hour), rp)

	done := make(chan error, 1)
	go func() {
		done <- o.Submit(context.Background(), RepostRequest{AssetID: 1, Subreddit: "pics", Title: "first"})
	}()
	<-entered
	assert.True(t, o.InFlight(1))
	assert.Equal(t, []int64{1}, o.InFlightIDs())

	err := o.Submit(context.Background(), RepostRequest{AssetID: 1, Subreddit: "pics", Title: "second"})
	assert.ErrorIs(t, err, ErrAlreadyInProgress)

	// a different asset is not blocked: reposts are single-flight per id only
	require.NoError(t, o.Submit(context.Background(), RepostRequest{AssetID: 2, Subreddit: "pics", Title: "other"}))

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 2, rp.callCount())
	assert.False(t, o.InFlight(1))
}
