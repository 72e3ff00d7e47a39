package gallery

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// RepostRequest is one quick-repost submission.
type RepostRequest struct {
	AssetID   int64  `json:"assetId"`
	Subreddit string `json:"subreddit"`
	Title     string `json:"title"`
	NSFW      bool   `json:"nsfw,omitempty"`
	Spoiler   bool   `json:"spoiler,omitempty"`
}

// RepostResult is the server's answer to a successful submission. A nil
// RepostedAt means the server omitted the timestamp and the engine falls
// back to local time.
type RepostResult struct {
	RepostedAt *time.Time `json:"repostedAt,omitempty"`
}

// Reposter submits the repost mutation. Implementations live at the
// transport boundary.
type Reposter interface {
	SubmitRepost(ctx context.Context, req RepostRequest) (*RepostResult, error)
}

// RepostEvent is delivered to orchestrator subscribers when a submission
// settles.
type RepostEvent struct {
	AssetID    int64
	Err        error
	RepostedAt time.Time
}

// Orchestrator arbitrates repost submissions. Submissions are single-flight
// per asset id but fully concurrent across ids. Preconditions (asset present,
// cooldown elapsed, no submission in flight) are re-validated at submit time
// even when the caller's affordance state already checked them, because that
// state can be stale.
type Orchestrator struct {
	store    *Store
	eval     Evaluator
	reposter Reposter
	now      func() time.Time

	mu       sync.Mutex
	inFlight map[int64]struct{}

	listenerMu sync.Mutex
	listeners  map[int]func(RepostEvent)
	nextListen int
}

func NewOrchestrator(store *Store, eval Evaluator, reposter Reposter) *Orchestrator {
	return &Orchestrator{
		store:     store,
		eval:      eval,
		reposter:  reposter,
		now:       time.Now,
		inFlight:  make(map[int64]struct{}),
		listeners: make(map[int]func(RepostEvent)),
	}
}

// Submit validates preconditions, issues the repost mutation and on success
// patches the canonical store with the server-reported timestamp. Precondition
// failures (ErrNotFound, *CooldownActiveError, ErrAlreadyInProgress) resolve
// synchronously without a network round-trip. A failed submission leaves the
// store untouched and releases the in-flight guard so retry is possible.
func (o *Orchestrator) Submit(ctx context.Context, req RepostRequest) error {
	id := req.AssetID

	o.mu.Lock()
	asset, ok := o.store.Get(id)
	if !ok {
		o.mu.Unlock()
		return ErrNotFound
	}
	if verdict := o.eval.Evaluate(asset.LastRepostedAt, o.now()); verdict.Active {
		o.mu.Unlock()
		return &CooldownActiveError{HoursRemaining: verdict.HoursRemaining}
	}
	if _, busy := o.inFlight[id]; busy {
		o.mu.Unlock()
		return ErrAlreadyInProgress
	}
	o.inFlight[id] = struct{}{}
	o.mu.Unlock()

	result, err := o.reposter.SubmitRepost(ctx, req)

	o.mu.Lock()
	delete(o.inFlight, id)
	o.mu.Unlock()

	if err != nil {
		slog.Warn("repost failed", "asset_id", id, "subreddit", req.Subreddit, "error", err)
		o.emit(RepostEvent{AssetID: id, Err: err})
		return err
	}

	repostedAt := o.now()
	if result != nil && result.RepostedAt != nil {
		repostedAt = *result.RepostedAt
	}
	o.store.Patch(id, Patch{LastRepostedAt: &repostedAt})

	slog.Info("repost succeeded", "asset_id", id, "subreddit", req.Subreddit, "reposted_at", repostedAt)
	o.emit(RepostEvent{AssetID: id, RepostedAt: repostedAt})
	return nil
}

// InFlight reports whether a submission for id is still settling.
func (o *Orchestrator) InFlight(id int64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.inFlight[id]
	return ok
}

// InFlightIDs returns the ids with submissions currently settling, sorted.
func (o *Orchestrator) InFlightIDs() []int64 {
	o.mu.Lock()
	ids := make([]int64, 0, len(o.inFlight))
	for id := range o.inFlight {
		ids = append(ids, id)
	}
	o.mu.Unlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Subscribe registers fn to receive settle events. The returned func
// unregisters it.
func (o *Orchestrator) Subscribe(fn func(RepostEvent)) (unsubscribe func()) {
	o.listenerMu.Lock()
	id := o.nextListen
	o.nextListen++
	o.listeners[id] = fn
	o.listenerMu.Unlock()

	return func() {
		o.listenerMu.Lock()
		delete(o.listeners, id)
		o.listenerMu.Unlock()
	}
}

func (o *Orchestrator) emit(evt RepostEvent) {
	o.listenerMu.Lock()
	fns := make([]func(RepostEvent), 0, len(o.listeners))
	for _, fn := range o.listeners {
		fns = append(fns, fn)
	}
	o.listenerMu.Unlock()

	for _, fn := range fns {
		fn(evt)
	}
}
