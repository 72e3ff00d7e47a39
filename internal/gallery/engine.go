package gallery

import (
	"context"
	"sync"
	"time"
)

// API is the remote boundary the engine syncs against: page fetches plus the
// repost mutation. The HTTP client in internal/client implements it; tests
// use fakes.
type API interface {
	Fetcher
	Reposter
}

// Engine bundles the store, pagination controller, view engine, selection
// manager and repost orchestrator behind the surface the rendering layer
// consumes. State lives only for the duration of the session; nothing is
// persisted.
type Engine struct {
	store        *Store
	controller   *Controller
	view         *View
	selection    *Selection
	orchestrator *Orchestrator
	eval         Evaluator

	mu    sync.Mutex
	query Query
}

// EngineOptions configure a new engine. Zero values get defaults
// (72h cooldown window, page size 50).
type EngineOptions struct {
	CooldownWindow time.Duration
	PageSize       int
}

func NewEngine(api API, opts EngineOptions) *Engine {
	eval := NewEvaluator(opts.CooldownWindow)
	store := NewStore()
	return &Engine{
		store:        store,
		controller:   NewController(store, api, opts.PageSize),
		view:         NewView(store, eval),
		selection:    NewSelection(store),
		orchestrator: NewOrchestrator(store, eval, api),
		eval:         eval,
	}
}

// LoadInitial starts a fresh sync cycle.
func (e *Engine) LoadInitial(ctx context.Context) error {
	return e.controller.LoadInitial(ctx)
}

// LoadMore fetches and merges the next page, if any.
func (e *Engine) LoadMore(ctx context.Context) error {
	return e.controller.LoadMore(ctx)
}

// SetQuery updates the projection parameters and forwards them verbatim to
// the server on subsequent fetches. The client-side projection re-derives the
// view regardless of any server-side filtering.
func (e *Engine) SetQuery(q Query) {
	e.mu.Lock()
	e.query = q
	e.mu.Unlock()
	e.controller.SetQuery(string(q.Filter), string(q.Sort), q.Search)
}

// Query returns the current projection parameters.
func (e *Engine) Query() Query {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.query
}

// Snapshot returns the canonical collection in order.
func (e *Engine) Snapshot() []Asset {
	return e.store.Snapshot()
}

// ProjectedView returns the filtered/sorted projection for the current query.
func (e *Engine) ProjectedView() []Asset {
	e.mu.Lock()
	q := e.query
	e.mu.Unlock()
	return e.view.Project(q)
}

// Stats returns derived counts over the canonical collection.
func (e *Engine) Stats() Stats {
	return ComputeStats(e.store.Snapshot(), e.eval, time.Now())
}

// Eligibility returns the cooldown verdict for one asset. A missing asset is
// reported as not eligible for display purposes but callers should check ok.
func (e *Engine) Eligibility(id int64) (Verdict, bool) {
	a, ok := e.store.Get(id)
	if !ok {
		return Verdict{}, false
	}
	return e.eval.Evaluate(a.LastRepostedAt, time.Now()), true
}

// SubmitRepost submits a quick-repost for one asset.
func (e *Engine) SubmitRepost(ctx context.Context, req RepostRequest) error {
	return e.orchestrator.Submit(ctx, req)
}

// ToggleSelect toggles id in the selection set.
func (e *Engine) ToggleSelect(id int64) {
	e.selection.Toggle(id)
}

// ClearSelection empties the selection set.
func (e *Engine) ClearSelection() {
	e.selection.Clear()
}

// SelectedIDs returns the selection snapshot, sorted.
func (e *Engine) SelectedIDs() []int64 {
	return e.selection.Snapshot()
}

// InFlightIDs returns the asset ids with repost submissions still settling.
func (e *Engine) InFlightIDs() []int64 {
	return e.orchestrator.InFlightIDs()
}

// SyncState returns the pagination controller's state.
func (e *Engine) SyncState() ControllerState {
	return e.controller.State()
}

// Subscribe registers fn to run after every canonical collection change; the
// rendering layer re-projects on each notification.
func (e *Engine) Subscribe(fn func()) (unsubscribe func()) {
	return e.store.Subscribe(fn)
}

// SubscribeReposts registers fn for repost settle events.
func (e *Engine) SubscribeReposts(fn func(RepostEvent)) (unsubscribe func()) {
	return e.orchestrator.Subscribe(fn)
}

// Close detaches internal subscriptions.
func (e *Engine) Close() {
	e.selection.Close()
}
