package gallery

import (
	"context"
	"log/slog"
	"sync"
)

// Status is the pagination controller's sync state.
type Status string

const (
	StatusIdle           Status = "idle"
	StatusLoadingInitial Status = "loading-initial"
	StatusLoadingMore    Status = "loading-more"
	StatusError          Status = "error"
	StatusSettled        Status = "settled"
)

// Fetcher fetches one gallery page. Implementations live at the transport
// boundary; the controller only sees the page shape.
type Fetcher interface {
	FetchPage(ctx context.Context, req PageRequest) (*PageResponse, error)
}

// ControllerState is a read snapshot of the controller for consumers.
type ControllerState struct {
	Page     int
	PageSize int
	HasMore  bool
	Status   Status
	Err      error
}

const defaultPageSize = 50

// Controller drives fetch-and-merge sync cycles against the canonical store.
// Load calls block the calling goroutine for the duration of the fetch; the
// internal mutex is never held across the network call, and every outstanding
// fetch carries a generation tag so completions for abandoned requests are
// detected and discarded instead of corrupting state.
type Controller struct {
	store   *Store
	fetcher Fetcher

	mu         sync.Mutex
	page       int
	pageSize   int
	hasMore    bool
	status     Status
	err        error
	generation uint64

	query PageRequest // filter/sort/search passthrough, page fields ignored
}

func NewController(store *Store, fetcher Fetcher, pageSize int) *Controller {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Controller{
		store:    store,
		fetcher:  fetcher,
		pageSize: pageSize,
		status:   StatusIdle,
	}
}

// SetQuery updates the filter/sort/search parameters passed through to the
// server on subsequent fetches. It does not trigger a fetch by itself.
func (c *Controller) SetQuery(filter, sortOrder, search string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query.Filter = filter
	c.query.Sort = sortOrder
	c.query.Search = search
}

// State returns the current sync state.
func (c *Controller) State() ControllerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ControllerState{
		Page:     c.page,
		PageSize: c.pageSize,
		HasMore:  c.hasMore,
		Status:   c.status,
		Err:      c.err,
	}
}

// LoadInitial starts a fresh sync: it fetches page 1 and replaces the store
// contents on success. Calling it while an older LoadMore is still settling
// abandons that request; its late completion is discarded by generation tag.
// A failed refresh leaves previously settled data intact.
func (c *Controller) LoadInitial(ctx context.Context) error {
	c.mu.Lock()
	if c.status == StatusLoadingInitial {
		c.mu.Unlock()
		return nil
	}
	c.generation++
	gen := c.generation
	c.status = StatusLoadingInitial
	c.err = nil
	req := c.query
	req.Page = 1
	req.PageSize = c.pageSize
	c.mu.Unlock()

	resp, err := c.fetcher.FetchPage(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		slog.Debug("gallery sync discarding stale initial response", "generation", gen)
		return nil
	}
	if err != nil {
		c.status = StatusError
		c.err = err
		return err
	}
	if resp.Page != req.Page {
		slog.Warn("gallery sync discarding out-of-order page", "want", req.Page, "got", resp.Page)
		c.status = StatusError
		c.err = &ServerError{Message: "out-of-order page response"}
		return c.err
	}

	c.store.Replace(resp.Items)
	c.page = resp.Page
	c.hasMore = resp.HasMore
	c.status = StatusSettled
	return nil
}

// LoadMore fetches the next unfetched page and appends it to the store. It is
// a no-op while another load is outstanding or when the server reported no
// further pages. A page is merged at most once: the cursor only advances with
// a successful merge, so a retry after failure re-requests the same unmerged
// page, never one already applied.
func (c *Controller) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	if c.status == StatusLoadingInitial || c.status == StatusLoadingMore || !c.hasMore {
		c.mu.Unlock()
		return nil
	}
	gen := c.generation
	c.status = StatusLoadingMore
	c.err = nil
	req := c.query
	req.Page = c.page + 1
	req.PageSize = c.pageSize
	c.mu.Unlock()

	resp, err := c.fetcher.FetchPage(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		slog.Debug("gallery sync discarding stale page response", "page", req.Page, "generation", gen)
		return nil
	}
	if err != nil {
		c.status = StatusError
		c.err = err
		return err
	}
	if resp.Page != req.Page {
		slog.Warn("gallery sync discarding out-of-order page", "want", req.Page, "got", resp.Page)
		c.status = StatusError
		c.err = &ServerError{Message: "out-of-order page response"}
		return c.err
	}

	c.store.Append(resp.Items)
	c.page = resp.Page
	c.hasMore = resp.HasMore
	c.status = StatusSettled
	return nil
}
