package gallery

import (
	"time"
)

// Asset is one media item in the canonical collection. Everything except
// LastRepostedAt is immutable once the asset enters the collection; only the
// repost orchestrator moves LastRepostedAt forward via Store.Patch.
type Asset struct {
	ID             int64      `json:"id"`
	Filename       string     `json:"filename"`
	MimeType       string     `json:"mimeType"`
	Bytes          int64      `json:"bytes"`
	Watermarked    bool       `json:"isWatermarked"`
	CreatedAt      time.Time  `json:"createdAt"`
	LastRepostedAt *time.Time `json:"lastRepostedAt,omitempty"`
}

// PageRequest is one page fetch against the gallery API. Filter, Sort and
// Search are passed through verbatim; server-side filtering is advisory and
// the view engine re-derives the projection client-side regardless.
type PageRequest struct {
	Page     int
	PageSize int
	Filter   string
	Sort     string
	Search   string
}

// PageResponse mirrors the gallery API page shape. HasMore is the sole
// authority for whether further pages exist.
type PageResponse struct {
	Page       int     `json:"page"`
	PageSize   int     `json:"pageSize"`
	TotalItems int     `json:"totalItems"`
	TotalPages int     `json:"totalPages"`
	HasMore    bool    `json:"hasMore"`
	Items      []Asset `json:"items"`
}

// Patch carries the fields a Store.Patch call may update. Nil fields are
// left untouched.
type Patch struct {
	LastRepostedAt *time.Time
}
