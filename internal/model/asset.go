package model

import (
	"time"

	"github.com/postpilot/postpilot/internal/gallery"
)

// Asset is one media item in the creator's library.
type Asset struct {
	ID             int64      `db:"id"`
	Filename       string     `db:"filename"`
	OriginalName   string     `db:"original_name"`
	MimeType       string     `db:"mime_type"`
	Size           int64      `db:"size"`
	StoragePath    string     `db:"storage_path"`
	Watermarked    bool       `db:"watermarked"`
	CreatedAt      time.Time  `db:"created_at"`
	LastRepostedAt *time.Time `db:"last_reposted_at"`
}

// APIView converts the database record to the wire shape the gallery sync
// engine consumes. Filename on the wire is the creator-facing original name.
func (a *Asset) APIView() gallery.Asset {
	var last *time.Time
	if a.LastRepostedAt != nil {
		t := a.LastRepostedAt.UTC()
		last = &t
	}
	return gallery.Asset{
		ID:             a.ID,
		Filename:       a.OriginalName,
		MimeType:       a.MimeType,
		Bytes:          a.Size,
		Watermarked:    a.Watermarked,
		CreatedAt:      a.CreatedAt.UTC(),
		LastRepostedAt: last,
	}
}
