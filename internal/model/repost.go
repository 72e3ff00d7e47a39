package model

import "time"

// Repost is one submitted quick-repost, kept as an audit trail.
type Repost struct {
	ID         int64     `db:"id"`
	AssetID    int64     `db:"asset_id"`
	Subreddit  string    `db:"subreddit"`
	Title      string    `db:"title"`
	NSFW       bool      `db:"nsfw"`
	Spoiler    bool      `db:"spoiler"`
	RepostedAt time.Time `db:"reposted_at"`
}
