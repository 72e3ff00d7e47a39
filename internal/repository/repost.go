package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/postpilot/postpilot/internal/model"
)

var (
	ErrRepostNotFound = errors.New("repost not found")
)

type RepostRepository interface {
	Create(repost *model.Repost) error
	LastForAsset(assetID int64) (*model.Repost, error)
	AllForAsset(assetID int64) ([]*model.Repost, error)
}

type repostRepository struct {
	db *sqlx.DB
}

func NewRepostRepository(db *sqlx.DB) *repostRepository {
	return &repostRepository{db: db}
}

func (r *repostRepository) Create(repost *model.Repost) error {
	query := `INSERT INTO reposts (asset_id, subreddit, title, nsfw, spoiler, reposted_at)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`

	return r.db.QueryRow(query,
		repost.AssetID,
		repost.Subreddit,
		repost.Title,
		repost.NSFW,
		repost.Spoiler,
		repost.RepostedAt,
	).Scan(&repost.ID)
}

func (r *repostRepository) LastForAsset(assetID int64) (*model.Repost, error) {
	repost := &model.Repost{}
	query := `SELECT * FROM reposts WHERE asset_id = $1 ORDER BY reposted_at DESC LIMIT 1`

	err := r.db.Get(repost, query, assetID)
	if err == sql.ErrNoRows {
		return nil, ErrRepostNotFound
	}

	return repost, err
}

func (r *repostRepository) AllForAsset(assetID int64) ([]*model.Repost, error) {
	var reposts []*model.Repost
	query := `SELECT * FROM reposts WHERE asset_id = $1 ORDER BY reposted_at DESC`

	err := r.db.Select(&reposts, query, assetID)
	if err != nil {
		return nil, err
	}

	return reposts, nil
}
