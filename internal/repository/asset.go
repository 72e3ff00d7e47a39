package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/postpilot/postpilot/internal/model"
)

var (
	ErrAssetNotFound = errors.New("asset not found")
)

// PageParams select one page of the asset library. Filter, Sort and Search
// map to SQL where possible; the cooldown presets need the window to build
// their predicate. Anything unrecognized falls back to the default listing;
// clients re-derive views locally, so server-side filtering is advisory.
type PageParams struct {
	Page           int
	PageSize       int
	Filter         string
	Sort           string
	Search         string
	CooldownWindow time.Duration
	Now            time.Time
}

type AssetRepository interface {
	Create(asset *model.Asset) error
	ByID(id int64) (*model.Asset, error)
	Page(p PageParams) ([]*model.Asset, error)
	Count(p PageParams) (int, error)
	SetLastReposted(id int64, at time.Time) error
	Delete(id int64) error
}

type assetRepository struct {
	db *sqlx.DB
}

func NewAssetRepository(db *sqlx.DB) *assetRepository {
	return &assetRepository{db: db}
}

func (r *assetRepository) Create(asset *model.Asset) error {
	query := `INSERT INTO assets (filename, original_name, mime_type, size, storage_path, watermarked, created_at, last_reposted_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`

	return r.db.QueryRow(query,
		asset.Filename,
		asset.OriginalName,
		asset.MimeType,
		asset.Size,
		asset.StoragePath,
		asset.Watermarked,
		asset.CreatedAt,
		asset.LastRepostedAt,
	).Scan(&asset.ID)
}

func (r *assetRepository) ByID(id int64) (*model.Asset, error) {
	asset := &model.Asset{}
	query := `SELECT * FROM assets WHERE id = $1`

	err := r.db.Get(asset, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrAssetNotFound
	}

	return asset, err
}

func (r *assetRepository) Page(p PageParams) ([]*model.Asset, error) {
	where, args := filterClause(p)
	query := fmt.Sprintf(`SELECT * FROM assets %s ORDER BY %s LIMIT ? OFFSET ?`, where, orderClause(p.Sort))
	args = append(args, p.PageSize, (p.Page-1)*p.PageSize)

	var assets []*model.Asset
	err := r.db.Select(&assets, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}

	return assets, nil
}

func (r *assetRepository) Count(p PageParams) (int, error) {
	where, args := filterClause(p)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM assets %s`, where)

	var count int
	err := r.db.Get(&count, r.db.Rebind(query), args...)
	return count, err
}

// SetLastReposted moves the repost timestamp forward. Idempotent: re-running
// with the same timestamp leaves the row unchanged, and an older timestamp
// never overwrites a newer one.
func (r *assetRepository) SetLastReposted(id int64, at time.Time) error {
	query := `UPDATE assets SET last_reposted_at = $1
	          WHERE id = $2 AND (last_reposted_at IS NULL OR last_reposted_at < $1)`
	_, err := r.db.Exec(query, at, id)
	return err
}

func (r *assetRepository) Delete(id int64) error {
	query := `DELETE FROM assets WHERE id = $1`
	_, err := r.db.Exec(query, id)
	return err
}

func filterClause(p PageParams) (string, []interface{}) {
	var conds []string
	var args []interface{}

	switch p.Filter {
	case "watermarked":
		conds = append(conds, "watermarked = TRUE")
	case "unprotected":
		conds = append(conds, "watermarked = FALSE")
	case "cooldownReady":
		conds = append(conds, "(last_reposted_at IS NULL OR last_reposted_at <= ?)")
		args = append(args, p.Now.Add(-p.CooldownWindow))
	case "cooldownLocked":
		conds = append(conds, "last_reposted_at > ?")
		args = append(args, p.Now.Add(-p.CooldownWindow))
	}

	if search := strings.TrimSpace(p.Search); search != "" {
		conds = append(conds, "LOWER(original_name) LIKE ?")
		args = append(args, "%"+strings.ToLower(search)+"%")
	}

	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func orderClause(sortOrder string) string {
	switch sortOrder {
	case "oldest":
		return "created_at ASC, id ASC"
	case "sizeDesc":
		return "size DESC, id ASC"
	case "sizeAsc":
		return "size ASC, id ASC"
	case "recentlyReposted":
		return "last_reposted_at IS NULL, last_reposted_at DESC, id ASC"
	default: // newest
		return "created_at DESC, id ASC"
	}
}
