package service

import (
	"fmt"
	"time"

	"github.com/postpilot/postpilot/internal/gallery"
	"github.com/postpilot/postpilot/internal/repository"
)

// GalleryService assembles gallery pages for the API. Server-side filter,
// sort and search are best-effort conveniences; clients re-derive their views
// locally, so the page math only has to be consistent, not clever.
type GalleryService struct {
	assetRepo repository.AssetRepository
	eval      gallery.Evaluator
	pageSize  int
}

func NewGalleryService(assetRepo repository.AssetRepository, eval gallery.Evaluator, pageSize int) *GalleryService {
	return &GalleryService{
		assetRepo: assetRepo,
		eval:      eval,
		pageSize:  pageSize,
	}
}

// PageQuery are the list parameters from the request.
type PageQuery struct {
	Page     int
	PageSize int
	Filter   string
	Sort     string
	Search   string
}

// Page returns one page of the asset library in the wire shape.
func (s *GalleryService) Page(q PageQuery) (*gallery.PageResponse, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 200 {
		q.PageSize = s.pageSize
	}

	params := repository.PageParams{
		Page:           q.Page,
		PageSize:       q.PageSize,
		Filter:         q.Filter,
		Sort:           q.Sort,
		Search:         q.Search,
		CooldownWindow: s.eval.Window(),
		Now:            time.Now().UTC(),
	}

	total, err := s.assetRepo.Count(params)
	if err != nil {
		return nil, fmt.Errorf("failed to count assets: %w", err)
	}

	assets, err := s.assetRepo.Page(params)
	if err != nil {
		return nil, fmt.Errorf("failed to page assets: %w", err)
	}

	items := make([]gallery.Asset, 0, len(assets))
	for _, a := range assets {
		items = append(items, a.APIView())
	}

	totalPages := (total + q.PageSize - 1) / q.PageSize

	return &gallery.PageResponse{
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalItems: total,
		TotalPages: totalPages,
		HasMore:    q.Page < totalPages,
		Items:      items,
	}, nil
}

// Stats returns derived counts over the whole library.
func (s *GalleryService) Stats() (gallery.Stats, error) {
	now := time.Now().UTC()
	base := repository.PageParams{CooldownWindow: s.eval.Window(), Now: now}

	var st gallery.Stats
	counts := []struct {
		filter string
		dst    *int
	}{
		{"", &st.Total},
		{"watermarked", &st.Watermarked},
		{"unprotected", &st.Unprotected},
		{"cooldownReady", &st.CooldownReady},
		{"cooldownLocked", &st.CooldownLocked},
	}
	for _, c := range counts {
		p := base
		p.Filter = c.filter
		n, err := s.assetRepo.Count(p)
		if err != nil {
			return gallery.Stats{}, fmt.Errorf("failed to count %q assets: %w", c.filter, err)
		}
		*c.dst = n
	}

	return st, nil
}
