package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/postpilot/postpilot/internal/gallery"
	"github.com/postpilot/postpilot/internal/model"
	"github.com/postpilot/postpilot/internal/reddit"
	"github.com/postpilot/postpilot/internal/repository"
)

// RepostService is the server side of quick-repost. It re-validates the
// cooldown against the database (client eligibility state can be stale),
// submits the link post to Reddit, records the repost and moves the asset's
// last_reposted_at forward. The error taxonomy is shared with the sync
// engine so handlers map one set of types to status codes.
type RepostService struct {
	assetRepo  repository.AssetRepository
	repostRepo repository.RepostRepository
	assets     *AssetService
	reddit     reddit.Client
	eval       gallery.Evaluator
}

func NewRepostService(
	assetRepo repository.AssetRepository,
	repostRepo repository.RepostRepository,
	assets *AssetService,
	redditClient reddit.Client,
	eval gallery.Evaluator,
) *RepostService {
	return &RepostService{
		assetRepo:  assetRepo,
		repostRepo: repostRepo,
		assets:     assets,
		reddit:     redditClient,
		eval:       eval,
	}
}

// QuickRepost submits the asset to the target subreddit and returns the
// authoritative repost timestamp.
func (s *RepostService) QuickRepost(ctx context.Context, req gallery.RepostRequest) (time.Time, error) {
	asset, err := s.assetRepo.ByID(req.AssetID)
	if err != nil {
		if errors.Is(err, repository.ErrAssetNotFound) {
			return time.Time{}, gallery.ErrNotFound
		}
		return time.Time{}, fmt.Errorf("failed to load asset: %w", err)
	}

	now := time.Now().UTC()
	if verdict := s.eval.Evaluate(asset.LastRepostedAt, now); verdict.Active {
		return time.Time{}, &gallery.CooldownActiveError{HoursRemaining: verdict.HoursRemaining}
	}

	sub := reddit.Submission{
		Subreddit: req.Subreddit,
		Title:     req.Title,
		URL:       s.assets.MediaURL(asset),
		NSFW:      req.NSFW,
		Spoiler:   req.Spoiler,
	}
	if err := s.reddit.Submit(ctx, sub); err != nil {
		return time.Time{}, fmt.Errorf("reddit submission failed: %w", err)
	}

	repost := &model.Repost{
		AssetID:    asset.ID,
		Subreddit:  req.Subreddit,
		Title:      req.Title,
		NSFW:       req.NSFW,
		Spoiler:    req.Spoiler,
		RepostedAt: now,
	}
	if err := s.repostRepo.Create(repost); err != nil {
		// the post is live on Reddit; log and continue so the cooldown
		// timestamp still advances
		slog.Error("failed to record repost", "error", err, "asset_id", asset.ID)
	}

	if err := s.assetRepo.SetLastReposted(asset.ID, now); err != nil {
		return time.Time{}, fmt.Errorf("failed to update repost timestamp: %w", err)
	}

	slog.Info("quick repost submitted", "asset_id", asset.ID, "subreddit", req.Subreddit)
	return now, nil
}

// History returns the audit trail for one asset, newest first.
func (s *RepostService) History(assetID int64) ([]*model.Repost, error) {
	return s.repostRepo.AllForAsset(assetID)
}
