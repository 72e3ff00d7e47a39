package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/postpilot/postpilot/internal/gallery"
	"github.com/postpilot/postpilot/internal/service"
)

type RepostHandler struct {
	repostService *service.RepostService
}

func NewRepostHandler(repostService *service.RepostService) *RepostHandler {
	return &RepostHandler{
		repostService: repostService,
	}
}

type quickRepostResponse struct {
	RepostedAt time.Time `json:"repostedAt"`
}

// QuickRepost serves POST /reddit/quick-repost.
func (h *RepostHandler) QuickRepost(w http.ResponseWriter, r *http.Request) {
	var req gallery.RepostRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AssetID == 0 || req.Subreddit == "" || req.Title == "" {
		respondError(w, http.StatusBadRequest, "assetId, subreddit and title are required")
		return
	}

	repostedAt, err := h.repostService.QuickRepost(r.Context(), req)
	if err != nil {
		var cdErr *gallery.CooldownActiveError
		switch {
		case errors.Is(err, gallery.ErrNotFound):
			respondError(w, http.StatusNotFound, "asset not found")
		case errors.As(err, &cdErr):
			hours := cdErr.HoursRemaining
			respondJSON(w, http.StatusTooManyRequests, errorBody{
				Error:          cdErr.Error(),
				HoursRemaining: &hours,
			})
		default:
			slog.Error("quick repost failed", "error", err, "asset_id", req.AssetID)
			respondError(w, http.StatusBadGateway, "repost submission failed")
		}
		return
	}

	respondJSON(w, http.StatusOK, quickRepostResponse{RepostedAt: repostedAt})
}
