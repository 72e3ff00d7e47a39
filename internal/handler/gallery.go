package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/postpilot/postpilot/internal/repository"
	"github.com/postpilot/postpilot/internal/service"
	"github.com/postpilot/postpilot/internal/validation"
)

type GalleryHandler struct {
	galleryService *service.GalleryService
	assetService   *service.AssetService
	maxUploadBytes int64
}

func NewGalleryHandler(galleryService *service.GalleryService, assetService *service.AssetService, maxUploadBytes int64) *GalleryHandler {
	return &GalleryHandler{
		galleryService: galleryService,
		assetService:   assetService,
		maxUploadBytes: maxUploadBytes,
	}
}

// List serves GET /gallery?page&pageSize&filter&sort&search.
func (h *GalleryHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("pageSize"))

	resp, err := h.galleryService.Page(service.PageQuery{
		Page:     page,
		PageSize: pageSize,
		Filter:   q.Get("filter"),
		Sort:     q.Get("sort"),
		Search:   q.Get("search"),
	})
	if err != nil {
		slog.Error("failed to load gallery page", "error", err, "page", page)
		respondError(w, http.StatusInternalServerError, "failed to load gallery")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// Stats serves GET /gallery/stats.
func (h *GalleryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.galleryService.Stats()
	if err != nil {
		slog.Error("failed to compute gallery stats", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// Upload serves POST /gallery/upload (multipart: file, watermarked).
func (h *GalleryHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	err := r.ParseMultipartForm(h.maxUploadBytes)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing file")
		return
	}
	defer func() { _ = file.Close() }()

	err = validation.ValidateFile(header, validation.ImageConstraints, validation.VideoConstraints)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	watermarked, _ := strconv.ParseBool(r.FormValue("watermarked"))

	asset, err := h.assetService.Upload(file, header, watermarked)
	if err != nil {
		slog.Error("failed to upload asset", "error", err, "filename", header.Filename)
		respondError(w, http.StatusInternalServerError, "failed to upload asset")
		return
	}

	respondJSON(w, http.StatusCreated, asset.APIView())
}

// Delete serves DELETE /gallery/{id}.
func (h *GalleryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	err = h.assetService.Delete(id)
	if err != nil {
		if errors.Is(err, repository.ErrAssetNotFound) {
			respondError(w, http.StatusNotFound, "asset not found")
			return
		}
		slog.Error("failed to delete asset", "error", err, "asset_id", id)
		respondError(w, http.StatusInternalServerError, "failed to delete asset")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
