package service

import (
	"fmt"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/postpilot/postpilot/internal/model"
	"github.com/postpilot/postpilot/internal/repository"
	"github.com/postpilot/postpilot/internal/storage"
)

type AssetService struct {
	assetRepo repository.AssetRepository
	storage   storage.Storage
}

func NewAssetService(assetRepo repository.AssetRepository, storage storage.Storage) *AssetService {
	return &AssetService{
		assetRepo: assetRepo,
		storage:   storage,
	}
}

// Upload stores the media object and creates a database record.
// Note: type/size validation should be done by the caller before calling Upload.
func (s *AssetService) Upload(file multipart.File, header *multipart.FileHeader, watermarked bool) (*model.Asset, error) {
	// Generate unique filename
	ext := filepath.Ext(header.Filename)
	filename := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	storagePath := filepath.Join("media", filename)

	err := s.storage.Save(storagePath, file)
	if err != nil {
		return nil, fmt.Errorf("failed to save media: %w", err)
	}

	asset := &model.Asset{
		Filename:     filename,
		OriginalName: header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		Size:         header.Size,
		StoragePath:  storagePath,
		Watermarked:  watermarked,
		CreatedAt:    time.Now().UTC(),
	}

	err = s.assetRepo.Create(asset)
	if err != nil {
		// If the insert fails, try to clean up the uploaded object
		delErr := s.storage.Delete(storagePath)
		if delErr != nil {
			slog.Error("failed to delete media during cleanup", "error", delErr, "path", storagePath)
		}
		return nil, fmt.Errorf("failed to create asset record: %w", err)
	}

	return asset, nil
}

// ByID retrieves one asset.
func (s *AssetService) ByID(id int64) (*model.Asset, error) {
	return s.assetRepo.ByID(id)
}

// MediaURL returns a time-limited URL for serving the asset's media object.
func (s *AssetService) MediaURL(asset *model.Asset) string {
	if asset == nil {
		return ""
	}
	return s.storage.MediaURL(asset.StoragePath)
}

// Delete removes an asset from storage and the database.
func (s *AssetService) Delete(id int64) error {
	asset, err := s.assetRepo.ByID(id)
	if err != nil {
		return fmt.Errorf("failed to get asset: %w", err)
	}

	// Delete from storage (best effort)
	delErr := s.storage.Delete(asset.StoragePath)
	if delErr != nil {
		slog.Error("failed to delete media from storage", "error", delErr, "path", asset.StoragePath)
	}

	err = s.assetRepo.Delete(id)
	if err != nil {
		return fmt.Errorf("failed to delete asset record: %w", err)
	}

	return nil
}
