package services

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/tarpaulin-service/internal/models"
	"github.com/SAP-F-2025/tarpaulin-service/internal/repositories"
)

// ImageContentType is the content type generic images are served with
const ImageContentType = "image/x-png"

type imageService struct {
	blobs  repositories.BlobRepository
	logger *slog.Logger
}

func NewImageService(blobs repositories.BlobRepository, logger *slog.Logger) ImageService {
	return &imageService{blobs: blobs, logger: logger}
}

func (s *imageService) Put(ctx context.Context, name string, contentType string, body io.Reader) error {
	if strings.TrimSpace(name) == "" || body == nil {
		return ErrInvalidBody
	}
	if contentType == "" {
		contentType = ImageContentType
	}

	if err := s.blobs.Put(ctx, name, contentType, body); err != nil {
		return storeError("store image", err)
	}
	s.logger.Info("Image stored", "name", name)
	return nil
}

func (s *imageService) Get(ctx context.Context, name string) (*models.Blob, error) {
	blob, err := s.blobs.Get(ctx, name)
	if err != nil {
		return nil, storeError("get image", err)
	}
	blob.ContentType = ImageContentType
	return blob, nil
}

func (s *imageService) Delete(ctx context.Context, name string) error {
	if err := s.blobs.Delete(ctx, name); err != nil {
		return storeError("delete image", err)
	}
	s.logger.Info("Image deleted", "name", name)
	return nil
}
