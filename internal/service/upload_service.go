package service

import (
	"context"
	"errors"
	"fmt"

	"warung-menu/internal/imaging"
	"warung-menu/internal/storage"

	"go.uber.org/zap"
)

var (
	ErrUnknownUploadFolder = errors.New("unknown upload folder")
	ErrNotABlobURL         = errors.New("URL does not reference a stored blob")
)

// UploadService compresses incoming images and pushes them to the blob
// store. Compression always finishes before the upload starts.
type UploadService interface {
	UploadImage(ctx context.Context, data []byte, folder, filename string) (string, error)
	DeleteImage(ctx context.Context, url string) error
}

type uploadService struct {
	compressor *imaging.Compressor
	blobs      storage.BlobStore
	logger     *zap.Logger
}

// NewUploadService creates a new instance of UploadService
func NewUploadService(compressor *imaging.Compressor, blobs storage.BlobStore, logger *zap.Logger) UploadService {
	return &uploadService{
		compressor: compressor,
		blobs:      blobs,
		logger:     logger,
	}
}

// UploadImage compresses the image to the size budget and stores it in
// the requested folder, returning the public URL. A decode failure
// aborts before anything touches the blob store.
func (s *uploadService) UploadImage(ctx context.Context, data []byte, folder, filename string) (string, error) {
	if folder != storage.FolderProducts && folder != storage.FolderSite {
		return "", fmt.Errorf("%w: %s", ErrUnknownUploadFolder, folder)
	}

	compressed, err := s.compressor.Compress(data)
	if err != nil {
		return "", err
	}

	url, err := s.blobs.Upload(ctx, compressed, folder, filename)
	if err != nil {
		return "", err
	}

	s.logger.Info("Image uploaded",
		zap.String("folder", folder),
		zap.Int("original_bytes", len(data)),
		zap.Int("stored_bytes", len(compressed)),
	)

	return url, nil
}

// DeleteImage removes a stored image by its public URL
func (s *uploadService) DeleteImage(ctx context.Context, url string) error {
	publicID := storage.ExtractPublicID(url)
	if publicID == "" {
		return fmt.Errorf("%w: %s", ErrNotABlobURL, url)
	}
	return s.blobs.Delete(ctx, publicID)
}
