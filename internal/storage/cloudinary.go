// Package storage wraps the blob store holding product and site images.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Namespace is the top-level folder all storefront images live under
const Namespace = "product-images"

const (
	FolderProducts = "products"
	FolderSite     = "site"
)

// BlobStore is the interface the upload service talks to
type BlobStore interface {
	Upload(ctx context.Context, data []byte, folder, filename string) (string, error)
	Delete(ctx context.Context, publicID string) error
}

// CloudinaryStore stores images in Cloudinary under the product-images
// namespace
type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryStore initializes the store from a cloudinary:// URL
func NewCloudinaryStore(cloudinaryURL string) (*CloudinaryStore, error) {
	if cloudinaryURL == "" {
		return nil, fmt.Errorf("cloudinary URL is required")
	}

	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &CloudinaryStore{cld: cld}, nil
}

// Upload pushes data into the namespace's folder and returns the public
// HTTPS URL
func (s *CloudinaryStore) Upload(ctx context.Context, data []byte, folder, filename string) (string, error) {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	publicID := fmt.Sprintf("%s/%s/%s_%d", Namespace, folder, base, time.Now().UnixNano())

	truthy := true
	falsy := false
	result, err := s.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		PublicID:       publicID,
		UseFilename:    &truthy,
		UniqueFilename: &truthy,
		Overwrite:      &falsy,
		ResourceType:   "image",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	url := result.SecureURL
	if url == "" {
		url = forceHTTPS(result.URL)
	}
	return url, nil
}

// Delete removes a blob by its public ID
func (s *CloudinaryStore) Delete(ctx context.Context, publicID string) error {
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

// ExtractPublicID recovers the public ID from a Cloudinary delivery URL
// so blobs can be deleted by the URL stored on catalog rows. Returns ""
// when the URL does not look like a Cloudinary upload URL.
func ExtractPublicID(url string) string {
	parts := strings.Split(url, "/")
	for i, part := range parts {
		if part != "upload" || i+1 >= len(parts) {
			continue
		}
		path := strings.Join(parts[i+1:], "/")

		// Strip the version prefix (v1234567890/) if present
		if idx := strings.Index(path, "/"); idx > 1 && isVersionPrefix(path[:idx]) {
			path = path[idx+1:]
		}
		return strings.TrimSuffix(path, filepath.Ext(path))
	}
	return ""
}

func isVersionPrefix(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func forceHTTPS(in string) string {
	return strings.Replace(strings.TrimSpace(in), "http://", "https://", 1)
}
