// Package imaging re-encodes uploaded images so they fit a fixed size
// budget before they reach the blob store. Output is always JPEG for
// predictable compression behavior.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"

	// Registered decoders for the upload formats the storefront accepts
	_ "image/gif"
	_ "image/png"

	"github.com/nfnt/resize"
)

var ErrDecodeFailed = errors.New("failed to load image")

const (
	// MaxEncodedBytes is the size budget for stored images
	MaxEncodedBytes = 4 << 20 // 4 MiB

	// MaxDimension caps either side of the decoded image before the
	// quality ladder starts
	MaxDimension = 2048

	startQuality = 90
	qualityStep  = 10
	floorQuality = 30
	resetQuality = 60

	// shrinkFactor shrinks dimensions by 20% once the quality floor is
	// reached and the image is still over budget
	shrinkFactor = 0.8

	maxIterations = 12
)

// Compressor reduces an image to fit the configured byte budget. The
// zero value is not usable; use NewCompressor. Each call operates on its
// own decoded image, so a single Compressor is safe for concurrent use.
type Compressor struct {
	maxBytes     int
	maxDimension uint
}

// NewCompressor creates a compressor with the default budget and
// dimension cap
func NewCompressor() *Compressor {
	return &Compressor{
		maxBytes:     MaxEncodedBytes,
		maxDimension: MaxDimension,
	}
}

// Compress decodes data, downscales it proportionally if either
// dimension exceeds the cap, then re-encodes at decreasing JPEG quality
// until the result fits the budget. When the quality floor is reached
// and the encoding is still oversized, the dimensions shrink by 20% and
// quality resets to a mid level; the loop is bounded. A decode failure
// returns ErrDecodeFailed rather than passing the original through.
func (c *Compressor) Compress(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	bounds := img.Bounds()
	if uint(bounds.Dx()) > c.maxDimension || uint(bounds.Dy()) > c.maxDimension {
		// Thumbnail preserves aspect ratio and never upscales
		img = resize.Thumbnail(c.maxDimension, c.maxDimension, img, resize.Lanczos3)
	}

	quality := startQuality
	for i := 0; i < maxIterations; i++ {
		encoded, err := encodeJPEG(img, quality)
		if err != nil {
			return nil, fmt.Errorf("failed to encode image: %w", err)
		}
		if len(encoded) <= c.maxBytes {
			return encoded, nil
		}

		if quality-qualityStep >= floorQuality {
			quality -= qualityStep
			continue
		}

		// Quality floor reached: shrink and restart from a mid quality
		b := img.Bounds()
		w := uint(float64(b.Dx()) * shrinkFactor)
		h := uint(float64(b.Dy()) * shrinkFactor)
		if w == 0 || h == 0 {
			return encoded, nil
		}
		img = resize.Resize(w, h, img, resize.Lanczos3)
		quality = resetQuality
	}

	// Iteration bound hit; return the final attempt
	encoded, err := encodeJPEG(img, quality)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return encoded, nil
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
