// Package icongen implements icon set generation against a hosted
// text-to-image provider.
//
// validator.go implements the ImageValidator molecule that verifies a
// generated image's binary format and pixel dimensions by inspecting
// the PNG signature and IHDR chunk. The Content-Type header is
// advisory only and never authoritative.
package icongen

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"strings"

	"icon_backend/logging"

	"go.uber.org/zap"
)

// pngSignature is the fixed 8-byte PNG file signature.
var pngSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// pngHeaderLen is the minimum byte count covering the signature plus
// the IHDR chunk: 8 signature + 4 length + 4 type + 13 data + 4 CRC.
const pngHeaderLen = 33

// PNG IHDR layout offsets.
const (
	ihdrTypeOffset   = 12
	ihdrWidthOffset  = 16
	ihdrHeightOffset = 20
)

// HasPNGSignature reports whether data begins with the PNG signature.
// Pure function.
func HasPNGSignature(data []byte) bool {
	return len(data) >= len(pngSignature) && bytes.Equal(data[:len(pngSignature)], pngSignature)
}

// PNGDimensions reads the width and height from a PNG's IHDR chunk.
// Pure function; fails with a descriptive error on a short buffer, a
// wrong signature, or a missing IHDR chunk.
func PNGDimensions(data []byte) (width, height int, err error) {
	if len(data) < pngHeaderLen {
		return 0, 0, fmt.Errorf("icongen: buffer too short for PNG header: %d bytes, need %d", len(data), pngHeaderLen)
	}
	if !HasPNGSignature(data) {
		return 0, 0, fmt.Errorf("icongen: buffer does not start with the PNG signature")
	}
	if string(data[ihdrTypeOffset:ihdrTypeOffset+4]) != "IHDR" {
		return 0, 0, fmt.Errorf("icongen: first chunk is not IHDR")
	}

	width = int(binary.BigEndian.Uint32(data[ihdrWidthOffset:]))
	height = int(binary.BigEndian.Uint32(data[ihdrHeightOffset:]))
	return width, height, nil
}

// ImageValidator verifies generated images independently of the
// generation hot path, e.g. from tests or an auditing pass.
type ImageValidator struct {
	downloader *Downloader
	logger     *logging.Logger
}

// NewImageValidator creates a validator over the given downloader.
func NewImageValidator(downloader *Downloader, logger *logging.Logger) (*ImageValidator, error) {
	if downloader == nil {
		return nil, fmt.Errorf("icongen: downloader cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("icongen: logger cannot be nil")
	}

	return &ImageValidator{
		downloader: downloader,
		logger:     logger.Named("validator"),
	}, nil
}

// ValidateFormat downloads the resource and reports whether its first
// 8 bytes match the PNG signature. An inconsistent Content-Type header
// is logged but never overrides the byte check.
func (v *ImageValidator) ValidateFormat(ctx context.Context, url string) (bool, error) {
	data, contentType, err := v.downloader.DownloadBytes(ctx, url)
	if err != nil {
		return false, fmt.Errorf("icongen: format validation fetch failed: %w", err)
	}

	isPNG := HasPNGSignature(data)
	if claimsPNG(contentType) != isPNG {
		v.logger.Warn("content type inconsistent with signature",
			zap.String("content_type", contentType),
			zap.Bool("signature_is_png", isPNG),
			zap.String("url", truncateText(url, 100)))
	}

	return isPNG, nil
}

// ValidateDimensions downloads the resource and reports whether its
// IHDR chunk encodes exactly the expected width and height.
func (v *ImageValidator) ValidateDimensions(ctx context.Context, url string, expectedWidth, expectedHeight int) (bool, error) {
	data, _, err := v.downloader.DownloadBytes(ctx, url)
	if err != nil {
		return false, fmt.Errorf("icongen: dimension validation fetch failed: %w", err)
	}

	width, height, err := PNGDimensions(data)
	if err != nil {
		return false, err
	}

	if width != expectedWidth || height != expectedHeight {
		v.logger.Debug("dimension mismatch",
			zap.Int("width", width),
			zap.Int("height", height),
			zap.Int("expected_width", expectedWidth),
			zap.Int("expected_height", expectedHeight))
		return false, nil
	}

	return true, nil
}

// claimsPNG reports whether a Content-Type header claims image/png.
func claimsPNG(contentType string) bool {
	lower := strings.ToLower(contentType)
	if idx := strings.Index(lower, ";"); idx != -1 {
		lower = lower[:idx]
	}
	return strings.TrimSpace(lower) == "image/png"
}
