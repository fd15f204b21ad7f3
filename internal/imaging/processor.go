// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging normalises event posters before they are uploaded to the API.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/byiringiroaimefils/estg-tss/internal/util"
)

// Supported MIME types.
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeGIF  = "image/gif"
	MimeTypeWebP = "image/webp"
)

// DefaultMaxWidth is used when a Processor is created with a non-positive width.
const DefaultMaxWidth = 1600

const jpegQuality = 90

// ErrNotImage is returned for uploads that are not a supported image.
var ErrNotImage = errors.New("file is not a supported image")

// Result is a normalised image ready for a multipart upload.
type Result struct {
	Name        string
	ContentType string
	Data        []byte
	Width       int
	Height      int
}

// Reader returns a reader over the encoded image.
func (r *Result) Reader() io.Reader {
	return bytes.NewReader(r.Data)
}

// Processor normalises uploaded images using pure Go libraries.
type Processor struct {
	maxWidth int
}

// NewProcessor creates a processor that downscales anything wider than maxWidth.
func NewProcessor(maxWidth int) *Processor {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	return &Processor{maxWidth: maxWidth}
}

// MaxWidth returns the configured width limit.
func (p *Processor) MaxWidth() int {
	return p.maxWidth
}

// IsImage reports whether mimeType is one of the accepted image types.
func (p *Processor) IsImage(mimeType string) bool {
	switch mimeType {
	case MimeTypeJPEG, MimeTypePNG, MimeTypeGIF, MimeTypeWebP:
		return true
	}
	return false
}

// Normalize decodes the upload, applies its EXIF orientation, downscales it
// to the width limit and re-encodes it. WebP input is re-encoded as JPEG.
func (p *Processor) Normalize(r io.Reader, filename string) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}

	format := detectFormat(data)
	if format == "" {
		return nil, ErrNotImage
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotImage, err)
	}

	if format == "jpeg" {
		img = applyOrientation(img, readExifOrientation(bytes.NewReader(data)))
	}

	if img.Bounds().Dx() > p.maxWidth {
		img = imaging.Resize(img, p.maxWidth, 0, imaging.Lanczos)
	}

	outFormat := format
	if outFormat == "webp" {
		outFormat = "jpeg"
	}

	encoded, err := encodeImage(img, outFormat)
	if err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}

	bounds := img.Bounds()
	return &Result{
		Name:        outputName(filename, outFormat),
		ContentType: formatToMimeType(outFormat),
		Data:        encoded,
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
	}, nil
}

// outputName keeps the uploaded base name with an extension matching format.
func outputName(filename, format string) string {
	base, err := util.SanitizeFilename(filename)
	if err == nil {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if err != nil || base == "" {
		base = uuid.NewString()
	}
	return base + formatExtension(format)
}

// readExifOrientation reads the EXIF orientation tag from image data.
// Returns 1 (normal) if orientation cannot be determined.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}

	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}

	return orientation
}

// applyOrientation applies EXIF orientation transformation to an image.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

func encodeImage(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	var err error

	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	default:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// detectFormat detects the image format from raw bytes.
func detectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	// TIFF is rejected outright (CVE-2023-36308 in disintegration/imaging)
	if strings.Contains(contentType, "tiff") {
		return ""
	}
	switch {
	case strings.Contains(contentType, "jpeg"):
		return "jpeg"
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "gif"):
		return "gif"
	case strings.Contains(contentType, "webp"):
		return "webp"
	default:
		return ""
	}
}

func formatExtension(format string) string {
	switch format {
	case "png":
		return ".png"
	case "gif":
		return ".gif"
	default:
		return ".jpg"
	}
}

func formatToMimeType(format string) string {
	switch format {
	case "jpeg":
		return MimeTypeJPEG
	case "png":
		return MimeTypePNG
	case "gif":
		return MimeTypeGIF
	case "webp":
		return MimeTypeWebP
	default:
		return "application/octet-stream"
	}
}
