package services

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"

	"github.com/thuan-cell/thuan-cell/internal/models"
)

var (
	ErrLogoTooLarge = errors.New("logo file is too large")
	ErrLogoNotImage = errors.New("logo file is not a supported image")
)

// maxSourcePixels bounds the decoded size of an upload. A small compressed file
// can still declare dimensions that need gigabytes once decoded.
const maxSourcePixels = 40_000_000

var allowedLogoTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

// LogoProcessor turns an uploaded file into a PNG logo small enough to inline
// into the page and the PDF.
type LogoProcessor struct {
	MaxBytes  int64
	MaxPixels int
}

func NewLogoProcessor(maxBytes int64, maxPixels int) *LogoProcessor {
	return &LogoProcessor{MaxBytes: maxBytes, MaxPixels: maxPixels}
}

// Process validates and normalises the upload read from r.
func (p *LogoProcessor) Process(r io.Reader) (*models.Logo, error) {
	data, err := io.ReadAll(io.LimitReader(r, p.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read logo: %w", err)
	}
	if int64(len(data)) > p.MaxBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrLogoTooLarge, p.MaxBytes)
	}

	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), allowedLogoTypes...) {
		return nil, fmt.Errorf("%w: detected %s", ErrLogoNotImage, mtype.String())
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLogoNotImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: empty image", ErrLogoNotImage)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxSourcePixels {
		return nil, fmt.Errorf("%w: %dx%d pixels", ErrLogoTooLarge, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLogoNotImage, err)
	}

	b := img.Bounds()
	if p.MaxPixels > 0 && (b.Dx() > p.MaxPixels || b.Dy() > p.MaxPixels) {
		img = imaging.Fit(img, p.MaxPixels, p.MaxPixels, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode logo: %w", err)
	}
	return &models.Logo{MIME: "image/png", Data: buf.Bytes()}, nil
}
