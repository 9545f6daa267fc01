// Package media stores uploaded product images as web-optimized WebP files
// and hands back their public URLs.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultMaxDimension = 1600
	DefaultQuality      = 80
	productsDir         = "products"
)

var ErrNotImage = errors.New("uploaded file is not a supported image")

// Uploader writes images under dir and builds URLs from baseURL.
type Uploader struct {
	dir          string
	baseURL      string
	maxDimension int
	quality      float32
	logger       *zap.Logger
}

func NewUploader(dir, baseURL string, logger *zap.Logger) *Uploader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if baseURL != "" && !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Uploader{
		dir:          dir,
		baseURL:      baseURL,
		maxDimension: DefaultMaxDimension,
		quality:      DefaultQuality,
		logger:       logger,
	}
}

// Upload decodes r, fits it within the maximum dimension, encodes WebP and
// returns the public URL of the stored file.
func (u *Uploader) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	b := img.Bounds()
	if b.Dx() > u.maxDimension || b.Dy() > u.maxDimension {
		img = imaging.Fit(img, u.maxDimension, u.maxDimension, imaging.Lanczos)
	}

	dir := filepath.Join(u.dir, productsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	name := uuid.NewString() + ".webp"
	dst := filepath.Join(dir, name)
	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	if err := webp.Encode(f, img, &webp.Options{Quality: u.quality}); err != nil {
		f.Close()
		os.Remove(dst)
		return "", fmt.Errorf("encode webp: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	url := u.baseURL + path.Join(productsDir, name)
	u.logger.Info("image uploaded",
		zap.String("original", filename),
		zap.String("url", url),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()))
	return url, nil
}
