package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/nfnt/resize"

	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/storage"
	"github.com/shashiranjanraj/storefront/pkg/workerpool"
)

const (
	imagesDir = "images"
	thumbsDir = "images/thumbs"
)

// Submitter runs background work without blocking the caller.
type Submitter interface {
	Submit(task func()) error
}

// StoredImage describes an accepted upload. ThumbnailPath is empty when no
// thumbnail will be generated.
type StoredImage struct {
	Name          string
	Path          string
	ThumbnailPath string
}

// UploadService stores product images on a storage disk.
type UploadService struct {
	disk       storage.Disk
	jobs       Submitter
	thumbWidth uint
	now        func() time.Time
}

// NewUploadService builds the service. jobs may be nil to disable
// thumbnails.
func NewUploadService(disk storage.Disk, jobs Submitter, thumbWidth int) *UploadService {
	if thumbWidth <= 0 {
		thumbWidth = 300
	}
	return &UploadService{disk: disk, jobs: jobs, thumbWidth: uint(thumbWidth), now: time.Now}
}

// Store writes r under images/<field>_<millis><ext>, keeping the original
// extension. If that name is taken the millisecond stamp is bumped until it
// is free.
func (s *UploadService) Store(ctx context.Context, field, originalName string, r io.Reader) (*StoredImage, error) {
	ext := filepath.Ext(originalName)
	stamp := s.now().UnixMilli()

	name := fmt.Sprintf("%s_%d%s", field, stamp, ext)
	for s.disk.Exists(ctx, path.Join(imagesDir, name)) {
		stamp++
		name = fmt.Sprintf("%s_%d%s", field, stamp, ext)
	}

	p := path.Join(imagesDir, name)
	if err := s.disk.Put(ctx, p, r); err != nil {
		metrics.Uploads.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("upload: store %s: %w", name, err)
	}
	metrics.Uploads.WithLabelValues("ok").Inc()

	img := &StoredImage{Name: name, Path: p}
	if s.jobs != nil && thumbnailable(ext) && s.decodable(ctx, p) {
		thumb := path.Join(thumbsDir, strings.TrimSuffix(name, ext)+".jpg")
		if err := s.jobs.Submit(func() { s.makeThumbnail(p, thumb) }); err != nil {
			metrics.ThumbnailJobs.WithLabelValues("dropped").Inc()
			logger.WithCtx(ctx).Warn("thumbnail skipped", "image", name, "error", err)
		} else {
			img.ThumbnailPath = thumb
		}
	}

	logger.WithCtx(ctx).Info("image uploaded", "image", name)
	return img, nil
}

// decodable reads only the image header. Files that fail it get no
// thumbnail and no thumbnail_url.
func (s *UploadService) decodable(ctx context.Context, p string) bool {
	rc, err := s.disk.Get(ctx, p)
	if err != nil {
		logger.WithCtx(ctx).Warn("thumbnail skipped", "image", p, "error", err)
		return false
	}
	defer rc.Close()

	if _, _, err := image.DecodeConfig(rc); err != nil {
		metrics.ThumbnailJobs.WithLabelValues("undecodable").Inc()
		logger.WithCtx(ctx).Info("thumbnail skipped", "image", p, "error", err)
		return false
	}
	return true
}

// URL is the disk URL for a stored path.
func (s *UploadService) URL(p string) string {
	return s.disk.URL(p)
}

func (s *UploadService) makeThumbnail(src, dst string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := s.thumbnail(ctx, src, dst); err != nil {
		metrics.ThumbnailJobs.WithLabelValues("failed").Inc()
		logger.Warn("thumbnail failed", "image", src, "error", err)
		return
	}
	metrics.ThumbnailJobs.WithLabelValues("success").Inc()
}

func (s *UploadService) thumbnail(ctx context.Context, src, dst string) error {
	rc, err := s.disk.Get(ctx, src)
	if err != nil {
		return err
	}
	defer rc.Close()

	img, _, err := image.Decode(rc)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	resized := resize.Resize(s.thumbWidth, 0, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 80}); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return s.disk.Put(ctx, dst, &buf)
}

func thumbnailable(ext string) bool {
	switch strings.ToLower(ext) {
	case ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}

var _ Submitter = (*workerpool.Pool)(nil)
