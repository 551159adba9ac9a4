package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

// UploadField is the multipart field that carries the image.
const UploadField = "product"

const multipartMemory = 32 << 20

// Uploader stores images and resolves their URLs.
type Uploader interface {
	Store(ctx context.Context, field, originalName string, r io.Reader) (*services.StoredImage, error)
	URL(path string) string
}

type UploadController struct {
	uploads Uploader
}

func NewUploadController(uploads Uploader) *UploadController {
	return &UploadController{uploads: uploads}
}

// Upload handles POST /upload.
func (c *UploadController) Upload(cx *ctx.Context) {
	if err := cx.R.ParseMultipartForm(multipartMemory); err != nil {
		cx.Abort(http.StatusBadRequest, "expected a multipart form with a \""+UploadField+"\" file")
		return
	}
	defer cx.R.MultipartForm.RemoveAll() //nolint:errcheck

	file, header, err := cx.R.FormFile(UploadField)
	if errors.Is(err, http.ErrMissingFile) {
		cx.Abort(http.StatusBadRequest, "no file uploaded under \""+UploadField+"\"")
		return
	}
	if err != nil {
		cx.Abort(http.StatusBadRequest, err.Error())
		return
	}
	defer file.Close()

	img, err := c.uploads.Store(cx.Context(), UploadField, header.Filename, file)
	if err != nil {
		cx.InternalError("upload failed", err)
		return
	}

	out := map[string]interface{}{
		"success":   1,
		"image_url": c.absolute(cx, img.Path),
	}
	if img.ThumbnailPath != "" {
		out["thumbnail_url"] = c.absolute(cx, img.ThumbnailPath)
	}
	cx.OK(out)
}

// absolute prefixes host-relative disk URLs with the address the client
// used to reach the API.
func (c *UploadController) absolute(cx *ctx.Context, path string) string {
	u := c.uploads.URL(path)
	if strings.HasPrefix(u, "/") {
		return cx.BaseURL() + u
	}
	return u
}
