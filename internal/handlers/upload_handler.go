package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/01moynul/wholesale-shop/internal/apperr"
)

const maxUploadSize = 5 << 20

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// UploadFile handles POST /api/uploads
// It saves a product image under UploadDir and returns its public URL.
func (h *Handlers) UploadFile(c *gin.Context) {
	// 1. Get the file from the multipart form
	file, err := c.FormFile("file")
	if err != nil {
		_ = c.Error(apperr.Validation("No file uploaded"))
		return
	}
	if file.Size > maxUploadSize {
		_ = c.Error(apperr.Validation("File is too large. The limit is %d MB.", maxUploadSize>>20))
		return
	}

	// 2. Only images are accepted
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !imageExtensions[ext] {
		_ = c.Error(apperr.Validation("Only image files (jpg, jpeg, png, gif, webp) can be uploaded"))
		return
	}

	// 3. Save it under a unique name
	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		_ = c.Error(fmt.Errorf("create upload dir: %w", err))
		return
	}

	// readable prefix from the uploaded name, uuid for uniqueness
	base := slug.Make(strings.TrimSuffix(filepath.Base(file.Filename), filepath.Ext(file.Filename)))
	if base == "" {
		base = "image"
	}
	newFilename := fmt.Sprintf("%s-%s%s", base, uuid.NewString(), ext)

	if err := c.SaveUploadedFile(file, filepath.Join(h.UploadDir, newFilename)); err != nil {
		_ = c.Error(fmt.Errorf("save upload: %w", err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"url": fmt.Sprintf("%s/uploads/%s", h.BaseURL, newFilename),
	})
}
