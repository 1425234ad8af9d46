package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/bakery_api/internal/service"
	"github.com/GTDGit/bakery_api/internal/utils"
)

var uploadFolders = map[string]bool{"products": true, "custom-requests": true, "banners": true}

// UploadHandler stores admin image uploads in S3.
type UploadHandler struct {
	storage *service.ImageStorage
}

func NewUploadHandler(storage *service.ImageStorage) *UploadHandler {
	return &UploadHandler{storage: storage}
}

// UploadImage handles POST /v1/admin/uploads/images (multipart file, folder)
func (h *UploadHandler) UploadImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, service.MaxImageBytes+1<<20)

	folder := c.DefaultPostForm("folder", "products")
	if !uploadFolders[folder] {
		badRequest(c, "folder must be one of products, custom-requests, banners")
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required")
		return
	}
	file, err := fh.Open()
	if err != nil {
		respondError(c, err, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	url, err := h.storage.Upload(c.Request.Context(), folder, fh.Header.Get("Content-Type"), file, fh.Size)
	if err != nil {
		respondError(c, err, "Failed to upload image")
		return
	}
	utils.Success(c, http.StatusCreated, "Image uploaded", gin.H{"url": url})
}
