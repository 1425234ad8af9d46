package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/bakery_api/internal/importer"
	"github.com/GTDGit/bakery_api/internal/middleware"
	"github.com/GTDGit/bakery_api/internal/service"
	"github.com/GTDGit/bakery_api/internal/utils"
)

// ImportHandler handles the bulk product import endpoints.
type ImportHandler struct {
	importService *service.ImportService
	maxFileBytes  int64
}

// NewImportHandler constructs an ImportHandler.
func NewImportHandler(importService *service.ImportService, maxFileBytes int64) *ImportHandler {
	if maxFileBytes <= 0 {
		maxFileBytes = 5 << 20
	}
	return &ImportHandler{importService: importService, maxFileBytes: maxFileBytes}
}

// ImportProducts handles POST /v1/admin/products/import
// Multipart form: file (required), format (csv|json|xlsx, optional), dryRun (optional).
func (h *ImportHandler) ImportProducts(c *gin.Context) {
	// Form overhead on top of the file itself.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxFileBytes+1<<20)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.Error(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", fmt.Sprintf("File must be at most %d MB", h.maxFileBytes>>20))
			return
		}
		badRequest(c, "file is required")
		return
	}
	if fh.Size > h.maxFileBytes {
		utils.Error(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", fmt.Sprintf("File must be at most %d MB", h.maxFileBytes>>20))
		return
	}

	in := service.ImportInput{
		FileName:  fh.Filename,
		DryRun:    formBool(c.PostForm("dryRun")),
		CreatedBy: strconv.Itoa(middleware.GetAdminID(c)),
	}
	if v := c.PostForm("format"); v != "" {
		f, err := importer.ParseFormat(v)
		if err != nil {
			respondError(c, err, "Import failed")
			return
		}
		in.Format = f
	}

	file, err := fh.Open()
	if err != nil {
		respondError(c, err, "Failed to read uploaded file")
		return
	}
	defer file.Close()
	in.Body = file

	res, err := h.importService.Import(c.Request.Context(), in)
	if err != nil {
		respondError(c, err, "Import failed")
		return
	}

	switch {
	case res.DryRun:
		utils.Success(c, http.StatusOK, fmt.Sprintf("Dry run: %d of %d rows valid", res.Accepted, res.Total), res)
	case res.Imported == 0:
		utils.ErrorWithData(c, http.StatusUnprocessableEntity, "NO_VALID_ROWS", "No valid rows to import", res)
	default:
		utils.Success(c, http.StatusCreated, fmt.Sprintf("Imported %d of %d products", res.Imported, res.Total), res)
	}
}

// DownloadTemplate handles GET /v1/admin/products/import/template?format=csv
func (h *ImportHandler) DownloadTemplate(c *gin.Context) {
	format, err := importer.ParseFormat(c.DefaultQuery("format", "csv"))
	if err != nil {
		respondError(c, err, "Failed to build template")
		return
	}
	c.Header("Content-Type", format.ContentType())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="products-template.%s"`, format))
	c.Status(http.StatusOK)
	if err := h.importService.Template(format, c.Writer); err != nil {
		_ = c.Error(err)
	}
}

func formBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}
