package blobstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Linker records that a lab report now has an attachment.
type Linker interface {
	LinkAttachment(ctx context.Context, labReportID string, meta BlobMetadata) error
}

// BlobHandler provides Echo HTTP handlers for attachment operations.
type BlobHandler struct {
	store  BlobStore
	linker Linker
}

func NewBlobHandler(store BlobStore, linker Linker) *BlobHandler {
	return &BlobHandler{store: store, linker: linker}
}

// RegisterRoutes mounts attachment routes on the supplied Echo group.
func (h *BlobHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/lab-reports/:id/attachment", h.handleUpload)
	g.GET("/attachments/:id/metadata", h.handleGetMetadata)
	g.GET("/attachments/:id", h.handleDownload)
	g.DELETE("/attachments/:id", h.handleDelete)
}

func (h *BlobHandler) handleUpload(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "file is required"})
	}

	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to open uploaded file"})
	}
	defer src.Close()

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	meta := BlobMetadata{
		FileName:    file.Filename,
		ContentType: contentType,
		LabReportID: c.Param("id"),
		PatientID:   c.FormValue("patient_id"),
	}

	result, err := h.store.Upload(c.Request().Context(), meta, src)
	if err != nil {
		switch {
		case errors.Is(err, ErrFileTooLarge):
			return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{"error": err.Error()})
		case errors.Is(err, ErrMissingFileName):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, ErrInvalidContentType):
			return c.JSON(http.StatusUnsupportedMediaType, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
	}

	if h.linker != nil {
		if err := h.linker.LinkAttachment(c.Request().Context(), meta.LabReportID, *result); err != nil {
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		}
	}
	return c.JSON(http.StatusCreated, result)
}

func (h *BlobHandler) handleDownload(c echo.Context) error {
	rc, meta, err := h.store.Download(c.Request().Context(), c.Param("id"))
	if err != nil {
		return blobError(c, err)
	}
	defer rc.Close()

	c.Response().Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, meta.FileName))
	return c.Stream(http.StatusOK, meta.ContentType, rc)
}

func (h *BlobHandler) handleGetMetadata(c echo.Context) error {
	meta, err := h.store.GetMetadata(c.Request().Context(), c.Param("id"))
	if err != nil {
		return blobError(c, err)
	}
	return c.JSON(http.StatusOK, meta)
}

func (h *BlobHandler) handleDelete(c echo.Context) error {
	if err := h.store.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return blobError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func blobError(c echo.Context, err error) error {
	if errors.Is(err, ErrBlobNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
}
