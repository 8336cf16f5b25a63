package file

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/azatkul/docvault/internal/auth"
)

// RegisterRoutes mounts file operations under the provided router group.
func RegisterRoutes(group *gin.RouterGroup, service *Service) {
	handler := &httpHandler{service: service}
	group.POST("/files", handler.uploadFile)
	group.GET("/files", handler.listFiles)
	group.GET("/files/search", handler.searchFiles)
	group.GET("/files/:fileID/download", handler.downloadFile)
	group.DELETE("/files/:fileID", handler.deleteFile)
	group.POST("/files/:fileID/share", handler.shareFile)
	group.PUT("/files/:fileID/rename", handler.renameFile)
}

type httpHandler struct {
	service *Service
}

type shareRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type renameRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *httpHandler) uploadFile(c *gin.Context) {
	principal, ok := auth.RequirePrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field is required"})
		return
	}

	opened, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
		return
	}
	defer opened.Close()

	data, err := io.ReadAll(opened)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	rec, err := h.service.Upload(c.Request.Context(), principal, fileHeader.Filename, contentType, data)
	if err != nil {
		var quotaErr *QuotaError
		if errors.As(err, &quotaErr) {
			c.JSON(http.StatusInsufficientStorage, gin.H{
				"error":           "storage quota exceeded",
				"available_bytes": quotaErr.AvailableBytes,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upload file"})
		return
	}

	c.JSON(http.StatusCreated, rec)
}

func (h *httpHandler) listFiles(c *gin.Context) {
	principal, ok := auth.RequirePrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	list, err := h.service.List(c.Request.Context(), principal)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list files"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"files": list})
}

func (h *httpHandler) searchFiles(c *gin.Context) {
	principal, ok := auth.RequirePrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q parameter is required"})
		return
	}

	results, err := h.service.Search(c.Request.Context(), query, principal)
	if err != nil {
		if errors.Is(err, ErrSearchUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "search is unavailable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search files"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"files": results})
}

func (h *httpHandler) downloadFile(c *gin.Context) {
	if _, ok := auth.RequirePrincipal(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	fileID, err := uuid.Parse(c.Param("fileID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file id"})
		return
	}

	rec, data, err := h.service.Download(c.Request.Context(), fileID)
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to download file"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rec.DisplayName))
	c.Data(http.StatusOK, rec.ContentType, data)
}

func (h *httpHandler) deleteFile(c *gin.Context) {
	if _, ok := auth.RequirePrincipal(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	fileID, err := uuid.Parse(c.Param("fileID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file id"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), fileID); err != nil {
		if errors.Is(err, ErrFileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete file"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *httpHandler) shareFile(c *gin.Context) {
	principal, ok := auth.RequirePrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	fileID, err := uuid.Parse(c.Param("fileID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file id"})
		return
	}

	var req shareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a valid email is required"})
		return
	}

	rec, err := h.service.Share(c.Request.Context(), fileID, req.Email, principal)
	if err != nil {
		switch {
		case errors.Is(err, ErrFileNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		case errors.Is(err, ErrPermissionDenied):
			c.JSON(http.StatusForbidden, gin.H{"error": "only the owner may share a file"})
		case errors.Is(err, ErrAlreadyShared):
			c.JSON(http.StatusConflict, gin.H{"error": "file is already shared with this user"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to share file"})
		}
		return
	}

	c.JSON(http.StatusOK, rec)
}

func (h *httpHandler) renameFile(c *gin.Context) {
	principal, ok := auth.RequirePrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	fileID, err := uuid.Parse(c.Param("fileID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file id"})
		return
	}

	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	rec, err := h.service.Rename(c.Request.Context(), fileID, req.Name, principal)
	if err != nil {
		switch {
		case errors.Is(err, ErrFileNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		case errors.Is(err, ErrPermissionDenied):
			c.JSON(http.StatusForbidden, gin.H{"error": "only the owner may rename a file"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to rename file"})
		}
		return
	}

	c.JSON(http.StatusOK, rec)
}
