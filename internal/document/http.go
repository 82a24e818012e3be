package document

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"time"

	"github.com/abduss/docstore/internal/auth"
	"github.com/abduss/docstore/internal/storeerr"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RegisterRoutes mounts document operations under the provided router group.
func RegisterRoutes(group *gin.RouterGroup, service *Service, maxUploadBytes int64) {
	handler := &httpHandler{service: service, maxUploadBytes: maxUploadBytes}
	group.POST("/documents/:ownerID", handler.uploadDocument)
	group.GET("/documents/:ownerID/:fileName", handler.viewDocument)
	group.GET("/files/content", handler.downloadFile)
	group.POST("/files/presign", handler.presignFile)
	group.DELETE("/files", handler.deleteFile)
}

type httpHandler struct {
	service        *Service
	maxUploadBytes int64
}

type uploadResponse struct {
	FileID string `json:"file_id"`
	StoredDocument
}

type presignRequest struct {
	FileID     string `json:"file_id" binding:"required"`
	TTLSeconds int64  `json:"ttl_seconds" binding:"gte=0"`
}

func (h *httpHandler) uploadDocument(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field is required"})
		return
	}
	if h.maxUploadBytes > 0 && fileHeader.Size > h.maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file payload"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file payload"})
		return
	}

	fileName := c.PostForm("file_name")
	if fileName == "" {
		fileName = fileHeader.Filename
	}

	stored, err := h.service.Upload(c.Request.Context(), content, fileName, fileHeader.Header.Get("Content-Type"), c.Param("ownerID"))
	if err != nil {
		writeError(c, err, "upload document")
		return
	}

	c.JSON(http.StatusCreated, uploadResponse{FileID: stored.Key, StoredDocument: stored})
}

func (h *httpHandler) viewDocument(c *gin.Context) {
	fileName := c.Param("fileName")
	key, err := h.service.KeyFor(c.Param("ownerID"), fileName)
	if err != nil {
		writeError(c, err, "fetch document")
		return
	}
	h.sendFile(c, key, fileName, "inline")
}

func (h *httpHandler) downloadFile(c *gin.Context) {
	key := c.Query("file_id")
	h.sendFile(c, key, path.Base(key), "attachment")
}

func (h *httpHandler) sendFile(c *gin.Context, key, fileName, disposition string) {
	content, err := h.service.Download(c.Request.Context(), key)
	if err != nil {
		writeError(c, err, "download document")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, fileName))
	c.Data(http.StatusOK, contentTypeFor(fileName), content)
}

func (h *httpHandler) presignFile(c *gin.Context) {
	var req presignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.TTLSeconds > int64(maxPresignTTL/time.Second) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("ttl_seconds must not exceed %d", int64(maxPresignTTL/time.Second))})
		return
	}

	ttl := time.Duration(req.TTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = h.service.presignTTL
	}

	u, err := h.service.Presign(c.Request.Context(), req.FileID, ttl)
	if err != nil {
		writeError(c, err, "presign document")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":        u,
		"expires_at": time.Now().Add(ttl).UTC(),
	})
}

func (h *httpHandler) deleteFile(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Query("file_id")); err != nil {
		writeError(c, err, "delete document")
		return
	}
	c.Status(http.StatusNoContent)
}

func writeError(c *gin.Context, err error, action string) {
	log := auth.RequestLogger(c).With(zap.String("action", action), zap.Error(err))
	switch {
	case errors.Is(err, storeerr.ErrInvalidInput):
		log.Warn("document request rejected")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, storeerr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
	default:
		log.Error("document request failed", zap.String("key", storeerr.FailedKey(err)))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to " + action,
			"details": err.Error(),
		})
	}
}

// The stored mime type lives with the owning record, so responses fall back
// to the file extension.
func contentTypeFor(fileName string) string {
	if ct := mime.TypeByExtension(path.Ext(fileName)); ct != "" {
		return ct
	}
	return defaultMimeType
}
