package folder

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/abduss/docstore/internal/auth"
	"github.com/abduss/docstore/internal/storeerr"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RegisterRoutes mounts folder workflows under the provided router group.
func RegisterRoutes(group *gin.RouterGroup, service Lifecycle) {
	handler := &httpHandler{service: service}
	group.POST("/folders/:ownerID/backup", handler.backupFolder)
	group.DELETE("/folders/:ownerID", handler.deleteFolder)
}

type httpHandler struct {
	service Lifecycle
}

func (h *httpHandler) backupFolder(c *gin.Context) {
	backup, err := h.service.BackupFolder(c.Request.Context(), c.Param("ownerID"))
	if err != nil {
		writeError(c, err, "back up folder", gin.H{"backup": backup})
		return
	}
	auth.RequestLogger(c).Info("folder backed up",
		zap.String("dest", backup.DestPrefix),
		zap.Int("objects", len(backup.CopiedKeys)))
	c.JSON(http.StatusOK, backup)
}

// deleteFolder backs the folder up first unless ?backup=false is given.
func (h *httpHandler) deleteFolder(c *gin.Context) {
	ownerID := c.Param("ownerID")

	withBackup := true
	if raw := c.Query("backup"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid backup flag"})
			return
		}
		withBackup = parsed
	}

	log := auth.RequestLogger(c).With(zap.String("owner_id", ownerID))

	if !withBackup {
		log.Warn("deleting folder without backup")
		purge, err := h.service.DeleteFolder(c.Request.Context(), ownerID)
		if err != nil {
			writeError(c, err, "delete folder", gin.H{"purge": purge})
			return
		}
		log.Info("folder deleted", zap.Int("objects", len(purge.DeletedKeys)))
		c.JSON(http.StatusOK, gin.H{"purge": purge})
		return
	}

	backup, purge, err := BackupThenDelete(c.Request.Context(), h.service, ownerID)
	if err != nil {
		writeError(c, err, "delete folder", gin.H{"backup": backup, "purge": purge})
		return
	}
	log.Info("folder deleted",
		zap.String("backup", backup.DestPrefix),
		zap.Int("objects", len(purge.DeletedKeys)))
	c.JSON(http.StatusOK, gin.H{"backup": backup, "purge": purge})
}

func writeError(c *gin.Context, err error, action string, partial gin.H) {
	log := auth.RequestLogger(c).With(
		zap.String("action", action),
		zap.String("owner_id", c.Param("ownerID")),
		zap.Error(err))
	if errors.Is(err, storeerr.ErrInvalidInput) {
		log.Warn("folder request rejected")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	log.Error("folder request failed", zap.String("failed_key", storeerr.FailedKey(err)))

	body := gin.H{
		"error":      "failed to " + action,
		"details":    err.Error(),
		"failed_key": storeerr.FailedKey(err),
	}
	for k, v := range partial {
		body[k] = v
	}
	c.JSON(http.StatusInternalServerError, body)
}
