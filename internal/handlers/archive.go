package handlers

import (
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
)

// ListArchive lists archived upload keys, optionally filtered by prefix.
func (h *Validator) ListArchive(c *gin.Context) {
	if h.archive == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "upload archive not configured"})
		return
	}

	prefix := c.DefaultQuery("prefix", "uploads")
	keys, err := h.archive.List(c.Request.Context(), prefix)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"keys": keys})
}

// Revalidate re-runs validation against an archived upload, so a past run
// can be reproduced against the exact bytes that were submitted. The
// re-run is not archived again.
func (h *Validator) Revalidate(c *gin.Context) {
	if h.archive == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "upload archive not configured"})
		return
	}

	key := c.Query("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing key parameter"})
		return
	}

	ctx := c.Request.Context()
	exists, err := h.archive.Exists(ctx, key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "no archived upload for key"})
		return
	}

	content, err := h.archive.Get(ctx, key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// The stored key carries a checksum prefix; the metadata sidecar has
	// the name the file was uploaded under, which also picks the parser.
	filename := path.Base(key)
	if info, err := h.archive.Info(ctx, key); err == nil && info.Metadata != nil && info.Metadata.OriginalName != "" {
		filename = info.Metadata.OriginalName
	}

	h.runValidation(c, content, filename, false)
}
