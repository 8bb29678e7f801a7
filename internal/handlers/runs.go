package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shopaudit/catalog-validator/internal/database"
)

// ListRuns returns recent validation runs.
func ListRuns(c *gin.Context) {
	if database.Pool() == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run history not configured"})
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	runs, err := database.ListRuns(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// GetRun returns one run with its issues.
func GetRun(c *gin.Context) {
	if database.Pool() == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run history not configured"})
		return
	}

	runID, err := strconv.ParseInt(c.Param("runId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return
	}

	run, issues, err := database.GetRun(c.Request.Context(), runID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"run": run, "issues": issues})
}
