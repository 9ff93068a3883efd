package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"asset_tracker/internal/history"
	"asset_tracker/internal/models"
	"asset_tracker/internal/repository"
)

type AuditLister interface {
	ListAudit(ctx context.Context, f repository.AuditFilter) ([]models.AuditLog, *int64, error)
}

// ListAudit browses the raw audit log with an id cursor. Each entry is
// rendered the same way asset history renders it.
func ListAudit(l AuditLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 20
		if limitStr := c.Query("limit"); limitStr != "" {
			if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 100 {
				limit = parsed
			}
		}

		var afterID int64
		if cursorStr := c.Query("after_id"); cursorStr != "" {
			if parsed, err := strconv.ParseInt(cursorStr, 10, 64); err == nil && parsed > 0 {
				afterID = parsed
			}
		}

		logs, next, err := l.ListAudit(c.Request.Context(), repository.AuditFilter{
			AfterID: afterID,
			Limit:   limit,
			Query:   strings.TrimSpace(c.Query("q")),
		})
		if err != nil {
			respondError(c, err)
			return
		}

		events := make([]history.TimelineEvent, len(logs))
		for i := range logs {
			events[i], _ = history.Decode(logs[i])
		}
		c.JSON(http.StatusOK, gin.H{
			"events":      events,
			"next_cursor": next,
		})
	}
}
