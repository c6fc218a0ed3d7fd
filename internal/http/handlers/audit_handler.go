package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"orgroles/internal/store"
)

type auditParams struct {
	AfterID      int64  `form:"after_id" binding:"omitempty,min=1"`
	Limit        int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Action       string `form:"action"`
	ResourceType string `form:"resource_type"`
	UserID       uint64 `form:"user_id"`
	Search       string `form:"q"`
}

// ListAudit pages through the audit trail, newest first. Pass next_cursor back
// as after_id to continue.
func ListAudit(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var p auditParams
		if err := c.ShouldBindQuery(&p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if p.Limit == 0 {
			p.Limit = 20
		}

		logs, next, err := st.AuditLogs(c.Request.Context(), store.AuditQuery(p))
		if err != nil {
			respondError(c, err)
			return
		}

		var cursor *int64
		if next > 0 {
			cursor = &next
		}
		c.JSON(http.StatusOK, gin.H{"logs": logs, "next_cursor": cursor})
	}
}
