package store

import (
	"context"
	"strings"

	"orgroles/internal/models"
)

// AuditQuery selects a page of the audit log. AfterID is the cursor returned
// by the previous page; zero starts from the newest entry.
type AuditQuery struct {
	AfterID      int64
	Limit        int
	Action       string
	ResourceType string
	UserID       uint64
	Search       string
}

// AuditLogs returns one page, newest first, and the cursor of the next page
// or zero when this is the last one.
func (s *Store) AuditLogs(ctx context.Context, q AuditQuery) ([]models.AuditLog, int64, error) {
	tx := s.DB.WithContext(ctx).Model(&models.AuditLog{})
	if q.AfterID > 0 {
		tx = tx.Where("id < ?", q.AfterID)
	}
	if q.Action != "" {
		tx = tx.Where("action = ?", q.Action)
	}
	if q.ResourceType != "" {
		tx = tx.Where("resource_type = ?", q.ResourceType)
	}
	if q.UserID > 0 {
		tx = tx.Where("user_id = ?", q.UserID)
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		like := likePattern(search)
		tx = tx.Where("(initiator_name LIKE ? OR action LIKE ? OR resource_type LIKE ? OR ip LIKE ?)", like, like, like, like)
	}

	var logs []models.AuditLog
	if err := tx.Order("id DESC").Limit(q.Limit + 1).Find(&logs).Error; err != nil {
		return nil, 0, wrap(err, "list audit logs")
	}
	if len(logs) <= q.Limit {
		return logs, 0, nil
	}
	logs = logs[:q.Limit]
	return logs, logs[q.Limit-1].ID, nil
}
