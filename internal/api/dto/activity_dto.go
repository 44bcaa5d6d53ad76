package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/query"
)

// ActivityEntryResponse is one audit record.
type ActivityEntryResponse struct {
	ID         string                 `json:"id"`
	User       *string                `json:"user"`
	Action     domain.AuditAction     `json:"action"`
	EntityType domain.AuditEntityType `json:"entityType"`
	EntityID   string                 `json:"entityId"`
	Changes    domain.ChangeSet       `json:"changes"`
	Metadata   map[string]any         `json:"metadata,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
}

// ActivityListResponse wraps a page of audit entries with its envelope.
type ActivityListResponse struct {
	Data       []ActivityEntryResponse `json:"data"`
	Pagination query.PageInfo          `json:"pagination"`
}

// ActivityFromDomain maps an audit entry to its response shape.
func ActivityFromDomain(e *domain.ActivityLogEntry) ActivityEntryResponse {
	return ActivityEntryResponse{
		ID:         e.ID,
		User:       e.UserID,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Changes:    e.Changes,
		Metadata:   e.Metadata,
		Timestamp:  e.Timestamp,
	}
}

// ActivitiesFromDomain maps a slice of audit entries.
func ActivitiesFromDomain(entries []domain.ActivityLogEntry) []ActivityEntryResponse {
	items := make([]ActivityEntryResponse, 0, len(entries))
	for i := range entries {
		items = append(items, ActivityFromDomain(&entries[i]))
	}
	return items
}
