package events

import "github.com/spec-kit/helpdesk-service/internal/domain"

// TicketSnapshot renders a ticket as the field map recorded in audit
// change sets and evaluated by store-agnostic filters.
func TicketSnapshot(t *domain.Ticket) map[string]any {
	if t == nil {
		return nil
	}
	var assigned any
	if t.AssignedAgent != nil {
		assigned = *t.AssignedAgent
	}
	return map[string]any{
		"id":            t.ID,
		"title":         t.Title,
		"description":   t.Description,
		"status":        string(t.Status),
		"priority":      string(t.Priority),
		"assignedAgent": assigned,
		"createdBy":     t.CreatedBy,
	}
}

// UserSnapshot renders a user without credential material.
func UserSnapshot(u *domain.User) map[string]any {
	if u == nil {
		return nil
	}
	return map[string]any{
		"id":       u.ID,
		"username": u.Username,
		"email":    u.Email,
		"role":     string(u.Role),
	}
}
