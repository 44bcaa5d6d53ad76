package policy

import "github.com/spec-kit/helpdesk-service/internal/domain"

// TicketPatch is a partial ticket update. Nil fields are untouched.
type TicketPatch struct {
	Title       *string
	Description *string
	Status      *domain.TicketStatus
	Priority    *domain.TicketPriority
}

// IsEmpty reports whether the patch changes nothing.
func (p TicketPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && p.Priority == nil
}

// WhitelistTicketPatch extracts the updatable fields from a raw request
// body. Only title, description, status, and priority pass through;
// anything else, notably assignedAgent, is dropped silently so that the
// assign operation stays the single owner of assignment.
func WhitelistTicketPatch(body map[string]any) TicketPatch {
	patch := TicketPatch{}
	if v, ok := stringValue(body, "title"); ok {
		patch.Title = &v
	}
	if v, ok := stringValue(body, "description"); ok {
		patch.Description = &v
	}
	if v, ok := stringValue(body, "status"); ok {
		status := domain.TicketStatus(v)
		patch.Status = &status
	}
	if v, ok := stringValue(body, "priority"); ok {
		priority := domain.TicketPriority(v)
		patch.Priority = &priority
	}
	return patch
}

// Apply writes the patch onto the ticket, leaving nil fields alone.
func (p TicketPatch) Apply(ticket *domain.Ticket) {
	if p.Title != nil {
		ticket.Title = *p.Title
	}
	if p.Description != nil {
		ticket.Description = *p.Description
	}
	if p.Status != nil {
		ticket.Status = *p.Status
	}
	if p.Priority != nil {
		ticket.Priority = *p.Priority
	}
}

func stringValue(body map[string]any, key string) (string, bool) {
	raw, present := body[key]
	if !present {
		return "", false
	}
	s, ok := raw.(string)
	return s, ok
}
