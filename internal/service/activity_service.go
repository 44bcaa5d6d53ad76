package service

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/query"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// ActivityService exposes the audit trail for reading. Writing is the
// recorder's job alone.
type ActivityService struct {
	activity repository.ActivityLogRepository
	tickets  repository.TicketRepository
}

// NewActivityService constructs the service.
func NewActivityService(activity repository.ActivityLogRepository, tickets repository.TicketRepository) *ActivityService {
	return &ActivityService{activity: activity, tickets: tickets}
}

// ActivityListParams carries raw activity listing parameters.
type ActivityListParams struct {
	User  string
	Page  string
	Limit string
}

// List returns activity entries visible to the caller. An explicit user
// filter overrides role scoping; otherwise admins see everything and
// agents see their own actions plus actions on tickets assigned to them.
func (s *ActivityService) List(ctx context.Context, caller domain.Identity, params ActivityListParams) ([]domain.ActivityLogEntry, int, error) {
	filter := query.All()

	switch {
	case params.User != "":
		filter = query.Eq("user", params.User)
	case caller.Role == domain.RoleAgent:
		assigned, err := s.tickets.ListIDsByAssignee(ctx, caller.ID)
		if err != nil {
			return nil, 0, err
		}
		filter = query.Or(
			query.Eq("user", caller.ID),
			query.And(
				query.Eq("entityType", string(domain.AuditEntityTicket)),
				query.In("entityId", assigned),
			),
		)
	}

	page := query.NormalizePage(params.Page, params.Limit)
	return s.activity.List(ctx, filter, page)
}
