package service

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/policy"
	"github.com/spec-kit/helpdesk-service/internal/query"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows: lookup, authorization,
// mutation, then a post-commit event for observers.
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	activity   repository.ActivityLogRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	UserRepo     repository.UserRepository
	ActivityRepo repository.ActivityLogRepository
	Dispatcher   events.Dispatcher
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		activity:   deps.ActivityRepo,
		dispatcher: deps.Dispatcher,
	}
}

// TicketListParams carries raw listing parameters. Values arrive
// pre-validated where the enum sets matter; empty values filter nothing.
type TicketListParams struct {
	Search        string
	Status        string
	Priority      string
	AssignedAgent string
	Page          string
	Limit         string
}

// TicketCreateInput describes ticket creation payload. AssignedAgent is
// deliberately absent: assignment has its own operation.
type TicketCreateInput struct {
	Title       string
	Description string
	Status      domain.TicketStatus
	Priority    domain.TicketPriority
}

// RequestMeta is contextual data recorded alongside activity entries.
type RequestMeta map[string]any

// List returns tickets visible to the caller, filtered and paginated.
func (s *TicketService) List(ctx context.Context, caller domain.Identity, params TicketListParams) ([]domain.Ticket, query.PageInfo, error) {
	filter := query.NewBuilder().
		WithSearch(params.Search).
		WithStatus(params.Status).
		WithPriority(params.Priority).
		WithAssignedAgent(params.AssignedAgent).
		ScopeToRole(caller).
		Build()

	page := query.NormalizePage(params.Page, params.Limit)
	tickets, total, err := s.tickets.List(ctx, filter, page)
	if err != nil {
		return nil, query.PageInfo{}, err
	}
	return tickets, query.ShapePage(total, page), nil
}

// Get fetches one ticket visible to the caller under the same role
// scoping as List.
func (s *TicketService) Get(ctx context.Context, caller domain.Identity, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "Ticket")
	}
	scope := query.NewBuilder().ScopeToRole(caller).Build()
	if !scope.Matches(ticketFilterDoc(ticket)) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return ticket, nil
}

// Create opens a new ticket for the caller. The creator's username is
// denormalized onto the ticket and never changes afterwards.
func (s *TicketService) Create(ctx context.Context, caller domain.Identity, input TicketCreateInput, meta RequestMeta) (*domain.Ticket, error) {
	ticket := &domain.Ticket{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Status:      input.Status,
		Priority:    input.Priority,
		CreatedBy:   caller.Username,
	}
	if ticket.Status == "" {
		ticket.Status = domain.TicketStatusOpen
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	s.publish(ctx, events.MutationEvent{
		Type:       events.EventTicketCreated,
		Action:     domain.AuditActionCreate,
		EntityType: domain.AuditEntityTicket,
		Result:     events.TicketSnapshot(ticket),
		ActorID:    actorRef(caller),
		ActorName:  caller.Username,
		Outcome:    http.StatusOK,
		Metadata:   meta,
	})
	return ticket, nil
}

// Update applies a whitelisted patch to a ticket. Permitted for admins,
// the assigned agent, or the creator. Attempts to change assignment do
// not reach this path; the whitelist drops them.
func (s *TicketService) Update(ctx context.Context, caller domain.Identity, id string, patch policy.TicketPatch, meta RequestMeta) (*domain.Ticket, error) {
	existing, err := s.getForMutation(ctx, caller, id, policy.OpUpdate)
	if err != nil {
		return nil, err
	}

	before := events.TicketSnapshot(existing)
	oldStatus := existing.Status

	updated := *existing
	patch.Apply(&updated)
	if err := s.tickets.Update(ctx, &updated); err != nil {
		return nil, mapStoreError(err, "Ticket")
	}

	if patch.Status != nil && oldStatus != updated.Status {
		s.publish(ctx, events.MutationEvent{
			Type:       events.EventTicketStatusChanged,
			Action:     domain.AuditActionUpdate,
			EntityType: domain.AuditEntityTicket,
			TargetID:   updated.ID,
			Result:     events.TicketSnapshot(&updated),
			Before:     before,
			ActorID:    actorRef(caller),
			ActorName:  caller.Username,
			Outcome:    http.StatusOK,
			Metadata:   meta,
		})
	}

	s.publish(ctx, events.MutationEvent{
		Type:       events.EventTicketUpdated,
		Action:     domain.AuditActionUpdate,
		EntityType: domain.AuditEntityTicket,
		ParamID:    id,
		Result:     events.TicketSnapshot(&updated),
		Before:     before,
		ActorID:    actorRef(caller),
		ActorName:  caller.Username,
		Outcome:    http.StatusOK,
		Metadata:   meta,
	})
	return &updated, nil
}

// Assign routes a ticket to an agent. Only the assign path may write
// AssignedAgent; the target must exist and hold the agent role.
func (s *TicketService) Assign(ctx context.Context, caller domain.Identity, ticketID, agentID string, meta RequestMeta) (*domain.Ticket, error) {
	if !policy.CanAssign(caller.Role) {
		return nil, apperrors.NewForbidden("access denied")
	}

	agent, err := s.users.GetByID(ctx, agentID)
	if err != nil || agent.Role != domain.RoleAgent {
		return nil, apperrors.NewNotFound("Agent")
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, mapStoreError(err, "Ticket")
	}

	ticket.AssignedAgent = &agent.ID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, mapStoreError(err, "Ticket")
	}

	s.publish(ctx, events.MutationEvent{
		Type:       events.EventTicketAssigned,
		Action:     domain.AuditActionAssign,
		EntityType: domain.AuditEntityTicket,
		ParamID:    ticketID,
		Result:     events.TicketSnapshot(ticket),
		ActorID:    actorRef(caller),
		ActorName:  caller.Username,
		Outcome:    http.StatusOK,
		Metadata:   meta,
	})
	return ticket, nil
}

// Delete removes a ticket. Permitted for admins and the creator.
func (s *TicketService) Delete(ctx context.Context, caller domain.Identity, id string, meta RequestMeta) (*domain.Ticket, error) {
	ticket, err := s.getForMutation(ctx, caller, id, policy.OpDelete)
	if err != nil {
		return nil, err
	}

	if err := s.tickets.Delete(ctx, id); err != nil {
		return nil, mapStoreError(err, "Ticket")
	}

	s.publish(ctx, events.MutationEvent{
		Type:       events.EventTicketDeleted,
		Action:     domain.AuditActionDelete,
		EntityType: domain.AuditEntityTicket,
		ParamID:    id,
		Before:     events.TicketSnapshot(ticket),
		ActorID:    actorRef(caller),
		ActorName:  caller.Username,
		Outcome:    http.StatusOK,
		Metadata:   meta,
	})
	return ticket, nil
}

// Authorize reports how a mutation on the given ticket would be decided
// for the caller, without performing it.
func (s *TicketService) Authorize(ctx context.Context, caller domain.Identity, id string, op policy.TicketOp) policy.Decision {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		ticket = nil
	}
	return policy.TicketMutation(caller, ticket, op)
}

// ActivityForTicket returns the audit trail of one ticket, newest first.
func (s *TicketService) ActivityForTicket(ctx context.Context, id string) ([]domain.ActivityLogEntry, error) {
	return s.activity.ListByEntity(ctx, domain.AuditEntityTicket, id)
}

// getForMutation implements lookup-before-auth: absence yields NotFound
// for every caller, permission is evaluated only on existing tickets.
func (s *TicketService) getForMutation(ctx context.Context, caller domain.Identity, id string, op policy.TicketOp) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "Ticket")
	}
	switch policy.TicketMutation(caller, ticket, op) {
	case policy.Allow:
		return ticket, nil
	case policy.NotFound:
		return nil, apperrors.NewNotFound("Ticket")
	default:
		return nil, apperrors.NewForbidden("access denied")
	}
}

func (s *TicketService) publish(ctx context.Context, event events.MutationEvent) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	s.dispatcher.Publish(ctx, event)
}

func ticketFilterDoc(t *domain.Ticket) map[string]any {
	var assigned any
	if t.AssignedAgent != nil {
		assigned = *t.AssignedAgent
	}
	return map[string]any{
		query.FieldTitle:         t.Title,
		query.FieldDescription:   t.Description,
		query.FieldStatus:        string(t.Status),
		query.FieldPriority:      string(t.Priority),
		query.FieldAssignedAgent: assigned,
		query.FieldCreatedBy:     t.CreatedBy,
	}
}

func actorRef(caller domain.Identity) *string {
	if caller.ID == "" {
		return nil
	}
	id := caller.ID
	return &id
}

func mapStoreError(err error, resource string) error {
	if err == repository.ErrNotFound {
		return apperrors.NewNotFound(resource)
	}
	return apperrors.ToDomainError(err)
}
