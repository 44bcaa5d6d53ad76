package repository

import (
	"context"
	"errors"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/query"
)

// ErrNotFound is returned when the requested entity does not exist.
// Store implementations translate their own absence signal into it.
var ErrNotFound = errors.New("entity not found")

// TicketRepository encapsulates ticket persistence. List applies a
// store-agnostic filter expression and returns the window of tickets
// plus the total match count, newest first.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	Update(ctx context.Context, ticket *domain.Ticket) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter query.Expr, page query.PageRequest) ([]domain.Ticket, int, error)
	ListIDsByAssignee(ctx context.Context, agentID string) ([]string, error)
}

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, role *domain.Role, page query.PageRequest) ([]domain.User, int, error)
	ListAgents(ctx context.Context) ([]domain.User, error)
}

// ActivityLogRepository stores the append-only audit trail. There is no
// update or delete: entries are immutable once appended.
type ActivityLogRepository interface {
	Append(ctx context.Context, entry *domain.ActivityLogEntry) error
	List(ctx context.Context, filter query.Expr, page query.PageRequest) ([]domain.ActivityLogEntry, int, error)
	ListByEntity(ctx context.Context, entityType domain.AuditEntityType, entityID string) ([]domain.ActivityLogEntry, error)
}
