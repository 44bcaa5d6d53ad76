package events

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketUpdated       EventType = "ticket_updated"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketDeleted       EventType = "ticket_deleted"
	EventUserUpdated         EventType = "user_updated"
	EventUserDeleted         EventType = "user_deleted"
	EventNotificationSent    EventType = "notification_sent"
	EventTicketStatusChanged EventType = "ticket_status_changed"
)

// MutationEvent describes a completed mutating operation. It carries
// everything an observer needs to derive what changed and on which
// entity without the mutation handler doing extra bookkeeping.
type MutationEvent struct {
	ID         string
	Type       EventType
	Action     domain.AuditAction
	EntityType domain.AuditEntityType

	// Entity identifier sources, in resolution order: the request path
	// parameter, the identifier the operation recorded as its target,
	// and the "id" embedded in the returned entity snapshot.
	ParamID  string
	TargetID string
	Result   map[string]any

	// Before is the pre-mutation snapshot, present only for updates and
	// possibly nil when the snapshot read failed.
	Before map[string]any

	// ActorID is nil for system actions. ActorName carries the caller's
	// username for human-readable notifications.
	ActorID   *string
	ActorName string

	// Outcome is the HTTP-equivalent status of the operation. Observers
	// only act on 200-399.
	Outcome int

	Metadata  map[string]any
	Timestamp time.Time
}
