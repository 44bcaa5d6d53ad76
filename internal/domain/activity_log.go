package domain

import "time"

// AuditAction enumerates recordable actions.
type AuditAction string

const (
	AuditActionCreate AuditAction = "CREATE"
	AuditActionUpdate AuditAction = "UPDATE"
	AuditActionDelete AuditAction = "DELETE"
	AuditActionAssign AuditAction = "ASSIGN"
	AuditActionNotify AuditAction = "NOTIFY"
)

// AuditEntityType names the kind of entity an entry refers to.
type AuditEntityType string

const (
	AuditEntityTicket AuditEntityType = "Ticket"
	AuditEntityUser   AuditEntityType = "User"
)

// ChangeSet captures entity state around a mutation. Before is nil for
// CREATE and ASSIGN, and may be nil for UPDATE when the pre-mutation
// snapshot could not be read.
type ChangeSet struct {
	Before map[string]any `json:"before,omitempty"`
	After  map[string]any `json:"after,omitempty"`
}

// ActivityLogEntry is one append-only audit record. Entries are never
// mutated or deleted. UserID is nil for system actions. EntityID is not a
// strict foreign key: the entity may since have been deleted.
type ActivityLogEntry struct {
	ID         string
	UserID     *string
	Action     AuditAction
	EntityType AuditEntityType
	EntityID   string
	Changes    ChangeSet
	Metadata   map[string]any
	Timestamp  time.Time
}
