package policy

import "github.com/spec-kit/helpdesk-service/internal/domain"

// Decision is the outcome of an authorization check.
type Decision int

const (
	Allow Decision = iota
	Forbidden
	NotFound
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Forbidden:
		return "forbidden"
	default:
		return "not_found"
	}
}

// TicketOp names a mutating ticket operation.
type TicketOp string

const (
	OpUpdate TicketOp = "update"
	OpDelete TicketOp = "delete"
	OpAssign TicketOp = "assign"
)

// TicketMutation decides whether the caller may perform op on the given
// ticket. Existence is checked before permission: a nil ticket yields
// NotFound for every caller, so a caller with insufficient rights on a
// missing ticket never learns more than that it is missing.
func TicketMutation(caller domain.Identity, ticket *domain.Ticket, op TicketOp) Decision {
	if ticket == nil {
		return NotFound
	}
	switch op {
	case OpUpdate:
		if caller.Role == domain.RoleAdmin || isAssignedAgent(caller, ticket) || ticket.CreatedBy == caller.Username {
			return Allow
		}
	case OpDelete:
		if caller.Role == domain.RoleAdmin || ticket.CreatedBy == caller.Username {
			return Allow
		}
	case OpAssign:
		if CanAssign(caller.Role) {
			return Allow
		}
	}
	return Forbidden
}

// CanAssign reports whether the role may reach the assign operation at
// all. It is evaluated before any entity lookup.
func CanAssign(role domain.Role) bool {
	return role == domain.RoleAdmin || role == domain.RoleAgent
}

// CanManageUsers reports whether the role may list, delete, or re-role
// other users.
func CanManageUsers(role domain.Role) bool {
	return role == domain.RoleAdmin
}

// CanViewActivity reports whether the role may read the activity trail.
func CanViewActivity(role domain.Role) bool {
	return role == domain.RoleAdmin || role == domain.RoleAgent
}

func isAssignedAgent(caller domain.Identity, ticket *domain.Ticket) bool {
	return caller.Role == domain.RoleAgent &&
		ticket.AssignedAgent != nil &&
		*ticket.AssignedAgent == caller.ID
}
