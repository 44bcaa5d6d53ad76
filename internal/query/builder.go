package query

import (
	"strings"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// Field names understood by the ticket collection. Repositories map these
// onto their own column or key names.
const (
	FieldTitle         = "title"
	FieldDescription   = "description"
	FieldStatus        = "status"
	FieldPriority      = "priority"
	FieldAssignedAgent = "assignedAgent"
	FieldCreatedBy     = "createdBy"
)

// Builder assembles a ticket filter from request parameters and the
// caller's role. Building never fails: malformed optional inputs degrade
// to no constraint. Conjuncts accumulate independently, so a search
// disjunction and the agent-visibility disjunction stay separate OR
// groups joined by AND rather than collapsing into one flat disjunction.
type Builder struct {
	conjuncts []Expr
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// WithSearch adds a case-insensitive substring match on title or
// description. Empty or whitespace-only terms contribute nothing.
func (b *Builder) WithSearch(term string) *Builder {
	term = strings.TrimSpace(term)
	if term == "" {
		return b
	}
	b.conjuncts = append(b.conjuncts, Or(
		Match(FieldTitle, term),
		Match(FieldDescription, term),
	))
	return b
}

// WithStatus adds an exact-match status conjunct when non-empty.
func (b *Builder) WithStatus(status string) *Builder {
	if status != "" {
		b.conjuncts = append(b.conjuncts, Eq(FieldStatus, status))
	}
	return b
}

// WithPriority adds an exact-match priority conjunct when non-empty.
func (b *Builder) WithPriority(priority string) *Builder {
	if priority != "" {
		b.conjuncts = append(b.conjuncts, Eq(FieldPriority, priority))
	}
	return b
}

// WithAssignedAgent filters on the assigned agent when the value is a
// syntactically valid identifier; anything else is ignored rather than
// producing a filter that errors or matches nothing.
func (b *Builder) WithAssignedAgent(agentID string) *Builder {
	if agentID != "" && uuid.Validate(agentID) == nil {
		b.conjuncts = append(b.conjuncts, Eq(FieldAssignedAgent, agentID))
	}
	return b
}

// ScopeToRole conjoins the caller's visibility constraint. Apply it last.
//
// Admins see everything. Agents see tickets assigned to them or
// unassigned. Users see only tickets they created. Note the agent rule
// does not extend to tickets an agent created but that are assigned to
// someone else; that matches the shipped behavior and is intentional.
func (b *Builder) ScopeToRole(caller domain.Identity) *Builder {
	switch caller.Role {
	case domain.RoleAdmin:
		// no additional constraint
	case domain.RoleAgent:
		b.conjuncts = append(b.conjuncts, Or(
			Eq(FieldAssignedAgent, caller.ID),
			IsNull(FieldAssignedAgent),
		))
	default:
		b.conjuncts = append(b.conjuncts, Eq(FieldCreatedBy, caller.Username))
	}
	return b
}

// Build returns the accumulated filter as a single expression.
func (b *Builder) Build() Expr {
	return And(b.conjuncts...)
}
