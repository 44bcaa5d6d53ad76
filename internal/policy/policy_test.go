package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

var (
	admin = domain.Identity{ID: "id-admin", Username: "root", Role: domain.RoleAdmin}
	agent = domain.Identity{ID: "id-agent", Username: "agent", Role: domain.RoleAgent}
	alice = domain.Identity{ID: "id-alice", Username: "alice", Role: domain.RoleUser}
	bob   = domain.Identity{ID: "id-bob", Username: "bob", Role: domain.RoleUser}
)

func ticketBy(creator string, assignedTo *string) *domain.Ticket {
	return &domain.Ticket{
		ID:            "t-1",
		Title:         "printer",
		Status:        domain.TicketStatusOpen,
		Priority:      domain.TicketPriorityMedium,
		CreatedBy:     creator,
		AssignedAgent: assignedTo,
	}
}

func TestMissingTicketYieldsNotFoundForEveryCaller(t *testing.T) {
	for _, caller := range []domain.Identity{admin, agent, alice} {
		for _, op := range []TicketOp{OpUpdate, OpDelete, OpAssign} {
			assert.Equal(t, NotFound, TicketMutation(caller, nil, op),
				"caller %s op %s", caller.Username, op)
		}
	}
}

func TestUpdateDecision(t *testing.T) {
	ticket := ticketBy("alice", &agent.ID)

	assert.Equal(t, Allow, TicketMutation(admin, ticket, OpUpdate))
	assert.Equal(t, Allow, TicketMutation(agent, ticket, OpUpdate))
	assert.Equal(t, Allow, TicketMutation(alice, ticket, OpUpdate))
	assert.Equal(t, Forbidden, TicketMutation(bob, ticket, OpUpdate))

	otherAgent := domain.Identity{ID: "id-other", Username: "other", Role: domain.RoleAgent}
	assert.Equal(t, Forbidden, TicketMutation(otherAgent, ticket, OpUpdate))
}

func TestDeleteDecision(t *testing.T) {
	ticket := ticketBy("alice", &agent.ID)

	assert.Equal(t, Allow, TicketMutation(admin, ticket, OpDelete))
	assert.Equal(t, Allow, TicketMutation(alice, ticket, OpDelete))
	// assignment does not grant delete
	assert.Equal(t, Forbidden, TicketMutation(agent, ticket, OpDelete))
	assert.Equal(t, Forbidden, TicketMutation(bob, ticket, OpDelete))
}

func TestAssignDecisionIsRoleGated(t *testing.T) {
	ticket := ticketBy("alice", nil)

	assert.Equal(t, Allow, TicketMutation(admin, ticket, OpAssign))
	assert.Equal(t, Allow, TicketMutation(agent, ticket, OpAssign))
	assert.Equal(t, Forbidden, TicketMutation(alice, ticket, OpAssign))
}

func TestRoleCapabilities(t *testing.T) {
	assert.True(t, CanAssign(domain.RoleAdmin))
	assert.True(t, CanAssign(domain.RoleAgent))
	assert.False(t, CanAssign(domain.RoleUser))

	assert.True(t, CanManageUsers(domain.RoleAdmin))
	assert.False(t, CanManageUsers(domain.RoleAgent))

	assert.True(t, CanViewActivity(domain.RoleAgent))
	assert.False(t, CanViewActivity(domain.RoleUser))
}

func TestWhitelistDropsAssignmentSilently(t *testing.T) {
	patch := WhitelistTicketPatch(map[string]any{
		"title":         "new title",
		"assignedAgent": "id-agent",
		"createdBy":     "mallory",
		"role":          "admin",
	})

	assert.NotNil(t, patch.Title)
	assert.Equal(t, "new title", *patch.Title)
	assert.Nil(t, patch.Status)
	assert.Nil(t, patch.Priority)
	assert.Nil(t, patch.Description)

	assigned := "id-original"
	ticket := ticketBy("alice", &assigned)
	patch.Apply(ticket)
	assert.Equal(t, "new title", ticket.Title)
	assert.Equal(t, "alice", ticket.CreatedBy)
	assert.Equal(t, "id-original", *ticket.AssignedAgent)
}

func TestWhitelistOnlyAssignmentYieldsEmptyPatch(t *testing.T) {
	patch := WhitelistTicketPatch(map[string]any{"assignedAgent": "id-agent"})
	assert.True(t, patch.IsEmpty())
}

func TestWhitelistTypedEnumFields(t *testing.T) {
	patch := WhitelistTicketPatch(map[string]any{
		"status":   "Resolved",
		"priority": "High",
	})

	assert.Equal(t, domain.TicketStatusResolved, *patch.Status)
	assert.Equal(t, domain.TicketPriorityHigh, *patch.Priority)
}

func TestWhitelistIgnoresNonStringValues(t *testing.T) {
	patch := WhitelistTicketPatch(map[string]any{"title": 42})
	assert.True(t, patch.IsEmpty())
}
