package query

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func agentIdentity(id string) domain.Identity {
	return domain.Identity{ID: id, Username: "agent-" + id[:4], Role: domain.RoleAgent}
}

func ticketDocFor(title, description string, assigned any, createdBy string) map[string]any {
	return map[string]any{
		FieldTitle:         title,
		FieldDescription:   description,
		FieldStatus:        "Open",
		FieldPriority:      "Medium",
		FieldAssignedAgent: assigned,
		FieldCreatedBy:     createdBy,
	}
}

func TestScopeToRoleAgentSeesOwnAndUnassigned(t *testing.T) {
	agent1 := uuid.NewString()
	agent2 := uuid.NewString()
	caller := agentIdentity(agent1)

	filter := NewBuilder().ScopeToRole(caller).Build()

	mine := ticketDocFor("A", "", agent1, "alice")
	theirs := ticketDocFor("B", "", agent2, "alice")
	unassigned := ticketDocFor("C", "", nil, "alice")

	assert.True(t, filter.Matches(mine))
	assert.False(t, filter.Matches(theirs))
	assert.True(t, filter.Matches(unassigned))
}

func TestScopeToRoleUserSeesOnlyOwnTickets(t *testing.T) {
	caller := domain.Identity{ID: uuid.NewString(), Username: "alice", Role: domain.RoleUser}

	filter := NewBuilder().ScopeToRole(caller).Build()

	assert.True(t, filter.Matches(ticketDocFor("A", "", nil, "alice")))
	assert.False(t, filter.Matches(ticketDocFor("B", "", nil, "bob")))
}

func TestScopeToRoleAdminUnconstrained(t *testing.T) {
	caller := domain.Identity{ID: uuid.NewString(), Username: "root", Role: domain.RoleAdmin}

	filter := NewBuilder().ScopeToRole(caller).Build()

	assert.Equal(t, KindAll, filter.Kind)
	assert.True(t, filter.Matches(ticketDocFor("anything", "", nil, "bob")))
}

// A search term and agent visibility must combine as separate OR groups
// joined by AND. A ticket matching the search but assigned elsewhere
// stays hidden, and an assigned ticket without the term stays out of the
// search results.
func TestSearchAndAgentScopeStaySeparateDisjunctions(t *testing.T) {
	agent1 := uuid.NewString()
	agent2 := uuid.NewString()
	caller := agentIdentity(agent1)

	filter := NewBuilder().
		WithSearch("vpn").
		ScopeToRole(caller).
		Build()

	termAndVisible := ticketDocFor("VPN outage", "", agent1, "alice")
	termAndUnassigned := ticketDocFor("vpn flaky", "", nil, "alice")
	termButHidden := ticketDocFor("VPN outage", "", agent2, "alice")
	visibleButNoTerm := ticketDocFor("Printer", "paper jam", agent1, "alice")

	assert.True(t, filter.Matches(termAndVisible))
	assert.True(t, filter.Matches(termAndUnassigned))
	assert.False(t, filter.Matches(termButHidden))
	assert.False(t, filter.Matches(visibleButNoTerm))
}

func TestSearchMatchesDescriptionToo(t *testing.T) {
	filter := NewBuilder().WithSearch("jam").Build()

	assert.True(t, filter.Matches(ticketDocFor("Printer", "paper JAM again", nil, "alice")))
	assert.False(t, filter.Matches(ticketDocFor("Printer", "out of toner", nil, "alice")))
}

func TestBlankSearchContributesNothing(t *testing.T) {
	filter := NewBuilder().WithSearch("   ").Build()
	assert.Equal(t, KindAll, filter.Kind)
}

func TestWithAssignedAgentIgnoresMalformedID(t *testing.T) {
	filter := NewBuilder().WithAssignedAgent("not-a-uuid").Build()
	assert.Equal(t, KindAll, filter.Kind)

	valid := uuid.NewString()
	filter = NewBuilder().WithAssignedAgent(valid).Build()
	assert.True(t, filter.Matches(ticketDocFor("A", "", valid, "alice")))
	assert.False(t, filter.Matches(ticketDocFor("B", "", nil, "alice")))
}

func TestStatusAndPriorityFilters(t *testing.T) {
	filter := NewBuilder().
		WithStatus("Open").
		WithPriority("High").
		Build()

	doc := ticketDocFor("A", "", nil, "alice")
	doc[FieldPriority] = "High"
	assert.True(t, filter.Matches(doc))

	doc[FieldStatus] = "Resolved"
	assert.False(t, filter.Matches(doc))
}
