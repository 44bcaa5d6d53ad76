package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/audit"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/policy"
	"github.com/spec-kit/helpdesk-service/internal/query"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

type ticketFixture struct {
	tickets    *repository.MemoryTicketRepository
	users      *repository.MemoryUserRepository
	activity   *repository.MemoryActivityLogRepository
	dispatcher *events.InMemoryDispatcher
	svc        *TicketService
}

func newTicketFixture(t *testing.T) *ticketFixture {
	t.Helper()
	f := &ticketFixture{
		tickets:    repository.NewMemoryTicketRepository(),
		users:      repository.NewMemoryUserRepository(),
		activity:   repository.NewMemoryActivityLogRepository(),
		dispatcher: events.NewInMemoryDispatcher(),
	}
	audit.NewRecorder(f.activity, zap.NewNop()).Register(f.dispatcher)
	f.svc = NewTicketService(TicketDependencies{
		TicketRepo:   f.tickets,
		UserRepo:     f.users,
		ActivityRepo: f.activity,
		Dispatcher:   f.dispatcher,
	})
	return f
}

func (f *ticketFixture) addUser(t *testing.T, username string, role domain.Role) domain.Identity {
	t.Helper()
	user := &domain.User{Username: username, Email: username + "@example.com", Role: role}
	require.NoError(t, f.users.Create(context.Background(), user))
	return domain.Identity{ID: user.ID, Username: username, Role: role}
}

func (f *ticketFixture) createTicket(t *testing.T, caller domain.Identity, title string) *domain.Ticket {
	t.Helper()
	ticket, err := f.svc.Create(context.Background(), caller, TicketCreateInput{
		Title:       title,
		Description: "something broke",
	}, nil)
	require.NoError(t, err)
	return ticket
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var derr *apperrors.DomainError
	require.ErrorAs(t, err, &derr)
	return derr.Code
}

func TestCreateAppliesDefaultsAndRecordsActivity(t *testing.T) {
	f := newTicketFixture(t)
	alice := f.addUser(t, "alice", domain.RoleUser)

	ticket := f.createTicket(t, alice, "printer on fire")
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
	assert.Equal(t, "alice", ticket.CreatedBy)
	assert.Nil(t, ticket.AssignedAgent)

	f.dispatcher.Drain()
	entries := f.activity.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AuditActionCreate, entries[0].Action)
	assert.Equal(t, ticket.ID, entries[0].EntityID)
	assert.Equal(t, alice.ID, *entries[0].UserID)
	assert.Equal(t, "printer on fire", entries[0].Changes.After["title"])
}

func TestUpdateRecordsBeforeAndAfterStatus(t *testing.T) {
	f := newTicketFixture(t)
	alice := f.addUser(t, "alice", domain.RoleUser)
	ticket := f.createTicket(t, alice, "vpn down")

	resolved := domain.TicketStatusResolved
	updated, err := f.svc.Update(context.Background(), alice, ticket.ID, policy.TicketPatch{Status: &resolved}, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, updated.Status)

	f.dispatcher.Drain()
	var updateEntry *domain.ActivityLogEntry
	for _, e := range f.activity.Entries() {
		if e.Action == domain.AuditActionUpdate {
			entry := e
			updateEntry = &entry
		}
	}
	require.NotNil(t, updateEntry)
	assert.Equal(t, "Open", updateEntry.Changes.Before["status"])
	assert.Equal(t, "Resolved", updateEntry.Changes.After["status"])
}

func TestUpdatePatchCannotChangeAssignment(t *testing.T) {
	f := newTicketFixture(t)
	alice := f.addUser(t, "alice", domain.RoleUser)
	agent := f.addUser(t, "carol", domain.RoleAgent)
	ticket := f.createTicket(t, alice, "vpn down")

	ticket.AssignedAgent = &agent.ID
	require.NoError(t, f.tickets.Update(context.Background(), ticket))

	patch := policy.WhitelistTicketPatch(map[string]any{
		"title":         "renamed",
		"assignedAgent": uuid.NewString(),
	})
	updated, err := f.svc.Update(context.Background(), alice, ticket.ID, patch, nil)
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	require.NotNil(t, updated.AssignedAgent)
	assert.Equal(t, agent.ID, *updated.AssignedAgent)
	f.dispatcher.Drain()
}

func TestUpdateForbiddenForUnrelatedUser(t *testing.T) {
	f := newTicketFixture(t)
	alice := f.addUser(t, "alice", domain.RoleUser)
	bob := f.addUser(t, "bob", domain.RoleUser)
	ticket := f.createTicket(t, alice, "vpn down")

	title := "hijack"
	_, err := f.svc.Update(context.Background(), bob, ticket.ID, policy.TicketPatch{Title: &title}, nil)
	assert.Equal(t, "FORBIDDEN", domainCode(t, err))
	f.dispatcher.Drain()
}

func TestUpdateMissingTicketIsNotFound(t *testing.T) {
	f := newTicketFixture(t)
	alice := f.addUser(t, "alice", domain.RoleUser)

	title := "whatever"
	_, err := f.svc.Update(context.Background(), alice, uuid.NewString(), policy.TicketPatch{Title: &title}, nil)
	assert.Equal(t, "NOT_FOUND", domainCode(t, err))
}

func TestAssignRejectsNonAgentTarget(t *testing.T) {
	f := newTicketFixture(t)
	admin := f.addUser(t, "root", domain.RoleAdmin)
	bob := f.addUser(t, "bob", domain.RoleUser)
	ticket := f.createTicket(t, admin, "vpn down")

	_, err := f.svc.Assign(context.Background(), admin, ticket.ID, bob.ID, nil)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", domainCode(t, err))
	assert.Contains(t, err.Error(), "Agent")
	f.dispatcher.Drain()
}

func TestAssignForbiddenForUserRole(t *testing.T) {
	f := newTicketFixture(t)
	alice := f.addUser(t, "alice", domain.RoleUser)
	agent := f.addUser(t, "carol", domain.RoleAgent)
	ticket := f.createTicket(t, alice, "vpn down")

	_, err := f.svc.Assign(context.Background(), alice, ticket.ID, agent.ID, nil)
	assert.Equal(t, "FORBIDDEN", domainCode(t, err))
	f.dispatcher.Drain()
}

func TestAssignRecordsAssignAction(t *testing.T) {
	f := newTicketFixture(t)
	admin := f.addUser(t, "root", domain.RoleAdmin)
	agent := f.addUser(t, "carol", domain.RoleAgent)
	ticket := f.createTicket(t, admin, "vpn down")

	assigned, err := f.svc.Assign(context.Background(), admin, ticket.ID, agent.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, assigned.AssignedAgent)
	assert.Equal(t, agent.ID, *assigned.AssignedAgent)

	f.dispatcher.Drain()
	var found bool
	for _, e := range f.activity.Entries() {
		if e.Action == domain.AuditActionAssign && e.EntityID == ticket.ID {
			found = true
			assert.Nil(t, e.Changes.Before)
			assert.Equal(t, agent.ID, e.Changes.After["assignedAgent"])
		}
	}
	assert.True(t, found)
}

func TestDeleteByCreatorRecordsEmptyChanges(t *testing.T) {
	f := newTicketFixture(t)
	alice := f.addUser(t, "alice", domain.RoleUser)
	ticket := f.createTicket(t, alice, "vpn down")

	_, err := f.svc.Delete(context.Background(), alice, ticket.ID, nil)
	require.NoError(t, err)

	_, err = f.tickets.GetByID(context.Background(), ticket.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	f.dispatcher.Drain()
	var deleteEntry *domain.ActivityLogEntry
	for _, e := range f.activity.Entries() {
		if e.Action == domain.AuditActionDelete {
			entry := e
			deleteEntry = &entry
		}
	}
	require.NotNil(t, deleteEntry)
	assert.Equal(t, ticket.ID, deleteEntry.EntityID)
	assert.Nil(t, deleteEntry.Changes.Before)
	assert.Nil(t, deleteEntry.Changes.After)
}

func TestDeleteForbiddenForNonCreator(t *testing.T) {
	f := newTicketFixture(t)
	alice := f.addUser(t, "alice", domain.RoleUser)
	agent := f.addUser(t, "carol", domain.RoleAgent)
	ticket := f.createTicket(t, alice, "vpn down")

	ticket.AssignedAgent = &agent.ID
	require.NoError(t, f.tickets.Update(context.Background(), ticket))

	// assignment grants update, not delete
	_, err := f.svc.Delete(context.Background(), agent, ticket.ID, nil)
	assert.Equal(t, "FORBIDDEN", domainCode(t, err))
	f.dispatcher.Drain()
}

type brokenActivityLog struct{}

func (brokenActivityLog) Append(ctx context.Context, entry *domain.ActivityLogEntry) error {
	return errors.New("disk full")
}

func (brokenActivityLog) List(ctx context.Context, filter query.Expr, page query.PageRequest) ([]domain.ActivityLogEntry, int, error) {
	return nil, 0, errors.New("disk full")
}

func (brokenActivityLog) ListByEntity(ctx context.Context, entityType domain.AuditEntityType, entityID string) ([]domain.ActivityLogEntry, error) {
	return nil, errors.New("disk full")
}

func TestMutationSucceedsWhenAuditWriteFails(t *testing.T) {
	tickets := repository.NewMemoryTicketRepository()
	users := repository.NewMemoryUserRepository()
	dispatcher := events.NewInMemoryDispatcher()
	audit.NewRecorder(brokenActivityLog{}, zap.NewNop()).Register(dispatcher)

	svc := NewTicketService(TicketDependencies{
		TicketRepo:   tickets,
		UserRepo:     users,
		ActivityRepo: brokenActivityLog{},
		Dispatcher:   dispatcher,
	})

	alice := domain.Identity{ID: uuid.NewString(), Username: "alice", Role: domain.RoleUser}
	ticket, err := svc.Create(context.Background(), alice, TicketCreateInput{
		Title:       "still works",
		Description: "audit store is down",
	}, nil)
	require.NoError(t, err)
	dispatcher.Drain()

	stored, err := tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, "still works", stored.Title)
}

func TestListScopesByRole(t *testing.T) {
	f := newTicketFixture(t)
	admin := f.addUser(t, "root", domain.RoleAdmin)
	agent1 := f.addUser(t, "carol", domain.RoleAgent)
	agent2 := f.addUser(t, "dave", domain.RoleAgent)
	alice := f.addUser(t, "alice", domain.RoleUser)
	bob := f.addUser(t, "bob", domain.RoleUser)

	mine := f.createTicket(t, alice, "assigned to carol")
	theirs := f.createTicket(t, alice, "assigned to dave")
	f.createTicket(t, alice, "unassigned")

	mine.AssignedAgent = &agent1.ID
	require.NoError(t, f.tickets.Update(context.Background(), mine))
	theirs.AssignedAgent = &agent2.ID
	require.NoError(t, f.tickets.Update(context.Background(), theirs))

	list := func(caller domain.Identity) []domain.Ticket {
		tickets, _, err := f.svc.List(context.Background(), caller, TicketListParams{})
		require.NoError(t, err)
		return tickets
	}

	assert.Len(t, list(admin), 3)
	assert.Len(t, list(agent1), 2)
	assert.Len(t, list(alice), 3)
	assert.Empty(t, list(bob))
	f.dispatcher.Drain()
}

func TestListSearchWithinAgentScope(t *testing.T) {
	f := newTicketFixture(t)
	agent1 := f.addUser(t, "carol", domain.RoleAgent)
	agent2 := f.addUser(t, "dave", domain.RoleAgent)
	alice := f.addUser(t, "alice", domain.RoleUser)

	visible := f.createTicket(t, alice, "VPN outage")
	hidden := f.createTicket(t, alice, "vpn flaky")
	f.createTicket(t, alice, "printer jam")

	visible.AssignedAgent = &agent1.ID
	require.NoError(t, f.tickets.Update(context.Background(), visible))
	hidden.AssignedAgent = &agent2.ID
	require.NoError(t, f.tickets.Update(context.Background(), hidden))

	tickets, info, err := f.svc.List(context.Background(), agent1, TicketListParams{Search: "vpn"})
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, visible.ID, tickets[0].ID)
	assert.Equal(t, 1, info.Total)
	f.dispatcher.Drain()
}

func TestGetForbiddenOutsideScope(t *testing.T) {
	f := newTicketFixture(t)
	alice := f.addUser(t, "alice", domain.RoleUser)
	bob := f.addUser(t, "bob", domain.RoleUser)
	ticket := f.createTicket(t, alice, "private")

	_, err := f.svc.Get(context.Background(), bob, ticket.ID)
	assert.Equal(t, "FORBIDDEN", domainCode(t, err))

	got, err := f.svc.Get(context.Background(), alice, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, got.ID)
	f.dispatcher.Drain()
}

func TestAuthorizeMissingTicketIsNotFound(t *testing.T) {
	f := newTicketFixture(t)
	admin := f.addUser(t, "root", domain.RoleAdmin)

	decision := f.svc.Authorize(context.Background(), admin, uuid.NewString(), policy.OpDelete)
	assert.Equal(t, policy.NotFound, decision)
}
