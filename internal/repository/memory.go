package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/query"
)

// Memory-backed repositories evaluate filter expressions directly
// against field maps. They back tests and DSN-less development runs.

// MemoryTicketRepository is an in-memory TicketRepository.
type MemoryTicketRepository struct {
	mu      sync.RWMutex
	tickets map[string]domain.Ticket
	seq     map[string]int64
	nextSeq int64
}

// NewMemoryTicketRepository builds an empty store.
func NewMemoryTicketRepository() *MemoryTicketRepository {
	return &MemoryTicketRepository{
		tickets: make(map[string]domain.Ticket),
		seq:     make(map[string]int64),
	}
}

func (r *MemoryTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	ticket.ID = uuid.NewString()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	r.nextSeq++
	r.seq[ticket.ID] = r.nextSeq
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *MemoryTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &ticket, nil
}

func (r *MemoryTicketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[ticket.ID]; !ok {
		return ErrNotFound
	}
	ticket.UpdatedAt = time.Now()
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *MemoryTicketRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[id]; !ok {
		return ErrNotFound
	}
	delete(r.tickets, id)
	delete(r.seq, id)
	return nil
}

func (r *MemoryTicketRepository) List(ctx context.Context, filter query.Expr, page query.PageRequest) ([]domain.Ticket, int, error) {
	r.mu.RLock()
	matched := make([]domain.Ticket, 0, len(r.tickets))
	seq := make(map[string]int64, len(r.tickets))
	for _, ticket := range r.tickets {
		if filter.Matches(ticketDoc(ticket)) {
			matched = append(matched, ticket)
			seq[ticket.ID] = r.seq[ticket.ID]
		}
	}
	r.mu.RUnlock()

	// newest first; insertion order breaks creation-time ties
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return seq[matched[i].ID] > seq[matched[j].ID]
	})

	total := len(matched)
	return window(matched, page), total, nil
}

func (r *MemoryTicketRepository) ListIDsByAssignee(ctx context.Context, agentID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []string
	for _, ticket := range r.tickets {
		if ticket.AssignedAgent != nil && *ticket.AssignedAgent == agentID {
			ids = append(ids, ticket.ID)
		}
	}
	return ids, nil
}

func ticketDoc(t domain.Ticket) map[string]any {
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

// MemoryUserRepository is an in-memory UserRepository.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

// NewMemoryUserRepository builds an empty store.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]domain.User)}
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (r *MemoryUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findBy(func(u domain.User) bool { return u.Username == username })
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findBy(func(u domain.User) bool { return u.Email == email })
}

func (r *MemoryUserRepository) findBy(match func(domain.User) bool) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if match(user) {
			found := user
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepository) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return ErrNotFound
	}
	user.UpdatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *MemoryUserRepository) List(ctx context.Context, role *domain.Role, page query.PageRequest) ([]domain.User, int, error) {
	r.mu.RLock()
	matched := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		if role == nil || user.Role == *role {
			matched = append(matched, user)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return strings.Compare(matched[i].Username, matched[j].Username) < 0
	})
	total := len(matched)
	return window(matched, page), total, nil
}

func (r *MemoryUserRepository) ListAgents(ctx context.Context) ([]domain.User, error) {
	role := domain.RoleAgent
	agents, _, err := r.List(context.Background(), &role, query.PageRequest{Page: 1, Limit: 100})
	return agents, err
}

// MemoryActivityLogRepository is an in-memory ActivityLogRepository.
type MemoryActivityLogRepository struct {
	mu      sync.RWMutex
	entries []domain.ActivityLogEntry
}

// NewMemoryActivityLogRepository builds an empty store.
func NewMemoryActivityLogRepository() *MemoryActivityLogRepository {
	return &MemoryActivityLogRepository{}
}

func (r *MemoryActivityLogRepository) Append(ctx context.Context, entry *domain.ActivityLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = uuid.NewString()
	entry.Timestamp = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *MemoryActivityLogRepository) List(ctx context.Context, filter query.Expr, page query.PageRequest) ([]domain.ActivityLogEntry, int, error) {
	r.mu.RLock()
	matched := make([]domain.ActivityLogEntry, 0, len(r.entries))
	// iterate newest first
	for i := len(r.entries) - 1; i >= 0; i-- {
		if filter.Matches(activityDoc(r.entries[i])) {
			matched = append(matched, r.entries[i])
		}
	}
	r.mu.RUnlock()

	total := len(matched)
	return window(matched, page), total, nil
}

func (r *MemoryActivityLogRepository) ListByEntity(ctx context.Context, entityType domain.AuditEntityType, entityID string) ([]domain.ActivityLogEntry, error) {
	filter := query.And(
		query.Eq("entityType", string(entityType)),
		query.Eq("entityId", entityID),
	)
	entries, _, err := r.List(context.Background(), filter, query.PageRequest{Page: 1, Limit: 100})
	return entries, err
}

// Entries returns a copy of everything appended, oldest first.
func (r *MemoryActivityLogRepository) Entries() []domain.ActivityLogEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.ActivityLogEntry{}, r.entries...)
}

func activityDoc(e domain.ActivityLogEntry) map[string]any {
	var user any
	if e.UserID != nil {
		user = *e.UserID
	}
	return map[string]any{
		"user":       user,
		"entityType": string(e.EntityType),
		"entityId":   e.EntityID,
	}
}

func window[T any](items []T, page query.PageRequest) []T {
	if page.Limit <= 0 {
		return items
	}
	start := page.Skip
	if start > len(items) {
		start = len(items)
	}
	end := start + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return append([]T{}, items[start:end]...)
}
