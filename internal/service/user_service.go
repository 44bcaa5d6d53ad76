package service

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/query"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// UserService covers account management and self-service profile
// operations. Admin-only gating happens at the route layer; operations
// that must only ever touch the caller's own account take no target id.
type UserService struct {
	users      repository.UserRepository
	cache      auth.PrincipalCache
	dispatcher events.Dispatcher
	bcryptCost int
}

// UserDependencies bundles collaborators for the user service.
type UserDependencies struct {
	UserRepo   repository.UserRepository
	Cache      auth.PrincipalCache
	Dispatcher events.Dispatcher
	BcryptCost int
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	return &UserService{
		users:      deps.UserRepo,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		bcryptCost: deps.BcryptCost,
	}
}

// Agents lists all users holding the agent role.
func (s *UserService) Agents(ctx context.Context) ([]domain.User, error) {
	return s.users.ListAgents(ctx)
}

// List returns users with an optional role filter, paginated.
func (s *UserService) List(ctx context.Context, roleFilter string, pageRaw, limitRaw string) ([]domain.User, int, error) {
	var role *domain.Role
	if roleFilter != "" {
		r := domain.Role(roleFilter)
		role = &r
	}
	page := query.NormalizePage(pageRaw, limitRaw)
	return s.users.List(ctx, role, page)
}

// Delete removes a user account.
func (s *UserService) Delete(ctx context.Context, caller domain.Identity, id string, meta RequestMeta) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "User")
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return nil, mapStoreError(err, "User")
	}
	s.invalidate(ctx, id)

	s.publish(ctx, events.MutationEvent{
		Type:       events.EventUserDeleted,
		Action:     domain.AuditActionDelete,
		EntityType: domain.AuditEntityUser,
		ParamID:    id,
		Result:     map[string]any{"deleted": true},
		ActorID:    actorRef(caller),
		ActorName:  caller.Username,
		Outcome:    http.StatusOK,
		Metadata:   meta,
	})
	return user, nil
}

// UpdateRole changes a user's role.
func (s *UserService) UpdateRole(ctx context.Context, caller domain.Identity, id string, role domain.Role, meta RequestMeta) (*domain.User, error) {
	if !domain.ValidRole(role) {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": role})
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "User")
	}

	user.Role = role
	if err := s.users.Update(ctx, user); err != nil {
		return nil, mapStoreError(err, "User")
	}
	s.invalidate(ctx, id)

	s.publish(ctx, events.MutationEvent{
		Type:       events.EventUserUpdated,
		Action:     domain.AuditActionUpdate,
		EntityType: domain.AuditEntityUser,
		ParamID:    id,
		Result:     map[string]any{"id": user.ID, "role": string(role)},
		ActorID:    actorRef(caller),
		ActorName:  caller.Username,
		Outcome:    http.StatusOK,
		Metadata:   meta,
	})
	return user, nil
}

// Profile returns the caller's own account.
func (s *UserService) Profile(ctx context.Context, caller domain.Identity) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, caller.ID)
	if err != nil {
		return nil, mapStoreError(err, "User")
	}
	return user, nil
}

// ProfileUpdate is a partial self-service profile change.
type ProfileUpdate struct {
	Username string
	Email    string
}

// UpdateProfile changes the caller's own username or email. Role and
// password are unreachable from here.
func (s *UserService) UpdateProfile(ctx context.Context, caller domain.Identity, update ProfileUpdate, meta RequestMeta) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, caller.ID)
	if err != nil {
		return nil, mapStoreError(err, "User")
	}

	changes := map[string]any{"id": user.ID}
	if username := strings.TrimSpace(update.Username); username != "" && username != user.Username {
		if existing, err := s.users.GetByUsername(ctx, username); err == nil && existing.ID != user.ID {
			return nil, apperrors.NewValidationError("username already exists", nil)
		}
		user.Username = username
		changes["username"] = username
	}
	if email := strings.ToLower(strings.TrimSpace(update.Email)); email != "" && email != user.Email {
		if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing.ID != user.ID {
			return nil, apperrors.NewValidationError("email already exists", nil)
		}
		user.Email = email
		changes["email"] = email
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, mapStoreError(err, "User")
	}
	s.invalidate(ctx, caller.ID)

	s.publish(ctx, events.MutationEvent{
		Type:       events.EventUserUpdated,
		Action:     domain.AuditActionUpdate,
		EntityType: domain.AuditEntityUser,
		TargetID:   user.ID,
		Result:     changes,
		ActorID:    actorRef(caller),
		ActorName:  caller.Username,
		Outcome:    http.StatusOK,
		Metadata:   meta,
	})
	return user, nil
}

// ChangePassword verifies the old password and stores a new hash for the
// caller's own account.
func (s *UserService) ChangePassword(ctx context.Context, caller domain.Identity, oldPassword, newPassword string, meta RequestMeta) error {
	user, err := s.users.GetByID(ctx, caller.ID)
	if err != nil {
		return mapStoreError(err, "User")
	}
	if err := auth.ComparePassword(user.PasswordHash, oldPassword); err != nil {
		return apperrors.NewValidationError("old password is incorrect", nil)
	}

	hashed, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	user.PasswordHash = hashed
	if err := s.users.Update(ctx, user); err != nil {
		return mapStoreError(err, "User")
	}
	s.invalidate(ctx, caller.ID)

	s.publish(ctx, events.MutationEvent{
		Type:       events.EventUserUpdated,
		Action:     domain.AuditActionUpdate,
		EntityType: domain.AuditEntityUser,
		TargetID:   user.ID,
		Result:     map[string]any{"id": user.ID, "password": true},
		ActorID:    actorRef(caller),
		ActorName:  caller.Username,
		Outcome:    http.StatusOK,
		Metadata:   meta,
	})
	return nil
}

func (s *UserService) invalidate(ctx context.Context, id string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, id)
	}
}

func (s *UserService) publish(ctx context.Context, event events.MutationEvent) {
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
