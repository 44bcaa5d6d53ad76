package audit

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// Outcome is the terminal state of one observation.
type Outcome int

const (
	// OutcomeLogged means an activity entry was appended.
	OutcomeLogged Outcome = iota
	// OutcomeSkipped means no entry was warranted or the entity id could
	// not be determined; a diagnostic is emitted for the latter.
	OutcomeSkipped
	// OutcomeLogFailed means the append itself failed; the failure is
	// absorbed and reported as a diagnostic.
	OutcomeLogFailed
)

// Recorder observes completed mutations and appends immutable activity
// entries. It is the only writer of the activity log. Observation runs
// after the response to the caller is already determined, so no path in
// here may surface an error to the request; failures become diagnostics.
type Recorder struct {
	log    repository.ActivityLogRepository
	logger *zap.Logger
}

// NewRecorder constructs the recorder.
func NewRecorder(log repository.ActivityLogRepository, logger *zap.Logger) *Recorder {
	return &Recorder{log: log, logger: logger}
}

// Register subscribes the recorder to every mutation event type.
func (r *Recorder) Register(dispatcher events.Dispatcher) {
	for _, eventType := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketUpdated,
		events.EventTicketAssigned,
		events.EventTicketDeleted,
		events.EventUserUpdated,
		events.EventUserDeleted,
		events.EventNotificationSent,
	} {
		dispatcher.Subscribe(eventType, func(ctx context.Context, ev events.MutationEvent) {
			r.Observe(ctx, ev)
		})
	}
}

// Observe derives the affected entity and appends a log entry. Only
// successful outcomes (200-399) are recorded. The returned Outcome exists
// for tests and diagnostics; callers in the request path ignore it.
func (r *Recorder) Observe(ctx context.Context, ev events.MutationEvent) Outcome {
	if ev.Outcome < 200 || ev.Outcome >= 400 {
		return OutcomeSkipped
	}

	entityID := resolveEntityID(ev)
	if entityID == "" {
		r.logger.Warn("could not determine entity id, skipping activity entry",
			zap.String("action", string(ev.Action)),
			zap.String("entity_type", string(ev.EntityType)))
		return OutcomeSkipped
	}

	entry := &domain.ActivityLogEntry{
		UserID:     ev.ActorID,
		Action:     ev.Action,
		EntityType: ev.EntityType,
		EntityID:   entityID,
		Changes:    buildChangeSet(ev),
		Metadata:   ev.Metadata,
	}

	if err := r.log.Append(ctx, entry); err != nil {
		r.logger.Error("failed to append activity entry",
			zap.String("action", string(ev.Action)),
			zap.String("entity_type", string(ev.EntityType)),
			zap.String("entity_id", entityID),
			zap.Error(err))
		return OutcomeLogFailed
	}
	return OutcomeLogged
}

// resolveEntityID picks the entity identifier in precedence order: the
// request path parameter, the identifier the operation recorded as its
// target, then the id embedded in the returned entity. Candidates that
// are not syntactically valid identifiers are passed over.
func resolveEntityID(ev events.MutationEvent) string {
	candidates := []string{ev.ParamID, ev.TargetID}
	if ev.Result != nil {
		if id, ok := ev.Result["id"].(string); ok {
			candidates = append(candidates, id)
		}
	}
	for _, candidate := range candidates {
		if candidate != "" && uuid.Validate(candidate) == nil {
			return candidate
		}
	}
	return ""
}

// buildChangeSet shapes the before/after payload per action. Creation
// and assignment carry only the resulting state; updates pair the
// pre-mutation snapshot (nil when the snapshot read failed) with the
// result.
func buildChangeSet(ev events.MutationEvent) domain.ChangeSet {
	switch ev.Action {
	case domain.AuditActionCreate, domain.AuditActionAssign, domain.AuditActionNotify:
		return domain.ChangeSet{After: ev.Result}
	case domain.AuditActionUpdate:
		return domain.ChangeSet{Before: ev.Before, After: ev.Result}
	case domain.AuditActionDelete:
		return domain.ChangeSet{After: ev.Result}
	}
	return domain.ChangeSet{}
}
