package service

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
)

// NotificationSink delivers notifications. Implementations are
// fire-and-forget from the caller's perspective: delivery failures are
// the sink's problem to report, never the mutation's.
type NotificationSink interface {
	SendEmail(ctx context.Context, to, subject, body string) error
	SendSMS(ctx context.Context, to, message string) error
}

// NotificationRecord is one delivered notification.
type NotificationRecord struct {
	Kind      string
	To        string
	Subject   string
	Body      string
	Timestamp time.Time
}

// MemorySink records deliveries in memory. It backs tests and
// development runs; there is no process-wide shared state, each sink
// instance keeps its own log.
type MemorySink struct {
	mu      sync.Mutex
	records []NotificationRecord
}

// NewMemorySink builds an empty sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) SendEmail(ctx context.Context, to, subject, body string) error {
	s.record(NotificationRecord{Kind: "email", To: to, Subject: subject, Body: body})
	return nil
}

func (s *MemorySink) SendSMS(ctx context.Context, to, message string) error {
	s.record(NotificationRecord{Kind: "sms", To: to, Body: message})
	return nil
}

func (s *MemorySink) record(r NotificationRecord) {
	r.Timestamp = time.Now()
	s.mu.Lock()
	s.records = append(s.records, r)
	s.mu.Unlock()
}

// Records returns a copy of everything delivered so far.
func (s *MemorySink) Records() []NotificationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]NotificationRecord{}, s.records...)
}

// NotificationService reacts to ticket events by composing and sending
// notifications through the injected sink, then reports the delivery
// back as a NOTIFY event so it lands in the activity trail.
type NotificationService struct {
	sink       NotificationSink
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(sink NotificationSink, dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		sink:       sink,
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to the ticket events that notify.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleStatusChanged)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketAssigned)
	n.dispatcher.Subscribe(events.EventTicketDeleted, n.handleTicketDeleted)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, ev events.MutationEvent) {
	title, _ := ev.Result["title"].(string)
	message := fmt.Sprintf("Your ticket %q has been created successfully. Priority: %v, Status: %v",
		title, ev.Result["priority"], ev.Result["status"])
	n.email(ctx, ev, addressFor(ev.ActorName), "Ticket Created: "+title, message)
}

func (n *NotificationService) handleStatusChanged(ctx context.Context, ev events.MutationEvent) {
	title, _ := ev.Result["title"].(string)
	id, _ := ev.Result["id"].(string)
	message := fmt.Sprintf("Ticket #%s status changed from %q to %q by %s",
		id, fmt.Sprint(ev.Before["status"]), fmt.Sprint(ev.Result["status"]), ev.ActorName)
	n.email(ctx, ev, addressFor(creatorOf(ev.Result)), "Ticket Status Updated: "+title, message)
	n.sms(ctx, ev, n.cfg.SMSFallback, message)
}

func (n *NotificationService) handleTicketAssigned(ctx context.Context, ev events.MutationEvent) {
	title, _ := ev.Result["title"].(string)
	id, _ := ev.Result["id"].(string)
	message := fmt.Sprintf("Ticket #%s %q has been assigned to you by %s", id, title, ev.ActorName)
	agent, _ := ev.Result["assignedAgent"].(string)
	n.email(ctx, ev, addressFor(agent), "New Ticket Assigned: "+title, message)
	n.sms(ctx, ev, n.cfg.SMSFallback, message)
}

func (n *NotificationService) handleTicketDeleted(ctx context.Context, ev events.MutationEvent) {
	title, _ := ev.Before["title"].(string)
	id := ev.ParamID
	message := fmt.Sprintf("Ticket #%s %q has been deleted by %s", id, title, ev.ActorName)
	n.email(ctx, ev, addressFor(creatorOf(ev.Before)), "Ticket Deleted: "+title, message)
}

func (n *NotificationService) email(ctx context.Context, ev events.MutationEvent, to, subject, body string) {
	if err := n.sink.SendEmail(ctx, to, subject, body); err != nil {
		n.logger.Warn("email delivery failed", zap.String("to", to), zap.Error(err))
		return
	}
	n.reportDelivery(ctx, ev, map[string]any{"kind": "email", "to": to, "subject": subject})
}

func (n *NotificationService) sms(ctx context.Context, ev events.MutationEvent, to, message string) {
	if to == "" {
		return
	}
	if err := n.sink.SendSMS(ctx, to, message); err != nil {
		n.logger.Warn("sms delivery failed", zap.String("to", to), zap.Error(err))
		return
	}
	n.reportDelivery(ctx, ev, map[string]any{"kind": "sms", "to": to})
}

// reportDelivery appends a NOTIFY entry for the ticket the notification
// was about. Failures here are diagnostics only.
func (n *NotificationService) reportDelivery(ctx context.Context, ev events.MutationEvent, details map[string]any) {
	if n.dispatcher == nil {
		return
	}
	targetID := ev.ParamID
	if targetID == "" {
		targetID = ev.TargetID
	}
	if targetID == "" && ev.Result != nil {
		targetID, _ = ev.Result["id"].(string)
	}
	n.dispatcher.Publish(ctx, events.MutationEvent{
		ID:         uuid.NewString(),
		Type:       events.EventNotificationSent,
		Action:     domain.AuditActionNotify,
		EntityType: ev.EntityType,
		TargetID:   targetID,
		Result:     details,
		ActorID:    ev.ActorID,
		Outcome:    http.StatusOK,
		Timestamp:  time.Now(),
	})
}

func addressFor(username string) string {
	if username == "" {
		username = "unknown"
	}
	return username + "@example.com"
}

func creatorOf(snapshot map[string]any) string {
	if snapshot == nil {
		return ""
	}
	creator, _ := snapshot["createdBy"].(string)
	return creator
}
