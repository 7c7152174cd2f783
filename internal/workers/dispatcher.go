package workers

import (
	"context"

	"careshift_backend/internal/logger"
	"careshift_backend/internal/services"
)

// NotificationSink receives lifecycle events for delivery to a recipient.
// Best-effort: a failure is logged and dropped, never retried into the
// transaction that produced the event.
type NotificationSink interface {
	Notify(ctx context.Context, recipientID, notificationType string, payload map[string]interface{}) error
}

// AuditLogger records who did what to which resource.
type AuditLogger interface {
	Record(ctx context.Context, actorID, action, resourceType, resourceID string, details map[string]interface{}) error
}

// Dispatcher decouples the core transactions from their side effects: services
// submit events to a buffered channel, a single worker goroutine fans them out
// to the notification and audit sinks.
type Dispatcher struct {
	queue    chan services.Event
	notifier NotificationSink
	audit    AuditLogger
	done     chan struct{}
}

func NewDispatcher(queueSize int, notifier NotificationSink, audit AuditLogger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Dispatcher{
		queue:    make(chan services.Event, queueSize),
		notifier: notifier,
		audit:    audit,
		done:     make(chan struct{}),
	}
}

// Submit never blocks. When the queue is full the event is dropped with a
// warning; core correctness never depends on delivery.
func (d *Dispatcher) Submit(event services.Event) {
	select {
	case d.queue <- event:
	default:
		logger.Warn("event queue full, dropping event", "type", event.Type, "shift_id", event.ShiftID)
	}
}

// Start launches the worker goroutine. It drains the queue until ctx is
// cancelled, then processes whatever is still buffered and exits.
func (d *Dispatcher) Start(ctx context.Context) {
	go func() {
		defer close(d.done)
		for {
			select {
			case <-ctx.Done():
				d.drain()
				return
			case event := <-d.queue:
				d.process(event)
			}
		}
	}()
}

// Wait blocks until the worker goroutine has exited.
func (d *Dispatcher) Wait() {
	<-d.done
}

func (d *Dispatcher) drain() {
	for {
		select {
		case event := <-d.queue:
			d.process(event)
		default:
			return
		}
	}
}

func (d *Dispatcher) process(event services.Event) {
	ctx := context.Background()

	resourceType, resourceID := eventResource(event)
	err := d.audit.Record(ctx, event.ActorID, event.Type, resourceType, resourceID, auditDetails(event))
	logger.WorkerLog("dispatcher", "audit "+event.Type, err)

	recipient, notificationType := eventRecipient(event)
	if recipient == "" {
		return
	}
	err = d.notifier.Notify(ctx, recipient, notificationType, notificationPayload(event))
	logger.WorkerLog("dispatcher", "notify "+event.Type, err)
}

func eventResource(event services.Event) (string, string) {
	switch event.Type {
	case services.EventApplicationReceived,
		services.EventOfferAccepted,
		services.EventOfferDeclined,
		services.EventApplicationWithdrawn,
		services.EventApplicationRejected:
		return "application", event.ApplicationID
	default:
		return "shift", event.ShiftID
	}
}

// eventRecipient maps an event to the party that cares about it. An empty
// recipient means audit-only.
func eventRecipient(event services.Event) (string, string) {
	switch event.Type {
	case services.EventApplicationReceived:
		return event.OperatorID, "application_received"
	case services.EventOfferAccepted:
		return event.OperatorID, "offer_accepted"
	case services.EventOfferDeclined:
		return event.OperatorID, "offer_declined"
	case services.EventApplicationWithdrawn:
		return event.OperatorID, "application_withdrawn"
	case services.EventShiftOffered:
		return event.CaregiverID, "shift_offered"
	case services.EventApplicationRejected:
		return event.CaregiverID, "application_rejected"
	case services.EventShiftAssigned:
		return event.CaregiverID, "shift_assigned"
	case services.EventShiftCompleted:
		return event.CaregiverID, "shift_completed"
	case services.EventCaregiverReleased:
		return event.CaregiverID, "caregiver_released"
	default:
		return "", ""
	}
}

func notificationPayload(event services.Event) map[string]interface{} {
	payload := map[string]interface{}{
		"shift_id": event.ShiftID,
	}
	if event.HomeID != "" {
		payload["home_id"] = event.HomeID
	}
	if event.ApplicationID != "" {
		payload["application_id"] = event.ApplicationID
	}
	for key, value := range event.Details {
		payload[key] = value
	}
	return payload
}

func auditDetails(event services.Event) map[string]interface{} {
	details := map[string]interface{}{}
	if event.ApplicationID != "" {
		details["application_id"] = event.ApplicationID
	}
	if event.CaregiverID != "" {
		details["caregiver_id"] = event.CaregiverID
	}
	if event.HomeID != "" {
		details["home_id"] = event.HomeID
	}
	for key, value := range event.Details {
		details[key] = value
	}
	return details
}
