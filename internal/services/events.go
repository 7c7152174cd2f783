package services

import "time"

// Domain event types. Exactly one shift.assigned event is emitted per
// successful confirm.
const (
	EventShiftCreated         = "shift.created"
	EventApplicationReceived  = "application.received"
	EventShiftOffered         = "shift.offered"
	EventOfferAccepted        = "offer.accepted"
	EventOfferDeclined        = "offer.declined"
	EventApplicationWithdrawn = "application.withdrawn"
	EventApplicationRejected  = "application.rejected"
	EventShiftAssigned        = "shift.assigned"
	EventShiftCompleted       = "shift.completed"
	EventShiftCancelled       = "shift.cancelled"
	EventCaregiverReleased    = "caregiver.released"
)

// Event describes a lifecycle transition for the notification and audit
// sinks. Events are submitted only after the transaction that produced them
// has committed.
type Event struct {
	Type          string
	ActorID       string
	ShiftID       string
	HomeID        string
	OperatorID    string
	ApplicationID string
	CaregiverID   string
	Details       map[string]interface{}
	OccurredAt    time.Time
}

// EventSink accepts events without blocking the caller; delivery is
// best-effort and never affects core correctness.
type EventSink interface {
	Submit(event Event)
}

type nopSink struct{}

func (nopSink) Submit(Event) {}

// NopSink discards every event. Used by tests that do not assert on events.
var NopSink EventSink = nopSink{}
