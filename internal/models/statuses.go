package models

type ShiftStatus string
type ApplicationStatus string
type ActorRole string

const (
	ShiftStatusOpen      ShiftStatus = "open"
	ShiftStatusOffered   ShiftStatus = "offered"
	ShiftStatusAssigned  ShiftStatus = "assigned"
	ShiftStatusCompleted ShiftStatus = "completed"
	ShiftStatusCancelled ShiftStatus = "cancelled"

	ApplicationStatusPending   ApplicationStatus = "pending"
	ApplicationStatusAccepted  ApplicationStatus = "accepted"
	ApplicationStatusRejected  ApplicationStatus = "rejected"
	ApplicationStatusWithdrawn ApplicationStatus = "withdrawn"

	ActorRoleOperator  ActorRole = "operator"
	ActorRoleCaregiver ActorRole = "caregiver"
	ActorRoleAdmin     ActorRole = "admin"
)

// IsTerminal reports whether the shift can no longer change state.
func (s ShiftStatus) IsTerminal() bool {
	return s == ShiftStatusCompleted || s == ShiftStatusCancelled
}

// IsTerminal reports whether the application can no longer change state.
func (s ApplicationStatus) IsTerminal() bool {
	return s == ApplicationStatusRejected || s == ApplicationStatusWithdrawn
}

func IsValidShiftStatus(s string) bool {
	switch ShiftStatus(s) {
	case ShiftStatusOpen, ShiftStatusOffered, ShiftStatusAssigned, ShiftStatusCompleted, ShiftStatusCancelled:
		return true
	}
	return false
}

func IsValidApplicationStatus(s string) bool {
	switch ApplicationStatus(s) {
	case ApplicationStatusPending, ApplicationStatusAccepted, ApplicationStatusRejected, ApplicationStatusWithdrawn:
		return true
	}
	return false
}

func IsValidActorRole(s string) bool {
	switch ActorRole(s) {
	case ActorRoleOperator, ActorRoleCaregiver, ActorRoleAdmin:
		return true
	}
	return false
}
