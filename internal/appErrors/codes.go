package appErrors

// Error codes grouped by domain.
const (
	// Validation
	CodeValidationFailed  ErrorCode = "VALIDATION_FAILED"
	CodeInvalidTimeWindow ErrorCode = "INVALID_TIME_WINDOW"
	CodeInvalidRate       ErrorCode = "INVALID_RATE"

	// Resources
	CodeShiftNotFound       ErrorCode = "SHIFT_NOT_FOUND"
	CodeApplicationNotFound ErrorCode = "APPLICATION_NOT_FOUND"

	// State machine conflicts
	CodeInvalidShiftStatus    ErrorCode = "INVALID_SHIFT_STATUS"
	CodeApplicationNotPending ErrorCode = "APPLICATION_NOT_PENDING"
	CodeDuplicateApplication  ErrorCode = "DUPLICATE_APPLICATION"
	CodeNotCandidate          ErrorCode = "NOT_CANDIDATE"
	CodeNoAcceptedCandidate   ErrorCode = "NO_ACCEPTED_CANDIDATE"
	CodeAlreadyAssigned       ErrorCode = "ALREADY_ASSIGNED"
	CodeStaleVersion          ErrorCode = "STALE_VERSION"

	// Scheduling
	CodeScheduleOverlap ErrorCode = "SCHEDULE_OVERLAP"

	// Authorization
	CodeForbidden ErrorCode = "FORBIDDEN"

	// System
	CodeInternalError ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError ErrorCode = "DATABASE_ERROR"
)
