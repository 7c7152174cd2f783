package handlers

// AppHandlers groups every handler for route registration.
type AppHandlers struct {
	ShiftHandler        *ShiftHandler
	ApplicationHandler  *ApplicationHandler
	NotificationHandler *NotificationHandler
	AuditHandler        *AuditHandler
}
