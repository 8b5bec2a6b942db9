package handlers

const (
	SessionCookieName = "session_id"
	VisitorCookieName = "visitor_id"

	ErrInvalidFormData     = "Invalid form data"
	ErrTooManyRequests     = "Too many requests. Please try again later."
	ErrInvalidCSRFToken    = "Invalid or missing CSRF token"
	ErrInternalServerError = "Internal server error"
	ErrPageNotFound        = "Page not found"
)
