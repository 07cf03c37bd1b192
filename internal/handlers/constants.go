package handlers

const (
	ErrInvalidRequest      = "Invalid request body"
	ErrUnauthenticated     = "Missing or invalid bearer token"
	ErrInternalServerError = "Internal server error"
	ErrBusy                = "Duel is busy, try again"
)

// Error kinds that do not come from the duel engine
const (
	KindInvalidRequest  = "invalid_request"
	KindUnauthenticated = "unauthenticated"
	KindBusy            = "busy"
	KindInternal        = "internal"
)
