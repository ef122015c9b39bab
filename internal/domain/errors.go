package domain

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	// Validation
	ErrValidation = errors.New("validation failed")

	// Venue errors
	ErrVenueNotFound  = errors.New("venue not found")
	ErrVenueNameTaken = errors.New("venue name already in use")
	ErrVenueInUse     = errors.New("venue has active events")

	// Event errors
	ErrEventNotFound     = errors.New("event not found")
	ErrInvalidTransition = errors.New("invalid event state transition")
	ErrEventNotPublished = errors.New("event is not open for ticket issuance")

	// Ticket errors
	ErrTicketNotFound     = errors.New("ticket not found")
	ErrCapacityExceeded   = errors.New("venue capacity exceeded")
	ErrDuplicateTicket    = errors.New("user already holds a ticket for this event")
	ErrTicketExpired      = errors.New("ticket has expired")
	ErrTicketRevoked      = errors.New("ticket has been revoked")
	ErrInvalidTicketState = errors.New("ticket is not in a valid state for this operation")

	// Infrastructure errors
	ErrUnavailable = errors.New("service temporarily unavailable")
)

// NewValidationError wraps ErrValidation with a human-readable detail
func NewValidationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrVenueNotFound) ||
		errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrTicketNotFound)
}

// IsConflictError checks if the error is a conflict error
func IsConflictError(err error) bool {
	return errors.Is(err, ErrVenueNameTaken) ||
		errors.Is(err, ErrVenueInUse) ||
		errors.Is(err, ErrCapacityExceeded) ||
		errors.Is(err, ErrDuplicateTicket)
}

// IsStateError checks if the error is a state machine violation
func IsStateError(err error) bool {
	return errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrEventNotPublished) ||
		errors.Is(err, ErrInvalidTicketState) ||
		errors.Is(err, ErrTicketRevoked)
}

// IsExpiredError checks if the error is an expiration error
func IsExpiredError(err error) bool {
	return errors.Is(err, ErrTicketExpired)
}

// IsUnavailableError checks if the error is an infrastructure error
func IsUnavailableError(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
