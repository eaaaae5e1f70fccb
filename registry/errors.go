package registry

import "errors"

var (
	// ErrDuplicateIdentifier is returned in strict mode when a record with the
	// same identifier is already held by the registry.
	ErrDuplicateIdentifier = errors.New("duplicate identifier")

	// ErrUnknownRecipient is returned when delivery is enabled and a message
	// is addressed to a chatbot that was never registered.
	ErrUnknownRecipient = errors.New("unknown recipient")

	// ErrNotFound is returned by lookups for identifiers the registry does not hold.
	ErrNotFound = errors.New("not found")
)
