package rsvp

import "errors"

var (
	ErrPartyNotFound = errors.New("party not found")
	ErrPartyConflict = errors.New("party conflicts with an existing party")
)

// ValidationError is returned for submissions the client has to fix. Message
// is safe to show to the guest.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(message string) error {
	return &ValidationError{Message: message}
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}
