package model

import "errors"

// ErrNilEntry is returned by the store when it is handed no entry at all.
// It signals a programming error in the caller, not bad user input.
var ErrNilEntry = errors.New("entry cannot be nil")

// ValidationError reports entry data that was rejected before storage.
// The message is safe to show to the person who submitted the data.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError returns a *ValidationError carrying msg.
func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

// IsValidation reports whether err is, or wraps, a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
