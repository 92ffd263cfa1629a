package location

import "errors"

// ErrUnauthenticated indicates a submission arrived without a contributor
// identity. Nothing is mutated.
var ErrUnauthenticated = errors.New("location: authentication required")

// ErrNotFound indicates the referenced film, shot, or estimate does not
// exist.
var ErrNotFound = errors.New("location: not found")

// InvalidInputError rejects malformed input before any store access.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "location: invalid input: " + e.Reason
}

func invalidInput(reason string) error {
	return &InvalidInputError{Reason: reason}
}

// IsInvalidInput reports whether err is an input validation failure.
func IsInvalidInput(err error) bool {
	var target *InvalidInputError
	return errors.As(err, &target)
}
