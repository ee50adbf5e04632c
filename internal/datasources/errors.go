package datasources

import "errors"

var (
	// ErrNotFound is returned when a data source does not exist or belongs
	// to another user.
	ErrNotFound = errors.New("data source not found")
)

// ValidationError describes a rejected create request.
type ValidationError struct {
	Field string
	Issue string
}

func (e ValidationError) Error() string {
	return "validation: " + e.Field + " " + e.Issue
}
