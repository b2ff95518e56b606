package services

import "strings"

// ValidationError aggregates every violated field's message from a create
// or update request into one human-readable string.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, ", ")
}
