package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrItemNotFound signals a missing catalog item.
	ErrItemNotFound = errors.New("item not found")
	// ErrUnknownQueryType signals a named-query key outside the fixed catalog.
	ErrUnknownQueryType = errors.New("unknown query type")
	// ErrInvalidQuery signals a malformed or unsupported filter field or sort key.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrValidation signals a reporter argument constraint violation.
	ErrValidation = errors.New("validation failed")
	// ErrStoreUnavailable signals a record store I/O failure. Never retried.
	ErrStoreUnavailable = errors.New("record store unavailable")
	// ErrAgentUnavailable signals that no language model client is configured.
	ErrAgentUnavailable = errors.New("agent not configured")
	// ErrChatProviderError signals a chat completion API failure.
	ErrChatProviderError = errors.New("chat completion provider error")
)

// UnknownQueryTypeError wraps ErrUnknownQueryType with the offending key.
type UnknownQueryTypeError struct {
	Key string
}

func (e *UnknownQueryTypeError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownQueryType.Error(), e.Key)
}

func (e *UnknownQueryTypeError) Unwrap() error { return ErrUnknownQueryType }

// NewUnknownQueryType creates an unknown query type error.
func NewUnknownQueryType(key string) error {
	return &UnknownQueryTypeError{Key: key}
}

// InvalidQueryError wraps ErrInvalidQuery with the offending field.
type InvalidQueryError struct {
	Field  string
	Reason string
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("%s: field %q: %s", ErrInvalidQuery.Error(), e.Field, e.Reason)
}

func (e *InvalidQueryError) Unwrap() error { return ErrInvalidQuery }

// NewInvalidQuery creates an invalid query error for a single field.
func NewInvalidQuery(field, reason string) error {
	return &InvalidQueryError{Field: field, Reason: reason}
}
