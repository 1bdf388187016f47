package deckchat

import (
	"fmt"
)

// Kind is a classification of error type.
type Kind string

const (
	InvalidInput Kind = "invalid_input"
	Transport    Kind = "transport"
	StatusCode   Kind = "status_code"
	Protocol     Kind = "protocol"
)

// ChatError represents errors from the chat client layer.
type ChatError struct {
	Kind    Kind
	Message string
	Err     error
	// The status for the StatusCode error kind
	Status int
}

func (e *ChatError) Error() string {
	switch e.Kind {
	case InvalidInput:
		return fmt.Sprintf("invalid input: %s", e.Message)
	case Transport:
		return fmt.Sprintf("transport error: %s", e.Err)
	case StatusCode:
		return fmt.Sprintf("status error: %s (status %d)", e.Message, e.Status)
	case Protocol:
		return fmt.Sprintf("protocol error: %s", e.Message)
	default:
		return e.Message
	}
}

// Unwrap allows errors.Is / errors.As to work with wrapped errors.
func (e *ChatError) Unwrap() error {
	return e.Err
}

// Helper constructors
func NewInvalidInputError(msg string) *ChatError {
	return &ChatError{Kind: InvalidInput, Message: msg}
}

func NewTransportError(err error) *ChatError {
	return &ChatError{Kind: Transport, Err: err}
}

func NewStatusCodeError(status int, body string) *ChatError {
	return &ChatError{Kind: StatusCode, Message: body, Status: status}
}

func NewProtocolError(msg string) *ChatError {
	return &ChatError{Kind: Protocol, Message: msg}
}
