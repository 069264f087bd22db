package triptych

import (
	"errors"
	"fmt"
)

// Kind is a classification of error type.
type Kind string

const (
	InvalidInput      Kind = "invalid_input"
	Transport         Kind = "transport"
	StatusCode        Kind = "status_code"
	MissingCredential Kind = "missing_credential"
	Invariant         Kind = "invariant"
)

// LanguageModelError represents errors from the language model layer. Any of
// these is a recoverable generation failure for the pipeline: the affected
// artifact keeps its last committed state and sibling tasks are unaffected.
type LanguageModelError struct {
	Kind    Kind
	Message string
	Err     error
	// The provider name
	Provider string
	// The status for the StatusCode error kind
	Status int
}

func (e *LanguageModelError) Error() string {
	switch e.Kind {
	case InvalidInput:
		return fmt.Sprintf("invalid input: %s", e.Message)
	case Transport:
		return fmt.Sprintf("transport error: %s", e.Err)
	case StatusCode:
		return fmt.Sprintf("status error: %s (status %d)", e.Message, e.Status)
	case MissingCredential:
		return fmt.Sprintf("missing credential for %s: %s", e.Provider, e.Message)
	case Invariant:
		return fmt.Sprintf("invariant from %s: %s", e.Provider, e.Message)
	default:
		return e.Message
	}
}

// Unwrap allows errors.Is / errors.As to work with wrapped errors.
func (e *LanguageModelError) Unwrap() error {
	return e.Err
}

func NewInvalidInputError(msg string) *LanguageModelError {
	return &LanguageModelError{Kind: InvalidInput, Message: msg}
}

func NewTransportError(err error) *LanguageModelError {
	return &LanguageModelError{Kind: Transport, Err: err}
}

func NewStatusCodeError(status int, body string) *LanguageModelError {
	return &LanguageModelError{Kind: StatusCode, Message: body, Status: status}
}

func NewMissingCredentialError(provider string, msg string) *LanguageModelError {
	return &LanguageModelError{Kind: MissingCredential, Message: msg, Provider: provider}
}

func NewInvariantError(provider string, msg string) *LanguageModelError {
	return &LanguageModelError{Kind: Invariant, Message: msg, Provider: provider}
}

// ErrBusy is returned by Submit while a previous submission is still in
// flight. In-flight work is never cancelled; callers retry after settlement.
var ErrBusy = errors.New("triptych: a submission is already in flight")

// ErrNoSession is returned by the variation flow when the target session does
// not exist.
var ErrNoSession = errors.New("triptych: session not found")
