package scriptgen

import (
	"errors"
	"fmt"
)

var (
	// ErrCredentialMissing is returned when no model API credential is configured.
	ErrCredentialMissing = errors.New("credential missing")

	// ErrEmptyResponse is returned when the model answers without any text.
	ErrEmptyResponse = errors.New("empty response")
)

// ErrorKind classifies the terminal failures of a generation.
type ErrorKind string

const (
	KindCredentialMissing ErrorKind = "credential_missing"
	KindCallFailed        ErrorKind = "call_failed"
	KindEmptyResponse     ErrorKind = "empty_response"
)

// GenerationError is a terminal generation failure. No artifacts are written
// when one is returned.
type GenerationError struct {
	Kind ErrorKind
	Err  error
}

func (e *GenerationError) Error() string {
	switch e.Kind {
	case KindCallFailed:
		return fmt.Sprintf("model call failed: %v", e.Err)
	case KindEmptyResponse:
		return "empty response: the model returned no text"
	case KindCredentialMissing:
		return "credential missing: no model API key configured"
	default:
		return e.Err.Error()
	}
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// KindOf returns the ErrorKind of err, or "" when err is not a GenerationError.
func KindOf(err error) ErrorKind {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Kind
	}
	return ""
}
