package gateway

import (
	"errors"
	"fmt"

	"github.com/Desarso/fitcoach/models"
	"github.com/Desarso/fitcoach/models/gemini"
)

var (
	// ErrEmptyResponse is returned when the model answers with no usable text.
	ErrEmptyResponse = errors.New("model returned an empty response")
	// ErrVideoTimeout ends a video job that outlived its poll budget.
	ErrVideoTimeout = errors.New("video generation did not finish in time")
	// ErrCredentialInvalid marks a rejection of the API key by the remote API.
	ErrCredentialInvalid = errors.New("API credential rejected")
	// ErrNoCredential means no API key is configured and none was selected.
	ErrNoCredential = errors.New("no API key selected")
	// ErrInvalidInput wraps caller mistakes that never reach the remote API.
	ErrInvalidInput = errors.New("invalid input")
)

// GenerationError wraps any failure of a remote generation call.
type GenerationError struct {
	Op   string
	Mode models.Mode
	Err  error
}

func (e *GenerationError) Error() string {
	if e.Mode != "" {
		return fmt.Sprintf("%s (%s) failed: %v", e.Op, e.Mode, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// IsCredentialError reports whether err, at any depth, is a credential
// rejection.
func IsCredentialError(err error) bool {
	return errors.Is(err, ErrCredentialInvalid) || gemini.IsCredentialError(err)
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
