package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/andrebassi/confnav/internal/domain/entity"
)

// Sentinel errors returned by the browsing controller.
var (
	ErrValidation        = errors.New("validation failed")
	ErrStaleResponse     = errors.New("stale response discarded")
	ErrTimeout           = errors.New("request timed out")
	ErrNoGroupSelected   = errors.New("no group selected")
	ErrInvalidTransition = errors.New("invalid modal transition")
	ErrPageOutOfRange    = errors.New("page out of range")
	ErrBusy              = errors.New("request already in flight")
)

// ValidationError reports a draft or input that failed a local check.
// No network call is issued when it is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Message
	}
	return fmt.Sprintf("validation: %s %s", e.Field, e.Message)
}

// Is makes errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// FetchError wraps a failed list or detail retrieval.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// SubmitError wraps a failed create or update. The modal keeps the draft.
type SubmitError struct {
	Mode ModalMode
	Key  entity.ConfigKey
	Err  error
}

func (e *SubmitError) Error() string {
	verb := "update"
	if e.Mode == ModalCreating {
		verb = "create"
	}
	return fmt.Sprintf("%s %s: %v", verb, e.Key, e.Err)
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// classify turns context deadline failures into ErrTimeout while keeping
// the original error in the chain.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrTimeout) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}
