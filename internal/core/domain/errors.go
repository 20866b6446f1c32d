package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCriteria        = errors.New("invalid criteria")
	ErrValidation             = errors.New("validation failed")
	ErrInvalidTransition      = errors.New("invalid transition")
	ErrMissingExplanation     = errors.New("missing decision explanation")
	ErrConcurrentModification = errors.New("concurrent modification")
	ErrContextExpired         = errors.New("context expired")
	ErrUpstreamUnavailable    = errors.New("upstream unavailable")
	ErrNotFound               = errors.New("not found")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
