package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrInputMissing      = errors.New("input missing")
	ErrParse             = errors.New("parse failure")
	ErrValidation        = errors.New("validation failure")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrIO                = errors.New("i/o failure")
	ErrTemporary         = errors.New("temporary failure")
	ErrLocked            = errors.New("collection locked by another run")
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
