package common

import (
	"errors"
	"fmt"
)

// Error taxonomy of the service:
//   - ValidationError: client-supplied data insufficient, maps to 400.
//   - NotFoundError: referenced user/phone absent, maps to 404.
//   - DependencyError: a store, directory or transport call failed, maps to
//     500 with the underlying detail surfaced for debuggability.

type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func NewValidationError(reason string) error {
	return &ValidationError{Reason: reason}
}

type NotFoundError struct {
	Reason string
}

func (e *NotFoundError) Error() string {
	return e.Reason
}

func NewNotFoundError(reason string) error {
	return &NotFoundError{Reason: reason}
}

type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}

func NewDependencyError(op string, err error) error {
	return &DependencyError{Op: op, Err: err}
}

func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}

func AsNotFoundError(err error) (*NotFoundError, bool) {
	var nfe *NotFoundError
	ok := errors.As(err, &nfe)
	return nfe, ok
}

func AsDependencyError(err error) (*DependencyError, bool) {
	var de *DependencyError
	ok := errors.As(err, &de)
	return de, ok
}
