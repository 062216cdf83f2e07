package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

type ErrorKind int

const (
	KindNotFound ErrorKind = iota + 1
	KindConflict
	KindForbidden
)

// DomainError is a business rule violation that the API layer maps to a client error.
type DomainError struct {
	Kind    ErrorKind
	Message string
}

func (err DomainError) Error() string {
	return err.Message
}

func NewNotFoundError(msg string) error  { return &DomainError{Kind: KindNotFound, Message: msg} }
func NewConflictError(msg string) error  { return &DomainError{Kind: KindConflict, Message: msg} }
func NewForbiddenError(msg string) error { return &DomainError{Kind: KindForbidden, Message: msg} }

// IsKind reports whether the cause of err is a DomainError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	dErr, ok := errors.Cause(err).(*DomainError)
	return ok && dErr.Kind == kind
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
