// Package apperror defines the error taxonomy shared by the stores and workflow services.
//
// Every error crossing a usecase boundary is an *Error carrying a Kind. Callers branch on
// the kind with errors.Is against the sentinels below, or pull details out with errors.As.
package apperror

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindPersistence  Kind = "persistence"
	KindFraudDecline Kind = "fraud_decline"
	KindGateway      Kind = "gateway"
	KindConflict     Kind = "conflict"
)

type Error struct {
	Kind    Kind
	Op      string
	Message string
	Code    string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinels by kind, and by code when the sentinel carries one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

var (
	ErrValidation   = &Error{Kind: KindValidation}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrPersistence  = &Error{Kind: KindPersistence}
	ErrFraudDecline = &Error{Kind: KindFraudDecline}
	ErrGateway      = &Error{Kind: KindGateway}
	ErrConflict     = &Error{Kind: KindConflict}

	ErrAlreadyConfirmed  = &Error{Kind: KindConflict, Code: "ALREADY_CONFIRMED"}
	ErrInvalidTransition = &Error{Kind: KindConflict, Code: "INVALID_TRANSITION"}
)

func Validation(op, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: fmt.Sprintf(format, args...), Code: "VALIDATION_ERROR"}
}

func NotFound(op, format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: fmt.Sprintf(format, args...), Code: "NOT_FOUND"}
}

func Persistence(op string, err error) *Error {
	return &Error{Kind: KindPersistence, Op: op, Message: "storage failure", Code: "PERSISTENCE_ERROR", Err: err}
}

func FraudDecline(op, message string) *Error {
	return &Error{Kind: KindFraudDecline, Op: op, Message: message, Code: "FRAUD_DECLINE"}
}

func Gateway(op, code, message string) *Error {
	return &Error{Kind: KindGateway, Op: op, Message: message, Code: code}
}

func Conflict(op, code, format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Op: op, Message: fmt.Sprintf(format, args...), Code: code}
}

// KindOf reports the kind of err, treating unknown errors as persistence failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindPersistence
}

// CodeOf returns the machine readable code of err, if any.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Code != "" {
		return e.Code
	}
	return string(KindOf(err))
}

// Wrap converts a store error into a persistence error unless it already is an *Error.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return Persistence(op, err)
}
