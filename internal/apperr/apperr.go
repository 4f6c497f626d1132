package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindDuplicate
	KindNotFound
	KindGeneration
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindDuplicate:
		return "duplicate"
	case KindNotFound:
		return "not_found"
	case KindGeneration:
		return "generation"
	case KindPersistence:
		return "persistence"
	default:
		return "internal"
	}
}

// Error carries a failure kind, the operation that produced it, a message safe
// to show to the user and the underlying cause.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

var (
	ErrValidation  = &Error{Kind: KindValidation}
	ErrDuplicate   = &Error{Kind: KindDuplicate}
	ErrNotFound    = &Error{Kind: KindNotFound}
	ErrGeneration  = &Error{Kind: KindGeneration}
	ErrPersistence = &Error{Kind: KindPersistence}
)

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound) works
// for every not-found error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func New(kind Kind, op, message string, err error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

func Validation(op, message string) error {
	return New(KindValidation, op, message, nil)
}

func Duplicate(op, message string, err error) error {
	return New(KindDuplicate, op, message, err)
}

func NotFound(op, message string) error {
	return New(KindNotFound, op, message, nil)
}

func Generation(op, message string, err error) error {
	return New(KindGeneration, op, message, err)
}

func Persistence(op, message string, err error) error {
	return New(KindPersistence, op, message, err)
}

func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindDuplicate:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindGeneration:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage returns the message of the outermost *Error, or fallback when
// there is none.
func UserMessage(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}
