package apperrors

import (
	"errors"
	"fmt"
)

// ValidationError reports missing or malformed client input.
type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "Not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

// ForbiddenError is returned when the caller does not own the resource.
type ForbiddenError struct {
	Msg string
}

func (e ForbiddenError) Error() string {
	if e.Msg == "" {
		return "Forbidden"
	}
	return e.Msg
}

// UnauthorizedError means the caller could not be authenticated.
type UnauthorizedError struct {
	Msg string
}

func (e UnauthorizedError) Error() string {
	if e.Msg == "" {
		return "Unauthorized"
	}
	return e.Msg
}

// ConflictError covers seat range, duplicate seat and already-booked
// rejections as well as state conflicts such as double cancellation.
type ConflictError struct {
	Msg   string
	Seats []int64
	Err   error
}

func (e ConflictError) Error() string {
	if e.Msg == "" {
		return "Conflict"
	}
	return e.Msg
}

func (e ConflictError) Unwrap() error { return e.Err }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	default:
		return "internal error"
	}
}

func (e InternalError) Unwrap() error { return e.Err }

func Validation(msg string) error { return ValidationError{Msg: msg} }

func NotFound(resource string) error { return NotFoundError{Resource: resource} }

func Forbidden(msg string) error { return ForbiddenError{Msg: msg} }

func Unauthorized(msg string) error { return UnauthorizedError{Msg: msg} }

func Conflict(msg string) error { return ConflictError{Msg: msg} }

// Internal wraps a store or infrastructure failure.
func Internal(msg string, err error) error { return InternalError{Msg: msg, Err: err} }

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsForbidden(err error) bool {
	var target ForbiddenError
	return errors.As(err, &target)
}

func IsUnauthorized(err error) bool {
	var target UnauthorizedError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

// ConflictingSeats returns the seats named by a ConflictError, if any.
func ConflictingSeats(err error) []int64 {
	var target ConflictError
	if errors.As(err, &target) {
		return target.Seats
	}
	return nil
}
