// Package store defines the failures the persistence boundary surfaces to
// the entity layer. Callers test them with errors.Is against ErrNotFound or
// ErrConstraintViolation.
package store

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeNotFound            Code = "NOT_FOUND"
	CodeConstraintViolation Code = "CONSTRAINT_VIOLATION"
)

var (
	ErrNotFound            = errors.New("record not found")
	ErrConstraintViolation = errors.New("constraint violation")
)

// Error describes a persistence failure for one entity key.
type Error struct {
	Code   Code
	Entity string
	Key    any
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("%s %v: %s", e.Entity, e.Key, e.sentinel())
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	return target == e.sentinel()
}

func (e *Error) sentinel() error {
	switch e.Code {
	case CodeNotFound:
		return ErrNotFound
	case CodeConstraintViolation:
		return ErrConstraintViolation
	default:
		return nil
	}
}

func NotFound(entity string, key any) *Error {
	return &Error{Code: CodeNotFound, Entity: entity, Key: key}
}

func ConstraintViolation(entity string, key any, reason string, err error) *Error {
	return &Error{Code: CodeConstraintViolation, Entity: entity, Key: key, Reason: reason, Err: err}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConstraintViolation(err error) bool {
	return errors.Is(err, ErrConstraintViolation)
}
