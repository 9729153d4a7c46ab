// Package assert holds the precondition checks shared by the handlers.
// A failed check is fatal for the invocation that triggered it.
package assert

import (
	"errors"
	"reflect"
)

var ErrPrecondition = errors.New("precondition violated")

// PreconditionError carries the caller supplied message of a failed check.
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string {
	if e.Message == "" {
		return ErrPrecondition.Error()
	}
	return ErrPrecondition.Error() + ": " + e.Message
}

func (e *PreconditionError) Unwrap() error { return ErrPrecondition }

func fail(message string) error {
	return &PreconditionError{Message: message}
}

// NotNil fails for untyped nil and for nil pointers, maps, slices, channels,
// funcs and interfaces.
func NotNil(v any, message string) error {
	if v == nil {
		return fail(message)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		if rv.IsNil() {
			return fail(message)
		}
	}
	return nil
}

func NotEmpty(s string, message string) error {
	if s == "" {
		return fail(message)
	}
	return nil
}

func IsTrue(cond bool, message string) error {
	if !cond {
		return fail(message)
	}
	return nil
}
