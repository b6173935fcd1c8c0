package desc

import (
	"errors"
	"fmt"
	"reflect"
)

// Kinds of decode failure. Every error returned by Decode matches at
// least one of these with errors.Is.
var (
	ErrMalformedBlock = errors.New("malformed block")
	ErrUnexpectedKey  = errors.New("unexpected key")
	ErrArityMismatch  = errors.New("arity mismatch")
	ErrMissingField   = errors.New("missing field")
	ErrInvalidValue   = errors.New("invalid value")
)

// MalformedBlockError describes a block that could not be parsed.
type MalformedBlockError struct {
	Line   int
	Key    string
	Reason string
}

func (e *MalformedBlockError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("desc: line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("desc: line %d: block %%%s%%: %s", e.Line, e.Key, e.Reason)
}

func (*MalformedBlockError) Is(target error) bool {
	return target == ErrMalformedBlock
}

// UnexpectedKeyError is returned when a block key does not match any
// field and unknown keys are disallowed.
type UnexpectedKeyError struct {
	Line int
	Key  string
	Type reflect.Type
}

func (e *UnexpectedKeyError) Error() string {
	return fmt.Sprintf("desc: line %d: unknown key %%%s%% for type %s", e.Line, e.Key, e.Type)
}

func (*UnexpectedKeyError) Is(target error) bool {
	return target == ErrUnexpectedKey
}

// ArityError is returned when a block carries more values than its
// field can hold.
type ArityError struct {
	Line  int
	Key   string
	Field string
	Count int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("desc: line %d: field %s (%%%s%%) expects a single value, found %d", e.Line, e.Field, e.Key, e.Count)
}

func (*ArityError) Is(target error) bool {
	return target == ErrArityMismatch
}

// MissingFieldError is returned when a required field has no block.
type MissingFieldError struct {
	Key   string
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("desc: missing required key %%%s%% for field %s", e.Key, e.Field)
}

func (*MissingFieldError) Is(target error) bool {
	return target == ErrMissingField || target == ErrArityMismatch
}

// ValueError is returned when a value line cannot be converted to the
// type of its field.
type ValueError struct {
	Line  int
	Key   string
	Value string
	Type  reflect.Type
	Err   error
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("desc: line %d: cannot decode %q from %%%s%% into %s: %v", e.Line, e.Value, e.Key, e.Type, e.Err)
}

func (e *ValueError) Unwrap() error {
	return e.Err
}

func (*ValueError) Is(target error) bool {
	return target == ErrInvalidValue
}

// InvalidUnmarshalError describes an invalid argument passed to Unmarshal.
type InvalidUnmarshalError struct {
	Type reflect.Type
}

func (e *InvalidUnmarshalError) Error() string {
	if e.Type == nil {
		return "desc: Unmarshal(nil)"
	}
	if e.Type.Kind() != reflect.Pointer {
		return "desc: Unmarshal(non-pointer " + e.Type.String() + ")"
	}
	return "desc: Unmarshal(nil " + e.Type.String() + ")"
}

// UnsupportedTypeError is returned when a type cannot be mapped onto
// blocks.
type UnsupportedTypeError struct {
	Type   reflect.Type
	Field  string
	Reason string
}

func (e *UnsupportedTypeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("desc: unsupported type %s, expected struct", e.Type)
	}
	return fmt.Sprintf("desc: type %s field %s: %s", e.Type, e.Field, e.Reason)
}

// UnsupportedValueError is returned by Encode for values that would not
// survive a round trip.
type UnsupportedValueError struct {
	Key    string
	Value  string
	Reason string
}

func (e *UnsupportedValueError) Error() string {
	return fmt.Sprintf("desc: unsupported value %q for %%%s%%: %s", e.Value, e.Key, e.Reason)
}

// MarshalerError wraps an error returned by a MarshalText method.
type MarshalerError struct {
	Key string
	Err error
}

func (e *MarshalerError) Error() string {
	return fmt.Sprintf("desc: marshalling %%%s%%: %v", e.Key, e.Err)
}

func (e *MarshalerError) Unwrap() error {
	return e.Err
}
