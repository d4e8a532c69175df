package attr

import (
	"errors"
	"fmt"
)

var (
	// ErrCoercion matches every *CoercionError.
	ErrCoercion = errors.New("attribute coercion failed")

	// ErrUnknownAttribute is returned when assigning an attribute the schema does not declare.
	ErrUnknownAttribute = errors.New("unknown attribute")

	// ErrDuplicateAttribute is returned when an attribute and its alias are
	// assigned conflicting values.
	ErrDuplicateAttribute = errors.New("conflicting attribute values")
)

// CoercionError reports a value that cannot be converted to the declared kind.
type CoercionError struct {
	Attribute string
	Kind      Kind
	Value     any
	Err       error
}

func (e *CoercionError) Error() string {
	msg := fmt.Sprintf("attribute %s: cannot coerce %#v (%T) to %s", e.Attribute, e.Value, e.Value, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CoercionError) Is(target error) bool {
	return target == ErrCoercion
}

func (e *CoercionError) Unwrap() error {
	return e.Err
}
