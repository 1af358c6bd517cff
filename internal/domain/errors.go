// Package domain holds the in-memory fault-tree model: identifiers, expressions,
// parameters, events, formulae, CCF groups and the validator that ties them together.
package domain

import "fmt"

// Kind identifies one of the ten error categories a SCRAM core operation can raise.
type Kind string

const (
	KindIOError                Kind = "io_error"
	KindInvalidArgument         Kind = "invalid_argument"
	KindLogicError              Kind = "logic_error"
	KindIllegalOperation        Kind = "illegal_operation"
	KindSettingsError           Kind = "settings_error"
	KindValidationError         Kind = "validation_error"
	KindRedefinitionError       Kind = "redefinition_error"
	KindDuplicateArgumentError  Kind = "duplicate_argument_error"
	KindUndefinedElement        Kind = "undefined_element"
	KindCycleError              Kind = "cycle_error"
)

// Location is the (file, line, function) triple the MEF parser or a constructor
// attaches to an error for user-facing diagnostics.
type Location struct {
	File string
	Line int
	Func string
}

func (l Location) String() string {
	if l.File == "" {
		return ""
	}
	if l.Func != "" {
		return fmt.Sprintf("%s:%d (%s)", l.File, l.Line, l.Func)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Error is the single error type every core operation raises. Kind selects the
// category from spec §7; Cause, when set, is the underlying wrapped error.
type Error struct {
	Kind     Kind
	Message  string
	Location Location
	Cause    error
}

func (e *Error) Error() string {
	loc := e.Location.String()
	if loc == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s [%s]", e.Kind, e.Message, loc)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is lets errors.Is match by Kind alone, so callers can write
// errors.Is(err, &domain.Error{Kind: domain.KindCycleError}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind == "" {
		return false
	}
	return e.Kind == t.Kind
}

func newErr(kind Kind, loc Location, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Location: loc, Cause: cause}
}

// NewValidationError builds a ValidationError at the given source location.
func NewValidationError(loc Location, format string, args ...interface{}) *Error {
	return newErr(KindValidationError, loc, nil, format, args...)
}

// NewRedefinitionError builds a RedefinitionError for a duplicate (scope, id).
func NewRedefinitionError(loc Location, scope, id string) *Error {
	return newErr(KindRedefinitionError, loc, nil, "redefinition of %q in scope %q", id, scope)
}

// NewDuplicateArgumentError builds a DuplicateArgumentError for a repeated event id.
func NewDuplicateArgumentError(loc Location, formulaID, eventID string) *Error {
	return newErr(KindDuplicateArgumentError, loc, nil,
		"event %q appears more than once in formula %q", eventID, formulaID)
}

// NewUndefinedElement builds an UndefinedElement error for an unresolved reference.
func NewUndefinedElement(loc Location, id string) *Error {
	return newErr(KindUndefinedElement, loc, nil, "undefined element %q", id)
}

// NewCycleError builds a CycleError naming the full cycle, in traversal order.
func NewCycleError(loc Location, cycle []string) *Error {
	return newErr(KindCycleError, loc, nil, "cycle detected: %v", cycle)
}

// NewLogicError builds a LogicError for an internal precondition violation.
func NewLogicError(loc Location, format string, args ...interface{}) *Error {
	return newErr(KindLogicError, loc, nil, format, args...)
}

// NewIllegalOperation builds an IllegalOperation error.
func NewIllegalOperation(loc Location, format string, args ...interface{}) *Error {
	return newErr(KindIllegalOperation, loc, nil, format, args...)
}

// NewInvalidArgument builds an InvalidArgument error.
func NewInvalidArgument(loc Location, format string, args ...interface{}) *Error {
	return newErr(KindInvalidArgument, loc, nil, format, args...)
}

// NewSettingsError builds a SettingsError for an inconsistent configuration.
func NewSettingsError(loc Location, format string, args ...interface{}) *Error {
	return newErr(KindSettingsError, loc, nil, format, args...)
}

// NewIOError wraps an I/O failure from the parser or reporter.
func NewIOError(loc Location, cause error, format string, args ...interface{}) *Error {
	return newErr(KindIOError, loc, cause, format, args...)
}
