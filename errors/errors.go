package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseDecode   Phase = "decode"   // envelope and record parsing
	PhaseValidate Phase = "validate" // record checks after a successful parse
	PhaseInline   Phase = "inline"   // package rewrite steps
	PhaseLoad     Phase = "load"     // reading an inlined package back
	PhaseRuntime  Phase = "runtime"  // wasm instantiation
	PhaseBinding  Phase = "binding"  // hex-facing binding calls
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidHex     Kind = "invalid_hex"
	KindInvalidData    Kind = "invalid_data"
	KindOutOfBounds    Kind = "out_of_bounds"
	KindNotConsumed    Kind = "not_consumed"
	KindBadMagic       Kind = "bad_magic"
	KindNoShape        Kind = "no_shape"
	KindIO             Kind = "io"
	KindInvalidInput   Kind = "invalid_input"
	KindNotInitialized Kind = "not_initialized"
	KindInstantiation  Kind = "instantiation"
	KindEngine         Kind = "engine"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Step   string
	File   string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Step != "" {
		b.WriteString(" at ")
		b.WriteString(e.Step)
	}

	if e.File != "" {
		b.WriteString(" (")
		b.WriteString(e.File)
		b.WriteByte(')')
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Step sets the processing step that failed
func (b *Builder) Step(step string) *Builder {
	b.err.Step = step
	return b
}

// File sets the file the step was operating on
func (b *Builder) File(path string) *Builder {
	b.err.File = path
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// InvalidHex creates an error for input that is not valid hex
func InvalidHex(phase Phase, what string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidHex,
		Detail: fmt.Sprintf("could not decode %s from hex", what),
		Cause:  cause,
	}
}

// OutOfBounds creates an error for a read past the end of the input
func OutOfBounds(phase Phase, offset, want, have int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("need %d bytes at offset %d, have %d", want, offset, have),
		Value:  offset,
	}
}

// NotConsumed creates an error for a parse that left trailing bytes
func NotConsumed(phase Phase, typeName string, left int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotConsumed,
		Detail: fmt.Sprintf("decoding into %s failed to consume all bytes (%d left)", typeName, left),
		Value:  left,
	}
}

// BadMagic creates an error for a record whose magic tag does not match
func BadMagic(want, got uint32) *Error {
	return &Error{
		Phase:  PhaseValidate,
		Kind:   KindBadMagic,
		Detail: fmt.Sprintf("record should begin with %#x but got %#x", want, got),
		Value:  got,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Detail: detail,
	}
}

// IO creates an error for a failed filesystem step
func IO(phase Phase, step, file string, cause error) *Error {
	return &Error{
		Phase: phase,
		Kind:  KindIO,
		Step:  step,
		File:  file,
		Cause: cause,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// NotInitialized creates a not-initialized error
func NotInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
	}
}

// Instantiation creates an instantiation error
func Instantiation(cause error) *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindInstantiation,
		Detail: "instantiate module",
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Attempt is one named alternative that was tried and failed
type Attempt struct {
	Name string // e.g., "Option<OpaqueMetadata>"
	Err  error
}

// AttemptsError is returned when every alternative in an ordered list failed.
// Attempts keep the order in which they were tried.
type AttemptsError struct {
	Summary  string
	Attempts []Attempt
}

// NewAttemptsError creates an AttemptsError with the given summary line
func NewAttemptsError(summary string, attempts []Attempt) *AttemptsError {
	return &AttemptsError{Summary: summary, Attempts: attempts}
}

func (e *AttemptsError) Error() string {
	if len(e.Attempts) == 0 {
		return "[decode] no_shape: no alternatives tried"
	}

	var b strings.Builder
	b.WriteString("[decode] no_shape: ")
	b.WriteString(e.Summary)
	b.WriteByte(':')

	for _, a := range e.Attempts {
		b.WriteString("\n  - ")
		b.WriteString(a.Name)
		b.WriteString(": ")
		b.WriteString(a.Err.Error())
	}

	return b.String()
}

// Unwrap returns the individual attempt errors so errors.Is/As see each one
func (e *AttemptsError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		errs = append(errs, a.Err)
	}
	return errs
}

// Is reports whether target matches this error type or the no-shape kind
func (e *AttemptsError) Is(target error) bool {
	switch t := target.(type) {
	case *AttemptsError:
		return true
	case *Error:
		return t.Phase == PhaseDecode && t.Kind == KindNoShape
	}
	return false
}
