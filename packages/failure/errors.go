// Package failure defines the error kinds reported by the xpathspec engine.
package failure

import (
	"errors"
	"fmt"
)

// Code identifies the category of an engine error.
type Code int

const (
	// InvalidExpression indicates a malformed XPath expression or an unresolvable prefix.
	InvalidExpression Code = iota + 1
	// MalformedFragment indicates an expected fragment or canonical text that does not parse.
	MalformedFragment
	// AssertionMismatch indicates a verdict that was computed successfully but is false.
	AssertionMismatch
	// UnsupportedContextType indicates a value that cannot be classified or imported.
	UnsupportedContextType
)

func (c Code) String() string {
	switch c {
	case InvalidExpression:
		return "invalid expression"
	case MalformedFragment:
		return "malformed fragment"
	case AssertionMismatch:
		return "assertion mismatch"
	case UnsupportedContextType:
		return "unsupported context type"
	default:
		return fmt.Sprintf("code(%d)", int(c))
	}
}

// Error is the structured error type returned by all engine operations.
type Error struct {
	// Code identifies the error category.
	Code Code
	// Message is a human-readable description.
	Message string
	// Argument is the 1-based position of the offending argument, 0 when not applicable.
	Argument int
	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Argument > 0 {
		msg = fmt.Sprintf("argument #%d: %s", e.Argument, msg)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

func Invalid(expression string, cause error) *Error {
	return &Error{
		Code:    InvalidExpression,
		Message: fmt.Sprintf("expression %q", expression),
		Cause:   cause,
	}
}

func Malformed(fragment string, cause error) *Error {
	return &Error{
		Code:    MalformedFragment,
		Message: fmt.Sprintf("fragment %q", truncate(fragment, 80)),
		Cause:   cause,
	}
}

func Mismatch(message string) *Error {
	return &Error{Code: AssertionMismatch, Message: message}
}

// Unsupported reports a value of type %T that cannot be used as context or expected value.
func Unsupported(argument int, value any, cause error) *Error {
	return &Error{
		Code:     UnsupportedContextType,
		Message:  fmt.Sprintf("expected *xmlquery.Node or importable value, got %T", value),
		Argument: argument,
		Cause:    cause,
	}
}

// WithArgument returns a copy of err carrying the argument position, if err is an *Error.
func WithArgument(err error, argument int) error {
	var e *Error
	if !errors.As(err, &e) {
		return err
	}
	cp := *e
	cp.Argument = argument
	return &cp
}

// CodeOf returns the code of the first *Error in err's chain, or 0.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}

// IsInvalidExpression returns true if err is an invalid expression error.
func IsInvalidExpression(err error) bool {
	return CodeOf(err) == InvalidExpression
}

// IsMalformedFragment returns true if err is a fragment parse error.
func IsMalformedFragment(err error) bool {
	return CodeOf(err) == MalformedFragment
}

// IsAssertionMismatch returns true if err reports a failed assertion.
func IsAssertionMismatch(err error) bool {
	return CodeOf(err) == AssertionMismatch
}

// IsUnsupportedContextType returns true if err reports an unusable context or expected value.
func IsUnsupportedContextType(err error) bool {
	return CodeOf(err) == UnsupportedContextType
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
