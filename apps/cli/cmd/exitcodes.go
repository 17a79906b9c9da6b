package cmd

import (
	"errors"
	"fmt"
)

// Exit codes for the xpathspec CLI
const (
	// ExitSuccess indicates all assertions passed
	ExitSuccess = 0

	// ExitTestFailure indicates one or more assertions failed
	ExitTestFailure = 1

	// ExitParseError indicates an unreadable suite, context or expression
	ExitParseError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

// exitError carries the process exit code for err. A nil err exits quietly.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return ""
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func withExitCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

func usageError(err error) error {
	return withExitCode(ExitUsageError, err)
}

// errFailed exits with ExitTestFailure without printing anything; the
// formatter has already reported the failures.
var errFailed = withExitCode(ExitTestFailure, nil)

// exitCode maps an error returned by a command to the process exit code.
// Errors that do not carry a code come from cobra's own argument checks.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var e *exitError
	if errors.As(err, &e) {
		return e.code
	}
	return ExitUsageError
}

func usagef(format string, args ...any) error {
	return usageError(fmt.Errorf(format, args...))
}
