package output

import (
	"fmt"
	"io"
	"time"

	"github.com/abdul-hamid-achik/xpathspec/packages/core/runner"
)

// Formatter is implemented by every output format.
type Formatter interface {
	FormatResult(result *runner.RunResult)
	FormatError(err error)
	FormatHeader(version string)
}

// Flushable is implemented by formatters that accumulate results and write
// them in one go.
type Flushable interface {
	Flush(totalDuration time.Duration) error
}

// Formats lists the names accepted by New.
var Formats = []string{"console", "json", "junit", "tap"}

// New returns the formatter registered under name.
func New(name string, w io.Writer, verbose, noColor bool) (Formatter, error) {
	switch name {
	case "", "console":
		return NewConsoleFormatter(WithWriter(w), WithVerbose(verbose), WithNoColor(noColor)), nil
	case "json":
		return NewJSONFormatter(JSONWithWriter(w)), nil
	case "junit":
		return NewJUnitFormatter(JUnitWithWriter(w)), nil
	case "tap":
		return NewTAPFormatter(TAPWithWriter(w)), nil
	}
	return nil, fmt.Errorf("unknown output format %q (want one of %v)", name, Formats)
}

// Flush flushes f if it accumulates output.
func Flush(f Formatter, totalDuration time.Duration) error {
	if flushable, ok := f.(Flushable); ok {
		return flushable.Flush(totalDuration)
	}
	return nil
}

// failureText renders the failure of one case, or "" if it passed.
func failureText(r *runner.CaseResult) string {
	switch {
	case r.Error != nil:
		return r.Error.Error()
	case r.Assertion != nil && !r.Assertion.Passed:
		return r.Assertion.Message
	}
	return ""
}
