package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/abdul-hamid-achik/xpathspec/packages/assertions"
	"github.com/abdul-hamid-achik/xpathspec/packages/core/runner"
	"github.com/fatih/color"
)

// formatValue formats a value for display, truncating long text
func formatValue(v any, maxLen int) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		if len(val) > maxLen {
			return fmt.Sprintf("%q...", val[:maxLen])
		}
		return fmt.Sprintf("%q", val)
	case []any:
		return fmt.Sprintf("[array with %d items]", len(val))
	case map[string]any:
		return fmt.Sprintf("{object with %d keys}", len(val))
	}
	str := fmt.Sprintf("%v", v)
	if len(str) > maxLen {
		return str[:maxLen] + "..."
	}
	return str
}

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) FormatResult(result *runner.RunResult) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(f.writer, "\n%s\n", bold("Running: "+result.File))
	fmt.Fprintf(f.writer, "\n")

	for _, r := range result.Results {
		if r.Skipped {
			fmt.Fprintf(f.writer, "  %s %s", yellow("-"), r.Name)
			if r.SkipReason != "" && r.SkipReason != "filtered out" {
				fmt.Fprintf(f.writer, " (%s)", r.SkipReason)
			}
			fmt.Fprintf(f.writer, "\n")
			continue
		}

		if r.Error != nil {
			fmt.Fprintf(f.writer, "  %s %s %s\n", red("x"), r.Name, red(fmt.Sprintf("(%v)", r.Error)))
			continue
		}

		symbol := green("✓")
		if !r.Passed {
			symbol = red("✗")
		}

		fmt.Fprintf(f.writer, "  %s %s %s\n", symbol, r.Name, cyan(fmt.Sprintf("(%dms)", r.Duration.Milliseconds())))

		if f.verbose {
			fmt.Fprintf(f.writer, "    %s %s\n", r.Operator, r.Expression)
		}

		if !r.Passed && r.Assertion != nil {
			f.writeAssertion(r.Assertion, "    ")
		}
	}

	fmt.Fprintf(f.writer, "\n")
	fmt.Fprintf(f.writer, "Tests: ")
	if result.Passed > 0 {
		fmt.Fprintf(f.writer, "%s, ", green(fmt.Sprintf("%d passed", result.Passed)))
	}
	if result.Failed > 0 {
		fmt.Fprintf(f.writer, "%s, ", red(fmt.Sprintf("%d failed", result.Failed)))
	}
	if result.Skipped > 0 {
		fmt.Fprintf(f.writer, "%s, ", yellow(fmt.Sprintf("%d skipped", result.Skipped)))
	}
	total := result.Passed + result.Failed + result.Skipped
	fmt.Fprintf(f.writer, "%d total\n", total)
	fmt.Fprintf(f.writer, "Time:  %dms\n", result.Duration.Milliseconds())
	fmt.Fprintf(f.writer, "\n")
}

// FormatAssertion prints the outcome of a single ad-hoc assertion.
func (f *ConsoleFormatter) FormatAssertion(a *assertions.Result) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	if a.Passed {
		fmt.Fprintf(f.writer, "%s %s\n", green("✓"), headline(a))
		if f.verbose {
			fmt.Fprintf(f.writer, "  Actual: %s\n", formatValue(a.Actual, 200))
		}
		return
	}
	fmt.Fprintf(f.writer, "%s %s\n", red("✗"), headline(a))
	f.writeAssertion(a, "  ")
}

// headline names the assertion; count descriptions omit the expression.
func headline(a *assertions.Result) string {
	if a.Operator == assertions.OpCount {
		return a.Description() + " for " + a.Expression
	}
	return a.Description()
}

func (f *ConsoleFormatter) writeAssertion(a *assertions.Result, indent string) {
	red := color.New(color.FgRed).SprintFunc()

	fmt.Fprintf(f.writer, "%s%s %s\n", indent, red("→"), headline(a))
	fmt.Fprintf(f.writer, "%s  Expected: %s\n", indent, formatValue(a.Expected, 100))
	fmt.Fprintf(f.writer, "%s  Actual:   %s\n", indent, formatValue(a.Actual, 100))
	if a.Diff != "" {
		fmt.Fprintf(f.writer, "%s  Diff:     %s\n", indent, a.Diff)
	}
	if a.Message != "" && a.Diff == "" {
		fmt.Fprintf(f.writer, "%s  %s\n", indent, strings.ReplaceAll(a.Message, "\n", "\n"+indent+"  "))
	}
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("xpathspec"), version)
}
