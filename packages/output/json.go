package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/xpathspec/packages/assertions"
	"github.com/abdul-hamid-achik/xpathspec/packages/canonical"
	"github.com/abdul-hamid-achik/xpathspec/packages/core/runner"
	"github.com/abdul-hamid-achik/xpathspec/packages/value"
	"github.com/antchfx/xmlquery"
	"github.com/google/uuid"
)

// JSONOutput represents the complete JSON output structure
type JSONOutput struct {
	RunID    string      `json:"runId"`
	Summary  JSONSummary `json:"summary"`
	Tests    []JSONTest  `json:"tests"`
	Duration float64     `json:"duration"`
	Time     string      `json:"time"`
}

// JSONSummary represents the test summary
type JSONSummary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// JSONTest represents a single case result
type JSONTest struct {
	Name       string         `json:"name"`
	File       string         `json:"file"`
	Expression string         `json:"expression,omitempty"`
	Operator   string         `json:"operator,omitempty"`
	Passed     bool           `json:"passed"`
	Skipped    bool           `json:"skipped,omitempty"`
	SkipReason string         `json:"skipReason,omitempty"`
	Duration   float64        `json:"duration"`
	Error      string         `json:"error,omitempty"`
	Assertion  *JSONAssertion `json:"assertion,omitempty"`
}

// JSONAssertion represents an assertion result
type JSONAssertion struct {
	Description string `json:"description"`
	Expression  string `json:"expression"`
	Operator    string `json:"operator"`
	Expected    any    `json:"expected"`
	Actual      any    `json:"actual"`
	Count       *int   `json:"count,omitempty"`
	Passed      bool   `json:"passed"`
	Message     string `json:"message,omitempty"`
	Diff        string `json:"diff,omitempty"`
}

// NewJSONAssertion converts an assertion result into its JSON shape.
func NewJSONAssertion(a *assertions.Result) *JSONAssertion {
	out := &JSONAssertion{
		Description: a.Description(),
		Expression:  a.Expression,
		Operator:    a.Operator,
		Expected:    jsonSafe(a.Expected),
		Actual:      jsonSafe(a.Actual),
		Passed:      a.Passed,
		Message:     a.Message,
		Diff:        a.Diff,
	}
	if a.Count >= 0 {
		count := a.Count
		out.Count = &count
	}
	return out
}

// jsonSafe maps assertion operands onto plain JSON values. Node sets are
// reported by size because nodes link back to their parents.
func jsonSafe(v any) any {
	switch val := v.(type) {
	case nil, bool, string, int, float64:
		return val
	case []*xmlquery.Node:
		return len(val)
	case *xmlquery.Node:
		return canonicalOrType(val)
	case value.Value:
		switch kind := value.Classify(val); kind {
		case value.KindNull:
			return nil
		case value.KindBoolean:
			return val.Truth()
		case value.KindNumber:
			n, _ := val.Number()
			return n
		case value.KindString:
			return val.String()
		default:
			return fmt.Sprintf("%s with %d members", kind, val.Len())
		}
	}
	if converted, err := value.Of(v); err == nil && !converted.IsDeferred() {
		return jsonSafe(converted)
	}
	return fmt.Sprintf("%T", v)
}

func canonicalOrType(n *xmlquery.Node) any {
	text, err := canonical.Node(n)
	if err != nil {
		return fmt.Sprintf("%T", n)
	}
	return text
}

// JSONFormatter formats test results as JSON
type JSONFormatter struct {
	writer  io.Writer
	runID   string
	results []JSONTest
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer:  os.Stdout,
		runID:   uuid.NewString(),
		results: make([]JSONTest, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// JSONWithRunID sets the identifier reported as runId instead of a random UUID.
func JSONWithRunID(id string) JSONOption {
	return func(f *JSONFormatter) {
		f.runID = id
	}
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) FormatResult(result *runner.RunResult) {
	for _, r := range result.Results {
		test := JSONTest{
			Name:       r.Name,
			File:       result.File,
			Expression: r.Expression,
			Operator:   r.Operator,
			Passed:     r.Passed,
			Skipped:    r.Skipped,
			Duration:   float64(r.Duration.Milliseconds()),
		}

		if r.SkipReason != "" && r.SkipReason != "filtered out" {
			test.SkipReason = r.SkipReason
		}

		if r.Error != nil {
			test.Error = r.Error.Error()
		}

		if r.Assertion != nil {
			test.Assertion = NewJSONAssertion(r.Assertion)
		}

		f.results = append(f.results, test)
	}
}

// FormatAssertion writes a single assertion result immediately.
func (f *JSONFormatter) FormatAssertion(a *assertions.Result) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewJSONAssertion(a))
}

func (f *JSONFormatter) FormatError(err error) {
	// Errors are included in individual test results
}

func (f *JSONFormatter) FormatHeader(version string) {
	// No header needed for JSON output
}

// Flush writes the accumulated JSON output
func (f *JSONFormatter) Flush(totalDuration time.Duration) error {
	var passed, failed, skipped int
	for _, t := range f.results {
		if t.Skipped {
			skipped++
		} else if t.Passed {
			passed++
		} else {
			failed++
		}
	}

	output := JSONOutput{
		RunID:   f.runID,
		Summary: JSONSummary{
			Total:   len(f.results),
			Passed:  passed,
			Failed:  failed,
			Skipped: skipped,
		},
		Tests:    f.results,
		Duration: float64(totalDuration.Milliseconds()),
		Time:     time.Now().Format(time.RFC3339),
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
