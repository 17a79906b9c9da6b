package output

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/xpathspec/packages/core/runner"
	"github.com/abdul-hamid-achik/xpathspec/packages/failure"
)

// JUnitReport is the <testsuites> root. Each suite file becomes one
// <testsuite> and each case one <testcase>.
type JUnitReport struct {
	XMLName  xml.Name     `xml:"testsuites"`
	Name     string       `xml:"name,attr,omitempty"`
	Tests    int          `xml:"tests,attr"`
	Failures int          `xml:"failures,attr"`
	Errors   int          `xml:"errors,attr"`
	Skipped  int          `xml:"skipped,attr"`
	Time     float64      `xml:"time,attr"`
	Suites   []JUnitSuite `xml:"testsuite"`
}

type JUnitSuite struct {
	Name      string      `xml:"name,attr"`
	File      string      `xml:"file,attr,omitempty"`
	Tests     int         `xml:"tests,attr"`
	Failures  int         `xml:"failures,attr"`
	Errors    int         `xml:"errors,attr"`
	Skipped   int         `xml:"skipped,attr"`
	Time      float64     `xml:"time,attr"`
	Timestamp string      `xml:"timestamp,attr,omitempty"`
	Cases     []JUnitCase `xml:"testcase"`
}

// JUnitCase carries the expression and operator as properties so CI
// dashboards can group cases by what they assert.
type JUnitCase struct {
	Name       string          `xml:"name,attr"`
	ClassName  string          `xml:"classname,attr"`
	Time       float64         `xml:"time,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	Failure    *JUnitProblem   `xml:"failure,omitempty"`
	Error      *JUnitProblem   `xml:"error,omitempty"`
	Skipped    *JUnitSkip      `xml:"skipped,omitempty"`
}

type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// JUnitProblem is the body of a <failure> or <error> element.
type JUnitProblem struct {
	Message string `xml:"message,attr,omitempty"`
	Type    string `xml:"type,attr,omitempty"`
	Content string `xml:",chardata"`
}

type JUnitSkip struct {
	Message string `xml:"message,attr,omitempty"`
}

// JUnitFormatter collects run results and writes a single JUnit report on Flush.
type JUnitFormatter struct {
	writer io.Writer
	suites []JUnitSuite
}

type JUnitOption func(*JUnitFormatter)

func NewJUnitFormatter(opts ...JUnitOption) *JUnitFormatter {
	f := &JUnitFormatter{writer: os.Stdout}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JUnitWithWriter(w io.Writer) JUnitOption {
	return func(f *JUnitFormatter) {
		f.writer = w
	}
}

func (f *JUnitFormatter) FormatResult(result *runner.RunResult) {
	className := suiteClassName(result.File)
	suite := JUnitSuite{
		Name:      className,
		File:      result.File,
		Tests:     len(result.Results),
		Time:      result.Duration.Seconds(),
		Timestamp: time.Now().Format(time.RFC3339),
		Cases:     make([]JUnitCase, 0, len(result.Results)),
	}

	for _, r := range result.Results {
		tc := JUnitCase{
			Name:       r.Name,
			ClassName:  className,
			Time:       r.Duration.Seconds(),
			Properties: caseProperties(r),
		}

		switch {
		case r.Skipped:
			suite.Skipped++
			tc.Skipped = &JUnitSkip{Message: r.SkipReason}
		case r.Error != nil:
			suite.Errors++
			tc.Error = &JUnitProblem{
				Message: r.Error.Error(),
				Type:    errorType(r.Error),
				Content: caseHeader(r),
			}
		case !r.Passed:
			suite.Failures++
			tc.Failure = assertionProblem(r)
		}

		suite.Cases = append(suite.Cases, tc)
	}

	f.suites = append(f.suites, suite)
}

func (f *JUnitFormatter) FormatError(err error) {}

func (f *JUnitFormatter) FormatHeader(version string) {}

// Flush writes the report. Totals are summed from the collected suites.
func (f *JUnitFormatter) Flush(totalDuration time.Duration) error {
	report := JUnitReport{
		Name:   "xpathspec",
		Time:   totalDuration.Seconds(),
		Suites: f.suites,
	}
	for _, s := range f.suites {
		report.Tests += s.Tests
		report.Failures += s.Failures
		report.Errors += s.Errors
		report.Skipped += s.Skipped
	}

	if _, err := io.WriteString(f.writer, xml.Header); err != nil {
		return err
	}
	encoder := xml.NewEncoder(f.writer)
	encoder.Indent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return err
	}
	_, err := io.WriteString(f.writer, "\n")
	return err
}

// suiteClassName turns "suites/catalog.xpathspec.yaml" into "suites.catalog".
func suiteClassName(file string) string {
	name := filepath.ToSlash(file)
	for _, ext := range []string{".yaml", ".yml", ".xpathspec"} {
		name = strings.TrimSuffix(name, ext)
	}
	name = strings.TrimPrefix(name, "./")
	return strings.ReplaceAll(name, "/", ".")
}

func caseProperties(r *runner.CaseResult) []JUnitProperty {
	if r.Skipped && r.Expression == "" {
		return nil
	}
	props := []JUnitProperty{
		{Name: "expression", Value: r.Expression},
		{Name: "operator", Value: r.Operator},
	}
	if a := r.Assertion; a != nil && a.Count >= 0 {
		props = append(props, JUnitProperty{Name: "count", Value: fmt.Sprint(a.Count)})
	}
	return props
}

func caseHeader(r *runner.CaseResult) string {
	return fmt.Sprintf("expression: %s\noperator:   %s\n", r.Expression, r.Operator)
}

// assertionProblem folds the compared operands into the failure body, so
// the report is readable without rerunning the suite.
func assertionProblem(r *runner.CaseResult) *JUnitProblem {
	problem := &JUnitProblem{
		Message: "assertion failed",
		Type:    failure.AssertionMismatch.String(),
		Content: caseHeader(r),
	}
	a := r.Assertion
	if a == nil {
		return problem
	}

	problem.Message = "Failed asserting that result " + headline(a)
	var b strings.Builder
	b.WriteString(problem.Content)
	fmt.Fprintf(&b, "expected:   %s\n", operandText(a.Expected))
	fmt.Fprintf(&b, "actual:     %s\n", operandText(a.Actual))
	if a.Diff != "" {
		fmt.Fprintf(&b, "diff:       %s\n", a.Diff)
	}
	if a.Message != "" && a.Diff == "" {
		fmt.Fprintf(&b, "\n%s\n", a.Message)
	}
	problem.Content = b.String()
	return problem
}

func operandText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(jsonSafe(v))
}

func errorType(err error) string {
	if code := failure.CodeOf(err); code != 0 {
		return code.String()
	}
	return "error"
}
