package output

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/xpathspec/packages/assertions"
	"github.com/abdul-hamid-achik/xpathspec/packages/core/runner"
	"github.com/abdul-hamid-achik/xpathspec/packages/failure"
	"github.com/abdul-hamid-achik/xpathspec/packages/query"
	"github.com/abdul-hamid-achik/xpathspec/packages/value"
	"github.com/antchfx/xmlquery"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doc = `<root><child>One</child><child>Two</child></root>`

func sampleResult(t *testing.T) *runner.RunResult {
	t.Helper()
	node := mustParse(t, doc)

	match, err := assertions.Match("//child", node, nil)
	require.NoError(t, err)
	count, err := assertions.Count(3, "//child", node, nil)
	require.NoError(t, err)
	equals, err := assertions.Equals("<child>Uno</child>", "//child[1]", node, nil)
	require.NoError(t, err)

	return &runner.RunResult{
		File: "sample.yaml",
		Results: []*runner.CaseResult{
			{Name: "has children", Expression: "//child", Operator: "match", Passed: true, Assertion: match},
			{Name: "three children", Expression: "//child", Operator: "count", Assertion: count},
			{Name: "first child", Expression: "//child[1]", Operator: "equals", Assertion: equals},
			{Name: "broken", Expression: "//child[", Operator: "match", Error: errors.New("invalid expression")},
			{Name: "later", Skipped: true, SkipReason: "not today"},
		},
		Duration: 12 * time.Millisecond,
		Passed:   1,
		Failed:   3,
		Skipped:  1,
	}
}

func TestConsoleFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))
	f.FormatResult(sampleResult(t))

	out := buf.String()
	assert.Contains(t, out, "Running: sample.yaml")
	assert.Contains(t, out, "✓ has children")
	assert.Contains(t, out, "✗ three children")
	assert.Contains(t, out, "count matches 3 for //child")
	assert.Contains(t, out, "Diff:")
	assert.Contains(t, out, "x broken (invalid expression)")
	assert.Contains(t, out, "- later (not today)")
	assert.Contains(t, out, "5 total")
}

func TestConsoleFormatter_FormatAssertion(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true), WithVerbose(true))

	res, err := assertions.Count(2, "//child", mustParse(t, doc), nil)
	require.NoError(t, err)
	f.FormatAssertion(res)
	assert.Equal(t, "✓ count matches 2 for //child\n  Actual: 2\n", buf.String())
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(JSONWithWriter(&buf))
	f.FormatResult(sampleResult(t))
	require.NoError(t, f.Flush(20*time.Millisecond))

	var out JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, JSONSummary{Total: 5, Passed: 1, Failed: 3, Skipped: 1}, out.Summary)
	_, err := uuid.Parse(out.RunID)
	assert.NoError(t, err)
	require.Len(t, out.Tests, 5)

	match := out.Tests[0].Assertion
	require.NotNil(t, match)
	assert.Equal(t, "matches expression: //child", match.Description)
	assert.EqualValues(t, 2, match.Actual)
	assert.EqualValues(t, 2, *match.Count)

	equals := out.Tests[2].Assertion
	assert.Equal(t, "<child>Uno</child>", equals.Expected)
	assert.Equal(t, "<child>One</child>", equals.Actual)
	assert.NotEmpty(t, equals.Diff)

	assert.Equal(t, "invalid expression", out.Tests[3].Error)
	assert.Equal(t, "not today", out.Tests[4].SkipReason)
}

func TestJSONFormatter_RunID(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(JSONWithWriter(&buf), JSONWithRunID("nightly-42"))
	require.NoError(t, f.Flush(0))

	var out JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "nightly-42", out.RunID)
	assert.Empty(t, out.Tests)
}

func TestJSONFormatter_FormatAssertion(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(JSONWithWriter(&buf))

	res, err := assertions.Equals(value.Int(2), "count(//child)", mustParse(t, doc), nil)
	require.NoError(t, err)
	require.NoError(t, f.FormatAssertion(res))

	var out JSONAssertion
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.True(t, out.Passed)
	assert.EqualValues(t, 2, out.Expected)
	assert.EqualValues(t, 2, out.Actual)
	assert.Nil(t, out.Count)
}

func TestJUnitFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewJUnitFormatter(JUnitWithWriter(&buf))
	result := sampleResult(t)
	result.File = "suites/sample.xpathspec.yaml"
	f.FormatResult(result)
	require.NoError(t, f.Flush(time.Second))

	var report JUnitReport
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &report))
	assert.Equal(t, "xpathspec", report.Name)
	assert.Equal(t, 5, report.Tests)
	assert.Equal(t, 2, report.Failures, "errors are not counted as failures")
	assert.Equal(t, 1, report.Errors)
	assert.Equal(t, 1, report.Skipped)

	require.Len(t, report.Suites, 1)
	suite := report.Suites[0]
	assert.Equal(t, "suites.sample", suite.Name)
	assert.Equal(t, "suites/sample.xpathspec.yaml", suite.File)
	assert.Equal(t, 2, suite.Failures)
	assert.Equal(t, 1, suite.Errors)
	assert.Equal(t, 1, suite.Skipped)

	cases := suite.Cases
	require.Len(t, cases, 5)
	assert.Nil(t, cases[0].Failure)
	assert.Equal(t, "suites.sample", cases[0].ClassName)
	assert.Contains(t, cases[0].Properties, JUnitProperty{Name: "expression", Value: "//child"})
	assert.Contains(t, cases[0].Properties, JUnitProperty{Name: "operator", Value: "match"})
	assert.Contains(t, cases[0].Properties, JUnitProperty{Name: "count", Value: "2"})

	require.NotNil(t, cases[1].Failure)
	assert.Equal(t, "assertion mismatch", cases[1].Failure.Type)
	assert.Contains(t, cases[1].Failure.Message, "count matches 3 for //child")
	assert.Contains(t, cases[1].Failure.Content, "expected:   3\n")
	assert.Contains(t, cases[1].Failure.Content, "actual:     2\n")
	assert.Contains(t, cases[1].Failure.Content, "actual node count 2 does not match expected count 3")

	require.NotNil(t, cases[2].Failure)
	assert.Contains(t, cases[2].Failure.Content, "expected:   <child>Uno</child>\n")
	assert.Contains(t, cases[2].Failure.Content, "actual:     <child>One</child>\n")
	assert.Contains(t, cases[2].Failure.Content, "diff:")

	require.NotNil(t, cases[3].Error)
	assert.Nil(t, cases[3].Failure)
	assert.Equal(t, "error", cases[3].Error.Type)
	assert.Contains(t, cases[3].Error.Content, "expression: //child[")

	require.NotNil(t, cases[4].Skipped)
	assert.Equal(t, "not today", cases[4].Skipped.Message)
	assert.Empty(t, cases[4].Properties)
}

func TestJUnitFormatter_Totals(t *testing.T) {
	var buf bytes.Buffer
	f := NewJUnitFormatter(JUnitWithWriter(&buf))
	f.FormatResult(sampleResult(t))
	f.FormatResult(&runner.RunResult{
		File: "other.yaml",
		Results: []*runner.CaseResult{
			{Name: "bad prefix", Expression: "//x:a", Operator: "count",
				Error: failure.Invalid("//x:a", errors.New("prefix x not defined"))},
		},
		Failed: 1,
	})
	require.NoError(t, f.Flush(0))

	var report JUnitReport
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &report))
	assert.Equal(t, 6, report.Tests)
	assert.Equal(t, 2, report.Failures)
	assert.Equal(t, 2, report.Errors)
	require.Len(t, report.Suites, 2)
	assert.Equal(t, "invalid expression", report.Suites[1].Cases[0].Error.Type)
}

func TestSuiteClassName(t *testing.T) {
	assert.Equal(t, "catalog", suiteClassName("catalog.xpathspec.yaml"))
	assert.Equal(t, "suites.catalog", suiteClassName("./suites/catalog.yml"))
}

func TestTAPFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewTAPFormatter(TAPWithWriter(&buf))
	f.FormatResult(sampleResult(t))
	require.NoError(t, f.Flush(0))

	out := buf.String()
	assert.Contains(t, out, "TAP version 13\n1..5\n")
	assert.Contains(t, out, "ok 1 - has children\n")
	assert.Contains(t, out, "not ok 2 - three children\n  ---\n")
	assert.Contains(t, out, "  severity: fail\n")
	assert.Contains(t, out, "not ok 4 - broken\n")
	assert.Contains(t, out, "  severity: error\n")
	assert.Contains(t, out, "ok 5 - later # SKIP not today\n")
}

func TestNew(t *testing.T) {
	for _, name := range append([]string{""}, Formats...) {
		f, err := New(name, &bytes.Buffer{}, false, true)
		require.NoError(t, err, name)
		assert.NotNil(t, f)
	}

	_, err := New("html", &bytes.Buffer{}, false, true)
	assert.Error(t, err)
}

func mustParse(t *testing.T, text string) *xmlquery.Node {
	t.Helper()
	doc, err := query.ParseDocument(strings.NewReader(text))
	require.NoError(t, err)
	return doc
}
