package runner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/abdul-hamid-achik/xpathspec/packages/core/suite"
	"github.com/abdul-hamid-achik/xpathspec/packages/failure"
	"github.com/abdul-hamid-achik/xpathspec/packages/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const contextXML = `<root xmlns:d="urn:dummy"><child>One</child><child>Two</child><d:child>Three</d:child></root>`

func writeSuite(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "doc.xml"), []byte(contextXML), 0644))
	path := filepath.Join(dir, "suite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestRunFile(t *testing.T) {
	path := writeSuite(t, `name: sample
context: doc.xml
namespaces:
  d: urn:dummy
cases:
  - name: has children
    expression: //child
    match: true
  - name: no grandchildren
    expression: //child/child
    match: false
  - name: two plain children
    expression: /root/child
    count: 2
  - name: namespaced child
    expression: //d:child
    equals: <d:child xmlns:d="urn:dummy">Three</d:child>
  - name: inline data
    data:
      foo: [21, 42]
    expression: count(foo/_)
    equals: 2
`)

	r := NewRunner(&Config{MaxDepth: 10})
	result, err := r.RunFile(path)
	require.NoError(t, err)

	assert.Equal(t, path, result.File)
	assert.Equal(t, 5, result.Passed)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 0, result.Skipped)
	for _, cr := range result.Results {
		assert.NoError(t, cr.Error, cr.Name)
		assert.NotNil(t, cr.Assertion, cr.Name)
	}
}

func TestRunFile_Failures(t *testing.T) {
	path := writeSuite(t, `context: doc.xml
cases:
  - name: wrong count
    expression: /root/child
    count: 5
  - name: unexpected match
    expression: //child
    match: false
  - name: wrong text
    expression: /root/child[1]
    equals: <child>Uno</child>
`)

	result, err := NewRunner(nil).RunFile(path)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Passed)
	assert.Equal(t, 3, result.Failed)

	count := result.Results[0]
	assert.Equal(t, suite.OpCount, count.Operator)
	assert.Contains(t, count.Assertion.Message, "actual node count 2 does not match expected count 5")

	match := result.Results[1]
	assert.Equal(t, "expected //child not to match", match.Assertion.Message)
	assert.Equal(t, false, match.Assertion.Expected)

	equals := result.Results[2]
	assert.NotEmpty(t, equals.Assertion.Diff)
}

func TestRunFile_ParseError(t *testing.T) {
	path := writeSuite(t, "cases: []\n")
	_, err := NewRunner(nil).RunFile(path)
	assert.Error(t, err)
}

func TestRunFile_CaseErrors(t *testing.T) {
	path := writeSuite(t, `cases:
  - name: missing context
    context: missing.xml
    expression: //a
    match: true
  - name: bad expression
    context: doc.xml
    expression: //child[
    match: true
  - name: count of a scalar
    context: doc.xml
    expression: count(//child)
    count: 1
`)

	result, err := NewRunner(nil).RunFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Failed)

	assert.Error(t, result.Results[0].Error)
	assert.Contains(t, result.Results[0].Error.Error(), "missing.xml")

	assert.True(t, failure.IsInvalidExpression(result.Results[1].Error))
	assert.True(t, failure.IsInvalidExpression(result.Results[2].Error))
}

func TestRunner_Bail(t *testing.T) {
	path := writeSuite(t, `context: doc.xml
cases:
  - name: fails
    expression: //missing
    match: true
  - name: never runs
    expression: //child
    match: true
`)

	result, err := NewRunner(&Config{Bail: true}).RunFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 0, result.Passed)
	assert.Len(t, result.Results, 1)
}

func TestRunner_NameFilter(t *testing.T) {
	path := writeSuite(t, `context: doc.xml
cases:
  - name: child count
    expression: /root/child
    count: 2
  - name: child match
    expression: //child
    match: true
  - name: other
    expression: /root
    count: 1
`)

	result, err := NewRunner(&Config{NameFilter: "child*"}).RunFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Passed)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, "filtered out", result.Results[0].SkipReason)
	assert.Equal(t, "other", result.Results[0].Name)
}

func TestRunner_TagsFilter(t *testing.T) {
	path := writeSuite(t, `context: doc.xml
cases:
  - name: smoke
    expression: //child
    match: true
    tags: [smoke]
  - name: slow
    expression: //child
    match: true
    tags: [slow]
`)

	result, err := NewRunner(&Config{TagsFilter: []string{"smoke"}}).RunFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 1, result.Skipped)
}

func TestRunner_OnlyAndSkip(t *testing.T) {
	path := writeSuite(t, `context: doc.xml
cases:
  - name: focused
    expression: //child
    match: true
    only: true
  - name: focused but skipped
    expression: //child
    match: true
    only: true
    skip: broken
  - name: unfocused
    expression: //child
    match: true
`)

	result, err := NewRunner(nil).RunFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 2, result.Skipped)

	reasons := map[string]string{}
	for _, cr := range result.Results {
		reasons[cr.Name] = cr.SkipReason
	}
	assert.Equal(t, "broken", reasons["focused but skipped"])
	assert.Equal(t, "filtered out", reasons["unfocused"])
}

func TestRunner_Parallel(t *testing.T) {
	path := writeSuite(t, `context: doc.xml
cases:
  - expression: //child
    match: true
  - expression: /root/child
    count: 2
  - expression: /root/child
    count: 3
  - expression: /root/child[2]
    equals: <child>Two</child>
`)

	result, err := NewRunner(&Config{Parallel: true, Concurrency: 2}).RunFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Passed)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Results, 4)
	assert.Equal(t, "case 3", result.Results[2].Name)
	assert.False(t, result.Results[2].Passed)
}

func TestRunner_NamespacePrecedence(t *testing.T) {
	path := writeSuite(t, `context: doc.xml
namespaces:
  d: urn:other
cases:
  - name: suite binding
    expression: //d:child
    count: 0
  - name: case binding wins
    namespaces:
      d: urn:dummy
    expression: //d:child
    count: 1
`)

	r := NewRunner(&Config{Namespaces: query.Namespaces{query.NS("d", "urn:nothing")}})
	result, err := r.RunFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Passed)
}

func TestRunner_SuiteMaxDepth(t *testing.T) {
	s, err := suite.Parse([]byte(`maxDepth: 1
cases:
  - data:
      a:
        b: deep
    expression: a/b
    count: 0
  - data:
      a:
        b: deep
    expression: a
    count: 1
`), filepath.Join(t.TempDir(), "depth.yaml"))
	require.NoError(t, err)

	result, err := NewRunner(nil).RunSuite(s)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Passed)
}

func TestRunner_Snapshot(t *testing.T) {
	path := writeSuite(t, `context: doc.xml
cases:
  - name: children
    expression: /root/child
    snapshot: true
  - name: child count
    expression: count(/root/child)
    snapshot: true
`)

	result, err := NewRunner(&Config{}).RunFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Failed)
	assert.Contains(t, result.Results[0].Assertion.Message, "snapshot does not exist")

	result, err = NewRunner(&Config{UpdateSnapshots: true}).RunFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Passed)
	assert.Equal(t, "<child>One</child><child>Two</child>", result.Results[0].Assertion.Actual)
	assert.Equal(t, 2, result.Results[0].Assertion.Count)
	assert.Equal(t, "2", result.Results[1].Assertion.Actual)
	assert.Equal(t, -1, result.Results[1].Assertion.Count)

	result, err = NewRunner(&Config{}).RunFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Passed)

	changed := `<root><child>One</child><child>Zwei</child></root>`
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "doc.xml"), []byte(changed), 0644))

	result, err = NewRunner(&Config{}).RunFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 1, result.Failed)
	failed := result.Results[0].Assertion
	assert.False(t, failed.Passed)
	assert.Equal(t, "matches stored snapshot of: /root/child", failed.Description())
	assert.Contains(t, failed.Message, "snapshot mismatch for /root/child")
	assert.Contains(t, failed.Diff, "Zwei")
}

func TestMatchesPattern(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		want    bool
	}{
		{"exact match", "exact match", true},
		{"exact match", "other", false},
		{"anything", "", true},
		{"child count", "child*", true},
		{"count child", "child*", false},
		{"count child", "*child", true},
		{"child count", "*child", false},
		{"the child count", "*child*", true},
		{"the parent count", "*child*", false},
		{"anything", "*", true},
	}

	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, matchesPattern(tt.name, tt.pattern))
		})
	}
}

func TestHasAnyTag(t *testing.T) {
	tests := []struct {
		tags    []string
		filters []string
		want    bool
	}{
		{[]string{"smoke", "fast"}, []string{"smoke"}, true},
		{[]string{"smoke", "fast"}, []string{"slow"}, false},
		{[]string{"smoke"}, []string{"slow", "smoke"}, true},
		{nil, []string{"smoke"}, false},
		{[]string{"smoke"}, nil, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, hasAnyTag(tt.tags, tt.filters))
	}
}
