package assertions

import (
	"strings"
	"sync"
	"testing"

	"github.com/abdul-hamid-achik/xpathspec/packages/failure"
	"github.com/abdul-hamid-achik/xpathspec/packages/query"
	"github.com/antchfx/xmlquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	plainXML = `<root>
		<child>One</child>
		<child>Two</child>
		<ns1:child xmlns:ns1="urn:dummy">Three</ns1:child>
	</root>`
	namespaceXML = `<root>
		<child>One</child>
		<child xmlns="urn:dummy">Two</child>
		<ns1:child xmlns:ns1="urn:dummy">Three</ns1:child>
	</root>`
)

func parseXML(t *testing.T, s string) *xmlquery.Node {
	t.Helper()
	doc, err := query.ParseDocument(strings.NewReader(s))
	require.NoError(t, err)
	return doc
}

func TestComparator_Match(t *testing.T) {
	doc := parseXML(t, plainXML)
	c := New()

	tests := []struct {
		expression string
		passed     bool
	}{
		{"//child", true},
		{"//missing", false},
		{"count(//child) > 0", true},
		{"count(//child) > 42", false},
		{"string(//child[1])", true},
		{"string(//missing)", false},
		{"count(//missing)", false},
		{"count(//child)", true},
	}

	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			result, err := c.Match(tt.expression, doc)
			require.NoError(t, err)
			assert.Equal(t, tt.passed, result.Passed, "Message: %s", result.Message)
			if !tt.passed {
				assert.Contains(t, result.Message, tt.expression)
			}
		})
	}
}

func TestComparator_MatchNodeCount(t *testing.T) {
	doc := parseXML(t, plainXML)

	result, err := New().Match("//child", doc)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Count)

	result, err = New().Match("true()", doc)
	require.NoError(t, err)
	assert.Equal(t, -1, result.Count)
}

func TestComparator_MatchNamespaces(t *testing.T) {
	doc := parseXML(t, namespaceXML)

	result, err := New(WithNamespace("test", "urn:dummy")).Match("count(//test:child)", doc)
	require.NoError(t, err)
	assert.True(t, result.Passed)

	result, err = New(WithNamespace("test", "urn:non-existing")).Match("count(//test:child)", doc)
	require.NoError(t, err)
	assert.False(t, result.Passed)
}

func TestComparator_Count(t *testing.T) {
	doc := parseXML(t, plainXML)

	result, err := New().Count(2, "//child", doc)
	require.NoError(t, err)
	assert.True(t, result.Passed)
	assert.Empty(t, result.Message)

	result, err = New().Count(1, "//child", doc)
	require.NoError(t, err)
	assert.False(t, result.Passed)
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, 2, result.Actual)
	assert.Contains(t, result.Message, "actual node count 2")
	assert.Contains(t, result.Message, "expected count 1")

	result, err = New().Count(23, "//child", doc)
	require.NoError(t, err)
	assert.False(t, result.Passed)

	result, err = New().Count(0, "//missing", doc)
	require.NoError(t, err)
	assert.True(t, result.Passed)

	doc = parseXML(t, namespaceXML)
	result, err = New().Count(1, "//child", doc)
	require.NoError(t, err)
	assert.True(t, result.Passed, "default namespace is not matched by an unprefixed name: %s", result.Message)
	assert.Equal(t, 1, result.Count)
}

func TestComparator_CountNamespaces(t *testing.T) {
	doc := parseXML(t, namespaceXML)

	result, err := Count(2, "//d:child", doc, query.NS("d", "urn:dummy"))
	require.NoError(t, err)
	assert.True(t, result.Passed, result.Message)
}

func TestComparator_CountScalar(t *testing.T) {
	doc := parseXML(t, plainXML)

	_, err := New().Count(2, "count(//child)", doc)
	require.Error(t, err)
	assert.True(t, failure.IsInvalidExpression(err))
}

func TestComparator_EqualsScalar(t *testing.T) {
	doc := parseXML(t, plainXML)

	tests := []struct {
		name       string
		expected   any
		expression string
		passed     bool
	}{
		{"true", true, "count(//child) > 0", true},
		{"false", false, "count(//child) > 42", true},
		{"true mismatch", true, "count(//child) > 42", false},
		{"string", "One", "string(//child[1])", true},
		{"string mismatch", "Two", "string(//child[1])", false},
		{"string needs string", 1, "string(//child[1])", false},
		{"int", 2, "count(//child)", true},
		{"float", 2.0, "count(//child)", true},
		{"number needs number", "2", "count(//child)", false},
		{"number mismatch", 3, "count(//child)", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := New().Equals(tt.expected, tt.expression, doc)
			require.NoError(t, err)
			assert.Equal(t, tt.passed, result.Passed, "Message: %s", result.Message)
			if !tt.passed {
				assert.Contains(t, result.Message, tt.expression)
			}
		})
	}
}

func TestComparator_EqualsBooleanTruthiness(t *testing.T) {
	doc := parseXML(t, plainXML)

	tests := []struct {
		name       string
		expected   any
		expression string
		passed     bool
	}{
		{"one is true", 1, "count(//child) > 0", true},
		{"zero is false", 0, "count(//child) > 0", false},
		{"text is true", "yes", "count(//child) > 0", true},
		{"empty text is false", "", "count(//child) > 0", false},
		{"nil is false", nil, "count(//child) > 0", false},
		{"zero against false", 0, "count(//child) > 42", true},
		{"nil against false", nil, "count(//child) > 42", true},
		{"empty slice against false", []any{}, "count(//child) > 42", true},
		{"slice against true", []any{"a"}, "count(//child) > 0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := New().Equals(tt.expected, tt.expression, doc)
			require.NoError(t, err)
			assert.Equal(t, tt.passed, result.Passed, "Message: %s", result.Message)
		})
	}
}

func TestComparator_EqualsFragment(t *testing.T) {
	doc := parseXML(t, plainXML)

	result, err := New().Equals("<child>One</child>", "//child[1]", doc)
	require.NoError(t, err)
	assert.True(t, result.Passed, result.Message)
	assert.Equal(t, "<child>One</child>", result.Actual)

	result, err = New().Equals("<child>One</child>\n<child>Two</child>", "//child", doc)
	require.NoError(t, err)
	assert.True(t, result.Passed, result.Message)

	doc = parseXML(t, namespaceXML)
	result, err = New().Equals("<child>One</child>", "//child", doc)
	require.NoError(t, err)
	assert.True(t, result.Passed, result.Message)
	assert.Equal(t, "<child>One</child>", result.Actual)
}

func TestComparator_EqualsMismatch(t *testing.T) {
	doc := parseXML(t, plainXML)

	result, err := New().Equals("<child>Two</child>", "//child[1]", doc)
	require.NoError(t, err)
	assert.False(t, result.Passed)
	assert.Equal(t, "<child>Two</child>", result.Expected)
	assert.Equal(t, "<child>One</child>", result.Actual)
	assert.Contains(t, result.Message, "<child>Two</child>")
	assert.Contains(t, result.Message, "<child>One</child>")
	assert.Contains(t, result.Message, "//child[1]")
	assert.NotEmpty(t, result.Diff)
	assert.True(t, failure.IsAssertionMismatch(result.Err()))
}

func TestComparator_EqualsIgnoresFormatting(t *testing.T) {
	doc := parseXML(t, `<root><item b="2" a="1"><v>x</v></item></root>`)

	expected := `<item a="1" b="2">
		<v>x</v>
	</item>`
	result, err := New().Equals(expected, "/root/item", doc)
	require.NoError(t, err)
	assert.True(t, result.Passed, result.Message)
}

func TestComparator_EqualsNativeNodes(t *testing.T) {
	doc := parseXML(t, namespaceXML)
	expected := parseXML(t, `<child xmlns="urn:dummy">Two</child>`)

	result, err := New(WithNamespace("d", "urn:dummy")).Equals(expected, "//d:child[1]", doc)
	require.NoError(t, err)
	assert.True(t, result.Passed, result.Message)

	other := parseXML(t, `<list><child>One</child><child>Two</child></list>`)
	nodes := xmlquery.Find(other, "/list/child")

	result, err = New().Equals(nodes, "//child", parseXML(t, plainXML))
	require.NoError(t, err)
	assert.True(t, result.Passed, result.Message)

	result, err = New().Equals(nodes[:1], "//child", parseXML(t, plainXML))
	require.NoError(t, err)
	assert.False(t, result.Passed)
}

func TestComparator_EqualsQueryResult(t *testing.T) {
	doc := parseXML(t, plainXML)
	expected, err := query.Evaluate("/root/child", doc, nil)
	require.NoError(t, err)

	result, err := New().Equals(expected, "//child", doc)
	require.NoError(t, err)
	assert.True(t, result.Passed, result.Message)
}

func TestComparator_EqualsImportedValue(t *testing.T) {
	data := map[string]any{
		"foo":  []any{21, 42},
		"name": "widget",
	}

	result, err := New().Equals(map[string]any{"foo": []any{21, 42}}, "foo", data)
	require.NoError(t, err)
	assert.True(t, result.Passed, result.Message)
	assert.Equal(t, `<foo name="foo" type="array"><_ type="number">21</_><_ type="number">42</_></foo>`, result.Actual)

	result, err = New().Equals(map[string]any{"foo": []any{21}}, "foo", data)
	require.NoError(t, err)
	assert.False(t, result.Passed)

	result, err = New().Equals("widget", "string(name)", data)
	require.NoError(t, err)
	assert.True(t, result.Passed, result.Message)
}

func TestComparator_EqualsDoesNotModifyExpected(t *testing.T) {
	doc := parseXML(t, plainXML)
	expected := []*xmlquery.Node{xmlquery.FindOne(parseXML(t, `<child>One</child>`), "/child")}
	before := expected[0]

	_, err := New().Equals(expected, "//child[1]", doc)
	require.NoError(t, err)
	assert.Same(t, before, expected[0])
	assert.Len(t, expected, 1)
}

func TestComparator_Errors(t *testing.T) {
	doc := parseXML(t, plainXML)
	c := New()

	t.Run("invalid expression", func(t *testing.T) {
		_, err := c.Match("//child[", doc)
		assert.True(t, failure.IsInvalidExpression(err))
	})

	t.Run("undefined prefix", func(t *testing.T) {
		_, err := New(WithNamespace("d", "urn:dummy")).Count(1, "//x:child", doc)
		assert.True(t, failure.IsInvalidExpression(err))
	})

	t.Run("malformed fragment", func(t *testing.T) {
		_, err := c.Equals("<child>", "//child", doc)
		assert.True(t, failure.IsMalformedFragment(err))
	})

	t.Run("nil context", func(t *testing.T) {
		positions := map[string]func() error{
			"match": func() error {
				_, err := c.Match("//child", nil)
				return err
			},
			"count": func() error {
				_, err := c.Count(1, "//child", nil)
				return err
			},
			"equals": func() error {
				_, err := c.Equals("<child/>", "//child", nil)
				return err
			},
		}
		want := map[string]int{"match": 2, "count": 3, "equals": 3}

		for name, call := range positions {
			err := call()
			require.Error(t, err, name)
			assert.True(t, failure.IsUnsupportedContextType(err), name)

			var ferr *failure.Error
			require.ErrorAs(t, err, &ferr)
			assert.Equal(t, want[name], ferr.Argument, name)
		}
	})

	t.Run("unsupported expected", func(t *testing.T) {
		_, err := c.Equals(func() {}, "//child", doc)
		require.Error(t, err)
		assert.True(t, failure.IsUnsupportedContextType(err))

		var ferr *failure.Error
		require.ErrorAs(t, err, &ferr)
		assert.Equal(t, 1, ferr.Argument)
	})
}

func TestComparator_MaxDepth(t *testing.T) {
	data := map[string]any{"a": map[string]any{"b": 1}}

	result, err := New().Match("a/b", data)
	require.NoError(t, err)
	assert.True(t, result.Passed)

	result, err = New(WithMaxDepth(1)).Match("a/b", data)
	require.NoError(t, err)
	assert.False(t, result.Passed)

	result, err = New(WithMaxDepth(1)).Equals("object", "string(a/@type)", data)
	require.NoError(t, err)
	assert.True(t, result.Passed)
}

func TestComparator_Concurrent(t *testing.T) {
	doc := parseXML(t, plainXML)
	c := New(WithNamespace("d", "urn:dummy"))

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			expected := "<child>One</child>"
			if i%2 == 1 {
				expected = `<ns1:child xmlns:ns1="urn:dummy">Three</ns1:child>`
			}
			expression := "//child[1]"
			if i%2 == 1 {
				expression = "//d:child"
			}
			result, err := c.Equals(expected, expression, doc)
			if err == nil {
				err = result.Err()
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestResult_Description(t *testing.T) {
	doc := parseXML(t, plainXML)

	match, err := New().Match("//child", doc)
	require.NoError(t, err)
	assert.Equal(t, "matches expression: //child", match.Description())

	count, err := New().Count(1, "//child", doc)
	require.NoError(t, err)
	assert.Equal(t, "count matches 1", count.Description())

	equals, err := New().Equals("<foo/>", "//child", doc)
	require.NoError(t, err)
	assert.Equal(t, "is equal to nodes matched by: //child", equals.Description())
}

func TestResult_Err(t *testing.T) {
	assert.NoError(t, (&Result{Passed: true}).Err())

	err := (&Result{Message: "nope"}).Err()
	require.Error(t, err)
	assert.True(t, failure.IsAssertionMismatch(err))
	assert.Contains(t, err.Error(), "nope")
}

func TestDiff(t *testing.T) {
	assert.Equal(t, "", Diff("<a>1</a>", "<a>1</a>"))
	assert.Equal(t, "<a>[-1-]{+2+}</a>", Diff("<a>1</a>", "<a>2</a>"))
	assert.Equal(t, "<a>{+x+}</a>", Diff("<a></a>", "<a>x</a>"))
}
