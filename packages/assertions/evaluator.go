package assertions

import (
	"errors"
	"fmt"

	"github.com/abdul-hamid-achik/xpathspec/packages/canonical"
	"github.com/abdul-hamid-achik/xpathspec/packages/failure"
	"github.com/abdul-hamid-achik/xpathspec/packages/importer"
	"github.com/abdul-hamid-achik/xpathspec/packages/query"
	"github.com/abdul-hamid-achik/xpathspec/packages/value"
	"github.com/antchfx/xmlquery"
)

// Argument positions reported for unusable contexts, counted the way callers
// write the assertion: match(expression, context) and
// count/equals(expected, expression, context).
const (
	matchContextArgument = 2
	otherContextArgument = 3
	expectedArgument     = 1
)

var (
	errNotNodeSet  = errors.New("expression does not select a node set")
	errNilExpected = errors.New("expected node is nil")
)

// Comparator evaluates assertions. It holds only configuration, so one
// Comparator may be shared between goroutines.
type Comparator struct {
	namespaces query.Namespaces
	maxDepth   int
}

// Option is a functional option for configuring a Comparator.
type Option func(*Comparator)

// WithNamespaces replaces the prefix bindings used by expressions.
func WithNamespaces(ns query.Namespaces) Option {
	return func(c *Comparator) {
		c.namespaces = ns
	}
}

// WithNamespace binds one more prefix.
func WithNamespace(prefix, uri string) Option {
	return func(c *Comparator) {
		c.namespaces = c.namespaces.With(prefix, uri)
	}
}

// WithMaxDepth sets the depth budget used when importing contexts and expected values.
func WithMaxDepth(depth int) Option {
	return func(c *Comparator) {
		c.maxDepth = max(0, depth)
	}
}

func New(opts ...Option) *Comparator {
	c := &Comparator{maxDepth: importer.DefaultMaxDepth}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Match checks that expression selects at least one node. Scalar results
// are converted with the XPath boolean() rules.
func (c *Comparator) Match(expression string, context any) (*Result, error) {
	res, err := c.evaluate(expression, context, matchContextArgument)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Expression: expression,
		Operator:   OpMatch,
		Expected:   true,
		Actual:     res.Value(),
		Count:      countOf(res),
		Passed:     res.Truthy(),
	}
	if !result.Passed {
		result.Message = fmt.Sprintf("expected %s to match, got %s", expression, describe(res))
	}
	return result, nil
}

// Count checks that expression selects exactly expected nodes.
func (c *Comparator) Count(expected int, expression string, context any) (*Result, error) {
	res, err := c.evaluate(expression, context, otherContextArgument)
	if err != nil {
		return nil, err
	}
	if res.IsScalar() {
		return nil, failure.Invalid(expression, fmt.Errorf("%w: got %s", errNotNodeSet, res.Kind))
	}

	result := &Result{
		Expression: expression,
		Operator:   OpCount,
		Expected:   expected,
		Actual:     res.Len(),
		Count:      res.Len(),
		Passed:     res.Len() == expected,
	}
	if !result.Passed {
		result.Message = fmt.Sprintf("actual node count %d does not match expected count %d for %s",
			res.Len(), expected, expression)
	}
	return result, nil
}

// Equals checks the result of expression against expected.
//
// Boolean results are compared with the truthiness of expected.
// String and number results require an expected value of the same kind.
// Node set results are compared structurally with expected, which may be an
// XML fragment string, a *xmlquery.Node, a []*xmlquery.Node, a node set
// *query.Result, or any importable value whose imported root children are
// used.
func (c *Comparator) Equals(expected any, expression string, context any) (*Result, error) {
	res, err := c.evaluate(expression, context, otherContextArgument)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Expression: expression,
		Operator:   OpEquals,
		Expected:   expected,
		Count:      countOf(res),
	}
	if res.IsScalar() {
		return c.equalsScalar(result, expected, res)
	}

	nodes, err := c.expectedNodes(expected)
	if err != nil {
		return nil, err
	}
	want, err := canonical.Nodes(nodes)
	if err != nil {
		return nil, err
	}
	got, err := canonical.Nodes(res.Nodes)
	if err != nil {
		return nil, err
	}

	result.Expected = want
	result.Actual = got
	result.Passed = want == got
	if !result.Passed {
		result.Diff = Diff(want, got)
		result.Message = fmt.Sprintf("failed asserting that two XML structures are equal for %s\nexpected: %s\nactual:   %s\ndiff:     %s",
			expression, want, got, result.Diff)
	}
	return result, nil
}

func (c *Comparator) equalsScalar(result *Result, expected any, res *query.Result) (*Result, error) {
	v, err := value.Of(expected)
	if err == nil {
		v, err = value.Resolve(v)
	}
	if err != nil {
		return nil, failure.WithArgument(err, expectedArgument)
	}
	result.Actual = res.Value()

	kind := value.Classify(v)
	switch res.Kind {
	case query.Boolean:
		result.Passed = v.Truthy() == res.Bool
	case query.Number:
		n, ok := v.Number()
		result.Passed = ok && n == res.Num
	case query.String:
		result.Passed = kind == value.KindString && v.String() == res.Str
	}

	if !result.Passed {
		result.Message = fmt.Sprintf("expected %s to equal %s, got %s",
			result.Expression, describeValue(v), describe(res))
	}
	return result, nil
}

// expectedNodes turns expected into the node collection it denotes.
// The caller's value is never modified.
func (c *Comparator) expectedNodes(expected any) ([]*xmlquery.Node, error) {
	switch e := expected.(type) {
	case string:
		return canonical.Fragment(e)
	case *xmlquery.Node:
		if e == nil {
			return nil, failure.Unsupported(expectedArgument, expected, errNilExpected)
		}
		return []*xmlquery.Node{e}, nil
	case []*xmlquery.Node:
		return e, nil
	case *query.Result:
		if e == nil || e.IsScalar() {
			return nil, failure.Unsupported(expectedArgument, expected, errNotNodeSet)
		}
		return e.Nodes, nil
	}

	doc, err := importer.Import(expected, importer.WithMaxDepth(c.maxDepth))
	if err != nil {
		return nil, failure.WithArgument(err, expectedArgument)
	}
	var nodes []*xmlquery.Node
	for n := doc.FirstChild.FirstChild; n != nil; n = n.NextSibling {
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func (c *Comparator) evaluate(expression string, context any, argument int) (*query.Result, error) {
	node, err := query.ContextNode(context, importer.WithMaxDepth(c.maxDepth))
	if err != nil {
		return nil, failure.WithArgument(err, argument)
	}
	expr, err := query.Compile(expression, c.namespaces)
	if err != nil {
		return nil, err
	}
	return expr.Evaluate(node)
}

func countOf(res *query.Result) int {
	if res.IsScalar() {
		return -1
	}
	return res.Len()
}

func describe(res *query.Result) string {
	switch res.Kind {
	case query.NodeSet:
		if res.Len() == 0 {
			return "an empty node set"
		}
		return fmt.Sprintf("a node set of %d", res.Len())
	case query.String:
		return fmt.Sprintf("string %q", res.Str)
	default:
		return fmt.Sprintf("%s %s", res.Kind, res.String())
	}
}

func describeValue(v value.Value) string {
	kind := value.Classify(v)
	switch kind {
	case value.KindNull:
		return "null"
	case value.KindString:
		return fmt.Sprintf("string %q", v.String())
	case value.KindArray, value.KindObject:
		return fmt.Sprintf("%s with %d members", kind, v.Len())
	default:
		return fmt.Sprintf("%s %s", kind, v.String())
	}
}

// Match is a convenience wrapper around New(WithNamespaces(ns)).Match.
func Match(expression string, context any, ns query.Namespaces) (*Result, error) {
	return New(WithNamespaces(ns)).Match(expression, context)
}

// Count is a convenience wrapper around New(WithNamespaces(ns)).Count.
func Count(expected int, expression string, context any, ns query.Namespaces) (*Result, error) {
	return New(WithNamespaces(ns)).Count(expected, expression, context)
}

// Equals is a convenience wrapper around New(WithNamespaces(ns)).Equals.
func Equals(expected any, expression string, context any, ns query.Namespaces) (*Result, error) {
	return New(WithNamespaces(ns)).Equals(expected, expression, context)
}

// Render evaluates expression and returns its result in canonical text form:
// node sets as canonical XML, scalars in their XPath string form.
func (c *Comparator) Render(expression string, context any) (*query.Result, string, error) {
	res, err := c.evaluate(expression, context, matchContextArgument)
	if err != nil {
		return nil, "", err
	}
	if res.IsScalar() {
		return res, res.String(), nil
	}
	text, err := canonical.Nodes(res.Nodes)
	if err != nil {
		return nil, "", err
	}
	return res, text, nil
}
