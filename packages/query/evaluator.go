package query

import (
	"errors"
	"fmt"
	"io"

	"github.com/abdul-hamid-achik/xpathspec/packages/failure"
	"github.com/abdul-hamid-achik/xpathspec/packages/importer"
	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// contextArgument is the position of the context in Evaluate.
const contextArgument = 2

var errNilContext = errors.New("context is nil")

// Expr is a compiled expression with its namespace bindings resolved.
type Expr struct {
	source string
	expr   *xpath.Expr
}

// Compile parses expression, resolving its prefixes against ns. Unprefixed
// name tests select only nodes in no namespace, as in XPath 1.0; a default
// namespace declared in the document does not apply to them.
func Compile(expression string, ns Namespaces) (compiled *Expr, err error) {
	defer func() {
		if r := recover(); r != nil {
			compiled, err = nil, failure.Invalid(expression, errors.New(unqualify(fmt.Sprint(r))))
		}
	}()

	bindings := ns.Map()
	bindings[noNamespacePrefix] = ""
	expr, err := xpath.CompileWithNS(qualifyNameTests(expression), bindings)
	if err != nil {
		return nil, failure.Invalid(expression, errors.New(unqualify(err.Error())))
	}
	return &Expr{source: expression, expr: expr}, nil
}

// String returns the source expression.
func (e *Expr) String() string {
	return e.source
}

// Evaluate runs the expression with node as the context node.
func (e *Expr) Evaluate(node *xmlquery.Node) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, failure.Invalid(e.source, fmt.Errorf("%v", r))
		}
	}()

	switch v := e.expr.Evaluate(newNavigator(node)).(type) {
	case *xpath.NodeIterator:
		res = &Result{Kind: NodeSet}
		for v.MoveNext() {
			nav, ok := v.Current().(*navigator)
			if !ok {
				return nil, failure.Invalid(e.source, fmt.Errorf("unexpected navigator %T", v.Current()))
			}
			res.Nodes = append(res.Nodes, nav.node())
		}
		return res, nil
	case bool:
		return &Result{Kind: Boolean, Bool: v}, nil
	case string:
		return &Result{Kind: String, Str: v}, nil
	case float64:
		return &Result{Kind: Number, Num: v}, nil
	default:
		return nil, failure.Invalid(e.source, fmt.Errorf("unsupported result type %T", v))
	}
}

// Evaluate compiles expression and runs it against context.
//
// A *xmlquery.Node context is used directly. Any other value is imported
// with opts and evaluated with the imported root element as context.
func Evaluate(expression string, context any, ns Namespaces, opts ...importer.Option) (*Result, error) {
	node, err := ContextNode(context, opts...)
	if err != nil {
		return nil, failure.WithArgument(err, contextArgument)
	}
	expr, err := Compile(expression, ns)
	if err != nil {
		return nil, err
	}
	return expr.Evaluate(node)
}

// ContextNode resolves context to the node an expression is evaluated against.
func ContextNode(context any, opts ...importer.Option) (*xmlquery.Node, error) {
	switch c := context.(type) {
	case nil:
		return nil, failure.Unsupported(1, context, errNilContext)
	case *xmlquery.Node:
		if c == nil {
			return nil, failure.Unsupported(1, context, errNilContext)
		}
		return c, nil
	}

	doc, err := importer.Import(context, opts...)
	if err != nil {
		return nil, err
	}
	return doc.FirstChild, nil
}

// ParseDocument parses an XML document for use as a native context.
func ParseDocument(r io.Reader) (*xmlquery.Node, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse XML document: %w", err)
	}
	return doc, nil
}
