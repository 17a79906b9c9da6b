package query

import (
	"math"
	"strconv"

	"github.com/antchfx/xmlquery"
)

// Kind is the type of an evaluation result.
type Kind int

const (
	NodeSet Kind = iota + 1
	Boolean
	String
	Number
)

func (k Kind) String() string {
	switch k {
	case NodeSet:
		return "node-set"
	case Boolean:
		return "boolean"
	case String:
		return "string"
	case Number:
		return "number"
	default:
		return "unknown"
	}
}

// Result holds the outcome of an expression. Only the field matching Kind is set.
type Result struct {
	Kind  Kind
	Nodes []*xmlquery.Node
	Bool  bool
	Str   string
	Num   float64
}

// IsScalar reports whether the result is a boolean, string or number.
func (r *Result) IsScalar() bool {
	return r.Kind != NodeSet
}

// Len returns the number of nodes in a node-set result, 0 otherwise.
func (r *Result) Len() int {
	return len(r.Nodes)
}

// Truthy converts the result with the XPath boolean() rules.
func (r *Result) Truthy() bool {
	switch r.Kind {
	case NodeSet:
		return len(r.Nodes) > 0
	case Boolean:
		return r.Bool
	case String:
		return r.Str != ""
	case Number:
		return r.Num != 0 && !math.IsNaN(r.Num)
	}
	return false
}

// Value returns the scalar as a Go value: bool, string or float64.
// Node-set results return their nodes.
func (r *Result) Value() any {
	switch r.Kind {
	case Boolean:
		return r.Bool
	case String:
		return r.Str
	case Number:
		return r.Num
	default:
		return r.Nodes
	}
}

// String renders a scalar the way the XPath string() function does.
func (r *Result) String() string {
	switch r.Kind {
	case Boolean:
		return strconv.FormatBool(r.Bool)
	case String:
		return r.Str
	case Number:
		return FormatNumber(r.Num)
	}
	if len(r.Nodes) == 0 {
		return ""
	}
	return r.Nodes[0].InnerText()
}

// FormatNumber renders f with the XPath number to string conversion.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	case f == math.Trunc(f) && math.Abs(f) < 1e21:
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
