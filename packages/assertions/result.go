package assertions

import (
	"fmt"

	"github.com/abdul-hamid-achik/xpathspec/packages/failure"
)

const (
	OpMatch  = "match"
	OpCount  = "count"
	OpEquals = "equals"

	// OpSnapshot results are produced by suite runs comparing against stored output.
	OpSnapshot = "snapshot"
)

type Result struct {
	Passed     bool
	Message    string
	Expression string
	Operator   string
	Expected   any
	Actual     any
	// Count is the number of selected nodes, or -1 for scalar results.
	Count int
	// Diff marks the differences between canonical forms of a failed Equals.
	Diff string
}

// Description returns what the assertion checks, independent of its outcome.
func (r *Result) Description() string {
	switch r.Operator {
	case OpMatch:
		return "matches expression: " + r.Expression
	case OpCount:
		return fmt.Sprintf("count matches %v", r.Expected)
	case OpEquals:
		return "is equal to nodes matched by: " + r.Expression
	case OpSnapshot:
		return "matches stored snapshot of: " + r.Expression
	default:
		return r.Operator + " " + r.Expression
	}
}

// Err returns nil when the assertion passed and an AssertionMismatch error otherwise.
func (r *Result) Err() error {
	if r.Passed {
		return nil
	}
	return failure.Mismatch(r.Message)
}
