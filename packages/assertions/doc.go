// Package assertions compares XPath results against expectations.
//
// Three assertions are supported:
//   - Match: the expression selects at least one node, or yields a true scalar
//   - Count: the expression selects exactly N nodes
//   - Equals: the result equals an expected scalar, fragment, node set or value
//
// Node set comparisons are structural: both sides are canonicalized (see
// package canonical) and compared as text, so attribute order and
// indentation never matter. A failed comparison is reported through
// Result.Passed and Result.Message; errors are reserved for invalid
// expressions, malformed fragments and unusable contexts.
package assertions
