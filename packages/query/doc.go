// Package query evaluates XPath 1.0 expressions against xmlquery trees and
// imported values.
//
// A context is either a native *xmlquery.Node or any value the importer
// accepts. Native nodes are evaluated in place: absolute paths start at the
// top of the node's own document while relative paths start at the node.
// Imported values are evaluated with the typed "_" root element as context.
//
// Namespace prefixes used in expressions must be bound explicitly:
//
//	res, err := query.Evaluate("//d:child", doc, query.NS("d", "urn:dummy"))
//
// Unprefixed name tests are resolved by the XPath runtime
// (github.com/antchfx/xpath) and match names that carry no prefix.
package query
