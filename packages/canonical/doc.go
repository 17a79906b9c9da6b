// Package canonical serializes XML nodes into a stable textual form used for
// structural equality.
//
// Two node collections are structurally equal when their canonical forms are
// identical strings. The form follows exclusive canonical XML: attributes are
// sorted by namespace URI and local name, namespace declarations appear on
// the element that first uses them, every element has an explicit end tag,
// and comments and declarations are dropped. Collections are serialized
// member by member, reparsed as a fragment and serialized again, so
// whitespace between elements never affects the result.
package canonical
