// Package value models the semi-structured values that xpathspec imports into
// XML trees.
//
// A Value is a closed tagged variant:
//   - null, boolean, number and string scalars
//   - Seq: an ordered sequence, always an array
//   - Map: a keyed collection, an array only when keyed 0..n-1 in order (or empty)
//   - Object: a record, always an object
//   - Deferred: a self-serializing object resolved once, at import time
//
// Values come from Go code (Of), JSON documents (ParseJSON) or YAML documents
// (ParseYAML). Classify maps a resolved value to its Kind.
package value
