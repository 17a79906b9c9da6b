package value

import (
	"math"
	"slices"
	"strconv"
)

type variant uint8

const (
	variantNull variant = iota
	variantBool
	variantNumber
	variantText
	variantSeq
	variantMap
	variantObject
	variantDeferred
)

// Marshaler is implemented by objects that serialize themselves into a Value.
// The hook is called once per imported node; it must not return another deferred value.
type Marshaler interface {
	MarshalValue() (Value, error)
}

// Entry is a single key/value pair of a keyed collection.
type Entry struct {
	Key   string
	Value Value
}

// Value is an immutable semi-structured value. The zero Value is null.
type Value struct {
	tag     variant
	b       bool
	num     float64
	text    string
	items   []Value
	entries []Entry
	hook    Marshaler
}

func Null() Value {
	return Value{}
}

func Bool(b bool) Value {
	return Value{tag: variantBool, b: b}
}

func Int(i int64) Value {
	return Value{tag: variantNumber, num: float64(i), text: strconv.FormatInt(i, 10)}
}

func Uint(u uint64) Value {
	return Value{tag: variantNumber, num: float64(u), text: strconv.FormatUint(u, 10)}
}

func Float(f float64) Value {
	return Value{tag: variantNumber, num: f, text: formatFloat(f)}
}

func Text(s string) Value {
	return Value{tag: variantText, text: s}
}

// Seq builds an ordered sequence. It always classifies as an array.
func Seq(items ...Value) Value {
	return Value{tag: variantSeq, items: slices.Clone(items)}
}

// Map builds a keyed collection. It classifies as an array when it is empty
// or its keys are exactly "0".."n-1" in order, and as an object otherwise.
func Map(entries ...Entry) Value {
	return Value{tag: variantMap, entries: slices.Clone(entries)}
}

// Object builds a record. It always classifies as an object, even when empty.
func Object(entries ...Entry) Value {
	return Value{tag: variantObject, entries: slices.Clone(entries)}
}

// Deferred wraps a self-serializing object. See Resolve.
func Deferred(m Marshaler) Value {
	if m == nil {
		return Null()
	}
	return Value{tag: variantDeferred, hook: m}
}

// IsDeferred reports whether v still needs to be resolved.
func (v Value) IsDeferred() bool {
	return v.tag == variantDeferred
}

// IsNull reports whether v is null.
func (v Value) IsNull() bool {
	return v.tag == variantNull
}

// Truth returns the boolean payload; false for non-boolean values.
func (v Value) Truth() bool {
	return v.tag == variantBool && v.b
}

// Truthy reports whether v counts as true when a boolean is wanted.
// Null, false, zero, NaN, "", "0" and empty collections are false.
func (v Value) Truthy() bool {
	switch v.tag {
	case variantNull:
		return false
	case variantBool:
		return v.b
	case variantNumber:
		return v.num != 0 && !math.IsNaN(v.num)
	case variantText:
		return v.text != "" && v.text != "0"
	case variantSeq, variantMap, variantObject:
		return v.Len() > 0
	}
	return true
}

// Number returns the numeric payload and whether v is a number.
func (v Value) Number() (float64, bool) {
	return v.num, v.tag == variantNumber
}

// Len returns the number of members of a sequence or keyed collection.
func (v Value) Len() int {
	switch v.tag {
	case variantSeq:
		return len(v.items)
	case variantMap, variantObject:
		return len(v.entries)
	}
	return 0
}

// Items returns the members of v in order. Keyed collections yield their values.
func (v Value) Items() []Value {
	switch v.tag {
	case variantSeq:
		return slices.Clone(v.items)
	case variantMap, variantObject:
		items := make([]Value, len(v.entries))
		for i, e := range v.entries {
			items[i] = e.Value
		}
		return items
	}
	return nil
}

// Entries returns the key/value pairs of a keyed collection in order.
// Sequences yield their positional index as key.
func (v Value) Entries() []Entry {
	switch v.tag {
	case variantMap, variantObject:
		return slices.Clone(v.entries)
	case variantSeq:
		entries := make([]Entry, len(v.items))
		for i, item := range v.items {
			entries[i] = Entry{Key: strconv.Itoa(i), Value: item}
		}
		return entries
	}
	return nil
}

// String returns the canonical text of a scalar: "true"/"false" for booleans,
// the natural decimal form for numbers and the text itself for strings.
// Null and composite values render as the empty string.
func (v Value) String() string {
	switch v.tag {
	case variantBool:
		if v.b {
			return "true"
		}
		return "false"
	case variantNumber, variantText:
		return v.text
	}
	return ""
}

// Resolve replaces a deferred value with the value its hook returns.
// Exactly one hook call is made; non-deferred values are returned unchanged.
func Resolve(v Value) (Value, error) {
	if v.tag != variantDeferred {
		return v, nil
	}
	resolved, err := v.hook.MarshalValue()
	if err != nil {
		return Value{}, unsupported(v.hook, err)
	}
	if resolved.tag == variantDeferred {
		return Value{}, unsupported(v.hook, errNestedHook)
	}
	return resolved, nil
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NAN"
	case math.IsInf(f, 1):
		return "INF"
	case math.IsInf(f, -1):
		return "-INF"
	}
	abs := math.Abs(f)
	if f == 0 || (abs >= 1e-6 && abs < 1e21) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
