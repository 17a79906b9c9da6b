package value

import "strconv"

// Kind is the structural kind of a value. Its String form is the literal
// written to the type attribute of imported nodes.
type Kind int

const (
	KindNull Kind = iota
	KindBoolean
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// IsComposite reports whether values of kind k have children.
func (k Kind) IsComposite() bool {
	return k == KindArray || k == KindObject
}

// Classify returns the structural kind of v. Deferred values must be passed
// through Resolve first; an unresolved value classifies as null.
func Classify(v Value) Kind {
	switch v.tag {
	case variantBool:
		return KindBoolean
	case variantNumber:
		return KindNumber
	case variantText:
		return KindString
	case variantSeq:
		return KindArray
	case variantMap:
		if isListKeyed(v.entries) {
			return KindArray
		}
		return KindObject
	case variantObject:
		return KindObject
	default:
		return KindNull
	}
}

// isListKeyed reports whether the keys are exactly "0".."n-1" in order.
func isListKeyed(entries []Entry) bool {
	for i, e := range entries {
		if e.Key != strconv.Itoa(i) {
			return false
		}
	}
	return true
}
