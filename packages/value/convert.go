package value

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strconv"

	"github.com/abdul-hamid-achik/xpathspec/packages/failure"
)

var errNestedHook = errors.New("self-serializing value resolved to another self-serializing value")

// Of converts a host Go value into a Value.
//
// Scalars, Value, []Value, []any and map[string]any are converted directly.
// Members of []any and map[string]any are converted lazily, one level at a
// time, so self-referencing structures stay bounded by the importer depth.
// map[string]any keys are sorted. Maps with integer keys become keyed
// collections in numeric key order, so {0: a, 1: b} classifies as an array.
// Marshaler implementations become deferred values. Any other type is
// round-tripped through encoding/json.
func Of(x any) (Value, error) {
	switch v := x.(type) {
	case Value:
		return v, nil
	case *Value:
		if v == nil {
			return Null(), nil
		}
		return *v, nil
	case Marshaler:
		return Deferred(v), nil
	case nil:
		return Null(), nil
	case bool:
		return Bool(v), nil
	case int:
		return Int(int64(v)), nil
	case int8:
		return Int(int64(v)), nil
	case int16:
		return Int(int64(v)), nil
	case int32:
		return Int(int64(v)), nil
	case int64:
		return Int(v), nil
	case uint:
		return Uint(uint64(v)), nil
	case uint8:
		return Uint(uint64(v)), nil
	case uint16:
		return Uint(uint64(v)), nil
	case uint32:
		return Uint(uint64(v)), nil
	case uint64:
		return Uint(v), nil
	case float32:
		return Float(float64(v)), nil
	case float64:
		return Float(v), nil
	case json.Number:
		return numberLiteral(string(v))
	case string:
		return Text(v), nil
	case []Value:
		return Seq(v...), nil
	case []any:
		items := make([]Value, len(v))
		for i, item := range v {
			items[i] = lazy(item)
		}
		return Seq(items...), nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]Entry, len(keys))
		for i, k := range keys {
			entries[i] = Entry{Key: k, Value: lazy(v[k])}
		}
		return Object(entries...), nil
	default:
		if rv := reflect.ValueOf(x); rv.Kind() == reflect.Map && isIntegerKind(rv.Type().Key().Kind()) {
			return intKeyed(rv), nil
		}
		return viaJSON(x)
	}
}

func isIntegerKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

type intKey struct {
	signed   int64
	unsigned uint64
	negative bool
	key      reflect.Value
}

func (k intKey) String() string {
	if k.negative {
		return strconv.FormatInt(k.signed, 10)
	}
	return strconv.FormatUint(k.unsigned, 10)
}

func compareIntKeys(a, b intKey) int {
	switch {
	case a.negative && b.negative:
		return cmp.Compare(a.signed, b.signed)
	case a.negative:
		return -1
	case b.negative:
		return 1
	}
	return cmp.Compare(a.unsigned, b.unsigned)
}

// intKeyed converts a map with integer keys into a keyed collection.
func intKeyed(rv reflect.Value) Value {
	keys := make([]intKey, 0, rv.Len())
	for _, k := range rv.MapKeys() {
		ik := intKey{key: k}
		if k.CanInt() {
			ik.signed = k.Int()
			ik.negative = ik.signed < 0
			ik.unsigned = uint64(ik.signed)
		} else {
			ik.unsigned = k.Uint()
		}
		keys = append(keys, ik)
	}
	slices.SortFunc(keys, compareIntKeys)

	entries := make([]Entry, len(keys))
	for i, k := range keys {
		entries[i] = Entry{Key: k.String(), Value: lazy(rv.MapIndex(k.key).Interface())}
	}
	return Map(entries...)
}

// MustOf is like Of but panics on error. Intended for test fixtures.
func MustOf(x any) Value {
	v, err := Of(x)
	if err != nil {
		panic(err)
	}
	return v
}

func lazy(x any) Value {
	switch v := x.(type) {
	case Value:
		return v
	case Marshaler:
		return Deferred(v)
	case nil, bool, string, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		if converted, err := Of(v); err == nil {
			return converted
		}
	}
	return Deferred(host{x})
}

// host defers conversion of a nested host value until it is imported.
type host struct {
	x any
}

func (h host) MarshalValue() (Value, error) {
	return Of(h.x)
}

func viaJSON(x any) (Value, error) {
	data, err := json.Marshal(x)
	if err != nil {
		return Value{}, unsupported(x, err)
	}
	v, err := ParseJSON(data)
	if err != nil {
		return Value{}, unsupported(x, err)
	}
	return v, nil
}

func numberLiteral(raw string) (Value, error) {
	n := json.Number(raw)
	if i, err := n.Int64(); err == nil {
		return Int(i), nil
	}
	f, err := n.Float64()
	if err != nil {
		return Value{}, unsupported(raw, fmt.Errorf("invalid number literal %q: %w", raw, err))
	}
	return Float(f), nil
}

func unsupported(x any, cause error) error {
	return failure.Unsupported(0, x, cause)
}
