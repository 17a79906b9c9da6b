package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// ParseJSON decodes a JSON document, keeping object members in document order.
// JSON objects become records, so {} classifies as an object.
func ParseJSON(data []byte) (Value, error) {
	if !gjson.ValidBytes(data) {
		return Value{}, jsonSyntaxError(data)
	}
	return fromJSON(gjson.ParseBytes(data)), nil
}

var errInvalidJSON = errors.New("invalid JSON document")

// jsonSyntaxError locates the first syntax error in data. gjson only
// reports validity, so the document is decoded again to find the offset.
func jsonSyntaxError(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	var v any
	err := dec.Decode(&v)

	var offset int64
	var msg string
	var syntax *json.SyntaxError
	switch {
	case errors.Is(err, io.EOF):
		return fmt.Errorf("%w: document is empty", errInvalidJSON)
	case errors.As(err, &syntax):
		offset, msg = syntax.Offset, syntax.Error()
	case errors.Is(err, io.ErrUnexpectedEOF):
		offset, msg = int64(len(data)), "unexpected end of input"
	case err == nil:
		offset = dec.InputOffset()
		if len(bytes.TrimSpace(data[offset:])) == 0 {
			return errInvalidJSON
		}
		offset += int64(len(data[offset:]) - len(bytes.TrimLeft(data[offset:], " \t\r\n")))
		msg = "unexpected data after top-level value"
	default:
		return fmt.Errorf("%w: %v", errInvalidJSON, err)
	}

	line, column := position(data, offset)
	return fmt.Errorf("%w at line %d, column %d: %s", errInvalidJSON, line, column, msg)
}

// position converts a byte offset into a 1-based line and column.
func position(data []byte, offset int64) (line, column int) {
	offset = min(max(offset, 0), int64(len(data)))
	before := data[:offset]
	line = bytes.Count(before, []byte("\n")) + 1
	column = len(before) - bytes.LastIndexByte(before, '\n')
	return line, column
}

func fromJSON(r gjson.Result) Value {
	switch r.Type {
	case gjson.False:
		return Bool(false)
	case gjson.True:
		return Bool(true)
	case gjson.Number:
		if v, err := numberLiteral(r.Raw); err == nil {
			return v
		}
		return Float(r.Num)
	case gjson.String:
		return Text(r.Str)
	case gjson.JSON:
		if r.IsArray() {
			var items []Value
			r.ForEach(func(_, item gjson.Result) bool {
				items = append(items, fromJSON(item))
				return true
			})
			return Seq(items...)
		}
		var entries []Entry
		r.ForEach(func(key, item gjson.Result) bool {
			entries = append(entries, Entry{Key: key.String(), Value: fromJSON(item)})
			return true
		})
		return Object(entries...)
	}
	return Null()
}

// ParseYAML decodes a YAML document, keeping mapping keys in document order.
// Mappings become keyed collections: a mapping keyed 0..n-1 classifies as an array.
func ParseYAML(data []byte) (Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Value{}, fmt.Errorf("invalid YAML document: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return Null(), nil
	}
	return fromYAML(doc.Content[0])
}

func fromYAML(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}
		return fromYAML(n.Content[0])
	case yaml.AliasNode:
		// Aliases may point at an enclosing node, so they resolve lazily.
		return Deferred(yamlAlias{n.Alias}), nil
	case yaml.SequenceNode:
		items := make([]Value, 0, len(n.Content))
		for _, child := range n.Content {
			item, err := fromYAML(child)
			if err != nil {
				return Value{}, err
			}
			items = append(items, item)
		}
		return Seq(items...), nil
	case yaml.MappingNode:
		entries := make([]Entry, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			item, err := fromYAML(n.Content[i+1])
			if err != nil {
				return Value{}, err
			}
			entries = append(entries, Entry{Key: n.Content[i].Value, Value: item})
		}
		return Map(entries...), nil
	case yaml.ScalarNode:
		return yamlScalar(n)
	}
	return Value{}, fmt.Errorf("line %d: unsupported YAML node kind %d", n.Line, n.Kind)
}

func yamlScalar(n *yaml.Node) (Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return Value{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return Int(i), nil
		}
		var u uint64
		if err := n.Decode(&u); err == nil {
			return Uint(u), nil
		}
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return Value{}, fmt.Errorf("line %d: invalid integer %q", n.Line, n.Value)
		}
		return Float(f), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return Value{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return Float(f), nil
	}
	return Text(n.Value), nil
}

type yamlAlias struct {
	target *yaml.Node
}

func (a yamlAlias) MarshalValue() (Value, error) {
	if a.target == nil {
		return Null(), nil
	}
	return fromYAML(a.target)
}
