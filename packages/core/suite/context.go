package suite

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/abdul-hamid-achik/xpathspec/packages/query"
	"github.com/abdul-hamid-achik/xpathspec/packages/value"
	"gopkg.in/yaml.v3"
)

// LoadContext loads a context file by extension: XML documents are parsed
// into native trees, JSON and YAML documents into values for import.
func LoadContext(path string) (any, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".xml", ".xhtml", ".svg", ".atom", ".rss", ".json", ".yaml", ".yml":
	default:
		return nil, fmt.Errorf("unsupported context file %s: expected .xml, .json, .yaml or .yml", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var ctx any
	switch ext {
	case ".json":
		ctx, err = value.ParseJSON(data)
	case ".yaml", ".yml":
		ctx, err = value.ParseYAML(data)
	default:
		ctx, err = query.ParseDocument(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ctx, nil
}

// ContextPath resolves the context file of c relative to the suite file.
func (s *Suite) ContextPath(c *Case) string {
	path := c.Context
	if path == "" {
		path = s.Context
	}
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filepath.Dir(s.Path), path)
}

// InlineData returns the inline context of c as a value.
func (c *Case) InlineData() (value.Value, error) {
	return nodeValue(c.Data)
}

// Expected returns the expected value of an equals case. Strings are
// returned as Go strings, so they are compared as scalars or parsed as XML
// fragments; everything else is returned as a value.
func (c *Case) Expected() (any, error) {
	v, err := nodeValue(c.Equals)
	if err != nil {
		return nil, err
	}
	if value.Classify(v) == value.KindString {
		return v.String(), nil
	}
	return v, nil
}

func nodeValue(n *yaml.Node) (value.Value, error) {
	if n == nil {
		return value.Null(), nil
	}
	data, err := yaml.Marshal(n)
	if err != nil {
		return value.Value{}, err
	}
	return value.ParseYAML(data)
}
