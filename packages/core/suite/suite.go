package suite

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	OpMatch  = "match"
	OpCount  = "count"
	OpEquals = "equals"

	// OpSnapshot compares the rendered result with the stored snapshot.
	OpSnapshot = "snapshot"
)

// Suite is a YAML file of XPath assertions sharing defaults.
type Suite struct {
	Path       string            `yaml:"-"`
	Name       string            `yaml:"name"`
	Context    string            `yaml:"context"`    // default context file, relative to the suite
	Namespaces map[string]string `yaml:"namespaces"` // prefix -> URI for every case
	MaxDepth   *int              `yaml:"maxDepth"`
	Cases      []*Case           `yaml:"cases"`
}

// Case is a single assertion. Exactly one of Match, Count, Equals and
// Snapshot is set.
type Case struct {
	Name       string            `yaml:"name"`
	Context    string            `yaml:"context"` // overrides Suite.Context
	Data       *yaml.Node        `yaml:"data"`    // inline context, imported as a value
	Expression string            `yaml:"expression"`
	Namespaces map[string]string `yaml:"namespaces"`
	Match      *bool             `yaml:"match"`
	Count      *int              `yaml:"count"`
	Equals     *yaml.Node        `yaml:"equals"`
	Snapshot   bool              `yaml:"snapshot"`
	Tags       []string          `yaml:"tags"`
	Skip       string            `yaml:"skip"`
	Only       bool              `yaml:"only"`
	Line       int               `yaml:"-"`
}

// Operator returns which assertion the case makes.
func (c *Case) Operator() string {
	switch {
	case c.Match != nil:
		return OpMatch
	case c.Count != nil:
		return OpCount
	case c.Equals != nil:
		return OpEquals
	case c.Snapshot:
		return OpSnapshot
	}
	return ""
}

// ParseFile reads and parses a suite file.
func ParseFile(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, path)
}

// Parse decodes and validates a suite.
func Parse(data []byte, path string) (*Suite, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	s := &Suite{}
	if err := doc.Decode(s); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Path = path
	recordLines(&doc, s)

	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func (s *Suite) validate() error {
	if len(s.Cases) == 0 {
		return fmt.Errorf("suite has no cases")
	}
	for i, c := range s.Cases {
		if c == nil {
			return fmt.Errorf("case %d is empty", i+1)
		}
		if c.Name == "" {
			c.Name = fmt.Sprintf("case %d", i+1)
		}
		if c.Expression == "" {
			return fmt.Errorf("line %d: %s: expression is required", c.Line, c.Name)
		}

		set := 0
		for _, ok := range []bool{c.Match != nil, c.Count != nil, c.Equals != nil, c.Snapshot} {
			if ok {
				set++
			}
		}
		if set != 1 {
			return fmt.Errorf("line %d: %s: exactly one of match, count, equals or snapshot is required", c.Line, c.Name)
		}
		if c.Count != nil && *c.Count < 0 {
			return fmt.Errorf("line %d: %s: count must not be negative", c.Line, c.Name)
		}
		if c.Data != nil && c.Context != "" {
			return fmt.Errorf("line %d: %s: context and data are mutually exclusive", c.Line, c.Name)
		}
		if c.Data == nil && c.Context == "" && s.Context == "" {
			return fmt.Errorf("line %d: %s: no context", c.Line, c.Name)
		}
	}
	return nil
}

// recordLines copies the source line of every case node onto the decoded case.
func recordLines(doc *yaml.Node, s *Suite) {
	if len(doc.Content) == 0 {
		return
	}
	root := doc.Content[0]
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "cases" {
			continue
		}
		for j, item := range root.Content[i+1].Content {
			if j < len(s.Cases) && s.Cases[j] != nil {
				s.Cases[j].Line = item.Line
			}
		}
	}
}
