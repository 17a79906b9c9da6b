package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/abdul-hamid-achik/xpathspec/packages/query"
	"gopkg.in/yaml.v3"
)

// Config represents the xpathspec configuration
type Config struct {
	Namespaces map[string]string `json:"namespaces,omitempty"` // prefix -> namespace URI
	MaxDepth   *int              `json:"maxDepth,omitempty"`   // import depth budget
	Output     string            `json:"output,omitempty"`     // console, json, junit or tap
	Bail       *bool             `json:"bail,omitempty"`
	Verbose    *bool             `json:"verbose,omitempty"`
	NoColor    *bool             `json:"noColor,omitempty"`
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}

// IntPtr returns a pointer to n
func IntPtr(n int) *int {
	return &n
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetMaxDepth returns the import depth budget, defaulting to DefaultMaxDepth
func (c *Config) GetMaxDepth() int {
	if c.MaxDepth == nil {
		return DefaultMaxDepth
	}
	return max(0, *c.MaxDepth)
}

// GetBail returns the bail setting, defaulting to false
func (c *Config) GetBail() bool {
	return getBool(c.Bail, false)
}

// GetVerbose returns the verbose setting, defaulting to false
func (c *Config) GetVerbose() bool {
	return getBool(c.Verbose, false)
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// GetNamespaces returns the configured bindings ordered by prefix
func (c *Config) GetNamespaces() query.Namespaces {
	return query.NamespacesFromMap(c.Namespaces)
}

// ConfigFilenames contains the possible config file names, in search order
var ConfigFilenames = []string{
	".xpathspec.json",
	"xpathspec.json",
	".xpathspec.yaml",
	".xpathspec.yml",
	"xpathspec.yaml",
	"xpathspec.yml",
}

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}
	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	// Return defaults if no config file found
	return DefaultConfig(), nil
}

// loadConfigFromFile loads, validates and decodes a JSON or YAML config file
func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if isYAML(path) {
		data, err = yamlToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := Validate(data); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return config, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// yamlToJSON re-encodes a YAML document as JSON so both formats share one
// schema and one decoder. An empty document becomes an empty object.
func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return json.Marshal(doc)
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c // Copy

	if other.Output != "" {
		result.Output = other.Output
	}
	if other.MaxDepth != nil {
		result.MaxDepth = other.MaxDepth
	}

	// Boolean flags - only override if explicitly set in other config
	if other.Bail != nil {
		result.Bail = other.Bail
	}
	if other.Verbose != nil {
		result.Verbose = other.Verbose
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}

	// Merge namespaces without touching either source map
	if len(other.Namespaces) > 0 {
		merged := make(map[string]string, len(c.Namespaces)+len(other.Namespaces))
		for k, v := range c.Namespaces {
			merged[k] = v
		}
		for k, v := range other.Namespaces {
			merged[k] = v
		}
		result.Namespaces = merged
	}

	return &result
}

// SaveConfig saves the configuration to a file
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
