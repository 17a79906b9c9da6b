package config

import "github.com/abdul-hamid-achik/xpathspec/packages/importer"

// DefaultMaxDepth is the import depth budget used when none is configured
const DefaultMaxDepth = importer.DefaultMaxDepth

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Namespaces: nil,
		MaxDepth:   IntPtr(DefaultMaxDepth),
		Output:     "console",
		Bail:       BoolPtr(false),
		Verbose:    BoolPtr(false),
		NoColor:    BoolPtr(false),
	}
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	defaults := DefaultConfig()
	return len(c.Namespaces) == 0 &&
		c.GetMaxDepth() == defaults.GetMaxDepth() &&
		c.Output == defaults.Output &&
		c.GetBail() == defaults.GetBail() &&
		c.GetVerbose() == defaults.GetVerbose() &&
		c.GetNoColor() == defaults.GetNoColor()
}
