// Package config handles configuration loading and management for xpathspec.
//
// It provides functionality for:
//   - Loading configuration from .xpathspec.json or .xpathspec.yaml files
//   - Schema validation of config files
//   - Default configuration values and flag overrides (Merge)
package config
