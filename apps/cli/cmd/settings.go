package cmd

import (
	"os"
	"strconv"

	"github.com/abdul-hamid-achik/xpathspec/packages/core/config"
	"github.com/abdul-hamid-achik/xpathspec/packages/query"
	"github.com/spf13/cobra"
)

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// settings is the configuration file merged with command line overrides.
type settings struct {
	namespaces query.Namespaces
	maxDepth   int
	output     string
	noColor    bool
	verbose    bool
	bail       bool
}

// explicit reports whether a flag was given on the command line or
// through its environment variable.
func explicit(cmd *cobra.Command, flag, envKey string) bool {
	return cmd.Flags().Changed(flag) || os.Getenv(envKey) != ""
}

func loadSettings(cmd *cobra.Command) (*settings, error) {
	fileConfig, err := config.LoadConfig(configFlag)
	if err != nil {
		return nil, withExitCode(ExitConfigError, err)
	}

	overrides := &config.Config{Output: outputFlag}
	if explicit(cmd, "max-depth", "XPATHSPEC_MAX_DEPTH") {
		if maxDepthFlag < 0 {
			return nil, usagef("--max-depth must not be negative, got %d", maxDepthFlag)
		}
		overrides.MaxDepth = config.IntPtr(maxDepthFlag)
	}
	if explicit(cmd, "no-color", "XPATHSPEC_NO_COLOR") {
		overrides.NoColor = config.BoolPtr(noColorFlag)
	}
	if verboseFlag > 0 {
		overrides.Verbose = config.BoolPtr(true)
	}
	if f := cmd.Flags().Lookup("bail"); f != nil && explicit(cmd, "bail", "XPATHSPEC_BAIL") {
		bail, _ := strconv.ParseBool(f.Value.String())
		overrides.Bail = config.BoolPtr(bail)
	}
	cfg := fileConfig.Merge(overrides)

	ns := cfg.GetNamespaces()
	for _, raw := range nsFlag {
		b, err := query.ParseBinding(raw)
		if err != nil {
			return nil, usageError(err)
		}
		ns = ns.With(b.Prefix, b.URI)
	}

	return &settings{
		namespaces: ns,
		maxDepth:   cfg.GetMaxDepth(),
		output:     cfg.Output,
		noColor:    cfg.GetNoColor(),
		verbose:    cfg.GetVerbose(),
		bail:       cfg.GetBail(),
	}, nil
}
