// Package cmd implements the xpathspec CLI commands using Cobra.
//
// Available commands:
//   - match, count, equals: Run a single assertion against a context file
//   - import: Print the tree JSON or YAML data is imported into
//   - run: Execute YAML suite files, optionally in watch mode
//   - validate: Check suites, contexts and expressions without evaluating
//   - list: Display all cases defined in suite files
//   - init: Create a new xpathspec project with example files
//   - version: Show xpathspec version information
//
// Settings come from a config file, XPATHSPEC_* environment variables and
// flags, with flags taking precedence.
package cmd
