// Package output provides formatters for displaying suite results.
//
// Supported output formats:
//   - Console: Human-readable colored terminal output
//   - JSON: Machine-readable JSON output
//   - JUnit: JUnit XML format for CI integration
//   - TAP: Test Anything Protocol format
//
// Each formatter implements Formatter and may implement Flushable when it
// accumulates results before writing. The console and JSON formatters can
// also render a single ad-hoc assertion.
package output
