// Package runner executes xpathspec suites.
//
// It provides functionality for:
//   - Running suite files case by case
//   - Name and tag filters, "only" and "skip" markers
//   - Parallel execution with configurable concurrency
//   - Stopping at the first failure (bail)
//
// Context files are loaded once per run. Namespace bindings are layered:
// runner configuration first, then the suite, then the case, with later
// bindings for the same prefix taking precedence.
package runner
