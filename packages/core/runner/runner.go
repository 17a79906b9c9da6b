package runner

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/abdul-hamid-achik/xpathspec/packages/assertions"
	"github.com/abdul-hamid-achik/xpathspec/packages/core/suite"
	"github.com/abdul-hamid-achik/xpathspec/packages/importer"
	"github.com/abdul-hamid-achik/xpathspec/packages/query"
	"github.com/abdul-hamid-achik/xpathspec/packages/snapshot"
)

const (
	// DefaultConcurrency is the default number of concurrent cases in parallel mode
	DefaultConcurrency = 5
)

type Runner struct {
	config    *Config
	snapshots *snapshot.Manager
}

type Config struct {
	Verbose     bool
	Bail        bool
	NameFilter  string
	TagsFilter  []string
	Parallel    bool
	Concurrency int
	// MaxDepth is the import depth budget; suites may override it.
	MaxDepth int
	// Namespaces apply to every case, before suite and case bindings.
	Namespaces query.Namespaces
	// UpdateSnapshots writes missing and mismatching snapshots instead of failing.
	UpdateSnapshots bool
}

func NewRunner(cfg *Config) *Runner {
	if cfg == nil {
		cfg = &Config{MaxDepth: importer.DefaultMaxDepth}
	}
	return &Runner{
		config:    cfg,
		snapshots: snapshot.NewManager(cfg.UpdateSnapshots),
	}
}

type RunResult struct {
	File     string
	Results  []*CaseResult
	Duration time.Duration
	Passed   int
	Failed   int
	Skipped  int
}

type CaseResult struct {
	Name       string
	Expression string
	Operator   string
	Passed     bool
	Skipped    bool
	SkipReason string
	Duration   time.Duration
	Assertion  *assertions.Result
	Error      error
}

func (r *Runner) RunFile(path string) (*RunResult, error) {
	s, err := suite.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("parsing file: %w", err)
	}
	return r.RunSuite(s)
}

// RunSuite runs every selected case of s. Context files are loaded once
// per run and shared between cases.
func (r *Runner) RunSuite(s *suite.Suite) (*RunResult, error) {
	start := time.Now()
	result := &RunResult{
		File: s.Path,
	}

	hasOnly := false
	for _, c := range s.Cases {
		if c.Only {
			hasOnly = true
			break
		}
	}

	// Filter cases first
	var filtered []*suite.Case
	for _, c := range s.Cases {
		if !r.shouldRun(c, hasOnly) {
			result.Results = append(result.Results, skipped(c, "filtered out"))
			result.Skipped++
			continue
		}
		if c.Skip != "" {
			result.Results = append(result.Results, skipped(c, c.Skip))
			result.Skipped++
			continue
		}
		filtered = append(filtered, c)
	}

	contexts := r.loadContexts(s, filtered)

	if r.config.Parallel {
		for _, caseResult := range r.runParallel(s, filtered, contexts) {
			result.Results = append(result.Results, caseResult)
			if caseResult.Passed {
				result.Passed++
			} else {
				result.Failed++
			}
		}
	} else {
		for _, c := range filtered {
			caseResult := r.runCase(s, c, contexts)
			result.Results = append(result.Results, caseResult)
			if caseResult.Passed {
				result.Passed++
				continue
			}
			result.Failed++
			if r.config.Bail {
				break
			}
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}

// loadedContext is a parsed context file or the error loading it.
type loadedContext struct {
	value any
	err   error
}

func (r *Runner) loadContexts(s *suite.Suite, cases []*suite.Case) map[string]loadedContext {
	contexts := make(map[string]loadedContext)
	for _, c := range cases {
		if c.Data != nil {
			continue
		}
		path := s.ContextPath(c)
		if _, ok := contexts[path]; ok {
			continue
		}
		v, err := suite.LoadContext(path)
		contexts[path] = loadedContext{value: v, err: err}
	}
	return contexts
}

func (r *Runner) runParallel(s *suite.Suite, cases []*suite.Case, contexts map[string]loadedContext) []*CaseResult {
	concurrency := r.config.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]*CaseResult, len(cases))
	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency)

	for i, c := range cases {
		wg.Add(1)
		sem <- struct{}{} // acquire semaphore

		go func(idx int, tc *suite.Case) {
			defer wg.Done()
			defer func() { <-sem }() // release semaphore

			results[idx] = r.runCase(s, tc, contexts)
		}(i, c)
	}

	wg.Wait()
	return results
}

func (r *Runner) runCase(s *suite.Suite, c *suite.Case, contexts map[string]loadedContext) *CaseResult {
	result := &CaseResult{
		Name:       c.Name,
		Expression: c.Expression,
		Operator:   c.Operator(),
	}
	start := time.Now()
	defer func() {
		result.Duration = time.Since(start)
	}()

	ctx, err := r.caseContext(s, c, contexts)
	if err != nil {
		result.Error = err
		return result
	}

	comparator := assertions.New(
		assertions.WithNamespaces(r.namespaces(s, c)),
		assertions.WithMaxDepth(r.maxDepth(s)),
	)

	var assertion *assertions.Result
	switch c.Operator() {
	case suite.OpMatch:
		assertion, err = comparator.Match(c.Expression, ctx)
		if err == nil && !*c.Match {
			assertion = negate(assertion)
		}
	case suite.OpCount:
		assertion, err = comparator.Count(*c.Count, c.Expression, ctx)
	case suite.OpEquals:
		var expected any
		expected, err = c.Expected()
		if err == nil {
			assertion, err = comparator.Equals(expected, c.Expression, ctx)
		}
	case suite.OpSnapshot:
		assertion, err = r.compareSnapshot(s, c, comparator, ctx)
	default:
		err = fmt.Errorf("case %q has no assertion", c.Name)
	}
	if err != nil {
		result.Error = err
		return result
	}

	result.Assertion = assertion
	result.Passed = assertion.Passed
	return result
}

func (r *Runner) caseContext(s *suite.Suite, c *suite.Case, contexts map[string]loadedContext) (any, error) {
	if c.Data != nil {
		return c.InlineData()
	}
	loaded, ok := contexts[s.ContextPath(c)]
	if !ok {
		return nil, fmt.Errorf("context %s was not loaded", s.ContextPath(c))
	}
	if loaded.err != nil {
		return nil, fmt.Errorf("loading context: %w", loaded.err)
	}
	return loaded.value, nil
}

// namespaces orders bindings so that case bindings win over suite bindings,
// which win over the runner configuration.
func (r *Runner) namespaces(s *suite.Suite, c *suite.Case) query.Namespaces {
	ns := append(query.Namespaces{}, r.config.Namespaces...)
	ns = append(ns, query.NamespacesFromMap(s.Namespaces)...)
	return append(ns, query.NamespacesFromMap(c.Namespaces)...)
}

func (r *Runner) maxDepth(s *suite.Suite) int {
	if s.MaxDepth != nil {
		return *s.MaxDepth
	}
	return r.config.MaxDepth
}

func (r *Runner) compareSnapshot(s *suite.Suite, c *suite.Case, comparator *assertions.Comparator, ctx any) (*assertions.Result, error) {
	res, text, err := comparator.Render(c.Expression, ctx)
	if err != nil {
		return nil, err
	}

	snap, err := r.snapshots.Compare(s.Path, c.Name, snapshot.Entry{Kind: res.Kind.String(), Value: text})
	if err != nil {
		return nil, err
	}

	result := &assertions.Result{
		Passed:     snap.Passed,
		Expression: c.Expression,
		Operator:   assertions.OpSnapshot,
		Expected:   snap.Expected.Value,
		Actual:     text,
		Count:      -1,
	}
	if !res.IsScalar() {
		result.Count = res.Len()
	}
	switch {
	case snap.Missing:
		result.Expected = nil
		result.Message = snap.Message
	case !snap.Passed:
		result.Diff = assertions.Diff(snap.Expected.Value, text)
		result.Message = fmt.Sprintf("%s for %s\nexpected: %s %s\nactual:   %s %s",
			snap.Message, c.Expression, snap.Expected.Kind, snap.Expected.Value, snap.Actual.Kind, text)
	}
	return result, nil
}

// negate turns a match result into a "does not match" result.
func negate(res *assertions.Result) *assertions.Result {
	out := *res
	out.Expected = false
	out.Passed = !res.Passed
	out.Message = ""
	if !out.Passed {
		out.Message = fmt.Sprintf("expected %s not to match", res.Expression)
	}
	return &out
}

func skipped(c *suite.Case, reason string) *CaseResult {
	return &CaseResult{
		Name:       c.Name,
		Expression: c.Expression,
		Operator:   c.Operator(),
		Skipped:    true,
		SkipReason: reason,
	}
}

func (r *Runner) shouldRun(c *suite.Case, hasOnly bool) bool {
	if hasOnly && !c.Only {
		return false
	}

	if r.config.NameFilter != "" {
		if !matchesPattern(c.Name, r.config.NameFilter) {
			return false
		}
	}

	if len(r.config.TagsFilter) > 0 {
		if !hasAnyTag(c.Tags, r.config.TagsFilter) {
			return false
		}
	}

	return true
}

// matchesPattern supports a leading and/or trailing * wildcard
func matchesPattern(name, pattern string) bool {
	if pattern == "" {
		return true
	}

	prefix := strings.HasSuffix(pattern, "*")
	suffix := strings.HasPrefix(pattern, "*")
	switch {
	case prefix && suffix && len(pattern) > 1:
		return strings.Contains(name, pattern[1:len(pattern)-1])
	case suffix:
		return strings.HasSuffix(name, pattern[1:])
	case prefix:
		return strings.HasPrefix(name, pattern[:len(pattern)-1])
	}
	return name == pattern
}

func hasAnyTag(tags []string, filters []string) bool {
	for _, filter := range filters {
		for _, tag := range tags {
			if tag == filter {
				return true
			}
		}
	}
	return false
}
