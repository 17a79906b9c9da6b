package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/abdul-hamid-achik/xpathspec/packages/core/runner"
	"github.com/abdul-hamid-achik/xpathspec/packages/output"
	"github.com/abdul-hamid-achik/xpathspec/packages/snapshot"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <file|directory>...",
	Short: "Run assertion suites",
	Long: `Run the cases of one or more YAML suite files.

A suite names a context file (XML, JSON or YAML) and a list of cases, each
with an XPath expression and one of match, count or equals:

  name: catalog
  context: catalog.xml
  namespaces:
    c: urn:catalog
  cases:
    - name: has books
      expression: //c:book
      match: true
    - expression: //c:book
      count: 3
    - name: first book
      expression: //c:book[1]
      snapshot: true

Directories are searched for *.xpathspec.yaml and *.xpathspec.yml files.

Examples:
  xpathspec run catalog.xpathspec.yaml
  xpathspec run ./suites/ --tags smoke
  xpathspec run ./suites/ --output junit --output-file report.xml
  xpathspec run ./suites/ --watch
  xpathspec run ./suites/ --update-snapshots`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCommand,
}

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var (
	nameFlag        string
	tagsFlag        string
	bailFlag        bool
	dryRunFlag      bool
	outputFileFlag  string
	parallelFlag    bool
	concurrencyFlag int
	watchFlag       bool

	updateSnapshotsFlag bool
)

func init() {
	runCmd.Flags().StringVarP(&nameFlag, "name", "n", "", "Run only cases matching name pattern")
	runCmd.Flags().StringVarP(&tagsFlag, "tags", "t", getEnvString("XPATHSPEC_TAGS", ""), "Run only cases with specified tags (comma-separated) (env: XPATHSPEC_TAGS)")
	runCmd.Flags().StringVar(&outputFileFlag, "output-file", getEnvString("XPATHSPEC_OUTPUT_FILE", ""), "Write output to file (default: stdout) (env: XPATHSPEC_OUTPUT_FILE)")
	runCmd.Flags().BoolVar(&bailFlag, "bail", getEnvBool("XPATHSPEC_BAIL", false), "Stop on first failure (env: XPATHSPEC_BAIL)")
	runCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Parse and show what would run without executing")
	runCmd.Flags().BoolVarP(&parallelFlag, "parallel", "p", getEnvBool("XPATHSPEC_PARALLEL", false), "Run cases in parallel (env: XPATHSPEC_PARALLEL)")
	runCmd.Flags().IntVar(&concurrencyFlag, "concurrency", getEnvInt("XPATHSPEC_CONCURRENCY", runner.DefaultConcurrency), "Number of concurrent cases when running in parallel (env: XPATHSPEC_CONCURRENCY)")
	runCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch files for changes and re-run suites")
	runCmd.Flags().BoolVar(&updateSnapshotsFlag, "update-snapshots", getEnvBool("XPATHSPEC_UPDATE_SNAPSHOTS", false), "Update snapshot files instead of comparing (env: XPATHSPEC_UPDATE_SNAPSHOTS)")
}

func runCommand(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	var out io.Writer = cmd.OutOrStdout()
	if outputFileFlag != "" {
		f, err := os.Create(outputFileFlag)
		if err != nil {
			return fmt.Errorf("cannot create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	newFormatter := func() (output.Formatter, error) {
		return output.New(strings.ToLower(s.output), out, s.verbose, s.noColor)
	}
	formatter, err := newFormatter()
	if err != nil {
		return usageError(err)
	}

	files, err := collectFiles(args)
	if err != nil {
		formatter.FormatError(err)
		return withExitCode(ExitParseError, err)
	}

	if len(files) == 0 {
		err := fmt.Errorf("no suite files found")
		formatter.FormatError(err)
		return withExitCode(ExitParseError, err)
	}

	var tagsFilter []string
	if tagsFlag != "" {
		for _, t := range strings.Split(tagsFlag, ",") {
			t = strings.TrimSpace(t)
			if t != "" {
				tagsFilter = append(tagsFilter, t)
			}
		}
	}

	// Each run gets its own runner so snapshot files are re-read from disk.
	newRunner := func() *runner.Runner {
		return runner.NewRunner(&runner.Config{
			Verbose:     s.verbose,
			Bail:        s.bail,
			NameFilter:  nameFlag,
			TagsFilter:  tagsFilter,
			Parallel:    parallelFlag,
			Concurrency: concurrencyFlag,
			MaxDepth:    s.maxDepth,
			Namespaces:  s.namespaces,

			UpdateSnapshots: updateSnapshotsFlag,
		})
	}

	// runSuites returns the number of failed cases and whether a suite
	// could not be parsed.
	runSuites := func(r *runner.Runner, formatter output.Formatter) (int, bool, error) {
		failed := 0
		parseError := false
		start := time.Now()

		formatter.FormatHeader(version)
		for _, file := range files {
			if dryRunFlag {
				fmt.Fprintf(out, "Would run: %s\n", file)
				continue
			}

			result, err := r.RunFile(file)
			if err != nil {
				formatter.FormatError(err)
				parseError = true
				if s.bail {
					break
				}
				continue
			}

			formatter.FormatResult(result)
			failed += result.Failed

			if s.bail && result.Failed > 0 {
				break
			}
		}

		if err := output.Flush(formatter, time.Since(start)); err != nil {
			return failed, parseError, fmt.Errorf("error writing output: %w", err)
		}
		return failed, parseError, nil
	}

	failed, parseError, err := runSuites(newRunner(), formatter)
	if err != nil {
		return err
	}

	if !watchFlag {
		switch {
		case parseError:
			return withExitCode(ExitParseError, nil)
		case failed > 0:
			return errFailed
		}
		return nil
	}

	return watch(cmd, args, files, func() {
		formatter, err := newFormatter()
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			return
		}
		if _, _, err := runSuites(newRunner(), formatter); err != nil {
			formatter.FormatError(err)
		}
	})
}

// serialized wraps fn so that overlapping calls run one after another.
func serialized(fn func(string)) func(string) {
	var mu sync.Mutex
	return func(name string) {
		mu.Lock()
		defer mu.Unlock()
		fn(name)
	}
}

// watch re-runs rerun whenever a suite or context file below the watched
// directories is written. Reruns never overlap. It returns when the
// watcher is closed.
func watch(cmd *cobra.Command, args, files []string, rerun func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	watchedDirs := make(map[string]bool)
	for _, file := range files {
		dir := filepath.Dir(file)
		if !watchedDirs[dir] {
			if err := watcher.Add(dir); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "failed to watch %s: %v\n", dir, err)
			}
			watchedDirs[dir] = true
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err == nil && info.IsDir() {
			_ = filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if info.IsDir() && !watchedDirs[path] {
					_ = watcher.Add(path)
					watchedDirs[path] = true
				}
				return nil
			})
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n\n")

	report := serialized(func(name string) {
		fmt.Fprintf(cmd.OutOrStdout(), "\n\nFile changed: %s\nRe-running suites...\n\n", name)
		rerun()
		fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n")
	})

	var debounceTimer *time.Timer
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !isSuiteFile(event.Name) && !isContextFile(event.Name) {
				continue
			}
			if filepath.Base(filepath.Dir(event.Name)) == snapshot.SnapshotDir {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			name := event.Name
			debounceTimer = time.AfterFunc(WatchDebounceDelay, func() {
				report(name)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watcher error: %v\n", err)
		}
	}
}

// collectFiles expands directories into the suite files they contain.
// Files named explicitly are used regardless of their name.
func collectFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		err = filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && isSuiteFile(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

func isSuiteFile(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	return strings.HasSuffix(name, ".xpathspec.yaml") || strings.HasSuffix(name, ".xpathspec.yml")
}

func isContextFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml", ".xhtml", ".svg", ".atom", ".rss", ".json", ".yaml", ".yml":
		return true
	}
	return false
}
