package cmd

import (
	"fmt"

	"github.com/abdul-hamid-achik/xpathspec/packages/core/suite"
	"github.com/abdul-hamid-achik/xpathspec/packages/query"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file|directory>...",
	Short: "Validate suite files without running them",
	Long: `Validate suite files without evaluating any case.

Checks the suite structure, that every context file can be loaded and
that every expression compiles with the namespaces in scope.

Examples:
  xpathspec validate catalog.xpathspec.yaml
  xpathspec validate ./suites/`,
	Args: cobra.MinimumNArgs(1),
	RunE: validateCommand,
}

func validateCommand(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	files, err := collectFiles(args)
	if err != nil {
		return withExitCode(ExitParseError, err)
	}

	if len(files) == 0 {
		return withExitCode(ExitParseError, fmt.Errorf("no suite files found"))
	}

	hasErrors := false
	for _, file := range files {
		if errs := validateSuite(file, settings.namespaces); len(errs) > 0 {
			for _, err := range errs {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error in %s: %v\n", file, err)
			}
			hasErrors = true
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Valid: %s\n", file)
		}
	}

	if hasErrors {
		return withExitCode(ExitParseError, fmt.Errorf("validation failed"))
	}

	return nil
}

func validateSuite(path string, ns query.Namespaces) []error {
	s, err := suite.ParseFile(path)
	if err != nil {
		return []error{err}
	}

	var errs []error
	loaded := make(map[string]bool)
	for _, c := range s.Cases {
		if c.Data == nil {
			contextPath := s.ContextPath(c)
			if !loaded[contextPath] {
				loaded[contextPath] = true
				if _, err := suite.LoadContext(contextPath); err != nil {
					errs = append(errs, err)
				}
			}
		}

		scope := append(append(query.Namespaces{}, ns...), query.NamespacesFromMap(s.Namespaces)...)
		scope = append(scope, query.NamespacesFromMap(c.Namespaces)...)
		if _, err := query.Compile(c.Expression, scope); err != nil {
			errs = append(errs, fmt.Errorf("case %q (line %d): %w", c.Name, c.Line, err))
		}
	}
	return errs
}
