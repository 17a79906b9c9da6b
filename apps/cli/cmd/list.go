package cmd

import (
	"fmt"

	"github.com/abdul-hamid-achik/xpathspec/packages/core/suite"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list <file|directory>...",
	Short: "List all cases in suite files",
	Long: `List all cases defined in suite files.

Examples:
  xpathspec list catalog.xpathspec.yaml
  xpathspec list ./suites/`,
	Args: cobra.MinimumNArgs(1),
	RunE: listCommand,
}

func listCommand(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return withExitCode(ExitParseError, err)
	}

	if len(files) == 0 {
		return withExitCode(ExitParseError, fmt.Errorf("no suite files found"))
	}

	for _, file := range files {
		s, err := suite.ParseFile(file)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStderr(), "Error parsing %s: %v\n", file, err)
			continue
		}

		fmt.Fprintf(cmd.OutOrStdout(), "\n%s:\n", file)
		for _, c := range s.Cases {
			fmt.Fprintf(cmd.OutOrStdout(), "  - %s (%s %s)\n", c.Name, c.Operator(), c.Expression)
			if len(c.Tags) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "    tags: %v\n", c.Tags)
			}
		}
	}

	return nil
}
