package cmd

import (
	"fmt"
	"strconv"

	"github.com/abdul-hamid-achik/xpathspec/packages/assertions"
	"github.com/abdul-hamid-achik/xpathspec/packages/core/suite"
	"github.com/abdul-hamid-achik/xpathspec/packages/output"
	"github.com/abdul-hamid-achik/xpathspec/packages/query"
	"github.com/abdul-hamid-achik/xpathspec/packages/value"
	"github.com/spf13/cobra"
)

var expectedAsFlag string

var matchCmd = &cobra.Command{
	Use:   "match <expression> <file|->",
	Short: "Assert that an expression matches",
	Long: `Assert that an XPath expression selects at least one node, or that a
scalar result is true under the XPath boolean() rules.

The context is an XML document, or JSON/YAML data imported into a tree
rooted at the element "_". Use - to read an XML document from stdin.

Examples:
  xpathspec match '//child' doc.xml
  xpathspec match '//d:child' doc.xml --ns d=urn:dummy
  xpathspec match 'foo/_[. = 42]' data.json`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return assertCommand(cmd, args[1], func(c *assertions.Comparator, ctx any) (*assertions.Result, error) {
			return c.Match(args[0], ctx)
		})
	},
}

var countCmd = &cobra.Command{
	Use:   "count <n> <expression> <file|->",
	Short: "Assert the number of selected nodes",
	Long: `Assert that an XPath expression selects exactly n nodes.

Examples:
  xpathspec count 3 '//child' doc.xml
  xpathspec count 2 'foo/_' data.yaml`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return usagef("count must be a non-negative integer, got %q", args[0])
		}
		return assertCommand(cmd, args[2], func(c *assertions.Comparator, ctx any) (*assertions.Result, error) {
			return c.Count(n, args[1], ctx)
		})
	},
}

var equalsCmd = &cobra.Command{
	Use:   "equals <expected> <expression> <file|->",
	Short: "Assert that an expression equals an expected value",
	Long: `Assert that the result of an XPath expression equals an expected value.

Node sets are compared with an XML fragment after canonicalization, so
attribute order and formatting do not matter. Scalar results are compared
with a boolean, number or string.

With --as auto (the default) expected is read as JSON when it is valid
JSON, otherwise as text. --as string and --as json force either reading.

Examples:
  xpathspec equals '<child>One</child>' '//child[1]' doc.xml
  xpathspec equals 3 'count(//child)' doc.xml
  xpathspec equals --as string 42 'string(foo/_[2])' data.json`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		expected, err := parseExpected(args[0], expectedAsFlag)
		if err != nil {
			return err
		}
		return assertCommand(cmd, args[2], func(c *assertions.Comparator, ctx any) (*assertions.Result, error) {
			return c.Equals(expected, args[1], ctx)
		})
	},
}

func init() {
	equalsCmd.Flags().StringVar(&expectedAsFlag, "as", "auto", "How to read expected: auto, string, json")
}

// parseExpected reads the expected operand of equals.
func parseExpected(text, as string) (any, error) {
	switch as {
	case "string":
		return text, nil
	case "json":
		v, err := value.ParseJSON([]byte(text))
		if err != nil {
			return nil, usagef("expected is not valid JSON: %v", err)
		}
		return v, nil
	case "auto", "":
		if v, err := value.ParseJSON([]byte(text)); err == nil && value.Classify(v) != value.KindString {
			return v, nil
		}
		return text, nil
	}
	return nil, usagef("unknown --as value %q (want auto, string or json)", as)
}

type assertion func(c *assertions.Comparator, ctx any) (*assertions.Result, error)

func assertCommand(cmd *cobra.Command, path string, run assertion) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	ctx, err := loadContextArg(cmd, path)
	if err != nil {
		return withExitCode(ExitParseError, err)
	}

	comparator := assertions.New(
		assertions.WithNamespaces(s.namespaces),
		assertions.WithMaxDepth(s.maxDepth),
	)
	result, err := run(comparator, ctx)
	if err != nil {
		return withExitCode(ExitParseError, err)
	}

	switch s.output {
	case "json":
		if err := output.NewJSONFormatter(output.JSONWithWriter(cmd.OutOrStdout())).FormatAssertion(result); err != nil {
			return err
		}
	case "", "console":
		output.NewConsoleFormatter(
			output.WithWriter(cmd.OutOrStdout()),
			output.WithVerbose(s.verbose),
			output.WithNoColor(s.noColor),
		).FormatAssertion(result)
	default:
		return usagef("output format %q is only available for run", s.output)
	}

	if !result.Passed {
		return errFailed
	}
	return nil
}

// loadContextArg loads the context named on the command line; - reads an
// XML document from stdin.
func loadContextArg(cmd *cobra.Command, path string) (any, error) {
	if path == "-" {
		doc, err := query.ParseDocument(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("stdin: %w", err)
		}
		return doc, nil
	}
	return suite.LoadContext(path)
}
