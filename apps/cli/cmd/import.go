package cmd

import (
	"fmt"
	"os"

	"github.com/abdul-hamid-achik/xpathspec/packages/canonical"
	"github.com/abdul-hamid-achik/xpathspec/packages/importer"
	"github.com/abdul-hamid-achik/xpathspec/packages/value"
	"github.com/antchfx/xmlquery"
	"github.com/spf13/cobra"
)

var importOutFileFlag string

var importCmd = &cobra.Command{
	Use:   "import <file|->",
	Short: "Print the tree a context is evaluated against",
	Long: `Print the canonical XML form of a context file.

JSON and YAML data is imported first: the root element is "_", object
members become child elements named after their sanitized keys, array
items become "_" elements, and every element carries a type attribute.
XML documents are printed in canonical form. Expressions given to match,
count and equals are evaluated against exactly this tree.

Examples:
  xpathspec import data.json
  xpathspec import data.yaml --max-depth 3
  xpathspec import doc.xml --out-file canonical.xml`,
	Args: cobra.ExactArgs(1),
	RunE: importCommand,
}

func init() {
	importCmd.Flags().StringVar(&importOutFileFlag, "out-file", "", "Write the tree to a file (default: stdout)")
}

func importCommand(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	ctx, err := loadContextArg(cmd, args[0])
	if err != nil {
		return withExitCode(ExitParseError, err)
	}

	var root *xmlquery.Node
	switch c := ctx.(type) {
	case *xmlquery.Node:
		root = c
	case value.Value:
		root, err = importer.Import(c, importer.WithMaxDepth(s.maxDepth))
		if err != nil {
			return withExitCode(ExitParseError, err)
		}
	default:
		return withExitCode(ExitParseError, fmt.Errorf("cannot import %T", ctx))
	}

	text, err := canonical.Node(root)
	if err != nil {
		return withExitCode(ExitParseError, err)
	}

	if importOutFileFlag != "" {
		if err := os.WriteFile(importOutFileFlag, []byte(text+"\n"), 0644); err != nil {
			return fmt.Errorf("cannot write output file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", importOutFileFlag)
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}
