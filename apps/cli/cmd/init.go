package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new xpathspec project",
	Long: `Initialize a new xpathspec project in the current directory.

This creates:
  - xpathspec.yaml           - Configuration file with namespace bindings
  - example.xml              - Example context document
  - example.xpathspec.yaml   - Example suite

Examples:
  xpathspec init
  xpathspec init --force`,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
}

const exampleXML = `<?xml version="1.0" encoding="UTF-8"?>
<catalog xmlns:c="urn:example:catalog">
  <book id="1">
    <title>Go in Practice</title>
    <price>29.99</price>
  </book>
  <book id="2">
    <title>XPath Essentials</title>
    <price>19.50</price>
  </book>
  <c:note>Prices in EUR</c:note>
</catalog>
`

const exampleSuite = `name: example
context: example.xml
cases:
  - name: has books
    expression: /catalog/book
    match: true
    tags: [smoke]

  - name: two books
    expression: /catalog/book
    count: 2

  - name: first title
    expression: /catalog/book[@id = "1"]/title
    equals: <title>Go in Practice</title>

  - name: id sum
    expression: sum(//book/@id)
    equals: 3

  - name: namespaced note
    expression: //c:note
    equals: <c:note xmlns:c="urn:example:catalog">Prices in EUR</c:note>

  - name: inline data
    data:
      tags: [xml, xpath]
    expression: count(tags/_)
    equals: 2
`

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	configFile := filepath.Join(cwd, "xpathspec.yaml")
	contextFile := filepath.Join(cwd, "example.xml")
	suiteFile := filepath.Join(cwd, "example.xpathspec.yaml")

	if !forceInit {
		for _, f := range []string{configFile, contextFile, suiteFile} {
			if _, err := os.Stat(f); err == nil {
				return usagef("file already exists: %s (use --force to overwrite)", f)
			}
		}
	}

	configContent := map[string]any{
		"namespaces": map[string]string{
			"c": "urn:example:catalog",
		},
		"maxDepth": 100,
		"output":   "console",
	}

	configYAML, err := yaml.Marshal(configContent)
	if err != nil {
		return err
	}

	for _, f := range []struct {
		path    string
		content []byte
	}{
		{configFile, configYAML},
		{contextFile, []byte(exampleXML)},
		{suiteFile, []byte(exampleSuite)},
	} {
		if err := os.WriteFile(f.path, f.content, 0644); err != nil {
			return fmt.Errorf("failed to create %s: %w", filepath.Base(f.path), err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", f.path)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nxpathspec project initialized!\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Run 'xpathspec run example.xpathspec.yaml' to execute the example suite.\n")

	return nil
}
