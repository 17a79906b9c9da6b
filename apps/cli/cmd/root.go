package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "xpathspec",
	Short: "XPath assertions for XML and structured data.",
	Long: `xpathspec checks XPath expressions against XML documents and against
JSON or YAML data imported into an XML-shaped tree.

Assert from the command line with match, count and equals, or describe
cases in YAML suite files and execute them with run.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	configFlag   string
	nsFlag       []string
	maxDepthFlag int
	outputFlag   string
	noColorFlag  bool
	verboseFlag  int
)

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		if msg := err.Error(); msg != "" {
			fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
		}
		os.Exit(exitCode(err))
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFlag, "config", getEnvString("XPATHSPEC_CONFIG", ""), "Path to config file (env: XPATHSPEC_CONFIG)")
	flags.StringArrayVar(&nsFlag, "ns", nil, "Bind a namespace prefix, as prefix=uri (repeatable)")
	flags.IntVar(&maxDepthFlag, "max-depth", getEnvInt("XPATHSPEC_MAX_DEPTH", 0), "Depth budget for imported JSON/YAML data (env: XPATHSPEC_MAX_DEPTH)")
	flags.StringVarP(&outputFlag, "output", "o", getEnvString("XPATHSPEC_OUTPUT", ""), "Output format: console, json, junit, tap (env: XPATHSPEC_OUTPUT)")
	flags.BoolVar(&noColorFlag, "no-color", getEnvBool("XPATHSPEC_NO_COLOR", false), "Disable colored output (env: XPATHSPEC_NO_COLOR)")
	flags.CountVarP(&verboseFlag, "verbose", "v", "Verbose output")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError(err)
	})

	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(countCmd)
	rootCmd.AddCommand(equalsCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(versionCmd)
}
