// Package cmd implements the skeem command line interface.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/skeem-lang/skeem/repl"
)

// rootCmd represents the bare skeem invocation, which starts a REPL.
var rootCmd = &cobra.Command{
	Use:   "skeem",
	Short: "A small scheme interpreter",
	Long: `skeem is a small scheme interpreter.

Invoked without arguments it starts an interactive REPL.  Use the run
subcommand to evaluate files or literal expressions.`,
	Run: func(cmd *cobra.Command, args []string) {
		repl.Run("> ")
	},
}

// Execute runs the root command.  It is called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
