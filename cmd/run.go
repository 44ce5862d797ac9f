package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skeem-lang/skeem/builtin"
	"github.com/skeem-lang/skeem/lisp"
	"github.com/skeem-lang/skeem/parser"
)

var (
	runExpression bool
	runPrint      bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run scheme code",
	Long:  `Run scheme code supplied via the command line or files.`,
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		env := builtin.NewEnv(os.Stdout)
		if runExpression {
			runExpressions(env, args)
			return
		}
		runFiles(env, args)
	},
}

func runExpressions(env *lisp.LEnv, args []string) {
	for _, arg := range args {
		vals, err := parser.ParseAll([]byte(arg))
		if err != nil {
			fatal(err)
		}
		var last *lisp.LVal
		for _, v := range vals {
			last, err = lisp.Eval(env, v)
			if err != nil {
				fatal(err)
			}
			if runPrint {
				fmt.Println(last)
			}
		}
		if !runPrint && last != nil {
			fmt.Println(last)
		}
	}
}

func runFiles(env *lisp.LEnv, paths []string) {
	for _, path := range paths {
		v, err := builtin.LoadFile(env, path)
		if err != nil {
			fatal(err)
		}
		if runPrint {
			fmt.Println(v)
		}
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVarP(&runExpression, "expression", "e", false,
		"Interpret arguments as scheme expressions")
	runCmd.Flags().BoolVarP(&runPrint, "print", "p", false,
		"Print the value of every top-level form")
}
