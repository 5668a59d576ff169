package cmd

import (
	"fmt"
	"os"

	"github.com/cwbudde/go-sli/pkg/sli"
	"github.com/spf13/cobra"
)

var (
	evalExpr string
	dumpAST  bool
	trace    bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run an SL file or expression",
	Long: `Execute an SL program from a file or inline expression.

Examples:
  # Run a script file
  sli run script.sl

  # Evaluate an inline expression
  sli run -e "print('hello')"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "evaluate inline code instead of reading from file")
	runCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "dump the parsed AST (for debugging)")
	runCmd.Flags().BoolVar(&trace, "trace", false, "trace execution (for debugging)")
}

func runScript(_ *cobra.Command, args []string) error {
	input, filename, err := readSource(evalExpr, args)
	if err != nil {
		return err
	}

	if dumpAST {
		mod, errs := parseForDump(input, filename)
		if mod != nil {
			fmt.Println("AST:")
			dumpNode(mod, 0)
			fmt.Println()
		}
		if len(errs) > 0 {
			return fmt.Errorf("parsing failed with %d error(s)", len(errs))
		}
	}

	if trace {
		fmt.Fprintf(os.Stderr, "[trace] executing %s\n", filename)
	}

	interp := sli.New(sli.WithTracing(trace))
	v, err := interp.Run(input)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return fmt.Errorf("execution failed")
	}
	_ = v
	return nil
}

func readSource(eval string, args []string) (input, filename string, err error) {
	if eval != "" {
		return eval, "<eval>", nil
	}
	if len(args) == 1 {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		return string(content), args[0], nil
	}
	return "", "", fmt.Errorf("either provide a file path or use -e for inline code")
}
