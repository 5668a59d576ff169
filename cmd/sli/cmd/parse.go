package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/cwbudde/go-sli/internal/ast"
	"github.com/cwbudde/go-sli/internal/diag"
	"github.com/cwbudde/go-sli/internal/parser"
	"github.com/spf13/cobra"
)

var parseExpression bool

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse SL source and display the AST",
	Long: `Parse SL source code and display the Abstract Syntax Tree.

If no file is provided, reads from stdin. Use -e to parse a single
inline expression instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().BoolVarP(&parseExpression, "expression", "e", false, "parse an expression given on the command line")
}

func runParse(_ *cobra.Command, args []string) error {
	var input, filename string
	if parseExpression {
		if len(args) == 0 {
			return fmt.Errorf("no expression provided")
		}
		input, filename = args[0], "<eval>"
	} else if len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("error reading file: %w", err)
		}
		input, filename = string(data), args[0]
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("error reading stdin: %w", err)
		}
		input, filename = string(data), "<stdin>"
	}

	mod, errs := parseForDump(input, filename)
	if len(errs) > 0 {
		return fmt.Errorf("parsing failed with %d error(s)", len(errs))
	}
	dumpNode(mod, 0)
	return nil
}

// parseForDump parses input and, on failure, prints each SyntaxError in the
// diag source-context format before returning the accumulated errors.
func parseForDump(input, filename string) (*ast.Module, []*parser.Error) {
	mod, errs := parser.ParseModule(input)
	for _, e := range errs {
		se := diag.New(e.Pos, e.Message, input, filename)
		fmt.Fprintln(os.Stderr, se.Format(false))
	}
	return mod, errs
}

func dumpNode(node any, indent int) {
	pad := ""
	for i := 0; i < indent; i++ {
		pad += "  "
	}
	switch n := node.(type) {
	case *ast.Module:
		fmt.Printf("%sModule (%d statements)\n", pad, len(n.Body))
		for _, s := range n.Body {
			dumpNode(s, indent+1)
		}
	case *ast.ExprStatement:
		fmt.Printf("%sExprStatement\n", pad)
		dumpNode(n.X, indent+1)
	case *ast.If:
		fmt.Printf("%sIf\n", pad)
		dumpNode(n.Cond, indent+1)
		for _, s := range n.Body {
			dumpNode(s, indent+1)
		}
		for _, s := range n.Orelse {
			dumpNode(s, indent+1)
		}
	case *ast.FunctionDecl:
		fmt.Printf("%sFunctionDecl %s\n", pad, n.Name)
		for _, s := range n.Body {
			dumpNode(s, indent+1)
		}
	case *ast.ClassDecl:
		fmt.Printf("%sClassDecl %s\n", pad, n.Name)
		for _, s := range n.Body {
			dumpNode(s, indent+1)
		}
	case *ast.Binary:
		fmt.Printf("%sBinary (%s)\n", pad, n.Op.String())
		dumpNode(n.Left, indent+1)
		dumpNode(n.Right, indent+1)
	case *ast.Identifier:
		fmt.Printf("%sIdentifier: %s\n", pad, n.Name)
	case *ast.IntLiteral:
		fmt.Printf("%sIntLiteral: %s\n", pad, n.Text)
	case *ast.StringLiteral:
		fmt.Printf("%sStringLiteral: %q\n", pad, n.Value)
	default:
		fmt.Printf("%s%T\n", pad, node)
	}
}
