package cmd

import (
	"fmt"
	"os"

	"github.com/cwbudde/go-sli/internal/lexer"
	"github.com/spf13/cobra"
)

var (
	lexEval    string
	showPos    bool
	showType   bool
	onlyErrors bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize an SL file or expression",
	Long: `Tokenize SL source and print the resulting tokens, for debugging
the lexer and understanding how indentation/strings/f-strings are split.`,
	Args: cobra.MaximumNArgs(1),
	RunE: lexScript,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().StringVarP(&lexEval, "eval", "e", "", "tokenize inline code instead of reading from file")
	lexCmd.Flags().BoolVar(&showPos, "show-pos", false, "show token positions (line:column)")
	lexCmd.Flags().BoolVar(&showType, "show-type", false, "show token type names")
	lexCmd.Flags().BoolVar(&onlyErrors, "only-errors", false, "show only illegal tokens")
}

func lexScript(_ *cobra.Command, args []string) error {
	input, _, err := readSource(lexEval, args)
	if err != nil {
		return err
	}

	l := lexer.New(input)
	count, errCount := 0, 0
	for {
		tok := l.NextToken()
		isIllegal := tok.Type == lexer.ILLEGAL
		if onlyErrors && !isIllegal {
			if tok.Type == lexer.EOF {
				break
			}
			continue
		}
		count++
		if isIllegal {
			errCount++
		}
		printToken(tok)
		if tok.Type == lexer.EOF {
			break
		}
	}

	if onlyErrors && errCount > 0 {
		return fmt.Errorf("found %d illegal token(s)", errCount)
	}
	return nil
}

func printToken(tok lexer.Token) {
	var out string
	if showType {
		out = fmt.Sprintf("[%-14s]", tok.Type.String())
	}
	if tok.Type == lexer.EOF {
		out += " EOF"
	} else if tok.Type == lexer.ILLEGAL {
		out += fmt.Sprintf(" ILLEGAL: %q", tok.Literal)
	} else if tok.Literal == "" {
		out += fmt.Sprintf(" %s", tok.Type.String())
	} else {
		out += fmt.Sprintf(" %q", tok.Literal)
	}
	if showPos {
		out += fmt.Sprintf(" @%d:%d", tok.Pos.Line, tok.Pos.Column)
	}
	fmt.Fprintln(os.Stdout, out)
}
