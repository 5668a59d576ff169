package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/cwbudde/go-sli/pkg/sli"
	"github.com/spf13/cobra"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive SL session",
	Long:  `Read-eval-print loop: each line (or indented block) is parsed and run against one shared Interpreter, so definitions persist across entries.`,
	RunE:  runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runRepl(_ *cobra.Command, _ []string) error {
	interp := sli.New(sli.WithStdout(os.Stdout))
	scanner := bufio.NewScanner(os.Stdin)
	var pending strings.Builder

	fmt.Println("sli " + Version + " — type exit() or Ctrl-D to quit")
	for {
		if pending.Len() == 0 {
			fmt.Print(">>> ")
		} else {
			fmt.Print("... ")
		}
		if !scanner.Scan() {
			fmt.Println()
			return nil
		}
		line := scanner.Text()
		if pending.Len() == 0 && strings.TrimSpace(line) == "" {
			continue
		}
		pending.WriteString(line)
		pending.WriteString("\n")

		// A line ending in ':' or a continued indent means more input is
		// expected; a blank line (or a line with no trailing colon/indent)
		// closes the block.
		if strings.HasSuffix(strings.TrimRight(line, " \t"), ":") || (line != "" && (line[0] == ' ' || line[0] == '\t')) {
			continue
		}

		v, err := interp.Run(pending.String())
		pending.Reset()
		if err != nil {
			if re, ok := err.(*sli.RunError); ok {
				exitWithErrorNonFatal(re.Error())
			} else {
				exitWithErrorNonFatal(err.Error())
			}
			continue
		}
		if v != nil {
			fmt.Println(sli.ToHost(v))
		}
	}
}

// exitWithErrorNonFatal prints a REPL-iteration error without terminating
// the loop or the process, since one bad line shouldn't end the session.
func exitWithErrorNonFatal(msg string) {
	fmt.Fprintln(os.Stderr, msg)
}
