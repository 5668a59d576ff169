package diag

import (
	"fmt"
	"strings"

	"github.com/cwbudde/go-sli/internal/lexer"
)

// Frame is one call-stack entry captured when a SL exception is raised:
// the function it was raised from (or "<module>") and the position of the
// statement/expression being evaluated.
type Frame struct {
	FuncName string
	Pos      lexer.Position
	File     string
}

// Traceback is the ordered call stack attached to an uncaught exception,
// outermost frame first, mirroring CPython's "most recent call last" order
// rendered top-to-bottom.
type Traceback struct {
	Frames []Frame
}

// Push appends a frame after the existing ones, so frames must be pushed
// outermost first. The evaluator does not call it; a Traceback is only
// built by callers that push frames themselves.
func (t *Traceback) Push(f Frame) { t.Frames = append(t.Frames, f) }

// Render produces the "Traceback (most recent call last):" block, one line
// per frame, ending with the exception's own message line.
func (t *Traceback) Render(exceptionLine string) string {
	var sb strings.Builder
	sb.WriteString("Traceback (most recent call last):\n")
	for _, f := range t.Frames {
		file := f.File
		if file == "" {
			file = "<module>"
		}
		fmt.Fprintf(&sb, "  File %q, line %d, in %s\n", file, f.Pos.Line, f.FuncName)
	}
	sb.WriteString(exceptionLine)
	return sb.String()
}
