package diag

import (
	"strings"
	"testing"

	"github.com/cwbudde/go-sli/internal/lexer"
)

func TestSourceError_FormatWithFile(t *testing.T) {
	source := "x = 1 +\n"
	e := New(lexer.Position{Line: 1, Column: 8}, "unexpected NEWLINE", source, "script.sl")
	out := e.Format(false)
	if !strings.Contains(out, "Error in script.sl:1:8") {
		t.Fatalf("missing header, got:\n%s", out)
	}
	if !strings.Contains(out, "x = 1 +") {
		t.Fatalf("missing source line, got:\n%s", out)
	}
	if !strings.Contains(out, "^") {
		t.Fatalf("missing caret, got:\n%s", out)
	}
	if !strings.Contains(out, "unexpected NEWLINE") {
		t.Fatalf("missing message, got:\n%s", out)
	}
}

func TestSourceError_FormatWithoutFile(t *testing.T) {
	e := New(lexer.Position{Line: 3, Column: 1}, "bad indent", "a\nb\nc\n", "")
	out := e.Format(false)
	if !strings.Contains(out, "Error at line 3:1") {
		t.Fatalf("expected file-less header, got:\n%s", out)
	}
}

func TestSourceError_CaretAlignsWithColumn(t *testing.T) {
	e := New(lexer.Position{Line: 1, Column: 5}, "msg", "abcdefgh\n", "f.sl")
	lines := strings.Split(e.Format(false), "\n")
	// line 0: header, line 1: "   1 | abcdefgh", line 2: caret line.
	caretLine := lines[2]
	caretCol := strings.Index(caretLine, "^")
	sourceLinePrefix := "   1 | "
	wantCol := len(sourceLinePrefix) + 5 - 1
	if caretCol != wantCol {
		t.Fatalf("caret at column %d, want %d (line: %q)", caretCol, wantCol, caretLine)
	}
}

func TestSourceError_ColorWrapsCaretAndMessage(t *testing.T) {
	e := New(lexer.Position{Line: 1, Column: 1}, "oops", "x\n", "f.sl")
	out := e.Format(true)
	if !strings.Contains(out, "\033[1;31m^\033[0m") {
		t.Fatalf("expected colorized caret, got:\n%s", out)
	}
	if !strings.Contains(out, "\033[1moops\033[0m") {
		t.Fatalf("expected colorized message, got:\n%s", out)
	}
}

func TestFormatAll_SingleErrorIsPassthrough(t *testing.T) {
	e := New(lexer.Position{Line: 1, Column: 1}, "oops", "x\n", "f.sl")
	if got := FormatAll([]*SourceError{e}, false); got != e.Format(false) {
		t.Fatalf("single-error FormatAll should match Format directly")
	}
}

func TestFormatAll_MultipleErrorsAreNumbered(t *testing.T) {
	e1 := New(lexer.Position{Line: 1, Column: 1}, "first", "x\ny\n", "f.sl")
	e2 := New(lexer.Position{Line: 2, Column: 1}, "second", "x\ny\n", "f.sl")
	out := FormatAll([]*SourceError{e1, e2}, false)
	if !strings.Contains(out, "2 error(s):") {
		t.Fatalf("missing error count header, got:\n%s", out)
	}
	if !strings.Contains(out, "[Error 1 of 2]") || !strings.Contains(out, "[Error 2 of 2]") {
		t.Fatalf("missing numbered markers, got:\n%s", out)
	}
}

func TestFormatAll_Empty(t *testing.T) {
	if got := FormatAll(nil, false); got != "" {
		t.Fatalf("expected empty string for no errors, got %q", got)
	}
}

func TestTraceback_RenderOrdersFramesOutermostFirst(t *testing.T) {
	var tb Traceback
	tb.Push(Frame{FuncName: "<module>", Pos: lexer.Position{Line: 10}})
	tb.Push(Frame{FuncName: "helper", Pos: lexer.Position{Line: 4}, File: "lib.sl"})
	out := tb.Render("ValueError: bad input")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if lines[0] != "Traceback (most recent call last):" {
		t.Fatalf("unexpected first line: %q", lines[0])
	}
	if !strings.Contains(lines[1], `"<module>"`) || !strings.Contains(lines[1], "line 10") {
		t.Fatalf("unexpected first frame line: %q", lines[1])
	}
	if !strings.Contains(lines[2], `"lib.sl"`) || !strings.Contains(lines[2], "in helper") {
		t.Fatalf("unexpected second frame line: %q", lines[2])
	}
	if lines[3] != "ValueError: bad input" {
		t.Fatalf("unexpected exception line: %q", lines[3])
	}
}
