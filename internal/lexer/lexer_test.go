package lexer

import "testing"

func collectTypes(t *testing.T, input string) []TokenType {
	t.Helper()
	l := New(input)
	var types []TokenType
	for {
		tok := l.NextToken()
		types = append(types, tok.Type)
		if tok.Type == EOF {
			break
		}
	}
	return types
}

func assertTypes(t *testing.T, got []TokenType, want ...TokenType) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("token count mismatch: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token[%d] = %s, want %s (full: %v)", i, got[i], want[i], got)
		}
	}
}

func TestNextToken_Operators(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []TokenType
	}{
		{"arithmetic", "1 + 2 * 3\n", []TokenType{INT, PLUS, INT, STAR, INT, NEWLINE, EOF}},
		{"compound assign", "x += 1\n", []TokenType{IDENT, PLUSEQ, INT, NEWLINE, EOF}},
		{"walrus", "(y := 2)\n", []TokenType{LPAREN, IDENT, WALRUS, INT, RPAREN, NEWLINE, EOF}},
		{"floordiv", "a // b\n", []TokenType{IDENT, DSLASH, IDENT, NEWLINE, EOF}},
		{"power", "a ** b\n", []TokenType{IDENT, DSTAR, IDENT, NEWLINE, EOF}},
		{"arrow", "def f() -> int: pass\n", []TokenType{DEF, IDENT, LPAREN, RPAREN, ARROW, IDENT, COLON, PASS, NEWLINE, EOF}},
		{"comparisons", "a <= b >= c != d == e\n", []TokenType{
			IDENT, LE, IDENT, GE, IDENT, NE, IDENT, EQ, IDENT, NEWLINE, EOF,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertTypes(t, collectTypes(t, tt.input), tt.want...)
		})
	}
}

func TestNextToken_Numbers(t *testing.T) {
	l := New("0x1F 0o17 0b101 3.14 1_000 2e10\n")
	tok := l.NextToken()
	if tok.Type != INT || tok.IntBase != 16 || tok.IntValue != "1F" {
		t.Fatalf("hex literal: got %+v", tok)
	}
	tok = l.NextToken()
	if tok.Type != INT || tok.IntBase != 8 || tok.IntValue != "17" {
		t.Fatalf("octal literal: got %+v", tok)
	}
	tok = l.NextToken()
	if tok.Type != INT || tok.IntBase != 2 || tok.IntValue != "101" {
		t.Fatalf("binary literal: got %+v", tok)
	}
	tok = l.NextToken()
	if tok.Type != FLOAT || tok.FloatValue != 3.14 {
		t.Fatalf("float literal: got %+v", tok)
	}
	tok = l.NextToken()
	if tok.Type != INT || tok.IntValue != "1000" {
		t.Fatalf("underscore int literal: got %+v", tok)
	}
	tok = l.NextToken()
	if tok.Type != FLOAT || tok.FloatValue != 2e10 {
		t.Fatalf("exponent float literal: got %+v", tok)
	}
}

func TestNextToken_Strings(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantTyp TokenType
	}{
		{"single quoted", `'hello'`, "hello", STRING},
		{"double quoted", `"hello"`, "hello", STRING},
		{"escapes", `'a\nb\tc'`, "a\nb\tc", STRING},
		{"raw string keeps backslash", `r'a\nb'`, `a\nb`, STRING},
		{"bytes literal", `b'data'`, "data", BYTES},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(tt.input)
			tok := l.NextToken()
			if tok.Type != tt.wantTyp {
				t.Fatalf("type = %s, want %s", tok.Type, tt.wantTyp)
			}
			if tok.StrValue != tt.want {
				t.Fatalf("StrValue = %q, want %q", tok.StrValue, tt.want)
			}
		})
	}
}

func TestNextToken_FStringHole(t *testing.T) {
	l := New(`f"sum={a+b:>3}"`)
	start := l.NextToken()
	if start.Type != FSTRING_START {
		t.Fatalf("expected FSTRING_START, got %s", start.Type)
	}
	mid := l.NextToken()
	if mid.Type != FSTRING_EXPR {
		t.Fatalf("expected FSTRING_EXPR, got %s", mid.Type)
	}
	if mid.Literal != "sum=" {
		t.Fatalf("literal-before = %q, want %q", mid.Literal, "sum=")
	}
	if mid.StrValue != "a+b:>3" {
		t.Fatalf("expr source = %q, want %q", mid.StrValue, "a+b:>3")
	}
	end := l.NextToken()
	if end.Type != FSTRING_END {
		t.Fatalf("expected FSTRING_END, got %s", end.Type)
	}
}

func TestNextToken_Indentation(t *testing.T) {
	input := "if x:\n    y = 1\n    z = 2\nelse:\n    w = 3\n"
	got := collectTypes(t, input)
	want := []TokenType{
		IF, IDENT, COLON, NEWLINE,
		INDENT,
		IDENT, ASSIGN, INT, NEWLINE,
		IDENT, ASSIGN, INT, NEWLINE,
		DEDENT,
		ELSE, COLON, NEWLINE,
		INDENT,
		IDENT, ASSIGN, INT, NEWLINE,
		DEDENT,
		EOF,
	}
	assertTypes(t, got, want...)
}

func TestNextToken_BracketsSuppressNewline(t *testing.T) {
	input := "x = [1,\n2,\n3]\n"
	got := collectTypes(t, input)
	want := []TokenType{
		IDENT, ASSIGN, LBRACKET, INT, COMMA, INT, COMMA, INT, RBRACKET, NEWLINE, EOF,
	}
	assertTypes(t, got, want...)
}

func TestNextToken_Keywords(t *testing.T) {
	input := "if elif else while for def class True False None\n"
	want := []TokenType{IF, ELIF, ELSE, WHILE, FOR, DEF, CLASS, TRUE, FALSE, NONE, NEWLINE, EOF}
	assertTypes(t, collectTypes(t, input), want...)
}

func TestNextToken_IllegalCharacterRecordsError(t *testing.T) {
	l := New("a $ b\n")
	for {
		tok := l.NextToken()
		if tok.Type == EOF {
			break
		}
	}
	errs := l.Errors()
	if len(errs) != 1 {
		t.Fatalf("expected 1 lexical error, got %d: %v", len(errs), errs)
	}
}

func TestLookupIdent(t *testing.T) {
	if LookupIdent("class") != CLASS {
		t.Fatalf("expected CLASS for keyword 'class'")
	}
	if LookupIdent("myVar") != IDENT {
		t.Fatalf("expected IDENT for non-keyword")
	}
}
