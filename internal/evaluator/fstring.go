package evaluator

import (
	"strconv"
	"strings"

	"github.com/cwbudde/go-sli/internal/ast"
	"github.com/cwbudde/go-sli/internal/runtime"
)

// evalFString renders an f-string by walking its literal/expression parts
// in order, applying each hole's !conversion and :format-spec the way the
// reference language's f-strings do.
func (ev *Evaluator) evalFString(n *ast.FString, env *runtime.Environment) (runtime.Value, error) {
	var sb strings.Builder
	for _, part := range n.Parts {
		if part.Expr == nil {
			sb.WriteString(part.Literal)
			continue
		}
		v, err := ev.evalExpr(part.Expr, env)
		if err != nil {
			return nil, err
		}
		if part.SelfDoc {
			sb.WriteString(part.RawExpr)
			sb.WriteByte('=')
		}
		rendered, err := ev.convertValue(v, part.Conversion)
		if err != nil {
			return nil, err
		}
		spec, err := ev.renderFormatSpec(part.FormatSpec, env)
		if err != nil {
			return nil, err
		}
		formatted, err := ev.applyFormatSpec(rendered, v, spec)
		if err != nil {
			return nil, err
		}
		sb.WriteString(formatted)
	}
	return runtime.NewStr(sb.String()), nil
}

// convertValue applies an f-string hole's !conversion: !r (repr), !s
// (str), !a (ascii-safe repr, treated the same as !r here since this
// runtime's strings are already Unicode-safe), or no conversion.
func (ev *Evaluator) convertValue(v runtime.Value, conv byte) (string, error) {
	switch conv {
	case 'r', 'a':
		return v.Repr(), nil
	default:
		return v.String(), nil
	}
}

func (ev *Evaluator) renderFormatSpec(parts []ast.FStringPart, env *runtime.Environment) (string, error) {
	if len(parts) == 0 {
		return "", nil
	}
	var sb strings.Builder
	for _, part := range parts {
		if part.Expr == nil {
			sb.WriteString(part.Literal)
			continue
		}
		v, err := ev.evalExpr(part.Expr, env)
		if err != nil {
			return "", err
		}
		sb.WriteString(v.String())
	}
	return sb.String(), nil
}

// applyFormatSpec implements the common subset of the format mini-language
// used by f-strings and the format() built-in: [[fill]align][sign][0][width]
// [,][.precision][type]; there is no '#' alternate-form flag (a leading '#'
// after the sign is read as the type char). rendered is the already
// !conv-applied text; raw is
// the original value, consulted for numeric type chars that need the
// underlying number rather than its default string form.
func (ev *Evaluator) applyFormatSpec(rendered string, raw runtime.Value, spec string) (string, error) {
	if spec == "" {
		return rendered, nil
	}

	align := byte(0)
	fill := byte(' ')
	rest := spec
	if len(rest) >= 2 && strings.ContainsRune("<>^=", rune(rest[1])) {
		fill, align = rest[0], rest[1]
		rest = rest[2:]
	} else if len(rest) >= 1 && strings.ContainsRune("<>^=", rune(rest[0])) {
		align = rest[0]
		rest = rest[1:]
	}

	sign := byte(0)
	if len(rest) > 0 && strings.ContainsRune("+- ", rune(rest[0])) {
		sign = rest[0]
		rest = rest[1:]
	}

	zeroPad := false
	if len(rest) > 0 && rest[0] == '0' {
		zeroPad = true
		rest = rest[1:]
	}

	width := 0
	for len(rest) > 0 && rest[0] >= '0' && rest[0] <= '9' {
		width = width*10 + int(rest[0]-'0')
		rest = rest[1:]
	}

	comma := false
	if len(rest) > 0 && rest[0] == ',' {
		comma = true
		rest = rest[1:]
	}

	precision := -1
	if len(rest) > 0 && rest[0] == '.' {
		rest = rest[1:]
		p := 0
		for len(rest) > 0 && rest[0] >= '0' && rest[0] <= '9' {
			p = p*10 + int(rest[0]-'0')
			rest = rest[1:]
		}
		precision = p
	}

	typ := byte(0)
	if len(rest) > 0 {
		typ = rest[0]
	}

	text := rendered
	switch typ {
	case 'f', 'F':
		f, ok := asFloat(raw)
		if !ok {
			return "", ev.Raise("ValueError", "Unknown format code '%c' for object of type '%s'", typ, raw.Type())
		}
		if precision < 0 {
			precision = 6
		}
		text = strconv.FormatFloat(f, 'f', precision, 64)
		text = applySign(text, sign, f >= 0)
	case 'd':
		bi, ok := asBigInt(raw)
		if !ok {
			return "", ev.Raise("ValueError", "Unknown format code 'd' for object of type '%s'", raw.Type())
		}
		text = bi.String()
		text = applySign(text, sign, bi.Sign() >= 0)
	case 'x', 'X':
		bi, ok := asBigInt(raw)
		if !ok {
			return "", ev.Raise("ValueError", "Unknown format code '%c' for object of type '%s'", typ, raw.Type())
		}
		text = bi.Text(16)
		if typ == 'X' {
			text = strings.ToUpper(text)
		}
	case 'o':
		bi, ok := asBigInt(raw)
		if ok {
			text = bi.Text(8)
		}
	case 'b':
		bi, ok := asBigInt(raw)
		if ok {
			text = bi.Text(2)
		}
	case '%':
		f, ok := asFloat(raw)
		if ok {
			if precision < 0 {
				precision = 6
			}
			text = strconv.FormatFloat(f*100, 'f', precision, 64) + "%"
		}
	case 'e', 'E':
		f, ok := asFloat(raw)
		if ok {
			if precision < 0 {
				precision = 6
			}
			text = strconv.FormatFloat(f, byte(typ), precision, 64)
		}
	case 's', 0:
		if precision >= 0 && len(text) > precision {
			text = text[:precision]
		}
	}

	if comma {
		text = insertThousands(text)
	}

	if zeroPad && align == 0 {
		align = '='
		fill = '0'
	}
	if align == 0 {
		if typ != 0 && typ != 's' {
			align = '>'
		} else {
			align = '<'
		}
	}

	return pad(text, width, align, fill), nil
}

func applySign(text string, sign byte, nonNegative bool) string {
	if !nonNegative {
		return text
	}
	switch sign {
	case '+':
		return "+" + text
	case ' ':
		return " " + text
	}
	return text
}

func insertThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i:]
	}
	var sb strings.Builder
	n := len(intPart)
	for i, c := range intPart {
		if i > 0 && (n-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(c)
	}
	out := sb.String() + fracPart
	if neg {
		out = "-" + out
	}
	return out
}

func pad(text string, width int, align byte, fill byte) string {
	n := len([]rune(text))
	if n >= width {
		return text
	}
	padding := strings.Repeat(string(fill), width-n)
	switch align {
	case '>':
		return padding + text
	case '^':
		left := (width - n) / 2
		right := width - n - left
		return strings.Repeat(string(fill), left) + text + strings.Repeat(string(fill), right)
	case '=':
		if strings.HasPrefix(text, "-") || strings.HasPrefix(text, "+") {
			return text[:1] + padding + text[1:]
		}
		return padding + text
	default:
		return text + padding
	}
}
