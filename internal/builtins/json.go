// Package builtins provides the Go-native implementations backing SL's
// built-in modules that wrap a third-party library rather than pure
// language mechanics — json (tidwall/gjson + tidwall/sjson) and math
// (stdlib). The core function builtins (len, range, map, ...), which need
// access to the evaluator to call back into user code, live in
// internal/evaluator instead; this package only needs the runtime value
// model.
package builtins

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/cwbudde/go-sli/internal/runtime"
)

// JSONLoads parses a JSON document into SL values: objects become Dict
// (insertion order matches document order), arrays become List, numbers
// become Int when they have no fractional/exponent part and Float
// otherwise, matching the reference language's json.loads behavior.
func JSONLoads(text string) (runtime.Value, error) {
	if !gjson.Valid(text) {
		return nil, fmt.Errorf("invalid JSON document")
	}
	return gjsonToValue(gjson.Parse(text)), nil
}

func gjsonToValue(r gjson.Result) runtime.Value {
	switch r.Type {
	case gjson.Null:
		return runtime.None
	case gjson.True:
		return runtime.True
	case gjson.False:
		return runtime.False
	case gjson.Number:
		raw := r.Raw
		if !strings.ContainsAny(raw, ".eE") {
			if iv, err := runtime.NewIntFromString(raw, 10); err == nil {
				return iv
			}
		}
		return runtime.NewFloat(r.Float())
	case gjson.String:
		return runtime.NewStr(r.String())
	case gjson.JSON:
		if r.IsArray() {
			var elems []runtime.Value
			r.ForEach(func(_, v gjson.Result) bool {
				elems = append(elems, gjsonToValue(v))
				return true
			})
			return runtime.NewList(elems)
		}
		d := runtime.NewDict()
		r.ForEach(func(k, v gjson.Result) bool {
			d.Set(runtime.NewStr(k.String()), gjsonToValue(v))
			return true
		})
		return d
	}
	return runtime.None
}

// JSONDumps serializes an SL value to JSON text, pretty-printing with the
// given indent width when indent >= 0.
func JSONDumps(v runtime.Value, indent int) (string, error) {
	doc, err := valueToJSON("", v)
	if err != nil {
		return "", err
	}
	if indent < 0 {
		return doc, nil
	}
	return indentJSON(doc, indent), nil
}

func valueToJSON(path string, v runtime.Value) (string, error) {
	switch val := v.(type) {
	case *runtime.NoneValue:
		return "null", nil
	case *runtime.BoolValue:
		return strconv.FormatBool(val.Value), nil
	case *runtime.IntValue:
		return val.Val.String(), nil
	case *runtime.FloatValue:
		return strconv.FormatFloat(val.Value, 'g', -1, 64), nil
	case *runtime.StrValue:
		return jsonQuote(val.Value), nil
	case *runtime.ListValue:
		doc := "[]"
		var err error
		for i, e := range val.Elements {
			ev, eerr := valueToJSONRaw(e)
			if eerr != nil {
				return "", eerr
			}
			doc, err = sjson.SetRaw(doc, strconv.Itoa(i), ev)
			if err != nil {
				return "", err
			}
		}
		return doc, nil
	case *runtime.TupleValue:
		return valueToJSON(path, runtime.NewList(val.Elements))
	case *runtime.DictValue:
		doc := "{}"
		var err error
		for _, k := range val.Keys() {
			ks, ok := k.(*runtime.StrValue)
			if !ok {
				return "", fmt.Errorf("keys must be str to serialize as JSON, not %s", k.Type())
			}
			value, _ := val.Get(k)
			jv, jerr := valueToJSONRaw(value)
			if jerr != nil {
				return "", jerr
			}
			doc, err = sjson.SetRaw(doc, sjsonEscapeKey(ks.Value), jv)
			if err != nil {
				return "", err
			}
		}
		return doc, nil
	}
	return "", fmt.Errorf("object of type '%s' is not JSON serializable", v.Type())
}

func valueToJSONRaw(v runtime.Value) (string, error) { return valueToJSON("", v) }

// jsonQuote renders s as a JSON string literal, escaping the characters
// the JSON grammar requires while leaving other Unicode text as literal
// UTF-8 (JSON strings do not require \u-escaping non-ASCII text).
func jsonQuote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&sb, `\u%04x`, r)
			} else {
				sb.WriteRune(r)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// sjsonEscapeKey guards against a key containing a sjson path separator
// (`.`), which would otherwise be parsed as a nested path instead of a
// literal object key.
func sjsonEscapeKey(key string) string {
	return strings.ReplaceAll(key, ".", "\\.")
}

// indentJSON re-renders a compact JSON document with the given indent
// width, matching json.dumps(..., indent=N) output shape.
func indentJSON(doc string, width int) string {
	var sb strings.Builder
	depth := 0
	inString := false
	pad := strings.Repeat(" ", width)
	newline := func() {
		sb.WriteByte('\n')
		sb.WriteString(strings.Repeat(pad, depth))
	}
	runes := []rune(doc)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if inString {
			sb.WriteRune(c)
			if c == '\\' && i+1 < len(runes) {
				i++
				sb.WriteRune(runes[i])
				continue
			}
			if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
			sb.WriteRune(c)
		case '{', '[':
			sb.WriteRune(c)
			if i+1 < len(runes) && (runes[i+1] == '}' || runes[i+1] == ']') {
				i++
				sb.WriteRune(runes[i])
				continue
			}
			depth++
			newline()
		case '}', ']':
			depth--
			newline()
			sb.WriteRune(c)
		case ',':
			sb.WriteRune(c)
			newline()
		case ':':
			sb.WriteString(": ")
		default:
			if c != ' ' && c != '\t' && c != '\n' {
				sb.WriteRune(c)
			}
		}
	}
	return sb.String()
}

// SortedJSONKeys is exposed for tests asserting stable key order in
// dict-to-JSON round-trips built on insertion order rather than sorted
// order (kept here since gjson/sjson themselves are order-preserving on
// parse but this package's own DictValue iteration is the source of
// truth).
func SortedJSONKeys(keys []string) []string {
	out := append([]string{}, keys...)
	sort.Strings(out)
	return out
}
