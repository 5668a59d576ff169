package evaluator

import (
	"strings"

	"github.com/cwbudde/go-sli/internal/runtime"
)

func boolValue(b bool) runtime.Value {
	if b {
		return runtime.True
	}
	return runtime.False
}

// builtinMethodFunc is the shape every built-in container/string method
// implements before being bound into a callable via lookupBuiltinMethod.
type builtinMethodFunc func(args []runtime.Value, kwargs map[string]runtime.Value) (runtime.Value, error)

// lookupBuiltinMethod resolves `recv.name` for one of the language's
// built-in container/string types (list.append, str.upper, dict.get, ...).
// Unlike user classes, these types carry no Dict to search, so each gets
// its own small table here instead of going through ClassValue.LookupMRO.
func (ev *Evaluator) lookupBuiltinMethod(obj runtime.Value, name string) (runtime.Value, bool) {
	var fn builtinMethodFunc
	switch o := obj.(type) {
	case *runtime.StrValue:
		fn = ev.strMethod(o, name)
	case *runtime.ListValue:
		fn = ev.listMethod(o, name)
	case *runtime.DictValue:
		fn = ev.dictMethod(o, name)
	case *runtime.SetValue:
		fn = ev.setMethod(o, name)
	case *runtime.TupleValue:
		fn = ev.tupleMethod(o, name)
	}
	if fn == nil {
		return nil, false
	}
	return runtime.NewBuiltin(name, func(_ runtime.Evaluator, args []runtime.Value, kwargs map[string]runtime.Value) (runtime.Value, error) {
		return fn(args, kwargs)
	}), true
}

func (ev *Evaluator) wantStrArg(args []runtime.Value, i int, method string) (string, error) {
	if i >= len(args) {
		return "", ev.Raise("TypeError", "%s() missing argument", method)
	}
	s, ok := args[i].(*runtime.StrValue)
	if !ok {
		return "", ev.Raise("TypeError", "%s() argument must be str, not %s", method, args[i].Type())
	}
	return s.Value, nil
}

// strMethod implements the common str methods: whitespace/case
// transforms, splitting/joining, substring search, and predicate checks.
func (ev *Evaluator) strMethod(s *runtime.StrValue, name string) builtinMethodFunc {
	switch name {
	case "upper":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			return runtime.NewStr(strings.ToUpper(s.Value)), nil
		}
	case "lower":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			return runtime.NewStr(strings.ToLower(s.Value)), nil
		}
	case "strip":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			if len(args) == 0 {
				return runtime.NewStr(strings.TrimSpace(s.Value)), nil
			}
			cut, err := ev.wantStrArg(args, 0, "strip")
			if err != nil {
				return nil, err
			}
			return runtime.NewStr(strings.Trim(s.Value, cut)), nil
		}
	case "lstrip":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			if len(args) == 0 {
				return runtime.NewStr(strings.TrimLeft(s.Value, " \t\n\r\v\f")), nil
			}
			cut, err := ev.wantStrArg(args, 0, "lstrip")
			if err != nil {
				return nil, err
			}
			return runtime.NewStr(strings.TrimLeft(s.Value, cut)), nil
		}
	case "rstrip":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			if len(args) == 0 {
				return runtime.NewStr(strings.TrimRight(s.Value, " \t\n\r\v\f")), nil
			}
			cut, err := ev.wantStrArg(args, 0, "rstrip")
			if err != nil {
				return nil, err
			}
			return runtime.NewStr(strings.TrimRight(s.Value, cut)), nil
		}
	case "split":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			var parts []string
			if len(args) == 0 || args[0] == runtime.None {
				parts = strings.Fields(s.Value)
			} else {
				sep, err := ev.wantStrArg(args, 0, "split")
				if err != nil {
					return nil, err
				}
				parts = strings.Split(s.Value, sep)
			}
			elems := make([]runtime.Value, len(parts))
			for i, p := range parts {
				elems[i] = runtime.NewStr(p)
			}
			return runtime.NewList(elems), nil
		}
	case "join":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			if len(args) != 1 {
				return nil, ev.Raise("TypeError", "join() takes exactly one argument")
			}
			seq, err := ev.asSequence(args[0])
			if err != nil {
				return nil, err
			}
			parts := make([]string, len(seq))
			for i, v := range seq {
				sv, ok := v.(*runtime.StrValue)
				if !ok {
					return nil, ev.Raise("TypeError", "sequence item %d: expected str instance, %s found", i, v.Type())
				}
				parts[i] = sv.Value
			}
			return runtime.NewStr(strings.Join(parts, s.Value)), nil
		}
	case "replace":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			old, err := ev.wantStrArg(args, 0, "replace")
			if err != nil {
				return nil, err
			}
			neu, err := ev.wantStrArg(args, 1, "replace")
			if err != nil {
				return nil, err
			}
			count := -1
			if len(args) >= 3 {
				n, err := ev.toInt64(args[2])
				if err != nil {
					return nil, err
				}
				count = int(n)
			}
			return runtime.NewStr(strings.Replace(s.Value, old, neu, count)), nil
		}
	case "startswith":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			prefix, err := ev.wantStrArg(args, 0, "startswith")
			if err != nil {
				return nil, err
			}
			return boolValue(strings.HasPrefix(s.Value, prefix)), nil
		}
	case "endswith":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			suffix, err := ev.wantStrArg(args, 0, "endswith")
			if err != nil {
				return nil, err
			}
			return boolValue(strings.HasSuffix(s.Value, suffix)), nil
		}
	case "find":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			sub, err := ev.wantStrArg(args, 0, "find")
			if err != nil {
				return nil, err
			}
			idx := strings.Index(s.Value, sub)
			if idx < 0 {
				return runtime.NewInt(-1), nil
			}
			return runtime.NewInt(int64(len([]rune(s.Value[:idx])))), nil
		}
	case "count":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			sub, err := ev.wantStrArg(args, 0, "count")
			if err != nil {
				return nil, err
			}
			return runtime.NewInt(int64(strings.Count(s.Value, sub))), nil
		}
	case "capitalize":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			if s.Value == "" {
				return runtime.NewStr(""), nil
			}
			r := []rune(s.Value)
			return runtime.NewStr(strings.ToUpper(string(r[0])) + strings.ToLower(string(r[1:]))), nil
		}
	case "title":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			words := strings.Fields(s.Value)
			for i, w := range words {
				r := []rune(strings.ToLower(w))
				if len(r) > 0 {
					r[0] = []rune(strings.ToUpper(string(r[0])))[0]
				}
				words[i] = string(r)
			}
			return runtime.NewStr(strings.Join(words, " ")), nil
		}
	case "isdigit":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			if s.Value == "" {
				return runtime.False, nil
			}
			for _, r := range s.Value {
				if r < '0' || r > '9' {
					return runtime.False, nil
				}
			}
			return runtime.True, nil
		}
	case "isalpha":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			if s.Value == "" {
				return runtime.False, nil
			}
			for _, r := range s.Value {
				if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')) {
					return runtime.False, nil
				}
			}
			return runtime.True, nil
		}
	case "isspace":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			if s.Value == "" {
				return runtime.False, nil
			}
			return boolValue(strings.TrimSpace(s.Value) == ""), nil
		}
	case "format":
		return func(args []runtime.Value, kwargs map[string]runtime.Value) (runtime.Value, error) {
			return ev.strFormat(s.Value, args, kwargs)
		}
	}
	return nil
}

// strFormat implements the `{}`/`{name}`-placeholder subset of str.format:
// positional `{}`/`{0}` holes consume args in order, `{name}` holes look up
// kwargs.
func (ev *Evaluator) strFormat(tmpl string, args []runtime.Value, kwargs map[string]runtime.Value) (runtime.Value, error) {
	var sb strings.Builder
	autoIndex := 0
	i := 0
	for i < len(tmpl) {
		c := tmpl[i]
		if c == '{' && i+1 < len(tmpl) && tmpl[i+1] == '{' {
			sb.WriteByte('{')
			i += 2
			continue
		}
		if c == '}' && i+1 < len(tmpl) && tmpl[i+1] == '}' {
			sb.WriteByte('}')
			i += 2
			continue
		}
		if c == '{' {
			end := strings.IndexByte(tmpl[i:], '}')
			if end < 0 {
				return nil, ev.Raise("ValueError", "Single '{' encountered in format string")
			}
			field := tmpl[i+1 : i+end]
			var v runtime.Value
			if field == "" {
				if autoIndex >= len(args) {
					return nil, ev.Raise("IndexError", "Replacement index %d out of range for positional args tuple", autoIndex)
				}
				v = args[autoIndex]
				autoIndex++
			} else if n, ok := parseUint(field); ok {
				if n >= len(args) {
					return nil, ev.Raise("IndexError", "Replacement index %d out of range for positional args tuple", n)
				}
				v = args[n]
			} else {
				kv, ok := kwargs[field]
				if !ok {
					return nil, ev.Raise("KeyError", "'%s'", field)
				}
				v = kv
			}
			sb.WriteString(v.String())
			i += end + 1
			continue
		}
		sb.WriteByte(c)
		i++
	}
	return runtime.NewStr(sb.String()), nil
}

func parseUint(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

// listMethod implements the mutating/query methods on list: append,
// extend, insert, remove, pop, index, count, sort, reverse, clear, copy.
func (ev *Evaluator) listMethod(l *runtime.ListValue, name string) builtinMethodFunc {
	switch name {
	case "append":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			if len(args) != 1 {
				return nil, ev.Raise("TypeError", "append() takes exactly one argument")
			}
			l.Append(args[0])
			return runtime.None, nil
		}
	case "extend":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			if len(args) != 1 {
				return nil, ev.Raise("TypeError", "extend() takes exactly one argument")
			}
			seq, err := ev.asSequence(args[0])
			if err != nil {
				return nil, err
			}
			l.Elements = append(l.Elements, seq...)
			return runtime.None, nil
		}
	case "insert":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			if len(args) != 2 {
				return nil, ev.Raise("TypeError", "insert() takes exactly two arguments")
			}
			idx, err := ev.toInt64(args[0])
			if err != nil {
				return nil, err
			}
			n := int64(len(l.Elements))
			if idx < 0 {
				idx += n
			}
			if idx < 0 {
				idx = 0
			}
			if idx > n {
				idx = n
			}
			l.Elements = append(l.Elements, nil)
			copy(l.Elements[idx+1:], l.Elements[idx:])
			l.Elements[idx] = args[1]
			return runtime.None, nil
		}
	case "remove":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			if len(args) != 1 {
				return nil, ev.Raise("TypeError", "remove() takes exactly one argument")
			}
			for i, v := range l.Elements {
				if mustEq(ev, v, args[0]) {
					l.Elements = append(l.Elements[:i], l.Elements[i+1:]...)
					return runtime.None, nil
				}
			}
			return nil, ev.Raise("ValueError", "list.remove(x): x not in list")
		}
	case "pop":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			if len(l.Elements) == 0 {
				return nil, ev.Raise("IndexError", "pop from empty list")
			}
			idx := int64(len(l.Elements) - 1)
			if len(args) == 1 {
				n, err := ev.toInt64(args[0])
				if err != nil {
					return nil, err
				}
				idx = n
				if idx < 0 {
					idx += int64(len(l.Elements))
				}
			}
			if idx < 0 || idx >= int64(len(l.Elements)) {
				return nil, ev.Raise("IndexError", "pop index out of range")
			}
			v := l.Elements[idx]
			l.Elements = append(l.Elements[:idx], l.Elements[idx+1:]...)
			return v, nil
		}
	case "index":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			if len(args) != 1 {
				return nil, ev.Raise("TypeError", "index() takes exactly one argument")
			}
			for i, v := range l.Elements {
				if mustEq(ev, v, args[0]) {
					return runtime.NewInt(int64(i)), nil
				}
			}
			return nil, ev.Raise("ValueError", "%s is not in list", args[0].Repr())
		}
	case "count":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			if len(args) != 1 {
				return nil, ev.Raise("TypeError", "count() takes exactly one argument")
			}
			n := 0
			for _, v := range l.Elements {
				if mustEq(ev, v, args[0]) {
					n++
				}
			}
			return runtime.NewInt(int64(n)), nil
		}
	case "sort":
		return func(args []runtime.Value, kwargs map[string]runtime.Value) (runtime.Value, error) {
			if err := ev.sortValues(l.Elements, kwargs); err != nil {
				return nil, err
			}
			return runtime.None, nil
		}
	case "reverse":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			for i, j := 0, len(l.Elements)-1; i < j; i, j = i+1, j-1 {
				l.Elements[i], l.Elements[j] = l.Elements[j], l.Elements[i]
			}
			return runtime.None, nil
		}
	case "clear":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			l.Elements = nil
			return runtime.None, nil
		}
	case "copy":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			return l.Copy(), nil
		}
	}
	return nil
}

// dictMethod implements dict's view/mutation methods: get, setdefault,
// pop, update, keys/values/items, clear, copy.
func (ev *Evaluator) dictMethod(d *runtime.DictValue, name string) builtinMethodFunc {
	switch name {
	case "get":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			if len(args) == 0 {
				return nil, ev.Raise("TypeError", "get() missing required argument: 'key'")
			}
			if v, ok := d.Get(args[0]); ok {
				return v, nil
			}
			if len(args) > 1 {
				return args[1], nil
			}
			return runtime.None, nil
		}
	case "setdefault":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			if len(args) == 0 {
				return nil, ev.Raise("TypeError", "setdefault() missing required argument: 'key'")
			}
			if v, ok := d.Get(args[0]); ok {
				return v, nil
			}
			def := runtime.Value(runtime.None)
			if len(args) > 1 {
				def = args[1]
			}
			if err := d.Set(args[0], def); err != nil {
				return nil, ev.Raise("TypeError", "%s", err.Error())
			}
			return def, nil
		}
	case "pop":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			if len(args) == 0 {
				return nil, ev.Raise("TypeError", "pop() missing required argument: 'key'")
			}
			if v, ok := d.Get(args[0]); ok {
				d.Delete(args[0])
				return v, nil
			}
			if len(args) > 1 {
				return args[1], nil
			}
			return nil, ev.Raise("KeyError", "%s", args[0].Repr())
		}
	case "update":
		return func(args []runtime.Value, kwargs map[string]runtime.Value) (runtime.Value, error) {
			if len(args) == 1 {
				other, ok := args[0].(*runtime.DictValue)
				if !ok {
					return nil, ev.Raise("TypeError", "update() argument must be a dict")
				}
				for _, k := range other.Keys() {
					v, _ := other.Get(k)
					d.Set(k, v)
				}
			}
			for k, v := range kwargs {
				d.Set(runtime.NewStr(k), v)
			}
			return runtime.None, nil
		}
	case "keys":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			return runtime.NewList(d.Keys()), nil
		}
	case "values":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			return runtime.NewList(d.Values()), nil
		}
	case "items":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			pairs := d.Items()
			elems := make([]runtime.Value, len(pairs))
			for i, p := range pairs {
				elems[i] = p
			}
			return runtime.NewList(elems), nil
		}
	case "clear":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			for _, k := range d.Keys() {
				d.Delete(k)
			}
			return runtime.None, nil
		}
	case "copy":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			return d.Copy(), nil
		}
	}
	return nil
}

// setMethod implements set's mutation/algebra methods: add, discard,
// remove, union, intersection, difference, update, clear, copy.
func (ev *Evaluator) setMethod(s *runtime.SetValue, name string) builtinMethodFunc {
	switch name {
	case "add":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			if len(args) != 1 {
				return nil, ev.Raise("TypeError", "add() takes exactly one argument")
			}
			if err := s.Add(args[0]); err != nil {
				return nil, ev.Raise("TypeError", "%s", err.Error())
			}
			return runtime.None, nil
		}
	case "discard":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			if len(args) != 1 {
				return nil, ev.Raise("TypeError", "discard() takes exactly one argument")
			}
			s.Remove(args[0])
			return runtime.None, nil
		}
	case "remove":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			if len(args) != 1 {
				return nil, ev.Raise("TypeError", "remove() takes exactly one argument")
			}
			ok, err := s.Remove(args[0])
			if err != nil {
				return nil, ev.Raise("TypeError", "%s", err.Error())
			}
			if !ok {
				return nil, ev.Raise("KeyError", "%s", args[0].Repr())
			}
			return runtime.None, nil
		}
	case "union":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			out := runtime.NewSet()
			for _, v := range s.Items() {
				out.Add(v)
			}
			for _, a := range args {
				seq, err := ev.asSequence(a)
				if err != nil {
					return nil, err
				}
				for _, v := range seq {
					out.Add(v)
				}
			}
			return out, nil
		}
	case "intersection":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			out := runtime.NewSet()
			for _, v := range s.Items() {
				keep := true
				for _, a := range args {
					seq, err := ev.asSequence(a)
					if err != nil {
						return nil, err
					}
					found := false
					for _, o := range seq {
						if mustEq(ev, v, o) {
							found = true
							break
						}
					}
					if !found {
						keep = false
						break
					}
				}
				if keep {
					out.Add(v)
				}
			}
			return out, nil
		}
	case "difference":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			out := runtime.NewSet()
			for _, v := range s.Items() {
				excluded := false
				for _, a := range args {
					seq, err := ev.asSequence(a)
					if err != nil {
						return nil, err
					}
					for _, o := range seq {
						if mustEq(ev, v, o) {
							excluded = true
							break
						}
					}
					if excluded {
						break
					}
				}
				if !excluded {
					out.Add(v)
				}
			}
			return out, nil
		}
	case "update":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			for _, a := range args {
				seq, err := ev.asSequence(a)
				if err != nil {
					return nil, err
				}
				for _, v := range seq {
					s.Add(v)
				}
			}
			return runtime.None, nil
		}
	case "clear":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			for _, v := range append([]runtime.Value{}, s.Items()...) {
				s.Remove(v)
			}
			return runtime.None, nil
		}
	case "copy":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			out := runtime.NewSet()
			for _, v := range s.Items() {
				out.Add(v)
			}
			return out, nil
		}
	}
	return nil
}

// tupleMethod implements tuple's two read-only methods: count and index.
func (ev *Evaluator) tupleMethod(tp *runtime.TupleValue, name string) builtinMethodFunc {
	switch name {
	case "count":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			if len(args) != 1 {
				return nil, ev.Raise("TypeError", "count() takes exactly one argument")
			}
			n := 0
			for _, v := range tp.Elements {
				if mustEq(ev, v, args[0]) {
					n++
				}
			}
			return runtime.NewInt(int64(n)), nil
		}
	case "index":
		return func(args []runtime.Value, _ map[string]runtime.Value) (runtime.Value, error) {
			if len(args) != 1 {
				return nil, ev.Raise("TypeError", "index() takes exactly one argument")
			}
			for i, v := range tp.Elements {
				if mustEq(ev, v, args[0]) {
					return runtime.NewInt(int64(i)), nil
				}
			}
			return nil, ev.Raise("ValueError", "%s is not in tuple", args[0].Repr())
		}
	}
	return nil
}
