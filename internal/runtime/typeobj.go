package runtime

import "fmt"

// BuiltinTypeValue is the `type()` result for a built-in (non-class)
// value — int, str, list, and so on — interned by name so `type(1) is int`
// holds the way the reference language's singleton type objects do.
type BuiltinTypeValue struct{ Name string }

var builtinTypes = map[string]*BuiltinTypeValue{}

// BuiltinType returns the interned type object for name, creating it on
// first use.
func BuiltinType(name string) *BuiltinTypeValue {
	if t, ok := builtinTypes[name]; ok {
		return t
	}
	t := &BuiltinTypeValue{Name: name}
	builtinTypes[name] = t
	return t
}

func (t *BuiltinTypeValue) Type() string   { return "type" }
func (t *BuiltinTypeValue) String() string { return fmt.Sprintf("<class '%s'>", t.Name) }
func (t *BuiltinTypeValue) Repr() string   { return t.String() }
func (t *BuiltinTypeValue) Truthy() bool   { return true }

func (t *BuiltinTypeValue) Equals(other Value) (bool, error) {
	o, ok := other.(*BuiltinTypeValue)
	return ok && o.Name == t.Name, nil
}
