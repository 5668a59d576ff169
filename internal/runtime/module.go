package runtime

import "fmt"

// ModuleValue is a built-in module namespace (json, math, ...), reachable
// with `import name` or `from name import x` and attribute access
// thereafter. User code never constructs one directly.
type ModuleValue struct {
	Name    string
	Doc     string
	Members map[string]Value
}

// NewModule builds a ModuleValue from a name and its attribute table.
func NewModule(name string, members map[string]Value) *ModuleValue {
	return &ModuleValue{Name: name, Members: members}
}

func (m *ModuleValue) Type() string   { return "module" }
func (m *ModuleValue) String() string { return fmt.Sprintf("<module '%s'>", m.Name) }
func (m *ModuleValue) Repr() string   { return m.String() }
func (m *ModuleValue) Truthy() bool   { return true }

func (m *ModuleValue) GetAttr(name string) (Value, bool) {
	v, ok := m.Members[name]
	return v, ok
}

func (m *ModuleValue) SetAttr(name string, val Value) error {
	m.Members[name] = val
	return nil
}

func (m *ModuleValue) DelAttr(name string) error {
	if _, ok := m.Members[name]; !ok {
		return fmt.Errorf("module '%s' has no attribute '%s'", m.Name, name)
	}
	delete(m.Members, name)
	return nil
}
