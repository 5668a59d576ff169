package runtime

// Value is a runtime value in the SL interpreter. Every concrete value type
// in this package implements it.
type Value interface {
	// Type returns the SL type name of the value, as reported by the
	// built-in type() function (e.g. "int", "str", "list").
	Type() string
	// String returns the str() representation of the value.
	String() string
	// Repr returns the repr() representation of the value, which for
	// containers recurses using each element's Repr rather than String.
	Repr() string
	// Truthy implements the language's notion of truthiness for use in
	// `if`, `while`, `and`/`or`, and boolean conversion.
	Truthy() bool
}

// NumericValue is implemented by values usable in arithmetic: Int, Float,
// and Bool (bools participate in arithmetic the way the language allows).
type NumericValue interface {
	Value
	AsInt() (IntValueData, bool)
	AsFloat() (float64, bool)
}

// ComparableValue supports == and !=.
type ComparableValue interface {
	Value
	Equals(other Value) (bool, error)
}

// OrderableValue extends ComparableValue with <, <=, >, >=.
type OrderableValue interface {
	ComparableValue
	CompareTo(other Value) (int, error)
}

// CopyableValue supports the shallow-copy semantics used by `copy.copy`
// and by collection constructors taking another collection as a source.
type CopyableValue interface {
	Value
	Copy() Value
}

// HashableValue is implemented by values usable as dict keys / set members.
// HashKey must be a comparable Go value so it can be used as a map key
// internally; two values that compare equal must produce the same HashKey.
type HashableValue interface {
	Value
	HashKey() (any, error)
}

// IndexableValue is implemented by sequences supporting `v[i]` and `len(v)`.
type IndexableValue interface {
	Value
	GetIndex(index int64) (Value, error)
	Length() int64
}

// MutableSequenceValue additionally supports item assignment, `v[i] = x`.
type MutableSequenceValue interface {
	IndexableValue
	SetIndex(index int64, value Value) error
}

// SliceableValue supports `v[start:stop:step]`.
type SliceableValue interface {
	Value
	GetSlice(start, stop, step int64) (Value, error)
}

// CallableValue is implemented by anything invocable with `f(...)`:
// Function, BoundMethod, Class (construction), BuiltinCallable.
type CallableValue interface {
	Value
	// Call is invoked by the evaluator with already-bound positional and
	// keyword arguments (argument binding itself happens one layer up, in
	// internal/evaluator, since it needs access to the calling Environment
	// and the exception-raising machinery).
	Call(ev Evaluator, args []Value, kwargs map[string]Value) (Value, error)
}

// IterableValue is implemented by anything usable in `for x in v` and by
// `iter()`.
type IterableValue interface {
	Value
	Iterator() Iterator
}

// Iterator drives a single pass over an IterableValue. It mirrors the
// language's __next__ protocol: Next returns (value, true) for each element
// and (nil, false) once exhausted.
type Iterator interface {
	Next() (Value, bool)
}

// FailableIterator extends Iterator for sources whose exhaustion can also
// mean "stopped because of a real exception" rather than plain
// completion — generators that raise mid-body, and user-defined __next__
// methods that raise something other than StopIteration. Every other
// Iterable (list, dict, range, str, ...) can't fail mid-iteration and has
// no reason to implement it. Callers that need to tell the two apart
// type-assert to this after a false Next().
type FailableIterator interface {
	Iterator
	// Err returns the exception that ended iteration, or nil if the most
	// recent false Next() was plain exhaustion.
	Err() error
}

// AttributeHolder is implemented by values that carry their own attribute
// namespace reachable with `.` (Instance, Class, Module).
type AttributeHolder interface {
	Value
	GetAttr(name string) (Value, bool)
	SetAttr(name string, val Value) error
	DelAttr(name string) error
}

// Evaluator is the minimal surface internal/runtime needs back from
// internal/evaluator to invoke user-defined callables (closures, bound
// methods, generators) without an import cycle: runtime defines the Value
// vocabulary, evaluator defines how SL code actually runs.
type Evaluator interface {
	// CallFunction invokes a Function or BoundMethod value with positional
	// and keyword arguments already resolved to Values.
	CallFunction(fn Value, args []Value, kwargs map[string]Value) (Value, error)
	// Raise constructs and returns a Go error wrapping an ExceptionValue of
	// the named built-in exception class, for use by built-ins and operator
	// dispatch that need to signal a language-level exception.
	Raise(class string, format string, args ...any) error
}
