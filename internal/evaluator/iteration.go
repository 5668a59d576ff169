package evaluator

import "github.com/cwbudde/go-sli/internal/runtime"

// getIterator is the single entry point every iteration consumer (for,
// iter/next/list/tuple/asSequence, comprehensions, yield from) goes
// through to turn an arbitrary Value into a runtime.Iterator: built-in
// containers/generators already implement runtime.IterableValue directly,
// while a user-defined class participates by exposing __iter__ (called
// once to obtain the iterator object, per §4.5) and __next__ (called once
// per step on whatever __iter__ returned, commonly the instance itself).
func (ev *Evaluator) getIterator(v runtime.Value) (runtime.Iterator, error) {
	if iterable, ok := v.(runtime.IterableValue); ok {
		return iterable.Iterator(), nil
	}
	inst, ok := v.(*runtime.InstanceValue)
	if !ok {
		return nil, ev.Raise("TypeError", "'%s' object is not iterable", v.Type())
	}
	if _, ok := inst.GetAttr("__iter__"); !ok {
		return nil, ev.Raise("TypeError", "'%s' object is not iterable", v.Type())
	}
	iterMethod, err := ev.resolveAttr(inst, "__iter__")
	if err != nil {
		return nil, err
	}
	iterObj, err := ev.callValue(iterMethod, nil, nil)
	if err != nil {
		return nil, err
	}
	if iterable, ok := iterObj.(runtime.IterableValue); ok {
		return iterable.Iterator(), nil
	}
	iterInst, ok := iterObj.(*runtime.InstanceValue)
	if !ok {
		return nil, ev.Raise("TypeError", "iter() returned non-iterator of type '%s'", iterObj.Type())
	}
	if _, ok := iterInst.GetAttr("__next__"); !ok {
		return nil, ev.Raise("TypeError", "iter() returned non-iterator of type '%s'", iterObj.Type())
	}
	return &instanceIterator{ev: ev, obj: iterInst}, nil
}

// instanceIterator drives a user-defined iterator object (one exposing
// __next__) through the runtime.Iterator/FailableIterator protocol: a
// raised StopIteration (or subclass) ends iteration cleanly, any other
// raised exception is captured and surfaces through Err().
type instanceIterator struct {
	ev  *Evaluator
	obj runtime.Value
	err error
}

func (it *instanceIterator) Next() (runtime.Value, bool) {
	nextMethod, err := it.ev.resolveAttr(it.obj, "__next__")
	if err != nil {
		it.err = err
		return nil, false
	}
	v, err := it.ev.callValue(nextMethod, nil, nil)
	if err != nil {
		if !it.ev.isStopIteration(err) {
			it.err = err
		}
		return nil, false
	}
	return v, true
}

func (it *instanceIterator) Err() error { return it.err }

// isStopIteration reports whether err is a raised StopIteration (or a
// subclass of it), the signal a user-defined __next__ uses to end
// iteration rather than the host-level runtime.StopIterationError a
// generator's own return uses.
func (ev *Evaluator) isStopIteration(err error) bool {
	exc, ok := err.(*runtime.ExceptionValue)
	if !ok {
		return false
	}
	stop, ok := ev.Exceptions.classes["StopIteration"]
	if !ok {
		return false
	}
	return exc.Class.IsSubclassOf(stop)
}

// nextOrErr drives it once, distinguishing plain exhaustion from a real
// exception ending iteration early: ordinary Iterators (list, dict, range,
// str, ...) can never fail mid-iteration, so this only matters for
// generators and user-defined __next__ methods, both of which implement
// runtime.FailableIterator.
func nextOrErr(it runtime.Iterator) (runtime.Value, bool, error) {
	v, more := it.Next()
	if more {
		return v, true, nil
	}
	if fi, ok := it.(runtime.FailableIterator); ok {
		if err := fi.Err(); err != nil {
			return nil, false, err
		}
	}
	return nil, false, nil
}
