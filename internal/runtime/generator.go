package runtime

import "fmt"

// GeneratorState tracks where a suspended generator/coroutine is in its
// lifecycle, per §4.6's state machine.
type GeneratorState int

const (
	GenCreated GeneratorState = iota
	GenSuspended
	GenRunning
	GenClosed
)

func (s GeneratorState) String() string {
	switch s {
	case GenCreated:
		return "created"
	case GenSuspended:
		return "suspended"
	case GenRunning:
		return "running"
	case GenClosed:
		return "closed"
	}
	return "unknown"
}

// genResume is sent into a generator goroutine to resume it: Send delivers
// the value a `yield` expression evaluates to, Err requests that `yield`
// raise instead (`Generator.throw`), and Close requests the goroutine
// unwind via GeneratorExit.
type genResume struct {
	send  Value
	err   error
	close bool
}

// genYield is sent out of a generator goroutine each time it suspends
// (done false) or finishes (done true — value is the StopIteration
// payload, i.e. the function's `return` value or None).
type genYield struct {
	value Value
	err   error
	done  bool
}

// GeneratorValue is a suspended generator function activation, implemented
// as a goroutine parked on a pair of unbuffered channels rather than an
// explicit state-machine transform: each `yield` blocks the goroutine on a
// channel send/receive instead of the evaluator saving/restoring an
// explicit program counter. This keeps the tree-walking evaluator itself
// straight-line recursive — the same evaluation functions used for normal
// function bodies also drive a generator body, just parked mid-stack on a
// channel instead of returning.
type GeneratorValue struct {
	Name    string
	state   GeneratorState
	resume  chan genResume
	yield   chan genYield
	started bool
}

// NewGenerator wires up the channel pair and records body as not yet
// started; internal/evaluator is responsible for spawning the goroutine
// that actually runs the function body, since only it knows how to
// evaluate statements.
func NewGenerator(name string) *GeneratorValue {
	return &GeneratorValue{
		Name:   name,
		state:  GenCreated,
		resume: make(chan genResume),
		yield:  make(chan genYield),
	}
}

func (g *GeneratorValue) Type() string   { return "generator" }
func (g *GeneratorValue) String() string { return fmt.Sprintf("<generator object %s>", g.Name) }
func (g *GeneratorValue) Repr() string   { return g.String() }
func (g *GeneratorValue) Truthy() bool   { return true }

func (g *GeneratorValue) State() GeneratorState { return g.state }

// ResumeChan and YieldChan expose the channel pair to the evaluator's
// generator driver (the goroutine body pulls from ResumeChan and pushes to
// YieldChan at each `yield` point; the driver does the opposite).
func (g *GeneratorValue) ResumeChan() chan genResume { return g.resume }
func (g *GeneratorValue) YieldChan() chan genYield    { return g.yield }

func (g *GeneratorValue) SetState(s GeneratorState) { g.state = s }
func (g *GeneratorValue) MarkStarted()              { g.started = true }
func (g *GeneratorValue) Started() bool             { return g.started }

// WaitResume blocks the generator-body goroutine until the driver (Send,
// Throw, or Close) wakes it, returning the value to bind the suspended
// `yield` expression to, an error to raise there instead, or a close
// request to unwind via GeneratorExit. Called only from the goroutine
// internal/evaluator spawns to run the function body.
func (g *GeneratorValue) WaitResume() (send Value, err error, closeRequested bool) {
	r := <-g.resume
	return r.send, r.err, r.close
}

// PushYield delivers one suspension point (done=false, a `yield`) or the
// final outcome (done=true, the function's return value or an error) back
// to whichever of Send/Throw/Close is waiting, blocking until that driver
// receives it; waiting for the next resume is WaitResume's job.
func (g *GeneratorValue) PushYield(value Value, err error, done bool) {
	g.yield <- genYield{value: value, err: err, done: done}
}

// Next resumes the generator with no value to send in (a plain `next()`
// call) and returns the next yielded value, or (nil, false) once the
// generator returns or raises; the error is dropped (Iterator() keeps it).
func (g *GeneratorValue) Next() (Value, bool) {
	v, err := g.Send(None)
	if err != nil {
		return nil, false
	}
	return v, true
}

// Send resumes the generator, delivering val as the result of the
// suspended `yield` expression, and returns the next yielded value or an
// error wrapping StopIteration when the generator body returns.
func (g *GeneratorValue) Send(val Value) (Value, error) {
	if g.state == GenClosed {
		return nil, fmt.Errorf("StopIteration")
	}
	g.state = GenRunning
	g.resume <- genResume{send: val}
	out := <-g.yield
	if out.done {
		g.state = GenClosed
		if out.err != nil {
			return nil, out.err
		}
		return nil, &StopIterationError{Value: out.value}
	}
	g.state = GenSuspended
	return out.value, out.err
}

// Throw resumes the generator by raising err at the suspended `yield`
// point.
func (g *GeneratorValue) Throw(err error) (Value, error) {
	if g.state == GenClosed {
		return nil, err
	}
	g.state = GenRunning
	g.resume <- genResume{err: err}
	out := <-g.yield
	if out.done {
		g.state = GenClosed
		if out.err != nil {
			return nil, out.err
		}
		return nil, &StopIterationError{Value: out.value}
	}
	g.state = GenSuspended
	return out.value, out.err
}

// Close requests the generator unwind (via GeneratorExit at its current
// suspension point) and marks it closed.
func (g *GeneratorValue) Close() {
	if g.state == GenClosed || g.state == GenCreated {
		g.state = GenClosed
		return
	}
	g.resume <- genResume{close: true}
	<-g.yield
	g.state = GenClosed
}

// Iterator adapts the generator to the Iterator/FailableIterator
// interfaces used by `for` loops and the other iteration builtins: plain
// exhaustion (the body returned) reports (nil, false) with a nil Err(), a
// mid-body exception reports (nil, false) with Err() set to the real
// error so callers can distinguish the two instead of silently dropping
// it, per §4.6/§7's exception propagation.
func (g *GeneratorValue) Iterator() Iterator {
	return &generatorIterator{g: g}
}

type generatorIterator struct {
	g   *GeneratorValue
	err error
}

func (it *generatorIterator) Next() (Value, bool) {
	v, err := it.g.Send(None)
	if err != nil {
		if _, ok := err.(*StopIterationError); !ok {
			it.err = err
		}
		return nil, false
	}
	return v, true
}

func (it *generatorIterator) Err() error { return it.err }

// StopIterationError is the Go-level carrier for a generator's return
// value once it is exhausted, per the builtin StopIteration exception.
type StopIterationError struct {
	Value Value
}

func (e *StopIterationError) Error() string { return "StopIteration" }

// CoroutineValue is the `async def` counterpart of GeneratorValue: it
// suspends at `await` points instead of `yield` points, using the same
// goroutine/channel suspension mechanism. AsyncGeneratorValue combines
// both: `async def` containing `yield` suspends at both await and yield.
type CoroutineValue struct {
	*GeneratorValue
}

func NewCoroutine(name string) *CoroutineValue {
	return &CoroutineValue{GeneratorValue: NewGenerator(name)}
}

func (c *CoroutineValue) Type() string   { return "coroutine" }
func (c *CoroutineValue) String() string { return fmt.Sprintf("<coroutine object %s>", c.Name) }
func (c *CoroutineValue) Repr() string   { return c.String() }

// AsyncGeneratorValue is an `async def` function whose body also contains
// `yield`, producing values through `async for` rather than completing a
// single awaited result.
type AsyncGeneratorValue struct {
	*GeneratorValue
}

func NewAsyncGenerator(name string) *AsyncGeneratorValue {
	return &AsyncGeneratorValue{GeneratorValue: NewGenerator(name)}
}

func (a *AsyncGeneratorValue) Type() string   { return "async_generator" }
func (a *AsyncGeneratorValue) String() string { return fmt.Sprintf("<async_generator object %s>", a.Name) }
func (a *AsyncGeneratorValue) Repr() string   { return a.String() }
