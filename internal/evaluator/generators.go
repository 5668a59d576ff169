package evaluator

import (
	"github.com/cwbudde/go-sli/internal/ast"
	"github.com/cwbudde/go-sli/internal/runtime"
)

// spawnGenerator creates a GeneratorValue and starts its body running in a
// background goroutine, immediately parked waiting for the first
// Next()/Send(). frame is the already-argument-bound call frame; marking
// it with SetGenerator lets evalYield find its way back to g from
// anywhere in the function body.
func (ev *Evaluator) spawnGenerator(f *runtime.FunctionValue, frame *runtime.Environment) runtime.Value {
	if f.IsAsync {
		g := runtime.NewAsyncGenerator(f.Name)
		frame.SetGenerator(g.GeneratorValue)
		go ev.runGeneratorBody(f, frame, g.GeneratorValue)
		return g
	}
	g := runtime.NewGenerator(f.Name)
	frame.SetGenerator(g)
	go ev.runGeneratorBody(f, frame, g)
	return g
}

// spawnCoroutine creates a CoroutineValue for a non-generator `async def`;
// its body suspends only at `await`, driven the same way as a generator's
// `yield`.
func (ev *Evaluator) spawnCoroutine(f *runtime.FunctionValue, frame *runtime.Environment) runtime.Value {
	c := runtime.NewCoroutine(f.Name)
	frame.SetGenerator(c.GeneratorValue)
	go ev.runGeneratorBody(f, frame, c.GeneratorValue)
	return c
}

// runGeneratorBody is the goroutine entry point driving a suspended
// function body: it waits for the first resume, runs the body to
// completion or to its first yield/await (handled inline by
// evalYield/evalAwait calling g.WaitResume/PushYield), and reports the
// final return value (or a propagated exception) as the terminal
// genYield.
func (ev *Evaluator) runGeneratorBody(f *runtime.FunctionValue, frame *runtime.Environment, g *runtime.GeneratorValue) {
	_, _, closeRequested := g.WaitResume()
	if closeRequested {
		g.PushYield(runtime.None, nil, true)
		return
	}
	sig, err := ev.execBlock(f.Body, frame)
	if err != nil {
		g.PushYield(nil, err, true)
		return
	}
	var ret runtime.Value = runtime.None
	if sig != nil && sig.Kind == SigReturn {
		ret = sig.Value
	}
	g.PushYield(ret, nil, true)
}

// evalYield suspends the current generator at a `yield [value]`
// expression, returning whatever value the next Send(...) delivers.
func (ev *Evaluator) evalYield(n *ast.Yield, env *runtime.Environment) (runtime.Value, error) {
	g, ok := env.CurrentGenerator()
	if !ok {
		return nil, ev.Raise("SyntaxError", "'yield' outside function")
	}
	var val runtime.Value = runtime.None
	if n.Value != nil {
		v, err := ev.evalExpr(n.Value, env)
		if err != nil {
			return nil, err
		}
		val = v
	}
	g.PushYield(val, nil, false)
	send, raiseErr, closeRequested := g.WaitResume()
	if closeRequested {
		return nil, ev.Raise("GeneratorExit", "")
	}
	if raiseErr != nil {
		return nil, raiseErr
	}
	return send, nil
}

// evalYieldFrom delegates `yield from iterable` to the sub-iterable,
// re-yielding each of its values from this generator in turn and
// resolving to its StopIteration payload.
func (ev *Evaluator) evalYieldFrom(n *ast.YieldFrom, env *runtime.Environment) (runtime.Value, error) {
	g, ok := env.CurrentGenerator()
	if !ok {
		return nil, ev.Raise("SyntaxError", "'yield' outside function")
	}
	src, err := ev.evalExpr(n.Value, env)
	if err != nil {
		return nil, err
	}
	it, err := ev.getIterator(src)
	if err != nil {
		return nil, err
	}
	sub, isGen := src.(*runtime.GeneratorValue)
	for {
		var v runtime.Value
		more := true
		if isGen {
			v, err = sub.Send(runtime.None)
			if si, ok := err.(*runtime.StopIterationError); ok {
				return si.Value, nil
			}
		} else {
			v, more, err = nextOrErr(it)
		}
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
		g.PushYield(v, nil, false)
		_, raiseErr, closeRequested := g.WaitResume()
		if closeRequested {
			return nil, ev.Raise("GeneratorExit", "")
		}
		if raiseErr != nil {
			return nil, raiseErr
		}
	}
	return runtime.None, nil
}

// evalAwait drives an awaited coroutine/task to completion. Since this
// evaluator has no separate event loop, awaiting a coroutine simply
// pumps its generator-style suspension points (used for `asyncio.sleep`-
// style built-ins that yield control) until it returns, then unwraps the
// StopIteration payload as the await expression's value.
func (ev *Evaluator) evalAwait(n *ast.Await, env *runtime.Environment) (runtime.Value, error) {
	v, err := ev.evalExpr(n.Value, env)
	if err != nil {
		return nil, err
	}
	co, ok := v.(*runtime.CoroutineValue)
	if !ok {
		if ag, ok := v.(*runtime.AsyncGeneratorValue); ok {
			return ag, nil
		}
		return v, nil
	}
	var result runtime.Value = runtime.None
	for {
		val, err := co.Send(runtime.None)
		if err != nil {
			if si, ok := err.(*runtime.StopIterationError); ok {
				if si.Value != nil {
					result = si.Value
				}
				break
			}
			return nil, err
		}
		result = val
	}
	return result, nil
}
