package evaluator_test

import "testing"

func TestEval_ListAppendMutatesInPlace(t *testing.T) {
	// Mirrors the reference language's try/finally edge case: append inside
	// a loop body, observed after the loop via the same binding.
	src := `
r = []
for i in range(3):
    try:
        r.append(i)
    finally:
        if i == 1:
            break
len(r)
`
	wantInt(t, run(t, src), 2)
}

func TestEval_ListMethods(t *testing.T) {
	src := `
xs = [3, 1, 2]
xs.append(4)
xs.sort()
xs.reverse()
xs.pop()
sum(xs)
`
	// sorted [1,2,3,4], reversed [4,3,2,1], pop() drops the 1 -> [4,3,2]
	wantInt(t, run(t, src), 9)
}

func TestEval_StrMethods(t *testing.T) {
	src := `"  Hello World  ".strip().lower().replace("world", "there")`
	wantStr(t, run(t, src), "hello there")
}

func TestEval_StrJoinAndSplit(t *testing.T) {
	src := `"-".join("a b c".split())`
	wantStr(t, run(t, src), "a-b-c")
}

func TestEval_DictMethods(t *testing.T) {
	src := `
d = {"a": 1, "b": 2}
d.setdefault("c", 3)
d.update({"a": 10})
total = 0
for v in d.values():
    total += v
total
`
	wantInt(t, run(t, src), 15)
}

func TestEval_SetMethods(t *testing.T) {
	src := `
s = {1, 2, 3}
s.add(4)
s.discard(1)
len(s)
`
	wantInt(t, run(t, src), 3)
}
