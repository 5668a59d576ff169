package sli

import (
	"bytes"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

// TestRun_GoldenProgramTranscript snapshots the printed output of a small
// program exercising classes, generators, and comprehensions together, the
// way the reference corpus uses go-snaps for end-to-end transcripts rather
// than hand-written expected strings.
func TestRun_GoldenProgramTranscript(t *testing.T) {
	var out bytes.Buffer
	interp := New(WithStdout(&out))
	src := `
class Greeter:
    def __init__(self, name):
        self.name = name
    def greet(self):
        return "hello, " + self.name

def squares(n):
    for i in range(n):
        yield i * i

for g in [Greeter("alice"), Greeter("bob")]:
    print(g.greet())

print([s for s in squares(5)])
`
	if _, err := interp.Run(src); err != nil {
		t.Fatalf("Run: %v", err)
	}
	snaps.MatchSnapshot(t, out.String())
}
