package evaluator_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sandrolain/gorebol/pkg/evaluator"
	"github.com/sandrolain/gorebol/pkg/parser"
)

// FuzzEvaluator checks that no script, however malformed, panics the
// evaluator or leaves its trap stack unbalanced.
func FuzzEvaluator(f *testing.F) {
	seeds := []string{
		`catch [loop 3 [throw 10] 20]`,
		`catch/name [throw/name 1 'a] 'a`,
		`attempt [divide 1 0]`,
		`trap [fail "x"]`,
		`f: func [x] [return x * 2] f 3`,
		`foreach x [1 2 3] [if x = 2 [break/return x]]`,
		`case [false [1] true [2]]`,
		`switch 2 [1 [a] 2 3 [b]]`,
		`do/next [1 + 2 3] 'rest`,
		`apply :add [1 2]`,
		`quit/return 3`,
		``,
	}
	for _, s := range seeds {
		f.Add(s)
	}
	ev := evaluator.New(
		evaluator.WithOutput(io.Discard),
		evaluator.WithMaxDepth(200),
	)
	f.Fuzz(func(t *testing.T, input string) {
		script, err := parser.Compile(input, parser.WithMaxDepth(64))
		if err != nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		_, _ = ev.Eval(ctx, script)
	})
}
