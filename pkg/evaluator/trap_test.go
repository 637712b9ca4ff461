package evaluator

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/sandrolain/gorebol/pkg/parser"
	"github.com/sandrolain/gorebol/pkg/types"
)

func runTask(t *testing.T, src string) (*task, types.Value, error) {
	t.Helper()
	blk, err := parser.ParseBlock(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	ev := New(WithOutput(io.Discard))
	tk := ev.newTask()
	env := ev.lib.NewChildContext(types.NewObject())
	v, err := tk.run(context.Background(), env, blk)
	return tk, v, err
}

func TestTrapStackBalanced(t *testing.T) {
	sources := []string{
		`attempt [attempt [fail "a"] fail "b"]`,
		`trap [trap [1 / 0] 1 / 0]`,
		`catch [trap [attempt [throw 1]]]`,
		`f: func [n] [either n = 0 [1 / 0] [attempt [f n - 1]]] f 4`,
		`loop 3 [attempt [break]]`,
	}
	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			tk, _, err := runTask(t, src)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tk.traps.len() != 0 {
				t.Errorf("got %d traps left, want 0", tk.traps.len())
			}
			if tk.depth != 0 {
				t.Errorf("got depth %d, want 0", tk.depth)
			}
		})
	}
}

func TestTrapLandClassifies(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		state TrapState
	}{
		{"no error", nil, TrapCompleted},
		{"throw", newThrow(OriginThrow, nil, types.Integer(1)), TrapCompleted},
		{"cancellation", context.Canceled, TrapCompleted},
		{"script error", types.Errorf(types.CodeMisc, "x"), TrapLanded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk := New().newTask()
			tr := tk.pushTrap()
			landed := tr.land(tt.err)
			tr.drop()
			if tr.state != tt.state {
				t.Fatalf("got %s, want %s", tr.state, tt.state)
			}
			if (landed != nil) != (tt.state == TrapLanded) {
				t.Errorf("got landed error %v", landed)
			}
		})
	}
}

func expectPanic(t *testing.T, contains string, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected a panic")
		}
		if msg, _ := r.(string); !strings.Contains(msg, contains) {
			t.Fatalf("got panic %v, want it to mention %q", r, contains)
		}
	}()
	f()
}

func TestTrapDropOutOfOrder(t *testing.T) {
	tk := New().newTask()
	outer := tk.pushTrap()
	tk.pushTrap()
	expectPanic(t, "out of order", outer.drop)
}

func TestTrapDropAtWrongDepth(t *testing.T) {
	tk := New().newTask()
	tr := tk.pushTrap()
	tk.depth++
	expectPanic(t, "depth", tr.drop)
}

func TestTrapLandTwice(t *testing.T) {
	tk := New().newTask()
	tr := tk.pushTrap()
	tr.land(nil)
	expectPanic(t, "already", func() { tr.land(nil) })
}

func TestThrowTakenOnce(t *testing.T) {
	th := newThrow(OriginBreak, nil, types.Integer(3))
	if th.Take() != types.Integer(3) || !th.Taken() {
		t.Fatal("expected the payload")
	}
	expectPanic(t, "consumed twice", func() { th.Take() })
}

func TestOriginNames(t *testing.T) {
	for _, o := range []Origin{OriginThrow, OriginBreak, OriginContinue, OriginExit, OriginReturn, OriginQuit} {
		if strings.HasPrefix(o.String(), "origin(") {
			t.Errorf("origin %d has no name", o)
		}
	}
}
