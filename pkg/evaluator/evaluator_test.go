package evaluator_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/sandrolain/gorebol/pkg/evaluator"
	"github.com/sandrolain/gorebol/pkg/functions"
	"github.com/sandrolain/gorebol/pkg/parser"
	"github.com/sandrolain/gorebol/pkg/types"
)

// Helper functions

func run(t *testing.T, src string, opts ...evaluator.EvalOption) (types.Value, error) {
	t.Helper()

	script, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Failed to parse %q: %v", src, err)
	}

	opts = append([]evaluator.EvalOption{evaluator.WithOutput(io.Discard)}, opts...)
	ev := evaluator.New(opts...)
	return ev.Eval(context.Background(), script)
}

func eval(t *testing.T, src string, opts ...evaluator.EvalOption) types.Value {
	t.Helper()

	result, err := run(t, src, opts...)
	if err != nil {
		t.Fatalf("Failed to eval %q: %v", src, err)
	}
	return result
}

// molded evaluates src and molds the result.
func molded(t *testing.T, src string, opts ...evaluator.EvalOption) string {
	t.Helper()
	return types.Mold(eval(t, src, opts...))
}

func evalExpectError(t *testing.T, src string, opts ...evaluator.EvalOption) *types.Error {
	t.Helper()

	_, err := run(t, src, opts...)
	if err == nil {
		t.Fatalf("expected an error from %q", src)
	}
	e, ok := evaluator.AsError(err)
	if !ok {
		t.Fatalf("expected a script error from %q, got %T: %v", src, err, err)
	}
	return e
}

func expectCode(t *testing.T, src string, code types.ErrorCode, opts ...evaluator.EvalOption) {
	t.Helper()
	if e := evalExpectError(t, src, opts...); e.Code != code {
		t.Errorf("%s: got code %s, want %s (%v)", src, e.Code, code, e)
	}
}

type moldCase struct {
	name string
	src  string
	want string
}

func runMoldCases(t *testing.T, tests []moldCase, opts ...evaluator.EvalOption) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := molded(t, tt.src, opts...); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

// Evaluation basics

func TestEvalLiterals(t *testing.T) {
	runMoldCases(t, []moldCase{
		{"integer", "42", "42"},
		{"decimal", "1.5", "1.5"},
		{"string", `"hi"`, `"hi"`},
		{"block is inert", "[1 + 2]", "[1 + 2]"},
		{"paren evaluates", "(1 + 2)", "3"},
		{"lit-word", "'abc", "abc"},
		{"last value wins", "1 2 3", "3"},
		{"set-word", "x: 10 x", "10"},
		{"get-word", "x: 10 :x", "10"},
		{"left to right infix", "1 + 2 * 3", "9"},
		{"money", "$1.50 + $2", "$3.50"},
		{"inexact division", "1 / 4", "0.25"},
		{"exact division", "8 / 4", "2"},
		{"path into block", "b: [10 20 30] b/2", "20"},
		{"path into object", "o: context [a: 1 b: 2] o/b", "2"},
		{"set-path", "o: context [a: 1] o/a: 5 o/a", "5"},
		{"type?", "type? 1", "integer!"},
		{"predicate", "integer? 1", "true"},
	})
}

func TestEvalEmptyScriptIsUnset(t *testing.T) {
	if v := eval(t, ""); !types.IsUnset(v) {
		t.Fatalf("got %v, want unset", types.Mold(v))
	}
}

func TestEvalErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code types.ErrorCode
	}{
		{"unknown word", "nope", types.CodeNotDefined},
		{"zero divide", "1 / 0", types.CodeZeroDivide},
		{"overflow", "9223372036854775807 + 1", types.CodeOverflow},
		{"set-word needs value", "x: comment 1", types.CodeNeedValue},
		{"unset word", "x: 1 set/any 'x comment 1 x", types.CodeNoValue},
		{"wrong argument type", "add 1 \"a\"", types.CodeExpectArg},
		{"missing argument", "add 1", types.CodeNoArg},
		{"bad refinement", "catch/nope [1]", types.CodeBadRefine},
		{"global return", "return 1", types.CodeMisc},
		{"ordering mismatch", `1 < "a"`, types.CodeInvalidCompare},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectCode(t, tt.src, tt.code)
		})
	}
}

func TestEvalStackOverflow(t *testing.T) {
	expectCode(t, "f: func [] [f] f", types.CodeStackOverflow, evaluator.WithMaxDepth(50))
}

func TestEvalTimeout(t *testing.T) {
	_, err := run(t, "forever []", evaluator.WithTimeout(20*time.Millisecond))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("got %v, want deadline exceeded", err)
	}
}

func TestEvalTimeoutPassesThroughTrap(t *testing.T) {
	_, err := run(t, "attempt [forever []]", evaluator.WithTimeout(20*time.Millisecond))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("got %v, want deadline exceeded", err)
	}
}

// Output natives

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	eval(t, `print "hello" print [1 + 1 "x"] prin "a" prin "b" probe [1]`, evaluator.WithOutput(&buf))
	want := "hello\n2 x\nab[1]\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// Sessions and bulk evaluation

func TestDebugLogging(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"expressions", "1 + 1", `msg="evaluating expression"`},
		{"landed traps", "trap [divide 1 0]", `msg="trap landed" code=zero-divide`},
		{"uncaught throws", "throw/name 1 'out", `msg="uncaught throw" origin=throw name=out`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
			_, _ = run(t, tt.src, evaluator.WithDebug(true), evaluator.WithLogger(logger))
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("got log %q, want it to contain %q", buf.String(), tt.want)
			}
		})
	}

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	_, _ = run(t, "trap [divide 1 0]", evaluator.WithLogger(logger))
	if strings.Contains(buf.String(), "trap landed") {
		t.Errorf("got log %q without debug enabled", buf.String())
	}
}

func TestSessionKeepsWords(t *testing.T) {
	ev := evaluator.New(evaluator.WithOutput(io.Discard))
	s := ev.NewSession()
	ctx := context.Background()

	if _, err := s.EvalString(ctx, "x: 1"); err != nil {
		t.Fatal(err)
	}
	got, err := s.EvalString(ctx, "x + 1")
	if err != nil {
		t.Fatal(err)
	}
	if got != types.Integer(2) {
		t.Errorf("got %v, want 2", types.Mold(got))
	}

	// a fresh Eval does not see the session's words
	script, _ := parser.Parse("value? 'x")
	if v, _ := ev.Eval(ctx, script); v != types.False {
		t.Errorf("got %v, want false", types.Mold(v))
	}
}

func TestEvalWithBindings(t *testing.T) {
	script, _ := parser.Parse("a + b")
	ev := evaluator.New()
	got, err := ev.EvalWithBindings(context.Background(), script, map[string]types.Value{
		"a": types.Integer(2),
		"b": types.Integer(3),
	})
	if err != nil {
		t.Fatal(err)
	}
	if got != types.Integer(5) {
		t.Errorf("got %v, want 5", types.Mold(got))
	}
}

func TestEvalMany(t *testing.T) {
	sources := []string{"1 + 1", "throw 1", "catch [throw 3]", "x: 4 x"}
	scripts := make([]*types.Script, len(sources))
	for i, src := range sources {
		scripts[i], _ = parser.Parse(src)
	}

	for _, concurrent := range []bool{false, true} {
		ev := evaluator.New(evaluator.WithConcurrency(concurrent))
		results, errs := ev.EvalMany(context.Background(), scripts)
		if results[0] != types.Integer(2) || results[2] != types.Integer(3) || results[3] != types.Integer(4) {
			t.Errorf("concurrent=%v: unexpected results %v", concurrent, results)
		}
		if e, ok := evaluator.AsError(errs[1]); !ok || e.Code != types.CodeNoCatch {
			t.Errorf("concurrent=%v: got %v, want no-catch", concurrent, errs[1])
		}
	}
}

func TestCachedScriptsStartFresh(t *testing.T) {
	ev := evaluator.New(evaluator.WithOutput(io.Discard), evaluator.WithCaching(true))
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"block literal", `do "b: [] append b 1 length? b"`, "1"},
		{"string literal", `do {s: "" append s "x" s}`, `"x"`},
		{"nested literal", `do "b: [[]] append first b 1 b"`, "[[1]]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script, err := parser.Parse(tt.src)
			if err != nil {
				t.Fatal(err)
			}
			for range 3 {
				got, err := ev.Eval(context.Background(), script)
				if err != nil {
					t.Fatal(err)
				}
				if m := types.Mold(got); m != tt.want {
					t.Fatalf("got %v, want %v", m, tt.want)
				}
			}
		})
	}

	first, _ := ev.Compile("[1]")
	second, _ := ev.Compile("[1]")
	if first.Body() == second.Body() {
		t.Error("want each Compile to return its own body")
	}
	if got := ev.Cache().Len(); got == 0 {
		t.Error("want the source cached")
	}
}

func TestCachedScriptsConcurrent(t *testing.T) {
	ev := evaluator.New(evaluator.WithOutput(io.Discard), evaluator.WithCaching(true), evaluator.WithConcurrency(true))
	scripts := make([]*types.Script, 8)
	for i := range scripts {
		scripts[i], _ = parser.Parse(`loop 200 [do "b: [] append b 1"] length? b`)
	}
	results, errs := ev.EvalMany(context.Background(), scripts)
	for i := range scripts {
		if errs[i] != nil {
			t.Fatalf("script %d: %v", i, errs[i])
		}
		if results[i] != types.Integer(1) {
			t.Errorf("script %d: got %v, want 1", i, types.Mold(results[i]))
		}
	}
}

func TestEvalStream(t *testing.T) {
	script, _ := parser.Parse(`if line = "stop" [quit] rejoin [line "!"]`)
	ev := evaluator.New()
	ch, err := ev.EvalStream(context.Background(), script, strings.NewReader("a\nb\nstop\nc\n"))
	if err != nil {
		t.Fatal(err)
	}

	var got []string
	var quit bool
	for res := range ch {
		var q *evaluator.QuitError
		if errors.As(res.Err, &q) {
			quit = true
			continue
		}
		if res.Err != nil {
			t.Fatalf("line %q: %v", res.Line, res.Err)
		}
		got = append(got, types.Form(res.Value))
	}
	if strings.Join(got, ",") != "a!,b!" || !quit {
		t.Errorf("got %v (quit=%v), want [a! b!] then quit", got, quit)
	}
}

// Host functions

func TestCustomFunction(t *testing.T) {
	double := evaluator.WithCustomFunction("double", "n [integer!]",
		func(_ context.Context, args ...types.Value) (types.Value, error) {
			return args[0].(types.Integer) * 2, nil
		})
	if got := molded(t, "double 21", double); got != "42" {
		t.Errorf("got %v, want 42", got)
	}
	expectCode(t, `double "x"`, types.CodeExpectArg, double)
}

func TestCustomFunctionErrorIsTrappable(t *testing.T) {
	failing := evaluator.WithCustomFunction("nope", "",
		func(context.Context, ...types.Value) (types.Value, error) {
			return nil, errors.New("not today")
		})
	got := eval(t, "trap [nope]", failing)
	e, ok := got.(*types.Error)
	if !ok {
		t.Fatalf("got %v, want an error value", types.Mold(got))
	}
	if e.Code != types.CodeUser || !strings.Contains(e.Message, "not today") {
		t.Errorf("got %v, want a user error mentioning the cause", e)
	}
}

func TestAdvancedFunctionCallsBack(t *testing.T) {
	twice := evaluator.WithAdvancedFunction("twice", "f [any-function!] v [any-value!]",
		func(ctx context.Context, caller functions.Caller, args ...types.Value) (types.Value, error) {
			once, err := caller.Call(ctx, args[0], args[1])
			if err != nil {
				return nil, err
			}
			return caller.Call(ctx, args[0], once)
		})
	if got := molded(t, "twice func [x] [x + 1] 1", twice); got != "3" {
		t.Errorf("got %v, want 3", got)
	}
	// a throw raised by the callback reaches the script's CATCH
	if got := molded(t, "catch [twice func [x] [throw x * 10] 4]", twice); got != "40" {
		t.Errorf("got %v, want 40", got)
	}
}

func TestWithNativeAndGlobal(t *testing.T) {
	opts := []evaluator.EvalOption{
		evaluator.WithNative("inc", "n [integer!] /by step [integer!]", func(_ context.Context, c *evaluator.Call) (types.Value, error) {
			step := types.Integer(1)
			if c.Ref("by") {
				step = c.Arg("step").(types.Integer)
			}
			return c.Arg("n").(types.Integer) + step, nil
		}),
		evaluator.WithGlobal("answer", types.Integer(41)),
	}
	runMoldCases(t, []moldCase{
		{"plain", "inc answer", "42"},
		{"refined", "inc/by answer 10", "51"},
	}, opts...)
}

func TestNativesAreShared(t *testing.T) {
	// redefining a native in one script does not leak into the next
	ev := evaluator.New(evaluator.WithOutput(io.Discard))
	ctx := context.Background()
	first, _ := parser.Parse("print: 1 print")
	if v, err := ev.Eval(ctx, first); err != nil || v != types.Integer(1) {
		t.Fatalf("got %v, %v", v, err)
	}
	second, _ := parser.Parse("function? :print")
	if v, err := ev.Eval(ctx, second); err != nil || v != types.False {
		t.Fatalf("native? check: got %v, %v", v, err)
	}
	third, _ := parser.Parse("native? :print")
	if v, err := ev.Eval(ctx, third); err != nil || v != types.True {
		t.Fatalf("got %v, %v; print should still be a native", v, err)
	}
}
