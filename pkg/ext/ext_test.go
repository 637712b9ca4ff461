package ext_test

import (
	"context"
	"io"
	"testing"

	"github.com/sandrolain/gorebol/pkg/evaluator"
	"github.com/sandrolain/gorebol/pkg/ext"
	"github.com/sandrolain/gorebol/pkg/ext/extfunc"
	"github.com/sandrolain/gorebol/pkg/ext/extstring"
	"github.com/sandrolain/gorebol/pkg/ext/extwasm"
	"github.com/sandrolain/gorebol/pkg/parser"
	"github.com/sandrolain/gorebol/pkg/types"
)

func eval(t *testing.T, src string, opts ...evaluator.EvalOption) string {
	t.Helper()
	script, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", src, err)
	}
	opts = append([]evaluator.EvalOption{evaluator.WithOutput(io.Discard)}, opts...)
	result, err := evaluator.New(opts...).Eval(context.Background(), script)
	if err != nil {
		t.Fatalf("Eval(%q) error: %v", src, err)
	}
	return types.Mold(result)
}

// ── WithAll ────────────────────────────────────────────────────────────────

func TestWithAll_Functional(t *testing.T) {
	opt := ext.WithAll(nil)

	tests := []struct {
		name string
		src  string
		want string
	}{
		{"pipe", "double: func [x] [x * 2] negate: func [x] [0 - x] pipe 3 reduce [:double :negate]", "-6"},
		{"pipe of nothing", "pipe 3 []", "3"},
		{"pipe natives", "pipe 4 reduce [:not]", "false"},
		{"throw leaves pipe", "catch [pipe 1 reduce [func [x] [throw x + 10]]]", "11"},
		{"bad step", "e: trap [pipe 1 [2]] e/code", "invalid-arg"},
		{"tap", "out: copy [] x: tap 5 func [v] [append out v] reduce [x out]", "[5 [5]]"},
		{"memoize", "n: 0 sq: memoize func [x] [n: n + 1 x * x] reduce [sq 3 sq 3 sq 4 n]", "[9 9 16 2]"},
		{"string helpers", `pipe "hello world" reduce [:uppercase :words]`, `["HELLO" "WORLD"]`},
		{"memoize skips errors", "n: 0 f: memoize func [x] [n: n + 1 1 / x] attempt [f 0] attempt [f 0] n", "2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := eval(t, tt.src, opt); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWithAll_Loader(t *testing.T) {
	if got := eval(t, "value? 'load-extension", ext.WithAll(nil)); got != "false" {
		t.Errorf("got %v without a loader, want false", got)
	}

	loader := extwasm.NewLoader()
	defer loader.Close(context.Background())
	if got := eval(t, "native? :load-extension", ext.WithAll(loader)); got != "true" {
		t.Errorf("got %v with a loader, want true", got)
	}
	if got := eval(t, "native? :load-extension", ext.WithWasm(loader)); got != "true" {
		t.Errorf("got %v from WithWasm, want true", got)
	}
}

func TestSingleFunction(t *testing.T) {
	opt := evaluator.WithFunctions(extfunc.Pipe())
	if got := eval(t, "inc: func [x] [x + 1] pipe 1 reduce [:inc :inc]", opt); got != "3" {
		t.Errorf("got %v, want 3", got)
	}
	if got := eval(t, "value? 'tap", opt); got != "false" {
		t.Errorf("tap registered without being asked for")
	}
}

func TestAllEntries(t *testing.T) {
	if got, want := len(ext.AllEntries()), len(extfunc.AllAdvanced())+len(extstring.All()); got != want {
		t.Errorf("got %d entries, want %d", got, want)
	}
	if got := eval(t, "pipe 2 []", ext.WithFunctional()); got != "2" {
		t.Errorf("got %v, want 2", got)
	}
}

func TestWithString(t *testing.T) {
	if got := eval(t, `snake-case "fooBar baz"`, ext.WithString()); got != `"foo_bar_baz"` {
		t.Errorf("got %v", got)
	}
	if got := eval(t, "value? 'pipe", ext.WithString()); got != "false" {
		t.Errorf("pipe registered by WithString")
	}
}
