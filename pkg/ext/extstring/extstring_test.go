package extstring_test

import (
	"context"
	"io"
	"testing"

	"github.com/sandrolain/gorebol/pkg/evaluator"
	"github.com/sandrolain/gorebol/pkg/ext/extstring"
	"github.com/sandrolain/gorebol/pkg/parser"
	"github.com/sandrolain/gorebol/pkg/types"
)

func eval(t *testing.T, src string) (types.Value, error) {
	t.Helper()
	script, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", src, err)
	}
	ev := evaluator.New(
		evaluator.WithOutput(io.Discard),
		evaluator.WithFunctions(extstring.AllEntries()...),
	)
	return ev.Eval(context.Background(), script)
}

func TestStringFunctions(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"starts-with?", `starts-with? "gorebol" "go"`, "true"},
		{"starts-with? no", `starts-with? "gorebol" "rebol"`, "false"},
		{"ends-with?", `ends-with? %script.r ".r"`, "true"},
		{"index-of", `index-of "abcabc" "c"`, "3"},
		{"index-of from", `index-of/from "abcabc" "c" 4`, "6"},
		{"index-of counts characters", `index-of "héllo" "l"`, "3"},
		{"index-of missing", `index-of "abc" "z"`, "none"},
		{"index-of past end", `index-of/from "abc" "a" 10`, "none"},
		{"uppercase", `uppercase "abc"`, `"ABC"`},
		{"lowercase keeps kind", `lowercase %README.MD`, "%readme.md"},
		{"capitalize", `capitalize "hELLO"`, `"Hello"`},
		{"capitalize empty", `capitalize ""`, `""`},
		{"snake-case", `snake-case "helloWorld foo-bar"`, `"hello_world_foo_bar"`},
		{"kebab-case", `kebab-case "Hello World"`, `"hello-world"`},
		{"camel-case", `camel-case "hello_world-again"`, `"helloWorldAgain"`},
		{"repeat-string", `repeat-string "ab" 3`, `"ababab"`},
		{"repeat-string zero", `repeat-string "ab" 0`, `""`},
		{"words", `words "  one two   three "`, `["one" "two" "three"]`},
		{"words empty", `words ""`, "[]"},
		{"template", `template "{{greeting}}, {{name}}!" object [greeting: "Hi" name: 'Bob]`, `"Hi, Bob!"`},
		{"template keeps unknown", `template "{{who}}" object [x: 1]`, `"{{who}}"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eval(t, tt.src)
			if err != nil {
				t.Fatal(err)
			}
			if m := types.Mold(got); m != tt.want {
				t.Errorf("got %v, want %v", m, tt.want)
			}
		})
	}
}

func TestStringFunctionErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code types.ErrorCode
	}{
		{"negative count", `repeat-string "a" -1`, types.CodeOutOfRange},
		{"not a string", `uppercase 1`, types.CodeExpectArg},
		{"bindings must be an object", `template "x" [a 1]`, types.CodeExpectArg},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := eval(t, tt.src)
			e, ok := evaluator.AsError(err)
			if !ok || e.Code != tt.code {
				t.Fatalf("got %v, want %s", err, tt.code)
			}
		})
	}
}
