// Package extstring provides string helpers beyond the core natives.
// Register them via evaluator.WithFunctions or the top-level ext.WithString
// helper.
package extstring

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/sandrolain/gorebol/pkg/functions"
	"github.com/sandrolain/gorebol/pkg/types"
)

// All returns all string function definitions.
func All() []functions.CustomFunctionDef {
	return []functions.CustomFunctionDef{
		StartsWith(),
		EndsWith(),
		IndexOf(),
		Uppercase(),
		Lowercase(),
		Capitalize(),
		SnakeCase(),
		KebabCase(),
		CamelCase(),
		RepeatString(),
		Words(),
		Template(),
	}
}

// AllEntries returns all string function definitions as [functions.FunctionEntry],
// suitable for spreading into [evaluator.WithFunctions]:
//
//	evaluator.WithFunctions(extstring.AllEntries()...)
func AllEntries() []functions.FunctionEntry {
	all := All()
	out := make([]functions.FunctionEntry, len(all))
	for i, f := range all {
		out[i] = f
	}
	return out
}

func text(v types.Value) string { return v.(*types.String).Text() }

// transform builds a one-argument function mapping the text of a string.
// The result keeps the argument's kind, so a file! stays a file!.
func transform(name string, fn func(string) string) functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name: name,
		Spec: "string [any-string!]",
		Fn: func(_ context.Context, args ...types.Value) (types.Value, error) {
			return types.NewString(args[0].Kind(), fn(text(args[0]))), nil
		},
	}
}

// StartsWith returns the definition for `starts-with? string prefix`.
func StartsWith() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name: "starts-with?",
		Spec: "string [any-string!] prefix [any-string!]",
		Fn: func(_ context.Context, args ...types.Value) (types.Value, error) {
			return types.LogicOf(strings.HasPrefix(text(args[0]), text(args[1]))), nil
		},
	}
}

// EndsWith returns the definition for `ends-with? string suffix`.
func EndsWith() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name: "ends-with?",
		Spec: "string [any-string!] suffix [any-string!]",
		Fn: func(_ context.Context, args ...types.Value) (types.Value, error) {
			return types.LogicOf(strings.HasSuffix(text(args[0]), text(args[1]))), nil
		},
	}
}

// IndexOf returns the definition for `index-of string search /from start`.
// Positions are 1-based, counted in characters; none when not found.
func IndexOf() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name: "index-of",
		Spec: "string [any-string!] search [any-string!] /from start [integer!]",
		Fn: func(_ context.Context, args ...types.Value) (types.Value, error) {
			str := []rune(text(args[0]))
			start := 0
			if types.IsConditionalTrue(args[2]) {
				start = max(int(args[3].(types.Integer))-1, 0)
			}
			if start > len(str) {
				return types.NoneValue, nil
			}
			idx := strings.Index(string(str[start:]), text(args[1]))
			if idx < 0 {
				return types.NoneValue, nil
			}
			// byte offset back to characters
			runes := len([]rune(string(str[start:])[:idx]))
			return types.Integer(start + runes + 1), nil
		},
	}
}

// Uppercase returns the definition for `uppercase string`.
func Uppercase() functions.CustomFunctionDef {
	return transform("uppercase", strings.ToUpper)
}

// Lowercase returns the definition for `lowercase string`.
func Lowercase() functions.CustomFunctionDef {
	return transform("lowercase", strings.ToLower)
}

// Capitalize uppercases the first character and lowercases the rest.
func Capitalize() functions.CustomFunctionDef {
	return transform("capitalize", func(s string) string {
		if s == "" {
			return s
		}
		runes := []rune(strings.ToLower(s))
		runes[0] = unicode.ToUpper(runes[0])
		return string(runes)
	})
}

// splitWordsRe splits on camelCase humps, underscores, hyphens and spaces.
var splitWordsRe = regexp.MustCompile(`[_\-\s]+|([a-z])([A-Z])`)

func splitIntoWords(str string) []string {
	expanded := splitWordsRe.ReplaceAllStringFunc(str, func(s string) string {
		if len(s) == 2 && s[0] >= 'a' && s[0] <= 'z' {
			return string(s[0]) + " " + string(s[1])
		}
		return " "
	})
	return strings.Fields(expanded)
}

func joinLower(sep string) func(string) string {
	return func(s string) string {
		words := splitIntoWords(s)
		for i, w := range words {
			words[i] = strings.ToLower(w)
		}
		return strings.Join(words, sep)
	}
}

// SnakeCase returns the definition for `snake-case string`.
func SnakeCase() functions.CustomFunctionDef {
	return transform("snake-case", joinLower("_"))
}

// KebabCase returns the definition for `kebab-case string`.
func KebabCase() functions.CustomFunctionDef {
	return transform("kebab-case", joinLower("-"))
}

// CamelCase returns the definition for `camel-case string`.
func CamelCase() functions.CustomFunctionDef {
	return transform("camel-case", func(s string) string {
		words := splitIntoWords(s)
		if len(words) == 0 {
			return ""
		}
		var b strings.Builder
		b.WriteString(strings.ToLower(words[0]))
		for _, w := range words[1:] {
			runes := []rune(strings.ToLower(w))
			runes[0] = unicode.ToUpper(runes[0])
			b.WriteString(string(runes))
		}
		return b.String()
	})
}

// RepeatString returns the definition for `repeat-string string count`.
func RepeatString() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name: "repeat-string",
		Spec: "string [any-string!] count [integer!]",
		Fn: func(_ context.Context, args ...types.Value) (types.Value, error) {
			n := args[1].(types.Integer)
			if n < 0 {
				return nil, types.Errorf(types.CodeOutOfRange, "repeat-string count %d is negative", n).WithArgs(args[1])
			}
			return types.NewString(args[0].Kind(), strings.Repeat(text(args[0]), int(n))), nil
		},
	}
}

// Words returns the definition for `words string`: a block of the
// whitespace-separated words.
func Words() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name: "words",
		Spec: "string [any-string!]",
		Fn: func(_ context.Context, args ...types.Value) (types.Value, error) {
			parts := strings.Fields(text(args[0]))
			out := make([]types.Value, len(parts))
			for i, p := range parts {
				out[i] = types.Str(p)
			}
			return types.NewBlock(out...), nil
		},
	}
}

var placeholderRe = regexp.MustCompile(`\{\{([\w?!-]+)\}\}`)

// Template returns the definition for `template string bindings`.
// Each {{word}} is replaced by the formed value of word in the bindings
// object; placeholders without a binding are left alone.
func Template() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name: "template",
		Spec: "string [any-string!] bindings [object!]",
		Fn: func(_ context.Context, args ...types.Value) (types.Value, error) {
			bindings := args[1].(*types.Object)
			result := placeholderRe.ReplaceAllStringFunc(text(args[0]), func(match string) string {
				key := match[2 : len(match)-2]
				if v, ok := bindings.Get(key); ok && !types.IsUnset(v) {
					return types.Form(v)
				}
				return match
			})
			return types.Str(result), nil
		},
	}
}
