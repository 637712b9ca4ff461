package evaluator

import (
	"strings"
	"sync"

	"github.com/sandrolain/gorebol/pkg/types"
)

// nativeDef is one row of the built-in table.
type nativeDef struct {
	Name       string
	Spec       string
	Impl       NativeImpl
	Origin     Origin
	Infix      bool
	Reevaluate bool
}

var (
	builtinFunctions     map[string]*Function
	builtinFunctionsList []*Function
	builtinFunctionsOnce sync.Once
)

// nativeTable lists every built-in native with its spec block.
func nativeTable() []nativeDef {
	return []nativeDef{
		// Non-local exits
		{Name: "catch", Spec: "block [block!] /name word [any-value!] /quit /any /with handler [block! any-function!]", Impl: nativeCatch},
		{Name: "throw", Spec: "value [any-type!] /name word [any-value!]", Impl: nativeThrow},
		{Name: "trap", Spec: "block [block!] /with handler [block! any-function!]", Impl: nativeTrap},
		{Name: "attempt", Spec: "block [block!]", Impl: nativeAttempt},
		{Name: "break", Spec: "/with value [any-type!] /return return-value [any-type!]", Impl: nativeBreak, Origin: OriginBreak},
		{Name: "continue", Spec: "/with value [any-type!]", Impl: nativeContinue, Origin: OriginContinue},
		{Name: "exit", Spec: "/with value [any-type!]", Impl: nativeExit, Origin: OriginExit},
		{Name: "return", Spec: "value [any-type!]", Impl: nativeReturn},
		{Name: "quit", Spec: "/return value [any-type!] /now", Impl: nativeQuit, Origin: OriginQuit},

		// Short-circuit and conditionals
		{Name: "all", Spec: "block [block!]", Impl: nativeAll},
		{Name: "any", Spec: "block [block!]", Impl: nativeAny},
		{Name: "if", Spec: "condition [any-value!] branch [any-value!] /only", Impl: nativeIf},
		{Name: "unless", Spec: "condition [any-value!] branch [any-value!] /only", Impl: nativeUnless},
		{Name: "either", Spec: "condition [any-value!] true-branch [any-value!] false-branch [any-value!] /only", Impl: nativeEither},
		{Name: "case", Spec: "block [block!] /all /only", Impl: nativeCase},
		{Name: "switch", Spec: "value [any-value!] cases [block!] /default case [block!] /all /strict", Impl: nativeSwitch},

		// Evaluation
		{Name: "do", Spec: "value [any-type!] /args arg [any-value!] /next var [word!]", Impl: nativeDo},
		{Name: "eval", Spec: "value [any-type!]", Impl: nativeEval, Reevaluate: true},
		{Name: "apply", Spec: "func [any-function!] block [block!] /only", Impl: nativeApply},
		{Name: "fail", Spec: "reason [error! string! block!]", Impl: nativeFail},
		{Name: "also", Spec: "value1 [any-type!] value2 [any-type!]", Impl: nativeAlso},
		{Name: "comment", Spec: "value [any-type!]", Impl: nativeComment},
		{Name: "reduce", Spec: "value [any-type!] /into target [any-block!]", Impl: nativeReduce},
		{Name: "compose", Spec: "value [any-type!] /deep /only /into target [any-block!]", Impl: nativeCompose},
		{Name: "protect", Spec: "value [any-value!] /deep /words /values /hide", Impl: nativeProtect},
		{Name: "unprotect", Spec: "value [any-value!] /deep /words /values", Impl: nativeUnprotect},

		// Function makers
		{Name: "func", Spec: "spec [block!] body [block!]", Impl: nativeFunc},
		{Name: "function", Spec: "spec [block!] body [block!]", Impl: nativeFunc},
		{Name: "does", Spec: "body [block!]", Impl: nativeDoes},
		{Name: "has", Spec: "vars [block!] body [block!]", Impl: nativeHas},

		// Loops
		{Name: "loop", Spec: "count [number!] block [block!]", Impl: nativeLoop},
		{Name: "repeat", Spec: "'word [word!] value [number! series!] body [block!]", Impl: nativeRepeat},
		{Name: "while", Spec: "cond-block [block!] body-block [block!]", Impl: nativeWhile},
		{Name: "until", Spec: "block [block!]", Impl: nativeUntil},
		{Name: "forever", Spec: "body [block!]", Impl: nativeForever},
		{Name: "foreach", Spec: "'word [word! block!] data [series!] body [block!]", Impl: nativeForeach},

		// Words and series
		{Name: "set", Spec: "word [any-word! block!] value [any-type!] /any", Impl: nativeSet},
		{Name: "get", Spec: "word [any-word!] /any", Impl: nativeGet},
		{Name: "value?", Spec: "value [any-word!]", Impl: nativeValueQ},
		{Name: "type?", Spec: "value [any-type!] /word", Impl: nativeTypeQ},
		{Name: "quote", Spec: ":value [any-type!]", Impl: nativeQuote},
		{Name: "not", Spec: "value [any-value!]", Impl: nativeNot},
		{Name: "append", Spec: "series [series!] value [any-value!] /only", Impl: nativeAppend},
		{Name: "copy", Spec: "value [series! object!] /deep", Impl: nativeCopy},
		{Name: "length?", Spec: "series [series!]", Impl: nativeLength},
		{Name: "first", Spec: "series [series!]", Impl: nativeFirst},
		{Name: "pick", Spec: "series [series!] index [integer!]", Impl: nativePick},
		{Name: "select", Spec: "series [any-block! object!] value [any-value!]", Impl: nativeSelect},
		{Name: "next", Spec: "series [any-block!]", Impl: nativeNext},
		{Name: "head", Spec: "series [any-block!]", Impl: nativeHead},
		{Name: "tail?", Spec: "series [series!]", Impl: nativeTailQ},
		{Name: "join", Spec: "value [any-value!] rest [any-value!]", Impl: nativeJoin},
		{Name: "rejoin", Spec: "block [block!]", Impl: nativeRejoin},
		{Name: "context", Spec: "blk [block!]", Impl: nativeContext},
		{Name: "object", Spec: "blk [block!]", Impl: nativeContext},

		// Output
		{Name: "print", Spec: "value [any-type!]", Impl: nativePrint},
		{Name: "prin", Spec: "value [any-type!]", Impl: nativePrin},
		{Name: "probe", Spec: "value [any-type!]", Impl: nativeProbe},
		{Name: "mold", Spec: "value [any-type!]", Impl: nativeMold},
		{Name: "form", Spec: "value [any-type!]", Impl: nativeForm},

		// Arithmetic
		{Name: "add", Spec: mathSpec, Impl: nativeAdd},
		{Name: "subtract", Spec: mathSpec, Impl: nativeSubtract},
		{Name: "multiply", Spec: mathSpec, Impl: nativeMultiply},
		{Name: "divide", Spec: mathSpec, Impl: nativeDivide},
		{Name: "+", Spec: mathSpec, Impl: nativeAdd, Infix: true},
		{Name: "-", Spec: mathSpec, Impl: nativeSubtract, Infix: true},
		{Name: "*", Spec: mathSpec, Impl: nativeMultiply, Infix: true},
		{Name: "/", Spec: mathSpec, Impl: nativeDivide, Infix: true},

		// Comparison
		{Name: "equal?", Spec: compareSpec, Impl: comparator(Equal, false)},
		{Name: "not-equal?", Spec: compareSpec, Impl: comparator(Equal, true)},
		{Name: "equiv?", Spec: compareSpec, Impl: comparator(Equiv, false)},
		{Name: "not-equiv?", Spec: compareSpec, Impl: comparator(Equiv, true)},
		{Name: "strict-equal?", Spec: compareSpec, Impl: comparator(StrictEqual, false)},
		{Name: "strict-not-equal?", Spec: compareSpec, Impl: comparator(StrictEqual, true)},
		{Name: "same?", Spec: compareSpec, Impl: comparator(Same, false)},
		{Name: "greater?", Spec: compareSpec, Impl: comparator(Greater, false)},
		{Name: "greater-or-equal?", Spec: compareSpec, Impl: comparator(GreaterOrEqual, false)},
		{Name: "lesser?", Spec: compareSpec, Impl: lesser(Greater)},
		{Name: "lesser-or-equal?", Spec: compareSpec, Impl: lesser(GreaterOrEqual)},
		{Name: "=", Spec: compareSpec, Impl: comparator(Equal, false), Infix: true},
		{Name: "<>", Spec: compareSpec, Impl: comparator(Equal, true), Infix: true},
		{Name: "==", Spec: compareSpec, Impl: comparator(StrictEqual, false), Infix: true},
		{Name: "!==", Spec: compareSpec, Impl: comparator(StrictEqual, true), Infix: true},
		{Name: "=?", Spec: compareSpec, Impl: comparator(Same, false), Infix: true},
		{Name: ">", Spec: compareSpec, Impl: comparator(Greater, false), Infix: true},
		{Name: ">=", Spec: compareSpec, Impl: comparator(GreaterOrEqual, false), Infix: true},
		{Name: "<", Spec: compareSpec, Impl: lesser(Greater), Infix: true},
		{Name: "<=", Spec: compareSpec, Impl: lesser(GreaterOrEqual), Infix: true},
	}
}

const (
	mathSpec    = "value1 [number! money!] value2 [number! money!]"
	compareSpec = "value1 [any-value!] value2 [any-value!]"
)

// initBuiltinFunctions builds the natives once; they are immutable and
// shared by every Evaluator.
func initBuiltinFunctions() {
	builtinFunctionsOnce.Do(func() {
		defs := nativeTable()
		for _, k := range types.Kinds() {
			name := strings.TrimSuffix(k.String(), "!") + "?"
			defs = append(defs, nativeDef{Name: name, Spec: "value [any-type!]", Impl: kindPredicate(k)})
		}

		builtinFunctions = make(map[string]*Function, len(defs))
		for _, def := range defs {
			fn := mustNative(NewNative(def.Name, def.Spec, def.Impl))
			fn.Origin = def.Origin
			fn.Infix = def.Infix
			fn.Reevaluate = def.Reevaluate
			builtinFunctions[def.Name] = fn
			builtinFunctionsList = append(builtinFunctionsList, fn)
		}
	})
}

func builtinNatives() []*Function {
	initBuiltinFunctions()
	return builtinFunctionsList
}

// GetFunction returns a built-in native by name.
func GetFunction(name string) (*Function, bool) {
	initBuiltinFunctions()
	fn, ok := builtinFunctions[strings.ToLower(name)]
	return fn, ok
}
