package evaluator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/sandrolain/gorebol/pkg/parser"
	"github.com/sandrolain/gorebol/pkg/types"
)

// NativeImpl is the Go body of a native. Returning a nil value means unset.
type NativeImpl func(ctx context.Context, c *Call) (types.Value, error)

// ParamClass says how an argument is gathered.
type ParamClass uint8

const (
	// ParamNormal evaluates one expression.
	ParamNormal ParamClass = iota
	// ParamLit takes the next value literally; parens and get-words are
	// still evaluated.
	ParamLit
	// ParamGet takes the next value literally.
	ParamGet
	// ParamRefinement is an optional /flag; the params after it are its
	// arguments.
	ParamRefinement
)

// Param is one entry of a function spec.
type Param struct {
	Name  string
	Class ParamClass
	Types types.TypeSet
	// Refinement is the refinement this param is an argument of, or "".
	Refinement string
}

// Function is a native or a user-defined function.
type Function struct {
	Name   string
	Params []Param
	// Origin is set on natives whose only job is to throw; CATCH/NAME
	// matches them against the origin of a throw.
	Origin Origin
	// Infix functions take their first argument from the left.
	Infix bool
	// Reevaluate makes the result be evaluated as if written inline.
	Reevaluate bool

	spec    *types.Block
	body    *types.Block
	impl    NativeImpl
	closure *EvalContext
	target  *callFrame
	index   map[string]int
}

// NewNative builds a native from its spec source.
func NewNative(name, spec string, impl NativeImpl) (*Function, error) {
	blk, err := parser.ParseBlock(spec)
	if err != nil {
		return nil, fmt.Errorf("native %s: parse spec: %w", name, err)
	}
	params, err := parseSpec(blk)
	if err != nil {
		return nil, fmt.Errorf("native %s: %w", name, err)
	}
	return newFunction(name, params, blk, impl), nil
}

func newFunction(name string, params []Param, spec *types.Block, impl NativeImpl) *Function {
	fn := &Function{
		Name:   name,
		Params: params,
		spec:   spec,
		impl:   impl,
		index:  make(map[string]int, len(params)),
	}
	for i, p := range params {
		fn.index[strings.ToLower(p.Name)] = i
	}
	return fn
}

// newUserFunction builds a function whose body runs in a child of closure.
func newUserFunction(name string, spec, body *types.Block, closure *EvalContext) (*Function, error) {
	params, err := parseSpec(spec)
	if err != nil {
		return nil, err
	}
	fn := newFunction(name, params, spec, nil)
	fn.body = body
	fn.closure = closure
	return fn, nil
}

// Kind reports native! or function!.
func (f *Function) Kind() types.Kind {
	if f.impl != nil {
		return types.KindNative
	}
	return types.KindFunction
}

// IsNative reports whether the function is implemented in Go.
func (f *Function) IsNative() bool { return f.impl != nil }

// Spec returns the spec block.
func (f *Function) Spec() *types.Block { return f.spec }

// Body returns the body of a user function, nil for natives.
func (f *Function) Body() *types.Block { return f.body }

// Mold renders the function in source form.
func (f *Function) Mold() string {
	spec := "[]"
	if f.spec != nil {
		spec = types.Mold(f.spec)
	}
	if f.impl != nil {
		return fmt.Sprintf("make native! [%s]", spec)
	}
	return fmt.Sprintf("make function! [%s %s]", spec, types.Mold(f.body))
}

// Arity is the number of arguments taken without refinements.
func (f *Function) Arity() int {
	n := 0
	for _, p := range f.Params {
		if p.Class == ParamRefinement {
			break
		}
		n++
	}
	return n
}

func (f *Function) param(name string) int {
	i, ok := f.index[strings.ToLower(name)]
	if !ok {
		panic(fmt.Sprintf("evaluator: %s has no parameter %s", f.Name, name))
	}
	return i
}

func (f *Function) check(p Param, v types.Value) error {
	if v == nil {
		v = types.UnsetValue
	}
	if p.Types.Has(v.Kind()) {
		return nil
	}
	return types.Errorf(types.CodeExpectArg, "%s does not allow %s for its %s argument", f.Name, v.Kind(), p.Name).
		WithArgs(types.NewWord(types.KindWord, f.Name), types.Datatype{Of: v.Kind()}, types.NewWord(types.KindWord, p.Name))
}

// Call is the frame a native runs in: its arguments and the context it was
// invoked from.
type Call struct {
	t    *task
	env  *EvalContext
	fn   *Function
	args []types.Value
}

// Function returns the native being run.
func (c *Call) Function() *Function { return c.fn }

// Arg returns the argument named name. Unused refinement arguments are none.
func (c *Call) Arg(name string) types.Value { return c.args[c.fn.param(name)] }

// Ref reports whether the refinement named name was used.
func (c *Call) Ref(name string) bool {
	return types.IsConditionalTrue(c.args[c.fn.param(name)])
}

// Args returns every argument slot in spec order.
func (c *Call) Args() []types.Value { return c.args }

// Env returns the context the native was invoked from.
func (c *Call) Env() *EvalContext { return c.env }

// Output is where PRINT and friends write.
func (c *Call) Output() io.Writer { return c.t.out }

// Logger returns the evaluator's logger.
func (c *Call) Logger() *slog.Logger { return c.t.logger }

// Evaluator returns the evaluator running the call.
func (c *Call) Evaluator() *Evaluator { return c.t.ev }

// DoBlock evaluates blk in the caller's context.
func (c *Call) DoBlock(ctx context.Context, blk *types.Block) (types.Value, error) {
	return c.t.doBlock(ctx, c.env, blk)
}

// DoNext evaluates the expression at index of blk in the caller's context.
func (c *Call) DoNext(ctx context.Context, blk *types.Block, index int) (int, types.Value, error) {
	return c.t.doNext(ctx, c.env, blk, index)
}

// Apply calls a function value with positional arguments.
func (c *Call) Apply(ctx context.Context, fn types.Value, args ...types.Value) (types.Value, error) {
	f, ok := fn.(*Function)
	if !ok {
		return nil, types.Errorf(types.CodeInvalidArg, "cannot apply %s", fn.Kind())
	}
	return c.t.apply(ctx, c.env, f, args)
}

// noValue is what a conditional returns when no branch ran.
func (c *Call) noValue() types.Value {
	if c.t.ev.opts.Legacy.NoneInsteadOfUnset {
		return types.NoneValue
	}
	return types.UnsetValue
}

// invoke gathers the arguments of fn from blk starting at next, activating
// the refinements named in refs, then calls it.
func (t *task) invoke(ctx context.Context, env *EvalContext, fn *Function, refs []types.Value, blk *types.Block, next int) (int, types.Value, error) {
	args := make([]types.Value, len(fn.Params))
	for i, p := range fn.Params {
		if p.Class == ParamRefinement || p.Refinement != "" {
			args[i] = types.NoneValue
		}
	}

	var err error
	for i, p := range fn.Params {
		if p.Class == ParamRefinement {
			break
		}
		if next, args[i], err = t.gatherArg(ctx, env, fn, p, blk, next); err != nil {
			return ThrownFlag, nil, err
		}
	}

	for _, r := range refs {
		w, ok := r.(types.Word)
		if !ok || w.K != types.KindWord {
			return ThrownFlag, nil, types.Errorf(types.CodeBadRefine, "invalid refinement %s for %s", types.Mold(r), fn.Name)
		}
		i, ok := fn.index[w.Canon()]
		if !ok || fn.Params[i].Class != ParamRefinement {
			return ThrownFlag, nil, types.Errorf(types.CodeBadRefine, "%s has no refinement called %s", fn.Name, w.Name).
				WithArgs(types.NewWord(types.KindWord, fn.Name), w.As(types.KindRefinement))
		}
		if args[i] == types.True {
			return ThrownFlag, nil, types.Errorf(types.CodeBadRefines, "refinement /%s used twice", w.Name)
		}
		args[i] = types.True
		for j := i + 1; j < len(fn.Params) && fn.Params[j].Class != ParamRefinement; j++ {
			if next, args[j], err = t.gatherArg(ctx, env, fn, fn.Params[j], blk, next); err != nil {
				return ThrownFlag, nil, err
			}
		}
	}

	v, err := t.call(ctx, env, fn, args)
	if err != nil {
		return ThrownFlag, nil, err
	}
	return next, v, nil
}

// gatherArg collects one argument for p from blk at next.
func (t *task) gatherArg(ctx context.Context, env *EvalContext, fn *Function, p Param, blk *types.Block, next int) (int, types.Value, error) {
	if next >= blk.Len() {
		return ThrownFlag, nil, types.Errorf(types.CodeNoArg, "%s is missing its %s argument", fn.Name, p.Name).
			WithArgs(types.NewWord(types.KindWord, fn.Name), types.NewWord(types.KindWord, p.Name))
	}

	var (
		v   types.Value
		err error
	)
	item := blk.At(next)
	switch p.Class {
	case ParamGet:
		v, next = item, next+1
	case ParamLit:
		next++
		switch x := item.(type) {
		case *types.Block:
			if x.Kind() == types.KindParen {
				v, err = t.doBlock(ctx, env, x)
			} else {
				v = x
			}
		case types.Word:
			if x.K == types.KindGetWord {
				v, err = env.Get(x.Name)
			} else {
				v = x
			}
		default:
			v = item
		}
		if err != nil {
			return ThrownFlag, nil, err
		}
	default:
		next, v, err = t.evalExpr(ctx, env, blk, next)
		if err != nil {
			return ThrownFlag, nil, err
		}
	}

	if err := fn.check(p, v); err != nil {
		return ThrownFlag, nil, err
	}
	return next, v, nil
}

// call runs fn on gathered arguments.
func (t *task) call(ctx context.Context, env *EvalContext, fn *Function, args []types.Value) (types.Value, error) {
	if fn.impl == nil {
		return t.callFunction(ctx, fn, args)
	}

	v, err := fn.impl(ctx, &Call{t: t, env: env, fn: fn, args: args})
	if err != nil {
		if e, ok := AsError(err); ok && e.Where == "" {
			e.Where = fn.Name
		}
		return nil, err
	}
	if v == nil {
		v = types.UnsetValue
	}
	return v, nil
}

// callFunction runs a user function body in a fresh frame. The epilogue
// consumes EXIT and the definitional RETURN of this call.
func (t *task) callFunction(ctx context.Context, fn *Function, args []types.Value) (types.Value, error) {
	frame := types.NewObject()
	for i, p := range fn.Params {
		frame.Define(p.Name, args[i])
	}
	cf := &callFrame{fn: fn}
	if _, ok := frame.Var("return"); !ok {
		frame.Define("return", definitionalReturn(cf))
	}

	v, err := t.doBlock(ctx, fn.closure.NewChildContext(frame), fn.body)
	if err == nil {
		return v, nil
	}
	if th, ok := AsThrow(err); ok {
		if th.Origin == OriginExit || (th.Origin == OriginReturn && th.target == cf) {
			return th.Take(), nil
		}
	}
	return nil, err
}

var returnParams = []Param{{Name: "value", Types: types.AnyType}}

// definitionalReturn builds the RETURN bound inside one call.
func definitionalReturn(cf *callFrame) *Function {
	fn := newFunction("return", returnParams, nil, nil)
	fn.Origin = OriginReturn
	fn.target = cf
	fn.impl = func(_ context.Context, c *Call) (types.Value, error) {
		th := newThrow(OriginReturn, nil, c.Arg("value"))
		th.target = cf
		th.native = fn
		return nil, th
	}
	return fn
}

// apply calls fn with positional arguments in spec order. Refinement slots
// are active when their value is conditionally true; missing arguments are
// none and left to the type check.
func (t *task) apply(ctx context.Context, env *EvalContext, fn *Function, values []types.Value) (types.Value, error) {
	if len(values) > len(fn.Params) {
		return nil, types.Errorf(types.CodeInvalidArg, "too many arguments for %s", fn.Name)
	}
	args := make([]types.Value, len(fn.Params))
	active := true
	for i, p := range fn.Params {
		v := types.NoneValue
		if i < len(values) {
			v = values[i]
		}
		switch {
		case p.Class == ParamRefinement:
			active = types.IsConditionalTrue(v)
			args[i] = types.NoneValue
			if active {
				args[i] = types.True
			}
			continue
		case p.Refinement != "" && !active:
			args[i] = types.NoneValue
			continue
		}
		if err := fn.check(p, v); err != nil {
			return nil, err
		}
		args[i] = v
	}
	return t.call(ctx, env, fn, args)
}
