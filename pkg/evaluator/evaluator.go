package evaluator

// Package evaluator runs block-language scripts.
//
// The evaluator walks a block one expression at a time (see DoNext). Words
// resolve through a chain of frames, functions consume the following
// expressions as arguments, and non-local exits travel back to their
// consumer as a second error channel: a *Throw for CATCH, loops and function
// returns, a *types.Error for TRAP and ATTEMPT.
//
// # Example
//
//	ev := evaluator.New()
//	script, _ := parser.Parse(`catch [loop 3 [throw 10] 20]`)
//	result, err := ev.Eval(ctx, script)
//	// result == types.Integer(10)
//
// # Concurrency
//
// An Evaluator is safe for concurrent use. Each call to Eval gets its own
// trap stack, depth counter and user frame over a shared, read-only table
// of natives.
//
//	results, errs := ev.EvalMany(ctx, scripts)

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/sandrolain/gorebol/pkg/cache"
	"github.com/sandrolain/gorebol/pkg/functions"
	"github.com/sandrolain/gorebol/pkg/parser"
	"github.com/sandrolain/gorebol/pkg/types"
)

// Evaluator evaluates compiled scripts.
type Evaluator struct {
	opts   EvalOptions
	logger *slog.Logger
	cache  *cache.Cache // non-nil when Caching is enabled
	lib    *EvalContext // natives, datatypes and host functions; never written after New
}

// EvalOptions configures evaluator behavior.
type EvalOptions struct {
	// Caching enables compilation caching for DO of strings and files.
	// The default cache holds up to 256 entries with LRU eviction.
	Caching bool
	// CacheSize sets the maximum number of cached scripts.
	// Only used when Caching is true and no explicit Cache is provided.
	// Defaults to 256.
	CacheSize int
	// Cache is a custom script cache. If non-nil, Caching is implicitly enabled.
	Cache *cache.Cache
	// Concurrency lets EvalMany run scripts in parallel.
	Concurrency bool
	// MaxDepth limits nested block evaluation.
	MaxDepth int
	// Timeout sets evaluation timeout.
	Timeout time.Duration
	// Debug enables debug logging.
	Debug bool
	// Logger for structured logging.
	Logger *slog.Logger
	// Output receives PRINT, PRIN and PROBE output. Defaults to os.Stdout.
	Output io.Writer
	// Legacy selects older behaviors of a few natives.
	Legacy Legacy
	// CustomFunctions holds host functions to register with the evaluator.
	CustomFunctions []functions.CustomFunctionDef
	// AdvancedFunctions holds host functions that can call back into scripts.
	AdvancedFunctions []functions.AdvancedCustomFunctionDef
	// Natives holds Go-implemented natives with their spec blocks.
	Natives []NativeDef
	// Globals are extra words defined next to the natives.
	Globals map[string]types.Value
}

// Legacy switches kept for scripts written against older semantics.
type Legacy struct {
	// NoneInsteadOfUnset makes IF, UNLESS, CASE and SWITCH return none
	// instead of unset when no branch ran.
	NoneInsteadOfUnset bool
	// NoSwitchEvals makes SWITCH compare paren, get-word and get-path keys
	// literally.
	NoSwitchEvals bool
	// NoSwitchFallthrough makes SWITCH return none when nothing matched.
	NoSwitchFallthrough bool
}

// NativeDef describes a Go-implemented native.
type NativeDef struct {
	Name string
	// Spec is the source of the spec block, e.g. `value [integer!] /only`.
	Spec string
	Impl NativeImpl
}

// defaultConcurrency controls the default value of EvalOptions.Concurrency for
// newly created Evaluators. It is true on all platforms except WebAssembly
// targets (js/wasm, wasip1), where it is set to false by init() in
// evaluator_wasm.go.
var defaultConcurrency = true

// New creates a new Evaluator. It panics if a registered native has a
// malformed spec block; use NewNative to validate specs ahead of time.
func New(opts ...EvalOption) *Evaluator {
	options := EvalOptions{
		Caching:     false,              // Disabled by default
		Concurrency: defaultConcurrency, // false on WASM targets
		MaxDepth:    10000,
		Timeout:     30 * time.Second,
	}

	for _, opt := range opts {
		opt(&options)
	}

	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.Output == nil {
		options.Output = os.Stdout
	}

	// Initialise script cache when caching is enabled.
	var c *cache.Cache
	if options.Cache != nil {
		c = options.Cache
	} else if options.Caching {
		size := options.CacheSize
		if size <= 0 {
			size = 256
		}
		c = cache.New(size)
	}

	e := &Evaluator{
		opts:   options,
		logger: options.Logger,
		cache:  c,
	}
	e.lib = e.buildLib()
	return e
}

// buildLib creates the shared frame holding natives, datatype words, logic
// words and every host function.
func (e *Evaluator) buildLib() *EvalContext {
	frame := types.NewObject()
	for _, fn := range builtinNatives() {
		frame.Define(fn.Name, fn)
	}
	for _, k := range types.Kinds() {
		frame.Define(k.String(), types.Datatype{Of: k})
	}
	for name, v := range map[string]types.Value{
		"true": types.True, "false": types.False,
		"on": types.True, "off": types.False,
		"yes": types.True, "no": types.False,
		"none": types.NoneValue,
	} {
		frame.Define(name, v)
	}

	for _, def := range e.opts.CustomFunctions {
		frame.Define(def.Name, mustNative(hostNative(def)))
	}
	for _, def := range e.opts.AdvancedFunctions {
		frame.Define(def.Name, mustNative(advancedHostNative(def)))
	}
	for _, def := range e.opts.Natives {
		frame.Define(def.Name, mustNative(NewNative(def.Name, def.Spec, def.Impl)))
	}
	for name, v := range e.opts.Globals {
		frame.Define(name, v)
	}

	lib := NewContext(frame)
	lib.shared = true
	return lib
}

func mustNative(fn *Function, err error) *Function {
	if err != nil {
		panic(fmt.Sprintf("evaluator: %v", err))
	}
	return fn
}

// Cache returns the script cache, or nil if caching is disabled.
func (e *Evaluator) Cache() *cache.Cache {
	return e.cache
}

// Options returns a copy of the evaluator's options.
func (e *Evaluator) Options() EvalOptions {
	return e.opts
}

// Compile parses source, going through the script cache when enabled.
// Cached scripts are never handed out directly: each caller gets its own
// copy of the literals, so running one cannot change what the next sees.
func (e *Evaluator) Compile(source string) (*types.Script, error) {
	if e.cache == nil {
		return parser.Parse(source)
	}
	script, err := e.cache.GetOrCompile(source, func() (*types.Script, error) {
		return parser.Parse(source)
	})
	if err != nil {
		return nil, err
	}
	return script.Clone(), nil
}

// Eval evaluates a script in a fresh user frame.
//
// An uncaught THROW, BREAK, CONTINUE, EXIT or RETURN becomes a no-catch
// *types.Error whose args are the payload and the throw name. An uncaught
// QUIT returns a *QuitError.
func (e *Evaluator) Eval(ctx context.Context, script *types.Script) (types.Value, error) {
	return e.NewSession().Eval(ctx, script)
}

// EvalWithBindings evaluates a script with extra words defined in its user frame.
func (e *Evaluator) EvalWithBindings(ctx context.Context, script *types.Script, bindings map[string]types.Value) (types.Value, error) {
	s := e.NewSession()
	for name, v := range bindings {
		if err := s.Set(name, v); err != nil {
			return nil, err
		}
	}
	return s.Eval(ctx, script)
}

// EvalOption configures evaluation behavior.
type EvalOption func(*EvalOptions)

// WithCaching enables or disables script compilation caching.
// When enabled, a default LRU cache of 256 entries is created.
// To control the cache size use WithCacheSize; to supply your own cache use WithCache.
func WithCaching(enabled bool) EvalOption {
	return func(opts *EvalOptions) {
		opts.Caching = enabled
	}
}

// WithCacheSize sets the maximum number of cached scripts.
// Only effective when combined with WithCaching(true).
func WithCacheSize(size int) EvalOption {
	return func(opts *EvalOptions) {
		opts.CacheSize = size
	}
}

// WithCache attaches an external script cache.
// The evaluator will use this cache regardless of the Caching flag.
func WithCache(c *cache.Cache) EvalOption {
	return func(opts *EvalOptions) {
		opts.Cache = c
	}
}

// WithConcurrency enables or disables concurrent evaluation in EvalMany.
func WithConcurrency(enabled bool) EvalOption {
	return func(opts *EvalOptions) {
		opts.Concurrency = enabled
	}
}

// WithTimeout sets the evaluation timeout.
func WithTimeout(timeout time.Duration) EvalOption {
	return func(opts *EvalOptions) {
		opts.Timeout = timeout
	}
}

// WithDebug enables or disables debug logging.
func WithDebug(enabled bool) EvalOption {
	return func(opts *EvalOptions) {
		opts.Debug = enabled
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) EvalOption {
	return func(opts *EvalOptions) {
		opts.Logger = logger
	}
}

// WithMaxDepth sets the maximum block nesting depth during evaluation.
func WithMaxDepth(depth int) EvalOption {
	return func(opts *EvalOptions) {
		opts.MaxDepth = depth
	}
}

// WithOutput redirects PRINT, PRIN and PROBE.
func WithOutput(w io.Writer) EvalOption {
	return func(opts *EvalOptions) {
		opts.Output = w
	}
}

// WithLegacy selects legacy behaviors.
func WithLegacy(legacy Legacy) EvalOption {
	return func(opts *EvalOptions) {
		opts.Legacy = legacy
	}
}

// WithNative registers a Go-implemented native. spec is the source of its
// spec block, for example `value [integer!] /twice`.
func WithNative(name, spec string, impl NativeImpl) EvalOption {
	return func(opts *EvalOptions) {
		opts.Natives = append(opts.Natives, NativeDef{Name: name, Spec: spec, Impl: impl})
	}
}

// WithGlobal defines a word next to the natives, visible to every script.
func WithGlobal(name string, v types.Value) EvalOption {
	return func(opts *EvalOptions) {
		if opts.Globals == nil {
			opts.Globals = make(map[string]types.Value)
		}
		opts.Globals[name] = v
	}
}

// WithCustomFunction registers a host function.
// spec is the source of its spec block; pass "" for a function without
// arguments.
//
// Example:
//
//	evaluator.New(evaluator.WithCustomFunction("greet", "name [string!]",
//	    func(ctx context.Context, args ...types.Value) (types.Value, error) {
//	        return types.Str("Hello, " + types.Form(args[0]) + "!"), nil
//	    }))
func WithCustomFunction(name, spec string, fn functions.CustomFunc) EvalOption {
	return func(opts *EvalOptions) {
		opts.CustomFunctions = append(opts.CustomFunctions, functions.CustomFunctionDef{
			Name: name,
			Spec: spec,
			Fn:   fn,
		})
	}
}

// WithAdvancedFunction registers a host function that receives a Caller to
// invoke function values passed as arguments.
func WithAdvancedFunction(name, spec string, fn functions.AdvancedCustomFunc) EvalOption {
	return func(opts *EvalOptions) {
		opts.AdvancedFunctions = append(opts.AdvancedFunctions, functions.AdvancedCustomFunctionDef{
			Name: name,
			Spec: spec,
			Fn:   fn,
		})
	}
}

// WithFunctions registers several host functions of either kind at once.
func WithFunctions(entries ...functions.FunctionEntry) EvalOption {
	return func(opts *EvalOptions) {
		for _, entry := range entries {
			switch def := entry.(type) {
			case functions.CustomFunctionDef:
				opts.CustomFunctions = append(opts.CustomFunctions, def)
			case functions.AdvancedCustomFunctionDef:
				opts.AdvancedFunctions = append(opts.AdvancedFunctions, def)
			}
		}
	}
}
