// Package extwasm loads WebAssembly modules as script extensions.
//
// Every exported function whose parameters and results are plain numbers
// (i32, i64, f32 or f64) becomes a command. Scripts reach them through the
// LOAD-EXTENSION native, which returns an object holding one native per
// command:
//
//	m: load-extension %math.wasm
//	m/add 1 2
//
// Modules run on wazero. WASI imports are provided so modules built by
// TinyGo or Rust for wasip1 can be loaded as long as they export their
// commands directly.
package extwasm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/sandrolain/gorebol/pkg/evaluator"
	"github.com/sandrolain/gorebol/pkg/types"
)

// Command describes one callable export.
type Command struct {
	Name    string
	Params  []api.ValueType
	Results []api.ValueType
}

// Extension is an instantiated module.
type Extension struct {
	name     string
	module   api.Module
	commands map[string]Command
	runtime  wazero.Runtime // owned only when loaded through Load
}

// newRuntime builds a runtime that aborts running modules when the
// evaluation context is done.
func newRuntime(ctx context.Context) (wazero.Runtime, error) {
	r := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig().WithCloseOnContextDone(true))
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, r); err != nil {
		_ = r.Close(ctx)
		return nil, fmt.Errorf("extwasm: wasi: %w", err)
	}
	return r, nil
}

// Load compiles and instantiates wasm in a runtime of its own. Close
// releases it.
func Load(ctx context.Context, name string, wasm []byte) (*Extension, error) {
	r, err := newRuntime(ctx)
	if err != nil {
		return nil, err
	}
	x, err := instantiate(ctx, r, name, name, wasm)
	if err != nil {
		_ = r.Close(ctx)
		return nil, err
	}
	x.runtime = r
	return x, nil
}

func instantiate(ctx context.Context, r wazero.Runtime, name, moduleName string, wasm []byte) (*Extension, error) {
	compiled, err := r.CompileModule(ctx, wasm)
	if err != nil {
		return nil, types.Errorf(types.CodeExtension, "cannot compile extension %s: %v", name, err).WithCause(err)
	}
	mod, err := r.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(moduleName))
	if err != nil {
		return nil, types.Errorf(types.CodeExtension, "cannot start extension %s: %v", name, err).WithCause(err)
	}

	x := &Extension{name: name, module: mod, commands: make(map[string]Command)}
	for export, def := range compiled.ExportedFunctions() {
		if numeric(def.ParamTypes()) && numeric(def.ResultTypes()) {
			x.commands[export] = Command{Name: export, Params: def.ParamTypes(), Results: def.ResultTypes()}
		}
	}
	return x, nil
}

func numeric(ts []api.ValueType) bool {
	for _, t := range ts {
		switch t {
		case api.ValueTypeI32, api.ValueTypeI64, api.ValueTypeF32, api.ValueTypeF64:
		default:
			return false
		}
	}
	return true
}

// Name returns the name the extension was loaded under.
func (x *Extension) Name() string { return x.name }

// Commands lists the callable exports in name order.
func (x *Extension) Commands() []string {
	names := make([]string, 0, len(x.commands))
	for name := range x.commands {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Command returns the signature of one command.
func (x *Extension) Command(name string) (Command, bool) {
	cmd, ok := x.commands[name]
	return cmd, ok
}

// Call runs a command. Integers and logic values feed integer parameters;
// decimals, percents and integers feed float parameters. A trap inside the
// module is reported as an extension error.
func (x *Extension) Call(ctx context.Context, name string, args ...types.Value) (types.Value, error) {
	cmd, ok := x.commands[name]
	if !ok {
		return nil, types.Errorf(types.CodeInvalidArg, "extension %s has no command %s", x.name, name)
	}
	if len(args) != len(cmd.Params) {
		return nil, types.Errorf(types.CodeInvalidArg, "%s takes %d arguments, got %d", name, len(cmd.Params), len(args))
	}

	params := make([]uint64, len(args))
	for i, arg := range args {
		p, err := encode(cmd.Params[i], arg)
		if err != nil {
			return nil, err
		}
		params[i] = p
	}

	results, err := x.module.ExportedFunction(name).Call(ctx, params...)
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return nil, cerr
		}
		return nil, types.Errorf(types.CodeExtension, "%s/%s failed: %v", x.name, name, err).WithCause(err)
	}

	switch len(results) {
	case 0:
		return types.UnsetValue, nil
	case 1:
		return decode(cmd.Results[0], results[0]), nil
	}
	values := make([]types.Value, len(results))
	for i, r := range results {
		values[i] = decode(cmd.Results[i], r)
	}
	return types.NewBlock(values...), nil
}

func encode(t api.ValueType, v types.Value) (uint64, error) {
	switch t {
	case api.ValueTypeI32, api.ValueTypeI64:
		var n int64
		switch x := v.(type) {
		case types.Integer:
			n = int64(x)
		case types.Logic:
			if x {
				n = 1
			}
		default:
			return 0, badArg(t, v)
		}
		if t == api.ValueTypeI32 {
			return api.EncodeI32(int32(n)), nil
		}
		return api.EncodeI64(n), nil

	case api.ValueTypeF32, api.ValueTypeF64:
		var f float64
		switch x := v.(type) {
		case types.Decimal:
			f = float64(x)
		case types.Percent:
			f = float64(x)
		case types.Integer:
			f = float64(x)
		default:
			return 0, badArg(t, v)
		}
		if t == api.ValueTypeF32 {
			return api.EncodeF32(float32(f)), nil
		}
		return api.EncodeF64(f), nil
	}
	return 0, badArg(t, v)
}

func badArg(t api.ValueType, v types.Value) error {
	return types.Errorf(types.CodeInvalidArg, "cannot pass %s as %s", v.Kind(), api.ValueTypeName(t)).WithArgs(v)
}

func decode(t api.ValueType, r uint64) types.Value {
	switch t {
	case api.ValueTypeI32:
		return types.Integer(api.DecodeI32(r))
	case api.ValueTypeI64:
		return types.Integer(int64(r))
	case api.ValueTypeF32:
		return types.Decimal(api.DecodeF32(r))
	}
	return types.Decimal(api.DecodeF64(r))
}

// spec renders the spec block source of a command native.
func (cmd Command) spec() string {
	var sb strings.Builder
	for i, t := range cmd.Params {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "arg%d ", i+1)
		switch t {
		case api.ValueTypeI32, api.ValueTypeI64:
			sb.WriteString("[integer! logic!]")
		default:
			sb.WriteString("[number!]")
		}
	}
	return sb.String()
}

// Object returns an object with one native per command.
func (x *Extension) Object() (*types.Object, error) {
	obj := types.NewObject()
	for _, name := range x.Commands() {
		cmd := x.commands[name]
		fn, err := evaluator.NewNative(name, cmd.spec(), func(ctx context.Context, c *evaluator.Call) (types.Value, error) {
			return x.Call(ctx, cmd.Name, c.Args()...)
		})
		if err != nil {
			return nil, err
		}
		obj.Define(name, fn)
	}
	return obj, nil
}

// Close releases the module, and the runtime when Load created it.
func (x *Extension) Close(ctx context.Context) error {
	if x.runtime != nil {
		return x.runtime.Close(ctx)
	}
	return x.module.Close(ctx)
}

// Loader shares one runtime between the extensions scripts load and closes
// them together.
type Loader struct {
	mu      sync.Mutex
	runtime wazero.Runtime
	loaded  []*Extension
	seq     int
}

// NewLoader returns an empty loader. Its runtime is created on first use.
func NewLoader() *Loader {
	return &Loader{}
}

// Load instantiates wasm under name in the shared runtime.
func (l *Loader) Load(ctx context.Context, name string, wasm []byte) (*Extension, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.runtime == nil {
		// the runtime outlives the evaluation that first loads a module
		r, err := newRuntime(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		l.runtime = r
	}
	l.seq++
	x, err := instantiate(ctx, l.runtime, name, fmt.Sprintf("%s#%d", name, l.seq), wasm)
	if err != nil {
		return nil, err
	}
	l.loaded = append(l.loaded, x)
	return x, nil
}

// LoadFile reads and instantiates a module file. The extension is named
// after the file without its extension.
func (l *Loader) LoadFile(ctx context.Context, path string) (*Extension, error) {
	wasm, err := os.ReadFile(path)
	if err != nil {
		return nil, types.Errorf(types.CodeCannotOpen, "cannot open %s", path).
			WithArgs(types.NewString(types.KindFile, path)).WithCause(err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return l.Load(ctx, name, wasm)
}

// Loaded returns the extensions loaded so far.
func (l *Loader) Loaded() []*Extension {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.loaded)
}

// Close releases every loaded extension.
func (l *Loader) Close(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loaded = nil
	if l.runtime == nil {
		return nil
	}
	err := l.runtime.Close(ctx)
	l.runtime = nil
	return err
}

// Option registers the LOAD-EXTENSION native backed by l.
func (l *Loader) Option() evaluator.EvalOption {
	return evaluator.WithNative("load-extension", "source [file! string!]", l.nativeLoad)
}

// Preload loads a module file ahead of time and defines it as a global word
// named after the file.
func (l *Loader) Preload(ctx context.Context, path string) (evaluator.EvalOption, error) {
	x, err := l.LoadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	obj, err := x.Object()
	if err != nil {
		return nil, err
	}
	return evaluator.WithGlobal(x.Name(), obj), nil
}

func (l *Loader) nativeLoad(ctx context.Context, c *evaluator.Call) (types.Value, error) {
	src := c.Arg("source").(*types.String)

	var (
		x   *Extension
		err error
	)
	if src.Kind() == types.KindFile {
		x, err = l.LoadFile(ctx, src.Text())
	} else {
		x, err = l.Load(ctx, "extension", []byte(src.Text()))
	}
	if err != nil {
		return nil, err
	}
	if c.Evaluator().Options().Debug {
		c.Logger().Debug("extension loaded", "name", x.Name(), "commands", len(x.commands))
	}
	return x.Object()
}
