package evaluator

import (
	"fmt"

	"github.com/sandrolain/gorebol/pkg/types"
)

// EvalContext is one frame in the chain words are resolved through: a
// function call frame, a user frame, or the shared native frame at the root.
type EvalContext struct {
	// frame stores the words of this context
	frame *types.Object

	// parent is the enclosing context
	parent *EvalContext

	// user is the nearest writable root, where unresolved set-words land
	user *EvalContext

	// shared marks the native frame, which is never written
	shared bool

	// depth counts contexts from the root
	depth int
}

// NewContext creates a root context over frame.
func NewContext(frame *types.Object) *EvalContext {
	c := &EvalContext{frame: frame}
	c.user = c
	return c
}

// NewChildContext creates a context over frame whose parent is c.
func (c *EvalContext) NewChildContext(frame *types.Object) *EvalContext {
	child := &EvalContext{
		frame:  frame,
		parent: c,
		user:   c.user,
		depth:  c.depth + 1,
	}
	if c.shared {
		child.user = child
	}
	return child
}

// Frame returns the words of this context.
func (c *EvalContext) Frame() *types.Object {
	return c.frame
}

// Parent returns the parent context.
func (c *EvalContext) Parent() *EvalContext {
	return c.parent
}

// Depth returns the number of contexts above this one.
func (c *EvalContext) Depth() int {
	return c.depth
}

// lookup finds the nearest visible slot for name.
func (c *EvalContext) lookup(name string) (*types.Var, bool) {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if v, ok := ctx.frame.Var(name); ok && !v.Hidden {
			return v, true
		}
	}
	return nil, false
}

// GetBinding retrieves the value of a word.
// It searches the current context and parent contexts.
func (c *EvalContext) GetBinding(name string) (types.Value, bool) {
	v, ok := c.lookup(name)
	if !ok {
		return nil, false
	}
	return v.Value, true
}

// Get is GetBinding with the error a script sees for unknown or hidden words.
func (c *EvalContext) Get(name string) (types.Value, error) {
	if v, ok := c.lookup(name); ok {
		return v.Value, nil
	}
	if c.isHidden(name) {
		return nil, types.Errorf(types.CodeHidden, "%s is hidden", name)
	}
	return nil, types.Errorf(types.CodeNotDefined, "%s word is not bound to a context", name).
		WithArgs(types.NewWord(types.KindWord, name))
}

func (c *EvalContext) isHidden(name string) bool {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if v, ok := ctx.frame.Var(name); ok && v.Hidden {
			return true
		}
	}
	return false
}

// SetBinding assigns a word. The nearest writable slot is updated; a word
// that only exists in the native frame, or nowhere, is defined in the user
// frame.
func (c *EvalContext) SetBinding(name string, value types.Value) error {
	v, err := c.writableVar(name)
	if err != nil {
		return err
	}
	if v.Locked {
		return types.Errorf(types.CodeLockedWord, "protected variable - cannot modify: %s", name).
			WithArgs(types.NewWord(types.KindWord, name))
	}
	v.Value = value
	return nil
}

// writableVar returns the slot a set-word of name writes to, creating it in
// the user frame when needed.
func (c *EvalContext) writableVar(name string) (*types.Var, error) {
	for ctx := c; ctx != nil && !ctx.shared; ctx = ctx.parent {
		if v, ok := ctx.frame.Var(name); ok {
			if v.Hidden {
				return nil, types.Errorf(types.CodeHidden, "%s is hidden", name)
			}
			return v, nil
		}
	}
	if c.user.frame.Protected() {
		return nil, types.Errorf(types.CodeProtected, "protected object - cannot add: %s", name)
	}
	initial := types.Value(types.UnsetValue)
	if v, ok := c.lookup(name); ok {
		initial = v.Value
	}
	return c.user.frame.Define(name, initial), nil
}

// SetBindings sets multiple words at once.
func (c *EvalContext) SetBindings(bindings map[string]types.Value) error {
	for name, value := range bindings {
		if err := c.SetBinding(name, value); err != nil {
			return err
		}
	}
	return nil
}

// String returns a string representation of the context.
func (c *EvalContext) String() string {
	return fmt.Sprintf("Context{depth=%d, words=%d}", c.depth, c.frame.Len())
}
