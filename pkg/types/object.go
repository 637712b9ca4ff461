package types

import (
	"fmt"
	"strings"
)

// Var is one word slot of an object or a function frame.
type Var struct {
	Name   string
	Value  Value
	Locked bool
	Hidden bool
}

// Object is an ordered set of word/value slots. It is used both as the
// object! datatype and as the frame of an evaluation context.
type Object struct {
	vars      []*Var
	index     map[string]int
	protected bool
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{index: make(map[string]int)}
}

func (o *Object) Kind() Kind { return KindObject }

// Len is the number of slots, hidden ones included.
func (o *Object) Len() int { return len(o.vars) }

// Var returns the slot for name, matched case-insensitively.
func (o *Object) Var(name string) (*Var, bool) {
	i, ok := o.index[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return o.vars[i], true
}

// Get returns the value of a visible slot.
func (o *Object) Get(name string) (Value, bool) {
	v, ok := o.Var(name)
	if !ok || v.Hidden {
		return nil, false
	}
	return v.Value, true
}

// Define adds a slot, or overwrites the value of an existing one regardless
// of its lock. Frames use it to bind arguments.
func (o *Object) Define(name string, value Value) *Var {
	if v, ok := o.Var(name); ok {
		v.Value = value
		return v
	}
	v := &Var{Name: name, Value: value}
	o.index[strings.ToLower(name)] = len(o.vars)
	o.vars = append(o.vars, v)
	return v
}

// Set assigns an existing slot or adds a new one, honoring locks and the
// object's protection.
func (o *Object) Set(name string, value Value) error {
	if v, ok := o.Var(name); ok {
		if v.Hidden {
			return NewError(CodeHidden, fmt.Sprintf("%s is hidden", name), -1)
		}
		if v.Locked {
			return NewError(CodeLockedWord, fmt.Sprintf("protected variable - cannot modify: %s", name), -1)
		}
		v.Value = value
		return nil
	}
	if o.protected {
		return NewError(CodeProtected, fmt.Sprintf("protected object - cannot add: %s", name), -1)
	}
	o.Define(name, value)
	return nil
}

// Words returns the spelling of every visible slot, in definition order.
func (o *Object) Words() []string {
	out := make([]string, 0, len(o.vars))
	for _, v := range o.vars {
		if !v.Hidden {
			out = append(out, v.Name)
		}
	}
	return out
}

// Vars returns every slot, hidden ones included, in definition order.
func (o *Object) Vars() []*Var { return o.vars }

// Protected reports whether the object rejects new slots.
func (o *Object) Protected() bool { return o.protected }

// SetProtected locks or unlocks every slot and the object itself.
func (o *Object) SetProtected(on bool) {
	o.protected = on
	for _, v := range o.vars {
		v.Locked = on
	}
}

// Copy returns a shallow, unprotected copy with the visible slots.
func (o *Object) Copy() *Object {
	c := NewObject()
	for _, v := range o.vars {
		if !v.Hidden {
			c.Define(v.Name, v.Value)
		}
	}
	return c
}
