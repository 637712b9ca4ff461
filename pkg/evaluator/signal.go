package evaluator

import (
	"errors"
	"fmt"

	"github.com/sandrolain/gorebol/pkg/types"
)

// Origin says which construct produced a throw. Consumers route on it
// instead of comparing function identities.
type Origin uint8

const (
	// OriginNone marks functions that do not throw.
	OriginNone Origin = iota
	// OriginThrow is a user THROW, named or not.
	OriginThrow
	OriginBreak
	OriginContinue
	OriginExit
	// OriginReturn is a definitional return; it targets one call.
	OriginReturn
	OriginQuit
)

var originNames = [...]string{
	OriginNone:     "none",
	OriginThrow:    "throw",
	OriginBreak:    "break",
	OriginContinue: "continue",
	OriginExit:     "exit",
	OriginReturn:   "return",
	OriginQuit:     "quit",
}

func (o Origin) String() string {
	if int(o) < len(originNames) {
		return originNames[o]
	}
	return fmt.Sprintf("origin(%d)", o)
}

// Throw is a named non-local exit travelling back to its consumer. It
// implements error so it can share the return path of fatal errors; use
// errors.As to tell them apart.
type Throw struct {
	Origin Origin

	name    types.Value // user THROW only; nil when unnamed
	payload types.Value
	target  *callFrame // OriginReturn only
	native  *Function  // the native that raised it, used as its name
	taken   bool
}

func newThrow(origin Origin, name, payload types.Value) *Throw {
	if payload == nil {
		payload = types.UnsetValue
	}
	return &Throw{Origin: origin, name: name, payload: payload}
}

// Error implements the error interface.
func (th *Throw) Error() string {
	return fmt.Sprintf("no catch for throw: %s", types.Mold(th.Name()))
}

// Name is the value a catch handler receives as the throw's name: the user
// name of a THROW/NAME, none for a plain THROW, or the native that produced
// a BREAK, CONTINUE, EXIT, RETURN or QUIT.
func (th *Throw) Name() types.Value {
	switch {
	case th.name != nil:
		return th.name
	case th.native != nil:
		return th.native
	}
	return types.NoneValue
}

// Unnamed reports whether this is a plain THROW without /name.
func (th *Throw) Unnamed() bool {
	return th.Origin == OriginThrow && th.name == nil
}

// Take consumes the throw and returns its payload. A throw is consumed
// exactly once; taking it again is a bug in the consumer.
func (th *Throw) Take() types.Value {
	if th.taken {
		panic(fmt.Sprintf("evaluator: %s throw consumed twice", th.Origin))
	}
	th.taken = true
	return th.payload
}

// Taken reports whether the throw was consumed.
func (th *Throw) Taken() bool {
	return th.taken
}

// AsThrow extracts a throw from err.
func AsThrow(err error) (*Throw, bool) {
	var th *Throw
	if errors.As(err, &th) {
		return th, true
	}
	return nil, false
}

// IsSignal reports whether err is a throw rather than a fatal error.
func IsSignal(err error) bool {
	_, ok := AsThrow(err)
	return ok
}

// AsError extracts a trappable error from err.
func AsError(err error) (*types.Error, bool) {
	var e *types.Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// matchesName reports whether a CATCH/NAME candidate names this throw.
func (th *Throw) matchesName(candidate types.Value) (bool, error) {
	if fn, ok := candidate.(*Function); ok && fn.Origin != OriginNone {
		if fn.Origin != th.Origin {
			return false, nil
		}
		if fn.Origin == OriginReturn {
			return fn.target == th.target, nil
		}
		return true, nil
	}
	if th.Origin != OriginThrow || th.name == nil {
		return false, nil
	}
	return Compare(candidate, th.name, Equal)
}

// QuitError reports that a script ran QUIT.
type QuitError struct {
	Value types.Value
}

// Error implements the error interface.
func (q *QuitError) Error() string {
	if types.IsUnset(q.Value) {
		return "quit"
	}
	return fmt.Sprintf("quit: %s", types.Mold(q.Value))
}

// ExitCode maps the QUIT payload to a process exit status.
func (q *QuitError) ExitCode() int {
	if n, ok := q.Value.(types.Integer); ok {
		return int(n)
	}
	return 0
}
