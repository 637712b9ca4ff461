package evaluator

import (
	"fmt"

	"github.com/sandrolain/gorebol/pkg/types"
)

// TrapState is the lifecycle of one trap entry.
type TrapState uint8

const (
	// TrapArmed means the protected body is still running.
	TrapArmed TrapState = iota
	// TrapLanded means a fatal error reached the trap.
	TrapLanded
	// TrapCompleted means the body finished, normally or by a throw.
	TrapCompleted
)

func (s TrapState) String() string {
	switch s {
	case TrapArmed:
		return "armed"
	case TrapLanded:
		return "landed"
	case TrapCompleted:
		return "completed"
	}
	return "unknown"
}

// trap is one entry of a task's trap stack, pushed by TRAP and ATTEMPT.
type trap struct {
	t      *task
	depth  int
	state  TrapState
	landed *types.Error
}

// trapStack is strictly LIFO; entries are pushed and dropped by the same
// native at the same depth.
type trapStack struct {
	entries []*trap
}

func (s *trapStack) len() int { return len(s.entries) }

func (s *trapStack) top() *trap {
	if len(s.entries) == 0 {
		return nil
	}
	return s.entries[len(s.entries)-1]
}

// pushTrap arms a new trap at the current depth. The caller must drop the
// returned guard on every exit path.
func (t *task) pushTrap() *trap {
	tr := &trap{t: t, depth: t.depth}
	t.traps.entries = append(t.traps.entries, tr)
	return tr
}

// land classifies the body's outcome. A fatal error lands the trap and is
// returned; throws and cancellations pass by and leave it completed.
func (tr *trap) land(err error) *types.Error {
	if tr.state != TrapArmed {
		panic(fmt.Sprintf("evaluator: trap already %s", tr.state))
	}
	if err == nil || IsSignal(err) {
		tr.state = TrapCompleted
		return nil
	}
	e, ok := AsError(err)
	if !ok {
		tr.state = TrapCompleted
		return nil
	}
	tr.state = TrapLanded
	tr.landed = e
	return e
}

// Error returns the error that landed, if any.
func (tr *trap) Error() *types.Error {
	return tr.landed
}

// drop pops the trap. It must be the top entry and the task must be back
// at the depth the trap was pushed at.
func (tr *trap) drop() {
	s := &tr.t.traps
	if s.top() != tr {
		panic(fmt.Sprintf("evaluator: trap dropped out of order (%d entries)", s.len()))
	}
	if tr.t.depth != tr.depth {
		panic(fmt.Sprintf("evaluator: trap pushed at depth %d dropped at depth %d", tr.depth, tr.t.depth))
	}
	if tr.state == TrapArmed {
		tr.state = TrapCompleted
	}
	s.entries[len(s.entries)-1] = nil
	s.entries = s.entries[:len(s.entries)-1]
}
