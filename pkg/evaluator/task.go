package evaluator

import (
	"context"
	"io"
	"log/slog"

	"github.com/sandrolain/gorebol/pkg/types"
)

// task is the state of one evaluation: its trap stack and nesting depth.
// A task is used by a single goroutine.
type task struct {
	ev     *Evaluator
	logger *slog.Logger
	out    io.Writer
	traps  trapStack
	depth  int
}

func (e *Evaluator) newTask() *task {
	return &task{
		ev:     e,
		logger: e.logger,
		out:    e.opts.Output,
	}
}

// callFrame identifies one invocation of a user function; definitional
// returns target it.
type callFrame struct {
	fn *Function
}

// run evaluates body as a whole script and turns signals nobody consumed
// into top-level errors.
func (t *task) run(ctx context.Context, env *EvalContext, body *types.Block) (types.Value, error) {
	v, err := t.doBlock(ctx, env, body)
	if t.traps.len() != 0 {
		panic("evaluator: trap stack not empty after evaluation")
	}
	if err == nil {
		return v, nil
	}

	th, ok := AsThrow(err)
	if !ok {
		return nil, err
	}
	if th.Origin == OriginQuit {
		return nil, &QuitError{Value: th.Take()}
	}

	name := th.Name()
	payload := th.Take()
	if t.ev.opts.Debug {
		t.logger.Debug("uncaught throw", "origin", th.Origin.String(), "name", types.Mold(name))
	}
	return nil, types.Errorf(types.CodeNoCatch, "no catch for throw: %s", types.Mold(name)).
		WithArgs(payload, name)
}
