package evaluator

import (
	"context"
	"fmt"
	"sync"

	"github.com/sandrolain/gorebol/pkg/types"
)

// Session keeps a user frame alive across evaluations, so words set by one
// script are visible to the next. The REPL runs every line in one Session.
//
// A Session serialises its evaluations; use separate sessions for
// concurrent work.
type Session struct {
	ev  *Evaluator
	env *EvalContext
	mu  sync.Mutex
}

// NewSession creates a session with an empty user frame.
func (e *Evaluator) NewSession() *Session {
	return &Session{
		ev:  e,
		env: e.lib.NewChildContext(types.NewObject()),
	}
}

// Set defines or assigns a word in the session's user frame.
func (s *Session) Set(name string, v types.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.env.SetBinding(name, v)
}

// Get returns the value of a word as a script would see it.
func (s *Session) Get(name string) (types.Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.env.Get(name)
}

// Eval evaluates a script in the session.
func (s *Session) Eval(ctx context.Context, script *types.Script) (types.Value, error) {
	if script == nil || script.Body() == nil {
		return nil, fmt.Errorf("invalid script")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Apply timeout if configured
	if s.ev.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.ev.opts.Timeout)
		defer cancel()
	}

	if s.ev.opts.Debug {
		s.ev.logger.Debug("evaluating script", "values", script.Body().Len())
	}
	return s.ev.newTask().run(ctx, s.env, script.Body())
}

// EvalString compiles and evaluates source in the session.
func (s *Session) EvalString(ctx context.Context, source string) (types.Value, error) {
	script, err := s.ev.Compile(source)
	if err != nil {
		return nil, err
	}
	return s.Eval(ctx, script)
}
