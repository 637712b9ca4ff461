package evaluator

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sandrolain/gorebol/pkg/types"
)

// StreamResult holds the output of a single streaming evaluation step.
type StreamResult struct {
	// Line is the input line the script ran against.
	Line string
	// Value is the evaluated result for one input line, or nil when Err is set.
	Value types.Value
	// Err is non-nil when evaluation of a single line failed.
	// After a fatal I/O error the channel is closed; per-line evaluation
	// errors are sent individually and the stream continues.
	Err error
}

// EvalStream reads r line by line and evaluates script once per line with
// the word `line` bound to the text, sending results on the returned channel.
//
// The channel is closed when all input has been consumed or the context is cancelled.
// A fatal I/O error is sent as a StreamResult with a non-nil Err and then the
// channel is closed. A QUIT ends the stream after its result is sent.
//
// It is the caller's responsibility to drain the channel or cancel the context to
// avoid goroutine leaks.
func (e *Evaluator) EvalStream(ctx context.Context, script *types.Script, r io.Reader) (<-chan StreamResult, error) {
	if script == nil || script.Body() == nil {
		return nil, fmt.Errorf("invalid script")
	}

	ch := make(chan StreamResult, 16)

	go func() {
		defer close(ch)

		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case <-ctx.Done():
				ch <- StreamResult{Err: ctx.Err()}
				return
			default:
			}

			text := sc.Text()
			result, err := e.EvalWithBindings(ctx, script, map[string]types.Value{
				"line": types.Str(text),
			})
			ch <- StreamResult{Line: text, Value: result, Err: err}

			var quit *QuitError
			if errors.As(err, &quit) {
				return
			}
		}
		if err := sc.Err(); err != nil {
			ch <- StreamResult{Err: fmt.Errorf("read input: %w", err)}
		}
	}()

	return ch, nil
}
