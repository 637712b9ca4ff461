package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/sandrolain/gorebol"
	"github.com/sandrolain/gorebol/pkg/evaluator"
	"github.com/sandrolain/gorebol/pkg/parser"
	"github.com/sandrolain/gorebol/pkg/types"
)

const (
	historyFile = ".gorebol_history"
	promptMain  = ">> "
	promptCont  = ".. "
)

func (c *cli) repl(ctx context.Context) int {
	fmt.Fprintf(c.stdout, "GoRebol %s\nCtrl+C cancels input, Ctrl+D or quit exits.\n", gorebol.Version())

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	s := c.ev.NewSession()
	for {
		source, ok := readInput(ln)
		if !ok {
			fmt.Fprintln(c.stdout)
			return 0
		}
		if strings.TrimSpace(source) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(source, "\n", " "))

		v, err := c.evalInterruptible(ctx, s, source)
		if err != nil {
			var quit *evaluator.QuitError
			if errors.As(err, &quit) {
				return quit.ExitCode()
			}
			if errors.Is(err, context.Canceled) {
				fmt.Fprintln(c.stderr, "** interrupted")
				continue
			}
			fmt.Fprintf(c.stderr, "** %v\n", err)
			continue
		}
		if !types.IsUnset(v) {
			fmt.Fprintf(c.stdout, "== %s\n", types.Mold(v))
		}
	}
}

// evalInterruptible lets Ctrl+C stop a running evaluation without ending
// the session.
func (c *cli) evalInterruptible(ctx context.Context, s *evaluator.Session, source string) (types.Value, error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	return s.EvalString(ctx, source)
}

// prompter is the part of *liner.State readInput needs.
type prompter interface {
	Prompt(prompt string) (string, error)
}

// readInput reads lines until they form a complete script. An aborted
// prompt discards what was typed so far; ok is false at end of input.
func readInput(p prompter) (source string, ok bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := p.Prompt(prompt)
		switch {
		case errors.Is(err, io.EOF):
			return "", false
		case errors.Is(err, liner.ErrPromptAborted):
			b.Reset()
			continue
		case err != nil:
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if complete(b.String()) {
			return b.String(), true
		}
	}
}

// complete reports whether source needs no more lines: it parses, or it
// fails for a reason other than an unclosed block, paren or string.
func complete(source string) bool {
	_, err := parser.Parse(source)
	var e *types.Error
	if errors.As(err, &e) && e.Code == types.CodeMissing {
		return false
	}
	return true
}
