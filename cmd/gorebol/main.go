// Command gorebol runs block-language scripts.
//
// Usage:
//
//	gorebol [flags] [file ...]
//
// Files are evaluated in order in one session, so words set by one file are
// visible to the next. With -e the source is taken from the command line.
// With -lines the source runs once per line of stdin with `line` bound to
// the text. Without input an interactive prompt starts when stdin is a
// terminal; otherwise stdin is read as a script.
//
// QUIT/RETURN with an integer ends the process with that exit code. An
// uncaught error prints `** <error>` on stderr and exits with 1.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/sandrolain/gorebol"
	"github.com/sandrolain/gorebol/pkg/config"
	"github.com/sandrolain/gorebol/pkg/evaluator"
	"github.com/sandrolain/gorebol/pkg/ext"
	"github.com/sandrolain/gorebol/pkg/ext/extwasm"
	"github.com/sandrolain/gorebol/pkg/types"
)

const appName = "gorebol"

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// cli holds what one invocation needs once flags are parsed.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
	ev     *evaluator.Evaluator
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML configuration `file`")
	source := fs.String("e", "", "evaluate `source` and print its result")
	lines := fs.String("lines", "", "evaluate `source` once per line of stdin, with the line bound to `line`")
	debug := fs.Bool("debug", false, "log every evaluation step")
	version := fs.Bool("version", false, "print the version and exit")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *version {
		fmt.Fprintln(stdout, appName, gorebol.Version())
		return 0
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", appName, err)
			return 2
		}
	}
	if *debug {
		cfg.Debug = true
	}
	level, err := cfg.Level()
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		return 2
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	loader := extwasm.NewLoader()
	defer func() {
		if err := loader.Close(context.Background()); err != nil {
			logger.Warn("closing extensions", "error", err)
		}
	}()

	opts := append(cfg.Options(),
		evaluator.WithLogger(logger),
		evaluator.WithOutput(stdout),
		ext.WithAll(loader),
	)
	for _, path := range cfg.Extensions {
		opt, err := loader.Preload(ctx, path)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", appName, err)
			return 1
		}
		opts = append(opts, opt)
		logger.Debug("extension preloaded", "path", path)
	}

	c := &cli{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		logger: logger,
		ev:     evaluator.New(opts...),
	}

	if *lines == "" && *source == "" && fs.NArg() == 0 && isTerminal(stdin) {
		return c.repl(ctx)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	switch {
	case *lines != "":
		return c.runLines(ctx, *lines)
	case *source != "":
		return c.runSource(ctx, *source)
	case fs.NArg() > 0:
		return c.runFiles(ctx, fs.Args())
	}
	src, err := io.ReadAll(stdin)
	if err != nil {
		fmt.Fprintf(stderr, "%s: read stdin: %v\n", appName, err)
		return 1
	}
	_, code, _ := c.eval(ctx, c.ev.NewSession(), string(src))
	return code
}

// eval runs source in s. It reports the error, if any. done is true when
// the process should stop and end with code.
func (c *cli) eval(ctx context.Context, s *evaluator.Session, source string) (v types.Value, code int, done bool) {
	v, err := s.EvalString(ctx, source)
	if err == nil {
		return v, 0, false
	}
	return nil, c.report(err), true
}

// report prints err and maps it to an exit code. QUIT is not an error: it
// yields its own exit code and prints nothing.
func (c *cli) report(err error) int {
	var quit *evaluator.QuitError
	if errors.As(err, &quit) {
		return quit.ExitCode()
	}
	fmt.Fprintf(c.stderr, "** %v\n", err)
	return 1
}

func (c *cli) runSource(ctx context.Context, source string) int {
	v, code, done := c.eval(ctx, c.ev.NewSession(), source)
	if done {
		return code
	}
	if !types.IsUnset(v) {
		fmt.Fprintln(c.stdout, types.Mold(v))
	}
	return 0
}

func (c *cli) runFiles(ctx context.Context, paths []string) int {
	s := c.ev.NewSession()
	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(c.stderr, "%s: cannot read %s: %v\n", appName, path, err)
			return 1
		}
		c.logger.Debug("running script", "path", path)
		if _, code, done := c.eval(ctx, s, string(src)); done {
			return code
		}
	}
	return 0
}

func (c *cli) runLines(ctx context.Context, source string) int {
	script, err := c.ev.Compile(source)
	if err != nil {
		return c.report(err)
	}
	results, err := c.ev.EvalStream(ctx, script, c.stdin)
	if err != nil {
		return c.report(err)
	}

	code := 0
	for r := range results {
		if r.Err != nil {
			// a QUIT is always the last result
			code = c.report(r.Err)
			continue
		}
		if !types.IsUnset(r.Value) {
			fmt.Fprintln(c.stdout, types.Form(r.Value))
		}
	}
	return code
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
