package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/peterh/liner"
)

func runCLI(t *testing.T, stdin string, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(context.Background(), args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun(t *testing.T) {
	tests := []struct {
		name       string
		stdin      string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{"one-liner", "", []string{"-e", "catch [loop 3 [throw 10]]"}, 0, "10\n", ""},
		{"one-liner unset", "", []string{"-e", "print 1"}, 0, "1\n", ""},
		{"uncaught throw", "", []string{"-e", "throw 1"}, 1, "", "** no-catch"},
		{"quit code", "", []string{"-e", "quit/return 7"}, 7, "", ""},
		{"quit without code", "", []string{"-e", "print 1 quit print 2"}, 0, "1\n", ""},
		{"quit with a negative code", "", []string{"-e", "quit/return -1"}, -1, "", ""},
		{"stdin quit", "quit/return 4", nil, 4, "", ""},
		{"stdin script", "x: 2 print x * 3", nil, 0, "6\n", ""},
		{"stdin error", "divide 1 0", nil, 1, "", "** zero-divide"},
		{"lines", "a\nstop\nb\n", []string{"-lines", `if line = "stop" [quit/return 3] rejoin [line "!"]`}, 3, "a!\n", ""},
		{"lines keep going after errors", "1\nx\n2\n", []string{"-lines", `if line = "x" [fail "bad"] line`}, 1, "1\n2\n", "** user"},
		{"version", "", []string{"-version"}, 0, "gorebol v0.1.0-dev\n", ""},
		{"bad flag", "", []string{"-nope"}, 2, "", "flag provided but not defined"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := runCLI(t, tt.stdin, tt.args...)
			if code != tt.wantCode {
				t.Errorf("got exit code %d, want %d (stderr %q)", code, tt.wantCode, stderr)
			}
			if stdout != tt.wantStdout {
				t.Errorf("got stdout %q, want %q", stdout, tt.wantStdout)
			}
			if tt.wantStderr != "" && !strings.Contains(stderr, tt.wantStderr) {
				t.Errorf("got stderr %q, want it to contain %q", stderr, tt.wantStderr)
			}
		})
	}
}

func TestRunFilesShareWords(t *testing.T) {
	first := writeFile(t, "first.r", "greeting: \"hi\"")
	second := writeFile(t, "second.r", "print greeting")

	code, stdout, stderr := runCLI(t, "", first, second)
	if code != 0 || stdout != "hi\n" {
		t.Errorf("got %d %q (stderr %q), want 0 \"hi\\n\"", code, stdout, stderr)
	}

	quit := writeFile(t, "quit.r", "quit/return -1")
	code, stdout, _ = runCLI(t, "", quit, second)
	if code != -1 || stdout != "" {
		t.Errorf("got %d %q, want -1 and no output from the second file", code, stdout)
	}

	code, _, stderr = runCLI(t, "", filepath.Join(t.TempDir(), "missing.r"))
	if code != 1 || !strings.Contains(stderr, "cannot read") {
		t.Errorf("got %d %q, want a read failure", code, stderr)
	}
}

func TestRunConfig(t *testing.T) {
	cfg := writeFile(t, "gorebol.yaml", "max_depth: 20\nlegacy:\n  none_instead_of_unset: true\n")

	code, stdout, _ := runCLI(t, "", "-config", cfg, "-e", "if false [1]")
	if code != 0 || stdout != "none\n" {
		t.Errorf("got %d %q, want legacy none", code, stdout)
	}

	code, _, stderr := runCLI(t, "", "-config", cfg, "-e", "f: does [f] f")
	if code != 1 || !strings.Contains(stderr, "stack-overflow") {
		t.Errorf("got %d %q, want a stack overflow", code, stderr)
	}

	bad := writeFile(t, "bad.yaml", "max_dept: 1\n")
	if code, _, _ := runCLI(t, "", "-config", bad, "-e", "1"); code != 2 {
		t.Errorf("got %d for an unknown config key, want 2", code)
	}
}

func TestRunDebugLogs(t *testing.T) {
	_, _, stderr := runCLI(t, "", "-debug", "-e", "1 + 1")
	if !strings.Contains(stderr, "level=DEBUG") {
		t.Errorf("got stderr %q, want debug records", stderr)
	}
}

type fakePrompter struct {
	lines  []string
	errs   []error
	prompt []string
}

func (f *fakePrompter) Prompt(p string) (string, error) {
	f.prompt = append(f.prompt, p)
	if len(f.lines) == 0 {
		return "", io.EOF
	}
	line, err := f.lines[0], f.errs[0]
	f.lines, f.errs = f.lines[1:], f.errs[1:]
	return line, err
}

func TestReadInput(t *testing.T) {
	p := &fakePrompter{
		lines: []string{"f: func [x] [", "x + 1", "]"},
		errs:  []error{nil, nil, nil},
	}
	src, ok := readInput(p)
	if !ok || src != "f: func [x] [\nx + 1\n]" {
		t.Errorf("got %q %v", src, ok)
	}
	if want := []string{promptMain, promptCont, promptCont}; strings.Join(p.prompt, "|") != strings.Join(want, "|") {
		t.Errorf("got prompts %q, want %q", p.prompt, want)
	}

	p = &fakePrompter{
		lines: []string{"[1 2", "", "3"},
		errs:  []error{nil, liner.ErrPromptAborted, nil},
	}
	if src, ok := readInput(p); !ok || src != "3" {
		t.Errorf("got %q %v after an aborted prompt, want \"3\"", src, ok)
	}

	if _, ok := readInput(&fakePrompter{}); ok {
		t.Error("want end of input")
	}
}

func TestComplete(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"1 + 2", true},
		{"[1 2", false},
		{"(1", false},
		{`print "abc`, false},
		{"{multi", false},
		{"1 ]", true},
	}
	for _, tt := range tests {
		if got := complete(tt.src); got != tt.want {
			t.Errorf("complete(%q) = %v, want %v", tt.src, got, tt.want)
		}
	}
}
