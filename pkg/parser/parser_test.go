package parser_test

import (
	"errors"
	"testing"

	"github.com/sandrolain/gorebol/pkg/parser"
	"github.com/sandrolain/gorebol/pkg/types"
)

func parseOne(t *testing.T, src string) types.Value {
	t.Helper()
	blk, err := parser.ParseBlock(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	if blk.Len() != 1 {
		t.Fatalf("parse %q: got %d values, want 1", src, blk.Len())
	}
	return blk.At(0)
}

func TestParseScalars(t *testing.T) {
	tests := []struct {
		src  string
		kind types.Kind
		mold string
	}{
		{"42", types.KindInteger, "42"},
		{"-7", types.KindInteger, "-7"},
		{"1'000", types.KindInteger, "1000"},
		{"3.5", types.KindDecimal, "3.5"},
		{"1e3", types.KindDecimal, "1000.0"},
		{"12.5%", types.KindPercent, "12.5%"},
		{"$1.50", types.KindMoney, "$1.50"},
		{"-$2", types.KindMoney, "-$2.00"},
		{`"a^"b^-c"`, types.KindString, `"a^"b^-c"`},
		{"{multi\nline}", types.KindString, "{multi\nline}"},
		{"%file.r", types.KindFile, "%file.r"},
		{`%"my file.r"`, types.KindFile, `%"my file.r"`},
		{"http://example.com/x", types.KindURL, "http://example.com/x"},
		{"me@example.com", types.KindEmail, "me@example.com"},
		{"<b class=\"x\">", types.KindTag, "<b class=\"x\">"},
		{"#abc", types.KindIssue, "#abc"},
		{"word", types.KindWord, "word"},
		{"set:", types.KindSetWord, "set:"},
		{":get", types.KindGetWord, ":get"},
		{"'lit", types.KindLitWord, "'lit"},
		{"/ref", types.KindRefinement, "/ref"},
		{"/", types.KindWord, "/"},
		{"<=", types.KindWord, "<="},
		{"-", types.KindWord, "-"},
		{"a/b/2", types.KindPath, "a/b/2"},
		{"a/:i", types.KindPath, "a/:i"},
		{"a/b:", types.KindSetPath, "a/b:"},
		{":a/b", types.KindGetPath, ":a/b"},
		{"'a/b", types.KindLitPath, "'a/b"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			v := parseOne(t, tt.src)
			if v.Kind() != tt.kind {
				t.Fatalf("kind = %s, want %s", v.Kind(), tt.kind)
			}
			if got := types.Mold(v); got != tt.mold {
				t.Fatalf("mold = %q, want %q", got, tt.mold)
			}
		})
	}
}

func TestParseNesting(t *testing.T) {
	blk, err := parser.ParseBlock("a [b (c 1) ; comment\n d] e")
	if err != nil {
		t.Fatal(err)
	}
	if got := types.Mold(blk); got != "[a [b (c 1) d] e]" {
		t.Fatalf("got %s", got)
	}
	if blk.At(1).Kind() != types.KindBlock {
		t.Fatalf("second value should be a block")
	}
	inner := blk.At(1).(*types.Block)
	if inner.At(1).Kind() != types.KindParen {
		t.Fatalf("nested paren lost")
	}
}

func TestParseEmpty(t *testing.T) {
	script, err := parser.Parse("  ; nothing here\n")
	if err != nil {
		t.Fatal(err)
	}
	if script.Body().Len() != 0 {
		t.Fatalf("expected empty body")
	}
	if script.Source() != "  ; nothing here\n" {
		t.Fatalf("source not kept")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		src  string
		code types.ErrorCode
		pos  int
	}{
		{"[1 2", types.CodeMissing, 0},
		{"(1 ]", types.CodeMissing, 0},
		{"1 ]", types.CodeInvalid, 2},
		{`"open`, types.CodeMissing, 1},
		{"{open", types.CodeMissing, 1},
		{"1x2", types.CodeInvalid, 0},
		{"a//b", types.CodeInvalid, 0},
		{"$", types.CodeInvalid, 0},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := parser.Parse(tt.src)
			var e *types.Error
			if !errors.As(err, &e) {
				t.Fatalf("expected *types.Error, got %v", err)
			}
			if e.Code != tt.code {
				t.Fatalf("code = %s, want %s", e.Code, tt.code)
			}
			if e.Category != types.CategorySyntax {
				t.Fatalf("category = %s", e.Category)
			}
			if e.Position != tt.pos {
				t.Fatalf("position = %d, want %d", e.Position, tt.pos)
			}
		})
	}
}

func TestParseMaxDepth(t *testing.T) {
	_, err := parser.Compile("[[[1]]]", parser.WithMaxDepth(2))
	if err == nil {
		t.Fatal("expected nesting error")
	}
	if _, err := parser.Compile("[[1]]", parser.WithMaxDepth(2)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
