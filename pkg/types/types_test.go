package types_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/sandrolain/gorebol/pkg/types"
)

func TestConditionalTruth(t *testing.T) {
	tests := []struct {
		name      string
		value     types.Value
		wantFalse bool
		wantTrue  bool
	}{
		{"none", types.NoneValue, true, false},
		{"false", types.False, true, false},
		{"true", types.True, false, true},
		{"unset", types.UnsetValue, false, false},
		{"zero", types.Integer(0), false, true},
		{"empty string", types.Str(""), false, true},
		{"empty block", types.NewBlock(), false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := types.IsConditionalFalse(tt.value); got != tt.wantFalse {
				t.Fatalf("IsConditionalFalse = %v, want %v", got, tt.wantFalse)
			}
			if got := types.IsConditionalTrue(tt.value); got != tt.wantTrue {
				t.Fatalf("IsConditionalTrue = %v, want %v", got, tt.wantTrue)
			}
		})
	}
}

func TestMold(t *testing.T) {
	tests := []struct {
		name  string
		value types.Value
		want  string
	}{
		{"integer", types.Integer(-42), "-42"},
		{"decimal", types.Decimal(2), "2.0"},
		{"decimal fraction", types.Decimal(0.25), "0.25"},
		{"percent", types.Percent(0.125), "12.5%"},
		{"money", types.MoneyFromInt(3), "$3.00"},
		{"money fraction", types.NewMoney(big.NewRat(-9, 8)), "-$1.125"},
		{"string", types.Str(`say "hi"`), `"say ^"hi^""`},
		{"file", types.NewString(types.KindFile, "a.r"), "%a.r"},
		{"tag", types.NewString(types.KindTag, "b"), "<b>"},
		{"set-word", types.NewWord(types.KindSetWord, "x"), "x:"},
		{"lit-word", types.NewWord(types.KindLitWord, "x"), "'x"},
		{"refinement", types.NewWord(types.KindRefinement, "only"), "/only"},
		{"block", types.NewBlock(types.Integer(1), types.NewParen(types.Str("a"))), `[1 ("a")]`},
		{"path", types.NewPath(types.KindSetPath, types.NewWord(types.KindWord, "a"), types.Integer(2)), "a/2:"},
		{"none", types.NoneValue, "none"},
		{"datatype", types.Datatype{Of: types.KindBlock}, "block!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := types.Mold(tt.value); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormBlock(t *testing.T) {
	b := types.NewBlock(types.Str("a"), types.Integer(1), types.NewWord(types.KindWord, "w"))
	if got := types.Form(b); got != "a 1 w" {
		t.Fatalf("got %q, want %q", got, "a 1 w")
	}
}

func TestMoldCycle(t *testing.T) {
	b := types.NewBlock(types.Integer(1))
	if err := b.Append(b); err != nil {
		t.Fatal(err)
	}
	if got := types.Mold(b); got != "[1 [...]]" {
		t.Fatalf("got %q", got)
	}
}

func TestBlockSkipSharesStorage(t *testing.T) {
	b := types.NewBlock(types.Integer(1), types.Integer(2))
	rest := b.Skip(1)
	if rest.Len() != 1 || rest.At(0) != types.Integer(2) {
		t.Fatalf("unexpected rest %s", types.Mold(rest))
	}
	if err := b.Append(types.Integer(3)); err != nil {
		t.Fatal(err)
	}
	if rest.Len() != 2 {
		t.Fatalf("append not visible through skipped reference")
	}
	if tail := b.Skip(10); tail.Len() != 0 || tail.Index() != 3 {
		t.Fatalf("skip past tail should clamp, got index %d", tail.Index())
	}
}

func TestScriptCloneCopiesLiterals(t *testing.T) {
	inner := types.NewBlock(types.Integer(1))
	text := types.Str("a")
	path := types.NewPath(types.KindPath, types.NewWord(types.KindWord, "obj"), types.NewParen(types.Integer(2)))
	script := types.NewScript(types.NewBlock(inner, text, path), "src")

	clone := script.Clone()
	if clone.Source() != "src" {
		t.Errorf("got source %q, want %q", clone.Source(), "src")
	}
	if err := clone.Body().At(0).(*types.Block).Append(types.Integer(9)); err != nil {
		t.Fatal(err)
	}
	if err := clone.Body().At(1).(*types.String).Append("b"); err != nil {
		t.Fatal(err)
	}
	paren := clone.Body().At(2).(*types.Path).Parts[1].(*types.Block)
	if err := paren.Append(types.Integer(3)); err != nil {
		t.Fatal(err)
	}

	if got := types.Mold(script.Body()); got != `[[1] "a" obj/(2)]` {
		t.Errorf("got %v, want the original literals untouched", got)
	}
	if got := types.Mold(clone.Body()); got != `[[1 9] "ab" obj/(2 3)]` {
		t.Errorf("got %v, want %v", got, `[[1 9] "ab" obj/(2 3)]`)
	}
}

func TestBlockProtection(t *testing.T) {
	b := types.NewBlock(types.Integer(1))
	b.Skip(1).SetProtected(true)
	err := b.Append(types.Integer(2))
	var e *types.Error
	if !errors.As(err, &e) || e.Code != types.CodeProtected {
		t.Fatalf("expected protected error, got %v", err)
	}
	b.SetProtected(false)
	if err := b.Poke(0, types.Integer(9)); err != nil {
		t.Fatal(err)
	}
	if b.At(0) != types.Integer(9) {
		t.Fatalf("poke not applied")
	}
}

func TestObjectLocksAndHiding(t *testing.T) {
	o := types.NewObject()
	o.Define("Alpha", types.Integer(1))
	v, ok := o.Get("alpha")
	if !ok || v != types.Integer(1) {
		t.Fatalf("case-insensitive lookup failed")
	}

	slot, _ := o.Var("alpha")
	slot.Locked = true
	var e *types.Error
	if err := o.Set("alpha", types.Integer(2)); !errors.As(err, &e) || e.Code != types.CodeLockedWord {
		t.Fatalf("expected locked-word, got %v", err)
	}

	slot.Hidden = true
	if _, ok := o.Get("alpha"); ok {
		t.Fatalf("hidden slot should not be visible")
	}
	if len(o.Words()) != 0 {
		t.Fatalf("hidden slot listed in Words")
	}

	o.SetProtected(true)
	if err := o.Set("beta", types.Integer(1)); !errors.As(err, &e) || e.Code != types.CodeProtected {
		t.Fatalf("expected protected, got %v", err)
	}
}

func TestLookupTypeSet(t *testing.T) {
	ts, ok := types.LookupTypeSet("any-word!")
	if !ok || !ts.Has(types.KindLitWord) || ts.Has(types.KindString) {
		t.Fatalf("any-word! resolved incorrectly")
	}
	ts, ok = types.LookupTypeSet("Integer!")
	if !ok || !ts.Has(types.KindInteger) || ts.Has(types.KindDecimal) {
		t.Fatalf("integer! resolved incorrectly")
	}
	if types.AnyValue.Has(types.KindUnset) || !types.AnyType.Has(types.KindUnset) {
		t.Fatalf("any-value!/any-type! unset membership wrong")
	}
	if _, ok := types.LookupTypeSet("bogus!"); ok {
		t.Fatalf("unknown name resolved")
	}
}

func TestErrorFields(t *testing.T) {
	e := types.NewError(types.CodeNoCatch, "no catch for throw", -1).WithArgs(types.Integer(1), types.NoneValue)
	if e.Category != types.CategoryThrow {
		t.Fatalf("category = %s", e.Category)
	}
	code, _ := e.Field("code")
	if types.Mold(code) != "no-catch" {
		t.Fatalf("code = %s", types.Mold(code))
	}
	arg1, _ := e.Field("arg1")
	if arg1 != types.Integer(1) {
		t.Fatalf("arg1 = %s", types.Mold(arg1))
	}
	if e.Error() != "no-catch: no catch for throw" {
		t.Fatalf("Error() = %q", e.Error())
	}
}
