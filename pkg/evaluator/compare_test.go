package evaluator_test

import (
	"math/big"
	"testing"

	"github.com/sandrolain/gorebol/pkg/evaluator"
	"github.com/sandrolain/gorebol/pkg/types"
)

func TestCompare(t *testing.T) {
	blk := types.NewBlock(types.Integer(1))
	obj := types.NewObject()
	obj.Define("a", types.Integer(1))

	tests := []struct {
		name string
		a, b types.Value
		s    evaluator.Strictness
		want bool
	}{
		{"integers equal", types.Integer(3), types.Integer(3), evaluator.Equal, true},
		{"integer and decimal", types.Integer(1), types.Decimal(1), evaluator.Equal, true},
		{"integer and decimal strict", types.Integer(1), types.Decimal(1), evaluator.StrictEqual, false},
		{"decimal tolerance", types.Decimal(0.30000000000000004), types.Decimal(0.3), evaluator.Equal, true},
		{"decimal tolerance strict", types.Decimal(0.30000000000000004), types.Decimal(0.3), evaluator.StrictEqual, false},
		{"money and integer", types.MoneyFromInt(2), types.Integer(2), evaluator.Equal, true},
		{"string case", types.Str("ABC"), types.Str("abc"), evaluator.Equal, true},
		{"string case strict", types.Str("ABC"), types.Str("abc"), evaluator.StrictEqual, false},
		{"string and file", types.Str("a.r"), types.NewString(types.KindFile, "a.r"), evaluator.Equal, true},
		{"word kinds", types.NewWord(types.KindWord, "a"), types.NewWord(types.KindLitWord, "A"), evaluator.Equal, true},
		{"unrelated kinds", types.Integer(1), types.Str("1"), evaluator.Equal, false},
		{"none", types.NoneValue, types.NoneValue, evaluator.Equal, true},
		{"blocks by value", blk, types.NewBlock(types.Integer(1)), evaluator.Equal, true},
		{"blocks same", blk, types.NewBlock(types.Integer(1)), evaluator.Same, false},
		{"block with itself", blk, blk, evaluator.Same, true},
		{"objects by value", obj, obj.Copy(), evaluator.Equal, true},
		{"greater", types.Integer(3), types.Integer(2), evaluator.Greater, true},
		{"greater or equal", types.Integer(2), types.Integer(2), evaluator.GreaterOrEqual, true},
		{"greater across kinds", types.Decimal(2.5), types.Integer(2), evaluator.Greater, true},
		{"greater strings", types.Str("b"), types.Str("A"), evaluator.Greater, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evaluator.Compare(tt.a, tt.b, tt.s)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompareInvalidOrdering(t *testing.T) {
	tests := []struct {
		name string
		a, b types.Value
	}{
		{"integer and string", types.Integer(1), types.Str("a")},
		{"blocks", types.NewBlock(), types.NewBlock()},
		{"logic", types.True, types.False},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := evaluator.Compare(tt.a, tt.b, evaluator.Greater)
			e, ok := evaluator.AsError(err)
			if !ok || e.Code != types.CodeInvalidCompare {
				t.Fatalf("got %v, want invalid-compare", err)
			}
		})
	}
}

func TestOrderingErrorsKeepOperandOrder(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`1 < "a"`, "cannot compare integer! with string!"},
		{`1 <= "a"`, "cannot compare integer! with string!"},
		{`lesser? "a" 1`, "cannot compare string! with integer!"},
		{`1 > "a"`, "cannot compare integer! with string!"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			e := evalExpectError(t, tt.src)
			if e.Code != types.CodeInvalidCompare || e.Message != tt.want {
				t.Errorf("got %s %q, want invalid-compare %q", e.Code, e.Message, tt.want)
			}
		})
	}
}

func TestCompareLeavesOperandsAlone(t *testing.T) {
	m := types.NewMoney(big.NewRat(5, 2))
	s := types.NewString(types.KindFile, "x")
	if _, err := evaluator.Compare(m, types.Decimal(2.5), evaluator.Equal); err != nil {
		t.Fatal(err)
	}
	if _, err := evaluator.Compare(types.Str("x"), s, evaluator.Equal); err != nil {
		t.Fatal(err)
	}
	if m.Amount.Cmp(big.NewRat(5, 2)) != 0 {
		t.Errorf("money operand changed to %s", m.Amount)
	}
	if s.Kind() != types.KindFile {
		t.Errorf("string operand changed kind to %s", s.Kind())
	}
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		name  string
		a, b  types.Value
		kind  types.Kind
		valid bool
	}{
		{"integer to decimal", types.Integer(1), types.Decimal(2), types.KindDecimal, true},
		{"decimal to percent", types.Percent(0.5), types.Decimal(0.5), types.KindPercent, true},
		{"integer to money", types.Integer(1), types.MoneyFromInt(1), types.KindMoney, true},
		{"words", types.NewWord(types.KindSetWord, "a"), types.NewWord(types.KindWord, "a"), types.KindSetWord, true},
		{"no coercion", types.Integer(1), types.NewBlock(), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ca, cb, ok := evaluator.Coerce(tt.a, tt.b)
			if ok != tt.valid {
				t.Fatalf("got ok=%v, want %v", ok, tt.valid)
			}
			if !ok {
				return
			}
			if ca.Kind() != tt.kind || cb.Kind() != tt.kind {
				t.Errorf("got %s and %s, want both %s", ca.Kind(), cb.Kind(), tt.kind)
			}
		})
	}
}
