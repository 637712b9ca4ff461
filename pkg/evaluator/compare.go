package evaluator

import (
	"math"
	"math/big"
	"strings"

	"github.com/sandrolain/gorebol/pkg/types"
)

// Strictness selects the comparison a native asks for.
type Strictness int

const (
	Greater        Strictness = -2
	GreaterOrEqual Strictness = -1
	// Equal ignores case and coerces across number, word and string kinds.
	Equal Strictness = 0
	// Equiv is Equal for the kinds implemented here.
	Equiv Strictness = 1
	// StrictEqual requires the same kind and case.
	StrictEqual Strictness = 2
	// Same requires identity for series, objects and functions.
	Same Strictness = 3
)

func (s Strictness) ordering() bool { return s < Equal }

// Compare compares a and b. It never modifies its operands; coercion works
// on copies. Ordering comparisons between kinds that cannot be ordered
// return an invalid-compare error.
func Compare(a, b types.Value, s Strictness) (bool, error) {
	if a.Kind() != b.Kind() {
		if s >= StrictEqual {
			return false, nil
		}
		ca, cb, ok := Coerce(a, b)
		if !ok {
			if s.ordering() {
				return false, invalidCompare(a, b)
			}
			return false, nil
		}
		a, b = ca, cb
	}
	return compareSameKind(a, b, s)
}

// Coerce converts a and b to a common kind, returning copies. ok is false
// when no coercion exists between their kinds.
func Coerce(a, b types.Value) (types.Value, types.Value, bool) {
	ka, kb := a.Kind(), b.Kind()
	switch {
	case ka == kb:
		return a, b, true

	case ka == types.KindInteger && (kb == types.KindDecimal || kb == types.KindPercent):
		return asFloatKind(float64(a.(types.Integer)), kb), b, true
	case ka == types.KindInteger && kb == types.KindMoney:
		return types.MoneyFromInt(int64(a.(types.Integer))), b, true

	case (ka == types.KindDecimal || ka == types.KindPercent) && kb == types.KindInteger:
		return a, asFloatKind(float64(b.(types.Integer)), ka), true
	case (ka == types.KindDecimal || ka == types.KindPercent) && kb == types.KindMoney:
		m, ok := types.MoneyFromFloat(floatOf(a))
		return m, b, ok
	case ka == types.KindDecimal && kb == types.KindPercent,
		ka == types.KindPercent && kb == types.KindDecimal:
		return a, asFloatKind(floatOf(b), ka), true

	case ka == types.KindMoney && kb == types.KindInteger:
		return a, types.MoneyFromInt(int64(b.(types.Integer))), true
	case ka == types.KindMoney && (kb == types.KindDecimal || kb == types.KindPercent):
		m, ok := types.MoneyFromFloat(floatOf(b))
		return a, m, ok

	case ka.IsAnyWord() && kb.IsAnyWord():
		return a, b.(types.Word).As(ka), true
	case ka.IsAnyString() && kb.IsAnyString():
		return a, b.(*types.String).As(ka), true
	}
	return nil, nil, false
}

func asFloatKind(f float64, k types.Kind) types.Value {
	if k == types.KindPercent {
		return types.Percent(f)
	}
	return types.Decimal(f)
}

func floatOf(v types.Value) float64 {
	switch x := v.(type) {
	case types.Decimal:
		return float64(x)
	case types.Percent:
		return float64(x)
	case types.Integer:
		return float64(x)
	}
	return 0
}

func compareSameKind(a, b types.Value, s Strictness) (bool, error) {
	switch x := a.(type) {
	case types.Integer:
		y := b.(types.Integer)
		return order(s, cmpInt(int64(x), int64(y))), nil

	case types.Decimal, types.Percent:
		fa, fb := floatOf(a), floatOf(b)
		if !s.ordering() && s < StrictEqual {
			return almostEqual(fa, fb), nil
		}
		return order(s, cmpFloat(fa, fb)), nil

	case types.Money:
		return order(s, x.Amount.Cmp(b.(types.Money).Amount)), nil

	case *types.String:
		y := b.(*types.String)
		if s == Same {
			return x == y, nil
		}
		ta, tb := x.Text(), y.Text()
		if s < StrictEqual {
			ta, tb = strings.ToLower(ta), strings.ToLower(tb)
		}
		return order(s, strings.Compare(ta, tb)), nil

	case types.Word:
		y := b.(types.Word)
		na, nb := x.Name, y.Name
		if s < StrictEqual {
			na, nb = x.Canon(), y.Canon()
		}
		return order(s, strings.Compare(na, nb)), nil
	}

	if s.ordering() {
		return false, invalidCompare(a, b)
	}

	switch x := a.(type) {
	case types.Unset, types.None:
		return true, nil
	case types.Logic:
		return x == b.(types.Logic), nil
	case types.Datatype:
		return x.Of == b.(types.Datatype).Of, nil
	case *types.Block:
		y := b.(*types.Block)
		if s == Same || x.Same(y) {
			return x.Same(y), nil
		}
		return equalValues(x.Values(), y.Values(), s)
	case *types.Path:
		y := b.(*types.Path)
		if s == Same {
			return x == y, nil
		}
		return equalValues(x.Parts, y.Parts, s)
	case *types.Object:
		y := b.(*types.Object)
		if s == Same || x == y {
			return x == y, nil
		}
		return equalObjects(x, y, s)
	case *types.Error:
		return x == b.(*types.Error), nil
	case *Function:
		return x == b.(*Function), nil
	}
	return false, nil
}

func equalValues(a, b []types.Value, s Strictness) (bool, error) {
	if len(a) != len(b) {
		return false, nil
	}
	for i := range a {
		eq, err := Compare(a[i], b[i], s)
		if err != nil || !eq {
			return false, err
		}
	}
	return true, nil
}

func equalObjects(a, b *types.Object, s Strictness) (bool, error) {
	wa, wb := a.Words(), b.Words()
	if len(wa) != len(wb) {
		return false, nil
	}
	for i, name := range wa {
		if !strings.EqualFold(name, wb[i]) {
			return false, nil
		}
		va, _ := a.Get(name)
		vb, _ := b.Get(name)
		eq, err := Compare(va, vb, s)
		if err != nil || !eq {
			return false, err
		}
	}
	return true, nil
}

// order maps a three-way result onto the requested strictness.
func order(s Strictness, c int) bool {
	switch s {
	case Greater:
		return c > 0
	case GreaterOrEqual:
		return c >= 0
	}
	return c == 0
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// almostEqual tolerates a few units in the last place.
func almostEqual(a, b float64) bool {
	if a == b {
		return true
	}
	if math.IsNaN(a) || math.IsNaN(b) || math.Signbit(a) != math.Signbit(b) {
		return false
	}
	ua, ub := math.Float64bits(math.Abs(a)), math.Float64bits(math.Abs(b))
	if ua > ub {
		ua, ub = ub, ua
	}
	return ub-ua <= 10
}

func invalidCompare(a, b types.Value) *types.Error {
	return types.Errorf(types.CodeInvalidCompare, "cannot compare %s with %s", a.Kind(), b.Kind()).
		WithArgs(types.Datatype{Of: a.Kind()}, types.Datatype{Of: b.Kind()})
}

// ratOf is used by arithmetic that promotes to money.
func ratOf(v types.Value) (*big.Rat, bool) {
	switch x := v.(type) {
	case types.Money:
		return new(big.Rat).Set(x.Amount), true
	case types.Integer:
		return new(big.Rat).SetInt64(int64(x)), true
	case types.Decimal, types.Percent:
		r := new(big.Rat)
		if r.SetFloat64(floatOf(v)) == nil {
			return nil, false
		}
		return r, true
	}
	return nil, false
}
