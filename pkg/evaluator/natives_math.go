package evaluator

import (
	"context"
	"math"
	"math/big"

	"github.com/sandrolain/gorebol/pkg/types"
)

type arithOp uint8

const (
	opAdd arithOp = iota
	opSubtract
	opMultiply
	opDivide
)

func nativeAdd(_ context.Context, c *Call) (types.Value, error) {
	return arith(opAdd, c.Arg("value1"), c.Arg("value2"))
}

func nativeSubtract(_ context.Context, c *Call) (types.Value, error) {
	return arith(opSubtract, c.Arg("value1"), c.Arg("value2"))
}

func nativeMultiply(_ context.Context, c *Call) (types.Value, error) {
	return arith(opMultiply, c.Arg("value1"), c.Arg("value2"))
}

func nativeDivide(_ context.Context, c *Call) (types.Value, error) {
	return arith(opDivide, c.Arg("value1"), c.Arg("value2"))
}

// arith promotes its operands: money wins over everything, then decimal,
// then percent; two integers stay integers unless a division is inexact.
func arith(op arithOp, a, b types.Value) (types.Value, error) {
	ka, kb := a.Kind(), b.Kind()
	switch {
	case ka == types.KindMoney || kb == types.KindMoney:
		return moneyArith(op, a, b)
	case ka == types.KindInteger && kb == types.KindInteger:
		return intArith(op, int64(a.(types.Integer)), int64(b.(types.Integer)))
	}

	fa, fb := floatOf(a), floatOf(b)
	var r float64
	switch op {
	case opAdd:
		r = fa + fb
	case opSubtract:
		r = fa - fb
	case opMultiply:
		r = fa * fb
	case opDivide:
		if fb == 0 {
			return nil, zeroDivide()
		}
		r = fa / fb
	}
	if math.IsInf(r, 0) || math.IsNaN(r) {
		return nil, overflow()
	}
	if ka == types.KindPercent && kb != types.KindDecimal || kb == types.KindPercent && ka == types.KindInteger {
		return types.Percent(r), nil
	}
	return types.Decimal(r), nil
}

func intArith(op arithOp, a, b int64) (types.Value, error) {
	switch op {
	case opAdd:
		s := a + b
		if (s > a) != (b > 0) {
			return nil, overflow()
		}
		return types.Integer(s), nil
	case opSubtract:
		s := a - b
		if (s < a) != (b > 0) {
			return nil, overflow()
		}
		return types.Integer(s), nil
	case opMultiply:
		if a == 0 || b == 0 {
			return types.Integer(0), nil
		}
		p := a * b
		if p/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
			return nil, overflow()
		}
		return types.Integer(p), nil
	}

	if b == 0 {
		return nil, zeroDivide()
	}
	if a == math.MinInt64 && b == -1 {
		return nil, overflow()
	}
	if a%b == 0 {
		return types.Integer(a / b), nil
	}
	return types.Decimal(float64(a) / float64(b)), nil
}

func moneyArith(op arithOp, a, b types.Value) (types.Value, error) {
	ra, ok := ratOf(a)
	if !ok {
		return nil, overflow()
	}
	rb, ok := ratOf(b)
	if !ok {
		return nil, overflow()
	}
	r := new(big.Rat)
	switch op {
	case opAdd:
		r.Add(ra, rb)
	case opSubtract:
		r.Sub(ra, rb)
	case opMultiply:
		r.Mul(ra, rb)
	case opDivide:
		if rb.Sign() == 0 {
			return nil, zeroDivide()
		}
		r.Quo(ra, rb)
	}
	return types.NewMoney(r), nil
}

func zeroDivide() *types.Error {
	return types.Errorf(types.CodeZeroDivide, "attempt to divide by zero")
}

func overflow() *types.Error {
	return types.Errorf(types.CodeOverflow, "math or number overflow")
}

// comparator builds a comparison native over Compare.
func comparator(s Strictness, negate bool) NativeImpl {
	return func(_ context.Context, c *Call) (types.Value, error) {
		ok, err := Compare(c.Arg("value1"), c.Arg("value2"), s)
		if err != nil {
			return nil, err
		}
		return types.LogicOf(ok != negate), nil
	}
}

// lesser runs an ordering comparison with its operands exchanged, turning
// greater? into lesser?. Errors still name the operands in call order.
func lesser(s Strictness) NativeImpl {
	return func(_ context.Context, c *Call) (types.Value, error) {
		a, b := c.Arg("value1"), c.Arg("value2")
		ok, err := Compare(b, a, s)
		if e, isErr := AsError(err); isErr && e.Code == types.CodeInvalidCompare {
			return nil, invalidCompare(a, b)
		}
		if err != nil {
			return nil, err
		}
		return types.LogicOf(ok), nil
	}
}
