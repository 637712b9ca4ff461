package types

import (
	"math/big"
	"strings"
)

// Value is any datum the evaluator can hold.
type Value interface {
	Kind() Kind
}

// Unset is the "no normal value" result, distinct from none.
type Unset struct{}

// None is the "no value" result.
type None struct{}

func (Unset) Kind() Kind { return KindUnset }
func (None) Kind() Kind  { return KindNone }

var (
	UnsetValue Value = Unset{}
	NoneValue  Value = None{}
)

// Logic is true or false.
type Logic bool

// True and False are the logic values.
const (
	True  = Logic(true)
	False = Logic(false)
)

func (Logic) Kind() Kind { return KindLogic }

// Integer is a 64-bit signed integer.
type Integer int64

func (Integer) Kind() Kind { return KindInteger }

// Decimal is a 64-bit float.
type Decimal float64

func (Decimal) Kind() Kind { return KindDecimal }

// Percent stores the fraction, so 50% is Percent(0.5).
type Percent float64

func (Percent) Kind() Kind { return KindPercent }

// Money is an exact decimal amount.
type Money struct {
	Amount *big.Rat
}

// NewMoney returns money holding a copy of r.
func NewMoney(r *big.Rat) Money {
	return Money{Amount: new(big.Rat).Set(r)}
}

// MoneyFromInt returns money for a whole amount.
func MoneyFromInt(n int64) Money {
	return Money{Amount: new(big.Rat).SetInt64(n)}
}

// MoneyFromFloat returns money for a float amount. ok is false for NaN or Inf.
func MoneyFromFloat(f float64) (Money, bool) {
	r := new(big.Rat)
	if r.SetFloat64(f) == nil {
		return Money{}, false
	}
	return Money{Amount: r}, true
}

func (Money) Kind() Kind { return KindMoney }

// Datatype is a first-class datatype value such as integer!.
type Datatype struct {
	Of Kind
}

func (Datatype) Kind() Kind { return KindDatatype }

// Word is any word form; K selects word!, set-word!, get-word!, lit-word!,
// refinement! or issue!.
type Word struct {
	K    Kind
	Name string
}

// NewWord returns a word of the given kind.
func NewWord(k Kind, name string) Word {
	return Word{K: k, Name: name}
}

func (w Word) Kind() Kind { return w.K }

// Canon is the case-folded spelling used for binding.
func (w Word) Canon() string { return strings.ToLower(w.Name) }

// As returns the same spelling under another word kind.
func (w Word) As(k Kind) Word { return Word{K: k, Name: w.Name} }

// IsConditionalFalse reports whether v is none or logic false.
func IsConditionalFalse(v Value) bool {
	switch x := v.(type) {
	case None:
		return true
	case Logic:
		return !bool(x)
	}
	return false
}

// IsConditionalTrue reports whether v is neither conditionally false nor unset.
func IsConditionalTrue(v Value) bool {
	if v == nil || v.Kind() == KindUnset {
		return false
	}
	return !IsConditionalFalse(v)
}

// IsUnset reports whether v is the unset sentinel.
func IsUnset(v Value) bool {
	return v == nil || v.Kind() == KindUnset
}

// LogicOf converts a Go bool.
func LogicOf(b bool) Logic { return Logic(b) }
