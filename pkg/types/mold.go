package types

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Molder is implemented by values defined outside this package, such as
// functions, that know their own source form.
type Molder interface {
	Mold() string
}

// Mold renders v in loadable source form.
func Mold(v Value) string {
	var sb strings.Builder
	mold(&sb, v, make(map[interface{}]bool))
	return sb.String()
}

// Form renders v for display: strings without quotes, blocks without brackets.
func Form(v Value) string {
	switch x := v.(type) {
	case *String:
		return x.Text()
	case Word:
		return x.Name
	case *Block:
		parts := make([]string, 0, x.Len())
		for _, item := range x.Values() {
			parts = append(parts, Form(item))
		}
		return strings.Join(parts, " ")
	case *Error:
		return x.Message
	case Unset:
		return ""
	}
	return Mold(v)
}

func mold(sb *strings.Builder, v Value, seen map[interface{}]bool) {
	switch x := v.(type) {
	case nil, Unset:
		sb.WriteString("unset")
	case None:
		sb.WriteString("none")
	case Logic:
		if x {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case Integer:
		sb.WriteString(strconv.FormatInt(int64(x), 10))
	case Decimal:
		sb.WriteString(FormatDecimal(float64(x)))
	case Percent:
		sb.WriteString(strconv.FormatFloat(float64(x)*100, 'g', 15, 64))
		sb.WriteByte('%')
	case Money:
		sb.WriteString(FormatMoney(x))
	case *String:
		moldString(sb, x)
	case Word:
		moldWord(sb, x)
	case *Block:
		if seen[x.data] {
			sb.WriteString("[...]")
			return
		}
		seen[x.data] = true
		open, close := "[", "]"
		if x.k == KindParen {
			open, close = "(", ")"
		}
		sb.WriteString(open)
		for i, item := range x.Values() {
			if i > 0 {
				sb.WriteByte(' ')
			}
			mold(sb, item, seen)
		}
		sb.WriteString(close)
		delete(seen, x.data)
	case *Path:
		switch x.K {
		case KindGetPath:
			sb.WriteByte(':')
		case KindLitPath:
			sb.WriteByte('\'')
		}
		for i, part := range x.Parts {
			if i > 0 {
				sb.WriteByte('/')
			}
			mold(sb, part, seen)
		}
		if x.K == KindSetPath {
			sb.WriteByte(':')
		}
	case *Object:
		if seen[x] {
			sb.WriteString("make object! [...]")
			return
		}
		seen[x] = true
		sb.WriteString("make object! [")
		for i, name := range x.Words() {
			if i > 0 {
				sb.WriteByte(' ')
			}
			val, _ := x.Get(name)
			sb.WriteString(name)
			sb.WriteString(": ")
			mold(sb, val, seen)
		}
		sb.WriteString("]")
		delete(seen, x)
	case *Error:
		sb.WriteString("make error! [type: '")
		sb.WriteString(string(x.Category))
		sb.WriteString(" id: '")
		sb.WriteString(string(x.Code))
		sb.WriteString(" message: ")
		moldString(sb, Str(x.Message))
		if x.Where != "" {
			sb.WriteString(" where: '")
			sb.WriteString(x.Where)
		}
		sb.WriteString("]")
	case Datatype:
		sb.WriteString(x.Of.String())
	case Molder:
		sb.WriteString(x.Mold())
	default:
		sb.WriteString(v.Kind().String())
	}
}

func moldString(sb *strings.Builder, s *String) {
	text := s.Text()
	switch s.K {
	case KindFile:
		sb.WriteByte('%')
		if strings.ContainsAny(text, " \t\n[]();\"") {
			sb.WriteString(strconv.Quote(text))
		} else {
			sb.WriteString(text)
		}
		return
	case KindTag:
		sb.WriteByte('<')
		sb.WriteString(text)
		sb.WriteByte('>')
		return
	case KindURL, KindEmail:
		sb.WriteString(text)
		return
	}
	if strings.Contains(text, "\n") && !strings.ContainsAny(text, "{}") {
		sb.WriteByte('{')
		sb.WriteString(text)
		sb.WriteByte('}')
		return
	}
	sb.WriteByte('"')
	for _, r := range text {
		switch r {
		case '"':
			sb.WriteString(`^"`)
		case '^':
			sb.WriteString("^^")
		case '\n':
			sb.WriteString("^/")
		case '\t':
			sb.WriteString("^-")
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
}

func moldWord(sb *strings.Builder, w Word) {
	switch w.K {
	case KindSetWord:
		sb.WriteString(w.Name)
		sb.WriteByte(':')
		return
	case KindGetWord:
		sb.WriteByte(':')
	case KindLitWord:
		sb.WriteByte('\'')
	case KindRefinement:
		sb.WriteByte('/')
	case KindIssue:
		sb.WriteByte('#')
	}
	sb.WriteString(w.Name)
}

// FormatDecimal renders a decimal so it always reads back as a decimal.
func FormatDecimal(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// FormatMoney renders money with at least two fractional digits.
func FormatMoney(m Money) string {
	if m.Amount == nil {
		return "$0.00"
	}
	sign := ""
	if m.Amount.Sign() < 0 {
		sign = "-"
	}
	r := new(big.Rat).Abs(m.Amount)
	s := r.FloatString(2)
	if !r.IsInt() {
		// keep exact digits beyond cents when present
		for prec := 3; prec <= 12; prec++ {
			full := r.FloatString(prec)
			if trimmed := strings.TrimRight(full, "0"); len(trimmed) > len(s) {
				s = trimmed
			}
		}
	}
	return sign + "$" + s
}
