package parser

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/sandrolain/gorebol/pkg/types"
)

// classifyAtom turns a delimiter-free run of characters into a value.
func classifyAtom(text string) (types.Value, error) {
	if strings.Contains(text, "://") || strings.HasPrefix(text, "mailto:") {
		return types.NewString(types.KindURL, text), nil
	}

	switch text[0] {
	case '%':
		return types.NewString(types.KindFile, text[1:]), nil
	case '#':
		if len(text) == 1 {
			return nil, fmt.Errorf("invalid issue: %s", text)
		}
		return types.NewWord(types.KindIssue, text[1:]), nil
	case '$':
		return parseMoney(text[1:], false)
	case '\'':
		return wordOrPath(text[1:], types.KindLitWord, types.KindLitPath)
	case ':':
		return wordOrPath(text[1:], types.KindGetWord, types.KindGetPath)
	case '/':
		if text == "/" || text == "//" {
			return types.NewWord(types.KindWord, text), nil
		}
		if !validWord(text[1:]) {
			return nil, fmt.Errorf("invalid refinement: %s", text)
		}
		return types.NewWord(types.KindRefinement, text[1:]), nil
	case '-', '+':
		if len(text) > 1 && text[1] == '$' {
			return parseMoney(text[2:], text[0] == '-')
		}
	}

	if looksNumeric(text) {
		return parseNumber(text)
	}

	if len(text) > 1 && strings.HasSuffix(text, ":") {
		return wordOrPath(text[:len(text)-1], types.KindSetWord, types.KindSetPath)
	}

	if i := strings.IndexByte(text, '@'); i > 0 {
		return types.NewString(types.KindEmail, text), nil
	}

	return wordOrPath(text, types.KindWord, types.KindPath)
}

func looksNumeric(text string) bool {
	s := text
	if s[0] == '-' || s[0] == '+' {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	if s[0] == '.' && len(s) > 1 {
		return isDigit(rune(s[1]))
	}
	return isDigit(rune(s[0]))
}

func parseNumber(text string) (types.Value, error) {
	clean := strings.ReplaceAll(text, "'", "")
	if strings.HasSuffix(clean, "%") {
		f, err := strconv.ParseFloat(clean[:len(clean)-1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid percent: %s", text)
		}
		return types.Percent(f / 100), nil
	}
	if !strings.ContainsAny(clean, ".eE") {
		n, err := strconv.ParseInt(clean, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer: %s", text)
		}
		return types.Integer(n), nil
	}
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid decimal: %s", text)
	}
	return types.Decimal(f), nil
}

func parseMoney(digits string, negative bool) (types.Value, error) {
	r, ok := new(big.Rat).SetString(strings.ReplaceAll(digits, "'", ""))
	if !ok || digits == "" || strings.ContainsAny(digits, "/eE") {
		return nil, fmt.Errorf("invalid money: $%s", digits)
	}
	if negative {
		r.Neg(r)
	}
	return types.Money{Amount: r}, nil
}

// wordOrPath builds a word of wordKind, or a path of pathKind when text
// contains slashes.
func wordOrPath(text string, wordKind, pathKind types.Kind) (types.Value, error) {
	if !strings.Contains(text, "/") || text == "/" || text == "//" {
		if !validWord(text) {
			return nil, fmt.Errorf("invalid word: %s", text)
		}
		return types.NewWord(wordKind, text), nil
	}

	segments := strings.Split(text, "/")
	parts := make([]types.Value, 0, len(segments))
	for i, seg := range segments {
		if seg == "" {
			return nil, fmt.Errorf("invalid path: %s", text)
		}
		switch {
		case i > 0 && looksNumeric(seg):
			v, err := parseNumber(seg)
			if err != nil {
				return nil, err
			}
			parts = append(parts, v)
		case i > 0 && seg[0] == ':' && validWord(seg[1:]):
			parts = append(parts, types.NewWord(types.KindGetWord, seg[1:]))
		case validWord(seg):
			parts = append(parts, types.NewWord(types.KindWord, seg))
		default:
			return nil, fmt.Errorf("invalid path: %s", text)
		}
	}
	return types.NewPath(pathKind, parts...), nil
}

func validWord(name string) bool {
	if name == "" || looksNumeric(name) {
		return false
	}
	return !strings.ContainsAny(name, ":'@$%#")
}

// unescapeString resolves caret escapes inside string literals.
func unescapeString(s string) string {
	if !strings.Contains(s, "^") {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	rs := []rune(s)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		if r != '^' || i+1 == len(rs) {
			sb.WriteRune(r)
			continue
		}
		i++
		switch rs[i] {
		case '/':
			sb.WriteByte('\n')
		case '-':
			sb.WriteByte('\t')
		case '@':
			sb.WriteByte(0)
		default:
			sb.WriteRune(rs[i])
		}
	}
	return sb.String()
}
