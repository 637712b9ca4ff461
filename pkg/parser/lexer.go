package parser

import (
	"unicode"
	"unicode/utf8"

	"github.com/sandrolain/gorebol/pkg/types"
)

const eof = -1

// Lexer converts source text into a sequence of tokens.
// The implementation is based on Rob Pike's "Lexical Scanning in Go" technique.
type Lexer struct {
	input   string // Input string being scanned
	length  int    // Length of input string
	start   int    // Start position of current token
	current int    // Current position in input
	width   int    // Width of last rune read
	err     error  // First error encountered
}

// NewLexer creates a new lexer from the provided input string.
// The input is tokenized by successive calls to the Next method.
func NewLexer(input string) *Lexer {
	return &Lexer{
		input:  input,
		length: len(input),
	}
}

// Next returns the next token from the input.
// When the end of the input is reached, Next returns TokenEOF for all subsequent calls.
func (l *Lexer) Next() Token {
	l.skipWhitespace()

	ch := l.nextRune()
	switch {
	case ch == eof:
		return l.eof()
	case ch == '[':
		return l.newToken(TokenBlockOpen)
	case ch == ']':
		return l.newToken(TokenBlockClose)
	case ch == '(':
		return l.newToken(TokenParenOpen)
	case ch == ')':
		return l.newToken(TokenParenClose)
	case ch == '"':
		l.ignore()
		return l.scanString(TokenString)
	case ch == '{':
		l.ignore()
		return l.scanBraceString()
	case ch == '}':
		return l.error(types.CodeInvalid, "unexpected }")
	case ch == '%' && l.peek() == '"':
		l.nextRune()
		l.ignore()
		return l.scanString(TokenFileString)
	case ch == '<' && isTagStart(l.peek()):
		l.ignore()
		return l.scanTag()
	}

	l.current = l.start
	return l.scanAtom()
}

// Error returns the first error encountered during lexing, if any.
func (l *Lexer) Error() error {
	return l.err
}

// scanString reads a quoted string. The opening quote has been consumed.
// A caret escapes the following character.
func (l *Lexer) scanString(tt TokenType) Token {
Loop:
	for {
		switch l.nextRune() {
		case '"':
			break Loop
		case '^':
			if r := l.nextRune(); r != eof && r != '\n' {
				break
			}
			fallthrough
		case eof, '\n':
			return l.error(types.CodeMissing, `missing " at end of string`)
		}
	}

	l.backup()
	t := l.newToken(tt)
	l.acceptRune('"')
	l.ignore()
	return t
}

// scanBraceString reads a {multi-line} string with balanced braces.
func (l *Lexer) scanBraceString() Token {
	depth := 0
Loop:
	for {
		switch l.nextRune() {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				break Loop
			}
			depth--
		case '^':
			if l.nextRune() != eof {
				break
			}
			fallthrough
		case eof:
			return l.error(types.CodeMissing, "missing } at end of string")
		}
	}

	l.backup()
	t := l.newToken(TokenBraceString)
	l.acceptRune('}')
	l.ignore()
	return t
}

// scanTag reads a <tag>. The opening angle bracket has been consumed.
func (l *Lexer) scanTag() Token {
	quote := rune(0)
Loop:
	for {
		r := l.nextRune()
		switch {
		case r == eof || r == '\n':
			return l.error(types.CodeMissing, "missing > at end of tag")
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '>':
			break Loop
		}
	}

	l.backup()
	t := l.newToken(TokenTag)
	l.acceptRune('>')
	l.ignore()
	return t
}

// scanAtom reads a run of characters up to the next delimiter.
func (l *Lexer) scanAtom() Token {
	l.acceptAll(func(r rune) bool { return r != eof && !isDelimiter(r) })
	return l.newToken(TokenAtom)
}

// Helper methods

func (l *Lexer) eof() Token {
	return Token{
		Type:     TokenEOF,
		Position: l.current,
	}
}

func (l *Lexer) error(code types.ErrorCode, message string) Token {
	t := l.newToken(TokenError)
	l.err = &types.Error{
		Code:     code,
		Category: types.CategorySyntax,
		Message:  message,
		Position: t.Position,
		Token:    t.Value,
	}
	return t
}

func (l *Lexer) newToken(tt TokenType) Token {
	t := Token{
		Type:     tt,
		Value:    l.input[l.start:l.current],
		Position: l.start,
	}
	l.width = 0
	l.start = l.current
	return t
}

func (l *Lexer) nextRune() rune {
	if l.err != nil || l.current >= l.length {
		l.width = 0
		return eof
	}

	r, w := utf8.DecodeRuneInString(l.input[l.current:])
	l.width = w
	l.current += w
	return r
}

func (l *Lexer) backup() {
	l.current -= l.width
}

func (l *Lexer) peek() rune {
	r := l.nextRune()
	l.backup()
	return r
}

func (l *Lexer) ignore() {
	l.start = l.current
}

func (l *Lexer) acceptRune(r rune) bool {
	return l.accept(func(c rune) bool {
		return c == r
	})
}

func (l *Lexer) accept(isValid func(rune) bool) bool {
	if isValid(l.nextRune()) {
		return true
	}
	l.backup()
	return false
}

func (l *Lexer) acceptAll(isValid func(rune) bool) bool {
	var matched bool
	for l.accept(isValid) {
		matched = true
	}
	return matched
}

// skipWhitespace skips blanks and ; line comments.
func (l *Lexer) skipWhitespace() {
	for {
		l.acceptAll(isWhitespace)
		if !l.acceptRune(';') {
			break
		}
		l.acceptAll(func(r rune) bool { return r != eof && r != '\n' })
	}
	l.ignore()
}

// Character classification functions

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}

func isDelimiter(r rune) bool {
	switch r {
	case '[', ']', '(', ')', '"', '{', '}', ';':
		return true
	}
	return isWhitespace(r)
}

func isTagStart(r rune) bool {
	return r == '/' || r == '!' || r == '?' || unicode.IsLetter(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
