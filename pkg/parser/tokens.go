package parser

// TokenType represents the type of a lexical token.
type TokenType uint8

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenError

	// Grouping symbols
	TokenBlockOpen  // [
	TokenBlockClose // ]
	TokenParenOpen  // (
	TokenParenClose // )

	// Literals
	TokenString      // "text" with ^ escapes
	TokenBraceString // {text} with nesting
	TokenFileString  // %"file name"
	TokenTag         // <tag attr="x">

	// TokenAtom is any other run of non-delimiter characters: numbers, money,
	// words in all forms, paths, files, urls, emails, issues. The parser
	// classifies it.
	TokenAtom
)

// String returns a string representation of the token type.
func (tt TokenType) String() string {
	switch tt {
	case TokenEOF:
		return "(eof)"
	case TokenError:
		return "(error)"
	case TokenBlockOpen:
		return "["
	case TokenBlockClose:
		return "]"
	case TokenParenOpen:
		return "("
	case TokenParenClose:
		return ")"
	case TokenString, TokenBraceString:
		return "(string)"
	case TokenFileString:
		return "(file)"
	case TokenTag:
		return "(tag)"
	case TokenAtom:
		return "(atom)"
	}
	return "(unknown)"
}

// Token is a lexical token with its source position.
type Token struct {
	Type     TokenType
	Value    string
	Position int
}
