package parser

// Package parser loads block-language source text into values.
//
// Source is a sequence of values separated by whitespace. Brackets build
// block! values and parentheses build paren! values; everything else is a
// scalar, a string form, a word form or a path. The result is a
// [types.Script] whose body is the top-level block.
//
// # Example
//
//	script, err := parser.Parse(`print ["sum:" 1 + 2]`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	body := script.Body()

import (
	"fmt"

	"github.com/sandrolain/gorebol/pkg/types"
)

// Parse parses source text and returns the compiled Script.
//
// If parsing fails, it returns a *types.Error of category syntax with the
// source position of the offending token.
func Parse(source string) (*types.Script, error) {
	p := NewParser(source)
	return p.Parse()
}

// Compile is Parse with options.
func Compile(source string, opts ...CompileOption) (*types.Script, error) {
	p := NewParser(source, opts...)
	return p.Parse()
}

// ParseBlock parses source text and returns only the top-level block.
func ParseBlock(source string) (*types.Block, error) {
	script, err := Parse(source)
	if err != nil {
		return nil, err
	}
	return script.Body(), nil
}

// CompileOption configures compilation behavior.
type CompileOption func(*CompileOptions)

// CompileOptions holds parser configuration.
type CompileOptions struct {
	// MaxDepth limits block nesting.
	MaxDepth int
}

// WithMaxDepth sets the maximum block nesting depth.
func WithMaxDepth(depth int) CompileOption {
	return func(opts *CompileOptions) {
		opts.MaxDepth = depth
	}
}

// Parser builds values from the token stream of a Lexer.
type Parser struct {
	lexer   *Lexer
	current Token
	opts    CompileOptions
	depth   int
}

// NewParser creates a new parser for the given input string.
func NewParser(input string, opts ...CompileOption) *Parser {
	options := CompileOptions{
		MaxDepth: 512,
	}
	for _, opt := range opts {
		opt(&options)
	}

	p := &Parser{
		lexer: NewLexer(input),
		opts:  options,
	}

	// Read the first token
	p.advance()

	return p
}

// Parse parses the entire input and returns the script.
func (p *Parser) Parse() (*types.Script, error) {
	values, err := p.parseValues(TokenEOF, 0)
	if err != nil {
		return nil, err
	}
	return types.NewScript(types.NewBlock(values...), p.lexer.input), nil
}

func (p *Parser) advance() {
	p.current = p.lexer.Next()
}

func (p *Parser) error(code types.ErrorCode, message string, position int) error {
	return &types.Error{
		Code:     code,
		Category: types.CategorySyntax,
		Message:  message,
		Position: position,
		Token:    p.current.Value,
	}
}

// parseValues collects values until closer. openPos is the position of the
// opening bracket, reported when the closer is missing.
func (p *Parser) parseValues(closer TokenType, openPos int) ([]types.Value, error) {
	var out []types.Value
	for {
		tok := p.current
		switch tok.Type {
		case TokenError:
			return nil, p.lexer.Error()

		case TokenEOF:
			if closer != TokenEOF {
				return nil, p.error(types.CodeMissing, fmt.Sprintf("missing %s", closer), openPos)
			}
			return out, nil

		case TokenBlockClose, TokenParenClose:
			if tok.Type != closer {
				if closer == TokenEOF {
					return nil, p.error(types.CodeInvalid, fmt.Sprintf("unexpected %s", tok.Type), tok.Position)
				}
				return nil, p.error(types.CodeMissing, fmt.Sprintf("missing %s", closer), openPos)
			}
			p.advance()
			return out, nil

		case TokenBlockOpen, TokenParenOpen:
			if p.opts.MaxDepth > 0 && p.depth >= p.opts.MaxDepth {
				return nil, p.error(types.CodeInvalid, "blocks nested too deeply", tok.Position)
			}
			want := TokenBlockClose
			if tok.Type == TokenParenOpen {
				want = TokenParenClose
			}
			p.advance()
			p.depth++
			inner, err := p.parseValues(want, tok.Position)
			p.depth--
			if err != nil {
				return nil, err
			}
			if want == TokenBlockClose {
				out = append(out, types.NewBlock(inner...))
			} else {
				out = append(out, types.NewParen(inner...))
			}

		default:
			v, err := p.parseScalar(tok)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
			p.advance()
		}
	}
}

func (p *Parser) parseScalar(tok Token) (types.Value, error) {
	switch tok.Type {
	case TokenString, TokenBraceString:
		return types.Str(unescapeString(tok.Value)), nil
	case TokenFileString:
		return types.NewString(types.KindFile, unescapeString(tok.Value)), nil
	case TokenTag:
		return types.NewString(types.KindTag, tok.Value), nil
	}

	v, err := classifyAtom(tok.Value)
	if err != nil {
		return nil, p.error(types.CodeInvalid, err.Error(), tok.Position)
	}
	return v, nil
}
