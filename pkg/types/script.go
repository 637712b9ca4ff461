// Package types defines the value model of the block language.
//
// This package contains type definitions for:
//   - Value and Kind: every datatype a script can hold
//   - TypeSet: datatype sets used to typecheck function arguments
//   - Block, Path, String, Word, Object: series, words and frames
//   - Error: coded, trappable errors that are also error! values
//   - Script: compiled source ready for evaluation
package types

// Script is compiled source: the top-level block plus the text it came from.
//
// A Script can be evaluated many times by [evaluator.Evaluator.Eval]. Its body
// is shared, so scripts that modify their own code see those changes on the
// next run. Use Clone for a run that starts from the literals as parsed.
type Script struct {
	body   *Block
	source string
	errors []error
}

// NewScript wraps a parsed body.
func NewScript(body *Block, source string) *Script {
	return &Script{
		body:   body,
		source: source,
	}
}

// Clone returns a script whose body and nested series literals are fresh
// copies. Parse errors are shared.
func (s *Script) Clone() *Script {
	return &Script{
		body:   s.body.Copy(true),
		source: s.source,
		errors: s.errors,
	}
}

// Body returns the top-level block.
func (s *Script) Body() *Block {
	return s.body
}

// Source returns the original source text.
func (s *Script) Source() string {
	return s.source
}

// Errors returns any errors collected during parsing.
func (s *Script) Errors() []error {
	return s.errors
}

// AddError adds an error to the script's error list.
func (s *Script) AddError(err error) {
	s.errors = append(s.errors, err)
}

// String returns the source text.
func (s *Script) String() string {
	return s.source
}
