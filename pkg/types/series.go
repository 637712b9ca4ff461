package types

import "fmt"

// String is a text series; K selects string!, file!, email!, url! or tag!.
type String struct {
	K         Kind
	runes     []rune
	protected bool
}

// NewString returns a new text series of the given kind.
func NewString(k Kind, text string) *String {
	return &String{K: k, runes: []rune(text)}
}

// Str is shorthand for a string! value.
func Str(text string) *String { return NewString(KindString, text) }

func (s *String) Kind() Kind   { return s.K }
func (s *String) Text() string { return string(s.runes) }
func (s *String) Len() int     { return len(s.runes) }

// Protected reports whether the series rejects modification.
func (s *String) Protected() bool { return s.protected }

// SetProtected sets the protection flag.
func (s *String) SetProtected(on bool) { s.protected = on }

// Append adds text at the tail.
func (s *String) Append(text string) error {
	if s.protected {
		return protectedError(s)
	}
	s.runes = append(s.runes, []rune(text)...)
	return nil
}

// Copy returns an unprotected copy.
func (s *String) Copy() *String {
	return &String{K: s.K, runes: append([]rune(nil), s.runes...)}
}

// As returns a copy under another string kind.
func (s *String) As(k Kind) *String {
	c := s.Copy()
	c.K = k
	return c
}

// blockData is the storage shared by every position of one block series.
type blockData struct {
	values    []Value
	protected bool
}

// Block is a position in a block! or paren! series. Positions obtained with
// Skip share storage with the original.
type Block struct {
	k     Kind
	data  *blockData
	index int
}

// NewBlock returns a block! holding values.
func NewBlock(values ...Value) *Block {
	return &Block{k: KindBlock, data: &blockData{values: values}}
}

// NewParen returns a paren! holding values.
func NewParen(values ...Value) *Block {
	return &Block{k: KindParen, data: &blockData{values: values}}
}

func (b *Block) Kind() Kind { return b.k }

// Index is the zero-based position of this reference in its series.
func (b *Block) Index() int { return b.index }

// Values returns the values from the current position to the tail.
func (b *Block) Values() []Value {
	if b.index >= len(b.data.values) {
		return nil
	}
	return b.data.values[b.index:]
}

// Len is the number of values from the current position to the tail.
func (b *Block) Len() int {
	if n := len(b.data.values) - b.index; n > 0 {
		return n
	}
	return 0
}

// At returns the value i positions after the current one, or nil past the tail.
func (b *Block) At(i int) Value {
	i += b.index
	if i < 0 || i >= len(b.data.values) {
		return nil
	}
	return b.data.values[i]
}

// Skip returns a reference n positions further on, clamped to the tail.
func (b *Block) Skip(n int) *Block {
	i := b.index + n
	if i > len(b.data.values) {
		i = len(b.data.values)
	}
	if i < 0 {
		i = 0
	}
	return &Block{k: b.k, data: b.data, index: i}
}

// Same reports whether both references denote the same series position.
func (b *Block) Same(o *Block) bool {
	return b.data == o.data && b.index == o.index
}

// Protected reports whether the series rejects modification.
func (b *Block) Protected() bool { return b.data.protected }

// SetProtected sets the protection flag on the shared storage.
func (b *Block) SetProtected(on bool) { b.data.protected = on }

// Append adds values at the tail.
func (b *Block) Append(values ...Value) error {
	if b.data.protected {
		return protectedError(b)
	}
	b.data.values = append(b.data.values, values...)
	return nil
}

// Poke replaces the value i positions after the current one.
func (b *Block) Poke(i int, v Value) error {
	if b.data.protected {
		return protectedError(b)
	}
	i += b.index
	if i < 0 || i >= len(b.data.values) {
		return NewError(CodeOutOfRange, fmt.Sprintf("index %d is out of range", i+1-b.index), -1)
	}
	b.data.values[i] = v
	return nil
}

// Copy returns a new series with the values from the current position.
// With deep, nested blocks, strings and paths are copied as well.
func (b *Block) Copy(deep bool) *Block {
	src := b.Values()
	values := make([]Value, len(src))
	for i, v := range src {
		if deep {
			v = copySeries(v)
		}
		values[i] = v
	}
	return &Block{k: b.k, data: &blockData{values: values}}
}

func copySeries(v Value) Value {
	switch x := v.(type) {
	case *Block:
		return x.Copy(true)
	case *String:
		return x.Copy()
	case *Path:
		parts := make([]Value, len(x.Parts))
		for i, part := range x.Parts {
			parts[i] = copySeries(part)
		}
		return &Path{K: x.K, Parts: parts}
	}
	return v
}

// As returns a reference to the same storage under another block kind.
func (b *Block) As(k Kind) *Block {
	return &Block{k: k, data: b.data, index: b.index}
}

// Path is a path! series; K selects path!, set-path!, get-path! or lit-path!.
type Path struct {
	K     Kind
	Parts []Value
}

// NewPath returns a path of the given kind.
func NewPath(k Kind, parts ...Value) *Path {
	return &Path{K: k, Parts: parts}
}

func (p *Path) Kind() Kind { return p.K }

// As returns the same parts under another path kind.
func (p *Path) As(k Kind) *Path { return &Path{K: k, Parts: p.Parts} }

func protectedError(v Value) *Error {
	return NewError(CodeProtected, fmt.Sprintf("protected value or series: %s", v.Kind()), -1)
}
