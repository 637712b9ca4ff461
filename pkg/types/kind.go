package types

import "strings"

// Kind identifies the datatype of a Value.
type Kind uint8

const (
	KindUnset Kind = iota
	KindNone
	KindLogic
	KindInteger
	KindDecimal
	KindPercent
	KindMoney
	KindString
	KindFile
	KindEmail
	KindURL
	KindTag
	KindWord
	KindSetWord
	KindGetWord
	KindLitWord
	KindRefinement
	KindIssue
	KindBlock
	KindParen
	KindPath
	KindSetPath
	KindGetPath
	KindLitPath
	KindError
	KindObject
	KindNative
	KindFunction
	KindDatatype

	kindCount
)

var kindNames = [kindCount]string{
	KindUnset:      "unset!",
	KindNone:       "none!",
	KindLogic:      "logic!",
	KindInteger:    "integer!",
	KindDecimal:    "decimal!",
	KindPercent:    "percent!",
	KindMoney:      "money!",
	KindString:     "string!",
	KindFile:       "file!",
	KindEmail:      "email!",
	KindURL:        "url!",
	KindTag:        "tag!",
	KindWord:       "word!",
	KindSetWord:    "set-word!",
	KindGetWord:    "get-word!",
	KindLitWord:    "lit-word!",
	KindRefinement: "refinement!",
	KindIssue:      "issue!",
	KindBlock:      "block!",
	KindParen:      "paren!",
	KindPath:       "path!",
	KindSetPath:    "set-path!",
	KindGetPath:    "get-path!",
	KindLitPath:    "lit-path!",
	KindError:      "error!",
	KindObject:     "object!",
	KindNative:     "native!",
	KindFunction:   "function!",
	KindDatatype:   "datatype!",
}

// String returns the datatype name, e.g. "integer!".
func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "unknown!"
}

// Kinds returns every datatype in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// KindByName resolves a datatype name such as "integer!".
func KindByName(name string) (Kind, bool) {
	name = strings.ToLower(name)
	for k, n := range kindNames {
		if n == name {
			return Kind(k), true
		}
	}
	return 0, false
}

func (k Kind) IsAnyWord() bool   { return k >= KindWord && k <= KindIssue }
func (k Kind) IsAnyString() bool { return k >= KindString && k <= KindTag }
func (k Kind) IsAnyBlock() bool  { return k == KindBlock || k == KindParen }
func (k Kind) IsAnyPath() bool   { return k >= KindPath && k <= KindLitPath }
func (k Kind) IsNumber() bool    { return k == KindInteger || k == KindDecimal || k == KindPercent }
func (k Kind) IsFunction() bool  { return k == KindNative || k == KindFunction }

// TypeSet is a set of datatypes, used to typecheck function arguments.
type TypeSet uint64

// TypeSetOf builds a set from the given kinds.
func TypeSetOf(kinds ...Kind) TypeSet {
	var ts TypeSet
	for _, k := range kinds {
		ts |= 1 << k
	}
	return ts
}

// Has reports whether k is a member of the set.
func (ts TypeSet) Has(k Kind) bool { return ts&(1<<k) != 0 }

// Union returns the union of both sets.
func (ts TypeSet) Union(o TypeSet) TypeSet { return ts | o }

// Names lists the datatype names in the set.
func (ts TypeSet) Names() []string {
	var out []string
	for k := Kind(0); k < kindCount; k++ {
		if ts.Has(k) {
			out = append(out, k.String())
		}
	}
	return out
}

var (
	AnyType   = TypeSet(1<<kindCount - 1)
	AnyValue  = AnyType &^ TypeSetOf(KindUnset)
	AnyWord   = TypeSetOf(KindWord, KindSetWord, KindGetWord, KindLitWord, KindRefinement, KindIssue)
	AnyString = TypeSetOf(KindString, KindFile, KindEmail, KindURL, KindTag)
	AnyBlock  = TypeSetOf(KindBlock, KindParen)
	AnyPath   = TypeSetOf(KindPath, KindSetPath, KindGetPath, KindLitPath)
	Number    = TypeSetOf(KindInteger, KindDecimal, KindPercent)
	Scalar    = TypeSetOf(KindLogic, KindInteger, KindDecimal, KindPercent, KindMoney)
	AnyFunc   = TypeSetOf(KindNative, KindFunction)
	AnyObject = TypeSetOf(KindObject, KindError)
	Series    = AnyString | AnyBlock | AnyPath
)

var namedTypeSets = map[string]TypeSet{
	"any-type!":     AnyType,
	"any-value!":    AnyValue,
	"any-word!":     AnyWord,
	"any-string!":   AnyString,
	"any-block!":    AnyBlock,
	"any-path!":     AnyPath,
	"number!":       Number,
	"scalar!":       Scalar,
	"any-function!": AnyFunc,
	"any-object!":   AnyObject,
	"series!":       Series,
}

// LookupTypeSet resolves a datatype or typeset name as it appears in a
// function spec block.
func LookupTypeSet(name string) (TypeSet, bool) {
	name = strings.ToLower(name)
	if ts, ok := namedTypeSets[name]; ok {
		return ts, true
	}
	if k, ok := KindByName(name); ok {
		return TypeSetOf(k), true
	}
	return 0, false
}

// TypeSetNames lists the names of the predefined typesets.
func TypeSetNames() []string {
	out := make([]string, 0, len(namedTypeSets))
	for n := range namedTypeSets {
		out = append(out, n)
	}
	return out
}
