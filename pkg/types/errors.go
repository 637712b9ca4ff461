package types

import "fmt"

// ErrorCode identifies an error by its id word.
type ErrorCode string

// Error codes. The string is the id a script sees in err/code.
const (
	// Syntax
	CodeMissing ErrorCode = "missing"
	CodeInvalid ErrorCode = "invalid"

	// Script
	CodeBadRefines      ErrorCode = "bad-refines"
	CodeBadRefine       ErrorCode = "bad-refine"
	CodePastEnd         ErrorCode = "past-end"
	CodeNoReturn        ErrorCode = "no-return"
	CodeInvalidArg      ErrorCode = "invalid-arg"
	CodeUseFailForError ErrorCode = "use-fail-for-error"
	CodeNoCatch         ErrorCode = "no-catch"
	CodeInvalidCompare  ErrorCode = "invalid-compare"
	CodeExpectArg       ErrorCode = "expect-arg"
	CodeNoArg           ErrorCode = "no-arg"
	CodeNoValue         ErrorCode = "no-value"
	CodeNeedValue       ErrorCode = "need-value"
	CodeNotDefined      ErrorCode = "not-defined"
	CodeLockedWord      ErrorCode = "locked-word"
	CodeProtected       ErrorCode = "protected"
	CodeHidden          ErrorCode = "hidden"
	CodeBadPath         ErrorCode = "bad-path"
	CodeInvalidType     ErrorCode = "invalid-type"
	CodeOutOfRange      ErrorCode = "out-of-range"
	CodeLimitedFail     ErrorCode = "limited-fail-input"
	CodeUseEvalForEval  ErrorCode = "use-eval-for-eval"

	// Math
	CodeZeroDivide ErrorCode = "zero-divide"
	CodeOverflow   ErrorCode = "overflow"

	// User
	CodeUser ErrorCode = "user"

	// Internal
	CodeStackOverflow ErrorCode = "stack-overflow"
	CodeMisc          ErrorCode = "misc"

	// Access
	CodeCannotOpen ErrorCode = "cannot-open"
	CodeExtension  ErrorCode = "extension"
)

// Category groups error codes the way err/type reports them.
type Category string

const (
	CategorySyntax   Category = "syntax"
	CategoryScript   Category = "script"
	CategoryMath     Category = "math"
	CategoryUser     Category = "user"
	CategoryInternal Category = "internal"
	CategoryThrow    Category = "throw"
	CategoryAccess   Category = "access"
)

var codeCategories = map[ErrorCode]Category{
	CodeMissing:       CategorySyntax,
	CodeInvalid:       CategorySyntax,
	CodeNoCatch:       CategoryThrow,
	CodeZeroDivide:    CategoryMath,
	CodeOverflow:      CategoryMath,
	CodeUser:          CategoryUser,
	CodeStackOverflow: CategoryInternal,
	CodeMisc:          CategoryInternal,
	CodeCannotOpen:    CategoryAccess,
	CodeExtension:     CategoryAccess,
}

// CategoryOf returns the category of a code; unknown codes are script errors.
func CategoryOf(code ErrorCode) Category {
	if c, ok := codeCategories[code]; ok {
		return c
	}
	return CategoryScript
}

// Error is a raised, trappable error. It is also an error! value.
type Error struct {
	Code     ErrorCode
	Category Category
	Message  string
	Args     []Value
	Where    string
	Position int
	Token    string
	Err      error
}

// NewError creates a new error; position is -1 when unknown.
func NewError(code ErrorCode, message string, position int) *Error {
	return &Error{
		Code:     code,
		Category: CategoryOf(code),
		Message:  message,
		Position: position,
	}
}

// Errorf creates an error without position from a format string.
func Errorf(code ErrorCode, format string, args ...interface{}) *Error {
	return NewError(code, fmt.Sprintf(format, args...), -1)
}

func (e *Error) Kind() Kind { return KindError }

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Position >= 0 {
		msg = fmt.Sprintf("%s at position %d: %s", e.Code, e.Position, e.Message)
	}
	if e.Where != "" {
		msg += " (where: " + e.Where + ")"
	}
	return msg
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithToken adds token information to the error.
func (e *Error) WithToken(token string) *Error {
	e.Token = token
	return e
}

// WithCause wraps another error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// WithArgs attaches argument values.
func (e *Error) WithArgs(args ...Value) *Error {
	e.Args = args
	return e
}

// WithWhere records the function that raised the error.
func (e *Error) WithWhere(where string) *Error {
	e.Where = where
	return e
}

// Field returns the error attribute a path such as err/code selects.
func (e *Error) Field(name string) (Value, bool) {
	switch name {
	case "code", "id":
		return NewWord(KindWord, string(e.Code)), true
	case "type":
		return NewWord(KindWord, string(e.Category)), true
	case "message":
		return Str(e.Message), true
	case "where":
		if e.Where == "" {
			return NoneValue, true
		}
		return NewWord(KindWord, e.Where), true
	case "args":
		return NewBlock(append([]Value(nil), e.Args...)...), true
	case "arg1", "arg2", "arg3":
		i := int(name[3] - '1')
		if i < len(e.Args) {
			return e.Args[i], true
		}
		return NoneValue, true
	}
	return nil, false
}
