package bencode

import (
	"errors"
	"fmt"
)

// Decode error kinds. A *SyntaxError wraps exactly one of them; match with
// errors.Is.
var (
	ErrUnexpectedEnd       = errors.New("unexpected end of input")
	ErrInvalidType         = errors.New("invalid value type")
	ErrUnterminatedList    = errors.New("unterminated list")
	ErrUnterminatedDict    = errors.New("unterminated dictionary")
	ErrInvalidDictKey      = errors.New("invalid dictionary key")
	ErrDuplicateKey        = errors.New("duplicate dictionary key")
	ErrMissortedKey        = errors.New("missorted dictionary key")
	ErrLeadingZeroLength   = errors.New("invalid string length, leading zero")
	ErrMissingColon        = errors.New("invalid string length, colon not found")
	ErrLengthExceedsInput  = errors.New("input too short for string length")
	ErrEmptyInteger        = errors.New("empty integer")
	ErrLeadingZeroInteger  = errors.New("leading zero in integer")
	ErrNonDigitInInteger   = errors.New("non-digit character in integer")
	ErrUnterminatedInteger = errors.New("unterminated integer")
	ErrIntegerOverflow     = errors.New("integer out of range")
	ErrNestingTooDeep      = errors.New("lists and dictionaries nested too deeply")
)

// SyntaxError reports malformed input and the byte offset where it was
// detected.
type SyntaxError struct {
	Offset int
	Err    error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("bencode: %v at offset %d", e.Err, e.Offset)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

func syntaxError(offset int, err error) *SyntaxError {
	return &SyntaxError{Offset: offset, Err: err}
}
