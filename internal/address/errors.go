package address

import (
	"errors"
	"fmt"
)

// Kind classifies why an input could not be converted.
type Kind int

const (
	// KindType means the input was not a textual value.
	KindType Kind = iota + 1
	// KindLength means the body was not exactly BodyLength characters.
	KindLength
	// KindCharset means the body contained a non-hex character.
	KindCharset
	// KindChecksum means a mixed-case body did not match its EIP-55 casing.
	KindChecksum
)

// String returns the kind name used in logs and RPC error data.
func (k Kind) String() string {
	switch k {
	case KindType:
		return "type"
	case KindLength:
		return "length"
	case KindCharset:
		return "charset"
	case KindChecksum:
		return "checksum"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is returned by every failing operation in this package.
//
// Only the fields relevant to Kind are populated:
//   - KindType: Type
//   - KindLength: Expected, Actual
//   - KindCharset: Char, Pos
//   - KindChecksum: Got, Want
type Error struct {
	Kind     Kind
	Expected int
	Actual   int
	Char     rune
	Pos      int
	Type     string
	Got      string
	Want     string
}

// Sentinels for errors.Is; they match on Kind only.
var (
	ErrType     = &Error{Kind: KindType}
	ErrLength   = &Error{Kind: KindLength}
	ErrCharset  = &Error{Kind: KindCharset}
	ErrChecksum = &Error{Kind: KindChecksum}
)

func (e *Error) Error() string {
	switch e.Kind {
	case KindType:
		if e.Type != "" {
			return fmt.Sprintf("address must be a string, got %s", e.Type)
		}
		return "address must be a string"
	case KindLength:
		return fmt.Sprintf("invalid address length: expected %d hex chars, got %d", e.Expected, e.Actual)
	case KindCharset:
		return "invalid hex characters in address"
	case KindChecksum:
		return fmt.Sprintf("invalid address checksum: got %s, want %s", e.Got, e.Want)
	default:
		return "invalid address"
	}
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf returns the Kind carried by err, or 0 if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func typeError(typ string) *Error {
	return &Error{Kind: KindType, Type: typ}
}

func lengthError(actual int) *Error {
	return &Error{Kind: KindLength, Expected: BodyLength, Actual: actual}
}

func charsetError(c rune, pos int) *Error {
	return &Error{Kind: KindCharset, Char: c, Pos: pos}
}
