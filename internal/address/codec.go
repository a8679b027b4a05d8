// Package address converts EVM account identifiers between the standard
// 0x-prefixed hex form and the XKO-prefixed exchange form.
//
// Both output forms carry the EIP-55 mixed-case checksum in the 40-character
// body. All functions are pure and safe for concurrent use.
package address

import (
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/umbracle/ethgo"
	"golang.org/x/crypto/sha3"
)

const (
	// HexPrefix marks the standard EVM form.
	HexPrefix = "0x"
	// ExchangePrefix marks the exchange form. Matched case-insensitively on input.
	ExchangePrefix = "XKO"
	// BodyLength is the number of hex characters in an address body.
	BodyLength = 40
	// ByteLength is the number of bytes an address body encodes.
	ByteLength = 20
)

var exchangePrefixLower = strings.ToLower(ExchangePrefix)

// Format identifies the marker an input string was written with.
type Format int

const (
	// FormatBare is a body with no marker.
	FormatBare Format = iota
	// FormatEVM is a 0x-prefixed body.
	FormatEVM
	// FormatExchange is an XKO-prefixed body.
	FormatExchange
)

func (f Format) String() string {
	switch f {
	case FormatEVM:
		return "evm"
	case FormatExchange:
		return "exchange"
	default:
		return "bare"
	}
}

// Normalize returns the validated 40-character lowercase body of input.
//
// Surrounding whitespace is trimmed and the result lowercased. A leading 0x
// is stripped, otherwise a leading XKO (any case) is stripped.
func Normalize(input string) (string, error) {
	return normalizeBody(input, true)
}

// normalizeBody validates input and returns its lowercase body. When
// allowExchange is false only the 0x marker is stripped.
func normalizeBody(input string, allowExchange bool) (string, error) {
	s := strings.ToLower(strings.TrimSpace(input))

	switch {
	case strings.HasPrefix(s, HexPrefix):
		s = s[len(HexPrefix):]
	case allowExchange && strings.HasPrefix(s, exchangePrefixLower):
		s = s[len(exchangePrefixLower):]
	}

	if n := utf8.RuneCountInString(s); n != BodyLength {
		return "", lengthError(n)
	}

	pos := 0
	for _, c := range s {
		if !isLowerHex(c) {
			return "", charsetError(c, pos)
		}
		pos++
	}

	return s, nil
}

func isLowerHex(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')
}

// Checksum returns body with EIP-55 casing applied.
//
// body is lowercased before hashing, so an already checksummed body yields
// the same result. body is expected to be BodyLength hex characters; use
// Normalize first for untrusted input. The hash covers 64 characters, any
// beyond that stay lowercase.
func Checksum(body string) string {
	lower := strings.ToLower(body)

	hasher := sha3.NewLegacyKeccak256()
	hasher.Write([]byte(lower))
	hash := hasher.Sum(nil)

	out := []byte(lower)
	for i, ch := range out {
		if i/2 >= len(hash) {
			break
		}
		if ch < 'a' || ch > 'f' {
			continue
		}
		nibble := hash[i/2]
		if i%2 == 0 {
			nibble >>= 4
		}
		if nibble&0x8 != 0 {
			out[i] = ch - ('a' - 'A')
		}
	}
	return string(out)
}

// ToEvmAddress returns the 0x-prefixed checksummed form of input.
//
// input may carry the 0x marker, the XKO marker or no marker.
func ToEvmAddress(input string) (string, error) {
	body, err := normalizeBody(input, true)
	if err != nil {
		return "", err
	}
	return HexPrefix + Checksum(body), nil
}

// FromEvmAddress returns the XKO-prefixed checksummed form of input.
//
// Only the 0x marker or a bare body is accepted. An XKO-prefixed input is not
// stripped and therefore fails validation.
func FromEvmAddress(input string) (string, error) {
	body, err := normalizeBody(input, false)
	if err != nil {
		return "", err
	}
	return ExchangePrefix + Checksum(body), nil
}

// FromValue checks that an untyped value is a string and returns it.
//
// It is the boundary check for callers that receive loosely typed input,
// such as decoded JSON.
func FromValue(v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", typeError(typeName(v))
	}
	return s, nil
}

func typeName(v interface{}) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%T", v)
}

// TypeError builds a KindType error naming the type that was received.
func TypeError(typ string) error {
	return typeError(typ)
}

// Detect reports which marker input starts with, after trimming.
func Detect(input string) Format {
	s := strings.ToLower(strings.TrimSpace(input))
	switch {
	case strings.HasPrefix(s, HexPrefix):
		return FormatEVM
	case strings.HasPrefix(s, exchangePrefixLower):
		return FormatExchange
	default:
		return FormatBare
	}
}

// Convert flips input to the other form: exchange input becomes EVM, EVM and
// bare input become exchange.
func Convert(input string) (string, error) {
	if Detect(input) == FormatExchange {
		return ToEvmAddress(input)
	}
	return FromEvmAddress(input)
}

// Parse decodes input into its 20-byte value. Both markers are accepted.
func Parse(input string) (ethgo.Address, error) {
	var addr ethgo.Address

	body, err := Normalize(input)
	if err != nil {
		return addr, err
	}
	if _, err := hex.Decode(addr[:], []byte(body)); err != nil {
		// unreachable after Normalize
		return addr, charsetError(0, 0)
	}
	return addr, nil
}

// VerifyChecksum validates input and, if its body mixes upper and lower case
// letters, checks the casing against EIP-55.
//
// All-lowercase and all-uppercase bodies carry no checksum and pass.
func VerifyChecksum(input string) error {
	body, err := Normalize(input)
	if err != nil {
		return err
	}

	raw := rawBody(input)
	if !isMixedCase(raw) {
		return nil
	}
	if want := Checksum(body); raw != want {
		return &Error{Kind: KindChecksum, Got: raw, Want: want}
	}
	return nil
}

// IsChecksummed reports whether input is valid and its body is already in
// EIP-55 casing with at least one letter of each case.
func IsChecksummed(input string) bool {
	if _, err := Normalize(input); err != nil {
		return false
	}
	raw := rawBody(input)
	return isMixedCase(raw) && VerifyChecksum(input) == nil
}

// rawBody strips the marker from input while keeping the body's case.
// input must already have passed Normalize.
func rawBody(input string) string {
	s := strings.TrimSpace(input)
	if len(s) > BodyLength {
		return s[len(s)-BodyLength:]
	}
	return s
}

func isMixedCase(s string) bool {
	var upper, lower bool
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= 'a' && c <= 'f':
			lower = true
		case c >= 'A' && c <= 'F':
			upper = true
		}
	}
	return upper && lower
}
