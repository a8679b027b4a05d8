package address

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/umbracle/ethgo"
)

const (
	raw      = "70586beeb7b7aa2e7966df9c8493c6cbfd75c625"
	checksum = "0x70586BeEB7b7Aa2e7966DF9c8493C6CbFd75C625"
	xko      = "XKO70586BeEB7b7Aa2e7966DF9c8493C6CbFd75C625"
)

// EIP-55 reference vectors.
var eip55Vectors = []string{
	"0x52908400098527886E0F7030069857D2E4169EE7",
	"0x8617E340B3D01FA5F11F306F4090FD50E238070D",
	"0xde709f2102306220921060314715629080e2fb77",
	"0x27b1fdb04752bbc536007a920d24acb045561c26",
	"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
	"0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
	"0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB",
	"0xD1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb",
}

func TestChecksum(t *testing.T) {
	require.Equal(t, checksum[2:], Checksum(raw))

	for _, v := range eip55Vectors {
		t.Run(v, func(t *testing.T) {
			body := strings.ToLower(v[2:])
			assert.Equal(t, v[2:], Checksum(body))
		})
	}
}

func TestChecksum_Idempotent(t *testing.T) {
	for _, v := range append(eip55Vectors, checksum) {
		once := Checksum(strings.ToLower(v[2:]))
		assert.Equal(t, once, Checksum(strings.ToLower(once)))
		assert.Equal(t, once, Checksum(once), "upper-case input is lowercased first")
	}
}

func TestChecksum_LongInput(t *testing.T) {
	long := strings.Repeat("a", 66)

	var got string
	require.NotPanics(t, func() { got = Checksum(long) })
	require.Len(t, got, len(long))
	assert.Equal(t, "aa", got[64:], "characters past the hash stay lowercase")

	assert.NotPanics(t, func() { Checksum(strings.Repeat("f", 200)) })
	assert.Equal(t, "", Checksum(""))
}

func TestChecksum_MatchesEthgo(t *testing.T) {
	for _, v := range append(eip55Vectors, checksum) {
		body := strings.ToLower(v[2:])
		want := ethgo.HexToAddress(HexPrefix + body).String()
		assert.Equal(t, want, HexPrefix+Checksum(body))
	}
}

func TestToEvmAddress(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"0x prefixed", "0x" + raw, checksum},
		{"bare hex", raw, checksum},
		{"XKO prefixed", "XKO" + raw, checksum},
		{"xko lower prefix", "xko" + raw, checksum},
		{"mixed case marker", "xKo" + strings.ToUpper(raw), checksum},
		{"upper 0X", "0X" + raw, checksum},
		{"surrounding whitespace", "  \t0x" + raw + "\n", checksum},
		{"already checksummed", checksum, checksum},
		{"exchange form", xko, checksum},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToEvmAddress(tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestToEvmAddress_Errors(t *testing.T) {
	t.Run("short", func(t *testing.T) {
		_, err := ToEvmAddress("0x1234")
		require.ErrorIs(t, err, ErrLength)
		require.ErrorContains(t, err, "invalid address length")

		var addrErr *Error
		require.True(t, errors.As(err, &addrErr))
		assert.Equal(t, BodyLength, addrErr.Expected)
		assert.Equal(t, 4, addrErr.Actual)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ToEvmAddress("   ")
		require.ErrorIs(t, err, ErrLength)
	})

	t.Run("long", func(t *testing.T) {
		_, err := ToEvmAddress("0x" + raw + "00")
		require.ErrorIs(t, err, ErrLength)
	})

	t.Run("non hex", func(t *testing.T) {
		_, err := ToEvmAddress("0xzbcdefabcdefabcdefabcdefabcdefabcdefabcd")
		require.ErrorIs(t, err, ErrCharset)
		require.ErrorContains(t, err, "invalid hex characters")

		var addrErr *Error
		require.True(t, errors.As(err, &addrErr))
		assert.Equal(t, 'z', addrErr.Char)
		assert.Equal(t, 0, addrErr.Pos)
	})

	t.Run("g to z anywhere", func(t *testing.T) {
		for c := 'g'; c <= 'z'; c++ {
			body := raw[:39] + string(c)
			_, err := ToEvmAddress(body)
			assert.Equal(t, KindCharset, KindOf(err), "char %q", c)
		}
	})

	t.Run("multibyte", func(t *testing.T) {
		_, err := ToEvmAddress(raw[:39] + "é")
		assert.Equal(t, KindCharset, KindOf(err))
	})

	t.Run("double marker", func(t *testing.T) {
		_, err := ToEvmAddress("0xXKO" + raw)
		assert.Equal(t, KindLength, KindOf(err))
	})
}

func TestFromEvmAddress(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"0x prefixed", "0x" + raw, xko},
		{"bare hex", raw, xko},
		{"checksummed", checksum, xko},
		{"upper body", strings.ToUpper(raw), xko},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromEvmAddress(tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}

	_, err := FromEvmAddress("0xZZZDEFABCDEFABCDEFABCDEFABCDEFABCDEFABCD")
	require.ErrorContains(t, err, "invalid hex characters")
}

func TestFromEvmAddress_RejectsExchangeMarker(t *testing.T) {
	_, err := FromEvmAddress(xko)
	require.ErrorIs(t, err, ErrLength)

	var addrErr *Error
	require.ErrorAs(t, err, &addrErr)
	assert.Equal(t, 43, addrErr.Actual)

	_, err = FromEvmAddress("XKO" + raw[3:])
	require.ErrorIs(t, err, ErrCharset)
}

func TestCrossFormatConsistency(t *testing.T) {
	for _, v := range append(eip55Vectors, "0x"+raw) {
		a, err := ToEvmAddress(v)
		require.NoError(t, err)
		b, err := FromEvmAddress(v)
		require.NoError(t, err)
		assert.Equal(t, a[len(HexPrefix):], b[len(ExchangePrefix):])
	}
}

func TestFromValue(t *testing.T) {
	s, err := FromValue(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, s)

	for _, v := range []interface{}{nil, 42, 1.5, true, []byte(raw), map[string]interface{}{}} {
		_, err := FromValue(v)
		assert.ErrorIs(t, err, ErrType)
		assert.ErrorContains(t, err, "address must be a string")
	}
}

func TestDetect(t *testing.T) {
	assert.Equal(t, FormatEVM, Detect(" 0X"+raw))
	assert.Equal(t, FormatExchange, Detect("xko"+raw))
	assert.Equal(t, FormatBare, Detect(raw))
	assert.Equal(t, "exchange", FormatExchange.String())
}

func TestConvert(t *testing.T) {
	got, err := Convert(xko)
	require.NoError(t, err)
	assert.Equal(t, checksum, got)

	got, err = Convert(checksum)
	require.NoError(t, err)
	assert.Equal(t, xko, got)

	got, err = Convert(raw)
	require.NoError(t, err)
	assert.Equal(t, xko, got)
}

func TestParse(t *testing.T) {
	addr, err := Parse(xko)
	require.NoError(t, err)
	assert.Equal(t, ethgo.HexToAddress("0x"+raw), addr)

	_, err = Parse("0x1234")
	assert.ErrorIs(t, err, ErrLength)
}

func TestVerifyChecksum(t *testing.T) {
	for _, v := range eip55Vectors {
		assert.NoError(t, VerifyChecksum(v), v)
	}
	assert.NoError(t, VerifyChecksum(xko))
	assert.NoError(t, VerifyChecksum(raw))
	assert.NoError(t, VerifyChecksum(strings.ToUpper(raw)))

	// flip the case of one letter
	bad := "0x70586beEB7b7Aa2e7966DF9c8493C6CbFd75C625"
	err := VerifyChecksum(bad)
	require.ErrorIs(t, err, ErrChecksum)

	var addrErr *Error
	require.ErrorAs(t, err, &addrErr)
	assert.Equal(t, checksum[2:], addrErr.Want)

	assert.ErrorIs(t, VerifyChecksum("0x1234"), ErrLength)
}

func TestIsChecksummed(t *testing.T) {
	assert.True(t, IsChecksummed(checksum))
	assert.True(t, IsChecksummed(xko))
	assert.False(t, IsChecksummed(raw))
	assert.False(t, IsChecksummed("0x70586beEB7b7Aa2e7966DF9c8493C6CbFd75C625"))
	assert.False(t, IsChecksummed("garbage"))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "type", KindType.String())
	assert.Equal(t, "length", KindLength.String())
	assert.Equal(t, "charset", KindCharset.String())
	assert.Equal(t, "checksum", KindChecksum.String())
	assert.Equal(t, Kind(0), KindOf(errors.New("other")))
}
