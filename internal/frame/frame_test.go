package frame

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yyyoichi/stegano_lsb/internal/bitconv"
)

func TestEncode(t *testing.T) {
	test := []struct {
		name      string
		payload   []byte
		delimiter string
		exp       string
	}{
		{"hi", []byte("Hi"), "11111111", "0100100001101001" + "11111111"},
		{"empty payload", nil, "11111111", "11111111"},
		{"short delimiter", []byte{0x00}, "10", "00000000" + "10"},
		{"non binary delimiter", []byte{0xff}, "1x1", "11111111" + "101"},
		{"no delimiter", []byte{0x81}, "", "10000001"},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			bs, err := Encode(tt.payload, tt.delimiter)
			require.NoError(t, err)
			assert.Equal(t, len(tt.exp), bs.Len())
			assert.Equal(t, tt.exp, bs.String())
			for i := range bs.Len() {
				assert.Equal(t, tt.exp[i]-'0', bs.Bit(i), "bit %d", i)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	test := []struct {
		name      string
		bits      string
		delimiter string
		exp       []byte
	}{
		{"hi", "0100100001101001" + "11111111" + "0101", "11111111", []byte("Hi")},
		{"delimiter only", "11111111" + "01001000", "11111111", []byte{}},
		{"delimiter missing", "0100100001101001", "11111111", []byte("Hi")},
		{"delimiter missing with tail", "0100100001101001101", "11111111", []byte("Hi")},
		// eight ones straddle the boundary of 0x7f 0x80 and are not a match
		{"unaligned ones", "01111111" + "10000000", "11111111", []byte{0x7f, 0x80}},
		{"hi with unaligned ones", "0100100001101001" + "11111111", "11111111", []byte("Hi")},
		{"trailing partial byte", "0100100010", "11111111", []byte("H")},
		{"custom delimiter", "01001000" + "0000", "0000", []byte("H")},
		{"empty delimiter", "01001000" + "11111111", "", []byte{0x48, 0xff}},
		{"malformed delimiter never matches", "01001000", "2", []byte("H")},
		{"empty", "", "11111111", []byte{}},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode(bitconv.StringToBools(tt.bits), tt.delimiter)
			assert.Equal(t, tt.exp, got)
		})
	}
}

func TestDelimiterIndex(t *testing.T) {
	test := []struct {
		name      string
		bits      string
		delimiter string
		exp       int
	}{
		{"hi", "0100100001101001" + "11111111", "11111111", 16},
		{"at start", "11111111" + "0100", "11111111", 0},
		{"first of two", "00000000" + "1010" + "1010" + "1010", "1010", 8},
		{"unaligned only", "01111111" + "10000000", "11111111", -1},
		{"cut at end", "01001000" + "1111111", "11111111", -1},
		{"longer than bits", "1111", "11111111", -1},
		{"non binary never matches", "01001000" + "10100000", "1x1", -1},
		{"empty delimiter", "11111111", "", -1},
		{"no bits", "", "1", -1},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.exp, DelimiterIndex(bitconv.StringToBools(tt.bits), tt.delimiter))
		})
	}
}

func TestEncodeDecode(t *testing.T) {
	for _, payload := range [][]byte{
		[]byte("a"),
		[]byte("hello world!"),
		[]byte("Dies ist ein Test"),
		{0x01, 0x00, 0x7e},
	} {
		bs, err := Encode(payload, "11111111")
		require.NoError(t, err)
		bits := bitconv.StringToBools(bs.String())
		assert.Equal(t, payload, Decode(bits, "11111111"))
	}
}

func TestEncodeCollision(t *testing.T) {
	test := []struct {
		name      string
		payload   []byte
		delimiter string
		collides  bool
	}{
		{"0xff with default", []byte{'a', 0xff, 'b'}, "11111111", true},
		{"0xff last", []byte{'a', 0xff}, "11111111", true},
		{"unaligned ones", []byte{0x7f, 0x80}, "11111111", false},
		{"zero byte with short delimiter", []byte{'H', 0x00}, "0000", true},
		{"nibble delimiter in low half", []byte{0x40}, "0000", false},
		{"empty delimiter", []byte{0xff}, "", false},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.payload, tt.delimiter)
			if tt.collides {
				assert.True(t, errors.Is(err, ErrDelimiterCollision))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLatin1(t *testing.T) {
	t.Run("ascii", func(t *testing.T) {
		b, err := Latin1Bytes("Hi")
		require.NoError(t, err)
		assert.Equal(t, []byte{0x48, 0x69}, b)
		assert.Equal(t, "Hi", Latin1String(b))
	})
	t.Run("latin1", func(t *testing.T) {
		b, err := Latin1Bytes("Grüße")
		require.NoError(t, err)
		assert.Equal(t, []byte{'G', 'r', 0xfc, 0xdf, 'e'}, b)
		assert.Equal(t, "Grüße", Latin1String(b))
	})
	t.Run("rejects wide runes", func(t *testing.T) {
		for _, s := range []string{"こんにちは", "€", "ok🍣", string([]byte{0xff, 0xfe})} {
			_, err := Latin1Bytes(s)
			assert.True(t, errors.Is(err, ErrUnencodable), s)
		}
	})
	t.Run("empty", func(t *testing.T) {
		b, err := Latin1Bytes("")
		require.NoError(t, err)
		assert.Empty(t, b)
		assert.Equal(t, "", Latin1String(nil))
	})
}
