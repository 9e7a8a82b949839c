package bitconv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBitConv(t *testing.T) {
	test := []struct {
		data []byte
		exp  []byte
	}{
		{data: []byte{0b10101010}, exp: []byte{0b10101010}},
		{data: []byte{0b11110000, 0b00001111}, exp: []byte{0b11110000, 0b00001111}},
		{data: []byte("Hello"), exp: []byte("Hello")},
		{data: []byte("こんにちは"), exp: []byte("こんにちは")},
		{data: []byte{}, exp: []byte{}},
	}
	for _, tt := range test {
		bits := BytesToBools(tt.data)
		assert.Len(t, bits, len(tt.data)*8)
		out := BoolsToBytes(bits)
		assert.Equal(t, tt.exp, out)
	}
}

func TestBoolsToBytesDropsTail(t *testing.T) {
	test := []struct {
		name string
		bits string
		exp  []byte
	}{
		{"empty", "", []byte{}},
		{"short", "1010", []byte{}},
		{"one byte", "01001000", []byte{'H'}},
		{"byte plus tail", "01001000101", []byte{'H'}},
		{"two bytes minus one", "010010000110100", []byte{'H'}},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.exp, BoolsToBytes(StringToBools(tt.bits)))
		})
	}
}

func TestBitString(t *testing.T) {
	bits := BytesToBools([]byte("Hi"))
	assert.Equal(t, bits, StringToBools("0100100001101001"))

	// non-binary characters read as clear bits
	assert.Equal(t, []bool{true, false, false, true}, StringToBools("1a21"))
}
