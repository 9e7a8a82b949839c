// Package frame builds and parses the delimiter-terminated bitstream that is
// hidden in an image: 8 bits per character, most significant bit first,
// followed by the delimiter bits.
package frame

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yyyoichi/bitstream-go"
	"github.com/yyyoichi/stegano_lsb/internal/bitconv"
)

var (
	ErrUnencodable        = errors.New("character does not fit in 8 bits")
	ErrDelimiterCollision = errors.New("payload contains the delimiter at a character boundary")
)

// Bitstream is a read-only sequence of framed message bits.
type Bitstream struct {
	size   int
	reader *bitstream.BitReader[uint64]
}

// Encode frames payload followed by delimiter.
// Each '1' in delimiter becomes a set bit, any other character a clear bit.
// A payload that would be cut short by its own bits matching the delimiter
// is rejected with ErrDelimiterCollision.
func Encode(payload []byte, delimiter string) (*Bitstream, error) {
	bits := append(bitconv.BytesToBools(payload), bitconv.StringToBools(delimiter)...)
	if at := DelimiterIndex(bits, delimiter); at >= 0 && at < len(payload)*8 {
		return nil, fmt.Errorf("%w: at byte %d", ErrDelimiterCollision, at/8)
	}

	w := bitstream.NewBitWriter[uint64](0, 0)
	for _, v := range bits {
		w.WriteBool(v)
	}
	reader := bitstream.NewBitReader(w.Data(), 0, 0)
	reader.SetBits(len(bits))
	return &Bitstream{
		size:   len(bits),
		reader: reader,
	}, nil
}

// Len returns the number of bits in the stream.
func (b *Bitstream) Len() int {
	return b.size
}

// Bit returns the bit at the given position as 0 or 1.
func (b *Bitstream) Bit(at int) uint8 {
	v, _ := b.reader.ReadBitAt(at)
	if v {
		return 1
	}
	return 0
}

// String renders the stream as '0'/'1' characters.
func (b *Bitstream) String() string {
	var sb strings.Builder
	sb.Grow(b.size)
	for i := range b.size {
		sb.WriteByte('0' + b.Bit(i))
	}
	return sb.String()
}

// Decode cuts bits at the first occurrence of delimiter starting on a
// character boundary and packs what precedes it into bytes.
// Without a delimiter match the whole sequence is the payload.
// An incomplete trailing byte is dropped.
func Decode(bits []bool, delimiter string) []byte {
	if at := DelimiterIndex(bits, delimiter); at >= 0 {
		bits = bits[:at]
	}
	return bitconv.BoolsToBytes(bits)
}

// DelimiterIndex returns the bit offset of the first delimiter match that
// starts on a multiple of 8, or -1. A delimiter character other than '0' or
// '1' matches no bit. An empty delimiter never matches.
func DelimiterIndex(bits []bool, delimiter string) int {
	if delimiter == "" {
		return -1
	}
	for at := 0; at+len(delimiter) <= len(bits); at += 8 {
		if matchAt(bits[at:], delimiter) {
			return at
		}
	}
	return -1
}

func matchAt(bits []bool, delimiter string) bool {
	for i := range len(delimiter) {
		switch delimiter[i] {
		case '1':
			if !bits[i] {
				return false
			}
		case '0':
			if bits[i] {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// Latin1Bytes maps each rune of s onto one byte.
// Runes above U+00FF are rejected, which includes the replacement rune
// decoded from invalid UTF-8.
func Latin1Bytes(s string) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for i, r := range s {
		if r > 0xFF {
			return nil, fmt.Errorf("%w: %q at byte %d", ErrUnencodable, r, i)
		}
		out = append(out, byte(r))
	}
	return out, nil
}

// Latin1String maps each byte onto the rune with the same code point.
func Latin1String(b []byte) string {
	runes := make([]rune, len(b))
	for i, v := range b {
		runes[i] = rune(v)
	}
	return string(runes)
}
