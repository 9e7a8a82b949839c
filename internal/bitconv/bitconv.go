package bitconv

// BytesToBools expands each byte into 8 bits, most significant bit first.
func BytesToBools(b []byte) []bool {
	bits := make([]bool, 0, len(b)*8)
	for _, bb := range b {
		for i := 7; i >= 0; i-- {
			bits = append(bits, ((bb>>uint(i))&1) == 1)
		}
	}
	return bits
}

// BoolsToBytes packs bits into bytes, most significant bit first.
// An incomplete trailing group of fewer than 8 bits is dropped.
func BoolsToBytes(bits []bool) []byte {
	out := make([]byte, len(bits)/8)
	for i := range out {
		var v byte
		for j := range 8 {
			if bits[i*8+j] {
				v |= 1 << uint(7-j)
			}
		}
		out[i] = v
	}
	return out
}

// StringToBools reads one bit per character: '1' is set, anything else is clear.
func StringToBools(s string) []bool {
	bits := make([]bool, len(s))
	for i := range len(s) {
		bits[i] = s[i] == '1'
	}
	return bits
}
