package protocol

// MaxVarintLen is the longest encoding of a uint64.
const MaxVarintLen = 10

// EncodeUvarint writes v into buf, seven bits per byte with the high bit
// marking continuation, and returns the number of bytes written.
// buf must have room for MaxVarintLen bytes.
func EncodeUvarint(buf []byte, v uint64) int {
	i := 0
	for v >= 0x80 {
		buf[i] = byte(v) | 0x80
		v >>= 7
		i++
	}
	buf[i] = byte(v)
	return i + 1
}

// DecodeUvarint reads a varint from buf. The count is -1 when buf ends
// inside the varint and -2 when it runs past MaxVarintLen bytes.
func DecodeUvarint(buf []byte) (uint64, int) {
	var v uint64
	var shift uint
	for i, b := range buf {
		if i >= MaxVarintLen {
			return 0, -2
		}
		v |= uint64(b&0x7F) << shift
		if b < 0x80 {
			return v, i + 1
		}
		shift += 7
	}
	return 0, -1
}

// UvarintLen returns the encoded size of v.
func UvarintLen(v uint64) int {
	n := 1
	for v >= 0x80 {
		n++
		v >>= 7
	}
	return n
}

