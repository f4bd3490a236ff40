package sequence

import "fmt"

// MaxVLQ is the largest value a four byte variable-length quantity can hold
const MaxVLQ = 0x0FFFFFFF

const maxVLQBytes = 4

// DecodeVLQ reads a variable-length quantity from the start of data. It
// returns the value and the number of bytes consumed.
func DecodeVLQ(data []byte) (int, int, error) {
	v := 0
	for i, b := range data {
		if i == maxVLQBytes {
			return 0, 0, fmt.Errorf("%w: variable-length quantity longer than %d bytes", ErrMalformedLength, maxVLQBytes)
		}
		v = (v << 7) | int(b&0x7F)
		if b&0x80 == 0 {
			return v, i + 1, nil
		}
	}
	return 0, 0, fmt.Errorf("%w: unterminated variable-length quantity", ErrMalformedLength)
}

// EncodeVLQ returns the minimal encoding of v and its length in bytes. Only
// the first n bytes of the returned array are meaningful.
func EncodeVLQ(v int) ([maxVLQBytes]byte, int, error) {
	var out [maxVLQBytes]byte
	if v < 0 || v > MaxVLQ {
		return out, 0, fmt.Errorf("%w: %d does not fit a variable-length quantity", ErrValueRange, v)
	}
	n := 1
	for rest := v >> 7; rest > 0; rest >>= 7 {
		n++
	}
	for i := n - 1; i >= 0; i-- {
		out[i] = byte(v & 0x7F)
		if i != n-1 {
			out[i] |= 0x80
		}
		v >>= 7
	}
	return out, n, nil
}

func (c *cursor) readVLQ() (int, error) {
	v, n, err := DecodeVLQ(c.data[c.off:])
	if err != nil {
		return 0, err
	}
	c.off += n
	return v, nil
}
