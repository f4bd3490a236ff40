package sequence

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncodeVLQ(t *testing.T) {
	tests := []struct {
		value    int
		expected []byte
	}{
		{0, []byte{0x00}},
		{0x40, []byte{0x40}},
		{0x7F, []byte{0x7F}},
		{0x80, []byte{0x81, 0x00}},
		{0x2000, []byte{0xC0, 0x00}},
		{0x3FFF, []byte{0xFF, 0x7F}},
		{0x4000, []byte{0x81, 0x80, 0x00}},
		{0x1FFFFF, []byte{0xFF, 0xFF, 0x7F}},
		{0x200000, []byte{0x81, 0x80, 0x80, 0x00}},
		{MaxVLQ, []byte{0xFF, 0xFF, 0xFF, 0x7F}},
	}

	for _, tt := range tests {
		enc, n, err := EncodeVLQ(tt.value)
		if err != nil {
			t.Fatalf("EncodeVLQ(%#x) error = %v", tt.value, err)
		}
		if !bytes.Equal(enc[:n], tt.expected) {
			t.Errorf("EncodeVLQ(%#x) = % X, want % X", tt.value, enc[:n], tt.expected)
		}

		v, used, err := DecodeVLQ(tt.expected)
		if err != nil {
			t.Fatalf("DecodeVLQ(% X) error = %v", tt.expected, err)
		}
		if v != tt.value || used != len(tt.expected) {
			t.Errorf("DecodeVLQ(% X) = %#x (%d bytes), want %#x (%d bytes)", tt.expected, v, used, tt.value, len(tt.expected))
		}
	}
}

func TestVLQRoundTrip(t *testing.T) {
	for v := 0; v <= MaxVLQ; v = v*3 + 1 {
		enc, n, err := EncodeVLQ(v)
		if err != nil {
			t.Fatalf("EncodeVLQ(%d) error = %v", v, err)
		}

		// minimal: only the last byte lacks the continuation bit and the
		// first byte carries payload
		if n > 1 && enc[0] == 0x80 {
			t.Errorf("EncodeVLQ(%d) has a superfluous leading byte: % X", v, enc[:n])
		}
		for i := 0; i < n-1; i++ {
			if enc[i]&0x80 == 0 {
				t.Errorf("EncodeVLQ(%d) byte %d lacks continuation bit", v, i)
			}
		}
		if enc[n-1]&0x80 != 0 {
			t.Errorf("EncodeVLQ(%d) last byte has continuation bit", v)
		}

		got, _, err := DecodeVLQ(enc[:n])
		if err != nil {
			t.Fatalf("DecodeVLQ error = %v", err)
		}
		if got != v {
			t.Errorf("round trip %d -> %d", v, got)
		}
	}
}

func TestVLQErrors(t *testing.T) {
	if _, _, err := EncodeVLQ(-1); !errors.Is(err, ErrValueRange) {
		t.Errorf("EncodeVLQ(-1) error = %v, want ErrValueRange", err)
	}
	if _, _, err := EncodeVLQ(MaxVLQ + 1); !errors.Is(err, ErrValueRange) {
		t.Errorf("EncodeVLQ(MaxVLQ+1) error = %v, want ErrValueRange", err)
	}
	if _, _, err := DecodeVLQ([]byte{0x81}); !errors.Is(err, ErrMalformedLength) {
		t.Errorf("DecodeVLQ(unterminated) error = %v, want ErrMalformedLength", err)
	}
	if _, _, err := DecodeVLQ([]byte{0x81, 0x81, 0x81, 0x81, 0x00}); !errors.Is(err, ErrMalformedLength) {
		t.Errorf("DecodeVLQ(5 bytes) error = %v, want ErrMalformedLength", err)
	}
}

func TestCursorReadVLQAdvances(t *testing.T) {
	c := newCursor([]byte{0x81, 0x00, 0x90}, 0)
	v, err := c.readVLQ()
	if err != nil {
		t.Fatalf("readVLQ() error = %v", err)
	}
	if v != 0x80 || c.off != 2 {
		t.Errorf("readVLQ() = %#x at offset %d, want 0x80 at offset 2", v, c.off)
	}
}

func TestShort14(t *testing.T) {
	c := newCursor([]byte{0x00, 0x40, 0x7F, 0x7F}, 0)
	v, err := c.readShort14()
	if err != nil || v != 0x2000 {
		t.Errorf("readShort14() = %#x, %v, want 0x2000", v, err)
	}
	v, err = c.readShort14()
	if err != nil || v != 0x3FFF {
		t.Errorf("readShort14() = %#x, %v, want 0x3FFF", v, err)
	}

	b := NewBuffer()
	w := &writer{w: b}
	w.writeShort14(0x2000)
	w.writeShort14(0x3FFF)
	if !bytes.Equal(b.Bytes(), []byte{0x00, 0x40, 0x7F, 0x7F}) {
		t.Errorf("writeShort14() wrote % X", b.Bytes())
	}
}

func TestReadBlockZeroLength(t *testing.T) {
	c := newCursor([]byte{0x01}, 0)
	b, err := c.readBlock(0)
	if err != nil || b != nil || c.off != 0 {
		t.Errorf("readBlock(0) = %v, %v at offset %d, want nil at offset 0", b, err, c.off)
	}
	if _, err := c.readBlock(2); !errors.Is(err, ErrMalformedLength) {
		t.Errorf("readBlock(2) error = %v, want ErrMalformedLength", err)
	}
}
