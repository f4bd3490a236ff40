package sequence

import (
	"encoding/binary"
	"fmt"
	"io"
)

// cursor reads big-endian fields from a byte slice and advances past them
type cursor struct {
	data []byte
	off  int
	base int // offset of data[0] in the file, for error reporting
}

func newCursor(data []byte, base int) *cursor {
	return &cursor{data: data, base: base}
}

func (c *cursor) remaining() int {
	return len(c.data) - c.off
}

func (c *cursor) need(n int) error {
	if n < 0 || c.remaining() < n {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrMalformedLength, n, c.remaining())
	}
	return nil
}

// peek returns the next byte without consuming it
func (c *cursor) peek() (byte, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	return c.data[c.off], nil
}

func (c *cursor) readByte() (byte, error) {
	b, err := c.peek()
	if err != nil {
		return 0, err
	}
	c.off++
	return b, nil
}

func (c *cursor) unread() {
	if c.off > 0 {
		c.off--
	}
}

func (c *cursor) readUint16() (uint16, error) {
	if err := c.need(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(c.data[c.off:])
	c.off += 2
	return v, nil
}

func (c *cursor) readUint32() (uint32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(c.data[c.off:])
	c.off += 4
	return v, nil
}

// readShort14 reads two 7-bit data bytes, least significant first
func (c *cursor) readShort14() (int, error) {
	if err := c.need(2); err != nil {
		return 0, err
	}
	lsb, msb := int(c.data[c.off]), int(c.data[c.off+1])
	c.off += 2
	return (msb << 7) + lsb, nil
}

// readBlock returns the next n bytes verbatim, or nil when n is zero
func (c *cursor) readBlock(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	if err := c.need(n); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	copy(b, c.data[c.off:c.off+n])
	c.off += n
	return b, nil
}

func (c *cursor) readTag() (string, error) {
	if err := c.need(4); err != nil {
		return "", err
	}
	tag := string(c.data[c.off : c.off+4])
	c.off += 4
	return tag, nil
}

// writer emits big-endian fields and keeps the first error it hits, so
// callers can check once after a group of writes.
type writer struct {
	w   io.Writer
	err error
	buf [4]byte
}

func (w *writer) write(p []byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.Write(p)
}

func (w *writer) writeByte(b byte) {
	w.buf[0] = b
	w.write(w.buf[:1])
}

func (w *writer) writeUint16(v uint16) {
	binary.BigEndian.PutUint16(w.buf[:2], v)
	w.write(w.buf[:2])
}

func (w *writer) writeUint32(v uint32) {
	binary.BigEndian.PutUint32(w.buf[:4], v)
	w.write(w.buf[:4])
}

// writeShort14 is the inverse of readShort14
func (w *writer) writeShort14(v int) {
	w.buf[0] = byte(v & 0x7F)
	w.buf[1] = byte((v >> 7) & 0x7F)
	w.write(w.buf[:2])
}

func (w *writer) writeVLQ(v int) {
	if w.err != nil {
		return
	}
	enc, n, err := EncodeVLQ(v)
	if err != nil {
		w.err = err
		return
	}
	w.write(enc[:n])
}
