package sequence

import (
	"errors"
	"io"
)

// Buffer is an in-memory io.WriteSeeker. Writing past the end grows it;
// seeking back and writing overwrites in place.
type Buffer struct {
	data []byte
	off  int
}

// NewBuffer returns an empty Buffer
func NewBuffer() *Buffer {
	return &Buffer{}
}

func (b *Buffer) Write(p []byte) (int, error) {
	end := b.off + len(p)
	if end > len(b.data) {
		if end > cap(b.data) {
			grown := make([]byte, end, 2*end)
			copy(grown, b.data)
			b.data = grown
		} else {
			b.data = b.data[:end]
		}
	}
	copy(b.data[b.off:], p)
	b.off = end
	return len(p), nil
}

func (b *Buffer) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(b.off) + offset
	case io.SeekEnd:
		abs = int64(len(b.data)) + offset
	default:
		return 0, errors.New("buffer: invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("buffer: negative position")
	}
	if abs > int64(len(b.data)) {
		return 0, errors.New("buffer: seek past end")
	}
	b.off = int(abs)
	return abs, nil
}

// Bytes returns the written contents
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Len returns the number of bytes written
func (b *Buffer) Len() int {
	return len(b.data)
}
