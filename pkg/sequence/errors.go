package sequence

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedLength is returned when a declared length disagrees with the
	// bytes actually available.
	ErrMalformedLength = errors.New("malformed length")
	// ErrBadHeader is returned when the file does not start with an MThd chunk
	ErrBadHeader = errors.New("bad header chunk")
	// ErrNoRunningStatus is returned for a data byte in status position when
	// no command has been seen yet on the track
	ErrNoRunningStatus = errors.New("data byte without running status")
	// ErrEncodeMismatch is returned when an event's arguments disagree with
	// its descriptor
	ErrEncodeMismatch = errors.New("event arguments do not match descriptor")
	// ErrValueRange is returned for a delta time that does not fit a VLQ
	ErrValueRange = errors.New("value out of range")
)

// DecodeError locates a failure inside the file
type DecodeError struct {
	Track  int // -1 for the header
	Offset int // byte offset from the start of the file
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Track < 0 {
		return fmt.Sprintf("header at offset %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("track %d at offset %d: %v", e.Track, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// EncodeError locates a failure while writing an event
type EncodeError struct {
	Track int
	Event int
	Err   error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("track %d event %d: %v", e.Track, e.Event, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}
