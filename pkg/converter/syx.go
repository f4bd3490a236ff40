package converter

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/james-see/smfcodec/pkg/sequence"
	"go.uber.org/zap"
)

// SysEx constants
const (
	SysExStart = 0xF0
	SysExEnd   = 0xF7
)

// syxDivision is the tick resolution of files built from a .syx dump
const syxDivision = 96

// MIDIToSyx collects the SysEx messages of a MIDI file into a .syx dump
func (c *Converter) MIDIToSyx(data []byte) ([]byte, error) {
	seq, err := c.Decode(data)
	if err != nil {
		return nil, err
	}

	msgs := ExtractSysEx(seq)
	if len(msgs) == 0 {
		return nil, errors.New("no SysEx messages in MIDI data")
	}
	for i, msg := range msgs {
		if id, err := ExtractManufacturerID(msg); err == nil {
			c.logger.Debug("sysex message", zap.Int("index", i), zap.Int("bytes", len(msg)), zap.Binary("manufacturer", id))
		}
	}
	return bytes.Join(msgs, nil), nil
}

// SyxToMIDI wraps the messages of a .syx dump into a single-track MIDI file,
// all at tick 0.
func (c *Converter) SyxToMIDI(data []byte) ([]byte, error) {
	msgs, err := SplitSysEx(data)
	if err != nil {
		return nil, err
	}

	track := &sequence.Track{Events: make([]sequence.Event, 0, len(msgs)+1)}
	for _, msg := range msgs {
		// the status byte is implied by the event code
		body := msg[1:]
		track.Events = append(track.Events, sequence.Event{
			Channel: sequence.NoChannel,
			Code:    sequence.CmdSysEx,
			Args:    []sequence.Arg{sequence.IntArg(len(body)), sequence.BytesArg(body)},
		})
	}
	track.Events = append(track.Events, sequence.Event{
		Channel: sequence.NoChannel,
		Code:    sequence.CmdEnd,
		Args:    []sequence.Arg{sequence.IntArg(0), sequence.BytesArg(nil)},
	})

	seq := &sequence.Sequence{Format: 0, TrackCount: 1, Division: syxDivision, Tracks: []*sequence.Track{track}}
	return c.Encode(seq)
}

// ExtractSysEx returns the SysEx messages of seq in track order, framed with
// their start and end bytes. Escaped (0xF7) packets are skipped.
func ExtractSysEx(seq *sequence.Sequence) [][]byte {
	var msgs [][]byte
	for _, t := range seq.Tracks {
		for i := range t.Events {
			ev := &t.Events[i]
			if ev.Code != sequence.CmdSysEx || len(ev.Args) != 2 {
				continue
			}
			body := ev.Args[1].Bytes
			msg := make([]byte, 0, len(body)+2)
			msg = append(msg, SysExStart)
			msg = append(msg, body...)
			if len(body) == 0 || body[len(body)-1] != SysExEnd {
				msg = append(msg, SysExEnd)
			}
			msgs = append(msgs, msg)
		}
	}
	return msgs
}

// SplitSysEx splits a .syx dump into its messages, validating each one
func SplitSysEx(data []byte) ([][]byte, error) {
	if len(data) < 2 {
		return nil, errors.New("syx data too short")
	}

	var msgs [][]byte
	for start := 0; start < len(data); {
		end := bytes.IndexByte(data[start:], SysExEnd)
		if end < 0 {
			return nil, fmt.Errorf("invalid SysEx: message at offset %d has no end byte", start)
		}
		msg := data[start : start+end+1]
		if err := ValidateSyx(msg); err != nil {
			return nil, fmt.Errorf("message at offset %d: %w", start, err)
		}
		msgs = append(msgs, msg)
		start += end + 1
	}
	return msgs, nil
}

// ValidateSyx validates the framing of one SysEx message
func ValidateSyx(data []byte) error {
	if len(data) < 2 {
		return errors.New("syx data too short")
	}

	if data[0] != SysExStart {
		return fmt.Errorf("invalid SysEx: expected start byte 0x%02X, got 0x%02X", SysExStart, data[0])
	}

	if data[len(data)-1] != SysExEnd {
		return fmt.Errorf("invalid SysEx: expected end byte 0x%02X, got 0x%02X", SysExEnd, data[len(data)-1])
	}

	// Check all data bytes are 7-bit (valid MIDI data)
	for i := 1; i < len(data)-1; i++ {
		if data[i] > 127 {
			return fmt.Errorf("invalid SysEx: byte at position %d is > 127 (0x%02X)", i, data[i])
		}
	}

	return nil
}

// ExtractManufacturerID extracts the manufacturer ID from SysEx data
func ExtractManufacturerID(data []byte) ([]byte, error) {
	if len(data) < 3 {
		return nil, errors.New("syx data too short for manufacturer ID")
	}

	if data[0] != SysExStart {
		return nil, errors.New("invalid SysEx start")
	}

	// Extended IDs start with 0x00 and take three bytes
	if data[1] == 0x00 {
		if len(data) < 5 {
			return nil, errors.New("syx data too short for extended manufacturer ID")
		}
		return data[1:4], nil
	}

	return data[1:2], nil
}
