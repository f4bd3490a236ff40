package converter

import (
	"bytes"
	"testing"

	"github.com/james-see/smfcodec/pkg/sequence"
)

// two messages: a one-byte manufacturer ID and an extended one
var dump = []byte{
	0xF0, 0x43, 0x10, 0x4C, 0x00, 0x00, 0x7E, 0x00, 0xF7,
	0xF0, 0x00, 0x20, 0x32, 0x00, 0x01, 0xF7,
}

func TestValidateSyx(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{"valid", []byte{0xF0, 0x7E, 0x7F, 0x09, 0x01, 0xF7}, false},
		{"empty body", []byte{0xF0, 0xF7}, false},
		{"too short", []byte{0xF0}, true},
		{"bad start", []byte{0x90, 0x3C, 0xF7}, true},
		{"bad end", []byte{0xF0, 0x3C, 0x40}, true},
		{"8-bit data", []byte{0xF0, 0x3C, 0x80, 0xF7}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSyx(tt.data)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSyx() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestExtractManufacturerID(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    []byte
		wantErr bool
	}{
		{"single byte", dump[:9], []byte{0x43}, false},
		{"extended", dump[9:], []byte{0x00, 0x20, 0x32}, false},
		{"truncated extended", []byte{0xF0, 0x00, 0x20, 0xF7}, nil, true},
		{"not sysex", []byte{0x90, 0x3C, 0x40}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractManufacturerID(tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExtractManufacturerID() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("ExtractManufacturerID() = % X, want % X", got, tt.want)
			}
		})
	}
}

func TestSplitSysEx(t *testing.T) {
	msgs, err := SplitSysEx(dump)
	if err != nil {
		t.Fatalf("SplitSysEx() error = %v", err)
	}
	if len(msgs) != 2 || !bytes.Equal(msgs[0], dump[:9]) || !bytes.Equal(msgs[1], dump[9:]) {
		t.Errorf("SplitSysEx() = % X", msgs)
	}

	if _, err := SplitSysEx(dump[:len(dump)-1]); err == nil {
		t.Error("SplitSysEx() accepted a message without end byte")
	}
	if _, err := SplitSysEx([]byte{0x43, 0x10, 0xF7}); err == nil {
		t.Error("SplitSysEx() accepted a message without start byte")
	}
}

func TestSyxRoundTrip(t *testing.T) {
	conv := New(nil)

	mid, err := conv.SyxToMIDI(dump)
	if err != nil {
		t.Fatalf("SyxToMIDI() error = %v", err)
	}

	seq, err := conv.Decode(mid)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	events := seq.Tracks[0].Events
	if len(events) != 3 || events[0].Code != sequence.CmdSysEx || events[2].Code != sequence.CmdEnd {
		t.Fatalf("events = %+v", events)
	}
	if _, err := ReferenceNotes(mid); err != nil {
		t.Errorf("gomidi rejected SyxToMIDI output: %v", err)
	}

	back, err := conv.MIDIToSyx(mid)
	if err != nil {
		t.Fatalf("MIDIToSyx() error = %v", err)
	}
	if !bytes.Equal(back, dump) {
		t.Errorf("MIDIToSyx() = % X, want % X", back, dump)
	}
}

func TestMIDIToSyxWithoutSysEx(t *testing.T) {
	if _, err := New(nil).MIDIToSyx(chordFile(t)); err == nil {
		t.Error("MIDIToSyx() should fail on a file without SysEx")
	}
}

func TestExtractSysExAddsEndByte(t *testing.T) {
	seq := &sequence.Sequence{Tracks: []*sequence.Track{{Events: []sequence.Event{
		{Code: sequence.CmdSysEx, Args: []sequence.Arg{sequence.IntArg(2), sequence.BytesArg([]byte{0x7E, 0x00})}},
		{Code: sequence.CmdSysEx7, Args: []sequence.Arg{sequence.IntArg(1), sequence.BytesArg([]byte{0xF7})}},
	}}}}

	msgs := ExtractSysEx(seq)
	want := []byte{0xF0, 0x7E, 0x00, 0xF7}
	if len(msgs) != 1 || !bytes.Equal(msgs[0], want) {
		t.Errorf("ExtractSysEx() = % X, want [% X]", msgs, want)
	}
}
