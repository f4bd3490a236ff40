package converter

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/james-see/smfcodec/pkg/sequence"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// chordFile writes two overlapping notes with gomidi's SMF writer
func chordFile(t *testing.T) []byte {
	t.Helper()
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(96)

	var track smf.Track
	track.Add(0, midi.NoteOn(0, 60, 100))
	track.Add(0, midi.NoteOn(0, 64, 90))
	track.Add(48, midi.NoteOff(0, 60))
	track.Add(48, midi.NoteOff(0, 64))
	track.Close(0)

	if err := s.Add(track); err != nil {
		t.Fatalf("failed to add track: %v", err)
	}
	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		t.Fatalf("failed to write MIDI: %v", err)
	}
	return buf.Bytes()
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		filename string
		expected Format
	}{
		{"test.mid", FormatMIDI},
		{"test.MIDI", FormatMIDI},
		{"test.smf", FormatMIDI},
		{"test.json", FormatJSON},
		{"test.yaml", FormatYAML},
		{"test.yml", FormatYAML},
		{"test.syx", FormatSyx},
		{"test.txt", FormatUnknown},
		{"test", FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			result := DetectFormat(tt.filename)
			if result != tt.expected {
				t.Errorf("DetectFormat(%q) = %v, want %v", tt.filename, result, tt.expected)
			}
		})
	}
}

func TestDetectFormatFromContent(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected Format
	}{
		{"MIDI file", []byte("MThd\x00\x00\x00\x06"), FormatMIDI},
		{"SysEx dump", []byte{0xF0, 0x43, 0x10, 0xF7}, FormatSyx},
		{"RIFF file", []byte("RIFF\x00\x00\x00\x00"), FormatUnknown},
		{"Short data", []byte{0x00, 0x01}, FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DetectFormatFromContent(tt.data)
			if result != tt.expected {
				t.Errorf("DetectFormatFromContent() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestConverterOptions(t *testing.T) {
	conv := New(nil)
	if conv == nil {
		t.Fatal("New() returned nil")
	}
	if len(conv.GetOptions()) != 0 {
		t.Errorf("GetOptions() = %d options, want 0", len(conv.GetOptions()))
	}

	conv.SetOptions(sequence.WithConcurrency(2), sequence.WithStrictNoteOn())
	if len(conv.GetOptions()) != 2 {
		t.Errorf("GetOptions() = %d options after SetOptions, want 2", len(conv.GetOptions()))
	}
}

func TestDecodeGomidiFile(t *testing.T) {
	conv := New(nil)
	seq, err := conv.Decode(chordFile(t))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(seq.Tracks) != 1 {
		t.Fatalf("tracks = %d, want 1", len(seq.Tracks))
	}

	events := seq.Tracks[0].Events
	if len(events) != 3 {
		t.Fatalf("events = %d, want 3", len(events))
	}
	if events[0].Key() != 60 || events[0].Duration != 48 {
		t.Errorf("first note = key %d duration %d, want key 60 duration 48", events[0].Key(), events[0].Duration)
	}
	if events[1].Key() != 64 || events[1].Duration != 96 {
		t.Errorf("second note = key %d duration %d, want key 64 duration 96", events[1].Key(), events[1].Duration)
	}
	if events[2].Name() != "End" || events[2].Position != 96 {
		t.Errorf("last event = %s at %d, want End at 96", events[2].Name(), events[2].Position)
	}
}

func TestRoundTrip(t *testing.T) {
	conv := New(nil)
	data := chordFile(t)

	out, err := conv.RoundTrip(data)
	if err != nil {
		t.Fatalf("RoundTrip() error = %v", err)
	}

	first, err := conv.Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	second, err := conv.Decode(out)
	if err != nil {
		t.Fatalf("Decode(RoundTrip()) error = %v", err)
	}
	if !first.Equal(second) {
		t.Error("round trip changed the decoded sequence")
	}

	ref, err := ReferenceNotes(out)
	if err != nil {
		t.Fatalf("gomidi rejected round trip output: %v", err)
	}
	if len(ref) != 1 || ref[0] != 2 {
		t.Errorf("ReferenceNotes() = %v, want [2]", ref)
	}
}

func TestVerify(t *testing.T) {
	conv := New(nil, sequence.WithConcurrency(2))
	report, err := conv.Verify(chordFile(t))
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !report.OK() {
		t.Errorf("Verify() problems = %v, round trip %v", report.Problems, report.RoundTripOK)
	}
	if report.Summary.Tracks[0].Notes != 2 || report.Summary.Tracks[0].Length != 96 {
		t.Errorf("summary = %+v", report.Summary.Tracks[0])
	}
	if report.Summary.Tracks[0].Channels != 1 {
		t.Errorf("channels = %d, want 1", report.Summary.Tracks[0].Channels)
	}
}

// silentNoteOff ends its note with a NoteOn of velocity 0
var silentNoteOff = []byte{
	'M', 'T', 'h', 'd', 0, 0, 0, 6, 0, 0, 0, 1, 0, 96,
	'M', 'T', 'r', 'k', 0, 0, 0, 12,
	0x00, 0x90, 0x3C, 0x40,
	0x30, 0x90, 0x3C, 0x00,
	0x00, 0xFF, 0x2F, 0x00,
}

func TestVerifySilentNoteOn(t *testing.T) {
	tests := []struct {
		name     string
		opts     []sequence.Option
		notes    int
		sounding int
	}{
		{"default", nil, 1, 1},
		{"strict", []sequence.Option{sequence.WithStrictNoteOn()}, 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := New(nil, tt.opts...).Verify(silentNoteOff)
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if !report.OK() {
				t.Errorf("Verify() problems = %v, round trip %v", report.Problems, report.RoundTripOK)
			}
			track := report.Summary.Tracks[0]
			if track.Notes != tt.notes || track.Sounding != tt.sounding {
				t.Errorf("notes = %d sounding = %d, want %d and %d", track.Notes, track.Sounding, tt.notes, tt.sounding)
			}
			if len(report.ReferenceNotes) != 1 || report.ReferenceNotes[0] != 1 {
				t.Errorf("ReferenceNotes = %v, want [1]", report.ReferenceNotes)
			}
		})
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	if _, err := New(nil).Verify([]byte("MThd\x00\x00")); err == nil {
		t.Error("Verify() accepted a truncated header")
	}
}

func TestDumpJSON(t *testing.T) {
	out, err := New(nil).Dump(chordFile(t), FormatJSON)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}

	var doc Document
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("dump is not valid JSON: %v", err)
	}
	if len(doc.Tracks) != 1 || len(doc.Tracks[0].Events) != 3 {
		t.Fatalf("document = %+v", doc)
	}
	note := doc.Tracks[0].Events[0]
	if note.Name != "NoteOn" || note.Code != "0x90" {
		t.Errorf("first event = %s %s, want NoteOn 0x90", note.Name, note.Code)
	}
	if note.Duration == nil || *note.Duration != 48 {
		t.Errorf("duration = %v, want 48", note.Duration)
	}
	if note.Channel == nil || *note.Channel != 0 {
		t.Errorf("channel = %v, want 0", note.Channel)
	}
	if end := doc.Tracks[0].Events[2]; end.Code != "0xFF2F" || end.Channel != nil {
		t.Errorf("end event = %+v", end)
	}
}

func TestDumpYAML(t *testing.T) {
	out, err := New(nil).Dump(chordFile(t), FormatYAML)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if !strings.Contains(string(out), "name: NoteOn") {
		t.Errorf("YAML dump lacks NoteOn event:\n%s", out)
	}
	if _, err := New(nil).Dump(chordFile(t), FormatMIDI); err == nil {
		t.Error("Dump(FormatMIDI) should fail")
	}
}

func TestConvertFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "chord.mid")
	if err := os.WriteFile(input, chordFile(t), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	conv := New(nil)
	ctx := context.Background()
	for _, name := range []string{"out.mid", "out.json", "out.yaml"} {
		output := filepath.Join(dir, name)
		if err := conv.ConvertFile(ctx, input, output); err != nil {
			t.Fatalf("ConvertFile(%s) error = %v", name, err)
		}
		if info, err := os.Stat(output); err != nil || info.Size() == 0 {
			t.Errorf("ConvertFile(%s) produced no output", name)
		}
	}

	if err := conv.ConvertFile(ctx, input, filepath.Join(dir, "out.txt")); err == nil {
		t.Error("ConvertFile() to .txt should fail")
	}
	if err := conv.ConvertFile(ctx, filepath.Join(dir, "out.json"), filepath.Join(dir, "back.mid")); err == nil {
		t.Error("ConvertFile() from .json should fail")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := conv.ConvertFile(cancelled, input, filepath.Join(dir, "late.mid")); err == nil {
		t.Error("ConvertFile() with cancelled context should fail")
	}
}

func TestGetSupportedConversions(t *testing.T) {
	conversions := GetSupportedConversions()

	expected := []string{
		"midi -> midi",
		"midi -> json",
		"midi -> yaml",
		"midi -> syx",
		"syx -> midi",
	}
	if len(conversions) != len(expected) {
		t.Fatalf("GetSupportedConversions() returned %d conversions, want %d", len(conversions), len(expected))
	}
	for i, exp := range expected {
		if conversions[i] != exp {
			t.Errorf("conversions[%d] = %q, want %q", i, conversions[i], exp)
		}
	}
}
