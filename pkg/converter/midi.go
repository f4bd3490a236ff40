package converter

import (
	"bytes"
	"fmt"

	"github.com/james-see/smfcodec/pkg/sequence"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
	"go.uber.org/zap"
)

// Verify decodes MIDI data, checks it against gomidi's reader and checks
// that re-encoding it decodes to the same sequence.
func (c *Converter) Verify(data []byte) (*Report, error) {
	seq, err := c.Decode(data)
	if err != nil {
		return nil, err
	}
	report := &Report{Summary: Summarize(seq)}

	ref, err := ReferenceNotes(data)
	if err != nil {
		report.Problems = append(report.Problems, fmt.Sprintf("reference parser rejected input: %v", err))
	} else {
		report.ReferenceNotes = ref
		if len(ref) != len(report.Summary.Tracks) {
			report.Problems = append(report.Problems,
				fmt.Sprintf("track count: decoded %d, reference %d", len(report.Summary.Tracks), len(ref)))
		} else {
			for i, n := range ref {
				// gomidi only counts note-ons with a velocity above 0
				if got := report.Summary.Tracks[i].Sounding; got != n {
					report.Problems = append(report.Problems,
						fmt.Sprintf("track %d: decoded %d sounding notes, reference %d", i, got, n))
				}
			}
		}
	}

	out, err := c.Encode(seq)
	if err != nil {
		return nil, err
	}
	again, err := c.Decode(out)
	if err != nil {
		report.Problems = append(report.Problems, fmt.Sprintf("re-encoded data does not decode: %v", err))
	} else {
		report.RoundTripOK = seq.Equal(again)
	}
	if _, err := ReferenceNotes(out); err != nil {
		report.Problems = append(report.Problems, fmt.Sprintf("reference parser rejected output: %v", err))
	}

	c.logger.Debug("verified",
		zap.Int("tracks", len(report.Summary.Tracks)),
		zap.Bool("roundTrip", report.RoundTripOK),
		zap.Int("problems", len(report.Problems)))
	return report, nil
}

// ReferenceNotes counts note starts per track using gomidi's SMF reader
func ReferenceNotes(data []byte) ([]int, error) {
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	counts := make([]int, len(s.Tracks))
	for i, track := range s.Tracks {
		for _, ev := range track {
			var ch, key, vel uint8
			if midi.Message(ev.Message).GetNoteStart(&ch, &key, &vel) {
				counts[i]++
			}
		}
	}
	return counts, nil
}

// Summarize counts events, notes and channels per track
func Summarize(seq *sequence.Sequence) Summary {
	sum := Summary{
		Format:   seq.Format,
		Division: seq.Division,
		Tracks:   make([]TrackSummary, 0, len(seq.Tracks)),
	}
	for _, t := range seq.Tracks {
		ts := TrackSummary{Events: len(t.Events)}
		channels := make(map[int]struct{})
		for i := range t.Events {
			ev := &t.Events[i]
			end := ev.Position
			if ev.IsNoteStart() {
				ts.Notes++
				end += ev.Duration
			}
			if ev.Sounding() {
				ts.Sounding++
			}
			if end > ts.Length {
				ts.Length = end
			}
			if ev.Channel != sequence.NoChannel {
				channels[ev.Channel] = struct{}{}
			}
		}
		ts.Channels = len(channels)
		sum.Tracks = append(sum.Tracks, ts)
	}
	return sum
}
