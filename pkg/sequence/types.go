// Package sequence decodes Standard MIDI Files into an event model where note
// on/off pairs are folded into single events carrying a duration, and encodes
// that model back into a playable file.
package sequence

// Chunk tags and fixed header values
const (
	HeaderTag    = "MThd"
	TrackTag     = "MTrk"
	HeaderLength = 6
)

// NoChannel marks a track that has not seen a channel-voice command yet
const NoChannel = -1

// Sequence is the decoded file: header fields plus its tracks
type Sequence struct {
	Format     uint16
	TrackCount uint16 // as declared by the header
	Division   uint16
	Tracks     []*Track
}

// Track holds the events of one MTrk chunk in file order. The cursor fields
// are scratch state and are reset at the start of every decode or encode pass.
type Track struct {
	Events []Event

	RunningStatus byte
	Channel       int
	Position      int

	active []activeNote
}

// activeNote is a handle to a note-start in Track.Events that is not closed yet
type activeNote struct {
	index     int
	remaining int
}

// Event is one decoded command. Note-starts carry the duration and the
// velocity of the note-end they were paired with; note-ends themselves are
// never stored.
type Event struct {
	Delta    int
	Position int
	Channel  int
	Code     uint16
	Args     []Arg

	Duration    int
	Closed      bool
	OffVelocity Arg

	// length of the raw block declared by the preceding Length argument
	length int
}

// Descriptor returns the registry descriptor the event was decoded with
func (e *Event) Descriptor() Descriptor {
	return Lookup(e.Code)
}

// Name is shorthand for e.Descriptor().Name
func (e *Event) Name() string {
	return e.Descriptor().Name
}

// Key returns the first argument of the event as an integer. It is the key
// for note events.
func (e *Event) Key() int {
	if len(e.Args) == 0 {
		return -1
	}
	return e.Args[0].Int
}

// IsNoteStart reports whether the event is a note-on
func (e *Event) IsNoteStart() bool {
	return e.Code == CmdNoteOn
}

// Sounding reports whether the event is a note-on with a velocity above 0.
// Only strict decoding keeps silent note-ons as events.
func (e *Event) Sounding() bool {
	return e.IsNoteStart() && len(e.Args) > 1 && !isSilent(e.Args[1])
}

// Reset clears the cursor fields of the track before a new pass
func (t *Track) Reset() {
	t.RunningStatus = 0
	t.Channel = NoChannel
	t.Position = 0
	t.active = t.active[:0]
}

// ActiveNotes returns the number of notes still open in the current pass
func (t *Track) ActiveNotes() int {
	return len(t.active)
}

// ArgKind tags the value held by an Arg
type ArgKind uint8

const (
	ArgInt ArgKind = iota
	ArgReal
	ArgBytes
)

// Arg is a decoded argument value: a raw integer, a normalized real in [0,1]
// or a raw byte block.
type Arg struct {
	Kind  ArgKind
	Int   int
	Real  float64
	Bytes []byte
}

// IntArg wraps a raw integer argument
func IntArg(v int) Arg { return Arg{Kind: ArgInt, Int: v} }

// RealArg wraps a normalized argument
func RealArg(v float64) Arg { return Arg{Kind: ArgReal, Real: v} }

// BytesArg wraps a raw block argument
func BytesArg(b []byte) Arg { return Arg{Kind: ArgBytes, Bytes: b} }

// Equal compares two arguments by kind and value
func (a Arg) Equal(b Arg) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ArgInt:
		return a.Int == b.Int
	case ArgReal:
		return a.Real == b.Real
	default:
		if len(a.Bytes) != len(b.Bytes) {
			return false
		}
		for i := range a.Bytes {
			if a.Bytes[i] != b.Bytes[i] {
				return false
			}
		}
		return true
	}
}
