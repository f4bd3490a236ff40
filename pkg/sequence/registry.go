package sequence

import (
	"fmt"
	"sort"
)

// Primary command codes
const (
	CmdNoteOff         uint16 = 0x80
	CmdNoteOn          uint16 = 0x90
	CmdAfterTouch      uint16 = 0xA0
	CmdControlChange   uint16 = 0xB0
	CmdProgramChange   uint16 = 0xC0
	CmdChannelPressure uint16 = 0xD0
	CmdPitchWheel      uint16 = 0xE0
	CmdSysEx           uint16 = 0xF0
	CmdSysEx7          uint16 = 0xF7
	CmdMeta            uint16 = 0xFF
)

// Refined two-byte codes with behaviour attached
const (
	CmdPolyOnOff uint16 = 0xB07E
	CmdPolyOn    uint16 = 0xB07F
	CmdEnd       uint16 = 0xFF2F
	CmdTempo     uint16 = 0xFF51
)

// systemThreshold is the first status byte that carries no channel nibble
const systemThreshold = 0xF0

// SpecKind selects how an argument is laid out in the stream
type SpecKind uint8

const (
	SpecByte   SpecKind = iota // one byte
	SpecShort                  // two 7-bit bytes, least significant first
	SpecLength                 // variable-length quantity sizing the following block
	SpecBlock                  // raw bytes, sized by the preceding Length
)

// Callback selects the note-duration hook an event triggers
type Callback uint8

const (
	CallbackNone Callback = iota
	CallbackNoteStart
	CallbackNoteEnd
	CallbackCloseAll
)

// ArgSpec describes one argument of a command. Min and Max are only used for
// normalization.
type ArgSpec struct {
	Name string
	Kind SpecKind
	Min  int
	Max  int
}

// Descriptor is the static description of one command
type Descriptor struct {
	Name     string
	Code     uint16
	Args     []ArgSpec
	Callback Callback
	Unknown  bool // synthesized for a code missing from the registry
}

// Extended reports whether the code carries a secondary byte
func (d Descriptor) Extended() bool {
	return d.Code > 0xFF
}

// Primary is the status byte class of the descriptor
func (d Descriptor) Primary() byte {
	if d.Extended() {
		return byte(d.Code >> 8)
	}
	return byte(d.Code)
}

// ChannelVoice reports whether the status byte carries a channel nibble
func (d Descriptor) ChannelVoice() bool {
	return d.Primary() < systemThreshold
}

func byteArg(name string) ArgSpec {
	return ArgSpec{Name: name, Kind: SpecByte, Min: 0, Max: 127}
}

var (
	lengthArg = ArgSpec{Name: "Length", Kind: SpecLength, Min: 0, Max: 127}
	blockArg  = ArgSpec{Name: "Value", Kind: SpecBlock, Min: 0, Max: 127}
)

func controller(code uint16, name string) Descriptor {
	return Descriptor{Name: name, Code: code, Args: []ArgSpec{byteArg("Value")}}
}

var registry = buildRegistry()

func buildRegistry() map[uint16]Descriptor {
	table := []Descriptor{
		{Name: "NoteOff", Code: CmdNoteOff, Args: []ArgSpec{byteArg("Key"), byteArg("Velocity")}, Callback: CallbackNoteEnd},
		{Name: "NoteOn", Code: CmdNoteOn, Args: []ArgSpec{byteArg("Key"), byteArg("Velocity")}, Callback: CallbackNoteStart},
		{Name: "AfterTouch", Code: CmdAfterTouch, Args: []ArgSpec{byteArg("Key"), byteArg("Velocity")}},
		{Name: "ControlChange", Code: CmdControlChange, Args: []ArgSpec{byteArg("Controller"), byteArg("Value")}},
		{Name: "ProgramChange", Code: CmdProgramChange, Args: []ArgSpec{byteArg("Program")}},
		{Name: "ChannelPressure", Code: CmdChannelPressure, Args: []ArgSpec{byteArg("Pressure")}},
		{Name: "PitchWheelChange", Code: CmdPitchWheel, Args: []ArgSpec{{Name: "Pitch", Kind: SpecShort, Min: 0, Max: 0x3FFF}}},
		{Name: "SysEx", Code: CmdSysEx, Args: []ArgSpec{lengthArg, blockArg}},
		{Name: "SysEx7", Code: CmdSysEx7, Args: []ArgSpec{lengthArg, blockArg}},
		{Name: "MetaEvent", Code: CmdMeta, Args: []ArgSpec{byteArg("Type"), lengthArg, blockArg}},

		controller(0xB000, "Bank Select"),
		controller(0xB001, "Modulation wheel"),
		controller(0xB002, "Breath control"),
		controller(0xB004, "Foot controller"),
		controller(0xB005, "PortamentoTime"),
		controller(0xB006, "PitchBendRange"),
		controller(0xB007, "Volume"),
		controller(0xB008, "Balance"),
		controller(0xB00A, "Pan"),
		controller(0xB00B, "Expression"),
		controller(0xB014, "MasterVolume"),
		controller(0xB015, "Transpose"),
		controller(0xB016, "Priority"),
		controller(0xB017, "Tie"),
		controller(0xB018, "ModDepth"),
		controller(0xB019, "ModSpeed"),
		controller(0xB01A, "ModType"),
		controller(0xB01B, "ModRange"),
		controller(0xB041, "PortamentoOnOff"),
		controller(0xB054, "PortamentoControl"),
		controller(0xB055, "Attack"),
		controller(0xB056, "Decay"),
		controller(0xB057, "Sustain"),
		controller(0xB058, "Release"),
		{Name: "PolyOnOff", Code: CmdPolyOnOff, Args: []ArgSpec{byteArg("Value")}, Callback: CallbackCloseAll},
		{Name: "PolyOn", Code: CmdPolyOn, Args: []ArgSpec{{Name: "Value", Kind: SpecByte, Min: 0, Max: 0}}, Callback: CallbackCloseAll},

		{Name: "End", Code: CmdEnd, Args: []ArgSpec{lengthArg, blockArg}, Callback: CallbackCloseAll},
		{Name: "Tempo", Code: CmdTempo, Args: []ArgSpec{lengthArg, blockArg}},
	}

	m := make(map[uint16]Descriptor, len(table))
	for _, d := range table {
		m[d.Code] = d
	}
	return m
}

// unknownDescriptor stands in for a primary code missing from the registry
func unknownDescriptor(code uint16) Descriptor {
	return Descriptor{
		Name:    fmt.Sprintf("Midi_0x%04x", code),
		Code:    code,
		Args:    []ArgSpec{byteArg("Value")},
		Unknown: true,
	}
}

// Lookup returns the descriptor registered for code. Codes missing from the
// registry get a synthesized one-argument descriptor.
func Lookup(code uint16) Descriptor {
	if d, ok := registry[code]; ok {
		return d
	}
	return unknownDescriptor(code)
}

// Registered reports whether code has an entry in the registry
func Registered(code uint16) bool {
	_, ok := registry[code]
	return ok
}

// Commands lists the registry ordered by code
func Commands() []Descriptor {
	out := make([]Descriptor, 0, len(registry))
	for _, d := range registry {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// extendable reports whether a primary status class is refined by a second byte
func extendable(cmd byte) bool {
	return uint16(cmd) == CmdControlChange || uint16(cmd) == CmdMeta
}
