package sequence

import (
	"fmt"
	"math"
)

// scaleTable marks the (event, argument) pairs that are normalized to [0,1].
// Pairs missing from the table keep their raw value.
var scaleTable = map[string]map[string]bool{
	"NoteOff":           {"Key": false, "Velocity": true, "Length": false},
	"NoteOn":            {"Key": false, "Velocity": true, "Length": false},
	"AfterTouch":        {"Key": false, "Velocity": true},
	"ControlChange":     {"Controller": false, "Value": true},
	"ProgramChange":     {"Program": false},
	"ChannelPressure":   {"Pressure": true},
	"PitchWheelChange":  {"Pitch": true},
	"SysEx":             {"Length": false, "Value": false},
	"SysEx7":            {"Length": false, "Value": false},
	"MetaEvent":         {"Type": false, "Length": false, "Value": false},
	"Bank Select":       {"Value": true},
	"Modulation wheel":  {"Value": true},
	"Breath control":    {"Value": true},
	"Foot controller":   {"Value": true},
	"PortamentoTime":    {"Value": true},
	"PitchBendRange":    {"Value": true},
	"Volume":            {"Value": true},
	"Balance":           {"Value": true},
	"Pan":               {"Value": true},
	"Expression":        {"Value": true},
	"MasterVolume":      {"Value": true},
	"Transpose":         {"Value": true},
	"Priority":          {"Value": true},
	"Tie":               {"Value": true},
	"ModDepth":          {"Value": true},
	"ModSpeed":          {"Value": true},
	"ModType":           {"Value": true},
	"ModRange":          {"Value": true},
	"PortamentoOnOff":   {"Value": true},
	"PortamentoControl": {"Value": true},
	"Attack":            {"Value": true},
	"Decay":             {"Value": true},
	"Sustain":           {"Value": true},
	"Release":           {"Value": true},
	"PolyOnOff":         {"Value": false},
	"PolyOn":            {"Value": true},
}

// Scaled reports whether the argument of the named event is normalized
func Scaled(event, arg string) bool {
	return scaleTable[event][arg]
}

// normalize maps a raw integer into the argument's [0,1] range when the
// scale table asks for it. A degenerate range yields Max.
func normalize(event string, spec ArgSpec, raw int) Arg {
	if !Scaled(event, spec.Name) {
		return IntArg(raw)
	}
	if spec.Min == spec.Max {
		return RealArg(float64(spec.Max))
	}
	return RealArg(float64(raw-spec.Min) / float64(spec.Max-spec.Min))
}

// denormalize is the inverse of normalize. Normalized values are rounded to
// the nearest raw integer and clamped to the argument range.
func denormalize(event string, spec ArgSpec, a Arg) (int, error) {
	if !Scaled(event, spec.Name) {
		if a.Kind != ArgInt {
			return 0, fmt.Errorf("%w: %s.%s wants a raw integer", ErrEncodeMismatch, event, spec.Name)
		}
		return a.Int, nil
	}
	if a.Kind != ArgReal {
		return 0, fmt.Errorf("%w: %s.%s wants a normalized value", ErrEncodeMismatch, event, spec.Name)
	}
	if spec.Min == spec.Max {
		return spec.Max, nil
	}
	raw := int(math.Round(a.Real*float64(spec.Max-spec.Min))) + spec.Min
	if raw < spec.Min {
		raw = spec.Min
	}
	if raw > spec.Max {
		raw = spec.Max
	}
	return raw, nil
}
