// Package converter drives the sequence codec over whole files: round-trips,
// event dumps and cross-checks against an independent MIDI parser.
package converter

import (
	"github.com/james-see/smfcodec/pkg/sequence"
	"go.uber.org/zap"
)

// Summary describes a decoded sequence
type Summary struct {
	Format   uint16         `json:"format" yaml:"format"`
	Division uint16         `json:"division" yaml:"division"`
	Tracks   []TrackSummary `json:"tracks" yaml:"tracks"`
}

// TrackSummary counts what one track holds
type TrackSummary struct {
	Events   int `json:"events" yaml:"events"`
	Notes    int `json:"notes" yaml:"notes"`
	Sounding int `json:"sounding" yaml:"sounding"` // notes with a velocity above 0
	Length   int `json:"length" yaml:"length"`     // ticks up to the last event or note end
	Channels int `json:"channels" yaml:"channels"`
}

// Report is the outcome of Verify
type Report struct {
	Summary        Summary  `json:"summary" yaml:"summary"`
	ReferenceNotes []int    `json:"referenceNotes" yaml:"referenceNotes"` // note starts per track seen by gomidi
	RoundTripOK    bool     `json:"roundTripOk" yaml:"roundTripOk"`
	Problems       []string `json:"problems,omitempty" yaml:"problems,omitempty"`
}

// OK reports whether Verify found nothing wrong
func (r *Report) OK() bool {
	return r.RoundTripOK && len(r.Problems) == 0
}

// Document is the serializable form of a sequence used by Dump
type Document struct {
	Format   uint16          `json:"format" yaml:"format"`
	Division uint16          `json:"division" yaml:"division"`
	Tracks   []TrackDocument `json:"tracks" yaml:"tracks"`
}

// TrackDocument lists the events of one track
type TrackDocument struct {
	Events []EventDocument `json:"events" yaml:"events"`
}

// EventDocument is one event with its arguments keyed by name
type EventDocument struct {
	Delta       int            `json:"delta" yaml:"delta"`
	Position    int            `json:"position" yaml:"position"`
	Channel     *int           `json:"channel,omitempty" yaml:"channel,omitempty"`
	Name        string         `json:"name" yaml:"name"`
	Code        string         `json:"code" yaml:"code"`
	Args        map[string]any `json:"args" yaml:"args"`
	Duration    *int           `json:"duration,omitempty" yaml:"duration,omitempty"`
	OffVelocity *float64       `json:"offVelocity,omitempty" yaml:"offVelocity,omitempty"`
}

// Converter handles file conversions
type Converter struct {
	logger *zap.Logger
	opts   []sequence.Option
}

// New creates a Converter. The codec options are applied to every decode and
// encode it runs.
func New(logger *zap.Logger, opts ...sequence.Option) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{logger: logger, opts: opts}
}

// GetOptions returns the codec options
func (c *Converter) GetOptions() []sequence.Option {
	return c.opts
}

// SetOptions replaces the codec options
func (c *Converter) SetOptions(opts ...sequence.Option) {
	c.opts = opts
}

func (c *Converter) codecOptions() []sequence.Option {
	return append([]sequence.Option{sequence.WithLogger(c.logger)}, c.opts...)
}
