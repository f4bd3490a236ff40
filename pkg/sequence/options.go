package sequence

import "go.uber.org/zap"

type config struct {
	logger       *zap.Logger
	jobs         int
	strictNoteOn bool
}

// Option configures Decode and Encode
type Option func(*config)

// WithLogger sets the logger used for diagnostics such as unknown commands
// and unmatched note-offs.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithConcurrency processes up to n tracks in parallel
func WithConcurrency(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.jobs = n
		}
	}
}

// WithStrictNoteOn keeps NoteOn events with velocity 0 as note starts instead
// of reading them as note ends. Every NoteOn then opens a note, which is the
// literal pairing rule; a silent NoteOn gets a duration like any other note.
func WithStrictNoteOn() Option {
	return func(c *config) {
		c.strictNoteOn = true
	}
}

func newConfig(opts []Option) *config {
	c := &config{logger: zap.NewNop(), jobs: 1}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
