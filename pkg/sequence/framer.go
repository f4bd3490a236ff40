package sequence

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// chunk is a located MTrk body
type chunk struct {
	body []byte
	base int
}

// Decode parses a Standard MIDI File
func Decode(data []byte, opts ...Option) (*Sequence, error) {
	cfg := newConfig(opts)
	c := newCursor(data, 0)

	seq, err := readHeader(c)
	if err != nil {
		return nil, &DecodeError{Track: -1, Offset: c.off, Err: err}
	}

	chunks := make([]chunk, 0, seq.TrackCount)
	for len(chunks) < int(seq.TrackCount) {
		start := c.off
		if c.remaining() == 0 {
			return nil, &DecodeError{Track: len(chunks), Offset: start,
				Err: fmt.Errorf("%w: header declares %d tracks, found %d", ErrMalformedLength, seq.TrackCount, len(chunks))}
		}
		tag, err := c.readTag()
		if err != nil {
			return nil, &DecodeError{Track: len(chunks), Offset: start, Err: err}
		}
		length, err := c.readUint32()
		if err != nil {
			return nil, &DecodeError{Track: len(chunks), Offset: start, Err: err}
		}
		if err := c.need(int(length)); err != nil {
			return nil, &DecodeError{Track: len(chunks), Offset: start,
				Err: fmt.Errorf("chunk declares %d bytes: %w", length, err)}
		}
		body := data[c.off : c.off+int(length)]
		base := c.off
		c.off += int(length)

		if tag != TrackTag {
			cfg.logger.Debug("skipping chunk", zap.String("tag", tag), zap.Uint32("length", length))
			continue
		}
		chunks = append(chunks, chunk{body: body, base: base})
	}

	seq.Tracks = make([]*Track, len(chunks))
	if cfg.jobs > 1 && len(chunks) > 1 {
		var g errgroup.Group
		g.SetLimit(cfg.jobs)
		for i, ch := range chunks {
			g.Go(func() error {
				t, err := decodeTrack(i, ch, cfg)
				seq.Tracks[i] = t
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, ch := range chunks {
			t, err := decodeTrack(i, ch, cfg)
			if err != nil {
				return nil, err
			}
			seq.Tracks[i] = t
		}
	}

	cfg.logger.Debug("decoded sequence",
		zap.Uint16("format", seq.Format),
		zap.Int("tracks", len(seq.Tracks)),
		zap.Uint16("division", seq.Division))
	return seq, nil
}

// DecodeReader reads r to the end and decodes it
func DecodeReader(r io.Reader, opts ...Option) (*Sequence, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read sequence: %w", err)
	}
	return Decode(data, opts...)
}

func readHeader(c *cursor) (*Sequence, error) {
	tag, err := c.readTag()
	if err != nil {
		return nil, err
	}
	if tag != HeaderTag {
		return nil, fmt.Errorf("%w: tag %q", ErrBadHeader, tag)
	}
	length, err := c.readUint32()
	if err != nil {
		return nil, err
	}
	if length < HeaderLength {
		return nil, fmt.Errorf("%w: header length %d, want %d", ErrMalformedLength, length, HeaderLength)
	}

	seq := &Sequence{}
	if seq.Format, err = c.readUint16(); err != nil {
		return nil, err
	}
	if seq.TrackCount, err = c.readUint16(); err != nil {
		return nil, err
	}
	if seq.Division, err = c.readUint16(); err != nil {
		return nil, err
	}
	// longer headers are allowed; the extra bytes are not ours to read
	if extra := int(length) - HeaderLength; extra > 0 {
		if err := c.need(extra); err != nil {
			return nil, err
		}
		c.off += extra
	}
	return seq, nil
}

func decodeTrack(index int, ch chunk, cfg *config) (*Track, error) {
	t := &Track{}
	t.Reset()
	c := newCursor(ch.body, ch.base)

	for c.remaining() > 0 {
		start := c.off
		if err := t.decodeEvent(c, cfg); err != nil {
			return nil, &DecodeError{Track: index, Offset: ch.base + start, Err: err}
		}
	}

	if len(t.active) > 0 {
		cfg.logger.Debug("track ended with open notes",
			zap.Int("track", index),
			zap.Int("notes", len(t.active)),
			zap.Int("position", t.Position))
		t.closeAll(t.Position)
	}

	prev := 0
	for i := range t.Events {
		t.Events[i].Delta = t.Events[i].Position - prev
		prev = t.Events[i].Position
	}
	return t, nil
}

// decodeEvent reads one event and runs its note-duration hook. Note-offs are
// folded into their note-on and not stored.
func (t *Track) decodeEvent(c *cursor, cfg *config) error {
	delta, err := c.readVLQ()
	if err != nil {
		return err
	}
	t.Position += delta

	d, err := t.readCommand(c)
	if err != nil {
		return err
	}
	ev := Event{Delta: delta, Position: t.Position, Channel: NoChannel, Code: d.Code}
	if d.ChannelVoice() {
		ev.Channel = t.Channel
	}
	if err := ev.readArgs(c, d); err != nil {
		return err
	}
	if d.Unknown {
		cfg.logger.Debug("unknown command", zap.String("name", d.Name), zap.Int("position", ev.Position))
	}

	switch d.Callback {
	case CallbackNoteStart:
		if !cfg.strictNoteOn && isSilent(ev.Args[1]) {
			t.endNote(&ev, cfg)
			return nil
		}
		t.Events = append(t.Events, ev)
		t.noteStart(len(t.Events) - 1)
	case CallbackNoteEnd:
		t.endNote(&ev, cfg)
	case CallbackCloseAll:
		t.Events = append(t.Events, ev)
		t.closeAll(ev.Position)
	default:
		t.Events = append(t.Events, ev)
	}
	return nil
}

func (t *Track) endNote(ev *Event, cfg *config) {
	if !t.noteEnd(ev) {
		cfg.logger.Debug("unmatched note off", zap.Int("key", ev.Key()), zap.Int("position", ev.Position))
	}
}

// Encode writes seq to w. Track lengths are patched in after each track body
// is written, so w must support seeking back.
func Encode(w io.WriteSeeker, seq *Sequence, opts ...Option) error {
	cfg := newConfig(opts)

	hw := &writer{w: w}
	hw.write([]byte(HeaderTag))
	hw.writeUint32(HeaderLength)
	hw.writeUint16(seq.Format)
	hw.writeUint16(uint16(len(seq.Tracks)))
	hw.writeUint16(seq.Division)
	if hw.err != nil {
		return fmt.Errorf("failed to write header: %w", hw.err)
	}

	if cfg.jobs > 1 && len(seq.Tracks) > 1 {
		bufs := make([]*Buffer, len(seq.Tracks))
		var g errgroup.Group
		g.SetLimit(cfg.jobs)
		for i, t := range seq.Tracks {
			g.Go(func() error {
				b := NewBuffer()
				bufs[i] = b
				return encodeTrack(b, i, t, cfg)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		for _, b := range bufs {
			hw.write(b.Bytes())
		}
		if hw.err != nil {
			return fmt.Errorf("failed to write tracks: %w", hw.err)
		}
		return nil
	}

	for i, t := range seq.Tracks {
		if err := encodeTrack(w, i, t, cfg); err != nil {
			return err
		}
	}
	return nil
}

// Marshal encodes seq into a byte slice
func Marshal(seq *Sequence, opts ...Option) ([]byte, error) {
	b := NewBuffer()
	if err := Encode(b, seq, opts...); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func encodeTrack(w io.WriteSeeker, index int, t *Track, cfg *config) error {
	tw := &writer{w: w}
	tw.write([]byte(TrackTag))
	if tw.err != nil {
		return &EncodeError{Track: index, Event: -1, Err: tw.err}
	}
	lengthAt, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return &EncodeError{Track: index, Event: -1, Err: err}
	}
	tw.writeUint32(0)

	t.Reset()
	for i := range t.Events {
		if err := t.encodeEvent(tw, i); err != nil {
			return &EncodeError{Track: index, Event: i, Err: err}
		}
	}
	if err := t.flush(tw); err != nil {
		return &EncodeError{Track: index, Event: len(t.Events), Err: err}
	}
	if tw.err != nil {
		return &EncodeError{Track: index, Event: len(t.Events), Err: tw.err}
	}

	end, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return &EncodeError{Track: index, Event: -1, Err: err}
	}
	if _, err := w.Seek(lengthAt, io.SeekStart); err != nil {
		return &EncodeError{Track: index, Event: -1, Err: err}
	}
	tw.writeUint32(uint32(end - lengthAt - 4))
	if tw.err != nil {
		return &EncodeError{Track: index, Event: -1, Err: tw.err}
	}
	if _, err := w.Seek(end, io.SeekStart); err != nil {
		return &EncodeError{Track: index, Event: -1, Err: err}
	}

	cfg.logger.Debug("encoded track",
		zap.Int("track", index),
		zap.Int("events", len(t.Events)),
		zap.Int64("bytes", end-lengthAt-4))
	return nil
}

// encodeEvent writes the note-offs due before Events[i], then the event
func (t *Track) encodeEvent(w *writer, i int) error {
	ev := &t.Events[i]
	d := ev.Descriptor()
	if d.Callback == CallbackNoteEnd {
		// note-offs are rebuilt from durations
		return nil
	}
	if ev.Position < t.Position {
		return fmt.Errorf("%w: position %d before %d", ErrEncodeMismatch, ev.Position, t.Position)
	}

	delta, err := t.closeUntil(w, ev.Position)
	if err != nil {
		return err
	}
	w.writeVLQ(delta)
	t.writeCommand(w, d, ev.Channel)
	if err := ev.writeArgs(w, d); err != nil {
		return err
	}
	if d.Callback == CallbackNoteStart {
		return t.schedule(i)
	}
	return nil
}
