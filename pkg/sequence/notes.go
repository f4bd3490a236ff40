package sequence

import "fmt"

// noteStart opens the note-on stored at Events[index]
func (t *Track) noteStart(index int) {
	t.active = append(t.active, activeNote{index: index})
}

// noteEnd closes every active note sharing the key of end. Several open notes
// on the same key are all closed with the same duration. It reports whether
// anything matched.
func (t *Track) noteEnd(end *Event) bool {
	key := end.Key()
	matched := false
	kept := t.active[:0]
	for _, n := range t.active {
		start := &t.Events[n.index]
		if start.Key() != key {
			kept = append(kept, n)
			continue
		}
		start.Duration = end.Position - start.Position
		start.Closed = true
		if len(end.Args) > 1 {
			start.OffVelocity = end.Args[1]
		}
		matched = true
	}
	t.active = kept
	return matched
}

// closeAll ends every active note at position
func (t *Track) closeAll(position int) {
	off := silentVelocity()
	for _, n := range t.active {
		start := &t.Events[n.index]
		start.Duration = position - start.Position
		start.Closed = true
		start.OffVelocity = off
	}
	t.active = t.active[:0]
}

// silentVelocity is a zero note-off velocity in the form the model stores it
func silentVelocity() Arg {
	d := Lookup(CmdNoteOff)
	return normalize(d.Name, d.Args[1], 0)
}

func isSilent(a Arg) bool {
	switch a.Kind {
	case ArgReal:
		return a.Real == 0
	case ArgInt:
		return a.Int == 0
	}
	return false
}

// closeUntil moves the track cursor to target, writing a note-off for every
// active note that runs out on the way. It returns the delta time still owed
// to the next event written.
func (t *Track) closeUntil(w *writer, target int) (int, error) {
	next := target - t.Position
	pending := 0
	for {
		step := next
		for _, n := range t.active {
			if n.remaining < step {
				step = n.remaining
			}
		}
		next -= step
		pending += step
		t.Position += step

		kept := t.active[:0]
		for _, n := range t.active {
			n.remaining -= step
			if n.remaining > 0 {
				kept = append(kept, n)
				continue
			}
			if err := t.writeNoteEnd(w, pending, &t.Events[n.index]); err != nil {
				return 0, err
			}
			pending = 0
		}
		t.active = kept

		if next == 0 {
			return pending, nil
		}
	}
}

// writeNoteEnd emits the note-off paired with start
func (t *Track) writeNoteEnd(w *writer, delta int, start *Event) error {
	d := Lookup(CmdNoteOff)
	off := start.OffVelocity
	if off.Kind == ArgInt && off.Int == 0 && Scaled(d.Name, d.Args[1].Name) {
		// notes built by hand may leave OffVelocity unset
		off = silentVelocity()
	}
	end := Event{
		Position: t.Position,
		Channel:  start.Channel,
		Code:     CmdNoteOff,
		Args:     []Arg{IntArg(start.Key()), off},
	}

	w.writeVLQ(delta)
	t.writeCommand(w, d, end.Channel)
	return end.writeArgs(w, d)
}

// schedule queues the note-off of a written note-on
func (t *Track) schedule(index int) error {
	start := &t.Events[index]
	if !start.Closed {
		return nil
	}
	if start.Duration < 0 {
		return fmt.Errorf("%w: negative note duration %d", ErrEncodeMismatch, start.Duration)
	}
	t.active = append(t.active, activeNote{index: index, remaining: start.Duration})
	return nil
}

// flush writes the note-offs still pending after the last event
func (t *Track) flush(w *writer) error {
	if len(t.active) == 0 {
		return nil
	}
	last := 0
	for _, n := range t.active {
		if n.remaining > last {
			last = n.remaining
		}
	}
	_, err := t.closeUntil(w, t.Position+last)
	return err
}
