package sequence

// Equal reports whether two sequences hold the same header fields, events and
// timing. The declared track count and cursor state are not compared.
func (s *Sequence) Equal(o *Sequence) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.Format != o.Format || s.Division != o.Division || len(s.Tracks) != len(o.Tracks) {
		return false
	}
	for i := range s.Tracks {
		if !s.Tracks[i].Equal(o.Tracks[i]) {
			return false
		}
	}
	return true
}

// Equal compares the event lists of two tracks
func (t *Track) Equal(o *Track) bool {
	if t == nil || o == nil {
		return t == o
	}
	if len(t.Events) != len(o.Events) {
		return false
	}
	for i := range t.Events {
		if !t.Events[i].Equal(&o.Events[i]) {
			return false
		}
	}
	return true
}

// Equal compares two events field by field
func (e *Event) Equal(o *Event) bool {
	if e == nil || o == nil {
		return e == o
	}
	if e.Delta != o.Delta || e.Position != o.Position || e.Channel != o.Channel || e.Code != o.Code {
		return false
	}
	if e.Closed != o.Closed || e.Duration != o.Duration || !e.OffVelocity.Equal(o.OffVelocity) {
		return false
	}
	if len(e.Args) != len(o.Args) {
		return false
	}
	for i := range e.Args {
		if !e.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return true
}
