package sequence

import "fmt"

// readArgs decodes the arguments listed by d in order
func (e *Event) readArgs(c *cursor, d Descriptor) error {
	e.Args = make([]Arg, 0, len(d.Args))
	for _, spec := range d.Args {
		var (
			raw int
			err error
		)
		switch spec.Kind {
		case SpecByte:
			var b byte
			b, err = c.readByte()
			raw = int(b)
		case SpecShort:
			raw, err = c.readShort14()
		case SpecLength:
			raw, err = c.readVLQ()
		case SpecBlock:
			var block []byte
			if block, err = c.readBlock(e.length); err != nil {
				return fmt.Errorf("%s.%s: %w", d.Name, spec.Name, err)
			}
			e.Args = append(e.Args, BytesArg(block))
			continue
		}
		if err != nil {
			return fmt.Errorf("%s.%s: %w", d.Name, spec.Name, err)
		}
		if spec.Name == "Length" {
			e.length = raw
		}
		e.Args = append(e.Args, normalize(d.Name, spec, raw))
	}
	return nil
}

// writeArgs encodes the event arguments against d
func (e *Event) writeArgs(w *writer, d Descriptor) error {
	if len(e.Args) != len(d.Args) {
		return fmt.Errorf("%w: %s has %d arguments, want %d", ErrEncodeMismatch, d.Name, len(e.Args), len(d.Args))
	}
	for i, spec := range d.Args {
		a := e.Args[i]
		if spec.Kind == SpecBlock {
			if a.Kind != ArgBytes {
				return fmt.Errorf("%w: %s.%s wants a byte block", ErrEncodeMismatch, d.Name, spec.Name)
			}
			if len(a.Bytes) != e.length {
				return fmt.Errorf("%w: %s.%s holds %d bytes, Length says %d", ErrEncodeMismatch, d.Name, spec.Name, len(a.Bytes), e.length)
			}
			w.write(a.Bytes)
			continue
		}

		raw, err := denormalize(d.Name, spec, a)
		if err != nil {
			return err
		}
		if spec.Name == "Length" {
			e.length = raw
		}
		switch spec.Kind {
		case SpecByte:
			w.writeByte(byte(raw))
		case SpecShort:
			w.writeShort14(raw)
		case SpecLength:
			w.writeVLQ(raw)
		}
	}
	return w.err
}
