package converter

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	"github.com/james-see/smfcodec/pkg/sequence"
)

// Dump decodes MIDI data and renders the event model as JSON or YAML
func (c *Converter) Dump(data []byte, format Format) ([]byte, error) {
	seq, err := c.Decode(data)
	if err != nil {
		return nil, err
	}
	return Render(NewDocument(seq), format)
}

// Render serializes v in the requested format
func Render(v any, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to render JSON: %w", err)
		}
		return append(out, '\n'), nil
	case FormatYAML:
		out, err := yaml.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to render YAML: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported dump format: %s", format)
	}
}

// NewDocument builds the serializable form of seq
func NewDocument(seq *sequence.Sequence) *Document {
	doc := &Document{
		Format:   seq.Format,
		Division: seq.Division,
		Tracks:   make([]TrackDocument, 0, len(seq.Tracks)),
	}
	for _, t := range seq.Tracks {
		td := TrackDocument{Events: make([]EventDocument, 0, len(t.Events))}
		for i := range t.Events {
			td.Events = append(td.Events, eventDocument(&t.Events[i]))
		}
		doc.Tracks = append(doc.Tracks, td)
	}
	return doc
}

func eventDocument(ev *sequence.Event) EventDocument {
	d := ev.Descriptor()
	doc := EventDocument{
		Delta:    ev.Delta,
		Position: ev.Position,
		Name:     d.Name,
		Code:     codeString(d.Code),
		Args:     make(map[string]any, len(ev.Args)),
	}
	if ev.Channel != sequence.NoChannel {
		ch := ev.Channel
		doc.Channel = &ch
	}
	for i, a := range ev.Args {
		name := fmt.Sprintf("arg%d", i)
		if i < len(d.Args) {
			name = d.Args[i].Name
		}
		doc.Args[name] = argValue(a)
	}
	if ev.IsNoteStart() && ev.Closed {
		dur := ev.Duration
		doc.Duration = &dur
		if ev.OffVelocity.Kind == sequence.ArgReal {
			off := ev.OffVelocity.Real
			doc.OffVelocity = &off
		}
	}
	return doc
}

func argValue(a sequence.Arg) any {
	switch a.Kind {
	case sequence.ArgReal:
		return a.Real
	case sequence.ArgBytes:
		return fmt.Sprintf("% X", a.Bytes)
	default:
		return a.Int
	}
}

func codeString(code uint16) string {
	if code > 0xFF {
		return fmt.Sprintf("0x%04X", code)
	}
	return fmt.Sprintf("0x%02X", code)
}
