package converter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/james-see/smfcodec/pkg/sequence"
	"go.uber.org/zap"
)

// Format represents a file format
type Format string

const (
	FormatMIDI    Format = "midi"
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatSyx     Format = "syx"
	FormatUnknown Format = "unknown"
)

// DetectFormat detects the format of a file based on extension
func DetectFormat(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".mid", ".midi", ".smf":
		return FormatMIDI
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".syx":
		return FormatSyx
	default:
		return FormatUnknown
	}
}

// DetectFormatFromContent detects format from file content
func DetectFormatFromContent(data []byte) Format {
	if len(data) < 4 {
		return FormatUnknown
	}

	// Check for MIDI file signature "MThd"
	if string(data[:4]) == sequence.HeaderTag {
		return FormatMIDI
	}

	// SysEx dumps start with 0xF0
	if data[0] == SysExStart {
		return FormatSyx
	}
	return FormatUnknown
}

// ConvertFile decodes a MIDI file and writes it in the format implied by the
// output extension: .mid re-encodes it, .json and .yaml dump the event model
// and .syx collects its SysEx messages. A .syx input is wrapped into a .mid.
func (c *Converter) ConvertFile(ctx context.Context, inputPath, outputPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	inputFormat := DetectFormat(inputPath)
	if inputFormat == FormatUnknown {
		inputFormat = DetectFormatFromContent(data)
	}
	outputFormat := DetectFormat(outputPath)
	if outputFormat == FormatUnknown {
		return errors.New("cannot determine output format from filename")
	}

	var outputData []byte
	switch {
	case inputFormat == FormatMIDI && outputFormat == FormatMIDI:
		outputData, err = c.RoundTrip(data)
	case inputFormat == FormatMIDI && (outputFormat == FormatJSON || outputFormat == FormatYAML):
		outputData, err = c.Dump(data, outputFormat)
	case inputFormat == FormatMIDI && outputFormat == FormatSyx:
		outputData, err = c.MIDIToSyx(data)
	case inputFormat == FormatSyx && outputFormat == FormatMIDI:
		outputData, err = c.SyxToMIDI(data)
	default:
		return fmt.Errorf("unsupported conversion: %s -> %s", inputFormat, outputFormat)
	}
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, outputData, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	c.logger.Info("converted",
		zap.String("input", inputPath),
		zap.String("output", outputPath),
		zap.String("format", string(outputFormat)),
		zap.Int("bytes", len(outputData)))
	return nil
}

// Decode parses MIDI data into a sequence
func (c *Converter) Decode(data []byte) (*sequence.Sequence, error) {
	seq, err := sequence.Decode(data, c.codecOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse MIDI: %w", err)
	}
	return seq, nil
}

// Encode writes a sequence as MIDI data
func (c *Converter) Encode(seq *sequence.Sequence) ([]byte, error) {
	data, err := sequence.Marshal(seq, c.codecOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to write MIDI: %w", err)
	}
	return data, nil
}

// RoundTrip decodes MIDI data and encodes it again. The result plays the
// same but does not use running status.
func (c *Converter) RoundTrip(data []byte) ([]byte, error) {
	seq, err := c.Decode(data)
	if err != nil {
		return nil, err
	}
	return c.Encode(seq)
}

// GetSupportedConversions returns a list of supported conversion paths
func GetSupportedConversions() []string {
	return []string{
		"midi -> midi",
		"midi -> json",
		"midi -> yaml",
		"midi -> syx",
		"syx -> midi",
	}
}
