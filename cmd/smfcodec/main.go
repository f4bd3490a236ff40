// Package main is the entry point for the smfcodec CLI
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/james-see/smfcodec/pkg/api"
	"github.com/james-see/smfcodec/pkg/converter"
	"github.com/james-see/smfcodec/pkg/logging"
	"github.com/james-see/smfcodec/pkg/sequence"
	"github.com/james-see/smfcodec/pkg/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	outputFile   string
	dumpFormat   string
	serverPort   int
	verbose      bool
	jobs         int
	strictNoteOn bool
	logFile      string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "smfcodec",
	Short: "Decode, inspect and re-encode Standard MIDI Files",
	Long: `smfcodec reads Standard MIDI Files into an event model where every
note carries its duration, and writes that model back as a valid file.

Examples:
  smfcodec convert song.mid -o song.json
  smfcodec roundtrip song.mid -o clean.mid
  smfcodec midi2syx song.mid -o patches.syx
  smfcodec dump song.mid --format yaml
  smfcodec verify song.mid
  smfcodec tui
  smfcodec serve --port 8080`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var convertCmd = &cobra.Command{
	Use:   "convert <input>",
	Short: "Convert a MIDI file based on the output extension",
	Long:  `Writes .mid by re-encoding the input, or .json/.yaml by dumping its event model.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

var roundtripCmd = &cobra.Command{
	Use:   "roundtrip <input.mid>",
	Short: "Decode and re-encode a MIDI file",
	Args:  cobra.ExactArgs(1),
	RunE:  runRoundTrip,
}

var midi2syxCmd = &cobra.Command{
	Use:   "midi2syx <input.mid>",
	Short: "Collect the SysEx messages of a MIDI file into a .syx dump",
	Args:  cobra.ExactArgs(1),
	RunE:  runMIDIToSyx,
}

var syx2midiCmd = &cobra.Command{
	Use:   "syx2midi <input.syx>",
	Short: "Wrap a .syx dump into a MIDI file",
	Args:  cobra.ExactArgs(1),
	RunE:  runSyxToMIDI,
}

var dumpCmd = &cobra.Command{
	Use:   "dump <input.mid>",
	Short: "Print the event model of a MIDI file",
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

var verifyCmd = &cobra.Command{
	Use:   "verify <input.mid>",
	Short: "Cross-check decoding against gomidi and test the round trip",
	Args:  cobra.ExactArgs(1),
	RunE:  runVerify,
}

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List the commands the decoder knows",
	Args:  cobra.NoArgs,
	RunE:  runCommands,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log codec diagnostics")
	rootCmd.PersistentFlags().IntVarP(&jobs, "jobs", "j", 1, "Tracks decoded or encoded in parallel")
	rootCmd.PersistentFlags().BoolVar(&strictNoteOn, "strict-note-on", false, "Treat NoteOn with velocity 0 as a note start")

	convertCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path (required)")
	_ = convertCmd.MarkFlagRequired("output")

	roundtripCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .mid file path")
	midi2syxCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .syx file path")
	syx2midiCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .mid file path")

	dumpCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path (default stdout)")
	dumpCmd.Flags().StringVarP(&dumpFormat, "format", "f", "json", "Dump format (json, yaml)")

	tuiCmd.Flags().StringVar(&logFile, "log-file", filepath.Join(os.TempDir(), "smfcodec.log"), "Log file path")

	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "Server port")

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(roundtripCmd)
	rootCmd.AddCommand(midi2syxCmd)
	rootCmd.AddCommand(syx2midiCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(commandsCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
}

func codecOptions() []sequence.Option {
	opts := []sequence.Option{sequence.WithConcurrency(jobs)}
	if strictNoteOn {
		opts = append(opts, sequence.WithStrictNoteOn())
	}
	return opts
}

func newConverter() (*converter.Converter, *zap.Logger) {
	logger := logging.New(verbose)
	return converter.New(logger, codecOptions()...), logger
}

func getOutputPath(input, defaultExt string) string {
	if outputFile != "" {
		return outputFile
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + defaultExt
}

func runConvert(cmd *cobra.Command, args []string) error {
	input := args[0]
	conv, logger := newConverter()
	defer func() { _ = logger.Sync() }()

	fmt.Printf("Converting %s -> %s\n", input, outputFile)
	if err := conv.ConvertFile(cmd.Context(), input, outputFile); err != nil {
		return err
	}
	fmt.Println("Conversion complete!")
	return nil
}

func runRoundTrip(cmd *cobra.Command, args []string) error {
	conv, logger := newConverter()
	defer func() { _ = logger.Sync() }()
	return convertWith(args[0], ".out.mid", conv.RoundTrip)
}

func runMIDIToSyx(cmd *cobra.Command, args []string) error {
	conv, logger := newConverter()
	defer func() { _ = logger.Sync() }()
	return convertWith(args[0], ".syx", conv.MIDIToSyx)
}

func runSyxToMIDI(cmd *cobra.Command, args []string) error {
	conv, logger := newConverter()
	defer func() { _ = logger.Sync() }()
	return convertWith(args[0], ".mid", conv.SyxToMIDI)
}

// convertWith reads input, runs fn over it and writes the result next to it
// unless -o was given
func convertWith(input, defaultExt string, fn func([]byte) ([]byte, error)) error {
	output := getOutputPath(input, defaultExt)

	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	result, err := fn(data)
	if err != nil {
		return err
	}

	if err := os.WriteFile(output, result, 0644); err != nil {
		return err
	}

	fmt.Printf("Converted %s -> %s\n", input, output)
	return nil
}

func runDump(cmd *cobra.Command, args []string) error {
	input := args[0]
	format := converter.Format(strings.ToLower(dumpFormat))
	if format == "yml" {
		format = converter.FormatYAML
	}

	conv, logger := newConverter()
	defer func() { _ = logger.Sync() }()

	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	result, err := conv.Dump(data, format)
	if err != nil {
		return err
	}

	if outputFile == "" {
		_, err = cmd.OutOrStdout().Write(result)
		return err
	}
	if err := os.WriteFile(outputFile, result, 0644); err != nil {
		return err
	}
	fmt.Printf("Dumped %s -> %s\n", input, outputFile)
	return nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	input := args[0]
	conv, logger := newConverter()
	defer func() { _ = logger.Sync() }()

	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	report, err := conv.Verify(data)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: format %d, %d tracks, division %d\n",
		input, report.Summary.Format, len(report.Summary.Tracks), report.Summary.Division)
	for i, t := range report.Summary.Tracks {
		fmt.Fprintf(out, "  track %2d: %5d events %5d notes %7d ticks\n", i, t.Events, t.Notes, t.Length)
	}
	for _, p := range report.Problems {
		fmt.Fprintf(out, "  problem: %s\n", p)
	}
	if !report.OK() {
		if !report.RoundTripOK {
			fmt.Fprintln(out, "  problem: round trip changed the sequence")
		}
		return fmt.Errorf("%s failed verification", input)
	}
	fmt.Fprintln(out, "OK")
	return nil
}

func runCommands(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	for _, d := range sequence.Commands() {
		code := fmt.Sprintf("0x%02X", d.Code)
		if d.Extended() {
			code = fmt.Sprintf("0x%04X", d.Code)
		}
		names := make([]string, len(d.Args))
		for i, a := range d.Args {
			names[i] = a.Name
		}
		fmt.Fprintf(out, "%-8s %-22s %s\n", code, d.Name, strings.Join(names, " "))
	}
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	// stderr belongs to the screen while the TUI runs
	logger, err := logging.NewFile(logFile, verbose)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	conv := converter.New(logger, codecOptions()...)
	return tui.Run(conv, logger)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := logging.NewProduction(verbose)
	defer func() { _ = logger.Sync() }()

	fmt.Printf("Starting API server on port %d...\n", serverPort)
	return api.StartServer(serverPort, logger, codecOptions()...)
}
