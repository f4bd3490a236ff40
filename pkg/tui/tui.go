// Package tui provides a terminal user interface for smfcodec
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/james-see/smfcodec/pkg/converter"
	"go.uber.org/zap"
)

// Piano-roll color scheme
var (
	keyIvory  = lipgloss.Color("#F5F0E1")
	keyAmber  = lipgloss.Color("#FFB000")
	slateGray = lipgloss.Color("#9AA5B1")
	ebony     = lipgloss.Color("#1E1E24")

	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(keyIvory).
			Background(ebony).
			Padding(0, 2).
			MarginBottom(1)

	menuStyle = lipgloss.NewStyle().
			Foreground(slateGray).
			PaddingLeft(2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(keyIvory).
			Bold(true).
			PaddingLeft(2)

	statusStyle = lipgloss.NewStyle().
			Foreground(keyAmber).
			PaddingTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(keyIvory).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(keyIvory).
			Padding(1, 2)
)

// State represents the current TUI state
type State int

const (
	StateMenu State = iota
	StateFilePicker
	StateWorking
	StateResult
)

// Action is what the TUI does with the picked file
type Action string

const (
	ActionRoundTrip Action = "roundtrip"
	ActionJSON      Action = "json"
	ActionYAML      Action = "yaml"
	ActionVerify    Action = "verify"
	ActionToSyx     Action = "tosyx"
	ActionFromSyx   Action = "fromsyx"
	ActionExit      Action = ""
)

// MenuItem represents a menu option
type MenuItem struct {
	Title       string
	Description string
	Action      Action
}

var menuItems = []MenuItem{
	{Title: "MIDI → MIDI", Description: "Decode and re-encode a MIDI file", Action: ActionRoundTrip},
	{Title: "MIDI → JSON", Description: "Dump the event model as JSON", Action: ActionJSON},
	{Title: "MIDI → YAML", Description: "Dump the event model as YAML", Action: ActionYAML},
	{Title: "Verify", Description: "Check decoding against gomidi and the round trip", Action: ActionVerify},
	{Title: "MIDI → SYX", Description: "Collect the SysEx messages of a MIDI file", Action: ActionToSyx},
	{Title: "SYX → MIDI", Description: "Wrap a SysEx dump into a MIDI file", Action: ActionFromSyx},
	{Title: "Exit", Description: "Exit the application", Action: ActionExit},
}

var midiTypes = []string{".mid", ".midi", ".smf"}

// Model represents the TUI model
type Model struct {
	state        State
	menuIndex    int
	filePicker   filepicker.Model
	spinner      spinner.Model
	selectedFile string
	outputFile   string
	choice       MenuItem
	report       *converter.Report
	err          error
	width        int
	height       int

	conv   *converter.Converter
	logger *zap.Logger
}

// jobDoneMsg carries the outcome of a menu action
type jobDoneMsg struct {
	outputFile string
	report     *converter.Report
	err        error
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick)
}

// New creates a new TUI model
func New(conv *converter.Converter, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	if conv == nil {
		conv = converter.New(logger)
	}

	// Initialize file picker
	fp := filepicker.New()
	fp.AllowedTypes = midiTypes
	fp.CurrentDirectory, _ = os.Getwd()

	// Initialize spinner
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(keyIvory)

	return Model{
		state:      StateMenu,
		menuIndex:  0,
		filePicker: fp,
		spinner:    s,
		conv:       conv,
		logger:     logger,
	}
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle file picker state first - it needs to receive all messages
	if m.state == StateFilePicker {
		// Check for escape/quit keys first
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				m.state = StateMenu
				return m, nil
			case "q", "ctrl+c":
				return m, tea.Quit
			}
		}

		// Pass all other messages to the file picker
		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		// Check if file was selected
		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.selectedFile = path
			m.state = StateWorking
			return m, tea.Batch(m.spinner.Tick, m.startJob())
		}

		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filePicker.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case StateMenu:
			return m.updateMenu(msg)
		case StateResult:
			return m.updateResult(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case jobDoneMsg:
		m.state = StateResult
		m.outputFile = msg.outputFile
		m.report = msg.report
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.menuIndex > 0 {
			m.menuIndex--
		}
	case "down", "j":
		if m.menuIndex < len(menuItems)-1 {
			m.menuIndex++
		}
	case "enter":
		if m.menuIndex == len(menuItems)-1 {
			return m, tea.Quit
		}
		m.choice = menuItems[m.menuIndex]
		m.state = StateFilePicker

		// Set file picker filter based on input format
		if m.choice.Action == ActionFromSyx {
			m.filePicker.AllowedTypes = []string{".syx"}
		} else {
			m.filePicker.AllowedTypes = midiTypes
		}

		return m, m.filePicker.Init()
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.state = StateMenu
		m.err = nil
		m.report = nil
		m.selectedFile = ""
		m.outputFile = ""
		return m, nil
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) startJob() tea.Cmd {
	conv, logger := m.conv, m.logger
	input, action := m.selectedFile, m.choice.Action
	return func() tea.Msg {
		data, err := os.ReadFile(input)
		if err != nil {
			return jobDoneMsg{err: err}
		}

		var result []byte
		var outputExt string

		switch action {
		case ActionRoundTrip:
			result, err = conv.RoundTrip(data)
			outputExt = ".out.mid"
		case ActionJSON:
			result, err = conv.Dump(data, converter.FormatJSON)
			outputExt = ".json"
		case ActionYAML:
			result, err = conv.Dump(data, converter.FormatYAML)
			outputExt = ".yaml"
		case ActionToSyx:
			result, err = conv.MIDIToSyx(data)
			outputExt = ".syx"
		case ActionFromSyx:
			result, err = conv.SyxToMIDI(data)
			outputExt = ".mid"
		case ActionVerify:
			report, err := conv.Verify(data)
			return jobDoneMsg{report: report, err: err}
		}

		if err != nil {
			logger.Warn("conversion failed", zap.String("input", input), zap.Error(err))
			return jobDoneMsg{err: err}
		}

		// Generate output filename
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputFile := base + outputExt

		err = os.WriteFile(outputFile, result, 0644)
		if err != nil {
			return jobDoneMsg{err: err}
		}

		logger.Info("converted", zap.String("input", input), zap.String("output", outputFile))
		return jobDoneMsg{outputFile: outputFile}
	}
}

// View renders the TUI
func (m Model) View() string {
	var s strings.Builder

	// Header
	header := asciiLogo()
	s.WriteString(header)
	s.WriteString("\n")

	switch m.state {
	case StateMenu:
		s.WriteString(m.viewMenu())
	case StateFilePicker:
		s.WriteString(m.viewFilePicker())
	case StateWorking:
		s.WriteString(m.viewWorking())
	case StateResult:
		s.WriteString(m.viewResult())
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render(m.help()))

	return s.String()
}

func (m Model) help() string {
	switch m.state {
	case StateFilePicker:
		return "↑/↓: browse • enter: open • esc: back • q: quit"
	case StateWorking:
		return "working…"
	case StateResult:
		return "enter/esc: back to menu • q: quit"
	}
	return "↑/↓: navigate • enter: select • q: quit"
}

func (m Model) viewMenu() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SELECT ACTION "))
	s.WriteString("\n\n")

	for i, item := range menuItems {
		if i == m.menuIndex {
			s.WriteString(selectedStyle.Render(fmt.Sprintf("▸ %s", item.Title)))
			s.WriteString("\n")
			s.WriteString(lipgloss.NewStyle().Foreground(keyAmber).PaddingLeft(4).Render(item.Description))
		} else {
			s.WriteString(menuStyle.Render(fmt.Sprintf("  %s", item.Title)))
		}
		s.WriteString("\n")
	}

	return boxStyle.Render(s.String())
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	title := " SELECT MIDI FILE "
	if m.choice.Action == ActionFromSyx {
		title = " SELECT SYX FILE "
	}
	s.WriteString(titleStyle.Render(title))
	s.WriteString("\n\n")
	s.WriteString(m.filePicker.View())

	return s.String()
}

func (m Model) viewWorking() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" WORKING "))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("%s %s %s...\n", m.spinner.View(), m.choice.Title, filepath.Base(m.selectedFile)))
	s.WriteString(statusStyle.Render("  " + m.choice.Description))

	return boxStyle.Render(s.String())
}

func (m Model) viewResult() string {
	var s strings.Builder

	if m.err != nil {
		s.WriteString(titleStyle.Render(" ERROR "))
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s failed: %s", m.choice.Title, m.err.Error())))
	} else if m.report != nil {
		s.WriteString(m.viewReport())
	} else {
		s.WriteString(titleStyle.Render(" SUCCESS "))
		s.WriteString("\n\n")
		s.WriteString(successStyle.Render("✓ Done"))
		s.WriteString("\n\n")
		s.WriteString(fmt.Sprintf("Input:  %s\n", filepath.Base(m.selectedFile)))
		s.WriteString(fmt.Sprintf("Output: %s", filepath.Base(m.outputFile)))
	}

	return boxStyle.Render(s.String())
}

func (m Model) viewReport() string {
	var s strings.Builder
	r := m.report

	if r.OK() {
		s.WriteString(titleStyle.Render(" VERIFIED "))
		s.WriteString("\n\n")
		s.WriteString(successStyle.Render("✓ Decoding matches gomidi and the round trip is exact"))
	} else {
		s.WriteString(titleStyle.Render(" PROBLEMS "))
		s.WriteString("\n\n")
		for _, p := range r.Problems {
			s.WriteString(errorStyle.Render("✗ " + p))
			s.WriteString("\n")
		}
		if !r.RoundTripOK {
			s.WriteString(errorStyle.Render("✗ round trip changed the sequence"))
		}
	}
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("Format %d, division %d\n", r.Summary.Format, r.Summary.Division))
	for i, t := range r.Summary.Tracks {
		s.WriteString(fmt.Sprintf("Track %2d: %5d events %5d notes %7d ticks\n", i, t.Events, t.Notes, t.Length))
	}
	return s.String()
}

func asciiLogo() string {
	logo := `
  ┌─┬─┬┬─┬─┬─┬┬─┬┬─┬─┐
  │ │ ││ │ │ ││ ││ │ │  smfcodec
  │ └┬┘└┬┘ │ └┬┘└┬┘└┬┘  standard midi file codec
  │  │  │  │  │  │  │ │
  └──┴──┴──┴──┴──┴──┴─┘
`
	return lipgloss.NewStyle().Foreground(keyIvory).Render(logo)
}

// Run starts the TUI application
func Run(conv *converter.Converter, logger *zap.Logger) error {
	p := tea.NewProgram(New(conv, logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
