package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/james-see/smfcodec/pkg/converter"
)

var oneNote = []byte{
	'M', 'T', 'h', 'd', 0, 0, 0, 6, 0, 0, 0, 1, 0, 96,
	'M', 'T', 'r', 'k', 0, 0, 0, 11,
	0x00, 0x90, 0x3C, 0x40,
	0x64, 0x3C, 0x00,
	0x00, 0xFF, 0x2F, 0x00,
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestMenuNavigation(t *testing.T) {
	var m tea.Model = New(nil, nil)

	m, _ = m.Update(key("up"))
	if m.(Model).menuIndex != 0 {
		t.Errorf("menuIndex = %d after up at top, want 0", m.(Model).menuIndex)
	}
	for range menuItems {
		m, _ = m.Update(key("down"))
	}
	if got := m.(Model).menuIndex; got != len(menuItems)-1 {
		t.Errorf("menuIndex = %d, want %d", got, len(menuItems)-1)
	}

	// Exit is the last item
	_, cmd := m.Update(key("enter"))
	if cmd == nil {
		t.Fatal("selecting Exit returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("selecting Exit did not quit")
	}
}

func TestSelectOpensFilePicker(t *testing.T) {
	var m tea.Model = New(nil, nil)
	m, _ = m.Update(key("j"))
	m, _ = m.Update(key("enter"))

	model := m.(Model)
	if model.state != StateFilePicker {
		t.Fatalf("state = %v, want StateFilePicker", model.state)
	}
	if model.choice.Action != ActionJSON {
		t.Errorf("action = %q, want %q", model.choice.Action, ActionJSON)
	}
	if !strings.Contains(model.View(), "SELECT MIDI FILE") {
		t.Error("file picker view missing title")
	}

	m, _ = m.Update(key("esc"))
	if m.(Model).state != StateMenu {
		t.Errorf("esc: state = %v, want StateMenu", m.(Model).state)
	}

	// SYX -> MIDI sits above Exit and filters for .syx
	for range menuItems {
		m, _ = m.Update(key("down"))
	}
	m, _ = m.Update(key("k"))
	m, _ = m.Update(key("enter"))
	model = m.(Model)
	if model.choice.Action != ActionFromSyx {
		t.Fatalf("action = %q, want %q", model.choice.Action, ActionFromSyx)
	}
	if len(model.filePicker.AllowedTypes) != 1 || model.filePicker.AllowedTypes[0] != ".syx" {
		t.Errorf("AllowedTypes = %v", model.filePicker.AllowedTypes)
	}
}

func TestPerformConversion(t *testing.T) {
	input := filepath.Join(t.TempDir(), "one.mid")
	if err := os.WriteFile(input, oneNote, 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	tests := []struct {
		action Action
		output string
	}{
		{ActionRoundTrip, "one.out.mid"},
		{ActionJSON, "one.json"},
		{ActionYAML, "one.yaml"},
		{ActionToSyx, ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			m := New(converter.New(nil), nil)
			m.selectedFile = input
			m.choice = MenuItem{Action: tt.action}

			msg, ok := m.startJob()().(jobDoneMsg)
			if !ok {
				t.Fatal("startJob() did not return jobDoneMsg")
			}
			if tt.output == "" {
				// the fixture has no SysEx
				if msg.err == nil {
					t.Error("expected an error")
				}
				return
			}
			if msg.err != nil {
				t.Fatalf("conversion error = %v", msg.err)
			}
			if filepath.Base(msg.outputFile) != tt.output {
				t.Errorf("output = %s, want %s", msg.outputFile, tt.output)
			}
			if _, err := os.Stat(msg.outputFile); err != nil {
				t.Errorf("output not written: %v", err)
			}
		})
	}
}

func TestVerifyResult(t *testing.T) {
	input := filepath.Join(t.TempDir(), "one.mid")
	if err := os.WriteFile(input, oneNote, 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	m := New(nil, nil)
	m.selectedFile = input
	m.choice = menuItems[3]

	msg := m.startJob()()
	updated, _ := m.Update(msg)
	model := updated.(Model)
	if model.state != StateResult {
		t.Fatalf("state = %v, want StateResult", model.state)
	}
	if model.report == nil || !model.report.OK() {
		t.Fatalf("report = %+v, err = %v", model.report, model.err)
	}
	if !strings.Contains(model.View(), "VERIFIED") {
		t.Error("result view missing VERIFIED")
	}

	updated, _ = model.Update(key("enter"))
	if back := updated.(Model); back.state != StateMenu || back.report != nil {
		t.Error("enter did not reset to the menu")
	}
}

func TestErrorResult(t *testing.T) {
	var m tea.Model = New(nil, nil)
	m, _ = m.Update(jobDoneMsg{err: errors.New("bad header")})
	if view := m.View(); !strings.Contains(view, "bad header") {
		t.Errorf("error view = %q", view)
	}
}
