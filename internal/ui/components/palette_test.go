package components

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestParseCommand(t *testing.T) {
	t.Parallel()
	cmd, err := ParseCommand("  ADD Ordering coffee 12 ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cmd.Name != "add" || strings.Join(cmd.Args, "|") != "Ordering|coffee|12" {
		t.Fatalf("unexpected command %+v", cmd)
	}
	if _, err := ParseCommand("play"); err == nil || err.Error() != "usage: play <lesson-id>" {
		t.Fatalf("expected usage error, got %v", err)
	}
	if _, err := ParseCommand("rewind 10"); err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command, got %v", err)
	}
	if cmd, err := ParseCommand("   "); err != nil || cmd.Name != "" {
		t.Fatalf("blank line must parse to nothing, got %+v %v", cmd, err)
	}
}

func TestPaletteTabCompletesVerb(t *testing.T) {
	t.Parallel()
	p := NewPalette()
	p.Open()
	p.input.SetValue("com")

	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyTab})
	if got := p.input.Value(); got != "complete " {
		t.Fatalf("expected completion, got %q", got)
	}

	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if p.Visible() || cmd == nil {
		t.Fatalf("enter must close the palette and submit")
	}
	if msg, ok := cmd().(PaletteSubmitMsg); !ok || msg.Input != "complete" {
		t.Fatalf("unexpected submit %+v", msg)
	}
}

func TestPaletteSuggestionsFollowPrefix(t *testing.T) {
	t.Parallel()
	p := NewPalette()
	p.Open()
	p.input.SetValue("re")
	var names []string
	for _, s := range p.suggestions() {
		names = append(names, s.Name)
	}
	if strings.Join(names, ",") != "resume,reset,remove,refresh" {
		t.Fatalf("unexpected suggestions %v", names)
	}
	if !strings.Contains(p.View(), "reload queue and progress") {
		t.Fatalf("view must show summaries")
	}
}
