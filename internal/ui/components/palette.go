package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"commutecast/internal/ui/theme"
)

// CommandSpec describes one palette verb.
type CommandSpec struct {
	Name    string
	Usage   string
	Summary string
	MinArgs int
}

// Commands lists the palette verbs the dashboard understands.
var Commands = []CommandSpec{
	{Name: "play", Usage: "play <lesson-id>", Summary: "start a queued lesson", MinArgs: 1},
	{Name: "pause", Usage: "pause", Summary: "pause playback"},
	{Name: "resume", Usage: "resume", Summary: "resume playback"},
	{Name: "complete", Usage: "complete", Summary: "finish the session"},
	{Name: "reset", Usage: "reset", Summary: "drop the current episode"},
	{Name: "add", Usage: "add <title> [minutes]", Summary: "append a lesson", MinArgs: 1},
	{Name: "remove", Usage: "remove <lesson-id>", Summary: "drop a queued lesson", MinArgs: 1},
	{Name: "refresh", Usage: "refresh", Summary: "reload queue and progress"},
}

// Command is a parsed palette line.
type Command struct {
	Name string
	Args []string
}

// ParseCommand splits input into a known verb and its arguments. An empty
// line yields the zero Command and no error.
func ParseCommand(input string) (Command, error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return Command{}, nil
	}
	name := strings.ToLower(fields[0])
	for _, spec := range Commands {
		if spec.Name != name {
			continue
		}
		if len(fields)-1 < spec.MinArgs {
			return Command{}, fmt.Errorf("usage: %s", spec.Usage)
		}
		return Command{Name: name, Args: fields[1:]}, nil
	}
	return Command{}, fmt.Errorf("unknown command: %s", fields[0])
}

// PaletteSubmitMsg is emitted when the user confirms a line.
type PaletteSubmitMsg struct{ Input string }

// PaletteCancelMsg is emitted when the user presses esc.
type PaletteCancelMsg struct{}

const maxSuggestions = 5

var (
	paletteStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Peach).
			Background(theme.Mantle).
			Foreground(theme.Text).
			Padding(0, 1)

	usageStyle   = lipgloss.NewStyle().Foreground(theme.Lavender)
	summaryStyle = lipgloss.NewStyle().Foreground(theme.Subtext0)
)

// Palette is the ":" overlay for typed commands.
type Palette struct {
	input   textinput.Model
	visible bool
	width   int
}

func NewPalette() Palette {
	ti := textinput.New()
	ti.Placeholder = "play, add, refresh…"
	ti.CharLimit = 200
	return Palette{input: ti}
}

func (p Palette) Visible() bool { return p.visible }

// Open shows an empty palette and focuses it.
func (p *Palette) Open() tea.Cmd {
	p.visible = true
	p.input.SetValue("")
	return p.input.Focus()
}

func (p *Palette) SetWidth(w int) { p.width = w }

func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc":
			p.close()
			return p, func() tea.Msg { return PaletteCancelMsg{} }
		case "enter":
			line := strings.TrimSpace(p.input.Value())
			p.close()
			return p, func() tea.Msg { return PaletteSubmitMsg{Input: line} }
		case "tab":
			if s := p.suggestions(); len(s) > 0 && !strings.Contains(p.input.Value(), " ") {
				p.input.SetValue(s[0].Name + " ")
				p.input.CursorEnd()
			}
			return p, nil
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p *Palette) close() {
	p.visible = false
	p.input.Blur()
}

// suggestions returns the verbs matching the word typed so far.
func (p Palette) suggestions() []CommandSpec {
	verb := strings.ToLower(strings.TrimLeft(p.input.Value(), " "))
	if i := strings.IndexByte(verb, ' '); i >= 0 {
		verb = verb[:i]
	}
	var out []CommandSpec
	for _, spec := range Commands {
		if strings.HasPrefix(spec.Name, verb) {
			out = append(out, spec)
			if len(out) == maxSuggestions {
				break
			}
		}
	}
	return out
}

func (p Palette) View() string {
	if !p.visible {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Command") + "\n")
	sb.WriteString(": " + p.input.View() + "\n")
	if s := p.suggestions(); len(s) > 0 {
		sb.WriteString("\n")
		for _, spec := range s {
			sb.WriteString("  " + usageStyle.Render(fmt.Sprintf("%-22s", spec.Usage)) + summaryStyle.Render(spec.Summary) + "\n")
		}
	}
	w := p.width
	if w < 20 {
		w = 64
	}
	return paletteStyle.Width(w - 2).Render(sb.String())
}
