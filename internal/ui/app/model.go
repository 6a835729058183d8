package app

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	progressdto "commutecast/internal/modules/progress/dto"
	queuedto "commutecast/internal/modules/queue/dto"
	sessiondto "commutecast/internal/modules/session/dto"
	"commutecast/internal/ui/components"
	"commutecast/internal/ui/theme"
	heatmapview "commutecast/internal/ui/views/heatmap"
	todayview "commutecast/internal/ui/views/today"
)

// ─── ports ───────────────────────────────────────────────────────────────────

type SessionPort interface {
	Start(ctx context.Context, userID, device string, episode sessiondto.EpisodeInput) (sessiondto.StateOutput, error)
	Progress(ctx context.Context, seconds int) (sessiondto.StateOutput, error)
	Pause(ctx context.Context) (sessiondto.StateOutput, error)
	Resume(ctx context.Context) (sessiondto.StateOutput, error)
	Complete(ctx context.Context, userID string) (sessiondto.CompleteOutput, error)
	Reset(ctx context.Context) (sessiondto.StateOutput, error)
	Status(ctx context.Context) (sessiondto.StateOutput, error)
}

type QueuePort interface {
	Load(ctx context.Context, userID string) (queuedto.QueueOutput, error)
	Snapshot(ctx context.Context) (queuedto.QueueOutput, error)
	Add(ctx context.Context, userID string, lesson queuedto.LessonInput) (queuedto.QueueOutput, error)
	Remove(ctx context.Context, lessonID string) (queuedto.QueueOutput, error)
}

type ProgressPort interface {
	Dashboard(ctx context.Context, userID string) (progressdto.DashboardOutput, error)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabToday tabID = iota
	tabProgress
	tabCount
)

var tabLabels = [tabCount]string{"Today", "Progress"}

// ─── async messages ──────────────────────────────────────────────────────────

type tickMsg time.Time

type stateMsg struct {
	state sessiondto.StateOutput
	note  string
	err   error
}

type completedMsg struct {
	out sessiondto.CompleteOutput
	err error
}

type queueMsg struct {
	queue queuedto.QueueOutput
	err   error
}

type dashboardMsg struct {
	dashboard progressdto.DashboardOutput
	err       error
}

// ─── key bindings ────────────────────────────────────────────────────────────

type keyMap struct {
	Tab      key.Binding
	Play     key.Binding
	Toggle   key.Binding
	Complete key.Binding
	Refresh  key.Binding
	Help     key.Binding
	Palette  key.Binding
	Quit     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:      key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "switch tab")),
		Play:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play next lesson")),
		Toggle:   key.NewBinding(key.WithKeys(" ", "p"), key.WithHelp("space", "pause/resume")),
		Complete: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "complete")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette:  key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.Toggle, k.Complete, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Play, k.Toggle, k.Complete},
		{k.Tab, k.Refresh, k.Palette},
		{k.Help, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

type Options struct {
	UserID string
	Device string
	// Tick is how often the playing position advances by one second of
	// reported progress.
	Tick time.Duration
}

// Model is the root Bubble Tea model. It stands in for the external player:
// each tick while playing reports one more second of progress.
type Model struct {
	opts     Options
	session  SessionPort
	queue    QueuePort
	progress ProgressPort

	state     sessiondto.StateOutput
	lessons   queuedto.QueueOutput
	dashboard progressdto.DashboardOutput

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	status    string
	width     int
	height    int
}

func NewModel(opts Options, session SessionPort, queue QueuePort, progress ProgressPort) Model {
	if opts.Tick <= 0 {
		opts.Tick = time.Second
	}
	return Model{
		opts:     opts,
		session:  session,
		queue:    queue,
		progress: progress,
		keys:     defaultKeys(),
		help:     help.New(),
		palette:  components.NewPalette(),
		status:   "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.statusCmd(), m.loadQueueCmd(), m.dashboardCmd(), m.tickCmd())
}

// ─── update ──────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width

	case tickMsg:
		cmds := []tea.Cmd{m.tickCmd()}
		if m.state.IsPlaying {
			next := m.state.ProgressSeconds + 1
			if m.state.DurationSeconds > 0 && next >= m.state.DurationSeconds {
				cmds = append(cmds, tea.Sequence(m.progressCmd(m.state.DurationSeconds), m.completeCmd()))
			} else {
				cmds = append(cmds, m.progressCmd(next))
			}
		}
		return m, tea.Batch(cmds...)

	case stateMsg:
		if msg.err != nil {
			m.status = "playback: " + msg.err.Error()
			return m, nil
		}
		m.state = msg.state
		if msg.note != "" {
			m.status = msg.note
		}

	case completedMsg:
		if msg.err != nil {
			m.status = "could not save session, press c to retry: " + msg.err.Error()
			return m, nil
		}
		m.state = msg.out.State
		if msg.out.Completed {
			m.status = fmt.Sprintf("lesson complete, %d min today", msg.out.DayMinutes)
		}
		return m, tea.Batch(m.snapshotCmd(), m.dashboardCmd())

	case queueMsg:
		if msg.err != nil {
			m.status = "queue: " + msg.err.Error()
			return m, nil
		}
		m.lessons = msg.queue

	case dashboardMsg:
		if msg.err != nil {
			m.status = "progress: " + msg.err.Error()
			return m, nil
		}
		m.dashboard = msg.dashboard

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case msg.String() == "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
		case msg.String() == "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
		case key.Matches(msg, m.keys.Help):
			m.showHelp = true
		case key.Matches(msg, m.keys.Palette):
			return m, m.palette.Open()
		case key.Matches(msg, m.keys.Play):
			if lesson, ok := nextLesson(m.lessons); ok {
				return m, m.startCmd(lesson)
			}
			m.status = "nothing queued"
		case key.Matches(msg, m.keys.Toggle):
			return m, m.toggleCmd()
		case key.Matches(msg, m.keys.Complete):
			return m, m.completeCmd()
		case key.Matches(msg, m.keys.Refresh):
			return m, tea.Batch(m.loadQueueCmd(), m.dashboardCmd())
		}
	}
	return m, nil
}

// nextLesson picks the lesson enter should play: the daily lesson, else the
// head of the queue.
func nextLesson(q queuedto.QueueOutput) (queuedto.LessonOutput, bool) {
	if q.Daily != nil {
		return *q.Daily, true
	}
	if len(q.NextUp) > 0 {
		return q.NextUp[0], true
	}
	return queuedto.LessonOutput{}, false
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	contentH := max(1, m.height-lipgloss.Height(tabBar)-lipgloss.Height(statusBar))

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView()
	}
	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabToday:
		return lipgloss.JoinVertical(lipgloss.Left,
			theme.Pane.Render(todayview.Player(m.state)),
			theme.Pane.Render(todayview.Queue(m.lessons, 8)),
		)
	case tabProgress:
		return theme.Pane.Render(m.renderProgress())
	}
	return ""
}

func (m Model) renderProgress() string {
	d := m.dashboard
	week := fmt.Sprintf("%s %d%%  %s",
		theme.Title.Render("This week"),
		d.Week.Percentage,
		theme.Muted.Render(fmt.Sprintf("%d of %d commute minutes, %d learning days", d.Week.Minutes, d.Week.CommuteMinutes, d.Week.Lessons)),
	)
	bar := todayview.Bar(d.Week.Percentage, 100, 30)
	streak := fmt.Sprintf("%s %d days  %s",
		theme.Title.Render("Streak"),
		d.Streak.Current,
		theme.Muted.Render(fmt.Sprintf("longest %d, %d min total", d.Streak.Longest, d.KPIs.TotalMinutes)),
	)
	return lipgloss.JoinVertical(lipgloss.Left,
		week, bar, "", streak, "",
		theme.Title.Render("Consistency"),
		heatmapview.Render(d.Heatmap),
	)
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := " " + tabLabels[i] + " "
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(label)
		} else {
			parts[i] = theme.Muted.Render(label)
		}
	}
	bar := "commutecast  " + strings.Join(parts, theme.Muted.Render(" │ "))
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.state.IsPlaying {
		left = theme.Hot.Render("● "+m.state.EpisodeTitle) + "  " + left
	}
	right := theme.Muted.Render("enter:play  space:pause  c:complete  ?:help  q:quit")
	gap := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", gap) + right
}

// ─── palette ─────────────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	cmd, err := components.ParseCommand(input)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	switch cmd.Name {
	case "":
		m.status = "ready"
	case "play":
		for _, l := range slices.Concat(m.lessons.NextUp, deref(m.lessons.Daily)) {
			if l.ID == cmd.Args[0] {
				return m, m.startCmd(l)
			}
		}
		m.status = "unknown lesson " + cmd.Args[0]
	case "pause":
		return m, m.stateCmd("paused", m.session.Pause)
	case "resume":
		return m, m.stateCmd("resumed", m.session.Resume)
	case "complete":
		return m, m.completeCmd()
	case "reset":
		return m, m.stateCmd("playback reset", m.session.Reset)
	case "refresh":
		return m, tea.Batch(m.loadQueueCmd(), m.dashboardCmd())
	case "add":
		title, minutes := cmd.Args, 0
		if n, err := strconv.Atoi(title[len(title)-1]); err == nil && len(title) > 1 {
			title, minutes = title[:len(title)-1], n
		}
		lesson := queuedto.LessonInput{Title: strings.Join(title, " "), DurationMinutes: minutes}
		return m, func() tea.Msg {
			q, err := m.queue.Add(context.Background(), m.opts.UserID, lesson)
			return queueMsg{queue: q, err: err}
		}
	case "remove":
		id := cmd.Args[0]
		return m, func() tea.Msg {
			q, err := m.queue.Remove(context.Background(), id)
			return queueMsg{queue: q, err: err}
		}
	}
	return m, nil
}

func deref(l *queuedto.LessonOutput) []queuedto.LessonOutput {
	if l == nil {
		return nil
	}
	return []queuedto.LessonOutput{*l}
}

// ─── commands ────────────────────────────────────────────────────────────────

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.opts.Tick, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) statusCmd() tea.Cmd {
	return m.stateCmd("", m.session.Status)
}

func (m Model) stateCmd(note string, fn func(context.Context) (sessiondto.StateOutput, error)) tea.Cmd {
	return func() tea.Msg {
		state, err := fn(context.Background())
		return stateMsg{state: state, note: note, err: err}
	}
}

func (m Model) startCmd(lesson queuedto.LessonOutput) tea.Cmd {
	episode := sessiondto.EpisodeForLesson(lesson.ID, lesson.ContentRef, lesson.Title, lesson.DurationMinutes)
	return tea.Sequence(
		m.stateCmd("playing "+lesson.Title, func(ctx context.Context) (sessiondto.StateOutput, error) {
			return m.session.Start(ctx, m.opts.UserID, m.opts.Device, episode)
		}),
		m.snapshotCmd(),
	)
}

func (m Model) progressCmd(seconds int) tea.Cmd {
	return m.stateCmd("", func(ctx context.Context) (sessiondto.StateOutput, error) {
		return m.session.Progress(ctx, seconds)
	})
}

func (m Model) toggleCmd() tea.Cmd {
	if m.state.IsPlaying {
		return m.stateCmd("paused", m.session.Pause)
	}
	return m.stateCmd("resumed", m.session.Resume)
}

func (m Model) completeCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.Complete(context.Background(), m.opts.UserID)
		return completedMsg{out: out, err: err}
	}
}

func (m Model) loadQueueCmd() tea.Cmd {
	return func() tea.Msg {
		q, err := m.queue.Load(context.Background(), m.opts.UserID)
		return queueMsg{queue: q, err: err}
	}
}

func (m Model) snapshotCmd() tea.Cmd {
	return func() tea.Msg {
		q, err := m.queue.Snapshot(context.Background())
		return queueMsg{queue: q, err: err}
	}
}

func (m Model) dashboardCmd() tea.Cmd {
	if m.progress == nil {
		return nil
	}
	return func() tea.Msg {
		d, err := m.progress.Dashboard(context.Background(), m.opts.UserID)
		return dashboardMsg{dashboard: d, err: err}
	}
}
