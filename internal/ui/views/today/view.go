// Package today renders the player card and the lesson queue.
package today

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	queuedto "commutecast/internal/modules/queue/dto"
	sessiondto "commutecast/internal/modules/session/dto"
	"commutecast/internal/ui/theme"
)

const barWidth = 30

// Player renders the current episode with a progress bar.
func Player(state sessiondto.StateOutput) string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Now playing") + "\n")
	if state.EpisodeID == "" {
		sb.WriteString(theme.Muted.Render("nothing selected, press enter to play the daily lesson"))
		return sb.String()
	}
	title := state.EpisodeTitle
	if title == "" {
		title = state.EpisodeID
	}
	sb.WriteString(title + "  " + statusBadge(state) + "\n")
	sb.WriteString(Bar(state.ProgressSeconds, state.DurationSeconds, barWidth) + " ")
	sb.WriteString(theme.Muted.Render(Clock(state.ProgressSeconds)))
	if state.DurationSeconds > 0 {
		sb.WriteString(theme.Muted.Render(" / " + Clock(state.DurationSeconds)))
	}
	return sb.String()
}

// Queue renders the daily lesson, the next-up list and a completed count.
func Queue(q queuedto.QueueOutput, limit int) string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Today") + "\n")
	if q.Daily != nil {
		sb.WriteString(theme.Hot.Render("★ ") + lessonLine(*q.Daily) + "\n")
	} else {
		sb.WriteString(theme.Muted.Render("no daily lesson") + "\n")
	}
	sb.WriteString("\n" + theme.Title.Render("Next up") + "\n")
	if len(q.NextUp) == 0 {
		sb.WriteString(theme.Muted.Render("queue is empty") + "\n")
	}
	for i, l := range q.NextUp {
		if limit > 0 && i == limit {
			sb.WriteString(theme.Muted.Render(fmt.Sprintf("… %d more", len(q.NextUp)-limit)) + "\n")
			break
		}
		marker := "  "
		if q.Current != nil && q.Current.ID == l.ID {
			marker = theme.Hot.Render("▶ ")
		}
		sb.WriteString(marker + lessonLine(l) + "\n")
	}
	sb.WriteString("\n" + theme.Muted.Render(fmt.Sprintf("%d completed", len(q.Completed))))
	return sb.String()
}

// Bar draws a fixed width progress bar. An unknown duration renders empty.
func Bar(progress, duration, width int) string {
	filled := 0
	if duration > 0 {
		filled = min(width, progress*width/duration)
	}
	return lipgloss.NewStyle().Foreground(theme.Green).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(theme.Surface1).Render(strings.Repeat("░", width-filled))
}

// Clock formats seconds as m:ss.
func Clock(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func statusBadge(state sessiondto.StateOutput) string {
	switch {
	case state.IsPlaying:
		return lipgloss.NewStyle().Foreground(theme.Green).Render("● playing")
	case state.Status == "completed":
		return lipgloss.NewStyle().Foreground(theme.Sapphire).Render("✓ completed")
	case state.Status == "paused":
		return theme.Hot.Render("❚❚ paused")
	default:
		return theme.Muted.Render(state.Status)
	}
}

func lessonLine(l queuedto.LessonOutput) string {
	line := l.Title
	if l.DurationMinutes > 0 {
		line += theme.Muted.Render(fmt.Sprintf("  %d min", l.DurationMinutes))
	}
	if l.Category != "" {
		line += theme.Muted.Render("  #" + l.Category)
	}
	return line
}
