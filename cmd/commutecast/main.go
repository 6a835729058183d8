package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"commutecast/internal/bootstrap"
	queuedto "commutecast/internal/modules/queue/dto"
	sessiondto "commutecast/internal/modules/session/dto"
	"commutecast/internal/platform/config"
	apperrors "commutecast/internal/platform/errors"
	heatmapview "commutecast/internal/ui/views/heatmap"
	todayview "commutecast/internal/ui/views/today"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globalFlags struct {
	configPath string
	userID     string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "commutecast",
		Short:         "Commute learning sessions and progress",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "commutecast.yaml", "config file path")
	root.PersistentFlags().StringVar(&flags.userID, "user", "", "user id (overrides config)")

	root.AddCommand(newSessionCmd(flags))
	root.AddCommand(newQueueCmd(flags))
	root.AddCommand(newProgressCmd(flags))
	root.AddCommand(newDaemonCmd(flags))
	root.AddCommand(newTUICmd(flags))
	return root
}

// withApp builds the application, runs fn and always flushes background
// writes before returning.
func withApp(cmd *cobra.Command, flags *globalFlags, fn func(ctx context.Context, app *bootstrap.App) error) (err error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	if flags.userID != "" {
		cfg.UserID = flags.userID
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	app, err := bootstrap.New(ctx, cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := app.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(ctx, app)
}

func newTUICmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the commutecast terminal UI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(_ context.Context, app *bootstrap.App) error {
				return bootstrap.RunTUI(app)
			})
		},
	}
}

func newDaemonCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Refresh the daily lesson and progress on the commute schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()
				s, err := app.Schedule(ctx)
				if err != nil {
					return err
				}
				app.Logger.Info("daemon started", "cron", app.Config.Schedule.CommuteCron, "next", s.Next())
				s.Run(ctx)
				app.Logger.Info("daemon stopped")
				return nil
			})
		},
	}
}

// ─── session ─────────────────────────────────────────────────────────────────

func newSessionCmd(flags *globalFlags) *cobra.Command {
	session := &cobra.Command{Use: "session", Short: "Listening session lifecycle"}

	var lessonID, episodeID, title, device string
	var durationMinutes int
	start := &cobra.Command{
		Use:   "start (--lesson <id> | --episode <id>)",
		Short: "Start listening to a queued lesson or a bare episode",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(lessonID) == "" && strings.TrimSpace(episodeID) == "" {
				return fmt.Errorf("--lesson or --episode is required")
			}
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				episode := sessiondto.EpisodeInput{ID: episodeID, Title: title, DurationSeconds: durationMinutes * 60}
				if lessonID != "" {
					q, err := app.QueueCLI.Load(ctx, app.Config.UserID)
					if err != nil {
						return err
					}
					lesson, ok := findLesson(q, lessonID)
					if !ok {
						return fmt.Errorf("lesson %s is not queued", lessonID)
					}
					episode = sessiondto.EpisodeForLesson(lesson.ID, lesson.ContentRef, lesson.Title, lesson.DurationMinutes)
				}
				if device == "" {
					device = app.Config.Device
				}
				state, err := app.SessionCLI.Start(ctx, app.Config.UserID, device, episode)
				if err != nil {
					return retryHint("could not start session", err)
				}
				printState(cmd.OutOrStdout(), state)
				return nil
			})
		},
	}
	start.Flags().StringVar(&lessonID, "lesson", "", "queued lesson id")
	start.Flags().StringVar(&episodeID, "episode", "", "episode id when not playing a queued lesson")
	start.Flags().StringVar(&title, "title", "", "episode title")
	start.Flags().IntVar(&durationMinutes, "minutes", 0, "episode length in minutes")
	start.Flags().StringVar(&device, "device", "", "device name (defaults to config)")

	progress := &cobra.Command{
		Use:   "progress <seconds>",
		Short: "Report the playback position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var seconds int
			if _, err := fmt.Sscanf(args[0], "%d", &seconds); err != nil {
				return fmt.Errorf("invalid seconds %q", args[0])
			}
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				state, err := app.SessionCLI.Progress(ctx, seconds)
				if err != nil {
					return err
				}
				printState(cmd.OutOrStdout(), state)
				return nil
			})
		},
	}

	simple := func(use, short string, fn func(ctx context.Context, app *bootstrap.App) (sessiondto.StateOutput, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
					state, err := fn(ctx, app)
					if err != nil {
						return err
					}
					printState(cmd.OutOrStdout(), state)
					return nil
				})
			},
		}
	}

	complete := &cobra.Command{
		Use:   "complete",
		Short: "Complete the open session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.SessionCLI.Complete(ctx, app.Config.UserID)
				if err != nil {
					return retryHint("could not save session", err)
				}
				w := cmd.OutOrStdout()
				if !out.Completed {
					_, _ = fmt.Fprintln(w, "no open session")
					return nil
				}
				printState(w, out.State)
				if out.Day != "" {
					_, _ = fmt.Fprintf(w, "day %s: %d min learned\n", out.Day, out.DayMinutes)
				}
				if out.JournalRef != "" {
					_, _ = fmt.Fprintf(w, "journal: %s\n", out.JournalRef)
				}
				return nil
			})
		},
	}

	session.AddCommand(
		start,
		progress,
		simple("pause", "Pause playback", func(ctx context.Context, app *bootstrap.App) (sessiondto.StateOutput, error) {
			return app.SessionCLI.Pause(ctx)
		}),
		simple("resume", "Resume playback", func(ctx context.Context, app *bootstrap.App) (sessiondto.StateOutput, error) {
			return app.SessionCLI.Resume(ctx)
		}),
		complete,
		simple("status", "Show the playback state", func(ctx context.Context, app *bootstrap.App) (sessiondto.StateOutput, error) {
			return app.SessionCLI.Status(ctx)
		}),
		simple("reset", "Forget the current episode and session", func(ctx context.Context, app *bootstrap.App) (sessiondto.StateOutput, error) {
			return app.SessionCLI.Reset(ctx)
		}),
	)
	return session
}

func retryHint(what string, err error) error {
	if apperrors.Retryable(err) {
		return fmt.Errorf("%s, please retry: %w", what, err)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func printState(w io.Writer, state sessiondto.StateOutput) {
	_, _ = fmt.Fprintf(w, "status: %s\n", state.Status)
	if state.EpisodeID == "" {
		return
	}
	title := state.EpisodeTitle
	if title == "" {
		title = state.EpisodeID
	}
	_, _ = fmt.Fprintf(w, "episode: %s (%s)\n", title, state.EpisodeID)
	if state.Session != nil {
		_, _ = fmt.Fprintf(w, "session: %s started=%s\n", state.Session.ID, state.Session.StartedAt.Format("2006-01-02T15:04:05Z07:00"))
	}
	_, _ = fmt.Fprintf(w, "position: %s", todayview.Clock(state.ProgressSeconds))
	if state.DurationSeconds > 0 {
		_, _ = fmt.Fprintf(w, " / %s", todayview.Clock(state.DurationSeconds))
	}
	_, _ = fmt.Fprintln(w)
}

// ─── queue ───────────────────────────────────────────────────────────────────

func newQueueCmd(flags *globalFlags) *cobra.Command {
	queue := &cobra.Command{Use: "queue", Short: "Lesson queue"}

	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"load"},
		Short:   "Load the lesson queue and show today's lesson",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				q, err := app.QueueCLI.Load(ctx, app.Config.UserID)
				if err != nil {
					return err
				}
				printQueue(cmd.OutOrStdout(), q)
				return nil
			})
		},
	}

	var in queuedto.LessonInput
	add := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a lesson to the end of the queue",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Title = strings.Join(args, " ")
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				if _, err := app.QueueCLI.Load(ctx, app.Config.UserID); err != nil {
					return err
				}
				q, err := app.QueueCLI.Add(ctx, app.Config.UserID, in)
				if err != nil {
					return err
				}
				printQueue(cmd.OutOrStdout(), q)
				return nil
			})
		},
	}
	add.Flags().StringVar(&in.ID, "id", "", "lesson id (generated when empty)")
	add.Flags().StringVar(&in.Date, "date", "", "scheduled day YYYY-MM-DD")
	add.Flags().IntVar(&in.DurationMinutes, "minutes", 0, "length in minutes")
	add.Flags().StringVar(&in.Category, "category", "", "category")
	add.Flags().StringVar(&in.Difficulty, "difficulty", "", "difficulty")
	add.Flags().StringVar(&in.ContentRef, "content", "", "episode or audio reference")
	add.Flags().StringVar(&in.PlanID, "plan", "", "plan id")

	complete := &cobra.Command{
		Use:   "complete <lesson-id>",
		Short: "Mark a lesson complete",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				if _, err := app.QueueCLI.Load(ctx, app.Config.UserID); err != nil {
					return err
				}
				q, err := app.QueueCLI.Complete(ctx, app.Config.UserID, args[0])
				if err != nil {
					return err
				}
				printQueue(cmd.OutOrStdout(), q)
				return nil
			})
		},
	}

	queue.AddCommand(list, add, complete)
	return queue
}

func printQueue(w io.Writer, q queuedto.QueueOutput) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if q.Daily != nil {
		_, _ = fmt.Fprintf(tw, "daily\t%s\t%s\t%d min\t%s\n", q.Daily.ID, q.Daily.Title, q.Daily.DurationMinutes, q.Daily.Date)
	} else {
		_, _ = fmt.Fprintln(tw, "daily\t-")
	}
	for i, l := range q.NextUp {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%d min\t%s\n", i+1, l.ID, l.Title, l.DurationMinutes, l.Date)
	}
	_, _ = fmt.Fprintf(tw, "completed\t%d\n", len(q.Completed))
	_ = tw.Flush()
}

func findLesson(q queuedto.QueueOutput, id string) (queuedto.LessonOutput, bool) {
	for _, l := range []*queuedto.LessonOutput{q.Daily, q.Current} {
		if l != nil && l.ID == id {
			return *l, true
		}
	}
	for _, l := range q.NextUp {
		if l.ID == id {
			return l, true
		}
	}
	return queuedto.LessonOutput{}, false
}

// ─── progress ────────────────────────────────────────────────────────────────

func newProgressCmd(flags *globalFlags) *cobra.Command {
	progress := &cobra.Command{Use: "progress", Short: "Learning progress"}

	var date string
	var commute int
	week := &cobra.Command{
		Use:   "week",
		Short: "Weekly commute efficiency",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.ProgressCLI.Week(ctx, app.Config.UserID, date, commute)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "week %s..%s: %d%% of %d commute minutes (%d min, %d learning days, %d lessons)\n",
					out.From, out.To, out.Percentage, out.CommuteMinutes, out.Minutes, out.Lessons, out.LessonsCompleted)
				return nil
			})
		},
	}
	week.Flags().StringVar(&date, "date", "", "any day in the week, YYYY-MM-DD (default today)")
	week.Flags().IntVar(&commute, "commute-minutes", 0, "weekly commute minutes (default from config)")

	var weeks int
	heatmap := &cobra.Command{
		Use:   "heatmap",
		Short: "Consistency heatmap",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.ProgressCLI.Heatmap(ctx, app.Config.UserID, weeks)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), heatmapview.Render(out))
				return nil
			})
		},
	}
	heatmap.Flags().IntVar(&weeks, "weeks", 0, "weeks to show (default from config)")

	streak := &cobra.Command{
		Use:   "streak",
		Short: "Current and longest streak",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				s, err := app.ProgressCLI.Streak(ctx, app.Config.UserID)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(w, "current: %d days\nlongest: %d days\n", s.Current, s.Longest)
				if s.LastActive != "" {
					_, _ = fmt.Fprintf(w, "last active: %s\n", s.LastActive)
				}
				return nil
			})
		},
	}

	dashboard := &cobra.Command{
		Use:   "dashboard",
		Short: "Week, streak, totals and heatmap in one view",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				d, err := app.ProgressCLI.Dashboard(ctx, app.Config.UserID)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(w, "this week: %d%% (%d of %d commute minutes)\n", d.Week.Percentage, d.Week.Minutes, d.Week.CommuteMinutes)
				_, _ = fmt.Fprintf(w, "streak: %d days (longest %d)\n", d.Streak.Current, d.Streak.Longest)
				_, _ = fmt.Fprintf(w, "total: %d min, %d lessons, %d active days\n\n", d.KPIs.TotalMinutes, d.KPIs.TotalLessons, d.KPIs.DaysActive)
				_, _ = fmt.Fprintln(w, heatmapview.Render(d.Heatmap))
				return nil
			})
		},
	}

	progress.AddCommand(week, heatmap, streak, dashboard)
	return progress
}
