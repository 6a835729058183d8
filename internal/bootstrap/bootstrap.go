package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	progressinadapter "commutecast/internal/modules/progress/adapter/in"
	progressoutadapter "commutecast/internal/modules/progress/adapter/out"
	progressdto "commutecast/internal/modules/progress/dto"
	progressout "commutecast/internal/modules/progress/port/out"
	progressservice "commutecast/internal/modules/progress/service"
	progressusecase "commutecast/internal/modules/progress/usecase"
	queueinadapter "commutecast/internal/modules/queue/adapter/in"
	queueoutadapter "commutecast/internal/modules/queue/adapter/out"
	queuedto "commutecast/internal/modules/queue/dto"
	queueout "commutecast/internal/modules/queue/port/out"
	queueservice "commutecast/internal/modules/queue/service"
	queueusecase "commutecast/internal/modules/queue/usecase"
	sessioninadapter "commutecast/internal/modules/session/adapter/in"
	sessionoutadapter "commutecast/internal/modules/session/adapter/out"
	sessionout "commutecast/internal/modules/session/port/out"
	sessionservice "commutecast/internal/modules/session/service"
	sessionusecase "commutecast/internal/modules/session/usecase"
	"commutecast/internal/platform/async"
	"commutecast/internal/platform/clock"
	"commutecast/internal/platform/config"
	"commutecast/internal/platform/id"
	"commutecast/internal/platform/logging"
	"commutecast/internal/platform/restapi"
	"commutecast/internal/platform/schedule"
	"commutecast/internal/platform/sqldb"
	uiapp "commutecast/internal/ui/app"
)

type App struct {
	Config      config.Config
	Logger      *slog.Logger
	QueueCLI    queueinadapter.CLIHandler
	SessionCLI  sessioninadapter.CLIHandler
	ProgressCLI progressinadapter.CLIHandler

	dispatcher *async.Dispatcher
	db         *sqldb.DB
}

type stores struct {
	lessons  queueout.LessonStore
	sessions sessionout.SessionStore
	history  progressout.HistoryStore
}

func New(ctx context.Context, cfg config.Config, logOut io.Writer) (*App, error) {
	logger := logging.New(logOut, cfg.Logging.Level, cfg.Logging.Format)
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	clk := clock.SystemClock{}
	ids := id.UUID{}

	app := &App{Config: cfg, Logger: logger, dispatcher: async.NewDispatcher(logger, 64)}
	st, err := app.openStores(ctx, ids)
	if err != nil {
		return nil, err
	}

	queueUC := queueusecase.NewInteractor(queueservice.NewQueueManager(clk), st.lessons, clk, ids, logger)

	journalDir := cfg.JournalDir
	if journalDir == "" {
		journalDir = filepath.Join(cfg.DataDir, "journal")
	}
	sessionUC := sessionusecase.NewInteractor(
		sessionservice.NewSessionManager(clk, st.sessions, app.dispatcher, logger, cfg.Source),
		queueUC,
		sessionoutadapter.NewFileActiveSessionStore(cfg.DataDir),
		sessionoutadapter.NewMarkdownJournal(journalDir),
		logger,
	)

	progressUC := progressusecase.NewInteractor(
		progressservice.NewAggregator(progressservice.Options{
			WeeksToShow:    cfg.Progress.WeeksToShow,
			GoalMinutes:    cfg.Progress.GoalMinutes,
			CommuteMinutes: cfg.Progress.WeeklyCommuteMinutes,
		}),
		st.history,
		clk,
		logger,
	)

	app.QueueCLI = queueinadapter.NewCLIHandler(queueUC)
	app.SessionCLI = sessioninadapter.NewCLIHandler(sessionUC)
	app.ProgressCLI = progressinadapter.NewCLIHandler(progressUC)
	return app, nil
}

func (a *App) openStores(ctx context.Context, ids id.Generator) (stores, error) {
	switch a.Config.Backend {
	case config.BackendREST:
		client := restapi.New(restapi.Options{
			BaseURL: a.Config.REST.BaseURL,
			APIKey:  a.Config.REST.APIKey,
			Timeout: a.Config.REST.Timeout,
			Retries: a.Config.REST.Retries,
		})
		return stores{
			lessons:  queueoutadapter.NewRESTLessonStore(client),
			sessions: sessionoutadapter.NewRESTSessionStore(client),
			history:  progressoutadapter.NewRESTHistoryStore(client),
		}, nil
	default:
		dialect, dsn := sqldb.DialectSQLite, a.Config.DBPath()
		if a.Config.Backend == config.BackendPostgres {
			dialect, dsn = sqldb.DialectPostgres, a.Config.Database.DSN
		}
		db, err := sqldb.Open(ctx, dialect, dsn)
		if err != nil {
			return stores{}, fmt.Errorf("open %s store: %w", dialect, err)
		}
		a.db = db
		return stores{
			lessons:  queueoutadapter.NewSQLLessonStore(db, ids),
			sessions: sessionoutadapter.NewSQLSessionStore(db, ids),
			history:  progressoutadapter.NewSQLHistoryStore(db),
		}, nil
	}
}

type Snapshot struct {
	Queue     queuedto.QueueOutput
	Dashboard progressdto.DashboardOutput
}

// Hydrate loads the lesson queue and the progress dashboard in parallel.
func (a *App) Hydrate(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		q, err := a.QueueCLI.Load(ctx, a.Config.UserID)
		snap.Queue = q
		return err
	})
	g.Go(func() error {
		d, err := a.ProgressCLI.Dashboard(ctx, a.Config.UserID)
		snap.Dashboard = d
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Schedule registers the commute refresh that reloads the queue and the
// dashboard so the daily lesson tracks the calendar day.
func (a *App) Schedule(ctx context.Context) (*schedule.Scheduler, error) {
	s := schedule.New(a.Config.Schedule.Timezone, a.Logger)
	err := s.Add(ctx, "commute-refresh", a.Config.Schedule.CommuteCron, func(ctx context.Context) error {
		snap, err := a.Hydrate(ctx)
		if err != nil {
			return err
		}
		daily := ""
		if snap.Queue.Daily != nil {
			daily = snap.Queue.Daily.Title
		}
		a.Logger.Info("commute refresh",
			"user", a.Config.UserID,
			"daily", daily,
			"queued", len(snap.Queue.NextUp),
			"week_percentage", snap.Dashboard.Week.Percentage,
			"streak", snap.Dashboard.Streak.Current,
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Close waits for background writes and releases the store.
func (a *App) Close() error {
	a.dispatcher.Wait()
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func RunTUI(app *App) error {
	model := uiapp.NewModel(
		uiapp.Options{UserID: app.Config.UserID, Device: app.Config.Device, Tick: app.Config.Playback.TickInterval},
		app.SessionCLI,
		app.QueueCLI,
		app.ProgressCLI,
	)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
