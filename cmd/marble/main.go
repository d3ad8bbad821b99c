package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/getsentry/sentry-go"
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/marblerace/course/internal/config"
	"github.com/marblerace/course/internal/data"
	"github.com/marblerace/course/internal/input"
	"github.com/marblerace/course/internal/obstacle"
	"github.com/marblerace/course/internal/persist"
	"github.com/marblerace/course/internal/scripting"
	"github.com/marblerace/course/internal/sim"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config
	cfg, err := config.Load(config.PathFromEnv())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	// 3. Crash reporting and runtime stats
	if cfg.Debug.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Debug.SentryDSN}); err != nil {
			return fmt.Errorf("sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}
	if cfg.Debug.StatsviewAddr != "" {
		viewer.SetConfiguration(viewer.WithAddr(cfg.Debug.StatsviewAddr))
		mgr := statsview.New()
		go mgr.Start()
		defer mgr.Stop()
		log.Info("statsview listening", zap.String("addr", cfg.Debug.StatsviewAddr))
	}

	// 4. Obstacle table and patterns
	reg, engine, err := loadObstacles(cfg.Data, log)
	if err != nil {
		return err
	}
	defer engine.Close()

	opts := []sim.Option{sim.WithRegistry(reg), sim.WithLogger(log)}

	// 5. Optional run records
	if cfg.Database.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()

		version, err := persist.RunMigrations(ctx, db.Pool)
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		log.Info("schema ready", zap.Int64("version", version))

		runs := persist.NewRunRepo(db)
		logBest(ctx, runs, cfg.Game.BlocksCount, log)
		opts = append(opts, sim.WithRunStore(runs))
	}

	// 6. Terminal
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal init: %w", err)
	}
	defer screen.Fini()

	term := input.NewTerminal(cfg.Player.Hold)
	go term.Pump(screen, time.Now)
	opts = append(opts, sim.WithInput(term))

	// 7. Session
	session, err := sim.New(sim.SettingsFromConfig(cfg), opts...)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		session.Shutdown(ctx)
	}()

	log.Info("course ready",
		zap.Int("blocks_count", session.State.BlocksCount()),
		zap.Int64("blocks_seed", session.State.BlocksSeed()),
		zap.Duration("tick_rate", cfg.Game.TickRate),
	)

	// 8. Frame loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Game.TickRate)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if term.Quit() {
				log.Info("quit requested")
				return nil
			}
			if err := tick(session, cfg.Game.TickRate); err != nil {
				return err
			}
			draw(screen, session)

		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()))
			return nil
		}
	}
}

func loadObstacles(cfg config.DataConfig, log *zap.Logger) (*obstacle.Registry, *scripting.Engine, error) {
	table := data.DefaultObstacleTable()
	if cfg.Obstacles != "" {
		t, err := data.LoadObstacleTable(cfg.Obstacles)
		if err != nil {
			return nil, nil, err
		}
		table = t
	}
	reg, err := obstacle.NewBuiltinRegistry(table)
	if err != nil {
		return nil, nil, fmt.Errorf("obstacles: %w", err)
	}

	engine, err := scripting.NewEngine(cfg.Scripts, log.Named("lua"))
	if err != nil {
		return nil, nil, fmt.Errorf("lua: %w", err)
	}
	n, err := engine.RegisterPatterns(reg, table)
	if err != nil {
		engine.Close()
		return nil, nil, fmt.Errorf("lua: %w", err)
	}
	log.Info("obstacles loaded",
		zap.Int("kinds", reg.Len()),
		zap.Int("scripted", n),
	)
	return reg, engine, nil
}

func logBest(ctx context.Context, runs *persist.RunRepo, count int, log *zap.Logger) {
	best, err := runs.Best(ctx, count, 3)
	if err != nil {
		log.Warn("load best runs", zap.Error(err))
		return
	}
	for i, r := range best {
		log.Info("best run",
			zap.Int("rank", i+1),
			zap.Duration("duration", r.Duration),
			zap.Int64("blocks_seed", r.BlocksSeed),
			zap.Time("finished_at", r.FinishedAt),
		)
	}
}

// tick runs one frame and turns a panic into an error, reporting it to
// sentry when configured.
func tick(s *sim.Session, dt time.Duration) (err error) {
	defer func() {
		if r := recover(); r != nil {
			hub := sentry.CurrentHub().Clone()
			hub.ConfigureScope(func(scope *sentry.Scope) {
				scope.SetTag("phase", s.State.Phase().String())
				scope.SetTag("blocks_seed", fmt.Sprint(s.State.BlocksSeed()))
			})
			hub.Recover(r)
			hub.Flush(5 * time.Second)
			err = fmt.Errorf("frame panic: %v", r)
		}
	}()
	s.Tick(dt)
	return nil
}

func draw(screen tcell.Screen, s *sim.Session) {
	input.DrawStatus(screen, 0, s.State.Snapshot(), s.State.Elapsed(), s.Position())
	screen.Show()
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	if cfg.File != "" {
		zapCfg.OutputPaths = []string{cfg.File}
		zapCfg.ErrorOutputPaths = []string{cfg.File}
	}

	return zapCfg.Build()
}
