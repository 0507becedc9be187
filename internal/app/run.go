package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"vesagent/internal/config"
	"vesagent/internal/logging"
)

// Runtime defines runtime inputs required to start the agent.
// Params: ConfigPath points to the TOML configuration file or directory; Reload triggers config reload.
// Returns: Runtime value used by Run.
type Runtime struct {
	ConfigPath string
	Reload     <-chan struct{}
}

type engineRunner interface {
	Run(context.Context) error
}

type runDeps struct {
	loadConfig func(string) (*config.Config, error)
	newLogger  func(config.LogConfig) (*slog.Logger, func(), error)
	startPprof func(context.Context, config.PprofConfig, http.Handler, *slog.Logger) (func(), error)
	newEngine  func(context.Context, *config.Config, *slog.Logger) (engineRunner, error)
}

// agentRuntime is one running agent generation: its config, logger, debug server and engine.
type agentRuntime struct {
	cfg         *config.Config
	logger      *slog.Logger
	closeLogger func()
	cancel      context.CancelFunc
	done        chan error
	stopDebug   func()
}

// supervisor owns the current agent generation and swaps it on reload.
type supervisor struct {
	ctx     context.Context
	path    string
	deps    runDeps
	current *agentRuntime
}

// Run loads configuration, starts the agent with its schedulers, and supports hot reload via Runtime.Reload.
// Params: ctx controls lifecycle; rt provides runtime inputs and optional reload trigger channel.
// Returns: error on startup/reload failure without rollback, nil on graceful stop.
func Run(ctx context.Context, rt Runtime) error {
	return runWithDeps(ctx, rt, defaultRunDeps())
}

// runWithDeps executes runtime lifecycle using injectable dependencies.
// Params: ctx controls lifecycle; rt runtime inputs; deps start/reload dependencies.
// Returns: runtime error or nil on graceful stop.
func runWithDeps(ctx context.Context, rt Runtime, deps runDeps) error {
	if strings.TrimSpace(rt.ConfigPath) == "" {
		return fmt.Errorf("config path is required")
	}

	cfg, err := deps.loadConfig(rt.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	s := &supervisor{ctx: ctx, path: rt.ConfigPath, deps: deps}
	s.current, err = s.start(cfg, nil, nil)
	if err != nil {
		return err
	}

	reloadCh := rt.Reload
	for {
		select {
		case runErr := <-s.current.done:
			s.current.done = nil
			return s.engineExited(runErr)
		case <-ctx.Done():
			s.stop("canceled")
			return nil
		case _, ok := <-reloadCh:
			if !ok {
				reloadCh = nil
				continue
			}
			if ctx.Err() != nil {
				continue
			}
			if err := s.reload(); err != nil && s.current == nil {
				return err
			}
		}
	}
}

// defaultRunDeps provides production runtime dependencies.
// Params: none.
// Returns: dependency set used by Run.
func defaultRunDeps() runDeps {
	return runDeps{
		loadConfig: config.Load,
		newLogger:  logging.New,
		startPprof: startPprofServer,
		newEngine:  newAgentEngine,
	}
}

// engineExited handles an agent engine that returned on its own.
// Params: runErr engine result.
// Returns: nil when the exit follows shutdown, otherwise a run error.
func (s *supervisor) engineExited(runErr error) error {
	s.current.halt()
	if s.ctx.Err() != nil {
		s.stop(s.ctx.Err().Error())
		return nil
	}
	if runErr == nil {
		runErr = fmt.Errorf("engine exited without shutdown")
	}
	s.current.logger.Error("agent engine stopped unexpectedly", slog.String("error", runErr.Error()))
	s.current.closeLoggerSink()
	return fmt.Errorf("run agent: %w", runErr)
}

// stop drains the current agent and closes its logger.
// Params: reason recorded in the final log line.
// Returns: none.
func (s *supervisor) stop(reason string) {
	if s.ctx.Err() != nil {
		reason = s.ctx.Err().Error()
	}
	s.current.halt()
	s.current.logger.Info("agent stopped", slog.String("reason", reason))
	s.current.closeLoggerSink()
}

// start brings up one agent generation from a loaded config.
// Params: cfg validated config; logger/closeFn optional logger override reused on rollback.
// Returns: running generation or startup error.
func (s *supervisor) start(cfg *config.Config, logger *slog.Logger, closeFn func()) (*agentRuntime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if s.ctx.Err() != nil {
		return nil, fmt.Errorf("runtime context canceled: %w", s.ctx.Err())
	}

	ownsLogger := logger == nil
	if ownsLogger {
		created, createdClose, err := s.deps.newLogger(cfg.Log)
		if err != nil {
			return nil, fmt.Errorf("init logger: %w", err)
		}
		logger, closeFn = created, createdClose
	}
	release := func() {
		if ownsLogger && closeFn != nil {
			closeFn()
		}
	}

	runCtx, cancel := context.WithCancel(s.ctx)
	status := &statusBoard{}
	stopDebug, err := s.deps.startPprof(runCtx, cfg.Pprof, status, logger)
	if err != nil {
		cancel()
		release()
		return nil, fmt.Errorf("start debug server: %w", err)
	}

	engine, err := s.deps.newEngine(runCtx, cfg, logger)
	if err != nil {
		stopDebug()
		cancel()
		release()
		return nil, fmt.Errorf("build agent: %w", err)
	}
	status.set(engine)

	done := make(chan error, 1)
	go func() {
		done <- engine.Run(runCtx)
	}()

	logger.Info(
		"agent started",
		slog.String("source_name", cfg.Global.SourceName),
		slog.String("reporting_entity_name", cfg.Global.ReportingEntityName),
		slog.String("collector", cfg.Collector.BaseURL),
		slog.Duration("heartbeat_interval", cfg.Heartbeat.Interval.Duration),
		slog.Bool("measurement", cfg.Measurement.Enabled),
	)
	return &agentRuntime{
		cfg:         cfg,
		logger:      logger,
		closeLogger: closeFn,
		cancel:      cancel,
		done:        done,
		stopDebug:   stopDebug,
	}, nil
}

// reload swaps the agent for one built from the re-read config.
// An unchanged config keeps the running agent and its queue untouched.
// A failed start restores the previous config; s.current is nil only when that also fails.
// Params: none.
// Returns: reload error; non-fatal while s.current is set.
func (s *supervisor) reload() error {
	prev := s.current
	prev.logger.Info("config reload requested")

	nextCfg, err := s.deps.loadConfig(s.path)
	if err != nil {
		prev.logger.Error("config reload validation failed", slog.String("error", err.Error()))
		return fmt.Errorf("reload config: %w", err)
	}

	changed := changedSections(prev.cfg, nextCfg)
	if len(changed) == 0 {
		prev.logger.Info("config reload skipped, settings unchanged")
		return nil
	}

	nextLogger, nextClose, err := s.deps.newLogger(nextCfg.Log)
	if err != nil {
		prev.logger.Error("config reload logger init failed", slog.String("error", err.Error()))
		return fmt.Errorf("init reload logger: %w", err)
	}

	// the old agent drains its queue before the new one posts
	prev.halt()
	next, startErr := s.start(nextCfg, nextLogger, nextClose)
	if startErr == nil {
		prev.closeLoggerSink()
		s.current = next
		next.logger.Info("config reload applied", slog.String("changed", strings.Join(changed, ",")))
		return nil
	}
	nextClose()
	if s.ctx.Err() != nil {
		prev.logger.Info("config reload interrupted by shutdown")
		return nil
	}

	prev.logger.Error("config reload apply failed, restoring previous agent", slog.String("error", startErr.Error()))
	restored, rollbackErr := s.start(prev.cfg, prev.logger, prev.closeLogger)
	if rollbackErr != nil {
		prev.closeLoggerSink()
		s.current = nil
		return fmt.Errorf("apply reload: %w; rollback failed: %w", startErr, rollbackErr)
	}
	s.current = restored
	restored.logger.Warn("config reload rejected, previous agent restored", slog.String("error", startErr.Error()))
	return fmt.Errorf("apply reload: %w", startErr)
}

// changedSections lists the top-level config sections that differ.
// Params: prev running config; next reloaded config.
// Returns: TOML section names in declaration order.
func changedSections(prev, next *config.Config) []string {
	pv := reflect.ValueOf(*prev)
	nv := reflect.ValueOf(*next)
	kind := pv.Type()

	var changed []string
	for i := 0; i < kind.NumField(); i++ {
		if reflect.DeepEqual(pv.Field(i).Interface(), nv.Field(i).Interface()) {
			continue
		}
		name, _, _ := strings.Cut(kind.Field(i).Tag.Get("toml"), ",")
		changed = append(changed, name)
	}
	return changed
}

// halt stops the engine (which drains the agent queue) and the debug server, keeping the logger open.
// Params: none.
// Returns: none.
func (r *agentRuntime) halt() {
	if r == nil {
		return
	}
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	if r.done != nil {
		<-r.done
		r.done = nil
	}
	if r.stopDebug != nil {
		r.stopDebug()
		r.stopDebug = nil
	}
}

// closeLoggerSink closes the generation's log sinks.
func (r *agentRuntime) closeLoggerSink() {
	if r == nil || r.closeLogger == nil {
		return
	}
	r.closeLogger()
	r.closeLogger = nil
}
