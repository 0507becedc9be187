package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"vesagent/internal/config"
)

type fakeEngine struct {
	stopped chan struct{}
}

type immediateEngine struct {
	err error
}

// Run blocks until context cancellation and marks engine stop.
// Params: ctx lifecycle context.
// Returns: nil on graceful stop.
func (e *fakeEngine) Run(ctx context.Context) error {
	<-ctx.Done()
	close(e.stopped)
	return nil
}

// Run exits immediately with predefined error.
// Params: _ ignored context.
// Returns: predefined run error.
func (e *immediateEngine) Run(_ context.Context) error {
	return e.err
}

type fakeEngineFactory struct {
	mu      sync.Mutex
	engines []*fakeEngine
	cfgs    []*config.Config
	failAt  map[int]error
}

// build creates one fake engine and records config snapshot.
// Params: _ ignored runtime context; cfg runtime config snapshot; _ ignored logger.
// Returns: fake engine or configured build error.
func (f *fakeEngineFactory) build(_ context.Context, cfg *config.Config, _ *slog.Logger) (engineRunner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	index := len(f.engines)
	if err, exists := f.failAt[index]; exists {
		return nil, err
	}

	engine := &fakeEngine{stopped: make(chan struct{})}
	f.engines = append(f.engines, engine)
	f.cfgs = append(f.cfgs, cfg)
	return engine, nil
}

// count returns created engines count.
// Params: none.
// Returns: number of created engine instances.
func (f *fakeEngineFactory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.engines)
}

// waitCount waits until created engines reaches expected value.
// Params: t test context; expected desired count.
// Returns: none; fails test on timeout.
func (f *fakeEngineFactory) waitCount(t *testing.T, expected int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if f.count() >= expected {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for engine count=%d (have=%d)", expected, f.count())
}

// waitStopped waits for specific engine stop signal.
// Params: t test context; index engine index.
// Returns: none; fails test on timeout.
func (f *fakeEngineFactory) waitStopped(t *testing.T, index int) {
	t.Helper()

	f.mu.Lock()
	if index >= len(f.engines) {
		f.mu.Unlock()
		t.Fatalf("engine index %d not found", index)
	}
	stopped := f.engines[index].stopped
	f.mu.Unlock()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatalf("timeout waiting engine[%d] stop", index)
	}
}

// isStopped checks whether specific engine has been stopped.
// Params: index engine index.
// Returns: true when engine stop signal is closed.
func (f *fakeEngineFactory) isStopped(index int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if index >= len(f.engines) {
		return false
	}
	select {
	case <-f.engines[index].stopped:
		return true
	default:
		return false
	}
}

// vnicMaskCounts returns measurement vNIC mask count per engine build.
// Params: none.
// Returns: slice of mask counts by build order.
func (f *fakeEngineFactory) vnicMaskCounts() []int {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]int, 0, len(f.cfgs))
	for _, cfg := range f.cfgs {
		out = append(out, len(cfg.Measurement.VNICs))
	}
	return out
}

// collectorURLs returns collector base URL per engine build.
// Params: none.
// Returns: slice of base URLs by build order.
func (f *fakeEngineFactory) collectorURLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, 0, len(f.cfgs))
	for _, cfg := range f.cfgs {
		out = append(out, cfg.Collector.BaseURL)
	}
	return out
}

type loaderResponse struct {
	cfg *config.Config
	err error
}

type loaderSequence struct {
	mu        sync.Mutex
	responses []loaderResponse
	calls     int
}

// load returns next preconfigured response for config loading.
// Params: _ ignored path.
// Returns: config or error based on configured sequence.
func (l *loaderSequence) load(_ string) (*config.Config, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	index := l.calls
	l.calls++
	if index >= len(l.responses) {
		return nil, errors.New("unexpected config load call")
	}

	response := l.responses[index]
	if response.err != nil {
		return nil, response.err
	}
	return response.cfg, nil
}

type fakeLoggerFactory struct {
	created atomic.Int32
	closed  atomic.Int32
}

// create builds disposable logger and tracks create/close counts.
// Params: _ ignored log config.
// Returns: logger, close callback, and nil error.
func (f *fakeLoggerFactory) create(_ config.LogConfig) (*slog.Logger, func(), error) {
	f.created.Add(1)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return logger, func() {
		f.closed.Add(1)
	}, nil
}

type fakePprofFactory struct {
	started atomic.Int32
	stopped atomic.Int32
}

// start tracks debug server start and returns tracked stop callback.
// Params: _ ignored context; _ ignored config; _ ignored status handler; _ ignored logger.
// Returns: stop callback and nil error.
func (f *fakePprofFactory) start(_ context.Context, _ config.PprofConfig, _ http.Handler, _ *slog.Logger) (func(), error) {
	f.started.Add(1)
	var once sync.Once
	return func() {
		once.Do(func() {
			f.stopped.Add(1)
		})
	}, nil
}

// buildTestDeps creates run deps from fake components.
// Params: loader, loggers, pprof, and engines fakes.
// Returns: dependency set for runWithDeps tests.
func buildTestDeps(
	loader *loaderSequence,
	loggers *fakeLoggerFactory,
	pprof *fakePprofFactory,
	engines *fakeEngineFactory,
) runDeps {
	return runDeps{
		loadConfig: loader.load,
		newLogger:  loggers.create,
		startPprof: pprof.start,
		newEngine:  engines.build,
	}
}

// testConfig creates minimal config snapshot for runtime reload tests.
// Params: source source name; vnicMasks number of measurement vNIC masks; collectorPort collector port.
// Returns: config snapshot instance.
func testConfig(source string, vnicMasks int, collectorPort int) *config.Config {
	cfg := &config.Config{
		Global: config.GlobalConfig{
			SourceName:          source,
			ReportingEntityName: source,
		},
		Log: config.LogConfig{
			Console: config.LogSinkConfig{
				Enabled: true,
				Level:   "info",
				Format:  "line",
			},
		},
	}

	cfg.Collector = config.CollectorConfig{
		BaseURL: fmt.Sprintf("http://127.0.0.1:%d", collectorPort),
		Timeout: config.Duration{
			Duration: time.Second,
		},
		Batch: config.CollectorBatchConfig{
			MaxEvents: 1,
		},
	}
	cfg.Measurement.Enabled = vnicMasks > 0
	for idx := 0; idx < vnicMasks; idx++ {
		cfg.Measurement.VNICs = append(cfg.Measurement.VNICs, fmt.Sprintf("eth%d", idx))
	}

	return cfg
}

// TestRunWithDeps_ReloadValidConfig verifies the agent is replaced and the old generation drained on valid reload.
// Params: t test context.
// Returns: none.
func TestRunWithDeps_ReloadValidConfig(t *testing.T) {
	loader := &loaderSequence{
		responses: []loaderResponse{
			{cfg: testConfig("vnf-a", 1, 1)},
			{cfg: testConfig("vnf-b", 2, 2)},
		},
	}
	loggers := &fakeLoggerFactory{}
	pprof := &fakePprofFactory{}
	engines := &fakeEngineFactory{}
	deps := buildTestDeps(loader, loggers, pprof, engines)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reload := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- runWithDeps(ctx, Runtime{ConfigPath: "test.toml", Reload: reload}, deps)
	}()

	engines.waitCount(t, 1)
	reload <- struct{}{}
	engines.waitCount(t, 2)
	engines.waitStopped(t, 0)

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("runWithDeps: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting runWithDeps stop")
	}

	if got := loggers.created.Load(); got != 2 {
		t.Fatalf("logger created=%d, want=2", got)
	}
	if got := loggers.closed.Load(); got != 2 {
		t.Fatalf("logger closed=%d, want=2", got)
	}
	if got := pprof.started.Load(); got != 2 {
		t.Fatalf("debug server started=%d, want=2", got)
	}
	if got := pprof.stopped.Load(); got != 2 {
		t.Fatalf("debug server stopped=%d, want=2", got)
	}
}

// TestRunWithDeps_ReloadUnchangedConfigKeepsAgent verifies a reload with identical settings does not restart the agent.
// Params: t test context.
// Returns: none.
func TestRunWithDeps_ReloadUnchangedConfigKeepsAgent(t *testing.T) {
	loader := &loaderSequence{
		responses: []loaderResponse{
			{cfg: testConfig("vnf-a", 1, 1)},
			{cfg: testConfig("vnf-a", 1, 1)},
			{cfg: testConfig("vnf-a", 1, 2)},
		},
	}
	loggers := &fakeLoggerFactory{}
	pprof := &fakePprofFactory{}
	engines := &fakeEngineFactory{}
	deps := buildTestDeps(loader, loggers, pprof, engines)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reload := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- runWithDeps(ctx, Runtime{ConfigPath: "test.toml", Reload: reload}, deps)
	}()

	engines.waitCount(t, 1)
	reload <- struct{}{}
	time.Sleep(100 * time.Millisecond)
	if got := engines.count(); got != 1 {
		t.Fatalf("engine count=%d after unchanged reload, want=1", got)
	}
	if engines.isStopped(0) {
		t.Fatal("agent restarted on unchanged reload")
	}
	if got := loggers.created.Load(); got != 1 {
		t.Fatalf("logger created=%d after unchanged reload, want=1", got)
	}

	reload <- struct{}{}
	engines.waitCount(t, 2)
	engines.waitStopped(t, 0)

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("runWithDeps: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting runWithDeps stop")
	}
}

// TestChangedSections verifies reload diffing reports TOML section names.
// Params: t test context.
// Returns: none.
func TestChangedSections(t *testing.T) {
	base := testConfig("vnf-a", 1, 1)
	if got := changedSections(base, testConfig("vnf-a", 1, 1)); len(got) != 0 {
		t.Fatalf("identical configs reported changes: %v", got)
	}

	next := testConfig("vnf-b", 2, 2)
	next.Heartbeat.Fields = map[string]string{"zone": "z1"}
	want := []string{"global", "collector", "heartbeat", "measurement"}
	if got := changedSections(base, next); !reflect.DeepEqual(got, want) {
		t.Fatalf("changed sections=%v, want=%v", got, want)
	}
}

// TestRunWithDeps_ReloadInvalidConfigKeepsAgent verifies an invalid reload keeps the running agent posting.
// Params: t test context.
// Returns: none.
func TestRunWithDeps_ReloadInvalidConfigKeepsAgent(t *testing.T) {
	loader := &loaderSequence{
		responses: []loaderResponse{
			{cfg: testConfig("vnf-a", 1, 1)},
			{err: errors.New("invalid config")},
		},
	}
	loggers := &fakeLoggerFactory{}
	pprof := &fakePprofFactory{}
	engines := &fakeEngineFactory{}
	deps := buildTestDeps(loader, loggers, pprof, engines)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reload := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- runWithDeps(ctx, Runtime{ConfigPath: "test.toml", Reload: reload}, deps)
	}()

	engines.waitCount(t, 1)
	reload <- struct{}{}
	time.Sleep(100 * time.Millisecond)

	if got := engines.count(); got != 1 {
		t.Fatalf("engine count=%d, want=1", got)
	}
	if engines.isStopped(0) {
		t.Fatal("agent stopped after invalid reload")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("runWithDeps: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting runWithDeps stop")
	}
}

// TestRunWithDeps_ReloadApplyMeasurementChanges verifies runtime rebuild on vNIC mask add/remove.
// Params: t test context.
// Returns: none.
func TestRunWithDeps_ReloadApplyMeasurementChanges(t *testing.T) {
	loader := &loaderSequence{
		responses: []loaderResponse{
			{cfg: testConfig("vnf-a", 1, 1)},
			{cfg: testConfig("vnf-a", 2, 1)},
			{cfg: testConfig("vnf-a", 0, 1)},
		},
	}
	loggers := &fakeLoggerFactory{}
	pprof := &fakePprofFactory{}
	engines := &fakeEngineFactory{}
	deps := buildTestDeps(loader, loggers, pprof, engines)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reload := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- runWithDeps(ctx, Runtime{ConfigPath: "test.toml", Reload: reload}, deps)
	}()

	engines.waitCount(t, 1)
	reload <- struct{}{}
	engines.waitCount(t, 2)
	reload <- struct{}{}
	engines.waitCount(t, 3)

	counts := engines.vnicMaskCounts()
	want := []int{1, 2, 0}
	for idx := range want {
		if counts[idx] != want[idx] {
			t.Fatalf("vnic mask count[%d]=%d, want=%d", idx, counts[idx], want[idx])
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("runWithDeps: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting runWithDeps stop")
	}
}

// TestRunWithDeps_ReloadApplyCollectorChanges verifies runtime rebuild on collector endpoint change.
// Params: t test context.
// Returns: none.
func TestRunWithDeps_ReloadApplyCollectorChanges(t *testing.T) {
	loader := &loaderSequence{
		responses: []loaderResponse{
			{cfg: testConfig("vnf-a", 1, 1)},
			{cfg: testConfig("vnf-a", 1, 2)},
			{cfg: testConfig("vnf-a", 1, 1)},
		},
	}
	loggers := &fakeLoggerFactory{}
	pprof := &fakePprofFactory{}
	engines := &fakeEngineFactory{}
	deps := buildTestDeps(loader, loggers, pprof, engines)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reload := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- runWithDeps(ctx, Runtime{ConfigPath: "test.toml", Reload: reload}, deps)
	}()

	engines.waitCount(t, 1)
	reload <- struct{}{}
	engines.waitCount(t, 2)
	reload <- struct{}{}
	engines.waitCount(t, 3)

	urls := engines.collectorURLs()
	want := []string{"http://127.0.0.1:1", "http://127.0.0.1:2", "http://127.0.0.1:1"}
	for idx := range want {
		if urls[idx] != want[idx] {
			t.Fatalf("collector url[%d]=%q, want=%q", idx, urls[idx], want[idx])
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("runWithDeps: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting runWithDeps stop")
	}
}

// TestRunWithDeps_EngineStopsUnexpectedly verifies run loop returns error when the agent engine exits before context cancellation.
// Params: t test context.
// Returns: none.
func TestRunWithDeps_EngineStopsUnexpectedly(t *testing.T) {
	loader := &loaderSequence{
		responses: []loaderResponse{
			{cfg: testConfig("vnf-a", 1, 1)},
		},
	}
	loggers := &fakeLoggerFactory{}
	pprof := &fakePprofFactory{}
	engineErr := errors.New("boom")
	deps := runDeps{
		loadConfig: loader.load,
		newLogger:  loggers.create,
		startPprof: pprof.start,
		newEngine: func(_ context.Context, _ *config.Config, _ *slog.Logger) (engineRunner, error) {
			return &immediateEngine{err: engineErr}, nil
		},
	}

	err := runWithDeps(context.Background(), Runtime{ConfigPath: "test.toml"}, deps)
	if err == nil {
		t.Fatal("expected runWithDeps error")
	}
	if !errors.Is(err, engineErr) {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := loggers.closed.Load(); got != 1 {
		t.Fatalf("logger closed=%d, want=1", got)
	}
	if got := pprof.stopped.Load(); got != 1 {
		t.Fatalf("debug server stopped=%d, want=1", got)
	}
}

// TestRunWithDeps_ReloadInterruptedByShutdown verifies graceful stop when shutdown interrupts reload apply.
// Params: t test context.
// Returns: none.
func TestRunWithDeps_ReloadInterruptedByShutdown(t *testing.T) {
	loader := &loaderSequence{
		responses: []loaderResponse{
			{cfg: testConfig("vnf-a", 1, 1)},
			{cfg: testConfig("vnf-b", 1, 1)},
		},
	}
	loggers := &fakeLoggerFactory{}
	pprof := &fakePprofFactory{}

	secondBuildStarted := make(chan struct{})
	var buildCount atomic.Int32
	deps := runDeps{
		loadConfig: loader.load,
		newLogger:  loggers.create,
		startPprof: pprof.start,
		newEngine: func(ctx context.Context, _ *config.Config, _ *slog.Logger) (engineRunner, error) {
			call := buildCount.Add(1)
			if call == 1 {
				return &fakeEngine{stopped: make(chan struct{})}, nil
			}
			close(secondBuildStarted)
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reload := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- runWithDeps(ctx, Runtime{ConfigPath: "test.toml", Reload: reload}, deps)
	}()

	reload <- struct{}{}
	select {
	case <-secondBuildStarted:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting second build start")
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("runWithDeps: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting runWithDeps stop")
	}
}
