// Package agent runs the ddogreen controller: it wires the activity monitor to the
// power backend and publishes status, history and metrics.
package agent

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"ddogreen/internal/activity"
	"ddogreen/internal/config"
	"ddogreen/internal/logging"
	"ddogreen/internal/metrics"
	"ddogreen/internal/power"
	"ddogreen/internal/ratelimit"
	"ddogreen/internal/status"
	"ddogreen/internal/sysmon"
)

// errStopRequested ends the errgroup when SIGINT or SIGTERM arrives
var errStopRequested = errors.New("stop requested")

// Options configures a new Agent. Nil System and Power fall back to the platform defaults.
type Options struct {
	Config     config.Config
	ConfigPath string
	Version    string
	Logger     *logging.Logger
	System     sysmon.SystemMonitor
	Power      power.PowerManager
	Runner     power.Runner

	// MonitorOptions are passed through to activity.NewMonitor
	MonitorOptions []activity.Option

	// Reload loads the configuration on SIGHUP; defaults to config.Load / config.LoadDefault
	Reload func(path string) (config.Config, error)
}

// Agent represents the background service
type Agent struct {
	logger     *logging.Logger
	ctx        context.Context
	cancel     context.CancelFunc
	startTime  time.Time
	runID      string
	configPath string
	backend    string
	reload     func(path string) (config.Config, error)

	monitor  *activity.Monitor
	power    *power.RateLimited
	recorder *metrics.Recorder
	history  *metrics.Writer
	store    *status.Store
	server   *status.Server

	rejected atomic.Uint64

	mu       sync.Mutex
	cfg      config.Config
	doc      status.Document
	reported bool
	// pending is set when the limiter deferred the mode for sample pendingSample
	pending       bool
	pendingSample uint64
}

// New creates an agent from a validated configuration
func New(opts Options) (*Agent, error) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := opts.Config
	logger := opts.Logger

	sys := opts.System
	if sys == nil {
		sys = sysmon.New(logger)
	}

	pm := opts.Power
	if pm == nil {
		runner := opts.Runner
		if runner == nil {
			runner = power.NewExecRunner(ctx)
		}
		var err error
		pm, err = power.New(cfg.Power.Backend, power.Options{Runner: runner, Logger: logger})
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to create power backend: %w", err)
		}
	}
	if !pm.IsAvailable() {
		logger.Warn("agent.power.unavailable", "Power backend reports unavailable, mode changes will fail", map[string]interface{}{
			"backend": cfg.Power.Backend,
		})
	}

	limiter := ratelimit.New(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window(), ratelimit.WithLogger(logger))

	a := &Agent{
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
		startTime:  time.Now(),
		runID:      uuid.NewString(),
		configPath: opts.ConfigPath,
		backend:    cfg.Power.Backend,
		reload:     opts.Reload,
		monitor:    activity.NewMonitor(sys, logger, opts.MonitorOptions...),
		power:      power.NewRateLimited(pm, limiter),
		recorder:   metrics.NewRecorder(),
		history:    metrics.NewWriter(cfg.Status.HistoryFile, logger),
		store:      status.NewStore(cfg.Status.StateFile, logger),
		cfg:        cfg,
	}
	if a.reload == nil {
		a.reload = loadConfig
	}

	a.power.OnReject(func() {
		a.rejected.Add(1)
		a.recorder.RecordRateLimited()
	})

	if err := a.configureMonitor(cfg); err != nil {
		cancel()
		return nil, err
	}
	a.monitor.SetActivityCallback(a.onActivity)
	a.monitor.SetSampleObserver(a.onSample)

	if cfg.Status.ListenAddr != "" {
		a.server = status.NewServer(cfg.Status.ListenAddr, a.Status, a.HealthCheck, a.recorder.Handler(), logger)
	}

	a.doc = status.Document{
		RunID:      a.runID,
		Version:    opts.Version,
		PID:        os.Getpid(),
		StartedAt:  a.startTime.UTC(),
		ConfigPath: opts.ConfigPath,
		Backend:    a.backend,
		PowerMode:  pm.GetCurrentMode(),
		PowerReady: pm.IsAvailable(),
	}

	return a, nil
}

// Run starts monitoring and blocks until ctx is cancelled or a stop signal arrives
func (a *Agent) Run(ctx context.Context) error {
	if err := a.monitor.Start(); err != nil {
		a.cancel()
		return fmt.Errorf("failed to start activity monitor: %w", err)
	}

	a.logger.Info("agent.started", "Agent service started", map[string]interface{}{
		"pid":     os.Getpid(),
		"run_id":  a.runID,
		"backend": a.backend,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	g, gctx := errgroup.WithContext(ctx)
	if a.server != nil {
		g.Go(func() error {
			return a.server.Run(gctx)
		})
	}
	g.Go(func() error {
		return a.handleSignals(gctx, sigChan)
	})

	err := g.Wait()
	a.Shutdown()

	if errors.Is(err, errStopRequested) {
		return nil
	}
	return err
}

func (a *Agent) handleSignals(ctx context.Context, sigChan <-chan os.Signal) error {
	for {
		select {
		case <-ctx.Done():
			a.logger.Info("agent.context_cancelled", "Agent context cancelled", nil)
			return nil

		case sig := <-sigChan:
			a.logger.Info("agent.signal_received", "Received signal", map[string]interface{}{
				"signal": sig.String(),
			})

			switch sig {
			case syscall.SIGHUP:
				if err := a.Reload(); err != nil {
					a.logger.Error("agent.reload.failed", "Configuration reload failed, keeping previous settings", map[string]interface{}{
						"error": err.Error(),
					})
				}
			default:
				a.logger.Info("agent.shutdown", "Initiating graceful shutdown", nil)
				return errStopRequested
			}
		}
	}
}

// Reload re-reads the configuration file and restarts the monitor with the new
// thresholds and frequency. Backend, rate limit and status settings need a restart.
func (a *Agent) Reload() error {
	a.logger.Info("agent.reload", "Reloading configuration", map[string]interface{}{
		"path": a.configPath,
	})

	next, err := a.reload(a.configPath)
	if err != nil {
		return err
	}

	a.mu.Lock()
	prev := a.cfg
	a.mu.Unlock()

	if next.Power != prev.Power || next.RateLimit != prev.RateLimit || next.Status != prev.Status {
		a.logger.Warn("agent.reload.restart_required", "Power, rate_limit and status changes apply after restart", nil)
	}

	wasRunning := a.monitor.IsRunning()
	a.monitor.Stop()

	if err := a.configureMonitor(next); err != nil {
		_ = a.configureMonitor(prev)
		if wasRunning {
			if startErr := a.monitor.Start(); startErr != nil {
				return errors.Join(err, startErr)
			}
		}
		return err
	}

	a.logger.SetLevel(logging.ParseLevel(next.Logging.Level))

	a.mu.Lock()
	a.cfg = next
	a.reported = false
	a.pending = false
	a.mu.Unlock()

	for _, w := range next.Warnings() {
		a.logger.Warn("config.warning", w, nil)
	}

	if wasRunning {
		if err := a.monitor.Start(); err != nil {
			return fmt.Errorf("failed to restart activity monitor: %w", err)
		}
	}

	a.logger.Info("agent.reloaded", "Configuration reloaded", map[string]interface{}{
		"monitoring_frequency":       next.MonitoringFrequency,
		"high_performance_threshold": next.HighPerformanceThreshold,
		"power_save_threshold":       next.PowerSaveThreshold,
	})
	return nil
}

// Shutdown stops the monitor and marks the persisted status as stopped
func (a *Agent) Shutdown() {
	a.logger.Info("agent.stopping", "Stopping agent service", nil)

	a.monitor.Stop()
	a.cancel()

	a.mu.Lock()
	a.doc.Running = false
	a.doc.UpdatedAt = time.Now().UTC()
	doc := a.doc
	a.mu.Unlock()

	if err := a.store.Save(doc); err != nil {
		a.logger.Warn("agent.status.save_failed", "Failed to save final status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	a.logger.Info("agent.stopped", "Agent service stopped", map[string]interface{}{
		"uptime_seconds": time.Since(a.startTime).Seconds(),
	})
}

// Status returns the current status document
func (a *Agent) Status() status.Document {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.doc
}

// Recorder exposes the metrics recorder
func (a *Agent) Recorder() *metrics.Recorder {
	return a.recorder
}

// HealthCheck reports an error once the agent has shut down or the monitor is not sampling
func (a *Agent) HealthCheck() error {
	select {
	case <-a.ctx.Done():
		return fmt.Errorf("agent context is cancelled")
	default:
	}
	if !a.monitor.IsRunning() {
		return fmt.Errorf("activity monitor is not running")
	}
	return nil
}

func (a *Agent) configureMonitor(cfg config.Config) error {
	if err := a.monitor.SetLoadThresholds(cfg.HighPerformanceThreshold, cfg.PowerSaveThreshold); err != nil {
		return err
	}
	return a.monitor.SetMonitoringFrequency(cfg.MonitoringFrequency)
}

// onActivity applies the decided state to the power backend
func (a *Agent) onActivity(active bool) {
	snap := a.monitor.Snapshot()

	a.mu.Lock()
	initial := !a.reported
	a.reported = true
	a.mu.Unlock()

	mode, ok, limited := a.applyMode(active)

	payload := map[string]interface{}{
		"mode":            mode,
		"normalized_load": snap.NormalizedLoad,
		"initial":         initial,
	}
	switch {
	case ok:
		a.logger.Info("power.mode.changed", "Power mode applied", payload)
	case limited:
		a.logger.Debug("power.mode.rate_limited", "Power mode change deferred by rate limiter", payload)
	default:
		a.logger.Error("power.mode.failed", "Failed to apply power mode", payload)
	}

	// an initial report is a transition only when it leaves the inactive default
	if !initial || active {
		a.recorder.RecordTransition(active)
	}

	if err := a.history.Write(metrics.Transition{
		Timestamp:      snap.LastSample.UTC(),
		RunID:          a.runID,
		Active:         active,
		Initial:        initial,
		Load:           snap.Load,
		NormalizedLoad: snap.NormalizedLoad,
		Mode:           mode,
		Applied:        ok,
		RateLimited:    limited,
	}); err != nil {
		a.logger.Warn("agent.history.write_failed", "Failed to append transition", map[string]interface{}{
			"error": err.Error(),
		})
	}

	a.mu.Lock()
	a.pending = limited
	a.pendingSample = snap.Samples
	a.mu.Unlock()
}

// applyMode requests the mode for active and records the outcome
func (a *Agent) applyMode(active bool) (mode string, ok, limited bool) {
	mode = power.ModePowerSaving
	if active {
		mode = power.ModePerformance
	}

	rejectedBefore := a.rejected.Load()
	if active {
		ok = a.power.SetPerformanceMode()
	} else {
		ok = a.power.SetPowerSavingMode()
	}
	limited = a.rejected.Load() != rejectedBefore

	if !limited {
		a.recorder.RecordModeChange(mode, ok)
	}

	current := a.power.GetCurrentMode()
	a.mu.Lock()
	a.doc.PowerMode = current
	a.doc.RateLimited = a.rejected.Load()
	a.mu.Unlock()

	return mode, ok, limited
}

// retryDeferred re-requests the monitor's current state after the limiter
// deferred it on an earlier sample. Transitions are edge triggered, so
// nothing else would ask again.
func (a *Agent) retryDeferred(s activity.Snapshot) {
	a.mu.Lock()
	due := a.pending && s.Samples > a.pendingSample
	a.mu.Unlock()
	if !due {
		return
	}

	mode, ok, limited := a.applyMode(s.Active)
	payload := map[string]interface{}{
		"mode":            mode,
		"normalized_load": s.NormalizedLoad,
	}
	switch {
	case ok:
		a.logger.Info("power.mode.reapplied", "Deferred power mode applied", payload)
	case limited:
		a.logger.Debug("power.mode.rate_limited", "Power mode change still deferred by rate limiter", payload)
	default:
		a.logger.Error("power.mode.failed", "Failed to apply deferred power mode", payload)
	}

	a.mu.Lock()
	a.pending = limited
	a.pendingSample = s.Samples
	a.mu.Unlock()
}

// onSample publishes every sample to metrics and the status file
func (a *Agent) onSample(s activity.Snapshot) {
	a.recorder.ObserveSample(s)
	a.retryDeferred(s)

	a.mu.Lock()
	a.doc.ApplySnapshot(s)
	a.doc.UpdatedAt = time.Now().UTC()
	doc := a.doc
	a.mu.Unlock()

	if err := a.store.Save(doc); err != nil {
		a.logger.Warn("agent.status.save_failed", "Failed to save status", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		cfg, _, err := config.LoadDefault()
		return cfg, err
	}
	return config.Load(path)
}
