package lsp

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/MDBrothers/ada-mcp-bridge/logger"
)

// MonitorState is the health monitor's state machine position.
type MonitorState int

const (
	StateMonitoring MonitorState = iota
	StateCrashed
	StateRestarting
	StateGivenUp
)

func (s MonitorState) String() string {
	switch s {
	case StateMonitoring:
		return "monitoring"
	case StateCrashed:
		return "crashed"
	case StateRestarting:
		return "restarting"
	case StateGivenUp:
		return "given_up"
	default:
		return "unknown"
	}
}

// HealthMonitorOptions configures restart behavior. Zero values are
// replaced with defaults by NewHealthMonitor.
type HealthMonitorOptions struct {
	MaxRestartAttempts   int
	InitialBackoff       time.Duration
	MaxBackoff           time.Duration
	Multiplier           float64
	StableResetInterval  time.Duration
	PollInterval         time.Duration
}

func (o HealthMonitorOptions) withDefaults() HealthMonitorOptions {
	if o.MaxRestartAttempts <= 0 {
		o.MaxRestartAttempts = 5
	}
	if o.InitialBackoff <= 0 {
		o.InitialBackoff = time.Second
	}
	if o.MaxBackoff <= 0 {
		o.MaxBackoff = 60 * time.Second
	}
	if o.Multiplier <= 0 {
		o.Multiplier = 2
	}
	if o.StableResetInterval <= 0 {
		o.StableResetInterval = 30 * time.Second
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 2 * time.Second
	}
	return o
}

// HealthMonitor watches one Client for subprocess death and restarts it
// with exponential backoff, invoking onRestart with the replacement client
// so the pool can swap its instance's client pointer in place.
type HealthMonitor struct {
	opts        HealthMonitorOptions
	bootstrap   BootstrapOptions
	onRestart   func(*Client)

	mu           sync.Mutex
	client       *Client
	state        MonitorState
	restartCount int
	stopped      bool
	stopCh       chan struct{}
}

// NewHealthMonitor wraps client (already bootstrapped) with a monitor that
// will re-bootstrap using bootstrapOpts on crash.
func NewHealthMonitor(client *Client, bootstrapOpts BootstrapOptions, opts HealthMonitorOptions, onRestart func(*Client)) *HealthMonitor {
	return &HealthMonitor{
		opts:      opts.withDefaults(),
		bootstrap: bootstrapOpts,
		onRestart: onRestart,
		client:    client,
		state:     StateMonitoring,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the background poll loop. Safe to call once.
func (m *HealthMonitor) Start(ctx context.Context) {
	go m.run(ctx)
}

// Stop puts the monitor into a terminal state; it will not attempt further
// restarts even if the client subsequently dies.
func (m *HealthMonitor) Stop() {
	m.mu.Lock()
	if !m.stopped {
		m.stopped = true
		close(m.stopCh)
	}
	m.mu.Unlock()
}

// State returns the monitor's current state for readiness reporting.
func (m *HealthMonitor) State() MonitorState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// RestartCount returns the number of restart attempts, successful or not,
// since the last reset (by a stable-liveness window or an explicit Reset).
func (m *HealthMonitor) RestartCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.restartCount
}

// Reset zeroes restartCount, e.g. after an operator-triggered recovery.
func (m *HealthMonitor) Reset() {
	m.mu.Lock()
	m.restartCount = 0
	m.mu.Unlock()
}

func (m *HealthMonitor) run(ctx context.Context) {
	ticker := time.NewTicker(m.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.mu.Lock()
			client := m.client
			stopped := m.stopped
			givenUp := m.state == StateGivenUp
			m.mu.Unlock()
			if stopped || givenUp {
				return
			}
			if client != nil && !client.IsRunning() {
				m.handleCrash(ctx)
			}
		}
	}
}

func (m *HealthMonitor) handleCrash(ctx context.Context) {
	m.mu.Lock()
	m.state = StateCrashed
	if m.restartCount >= m.opts.MaxRestartAttempts {
		m.state = StateGivenUp
		m.mu.Unlock()
		logger.Error("language server for {ProjectRoot} exceeded {MaxAttempts} restart attempts; giving up", m.bootstrap.ProjectRoot, m.opts.MaxRestartAttempts)
		return
	}
	attempt := m.restartCount
	m.state = StateRestarting
	m.mu.Unlock()

	backoff := time.Duration(math.Min(
		float64(m.opts.InitialBackoff)*math.Pow(m.opts.Multiplier, float64(attempt)),
		float64(m.opts.MaxBackoff),
	))

	select {
	case <-time.After(backoff):
	case <-m.stopCh:
		return
	case <-ctx.Done():
		return
	}

	newClient, err := Bootstrap(ctx, m.bootstrap)

	m.mu.Lock()
	m.restartCount++
	if err != nil {
		m.state = StateCrashed
		m.mu.Unlock()
		logger.Warn("restart attempt {Attempt} for {ProjectRoot} failed: {Error}", attempt+1, m.bootstrap.ProjectRoot, err.Error())
		return
	}
	m.client = newClient
	m.state = StateMonitoring
	resetAt := m.restartCount
	m.mu.Unlock()

	logger.Info("restarted language server for {ProjectRoot}, restartCount={RestartCount}", m.bootstrap.ProjectRoot, resetAt)
	if m.onRestart != nil {
		m.onRestart(newClient)
	}

	go m.scheduleStableReset(ctx, newClient, resetAt)
}

func (m *HealthMonitor) scheduleStableReset(ctx context.Context, client *Client, afterRestartCount int) {
	select {
	case <-time.After(m.opts.StableResetInterval):
	case <-m.stopCh:
		return
	case <-ctx.Done():
		return
	}
	if !client.IsRunning() {
		return
	}
	m.mu.Lock()
	if m.restartCount == afterRestartCount {
		m.restartCount = 0
	}
	m.mu.Unlock()
}
