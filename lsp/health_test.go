package lsp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHealthMonitorOptionsDefaults(t *testing.T) {
	opts := HealthMonitorOptions{}.withDefaults()

	assert.Equal(t, 5, opts.MaxRestartAttempts)
	assert.Equal(t, time.Second, opts.InitialBackoff)
	assert.Equal(t, 60*time.Second, opts.MaxBackoff)
	assert.Equal(t, 2.0, opts.Multiplier)
	assert.Equal(t, 30*time.Second, opts.StableResetInterval)
	assert.Equal(t, 2*time.Second, opts.PollInterval)
}

func TestHealthMonitorOptionsPreservesOverrides(t *testing.T) {
	opts := HealthMonitorOptions{MaxRestartAttempts: 3, InitialBackoff: 5 * time.Millisecond}.withDefaults()

	assert.Equal(t, 3, opts.MaxRestartAttempts)
	assert.Equal(t, 5*time.Millisecond, opts.InitialBackoff)
	// Untouched fields still pick up their defaults.
	assert.Equal(t, 60*time.Second, opts.MaxBackoff)
}

func TestMonitorStateString(t *testing.T) {
	tests := []struct {
		state    MonitorState
		expected string
	}{
		{StateMonitoring, "monitoring"},
		{StateCrashed, "crashed"},
		{StateRestarting, "restarting"},
		{StateGivenUp, "given_up"},
		{MonitorState(99), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.state.String())
	}
}

func TestNewHealthMonitorAppliesDefaults(t *testing.T) {
	m := NewHealthMonitor(nil, BootstrapOptions{}, HealthMonitorOptions{}, nil)
	assert.Equal(t, StateMonitoring, m.State())
	assert.Equal(t, 0, m.RestartCount())
	assert.Equal(t, 5, m.opts.MaxRestartAttempts)
}

func TestHealthMonitorStop(t *testing.T) {
	m := NewHealthMonitor(nil, BootstrapOptions{}, HealthMonitorOptions{}, nil)
	m.Stop()
	// Calling Stop twice must not panic (closing a closed channel).
	assert.NotPanics(t, func() { m.Stop() })
}

func TestHealthMonitorReset(t *testing.T) {
	m := NewHealthMonitor(nil, BootstrapOptions{}, HealthMonitorOptions{}, nil)
	m.restartCount = 4
	m.Reset()
	assert.Equal(t, 0, m.RestartCount())
}

func TestHealthMonitorRunStopsPollingAfterGivenUp(t *testing.T) {
	m := NewHealthMonitor(nil, BootstrapOptions{}, HealthMonitorOptions{PollInterval: 5 * time.Millisecond}, nil)
	m.mu.Lock()
	m.state = StateGivenUp
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("run did not stop polling after reaching the given_up state")
	}
}
