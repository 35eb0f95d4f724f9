package lsp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewPoolAppliesDefaults(t *testing.T) {
	p := NewPool(0, 0, HealthMonitorOptions{}, "ada_language_server")
	assert.Equal(t, defaultMaxInstances, p.maxInstances)
	assert.Equal(t, defaultIdleTimeout, p.idleTimeout)
}

func TestNewPoolPreservesOverrides(t *testing.T) {
	p := NewPool(7, 10*time.Minute, HealthMonitorOptions{}, "ada_language_server")
	assert.Equal(t, 7, p.maxInstances)
	assert.Equal(t, 10*time.Minute, p.idleTimeout)
}

func TestResolveProjectRootHonorsEnvOverride(t *testing.T) {
	t.Setenv("ADA_PROJECT_ROOT", "/srv/project")
	assert.Equal(t, "/srv/project", ResolveProjectRoot("/some/unrelated/file.adb"))
}

func TestResolveProjectRootFallsBackToCwd(t *testing.T) {
	got := ResolveProjectRoot("")
	assert.NotEmpty(t, got)
}

func TestPopLRULockedEvictsOldest(t *testing.T) {
	p := NewPool(2, time.Minute, HealthMonitorOptions{}, "")

	older := &Instance{ProjectRoot: "a", lastUsedAt: time.Now().Add(-time.Hour)}
	newer := &Instance{ProjectRoot: "b", lastUsedAt: time.Now()}
	p.instances["a"] = older
	p.instances["b"] = newer

	evicted := p.popLRULocked()
	assert.Same(t, older, evicted)
	assert.Len(t, p.instances, 1)
	assert.Contains(t, p.instances, "b")
}

func TestGetStatsReportsOccupancy(t *testing.T) {
	p := NewPool(3, time.Minute, HealthMonitorOptions{}, "")
	p.instances["root-a"] = &Instance{ProjectRoot: "root-a"}
	p.instances["root-b"] = &Instance{ProjectRoot: "root-b"}

	stats := p.GetStats()
	assert.Equal(t, 2, stats.ActiveInstances)
	assert.Equal(t, 3, stats.MaxInstances)
	assert.ElementsMatch(t, []string{"root-a", "root-b"}, stats.Projects)
}

func TestInstancesSnapshot(t *testing.T) {
	p := NewPool(3, time.Minute, HealthMonitorOptions{}, "")
	inst := &Instance{ProjectRoot: "root-a"}
	p.instances["root-a"] = inst

	snapshot := p.Instances()
	assert.Len(t, snapshot, 1)
	assert.Equal(t, "root-a", snapshot[0].ProjectRoot)
}

func TestShutdownAllClearsInstancesWithoutClients(t *testing.T) {
	p := NewPool(3, time.Minute, HealthMonitorOptions{}, "")
	p.instances["root-a"] = &Instance{ProjectRoot: "root-a"}
	p.reaperUp = true

	assert.NotPanics(t, func() { p.ShutdownAll(context.Background()) })
	assert.Empty(t, p.instances)
	assert.False(t, p.reaperUp)
}

func TestPoolRunCtxOutlivesCallerContext(t *testing.T) {
	p := NewPool(3, time.Minute, HealthMonitorOptions{}, "")

	callerCtx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	cancel()
	<-callerCtx.Done()

	assert.NoError(t, p.runCtx.Err(), "pool's runCtx must not be tied to a caller's short-lived context")
}

func TestShutdownAllCancelsRunCtx(t *testing.T) {
	p := NewPool(3, time.Minute, HealthMonitorOptions{}, "")
	assert.NoError(t, p.runCtx.Err())

	p.ShutdownAll(context.Background())

	assert.ErrorIs(t, p.runCtx.Err(), context.Canceled)
}
