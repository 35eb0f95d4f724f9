package lsp

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/MDBrothers/ada-mcp-bridge/logger"
)

const (
	defaultMaxInstances = 3
	defaultIdleTimeout  = 5 * time.Minute
	postInsertGrace     = time.Second
	reapInterval        = time.Minute
)

// Instance is one pooled LS connection: the live client (swapped in place
// by the health monitor on restart), its monitor, and the immutable
// project root that keys it in the pool.
type Instance struct {
	ProjectRoot string

	mu         sync.Mutex
	client     *Client
	lastUsedAt time.Time
	monitor    *HealthMonitor
}

// Client returns the currently-live client for this instance.
func (i *Instance) Client() *Client {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.client
}

func (i *Instance) setClient(c *Client) {
	i.mu.Lock()
	i.client = c
	i.mu.Unlock()
}

func (i *Instance) touch() {
	i.mu.Lock()
	i.lastUsedAt = time.Now()
	i.mu.Unlock()
}

func (i *Instance) idleSince() time.Time {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.lastUsedAt
}

// Pool is the map of live LS instances keyed by project root, with LRU
// eviction on capacity and a background idle-timeout reaper.
type Pool struct {
	LSPath string

	// runCtx governs every pooled subprocess and health monitor for as
	// long as the pool is alive; it is independent of any single
	// caller's request context and is canceled only by ShutdownAll.
	runCtx    context.Context
	runCancel context.CancelFunc

	mu           sync.Mutex
	instances    map[string]*Instance
	maxInstances int
	idleTimeout  time.Duration
	healthOpts   HealthMonitorOptions
	reaperUp     bool
}

// NewPool constructs a Pool. Zero maxInstances/idleTimeout fall back to
// the defaults (3 instances, 5 minute idle timeout).
func NewPool(maxInstances int, idleTimeout time.Duration, healthOpts HealthMonitorOptions, lsPath string) *Pool {
	if maxInstances <= 0 {
		maxInstances = defaultMaxInstances
	}
	if idleTimeout <= 0 {
		idleTimeout = defaultIdleTimeout
	}
	runCtx, runCancel := context.WithCancel(context.Background())
	return &Pool{
		LSPath:       lsPath,
		runCtx:       runCtx,
		runCancel:    runCancel,
		instances:    make(map[string]*Instance),
		maxInstances: maxInstances,
		idleTimeout:  idleTimeout,
		healthOpts:   healthOpts,
	}
}

// ResolveProjectRoot determines the project root for an incoming file
// path: ADA_PROJECT_ROOT override > project-root detector > cwd.
func ResolveProjectRoot(filePath string) string {
	if override := os.Getenv("ADA_PROJECT_ROOT"); override != "" {
		return override
	}
	if filePath != "" {
		return FindProjectRoot(filePath)
	}
	if cwd, err := os.Getwd(); err == nil {
		return cwd
	}
	return "."
}

// Get returns a live client for the project root implied by filePath,
// creating or evicting as necessary. filePath may be empty, in which case
// the environment override or cwd determines the root. ctx bounds this
// call only (e.g. the graceful shutdown of an evicted instance); the
// subprocess and health monitor for any newly bootstrapped instance are
// tied to the pool's own runCtx so they outlive the call that created them.
func (p *Pool) Get(ctx context.Context, filePath string) (*Client, error) {
	projectRoot := ResolveProjectRoot(filePath)

	p.mu.Lock()
	if inst, ok := p.instances[projectRoot]; ok {
		if inst.Client() != nil && inst.Client().IsRunning() {
			inst.touch()
			p.mu.Unlock()
			return inst.Client(), nil
		}
		delete(p.instances, projectRoot)
	}

	var evicted *Instance
	if len(p.instances) >= p.maxInstances {
		evicted = p.popLRULocked()
	}
	needReaper := !p.reaperUp
	if needReaper {
		p.reaperUp = true
	}
	p.mu.Unlock()

	if evicted != nil {
		p.shutdownInstance(ctx, evicted)
	}
	if needReaper {
		go p.reap(p.runCtx)
	}

	client, err := Bootstrap(p.runCtx, BootstrapOptions{ProjectRoot: projectRoot, LSPath: p.LSPath})
	if err != nil {
		return nil, err
	}

	inst := &Instance{ProjectRoot: projectRoot, client: client, lastUsedAt: time.Now()}
	inst.monitor = NewHealthMonitor(client, BootstrapOptions{ProjectRoot: projectRoot, LSPath: p.LSPath}, p.healthOpts, func(nc *Client) {
		inst.setClient(nc)
	})
	inst.monitor.Start(p.runCtx)

	p.mu.Lock()
	p.instances[projectRoot] = inst
	p.mu.Unlock()

	time.Sleep(postInsertGrace)
	return client, nil
}

// popLRULocked removes and returns the least-recently-used instance. Caller
// must hold p.mu; the returned instance must be shut down after releasing
// the lock, never while it is held.
func (p *Pool) popLRULocked() *Instance {
	var lruKey string
	var lru *Instance
	for k, inst := range p.instances {
		if lru == nil || inst.idleSince().Before(lru.idleSince()) {
			lruKey, lru = k, inst
		}
	}
	if lru != nil {
		delete(p.instances, lruKey)
	}
	return lru
}

func (p *Pool) shutdownInstance(ctx context.Context, inst *Instance) {
	if inst.monitor != nil {
		inst.monitor.Stop()
	}
	if c := inst.Client(); c != nil {
		if err := c.Shutdown(ctx); err != nil {
			logger.Warn("error shutting down language server for {ProjectRoot}: {Error}", inst.ProjectRoot, err.Error())
		}
	}
}

func (p *Pool) reap(ctx context.Context) {
	ticker := time.NewTicker(reapInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		p.mu.Lock()
		var victims []*Instance
		for k, inst := range p.instances {
			if time.Since(inst.idleSince()) > p.idleTimeout {
				victims = append(victims, inst)
				delete(p.instances, k)
			}
		}
		empty := len(p.instances) == 0
		if empty {
			p.reaperUp = false
		}
		p.mu.Unlock()

		for _, v := range victims {
			p.shutdownInstance(ctx, v)
		}
		if empty {
			return
		}
	}
}

// ShutdownAll stops the reaper and shuts down every pooled instance. This is
// the only caller permitted to cancel the pool's long-lived runCtx; it does
// so after the graceful per-instance shutdown sequence so in-flight
// shutdown/exit calls are not cut short.
func (p *Pool) ShutdownAll(ctx context.Context) {
	p.mu.Lock()
	victims := make([]*Instance, 0, len(p.instances))
	for k, inst := range p.instances {
		victims = append(victims, inst)
		delete(p.instances, k)
	}
	p.reaperUp = false
	p.mu.Unlock()

	for _, v := range victims {
		p.shutdownInstance(ctx, v)
	}
	p.runCancel()
}

// Stats is a point-in-time snapshot of pool occupancy for the readiness
// tool.
type Stats struct {
	ActiveInstances int
	MaxInstances    int
	Projects        []string
}

// GetStats returns a snapshot of pool occupancy.
func (p *Pool) GetStats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	projects := make([]string, 0, len(p.instances))
	for k := range p.instances {
		projects = append(projects, k)
	}
	return Stats{ActiveInstances: len(p.instances), MaxInstances: p.maxInstances, Projects: projects}
}

// Instances returns a snapshot slice of the currently pooled instances, for
// the readiness tool to inspect individual client/monitor state.
func (p *Pool) Instances() []*Instance {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*Instance, 0, len(p.instances))
	for _, inst := range p.instances {
		out = append(out, inst)
	}
	return out
}

// Monitor exposes the instance's health monitor for status reporting.
func (i *Instance) Monitor() *HealthMonitor { return i.monitor }
