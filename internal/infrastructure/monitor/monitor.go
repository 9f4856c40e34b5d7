// Package monitor polls backing services and keeps the latest readiness view.
package monitor

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// CheckFunc probes one dependency and returns nil when it is reachable.
type CheckFunc func(ctx context.Context) error

// Probe describes a dependency. Required probes decide overall readiness.
type Probe struct {
	Name     string
	Required bool
	Timeout  time.Duration
	Check    CheckFunc
}

// Backlog reports how many items wait in a local queue.
type Backlog interface {
	Len() (int, error)
}

type Monitor struct {
	probes  []Probe
	backlog Backlog

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopOnce sync.Once
	stopCh   chan struct{}
	logger   *zap.Logger
}

func New(interval time.Duration, logger *zap.Logger, probes ...Probe) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		probes:   probes,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

// WithBacklog reports the outbox depth in every status snapshot.
func (m *Monitor) WithBacklog(b Backlog) *Monitor {
	m.backlog = b
	return m
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// IsReady reports whether every required dependency answered the last probe.
func (m *Monitor) IsReady() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Ready
}

// Component returns a health view of a single named dependency.
func (m *Monitor) Component(name string) *ComponentHealth {
	return &ComponentHealth{monitor: m, name: name}
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.clone()
}

// Refresh runs every probe once and stores the result.
func (m *Monitor) Refresh(ctx context.Context) Status {
	status := Status{
		Ready:      true,
		Components: make(map[string]Component, len(m.probes)),
		LastCheck:  time.Now().UTC(),
	}

	for _, p := range m.probes {
		comp := m.run(ctx, p)
		status.Components[p.Name] = comp
		if p.Required && !comp.Up {
			status.Ready = false
		}
	}

	if m.backlog != nil {
		size, err := m.backlog.Len()
		if err != nil {
			m.logger.Warn("outbox size check failed", zap.Error(err))
		}
		status.Backlog = size
	}

	m.mu.Lock()
	prev := m.status
	m.status = status
	m.mu.Unlock()

	m.logTransitions(prev, status)
	return status.clone()
}

func (m *Monitor) run(ctx context.Context, p Probe) Component {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	comp := Component{Required: p.Required}
	if p.Check == nil {
		comp.Error = "not configured"
		return comp
	}
	if err := p.Check(ctx); err != nil {
		comp.Error = err.Error()
	} else {
		comp.Up = true
	}
	comp.LatencyMS = time.Since(start).Milliseconds()
	return comp
}

func (m *Monitor) logTransitions(prev, next Status) {
	names := make([]string, 0, len(next.Components))
	for name := range next.Components {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cur := next.Components[name]
		old, seen := prev.Components[name]
		if seen && old.Up == cur.Up {
			continue
		}
		if cur.Up {
			m.logger.Info("dependency up", zap.String("component", name))
		} else {
			m.logger.Warn("dependency down", zap.String("component", name), zap.String("error", cur.Error))
		}
	}
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh(context.Background())
	for {
		select {
		case <-ticker.C:
			m.Refresh(context.Background())
		case <-m.stopCh:
			return
		}
	}
}

// ComponentHealth answers IsOnline for one dependency, for consumers that only
// care about a single service.
type ComponentHealth struct {
	monitor *Monitor
	name    string
}

func (c *ComponentHealth) IsOnline() bool {
	c.monitor.mu.RLock()
	defer c.monitor.mu.RUnlock()
	return c.monitor.status.Components[c.name].Up
}
