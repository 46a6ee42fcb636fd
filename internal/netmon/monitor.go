// Package netmon tracks device connectivity by probing the gateway health
// endpoint and notifies subscribers on every online/offline flip.
package netmon

import (
	"context"
	"sync"
	"time"

	"github.com/fahimhasan4438765/techzu-pos-system/internal/gateway"
	"go.uber.org/zap"
)

type Listener func(online bool)

type Monitor struct {
	gw       gateway.Gateway
	interval time.Duration
	logger   *zap.Logger

	mu         sync.Mutex
	online     bool
	listeners  map[int]Listener
	nextID     int
	pending    []flipEvent
	delivering bool
}

type flipEvent struct {
	online    bool
	listeners []Listener
}

func NewMonitor(gw gateway.Gateway, interval time.Duration, logger *zap.Logger) *Monitor {
	return &Monitor{
		gw:        gw,
		interval:  interval,
		logger:    logger,
		listeners: make(map[int]Listener),
	}
}

// Start probes once immediately, then on every tick until ctx is done.
func (m *Monitor) Start(ctx context.Context) {
	m.logger.Info("Starting connectivity monitor", zap.Duration("interval", m.interval))
	m.probe(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Stopping connectivity monitor")
			return
		case <-ticker.C:
			m.probe(ctx)
		}
	}
}

func (m *Monitor) probe(ctx context.Context) {
	err := m.gw.Health(ctx)
	if ctx.Err() != nil {
		return
	}
	m.SetOnline(err == nil)
}

// SetOnline records an observed connectivity state. Other components feed
// it too: a request-level network failure is as good a signal as a failed
// probe. Listeners fire only when the state actually flips, and flips are
// delivered in the order they happened: a flip observed while another
// delivery is running is queued behind it rather than interleaved.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	m.logger.Info("Connectivity changed", zap.Bool("online", online))

	listeners := make([]Listener, 0, len(m.listeners))
	for _, l := range m.listeners {
		listeners = append(listeners, l)
	}
	m.pending = append(m.pending, flipEvent{online: online, listeners: listeners})
	if m.delivering {
		m.mu.Unlock()
		return
	}
	m.delivering = true
	m.mu.Unlock()

	for {
		m.mu.Lock()
		if len(m.pending) == 0 {
			m.delivering = false
			m.mu.Unlock()
			return
		}
		ev := m.pending[0]
		m.pending = m.pending[1:]
		m.mu.Unlock()

		for _, l := range ev.listeners {
			l(ev.online)
		}
	}
}

func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Subscribe registers a listener and returns its unsubscribe func.
func (m *Monitor) Subscribe(l Listener) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = l
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}
