package monitor

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/plumeworks/plume/internal/logging"
)

// Listener receives events. Implementations must not block; slow consumers
// should buffer or drop on their own side.
type Listener interface {
	OnEvent(ev Event)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(ev Event)

// OnEvent calls f(ev).
func (f ListenerFunc) OnEvent(ev Event) {
	f(ev)
}

// Monitor fans events out to subscribed listeners. A panicking listener is
// logged and skipped; it never takes the pipeline down.
type Monitor struct {
	mu        sync.RWMutex
	listeners []Listener
	logger    *log.Logger
}

// MonitorOption customizes a Monitor.
type MonitorOption func(*Monitor)

// WithLogger replaces the default component logger.
func WithLogger(l *log.Logger) MonitorOption {
	return func(m *Monitor) {
		if l != nil {
			m.logger = l
		}
	}
}

// New creates an empty monitor.
func New(opts ...MonitorOption) *Monitor {
	m := &Monitor{logger: logging.New("monitor")}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Subscribe adds a listener. Nil listeners are ignored.
func (m *Monitor) Subscribe(l Listener) {
	if l == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

// Notify delivers the event to every listener. The timestamp is stamped here
// when the producer left it zero.
func (m *Monitor) Notify(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	m.mu.RLock()
	listeners := make([]Listener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.RUnlock()

	for _, l := range listeners {
		m.deliver(l, ev)
	}
}

func (m *Monitor) deliver(l Listener, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("listener panicked", "event", ev.Type, "panic", r)
		}
	}()
	l.OnEvent(ev)
}
