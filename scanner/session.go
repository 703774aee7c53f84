package scanner

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/edwinatokaranAlten/NioxPlugin/internal/device"
	"github.com/edwinatokaranAlten/NioxPlugin/internal/ring"
)

// SessionState is the lifecycle state of a scan session. Transitions are
// monotonic: Idle -> Scanning -> {Completed, Cancelled, Failed}. A
// session is single-use; a new scan needs a new session.
type SessionState int32

const (
	StateIdle SessionState = iota
	StateScanning
	StateCompleted
	StateCancelled
	StateFailed
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "invalid"
	}
}

// Session orchestrates one bounded discovery run against a backend.
//
// Device events are delivered on goroutines owned by the backend; the
// timer fires on its own goroutine; Cancel may be called from any
// goroutine. Exactly one of {timeout, cancel, backend start failure}
// resolves the session, enforced by a single atomic check-and-set.
type Session struct {
	backend    device.Backend
	aggregator *Aggregator
	filter     device.Filter
	logger     *logrus.Logger
	events     *ring.Channel[DeviceEvent]

	mu     sync.Mutex
	handle device.DiscoveryHandle
	timer  *time.Timer

	state    atomic.Int32
	resolved atomic.Bool
	done     chan struct{}
	failure  error
}

// NewSession creates an idle session bound to a backend. The events
// channel is optional; pass nil when no live observer exists.
func NewSession(backend device.Backend, events *ring.Channel[DeviceEvent], logger *logrus.Logger) *Session {
	if logger == nil {
		logger = logrus.New()
	}
	return &Session{
		backend:    backend,
		aggregator: NewAggregator(),
		logger:     logger,
		events:     events,
		done:       make(chan struct{}),
	}
}

// State returns the current session state.
func (s *Session) State() SessionState {
	return SessionState(s.state.Load())
}

// Err returns the failure that resolved the session, or nil.
func (s *Session) Err() error {
	<-s.done
	return s.failure
}

// Start transitions Idle -> Scanning, begins backend discovery and arms
// the deadline timer. It fails fast with ErrAlreadyScanning when the
// session has left Idle, and resolves the session as Failed when the
// backend refuses to start.
func (s *Session) Start(filter device.Filter, duration time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateScanning)) {
		return device.ErrAlreadyScanning
	}
	s.filter = filter

	handle, err := s.backend.StartDiscovery(filter, newTrampoline(s))
	if err != nil {
		s.logger.WithError(err).Error("discovery failed to start")
		s.failBackendStart(err)
		return device.ErrBackendStart
	}
	s.handle = handle
	s.timer = time.AfterFunc(duration, s.timeoutFired)

	s.logger.WithFields(logrus.Fields{
		"duration": duration,
		"filter":   filter.Kind(),
	}).Info("Starting BLE scan...")
	return nil
}

// Wait blocks until the session resolves, then returns the final
// aggregated snapshot. This is the sole suspension point exposed to a
// caller; resolution always happens on another goroutine.
func (s *Session) Wait() []DiscoveredDevice {
	<-s.done
	return s.aggregator.Snapshot()
}

// Done exposes the one-shot completion signal.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Cancel requests cooperative cancellation. Cancellation is early
// completion: the result is whatever has been aggregated so far, with
// the same shape as a normal completion. Safe to call from any
// goroutine, at any time, any number of times.
func (s *Session) Cancel() {
	s.resolve(StateCancelled)
}

// timeoutFired runs on the timer goroutine when the deadline expires.
func (s *Session) timeoutFired() {
	s.resolve(StateCompleted)
}

// resolve performs the stop/release sequence exactly once, regardless of
// which of the timer, an explicit cancel, or a start failure got here
// first. Returns false for losers of the race.
func (s *Session) resolve(final SessionState) bool {
	if !s.resolved.CompareAndSwap(false, true) {
		return false
	}
	s.state.Store(int32(final))

	s.mu.Lock()
	handle := s.handle
	s.handle = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	if handle != nil {
		s.backend.StopDiscovery(handle)
	}

	s.logger.WithFields(logrus.Fields{
		"state":        final,
		"device_count": s.aggregator.Len(),
	}).Info("BLE scan finished")

	close(s.done)
	return true
}

// failBackendStart resolves the session as Failed with an empty result.
// Caller holds s.mu; the handle and timer were never armed.
func (s *Session) failBackendStart(err error) {
	if !s.resolved.CompareAndSwap(false, true) {
		return
	}
	s.state.Store(int32(StateFailed))
	s.failure = err
	close(s.done)
}
