// Package gateway implements the process-wide session manager behind
// the foreign-function boundary: one scan at a time, results handed
// over as transfer buffers with exactly one release each, and every
// failure collapsed into the boundary's limited vocabulary.
package gateway

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/edwinatokaranAlten/NioxPlugin/internal/device"
	"github.com/edwinatokaranAlten/NioxPlugin/internal/devicefactory"
	"github.com/edwinatokaranAlten/NioxPlugin/scanner"
)

// Build metadata, set via -ldflags at release time.
var (
	Version = "dev"
	Commit  = "none"
)

// Manager owns the process-wide backend connection and the single
// active-session slot. At most one scan session exists per process;
// concurrent scan attempts fail fast instead of queuing.
type Manager struct {
	logger *logrus.Logger
	arena  *BufferArena

	mu      sync.Mutex
	backend device.Backend
	session *scanner.Session
}

var (
	instance   *Manager
	instanceMu sync.Mutex
)

// Instance returns the process-wide manager, constructing it lazily.
func Instance() *Manager {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	if instance == nil {
		logger := logrus.New()
		logger.SetLevel(logrus.PanicLevel)
		instance = NewManager(logger)
	}
	return instance
}

// NewManager creates an uninitialized manager. Most callers want
// Instance; direct construction exists for tests.
func NewManager(logger *logrus.Logger) *Manager {
	if logger == nil {
		logger = logrus.New()
	}
	return &Manager{
		logger: logger,
		arena:  NewBufferArena(),
	}
}

// Init constructs the backend connection. Idempotent: calling while
// already initialized is a no-op success.
func (m *Manager) Init() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ensureBackendLocked() == nil
}

func (m *Manager) ensureBackendLocked() error {
	if m.backend != nil {
		return nil
	}
	backend, err := devicefactory.BackendFactory()
	if err != nil {
		m.logger.WithError(err).Error("backend initialization failed")
		return fmt.Errorf("%w: %v", device.ErrAdapterUnavailable, err)
	}
	m.backend = backend
	return nil
}

// AdapterState queries the radio availability. Auto-initializes if
// needed and never blocks on a running scan.
func (m *Manager) AdapterState() device.AdapterState {
	m.mu.Lock()
	err := m.ensureBackendLocked()
	backend := m.backend
	m.mu.Unlock()

	if err != nil {
		return device.AdapterUnknown
	}
	return backend.AdapterState()
}

// Scan runs one bounded discovery and returns the handle of a transfer
// buffer holding the serialized result. The call blocks up to duration
// plus a small fixed grace. Ownership of the buffer moves to the caller:
// the manager never reuses a handle once returned.
func (m *Manager) Scan(duration time.Duration, targetOnly bool) (uint64, error) {
	m.mu.Lock()
	if err := m.ensureBackendLocked(); err != nil {
		m.mu.Unlock()
		return 0, err
	}
	if m.session != nil && m.session.State() <= scanner.StateScanning {
		m.mu.Unlock()
		return 0, device.ErrAlreadyScanning
	}
	sess := scanner.NewSession(m.backend, nil, m.logger)
	m.session = sess
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		if m.session == sess {
			m.session = nil
		}
		m.mu.Unlock()
	}()

	filter := device.NoFilter()
	if targetOnly {
		filter = device.TargetFilter()
	}
	if err := sess.Start(filter, duration); err != nil {
		return 0, err
	}

	devices := sess.Wait()
	buf, err := MarshalDevices(devices)
	if err != nil {
		m.logger.WithError(err).Error("result serialization failed")
		return 0, err
	}
	return m.arena.Register(buf), nil
}

// BufferBytes returns the contents of a transfer buffer without
// consuming its handle.
func (m *Manager) BufferBytes(h uint64) ([]byte, bool) {
	return m.arena.Bytes(h)
}

// ReleaseBuffer consumes a handle returned by Scan. Handle 0 is a safe
// no-op; an unknown handle is logged and ignored.
func (m *Manager) ReleaseBuffer(h uint64) {
	if h == 0 {
		return
	}
	if !m.arena.Release(h) {
		m.logger.WithField("handle", h).Warn("release of unknown or already released buffer")
	}
}

// StopCurrentScan requests cooperative cancellation of the active scan.
// Safe to call from any goroutine; a no-op without an active session.
func (m *Manager) StopCurrentScan() {
	m.mu.Lock()
	sess := m.session
	m.mu.Unlock()
	if sess != nil {
		sess.Cancel()
	}
}

// Teardown cancels any active scan, releases the backend connection and
// resets the manager to its pre-init state. Idempotent. Outstanding
// transfer buffers stay valid: their ownership already moved to the
// callers holding them.
func (m *Manager) Teardown() {
	m.mu.Lock()
	sess := m.session
	backend := m.backend
	m.session = nil
	m.backend = nil
	m.mu.Unlock()

	if sess != nil {
		sess.Cancel()
	}
	if closer, ok := backend.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			m.logger.WithError(err).Warn("backend close failed")
		}
	}
}

// ArenaCounters exposes allocation accounting for leak checks.
func (m *Manager) ArenaCounters() (allocated, released int64) {
	return m.arena.Counters()
}

// StaticInfo returns the version/implementation string. The storage
// backing it on the C side is static; callers must never release it.
func (m *Manager) StaticInfo() string {
	return fmt.Sprintf("NioxPlugin %s (%s)", Version, Commit)
}
