// Package scanner implements time-bounded BLE device discovery: a
// deduplicating result aggregator, a single-use scan session state
// machine, and the trampoline that feeds backend callbacks into them.
package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/edwinatokaranAlten/NioxPlugin/internal/device"
	"github.com/edwinatokaranAlten/NioxPlugin/internal/devicefactory"
	"github.com/edwinatokaranAlten/NioxPlugin/internal/ring"
)

const eventBufferSize = 100

// ScanOptions configures one discovery run.
type ScanOptions struct {
	Duration   time.Duration
	TargetOnly bool          // restrict to the NIOX device family
	Filter     device.Filter // ignored when TargetOnly is set
}

// DefaultScanOptions returns default scanning options
func DefaultScanOptions() *ScanOptions {
	return &ScanOptions{
		Duration: 10 * time.Second,
	}
}

// EffectiveFilter resolves the filter the session will run with.
func (o *ScanOptions) EffectiveFilter() device.Filter {
	if o.TargetOnly {
		return device.TargetFilter()
	}
	return o.Filter
}

// Scanner handles BLE device discovery
type Scanner struct {
	logger *logrus.Logger
	events *ring.Channel[DeviceEvent]
}

// NewScanner creates a new BLE scanner
func NewScanner(logger *logrus.Logger) (*Scanner, error) {
	if logger == nil {
		logger = logrus.New()
	}
	return &Scanner{
		logger: logger,
		events: ring.New[DeviceEvent](eventBufferSize),
	}, nil
}

// Scan performs one bounded discovery run and blocks until it resolves.
// Cancelling ctx ends the scan early with the devices aggregated so far.
func (s *Scanner) Scan(ctx context.Context, opts *ScanOptions) ([]DiscoveredDevice, error) {
	if opts == nil {
		opts = DefaultScanOptions()
	}

	backend, err := devicefactory.BackendFactory()
	if err != nil {
		return nil, fmt.Errorf("failed to create BLE backend: %w", err)
	}

	sess := NewSession(backend, s.events, s.logger)
	if err := sess.Start(opts.EffectiveFilter(), opts.Duration); err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	stop := context.AfterFunc(ctx, sess.Cancel)
	defer stop()

	devices := sess.Wait()
	s.logger.WithField("device_count", len(devices)).Info("BLE scan completed")
	return devices, nil
}

// Events returns a read-only channel of live device events.
func (s *Scanner) Events() <-chan DeviceEvent {
	return s.events.C()
}
