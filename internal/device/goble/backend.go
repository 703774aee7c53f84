// Package goble implements the discovery backend capability on top of
// the go-ble library (Linux HCI sockets, macOS CoreBluetooth).
package goble

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	ble "github.com/go-ble/ble"
	"github.com/sirupsen/logrus"

	"github.com/edwinatokaranAlten/NioxPlugin/internal/device"
)

// startGrace bounds how long StartDiscovery waits for an immediate
// refusal from the radio before treating the scan as running. go-ble
// surfaces start failures through its blocking Scan call, so a fast
// error inside this window is reported synchronously.
const startGrace = 250 * time.Millisecond

// DeviceFactory creates ble.Device instances (can be overridden in tests)
var DeviceFactory = func() (ble.Device, error) {
	return newPlatformDevice()
}

// Backend adapts a ble.Device to the device.Backend capability.
type Backend struct {
	logger *logrus.Logger

	mu  sync.Mutex
	dev ble.Device
}

// NewBackend creates a backend. The radio is opened lazily on first use
// so that adapter-state queries on machines without Bluetooth degrade
// instead of failing construction.
func NewBackend(logger *logrus.Logger) *Backend {
	if logger == nil {
		logger = logrus.New()
	}
	return &Backend{logger: logger}
}

func (b *Backend) ensureDevice() (ble.Device, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.dev != nil {
		return b.dev, nil
	}
	dev, err := DeviceFactory()
	if err != nil {
		return nil, err
	}
	b.dev = dev
	return dev, nil
}

// AdapterState probes the local radio. It never blocks on a scan: the
// probe is the (cached) device construction only.
func (b *Backend) AdapterState() device.AdapterState {
	if _, err := b.ensureDevice(); err != nil {
		return classifyAdapterError(err)
	}
	return device.AdapterEnabled
}

// classifyAdapterError maps known go-ble error strings to adapter
// states. The mapping follows the library's HCI and CoreBluetooth
// messages and degrades to Unknown.
func classifyAdapterError(err error) device.AdapterState {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unsupported"),
		strings.Contains(msg, "no such device"),
		strings.Contains(msg, "not supported"):
		return device.AdapterUnsupported
	case strings.Contains(msg, "powered off"),
		strings.Contains(msg, "down"),
		strings.Contains(msg, "disabled"):
		return device.AdapterDisabled
	default:
		return device.AdapterUnknown
	}
}

// discovery is the handle for one running scan. Stop is idempotent.
type discovery struct {
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

func (d *discovery) Stop() {
	d.stopOnce.Do(d.cancel)
	<-d.done
}

// StartDiscovery begins advertisement delivery to onEvent. go-ble scans
// with a blocking call, so the scan runs on its own goroutine and the
// returned handle cancels it. A refusal within the start grace window
// is reported as an error instead of a handle.
func (b *Backend) StartDiscovery(_ device.Filter, onEvent func(device.Advertisement)) (device.DiscoveryHandle, error) {
	dev, err := b.ensureDevice()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &discovery{cancel: cancel, done: make(chan struct{})}

	errCh := make(chan error, 1)
	go func() {
		defer close(d.done)
		err := dev.Scan(ctx, true, func(a ble.Advertisement) {
			onEvent(newAdvertisement(a))
		})
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			b.logger.WithError(err).Warn("BLE scan ended with error")
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		cancel()
		return nil, err
	case <-time.After(startGrace):
		return d, nil
	}
}

// StopDiscovery terminates the scan behind h and waits for the backend
// goroutine to drain.
func (b *Backend) StopDiscovery(h device.DiscoveryHandle) {
	if h != nil {
		h.Stop()
	}
}

// Close releases the underlying radio.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.dev == nil {
		return nil
	}
	err := b.dev.Stop()
	b.dev = nil
	return err
}
