// Package testutils provides fixtures for scan tests: an in-memory
// advertisement builder and a scripted discovery backend.
package testutils

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/edwinatokaranAlten/NioxPlugin/internal/device"
)

// FakeBackend is a scripted device.Backend. Advertisements in Script
// are delivered on a separate goroutine as soon as discovery starts,
// mimicking the arbitrary-thread delivery of a real radio stack.
// Additional events can be injected mid-scan with Deliver.
type FakeBackend struct {
	// State is what AdapterState reports.
	State device.AdapterState
	// StartErr makes StartDiscovery refuse with this error.
	StartErr error
	// Script is delivered in order right after a successful start.
	Script []device.Advertisement
	// DeliverAfterStop keeps the callback wired past StopDiscovery,
	// imitating stacks whose in-flight callbacks outlive the stop call.
	DeliverAfterStop bool

	mu      sync.Mutex
	onEvent func(device.Advertisement)

	startCount atomic.Int32
	stopCount  atomic.Int32
	scriptDone chan struct{}
}

type fakeHandle struct {
	backend *FakeBackend
	once    sync.Once
}

func (h *fakeHandle) Stop() {
	h.once.Do(func() {
		h.backend.mu.Lock()
		if !h.backend.DeliverAfterStop {
			h.backend.onEvent = nil
		}
		h.backend.mu.Unlock()
	})
}

// NewFakeBackend creates a backend with an enabled adapter.
func NewFakeBackend(script ...device.Advertisement) *FakeBackend {
	return &FakeBackend{
		State:  device.AdapterEnabled,
		Script: script,
	}
}

func (b *FakeBackend) AdapterState() device.AdapterState {
	return b.State
}

func (b *FakeBackend) StartDiscovery(_ device.Filter, onEvent func(device.Advertisement)) (device.DiscoveryHandle, error) {
	if b.StartErr != nil {
		return nil, b.StartErr
	}
	b.startCount.Add(1)

	b.mu.Lock()
	b.onEvent = onEvent
	b.scriptDone = make(chan struct{})
	script := append([]device.Advertisement(nil), b.Script...)
	done := b.scriptDone
	b.mu.Unlock()

	go func() {
		defer close(done)
		for _, adv := range script {
			b.Deliver(adv)
		}
	}()

	return &fakeHandle{backend: b}, nil
}

func (b *FakeBackend) StopDiscovery(h device.DiscoveryHandle) {
	b.stopCount.Add(1)
	if h != nil {
		h.Stop()
	}
}

// Deliver injects one advertisement as if the radio reported it. It is
// silently dropped when no discovery is active, like a real stack whose
// callback registration was torn down.
func (b *FakeBackend) Deliver(adv device.Advertisement) {
	b.mu.Lock()
	onEvent := b.onEvent
	b.mu.Unlock()
	if onEvent != nil {
		onEvent(adv)
	}
}

// WaitScriptDelivered blocks until the scripted advertisements have all
// been handed to the callback. It also waits for discovery to start, so
// callers may invoke it concurrently with the scan itself.
func (b *FakeBackend) WaitScriptDelivered() {
	for {
		b.mu.Lock()
		done := b.scriptDone
		b.mu.Unlock()
		if done != nil {
			<-done
			return
		}
		time.Sleep(time.Millisecond)
	}
}

// StartCount returns how many discoveries were started.
func (b *FakeBackend) StartCount() int { return int(b.startCount.Load()) }

// StopCount returns how many discoveries were stopped.
func (b *FakeBackend) StopCount() int { return int(b.stopCount.Load()) }
