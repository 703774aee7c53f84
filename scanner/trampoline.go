package scanner

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/edwinatokaranAlten/NioxPlugin/internal/device"
)

// DeviceEventType marks if the device was newly discovered or updated
type DeviceEventType int

const (
	EventNew DeviceEventType = iota
	EventUpdated
)

// DeviceEvent is published on the session's event channel for each
// advertisement that passes the filter.
type DeviceEvent struct {
	Type      DeviceEventType
	Device    DiscoveredDevice
	Timestamp time.Time
}

// newTrampoline adapts raw backend events into safe aggregator inserts.
//
// The returned function runs on goroutines owned by the backend. It
// checks the session is still scanning before touching it (events
// racing a teardown are dropped, never dereferenced), copies all data
// out of the backend-owned advertisement before returning, and never
// blocks: the aggregator insert is a short critical section and the
// event channel drops oldest instead of waiting.
func newTrampoline(s *Session) func(device.Advertisement) {
	return func(adv device.Advertisement) {
		if s.State() != StateScanning {
			return
		}
		if !s.filter.Matches(adv) {
			return
		}

		now := time.Now()
		d := DeviceFromAdvertisement(adv, now)

		// Re-check after the copy: an event that raced past the first
		// check while the session resolved is tolerated, the snapshot
		// was not taken yet and insertion is idempotent.
		if s.State() != StateScanning {
			return
		}
		updated := s.aggregator.Insert(d)

		if updated {
			s.publish(DeviceEvent{Type: EventUpdated, Device: d, Timestamp: now})
			return
		}
		s.logger.WithFields(logrus.Fields{
			"device":  d.DisplayName(),
			"address": d.Address,
			"target":  d.IsTargetDevice,
		}).Debug("Discovered new device")
		s.publish(DeviceEvent{Type: EventNew, Device: d, Timestamp: now})
	}
}

func (s *Session) publish(ev DeviceEvent) {
	if s.events != nil {
		s.events.ForceSend(ev)
	}
}
