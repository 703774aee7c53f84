package scanner

import (
	"sync"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/edwinatokaranAlten/NioxPlugin/internal/device"
)

// DiscoveredDevice is the aggregated view of one nearby peripheral,
// merged across every advertisement seen for its address during a scan.
type DiscoveredDevice struct {
	Address            string
	Name               *string
	RSSI               *int
	ServiceIdentifiers []string
	IsTargetDevice     bool
	ExtractedSerial    *string
	FirstSeen          time.Time
	LastSeen           time.Time
}

// Clone returns a deep copy safe to hand outside the aggregator.
func (d *DiscoveredDevice) Clone() DiscoveredDevice {
	out := *d
	if d.Name != nil {
		name := *d.Name
		out.Name = &name
	}
	if d.RSSI != nil {
		rssi := *d.RSSI
		out.RSSI = &rssi
	}
	if d.ExtractedSerial != nil {
		serial := *d.ExtractedSerial
		out.ExtractedSerial = &serial
	}
	out.ServiceIdentifiers = append([]string(nil), d.ServiceIdentifiers...)
	return out
}

// DisplayName returns the device name, falling back to the address.
func (d *DiscoveredDevice) DisplayName() string {
	if d.Name != nil && *d.Name != "" {
		return *d.Name
	}
	return d.Address
}

// classify recomputes the target flag and serial from merged data.
func (d *DiscoveredDevice) classify() {
	name := ""
	if d.Name != nil {
		name = *d.Name
	}
	d.IsTargetDevice = device.IsTargetDevice(name, d.ServiceIdentifiers)
	if serial := device.ExtractSerial(name); serial != "" {
		d.ExtractedSerial = &serial
	} else {
		d.ExtractedSerial = nil
	}
}

// DeviceFromAdvertisement copies everything needed out of a transient,
// backend-owned advertisement into an owned DiscoveredDevice.
func DeviceFromAdvertisement(adv device.Advertisement, seen time.Time) DiscoveredDevice {
	d := DiscoveredDevice{
		Address:   device.CanonicalAddress(adv.Addr()),
		FirstSeen: seen,
		LastSeen:  seen,
	}
	if name := adv.LocalName(); name != "" {
		owned := name
		d.Name = &owned
	}
	if adv.HasRSSI() {
		rssi := adv.RSSI()
		d.RSSI = &rssi
	}
	for _, id := range adv.Services() {
		d.ServiceIdentifiers = append(d.ServiceIdentifiers, id)
	}
	d.classify()
	return d
}

// Aggregator is an address-keyed deduplicating store for discovered
// devices. Insert is called from backend callback goroutines; Snapshot
// is taken once, from the goroutine finalizing the session.
type Aggregator struct {
	mu      sync.RWMutex
	devices *orderedmap.OrderedMap[string, *DiscoveredDevice]
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		devices: orderedmap.New[string, *DiscoveredDevice](),
	}
}

// Insert stores d, merging with any prior record for the same address:
// the name is overwritten only when the incoming one is present, the
// rssi always follows the most recent reading, and service identifiers
// accumulate as a union. Reports whether an existing record was updated.
func (a *Aggregator) Insert(d DiscoveredDevice) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	existing, ok := a.devices.Get(d.Address)
	if !ok {
		owned := d.Clone()
		a.devices.Set(d.Address, &owned)
		return false
	}

	if d.Name != nil {
		name := *d.Name
		existing.Name = &name
	}
	if d.RSSI != nil {
		rssi := *d.RSSI
		existing.RSSI = &rssi
	}
	for _, id := range d.ServiceIdentifiers {
		if !containsIdentifier(existing.ServiceIdentifiers, id) {
			existing.ServiceIdentifiers = append(existing.ServiceIdentifiers, id)
		}
	}
	existing.LastSeen = d.LastSeen
	existing.classify()
	return true
}

// Len returns the number of distinct addresses seen so far.
func (a *Aggregator) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.devices.Len()
}

// Snapshot returns an immutable, insertion-ordered copy of the store.
func (a *Aggregator) Snapshot() []DiscoveredDevice {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]DiscoveredDevice, 0, a.devices.Len())
	for pair := a.devices.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value.Clone())
	}
	return out
}

func containsIdentifier(ids []string, id string) bool {
	normalized := device.NormalizeIdentifier(id)
	for _, existing := range ids {
		if device.NormalizeIdentifier(existing) == normalized {
			return true
		}
	}
	return false
}
