package device

import "strings"

// AdapterState reports the availability of the local Bluetooth radio.
// The numeric values are part of the external wire contract and must
// not be reordered.
type AdapterState int

const (
	AdapterEnabled     AdapterState = 0
	AdapterDisabled    AdapterState = 1
	AdapterUnsupported AdapterState = 2
	AdapterUnknown     AdapterState = 3
)

func (s AdapterState) String() string {
	switch s {
	case AdapterEnabled:
		return "enabled"
	case AdapterDisabled:
		return "disabled"
	case AdapterUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Advertisement is a single discovery event reported by the OS Bluetooth
// stack for one nearby device. Implementations may wrap transient,
// backend-owned buffers; consumers must copy out anything they keep.
type Advertisement interface {
	LocalName() string
	RSSI() int
	HasRSSI() bool
	Addr() string
	Services() []string
}

// DiscoveryHandle identifies one running discovery on a backend. It is
// returned by StartDiscovery and consumed by StopDiscovery.
type DiscoveryHandle interface {
	// Stop terminates the underlying discovery. Idempotent.
	Stop()
}

// Backend is the capability interface over a platform radio API. All
// session, aggregation and filter logic is written once against it.
//
// StartDiscovery begins delivering advertisements to onEvent from one or
// more goroutines owned by the backend until the returned handle is
// stopped. The filter is advisory: backends may deliver non-matching
// advertisements, the session filters again.
type Backend interface {
	StartDiscovery(filter Filter, onEvent func(Advertisement)) (DiscoveryHandle, error)
	StopDiscovery(h DiscoveryHandle)
	AdapterState() AdapterState
}

// CanonicalAddress normalizes a textual device address to canonical
// form: uppercase hex byte pairs, colon-separated. The hyphen rewrite
// applies only to MAC-shaped input; opaque identifiers reported by some
// platforms (darwin hands out CoreBluetooth UUIDs) are returned
// uppercased as-is so their hyphens survive.
func CanonicalAddress(addr string) string {
	addr = strings.ToUpper(addr)
	if isMACShaped(addr) {
		return strings.ReplaceAll(addr, "-", ":")
	}
	return addr
}

// isMACShaped reports whether s is six hex byte pairs separated by
// colons or hyphens.
func isMACShaped(s string) bool {
	if len(s) != 17 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if (i+1)%3 == 0 {
			if s[i] != ':' && s[i] != '-' {
				return false
			}
			continue
		}
		if !isHexDigit(s[i]) {
			return false
		}
	}
	return true
}

func isHexDigit(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'A' && c <= 'F'
}
