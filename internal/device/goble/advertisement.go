package goble

import (
	ble "github.com/go-ble/ble"

	"github.com/edwinatokaranAlten/NioxPlugin/internal/device"
)

// advertisement wraps ble.Advertisement to implement device.Advertisement.
// The wrapped value is only valid for the duration of the callback it
// was delivered on; callers copy what they keep.
type advertisement struct {
	adv ble.Advertisement
}

func newAdvertisement(adv ble.Advertisement) device.Advertisement {
	return &advertisement{adv: adv}
}

func (a *advertisement) LocalName() string { return a.adv.LocalName() }
func (a *advertisement) RSSI() int         { return a.adv.RSSI() }

// HasRSSI treats 0 as "no reading": go-ble has no separate absent-RSSI
// signal and reports 0 when the HCI event carried none. A genuine 0 dBm
// reading is indistinguishable and also reads as absent; real receptions
// sit well below that.
func (a *advertisement) HasRSSI() bool { return a.adv.RSSI() != 0 }

func (a *advertisement) Addr() string { return a.adv.Addr().String() }

func (a *advertisement) Services() []string {
	bleServices := a.adv.Services()
	result := make([]string, len(bleServices))
	for i, svc := range bleServices {
		result[i] = svc.String()
	}
	return result
}
