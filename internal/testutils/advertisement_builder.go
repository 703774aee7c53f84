package testutils

import (
	"github.com/edwinatokaranAlten/NioxPlugin/internal/device"
)

// FakeAdvertisement is an owned, in-memory device.Advertisement.
type FakeAdvertisement struct {
	name     string
	rssi     int
	hasRSSI  bool
	addr     string
	services []string
}

func (a *FakeAdvertisement) LocalName() string  { return a.name }
func (a *FakeAdvertisement) RSSI() int          { return a.rssi }
func (a *FakeAdvertisement) HasRSSI() bool      { return a.hasRSSI }
func (a *FakeAdvertisement) Addr() string       { return a.addr }
func (a *FakeAdvertisement) Services() []string { return a.services }

// AdvertisementBuilder builds FakeAdvertisement fixtures.
type AdvertisementBuilder struct {
	adv FakeAdvertisement
}

// NewAdvertisementBuilder creates a new builder
func NewAdvertisementBuilder() *AdvertisementBuilder {
	return &AdvertisementBuilder{}
}

func (b *AdvertisementBuilder) WithAddress(addr string) *AdvertisementBuilder {
	b.adv.addr = addr
	return b
}

func (b *AdvertisementBuilder) WithName(name string) *AdvertisementBuilder {
	b.adv.name = name
	return b
}

func (b *AdvertisementBuilder) WithRSSI(rssi int) *AdvertisementBuilder {
	b.adv.rssi = rssi
	b.adv.hasRSSI = true
	return b
}

func (b *AdvertisementBuilder) WithoutRSSI() *AdvertisementBuilder {
	b.adv.rssi = 0
	b.adv.hasRSSI = false
	return b
}

func (b *AdvertisementBuilder) WithServices(uuids ...string) *AdvertisementBuilder {
	b.adv.services = append(b.adv.services, uuids...)
	return b
}

// Build returns the finished advertisement.
func (b *AdvertisementBuilder) Build() device.Advertisement {
	adv := b.adv
	adv.services = append([]string(nil), b.adv.services...)
	return &adv
}
