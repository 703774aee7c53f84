package device_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edwinatokaranAlten/NioxPlugin/internal/device"
	"github.com/edwinatokaranAlten/NioxPlugin/internal/testutils"
)

func TestServiceIdentifierFilter(t *testing.T) {
	tests := []struct {
		name    string
		filter  device.Filter
		adv     device.Advertisement
		matches bool
	}{
		{
			name:   "matches exact identifier",
			filter: device.ServiceIdentifierFilter("000fc00b-8a4-4078-874c-14efbd4b510a"),
			adv: testutils.NewAdvertisementBuilder().
				WithAddress("AA:BB:CC:DD:EE:FF").
				WithServices("000fc00b-8a4-4078-874c-14efbd4b510a").
				Build(),
			matches: true,
		},
		{
			name:   "matches case-insensitively with hyphens stripped",
			filter: device.ServiceIdentifierFilter("000FC00B-8A4-4078-874C-14EFBD4B510A"),
			adv: testutils.NewAdvertisementBuilder().
				WithAddress("AA:BB:CC:DD:EE:FF").
				WithServices("000fc00b8a44078874c14efbd4b510a").
				Build(),
			matches: true,
		},
		{
			name:   "rejects unrelated identifier",
			filter: device.ServiceIdentifierFilter("000fc00b-8a4-4078-874c-14efbd4b510a"),
			adv: testutils.NewAdvertisementBuilder().
				WithAddress("AA:BB:CC:DD:EE:FF").
				WithServices("180f", "1800").
				Build(),
			matches: false,
		},
		{
			name:   "rejects advertisement without services",
			filter: device.ServiceIdentifierFilter("180f"),
			adv: testutils.NewAdvertisementBuilder().
				WithAddress("AA:BB:CC:DD:EE:FF").
				Build(),
			matches: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.matches, tt.filter.Matches(tt.adv))
		})
	}
}

func TestNamePrefixFilter(t *testing.T) {
	filter := device.NamePrefixFilter("NIOX PRO")

	match := testutils.NewAdvertisementBuilder().
		WithAddress("AA:BB:CC:DD:EE:FF").
		WithName("niox pro 123").
		Build()
	require.True(t, filter.Matches(match))

	noMatch := testutils.NewAdvertisementBuilder().
		WithAddress("AA:BB:CC:DD:EE:FF").
		WithName("Generic Speaker").
		Build()
	require.False(t, filter.Matches(noMatch))

	unnamed := testutils.NewAdvertisementBuilder().
		WithAddress("AA:BB:CC:DD:EE:FF").
		Build()
	require.False(t, filter.Matches(unnamed))
}

func TestNoFilterMatchesEverything(t *testing.T) {
	adv := testutils.NewAdvertisementBuilder().
		WithAddress("AA:BB:CC:DD:EE:FF").
		Build()
	require.True(t, device.NoFilter().Matches(adv))
}

func TestTargetFilter(t *testing.T) {
	filter := device.TargetFilter()

	byService := testutils.NewAdvertisementBuilder().
		WithAddress("AA:BB:CC:DD:EE:FF").
		WithName("Unbranded").
		WithServices("000FC00B-8A4-4078-874C-14EFBD4B510A").
		Build()
	require.True(t, filter.Matches(byService))

	byName := testutils.NewAdvertisementBuilder().
		WithAddress("AA:BB:CC:DD:EE:FF").
		WithName("NIOX PRO 070401992").
		Build()
	require.True(t, filter.Matches(byName))

	neither := testutils.NewAdvertisementBuilder().
		WithAddress("AA:BB:CC:DD:EE:FF").
		WithName("Generic Speaker").
		WithServices("180f").
		Build()
	require.False(t, filter.Matches(neither))
}

func TestExtractSerial(t *testing.T) {
	require.Equal(t, "070401992", device.ExtractSerial("NIOX PRO 070401992"))
	require.Equal(t, "070401992", device.ExtractSerial("niox pro 070401992"))
	require.Equal(t, "", device.ExtractSerial("NIOX PRO"))
	require.Equal(t, "", device.ExtractSerial("Generic Speaker"))
	require.Equal(t, "", device.ExtractSerial(""))
}

func TestParseFilterDegradesToNone(t *testing.T) {
	tests := []struct {
		name string
		rule string
		kind device.FilterKind
	}{
		{"empty rule", "", device.FilterNone},
		{"missing separator", "service", device.FilterNone},
		{"empty value", "name:", device.FilterNone},
		{"unknown kind", "vendor:acme", device.FilterNone},
		{"garbage uuid", "service:not-a-uuid", device.FilterNone},
		{"valid service", "service:0000180f-0000-1000-8000-00805f9b34fb", device.FilterServiceIdentifier},
		{"valid short service", "service:180f", device.FilterServiceIdentifier},
		{"valid prefix", "name:NIOX PRO", device.FilterNamePrefix},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.kind, device.ParseFilter(tt.rule).Kind())
		})
	}
}

func TestValidateServiceID(t *testing.T) {
	normalized, err := device.ValidateServiceID("0000180F-0000-1000-8000-00805F9B34FB")
	require.NoError(t, err)
	require.Equal(t, "0000180f00001000800000805f9b34fb", normalized)

	normalized, err = device.ValidateServiceID("0x180F")
	require.NoError(t, err)
	require.Equal(t, "180f", normalized)

	_, err = device.ValidateServiceID("")
	require.Error(t, err)

	_, err = device.ValidateServiceID("zzzz")
	require.Error(t, err)
}

func TestCanonicalAddress(t *testing.T) {
	require.Equal(t, "AA:BB:CC:DD:EE:FF", device.CanonicalAddress("aa:bb:cc:dd:ee:ff"))
	require.Equal(t, "AA:BB:CC:DD:EE:FF", device.CanonicalAddress("aa-bb-cc-dd-ee-ff"))
	require.Equal(t, "AB:CD:EF:01:23:45", device.CanonicalAddress("ab:cd:ef:01:23:45"))
}

func TestCanonicalAddressKeepsOpaqueIdentifiers(t *testing.T) {
	// darwin reports CoreBluetooth UUIDs instead of MAC addresses;
	// their hyphens are part of the identifier.
	require.Equal(t, "6BA7B810-9DAD-11D1-80B4-00C04FD430C8",
		device.CanonicalAddress("6ba7b810-9dad-11d1-80b4-00c04fd430c8"))
	require.Equal(t, "NOT-AN-ADDRESS", device.CanonicalAddress("not-an-address"))
}
