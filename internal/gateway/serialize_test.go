package gateway

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/edwinatokaranAlten/NioxPlugin/internal/testutils"
	"github.com/edwinatokaranAlten/NioxPlugin/scanner"
)

func TestMarshalEmptySnapshot(t *testing.T) {
	buf, err := MarshalDevices(nil)
	require.NoError(t, err)
	require.Equal(t, `[]`, string(buf), "an empty scan serializes to an empty array, not null")
}

func TestMarshalWireFormat(t *testing.T) {
	niox := scanner.DeviceFromAdvertisement(
		testutils.NewAdvertisementBuilder().
			WithAddress("AA:BB:CC:DD:EE:FF").
			WithName("NIOX PRO 070401992").
			WithRSSI(-45).
			WithServices("000fc00b-8a4-4078-874c-14efbd4b510a").
			Build(), time.Now())
	anonymous := scanner.DeviceFromAdvertisement(
		testutils.NewAdvertisementBuilder().
			WithAddress("11:22:33:44:55:66").
			WithoutRSSI().
			Build(), time.Now())

	buf, err := MarshalDevices([]scanner.DiscoveredDevice{niox, anonymous})
	require.NoError(t, err)

	require.JSONEq(t, `[
		{"name":"NIOX PRO 070401992","address":"AA:BB:CC:DD:EE:FF","rssi":-45,
		 "isTargetDevice":true,"serialNumber":"070401992"},
		{"name":null,"address":"11:22:33:44:55:66","rssi":null,
		 "isTargetDevice":false,"serialNumber":null}
	]`, string(buf))
}
