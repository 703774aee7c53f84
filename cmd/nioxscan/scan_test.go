package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/edwinatokaranAlten/NioxPlugin/internal/device"
	"github.com/edwinatokaranAlten/NioxPlugin/internal/ring"
	"github.com/edwinatokaranAlten/NioxPlugin/scanner"
)

func deviceEvent(kind scanner.DeviceEventType, addr, name string, rssi int) scanner.DeviceEvent {
	n := name
	r := rssi
	return scanner.DeviceEvent{
		Type: kind,
		Device: scanner.DiscoveredDevice{
			Address: addr,
			Name:    &n,
			RSSI:    &r,
		},
		Timestamp: time.Now(),
	}
}

func TestStreamDiscoveriesPrintsNewDevicesOnly(t *testing.T) {
	events := ring.New[scanner.DeviceEvent](8)
	events.ForceSend(deviceEvent(scanner.EventNew, "AA:BB:CC:DD:EE:FF", "NIOX PRO 111", -45))
	events.ForceSend(deviceEvent(scanner.EventUpdated, "AA:BB:CC:DD:EE:FF", "NIOX PRO 111", -40))
	events.ForceSend(deviceEvent(scanner.EventNew, "11:22:33:44:55:66", "Generic Speaker", -60))

	done := make(chan struct{})
	close(done)

	var buf bytes.Buffer
	streamDiscoveries(&buf, "", events.C(), done)

	out := buf.String()
	require.Contains(t, out, "NIOX PRO 111 [AA:BB:CC:DD:EE:FF]  -45 dBm")
	require.Contains(t, out, "Generic Speaker [11:22:33:44:55:66]  -60 dBm")
	require.Equal(t, 2, strings.Count(out, "\n"), "updates to known devices print nothing")
}

func TestStreamDiscoveriesDrainsLiveEvents(t *testing.T) {
	events := ring.New[scanner.DeviceEvent](8)
	done := make(chan struct{})

	streamed := make(chan string, 1)
	go func() {
		var buf bytes.Buffer
		streamDiscoveries(&buf, "", events.C(), done)
		streamed <- buf.String()
	}()

	events.ForceSend(deviceEvent(scanner.EventNew, "AA:BB:CC:DD:EE:FF", "NIOX PRO 111", -45))
	events.ForceSend(deviceEvent(scanner.EventNew, "11:22:33:44:55:66", "Generic Speaker", -60))
	close(done)

	select {
	case out := <-streamed:
		require.Contains(t, out, "AA:BB:CC:DD:EE:FF")
		require.Contains(t, out, "11:22:33:44:55:66")
	case <-time.After(2 * time.Second):
		t.Fatal("streamDiscoveries did not return after done")
	}
}

func TestResolveFilter(t *testing.T) {
	f, err := resolveFilter("180f", "", "")
	require.NoError(t, err)
	require.Equal(t, device.FilterServiceIdentifier, f.Kind())

	_, err = resolveFilter("zzzz", "", "")
	require.Error(t, err)

	f, err = resolveFilter("", "NIOX", "")
	require.NoError(t, err)
	require.Equal(t, device.FilterNamePrefix, f.Kind())

	f, err = resolveFilter("", "", "service:1801")
	require.NoError(t, err)
	require.Equal(t, device.FilterServiceIdentifier, f.Kind())

	f, err = resolveFilter("", "", "name:NIOX")
	require.NoError(t, err)
	require.Equal(t, device.FilterNamePrefix, f.Kind())

	// A malformed rule scans everything rather than failing.
	f, err = resolveFilter("", "", "bogus")
	require.NoError(t, err)
	require.Equal(t, device.FilterNone, f.Kind())

	f, err = resolveFilter("", "", "")
	require.NoError(t, err)
	require.Equal(t, device.FilterNone, f.Kind())

	// Dedicated flags take precedence over the combined rule.
	f, err = resolveFilter("180f", "", "name:NIOX")
	require.NoError(t, err)
	require.Equal(t, device.FilterServiceIdentifier, f.Kind())
}
