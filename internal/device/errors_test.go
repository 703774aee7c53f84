package device_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edwinatokaranAlten/NioxPlugin/internal/device"
)

func TestScanErrorIs(t *testing.T) {
	err := &device.ScanError{Kind: device.AlreadyScanning, Msg: "slot occupied"}
	require.True(t, errors.Is(err, device.ErrAlreadyScanning))
	require.False(t, errors.Is(err, device.ErrAdapterUnavailable))

	wrapped := fmt.Errorf("scan failed: %w", device.ErrBackendStart)
	require.True(t, errors.Is(wrapped, device.ErrBackendStart))
	require.False(t, errors.Is(errors.New("plain"), device.ErrBackendStart))
}

func TestScanErrorMessage(t *testing.T) {
	require.Equal(t, "already_scanning", device.ErrAlreadyScanning.Error())
	err := &device.ScanError{Kind: device.AdapterUnavailable, Msg: "no hci0"}
	require.Equal(t, "adapter_unavailable: no hci0", err.Error())
}
