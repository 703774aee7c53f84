//go:build !darwin && !linux

package goble

import (
	"fmt"
	"runtime"

	ble "github.com/go-ble/ble"
)

func newPlatformDevice() (ble.Device, error) {
	return nil, fmt.Errorf("bluetooth is not supported on %s", runtime.GOOS)
}
