package gateway

import (
	"encoding/json"

	"github.com/edwinatokaranAlten/NioxPlugin/scanner"
)

// wireDevice is the per-device element of the scan result array. Field
// names and shapes are part of the external contract.
type wireDevice struct {
	Name           *string `json:"name"`
	Address        string  `json:"address"`
	RSSI           *int    `json:"rssi"`
	IsTargetDevice bool    `json:"isTargetDevice"`
	SerialNumber   *string `json:"serialNumber"`
}

// MarshalDevices serializes a snapshot into one contiguous JSON array,
// preserving snapshot order. An empty snapshot yields "[]", not "null".
func MarshalDevices(devices []scanner.DiscoveredDevice) ([]byte, error) {
	out := make([]wireDevice, 0, len(devices))
	for i := range devices {
		d := &devices[i]
		out = append(out, wireDevice{
			Name:           d.Name,
			Address:        d.Address,
			RSSI:           d.RSSI,
			IsTargetDevice: d.IsTargetDevice,
			SerialNumber:   d.ExtractedSerial,
		})
	}
	return json.Marshal(out)
}
