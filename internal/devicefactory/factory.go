package devicefactory

import (
	"github.com/sirupsen/logrus"

	"github.com/edwinatokaranAlten/NioxPlugin/internal/device"
	"github.com/edwinatokaranAlten/NioxPlugin/internal/device/goble"
)

// BackendFactory creates device.Backend instances for discovery
// operations. This is a variable so that it can be overridden in tests.
var BackendFactory = func() (device.Backend, error) {
	return goble.NewBackend(nil), nil
}

// NewBackend creates the platform backend with an explicit logger.
func NewBackend(logger *logrus.Logger) device.Backend {
	return goble.NewBackend(logger)
}
