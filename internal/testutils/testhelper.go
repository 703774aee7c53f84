package testutils

import (
	"io"

	"github.com/sirupsen/logrus"
)

// NewTestLogger returns a silent logger for tests. Pass an io.Writer to
// capture output when a test asserts on log lines.
func NewTestLogger(out ...io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)
	if len(out) > 0 {
		logger.SetOutput(out[0])
	} else {
		logger.SetOutput(io.Discard)
	}
	return logger
}
