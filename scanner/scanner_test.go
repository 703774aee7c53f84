package scanner_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	suitelib "github.com/stretchr/testify/suite"

	"github.com/edwinatokaranAlten/NioxPlugin/internal/device"
	"github.com/edwinatokaranAlten/NioxPlugin/internal/devicefactory"
	"github.com/edwinatokaranAlten/NioxPlugin/internal/testutils"
	"github.com/edwinatokaranAlten/NioxPlugin/scanner"
)

type ScannerTestSuite struct {
	suitelib.Suite

	backend          *testutils.FakeBackend
	restoreFactory   func()
	adv1, adv2, adv3 device.Advertisement
}

func (suite *ScannerTestSuite) SetupTest() {
	suite.adv1 = testutils.NewAdvertisementBuilder().
		WithAddress("AA:BB:CC:DD:EE:FF").
		WithName("NIOX PRO 070401992").
		WithRSSI(-45).
		WithServices("000fc00b-8a4-4078-874c-14efbd4b510a").
		Build()
	suite.adv2 = testutils.NewAdvertisementBuilder().
		WithAddress("11:22:33:44:55:66").
		WithName("Test Device 2").
		WithRSSI(-67).
		WithServices("1801").
		Build()
	suite.adv3 = testutils.NewAdvertisementBuilder().
		WithAddress("99:88:77:66:55:44").
		WithName("Test Device 3").
		WithRSSI(-80).
		WithServices("1802").
		Build()

	suite.backend = testutils.NewFakeBackend(suite.adv1, suite.adv2, suite.adv3)

	prev := devicefactory.BackendFactory
	devicefactory.BackendFactory = func() (device.Backend, error) {
		return suite.backend, nil
	}
	suite.restoreFactory = func() { devicefactory.BackendFactory = prev }
}

func (suite *ScannerTestSuite) TearDownTest() {
	suite.restoreFactory()
}

func (suite *ScannerTestSuite) TestNewScanner() {
	suite.Run("creates scanner with provided logger", func() {
		s, err := scanner.NewScanner(testutils.NewTestLogger())
		suite.NoError(err)
		suite.NotNil(s)
	})

	suite.Run("creates scanner with nil logger", func() {
		s, err := scanner.NewScanner(nil)
		suite.NoError(err)
		suite.NotNil(s)
	})
}

func (suite *ScannerTestSuite) TestDefaultScanOptions() {
	opts := scanner.DefaultScanOptions()

	suite.NotNil(opts)
	suite.Equal(10*time.Second, opts.Duration)
	suite.False(opts.TargetOnly)
	suite.Equal(device.FilterNone, opts.Filter.Kind())
}

func (suite *ScannerTestSuite) TestScanAllDevices() {
	s, err := scanner.NewScanner(testutils.NewTestLogger())
	require.NoError(suite.T(), err)

	devices, err := s.Scan(context.Background(), &scanner.ScanOptions{
		Duration: 100 * time.Millisecond,
	})

	suite.NoError(err)
	suite.Len(devices, 3)
}

func (suite *ScannerTestSuite) TestScanTargetOnly() {
	s, err := scanner.NewScanner(testutils.NewTestLogger())
	require.NoError(suite.T(), err)

	devices, err := s.Scan(context.Background(), &scanner.ScanOptions{
		Duration:   100 * time.Millisecond,
		TargetOnly: true,
	})

	suite.NoError(err)
	suite.Len(devices, 1)
	suite.Equal("AA:BB:CC:DD:EE:FF", devices[0].Address)
	suite.True(devices[0].IsTargetDevice)
	suite.Equal("070401992", *devices[0].ExtractedSerial)
}

func (suite *ScannerTestSuite) TestScanServiceFilter() {
	s, err := scanner.NewScanner(testutils.NewTestLogger())
	require.NoError(suite.T(), err)

	devices, err := s.Scan(context.Background(), &scanner.ScanOptions{
		Duration: 100 * time.Millisecond,
		Filter:   device.ServiceIdentifierFilter("1801"),
	})

	suite.NoError(err)
	suite.Len(devices, 1)
	suite.Equal("11:22:33:44:55:66", devices[0].Address)
}

func (suite *ScannerTestSuite) TestScanContextCancellation() {
	s, err := scanner.NewScanner(testutils.NewTestLogger())
	require.NoError(suite.T(), err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		suite.backend.WaitScriptDelivered()
		cancel()
	}()

	start := time.Now()
	devices, err := s.Scan(ctx, &scanner.ScanOptions{Duration: time.Hour})

	suite.NoError(err, "cancellation is early completion, not an error")
	suite.Len(devices, 3)
	suite.Less(time.Since(start), 5*time.Second)
}

func (suite *ScannerTestSuite) TestScanEmitsEvents() {
	s, err := scanner.NewScanner(testutils.NewTestLogger())
	require.NoError(suite.T(), err)

	_, err = s.Scan(context.Background(), &scanner.ScanOptions{
		Duration: 100 * time.Millisecond,
	})
	suite.NoError(err)

	seen := make(map[string]bool)
	for len(s.Events()) > 0 {
		ev := <-s.Events()
		seen[ev.Device.Address] = true
		suite.False(ev.Timestamp.IsZero())
	}
	suite.Len(seen, 3)
}

func (suite *ScannerTestSuite) TestScanBackendUnavailable() {
	devicefactory.BackendFactory = func() (device.Backend, error) {
		return nil, device.ErrAdapterUnavailable
	}

	s, err := scanner.NewScanner(testutils.NewTestLogger())
	require.NoError(suite.T(), err)

	_, err = s.Scan(context.Background(), &scanner.ScanOptions{Duration: 50 * time.Millisecond})
	suite.ErrorIs(err, device.ErrAdapterUnavailable)
}

// TestScannerTestSuite runs the test suite using testify/suite
func TestScannerTestSuite(t *testing.T) {
	suitelib.Run(t, new(ScannerTestSuite))
}
