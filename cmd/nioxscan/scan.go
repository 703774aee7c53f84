package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/edwinatokaranAlten/NioxPlugin/internal/config"
	"github.com/edwinatokaranAlten/NioxPlugin/internal/device"
	"github.com/edwinatokaranAlten/NioxPlugin/scanner"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for BLE devices",
	Long: `Run a time-bounded scan for Bluetooth Low Energy devices and
display discovered devices with their names, addresses, RSSI values and
NIOX classification.`,
	RunE: runScan,
}

var (
	scanDuration   time.Duration
	scanFormat     string
	scanTargetOnly bool
	scanService    string
	scanNamePrefix string
	scanFilterRule string
)

func init() {
	scanCmd.Flags().DurationVarP(&scanDuration, "duration", "d", 0, "Scan duration (default from config, 10s)")
	scanCmd.Flags().StringVarP(&scanFormat, "format", "f", "", "Output format (table, json)")
	scanCmd.Flags().BoolVarP(&scanTargetOnly, "target-only", "t", false, "Only show NIOX PRO devices")
	scanCmd.Flags().StringVarP(&scanService, "service", "s", "", "Filter by an advertised service UUID")
	scanCmd.Flags().StringVar(&scanNamePrefix, "name-prefix", "", "Filter by a device name prefix")
	scanCmd.Flags().StringVar(&scanFilterRule, "filter", "", `Filter rule ("service:<uuid>" or "name:<prefix>"); a malformed rule scans everything`)
}

func runScan(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	format := cfg.Format
	if scanFormat != "" {
		format = scanFormat
	}
	if format != "table" && format != "json" {
		return fmt.Errorf("invalid format '%s': must be table or json", format)
	}

	logger, err := configureLogger(cmd, cfg.LogLevel)
	if err != nil {
		return err
	}

	// All arguments validated - don't show usage on runtime errors
	cmd.SilenceUsage = true

	duration := cfg.ScanDuration
	if scanDuration > 0 {
		duration = scanDuration
	}

	opts := &scanner.ScanOptions{
		Duration:   duration,
		TargetOnly: scanTargetOnly || cfg.TargetOnly,
	}
	if !opts.TargetOnly {
		filter, err := resolveFilter(scanService, scanNamePrefix, scanFilterRule)
		if err != nil {
			return err
		}
		opts.Filter = filter
	}

	s, err := scanner.NewScanner(logger)
	if err != nil {
		return fmt.Errorf("failed to create BLE scanner: %w", err)
	}

	// Listen for Ctrl+C to cancel
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		fmt.Println("\nCtrl+C pressed, cancelling scan...")
		cancel()
	}()

	progress := NewCountdownProgressPrinter("Scanning for BLE devices", duration)
	progress.Start()

	// Live discovery lines interleave with the countdown; each line
	// clears the countdown first so the redraw never collides with it.
	clearSeq := ""
	if term.IsTerminal(int(os.Stdout.Fd())) {
		clearSeq = clearLineSequence
	}
	streamDone := make(chan struct{})
	streamed := make(chan struct{})
	go func() {
		defer close(streamed)
		streamDiscoveries(os.Stdout, clearSeq, s.Events(), streamDone)
	}()

	devices, err := s.Scan(ctx, opts)
	close(streamDone)
	<-streamed
	progress.Stop()
	if err != nil {
		logger.WithError(err).Error("scan failed")
		return err
	}

	if format == "json" {
		return displayDevicesJSON(os.Stdout, devices)
	}
	return displayDevicesTable(os.Stdout, devices)
}

// resolveFilter picks the scan filter from the CLI flags. The dedicated
// --service and --name-prefix flags take precedence and validate
// strictly; the combined --filter rule keeps its degrade-to-everything
// semantics.
func resolveFilter(service, namePrefix, rule string) (device.Filter, error) {
	switch {
	case service != "":
		normalized, err := device.ValidateServiceID(service)
		if err != nil {
			return device.NoFilter(), fmt.Errorf("invalid service UUID: %w", err)
		}
		return device.ServiceIdentifierFilter(normalized), nil
	case namePrefix != "":
		return device.NamePrefixFilter(namePrefix), nil
	default:
		return device.ParseFilter(rule), nil
	}
}

// streamDiscoveries prints one line per newly discovered device until
// done is closed, then drains whatever the channel still buffers.
// Updates to already-printed devices stay silent.
func streamDiscoveries(out io.Writer, clearSeq string, events <-chan scanner.DeviceEvent, done <-chan struct{}) {
	for {
		select {
		case ev := <-events:
			printDiscovery(out, clearSeq, ev)
		case <-done:
			for {
				select {
				case ev := <-events:
					printDiscovery(out, clearSeq, ev)
				default:
					return
				}
			}
		}
	}
}

func printDiscovery(out io.Writer, clearSeq string, ev scanner.DeviceEvent) {
	if ev.Type != scanner.EventNew {
		return
	}
	d := ev.Device
	rssi := ""
	if d.RSSI != nil {
		rssi = fmt.Sprintf("  %d dBm", *d.RSSI)
	}
	marker := "+"
	if d.IsTargetDevice {
		marker = color.GreenString("+")
	}
	fmt.Fprintf(out, "%s%s %s [%s]%s\n", clearSeq, marker, d.DisplayName(), d.Address, rssi)
}

func displayDevicesTable(out io.Writer, devices []scanner.DiscoveredDevice) error {
	if len(devices) == 0 {
		fmt.Fprintln(out, "No devices discovered")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	header := color.New(color.Bold).Sprint
	fmt.Fprintln(w, header("NAME\tADDRESS\tRSSI\tNIOX\tSERIAL"))
	fmt.Fprintln(w, strings.Repeat("-", 72))

	for i := range devices {
		d := &devices[i]
		name := d.DisplayName()
		if len(name) > 24 {
			name = name[:21] + "..."
		}

		rssi := "-"
		if d.RSSI != nil {
			rssi = fmt.Sprintf("%d dBm", *d.RSSI)
		}
		target := ""
		if d.IsTargetDevice {
			target = color.GreenString("yes")
		}
		serial := ""
		if d.ExtractedSerial != nil {
			serial = *d.ExtractedSerial
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", name, d.Address, rssi, target, serial)
	}

	return w.Flush()
}

type jsonDevice struct {
	Name           *string `json:"name"`
	Address        string  `json:"address"`
	RSSI           *int    `json:"rssi"`
	IsTargetDevice bool    `json:"isTargetDevice"`
	SerialNumber   *string `json:"serialNumber"`
}

func displayDevicesJSON(out io.Writer, devices []scanner.DiscoveredDevice) error {
	list := make([]jsonDevice, 0, len(devices))
	for i := range devices {
		d := &devices[i]
		list = append(list, jsonDevice{
			Name:           d.Name,
			Address:        d.Address,
			RSSI:           d.RSSI,
			IsTargetDevice: d.IsTargetDevice,
			SerialNumber:   d.ExtractedSerial,
		})
	}
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(list)
}
