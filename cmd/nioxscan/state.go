package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edwinatokaranAlten/NioxPlugin/internal/config"
	"github.com/edwinatokaranAlten/NioxPlugin/internal/devicefactory"
)

// stateCmd reports the Bluetooth adapter state without scanning.
var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show the Bluetooth adapter state",
	RunE:  runState,
}

func runState(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := configureLogger(cmd, cfg.LogLevel)
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true

	backend := devicefactory.NewBackend(logger)
	state := backend.AdapterState()
	fmt.Printf("%s (%d)\n", state, int(state))
	return nil
}
