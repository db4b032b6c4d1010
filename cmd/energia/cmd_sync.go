package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"energia/internal/config"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replay queued offline writes against the remote store",
	RunE:  runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	status := a.gateway.CheckConnection(ctx)
	if !status.Connected {
		fmt.Println(offlineStyle.Render("Remote store unreachable."))
		if status.QueuedWrites > 0 {
			fmt.Println(mutedStyle.Render(fmt.Sprintf("%d writes still queued.", status.QueuedWrites)))
		}
		return nil
	}

	if status.QueuedWrites == 0 {
		fmt.Println("All writes synced.")
	} else {
		fmt.Printf("Connected; %d writes still queued.\n", status.QueuedWrites)
	}
	return nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Write the default config file",
	Long: `Writes the default configuration to the config path (or --config).
An existing file is left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = config.DefaultPath()
		}
		if _, err := os.Stat(path); err == nil {
			fmt.Println("Config already exists at", path)
			return nil
		}
		if err := config.DefaultConfig().Save(path); err != nil {
			return err
		}
		fmt.Println("Wrote config to", path)
		return nil
	},
}
