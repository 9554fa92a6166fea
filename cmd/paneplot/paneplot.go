package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"paneplot/config"
	"paneplot/drivers"
	"paneplot/store"
	"paneplot/web/handlers"
)

// INBOX_SIZE is how many browser actions can queue while the workspace is busy.
const INBOX_SIZE = 64

func main() {
	rootCmd := &cobra.Command{
		Use:   "paneplot [flags]",
		Short: "Live graphs of serial, CAN or replayed readings in a browser workspace",
		Example: `  # Plot a synthesized sine wave
  paneplot

  # Plot an Arduino printing one reading per line
  paneplot --driver serial --serial-port /dev/ttyACM0

  # Replay a previous export at 200 samples per second
  paneplot --driver replay --replay graph1.csv --replay-rate 200`,
		Args: cobra.NoArgs,
	}
	options := config.BindFlags(rootCmd.Flags())
	rootCmd.RunE = func(cmd *cobra.Command, _ []string) error {
		if options.ConfigPath != "" {
			values, err := config.LoadFile(options.ConfigPath)
			if err != nil {
				return err
			}
			if err := config.ApplyFile(cmd.Flags(), values); err != nil {
				return err
			}
		}
		if err := options.Validate(); err != nil {
			return err
		}
		return run(cmd.Context(), options)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, options *config.Options) error {
	// Set up slog with appropriate level
	level := slog.LevelInfo
	if options.Debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))

	// Create the driver manager, it starts a driver once a port is picked
	manager := drivers.NewManager(options)
	defer manager.Shutdown()

	inbox := make(chan store.Message, INBOX_SIZE)
	workspace := store.NewWorkspace(options.ExportPath, manager, manager)

	// Initialise UI
	ui, err := handlers.NewWorkspace(inbox)
	if err != nil {
		return fmt.Errorf("couldn't create workspace ui: %w", err)
	}
	defer ui.Close()

	if port := defaultPort(options); port != "" {
		workspace.Update(store.PortChanged{Port: port})
	}

	done := make(chan error, 1)
	go func() {
		done <- workspace.Run(ctx, inbox, options.Framerate, ui.Observe)
	}()

	// Initialise Server
	server := handlers.NewServer(ui)
	if err := server.Start(ctx, options.Addr); err != nil {
		return fmt.Errorf("couldn't start server: %w", err)
	}
	<-done
	return nil
}

// defaultPort is the port opened at startup, when the flags name one.
func defaultPort(options *config.Options) string {
	switch options.Driver {
	case config.Serial:
		return options.Serial.SerialPort
	case config.SocketCAN:
		return options.SocketCAN.SocketCanAddr
	case config.Replay:
		return options.Replay.Path
	case config.Synth:
		return drivers.SYNTH_PORT
	default:
		return ""
	}
}
