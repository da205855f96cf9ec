package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/badu/crossmacro"
	"github.com/spf13/cobra"
)

func newListenCmd() *cobra.Command {
	var mouse, keyboard bool

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Print decoded input events from the daemon until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := dial(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.StartCapture(mouse, keyboard); err != nil {
				return fmt.Errorf("start capture: %w", err)
			}
			defer client.StopCapture()

			events := make(chan crossmacro.RawEvent, 64)
			client.Subscribe(events)
			defer client.Unsubscribe(events)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			for {
				select {
				case ev := <-events:
					fmt.Fprintf(cmd.OutOrStdout(), "kind=%v code=%d value=%d ts=%d\n", ev.Kind, ev.Code, ev.Value, ev.Timestamp)
				case <-client.DyingChan():
					if err := client.Err(); err != nil {
						return fmt.Errorf("connection closed: %w", err)
					}
					return nil
				case <-sigCh:
					return nil
				}
			}
		},
	}

	cmd.Flags().BoolVar(&mouse, "mouse", true, "capture mouse events")
	cmd.Flags().BoolVar(&keyboard, "keyboard", true, "capture keyboard events")
	return cmd
}
