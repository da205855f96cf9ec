package main

import (
	"context"
	"fmt"

	"github.com/badu/crossmacro"
	"github.com/badu/crossmacro/config"
	"github.com/badu/crossmacro/playback"
	"github.com/badu/crossmacro/simulate"
	"github.com/spf13/cobra"
)

func newPlayCmd() *cobra.Command {
	var speed float64
	var loop bool
	var loopCount int
	var repeatDelayMs int64
	var width, height int32

	cmd := &cobra.Command{
		Use:   "play <macro.json>",
		Short: "Replay a recorded macro sequence through the daemon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, err := config.LoadMacroSequence(args[0])
			if err != nil {
				return err
			}

			client, err := dial(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			if width > 0 && height > 0 {
				if err := client.ConfigureResolution(width, height); err != nil {
					return fmt.Errorf("configure resolution: %w", err)
				}
			}

			provider := simulate.NewDaemonProvider(client)
			engine := playback.NewEngine(provider, width, height)

			opts := playback.Options{Speed: speed}
			switch {
			case loop:
				opts.Mode = crossmacro.ModeLoopN
				opts.LoopCount = loopCount
				opts.RepeatDelayMs = repeatDelayMs
			default:
				opts.Mode = crossmacro.ModeOnce
			}

			return engine.Play(context.Background(), seq, opts)
		},
	}

	cmd.Flags().Float64Var(&speed, "speed", 1.0, "playback speed multiplier")
	cmd.Flags().BoolVar(&loop, "loop", false, "repeat the sequence loop-count times")
	cmd.Flags().IntVar(&loopCount, "loop-count", 0, "loop iterations, 0 means infinite")
	cmd.Flags().Int64Var(&repeatDelayMs, "repeat-delay-ms", 0, "delay between loop iterations")
	cmd.Flags().Int32Var(&width, "width", 0, "virtual device width, for absolute coordinates")
	cmd.Flags().Int32Var(&height, "height", 0, "virtual device height, for absolute coordinates")
	return cmd
}
