package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/badu/crossmacro/config"
	"github.com/badu/crossmacro/ipcclient"
	"github.com/spf13/cobra"
)

// resolveSocket tries the --socket flag, falling back to whichever of the
// primary/fallback socket paths (§6) exists on disk, mirroring
// daemon/server.go's bindSocket probing order from the client side.
func resolveSocket(cmd *cobra.Command) string {
	if s, _ := cmd.Flags().GetString("socket"); s != "" {
		return s
	}
	if _, err := os.Stat(config.PrimarySocketPath); err == nil {
		return config.PrimarySocketPath
	}
	return config.FallbackSocketPath
}

func dial(cmd *cobra.Command) (*ipcclient.Client, error) {
	addr := resolveSocket(cmd)

	client := ipcclient.New()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Connect(ctx, addr); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}
	return client, nil
}
