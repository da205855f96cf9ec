// Command crossmacrod is the privileged daemon process: a thin wiring
// layer that loads configuration, assembles a daemon.Server with the
// platform's device backend and policy checker, and serves until
// SIGINT/SIGTERM. It takes no positional arguments.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/badu/crossmacro/config"
	"github.com/badu/crossmacro/daemon"
	"github.com/badu/crossmacro/logging"
	"github.com/rs/zerolog/log"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", config.DaemonConfigPath(), "path to the daemon TOML configuration file")
	flag.Parse()

	logFile, err := logging.Init(logging.Options{Component: "crossmacrod"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "crossmacrod: logging init: %v\n", err)
		return 1
	}

	cfg, err := config.LoadDaemonConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "crossmacrod: %v\n", err)
		return 1
	}

	opts := []daemon.Option{
		daemon.WithConfig(cfg),
		daemon.WithSocketPaths(cfg.SocketPath, config.FallbackSocketPath),
		daemon.WithDeviceBackend(newDeviceBackend()),
		daemon.WithLogger(log.Logger),
	}

	if policy, err := newPolicyChecker(); err != nil {
		log.Warn().Err(err).Msg("policy backend unavailable, every peer will be authorized")
	} else if policy != nil {
		opts = append(opts, daemon.WithPolicyChecker(policy))
	}

	srv := daemon.New(opts...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watcher := config.NewWatcher(*configPath, config.LoadDaemonConfig, log.Logger)
	watcher.OnReload(srv.UpdateConfig)
	if err := watcher.Start(ctx); err != nil {
		log.Warn().Err(err).Msg("config watcher disabled, reload requires a restart")
	} else {
		defer watcher.Stop()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info().Msg("signal received, shutting down")
		cancel()
	}()

	log.Info().Str("log_file", logFile).Str("config", *configPath).Msg("crossmacrod starting")

	if err := srv.Start(ctx); err != nil {
		log.Error().Err(err).Msg("daemon exited with error")
		return 1
	}
	return 0
}
