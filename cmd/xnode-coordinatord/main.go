// Command xnode-coordinatord runs the coordinator: the leaf registry, tree store, tick engine and control plane,
// exposed to dispatcher workers and clients over a WebSocket listener.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/xnodehq/xnode/internal/config"
	"github.com/xnodehq/xnode/internal/transport"
	"github.com/xnodehq/xnode/internal/xlog"
	"github.com/xnodehq/xnode/internal/xnode"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "xnode-coordinatord: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	configPath := preParseConfigPath(args)

	cfg, err := config.Load(args, configPath)
	if err != nil {
		return err
	}

	logger := xlog.New(cfg.LogLevel)

	coordinator := xnode.NewCoordinator(
		time.Duration(cfg.InvokeTimeoutMS)*time.Millisecond,
		time.Duration(cfg.TickIntervalMS)*time.Millisecond,
		logger,
	)

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	server := transport.NewServer(addr, "/ws", coordinator.OnAccept)

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", addr).Info("coordinator listening")
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.WithField("signal", sig.String()).Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("listener shutdown")
	}
	coordinator.Shutdown(shutdownCtx)

	return nil
}

// preParseConfigPath scans args for a -config/--config flag without using a flag.FlagSet, since config.Load needs
// the file path before it parses its own FlagSet (which accepts -config but ignores its value).
func preParseConfigPath(args []string) string {
	for i, arg := range args {
		switch {
		case arg == "-config" || arg == "--config":
			if i+1 < len(args) {
				return args[i+1]
			}
		case strings.HasPrefix(arg, "-config="):
			return strings.TrimPrefix(arg, "-config=")
		case strings.HasPrefix(arg, "--config="):
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	return ""
}
