// Command xnode-dispatcherd is a reference worker: it connects to a coordinator, registers a small set of demo
// actions and conditions, and answers invoke_func requests for them until the connection drops.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xnodehq/xnode/internal/transport"
	"github.com/xnodehq/xnode/internal/xlog"
	"github.com/xnodehq/xnode/internal/xnode"
)

// Func is one registered leaf's implementation: it runs synchronously and returns the leaf's bool result.
type Func func() bool

func main() {
	url := flag.String("url", "ws://localhost:8765/ws", "coordinator WebSocket URL")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	logger := xlog.New(*logLevel)

	actions := map[string]Func{
		"hello": func() bool {
			fmt.Println("Hello World!")
			return true
		},
		"flip_coin": func() bool {
			return rand.Intn(2) == 0
		},
	}
	conditions := map[string]Func{
		"always_ready": func() bool { return true },
	}

	if err := run(*url, actions, conditions, logger); err != nil {
		logger.WithError(err).Fatal("xnode-dispatcherd")
	}
}

func run(url string, actions, conditions map[string]Func, logger *logrus.Logger) error {
	channel, err := transport.Dial(url)
	if err != nil {
		return fmt.Errorf("dial coordinator: %w", err)
	}
	defer channel.Close()

	for name := range actions {
		if err := register(channel, "register_action", name); err != nil {
			return fmt.Errorf("register action %q: %w", name, err)
		}
		logger.WithField("action", name).Info("registered")
	}
	for name := range conditions {
		if err := register(channel, "register_condition", name); err != nil {
			return fmt.Errorf("register condition %q: %w", name, err)
		}
		logger.WithField("condition", name).Info("registered")
	}

	done := make(chan struct{})
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		close(done)
		_ = channel.Close()
	}()

	for {
		select {
		case <-done:
			return nil
		default:
		}

		frame, err := channel.Recv()
		if err != nil {
			select {
			case <-done:
				return nil
			default:
				return fmt.Errorf("recv: %w", err)
			}
		}
		env, err := xnode.Decode(frame)
		if err != nil {
			logger.WithError(err).Warn("dropping malformed frame")
			continue
		}
		if env.Command != "invoke_func" {
			continue
		}
		handleInvoke(channel, env, actions, conditions, logger)
	}
}

func register(channel transport.Channel, command, name string) error {
	frame, err := xnode.Encode(xnode.Envelope{Command: command, Name: name})
	if err != nil {
		return err
	}
	if err := channel.Send(frame); err != nil {
		return err
	}
	reply, err := channel.Recv()
	if err != nil {
		return err
	}
	env, err := xnode.Decode(reply)
	if err != nil {
		return err
	}
	if env.Status != "ok" {
		return fmt.Errorf("coordinator rejected registration: %s", env.Message)
	}
	return nil
}

func handleInvoke(channel transport.Channel, env xnode.Envelope, actions, conditions map[string]Func, logger *logrus.Logger) {
	fn, ok := actions[env.Name]
	if !ok {
		fn, ok = conditions[env.Name]
	}

	var resp xnode.Envelope
	if !ok {
		resp = xnode.Envelope{RequestID: env.RequestID, Error: fmt.Sprintf("function %q not registered", env.Name)}
	} else {
		start := time.Now()
		result := fn()
		logger.WithField("name", env.Name).WithField("duration", time.Since(start)).Info("invoked")
		resp = xnode.Envelope{RequestID: env.RequestID, Result: &result}
	}

	frame, err := xnode.Encode(resp)
	if err != nil {
		logger.WithError(err).Error("encode invoke_func response")
		return
	}
	if err := channel.Send(frame); err != nil {
		logger.WithError(err).Error("send invoke_func response")
	}
}
