package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run connects one participant, fires random actions and prints everything the relay sends back.
// A per-user summary is printed on exit.
func run() (int, error) {
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := validator.New().Struct(config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, release, err := dial(ctx, config)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to connect: %w", err)
	}
	defer release()
	logger.Info("Connected", "transport", config.Transport)

	seen := newSummary()
	received := make(chan struct{})
	go func() {
		defer close(received)
		for {
			envelope, err := conn.Recv()
			if err != nil {
				logger.Debug("Receive loop ended", "error", err)
				return
			}
			seen.record(envelope)
			fmt.Println(colorize(envelope))
		}
	}()

	ticker := time.NewTicker(config.ActionInterval)
	defer ticker.Stop()
	sent := 0
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-received:
			logger.Warn("Relay closed the connection")
			break loop
		case <-ticker.C:
			request := randomRequest()
			if err := conn.Send(request); err != nil {
				logger.Error("Failed to send action", "action_type", request.Type().String(), "error", err)
				break loop
			}
			sent++
			if config.ActionCount > 0 && sent >= config.ActionCount {
				break loop
			}
		}
	}

	_ = conn.Close()
	select {
	case <-received:
	case <-time.After(2 * time.Second):
	}

	fmt.Println()
	seen.render(os.Stdout)
	return exitOK, nil
}
