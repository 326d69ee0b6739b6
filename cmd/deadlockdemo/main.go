// Command deadlockdemo runs opposite-direction transfers against a
// ledger and reports whether they completed. With --unsafe it selects
// the direct locking strategy, which is expected to deadlock; the demo
// bounds its wait and treats a timeout as the hazard manifesting.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	cli "github.com/jawher/mow.cli"
	"github.com/rcrowley/go-metrics"

	ledger "github.com/acctmgr/ledger"
	audithook "github.com/acctmgr/ledger/audit_hook"
	"github.com/acctmgr/ledger/observability"
)

const appDescription = "Concurrent account-transfer demo comparing ordered (safe) and direct (deadlock-prone) locking"

func main() {
	app := cli.App("deadlockdemo", appDescription)

	unsafe := app.Bool(cli.BoolOpt{
		Name:   "u unsafe",
		Value:  false,
		Desc:   "Use the direct (deadlock-prone) locking strategy",
		EnvVar: "LEDGER_UNSAFE",
	})
	iterations := app.Int(cli.IntOpt{
		Name:   "n iterations",
		Value:  1,
		Desc:   "Opposite-direction transfer pairs each goroutine performs",
		EnvVar: "LEDGER_ITERATIONS",
	})
	timeout := app.String(cli.StringOpt{
		Name:   "t timeout",
		Value:  "5s",
		Desc:   "How long to wait for the transfers before declaring a deadlock",
		EnvVar: "LEDGER_TIMEOUT",
	})
	holdDelay := app.String(cli.StringOpt{
		Name:   "hold-delay",
		Value:  "10ms",
		Desc:   "How long the direct strategy holds its first lock",
		EnvVar: "LEDGER_HOLD_DELAY",
	})

	app.Action = func() {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

		wait, err := time.ParseDuration(*timeout)
		if err != nil {
			logger.Error("invalid timeout", "value", *timeout, "error", err)
			cli.Exit(2)
		}
		hold, err := time.ParseDuration(*holdDelay)
		if err != nil {
			logger.Error("invalid hold delay", "value", *holdDelay, "error", err)
			cli.Exit(2)
		}

		run(logger, *unsafe, *iterations, wait, hold)
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func run(logger *slog.Logger, unsafe bool, iterations int, wait, hold time.Duration) {
	recorder := audithook.NewMemoryRecorder()
	registry := metrics.NewRegistry()
	meter := observability.New(registry)

	l := ledger.New(
		ledger.WithLogger(logger),
		ledger.WithHoldDelay(hold),
		ledger.WithHook(audithook.New(recorder, audithook.WithLogger(logger))),
		ledger.WithHook(meter),
	)
	l.SetOptimized(unsafe)

	logger.Info("starting transfers",
		"strategy", l.Strategy().String(),
		"iterations", iterations,
		"timeout", wait.String(),
	)

	ctx := context.Background()
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			if err := l.Transfer(ctx, ledger.Account1, ledger.Account2, 100); err != nil {
				logger.Error("transfer failed", "error", err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			if err := l.Transfer(ctx, ledger.Account2, ledger.Account1, 50); err != nil {
				logger.Error("transfer failed", "error", err)
				return
			}
		}
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(wait):
		// The goroutines are wedged on the locks; there is nothing to
		// clean up, so report the liveness failure and exit non-zero.
		logger.Error("transfers did not complete: deadlock suspected",
			"strategy", l.Strategy().String(),
			"waited", wait.String(),
		)
		cli.Exit(1)
	}

	b1, err := l.Balance(ledger.Account1)
	if err != nil {
		logger.Error("balance lookup failed", "account", ledger.Account1, "error", err)
		cli.Exit(1)
	}
	b2, err := l.Balance(ledger.Account2)
	if err != nil {
		logger.Error("balance lookup failed", "account", ledger.Account2, "error", err)
		cli.Exit(1)
	}

	logger.Info("transfers completed",
		"balance_1", b1,
		"balance_2", b2,
		"applied", meter.TransfersApplied.Count(),
		"skipped", meter.TransfersSkipped.Count(),
		"audit_events", recorder.Len(),
	)
}
