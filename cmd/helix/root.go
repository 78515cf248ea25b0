package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/prn-tf/helix/internal/capsule"
	"github.com/prn-tf/helix/internal/config"
	"github.com/prn-tf/helix/internal/masterkey"
	"github.com/prn-tf/helix/internal/metricsx"
)

// Exit codes. Per-file integrity failures never change these: only
// setup errors (missing capsule, passphrase mismatch, I/O) are fatal.
const (
	exitOK                 = 0
	exitGenericFailure     = 1
	exitInvalidCapsule     = 2
	exitPassphraseMismatch = 3
	exitMalformedCapsule   = 4
)

func run() int {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		return exitCodeForError(err)
	}
	return exitOK
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "helix",
		Short:         "Passphrase-protected, content-addressed encrypted backup",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("metrics-addr", "", "optional address to expose Prometheus metrics on (debug only)")

	root.AddCommand(newEncryptCommand())
	root.AddCommand(newDecryptCommand())
	return root
}

// withMetrics registers the run's Prometheus metrics and, when addr is
// non-empty, starts the optional debug exporter, stopping it once the
// command returns or the process receives an interrupt. Metrics are
// always recorded for the run; addr only controls whether they are also
// exposed for scraping.
func withMetrics(addr string) (context.Context, context.CancelFunc, *metricsx.Metrics) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	m := metricsx.New()
	if addr == "" {
		return ctx, stop, m
	}

	go func() {
		if err := metricsx.ServeDebug(ctx, addr); err != nil {
			fmt.Fprintf(os.Stderr, "metrics listener stopped: %v\n", err)
		}
	}()
	return ctx, stop, m
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(cmd.Flags())
}

func exitCodeForError(err error) int {
	var capErr *capsule.CapsuleError
	if errors.As(err, &capErr) {
		switch capErr.Code {
		case capsule.CodeInvalidCapsule:
			return exitInvalidCapsule
		case capsule.CodeMalformedCapsule:
			return exitMalformedCapsule
		}
	}

	switch {
	case errors.Is(err, capsule.ErrPassphraseMismatch), errors.Is(err, masterkey.ErrPassphraseMismatch):
		return exitPassphraseMismatch
	case errors.Is(err, capsule.ErrMalformedCapsule):
		return exitMalformedCapsule
	default:
		return exitGenericFailure
	}
}
