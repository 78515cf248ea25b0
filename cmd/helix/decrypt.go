package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/prn-tf/helix/internal/capsule"
	"github.com/prn-tf/helix/internal/logging"
)

func newDecryptCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decrypt",
		Short: "Restore a capsule's tracked files into a destination directory",
		RunE:  runDecrypt,
	}

	cmd.Flags().String("source", ".", "capsule directory to decrypt from")
	cmd.Flags().String("target", ".", "directory to restore plaintext files into")
	cmd.Flags().Bool("delete", false, "reserved; unused by decrypt")
	return cmd
}

func runDecrypt(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log := logging.New(cfg.LogLevel)
	ctx, stop, metrics := withMetrics(cfg.MetricsAddr)
	defer stop()

	passphrase, err := promptPassphrase(os.Stdin, cmd.ErrOrStderr(), false)
	if err != nil {
		return err
	}

	dec, err := capsule.OpenDecryptor(ctx, cfg.Source, passphrase, log)
	if err != nil {
		return err
	}
	defer dec.Close()

	factory := newTerminalDecryptionFactory(cmd.OutOrStdout(), metrics)
	return dec.Run(ctx, cfg.Target, factory)
}
