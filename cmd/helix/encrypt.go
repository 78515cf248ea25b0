package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/prn-tf/helix/internal/block"
	"github.com/prn-tf/helix/internal/capsule"
	"github.com/prn-tf/helix/internal/logging"
)

func newEncryptCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encrypt",
		Short: "Mirror a source directory into a capsule, encrypting new and changed files",
		RunE:  runEncrypt,
	}

	cmd.Flags().String("source", ".", "directory to encrypt from")
	cmd.Flags().String("target", ".", "capsule directory to encrypt into")
	cmd.Flags().Bool("delete", false, "remove each source file once durably encrypted")
	cmd.Flags().Int("chunk-size", block.DefaultChunkSize, "plaintext chunk size in bytes")
	return cmd
}

func runEncrypt(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log := logging.New(cfg.LogLevel)
	ctx, stop, metrics := withMetrics(cfg.MetricsAddr)
	defer stop()

	firstRun := !capsuleExists(cfg.Target)
	passphrase, err := promptPassphrase(os.Stdin, cmd.ErrOrStderr(), firstRun)
	if err != nil {
		return err
	}

	enc, err := capsule.OpenEncryptor(ctx, cfg.Target, passphrase, log)
	if err != nil {
		return err
	}
	defer enc.Close()
	enc.SetChunkSize(cfg.ChunkSize)

	factory := newTerminalEncryptionFactory(cmd.OutOrStdout(), metrics)
	return enc.Run(ctx, cfg.Source, factory, cfg.Delete)
}

// capsuleExists reports whether root already looks like a capsule, used
// only to decide whether to ask for passphrase confirmation.
func capsuleExists(root string) bool {
	info, err := os.Stat(capsule.NewLayout(root).HelixDir())
	return err == nil && info.IsDir()
}
