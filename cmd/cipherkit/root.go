// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/agilira/cipherkit"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cli holds the global flags and the Cipher built from them.
type cli struct {
	configPath string
	key        string
	provider   string
	verbose    bool

	cfg    *cipherkit.Config
	cipher *cipherkit.Cipher
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "cipherkit",
		Short: "Encrypt values, hash data and encode bytes",
		Long: `cipherkit wraps the cipherkit library: envelope encryption, digests and
HMACs, secure random strings, URL-safe base64 and zero-width encoding.

Settings come from an optional TOML file (--config) and CIPHERKIT_*
environment variables; flags win over both.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "path to a TOML configuration file")
	root.PersistentFlags().StringVarP(&c.key, "key", "k", "", "symmetric key (overrides configuration)")
	root.PersistentFlags().StringVarP(&c.provider, "provider", "p", "", "crypto provider (std, modern)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		c.newEncryptCmd(),
		c.newDecryptCmd(),
		c.newHashCmd(),
		c.newDigestCmd(),
		c.newRandomCmd(),
		newB64Cmd(),
		newZWCmd(),
		c.newAlgosCmd(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := cipherkit.LoadConfig(c.configPath)
	if err != nil {
		return err
	}
	if c.provider != "" {
		cfg.Provider = c.provider
	}

	logger := zap.NewNop()
	if c.verbose {
		cfg.LogLevel = "debug"
		if logger, err = cfg.NewLogger(); err != nil {
			return err
		}
	}

	cph, err := cipherkit.NewCipherFromConfig(cfg, logger)
	if err != nil {
		return err
	}
	if c.key != "" {
		cph.KeyStore().SetKey(c.key)
	}

	c.cfg = cfg
	c.cipher = cph
	return nil
}

// readInput returns the first argument, or stdin when there is none.
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) > 0 {
		return []byte(args[0]), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return []byte(strings.TrimRight(string(data), "\r\n")), nil
}
