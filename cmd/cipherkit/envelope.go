// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// errRejected is returned when an envelope does not open.
var errRejected = errors.New("envelope rejected: wrong key, algorithm or corrupted text")

func (c *cli) newEncryptCmd() *cobra.Command {
	var (
		algo   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "encrypt [value]",
		Short: "Encrypt a value into an envelope",
		Long: `Encrypt a string (or, with --json, any JSON value) and print the
URL-safe envelope. Reads stdin when no value is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			var value any = string(input)
			if asJSON {
				if err := json.Unmarshal(input, &value); err != nil {
					return fmt.Errorf("input is not valid JSON: %w", err)
				}
			}

			text, err := c.cipher.Encrypt(value, algo)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().StringVarP(&algo, "algo", "a", "", "cipher (default from configuration)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "treat the input as a JSON value")
	return cmd
}

func (c *cli) newDecryptCmd() *cobra.Command {
	var algo string
	cmd := &cobra.Command{
		Use:   "decrypt [envelope]",
		Short: "Decrypt an envelope",
		Long: `Decrypt an envelope produced by encrypt. String values are printed as-is,
anything else as JSON. Reads stdin when no envelope is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			var raw json.RawMessage
			ok, err := c.cipher.Decrypt(string(input), algo, &raw)
			if err != nil {
				return err
			}
			if !ok {
				return errRejected
			}

			var s string
			if json.Unmarshal(raw, &s) == nil {
				fmt.Fprintln(cmd.OutOrStdout(), s)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(raw))
			return nil
		},
	}
	cmd.Flags().StringVarP(&algo, "algo", "a", "", "cipher (default from configuration)")
	return cmd
}
