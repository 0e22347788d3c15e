// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"

	"github.com/agilira/cipherkit"
	"github.com/spf13/cobra"
)

func (c *cli) newRandomCmd() *cobra.Command {
	var asBytes bool
	cmd := &cobra.Command{
		Use:   "random [length]",
		Short: "Print a URL-safe random string (or hex random bytes)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := 32
			if len(args) > 0 {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid length %q: %w", args[0], err)
				}
				n = v
			}

			if asBytes {
				b, err := cipherkit.RandomBytes(n)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(b))
				return nil
			}
			s, err := cipherkit.Random(n)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asBytes, "bytes", false, "print n random bytes as hex")
	return cmd
}

func newB64Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "b64",
		Short: "URL-safe base64 without padding",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:  "encode [data]",
			Args: cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				input, err := readInput(cmd, args)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cipherkit.B64Encode(input))
				return nil
			},
		},
		&cobra.Command{
			Use:  "decode [text]",
			Args: cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				input, err := readInput(cmd, args)
				if err != nil {
					return err
				}
				out, err := cipherkit.B64Decode(string(input))
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			},
		},
	)
	return cmd
}

func newZWCmd() *cobra.Command {
	var first bool
	cmd := &cobra.Command{
		Use:   "zw",
		Short: "Hide data in zero-width characters",
	}
	decode := &cobra.Command{
		Use:   "decode [text]",
		Short: "Print every payload hidden in text, one per line",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			if first {
				payload, ok := cipherkit.ZWDecodeFirst(string(input))
				if !ok {
					return fmt.Errorf("no zero-width payload found")
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(payload))
				return nil
			}
			payloads := cipherkit.ZWDecode(string(input))
			if len(payloads) == 0 {
				return fmt.Errorf("no zero-width payload found")
			}
			for _, p := range payloads {
				fmt.Fprintln(cmd.OutOrStdout(), string(p))
			}
			return nil
		},
	}
	decode.Flags().BoolVar(&first, "first", false, "print only the first payload")

	cmd.AddCommand(
		&cobra.Command{
			Use:  "encode [data]",
			Args: cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				input, err := readInput(cmd, args)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), cipherkit.ZWEncode(input))
				return nil
			},
		},
		decode,
	)
	return cmd
}

func (c *cli) newAlgosCmd() *cobra.Command {
	var ciphers bool
	cmd := &cobra.Command{
		Use:   "algos",
		Short: "List the digests (or ciphers) of the active provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := c.cipher.Registry()
			var names []string
			if ciphers {
				for _, canonical := range reg.CryptMethods() {
					names = append(names, canonical)
				}
				sort.Strings(names)
			} else {
				names = reg.SupportedHashes()
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&ciphers, "ciphers", false, "list ciphers instead of digests")
	return cmd
}
