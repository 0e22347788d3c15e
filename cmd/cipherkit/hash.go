// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"

	"github.com/agilira/cipherkit"
	"github.com/spf13/cobra"
)

func (c *cli) newHashCmd() *cobra.Command {
	var (
		algo    string
		keyed   bool
		hmacKey string
		upper   bool
		file    string
	)
	cmd := &cobra.Command{
		Use:   "hash [data]",
		Short: "Hash data, a file or stdin, optionally as an HMAC",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				h   *cipherkit.Hash
				err error
			)
			if keyed {
				h, err = c.cipher.NewHMAC(algo, []byte(hmacKey))
			} else {
				h, err = c.cipher.NewHash(algo)
			}
			if err != nil {
				return err
			}

			switch {
			case file != "":
				_, err = h.UpdateFile(cmd.Context(), file)
			case len(args) > 0:
				_, err = h.Update(args[0])
			default:
				_, err = h.UpdateStream(cmd.InOrStdin(), -1)
			}
			if err != nil {
				return err
			}

			out, err := h.Hex(upper)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&algo, "algo", "a", "", "digest (default from configuration)")
	cmd.Flags().BoolVar(&keyed, "hmac", false, "compute an HMAC")
	cmd.Flags().StringVar(&hmacKey, "hmac-key", "", "HMAC key (defaults to the cipher key)")
	cmd.Flags().BoolVarP(&upper, "upper", "U", false, "print upper-case hex")
	cmd.Flags().StringVarP(&file, "file", "f", "", "hash the contents of a file")
	return cmd
}

func (c *cli) newDigestCmd() *cobra.Command {
	var (
		algo string
		raw  bool
	)
	cmd := &cobra.Command{
		Use:   "digest [data]",
		Short: "One-shot digest of data or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			out, err := c.cipher.Digest(input, algo, raw)
			if err != nil {
				return err
			}
			if raw {
				out = cipherkit.B64Encode([]byte(out))
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&algo, "algo", "a", "", "digest (default from configuration)")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the binary digest as URL-safe base64")
	return cmd
}
