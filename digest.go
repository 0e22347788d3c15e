// digest.go: One-shot digests.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cipherkit

import (
	"encoding/hex"
	"fmt"

	goerrors "github.com/agilira/go-errors"
)

// Digest hashes data with algo using the default registry and returns the
// hex digest, or the binary digest as a string when raw is true. Empty data
// yields "" without checking algo.
func Digest(data []byte, algo string, raw bool) (string, error) {
	return digestWith(DefaultRegistry(), data, algo, raw)
}

// Digest hashes data with the cipher's registry. An empty algo selects the
// cipher's default digest.
func (c *Cipher) Digest(data []byte, algo string, raw bool) (string, error) {
	if algo == "" {
		algo = c.defaultDigest
	}
	return digestWith(c.registry, data, algo, raw)
}

func digestWith(reg *Registry, data []byte, algo string, raw bool) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	method, ok := reg.DigestMethod(algo)
	if !ok {
		return "", tagged(ErrUnknownAlgorithm, goerrors.New(ErrCodeUnknownAlgo, fmt.Sprintf("unknown digest %q", algo)))
	}
	newFn, err := reg.Provider().Digest(method)
	if err != nil {
		return "", tagged(ErrUnknownAlgorithm, goerrors.Wrap(err, ErrCodeUnknownAlgo, fmt.Sprintf("provider has no digest %q", method)))
	}

	h := newFn()
	h.Write(data)
	sum := h.Sum(nil)
	if raw {
		return string(sum), nil
	}
	return hex.EncodeToString(sum), nil
}
