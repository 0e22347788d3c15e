// keyutils.go: Key fingerprinting and zeroization.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cipherkit

import (
	"crypto/sha256"
	"fmt"
)

// Zeroize overwrites b with zeros in place.
//
// Derived cipher keys are zeroized when they are evicted from the key cache;
// callers holding their own copies of key material can use it the same way.
func Zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// GetKeyFingerprint generates a fingerprint for a key (non-cryptographic).
//
// The fingerprint is the first 8 bytes of the SHA-256 digest, hex encoded.
// It identifies a key in logs and caches without exposing the key material.
// An empty key has an empty fingerprint.
//
// Example:
//
//	fp := cipherkit.GetKeyFingerprint([]byte(cipherkit.GetKey()))
//	fmt.Println("Key fingerprint:", fp) // e.g., "a1b2c3d4e5f67890"
func GetKeyFingerprint(key []byte) string {
	if len(key) == 0 {
		return ""
	}
	hash := sha256.Sum256(key)
	return fmt.Sprintf("%016x", hash[:8])
}
