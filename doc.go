// Package cipherkit provides convenience cryptography routines over a
// pluggable crypto provider.
//
// The package covers:
//   - Envelope encryption of arbitrary JSON-serializable values with AES
//     (ECB, CBC, CTR, GCM), 3DES and (X)ChaCha20-Poly1305
//   - One-shot digests and incremental hash/HMAC contexts with copy support
//   - Case-insensitive algorithm name resolution
//   - A process-wide symmetric key holder with a configurable default
//   - Secure random bytes and URL-safe random strings
//   - URL-safe base64 and zero-width steganographic encoding
//
// All primitives come from a Provider. The "std" provider uses the Go
// standard library and golang.org/x/crypto; "modern" is the same set with
// legacy algorithms (MD5, SHA-1, ECB, 3DES) removed.
//
// # Quick Start
//
// Encrypting and decrypting a value with the process-wide key:
//
//	cipherkit.SetKey("my application secret")
//
//	text, err := cipherkit.Encrypt(map[string]any{"user": 42}, "aes-256-gcm")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	var out map[string]any
//	ok, err := cipherkit.Decrypt(text, "aes-256-gcm", &out)
//	if err != nil {
//		log.Fatal(err) // unknown algorithm
//	}
//	if !ok {
//		// tampered, truncated or encrypted under another key
//	}
//
// Decrypt never tells the caller why an envelope was rejected; the reason is
// logged at debug level.
//
// # Envelopes
//
// An envelope is the URL-safe base64 form of a JSON object with the IV
// ("i"), the ciphertext ("v") and, for AEAD ciphers, an 8-byte
// authentication tag ("g"). Cipher keys are derived from the key store
// string with HKDF-SHA256 by default; PBKDF2-SHA256 and Argon2id can be
// selected with WithKDF.
//
// # Hashing
//
// Hash contexts accept data incrementally and are finalized exactly once:
//
//	h, err := cipherkit.NewHMAC("sha256", []byte("secret"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	if _, err := h.Update("foo", []string{"bar", "baz"}); err != nil {
//		log.Fatal(err)
//	}
//	snapshot, _ := h.Copy()
//	mac, _ := h.Hex(false)
//
// After Hex, Raw or Equal every operation on the context returns
// ErrAlreadyConsumed.
//
// # Configuration
//
// LoadConfig reads a TOML file and CIPHERKIT_* environment overrides;
// NewCipherFromConfig wires provider, key store, KDF and a zap logger from
// it. The library logs nothing until SetLogger or WithLogger is used.
//
// # Error Handling
//
// Errors wrap a package sentinel (ErrUnknownAlgorithm, ErrUpdateFailed, ...)
// for errors.Is, together with a github.com/agilira/go-errors value carrying
// a stable code.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package cipherkit
