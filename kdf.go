// kdf.go: Derivation of cipher keys from the key store string.
//
// The key store holds an arbitrary string, while each cipher needs key
// material of an exact size. The configured KDF stretches or compresses the
// string into that size, bound to the cipher name so that two ciphers never
// share key bytes.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cipherkit

import (
	"crypto/sha256"
	"fmt"
	"io"
	"strings"

	goerrors "github.com/agilira/go-errors"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/pbkdf2"
)

// KDF selects how cipher keys are derived.
type KDF string

const (
	// KDFHKDF uses HKDF-SHA256. Fast; suitable for high-entropy keys.
	KDFHKDF KDF = "hkdf"
	// KDFPBKDF2 uses PBKDF2-SHA256 with PBKDF2Iterations rounds.
	KDFPBKDF2 KDF = "pbkdf2"
	// KDFArgon2id uses Argon2id with DefaultKDFParams. Best for passphrases.
	KDFArgon2id KDF = "argon2id"
)

// PBKDF2Iterations is the round count used by KDFPBKDF2.
const PBKDF2Iterations = 100000

// Default Argon2id parameters.
const (
	DefaultTime    = 3
	DefaultMemory  = 64 // MB
	DefaultThreads = 4
)

// MaxKDFMemory is the largest Argon2id memory setting in MB; larger values
// overflow the KiB count passed to Argon2.
const MaxKDFMemory = (1<<32 - 1) / 1024

// KDFParams defines custom parameters for Argon2id key derivation.
// Zero fields fall back to the defaults.
type KDFParams struct {
	Time    uint32 `json:"time,omitempty" toml:"time"`
	Memory  uint32 `json:"memory,omitempty" toml:"memory"` // MB
	Threads uint8  `json:"threads,omitempty" toml:"threads"`
}

// FastKDFParams trades security margin for speed (Time=1, Memory=32MB, Threads=2).
func FastKDFParams() *KDFParams {
	return &KDFParams{Time: 1, Memory: 32, Threads: 2}
}

// ParseKDF validates a KDF name. An empty name selects KDFHKDF.
func ParseKDF(name string) (KDF, error) {
	switch k := KDF(strings.ToLower(strings.TrimSpace(name))); k {
	case "":
		return KDFHKDF, nil
	case KDFHKDF, KDFPBKDF2, KDFArgon2id:
		return k, nil
	default:
		return "", tagged(ErrInvalidConfig, goerrors.New(ErrCodeConfig, fmt.Sprintf("unknown kdf %q", name)))
	}
}

// DeriveKey derives a key from password and salt using Argon2id. A nil
// params uses the defaults.
func DeriveKey(password, salt []byte, keyLen int, params *KDFParams) ([]byte, error) {
	if len(password) == 0 {
		return nil, goerrors.New("EMPTY_PASSWORD", "password cannot be empty")
	}
	if len(salt) == 0 {
		return nil, goerrors.New("EMPTY_SALT", "salt cannot be empty")
	}
	if keyLen <= 0 {
		return nil, goerrors.New("INVALID_KEYLEN", "key length must be positive")
	}

	t, m, p := uint32(DefaultTime), uint32(DefaultMemory), uint8(DefaultThreads)
	if params != nil {
		if params.Time > 0 {
			t = params.Time
		}
		if params.Memory > MaxKDFMemory {
			return nil, goerrors.New("INVALID_MEMORY", fmt.Sprintf("memory must not exceed %d MB", MaxKDFMemory))
		}
		if params.Memory > 0 {
			m = params.Memory
		}
		if params.Threads > 0 {
			p = params.Threads
		}
	}
	return argon2.IDKey(password, salt, t, m*1024, p, uint32(keyLen)), nil // #nosec G115 -- keyLen validated positive
}

// DeriveKeyPBKDF2 derives a key using PBKDF2-SHA256.
func DeriveKeyPBKDF2(password, salt []byte, iterations, keyLen int) ([]byte, error) {
	if len(password) == 0 {
		return nil, goerrors.New("EMPTY_PASSWORD", "password cannot be empty")
	}
	if len(salt) == 0 {
		return nil, goerrors.New("EMPTY_SALT", "salt cannot be empty")
	}
	if iterations <= 0 {
		return nil, goerrors.New("INVALID_ITERATIONS", "iterations must be positive")
	}
	if keyLen <= 0 {
		return nil, goerrors.New("INVALID_KEYLEN", "key length must be positive")
	}
	return pbkdf2.Key(password, salt, iterations, keyLen, sha256.New), nil
}

// DeriveKeyHKDF derives a key using HKDF-SHA256 (RFC 5869). salt and info
// may be nil.
func DeriveKeyHKDF(masterKey, salt, info []byte, keyLen int) ([]byte, error) {
	if len(masterKey) == 0 {
		return nil, goerrors.New("INVALID_MASTER_KEY", "master key cannot be empty")
	}
	if keyLen <= 0 || keyLen > 255*sha256.Size {
		return nil, goerrors.New("INVALID_KEYLEN", "key length out of range for HKDF-SHA256")
	}

	okm := make([]byte, keyLen)
	if _, err := io.ReadFull(hkdf.New(sha256.New, masterKey, salt, info), okm); err != nil {
		return nil, goerrors.Wrap(err, "HKDF_FAILED", "hkdf expansion failed")
	}
	return okm, nil
}

// deriveCipherKey turns the key store string into size bytes for method.
// The salt (or HKDF info) is the lowercase method name, so the derivation
// is deterministic and needs nothing stored in the envelope.
func deriveCipherKey(kdf KDF, params *KDFParams, secret, method string, size int) ([]byte, error) {
	label := []byte("cipherkit:" + strings.ToLower(method))
	switch kdf {
	case KDFPBKDF2:
		return DeriveKeyPBKDF2([]byte(secret), label, PBKDF2Iterations, size)
	case KDFArgon2id:
		return DeriveKey([]byte(secret), label, size, params)
	default:
		return DeriveKeyHKDF([]byte(secret), nil, label, size)
	}
}
