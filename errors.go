// errors.go: Sentinel errors and rich error codes.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cipherkit

import (
	"errors"
	"fmt"
)

// Public standard errors. Every error returned by this package wraps one of
// these, so callers can match with errors.Is().
var (
	// ErrRandomUnavailable is returned when no usable CSPRNG is configured or
	// the reader returns fewer bytes than requested.
	ErrRandomUnavailable = errors.New("cipherkit: random source unavailable")

	// ErrUnknownAlgorithm is returned when a cipher or one-shot digest
	// algorithm is not recognized by the provider.
	ErrUnknownAlgorithm = errors.New("cipherkit: unknown algorithm")

	// ErrUnsupportedAlgorithm is returned when a hash context is requested for
	// a digest the provider does not offer.
	ErrUnsupportedAlgorithm = errors.New("cipherkit: unsupported algorithm")

	// ErrUpdateFailed is returned when feeding data into a hash context fails.
	ErrUpdateFailed = errors.New("cipherkit: hash update failed")

	// ErrAlreadyConsumed is returned for any operation on a finalized hash context.
	ErrAlreadyConsumed = errors.New("cipherkit: hash already consumed")

	// ErrCopyUnsupported is returned when the digest cannot snapshot its state.
	ErrCopyUnsupported = errors.New("cipherkit: hash state cannot be copied")

	// ErrEncryptFailed is returned when the provider fails to encrypt with a
	// supported algorithm. It signals "no output" rather than bad input.
	ErrEncryptFailed = errors.New("cipherkit: encryption failed")

	// ErrBase64Decode is returned when URL-safe base64 decoding fails.
	ErrBase64Decode = errors.New("cipherkit: base64 decode error")

	// ErrInvalidConfig is returned when a configuration value is not recognized.
	ErrInvalidConfig = errors.New("cipherkit: invalid configuration")

	// ErrProviderNotFound is returned when a named provider is not registered.
	ErrProviderNotFound = errors.New("cipherkit: provider not found")
)

// Error codes for rich error handling
const (
	ErrCodeRandom          = "CIPHERKIT_RANDOM_UNAVAILABLE"
	ErrCodeUnknownAlgo     = "CIPHERKIT_UNKNOWN_ALGORITHM"
	ErrCodeUnsupportedAlgo = "CIPHERKIT_UNSUPPORTED_ALGORITHM"
	ErrCodeUpdate          = "CIPHERKIT_UPDATE_FAILED"
	ErrCodeConsumed        = "CIPHERKIT_ALREADY_CONSUMED"
	ErrCodeCopy            = "CIPHERKIT_COPY_UNSUPPORTED"
	ErrCodeEncrypt         = "CIPHERKIT_ENCRYPT_FAILED"
	ErrCodeSerialize       = "CIPHERKIT_SERIALIZE"
	ErrCodeBase64Decode    = "CIPHERKIT_BASE64_DECODE"
	ErrCodeConfig          = "CIPHERKIT_INVALID_CONFIG"
	ErrCodeProvider        = "CIPHERKIT_PROVIDER_NOT_FOUND"
)

// tagged joins a sentinel with a rich go-errors value so that both
// errors.Is(err, sentinel) and the rich code survive.
func tagged(sentinel error, rich error) error {
	return fmt.Errorf("%w: %w", sentinel, rich)
}
