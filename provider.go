// provider.go: Crypto provider interface and the named provider set.
//
// Every cryptographic primitive used by this package comes from a Provider:
// algorithm enumeration, digest construction, raw symmetric encryption and
// the CSPRNG. The standard provider is built on the Go standard library and
// golang.org/x/crypto; alternative providers can be registered by name.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cipherkit

import (
	"fmt"
	"hash"
	"io"
	"sort"
	"sync"

	goerrors "github.com/agilira/go-errors"
)

// Provider supplies the cryptographic primitives.
type Provider interface {
	// Name is the provider's registration name (e.g. "std").
	Name() string

	// DigestMethods lists digest names as the provider spells them,
	// case variants included.
	DigestMethods() []string

	// CipherMethods lists cipher names as the provider spells them.
	CipherMethods() []string

	// Digest returns a constructor for the named digest (case-insensitive).
	Digest(method string) (func() hash.Hash, error)

	// Cipher returns the named symmetric cipher (case-insensitive).
	Cipher(method string) (SymmetricCipher, error)

	// Rand is the provider's CSPRNG. A nil reader means none is available.
	Rand() io.Reader
}

// SymmetricCipher is a raw encrypt/decrypt primitive bound to one algorithm.
// Keys and IVs must already have the sizes the cipher reports.
type SymmetricCipher interface {
	// KeySize is the required key length in bytes.
	KeySize() int

	// IVSize is the required IV or nonce length in bytes; zero if none.
	IVSize() int

	// AEAD reports whether the cipher produces an authentication tag.
	AEAD() bool

	// Encrypt encrypts plaintext. For AEAD ciphers the tag is truncated to
	// tagSize bytes; non-AEAD ciphers ignore tagSize and return a nil tag.
	Encrypt(key, iv, plaintext []byte, tagSize int) (ciphertext, tag []byte, err error)

	// Decrypt reverses Encrypt, verifying tag when the cipher is AEAD.
	Decrypt(key, iv, ciphertext, tag []byte) ([]byte, error)
}

var (
	providersMu sync.RWMutex
	providers   = make(map[string]Provider)
)

func init() {
	std := NewStdProvider()
	providers[std.Name()] = std
	modern := NewModernProvider()
	providers[modern.Name()] = modern
}

// RegisterProvider makes p available under name, replacing any provider
// previously registered with the same name.
func RegisterProvider(name string, p Provider) error {
	if p == nil {
		return fmt.Errorf("provider cannot be nil")
	}
	if name == "" {
		return fmt.Errorf("provider name cannot be empty")
	}

	providersMu.Lock()
	providers[name] = p
	providersMu.Unlock()
	return nil
}

// LookupProvider returns the provider registered under name. An empty name
// returns the standard provider.
func LookupProvider(name string) (Provider, error) {
	if name == "" {
		name = StdProviderName
	}

	providersMu.RLock()
	defer providersMu.RUnlock()

	p, exists := providers[name]
	if !exists {
		return nil, tagged(ErrProviderNotFound, goerrors.New(ErrCodeProvider, fmt.Sprintf("provider %q is not registered", name)))
	}
	return p, nil
}

// Providers returns the registered provider names in sorted order.
func Providers() []string {
	providersMu.RLock()
	defer providersMu.RUnlock()

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
