// keystore.go: Process-wide holder of the symmetric key.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cipherkit

import (
	"sync"
	"time"

	"github.com/agilira/go-timecache"
	"go.uber.org/zap"
)

// FallbackKey is used when no key was set and configuration has none.
const FallbackKey = "11df611b174f40070084228b1683fc44"

// ConfigKeyName is the configuration key consulted for the default key.
const ConfigKeyName = "cipher_key"

// LookupFunc resolves a configuration value, returning def when the key is
// absent. (*Config).Lookup satisfies it.
type LookupFunc func(key, def string) string

// KeySource tells where the current key came from.
type KeySource string

const (
	KeySourceUnresolved KeySource = ""         // Key() not called yet
	KeySourceFallback   KeySource = "fallback" // FallbackKey constant
	KeySourceConfig     KeySource = "config"   // configuration lookup
	KeySourceExplicit   KeySource = "explicit" // SetKey
)

// KeyInfo describes the current key without exposing it.
type KeyInfo struct {
	Source      KeySource `json:"source"`
	Fingerprint string    `json:"fingerprint"`
	SetAt       time.Time `json:"set_at"`
}

// KeyStore holds a single symmetric key string. The zero value is not
// usable; create one with NewKeyStore.
type KeyStore struct {
	mu       sync.RWMutex
	lookup   LookupFunc
	key      string
	resolved bool
	info     KeyInfo
	logger   *zap.Logger
}

// NewKeyStore creates a key store that resolves its default key through
// lookup. A nil lookup means only FallbackKey is available as a default.
func NewKeyStore(lookup LookupFunc) *KeyStore {
	return &KeyStore{lookup: lookup}
}

// DefaultKeyStore backs the package-level SetKey and GetKey functions.
var DefaultKeyStore = NewKeyStore(nil)

// SetKey stores key and returns the previous one. An empty key is rejected
// with ok=false and leaves the store untouched.
func (ks *KeyStore) SetKey(key string) (previous string, ok bool) {
	if key == "" {
		return "", false
	}

	ks.mu.Lock()
	previous = ks.resolveLocked()
	ks.key = key
	ks.info = KeyInfo{
		Source:      KeySourceExplicit,
		Fingerprint: GetKeyFingerprint([]byte(key)),
		SetAt:       timecache.CachedTime().UTC(),
	}
	info := ks.info
	logger := ks.logger
	ks.mu.Unlock()

	orNop(logger).Info("cipher key changed",
		zap.String("fingerprint", info.Fingerprint),
		zap.String("source", string(info.Source)))
	return previous, true
}

// Key returns the current key, resolving the default on first use.
func (ks *KeyStore) Key() string {
	ks.mu.RLock()
	if ks.resolved {
		key := ks.key
		ks.mu.RUnlock()
		return key
	}
	ks.mu.RUnlock()

	ks.mu.Lock()
	defer ks.mu.Unlock()
	return ks.resolveLocked()
}

// Info reports source, fingerprint and set time of the current key.
func (ks *KeyStore) Info() KeyInfo {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	ks.resolveLocked()
	return ks.info
}

// SetLogger attaches a logger for key change events.
func (ks *KeyStore) SetLogger(l *zap.Logger) {
	ks.mu.Lock()
	ks.logger = l
	ks.mu.Unlock()
}

// fingerprint returns the fingerprint of the current key.
func (ks *KeyStore) fingerprint() string {
	ks.mu.RLock()
	if ks.resolved {
		fp := ks.info.Fingerprint
		ks.mu.RUnlock()
		return fp
	}
	ks.mu.RUnlock()
	return ks.Info().Fingerprint
}

// resolveLocked requires ks.mu held for writing.
func (ks *KeyStore) resolveLocked() string {
	if ks.resolved {
		return ks.key
	}

	key, source := FallbackKey, KeySourceFallback
	if ks.lookup != nil {
		if v := ks.lookup(ConfigKeyName, FallbackKey); v != "" && v != FallbackKey {
			key, source = v, KeySourceConfig
		}
	}

	ks.key = key
	ks.resolved = true
	ks.info = KeyInfo{
		Source:      source,
		Fingerprint: GetKeyFingerprint([]byte(key)),
		SetAt:       timecache.CachedTime().UTC(),
	}
	return key
}

// SetKey stores key in DefaultKeyStore and returns the previous key.
func SetKey(key string) (string, bool) {
	return DefaultKeyStore.SetKey(key)
}

// GetKey returns the key held by DefaultKeyStore.
func GetKey() string {
	return DefaultKeyStore.Key()
}
