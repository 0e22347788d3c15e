// cipher_internal_test.go: Derived key cache and logging tests
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cipherkit

import (
	"bytes"
	"runtime"
	"sync"
	"testing"
	"weak"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDerivedKeyCache(t *testing.T) {
	ks := NewKeyStore(nil)
	ks.SetKey("cache-key")
	c := NewCipher(WithKeyStore(ks))

	_, err := c.Encrypt("a", "aes-128-cbc")
	require.NoError(t, err)
	_, err = c.Encrypt("b", "aes-128-cbc")
	require.NoError(t, err)
	_, err = c.Encrypt("c", "aes-256-gcm")
	require.NoError(t, err)

	c.keyCacheMu.RLock()
	require.Len(t, c.keyCache, 2)
	var cached [][]byte
	for _, k := range c.keyCache {
		cached = append(cached, k)
	}
	c.keyCacheMu.RUnlock()

	ks.SetKey("rotated")
	_, err = c.Encrypt("d", "aes-128-cbc")
	require.NoError(t, err)

	c.keyCacheMu.RLock()
	assert.Len(t, c.keyCache, 1, "keys of the previous key are dropped")
	assert.Equal(t, GetKeyFingerprint([]byte("rotated")), c.keyFP)
	c.keyCacheMu.RUnlock()
	for _, k := range cached {
		assert.Equal(t, make([]byte, len(k)), k, "evicted key must be zeroed")
	}
}

func TestCiphersAreNotRetainedByKeyStore(t *testing.T) {
	ks := NewKeyStore(nil)

	refs := make([]weak.Pointer[Cipher], 0, 1000)
	for i := 0; i < 1000; i++ {
		c := NewCipher(WithKeyStore(ks))
		_, err := c.Encrypt("x", "aes-128-cbc")
		require.NoError(t, err)
		refs = append(refs, weak.Make(c))
	}

	runtime.GC()
	runtime.GC()

	live := 0
	for _, r := range refs {
		if r.Value() != nil {
			live++
		}
	}
	assert.Less(t, live, 10, "ciphers must be collectable once callers drop them")

	// the store keeps working without any per-cipher state
	_, ok := ks.SetKey("after")
	assert.True(t, ok)
}

func TestStaleKeyIsNotCached(t *testing.T) {
	ks := NewKeyStore(nil)
	ks.SetKey("first")
	c := NewCipher(WithKeyStore(ks))

	// the key changes while the old one is being derived
	t.Cleanup(func() { deriveKey = deriveCipherKey })
	deriveKey = func(kdf KDF, params *KDFParams, secret, method string, size int) ([]byte, error) {
		ks.SetKey("second")
		return deriveCipherKey(kdf, params, secret, method, size)
	}

	key, err := c.cipherKey("aes-128-cbc", 16)
	require.NoError(t, err)
	want, err := deriveCipherKey(c.kdf, c.kdfParams, "first", "aes-128-cbc", 16)
	require.NoError(t, err)
	assert.Equal(t, want, key, "the caller still gets the key it asked for")

	c.keyCacheMu.RLock()
	assert.Empty(t, c.keyCache, "a key derived from a replaced secret is not cached")
	c.keyCacheMu.RUnlock()

	deriveKey = deriveCipherKey
	_, err = c.cipherKey("aes-128-cbc", 16)
	require.NoError(t, err)
	c.keyCacheMu.RLock()
	assert.Len(t, c.keyCache, 1)
	assert.Equal(t, GetKeyFingerprint([]byte("second")), c.keyFP)
	c.keyCacheMu.RUnlock()
}

func TestDerivedKeysDifferPerMethod(t *testing.T) {
	ks := NewKeyStore(nil)
	c := NewCipher(WithKeyStore(ks))

	k1, err := c.cipherKey("aes-256-cbc", 32)
	require.NoError(t, err)
	k2, err := c.cipherKey("aes-256-gcm", 32)
	require.NoError(t, err)
	assert.False(t, bytes.Equal(k1, k2))

	again, err := c.cipherKey("aes-256-cbc", 32)
	require.NoError(t, err)
	assert.Equal(t, k1, again)

	// callers own their copy
	Zeroize(again)
	k3, err := c.cipherKey("aes-256-cbc", 32)
	require.NoError(t, err)
	assert.Equal(t, k1, k3)
}

func TestDecryptRejectLoggedAtDebug(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ks := NewKeyStore(nil)
	c := NewCipher(WithKeyStore(ks), WithLogger(zap.New(core)))

	ok, err := c.Decrypt("garbage!", "aes-128-gcm", nil)
	require.NoError(t, err)
	assert.False(t, ok)

	entries := logs.FilterMessage("decrypt rejected").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "aes-128-gcm", entries[0].ContextMap()["method"])
	assert.Equal(t, "malformed envelope", entries[0].ContextMap()["reason"])
}

func TestCipherNeverLogsSecrets(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)
	ks := NewKeyStore(nil)
	ks.SetLogger(logger)
	ks.SetKey("top-secret-key")
	c := NewCipher(WithKeyStore(ks), WithLogger(logger))

	text, err := c.Encrypt("plaintext-marker", "aes-128-cbc")
	require.NoError(t, err)
	_, err = c.Decrypt(text, "aes-128-gcm", nil)
	require.NoError(t, err)

	require.NotZero(t, logs.Len())
	for _, e := range logs.All() {
		for _, v := range e.ContextMap() {
			s, _ := v.(string)
			assert.NotContains(t, s, "top-secret-key")
			assert.NotContains(t, s, "plaintext-marker")
		}
	}
}

func TestPackageLoggerUsedByDefault(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(nil) })

	c := NewCipher(WithKeyStore(NewKeyStore(nil)))
	_, err := c.Decrypt("garbage!", "aes-128-cbc", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("decrypt rejected").Len())
}

func TestCipherConcurrentUse(t *testing.T) {
	ks := NewKeyStore(nil)
	c := NewCipher(WithKeyStore(ks))

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			text, err := c.Encrypt("concurrent", "aes-256-gcm")
			if err != nil {
				errs <- err
				return
			}
			var out string
			if ok, err := c.Decrypt(text, "aes-256-gcm", &out); err != nil || !ok || out != "concurrent" {
				errs <- assert.AnError
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestIsEmptyValue(t *testing.T) {
	type point struct{ X, Y int }
	var iface any

	empty := []any{nil, "", 0, 0.0, false, []int{}, map[string]int{}, [0]int{}, (*point)(nil), iface}
	for _, v := range empty {
		assert.True(t, isEmptyValue(v), "%#v", v)
	}

	full := []any{"0", 1, true, []int{0}, map[string]int{"a": 0}, &point{}, point{}, point{X: 1}}
	for _, v := range full {
		assert.False(t, isEmptyValue(v), "%#v", v)
	}
}
