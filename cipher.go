// cipher.go: Envelope encryption and decryption of arbitrary values.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cipherkit

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	goerrors "github.com/agilira/go-errors"
	"go.uber.org/zap"
)

// Default algorithms used when a call passes an empty name.
const (
	DefaultCipher = "aes-128-cbc"
	DefaultDigest = "sha256"
)

// Cipher encrypts values into envelopes and back. It is safe for concurrent
// use.
type Cipher struct {
	keys          *KeyStore
	provider      Provider
	registry      *Registry
	random        *RandomSource
	logger        *zap.Logger
	kdf           KDF
	kdfParams     *KDFParams
	defaultCipher string
	defaultDigest string

	keyCacheMu sync.RWMutex
	keyCache   map[string][]byte
	keyFP      string // fingerprint the cached keys were derived from
}

// Option configures a Cipher.
type Option func(*Cipher)

// WithKeyStore sets the key store. Defaults to DefaultKeyStore.
func WithKeyStore(ks *KeyStore) Option {
	return func(c *Cipher) { c.keys = ks }
}

// WithProvider builds the cipher's registry over p. WithRegistry wins
// when both are given.
func WithProvider(p Provider) Option {
	return func(c *Cipher) { c.provider = p }
}

// WithRegistry sets the algorithm registry. Defaults to DefaultRegistry().
func WithRegistry(r *Registry) Option {
	return func(c *Cipher) { c.registry = r }
}

// WithRandomSource overrides the provider's CSPRNG.
func WithRandomSource(rs *RandomSource) Option {
	return func(c *Cipher) { c.random = rs }
}

// WithLogger sets the logger. Defaults to the package logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Cipher) { c.logger = l }
}

// WithKDF selects the key derivation function. params only applies to
// KDFArgon2id and may be nil.
func WithKDF(kdf KDF, params *KDFParams) Option {
	return func(c *Cipher) {
		c.kdf = kdf
		c.kdfParams = params
	}
}

// WithDefaultAlgorithm sets the cipher used when Encrypt or Decrypt get an
// empty algorithm name.
func WithDefaultAlgorithm(algo string) Option {
	return func(c *Cipher) { c.defaultCipher = algo }
}

// WithDefaultDigest sets the digest used when NewHash or NewHMAC get an
// empty algorithm name.
func WithDefaultDigest(algo string) Option {
	return func(c *Cipher) { c.defaultDigest = algo }
}

// NewCipher creates a Cipher. Derived keys are dropped and zeroed the first
// time a key is derived after the key store's key changed.
//
// Example:
//
//	c := cipherkit.NewCipher(cipherkit.WithKDF(cipherkit.KDFPBKDF2, nil))
//	text, err := c.Encrypt(map[string]int{"id": 7}, "aes-256-gcm")
func NewCipher(opts ...Option) *Cipher {
	c := &Cipher{
		kdf:           KDFHKDF,
		defaultCipher: DefaultCipher,
		defaultDigest: DefaultDigest,
		keyCache:      make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.keys == nil {
		c.keys = DefaultKeyStore
	}
	if c.defaultCipher == "" {
		c.defaultCipher = DefaultCipher
	}
	if c.defaultDigest == "" {
		c.defaultDigest = DefaultDigest
	}
	if c.kdf == "" {
		c.kdf = KDFHKDF
	}
	if c.registry == nil {
		if c.provider != nil {
			c.registry = NewRegistry(c.provider, c.logger)
		} else {
			c.registry = DefaultRegistry()
		}
	}
	if c.random == nil {
		c.random = NewRandomSource(c.registry.Provider().Rand())
	}
	return c
}

// deriveKey is replaced in tests.
var deriveKey = deriveCipherKey

var (
	defaultCipherOnce sync.Once
	defaultCipher     *Cipher
)

func packageCipher() *Cipher {
	defaultCipherOnce.Do(func() {
		defaultCipher = NewCipher()
	})
	return defaultCipher
}

// Registry returns the cipher's algorithm registry.
func (c *Cipher) Registry() *Registry { return c.registry }

// KeyStore returns the cipher's key store.
func (c *Cipher) KeyStore() *KeyStore { return c.keys }

// resolveCipher maps algo to its canonical name and primitive.
func (c *Cipher) resolveCipher(algo string) (string, SymmetricCipher, error) {
	if algo == "" {
		algo = c.defaultCipher
	}
	method, ok := c.registry.CryptMethod(algo)
	if !ok {
		return "", nil, tagged(ErrUnknownAlgorithm, goerrors.New(ErrCodeUnknownAlgo, fmt.Sprintf("unknown cipher %q", algo)))
	}
	sc, err := c.registry.Provider().Cipher(method)
	if err != nil {
		return "", nil, tagged(ErrUnknownAlgorithm, goerrors.Wrap(err, ErrCodeUnknownAlgo, fmt.Sprintf("provider has no cipher %q", method)))
	}
	return method, sc, nil
}

// cipherKey returns a copy of the derived key for method, caching it per
// key fingerprint, method and KDF. Callers zero the copy after use.
func (c *Cipher) cipherKey(method string, size int) ([]byte, error) {
	secret := c.keys.Key()
	fp := GetKeyFingerprint([]byte(secret))
	id := fp + "|" + method + "|" + string(c.kdf)

	c.keyCacheMu.RLock()
	if key, exists := c.keyCache[id]; exists {
		c.keyCacheMu.RUnlock()
		return append([]byte(nil), key...), nil
	}
	c.keyCacheMu.RUnlock()

	key, err := deriveKey(c.kdf, c.kdfParams, secret, method, size)
	if err != nil {
		return nil, err
	}
	out := append([]byte(nil), key...)

	c.keyCacheMu.Lock()
	defer c.keyCacheMu.Unlock()

	// the key may have changed while deriving; never cache a stale key
	if c.keys.fingerprint() != fp {
		Zeroize(key)
		return out, nil
	}
	if c.keyFP != fp {
		c.purgeKeysLocked()
		c.keyFP = fp
	}
	c.keyCache[id] = key

	orNop(c.logger).Debug("cipher key derived",
		zap.String("method", method),
		zap.String("kdf", string(c.kdf)))
	return out, nil
}

// purgeKeysLocked zeroes and drops every cached derived key. Requires
// keyCacheMu held for writing.
func (c *Cipher) purgeKeysLocked() {
	for id, key := range c.keyCache {
		Zeroize(key)
		delete(c.keyCache, id)
	}
}

// isEmptyValue reports nil, zero scalars and empty strings, slices, maps
// and arrays. Such values encrypt to "". Structs are never empty.
func isEmptyValue(value any) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return v.IsNil()
	case reflect.Struct:
		return false
	default:
		return v.IsZero()
	}
}

// Encrypt serializes value to JSON and encrypts it with algo, returning the
// URL-safe envelope text. An empty algo selects the default cipher.
//
// Empty values return "" with no error, whatever algo is. Otherwise unknown
// algorithms fail with ErrUnknownAlgorithm. A provider failure for a supported algorithm returns
// ErrEncryptFailed.
func (c *Cipher) Encrypt(value any, algo string) (string, error) {
	if isEmptyValue(value) {
		return "", nil
	}
	method, sc, err := c.resolveCipher(algo)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return "", tagged(ErrEncryptFailed, goerrors.Wrap(err, ErrCodeSerialize, "failed to serialize value"))
	}
	defer Zeroize(payload)

	key, err := c.cipherKey(method, sc.KeySize())
	if err != nil {
		return "", tagged(ErrEncryptFailed, goerrors.Wrap(err, ErrCodeEncrypt, "failed to derive cipher key"))
	}
	defer Zeroize(key)

	iv, err := c.random.RandomBytes(sc.IVSize())
	if err != nil {
		return "", err
	}

	tagSize := 0
	if sc.AEAD() {
		tagSize = TagSize
	}
	ciphertext, tag, err := sc.Encrypt(key, iv, payload, tagSize)
	if err != nil {
		orNop(c.logger).Warn("encryption failed",
			zap.String("method", method),
			zap.Error(err))
		return "", tagged(ErrEncryptFailed, goerrors.Wrap(err, ErrCodeEncrypt, fmt.Sprintf("%s encryption failed", method)))
	}

	text, err := Envelope{IV: iv, Value: ciphertext, Tag: tag}.Encode()
	if err != nil {
		return "", tagged(ErrEncryptFailed, err)
	}
	return text, nil
}

// Decrypt opens an envelope produced by Encrypt with the same algo and
// unmarshals the value into dst. A nil dst only checks that the envelope
// opens.
//
// Empty text returns (false, nil) before algo is checked. Only an unknown
// algorithm is reported as an error. Every other failure,
// from undecodable text to a bad tag, returns (false, nil); the reason is
// logged at debug level.
func (c *Cipher) Decrypt(text, algo string, dst any) (bool, error) {
	if text == "" {
		return false, nil
	}
	method, sc, err := c.resolveCipher(algo)
	if err != nil {
		return false, err
	}

	env, err := ParseEnvelope(text)
	if err != nil {
		c.reject(method, "malformed envelope", err)
		return false, nil
	}
	if sc.AEAD() && env.Tag == nil {
		c.reject(method, "missing authentication tag", nil)
		return false, nil
	}

	key, err := c.cipherKey(method, sc.KeySize())
	if err != nil {
		c.reject(method, "key derivation failed", err)
		return false, nil
	}
	defer Zeroize(key)

	plaintext, err := sc.Decrypt(key, env.IV, env.Value, env.Tag)
	if err != nil {
		c.reject(method, "decryption failed", err)
		return false, nil
	}
	defer Zeroize(plaintext)

	if dst != nil {
		if err := json.Unmarshal(plaintext, dst); err != nil {
			c.reject(method, "payload is not valid JSON", err)
			return false, nil
		}
	}
	return true, nil
}

func (c *Cipher) reject(method, reason string, err error) {
	fields := []zap.Field{zap.String("method", method), zap.String("reason", reason)}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	orNop(c.logger).Debug("decrypt rejected", fields...)
}

// DecryptValue decrypts text into a fresh T.
//
// Example:
//
//	user, ok, err := cipherkit.DecryptValue[User](c, text, "aes-256-gcm")
func DecryptValue[T any](c *Cipher, text, algo string) (T, bool, error) {
	var out T
	ok, err := c.Decrypt(text, algo, &out)
	if err != nil || !ok {
		var zero T
		return zero, ok, err
	}
	return out, true, nil
}

// Encrypt encrypts value with the package default Cipher.
func Encrypt(value any, algo string) (string, error) {
	return packageCipher().Encrypt(value, algo)
}

// Decrypt decrypts text with the package default Cipher.
func Decrypt(text, algo string, dst any) (bool, error) {
	return packageCipher().Decrypt(text, algo, dst)
}
