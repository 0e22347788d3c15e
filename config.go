// config.go: TOML configuration with environment overrides.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cipherkit

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	goerrors "github.com/agilira/go-errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Environment variables that override file values.
const (
	EnvKey      = "CIPHERKIT_KEY"
	EnvCipher   = "CIPHERKIT_CIPHER"
	EnvDigest   = "CIPHERKIT_DIGEST"
	EnvKDF      = "CIPHERKIT_KDF"
	EnvProvider = "CIPHERKIT_PROVIDER"
	EnvLogLevel = "CIPHERKIT_LOG_LEVEL"
)

// Config holds the library settings.
//
//	cipher_key     = "..."
//	default_cipher = "aes-256-gcm"
//	default_digest = "sha256"
//	kdf            = "argon2id"
//	provider       = "modern"
//	log_level      = "info"
//
//	[kdf_params]
//	time    = 1
//	memory  = 32
//	threads = 2
type Config struct {
	CipherKey     string    `toml:"cipher_key"`
	DefaultCipher string    `toml:"default_cipher"`
	DefaultDigest string    `toml:"default_digest"`
	KDF           string    `toml:"kdf"`
	KDFParams     KDFParams `toml:"kdf_params"`
	Provider      string    `toml:"provider"`
	LogLevel      string    `toml:"log_level"`
}

// DefaultConfig returns the built-in settings. CipherKey is left empty so
// the key store falls back to FallbackKey.
func DefaultConfig() *Config {
	return &Config{
		DefaultCipher: DefaultCipher,
		DefaultDigest: DefaultDigest,
		KDF:           string(KDFHKDF),
		Provider:      StdProviderName,
		LogLevel:      "info",
	}
}

// LoadConfig reads path (if not empty) over the defaults, applies the
// environment overrides and validates the result. Unknown keys in the file
// are rejected.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, tagged(ErrInvalidConfig, goerrors.Wrap(err, ErrCodeConfig, fmt.Sprintf("failed to decode %s", path)))
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, tagged(ErrInvalidConfig, goerrors.New(ErrCodeConfig, fmt.Sprintf("unknown keys in %s: %s", path, strings.Join(keys, ", "))))
		}
	}
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvOverrides replaces fields with the CIPHERKIT_* variables that are
// set and non-empty.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv(EnvKey); v != "" {
		c.CipherKey = v
	}
	if v := os.Getenv(EnvCipher); v != "" {
		c.DefaultCipher = v
	}
	if v := os.Getenv(EnvDigest); v != "" {
		c.DefaultDigest = v
	}
	if v := os.Getenv(EnvKDF); v != "" {
		c.KDF = v
	}
	if v := os.Getenv(EnvProvider); v != "" {
		c.Provider = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
}

// ValidationError describes one invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every invalid field found by Validate.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks every field against the registered providers and known
// KDFs and log levels.
func (c *Config) Validate() error {
	var errs ValidationErrors

	if _, err := ParseKDF(c.KDF); err != nil {
		errs = append(errs, ValidationError{Field: "kdf", Message: fmt.Sprintf("invalid kdf %q, must be one of: hkdf, pbkdf2, argon2id", c.KDF)})
	}
	if c.KDFParams.Memory > MaxKDFMemory {
		errs = append(errs, ValidationError{Field: "kdf_params.memory", Message: fmt.Sprintf("memory %d MB exceeds the maximum of %d MB", c.KDFParams.Memory, MaxKDFMemory)})
	}
	if _, err := parseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, ValidationError{Field: "log_level", Message: err.Error()})
	}

	p, err := LookupProvider(c.Provider)
	if err != nil {
		errs = append(errs, ValidationError{Field: "provider", Message: fmt.Sprintf("provider %q is not registered", c.Provider)})
	} else {
		reg := NewRegistry(p, nil)
		if c.DefaultCipher != "" {
			if _, ok := reg.CryptMethod(c.DefaultCipher); !ok {
				errs = append(errs, ValidationError{Field: "default_cipher", Message: fmt.Sprintf("cipher %q is not offered by provider %q", c.DefaultCipher, p.Name())})
			}
		}
		if c.DefaultDigest != "" && !reg.SupportsHash(c.DefaultDigest) {
			errs = append(errs, ValidationError{Field: "default_digest", Message: fmt.Sprintf("digest %q is not offered by provider %q", c.DefaultDigest, p.Name())})
		}
	}

	if len(errs) > 0 {
		return tagged(ErrInvalidConfig, goerrors.New(ErrCodeConfig, "configuration is invalid: "+errs.Error()))
	}
	return nil
}

// Lookup returns the value of a configuration key by its TOML name, or def
// when the key is unknown or empty. It satisfies LookupFunc.
func (c *Config) Lookup(key, def string) string {
	var v string
	switch key {
	case ConfigKeyName:
		v = c.CipherKey
	case "default_cipher":
		v = c.DefaultCipher
	case "default_digest":
		v = c.DefaultDigest
	case "kdf":
		v = c.KDF
	case "provider":
		v = c.Provider
	case "log_level":
		v = c.LogLevel
	}
	if v == "" {
		return def
	}
	return v
}

func parseLogLevel(s string) (zapcore.Level, error) {
	if strings.TrimSpace(s) == "" {
		return zapcore.InfoLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.Set(s); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid level %q: %w", s, err)
	}
	return lvl, nil
}

// NewLogger builds a JSON production logger on stderr at the configured
// level.
func (c *Config) NewLogger() (*zap.Logger, error) {
	lvl, err := parseLogLevel(c.LogLevel)
	if err != nil {
		return nil, tagged(ErrInvalidConfig, goerrors.Wrap(err, ErrCodeConfig, "invalid log level"))
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.Encoding = "json"
	zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// NewCipherFromConfig wires a Cipher from cfg: provider, a key store that
// defaults from cfg, KDF, default algorithms and logger. A nil logger builds
// one with cfg.NewLogger.
func NewCipherFromConfig(cfg *Config, logger *zap.Logger) (*Cipher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		var err error
		if logger, err = cfg.NewLogger(); err != nil {
			return nil, err
		}
	}

	p, err := LookupProvider(cfg.Provider)
	if err != nil {
		return nil, err
	}
	kdf, err := ParseKDF(cfg.KDF)
	if err != nil {
		return nil, err
	}

	ks := NewKeyStore(cfg.Lookup)
	ks.SetLogger(logger)

	params := cfg.KDFParams
	return NewCipher(
		WithLogger(logger),
		WithProvider(p),
		WithKeyStore(ks),
		WithKDF(kdf, &params),
		WithDefaultAlgorithm(cfg.DefaultCipher),
		WithDefaultDigest(cfg.DefaultDigest),
	), nil
}
