// registry.go: Case-insensitive digest and cipher name resolution.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cipherkit

import (
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Registry normalizes the algorithm names of one Provider. The method maps
// are built once, on first use, and are read-only afterwards.
type Registry struct {
	provider Provider
	logger   *zap.Logger

	digestOnce sync.Once
	digests    map[string]string
	cipherOnce sync.Once
	ciphers    map[string]string
}

// NewRegistry creates a registry over p. A nil logger uses the package logger.
func NewRegistry(p Provider, logger *zap.Logger) *Registry {
	return &Registry{provider: p, logger: logger}
}

var (
	defaultRegistryOnce sync.Once
	defaultRegistry     *Registry
)

// DefaultRegistry is the registry over the standard provider.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		p, _ := LookupProvider(StdProviderName)
		defaultRegistry = NewRegistry(p, nil)
	})
	return defaultRegistry
}

// Provider returns the provider behind the registry.
func (r *Registry) Provider() Provider {
	return r.provider
}

// formatMethods collapses case variants. An all-lowercase provider name maps
// to itself; a mixed-case name with no lowercase twin is kept under its
// lowercase form.
func formatMethods(methods []string) map[string]string {
	present := make(map[string]bool, len(methods))
	for _, m := range methods {
		present[m] = true
	}

	out := make(map[string]string, len(methods))
	for _, m := range methods {
		lower := strings.ToLower(m)
		switch {
		case lower == m:
			out[lower] = lower
		case !present[lower]:
			out[lower] = m
		}
	}
	return out
}

func (r *Registry) digestMap() map[string]string {
	r.digestOnce.Do(func() {
		r.digests = formatMethods(r.provider.DigestMethods())
		orNop(r.logger).Debug("digest methods loaded",
			zap.String("provider", r.provider.Name()),
			zap.Int("count", len(r.digests)))
	})
	return r.digests
}

func (r *Registry) cipherMap() map[string]string {
	r.cipherOnce.Do(func() {
		r.ciphers = formatMethods(r.provider.CipherMethods())
		orNop(r.logger).Debug("cipher methods loaded",
			zap.String("provider", r.provider.Name()),
			zap.Int("count", len(r.ciphers)))
	})
	return r.ciphers
}

func copyMethods(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func lookupMethod(m map[string]string, algo string) (string, bool) {
	if algo == "" {
		return "", false
	}
	method, ok := m[strings.ToLower(algo)]
	return method, ok
}

// DigestMethods returns every supported digest as lowercase name to
// canonical provider name.
func (r *Registry) DigestMethods() map[string]string {
	return copyMethods(r.digestMap())
}

// DigestMethod resolves algo case-insensitively to the provider's name.
func (r *Registry) DigestMethod(algo string) (string, bool) {
	return lookupMethod(r.digestMap(), algo)
}

// CryptMethods returns every supported cipher as lowercase name to
// canonical provider name.
func (r *Registry) CryptMethods() map[string]string {
	return copyMethods(r.cipherMap())
}

// CryptMethod resolves algo case-insensitively to the provider's name.
func (r *Registry) CryptMethod(algo string) (string, bool) {
	return lookupMethod(r.cipherMap(), algo)
}

// SupportedHashes lists the canonical digest names, sorted.
func (r *Registry) SupportedHashes() []string {
	m := r.digestMap()
	names := make([]string, 0, len(m))
	for _, canonical := range m {
		names = append(names, canonical)
	}
	sort.Strings(names)
	return names
}

// SupportsHash reports whether algo names a supported digest.
func (r *Registry) SupportsHash(algo string) bool {
	_, ok := r.DigestMethod(algo)
	return ok
}

// DigestMethods returns the digest map of the default registry.
func DigestMethods() map[string]string { return DefaultRegistry().DigestMethods() }

// DigestMethod resolves a digest name with the default registry.
func DigestMethod(algo string) (string, bool) { return DefaultRegistry().DigestMethod(algo) }

// CryptMethods returns the cipher map of the default registry.
func CryptMethods() map[string]string { return DefaultRegistry().CryptMethods() }

// CryptMethod resolves a cipher name with the default registry.
func CryptMethod(algo string) (string, bool) { return DefaultRegistry().CryptMethod(algo) }

// SupportedHashes lists the digests of the default registry.
func SupportedHashes() []string { return DefaultRegistry().SupportedHashes() }

// SupportsHash reports digest support in the default registry.
func SupportsHash(algo string) bool { return DefaultRegistry().SupportsHash(algo) }
