// provider_std.go: Standard provider over the Go standard library and x/crypto.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cipherkit

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/des"
	"crypto/md5"  // #nosec G501 -- offered for compatibility, excluded from the modern provider
	"crypto/rand"
	"crypto/sha1" // #nosec G505 -- offered for compatibility, excluded from the modern provider
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"io"
	"strings"

	goerrors "github.com/agilira/go-errors"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/sha3"
)

// Provider names registered at init.
const (
	StdProviderName    = "std"
	ModernProviderName = "modern"
)

// digestEntry maps a provider spelling to a constructor. Several spellings
// may share one constructor.
type digestEntry struct {
	names  []string
	legacy bool
	newFn  func() hash.Hash
}

type cipherEntry struct {
	names  []string
	legacy bool
	cipher SymmetricCipher
}

func blake2bFactory(size int) func() hash.Hash {
	return func() hash.Hash {
		h, _ := blake2b.New(size, nil) // unkeyed: cannot fail for valid sizes
		return h
	}
}

func blake2s256() hash.Hash {
	h, _ := blake2s.New256(nil) // unkeyed: cannot fail
	return h
}

var stdDigests = []digestEntry{
	{names: []string{"md5", "MD5"}, legacy: true, newFn: md5.New},
	{names: []string{"sha1", "SHA1"}, legacy: true, newFn: sha1.New},
	{names: []string{"sha224", "SHA224"}, newFn: sha256.New224},
	{names: []string{"sha256", "SHA256"}, newFn: sha256.New},
	{names: []string{"sha384", "SHA384"}, newFn: sha512.New384},
	{names: []string{"sha512", "SHA512"}, newFn: sha512.New},
	{names: []string{"sha512-224", "SHA512-224"}, newFn: sha512.New512_224},
	{names: []string{"sha512-256", "SHA512-256"}, newFn: sha512.New512_256},
	{names: []string{"sha3-224", "SHA3-224"}, newFn: sha3.New224},
	{names: []string{"sha3-256", "SHA3-256"}, newFn: sha3.New256},
	{names: []string{"sha3-384", "SHA3-384"}, newFn: sha3.New384},
	{names: []string{"sha3-512", "SHA3-512"}, newFn: sha3.New512},
	{names: []string{"BLAKE2b256"}, newFn: blake2bFactory(blake2b.Size256)},
	{names: []string{"BLAKE2b384"}, newFn: blake2bFactory(blake2b.Size384)},
	{names: []string{"BLAKE2b512"}, newFn: blake2bFactory(blake2b.Size)},
	{names: []string{"BLAKE2s256"}, newFn: blake2s256},
}

func aesCiphers() []cipherEntry {
	var entries []cipherEntry
	for _, bits := range []int{128, 192, 256} {
		keySize := bits / 8
		prefix := fmt.Sprintf("aes-%d", bits)
		variants := func(mode string) []string {
			name := prefix + "-" + mode
			return []string{name, strings.ToUpper(name)}
		}
		entries = append(entries,
			cipherEntry{names: variants("ecb"), legacy: true, cipher: &ecbCipher{keySize: keySize, blockSize: aes.BlockSize, newBlock: aes.NewCipher}},
			cipherEntry{names: variants("cbc"), cipher: &cbcCipher{keySize: keySize, blockSize: aes.BlockSize, newBlock: aes.NewCipher}},
			cipherEntry{names: variants("ctr"), cipher: &ctrCipher{keySize: keySize, blockSize: aes.BlockSize, newBlock: aes.NewCipher}},
			cipherEntry{names: variants("gcm"), cipher: &aeadCipher{
				keySize:   keySize,
				nonceSize: 12,
				newAEAD: func(key []byte) (cipher.AEAD, error) {
					block, err := aes.NewCipher(key)
					if err != nil {
						return nil, err
					}
					return cipher.NewGCM(block)
				},
				keystream: gcmKeystream,
			}},
		)
	}
	return entries
}

var stdCiphers = append(aesCiphers(),
	cipherEntry{names: []string{"des-ede3-cbc", "DES-EDE3-CBC"}, legacy: true, cipher: &cbcCipher{keySize: 24, blockSize: des.BlockSize, newBlock: des.NewTripleDESCipher}},
	cipherEntry{names: []string{"chacha20-poly1305", "ChaCha20-Poly1305"}, cipher: &aeadCipher{
		keySize:   chacha20poly1305.KeySize,
		nonceSize: chacha20poly1305.NonceSize,
		newAEAD:   chacha20poly1305.New,
		keystream: chachaKeystream,
	}},
	cipherEntry{names: []string{"XChaCha20-Poly1305"}, cipher: &aeadCipher{
		keySize:   chacha20poly1305.KeySize,
		nonceSize: chacha20poly1305.NonceSizeX,
		newAEAD:   chacha20poly1305.NewX,
		keystream: chachaKeystream,
	}},
)

// tableProvider serves digests and ciphers from static tables.
type tableProvider struct {
	name       string
	rand       io.Reader
	digestList []string
	cipherList []string
	digests    map[string]func() hash.Hash
	ciphers    map[string]SymmetricCipher
}

func newTableProvider(name string, includeLegacy bool) *tableProvider {
	p := &tableProvider{
		name:    name,
		rand:    rand.Reader,
		digests: make(map[string]func() hash.Hash),
		ciphers: make(map[string]SymmetricCipher),
	}
	for _, d := range stdDigests {
		if d.legacy && !includeLegacy {
			continue
		}
		p.digestList = append(p.digestList, d.names...)
		p.digests[strings.ToLower(d.names[0])] = d.newFn
	}
	for _, c := range stdCiphers {
		if c.legacy && !includeLegacy {
			continue
		}
		p.cipherList = append(p.cipherList, c.names...)
		p.ciphers[strings.ToLower(c.names[0])] = c.cipher
	}
	return p
}

// NewStdProvider returns the standard provider with every algorithm the Go
// standard library and golang.org/x/crypto offer here, legacy ones included.
func NewStdProvider() Provider {
	return newTableProvider(StdProviderName, true)
}

// NewModernProvider returns the standard provider without md5, sha1, ECB
// modes and triple DES.
func NewModernProvider() Provider {
	return newTableProvider(ModernProviderName, false)
}

func (p *tableProvider) Name() string { return p.name }

func (p *tableProvider) Rand() io.Reader { return p.rand }

func (p *tableProvider) DigestMethods() []string {
	return append([]string(nil), p.digestList...)
}

func (p *tableProvider) CipherMethods() []string {
	return append([]string(nil), p.cipherList...)
}

func (p *tableProvider) Digest(method string) (func() hash.Hash, error) {
	if fn, ok := p.digests[strings.ToLower(method)]; ok {
		return fn, nil
	}
	return nil, goerrors.New("UNKNOWN_DIGEST", fmt.Sprintf("digest %q not offered by provider %s", method, p.name))
}

func (p *tableProvider) Cipher(method string) (SymmetricCipher, error) {
	if c, ok := p.ciphers[strings.ToLower(method)]; ok {
		return c, nil
	}
	return nil, goerrors.New("UNKNOWN_CIPHER", fmt.Sprintf("cipher %q not offered by provider %s", method, p.name))
}
