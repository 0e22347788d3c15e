// provider_test.go: Crypto provider tests
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cipherkit

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/chacha20poly1305"
)

func randBytes(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	_, err := rand.Read(b)
	require.NoError(t, err)
	return b
}

func TestStdProviderCiphersRoundTrip(t *testing.T) {
	p := NewStdProvider()
	plaintexts := [][]byte{
		[]byte("x"),
		[]byte("exactly sixteen!"),
		bytes.Repeat([]byte("longer payload "), 20),
	}

	for _, name := range p.CipherMethods() {
		t.Run(name, func(t *testing.T) {
			sc, err := p.Cipher(name)
			require.NoError(t, err)
			key := randBytes(t, sc.KeySize())
			iv := randBytes(t, sc.IVSize())

			for _, pt := range plaintexts {
				ct, tag, err := sc.Encrypt(key, iv, pt, minTagSize)
				require.NoError(t, err)
				if sc.AEAD() {
					assert.Len(t, tag, minTagSize)
				} else {
					assert.Nil(t, tag)
				}
				if len(pt) > 1 {
					assert.NotEqual(t, pt, ct)
				}

				got, err := sc.Decrypt(key, iv, ct, tag)
				require.NoError(t, err)
				assert.Equal(t, pt, got)
			}
		})
	}
}

func TestCipherRejectsBadSizes(t *testing.T) {
	sc, err := NewStdProvider().Cipher("aes-128-cbc")
	require.NoError(t, err)

	_, _, err = sc.Encrypt(make([]byte, 15), make([]byte, 16), []byte("x"), 0)
	assert.Error(t, err)
	_, _, err = sc.Encrypt(make([]byte, 16), make([]byte, 8), []byte("x"), 0)
	assert.Error(t, err)

	ecb, err := NewStdProvider().Cipher("aes-256-ecb")
	require.NoError(t, err)
	assert.Equal(t, 0, ecb.IVSize())
}

func TestCBCRejectsBadPadding(t *testing.T) {
	sc, err := NewStdProvider().Cipher("aes-128-cbc")
	require.NoError(t, err)
	key, iv := randBytes(t, 16), randBytes(t, 16)

	ct, _, err := sc.Encrypt(key, iv, []byte("padded payload"), 0)
	require.NoError(t, err)

	_, err = sc.Decrypt(key, iv, ct[:len(ct)-1], nil)
	assert.Error(t, err, "unaligned ciphertext")

	// A wrong key usually breaks the padding; when it does not, the
	// plaintext still differs.
	got, err := sc.Decrypt(randBytes(t, 16), iv, ct, nil)
	if err == nil {
		assert.NotEqual(t, []byte("padded payload"), got)
	}
}

func TestPKCS7(t *testing.T) {
	padded := pkcs7Pad([]byte("abc"), 8)
	assert.Equal(t, []byte{'a', 'b', 'c', 5, 5, 5, 5, 5}, padded)

	full := pkcs7Pad(make([]byte, 8), 8)
	assert.Len(t, full, 16)

	out, err := pkcs7Unpad(padded, 8)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), out)

	for _, bad := range [][]byte{
		{},
		{1, 2, 3},
		{'a', 'b', 'c', 'd', 'e', 'f', 'g', 0},
		{'a', 'b', 'c', 'd', 'e', 'f', 'g', 9},
		{'a', 'b', 'c', 'd', 'e', 'f', 2, 3},
	} {
		_, err := pkcs7Unpad(bad, 8)
		assert.Error(t, err, "%v", bad)
	}
}

func TestGCMTruncatedTagMatchesStdlib(t *testing.T) {
	sc, err := NewStdProvider().Cipher("aes-256-gcm")
	require.NoError(t, err)
	key, nonce := randBytes(t, 32), randBytes(t, 12)
	pt := []byte("the quick brown fox")

	ct, tag, err := sc.Encrypt(key, nonce, pt, 8)
	require.NoError(t, err)

	block, err := aes.NewCipher(key)
	require.NoError(t, err)
	gcm, err := cipher.NewGCM(block)
	require.NoError(t, err)
	sealed := gcm.Seal(nil, nonce, pt, nil)

	assert.Equal(t, sealed[:len(pt)], ct)
	assert.Equal(t, sealed[len(pt):len(pt)+8], tag)

	// keystream recovery agrees with the AEAD
	stream, err := gcmKeystream(key, nonce)
	require.NoError(t, err)
	recovered := make([]byte, len(ct))
	stream.XORKeyStream(recovered, ct)
	assert.Equal(t, pt, recovered)
}

func TestChaChaKeystreamMatchesAEAD(t *testing.T) {
	for _, tc := range []struct {
		name      string
		nonceSize int
		newAEAD   func([]byte) (cipher.AEAD, error)
	}{
		{"chacha20-poly1305", chacha20poly1305.NonceSize, chacha20poly1305.New},
		{"xchacha20-poly1305", chacha20poly1305.NonceSizeX, chacha20poly1305.NewX},
	} {
		t.Run(tc.name, func(t *testing.T) {
			key, nonce := randBytes(t, chacha20poly1305.KeySize), randBytes(t, tc.nonceSize)
			pt := bytes.Repeat([]byte("chacha "), 30)

			aead, err := tc.newAEAD(key)
			require.NoError(t, err)
			sealed := aead.Seal(nil, nonce, pt, nil)

			stream, err := chachaKeystream(key, nonce)
			require.NoError(t, err)
			recovered := make([]byte, len(pt))
			stream.XORKeyStream(recovered, sealed[:len(pt)])
			assert.Equal(t, pt, recovered)
		})
	}
}

func TestAEADTagVerification(t *testing.T) {
	for _, name := range []string{"aes-128-gcm", "chacha20-poly1305", "XChaCha20-Poly1305"} {
		t.Run(name, func(t *testing.T) {
			sc, err := NewStdProvider().Cipher(name)
			require.NoError(t, err)
			key, iv := randBytes(t, sc.KeySize()), randBytes(t, sc.IVSize())
			pt := []byte("authenticated payload")

			ct, tag, err := sc.Encrypt(key, iv, pt, 8)
			require.NoError(t, err)

			badTag := append([]byte(nil), tag...)
			badTag[0] ^= 0x01
			_, err = sc.Decrypt(key, iv, ct, badTag)
			assert.Error(t, err, "flipped tag bit")

			badCT := append([]byte(nil), ct...)
			badCT[len(badCT)-1] ^= 0x80
			_, err = sc.Decrypt(key, iv, badCT, tag)
			assert.Error(t, err, "flipped ciphertext bit")

			_, err = sc.Decrypt(key, iv, ct, tag[:7])
			assert.Error(t, err, "tag below minimum")

			_, err = sc.Decrypt(key, iv, ct, nil)
			assert.Error(t, err, "missing tag")

			// full-length tags go through the regular AEAD open
			ctFull, fullTag, err := sc.Encrypt(key, iv, pt, 16)
			require.NoError(t, err)
			require.Len(t, fullTag, 16)
			got, err := sc.Decrypt(key, iv, ctFull, fullTag)
			require.NoError(t, err)
			assert.Equal(t, pt, got)

			_, _, err = sc.Encrypt(key, iv, pt, 4)
			assert.Error(t, err, "tag size below minimum on encrypt")
		})
	}
}

func TestProviderSet(t *testing.T) {
	assert.Contains(t, Providers(), StdProviderName)
	assert.Contains(t, Providers(), ModernProviderName)

	p, err := LookupProvider("")
	require.NoError(t, err)
	assert.Equal(t, StdProviderName, p.Name())

	_, err = LookupProvider("pkcs11")
	assert.ErrorIs(t, err, ErrProviderNotFound)

	assert.Error(t, RegisterProvider("", NewStdProvider()))
	assert.Error(t, RegisterProvider("x", nil))

	require.NoError(t, RegisterProvider("test-alias", NewModernProvider()))
	p, err = LookupProvider("test-alias")
	require.NoError(t, err)
	assert.Equal(t, ModernProviderName, p.Name())
}

func TestProviderUnknownMethods(t *testing.T) {
	p := NewModernProvider()
	_, err := p.Digest("md5")
	assert.Error(t, err)
	_, err = p.Cipher("des-ede3-cbc")
	assert.Error(t, err)

	fn, err := NewStdProvider().Digest("SHA3-256")
	require.NoError(t, err)
	assert.Equal(t, 32, fn().Size())
}
