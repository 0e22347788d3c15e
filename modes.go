// modes.go: Raw symmetric cipher modes used by the standard provider.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cipherkit

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"

	goerrors "github.com/agilira/go-errors"
	"golang.org/x/crypto/chacha20"
)

// minTagSize is the shortest AEAD tag accepted on decryption.
const minTagSize = 8

type blockFactory func(key []byte) (cipher.Block, error)

func checkSizes(key []byte, keySize int, iv []byte, ivSize int) error {
	if len(key) != keySize {
		return goerrors.New("INVALID_KEY_SIZE", "key size does not match cipher")
	}
	if len(iv) != ivSize {
		return goerrors.New("INVALID_IV_SIZE", "iv size does not match cipher")
	}
	return nil
}

// pkcs7Pad always adds padding, a full block when len(data) is aligned.
func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	out := make([]byte, len(data)+n)
	copy(out, data)
	copy(out[len(data):], bytes.Repeat([]byte{byte(n)}, n))
	return out
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, goerrors.New("INVALID_PADDING", "invalid padded length")
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, goerrors.New("INVALID_PADDING", "invalid padding")
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, goerrors.New("INVALID_PADDING", "invalid padding")
		}
	}
	return data[:len(data)-n], nil
}

// cbcCipher is a block cipher in CBC mode with PKCS#7 padding.
type cbcCipher struct {
	keySize   int
	blockSize int
	newBlock  blockFactory
}

func (c *cbcCipher) KeySize() int { return c.keySize }
func (c *cbcCipher) IVSize() int  { return c.blockSize }
func (c *cbcCipher) AEAD() bool   { return false }

func (c *cbcCipher) Encrypt(key, iv, plaintext []byte, _ int) ([]byte, []byte, error) {
	if err := checkSizes(key, c.keySize, iv, c.blockSize); err != nil {
		return nil, nil, err
	}
	block, err := c.newBlock(key)
	if err != nil {
		return nil, nil, goerrors.Wrap(err, "CIPHER_CREATION_FAILED", "failed to create block cipher")
	}
	out := pkcs7Pad(plaintext, c.blockSize)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, out)
	return out, nil, nil
}

func (c *cbcCipher) Decrypt(key, iv, ciphertext, _ []byte) ([]byte, error) {
	if err := checkSizes(key, c.keySize, iv, c.blockSize); err != nil {
		return nil, err
	}
	if len(ciphertext) == 0 || len(ciphertext)%c.blockSize != 0 {
		return nil, goerrors.New("INVALID_CIPHERTEXT", "ciphertext is not a whole number of blocks")
	}
	block, err := c.newBlock(key)
	if err != nil {
		return nil, goerrors.Wrap(err, "CIPHER_CREATION_FAILED", "failed to create block cipher")
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, ciphertext)
	return pkcs7Unpad(out, c.blockSize)
}

// ecbCipher encrypts each block independently. It needs no IV.
type ecbCipher struct {
	keySize   int
	blockSize int
	newBlock  blockFactory
}

func (c *ecbCipher) KeySize() int { return c.keySize }
func (c *ecbCipher) IVSize() int  { return 0 }
func (c *ecbCipher) AEAD() bool   { return false }

func (c *ecbCipher) Encrypt(key, iv, plaintext []byte, _ int) ([]byte, []byte, error) {
	if err := checkSizes(key, c.keySize, iv, 0); err != nil {
		return nil, nil, err
	}
	block, err := c.newBlock(key)
	if err != nil {
		return nil, nil, goerrors.Wrap(err, "CIPHER_CREATION_FAILED", "failed to create block cipher")
	}
	out := pkcs7Pad(plaintext, c.blockSize)
	for i := 0; i < len(out); i += c.blockSize {
		block.Encrypt(out[i:i+c.blockSize], out[i:i+c.blockSize])
	}
	return out, nil, nil
}

func (c *ecbCipher) Decrypt(key, iv, ciphertext, _ []byte) ([]byte, error) {
	if err := checkSizes(key, c.keySize, iv, 0); err != nil {
		return nil, err
	}
	if len(ciphertext) == 0 || len(ciphertext)%c.blockSize != 0 {
		return nil, goerrors.New("INVALID_CIPHERTEXT", "ciphertext is not a whole number of blocks")
	}
	block, err := c.newBlock(key)
	if err != nil {
		return nil, goerrors.Wrap(err, "CIPHER_CREATION_FAILED", "failed to create block cipher")
	}
	out := make([]byte, len(ciphertext))
	for i := 0; i < len(out); i += c.blockSize {
		block.Decrypt(out[i:i+c.blockSize], ciphertext[i:i+c.blockSize])
	}
	return pkcs7Unpad(out, c.blockSize)
}

// ctrCipher is a block cipher in CTR mode; no padding.
type ctrCipher struct {
	keySize   int
	blockSize int
	newBlock  blockFactory
}

func (c *ctrCipher) KeySize() int { return c.keySize }
func (c *ctrCipher) IVSize() int  { return c.blockSize }
func (c *ctrCipher) AEAD() bool   { return false }

func (c *ctrCipher) Encrypt(key, iv, plaintext []byte, _ int) ([]byte, []byte, error) {
	out, err := c.xor(key, iv, plaintext)
	return out, nil, err
}

func (c *ctrCipher) Decrypt(key, iv, ciphertext, _ []byte) ([]byte, error) {
	return c.xor(key, iv, ciphertext)
}

func (c *ctrCipher) xor(key, iv, in []byte) ([]byte, error) {
	if err := checkSizes(key, c.keySize, iv, c.blockSize); err != nil {
		return nil, err
	}
	block, err := c.newBlock(key)
	if err != nil {
		return nil, goerrors.Wrap(err, "CIPHER_CREATION_FAILED", "failed to create block cipher")
	}
	out := make([]byte, len(in))
	cipher.NewCTR(block, iv).XORKeyStream(out, in)
	return out, nil
}

// aeadCipher wraps an AEAD construction and supports truncated tags.
//
// A truncated tag cannot be passed to cipher.AEAD.Open, so the plaintext is
// recovered from the construction's keystream, resealed, and the prefix of
// the recomputed tag is compared in constant time.
type aeadCipher struct {
	keySize   int
	nonceSize int
	newAEAD   func(key []byte) (cipher.AEAD, error)
	keystream func(key, nonce []byte) (cipher.Stream, error)
}

func (c *aeadCipher) KeySize() int { return c.keySize }
func (c *aeadCipher) IVSize() int  { return c.nonceSize }
func (c *aeadCipher) AEAD() bool   { return true }

func (c *aeadCipher) Encrypt(key, iv, plaintext []byte, tagSize int) ([]byte, []byte, error) {
	if err := checkSizes(key, c.keySize, iv, c.nonceSize); err != nil {
		return nil, nil, err
	}
	aead, err := c.newAEAD(key)
	if err != nil {
		return nil, nil, goerrors.Wrap(err, "AEAD_CREATION_FAILED", "failed to create AEAD")
	}
	if tagSize <= 0 || tagSize > aead.Overhead() {
		tagSize = aead.Overhead()
	}
	if tagSize < minTagSize {
		return nil, nil, goerrors.New("INVALID_TAG_SIZE", "tag size below minimum")
	}

	sealed := aead.Seal(nil, iv, plaintext, nil) // #nosec G407 -- iv is drawn from the random source
	return sealed[:len(plaintext)], sealed[len(plaintext) : len(plaintext)+tagSize], nil
}

func (c *aeadCipher) Decrypt(key, iv, ciphertext, tag []byte) ([]byte, error) {
	if err := checkSizes(key, c.keySize, iv, c.nonceSize); err != nil {
		return nil, err
	}
	aead, err := c.newAEAD(key)
	if err != nil {
		return nil, goerrors.Wrap(err, "AEAD_CREATION_FAILED", "failed to create AEAD")
	}
	if len(tag) < minTagSize || len(tag) > aead.Overhead() {
		return nil, goerrors.New("INVALID_TAG_SIZE", "tag size out of range")
	}

	if len(tag) == aead.Overhead() {
		sealed := make([]byte, 0, len(ciphertext)+len(tag))
		sealed = append(append(sealed, ciphertext...), tag...)
		plaintext, err := aead.Open(nil, iv, sealed, nil)
		if err != nil {
			return nil, goerrors.Wrap(err, "AUTH_FAILED", "message authentication failed")
		}
		return plaintext, nil
	}

	stream, err := c.keystream(key, iv)
	if err != nil {
		return nil, goerrors.Wrap(err, "KEYSTREAM_FAILED", "failed to create keystream")
	}
	plaintext := make([]byte, len(ciphertext))
	stream.XORKeyStream(plaintext, ciphertext)

	resealed := aead.Seal(nil, iv, plaintext, nil) // #nosec G407 -- same nonce and plaintext as the sender
	if subtle.ConstantTimeCompare(resealed[len(plaintext):len(plaintext)+len(tag)], tag) != 1 {
		Zeroize(plaintext)
		return nil, goerrors.New("AUTH_FAILED", "message authentication failed")
	}
	return plaintext, nil
}

// gcmKeystream yields the AES-GCM data keystream for a 12-byte nonce: CTR
// mode starting at counter block nonce||00000002.
func gcmKeystream(key, nonce []byte) (cipher.Stream, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	counter := make([]byte, aes.BlockSize)
	copy(counter, nonce)
	counter[aes.BlockSize-1] = 2
	return cipher.NewCTR(block, counter), nil
}

// chachaKeystream yields the (X)ChaCha20-Poly1305 data keystream, which
// starts at block counter 1.
func chachaKeystream(key, nonce []byte) (cipher.Stream, error) {
	c, err := chacha20.NewUnauthenticatedCipher(key, nonce)
	if err != nil {
		return nil, err
	}
	c.SetCounter(1)
	return c, nil
}
