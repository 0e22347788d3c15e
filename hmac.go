// hmac.go: Digest accumulators with snapshot support.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cipherkit

import (
	"encoding"
	"hash"

	goerrors "github.com/agilira/go-errors"
)

// accumulator is the running state of a hash context.
type accumulator interface {
	Write(p []byte) (int, error)
	Sum() []byte
	Clone() (accumulator, error)
}

// cloneDigest snapshots h into a fresh digest from newFn through the
// encoding.BinaryMarshaler state every standard digest exposes.
func cloneDigest(h hash.Hash, newFn func() hash.Hash) (hash.Hash, error) {
	m, ok := h.(encoding.BinaryMarshaler)
	if !ok {
		return nil, tagged(ErrCopyUnsupported, goerrors.New(ErrCodeCopy, "digest does not expose its state"))
	}
	state, err := m.MarshalBinary()
	if err != nil {
		return nil, tagged(ErrCopyUnsupported, goerrors.Wrap(err, ErrCodeCopy, "failed to snapshot digest state"))
	}

	c := newFn()
	u, ok := c.(encoding.BinaryUnmarshaler)
	if !ok {
		return nil, tagged(ErrCopyUnsupported, goerrors.New(ErrCodeCopy, "digest cannot restore its state"))
	}
	if err := u.UnmarshalBinary(state); err != nil {
		return nil, tagged(ErrCopyUnsupported, goerrors.Wrap(err, ErrCodeCopy, "failed to restore digest state"))
	}
	return c, nil
}

// digestAccumulator is a plain, unkeyed digest.
type digestAccumulator struct {
	h     hash.Hash
	newFn func() hash.Hash
}

func newDigestAccumulator(newFn func() hash.Hash) *digestAccumulator {
	return &digestAccumulator{h: newFn(), newFn: newFn}
}

func (a *digestAccumulator) Write(p []byte) (int, error) { return a.h.Write(p) }

func (a *digestAccumulator) Sum() []byte { return a.h.Sum(nil) }

func (a *digestAccumulator) Clone() (accumulator, error) {
	h, err := cloneDigest(a.h, a.newFn)
	if err != nil {
		return nil, err
	}
	return &digestAccumulator{h: h, newFn: a.newFn}, nil
}

// hmacAccumulator is HMAC (RFC 2104) composed over a provider digest:
//
//	HMAC(K, m) = H((K ^ opad) || H((K ^ ipad) || m))
//
// Only the inner digest carries message state, so snapshotting it is
// enough to copy the whole MAC.
type hmacAccumulator struct {
	inner hash.Hash
	opad  []byte
	newFn func() hash.Hash
}

func newHMACAccumulator(newFn func() hash.Hash, key []byte) *hmacAccumulator {
	inner := newFn()
	blockSize := inner.BlockSize()

	if len(key) > blockSize {
		kh := newFn()
		kh.Write(key)
		key = kh.Sum(nil)
	}

	ipad := make([]byte, blockSize)
	opad := make([]byte, blockSize)
	copy(ipad, key)
	copy(opad, key)
	for i := range ipad {
		ipad[i] ^= 0x36
		opad[i] ^= 0x5c
	}

	inner.Write(ipad)
	Zeroize(ipad)
	return &hmacAccumulator{inner: inner, opad: opad, newFn: newFn}
}

func (a *hmacAccumulator) Write(p []byte) (int, error) { return a.inner.Write(p) }

func (a *hmacAccumulator) Sum() []byte {
	outer := a.newFn()
	outer.Write(a.opad)
	outer.Write(a.inner.Sum(nil))
	return outer.Sum(nil)
}

func (a *hmacAccumulator) Clone() (accumulator, error) {
	inner, err := cloneDigest(a.inner, a.newFn)
	if err != nil {
		return nil, err
	}
	return &hmacAccumulator{
		inner: inner,
		opad:  append([]byte(nil), a.opad...),
		newFn: a.newFn,
	}, nil
}
