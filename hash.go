// hash.go: Incremental digest and HMAC contexts.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cipherkit

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	goerrors "github.com/agilira/go-errors"
)

// hashState is either hashOpen or hashConsumed.
type hashState interface {
	isHashState()
}

type hashOpen struct {
	acc accumulator
}

type hashConsumed struct {
	digest []byte
}

func (hashOpen) isHashState()     {}
func (hashConsumed) isHashState() {}

// Hash is an incremental digest or HMAC context. It is finalized exactly
// once by Hex, Raw or Equal; every later use fails with ErrAlreadyConsumed.
// A Hash is not safe for concurrent use.
type Hash struct {
	algo  string
	keyed bool
	state hashState
}

// NewHash starts an unkeyed digest with the default registry. An empty
// algo selects DefaultDigest.
func NewHash(algo string) (*Hash, error) {
	return newHash(DefaultRegistry(), DefaultKeyStore, algo, false, nil)
}

// NewHMAC starts an HMAC with the default registry. An empty key uses the
// key held by DefaultKeyStore.
//
// Example:
//
//	h, err := cipherkit.NewHMAC("sha256", []byte("secret"))
//	if err != nil {
//		return err
//	}
//	if _, err := h.Update("header.", payload); err != nil {
//		return err
//	}
//	mac, err := h.Hex(false)
func NewHMAC(algo string, key []byte) (*Hash, error) {
	return newHash(DefaultRegistry(), DefaultKeyStore, algo, true, key)
}

// NewHash starts an unkeyed digest with the cipher's registry.
func (c *Cipher) NewHash(algo string) (*Hash, error) {
	if algo == "" {
		algo = c.defaultDigest
	}
	return newHash(c.registry, c.keys, algo, false, nil)
}

// NewHMAC starts an HMAC with the cipher's registry and key store.
func (c *Cipher) NewHMAC(algo string, key []byte) (*Hash, error) {
	if algo == "" {
		algo = c.defaultDigest
	}
	return newHash(c.registry, c.keys, algo, true, key)
}

func newHash(reg *Registry, ks *KeyStore, algo string, keyed bool, key []byte) (*Hash, error) {
	if algo == "" {
		algo = DefaultDigest
	}
	method, ok := reg.DigestMethod(algo)
	if !ok {
		return nil, tagged(ErrUnsupportedAlgorithm, goerrors.New(ErrCodeUnsupportedAlgo, fmt.Sprintf("digest %q is not supported", algo)))
	}
	newFn, err := reg.Provider().Digest(method)
	if err != nil {
		return nil, tagged(ErrUnsupportedAlgorithm, goerrors.Wrap(err, ErrCodeUnsupportedAlgo, fmt.Sprintf("provider has no digest %q", method)))
	}

	h := &Hash{algo: method, keyed: keyed}
	if !keyed {
		h.state = hashOpen{acc: newDigestAccumulator(newFn)}
		return h, nil
	}

	if len(key) == 0 {
		key = []byte(ks.Key())
		defer Zeroize(key)
	}
	h.state = hashOpen{acc: newHMACAccumulator(newFn, key)}
	return h, nil
}

// Algorithm returns the canonical digest name.
func (h *Hash) Algorithm() string { return h.algo }

// Keyed reports whether h is an HMAC.
func (h *Hash) Keyed() bool { return h.keyed }

// Consumed reports whether h has been finalized.
func (h *Hash) Consumed() bool {
	_, done := h.state.(hashConsumed)
	return done
}

func (h *Hash) open() (accumulator, error) {
	switch s := h.state.(type) {
	case hashOpen:
		return s.acc, nil
	default:
		return nil, tagged(ErrAlreadyConsumed, goerrors.New(ErrCodeConsumed, fmt.Sprintf("%s context already finalized", h.algo)))
	}
}

// flattenChunks collects chunks in order, descending into groups.
func flattenChunks(chunks []any, out [][]byte) ([][]byte, error) {
	for _, chunk := range chunks {
		switch v := chunk.(type) {
		case []byte:
			out = append(out, v)
		case string:
			out = append(out, []byte(v))
		case []string:
			for _, s := range v {
				out = append(out, []byte(s))
			}
		case [][]byte:
			out = append(out, v...)
		case []any:
			var err error
			if out, err = flattenChunks(v, out); err != nil {
				return nil, err
			}
		default:
			return nil, tagged(ErrUpdateFailed, goerrors.New(ErrCodeUpdate, fmt.Sprintf("unsupported chunk type %T", chunk)))
		}
	}
	return out, nil
}

// Update feeds chunks in order and returns h for chaining. Accepted chunk
// types are []byte, string, []string, [][]byte and []any holding any of
// these. Chunk types are checked before anything is written.
func (h *Hash) Update(chunks ...any) (*Hash, error) {
	acc, err := h.open()
	if err != nil {
		return nil, err
	}
	parts, err := flattenChunks(chunks, nil)
	if err != nil {
		return nil, err
	}
	for _, p := range parts {
		if _, err := acc.Write(p); err != nil {
			return nil, tagged(ErrUpdateFailed, goerrors.Wrap(err, ErrCodeUpdate, "digest rejected input"))
		}
	}
	return h, nil
}

// Write implements io.Writer.
func (h *Hash) Write(p []byte) (int, error) {
	acc, err := h.open()
	if err != nil {
		return 0, err
	}
	n, err := acc.Write(p)
	if err != nil {
		return n, tagged(ErrUpdateFailed, goerrors.Wrap(err, ErrCodeUpdate, "digest rejected input"))
	}
	return n, nil
}

// ctxReader stops reading once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// writerOnly hides any ReaderFrom so io.CopyBuffer uses the pooled buffer.
type writerOnly struct {
	w io.Writer
}

func (w writerOnly) Write(p []byte) (int, error) { return w.w.Write(p) }

// readerOnly hides any WriterTo for the same reason.
type readerOnly struct {
	r io.Reader
}

func (r readerOnly) Read(p []byte) (int, error) { return r.r.Read(p) }

// UpdateStream feeds up to length bytes from r, or everything until EOF
// when length is negative.
func (h *Hash) UpdateStream(r io.Reader, length int64) (*Hash, error) {
	acc, err := h.open()
	if err != nil {
		return nil, err
	}
	if length >= 0 {
		r = io.LimitReader(r, length)
	}

	buf := getStreamBuffer()
	defer putStreamBuffer(buf)

	if _, err := io.CopyBuffer(writerOnly{acc}, readerOnly{r}, *buf); err != nil {
		return nil, tagged(ErrUpdateFailed, goerrors.Wrap(err, ErrCodeUpdate, "failed to read stream"))
	}
	return h, nil
}

// UpdateFile feeds the contents of the file at path. Cancellation of ctx
// is checked between reads.
func (h *Hash) UpdateFile(ctx context.Context, path string) (*Hash, error) {
	if _, err := h.open(); err != nil {
		return nil, err
	}
	f, err := os.Open(path) // #nosec G304 -- hashing caller-chosen files is the purpose
	if err != nil {
		return nil, tagged(ErrUpdateFailed, goerrors.Wrap(err, ErrCodeUpdate, fmt.Sprintf("failed to open %s", path)))
	}
	defer f.Close()
	return h.UpdateStream(ctxReader{ctx: ctx, r: f}, -1)
}

// UpdateFS feeds the contents of name in fsys.
func (h *Hash) UpdateFS(ctx context.Context, fsys fs.FS, name string) (*Hash, error) {
	if _, err := h.open(); err != nil {
		return nil, err
	}
	f, err := fsys.Open(name)
	if err != nil {
		return nil, tagged(ErrUpdateFailed, goerrors.Wrap(err, ErrCodeUpdate, fmt.Sprintf("failed to open %s", name)))
	}
	defer f.Close()
	return h.UpdateStream(ctxReader{ctx: ctx, r: f}, -1)
}

// Copy returns an independent open context with the same state.
func (h *Hash) Copy() (*Hash, error) {
	acc, err := h.open()
	if err != nil {
		return nil, err
	}
	clone, err := acc.Clone()
	if err != nil {
		return nil, err
	}
	return &Hash{algo: h.algo, keyed: h.keyed, state: hashOpen{acc: clone}}, nil
}

// finalize computes the digest and consumes h.
func (h *Hash) finalize() ([]byte, error) {
	acc, err := h.open()
	if err != nil {
		return nil, err
	}
	digest := acc.Sum()
	h.state = hashConsumed{digest: digest}
	return digest, nil
}

// Raw finalizes h and returns the binary digest.
func (h *Hash) Raw() ([]byte, error) {
	digest, err := h.finalize()
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), digest...), nil
}

// Hex finalizes h and returns the hex digest, upper-case if requested.
func (h *Hash) Hex(upper bool) (string, error) {
	digest, err := h.finalize()
	if err != nil {
		return "", err
	}
	out := hex.EncodeToString(digest)
	if upper {
		out = strings.ToUpper(out)
	}
	return out, nil
}

// Equal finalizes h and compares the digest in constant time with
// candidate, given either as hex (any case) or as raw bytes.
func (h *Hash) Equal(candidate string) (bool, error) {
	digest, err := h.finalize()
	if err != nil {
		return false, err
	}
	hexDigest := []byte(hex.EncodeToString(digest))
	matchHex := subtle.ConstantTimeCompare(hexDigest, []byte(strings.ToLower(candidate)))
	matchRaw := subtle.ConstantTimeCompare(digest, []byte(candidate))
	return matchHex|matchRaw == 1, nil
}
