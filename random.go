// random.go: Secure random bytes and URL-safe random strings.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cipherkit

import (
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	goerrors "github.com/agilira/go-errors"
)

// RandomSource draws bytes from a CSPRNG.
type RandomSource struct {
	reader io.Reader
}

// NewRandomSource wraps r. A nil reader makes every draw fail with
// ErrRandomUnavailable.
func NewRandomSource(r io.Reader) *RandomSource {
	return &RandomSource{reader: r}
}

var defaultRandom = NewRandomSource(NewStdProvider().Rand())

// RandomBytes returns n cryptographically secure random bytes. n < 1 yields
// an empty slice.
//
// Example:
//
//	iv, err := src.RandomBytes(16)
//	if err != nil {
//		log.Fatal(err)
//	}
func (s *RandomSource) RandomBytes(n int) ([]byte, error) {
	if n < 1 {
		return []byte{}, nil
	}
	if s == nil || s.reader == nil {
		return nil, tagged(ErrRandomUnavailable, goerrors.New(ErrCodeRandom, "no secure random provider configured"))
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(s.reader, buf); err != nil {
		return nil, tagged(ErrRandomUnavailable, goerrors.Wrap(err, ErrCodeRandom, fmt.Sprintf("failed to read %d random bytes", n)))
	}
	return buf, nil
}

// Random returns an n-character string over the URL-safe base64 alphabet
// with '+', '/' and '=' removed. n < 1 yields "".
func (s *RandomSource) Random(n int) (string, error) {
	if n < 1 {
		return "", nil
	}

	var sb strings.Builder
	sb.Grow(n)
	strip := strings.NewReplacer("+", "", "/", "", "=", "")
	for sb.Len() < n {
		need := n - sb.Len()
		raw, err := s.RandomBytes(need)
		if err != nil {
			return "", err
		}
		chunk := strip.Replace(base64.StdEncoding.EncodeToString(raw))
		if len(chunk) > need {
			chunk = chunk[:need]
		}
		sb.WriteString(chunk)
	}
	return sb.String(), nil
}

// RandomBytes draws n bytes from the standard provider's CSPRNG.
func RandomBytes(n int) ([]byte, error) {
	return defaultRandom.RandomBytes(n)
}

// Random returns an n-character URL-safe random string.
func Random(n int) (string, error) {
	return defaultRandom.Random(n)
}
