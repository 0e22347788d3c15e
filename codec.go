// codec.go: URL-safe base64 and zero-width steganographic encoding.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cipherkit

import (
	"encoding/base64"
	"strings"

	goerrors "github.com/agilira/go-errors"
)

// B64Encode encodes data as URL-safe base64 without padding.
func B64Encode(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// B64Decode reverses B64Encode. Trailing padding is accepted.
func B64Decode(s string) ([]byte, error) {
	out, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
	if err != nil {
		return nil, tagged(ErrBase64Decode, goerrors.Wrap(err, ErrCodeBase64Decode, "failed to decode url-safe base64"))
	}
	return out, nil
}

// Zero-width code points of the steganographic encoding.
const (
	ZWBitZero   = '\u200b'
	ZWBitOne    = '\u200c'
	ZWSeparator = '\u200d'
	ZWMarker    = '\u200e'
)

// ZWEncode hides data in zero-width characters. Each byte becomes eight bit
// runes, bytes are separated by ZWSeparator and the whole payload is wrapped
// in ZWMarker runes. The result is invisible when embedded in text.
func ZWEncode(data []byte) string {
	var sb strings.Builder
	sb.Grow((len(data)*9 + 2) * 3)
	sb.WriteRune(ZWMarker)
	for i, b := range data {
		if i > 0 {
			sb.WriteRune(ZWSeparator)
		}
		for bit := 7; bit >= 0; bit-- {
			if b&(1<<bit) != 0 {
				sb.WriteRune(ZWBitOne)
			} else {
				sb.WriteRune(ZWBitZero)
			}
		}
	}
	sb.WriteRune(ZWMarker)
	return sb.String()
}

// ZWDecode returns every payload found between pairs of ZWMarker runes, in
// order. Invalid segments are skipped; two adjacent markers yield an empty
// payload.
func ZWDecode(data string) [][]byte {
	var out [][]byte
	zwScan(data, func(payload []byte) bool {
		out = append(out, payload)
		return true
	})
	return out
}

// ZWDecodeFirst returns the first valid payload in data.
func ZWDecodeFirst(data string) ([]byte, bool) {
	var first []byte
	found := false
	zwScan(data, func(payload []byte) bool {
		first, found = payload, true
		return false
	})
	return first, found
}

// zwScan pairs up markers and calls yield for each decodable segment until
// yield returns false.
func zwScan(data string, yield func([]byte) bool) {
	marker := string(ZWMarker)
	for {
		start := strings.Index(data, marker)
		if start < 0 {
			return
		}
		data = data[start+len(marker):]

		end := strings.Index(data, marker)
		if end < 0 {
			return
		}
		segment := data[:end]
		data = data[end+len(marker):]

		if payload, ok := zwDecodeSegment(segment); ok {
			if !yield(payload) {
				return
			}
		}
	}
}

// zwDecodeSegment accepts groups of 1 to 8 bits, so payloads written without
// leading zeros decode as well. An empty segment is the empty payload.
func zwDecodeSegment(segment string) ([]byte, bool) {
	if segment == "" {
		return []byte{}, true
	}

	var (
		out   []byte
		cur   byte
		nbits int
	)
	for _, r := range segment {
		switch r {
		case ZWBitZero, ZWBitOne:
			if nbits == 8 {
				return nil, false
			}
			cur <<= 1
			if r == ZWBitOne {
				cur |= 1
			}
			nbits++
		case ZWSeparator:
			if nbits == 0 {
				return nil, false
			}
			out = append(out, cur)
			cur, nbits = 0, 0
		default:
			return nil, false
		}
	}
	if nbits == 0 {
		return nil, false
	}
	return append(out, cur), true
}
