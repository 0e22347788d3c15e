// codec_test.go: Base64 and zero-width codec tests
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cipherkit_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/agilira/cipherkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestB64RoundTrip(t *testing.T) {
	inputs := [][]byte{
		{},
		[]byte("f"),
		[]byte("fo"),
		[]byte("foo"),
		{0xfb, 0xff, 0xfe, 0x00, 0x3e, 0x3f},
	}
	for _, in := range inputs {
		enc := cipherkit.B64Encode(in)
		assert.False(t, strings.ContainsAny(enc, "+/="), "unsafe character in %q", enc)

		dec, err := cipherkit.B64Decode(enc)
		require.NoError(t, err)
		assert.Equal(t, string(in), string(dec))
	}
}

func TestB64Alphabet(t *testing.T) {
	assert.Equal(t, "-_-_", cipherkit.B64Encode([]byte{0xfb, 0xff, 0xbf}))
	assert.Equal(t, "Zm8", cipherkit.B64Encode([]byte("fo")))
}

func TestB64DecodeTolerance(t *testing.T) {
	dec, err := cipherkit.B64Decode("Zm8=")
	require.NoError(t, err)
	assert.Equal(t, "fo", string(dec))

	_, err = cipherkit.B64Decode("not base64!")
	assert.ErrorIs(t, err, cipherkit.ErrBase64Decode)
}

func TestZWEncodeLayout(t *testing.T) {
	out := cipherkit.ZWEncode([]byte{0x41, 0x00})

	runes := []rune(out)
	require.Len(t, runes, 2+8+1+8)
	assert.Equal(t, cipherkit.ZWMarker, runes[0])
	assert.Equal(t, cipherkit.ZWMarker, runes[len(runes)-1])
	assert.Equal(t, cipherkit.ZWSeparator, runes[9])

	// 0x41 = 01000001
	want := []rune{
		cipherkit.ZWBitZero, cipherkit.ZWBitOne, cipherkit.ZWBitZero, cipherkit.ZWBitZero,
		cipherkit.ZWBitZero, cipherkit.ZWBitZero, cipherkit.ZWBitZero, cipherkit.ZWBitOne,
	}
	assert.Equal(t, want, runes[1:9])
	assert.True(t, utf8.ValidString(out))
}

func TestZWRoundTrip(t *testing.T) {
	for _, in := range [][]byte{[]byte("hello"), {0x00}, {0xff, 0x00, 0x80}} {
		payloads := cipherkit.ZWDecode(cipherkit.ZWEncode(in))
		require.Len(t, payloads, 1)
		assert.Equal(t, in, payloads[0])
	}
}

func TestZWEmptyPayload(t *testing.T) {
	enc := cipherkit.ZWEncode([]byte{})
	assert.Equal(t, string(cipherkit.ZWMarker)+string(cipherkit.ZWMarker), enc)

	first, ok := cipherkit.ZWDecodeFirst(enc)
	require.True(t, ok)
	assert.NotNil(t, first)
	assert.Empty(t, first)

	payloads := cipherkit.ZWDecode(enc + cipherkit.ZWEncode([]byte("ok")))
	require.Len(t, payloads, 2)
	assert.Empty(t, payloads[0])
	assert.Equal(t, "ok", string(payloads[1]))
}

func TestZWDecodeEmbedded(t *testing.T) {
	text := "Dear " + cipherkit.ZWEncode([]byte("one")) + "reader, " + cipherkit.ZWEncode([]byte("two")) + "bye"

	payloads := cipherkit.ZWDecode(text)
	require.Len(t, payloads, 2)
	assert.Equal(t, "one", string(payloads[0]))
	assert.Equal(t, "two", string(payloads[1]))

	first, ok := cipherkit.ZWDecodeFirst(text)
	require.True(t, ok)
	assert.Equal(t, "one", string(first))
}

func TestZWDecodeShortGroups(t *testing.T) {
	m, z, o, s := string(cipherkit.ZWMarker), string(cipherkit.ZWBitZero), string(cipherkit.ZWBitOne), string(cipherkit.ZWSeparator)

	// "1" and "11" without leading zeros
	payloads := cipherkit.ZWDecode(m + o + s + o + o + m)
	require.Len(t, payloads, 1)
	assert.Equal(t, []byte{1, 3}, payloads[0])

	// leading zeros are harmless
	payloads = cipherkit.ZWDecode(m + z + z + o + m)
	require.Len(t, payloads, 1)
	assert.Equal(t, []byte{1}, payloads[0])
}

func TestZWDecodeInvalidSegments(t *testing.T) {
	m, z, o, s := string(cipherkit.ZWMarker), string(cipherkit.ZWBitZero), string(cipherkit.ZWBitOne), string(cipherkit.ZWSeparator)
	valid := cipherkit.ZWEncode([]byte("ok"))

	tests := []struct {
		name     string
		text     string
		balanced bool
	}{
		{"no markers", "plain text", true},
		{"unterminated", m + o + o, false},
		{"foreign rune", m + o + "x" + o + m, true},
		{"empty group", m + o + s + s + o + m, true},
		{"trailing separator", m + o + s + m, true},
		{"nine bits", m + strings.Repeat(z, 9) + m, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, cipherkit.ZWDecode(tt.text))
			_, ok := cipherkit.ZWDecodeFirst(tt.text)
			assert.False(t, ok)

			if !tt.balanced {
				return
			}
			// an invalid segment does not hide a later valid one
			payloads := cipherkit.ZWDecode(tt.text + valid)
			require.Len(t, payloads, 1)
			assert.Equal(t, "ok", string(payloads[0]))
		})
	}
}
