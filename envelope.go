// envelope.go: Self-describing ciphertext envelope.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cipherkit

import (
	"encoding/base64"
	"encoding/json"

	goerrors "github.com/agilira/go-errors"
)

// TagSize is the authentication tag length carried by AEAD envelopes.
//
// Eight bytes keeps envelopes short but is well below the full 16-byte tag
// of GCM and Poly1305; forgery resistance is 2^-64 per attempt.
const TagSize = 8

// Envelope is the decoded form of an encrypted value. Tag is nil for
// non-AEAD ciphers.
type Envelope struct {
	IV    []byte `json:"i"`
	Value []byte `json:"v"`
	Tag   []byte `json:"g,omitempty"`
}

// Encode serializes the envelope to its URL-safe text form.
func (e Envelope) Encode() (string, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return "", goerrors.Wrap(err, ErrCodeSerialize, "failed to serialize envelope")
	}
	return B64Encode(raw), nil
}

// wireEnvelope tells an absent field apart from an empty one, which matters
// for IV-less modes such as ECB.
type wireEnvelope struct {
	I *string `json:"i"`
	V *string `json:"v"`
	G *string `json:"g"`
}

// ParseEnvelope decodes the text form produced by Encode. The i and v fields
// are mandatory.
func ParseEnvelope(text string) (Envelope, error) {
	raw, err := B64Decode(text)
	if err != nil {
		return Envelope{}, err
	}

	var w wireEnvelope
	if err := json.Unmarshal(raw, &w); err != nil {
		return Envelope{}, goerrors.Wrap(err, ErrCodeSerialize, "envelope is not a JSON object")
	}
	if w.I == nil || w.V == nil {
		return Envelope{}, goerrors.New(ErrCodeSerialize, "envelope lacks iv or value")
	}

	var env Envelope
	if env.IV, err = base64.StdEncoding.DecodeString(*w.I); err != nil {
		return Envelope{}, goerrors.Wrap(err, ErrCodeSerialize, "invalid iv encoding")
	}
	if env.Value, err = base64.StdEncoding.DecodeString(*w.V); err != nil {
		return Envelope{}, goerrors.Wrap(err, ErrCodeSerialize, "invalid value encoding")
	}
	if w.G != nil {
		if env.Tag, err = base64.StdEncoding.DecodeString(*w.G); err != nil {
			return Envelope{}, goerrors.Wrap(err, ErrCodeSerialize, "invalid tag encoding")
		}
	}
	return env, nil
}
