// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpq

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suprsokr/d2mpq/internal/mpqtest"
)

func TestReadSignature(t *testing.T) {
	weak := bytes.Repeat([]byte{0x5A}, 64)
	b := mpqtest.New(mpqtest.Member{Name: "data\\a.txt", Data: []byte("a")})
	b.Signature = weak

	archive, err := Open(b.Write(t, t.TempDir(), "signed.mpq"))
	require.NoError(t, err)
	defer archive.Close()

	sig, err := archive.ReadSignature()
	require.NoError(t, err)
	require.NotNil(t, sig)
	assert.Equal(t, uint32(0), sig.Version)
	assert.Equal(t, weak, sig.Signature)
	assert.NoError(t, sig.CheckShape())
}

func TestReadSignatureAbsent(t *testing.T) {
	archive, err := Open(gameArchive().Write(t, t.TempDir(), "d2data.mpq"))
	require.NoError(t, err)
	defer archive.Close()

	sig, err := archive.ReadSignature()
	assert.NoError(t, err)
	assert.Nil(t, sig)
}

func TestParseSignature(t *testing.T) {
	_, err := parseSignature([]byte{0, 0, 0})
	assert.True(t, errors.Is(err, ErrFormat))

	_, err = parseSignature([]byte{0, 0, 0, 0, 0xFF, 0xFF, 0xFF, 0xFF, 1})
	assert.ErrorContains(t, err, "truncated")
}

func TestSignatureCheckShape(t *testing.T) {
	tests := []struct {
		name string
		sig  *SignatureInfo
		ok   bool
	}{
		{"nil", nil, false},
		{"empty", &SignatureInfo{}, false},
		{"weak", &SignatureInfo{Version: 0, Signature: make([]byte, 64)}, true},
		{"weak too short", &SignatureInfo{Version: 0, Signature: make([]byte, 10)}, false},
		{"strong", &SignatureInfo{Version: 1, Signature: make([]byte, 256)}, true},
		{"strong too short", &SignatureInfo{Version: 1, Signature: make([]byte, 64)}, false},
		{"unknown version", &SignatureInfo{Version: 7, Signature: make([]byte, 64)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sig.CheckShape()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
