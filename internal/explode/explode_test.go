// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package explode

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suprsokr/d2mpq/internal/mpqtest"
)

func TestExplodeReferenceVector(t *testing.T) {
	// Test vector from blast.c: raw literals, 1K dictionary, one match.
	src := []byte{0x00, 0x04, 0x82, 0x24, 0x25, 0x8f, 0x80, 0x7f}

	out, err := Explode(src, 26)
	require.NoError(t, err)
	assert.Equal(t, "AIAIAIAIAIAIA", string(out))
}

func TestExplodeCodedLiterals(t *testing.T) {
	src := []byte{0x01, 0x04, 0x42, 0xcb, 0x61, 0x9a, 0xba, 0x17, 0x08, 0x02, 0xfe, 0x01}

	out, err := Explode(src, 0)
	require.NoError(t, err)
	assert.Equal(t, "Diablo II", string(out))
}

func TestExplodeLiteralStreams(t *testing.T) {
	tests := map[string][]byte{
		"empty":  {},
		"text":   []byte("data\\global\\excel\\weapons.txt"),
		"binary": bytes.Repeat([]byte{0x00, 0xFF, 0x80, 0x7F}, 300),
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			out, err := Explode(mpqtest.ImplodeLiterals(data), 2*len(data))
			require.NoError(t, err)
			assert.Equal(t, len(data), len(out))
			assert.True(t, bytes.Equal(data, out))
		})
	}
}

func TestExplodeLimit(t *testing.T) {
	src := []byte{0x00, 0x04, 0x82, 0x24, 0x25, 0x8f, 0x80, 0x7f}

	_, err := Explode(src, 5)
	assert.True(t, errors.Is(err, ErrLimit))

	_, err = Explode(mpqtest.ImplodeLiterals([]byte("abcdef")), 3)
	assert.True(t, errors.Is(err, ErrLimit))
}

func TestExplodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		src  []byte
	}{
		{"empty", nil},
		{"header only", []byte{0x00, 0x04}},
		{"bad literal mode", []byte{0x02, 0x04, 0x00}},
		{"bad dictionary", []byte{0x00, 0x07, 0x00}},
		{"truncated", []byte{0x00, 0x04, 0x82, 0x24}},
		{"match without input", []byte{0x00, 0x04, 0x01, 0x00, 0x00}},
		// Length 3, distance 1 as the first token.
		{"distance before start", []byte{0x00, 0x04, 0x1f, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Explode(tt.src, 1024)
			assert.Error(t, err)
		})
	}
}
