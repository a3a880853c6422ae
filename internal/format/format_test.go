// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package format

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeaderRoundTrip(t *testing.T) {
	h := Header{
		Magic:             Magic,
		HeaderSize:        HeaderSize,
		ArchiveSize:       0x1234,
		FormatVersion:     0,
		BlockSizeShift:    3,
		HashTableOffset:   0x200,
		BlockTableOffset:  0x300,
		HashTableEntries:  16,
		BlockTableEntries: 4,
	}

	b := h.AppendBinary(nil)
	require.Len(t, b, HeaderSize)
	assert.Equal(t, []byte{'M', 'P', 'Q', 0x1A}, b[:4])

	got, err := ParseHeader(b)
	require.NoError(t, err)
	assert.Equal(t, h, got)
	assert.Equal(t, uint32(4096), got.SectorSize())
}

func TestParseHeaderErrors(t *testing.T) {
	_, err := ParseHeader([]byte("PK\x03\x04 not an archive at all, really"))
	assert.True(t, errors.Is(err, ErrSignatureMismatch))

	_, err = ParseHeader([]byte{'M', 'P', 'Q', 0x1A, 0x20, 0})
	assert.True(t, errors.Is(err, ErrTruncated))

	_, err = ParseHeader([]byte{'M', 'P'})
	assert.True(t, errors.Is(err, ErrTruncated))
}

func TestEntryWords(t *testing.T) {
	hashes := []HashEntry{
		{NameA: 1, NameB: 2, Locale: 0x409, Platform: 7, BlockIndex: 0},
		{NameA: HashEmpty, NameB: HashEmpty, Locale: 0xFFFF, Platform: 0xFFFF, BlockIndex: HashEmpty},
	}
	assert.Equal(t, hashes, HashEntries(HashWords(hashes)))

	blocks := []BlockEntry{
		{FilePos: 0x20, PackedSize: 10, UnpackedSize: 20, Flags: FileExists | FileCompress},
	}
	assert.Equal(t, blocks, BlockEntries(BlockWords(blocks)))

	words := []uint32{0x04030201, 0xFFFFFFFF}
	b := AppendWords(nil, words)
	assert.Equal(t, []byte{1, 2, 3, 4, 0xFF, 0xFF, 0xFF, 0xFF}, b)
	assert.Equal(t, words, Words(append(b, 0x99)))
}
