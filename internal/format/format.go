// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

// Package format describes the on-disk layout of MPQ archives: the header,
// the hash and block table entries and the flag and compression bits.
package format

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrSignatureMismatch indicates the header does not start with "MPQ\x1A".
	ErrSignatureMismatch = errors.New("format: signature mismatch")
	// ErrTruncated indicates the buffer lacked the bytes required for a structure.
	ErrTruncated = errors.New("format: truncated buffer")
)

const (
	// Magic is "MPQ\x1A" read as a little-endian uint32.
	Magic = 0x1A51504D

	HeaderSize = 0x20 // fixed part of the header
	EntrySize  = 0x10 // both hash and block entries

	// BaseSectorSize is shifted left by the header's block size exponent.
	BaseSectorSize = 512
)

// Block table flags.
const (
	FileImplode      = 0x00000100 // PKWARE implode, no compression mask byte
	FileCompress     = 0x00000200 // multi-algorithm compression mask byte
	FileEncrypted    = 0x00010000
	FileAdjustedKey  = 0x00020000 // key adjusted by block offset
	FileSingleUnit   = 0x01000000 // stored as one unit instead of sectors
	FileDeleteMarker = 0x02000000 // hides the name in lower-priority archives
	FileExists       = 0x80000000
)

// Compression mask bits.
const (
	CompressionHuffman     = 0x01
	CompressionZlib        = 0x02
	CompressionPKWare      = 0x08
	CompressionBzip2       = 0x10
	CompressionSparse      = 0x20
	CompressionADPCMMono   = 0x40
	CompressionADPCMStereo = 0x80
)

// Hash table sentinels.
const (
	HashEmpty   = 0xFFFFFFFF
	HashDeleted = 0xFFFFFFFE
)

// Reserved member names.
const (
	ListfileName   = "(listfile)"
	AttributesName = "(attributes)"
	SignatureName  = "(signature)"
)

// Header is the fixed 32-byte MPQ header.
//
//	Offset  Size  Description
//	------  ----  -----------------------------------
//	 0x00    4    'M' 'P' 'Q' 0x1A
//	 0x04    4    Header size
//	 0x08    4    Archive size
//	 0x0C    2    Format version
//	 0x0E    2    Block size exponent (sector = 512 << n)
//	 0x10    4    Hash table offset
//	 0x14    4    Block table offset
//	 0x18    4    Hash table entries
//	 0x1C    4    Block table entries
type Header struct {
	Magic             uint32
	HeaderSize        uint32
	ArchiveSize       uint32
	FormatVersion     uint16
	BlockSizeShift    uint16
	HashTableOffset   uint32
	BlockTableOffset  uint32
	HashTableEntries  uint32
	BlockTableEntries uint32
}

// SectorSize returns the size of one sector of a sectored member.
func (h Header) SectorSize() uint32 {
	shift := h.BlockSizeShift
	if shift > 20 {
		shift = 20
	}
	return BaseSectorSize << shift
}

// ParseHeader validates the magic and decodes the fixed header fields.
func ParseHeader(b []byte) (Header, error) {
	if len(b) >= 4 && binary.LittleEndian.Uint32(b) != Magic {
		return Header{}, fmt.Errorf("mpq header: %w", ErrSignatureMismatch)
	}
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("mpq header: %w", ErrTruncated)
	}
	le := binary.LittleEndian
	return Header{
		Magic:             le.Uint32(b[0x00:]),
		HeaderSize:        le.Uint32(b[0x04:]),
		ArchiveSize:       le.Uint32(b[0x08:]),
		FormatVersion:     le.Uint16(b[0x0C:]),
		BlockSizeShift:    le.Uint16(b[0x0E:]),
		HashTableOffset:   le.Uint32(b[0x10:]),
		BlockTableOffset:  le.Uint32(b[0x14:]),
		HashTableEntries:  le.Uint32(b[0x18:]),
		BlockTableEntries: le.Uint32(b[0x1C:]),
	}, nil
}

// AppendBinary appends the encoded header to b.
func (h Header) AppendBinary(b []byte) []byte {
	le := binary.LittleEndian
	b = le.AppendUint32(b, h.Magic)
	b = le.AppendUint32(b, h.HeaderSize)
	b = le.AppendUint32(b, h.ArchiveSize)
	b = le.AppendUint16(b, h.FormatVersion)
	b = le.AppendUint16(b, h.BlockSizeShift)
	b = le.AppendUint32(b, h.HashTableOffset)
	b = le.AppendUint32(b, h.BlockTableOffset)
	b = le.AppendUint32(b, h.HashTableEntries)
	return le.AppendUint32(b, h.BlockTableEntries)
}

// HashEntry is one slot of the hash table.
type HashEntry struct {
	NameA      uint32
	NameB      uint32
	Locale     uint16
	Platform   uint16
	BlockIndex uint32
}

// BlockEntry is one slot of the block table.
type BlockEntry struct {
	FilePos      uint32
	PackedSize   uint32
	UnpackedSize uint32
	Flags        uint32
}

// Words converts little-endian bytes to words; a trailing partial word is
// dropped.
func Words(b []byte) []uint32 {
	w := make([]uint32, len(b)/4)
	for i := range w {
		w[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return w
}

// AppendWords appends the little-endian encoding of w to b.
func AppendWords(b []byte, w []uint32) []byte {
	for _, v := range w {
		b = binary.LittleEndian.AppendUint32(b, v)
	}
	return b
}

// HashEntries decodes hash table words, four per entry.
func HashEntries(w []uint32) []HashEntry {
	entries := make([]HashEntry, len(w)/4)
	for i := range entries {
		entries[i] = HashEntry{
			NameA:      w[i*4],
			NameB:      w[i*4+1],
			Locale:     uint16(w[i*4+2] & 0xFFFF),
			Platform:   uint16(w[i*4+2] >> 16),
			BlockIndex: w[i*4+3],
		}
	}
	return entries
}

// HashWords is the inverse of HashEntries.
func HashWords(entries []HashEntry) []uint32 {
	w := make([]uint32, 0, len(entries)*4)
	for _, e := range entries {
		w = append(w, e.NameA, e.NameB, uint32(e.Locale)|uint32(e.Platform)<<16, e.BlockIndex)
	}
	return w
}

// BlockEntries decodes block table words, four per entry.
func BlockEntries(w []uint32) []BlockEntry {
	entries := make([]BlockEntry, len(w)/4)
	for i := range entries {
		entries[i] = BlockEntry{
			FilePos:      w[i*4],
			PackedSize:   w[i*4+1],
			UnpackedSize: w[i*4+2],
			Flags:        w[i*4+3],
		}
	}
	return entries
}

// BlockWords is the inverse of BlockEntries.
func BlockWords(entries []BlockEntry) []uint32 {
	w := make([]uint32, 0, len(entries)*4)
	for _, e := range entries {
		w = append(w, e.FilePos, e.PackedSize, e.UnpackedSize, e.Flags)
	}
	return w
}
