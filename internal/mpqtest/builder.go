// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

// Package mpqtest builds small synthetic MPQ archives for tests.
package mpqtest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zlib"

	"github.com/suprsokr/d2mpq/internal/format"
	"github.com/suprsokr/d2mpq/internal/storm"
)

// Codec selects how a member is stored.
type Codec int

const (
	Stored     Codec = iota // no compression flags
	Zlib                    // mask 0x02
	PKWare                  // mask 0x08, literal-only implode
	PKWareZlib              // mask 0x0A: implode(zlib(data))
	Implode                 // IMPLODE flag, no mask byte
)

// Member is one file of a synthetic archive.
type Member struct {
	Name  string
	Data  []byte
	Codec Codec

	// Sectored stores the member as sectors with an offset table instead of
	// a single unit. Only meaningful for compressed codecs.
	Sectored bool

	// Flags are OR-ed into the block flags.
	Flags uint32

	// Payload, when set, is written verbatim instead of the encoded Data.
	// Data still provides the unpacked size.
	Payload []byte

	Locale uint16
}

// Builder assembles an archive in memory.
type Builder struct {
	Members []Member

	EncryptTables bool
	Listfile      bool
	Attributes    bool
	Signature     []byte // written as (signature) when non-nil

	// BlockSizeShift is the header's sector exponent (sector = 512 << n).
	BlockSizeShift uint16
	// HashTableSize overrides the computed hash table size when non-zero.
	HashTableSize uint32
}

// New returns a builder with encrypted tables and a listfile, the way
// game archives are laid out.
func New(members ...Member) *Builder {
	return &Builder{
		Members:        members,
		EncryptTables:  true,
		Listfile:       true,
		BlockSizeShift: 3,
	}
}

// Add appends a member.
func (b *Builder) Add(m Member) *Builder {
	b.Members = append(b.Members, m)
	return b
}

// Bytes encodes the archive.
func (b *Builder) Bytes() ([]byte, error) {
	members := append([]Member(nil), b.Members...)

	if b.Listfile {
		var list bytes.Buffer
		for _, m := range b.Members {
			list.WriteString(m.Name + "\r\n")
		}
		members = append(members, Member{Name: format.ListfileName, Data: list.Bytes()})
	}
	if b.Signature != nil {
		sig := binary.LittleEndian.AppendUint32(nil, 0)
		sig = binary.LittleEndian.AppendUint32(sig, uint32(len(b.Signature)))
		members = append(members, Member{Name: format.SignatureName, Data: append(sig, b.Signature...)})
	}
	attrIndex := -1
	if b.Attributes {
		attrIndex = len(members)
		// Placeholder, replaced once every CRC is known.
		members = append(members, Member{Name: format.AttributesName, Data: make([]byte, 8+4*(len(members)+1))})
	}

	hashSize := b.HashTableSize
	if hashSize == 0 {
		hashSize = nextPowerOf2(uint32(len(members) * 2))
		if hashSize < 16 {
			hashSize = 16
		}
	}

	hashTable := make([]format.HashEntry, hashSize)
	for i := range hashTable {
		hashTable[i] = format.HashEntry{
			NameA:      format.HashEmpty,
			NameB:      format.HashEmpty,
			Locale:     0xFFFF,
			Platform:   0xFFFF,
			BlockIndex: format.HashEmpty,
		}
	}

	if attrIndex >= 0 {
		attr := binary.LittleEndian.AppendUint32(nil, 100)
		attr = binary.LittleEndian.AppendUint32(attr, 1)
		for i, m := range members {
			var sum uint32
			if i != attrIndex {
				sum = crc32.ChecksumIEEE(m.Data)
			}
			attr = binary.LittleEndian.AppendUint32(attr, sum)
		}
		members[attrIndex].Data = attr
	}

	sectorSize := uint32(format.BaseSectorSize) << b.BlockSizeShift
	out := make([]byte, format.HeaderSize)
	blocks := make([]format.BlockEntry, len(members))

	for i, m := range members {
		payload, flags, err := encodeMember(m, sectorSize)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", m.Name, err)
		}

		blocks[i] = format.BlockEntry{
			FilePos:      uint32(len(out)),
			PackedSize:   uint32(len(payload)),
			UnpackedSize: uint32(len(m.Data)),
			Flags:        flags | m.Flags,
		}
		out = append(out, payload...)

		if err := insertHash(hashTable, m.Name, m.Locale, uint32(i)); err != nil {
			return nil, err
		}
	}

	hashWords := format.HashWords(hashTable)
	blockWords := format.BlockWords(blocks)
	if b.EncryptTables {
		storm.EncryptBlock(hashWords, storm.HashTableKey())
		storm.EncryptBlock(blockWords, storm.BlockTableKey())
	}

	hashOffset := uint32(len(out))
	out = format.AppendWords(out, hashWords)
	blockOffset := uint32(len(out))
	out = format.AppendWords(out, blockWords)

	header := format.Header{
		Magic:             format.Magic,
		HeaderSize:        format.HeaderSize,
		ArchiveSize:       uint32(len(out)),
		BlockSizeShift:    b.BlockSizeShift,
		HashTableOffset:   hashOffset,
		BlockTableOffset:  blockOffset,
		HashTableEntries:  hashSize,
		BlockTableEntries: uint32(len(blocks)),
	}
	copy(out, header.AppendBinary(nil))

	return out, nil
}

// Write encodes the archive into dir/name and returns the path.
func (b *Builder) Write(t testing.TB, dir, name string) string {
	t.Helper()

	data, err := b.Bytes()
	if err != nil {
		t.Fatalf("build archive: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write archive: %v", err)
	}
	return path
}

func encodeMember(m Member, sectorSize uint32) ([]byte, uint32, error) {
	if m.Payload != nil {
		return m.Payload, format.FileExists | format.FileSingleUnit, nil
	}

	switch m.Codec {
	case Stored:
		return m.Data, format.FileExists | format.FileSingleUnit, nil
	case Implode:
		return ImplodeLiterals(m.Data), format.FileExists | format.FileImplode | format.FileSingleUnit, nil
	}

	if !m.Sectored {
		unit, err := encodeUnit(m.Data, m.Codec)
		if err != nil {
			return nil, 0, err
		}
		return unit, format.FileExists | format.FileCompress | format.FileSingleUnit, nil
	}

	var sectors [][]byte
	for off := 0; off < len(m.Data); off += int(sectorSize) {
		end := min(off+int(sectorSize), len(m.Data))
		chunk := m.Data[off:end]
		unit, err := encodeUnit(chunk, m.Codec)
		if err != nil {
			return nil, 0, err
		}
		if len(unit) >= len(chunk) {
			unit = chunk
		}
		sectors = append(sectors, unit)
	}

	offsets := make([]uint32, len(sectors)+1)
	offsets[0] = uint32(4 * len(offsets))
	for i, s := range sectors {
		offsets[i+1] = offsets[i] + uint32(len(s))
	}
	out := format.AppendWords(nil, offsets)
	for _, s := range sectors {
		out = append(out, s...)
	}
	return out, format.FileExists | format.FileCompress, nil
}

func encodeUnit(data []byte, codec Codec) ([]byte, error) {
	switch codec {
	case Zlib:
		z, err := ZlibBytes(data)
		if err != nil {
			return nil, err
		}
		return append([]byte{format.CompressionZlib}, z...), nil
	case PKWare:
		return append([]byte{format.CompressionPKWare}, ImplodeLiterals(data)...), nil
	case PKWareZlib:
		z, err := ZlibBytes(data)
		if err != nil {
			return nil, err
		}
		return append([]byte{format.CompressionPKWare | format.CompressionZlib}, ImplodeLiterals(z)...), nil
	}
	return nil, fmt.Errorf("unknown codec %d", codec)
}

// insertHash places name at the first free slot of its probe sequence.
func insertHash(table []format.HashEntry, name string, locale uint16, blockIndex uint32) error {
	size := uint32(len(table))
	start := storm.Hash(name, storm.TableOffset) % size

	for i := uint32(0); i < size; i++ {
		entry := &table[(start+i)%size]
		if entry.BlockIndex == format.HashEmpty || entry.BlockIndex == format.HashDeleted {
			*entry = format.HashEntry{
				NameA:      storm.Hash(name, storm.NameA),
				NameB:      storm.Hash(name, storm.NameB),
				Locale:     locale,
				BlockIndex: blockIndex,
			}
			return nil
		}
	}

	return fmt.Errorf("hash table full")
}

// ZlibBytes compresses data into a zlib stream.
func ZlibBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("create zlib writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("zlib write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("zlib close: %w", err)
	}
	return buf.Bytes(), nil
}

func nextPowerOf2(n uint32) uint32 {
	if n == 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	return n + 1
}
