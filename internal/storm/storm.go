// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

// Package storm implements the keyed hash and the table cipher used by MPQ
// archives. Both are driven by a single 0x500-word table that is built once
// per process and only read afterwards.
package storm

import "sync"

// Channel selects one of the four hash functions derived from the table.
type Channel uint32

const (
	TableOffset Channel = 0 // start slot in the hash table
	NameA       Channel = 1 // first name check
	NameB       Channel = 2 // second name check
	FileKey     Channel = 3 // encryption keys
)

// TableSize is the number of words in the cipher table.
const TableSize = 0x500

var (
	cryptOnce  sync.Once
	cryptTable [TableSize]uint32
)

// table returns the cipher table, building it on first use.
func table() *[TableSize]uint32 {
	cryptOnce.Do(buildTable)
	return &cryptTable
}

func buildTable() {
	seed := uint32(0x00100001)

	for index1 := 0; index1 < 0x100; index1++ {
		index2 := index1
		for i := 0; i < 5; i++ {
			seed = (seed*125 + 3) % 0x2AAAAB
			temp1 := (seed & 0xFFFF) << 0x10

			seed = (seed*125 + 3) % 0x2AAAAB
			temp2 := seed & 0xFFFF

			cryptTable[index2] = temp1 | temp2
			index2 += 0x100
		}
	}
}

// Table returns a copy of the cipher table.
func Table() [TableSize]uint32 {
	return *table()
}

// Hash computes the StormHash of s on the given channel. ASCII letters are
// folded to upper case and '/' is treated as '\'.
func Hash(s string, ch Channel) uint32 {
	t := table()
	seed1 := uint32(0x7FED7FED)
	seed2 := uint32(0xEEEEEEEE)
	base := (uint32(ch) & 3) << 8

	for i := 0; i < len(s); i++ {
		c := uint32(s[i])
		if c >= 'a' && c <= 'z' {
			c -= 0x20
		}
		if c == '/' {
			c = '\\'
		}

		seed1 = t[base+c] ^ (seed1 + seed2)
		seed2 = c + seed1 + seed2 + (seed2 << 5) + 3
	}

	return seed1
}

// HashTableKey returns the key of the hash table, 0xC3AF3770.
func HashTableKey() uint32 { return Hash("(hash table)", FileKey) }

// BlockTableKey returns the key of the block table, 0xEC83B3A3.
func BlockTableKey() uint32 { return Hash("(block table)", FileKey) }

// DecryptBlock decrypts data in place. Decrypting plaintext does not fail; it
// produces garbage.
func DecryptBlock(data []uint32, key uint32) {
	t := table()
	seed := uint32(0xEEEEEEEE)

	for i := range data {
		seed += t[0x400+(key&0xFF)]
		plain := data[i] ^ (key + seed)
		key = ((^key << 0x15) + 0x11111111) | (key >> 0x0B)
		seed = plain + seed + (seed << 5) + 3
		data[i] = plain
	}
}

// EncryptBlock is the inverse of DecryptBlock.
func EncryptBlock(data []uint32, key uint32) {
	t := table()
	seed := uint32(0xEEEEEEEE)

	for i := range data {
		seed += t[0x400+(key&0xFF)]
		plain := data[i]
		data[i] = plain ^ (key + seed)
		key = ((^key << 0x15) + 0x11111111) | (key >> 0x0B)
		seed = plain + seed + (seed << 5) + 3
	}
}
