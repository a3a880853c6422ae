// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpq

import "github.com/suprsokr/d2mpq/internal/storm"

// HashChannel selects one of the four StormHash variants.
type HashChannel = storm.Channel

// Hash channels.
const (
	HashTableOffset = storm.TableOffset // start slot of a hash table probe
	HashNameA       = storm.NameA       // first name check
	HashNameB       = storm.NameB       // second name check
	HashFileKey     = storm.FileKey     // encryption keys
)

// HashString computes the StormHash of name on the given channel. Names are
// case-insensitive and '/' is treated as '\'.
func HashString(name string, channel HashChannel) uint32 {
	return storm.Hash(name, channel)
}

// hashKeys is the precomputed lookup key of a name.
type hashKeys struct {
	offset, nameA, nameB uint32
}

func hashName(name string) hashKeys {
	return hashKeys{
		offset: storm.Hash(name, storm.TableOffset),
		nameA:  storm.Hash(name, storm.NameA),
		nameB:  storm.Hash(name, storm.NameB),
	}
}

// decryptTable decrypts a copy of words with key.
func decryptTable(words []uint32, key uint32) []uint32 {
	out := append([]uint32(nil), words...)
	storm.DecryptBlock(out, key)
	return out
}
