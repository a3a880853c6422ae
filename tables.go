// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpq

import (
	"github.com/suprsokr/d2mpq/internal/format"
	"github.com/suprsokr/d2mpq/internal/storm"
)

// Game archives encrypt both tables, but some tools write them in the clear.
// Each table is decoded both ways and the plausible candidate wins.

// maxPlausibleFileSize bounds the unpacked size of a believable block entry.
const maxPlausibleFileSize = 100 << 20

// tableSource records which candidate was kept.
type tableSource int

const (
	sourceDecrypted tableSource = iota
	sourceRaw
	sourceFallback // neither looked valid; decrypted kept
)

func (s tableSource) String() string {
	switch s {
	case sourceDecrypted:
		return "decrypted"
	case sourceRaw:
		return "raw"
	case sourceFallback:
		return "fallback"
	}
	return "unknown"
}

type tableConfidence struct {
	Valid int
	Total int
}

// hashTableConfidence counts entries that point into the block table.
func hashTableConfidence(entries []format.HashEntry, blockCount uint32) tableConfidence {
	c := tableConfidence{Total: len(entries)}
	for _, e := range entries {
		if e.BlockIndex < blockCount {
			c.Valid++
		}
	}
	return c
}

// blockTableConfidence counts entries that start inside the archive and whose
// unpacked size is below ceiling.
func blockTableConfidence(entries []format.BlockEntry, archiveSize, ceiling uint32) tableConfidence {
	c := tableConfidence{Total: len(entries)}
	for _, e := range entries {
		if e.FilePos > 0 && e.FilePos < archiveSize && e.UnpackedSize > 0 && e.UnpackedSize < ceiling {
			c.Valid++
		}
	}
	return c
}

// hashPlausible reports whether any entry resolves.
func (c tableConfidence) hashPlausible() bool {
	return c.Valid > 0
}

// blockPlausible requires at least a quarter of the entries to look real.
func (c tableConfidence) blockPlausible() bool {
	return c.Valid > 0 && c.Valid*4 >= c.Total
}

// chooseHashTable decodes raw hash table words, preferring the decrypted
// form.
func chooseHashTable(raw []uint32, blockCount uint32) ([]format.HashEntry, tableSource) {
	decrypted := format.HashEntries(decryptTable(raw, storm.HashTableKey()))
	if hashTableConfidence(decrypted, blockCount).hashPlausible() {
		return decrypted, sourceDecrypted
	}

	plain := format.HashEntries(raw)
	if hashTableConfidence(plain, blockCount).hashPlausible() {
		return plain, sourceRaw
	}

	return decrypted, sourceFallback
}

// chooseBlockTable decodes raw block table words, preferring the decrypted
// form. A raw table is held to a tighter bound: its sizes must fit inside
// the archive.
func chooseBlockTable(raw []uint32, archiveSize uint32) ([]format.BlockEntry, tableSource) {
	decrypted := format.BlockEntries(decryptTable(raw, storm.BlockTableKey()))
	if blockTableConfidence(decrypted, archiveSize, maxPlausibleFileSize).blockPlausible() {
		return decrypted, sourceDecrypted
	}

	plain := format.BlockEntries(raw)
	if blockTableConfidence(plain, archiveSize, archiveSize).blockPlausible() {
		return plain, sourceRaw
	}

	return decrypted, sourceFallback
}
