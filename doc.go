// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

/*
Package mpq reads MPQ (Mo'PaQ) archives as shipped with Diablo II.

An archive is a 32-byte header, a hash table that maps names to block
indices, a block table that describes where each member lives, and the
member data. Names are never stored with the data: they are hashed with
StormHash, and the optional (listfile) member supplies names for display.

# Basic Usage

	archive, err := mpq.Open("d2data.mpq")
	if err != nil {
		log.Fatal(err)
	}
	defer archive.Close()

	data, err := archive.ReadFile("data\\global\\excel\\weapons.txt")
	if err != nil {
		log.Fatal(err)
	}

	for _, fi := range archive.ListFiles() {
		fmt.Println(fi.Name, fi.UncompressedSize)
	}

A zero [Archive] or one returned by [New] is closed; [Archive.Open] loads a
file and may be called again to switch files.

# Tables

Both tables are normally encrypted with fixed keys. Some tools write them in
the clear, so each table is decoded both ways and the candidate whose
entries look valid is kept. Pass [WithLogger] to see which one was chosen.

# Compression

Members are stored raw, PKWARE imploded, zlib deflated, or imploded on top of
deflate. Huffman, bzip2, sparse and ADPCM members are reported as
[ErrCompression], as are encrypted members.

# Path Conventions

MPQ names use backslash separators and are case-insensitive. Forward slashes
are accepted everywhere:

	archive.HasFile("data\\global\\excel\\armor.txt") // native
	archive.HasFile("DATA/GLOBAL/EXCEL/ARMOR.TXT")    // same member

# Errors

Every error returned by an [Archive] is an [*Error] whose kind can be tested
with errors.Is against [ErrIO], [ErrFormat], [ErrCompression], [ErrNotFound]
and [ErrClosed]. [Archive.LastError] keeps the message of the latest failure.

# Patch Chains

[OpenPatchChain] stacks archives so that later ones override earlier ones,
the way the game layers d2data.mpq, d2exp.mpq and patch_d2.mpq.
*/
package mpq
