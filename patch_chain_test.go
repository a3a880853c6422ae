// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpq

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suprsokr/d2mpq/internal/mpqtest"
)

func TestPatchChainPriority(t *testing.T) {
	dir := t.TempDir()

	base := mpqtest.New(
		mpqtest.Member{Name: "data\\global\\excel\\weapons.txt", Data: []byte("classic weapons")},
		mpqtest.Member{Name: "data\\global\\excel\\armor.txt", Data: []byte("classic armor"), Codec: mpqtest.Zlib},
		mpqtest.Member{Name: "data\\global\\excel\\gems.txt", Data: []byte("classic gems")},
	).Write(t, dir, "d2data.mpq")

	expansion := mpqtest.New(
		mpqtest.Member{Name: "data\\global\\excel\\weapons.txt", Data: []byte("expansion weapons"), Codec: mpqtest.PKWare},
		mpqtest.Member{Name: "data\\global\\excel\\runes.txt", Data: []byte("runewords")},
	).Write(t, dir, "d2exp.mpq")

	// The patch hides gems.txt and ships an unlisted member.
	pb := mpqtest.New(
		mpqtest.Member{Name: "data\\global\\excel\\gems.txt", Data: []byte{}, Flags: FileDeleteMarker},
		mpqtest.Member{Name: "data\\global\\excel\\armor.txt", Data: []byte("patched armor")},
	)
	pb.Listfile = false
	patch := pb.Write(t, dir, "patch_d2.mpq")

	chain, err := OpenPatchChain([]string{base, expansion, patch})
	require.NoError(t, err)
	defer chain.Close()

	assert.Equal(t, 3, chain.ArchiveCount())

	read := func(name string) string {
		t.Helper()
		data, err := chain.ReadFile(name)
		require.NoError(t, err)
		return string(data)
	}

	assert.Equal(t, "expansion weapons", read("data\\global\\excel\\weapons.txt"))
	assert.Equal(t, "runewords", read("DATA/GLOBAL/EXCEL/RUNES.TXT"))
	// Not listed in the patch, still found by probing.
	assert.Equal(t, "patched armor", read("data\\global\\excel\\armor.txt"))

	assert.False(t, chain.HasFile("data\\global\\excel\\gems.txt"))
	_, err = chain.ReadFile("data\\global\\excel\\gems.txt")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "deletion")

	assert.False(t, chain.HasFile("data\\global\\excel\\missing.txt"))

	dest := filepath.Join(dir, "out", "weapons.txt")
	require.NoError(t, chain.ExtractFile("data/global/excel/weapons.txt", dest))
	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "expansion weapons", string(got))

	names := chain.ListFiles()
	assert.Contains(t, names, "data\\global\\excel\\weapons.txt")
	assert.Contains(t, names, "data\\global\\excel\\runes.txt")
	assert.Contains(t, names, "data\\global\\excel\\gems.txt")
	count := 0
	for _, name := range names {
		if name == "data\\global\\excel\\weapons.txt" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestOpenPatchChainFailure(t *testing.T) {
	dir := t.TempDir()
	good := mpqtest.New(mpqtest.Member{Name: "a", Data: []byte("a")}).Write(t, dir, "good.mpq")

	_, err := OpenPatchChain([]string{good, filepath.Join(dir, "missing.mpq")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIO))
	assert.Contains(t, err.Error(), "missing.mpq")
}

func TestNormalizeMpqPath(t *testing.T) {
	assert.Equal(t, "DATA\\GLOBAL\\X.TXT", normalizeMpqPath("data/global//x.txt"))
	assert.Equal(t, "DATA\\X", normalizeMpqPath("Data\\\\\\x"))
}
