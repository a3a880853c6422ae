// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpq

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/suprsokr/d2mpq/internal/mpqtest"
)

// buildChain writes count archives of files members each. Every archive
// holds the same names with different content.
func buildChain(b *testing.B, count, files int) []string {
	b.Helper()
	dir := b.TempDir()

	var paths []string
	for i := 0; i < count; i++ {
		builder := mpqtest.New()
		for j := 0; j < files; j++ {
			builder.Add(mpqtest.Member{
				Name:  fmt.Sprintf("data\\global\\excel\\file_%02d.txt", j),
				Data:  []byte(fmt.Sprintf("test content %d %d", i, j)),
				Codec: mpqtest.Zlib,
			})
		}
		paths = append(paths, builder.Write(b, dir, fmt.Sprintf("archive_%d.mpq", i)))
	}
	return paths
}

func BenchmarkPatchChainLookup(b *testing.B) {
	chain, err := OpenPatchChain(buildChain(b, 5, 20))
	if err != nil {
		b.Fatal(err)
	}
	defer chain.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		chain.HasFile("data\\global\\excel\\file_00.txt")
		chain.HasFile("data\\global\\excel\\file_09.txt")
		chain.HasFile("data\\global\\excel\\file_19.txt")
		chain.HasFile("data\\global\\excel\\nonexistent.txt")
	}
}

func BenchmarkPatchChainRead(b *testing.B) {
	chain, err := OpenPatchChain(buildChain(b, 3, 10))
	if err != nil {
		b.Fatal(err)
	}
	defer chain.Close()

	dest := filepath.Join(b.TempDir(), "extracted.txt")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := chain.ExtractFile("data\\global\\excel\\file_00.txt", dest); err != nil {
			b.Fatal(err)
		}
	}
}
