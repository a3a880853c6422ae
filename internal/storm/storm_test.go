// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package storm

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashKnownValues(t *testing.T) {
	// Values from StormLib.h and StormTest.cpp.
	tests := []struct {
		input string
		ch    Channel
		want  uint32
	}{
		{"(hash table)", FileKey, 0xC3AF3770},
		{"(block table)", FileKey, 0xEC83B3A3},
		{"ReplaceableTextures\\CommandButtons\\BTNHaboss79.blp", NameA, 0x8bd6929a},
		{"ReplaceableTextures\\CommandButtons\\BTNHaboss79.blp", NameB, 0xfd55129b},
		{"ReplaceableTextures/CommandButtons/BTNHaboss79.blp", NameA, 0x8bd6929a},
		{"replaceabletextures\\commandbuttons\\btnhaboss79.blp", NameB, 0xfd55129b},
	}

	for _, tt := range tests {
		assert.Equalf(t, tt.want, Hash(tt.input, tt.ch), "Hash(%q, %d)", tt.input, tt.ch)
	}

	assert.Equal(t, uint32(0xC3AF3770), HashTableKey())
	assert.Equal(t, uint32(0xEC83B3A3), BlockTableKey())
}

func TestHashNormalization(t *testing.T) {
	names := []string{
		"(listfile)",
		"data\\global\\excel\\armor.txt",
		"data/global/ui/panel/invchar6.dc6",
		"Data\\Global\\Items\\invaxe.DC6",
		"x",
		"",
	}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			for ch := TableOffset; ch <= FileKey; ch++ {
				h := Hash(name, ch)
				assert.Equal(t, h, Hash(strings.ToUpper(name), ch), "case folding")
				assert.Equal(t, h, Hash(strings.ReplaceAll(name, "/", "\\"), ch), "slash folding")
				assert.Equal(t, h, Hash(strings.ReplaceAll(name, "\\", "/"), ch), "backslash folding")
			}
			if name != "" {
				assert.NotEqual(t, Hash(name, NameA), Hash(name, NameB))
			}
		})
	}
}

func TestHashChannelsDiffer(t *testing.T) {
	seen := make(map[uint32]string)
	for i := 0; i < 500; i++ {
		name := "data\\file" + strings.Repeat("x", i%7) + string(rune('a'+i%26)) + ".txt"
		a := Hash(name, NameA)
		b := Hash(name, NameB)
		require.NotEqual(t, a, b, name)

		if prev, ok := seen[a]; ok && prev != name {
			t.Fatalf("NameA collision between %q and %q", prev, name)
		}
		seen[a] = name
	}
}

func TestTableInitialization(t *testing.T) {
	tbl := Table()
	require.Len(t, tbl, 0x500)

	seed := uint32(0x00100001)
	for index1 := 0; index1 < 0x100; index1++ {
		index2 := index1
		for i := 0; i < 5; i++ {
			seed = (seed*125 + 3) % 0x2AAAAB
			temp1 := (seed & 0xFFFF) << 0x10
			seed = (seed*125 + 3) % 0x2AAAAB
			temp2 := seed & 0xFFFF

			require.Equalf(t, temp1|temp2, tbl[index2], "table[0x%03X]", index2)
			index2 += 0x100
		}
	}
}

func TestTableConcurrentInit(t *testing.T) {
	var wg sync.WaitGroup
	results := make([]uint32, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Hash("(listfile)", NameA)
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, results[0], r)
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		data []uint32
		key  uint32
	}{
		{"hash table key", []uint32{0x12345678, 0xDEADBEEF, 0xCAFEBABE, 0xF00DF00D}, HashTableKey()},
		{"block table key", []uint32{0x11111111, 0x22222222, 0x33333333, 0x44444444}, BlockTableKey()},
		{"single value", []uint32{0xABCDEF01}, HashTableKey()},
		{"zeros", []uint32{0, 0, 0, 0}, HashTableKey()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := append([]uint32(nil), tt.data...)

			EncryptBlock(data, tt.key)
			assert.NotEqual(t, tt.data, data)

			DecryptBlock(data, tt.key)
			assert.Equal(t, tt.data, data)
		})
	}
}

func TestDecryptPlaintextProducesGarbage(t *testing.T) {
	plain := []uint32{0, 1, 2, 0xFFFFFFFF}
	data := append([]uint32(nil), plain...)

	DecryptBlock(data, HashTableKey())
	assert.NotEqual(t, plain, data)
}
