// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

// Package explode decompresses data produced by the PKWARE Data Compression
// Library ("implode"), the format MPQ archives use for compression bit 0x08.
//
// The stream starts with two bytes: the literal mode (0 = raw 8-bit
// literals, 1 = Huffman coded literals) and the dictionary size as a
// power of two in kilobytes minus six (4, 5 or 6 for 1K, 2K and 4K). Every
// token then starts with a flag bit: 0 for a literal, 1 for a length and
// distance pair. A length of 519 ends the stream. Bits are read LSB first
// and Huffman codes are stored bit-inverted.
package explode

import (
	"errors"
	"fmt"
)

const (
	maxBits = 13  // longest code in any table
	endLen  = 519 // length value that terminates the stream
)

var (
	// ErrTruncated reports that the input ended before the end code.
	ErrTruncated = errors.New("explode: truncated input")
	// ErrLimit reports that the output would exceed the caller's limit.
	ErrLimit = errors.New("explode: output limit exceeded")
)

// Compacted code lengths: each byte is (count-1)<<4 | length.
var (
	litLen = []byte{
		11, 124, 8, 7, 28, 7, 188, 13, 76, 4, 10, 8, 12, 10, 12, 10, 8, 23, 8,
		9, 7, 6, 7, 8, 7, 6, 55, 8, 23, 24, 12, 11, 7, 9, 11, 12, 6, 7, 22, 5,
		7, 24, 6, 11, 9, 6, 7, 22, 7, 11, 38, 7, 9, 8, 25, 11, 8, 11, 9, 12,
		8, 12, 5, 38, 5, 38, 5, 11, 7, 5, 6, 21, 6, 10, 53, 8, 7, 24, 10, 27,
		44, 253, 253, 253, 252, 252, 252, 13, 12, 45, 12, 45, 12, 61, 12, 45,
		44, 173,
	}
	lenLen  = []byte{2, 35, 36, 53, 38, 23}
	distLen = []byte{2, 20, 53, 230, 247, 151, 248}

	lenBase  = [16]int{3, 2, 4, 5, 6, 7, 8, 9, 10, 12, 16, 24, 40, 72, 136, 264}
	lenExtra = [16]uint{0, 0, 0, 0, 0, 0, 0, 0, 1, 2, 3, 4, 5, 6, 7, 8}
)

// huffman is a canonical decoding table: count[l] codes of length l, and
// the symbols ordered by code.
type huffman struct {
	count  [maxBits + 1]int
	symbol []int
}

var litCode, lenCode, distCode = construct(litLen), construct(lenLen), construct(distLen)

func construct(rep []byte) *huffman {
	var length []int
	for _, b := range rep {
		n := int(b>>4) + 1
		for ; n > 0; n-- {
			length = append(length, int(b&15))
		}
	}

	h := &huffman{symbol: make([]int, len(length))}
	for _, l := range length {
		h.count[l]++
	}

	var offs [maxBits + 1]int
	for l := 1; l < maxBits; l++ {
		offs[l+1] = offs[l] + h.count[l]
	}
	for sym, l := range length {
		if l != 0 {
			h.symbol[offs[l]] = sym
			offs[l]++
		}
	}
	return h
}

type bitReader struct {
	src    []byte
	pos    int
	bitbuf uint32
	bitcnt uint
}

func (r *bitReader) bits(need uint) (int, error) {
	val := r.bitbuf
	for r.bitcnt < need {
		if r.pos >= len(r.src) {
			return 0, ErrTruncated
		}
		val |= uint32(r.src[r.pos]) << r.bitcnt
		r.pos++
		r.bitcnt += 8
	}
	r.bitbuf = val >> need
	r.bitcnt -= need
	return int(val & (1<<need - 1)), nil
}

func (r *bitReader) decode(h *huffman) (int, error) {
	code, first, index := 0, 0, 0
	for l := 1; l <= maxBits; l++ {
		bit, err := r.bits(1)
		if err != nil {
			return 0, err
		}
		code |= bit ^ 1
		count := h.count[l]
		if code < first+count {
			return h.symbol[index+code-first], nil
		}
		index += count
		first += count
		first <<= 1
		code <<= 1
	}
	return 0, errors.New("explode: invalid code")
}

// Explode decompresses src. It fails with ErrLimit if more than limit bytes
// would be produced; a non-positive limit disables the check.
func Explode(src []byte, limit int) ([]byte, error) {
	r := &bitReader{src: src}

	lit, err := r.bits(8)
	if err != nil {
		return nil, err
	}
	if lit > 1 {
		return nil, fmt.Errorf("explode: invalid literal mode %d", lit)
	}
	dict, err := r.bits(8)
	if err != nil {
		return nil, err
	}
	if dict < 4 || dict > 6 {
		return nil, fmt.Errorf("explode: invalid dictionary size %d", dict)
	}

	capacity := len(src) * 4
	if limit > 0 && capacity > limit {
		capacity = limit
	}
	out := make([]byte, 0, capacity)

	for {
		flag, err := r.bits(1)
		if err != nil {
			return nil, err
		}

		if flag == 0 {
			var sym int
			if lit == 1 {
				sym, err = r.decode(litCode)
			} else {
				sym, err = r.bits(8)
			}
			if err != nil {
				return nil, err
			}
			if limit > 0 && len(out) >= limit {
				return nil, ErrLimit
			}
			out = append(out, byte(sym))
			continue
		}

		sym, err := r.decode(lenCode)
		if err != nil {
			return nil, err
		}
		extra, err := r.bits(lenExtra[sym])
		if err != nil {
			return nil, err
		}
		length := lenBase[sym] + extra
		if length == endLen {
			return out, nil
		}

		shift := uint(dict)
		if length == 2 {
			shift = 2
		}
		hi, err := r.decode(distCode)
		if err != nil {
			return nil, err
		}
		lo, err := r.bits(shift)
		if err != nil {
			return nil, err
		}
		dist := hi<<shift + lo + 1
		if dist > len(out) {
			return nil, fmt.Errorf("explode: distance %d beyond %d bytes of output", dist, len(out))
		}
		if limit > 0 && len(out)+length > limit {
			return nil, ErrLimit
		}

		// Byte by byte: the source may overlap the bytes being written.
		from := len(out) - dist
		for i := 0; i < length; i++ {
			out = append(out, out[from+i])
		}
	}
}
