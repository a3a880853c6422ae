// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpqtest

// ImplodeLiterals encodes data as a PKWARE DCL stream made only of raw
// literals with a 1K dictionary. It never compresses, but every conforming
// decoder accepts it.
func ImplodeLiterals(data []byte) []byte {
	w := &bitWriter{out: []byte{0, 4}}
	for _, c := range data {
		w.put(0, 1)
		w.put(uint32(c), 8)
	}
	// End of stream: length symbol 15 (code 1111111, stored inverted) with
	// 8 extra bits of 0xFF gives length 264+255 = 519.
	w.put(1, 1)
	w.put(0, 7)
	w.put(0xFF, 8)
	return w.flush()
}

type bitWriter struct {
	out []byte
	acc uint32
	n   uint
}

func (w *bitWriter) put(v uint32, bits uint) {
	w.acc |= v << w.n
	w.n += bits
	for w.n >= 8 {
		w.out = append(w.out, byte(w.acc))
		w.acc >>= 8
		w.n -= 8
	}
}

func (w *bitWriter) flush() []byte {
	if w.n > 0 {
		w.out = append(w.out, byte(w.acc))
		w.acc, w.n = 0, 0
	}
	return w.out
}
