// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpq

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/suprsokr/d2mpq/internal/explode"
	"github.com/suprsokr/d2mpq/internal/format"
)

const (
	// Codecs that are recognized but not decoded.
	unsupportedCompression = format.CompressionHuffman | format.CompressionBzip2 |
		format.CompressionSparse | format.CompressionADPCMMono | format.CompressionADPCMStereo

	knownCompression = unsupportedCompression | format.CompressionZlib | format.CompressionPKWare
)

var compressionNames = []struct {
	bit  byte
	name string
}{
	{format.CompressionBzip2, "bzip2"},
	{format.CompressionSparse, "sparse"},
	{format.CompressionADPCMMono, "ADPCM mono"},
	{format.CompressionADPCMStereo, "ADPCM stereo"},
	{format.CompressionHuffman, "Huffman"},
}

// decodeUnit turns one stored unit (a whole single-unit member or one sector)
// into exactly size bytes.
//
// Decoding order is fixed: PKWARE explode first, then zlib inflate. A unit
// whose stored length equals its unpacked length is kept as-is.
func decodeUnit(data []byte, flags uint32, size uint32) ([]byte, error) {
	if flags&(format.FileCompress|format.FileImplode) == 0 || uint32(len(data)) == size {
		if uint32(len(data)) != size {
			return nil, fmt.Errorf("stored size %d does not match unpacked size %d", len(data), size)
		}
		return data, nil
	}

	// Imploded members carry no mask byte.
	mask := byte(format.CompressionPKWare)
	if flags&format.FileCompress != 0 {
		if len(data) == 0 {
			return nil, fmt.Errorf("missing compression mask")
		}
		mask = data[0]
		data = data[1:]
	}

	return decompressData(mask, data, size)
}

// decompressData applies the stages selected by mask.
func decompressData(mask byte, data []byte, size uint32) ([]byte, error) {
	if mask&^knownCompression != 0 {
		return nil, fmt.Errorf("unknown compression mask 0x%02X", mask)
	}
	for _, c := range compressionNames {
		if mask&c.bit != 0 {
			return nil, fmt.Errorf("%s compression not supported (mask 0x%02X)", c.name, mask)
		}
	}

	result := data
	var err error

	if mask&format.CompressionPKWare != 0 {
		// The exploded stream may still be zlib data, so allow some slack
		// over the final size.
		result, err = explode.Explode(result, max(2*int(size), 1))
		if err != nil {
			return nil, fmt.Errorf("pkware: %w", err)
		}
	}

	if mask&format.CompressionZlib != 0 {
		result, err = decompressZlib(result, size)
		if err != nil {
			return nil, fmt.Errorf("zlib: %w", err)
		}
	}

	if uint32(len(result)) != size {
		return nil, fmt.Errorf("decompressed %d bytes, want %d", len(result), size)
	}
	return result, nil
}

// decompressZlib inflates exactly size bytes and rejects streams that
// produce more or less.
func decompressZlib(data []byte, size uint32) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create zlib reader: %w", err)
	}
	defer r.Close()

	result := make([]byte, size)
	if _, err := io.ReadFull(r, result); err != nil {
		return nil, fmt.Errorf("inflate: %w", err)
	}

	var extra [1]byte
	switch _, err := io.ReadFull(r, extra[:]); {
	case err == nil:
		return nil, fmt.Errorf("stream longer than %d bytes", size)
	case !errors.Is(err, io.EOF):
		return nil, fmt.Errorf("inflate: %w", err)
	}

	return result, nil
}

// decodeSectors decodes a sectored member: an offset table of n+1 words
// followed by n independently stored sectors.
func decodeSectors(data []byte, flags uint32, size, sectorSize uint32) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}

	numSectors := (size + sectorSize - 1) / sectorSize
	tableSize := uint64(numSectors+1) * 4
	if uint64(len(data)) < tableSize {
		return nil, fmt.Errorf("data too small for sector offset table")
	}
	offsets := format.Words(data[:tableSize])

	result := make([]byte, 0, size)
	for i := uint32(0); i < numSectors; i++ {
		start, end := offsets[i], offsets[i+1]
		if start < uint32(tableSize) || end > uint32(len(data)) || end < start {
			return nil, fmt.Errorf("invalid sector offsets: %d-%d", start, end)
		}

		expected := sectorSize
		if i == numSectors-1 {
			expected = size - i*sectorSize
		}

		sector, err := decodeUnit(data[start:end], flags, expected)
		if err != nil {
			return nil, fmt.Errorf("sector %d: %w", i, err)
		}
		result = append(result, sector...)
	}

	return result, nil
}
