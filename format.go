// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpq

import (
	"errors"
	"io"
	"math"

	"github.com/suprsokr/d2mpq/internal/format"
)

// Block flags.
const (
	FileImplode      = format.FileImplode      // PKWARE implode, no mask byte
	FileCompress     = format.FileCompress     // compressed, first byte is the codec mask
	FileEncrypted    = format.FileEncrypted    // encrypted with a name-derived key
	FileAdjustedKey  = format.FileAdjustedKey  // key adjusted by block offset
	FileSingleUnit   = format.FileSingleUnit   // one unit instead of sectors
	FileDeleteMarker = format.FileDeleteMarker // deletion marker in a patch chain
	FileExists       = format.FileExists
)

// Compression mask bits.
const (
	CompressionHuffman     = format.CompressionHuffman
	CompressionZlib        = format.CompressionZlib
	CompressionPKWare      = format.CompressionPKWare
	CompressionBzip2       = format.CompressionBzip2
	CompressionSparse      = format.CompressionSparse
	CompressionADPCMMono   = format.CompressionADPCMMono
	CompressionADPCMStereo = format.CompressionADPCMStereo
)

// Reserved member names.
const (
	ListfileName   = format.ListfileName
	AttributesName = format.AttributesName
	SignatureName  = format.SignatureName
)

// Header is the decoded 32-byte archive header.
type Header = format.Header

// readArchiveHeader reads and validates the header at the start of r.
func readArchiveHeader(r io.ReaderAt) (Header, error) {
	buf := make([]byte, format.HeaderSize)
	n, err := r.ReadAt(buf, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return Header{}, newError(ErrKindIO, err, "read header")
	}

	header, err := format.ParseHeader(buf[:n])
	switch {
	case errors.Is(err, format.ErrSignatureMismatch):
		return Header{}, newError(ErrKindFormat, err, "invalid MPQ file format")
	case err != nil:
		return Header{}, newError(ErrKindFormat, err, "truncated header")
	}
	return header, nil
}

// readTableWords reads count 16-byte entries at offset as little-endian
// words. The table must lie entirely inside the file.
func readTableWords(r io.ReaderAt, fileSize int64, name string, offset, count uint32) ([]uint32, error) {
	size := uint64(count) * format.EntrySize
	end := uint64(offset) + size
	if end > uint64(fileSize) || size > math.MaxInt32 {
		return nil, newError(ErrKindFormat, nil,
			"%s extends past end of file (offset %d, %d entries, file size %d)", name, offset, count, fileSize)
	}

	buf := make([]byte, size)
	if _, err := r.ReadAt(buf, int64(offset)); err != nil {
		return nil, newError(ErrKindIO, err, "read %s", name)
	}
	return format.Words(buf), nil
}
