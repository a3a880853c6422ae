// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpq

import (
	"encoding/binary"
	"hash/crc32"
)

const (
	attributesVersion   = 100
	attributesFlagCRC32 = 0x00000001
)

// Attributes is the parsed (attributes) member. CRC32 holds one IEEE
// checksum per block table entry when the CRC32 flag is set.
type Attributes struct {
	Version uint32
	Flags   uint32
	CRC32   []uint32
}

// Attributes reads the (attributes) member. It returns nil, nil when the
// archive has none.
func (a *Archive) Attributes() (*Attributes, error) {
	if !a.HasFile(AttributesName) {
		return nil, nil
	}
	data, err := a.ReadFile(AttributesName)
	if err != nil {
		return nil, err
	}

	attrs, err := parseAttributes(data, len(a.res.blockTable))
	if err != nil {
		return nil, a.fail("attributes", err)
	}
	return attrs, nil
}

func parseAttributes(data []byte, blockCount int) (*Attributes, error) {
	if len(data) < 8 {
		return nil, newError(ErrKindFormat, nil, "attributes too small: %d bytes", len(data))
	}

	attrs := &Attributes{
		Version: binary.LittleEndian.Uint32(data[0:4]),
		Flags:   binary.LittleEndian.Uint32(data[4:8]),
	}
	if attrs.Version != attributesVersion {
		return nil, newError(ErrKindFormat, nil, "unsupported attributes version %d", attrs.Version)
	}

	if attrs.Flags&attributesFlagCRC32 != 0 {
		need := 8 + 4*blockCount
		if len(data) < need {
			return nil, newError(ErrKindFormat, nil, "attributes truncated: %d bytes, want %d", len(data), need)
		}
		attrs.CRC32 = make([]uint32, blockCount)
		for i := range attrs.CRC32 {
			attrs.CRC32[i] = binary.LittleEndian.Uint32(data[8+4*i:])
		}
	}
	return attrs, nil
}

// VerifyFile compares the CRC32 of the extracted member against the
// (attributes) table. It returns nil when no checksum is recorded.
func (a *Archive) VerifyFile(name string) error {
	attrs, err := a.Attributes()
	if err != nil || attrs == nil {
		return err
	}

	entry, _, ok := a.lookup(name)
	if !ok {
		return a.fail("verify", newError(ErrKindNotFound, nil, "file not found: %s", name))
	}
	if int(entry.BlockIndex) >= len(attrs.CRC32) || attrs.CRC32[entry.BlockIndex] == 0 {
		return nil
	}

	data, err := a.ReadFile(name)
	if err != nil {
		return err
	}
	want := attrs.CRC32[entry.BlockIndex]
	if got := crc32.ChecksumIEEE(data); got != want {
		return a.fail("verify", newError(ErrKindFormat, nil, "%s: crc32 0x%08X, want 0x%08X", name, got, want))
	}
	return nil
}
