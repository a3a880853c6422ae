// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpq

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/suprsokr/d2mpq/internal/format"
)

// Archive is a read-only session over one MPQ file. The zero value is a
// closed archive ready for Open. An Archive is not safe for concurrent use.
type Archive struct {
	cfg     config
	res     *resources // nil while closed
	lastErr string
}

// resources is everything acquired by Open and released by Close.
type resources struct {
	file       *os.File
	path       string
	size       int64
	header     Header
	hashTable  []format.HashEntry
	blockTable []format.BlockEntry
	names      map[uint32]string
	maxSize    uint32
	log        *slog.Logger
}

// FileInfo describes one member of an archive.
type FileInfo struct {
	Name             string `json:"name"`
	BlockIndex       uint32 `json:"blockIndex"`
	CompressedSize   uint32 `json:"compressedSize"`
	UncompressedSize uint32 `json:"uncompressedSize"`
	Flags            uint32 `json:"flags"`
	Locale           uint16 `json:"locale"`
	Platform         uint16 `json:"platform"`
}

// Compressed reports whether the member is imploded or compressed.
func (fi FileInfo) Compressed() bool {
	return fi.Flags&(FileCompress|FileImplode) != 0
}

// Encrypted reports whether the member is encrypted.
func (fi FileInfo) Encrypted() bool {
	return fi.Flags&FileEncrypted != 0
}

// New returns a closed archive configured with opts.
func New(opts ...Option) *Archive {
	return &Archive{cfg: newConfig(opts)}
}

// Open opens the archive at path for reading.
func Open(path string, opts ...Option) (*Archive, error) {
	a := New(opts...)
	if err := a.Open(path); err != nil {
		return nil, err
	}
	return a, nil
}

// Open loads the header, both tables and the listing of the archive at path.
// An archive that is already open is closed first.
func (a *Archive) Open(path string) error {
	if err := a.Close(); err != nil {
		a.cfg.log().Debug("close before reopen failed", "path", a.Path(), "error", err)
	}

	res, err := openResources(path, &a.cfg)
	if err != nil {
		return a.fail("open", err)
	}

	a.res = res
	a.lastErr = ""
	return nil
}

func openResources(path string, cfg *config) (*resources, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, newError(ErrKindIO, err, "file not found: %s", path)
		}
		return nil, newError(ErrKindIO, err, "open file")
	}

	res, err := loadResources(file, path, cfg)
	if err != nil {
		file.Close()
		return nil, err
	}
	return res, nil
}

func loadResources(file *os.File, path string, cfg *config) (*resources, error) {
	stat, err := file.Stat()
	if err != nil {
		return nil, newError(ErrKindIO, err, "stat file")
	}

	header, err := readArchiveHeader(file)
	if err != nil {
		return nil, err
	}

	hashWords, err := readTableWords(file, stat.Size(), "hash table", header.HashTableOffset, header.HashTableEntries)
	if err != nil {
		return nil, err
	}
	blockWords, err := readTableWords(file, stat.Size(), "block table", header.BlockTableOffset, header.BlockTableEntries)
	if err != nil {
		return nil, err
	}

	archiveSize := header.ArchiveSize
	if archiveSize == 0 {
		archiveSize = uint32(min(stat.Size(), int64(^uint32(0))))
	}

	log := cfg.log()
	hashTable, hashSource := chooseHashTable(hashWords, header.BlockTableEntries)
	blockTable, blockSource := chooseBlockTable(blockWords, archiveSize)
	log.Debug("loaded tables",
		"path", path,
		"hashEntries", len(hashTable),
		"hashTable", hashSource.String(),
		"blockEntries", len(blockTable),
		"blockTable", blockSource.String())

	res := &resources{
		file:       file,
		path:       path,
		size:       stat.Size(),
		header:     header,
		hashTable:  hashTable,
		blockTable: blockTable,
		maxSize:    cfg.maxFileSize,
		log:        log,
	}
	res.resolveNames(cfg.listfile)

	return res, nil
}

// Close releases the file handle and forgets every table. Closing a closed
// archive is a no-op.
func (a *Archive) Close() error {
	if a.res == nil {
		return nil
	}
	err := a.res.file.Close()
	a.res = nil
	if err != nil {
		return a.fail("close", newError(ErrKindIO, err, "close file"))
	}
	return nil
}

// IsOpen reports whether the archive holds an open file.
func (a *Archive) IsOpen() bool {
	return a.res != nil
}

// Path returns the path of the open archive, or "" when closed.
func (a *Archive) Path() string {
	if a.res == nil {
		return ""
	}
	return a.res.path
}

// Header returns a copy of the archive header.
func (a *Archive) Header() Header {
	if a.res == nil {
		return Header{}
	}
	return a.res.header
}

// LastError returns the message of the most recent failure, or "" when the
// last Open succeeded and nothing has failed since.
func (a *Archive) LastError() string {
	return a.lastErr
}

func (a *Archive) fail(op string, err error) error {
	e := withOp(op, err)
	a.lastErr = e.Error()
	return e
}

// ListFiles returns every member whose hash entry points at an existing
// block. Members missing from the listing are named Unknown_<index>.
func (a *Archive) ListFiles() []FileInfo {
	if a.res == nil {
		return nil
	}
	r := a.res

	var files []FileInfo
	for _, entry := range r.hashTable {
		if entry.BlockIndex >= uint32(len(r.blockTable)) {
			continue
		}
		block := r.blockTable[entry.BlockIndex]
		if block.Flags&FileExists == 0 {
			continue
		}

		name, ok := r.names[entry.BlockIndex]
		if !ok {
			name = fmt.Sprintf("Unknown_%d", entry.BlockIndex)
		}
		files = append(files, FileInfo{
			Name:             name,
			BlockIndex:       entry.BlockIndex,
			CompressedSize:   block.PackedSize,
			UncompressedSize: block.UnpackedSize,
			Flags:            block.Flags,
			Locale:           entry.Locale,
			Platform:         entry.Platform,
		})
	}
	return files
}

// MatchFiles returns the listed members whose names match the doublestar
// pattern. Matching is case-insensitive and treats '\' and '/' alike.
func (a *Archive) MatchFiles(pattern string) ([]FileInfo, error) {
	pattern = matchKey(pattern)
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}

	var matched []FileInfo
	for _, fi := range a.ListFiles() {
		if ok, _ := doublestar.Match(pattern, matchKey(fi.Name)); ok {
			matched = append(matched, fi)
		}
	}
	return matched, nil
}

func matchKey(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "\\", "/"))
}

// HasFile reports whether name maps to a block of the archive.
func (a *Archive) HasFile(name string) bool {
	if a.res == nil {
		return false
	}
	_, ok := a.res.findEntry(name)
	return ok
}

// FileInfo is reserved for per-member metadata lookup. It currently reports
// nothing; use ListFiles.
func (a *Archive) FileInfo(name string) (FileInfo, bool) {
	return FileInfo{}, false
}

// ReadFile returns the unpacked contents of the named member.
func (a *Archive) ReadFile(name string) ([]byte, error) {
	if a.res == nil {
		return nil, a.fail("read", ErrClosed)
	}
	data, err := a.res.readFile(name)
	if err != nil {
		a.res.log.Debug("read failed", "path", a.res.path, "name", name, "error", err)
		return nil, a.fail("read", err)
	}
	return data, nil
}

// ExtractFile writes the named member to destPath, creating parent
// directories as needed.
func (a *Archive) ExtractFile(name, destPath string) error {
	data, err := a.ReadFile(name)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return a.fail("extract", newError(ErrKindIO, err, "create directory"))
	}
	if err := os.WriteFile(destPath, data, 0644); err != nil {
		return a.fail("extract", newError(ErrKindIO, err, "write file"))
	}
	return nil
}

// lookup returns the hash and block entries of name.
func (a *Archive) lookup(name string) (format.HashEntry, format.BlockEntry, bool) {
	if a.res == nil {
		return format.HashEntry{}, format.BlockEntry{}, false
	}
	entry, ok := a.res.findEntry(name)
	if !ok {
		return format.HashEntry{}, format.BlockEntry{}, false
	}
	return entry, a.res.blockTable[entry.BlockIndex], true
}

// findEntry probes the hash table for name, starting at its offset hash and
// stopping at the first empty slot.
func (r *resources) findEntry(name string) (format.HashEntry, bool) {
	size := uint32(len(r.hashTable))
	if size == 0 {
		return format.HashEntry{}, false
	}

	keys := hashName(name)
	start := keys.offset % size
	for i := uint32(0); i < size; i++ {
		entry := r.hashTable[(start+i)%size]
		if entry.BlockIndex == format.HashEmpty {
			break
		}
		if entry.BlockIndex == format.HashDeleted {
			continue
		}
		if entry.NameA == keys.nameA && entry.NameB == keys.nameB && entry.BlockIndex < uint32(len(r.blockTable)) {
			return entry, true
		}
	}
	return format.HashEntry{}, false
}

// readFile locates, reads and decodes one member.
func (r *resources) readFile(name string) ([]byte, error) {
	entry, ok := r.findEntry(name)
	if !ok {
		return nil, newError(ErrKindNotFound, nil, "file not found: %s", name)
	}
	block := r.blockTable[entry.BlockIndex]
	if block.Flags&FileExists == 0 {
		return nil, newError(ErrKindNotFound, nil, "file not found: %s", name)
	}
	if block.Flags&FileEncrypted != 0 {
		return nil, newError(ErrKindCompression, nil, "encrypted files are not supported: %s", name)
	}
	if r.maxSize > 0 && block.UnpackedSize > r.maxSize {
		return nil, newError(ErrKindCompression, nil,
			"%s: unpacked size %d exceeds limit %d", name, block.UnpackedSize, r.maxSize)
	}

	end := int64(block.FilePos) + int64(block.PackedSize)
	if end > r.size {
		return nil, newError(ErrKindIO, nil,
			"%s: data extends past end of file (offset %d, size %d)", name, block.FilePos, block.PackedSize)
	}

	raw := make([]byte, block.PackedSize)
	if _, err := r.file.ReadAt(raw, int64(block.FilePos)); err != nil {
		return nil, newError(ErrKindIO, err, "read file data: %s", name)
	}

	var data []byte
	var err error
	if block.Flags&FileSingleUnit != 0 || block.Flags&(FileCompress|FileImplode) == 0 {
		data, err = decodeUnit(raw, block.Flags, block.UnpackedSize)
	} else {
		data, err = decodeSectors(raw, block.Flags, block.UnpackedSize, r.header.SectorSize())
	}
	if err != nil {
		return nil, newError(ErrKindCompression, err, "decode %s", name)
	}
	return data, nil
}
