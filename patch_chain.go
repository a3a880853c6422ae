// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpq

import (
	"fmt"
	"strings"
)

// normalizeMpqPath maps a name to its lookup key: backslash separators,
// upper case, no doubled separators.
func normalizeMpqPath(path string) string {
	normalized := strings.ToUpper(strings.ReplaceAll(path, "/", "\\"))
	for strings.Contains(normalized, "\\\\") {
		normalized = strings.ReplaceAll(normalized, "\\\\", "\\")
	}
	return normalized
}

// PatchChain is a prioritized list of archives, such as d2data.mpq,
// d2exp.mpq and patch_d2.mpq. Later archives override earlier ones.
type PatchChain struct {
	archives []*Archive
	fileMap  map[string]int // normalized name -> archive index
}

// OpenPatchChain opens archives in order of increasing priority. The last
// path has the highest priority. Every option applies to each archive.
func OpenPatchChain(paths []string, opts ...Option) (*PatchChain, error) {
	archives := make([]*Archive, 0, len(paths))

	for _, path := range paths {
		archive, err := Open(path, opts...)
		if err != nil {
			for _, opened := range archives {
				_ = opened.Close()
			}
			return nil, fmt.Errorf("open archive %s: %w", path, err)
		}
		archives = append(archives, archive)
	}

	chain := &PatchChain{archives: archives}
	chain.rebuildFileMap()
	return chain, nil
}

// Close closes all archives in the chain and returns the first error.
func (p *PatchChain) Close() error {
	var firstErr error
	for _, archive := range p.archives {
		if err := archive.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ArchiveCount returns the number of archives in the chain.
func (p *PatchChain) ArchiveCount() int {
	return len(p.archives)
}

// HasFile reports whether the highest-priority archive holding name has a
// live copy of it. A deletion marker hides copies in earlier archives.
func (p *PatchChain) HasFile(name string) bool {
	_, err := p.resolve(name)
	return err == nil
}

// ReadFile returns the highest-priority version of name.
func (p *PatchChain) ReadFile(name string) ([]byte, error) {
	archive, err := p.resolve(name)
	if err != nil {
		return nil, err
	}
	return archive.ReadFile(name)
}

// ExtractFile writes the highest-priority version of name to destPath.
func (p *PatchChain) ExtractFile(name, destPath string) error {
	archive, err := p.resolve(name)
	if err != nil {
		return err
	}
	return archive.ExtractFile(name, destPath)
}

// ListFiles returns the union of resolved names across the chain, each once,
// in the spelling of the first archive that lists it.
func (p *PatchChain) ListFiles() []string {
	seen := make(map[string]struct{})
	var result []string
	for _, archive := range p.archives {
		for _, name := range archive.knownNames() {
			key := normalizeMpqPath(name)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			result = append(result, name)
		}
	}
	return result
}

// resolve finds the archive that serves name, using the name cache first and
// probing every archive from the highest priority down for names no listing
// mentions.
func (p *PatchChain) resolve(name string) (*Archive, error) {
	idx, ok := p.fileMap[normalizeMpqPath(name)]
	if !ok || !p.holds(idx, name) {
		idx = -1
		for i := len(p.archives) - 1; i >= 0; i-- {
			if p.holds(i, name) {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		return nil, newError(ErrKindNotFound, nil, "file not found in patch chain: %s", name)
	}

	_, block, _ := p.archives[idx].lookup(name)
	if block.Flags&FileDeleteMarker != 0 {
		return nil, newError(ErrKindNotFound, nil, "file marked for deletion in patch: %s", name)
	}
	return p.archives[idx], nil
}

// holds reports whether archive idx has an existing block for name.
func (p *PatchChain) holds(idx int, name string) bool {
	_, block, ok := p.archives[idx].lookup(name)
	return ok && block.Flags&FileExists != 0
}

// rebuildFileMap maps every name found in any listing to the highest-priority
// archive that holds it, listed there or not.
func (p *PatchChain) rebuildFileMap() {
	p.fileMap = make(map[string]int)
	for _, name := range p.ListFiles() {
		for i := len(p.archives) - 1; i >= 0; i-- {
			if p.holds(i, name) {
				p.fileMap[normalizeMpqPath(name)] = i
				break
			}
		}
	}
}

// knownNames returns the names the archive could resolve.
func (a *Archive) knownNames() []string {
	if a.res == nil {
		return nil
	}
	names := make([]string, 0, len(a.res.names))
	for _, fi := range a.ListFiles() {
		if name, ok := a.res.names[fi.BlockIndex]; ok {
			names = append(names, name)
		}
	}
	return names
}
