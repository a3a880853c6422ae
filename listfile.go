// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpq

import (
	"strings"
)

// parseListfile splits a listing into names. Lines end in "\n" with an
// optional "\r"; blank lines are skipped.
func parseListfile(data []byte) []string {
	var names []string
	for line := range strings.SplitSeq(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		names = append(names, line)
	}
	return names
}

// resolveNames builds the block index to name map from the archive's own
// (listfile) and any external names. A missing or unreadable listing only
// leaves members with synthetic names.
func (r *resources) resolveNames(extra []string) {
	r.names = make(map[uint32]string)

	// Reserved members never list themselves.
	for _, name := range []string{ListfileName, AttributesName, SignatureName} {
		r.addName(name)
	}

	listed := 0
	if data, err := r.readFile(ListfileName); err == nil {
		for _, name := range parseListfile(data) {
			if r.addName(name) {
				listed++
			}
		}
	} else {
		r.log.Debug("listfile unavailable, using synthetic names", "path", r.path, "error", err)
	}

	external := 0
	for _, name := range extra {
		if r.addName(name) {
			external++
		}
	}

	r.log.Debug("resolved names", "path", r.path, "listed", listed, "external", external, "total", len(r.names))
}

// addName records name if it resolves to a block.
func (r *resources) addName(name string) bool {
	entry, ok := r.findEntry(name)
	if !ok {
		return false
	}
	r.names[entry.BlockIndex] = name
	return true
}
