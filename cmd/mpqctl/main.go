// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

// Command mpqctl inspects and extracts Diablo II MPQ archives.
package main

func main() {
	execute()
}
