// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package main

import (
	"strings"

	"github.com/spf13/cobra"

	mpq "github.com/suprsokr/d2mpq"
)

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <archive>",
		Short: "Show header fields and member counts",
		Long: `The info command validates an archive header and reports its table sizes,
sector size and a summary of the members.

Example:
  mpqctl info d2data.mpq
  mpqctl info d2data.mpq --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(args)
		},
	}
}

type archiveInfo struct {
	Path              string `json:"path"`
	ArchiveSize       uint32 `json:"archiveSize"`
	FormatVersion     uint16 `json:"formatVersion"`
	SectorSize        uint32 `json:"sectorSize"`
	HashTableEntries  uint32 `json:"hashTableEntries"`
	BlockTableEntries uint32 `json:"blockTableEntries"`
	Files             int    `json:"files"`
	Named             int    `json:"named"`
	Compressed        int    `json:"compressed"`
	Encrypted         int    `json:"encrypted"`
	UnpackedBytes     uint64 `json:"unpackedBytes"`
	PackedBytes       uint64 `json:"packedBytes"`
	Attributes        bool   `json:"attributes"`
	Signed            bool   `json:"signed"`
}

func runInfo(args []string) error {
	archive, err := openArchive(args[0])
	if err != nil {
		return err
	}
	defer archive.Close()

	header := archive.Header()
	info := archiveInfo{
		Path:              args[0],
		ArchiveSize:       header.ArchiveSize,
		FormatVersion:     header.FormatVersion,
		SectorSize:        header.SectorSize(),
		HashTableEntries:  header.HashTableEntries,
		BlockTableEntries: header.BlockTableEntries,
		Attributes:        archive.HasFile(mpq.AttributesName),
		Signed:            archive.HasFile(mpq.SignatureName),
	}
	for _, fi := range archive.ListFiles() {
		info.Files++
		if !strings.HasPrefix(fi.Name, "Unknown_") {
			info.Named++
		}
		if fi.Compressed() {
			info.Compressed++
		}
		if fi.Encrypted() {
			info.Encrypted++
		}
		info.UnpackedBytes += uint64(fi.UncompressedSize)
		info.PackedBytes += uint64(fi.CompressedSize)
	}

	if jsonOut {
		return printJSON(info)
	}

	printInfo("\nArchive Information:\n")
	printInfo("  File: %s\n", info.Path)
	printInfo("  Archive size: %d bytes\n", info.ArchiveSize)
	printInfo("  Format version: %d\n", info.FormatVersion)
	printInfo("  Sector size: %d\n", info.SectorSize)
	printInfo("  Hash table: %d entries\n", info.HashTableEntries)
	printInfo("  Block table: %d entries\n", info.BlockTableEntries)
	printInfo("\nMembers:\n")
	printInfo("  Files: %d (%d named)\n", info.Files, info.Named)
	printInfo("  Compressed: %d\n", info.Compressed)
	printInfo("  Encrypted: %d\n", info.Encrypted)
	printInfo("  Unpacked: %d bytes, packed: %d bytes\n", info.UnpackedBytes, info.PackedBytes)
	printInfo("  Attributes: %t, signed: %t\n", info.Attributes, info.Signed)
	return nil
}
