// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	mpq "github.com/suprsokr/d2mpq"
)

func init() {
	rootCmd.AddCommand(newHashCmd())
}

func newHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash <name>...",
		Short: "Print the StormHash values of member names",
		Long: `The hash command prints the four StormHash channels of each name: the
hash table offset, the two name checks and the file key.

Example:
  mpqctl hash '(listfile)'
  mpqctl hash data/global/excel/weapons.txt --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHash(args)
		},
	}
}

type nameHashes struct {
	Name        string `json:"name"`
	TableOffset string `json:"tableOffset"`
	NameA       string `json:"nameA"`
	NameB       string `json:"nameB"`
	FileKey     string `json:"fileKey"`
}

func hashesOf(name string) nameHashes {
	hex := func(ch mpq.HashChannel) string {
		return fmt.Sprintf("0x%08X", mpq.HashString(name, ch))
	}
	return nameHashes{
		Name:        name,
		TableOffset: hex(mpq.HashTableOffset),
		NameA:       hex(mpq.HashNameA),
		NameB:       hex(mpq.HashNameB),
		FileKey:     hex(mpq.HashFileKey),
	}
}

func runHash(args []string) error {
	hashes := make([]nameHashes, 0, len(args))
	for _, name := range args {
		hashes = append(hashes, hashesOf(name))
	}

	if jsonOut {
		return printJSON(hashes)
	}

	for _, h := range hashes {
		printInfo("%s\n", h.Name)
		printInfo("  offset:  %s\n", h.TableOffset)
		printInfo("  name A:  %s\n", h.NameA)
		printInfo("  name B:  %s\n", h.NameB)
		printInfo("  key:     %s\n", h.FileKey)
	}
	return nil
}
