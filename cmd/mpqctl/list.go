// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	mpq "github.com/suprsokr/d2mpq"
)

var listMatch string

func init() {
	cmd := newListCmd()
	cmd.Flags().StringVarP(&listMatch, "match", "m", "", "Only list members matching a glob (e.g. 'data/global/excel/*.txt')")
	rootCmd.AddCommand(cmd)
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <archive>",
		Short: "List the members of an archive",
		Long: `The list command prints every member of an archive with its unpacked and
packed size. Members missing from the archive's listfile are shown as
Unknown_<block index>.

Example:
  mpqctl list d2data.mpq
  mpqctl list d2data.mpq --match 'data/global/excel/**'
  mpqctl list d2data.mpq --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(args)
		},
	}
}

func runList(args []string) error {
	archive, err := openArchive(args[0])
	if err != nil {
		return err
	}
	defer archive.Close()

	files, err := selectFiles(archive, listMatch)
	if err != nil {
		return err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	if jsonOut {
		return printJSON(map[string]any{
			"archive": args[0],
			"files":   files,
		})
	}

	for _, fi := range files {
		printInfo("%10d %10d %s %s\n", fi.UncompressedSize, fi.CompressedSize, flagString(fi), fi.Name)
	}
	printVerbose("%d member(s)\n", len(files))
	return nil
}

// selectFiles lists every member, or only those matching pattern.
func selectFiles(archive *mpq.Archive, pattern string) ([]mpq.FileInfo, error) {
	if pattern == "" {
		return archive.ListFiles(), nil
	}
	files, err := archive.MatchFiles(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to match files: %w", err)
	}
	return files, nil
}

// flagString renders the interesting block flags as a fixed-width column.
func flagString(fi mpq.FileInfo) string {
	b := []byte("----")
	if fi.Flags&mpq.FileCompress != 0 {
		b[0] = 'c'
	}
	if fi.Flags&mpq.FileImplode != 0 {
		b[0] = 'i'
	}
	if fi.Flags&mpq.FileEncrypted != 0 {
		b[1] = 'e'
	}
	if fi.Flags&mpq.FileSingleUnit != 0 {
		b[2] = 's'
	}
	if fi.Flags&mpq.FileDeleteMarker != 0 {
		b[3] = 'd'
	}
	return string(b)
}
