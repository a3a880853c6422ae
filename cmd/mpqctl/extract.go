// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	extractOutput string
	extractMatch  string
	extractJobs   int
)

func init() {
	cmd := newExtractCmd()
	cmd.Flags().StringVarP(&extractOutput, "output", "o", ".", "Destination directory")
	cmd.Flags().StringVarP(&extractMatch, "match", "m", "", "Only extract members matching a glob")
	cmd.Flags().IntVarP(&extractJobs, "jobs", "j", 4, "Archives extracted in parallel")
	rootCmd.AddCommand(cmd)
}

func newExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <archive>...",
		Short: "Extract members to disk",
		Long: `The extract command writes every named member of one or more archives
under the output directory, turning '\' separators into directories. With
several archives each one gets its own subdirectory named after the archive.
Members without a name (missing from the listfile) are skipped.

Example:
  mpqctl extract d2data.mpq -o out
  mpqctl extract d2data.mpq d2exp.mpq patch_d2.mpq -o out --jobs 3
  mpqctl extract d2data.mpq -o out --match 'data/global/excel/*.txt'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd.Context(), args)
		},
	}
}

type extractStats struct {
	extracted atomic.Int64
	skipped   atomic.Int64
	failed    atomic.Int64
}

func runExtract(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var stats extractStats
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(extractJobs, 1))

	for _, path := range args {
		dest := extractOutput
		if len(args) > 1 {
			dest = filepath.Join(extractOutput, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
		}
		eg.Go(func() error {
			return extractArchive(ctx, path, dest, &stats)
		})
	}

	err := eg.Wait()

	if jsonOut {
		if jerr := printJSON(map[string]any{
			"extracted": stats.extracted.Load(),
			"skipped":   stats.skipped.Load(),
			"failed":    stats.failed.Load(),
		}); jerr != nil && err == nil {
			err = jerr
		}
	} else {
		printInfo("Extracted %d file(s), skipped %d, failed %d\n",
			stats.extracted.Load(), stats.skipped.Load(), stats.failed.Load())
	}

	if err != nil {
		return err
	}
	if n := stats.failed.Load(); n > 0 {
		return fmt.Errorf("%d file(s) could not be extracted", n)
	}
	return nil
}

func extractArchive(ctx context.Context, path, dest string, stats *extractStats) error {
	archive, err := openArchive(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	defer archive.Close()

	files, err := selectFiles(archive, extractMatch)
	if err != nil {
		return err
	}

	log := logger().With("archive", path)
	for _, fi := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !archive.HasFile(fi.Name) {
			// Synthetic Unknown_<n> names cannot be looked up.
			stats.skipped.Add(1)
			continue
		}

		target, ok := memberPath(dest, fi.Name)
		if !ok {
			log.Warn("skipping unsafe member name", "name", fi.Name)
			stats.skipped.Add(1)
			continue
		}
		if err := archive.ExtractFile(fi.Name, target); err != nil {
			log.Warn("extract failed", "name", fi.Name, "error", err)
			stats.failed.Add(1)
			continue
		}
		printVerbose("%s -> %s\n", fi.Name, target)
		stats.extracted.Add(1)
	}
	return nil
}

// memberPath maps an archive name onto dest. Names that would escape dest
// are rejected.
func memberPath(dest, name string) (string, bool) {
	rel := filepath.FromSlash(strings.ReplaceAll(name, "\\", "/"))
	if !filepath.IsLocal(rel) {
		return "", false
	}
	return filepath.Join(dest, rel), true
}
