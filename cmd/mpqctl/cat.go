// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newCatCmd())
}

func newCatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat <archive> <name>",
		Short: "Write one member to stdout",
		Long: `The cat command writes the unpacked contents of a member to stdout.

Example:
  mpqctl cat d2data.mpq 'data\global\excel\weapons.txt'
  mpqctl cat d2data.mpq data/global/excel/armor.txt | head`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCat(args)
		},
	}
}

func runCat(args []string) error {
	archive, err := openArchive(args[0])
	if err != nil {
		return err
	}
	defer archive.Close()

	data, err := archive.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("failed to read member: %w", err)
	}
	_, err = stdout.Write(data)
	return err
}
