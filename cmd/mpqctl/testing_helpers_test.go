// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/suprsokr/d2mpq/internal/mpqtest"
)

var (
	weaponsTxt = bytes.Repeat([]byte("name\ttype\tcode\r\nHand Axe\thax\thax\r\n"), 30)
	armorTxt   = bytes.Repeat([]byte("name\tac\r\nQuilted Armor\t8\r\n"), 30)
)

// testArchive writes a small game-like archive and returns its path.
func testArchive(t *testing.T, dir, name string) string {
	t.Helper()
	return mpqtest.New(
		mpqtest.Member{Name: "data\\global\\excel\\weapons.txt", Data: weaponsTxt, Codec: mpqtest.Zlib},
		mpqtest.Member{Name: "data\\global\\excel\\armor.txt", Data: armorTxt, Codec: mpqtest.PKWare},
		mpqtest.Member{Name: "data\\global\\sfx\\click.wav", Data: []byte("RIFF"), Codec: mpqtest.Stored},
	).Write(t, dir, name)
}

// resetFlags restores every global flag to its default.
func resetFlags() {
	verbose, quiet, jsonOut = false, false, false
	listfilePath = ""
	listMatch = ""
	extractOutput, extractMatch, extractJobs = ".", "", 4
}

// captureOutput redirects stdout and stderr while running fn.
func captureOutput(t *testing.T, fn func() error) (string, string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	origOut, origErr := stdout, stderr
	stdout, stderr = &out, &errOut
	defer func() {
		stdout, stderr = origOut, origErr
	}()

	err := fn()
	return out.String(), errOut.String(), err
}

// decodeJSON unmarshals output into v, failing the test on invalid JSON.
func decodeJSON(t *testing.T, output string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(output), v); err != nil {
		t.Fatalf("invalid JSON output: %v\nOutput: %s", err, output)
	}
}
