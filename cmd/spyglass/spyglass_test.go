// Copyright ©2020 the trawl authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadTable(t *testing.T) {
	// A deeply covered contig's row carries thousands of read ids and
	// exceeds the default scanner token limit.
	ids := make([]string, 8000)
	for i := range ids {
		ids[i] = fmt.Sprintf("read%05d", i)
	}
	table := "Contig\tDescription\tLength\tIdentity\tReads\tReadIDs\n" +
		fmt.Sprintf("42\tPseudomonas_phage_gh_1\t300\t100\t%d\t%s\n", len(ids), strings.Join(ids, " ")) +
		"\nOther\tDescription\tLength\tIdentity\tReads\n" +
		"7\tEnterobacteria_phage_lambda\t500\t93\t20\n"

	path := filepath.Join(t.TempDir(), "table.txt")
	err := ioutil.WriteFile(path, []byte(table), 0644)
	if err != nil {
		t.Fatalf("failed to write table: %v", err)
	}

	rows, err := readTable(path)
	if err != nil {
		t.Fatalf("unexpected error reading table: %v", err)
	}
	want := []row{
		{length: 300, ident: 100, reads: float64(len(ids))},
		{length: 500, ident: 93, reads: 20},
	}
	if len(rows) != len(want) {
		t.Fatalf("unexpected row count: got %d want %d", len(rows), len(want))
	}
	for i, r := range rows {
		if r != want[i] {
			t.Errorf("unexpected row %d: got %+v want %+v", i, r, want[i])
		}
	}
}
