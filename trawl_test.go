// Copyright ©2020 the trawl authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"trawl/contig"
)

const reportText = `BLASTN 2.2.26 [Sep-21-2011]

>00042  Pseudomonas phage gh-1, complete genome
          Length = 37359

 Score =  580 bits (300), Expect = e-163
 Identities = 300/300 (100%)
`

const traceText = `Contig	Reads	ReadIDs
42	15	read1, read2
`

const readsFasta = `>read1
ACGTACGTACGTACGT
>read2
GGGGCCCCGGGGCCCC
>read9
TTTTTTTTTTTTTTTT
`

const contigsFasta = `>contig00042 length=300
ACGTACGTACGTACGTACGTACGT
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	err := ioutil.WriteFile(path, []byte(content), 0644)
	if err != nil {
		t.Fatalf("failed to write %q: %v", name, err)
	}
	return path
}

func testConfig(t *testing.T, dir string) config {
	t.Helper()
	return config{
		report:   writeFile(t, dir, "report.txt", reportText),
		taxon:    "phage gh-1",
		trace:    writeFile(t, dir, "trace.txt", traceText),
		reads:    writeFile(t, dir, "reads.fa", readsFasta),
		contigs:  writeFile(t, dir, "contigs.fa", contigsFasta),
		minReads: 10,
		minIdent: 100,
		key:      contig.ByReadCount,
		backup:   true,
		table:    filepath.Join(dir, "table.txt"),
		dir:      dir,
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	c := testConfig(t, dir)
	var console bytes.Buffer
	c.console = &console

	err := run(c)
	if err != nil {
		t.Fatalf("unexpected error from run: %v", err)
	}

	table, err := ioutil.ReadFile(c.table)
	if err != nil {
		t.Fatalf("failed to read table: %v", err)
	}
	if !bytes.Equal(table, console.Bytes()) {
		t.Error("table file and console output differ")
	}
	if !strings.Contains(string(table), "42\tPseudomonas_phage_gh_1_complete_genome\t300\t100\t15\tread1 read2\n") {
		t.Errorf("missing relevant row in table:\n%s", table)
	}

	out, err := ioutil.ReadFile(filepath.Join(dir, "Contig42.fas"))
	if err != nil {
		t.Fatalf("failed to read contig output: %v", err)
	}
	got := string(out)
	records := strings.Count(got, ">")
	if records != 3 {
		t.Errorf("unexpected record count in Contig42.fas: got %d want 3\n%s", records, got)
	}
	r1 := strings.Index(got, "read1")
	r2 := strings.Index(got, "read2")
	ct := strings.Index(got, "contig00042")
	if r1 < 0 || r2 < 0 || ct < 0 || !(r1 < r2 && r2 < ct) {
		t.Errorf("records missing or out of order in Contig42.fas:\n%s", got)
	}
	if strings.Contains(got, "read9") {
		t.Errorf("non-member read in Contig42.fas:\n%s", got)
	}
}

func TestRunImpossibleIdentity(t *testing.T) {
	dir := t.TempDir()
	c := testConfig(t, dir)
	c.minIdent = 101

	err := run(c)
	if err != nil {
		t.Fatalf("unexpected error from run: %v", err)
	}

	table, err := ioutil.ReadFile(c.table)
	if err != nil {
		t.Fatalf("failed to read table: %v", err)
	}
	if strings.Count(string(table), "\n") != 1 {
		t.Errorf("unexpected relevant rows in table:\n%s", table)
	}
	matches, err := filepath.Glob(filepath.Join(dir, "Contig*.fas"))
	if err != nil {
		t.Fatalf("failed to glob outputs: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("unexpected contig outputs: %v", matches)
	}
}

func TestRunBacksUpExisting(t *testing.T) {
	dir := t.TempDir()
	c := testConfig(t, dir)
	writeFile(t, dir, "Contig42.fas", "old run content\n")

	err := run(c)
	if err != nil {
		t.Fatalf("unexpected error from run: %v", err)
	}

	bak, err := ioutil.ReadFile(filepath.Join(dir, "Contig42.fas.bak"))
	if err != nil {
		t.Fatalf("failed to read backup: %v", err)
	}
	if string(bak) != "old run content\n" {
		t.Errorf("unexpected backup content: %q", bak)
	}
	out, err := ioutil.ReadFile(filepath.Join(dir, "Contig42.fas"))
	if err != nil {
		t.Fatalf("failed to read contig output: %v", err)
	}
	if strings.Contains(string(out), "old run") {
		t.Errorf("old content in new output:\n%s", out)
	}
}

func TestRunMissingOptionalSources(t *testing.T) {
	dir := t.TempDir()
	c := testConfig(t, dir)
	c.reads = ""
	c.contigs = ""

	err := run(c)
	if err != nil {
		t.Fatalf("unexpected error from run without sequence sources: %v", err)
	}
	if _, err := os.Stat(c.table); err != nil {
		t.Errorf("table not written: %v", err)
	}
	matches, _ := filepath.Glob(filepath.Join(dir, "Contig*.fas"))
	if len(matches) != 0 {
		t.Errorf("unexpected contig outputs: %v", matches)
	}
}

func TestRunEmptyReport(t *testing.T) {
	dir := t.TempDir()
	c := testConfig(t, dir)
	c.taxon = "no such taxon"

	err := run(c)
	if err == nil {
		t.Fatal("expected error for search matching no hits")
	}
	if _, statErr := os.Stat(c.table); !os.IsNotExist(statErr) {
		t.Error("table written despite empty report parse")
	}
}
