// Copyright ©2020 the trawl authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// trawl scans a blast report for hits matching a taxon search string,
// joins the hits against an assembly trace list, filters the contigs
// by read depth and identity and writes a summary table and one fasta
// file per surviving contig holding the contig and its reads.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"

	"trawl/blast"
	"trawl/contig"
	"trawl/extract"
)

var (
	report  = flag.String("report", "", "input blast pairwise report file name (required)")
	taxon   = flag.String("taxon", "", "search string matched against hit names (required)")
	trace   = flag.String("trace", "", "input trace list file name (required)")
	reads   = flag.String("reads", "", "input raw reads fasta or bam file name")
	contigs = flag.String("contigs", "", "input processed contigs fasta file name")

	minReads = flag.Int("min-reads", 10, "minimum supporting read count for a relevant contig")
	minIdent = flag.Float64("min-ident", 100, "minimum percent identity for a relevant contig")
	sortKey  = flag.String("sort", "reads", "table sort key: reads, length or ident")
	all      = flag.Bool("all", false, "include non-relevant contigs in the table")
	noClob   = flag.Bool("no-overwrite", false, `append to existing contig files
    	instead of renaming them to .bak`,
	)

	tableFile = flag.String("out", "table.txt", "output table file name")
	logFile   = flag.String("log", "log.txt", "output log file name")

	runBlast  = flag.Bool("run-blast", false, "run blastn on -contigs against -db to produce -report")
	db        = flag.String("db", "", "blast database for -run-blast")
	blastPath = flag.String("blastn", "", "path to blastn if not in $PATH")
)

func main() {
	flag.Parse()
	if *report == "" || *taxon == "" || *trace == "" {
		fmt.Fprintln(os.Stderr, "invalid argument: must have report, taxon and trace set")
		flag.Usage()
		os.Exit(1)
	}
	if *runBlast && (*contigs == "" || *db == "") {
		fmt.Fprintln(os.Stderr, "invalid argument: -run-blast needs contigs and db set")
		flag.Usage()
		os.Exit(1)
	}
	key, err := contig.ParseSortKey(*sortKey)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(1)
	}

	lf, err := os.Create(*logFile)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer lf.Close()
	log.SetOutput(io.MultiWriter(os.Stderr, lf))

	err = run(config{
		report:   *report,
		taxon:    *taxon,
		trace:    *trace,
		reads:    *reads,
		contigs:  *contigs,
		minReads: *minReads,
		minIdent: *minIdent,
		key:      key,
		all:      *all,
		backup:   !*noClob,
		table:    *tableFile,
		dir:      ".",
		console:  os.Stdout,
		runBlast: *runBlast,
		db:       *db,
		blastn:   *blastPath,
	})
	if err != nil {
		log.Fatal(err)
	}
}

type config struct {
	report  string
	taxon   string
	trace   string
	reads   string
	contigs string

	minReads int
	minIdent float64
	key      contig.SortKey
	all      bool
	backup   bool

	table   string
	dir     string
	console io.Writer

	runBlast bool
	db       string
	blastn   string
}

func run(c config) error {
	if c.runBlast {
		log.Printf("running blastn on %q against %q", c.contigs, c.db)
		b := blast.BLASTN{
			Cmd: c.blastn,

			Query: c.contigs, DB: c.db,
			Out: c.report,
		}
		cmd, err := b.BuildCommand()
		if err != nil {
			return err
		}
		cmd.Stdout = os.Stderr
		cmd.Stderr = os.Stderr
		err = cmd.Run()
		if err != nil {
			return fmt.Errorf("failed blastn run: %v", err)
		}
	}

	log.Printf("searching for %q in %q", c.taxon, c.report)
	rf, err := os.Open(c.report)
	if err != nil {
		return fmt.Errorf("failed to open report: %v", err)
	}
	idx, err := contig.FromReport(rf, c.taxon)
	rf.Close()
	if err != nil {
		return err
	}
	log.Printf("indexed %d contigs from report", idx.Len())

	tf, err := os.Open(c.trace)
	if err != nil {
		return fmt.Errorf("failed to open trace list: %v", err)
	}
	matched, skipped, total, err := contig.Join(idx, tf)
	tf.Close()
	if err != nil {
		return fmt.Errorf("failed trace join: %v", err)
	}
	log.Printf("joined %d of %d trace lines (%d malformed skipped)", matched, total, skipped)

	relevant, other := contig.RankFilter(idx, c.key, c.minReads, c.minIdent)
	log.Printf("%d relevant and %d other contigs after filtering", len(relevant), len(other))
	if len(relevant) != 0 {
		s := contig.Summarize(idx, relevant)
		log.Printf("relevant set: identity mean %.2f median %.2f, reads mean %.1f median %.1f",
			s.MeanIdentity, s.MedianIdentity, s.MeanReads, s.MedianReads)
	}

	// Render once and write the same bytes to both sinks so the table
	// file and the console copy cannot drift.
	var buf bytes.Buffer
	err = contig.WriteTable(&buf, idx, relevant, other, c.all)
	if err != nil {
		return err
	}
	if c.console != nil {
		_, err = c.console.Write(buf.Bytes())
		if err != nil {
			return err
		}
	}
	err = ioutil.WriteFile(c.table, buf.Bytes(), 0644)
	if err != nil {
		return fmt.Errorf("failed to write table: %v", err)
	}

	if len(relevant) == 0 || (c.reads == "" && c.contigs == "") {
		return nil
	}

	ex := extract.New(c.dir, c.backup)
	defer ex.Close()
	if c.reads != "" {
		owners, conflicts := contig.ReadOwners(idx, relevant)
		if conflicts != 0 {
			log.Printf("%d reads claimed by multiple contigs; first ranked contig wins", conflicts)
		}
		n, err := ex.Reads(c.reads, owners)
		if err != nil {
			return fmt.Errorf("failed read extraction: %v", err)
		}
		log.Printf("extracted %d of %d member reads from %q", n, len(owners), c.reads)
	}
	if c.contigs != "" {
		n, err := ex.Contigs(c.contigs, relevant)
		if err != nil {
			return fmt.Errorf("failed contig extraction: %v", err)
		}
		log.Printf("extracted %d of %d contigs from %q", n, len(relevant), c.contigs)
	}
	log.Printf("wrote %d contig files", ex.Files())
	return ex.Close()
}
