// Copyright ©2020 the trawl authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package blast

import (
	"errors"
	"os/exec"

	"github.com/biogo/external"
)

var ErrMissingRequired = errors.New("blast: missing required argument")

// BLASTN defines parameters for the blastn nucleotide search tool.
// The zero Format is never passed on the command line; blastn then
// defaults to the pairwise text report read by Scanner.
type BLASTN struct {
	// Usage: blastn -query query.fasta -db database [-options]
	//
	Cmd string `buildarg:"{{if .}}{{.}}{{else}}blastn{{end}}"` // blastn

	// Input options:
	Query string `buildarg:"{{if .}}-query{{split}}{{.}}{{end}}"` // -query: query fasta file
	DB    string `buildarg:"{{if .}}-db{{split}}{{.}}{{end}}"`    // -db: database name

	// Output options:
	Out    string `buildarg:"{{if .}}-out{{split}}{{.}}{{end}}"`    // -out: outfile (stdout if empty)
	Format int    `buildarg:"{{if .}}-outfmt{{split}}{{.}}{{end}}"` // -outfmt: non-zero to override the pairwise default

	// Search options:
	Task         string  `buildarg:"{{if .}}-task{{split}}{{.}}{{end}}"`            // -task: blastn/megablast/dc-megablast
	Evalue       float64 `buildarg:"{{if .}}-evalue{{split}}{{.}}{{end}}"`          // -evalue: expectation value threshold
	WordSize     int     `buildarg:"{{if .}}-word_size{{split}}{{.}}{{end}}"`       // -word_size
	PercIdentity float64 `buildarg:"{{if .}}-perc_identity{{split}}{{.}}{{end}}"`   // -perc_identity
	MaxTargets   int     `buildarg:"{{if .}}-max_target_seqs{{split}}{{.}}{{end}}"` // -max_target_seqs
	Descriptions int     `buildarg:"{{if .}}-num_descriptions{{split}}{{.}}{{end}}"` // -num_descriptions
	Alignments   int     `buildarg:"{{if .}}-num_alignments{{split}}{{.}}{{end}}"`  // -num_alignments
	Dust         string  `buildarg:"{{if .}}-dust{{split}}{{.}}{{end}}"`            // -dust: filter low complexity

	// Parallel search options:
	Procs int `buildarg:"{{if .}}-num_threads{{split}}{{.}}{{end}}"` // -num_threads
}

// BuildCommand returns an exec.Cmd built from the parameters in b.
func (b BLASTN) BuildCommand() (*exec.Cmd, error) {
	if b.Query == "" || b.DB == "" {
		return nil, ErrMissingRequired
	}
	cl := external.Must(external.Build(b))
	return exec.Command(cl[0], cl[1:]...), nil
}
