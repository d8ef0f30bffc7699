// Copyright ©2020 the trawl authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package extract materializes per-contig fasta files from large
// sequence sources in streaming passes.
package extract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
	"github.com/biogo/hts/bam"

	"trawl/contig"
)

// An Extractor appends sequence records to one output file per contig
// id. Each file is opened once for the run and written append-only so
// the reads pass and the contigs pass share a handle.
type Extractor struct {
	dir    string
	backup bool
	files  map[int]*os.File
}

// New returns an Extractor writing Contig<id>.fas files under dir.
// When backup is set a pre-existing output file is renamed to
// Contig<id>.fas.bak before its first write of the run; otherwise
// records are appended to the existing file.
func New(dir string, backup bool) *Extractor {
	return &Extractor{dir: dir, backup: backup, files: make(map[int]*os.File)}
}

func (e *Extractor) file(id int) (*os.File, error) {
	f, ok := e.files[id]
	if ok {
		return f, nil
	}
	name := filepath.Join(e.dir, fmt.Sprintf("Contig%d.fas", id))
	if e.backup {
		_, err := os.Stat(name)
		if err == nil {
			err = os.Rename(name, name+".bak")
			if err != nil {
				return nil, fmt.Errorf("failed to back up %q: %v", name, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	e.files[id] = f
	return f, nil
}

// Files returns the number of output files opened so far.
func (e *Extractor) Files() int { return len(e.files) }

// Close closes all output files opened during the run. It is safe to
// call Close more than once.
func (e *Extractor) Close() error {
	var first error
	for id, f := range e.files {
		if f == nil {
			continue
		}
		err := f.Close()
		e.files[id] = nil
		if err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Reads streams the raw reads at path, appending every record owned
// by a relevant contig to that contig's output file. The whole source
// is scanned; read membership carries no ordering guarantee. A path
// ending in .bam is read as unaligned BAM, otherwise as fasta.
func (e *Extractor) Reads(path string, owners map[string]int) (n int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	if strings.HasSuffix(path, ".bam") {
		return e.bamReads(f, owners)
	}

	sc := seqio.NewScanner(fasta.NewReader(f, linear.NewSeq("", nil, alphabet.DNA)))
	for sc.Next() {
		s := sc.Seq().(*linear.Seq)
		id, ok := owners[s.ID]
		if !ok {
			continue
		}
		err = e.append(id, s)
		if err != nil {
			return n, err
		}
		n++
	}
	return n, sc.Error()
}

func (e *Extractor) bamReads(f io.Reader, owners map[string]int) (n int, err error) {
	br, err := bam.NewReader(f, 0)
	if err != nil {
		return 0, err
	}
	defer br.Close()
	for {
		rec, err := br.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return n, err
		}
		id, ok := owners[rec.Name]
		if !ok {
			continue
		}
		s := linear.NewSeq(rec.Name, alphabet.BytesToLetters(rec.Seq.Expand()), alphabet.DNA)
		err = e.append(id, s)
		if err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Contigs streams the processed contigs fasta at path, appending each
// record whose leading integer id is in the relevant set to its output
// file. Contigs are expected once each, so the scan stops as soon as
// every relevant id has been seen.
func (e *Extractor) Contigs(path string, relevant []int) (n int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	pending := make(map[int]bool, len(relevant))
	for _, id := range relevant {
		pending[id] = true
	}

	sc := seqio.NewScanner(fasta.NewReader(f, linear.NewSeq("", nil, alphabet.DNA)))
	for sc.Next() {
		s := sc.Seq().(*linear.Seq)
		id, _, ok := contig.ParseID(s.ID)
		if !ok || !pending[id] {
			continue
		}
		err = e.append(id, s)
		if err != nil {
			return n, err
		}
		n++
		delete(pending, id)
		if len(pending) == 0 {
			break
		}
	}
	return n, sc.Error()
}

func (e *Extractor) append(id int, s *linear.Seq) error {
	f, err := e.file(id)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(f, "%60a\n", s)
	return err
}
