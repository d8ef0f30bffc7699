// Copyright ©2020 the trawl authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package blast provides reading of NCBI BLAST pairwise text reports
// and construction of blastn invocations.
package blast

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Hit is a single database hit from a pairwise report. Length and
// Identity are taken from the hit's first high-scoring pair; the
// identity percentage is the report's own rounded value.
type Hit struct {
	Name     string
	Length   int
	Identity float64
}

var identities = regexp.MustCompile(`Identities = (\d+)/(\d+) \((\d+(?:\.\d+)?)%\)`)

// A Scanner reads hits sequentially from a pairwise report stream.
// Hits that have a header but no high-scoring pair are dropped.
type Scanner struct {
	s   *bufio.Scanner
	hit Hit
	err error
}

// NewScanner returns a Scanner reading from r.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{s: bufio.NewScanner(r)}
}

// Next advances the Scanner to the next hit, returning false when the
// stream is exhausted or an error occurs.
func (sc *Scanner) Next() bool {
	if sc.err != nil {
		return false
	}
	defer handlePanic(&sc.err)

	// Hit names may wrap over several lines; the wrapped block ends
	// at the subject Length line or at a blank line.
	var (
		name     string
		inHeader bool
	)
	for sc.s.Scan() {
		line := sc.s.Text()
		switch {
		case strings.HasPrefix(line, ">"):
			name = strings.TrimSpace(line[1:])
			inHeader = true
		case inHeader:
			t := strings.TrimSpace(line)
			if t == "" || strings.HasPrefix(t, "Length") {
				inHeader = false
				continue
			}
			name += " " + t
		case name != "":
			m := identities.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			sc.hit = Hit{
				Name:     name,
				Length:   mustAtoi(m[2]),
				Identity: mustAtof(m[3]),
			}
			return true
		}
	}
	sc.err = sc.s.Err()
	return false
}

// Hit returns the current hit.
func (sc *Scanner) Hit() Hit { return sc.hit }

// Err returns the first error encountered by the Scanner.
func (sc *Scanner) Err() error { return sc.err }

func handlePanic(err *error) {
	r := recover()
	if r != nil {
		switch r := r.(type) {
		case error:
			*err = r
		default:
			panic(r)
		}
	}
}

func mustAtoi(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		panic(err)
	}
	return i
}

func mustAtof(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		panic(err)
	}
	return f
}
