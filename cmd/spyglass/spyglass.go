// Copyright ©2020 the trawl authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// spyglass renders a length against identity scatter plot of the
// contigs in a trawl summary table, sizing points by read depth.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	in     = flag.String("in", "table.txt", "file name of a trawl table to be plotted")
	format = flag.String("format", "svg", "output format of the plot: eps, jpg, jpeg, pdf, png, svg, and tiff")
)

func validFormat(f string) bool {
	for _, s := range []string{"eps", "jpg", "jpeg", "pdf", "png", "svg", "tiff"} {
		if f == s {
			return true
		}
	}
	return false
}

type row struct {
	length float64
	ident  float64
	reads  float64
}

func main() {
	flag.Parse()
	if *in == "" || !validFormat(*format) {
		flag.Usage()
		os.Exit(1)
	}

	rows, err := readTable(*in)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if len(rows) == 0 {
		fmt.Fprintf(os.Stderr, "no contig rows in %q\n", *in)
		os.Exit(1)
	}

	xys := make(plotter.XYs, len(rows))
	for i, r := range rows {
		xys[i].X = r.length
		xys[i].Y = r.ident
	}
	s, err := plotter.NewScatter(xys)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	s.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		g := plotter.DefaultGlyphStyle
		g.Radius = vg.Points(2 + math.Sqrt(rows[i].reads))
		return g
	}

	p, err := plot.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	p.Title.Text = filepath.Base(*in)
	p.X.Label.Text = "alignment length (bp)"
	p.Y.Label.Text = "percent identity"
	p.Add(s)

	err = p.Save(15*vg.Centimeter, 10*vg.Centimeter, filepath.Base(*in)+"."+*format)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// readTable reads the contig rows of a trawl table, both the relevant
// section and the trailing other section if it is present.
func readTable(in string) ([]row, error) {
	f, err := os.Open(in)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []row
	sc := bufio.NewScanner(f)
	// Relevant rows carry the full read id list and can be far longer
	// than the default token limit.
	sc.Buffer(make([]byte, 0, 1<<16), 1<<24)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 5 {
			continue
		}
		if _, err := strconv.Atoi(fields[0]); err != nil {
			// Section header.
			continue
		}
		length, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("bad length in row %q: %v", fields[0], err)
		}
		ident, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return nil, fmt.Errorf("bad identity in row %q: %v", fields[0], err)
		}
		reads, err := strconv.ParseFloat(fields[4], 64)
		if err != nil {
			return nil, fmt.Errorf("bad read count in row %q: %v", fields[0], err)
		}
		rows = append(rows, row{length: length, ident: ident, reads: reads})
	}
	return rows, sc.Err()
}
