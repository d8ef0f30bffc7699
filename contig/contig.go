// Copyright ©2020 the trawl authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package contig maintains the per-contig records extracted from an
// alignment report, joins them against a trace list and ranks and
// filters the joined set.
package contig

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"trawl/blast"
)

// Record describes one assembled contig extracted from the report.
// ReadCount and ReadIDs are zero until a trace list entry is joined.
type Record struct {
	ID        int
	Desc      string
	Length    int
	Identity  float64
	ReadCount int
	ReadIDs   []string
}

// Index holds contig records keyed by id, preserving the order in
// which the ids were first seen in the report.
type Index struct {
	ids  []int
	recs map[int]*Record
}

// NewIndex returns an empty Index.
func NewIndex() *Index {
	return &Index{recs: make(map[int]*Record)}
}

// Add inserts r into the index, returning false if a record with the
// same id is already present. The first record for an id wins.
func (x *Index) Add(r *Record) bool {
	if _, ok := x.recs[r.ID]; ok {
		return false
	}
	x.recs[r.ID] = r
	x.ids = append(x.ids, r.ID)
	return true
}

// Get returns the record for id, or nil if it is not indexed.
func (x *Index) Get(id int) *Record { return x.recs[id] }

// IDs returns the indexed ids in first-seen order. The returned slice
// is shared with the index and must not be mutated.
func (x *Index) IDs() []int { return x.ids }

// Len returns the number of indexed records.
func (x *Index) Len() int { return len(x.ids) }

var leadingID = regexp.MustCompile(`\d+`)

// ParseID extracts the leading integer id from a contig or hit name,
// returning the text following the id and whether an id was found.
func ParseID(name string) (id int, rest string, ok bool) {
	loc := leadingID.FindStringIndex(name)
	if loc == nil {
		return 0, "", false
	}
	id, err := strconv.Atoi(name[loc[0]:loc[1]])
	if err != nil {
		return 0, "", false
	}
	return id, name[loc[1]:], true
}

var (
	trailingJunk = regexp.MustCompile(`\W+$`)
	junkRun      = regexp.MustCompile(`\W+`)
)

// sanitize strips trailing non-word characters from a hit description
// and collapses internal non-word runs to a single underscore.
func sanitize(desc string) string {
	desc = trailingJunk.ReplaceAllString(strings.TrimSpace(desc), "")
	return junkRun.ReplaceAllString(desc, "_")
}

// FromReport reads a pairwise report from r and returns an Index of
// the hits whose name contains search, comparing case-insensitively.
// Hits sharing an id with an already indexed hit are dropped. An empty
// result is an error; the pipeline has nothing to work on.
func FromReport(r io.Reader, search string) (*Index, error) {
	search = strings.ToLower(search)
	x := NewIndex()
	sc := blast.NewScanner(r)
	for sc.Next() {
		h := sc.Hit()
		if !strings.Contains(strings.ToLower(h.Name), search) {
			continue
		}
		id, rest, ok := ParseID(h.Name)
		if !ok {
			continue
		}
		x.Add(&Record{
			ID:       id,
			Desc:     sanitize(rest),
			Length:   h.Length,
			Identity: h.Identity,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if x.Len() == 0 {
		return nil, fmt.Errorf("no hits matching %q in report", search)
	}
	return x, nil
}

// traceLine matches a trace list row: contig id, read count and the
// read id list as the opaque remainder of the line.
var traceLine = regexp.MustCompile(`^\s*(\d+)\s+(\d+)\s+(\S.*)$`)

// Join reads a trace list from r, skipping the header line, and fills
// in ReadCount and ReadIDs for each indexed contig named by a row.
// Rows naming unindexed contigs are ignored and rows that do not match
// the three-field shape are skipped; truncated trace files are common
// and must not abort a run. Join reports the number of rows joined,
// skipped as malformed, and seen in total.
func Join(x *Index, r io.Reader) (matched, skipped, total int, err error) {
	sc := bufio.NewScanner(r)
	// A row lists every read id backing its contig, so deeply covered
	// contigs overrun the default token limit.
	sc.Buffer(make([]byte, 0, 1<<16), 1<<24)
	header := true
	for sc.Scan() {
		if header {
			header = false
			continue
		}
		total++
		m := traceLine.FindStringSubmatch(sc.Text())
		if m == nil {
			skipped++
			continue
		}
		id, err := strconv.Atoi(m[1])
		if err != nil {
			skipped++
			continue
		}
		rec := x.Get(id)
		if rec == nil {
			continue
		}
		n, err := strconv.Atoi(m[2])
		if err != nil {
			skipped++
			continue
		}
		rec.ReadCount = n
		rec.ReadIDs = strings.Split(strings.TrimRight(m[3], " \t\r"), ", ")
		matched++
	}
	return matched, skipped, total, sc.Err()
}

// SortKey names the record field used to order the table.
type SortKey int

const (
	ByReadCount SortKey = iota
	ByLength
	ByIdentity
)

// ParseSortKey returns the SortKey named by s.
func ParseSortKey(s string) (SortKey, error) {
	switch s {
	case "reads":
		return ByReadCount, nil
	case "length":
		return ByLength, nil
	case "ident":
		return ByIdentity, nil
	}
	return 0, fmt.Errorf("invalid sort key: %q", s)
}

func (k SortKey) value(r *Record) float64 {
	switch k {
	case ByLength:
		return float64(r.Length)
	case ByIdentity:
		return r.Identity
	default:
		return float64(r.ReadCount)
	}
}

// RankFilter orders the indexed ids descending on the field named by
// key, ties keeping first-seen report order, and partitions them into
// the relevant set, contigs backed by at least minReads reads with at
// least minIdent percent identity, and the rest.
func RankFilter(x *Index, key SortKey, minReads int, minIdent float64) (relevant, other []int) {
	ids := make([]int, len(x.ids))
	copy(ids, x.ids)
	sort.SliceStable(ids, func(i, j int) bool {
		return key.value(x.Get(ids[i])) > key.value(x.Get(ids[j]))
	})
	for _, id := range ids {
		r := x.Get(id)
		if r.ReadCount >= minReads && r.Identity >= minIdent {
			relevant = append(relevant, id)
		} else {
			other = append(other, id)
		}
	}
	return relevant, other
}

// ReadOwners inverts the read id lists of the relevant contigs into a
// read id to contig id mapping. A read id listed under more than one
// contig is owned by the first contig in ranked order; later claims
// are counted as conflicts.
func ReadOwners(x *Index, relevant []int) (owners map[string]int, conflicts int) {
	owners = make(map[string]int)
	for _, id := range relevant {
		for _, rid := range x.Get(id).ReadIDs {
			if _, ok := owners[rid]; ok {
				conflicts++
				continue
			}
			owners[rid] = id
		}
	}
	return owners, conflicts
}

// Summary holds aggregate statistics over a set of contigs.
type Summary struct {
	MeanIdentity   float64
	MedianIdentity float64
	MeanReads      float64
	MedianReads    float64
}

// Summarize returns aggregate identity and read depth statistics for
// the given contig ids.
func Summarize(x *Index, ids []int) Summary {
	if len(ids) == 0 {
		return Summary{}
	}
	idents := make([]float64, len(ids))
	counts := make([]float64, len(ids))
	for i, id := range ids {
		r := x.Get(id)
		idents[i] = r.Identity
		counts[i] = float64(r.ReadCount)
	}
	s := Summary{
		MeanIdentity: stat.Mean(idents, nil),
		MeanReads:    stat.Mean(counts, nil),
	}
	sort.Float64s(idents)
	sort.Float64s(counts)
	s.MedianIdentity = stat.Quantile(0.5, stat.Empirical, idents, nil)
	s.MedianReads = stat.Quantile(0.5, stat.Empirical, counts, nil)
	return s
}
