// Copyright ©2020 the trawl authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package contig

import (
	"fmt"
	"io"
	"strings"
)

// WriteTable writes the summary table for the ranked sets to w.
// Relevant rows carry the space-joined read id list; other rows, only
// written when includeOther is set, omit it to bound the table size.
func WriteTable(w io.Writer, x *Index, relevant, other []int, includeOther bool) error {
	_, err := fmt.Fprintln(w, "Contig\tDescription\tLength\tIdentity\tReads\tReadIDs")
	if err != nil {
		return err
	}
	for _, id := range relevant {
		r := x.Get(id)
		_, err = fmt.Fprintf(w, "%d\t%s\t%d\t%g\t%d\t%s\n",
			r.ID, r.Desc, r.Length, r.Identity, r.ReadCount, strings.Join(r.ReadIDs, " "))
		if err != nil {
			return err
		}
	}
	if !includeOther {
		return nil
	}
	_, err = fmt.Fprintln(w, "\nOther\tDescription\tLength\tIdentity\tReads")
	if err != nil {
		return err
	}
	for _, id := range other {
		r := x.Get(id)
		_, err = fmt.Fprintf(w, "%d\t%s\t%d\t%g\t%d\n",
			r.ID, r.Desc, r.Length, r.Identity, r.ReadCount)
		if err != nil {
			return err
		}
	}
	return nil
}
