package anontable

import (
	"fmt"
	"strings"
)

type DumpFlags uint64

const (
	DumpTableHeaders = DumpFlags(1 << iota)
	DumpStats
	DumpRows
	DumpTypes
	DumpNames
	DumpTags

	DumpAll = DumpFlags(0xFFFFFFFFFFFFFFFF)
)

var (
	dumpSep1 = strings.Repeat("=", 80)
	dumpSep2 = strings.Repeat("-", 60)
)

func (f DumpFlags) Contains(v DumpFlags) bool {
	return (f & v) == v
}

// Dump renders the table and its indices for debugging. The format is for
// humans and may change.
func (t *Table) Dump(f DumpFlags) string {
	var buf strings.Builder
	s := t.Stats()

	if f.Contains(DumpTableHeaders) {
		fmt.Fprintln(&buf, dumpSep1)
		fmt.Fprintf(&buf, "table (%d rows)\n", s.Rows)
	}
	if f.Contains(DumpStats) {
		fmt.Fprintf(&buf, "stats: cells = %d, types = %d, names = %d, tags = %d, tag_posts = %d, widest_row = %d, inline_size = %d\n", s.Cells, s.Types, s.Names, s.Tags, s.TagPosts, s.WidestRow, s.InlineSize)
	}
	if f.Contains(DumpRows) {
		fmt.Fprintln(&buf, dumpSep2)
		for ri, row := range t.rows {
			t.dumpRow(&buf, ri, row)
		}
	}
	if f.Contains(DumpTypes) {
		fmt.Fprintln(&buf, dumpSep2)
		for _, id := range t.TypeIDs() {
			fmt.Fprintf(&buf, "type %v:", id)
			for _, loc := range t.locations[id] {
				fmt.Fprintf(&buf, " %v", loc)
			}
			buf.WriteByte('\n')
		}
	}
	if f.Contains(DumpNames) {
		fmt.Fprintln(&buf, dumpSep2)
		for _, name := range t.Names() {
			fmt.Fprintf(&buf, "%v => row %d\n", name, t.names[name]-1)
		}
	}
	if f.Contains(DumpTags) {
		fmt.Fprintln(&buf, dumpSep2)
		for _, tag := range t.tags.tags() {
			fmt.Fprintf(&buf, "%v => rows %v\n", tag, t.tags.rows(tag))
		}
	}
	return buf.String()
}

func (t *Table) dumpRow(w *strings.Builder, ri int, row *Row) {
	fmt.Fprintf(w, "row %d (%d cells)\n", ri, len(row.cells))
	for col := range row.cells {
		c := &row.cells[col]
		fmt.Fprintf(w, "  %d: %v = %#v\n", col, c.id, c.Value())
	}
}
