package anontable

type TableStats struct {
	Rows  int
	Cells int
	Types int // distinct identities in the type index

	Names      int
	Tags       int
	TagPosts   int     // row memberships across all tags
	WidestRow  int
	InlineSize uintptr // sum of payload sizes
}

func (ts *TableStats) AvgRowWidth() float64 {
	if ts.Rows == 0 {
		return 0
	}
	return float64(ts.Cells) / float64(ts.Rows)
}

func (t *Table) Stats() TableStats {
	result := TableStats{
		Rows:     len(t.rows),
		Types:    len(t.TypeIDs()),
		Names:    len(t.Names()),
		Tags:     len(t.tags.tags()),
		TagPosts: t.tags.postings(),
	}
	for _, row := range t.rows {
		result.Cells += len(row.cells)
		result.WidestRow = max(result.WidestRow, len(row.cells))
		for col := range row.cells {
			result.InlineSize += row.cells[col].size
		}
	}
	return result
}
