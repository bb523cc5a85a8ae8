package anontable

import (
	"slices"
)

// Reindex rebuilds the type index from row storage.
func (t *Table) Reindex() {
	t.locations = t.buildLocations()
	t.logger.Debug("anontable: reindexed table", "rows", len(t.rows), "types", len(t.locations))
}

func (t *Table) buildLocations() map[TypeID][]Coord {
	locs := make(map[TypeID][]Coord)
	for ri, row := range t.rows {
		for col := range row.cells {
			id := row.cells[col].id
			locs[id] = append(locs[id], Coord{ri, col})
		}
	}
	return locs
}

// Verify checks every index against row storage and returns an
// *IndexCorruptionError describing the first disagreement.
func (t *Table) Verify() error {
	for ri, row := range t.rows {
		if row.owner != t || row.index != ri {
			return corruptionErrf("row", "", Coord{ri, -1}, "row claims index %d", row.index)
		}
	}

	want := t.buildLocations()
	ids := make([]TypeID, 0, len(want)+len(t.locations))
	for id := range want {
		ids = append(ids, id)
	}
	for id, locs := range t.locations {
		if _, ok := want[id]; !ok && len(locs) > 0 {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	for _, id := range ids {
		have, expected := t.locations[id], want[id]
		for i := 0; i < max(len(have), len(expected)); i++ {
			switch {
			case i >= len(have):
				return corruptionErrf("type", id.String(), expected[i], "coordinate not indexed")
			case i >= len(expected):
				return corruptionErrf("type", id.String(), have[i], "stale coordinate")
			case have[i] != expected[i]:
				return corruptionErrf("type", id.String(), have[i], "expected %v", expected[i])
			}
		}
	}

	for i, v := range t.names {
		if v > len(t.rows) {
			return corruptionErrf("name", RowName(i).String(), Coord{v - 1, -1}, "named row beyond %d rows", len(t.rows))
		}
	}

	for _, tag := range t.tags.tags() {
		for _, ind := range t.tags.rows(tag) {
			if int(ind) >= len(t.rows) {
				return corruptionErrf("tag", tag.String(), Coord{int(ind), -1}, "tagged row beyond %d rows", len(t.rows))
			}
		}
	}
	return nil
}
