package anontable

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
)

type Options struct {
	// Logger receives debug events; slog.Default() when nil.
	Logger *slog.Logger

	// InitialCapacity preallocates room for this many rows.
	InitialCapacity int

	// FreezeRegisteredRows makes registered rows append-only: Insert before
	// the last column fails with ErrRowFrozen instead of re-indexing.
	FreezeRegisteredRows bool
}

// Table is an append-only collection of rows plus three indices: type
// identity to cell coordinates, row name to row, and tag to rows.
//
// Rows keep their index forever. The type index is kept in sync with every
// structural change of a registered row, so its coordinates never go stale.
//
// A Table has a single owner; it does no locking.
type Table struct {
	rows      []*Row
	locations map[TypeID][]Coord // each list sorted by (row, column)
	names     [256]int           // row index + 1, 0 if unbound
	tags      tagIndex
	logger    *slog.Logger
	freeze    bool
}

func New(opt Options) *Table {
	t := &Table{
		locations: make(map[TypeID][]Coord),
		logger:    opt.Logger,
		freeze:    opt.FreezeRegisteredRows,
	}
	if t.logger == nil {
		t.logger = slog.Default()
	}
	if opt.InitialCapacity > 0 {
		t.rows = make([]*Row, 0, opt.InitialCapacity)
	}
	return t
}

func (t *Table) Len() int { return len(t.rows) }
func (t *Table) Cap() int { return cap(t.rows) }

func (t *Table) Reserve(n int) {
	t.rows = slices.Grow(t.rows, n)
}

// Clear drops every row and every index, names and tags included. Dropped
// rows are detached and may be registered again.
func (t *Table) Clear() {
	for _, row := range t.rows {
		row.owner, row.index = nil, 0
	}
	n := len(t.rows)
	clear(t.rows)
	t.rows = t.rows[:0]
	clear(t.locations)
	t.names = [256]int{}
	t.tags.reset()
	t.logger.Debug("anontable: cleared", "rows", n)
}

//
// Adding
//

// RegisterRow appends row and indexes its cells. The table takes ownership;
// registering a row that already belongs to a table panics.
func (t *Table) RegisterRow(row *Row) int {
	idx := t.register(row)
	t.logger.Debug("anontable: registered row", "row", idx, "cells", row.Len())
	return idx
}

// RegisterNamedRow is RegisterRow plus binding name. A previous row bound to
// name stays in the table but is no longer reachable by name.
func (t *Table) RegisterNamedRow(row *Row, name RowName) int {
	idx := t.register(row)
	prev := t.bindName(name, idx)
	t.logger.Debug("anontable: registered row", "row", idx, "cells", row.Len(), "name", name, "rebound_from", prev)
	return idx
}

func (t *Table) RegisterTaggedRow(row *Row, tag Tag) int {
	idx := t.register(row)
	t.tags.add(tag, idx)
	t.logger.Debug("anontable: registered row", "row", idx, "cells", row.Len(), "tag", tag)
	return idx
}

func (t *Table) RegisterNamedTaggedRow(row *Row, name RowName, tag Tag) int {
	idx := t.register(row)
	prev := t.bindName(name, idx)
	t.tags.add(tag, idx)
	t.logger.Debug("anontable: registered row", "row", idx, "cells", row.Len(), "name", name, "rebound_from", prev, "tag", tag)
	return idx
}

// PushRow is RegisterRow for chaining.
func (t *Table) PushRow(row *Row) *Table {
	t.RegisterRow(row)
	return t
}

func (t *Table) register(row *Row) int {
	if row.owner != nil {
		if row.owner == t {
			panic(fmt.Errorf("anontable: row %d is already registered in this table", row.index))
		}
		panic(fmt.Errorf("anontable: row is registered in another table at index %d", row.index))
	}
	idx := len(t.rows)
	if uint64(idx) > math.MaxUint32 {
		panic(fmt.Errorf("anontable: too many rows"))
	}
	for col := range row.cells {
		id := row.cells[col].id
		t.locations[id] = append(t.locations[id], Coord{idx, col})
	}
	row.owner, row.index = t, idx
	t.rows = append(t.rows, row)
	return idx
}

// bindName returns the previously bound row index, or -1.
func (t *Table) bindName(name RowName, idx int) int {
	prev := t.names[name] - 1
	t.names[name] = idx + 1
	return prev
}

// InsertAt inserts v into an existing row at the given coordinates.
func InsertAt[T any](t *Table, v T, at Coord) error {
	if at.Row < 0 || at.Row >= len(t.rows) {
		return rangeErrf(at.Row, -1, len(t.rows), ErrRowOutOfRange)
	}
	return Insert(t.rows[at.Row], v, at.Column)
}

//
// Structural changes of registered rows
//

func (t *Table) checkShift(row *Row, col int) error {
	if !t.freeze {
		return nil
	}
	t.logger.Debug("anontable: rejected insert into frozen row", "row", row.index, "column", col, "cells", row.Len())
	return rangeErrf(row.index, col, row.Len(), ErrRowFrozen)
}

// cellAppended indexes the last cell of row. Later rows may already be
// indexed, so the coordinate goes to its sorted position.
func (t *Table) cellAppended(row *Row) {
	col := len(row.cells) - 1
	id := row.cells[col].id
	coord := Coord{row.index, col}
	locs := t.locations[id]
	i, _ := slices.BinarySearchFunc(locs, coord, Coord.Compare)
	t.locations[id] = slices.Insert(locs, i, coord)
}

// reindexRow replaces every coordinate of row in the type index with ones
// derived from the row's current cells. Cells are never removed, so the ids
// present now cover every list that referenced the row before.
func (t *Table) reindexRow(row *Row) {
	byID := make(map[TypeID][]Coord)
	for col := range row.cells {
		id := row.cells[col].id
		byID[id] = append(byID[id], Coord{row.index, col})
	}
	for id, fresh := range byID {
		locs := t.locations[id]
		lo, _ := slices.BinarySearchFunc(locs, Coord{row.index, 0}, Coord.Compare)
		hi, _ := slices.BinarySearchFunc(locs, Coord{row.index + 1, 0}, Coord.Compare)
		t.locations[id] = slices.Replace(locs, lo, hi, fresh...)
	}
	t.logger.Debug("anontable: reindexed row", "row", row.index, "cells", row.Len(), "types", len(byID))
}

//
// Getting
//

// Row returns the row at position i, regardless of names.
func (t *Table) Row(i int) (*Row, bool) {
	if i < 0 || i >= len(t.rows) {
		return nil, false
	}
	return t.rows[i], true
}

func (t *Table) NamedRow(name RowName) (*Row, bool) {
	v := t.names[name]
	if v == 0 || v > len(t.rows) {
		return nil, false
	}
	return t.rows[v-1], true
}

// TaggedRows returns the rows registered under tag in registration order, or
// nil if tag was never used.
func (t *Table) TaggedRows(tag Tag) ([]*Row, error) {
	inds := t.tags.rows(tag)
	if inds == nil {
		return nil, nil
	}
	rows := make([]*Row, 0, len(inds))
	for _, ind := range inds {
		if int(ind) >= len(t.rows) {
			return nil, corruptionErrf("tag", tag.String(), Coord{int(ind), -1}, "tagged row beyond %d rows", len(t.rows))
		}
		rows = append(rows, t.rows[ind])
	}
	return rows, nil
}

// AllOfType returns every T in the table ordered by (row, column), or nil if
// no T was ever registered.
func AllOfType[T any](t *Table) ([]*T, error) {
	id := TypeIDOf[T]()
	locs := t.locations[id]
	if len(locs) == 0 {
		return nil, nil
	}
	vals := make([]*T, 0, len(locs))
	for _, loc := range locs {
		if loc.Row < 0 || loc.Row >= len(t.rows) {
			return nil, corruptionErrf("type", id.String(), loc, "row beyond %d rows", len(t.rows))
		}
		p, ok := GetAt[T](t.rows[loc.Row], loc.Column)
		if !ok {
			return nil, corruptionErrf("type", id.String(), loc, "cell missing or of another type")
		}
		vals = append(vals, p)
	}
	return vals, nil
}

// TypeLocations returns a copy of the coordinates indexed for id.
func (t *Table) TypeLocations(id TypeID) []Coord {
	return slices.Clone(t.locations[id])
}

// TypeIDs returns every indexed identity in ascending order.
func (t *Table) TypeIDs() []TypeID {
	ids := make([]TypeID, 0, len(t.locations))
	for id, locs := range t.locations {
		if len(locs) > 0 {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// Names returns the bound names in ascending order.
func (t *Table) Names() []RowName {
	var result []RowName
	for i, v := range t.names {
		if v != 0 {
			result = append(result, RowName(i))
		}
	}
	return result
}

func (t *Table) Tags() []Tag {
	return t.tags.tags()
}
