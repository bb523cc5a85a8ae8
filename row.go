package anontable

import (
	"slices"
)

// Row is an ordered sequence of cells. A cell's column is its position.
//
// Cells are never removed: table indices hold coordinates into the row. Once
// a row is registered its table is told about every structural change and
// either re-indexes the row or, when the table freezes registered rows,
// refuses inserts anywhere but the end.
type Row struct {
	cells []Cell
	owner *Table
	index int
}

func NewRow() *Row {
	return &Row{}
}

func NewRowWithCapacity(n int) *Row {
	return &Row{cells: make([]Cell, 0, n)}
}

func (r *Row) Len() int { return len(r.cells) }
func (r *Row) Cap() int { return cap(r.cells) }

// Index returns the row's position in its table, if registered.
func (r *Row) Index() (int, bool) {
	if r.owner == nil {
		return -1, false
	}
	return r.index, true
}

func (r *Row) TypeIDs() []TypeID {
	ids := make([]TypeID, len(r.cells))
	for i := range r.cells {
		ids[i] = r.cells[i].id
	}
	return ids
}

func (r *Row) TypeIDAt(col int) (TypeID, bool) {
	if col < 0 || col >= len(r.cells) {
		return 0, false
	}
	return r.cells[col].id, true
}

// Cell returns the cell at col. The pointer is valid until the next
// structural change of the row.
func (r *Row) Cell(col int) (*Cell, bool) {
	if col < 0 || col >= len(r.cells) {
		return nil, false
	}
	return &r.cells[col], true
}

func (r *Row) errIndex() int {
	if r.owner == nil {
		return -1
	}
	return r.index
}

// Push appends v as a new cell and returns r for chaining.
func Push[T any](r *Row, v T) *Row {
	r.cells = append(r.cells, newCell(v))
	if r.owner != nil {
		r.owner.cellAppended(r)
	}
	return r
}

// Insert places v at col, shifting the cells at col and after it one column
// to the right. col may equal Len, which appends.
func Insert[T any](r *Row, v T, col int) error {
	if col < 0 || col > len(r.cells) {
		return rangeErrf(r.errIndex(), col, len(r.cells), ErrColumnOutOfRange)
	}
	if col == len(r.cells) {
		Push(r, v)
		return nil
	}
	if r.owner != nil {
		if err := r.owner.checkShift(r, col); err != nil {
			return err
		}
	}
	r.cells = slices.Insert(r.cells, col, newCell(v))
	if r.owner != nil {
		r.owner.reindexRow(r)
	}
	return nil
}

// ExchangeAt stores v at col and returns the previous value. It fails if col
// is out of range or holds a different type; the row is unchanged then.
func ExchangeAt[T any](r *Row, v T, col int) (T, error) {
	if col < 0 || col >= len(r.cells) {
		var zero T
		return zero, rangeErrf(r.errIndex(), col, len(r.cells), ErrColumnOutOfRange)
	}
	return CellExchange(&r.cells[col], v)
}

// GetAt returns a pointer to the T stored at col, or false if col is out of
// range or holds anything other than a T. Writes through the pointer update
// the cell.
func GetAt[T any](r *Row, col int) (*T, bool) {
	if col < 0 || col >= len(r.cells) {
		return nil, false
	}
	p, err := CellRef[T](&r.cells[col])
	if err != nil {
		return nil, false
	}
	return p, true
}

// ValueAt is GetAt returning a copy.
func ValueAt[T any](r *Row, col int) (T, bool) {
	p, ok := GetAt[T](r, col)
	if !ok {
		var zero T
		return zero, false
	}
	return *p, true
}

// GetAtUnchecked skips the identity check. The caller must know col holds a
// T; it panics if col is out of range or T does not fit the cell's layout.
func GetAtUnchecked[T any](r *Row, col int) *T {
	return CellRefUnchecked[T](&r.cells[col])
}
