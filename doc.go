/*
Package anontable implements an in-memory table of type-erased cells.

A table is a list of rows; a row is a list of cells; a cell holds one value of
any concrete type. Rows need not share a shape. The table keeps three side
indices:

1. Types, mapping a TypeID to the coordinates of every cell of that type,
so that AllOfType can collect them across the whole table.

2. Names, binding each of 256 RowName values to at most one row.

3. Tags, attaching any number of rows to each of 256 Tag values.

# Technical Details

**Type identities.**
Every storable type has a TypeID. Builtin scalars have fixed ids below 16,
types implementing Anonymous declare their own (at most MaxDeclaredTypeID),
Optional[T] takes T's id plus OptionalTypeIDOffset, and everything else is
allocated on first use starting at FirstDynamicTypeID. The allocator keeps
each allocated id's Optional id free. A process-wide registry refuses to bind
one id to two types.

**Cells.**
A cell stores its payload in a slot allocated for exactly that type and
remembers the identity, reflect.Type, size and alignment. Checked access
(CellRef, GetAt and friends) validates all of them. Unchecked access skips the
identity but still refuses a type that would read past the slot.

**Coordinates.**
Rows are never removed and row indices never change. Columns can shift when a
cell is inserted into a registered row; the owning table then re-derives that
row's coordinates (or, with Options.FreezeRegisteredRows, refuses the insert),
so the type index never holds stale coordinates.

**Ownership.**
A Table is a single-owner structure and does no locking. The TypeID registry
is the only shared state and is safe for concurrent use.
*/
package anontable
