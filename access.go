package anontable

import (
	"cmp"
	"strconv"
)

// Coord addresses a cell by row and column.
type Coord struct {
	Row    int
	Column int
}

func At(row, column int) Coord {
	return Coord{row, column}
}

func (c Coord) String() string {
	return "(" + strconv.Itoa(c.Row) + ", " + strconv.Itoa(c.Column) + ")"
}

func (c Coord) Compare(o Coord) int {
	if r := cmp.Compare(c.Row, o.Row); r != 0 {
		return r
	}
	return cmp.Compare(c.Column, o.Column)
}

// RowName binds to at most one row; the latest registration wins.
type RowName uint8

func (n RowName) String() string { return "name" + strconv.Itoa(int(n)) }

// Tag groups any number of rows in registration order.
type Tag uint8

func (t Tag) String() string { return "tag" + strconv.Itoa(int(t)) }
