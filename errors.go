package anontable

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	ErrTypeMismatch     = errors.New("type mismatch")
	ErrLayoutMismatch   = errors.New("layout mismatch")
	ErrColumnOutOfRange = errors.New("column out of range")
	ErrRowOutOfRange    = errors.New("row out of range")
	ErrRowFrozen        = errors.New("row layout is frozen")
	ErrIndexCorrupted   = errors.New("index corrupted")
	ErrTypeIDCollision  = errors.New("type id collision")
	ErrTypeIDReserved   = errors.New("type id reserved")
)

// CellError reports a typed access that the cell refused.
type CellError struct {
	Stored    reflect.Type
	StoredID  TypeID
	Requested reflect.Type
	Err       error
}

func cellErr(c *Cell, requested reflect.Type, err error) error {
	return &CellError{c.typ, c.id, requested, err}
}

func (e *CellError) Unwrap() error {
	return e.Err
}

func (e *CellError) Error() string {
	return fmt.Sprintf("%v: cell holds %v (id %d), requested %v", e.Err, e.Stored, e.StoredID, e.Requested)
}

// RangeError reports a coordinate outside of the addressed row or table.
type RangeError struct {
	Row    int
	Column int // -1 when only a row was addressed
	Len    int
	Err    error
}

func rangeErrf(row, col, n int, err error) error {
	return &RangeError{row, col, n, err}
}

func (e *RangeError) Unwrap() error {
	return e.Err
}

func (e *RangeError) Error() string {
	if e.Column < 0 {
		return fmt.Sprintf("%v: row %d, table has %d rows", e.Err, e.Row, e.Len)
	}
	if e.Row < 0 {
		return fmt.Sprintf("%v: column %d, row has %d cells", e.Err, e.Column, e.Len)
	}
	return fmt.Sprintf("%v: row %d column %d, row has %d cells", e.Err, e.Row, e.Column, e.Len)
}

// IndexCorruptionError means a side index disagrees with row storage. Rows
// are never removed, so seeing one is a bug in index maintenance.
type IndexCorruptionError struct {
	Index string // "type", "name" or "tag"
	Key   string
	Coord Coord
	Msg   string
}

func corruptionErrf(index, key string, coord Coord, format string, args ...any) error {
	return &IndexCorruptionError{index, key, coord, fmt.Sprintf(format, args...)}
}

func (e *IndexCorruptionError) Unwrap() error {
	return ErrIndexCorrupted
}

func (e *IndexCorruptionError) Error() string {
	var buf strings.Builder
	buf.WriteString(ErrIndexCorrupted.Error())
	buf.WriteString(": ")
	buf.WriteString(e.Index)
	if e.Key != "" {
		buf.WriteByte('[')
		buf.WriteString(e.Key)
		buf.WriteByte(']')
	}
	buf.WriteString(" -> ")
	buf.WriteString(e.Coord.String())
	if e.Msg != "" {
		buf.WriteString(": ")
		buf.WriteString(e.Msg)
	}
	return buf.String()
}

// TypeIDCollisionError is returned (or panicked, for implicit registration)
// when two distinct types claim one identity, or one type claims two.
type TypeIDCollisionError struct {
	ID       TypeID
	Type     reflect.Type
	Existing reflect.Type // holder of ID, nil if the conflict is on Type
	BoundID  TypeID       // id Type is already bound to, when Existing is nil
}

func (e *TypeIDCollisionError) Unwrap() error {
	return ErrTypeIDCollision
}

func (e *TypeIDCollisionError) Error() string {
	if e.Existing != nil {
		return fmt.Sprintf("%v: id %d requested by %v is held by %v", ErrTypeIDCollision, e.ID, e.Type, e.Existing)
	}
	return fmt.Sprintf("%v: %v requested id %d but is bound to %d", ErrTypeIDCollision, e.Type, e.ID, e.BoundID)
}
