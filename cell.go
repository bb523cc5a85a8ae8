package anontable

import (
	"reflect"
	"unsafe"
)

// Cell owns exactly one value whose static type has been erased. It records
// the identity, type token and layout of that value, and typed accessors
// refuse any request that does not match them.
type Cell struct {
	id    TypeID
	typ   reflect.Type
	size  uintptr
	align uintptr
	ptr   unsafe.Pointer
}

func NewCell[T any](v T) *Cell {
	c := newCell(v)
	return &c
}

func newCell[T any](v T) Cell {
	p := new(T)
	*p = v
	return Cell{
		id:    TypeIDOf[T](),
		typ:   reflect.TypeFor[T](),
		size:  unsafe.Sizeof(v),
		align: unsafe.Alignof(v),
		ptr:   unsafe.Pointer(p),
	}
}

func (c *Cell) TypeID() TypeID     { return c.id }
func (c *Cell) Type() reflect.Type { return c.typ }
func (c *Cell) Size() uintptr      { return c.size }
func (c *Cell) Align() uintptr     { return c.align }
func (c *Cell) Is(id TypeID) bool  { return c.id == id }
func (c *Cell) String() string     { return c.typ.String() }

// UnsafePointer exposes the payload slot. Nothing is checked; writes through
// it must keep the stored type.
func (c *Cell) UnsafePointer() unsafe.Pointer {
	return c.ptr
}

// Value returns a copy of the payload boxed in an interface.
func (c *Cell) Value() any {
	return reflect.NewAt(c.typ, c.ptr).Elem().Interface()
}

func fitsLayout[T any](c *Cell, exact bool) bool {
	var zero T
	size, align := unsafe.Sizeof(zero), unsafe.Alignof(zero)
	if exact {
		return size == c.size && align == c.align
	}
	return size <= c.size && align <= c.align
}

// CellRef returns a pointer to the payload as a T. Layout is verified first,
// then identity and the type token.
func CellRef[T any](c *Cell) (*T, error) {
	if !fitsLayout[T](c, true) {
		return nil, cellErr(c, reflect.TypeFor[T](), ErrLayoutMismatch)
	}
	if c.id != TypeIDOf[T]() || c.typ != reflect.TypeFor[T]() {
		return nil, cellErr(c, reflect.TypeFor[T](), ErrTypeMismatch)
	}
	return (*T)(c.ptr), nil
}

// CellRefUnchecked reinterprets the payload as a T without looking at the
// identity. It still panics with a *CellError if T would read past the
// allocation or needs stricter alignment than it has.
func CellRefUnchecked[T any](c *Cell) *T {
	if !fitsLayout[T](c, false) {
		panic(cellErr(c, reflect.TypeFor[T](), ErrLayoutMismatch))
	}
	return (*T)(c.ptr)
}

// CellWrite overwrites the payload in place.
func CellWrite[T any](c *Cell, v T) error {
	p, err := CellRef[T](c)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// CellExchange stores v and returns the previous payload.
func CellExchange[T any](c *Cell, v T) (T, error) {
	p, err := CellRef[T](c)
	if err != nil {
		var zero T
		return zero, err
	}
	old := *p
	*p = v
	return old, nil
}
