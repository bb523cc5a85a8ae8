package anontable

import (
	"fmt"
	"reflect"
	"strconv"
	"sync"
)

// TypeID is the runtime identity of a storable concrete type.
type TypeID uint16

const (
	// OptionalTypeIDOffset is added to T's identity to form Optional[T]'s.
	OptionalTypeIDOffset TypeID = 100

	// FirstDynamicTypeID is where automatic allocation starts; ids below it
	// are left to builtins and to types implementing Anonymous.
	FirstDynamicTypeID TypeID = 1024

	// MaxDeclaredTypeID is the largest id a type may declare, so that the
	// declared id and its Optional id both stay below FirstDynamicTypeID.
	MaxDeclaredTypeID = FirstDynamicTypeID - OptionalTypeIDOffset - 1
)

// Anonymous is implemented by types that pick their own TypeID. The method
// is called on the zero value, so it must not depend on receiver state.
// Declared ids must not exceed MaxDeclaredTypeID.
//
// A pointer type only takes a declared id when the method has a pointer
// receiver; *T never inherits the id T declares.
type Anonymous interface {
	AnonymousTypeID() TypeID
}

type optionalType interface {
	optionalBaseTypeID() TypeID
}

var (
	anonymousInterface = reflect.TypeFor[Anonymous]()
	optionalInterface  = reflect.TypeFor[optionalType]()
)

var typeIDCache sync.Map // reflect.Type -> TypeID

var registry = struct {
	mu      sync.Mutex
	byID    map[TypeID]reflect.Type
	byType  map[reflect.Type]TypeID
	shadows map[TypeID]bool // Optional ids of allocated types, kept free
	next    TypeID
}{
	byID:    make(map[TypeID]reflect.Type),
	byType:  make(map[reflect.Type]TypeID),
	shadows: make(map[TypeID]bool),
	next:    FirstDynamicTypeID,
}

func init() {
	builtins := []struct {
		typ reflect.Type
		id  TypeID
	}{
		{reflect.TypeFor[int8](), 0},
		{reflect.TypeFor[int16](), 1},
		{reflect.TypeFor[int32](), 2},
		{reflect.TypeFor[int64](), 3},
		{reflect.TypeFor[complex128](), 4},
		{reflect.TypeFor[int](), 5},
		{reflect.TypeFor[uint8](), 6},
		{reflect.TypeFor[uint16](), 7},
		{reflect.TypeFor[uint32](), 8},
		{reflect.TypeFor[uint64](), 9},
		{reflect.TypeFor[uintptr](), 10},
		{reflect.TypeFor[uint](), 11},
		{reflect.TypeFor[float32](), 12},
		{reflect.TypeFor[float64](), 13},
		{reflect.TypeFor[string](), 14},
		{reflect.TypeFor[bool](), 15},
	}
	for _, b := range builtins {
		if err := bindTypeID(b.typ, b.id); err != nil {
			panic(err)
		}
	}
}

// TypeIDOf returns T's identity, registering T on first use. It panics with
// a *TypeIDCollisionError if T's declared or derived identity is already
// held by a different type, or if T declares an id above MaxDeclaredTypeID.
func TypeIDOf[T any]() TypeID {
	rt := reflect.TypeFor[T]()
	if v, ok := typeIDCache.Load(rt); ok {
		return v.(TypeID)
	}

	var zero T
	var err error
	if inheritsValueMethods(rt) {
		_, err = allocateTypeID(rt)
		if err != nil {
			panic(err)
		}
		return mustCachedTypeID(rt)
	}
	switch z := any(zero).(type) {
	case optionalType:
		base := z.optionalBaseTypeID()
		if uint32(base)+uint32(OptionalTypeIDOffset) > 0xFFFF {
			panic(fmt.Errorf("anontable: optional id for %v overflows: base id %d", rt, base))
		}
		err = bindTypeID(rt, base+OptionalTypeIDOffset)
	case Anonymous:
		err = bindDeclaredTypeID(rt, z.AnonymousTypeID())
	default:
		_, err = allocateTypeID(rt)
	}
	if err != nil {
		panic(err)
	}
	return mustCachedTypeID(rt)
}

// inheritsValueMethods reports whether rt is a pointer that only satisfies
// Anonymous or optionalType through its element's value methods. Calling
// those on a nil pointer would panic, and the id belongs to the element.
func inheritsValueMethods(rt reflect.Type) bool {
	if rt.Kind() != reflect.Pointer {
		return false
	}
	elem := rt.Elem()
	return elem.Implements(anonymousInterface) || elem.Implements(optionalInterface)
}

func mustCachedTypeID(rt reflect.Type) TypeID {
	v, _ := typeIDCache.Load(rt)
	return v.(TypeID)
}

// RegisterType binds T to id ahead of first use. Registering the same pair
// twice is a no-op. id must not exceed MaxDeclaredTypeID.
func RegisterType[T any](id TypeID) error {
	return bindDeclaredTypeID(reflect.TypeFor[T](), id)
}

func bindDeclaredTypeID(rt reflect.Type, id TypeID) error {
	if id > MaxDeclaredTypeID {
		return fmt.Errorf("%w: %v declares id %d, declared ids must not exceed %d", ErrTypeIDReserved, rt, id, MaxDeclaredTypeID)
	}
	return bindTypeID(rt, id)
}

// LookupType returns the type bound to id.
func LookupType(id TypeID) (reflect.Type, bool) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	rt, ok := registry.byID[id]
	return rt, ok
}

func bindTypeID(rt reflect.Type, id TypeID) error {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if bound, ok := registry.byType[rt]; ok {
		if bound == id {
			return nil
		}
		return &TypeIDCollisionError{ID: id, Type: rt, BoundID: bound}
	}
	if holder, ok := registry.byID[id]; ok {
		return &TypeIDCollisionError{ID: id, Type: rt, Existing: holder}
	}
	registry.byID[id] = rt
	registry.byType[rt] = id
	typeIDCache.Store(rt, id)
	return nil
}

// allocateTypeID hands out the lowest free dynamic id whose Optional id is
// also free, and keeps that Optional id out of later allocations.
func allocateTypeID(rt reflect.Type) (TypeID, error) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if bound, ok := registry.byType[rt]; ok {
		return bound, nil
	}
	for c := uint32(registry.next); c+uint32(OptionalTypeIDOffset) <= 0xFFFF; c++ {
		id := TypeID(c)
		if _, taken := registry.byID[id]; taken || registry.shadows[id] {
			continue
		}
		if _, taken := registry.byID[id+OptionalTypeIDOffset]; taken {
			continue
		}
		registry.byID[id] = rt
		registry.byType[rt] = id
		registry.shadows[id+OptionalTypeIDOffset] = true
		typeIDCache.Store(rt, id)
		registry.next = id + 1
		return id, nil
	}
	return 0, fmt.Errorf("anontable: type id space exhausted allocating %v", rt)
}

func (id TypeID) String() string {
	if rt, ok := LookupType(id); ok {
		return strconv.Itoa(int(id)) + "(" + rt.String() + ")"
	}
	return strconv.Itoa(int(id))
}

// Optional marks the optional presence of a T. Its identity is T's plus
// OptionalTypeIDOffset.
type Optional[T any] struct {
	value T
	valid bool
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, valid: true}
}

func None[T any]() Optional[T] {
	return Optional[T]{}
}

func (o Optional[T]) Get() (T, bool) {
	return o.value, o.valid
}

func (o Optional[T]) IsSome() bool { return o.valid }

func (o Optional[T]) OrElse(def T) T {
	if o.valid {
		return o.value
	}
	return def
}

func (Optional[T]) optionalBaseTypeID() TypeID {
	return TypeIDOf[T]()
}
