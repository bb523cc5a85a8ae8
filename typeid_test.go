package anontable

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type (
	declaredPoint struct{ X, Y int32 }
	declaredTwin  struct{ A int64 }
	declaredLate  struct{ B bool }
	autoWidget    struct{ Name string }
	autoGadget    struct{ Size int }
	explicitThing struct{ V float64 }
	pointerOnly   struct{ W uint16 }
	tooHigh       struct{ H int8 }
	shadowBase    struct{ S [3]byte }
	sharedThing   struct{ Q string }
)

func (declaredPoint) AnonymousTypeID() TypeID { return 500 }
func (declaredTwin) AnonymousTypeID() TypeID  { return 500 }
func (declaredLate) AnonymousTypeID() TypeID  { return 501 }
func (*pointerOnly) AnonymousTypeID() TypeID  { return 530 }
func (tooHigh) AnonymousTypeID() TypeID       { return 2000 }

func recoverError(t *testing.T, f func()) (err error) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected panic")
		e, ok := r.(error)
		require.True(t, ok, "panic value is %T, wanted error", r)
		err = e
	}()
	f()
	return nil
}

func TestTypeIDOf_builtins(t *testing.T) {
	assert.Equal(t, TypeID(0), TypeIDOf[int8]())
	assert.Equal(t, TypeID(2), TypeIDOf[int32]())
	assert.Equal(t, TypeID(5), TypeIDOf[int]())
	assert.Equal(t, TypeID(8), TypeIDOf[uint32]())
	assert.Equal(t, TypeID(13), TypeIDOf[float64]())
	assert.Equal(t, TypeID(14), TypeIDOf[string]())
	assert.Equal(t, TypeID(15), TypeIDOf[bool]())

	// byte and rune are aliases, so they share uint8's and int32's ids.
	assert.Equal(t, TypeIDOf[uint8](), TypeIDOf[byte]())
	assert.Equal(t, TypeIDOf[int32](), TypeIDOf[rune]())
}

func TestTypeIDOf_declared(t *testing.T) {
	assert.Equal(t, TypeID(500), TypeIDOf[declaredPoint]())
	assert.Equal(t, TypeID(500), TypeIDOf[declaredPoint](), "stable across calls")

	rt, ok := LookupType(500)
	require.True(t, ok)
	assert.Equal(t, reflect.TypeFor[declaredPoint](), rt)
}

func TestTypeIDOf_declaredCollisionPanics(t *testing.T) {
	TypeIDOf[declaredPoint]()
	err := recoverError(t, func() { TypeIDOf[declaredTwin]() })

	var ce *TypeIDCollisionError
	require.True(t, errors.As(err, &ce))
	assert.ErrorIs(t, err, ErrTypeIDCollision)
	assert.Equal(t, TypeID(500), ce.ID)
	assert.Equal(t, reflect.TypeFor[declaredPoint](), ce.Existing)
	assert.Contains(t, err.Error(), "declaredTwin")
}

func TestTypeIDOf_automatic(t *testing.T) {
	a, b := TypeIDOf[autoWidget](), TypeIDOf[autoGadget]()
	assert.GreaterOrEqual(t, a, FirstDynamicTypeID)
	assert.GreaterOrEqual(t, b, FirstDynamicTypeID)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, TypeIDOf[autoWidget]())

	// pointer and value types are distinct identities
	assert.NotEqual(t, a, TypeIDOf[*autoWidget]())
}

func TestTypeIDOf_pointerToDeclared(t *testing.T) {
	id := TypeIDOf[*declaredPoint]()
	assert.GreaterOrEqual(t, id, FirstDynamicTypeID)
	assert.NotEqual(t, TypeIDOf[declaredPoint](), id)
	assert.Equal(t, id, TypeIDOf[*declaredPoint]())

	opt := TypeIDOf[*Optional[int32]]()
	assert.GreaterOrEqual(t, opt, FirstDynamicTypeID)
	assert.NotEqual(t, TypeIDOf[Optional[int32]](), opt)
}

func TestTypeIDOf_pointerReceiverDeclares(t *testing.T) {
	assert.Equal(t, TypeID(530), TypeIDOf[*pointerOnly]())
	assert.GreaterOrEqual(t, TypeIDOf[pointerOnly](), FirstDynamicTypeID)
}

func TestTypeIDOf_declaredAboveLimitPanics(t *testing.T) {
	err := recoverError(t, func() { TypeIDOf[tooHigh]() })
	assert.ErrorIs(t, err, ErrTypeIDReserved)
	assert.Contains(t, err.Error(), "2000")

	_, ok := LookupType(2000)
	assert.False(t, ok)
}

func TestTypeIDOf_optionalOfAutoAfterManyAllocations(t *testing.T) {
	base := TypeIDOf[shadowBase]()
	for i := 1; i <= 2*int(OptionalTypeIDOffset); i++ {
		id, err := allocateTypeID(reflect.ArrayOf(i, reflect.TypeFor[shadowBase]()))
		require.NoError(t, err)
		require.NotEqual(t, base+OptionalTypeIDOffset, id, "array of %d", i)
	}
	assert.Equal(t, base+OptionalTypeIDOffset, TypeIDOf[Optional[shadowBase]]())
}

func TestTypeIDOf_concurrent(t *testing.T) {
	const workers = 16
	ids := make([][4]TypeID, workers)
	var mu sync.Mutex
	allocated := make(map[TypeID]reflect.Type)

	var g errgroup.Group
	for w := range workers {
		g.Go(func() error {
			ids[w] = [4]TypeID{
				TypeIDOf[sharedThing](),
				TypeIDOf[Optional[sharedThing]](),
				TypeIDOf[*sharedThing](),
				TypeIDOf[[2]sharedThing](),
			}
			if err := RegisterType[explicitThing](510); err != nil {
				return err
			}
			rt := reflect.ArrayOf(100+w, reflect.TypeFor[sharedThing]())
			id, err := allocateTypeID(rt)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			allocated[id] = rt
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for w := 1; w < workers; w++ {
		assert.Equal(t, ids[0], ids[w], "worker %d", w)
	}
	assert.Equal(t, ids[0][0]+OptionalTypeIDOffset, ids[0][1])
	assert.Len(t, allocated, workers, "every distinct type got its own id")
	for id, rt := range allocated {
		got, ok := LookupType(id)
		require.True(t, ok)
		assert.Equal(t, rt, got)
	}
}

func TestTypeIDOf_optional(t *testing.T) {
	assert.Equal(t, TypeIDOf[int32]()+OptionalTypeIDOffset, TypeIDOf[Optional[int32]]())
	assert.Equal(t, TypeID(115), TypeIDOf[Optional[bool]]())
	assert.Equal(t, TypeIDOf[autoWidget]()+OptionalTypeIDOffset, TypeIDOf[Optional[autoWidget]]())
}

func TestRegisterType(t *testing.T) {
	require.NoError(t, RegisterType[explicitThing](510))
	require.NoError(t, RegisterType[explicitThing](510), "same binding twice is fine")
	assert.Equal(t, TypeID(510), TypeIDOf[explicitThing]())

	err := RegisterType[explicitThing](511)
	var ce *TypeIDCollisionError
	require.True(t, errors.As(err, &ce))
	assert.Nil(t, ce.Existing)
	assert.Equal(t, TypeID(510), ce.BoundID)
	assert.Contains(t, err.Error(), "bound to 510")

	err = RegisterType[declaredLate](14)
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, reflect.TypeFor[string](), ce.Existing)

	err = RegisterType[declaredLate](MaxDeclaredTypeID + 1)
	assert.ErrorIs(t, err, ErrTypeIDReserved)
	assert.False(t, errors.As(err, &ce))
}

func TestRegisterType_beatsAutomaticAllocation(t *testing.T) {
	type preassigned struct{ Z int }
	require.NoError(t, RegisterType[preassigned](520))
	assert.Equal(t, TypeID(520), TypeIDOf[preassigned]())
}

func TestTypeID_String(t *testing.T) {
	assert.Equal(t, "13(float64)", TypeIDOf[float64]().String())
	assert.Equal(t, "65000", TypeID(65000).String())
}

func TestOptional(t *testing.T) {
	v, ok := Some(7).Get()
	assert.True(t, ok)
	assert.Equal(t, 7, v)

	n := None[int]()
	assert.False(t, n.IsSome())
	assert.Equal(t, 3, n.OrElse(3))
	assert.Equal(t, 7, Some(7).OrElse(3))
}
