package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeObject struct{ kind string }

func (o *fakeObject) Kind() string { return o.kind }

func TestRegisterAssignsMonotonicIDsStartingAtOne(t *testing.T) {
	r := NewRegistry()
	a := r.Register(&fakeObject{kind: "window"})
	b := r.Register(&fakeObject{kind: "output"})

	require.Equal(t, ObjectID(1), a)
	require.Equal(t, ObjectID(2), b)
}

func TestLookupMissAfterUnregister(t *testing.T) {
	r := NewRegistry()
	id := r.Register(&fakeObject{kind: "window"})

	_, ok := r.Lookup(id)
	require.True(t, ok)

	r.Unregister(id)
	_, ok = r.Lookup(id)
	require.False(t, ok)
}

func TestUnregisteredIDIsNeverReissued(t *testing.T) {
	r := NewRegistry()
	first := r.Register(&fakeObject{kind: "window"})
	r.Unregister(first)

	second := r.Register(&fakeObject{kind: "output"})
	require.NotEqual(t, first, second)
}

func TestDispatchInvokesHandleOnHit(t *testing.T) {
	r := NewRegistry()
	obj := &fakeObject{kind: "window"}
	id := r.Register(obj)

	var handled Object
	err := r.Dispatch(id, func(o Object) error {
		handled = o
		return nil
	})
	require.NoError(t, err)
	require.Same(t, obj, handled)
}

func TestDispatchReportsUnknownObject(t *testing.T) {
	r := NewRegistry()
	err := r.Dispatch(99, func(Object) error { return nil })
	require.Error(t, err)
}
