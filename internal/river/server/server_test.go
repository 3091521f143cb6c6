package server

import (
	"testing"

	"github.com/stretchr/testify/require"

	"riverwm.dev/river/internal/river/config"
	"riverwm.dev/river/internal/river/idset"
)

type fakeTxnWindow struct{ id string }

func (w *fakeTxnWindow) ApplyPending() error          { return nil }
func (w *fakeTxnWindow) MarkTransactionParticipant()  {}
func (w *fakeTxnWindow) Configure() (bool, error)     { return false, nil }
func (w *fakeTxnWindow) SendFrameDone()                {}
func (w *fakeTxnWindow) CommitTransaction(bw float32) {}
func (w *fakeTxnWindow) ID() string                   { return w.id }

func TestAddWindowRegistersByParsedID(t *testing.T) {
	s := New(config.Default())
	id := idset.NewID()
	w := &fakeTxnWindow{id: id.String()}

	var notify func()
	entry, err := s.AddWindow(w, func(n func()) { notify = n })
	require.NoError(t, err)
	require.NotNil(t, notify)

	got, ok := s.Windows.Get(id)
	require.True(t, ok)
	require.Same(t, entry, got)
	require.Equal(t, "window", entry.Kind())
}

func TestAddWindowRejectsUnparsableID(t *testing.T) {
	s := New(config.Default())
	w := &fakeTxnWindow{id: "not-a-uuid"}

	_, err := s.AddWindow(w, func(func()) {})
	require.Error(t, err)
}
