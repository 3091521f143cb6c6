// Package server is the process-wide compositor singleton: it owns the
// registries of windows, outputs and seats, wires the transaction
// coordinator to the wm-update cycle, and runs the init -> Run ->
// Deinit lifecycle the teacher's app.Window follows for its own
// platform-backend handle.
package server

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"riverwm.dev/river/internal/river/bind"
	"riverwm.dev/river/internal/river/config"
	"riverwm.dev/river/internal/river/idset"
	"riverwm.dev/river/internal/river/output"
	"riverwm.dev/river/internal/river/rlog"
	"riverwm.dev/river/internal/river/seat"
	"riverwm.dev/river/internal/river/session"
	"riverwm.dev/river/internal/river/transaction"
	"riverwm.dev/river/internal/river/wire"
	"riverwm.dev/river/internal/river/wm"
	"riverwm.dev/river/internal/river/wmtransport"
	"riverwm.dev/river/internal/river/xkb"
)

var log = rlog.For("server")

// Server is the single process-wide instance tying every component
// together (spec §2 "the core" as one coherent unit). There is
// intentionally only ever one of these per process, mirroring the
// teacher's single *app.Window per OS window.
type Server struct {
	cfg config.Config

	Windows *idset.Set[*WindowEntry]
	Outputs *idset.Set[*output.Output]
	Seats   *idset.Set[*seat.Seat]

	Registry    *wire.Registry
	Coordinator *transaction.Coordinator
	Cycle       *wm.Cycle

	Session *session.Session

	listener interface{ Close() error }

	bindingEvents []*bindingEvents
}

// WindowEntry pairs a transaction-adapted window with its object id in
// the wire registry, so the server can go id -> window without every
// caller re-deriving the adapter.
type WindowEntry struct {
	Transaction transaction.Window
	ObjectID    wire.ObjectID
}

func (e *WindowEntry) Kind() string { return "window" }

// New constructs a Server with no windows/outputs/seats yet and no wm
// client connected. Call Run to start accepting one.
func New(cfg config.Config) *Server {
	rlog.SetLevel(cfg.LogLevel)

	s := &Server{
		cfg:     cfg,
		Windows: idset.NewSet[*WindowEntry](),
		Outputs: idset.NewSet[*output.Output](),
		Seats:   idset.NewSet[*seat.Seat](),
		Registry: wire.NewRegistry(),
	}
	s.Coordinator = transaction.New(
		transaction.WithBorderWidth(float32(cfg.BorderWidth)),
		transaction.WithTimeout(time.Duration(cfg.TransactionTimeoutMillis)*time.Millisecond),
		transaction.OnCommit(func(serial uint64) {
			log.Info("transaction committed", "serial", serial)
			s.Cycle.DirtyPending()
		}),
	)
	return s
}

// bindingEvents adapts Cycle's wm.Update accumulation to bind.Events, so
// a Dispatcher on any seat can enqueue press/release deltas onto the
// same outstanding update (spec §4.4's events land in the same batch as
// everything else C3 collects).
type bindingEvents struct {
	pending map[string]wm.BindingEvent
}

func newBindingEvents() *bindingEvents {
	return &bindingEvents{pending: make(map[string]wm.BindingEvent)}
}

func (b *bindingEvents) BindingPressed(id string)  { b.pending[id] = wm.BindingPressed }
func (b *bindingEvents) BindingReleased(id string) { b.pending[id] = wm.BindingReleased }

func (b *bindingEvents) drain() map[string]wm.BindingEvent {
	out := b.pending
	b.pending = make(map[string]wm.BindingEvent)
	return out
}

// NewSeat creates a seat wired to this server's session (for VT
// switching) and binding-event sink, and registers it.
func (s *Server) NewSeat(scene seat.Scene) *seat.Seat {
	events := newBindingEvents()
	vtSym := func(sym bind.Keysym) (int, bool) {
		for n := 1; n <= 12; n++ {
			if xkb.Keysym(sym) == xkb.SwitchVTKeysym(n) {
				return n, true
			}
		}
		return 0, false
	}
	var sessionAdapter bind.Session
	if s.Session != nil {
		sessionAdapter = sessionSwitcher{s.Session}
	}
	st := seat.New(scene, events, sessionAdapter, vtSym)
	s.Seats.Put(st.ID, st)
	s.bindingEvents = append(s.bindingEvents, events)
	return st
}

type sessionSwitcher struct{ s *session.Session }

func (a sessionSwitcher) SwitchVT(n int) error { return a.s.SwitchVT(n) }

// AddWindow registers a new window with the coordinator and wires its
// commit notification back in (spec §4.3: surface-commit reaching
// Committed decrements the inflight transaction's countdown).
func (s *Server) AddWindow(w transaction.Window, onCommitted func(notify func())) (*WindowEntry, error) {
	id, err := idset.ParseID(w.ID())
	if err != nil {
		return nil, fmt.Errorf("server: add window: %w", err)
	}
	entry := &WindowEntry{Transaction: w}
	entry.ObjectID = s.Registry.Register(entry)
	s.Windows.Put(id, entry)
	onCommitted(func() { s.Coordinator.NotifyResolved(w.ID()) })
	return entry, nil
}

// handlers builds the wmtransport.Handlers closures over this server's
// cycle and coordinator.
func (s *Server) handlers() wmtransport.Handlers {
	return wmtransport.Handlers{
		AckUpdate: func(serial uint64) { s.Cycle.AckUpdate(serial) },
		Commit:    func() { s.Cycle.Commit() },
	}
}

// Run starts the wm protocol listener and blocks serving connections
// until the listener is closed (spec §6 "the wm client connects once at
// startup"). Only one wm client is accepted at a time; a second
// connection attempt while one is active is refused.
func (s *Server) Run() error {
	l, err := wmtransport.ListenUnix(s.cfg.WMSocket)
	if err != nil {
		return fmt.Errorf("server: run: %w", err)
	}
	s.listener = l

	var connected atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if !connected.CompareAndSwap(false, true) {
			http.Error(w, "a wm client is already connected", http.StatusConflict)
			return
		}
		defer connected.Store(false)
		err := wmtransport.Serve(w, r, s.handlers(), func(conn *wmtransport.Conn) {
			s.Cycle = wm.New(conn, s.buildUpdate, s.onWMCommit)
			log.Info("wm client connected")
		})
		if err != nil {
			log.Error("wm connection serve error", "err", err)
		}
	})

	srv := &http.Server{Handler: mux}
	return srv.Serve(l)
}

func (s *Server) buildUpdate(serial uint64) wm.Update {
	events := map[string]wm.BindingEvent{}
	for _, be := range s.bindingEvents {
		for id, ev := range be.drain() {
			events[id] = ev
		}
	}
	return wm.Update{Serial: serial, BindingSent: events}
}

func (s *Server) onWMCommit() {
	log.Debug("wm update cycle committed")
}

// Deinit tears the server down: closes the wm listener and every
// session resource.
func (s *Server) Deinit() {
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if s.Session != nil {
		_ = s.Session.Close()
	}
}
