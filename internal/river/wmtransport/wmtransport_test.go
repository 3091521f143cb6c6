package wmtransport

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"riverwm.dev/river/internal/river/wm"
)

func startServer(t *testing.T, h Handlers) (wsURL string, conns chan *Conn, done chan struct{}) {
	t.Helper()
	conns = make(chan *Conn, 1)
	done = make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("/wm", func(w http.ResponseWriter, r *http.Request) {
		err := Serve(w, r, h, func(c *Conn) { conns <- c })
		require.NoError(t, err)
		close(done)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/wm", conns, done
}

func TestSendUpdateRoundTripsOverWebsocket(t *testing.T) {
	wsURL, conns, _ := startServer(t, Handlers{})

	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer client.Close()

	conn := <-conns
	require.NoError(t, conn.SendUpdate(wm.Update{Serial: 7}))

	var got wm.Update
	require.NoError(t, client.ReadJSON(&got))
	require.Equal(t, uint64(7), got.Serial)
}

func TestDispatchRoutesAckUpdateToHandler(t *testing.T) {
	var mu sync.Mutex
	var gotSerial uint64
	h := Handlers{AckUpdate: func(serial uint64) {
		mu.Lock()
		gotSerial = serial
		mu.Unlock()
	}}
	wsURL, conns, _ := startServer(t, h)

	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer client.Close()
	<-conns

	require.NoError(t, client.WriteJSON(requestEnvelope{Kind: "ack_update", Body: []byte(`{"serial":42}`)}))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return gotSerial == 42
	}, time.Second, 5*time.Millisecond)
}

func TestDispatchRoutesSetWindowIntent(t *testing.T) {
	var mu sync.Mutex
	var gotID string
	var gotIntent wm.WindowIntent
	h := Handlers{SetWindowIntent: func(id string, intent wm.WindowIntent) {
		mu.Lock()
		gotID, gotIntent = id, intent
		mu.Unlock()
	}}
	wsURL, conns, _ := startServer(t, h)

	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer client.Close()
	<-conns

	body := `{"id":"win-a","intent":{"X":1,"Y":2,"W":3,"H":4,"Fullscreen":true,"SSD":false,"Focused":true}}`
	require.NoError(t, client.WriteJSON(requestEnvelope{Kind: "set_window_intent", Body: []byte(body)}))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return gotID == "win-a"
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, wm.WindowIntent{X: 1, Y: 2, W: 3, H: 4, Fullscreen: true, Focused: true}, gotIntent)
}

func TestDispatchIgnoresUnknownKind(t *testing.T) {
	called := false
	h := Handlers{Commit: func() { called = true }}
	wsURL, conns, _ := startServer(t, h)

	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer client.Close()
	<-conns

	require.NoError(t, client.WriteJSON(requestEnvelope{Kind: "no_such_kind"}))
	require.NoError(t, client.WriteJSON(requestEnvelope{Kind: "commit"}))

	require.Eventually(t, func() bool { return called }, time.Second, 5*time.Millisecond)
}

func TestListenUnixBindsSocketPath(t *testing.T) {
	path := t.TempDir() + "/river-test.sock"
	l, err := ListenUnix(path)
	require.NoError(t, err)
	defer l.Close()
}
