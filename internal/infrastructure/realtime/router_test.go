package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"go-inbox/internal/infrastructure/changefeed/port"
)

// pair holds the server-side Connection and the client end reading from it.
type pair struct {
	conn   *Connection
	client *websocket.Conn
}

// newPairs dials n websockets against a throwaway server and wraps each
// server end in a Connection owned by userIDs[i].
func newPairs(t *testing.T, userIDs ...string) []pair {
	t.Helper()
	serverSide := make(chan *websocket.Conn, len(userIDs))
	up := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := up.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		serverSide <- ws
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	pairs := make([]pair, 0, len(userIDs))
	for _, uid := range userIDs {
		client, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			t.Fatalf("dial: %v", err)
		}
		t.Cleanup(func() { _ = client.Close() })
		pairs = append(pairs, pair{conn: NewConnection(uid, <-serverSide), client: client})
	}
	return pairs
}

func readFrame(t *testing.T, ws *websocket.Conn) (string, bool) {
	t.Helper()
	_ = ws.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	_, data, err := ws.ReadMessage()
	if err != nil {
		return "", false
	}
	return string(data), true
}

func TestRouterBroadcastOnlyToRoom(t *testing.T) {
	r := NewRouter()
	defer r.Close()
	ps := newPairs(t, "alice", "bob", "carol")
	for _, p := range ps {
		r.Attach(p.conn)
	}
	r.Join("c1", ps[0].conn)
	r.Join("c1", ps[1].conn)
	r.Join("c2", ps[2].conn)

	if n := r.Broadcast("c1", []byte("hello"), ""); n != 2 {
		t.Fatalf("delivered = %d, want 2", n)
	}
	for _, p := range ps[:2] {
		if got, ok := readFrame(t, p.client); !ok || got != "hello" {
			t.Fatalf("%s got %q, %v", p.conn.UserID, got, ok)
		}
	}
	if got, ok := readFrame(t, ps[2].client); ok {
		t.Fatalf("carol should not receive c1 traffic, got %q", got)
	}
}

func TestRouterBroadcastExcludeAndLeave(t *testing.T) {
	r := NewRouter()
	defer r.Close()
	ps := newPairs(t, "alice", "bob")
	for _, p := range ps {
		r.Attach(p.conn)
		r.Join("c1", p.conn)
	}

	if n := r.Broadcast("c1", []byte("x"), "alice"); n != 1 {
		t.Fatalf("delivered = %d, want 1", n)
	}
	r.Leave("c1", ps[1].conn)
	if r.Joined("c1", ps[1].conn) {
		t.Fatal("bob still joined after Leave")
	}
	if n := r.Broadcast("c1", []byte("y"), ""); n != 1 {
		t.Fatalf("delivered after leave = %d, want 1", n)
	}
	r.Detach(ps[0].conn)
	if n := r.Broadcast("c1", []byte("z"), ""); n != 0 {
		t.Fatalf("delivered after detach = %d, want 0", n)
	}
	if r.Count() != 1 {
		t.Fatalf("Count = %d, want 1", r.Count())
	}
}

func TestRouterJoinRequiresAttach(t *testing.T) {
	r := NewRouter()
	ps := newPairs(t, "alice")
	r.Join("c1", ps[0].conn)
	if r.Joined("c1", ps[0].conn) {
		t.Fatal("unattached connection must not join")
	}
}

func TestRouterNotifyUserReachesEveryConnection(t *testing.T) {
	r := NewRouter()
	defer r.Close()
	ps := newPairs(t, "alice", "alice", "bob")
	for _, p := range ps {
		r.Attach(p.conn)
	}
	if n := r.NotifyUser("alice", []byte("ping")); n != 2 {
		t.Fatalf("delivered = %d, want 2", n)
	}
	if n := r.NotifyUser("nobody", []byte("ping")); n != 0 {
		t.Fatalf("delivered = %d, want 0", n)
	}
}

func TestConnectionSendAfterClose(t *testing.T) {
	ps := newPairs(t, "alice")
	c := ps[0].conn
	c.Start()
	c.Close(websocket.CloseNormalClosure, "bye")
	if err := c.Send([]byte("late")); err != ErrConnectionClosed {
		t.Fatalf("Send after close = %v, want ErrConnectionClosed", err)
	}
	select {
	case <-c.Done():
	default:
		t.Fatal("Done not closed")
	}
}

func TestFanoutRoutesByEventType(t *testing.T) {
	r := NewRouter()
	defer r.Close()
	ps := newPairs(t, "alice", "bob", "carol")
	for _, p := range ps {
		r.Attach(p.conn)
	}
	r.Join("c1", ps[0].conn)
	handle := Fanout(r, nil)

	handle(port.Event{Type: port.EventMessageInserted, ConversationID: "c1", Data: json.RawMessage(`{"id":"m1"}`)})
	got, ok := readFrame(t, ps[0].client)
	if !ok {
		t.Fatal("alice did not receive the message event")
	}
	var e port.Event
	if err := json.Unmarshal([]byte(got), &e); err != nil || e.ConversationID != "c1" {
		t.Fatalf("frame %q: %v", got, err)
	}
	if got, ok := readFrame(t, ps[1].client); ok {
		t.Fatalf("bob did not join c1 but got %q", got)
	}

	handle(port.Event{Type: port.EventUploadProgress, UserID: "carol", Data: json.RawMessage(`{"progress":10}`)})
	if _, ok := readFrame(t, ps[2].client); !ok {
		t.Fatal("carol did not receive the progress event")
	}
}
