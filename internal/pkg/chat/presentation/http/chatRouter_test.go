package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	feedAdapter "go-inbox/internal/infrastructure/changefeed/adapter"
	queueAdapter "go-inbox/internal/infrastructure/queue/adapter"
	"go-inbox/internal/infrastructure/realtime"
	auth "go-inbox/internal/pkg/auth/application/domain"
	"go-inbox/internal/pkg/auth/presentation/middleware"
	chat "go-inbox/internal/pkg/chat/application/domain"
	"go-inbox/internal/pkg/chat/application/task"
	"go-inbox/internal/pkg/chat/application/usecase"
	repoAdapter "go-inbox/internal/pkg/chat/persistence/repository/adapter"
	"go-inbox/internal/web"
)

const testUserHeader = "X-Test-User"

type chatServer struct {
	engine *gin.Engine
	repo   *repoAdapter.MemoryChatRepository
	queue  *queueAdapter.InlineQueue
}

func newChatServer(t *testing.T) *chatServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	repo := repoAdapter.NewMemoryChatRepository()
	feed := feedAdapter.NewMemoryFeed()
	q := queueAdapter.NewInlineQueue()
	router := realtime.NewRouter()
	t.Cleanup(router.Close)
	detach := feed.Attach(realtime.Fanout(router, logger))
	t.Cleanup(detach)

	task.RegisterShareAttachmentTask(q, task.ShareAttachmentDeps{
		SendMessage: usecase.NewSendMessageUseCase(repo, feed, logger),
		Feed:        feed,
		Tick:        time.Millisecond,
		Settle:      time.Millisecond,
		Logger:      logger,
	})

	d := Deps{Repo: repo, Feed: feed, Queue: q, Router: router, Logger: logger, ReadTimeout: 5 * time.Second}

	r := gin.New()
	r.SetHTMLTemplate(web.Templates())
	r.Use(func(c *gin.Context) {
		if uid := c.GetHeader(testUserHeader); uid != "" {
			middleware.SetSession(c, &auth.Session{ID: "s-" + uid, UserID: uid, FullName: strings.ToUpper(uid[:1]) + uid[1:]})
		}
		c.Next()
	})
	RegisterRoutes(r.Group("/api/v1"), d)
	RegisterPageRoutes(r, d)
	return &chatServer{engine: r, repo: repo, queue: q}
}

func (s *chatServer) call(method, target, user, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(testUserHeader, user)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *chatServer) createChat(t *testing.T, user, body string) chat.Conversation {
	t.Helper()
	w := s.call(http.MethodPost, "/api/v1/chats", user, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create chat: %d %s", w.Code, w.Body.String())
	}
	var conv chat.Conversation
	if err := json.Unmarshal(w.Body.Bytes(), &conv); err != nil {
		t.Fatalf("decode chat: %v", err)
	}
	return conv
}

func decodeMessages(t *testing.T, w *httptest.ResponseRecorder) []chat.Message {
	t.Helper()
	var msgs []chat.Message
	if err := json.Unmarshal(w.Body.Bytes(), &msgs); err != nil {
		t.Fatalf("decode messages %q: %v", w.Body.String(), err)
	}
	return msgs
}

func TestChatAPIRequiresSession(t *testing.T) {
	s := newChatServer(t)
	for _, target := range []string{"/api/v1/chats", "/api/v1/chats/x/messages", "/api/v1/realtime/ws"} {
		if w := s.call(http.MethodGet, target, "", ""); w.Code != http.StatusUnauthorized {
			t.Errorf("%s: %d", target, w.Code)
		}
	}
}

func TestConversationAndMessageFlow(t *testing.T) {
	s := newChatServer(t)

	if w := s.call(http.MethodGet, "/api/v1/chats", "alice", ""); w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("empty list: %d %s", w.Code, w.Body.String())
	}

	conv := s.createChat(t, "alice", `{"name":"Book club","kind":"group","participant_ids":["bob"]}`)
	if conv.Kind != chat.ConversationGroup {
		t.Fatalf("kind = %q", conv.Kind)
	}

	w := s.call(http.MethodGet, "/api/v1/chats/"+conv.ID+"/messages", "bob", "")
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("empty conversation: %d %s", w.Code, w.Body.String())
	}

	send := `{"body":"hello there","client_id":"c-42"}`
	first := s.call(http.MethodPost, "/api/v1/chats/"+conv.ID+"/messages", "alice", send)
	again := s.call(http.MethodPost, "/api/v1/chats/"+conv.ID+"/messages", "alice", send)
	if first.Code != http.StatusCreated || again.Code != http.StatusCreated {
		t.Fatalf("send: %d / %d", first.Code, again.Code)
	}
	var a, b chat.Message
	_ = json.Unmarshal(first.Body.Bytes(), &a)
	_ = json.Unmarshal(again.Body.Bytes(), &b)
	if a.ID == "" || a.ID != b.ID || a.SenderName != "Alice" {
		t.Fatalf("resend produced %+v then %+v", a, b)
	}

	msgs := decodeMessages(t, s.call(http.MethodGet, "/api/v1/chats/"+conv.ID+"/messages", "bob", ""))
	if len(msgs) != 1 || msgs[0].Body != "hello there" {
		t.Fatalf("messages = %+v", msgs)
	}

	if w := s.call(http.MethodGet, "/api/v1/chats/"+conv.ID+"/messages", "mallory", ""); w.Code != http.StatusForbidden {
		t.Fatalf("outsider read: %d", w.Code)
	}
	if w := s.call(http.MethodPost, "/api/v1/chats/"+conv.ID+"/messages", "alice", `{"body":"   "}`); w.Code != http.StatusBadRequest {
		t.Fatalf("blank body: %d", w.Code)
	}
	if w := s.call(http.MethodGet, "/api/v1/chats/"+conv.ID+"/participants", "bob", ""); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "alice") {
		t.Fatalf("participants: %d %s", w.Code, w.Body.String())
	}
}

func TestMalformedConversationIDIsNotFound(t *testing.T) {
	s := newChatServer(t)
	cases := []struct{ method, target, body string }{
		{http.MethodGet, "/api/v1/chats/abc/messages", ""},
		{http.MethodPost, "/api/v1/chats/abc/messages", `{"body":"hi"}`},
		{http.MethodGet, "/api/v1/chats/abc/participants", ""},
		{http.MethodPost, "/api/v1/chats/abc/attachments", `{"file_name":"a.png","size_bytes":1,"kind":"image"}`},
	}
	for _, tc := range cases {
		w := s.call(tc.method, tc.target, "alice", tc.body)
		if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), chat.ErrNotFound.Error()) {
			t.Errorf("%s %s: %d %s", tc.method, tc.target, w.Code, w.Body.String())
		}
	}
}

func TestCreateChatWithUnknownParticipant(t *testing.T) {
	s := newChatServer(t)
	s.repo.KnownUsers = map[string]bool{"alice": true, "bob": true}

	w := s.call(http.MethodPost, "/api/v1/chats", "alice", `{"name":"x","participant_ids":["bob","ghost"]}`)
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), chat.ErrUnknownUser.Error()) {
		t.Fatalf("unknown participant: %d %s", w.Code, w.Body.String())
	}
	if w := s.call(http.MethodGet, "/api/v1/chats", "alice", ""); strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("conversation left behind: %s", w.Body.String())
	}
}

func TestListFailuresDegradeToEmpty(t *testing.T) {
	s := newChatServer(t)
	s.createChat(t, "alice", `{"name":"x"}`)

	s.repo.FailNext = errors.New("connection reset")
	w := s.call(http.MethodGet, "/api/v1/chats", "alice", "")
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("failed list: %d %s", w.Code, w.Body.String())
	}
}

func TestAttachmentEndpoint(t *testing.T) {
	s := newChatServer(t)
	conv := s.createChat(t, "alice", `{"name":"photos"}`)
	target := "/api/v1/chats/" + conv.ID + "/attachments"

	w := s.call(http.MethodPost, target, "alice", `{"file_name":"big.mov","size_bytes":10485761,"kind":"video"}`)
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "File size must be less than 10MB") {
		t.Fatalf("oversized: %d %s", w.Code, w.Body.String())
	}

	w = s.call(http.MethodPost, target, "alice", `{"file_name":"notes.pdf","size_bytes":524288,"kind":"document","client_id":"up-1"}`)
	if w.Code != http.StatusAccepted || !strings.Contains(w.Body.String(), `"client_id":"up-1"`) {
		t.Fatalf("accepted: %d %s", w.Code, w.Body.String())
	}
	s.queue.Wait()

	msgs := decodeMessages(t, s.call(http.MethodGet, "/api/v1/chats/"+conv.ID+"/messages", "alice", ""))
	if len(msgs) != 1 || msgs[0].Body != "📎 📄 notes.pdf (0.50 MB)" || msgs[0].Kind != chat.MessageKindDocument {
		t.Fatalf("messages = %+v", msgs)
	}
}

func TestChatView(t *testing.T) {
	s := newChatServer(t)

	w := s.call(http.MethodGet, "/chat", "zoe", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "No conversations yet.") {
		t.Fatalf("empty view: %d %s", w.Code, w.Body.String())
	}

	first := s.createChat(t, "zoe", `{"name":"First"}`)
	second := s.createChat(t, "zoe", `{"name":"Second"}`)
	s.call(http.MethodPost, "/api/v1/chats/"+second.ID+"/messages", "zoe", `{"body":"only in second"}`)

	w = s.call(http.MethodGet, "/chat", "zoe", "")
	if !strings.Contains(w.Body.String(), `data-conversation="`+first.ID+`"`) || strings.Contains(w.Body.String(), "only in second") {
		t.Fatalf("default selection should be the first conversation: %s", w.Body.String())
	}

	w = s.call(http.MethodGet, "/chat?c="+second.ID, "zoe", "")
	if !strings.Contains(w.Body.String(), "only in second") {
		t.Fatalf("selected conversation not rendered: %s", w.Body.String())
	}

	form := url.Values{"c": {first.ID}, "body": {"typed in the view"}, "client_id": {"v-1"}}
	req := httptest.NewRequest(http.MethodPost, "/chat/send", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(testUserHeader, "zoe")
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/chat?c="+first.ID {
		t.Fatalf("form send: %d %q", rec.Code, rec.Header().Get("Location"))
	}
	msgs, _ := s.repo.GetMessagesByConversation(req.Context(), first.ID)
	if len(msgs) != 1 || msgs[0].Body != "typed in the view" {
		t.Fatalf("messages = %+v", msgs)
	}
}

func dialSocket(t *testing.T, srv *httptest.Server, user string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/realtime/ws"
	h := http.Header{}
	h.Set(testUserHeader, user)
	ws, _, err := websocket.DefaultDialer.Dial(u, h)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func readJSON(t *testing.T, ws *websocket.Conn) map[string]any {
	t.Helper()
	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var m map[string]any
	if err := ws.ReadJSON(&m); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return m
}

func TestRealtimeSocket(t *testing.T) {
	s := newChatServer(t)
	conv := s.createChat(t, "alice", `{"name":"live","participant_ids":["bob"]}`)
	srv := httptest.NewServer(s.engine)
	defer srv.Close()

	alice := dialSocket(t, srv, "alice")
	bob := dialSocket(t, srv, "bob")
	eve := dialSocket(t, srv, "eve")
	for _, ws := range []*websocket.Conn{alice, bob, eve} {
		if f := readJSON(t, ws); f["type"] != "connected" {
			t.Fatalf("handshake = %v", f)
		}
	}

	join := map[string]any{"type": "join", "conversation_id": conv.ID}
	for _, ws := range []*websocket.Conn{alice, bob} {
		_ = ws.WriteJSON(join)
		if f := readJSON(t, ws); f["type"] != "joined" {
			t.Fatalf("join = %v", f)
		}
	}
	_ = eve.WriteJSON(join)
	if f := readJSON(t, eve); f["type"] != "error" || f["code"] != "forbidden" {
		t.Fatalf("outsider join = %v", f)
	}
	_ = eve.WriteJSON(map[string]any{"type": "join", "conversation_id": "abc"})
	if f := readJSON(t, eve); f["type"] != "error" || f["code"] != "not_found" {
		t.Fatalf("malformed join = %v", f)
	}

	_ = alice.WriteJSON(map[string]any{"type": "message", "conversation_id": conv.ID, "body": "hi bob", "client_id": "ws-1"})

	got := map[string]bool{}
	for i := 0; i < 2; i++ {
		got[readJSON(t, alice)["type"].(string)] = true
	}
	if !got["sent"] || !got["message.inserted"] {
		t.Fatalf("sender frames = %v", got)
	}

	f := readJSON(t, bob)
	if f["type"] != "message.inserted" || f["conversation_id"] != conv.ID {
		t.Fatalf("bob frame = %v", f)
	}
	data := f["data"].(map[string]any)
	if data["content"] != "hi bob" || data["client_id"] != "ws-1" {
		t.Fatalf("bob payload = %v", data)
	}

	_ = bob.WriteJSON(map[string]any{"type": "leave", "conversation_id": conv.ID})
	if f := readJSON(t, bob); f["type"] != "left" {
		t.Fatalf("leave = %v", f)
	}
}
