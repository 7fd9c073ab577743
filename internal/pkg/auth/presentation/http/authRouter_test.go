package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	cacheAdapter "go-inbox/internal/infrastructure/cache/adapter"
	"go-inbox/internal/pkg/auth/application/usecase"
	"go-inbox/internal/pkg/auth/persistence/repository/adapter"
	"go-inbox/internal/pkg/auth/presentation/controller"
	"go-inbox/internal/pkg/auth/presentation/middleware"
	"go-inbox/internal/pkg/auth/security"
	"go-inbox/internal/web"
)

type outbox struct{ link string }

func (o *outbox) SendConfirmation(_ context.Context, _, link string) error {
	o.link = link
	return nil
}

type testServer struct {
	engine *gin.Engine
	mail   *outbox
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := adapter.NewMemoryUserRepository()
	sessions := adapter.NewCacheSessionRepository(cacheAdapter.NewRedisCache(client, "test:"))
	hasher := security.NewBcryptServiceWithCost(bcrypt.MinCost)
	tokens := security.NewJWTService("secret", "go-inbox")
	mail := &outbox{}

	svc := &Services{
		SignUp:       usecase.NewSignUpUseCase(users, hasher, mail, "http://inbox.test", false),
		SignIn:       usecase.NewSignInUseCase(users, sessions, hasher, tokens, time.Hour),
		SignOut:      usecase.NewSignOutUseCase(sessions),
		GetSession:   usecase.NewGetSessionUseCase(sessions, tokens),
		ConfirmEmail: usecase.NewConfirmEmailUseCase(users),
	}
	opts := RouteOptions{Cookie: controller.CookieOptions{TTL: time.Hour}, Logger: logger}

	r := gin.New()
	r.SetHTMLTemplate(web.Templates())
	r.Use(middleware.SessionGate(svc.GetSession, logger))
	RegisterPageRoutes(r, svc, opts)
	RegisterAPIRoutes(r.Group("/api/v1"), svc, opts)
	r.GET("/chat", func(c *gin.Context) { c.String(http.StatusOK, "conversations") })

	return &testServer{engine: r, mail: mail}
}

func (s *testServer) do(method, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) json(method, target, body, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range w.Result().Cookies() {
		if ck.Name == middleware.SessionCookie && ck.Value != "" {
			return ck
		}
	}
	t.Fatalf("no session cookie in response")
	return nil
}

func TestGateRedirects(t *testing.T) {
	s := newTestServer(t)

	if w := s.do(http.MethodGet, "/chat", nil); w.Code != http.StatusFound || w.Header().Get("Location") != "/" {
		t.Fatalf("anonymous /chat: %d %q", w.Code, w.Header().Get("Location"))
	}
	if w := s.do(http.MethodGet, "/chat?c=abc", nil, &http.Cookie{Name: middleware.SessionCookie, Value: "forged"}); w.Code != http.StatusFound {
		t.Fatalf("forged cookie on /chat: %d", w.Code)
	}
	if w := s.do(http.MethodGet, "/", nil); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `action="/login"`) {
		t.Fatalf("anonymous /: %d", w.Code)
	}
	if w := s.do(http.MethodGet, "/api/v1/auth/session", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous session API: %d", w.Code)
	}
}

func TestLoginFormFlow(t *testing.T) {
	s := newTestServer(t)
	creds := url.Values{"email": {"hana@example.com"}, "password": {"secret1"}}

	signIn := url.Values{"mode": {"signin"}, "email": creds["email"], "password": creds["password"]}
	w := s.do(http.MethodPost, "/login", signIn)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Invalid login credentials") {
		t.Fatalf("unknown user sign in: %d %s", w.Code, w.Body.String())
	}
	if len(w.Result().Cookies()) != 0 {
		t.Fatal("failed sign in must not set a cookie")
	}

	signUp := url.Values{"mode": {"signup"}, "email": creds["email"], "password": creds["password"]}
	w = s.do(http.MethodPost, "/login", signUp)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Check your email for the confirmation link!") {
		t.Fatalf("sign up: %d %s", w.Code, w.Body.String())
	}

	w = s.do(http.MethodPost, "/login", signIn)
	if !strings.Contains(w.Body.String(), "Email not confirmed") {
		t.Fatalf("unconfirmed sign in: %s", w.Body.String())
	}

	link, err := url.Parse(s.mail.link)
	if err != nil {
		t.Fatalf("confirmation link: %v", err)
	}
	w = s.do(http.MethodGet, link.RequestURI(), nil)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/" {
		t.Fatalf("callback: %d %q", w.Code, w.Header().Get("Location"))
	}

	w = s.do(http.MethodPost, "/login", signIn)
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/chat" {
		t.Fatalf("sign in: %d %q", w.Code, w.Header().Get("Location"))
	}
	ck := sessionCookie(t, w)

	if w := s.do(http.MethodGet, "/", nil, ck); w.Code != http.StatusFound || w.Header().Get("Location") != "/chat" {
		t.Fatalf("signed-in /: %d %q", w.Code, w.Header().Get("Location"))
	}
	if w := s.do(http.MethodGet, "/chat", nil, ck); w.Code != http.StatusOK {
		t.Fatalf("signed-in /chat: %d", w.Code)
	}
	if w := s.do(http.MethodGet, "/api/v1/auth/session", nil, ck); w.Code != http.StatusOK {
		t.Fatalf("session API: %d", w.Code)
	}

	if w := s.do(http.MethodPost, "/logout", nil, ck); w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/" {
		t.Fatalf("logout: %d", w.Code)
	}
	if w := s.do(http.MethodGet, "/chat", nil, ck); w.Code != http.StatusFound {
		t.Fatalf("revoked cookie still opens /chat: %d", w.Code)
	}
}

func TestCallbackErrors(t *testing.T) {
	s := newTestServer(t)
	cases := []struct {
		target   string
		location string
	}{
		{"/auth/callback?token=nope", "/auth/error?error=auth_error"},
		{"/auth/callback", "/auth/error?error=auth_error"},
		{"/auth/callback?error=access_denied", "/auth/error?error=access_denied"},
	}
	for _, tc := range cases {
		w := s.do(http.MethodGet, tc.target, nil)
		if w.Code != http.StatusFound || w.Header().Get("Location") != tc.location {
			t.Errorf("%s: %d %q", tc.target, w.Code, w.Header().Get("Location"))
		}
	}
}

func TestErrorView(t *testing.T) {
	s := newTestServer(t)
	cases := map[string]string{
		"auth_error":    "There was an error confirming your email. Please try signing up again.",
		"access_denied": "Access was denied. Please check your email and try again.",
		"whatever":      "An unexpected error occurred during authentication.",
		"":              "An unexpected error occurred during authentication.",
	}
	for code, want := range cases {
		w := s.do(http.MethodGet, "/auth/error?error="+code, nil)
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), want) {
			t.Errorf("code %q: %d %s", code, w.Code, w.Body.String())
		}
	}
}

func TestJSONAuthAPI(t *testing.T) {
	s := newTestServer(t)

	w := s.json(http.MethodPost, "/api/v1/auth/signup", `{"email":"bad","password":"secret1"}`, "")
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "Unable to validate email address: invalid format") {
		t.Fatalf("bad email: %d %s", w.Code, w.Body.String())
	}

	w = s.json(http.MethodPost, "/api/v1/auth/signup", `{"email":"ivy@example.com","password":"secret1","full_name":"Ivy"}`, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("sign up: %d %s", w.Code, w.Body.String())
	}
	link, _ := url.Parse(s.mail.link)
	s.do(http.MethodGet, link.RequestURI(), nil)

	w = s.json(http.MethodPost, "/api/v1/auth/signin", `{"email":"ivy@example.com","password":"secret1"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("sign in: %d %s", w.Code, w.Body.String())
	}
	var out struct {
		AccessToken string `json:"access_token"`
		Session     struct {
			FullName string `json:"full_name"`
		} `json:"session"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil || out.AccessToken == "" || out.Session.FullName != "Ivy" {
		t.Fatalf("sign in body: %s (%v)", w.Body.String(), err)
	}

	if w := s.json(http.MethodGet, "/api/v1/auth/session", "", out.AccessToken); w.Code != http.StatusOK {
		t.Fatalf("session: %d", w.Code)
	}
	if w := s.json(http.MethodPost, "/api/v1/auth/signout", "", out.AccessToken); w.Code != http.StatusNoContent {
		t.Fatalf("sign out: %d", w.Code)
	}
	if w := s.json(http.MethodGet, "/api/v1/auth/session", "", out.AccessToken); w.Code != http.StatusUnauthorized {
		t.Fatalf("session after sign out: %d", w.Code)
	}
}
