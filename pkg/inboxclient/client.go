// Package inboxclient talks to the inbox server: authentication,
// conversations, messages and the realtime feed.
package inboxclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gorilla/websocket"
)

// ErrNoSession is returned by calls made without a valid session.
var ErrNoSession = errors.New("inboxclient: not signed in")

// APIError carries the server's error text verbatim, e.g.
// "Invalid login credentials".
type APIError struct {
	Status  int
	Message string
}

// Is makes a 401 match ErrNoSession.
func (e *APIError) Is(target error) bool {
	return target == ErrNoSession && e.Status == http.StatusUnauthorized
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("inbox api: status %d", e.Status)
	}
	return e.Message
}

type errorBody struct {
	Error string `json:"error"`
}

// Client is safe for concurrent use.
type Client struct {
	http    *resty.Client
	baseURL string
	dialer  *websocket.Dialer
}

type options struct {
	hc      *http.Client
	timeout time.Duration
}

// Option configures New. Options may be given in any order.
type Option func(*options)

// WithHTTPClient routes requests through a copy of hc, e.g. an httptest
// server client. hc itself is not modified.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.hc = hc }
}

// WithTimeout bounds each API request. The default is 10 seconds.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

func New(baseURL string, opts ...Option) *Client {
	o := options{timeout: 10 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}

	var rc *resty.Client
	if o.hc != nil {
		hc := *o.hc
		rc = resty.NewWithClient(&hc)
	} else {
		rc = resty.New()
	}
	baseURL = strings.TrimRight(baseURL, "/")
	rc.SetBaseURL(baseURL).
		SetTimeout(o.timeout).
		SetHeader("Accept", "application/json")

	return &Client{
		http:    rc,
		baseURL: baseURL,
		dialer:  websocket.DefaultDialer,
	}
}

// SignUp registers an account and returns the server's notice, which asks
// the user to confirm their email unless the server confirms accounts
// automatically.
func (c *Client) SignUp(ctx context.Context, email, password, fullName string) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	_, err := c.do(ctx, "", http.MethodPost, "/api/v1/auth/signup", map[string]string{
		"email": email, "password": password, "full_name": fullName,
	}, &out)
	return out.Message, err
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	var out struct {
		AccessToken string    `json:"access_token"`
		ExpiresAt   time.Time `json:"expires_at"`
		Session     struct {
			UserID   string `json:"user_id"`
			Email    string `json:"email"`
			FullName string `json:"full_name"`
		} `json:"session"`
	}
	if _, err := c.do(ctx, "", http.MethodPost, "/api/v1/auth/signin", map[string]string{
		"email": email, "password": password,
	}, &out); err != nil {
		return nil, err
	}
	return &Session{
		AccessToken: out.AccessToken,
		ExpiresAt:   out.ExpiresAt,
		UserID:      out.Session.UserID,
		Email:       out.Session.Email,
		FullName:    out.Session.FullName,
	}, nil
}

// SignOut revokes s on the server. The caller should drop s afterwards.
func (c *Client) SignOut(ctx context.Context, s *Session) error {
	_, err := c.authed(ctx, s, http.MethodPost, "/api/v1/auth/signout", nil, nil)
	return err
}

func (c *Client) ListConversations(ctx context.Context, s *Session) ([]Conversation, error) {
	out := []Conversation{}
	_, err := c.authed(ctx, s, http.MethodGet, "/api/v1/chats", nil, &out)
	return out, err
}

func (c *Client) CreateConversation(ctx context.Context, s *Session, name, kind string, participantIDs []string) (*Conversation, error) {
	var out Conversation
	_, err := c.authed(ctx, s, http.MethodPost, "/api/v1/chats", map[string]any{
		"name": name, "kind": kind, "participant_ids": participantIDs,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListMessages returns every message of the conversation, oldest first.
func (c *Client) ListMessages(ctx context.Context, s *Session, conversationID string) ([]Message, error) {
	out := []Message{}
	_, err := c.authed(ctx, s, http.MethodGet, "/api/v1/chats/"+conversationID+"/messages", nil, &out)
	return out, err
}

// SendMessage stores body. Resending the same clientID yields the message
// stored the first time.
func (c *Client) SendMessage(ctx context.Context, s *Session, conversationID, body, clientID string) (*Message, error) {
	var out Message
	_, err := c.authed(ctx, s, http.MethodPost, "/api/v1/chats/"+conversationID+"/messages", map[string]string{
		"body": body, "client_id": clientID,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ShareAttachment queues the attachment placeholder and returns the task id.
func (c *Client) ShareAttachment(ctx context.Context, s *Session, conversationID string, a Attachment, clientID string) (string, error) {
	var out struct {
		TaskID string `json:"task_id"`
	}
	_, err := c.authed(ctx, s, http.MethodPost, "/api/v1/chats/"+conversationID+"/attachments", map[string]any{
		"file_name": a.FileName, "size_bytes": a.SizeBytes, "kind": a.Kind, "client_id": clientID,
	}, &out)
	return out.TaskID, err
}

// authed performs a request on behalf of s.
func (c *Client) authed(ctx context.Context, s *Session, method, path string, body, result any) (*resty.Response, error) {
	if s == nil || s.AccessToken == "" {
		return nil, ErrNoSession
	}
	return c.do(ctx, s.AccessToken, method, path, body, result)
}

func (c *Client) do(ctx context.Context, token, method, path string, body, result any) (*resty.Response, error) {
	req := c.http.R().SetContext(ctx).SetError(&errorBody{})
	if token != "" {
		req.SetAuthToken(token)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		apiErr := &APIError{Status: resp.StatusCode()}
		if e, ok := resp.Error().(*errorBody); ok {
			apiErr.Message = e.Error
		}
		return resp, apiErr
	}
	return resp, nil
}
