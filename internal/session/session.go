package session

import (
	"context"
	"sync"

	"github.com/darisadam/cardbrand/internal/client"
)

// Context is the server-issued state of a checkout session.
type Context struct {
	ID   string
	Data string
}

type Session struct {
	mu  sync.RWMutex
	ctx Context
}

func New(id, data string) *Session {
	return &Session{ctx: Context{ID: id, Data: data}}
}

func (s *Session) Context() Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ctx
}

func (s *Session) SetData(data string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx.Data = data
}

// SessionResponse is implemented by responses that carry refreshed session data.
type SessionResponse interface {
	GetSessionData() string
}

// APIClient forwards requests and copies session data from session responses
// into the session it was created for, until Close detaches it.
type APIClient struct {
	api client.APIClient

	mu      sync.Mutex
	session *Session
}

func NewAPIClient(api client.APIClient, session *Session) *APIClient {
	return &APIClient{api: api, session: session}
}

func (c *APIClient) Perform(ctx context.Context, req client.Request, out any) error {
	if err := c.api.Perform(ctx, req, out); err != nil {
		return err
	}

	resp, ok := out.(SessionResponse)
	if !ok {
		return nil
	}

	c.mu.Lock()
	s := c.session
	c.mu.Unlock()

	// An empty value means the response carried no session update.
	if data := resp.GetSessionData(); s != nil && data != "" {
		s.SetData(data)
	}
	return nil
}

// Close detaches the session; later responses no longer update it.
func (c *APIClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = nil
}
