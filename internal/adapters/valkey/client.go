package valkey

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/samirrijal/geovocab/internal/core/domain"
)

// Key prefixes.
const (
	SessionPrefix = "geovocab:session:"
	LimiterPrefix = "geovocab:limiter:"
)

// Client wraps a Valkey connection shared by the session store and the
// rate limiter storage.
type Client struct {
	client valkey.Client
}

// New connects to the Valkey server at addr.
func New(addr string) (*Client, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("valkey connect: %w", err)
	}
	return &Client{client: client}, nil
}

// NewFromClient wraps an existing valkey client.
func NewFromClient(c valkey.Client) *Client {
	return &Client{client: c}
}

// Ping checks the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Do(ctx, c.client.B().Ping().Build()).Error()
}

// Close releases the client.
func (c *Client) Close() {
	c.client.Close()
}

func (c *Client) get(ctx context.Context, key string) ([]byte, error) {
	return c.client.Do(ctx, c.client.B().Get().Key(key).Build()).AsBytes()
}

func (c *Client) set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return c.client.Do(ctx, c.client.B().Set().Key(key).Value(string(value)).Build()).Error()
	}
	if ttl < time.Second {
		ttl = time.Second
	}
	return c.client.Do(ctx,
		c.client.B().Set().Key(key).Value(string(value)).Ex(ttl).Build(),
	).Error()
}

func (c *Client) del(ctx context.Context, keys ...string) error {
	return c.client.Do(ctx, c.client.B().Del().Key(keys...).Build()).Error()
}

// SessionStore implements ports.SessionStore.
type SessionStore struct {
	c *Client
}

// Sessions returns a session store on c.
func (c *Client) Sessions() *SessionStore {
	return &SessionStore{c: c}
}

func (s *SessionStore) Save(ctx context.Context, id string, state []byte, ttl time.Duration) error {
	return s.c.set(ctx, SessionPrefix+id, state, ttl)
}

func (s *SessionStore) Load(ctx context.Context, id string) ([]byte, error) {
	b, err := s.c.get(ctx, SessionPrefix+id)
	if valkey.IsValkeyNil(err) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	return b, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.c.del(ctx, SessionPrefix+id)
}

func (s *SessionStore) Ping(ctx context.Context) error {
	return s.c.Ping(ctx)
}
