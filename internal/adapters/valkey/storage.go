package valkey

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valkey-io/valkey-go"
)

const storageTimeout = 2 * time.Second

var _ fiber.Storage = (*Storage)(nil)

// Storage implements fiber.Storage so middleware such as the rate limiter
// can share counters across instances.
type Storage struct {
	c      *Client
	prefix string
}

// Storage returns a fiber.Storage whose keys live under prefix.
func (c *Client) Storage(prefix string) *Storage {
	return &Storage{c: c, prefix: prefix}
}

// Get returns nil without error when key does not exist.
func (s *Storage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()
	b, err := s.c.get(ctx, s.prefix+key)
	if valkey.IsValkeyNil(err) {
		return nil, nil
	}
	return b, err
}

func (s *Storage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()
	return s.c.set(ctx, s.prefix+key, val, exp)
}

func (s *Storage) Delete(key string) error {
	if key == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()
	return s.c.del(ctx, s.prefix+key)
}

// Reset deletes every key under the prefix.
func (s *Storage) Reset() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*storageTimeout)
	defer cancel()

	var cursor uint64
	for {
		entry, err := s.c.client.Do(ctx,
			s.c.client.B().Scan().Cursor(cursor).Match(s.prefix+"*").Count(100).Build(),
		).AsScanEntry()
		if err != nil {
			return err
		}
		if len(entry.Elements) > 0 {
			if err := s.c.del(ctx, entry.Elements...); err != nil {
				return err
			}
		}
		cursor = entry.Cursor
		if cursor == 0 {
			return nil
		}
	}
}

// Close is a no-op: the Client owns the connection.
func (s *Storage) Close() error {
	return nil
}
