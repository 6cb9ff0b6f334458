package natsadapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// Bus implements ports.EventBus over NATS core pub/sub. Session events are
// only interesting while someone is watching, so nothing is persisted.
type Bus struct {
	conn *nats.Conn
}

// Connect dials NATS with the reconnect policy every process uses.
func Connect(url string, name string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return conn, nil
}

// NewBus connects to url and returns a bus on that connection.
func NewBus(url string) (*Bus, error) {
	conn, err := Connect(url, "geovocab-web")
	if err != nil {
		return nil, err
	}
	return &Bus{conn: conn}, nil
}

// Publish sends data on subject.
func (b *Bus) Publish(ctx context.Context, subject string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.conn.Publish(subject, data)
}

// Subscribe delivers messages matching pattern until the returned func is called.
func (b *Bus) Subscribe(pattern string, handler func(subject string, data []byte)) (func(), error) {
	sub, err := b.conn.Subscribe(pattern, func(msg *nats.Msg) {
		handler(msg.Subject, msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", pattern, err)
	}
	return func() { _ = sub.Unsubscribe() }, nil
}

// Ping flushes the connection to check the server is reachable.
func (b *Bus) Ping(ctx context.Context) error {
	if !b.conn.IsConnected() {
		return errors.New("nats disconnected")
	}
	return b.conn.FlushWithContext(ctx)
}

// Close drains and closes the connection.
func (b *Bus) Close() {
	_ = b.conn.Drain()
}
