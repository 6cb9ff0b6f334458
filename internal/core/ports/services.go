package ports

import (
	"context"
	"time"

	"github.com/samirrijal/geovocab/internal/core/domain"
)

// GeoVocabAPI is the remote service that maps points to phrases and back.
type GeoVocabAPI interface {
	WordsForCoordinates(ctx context.Context, lat, lon float64) (*domain.GeoVocabResult, error)
	LocationForWords(ctx context.Context, phrase string) (*domain.GeoVocabResult, error)
	RegisterPremium(ctx context.Context, geoHash, phrase string) (*domain.GeoVocabResult, error)
}

// Locator produces a one-shot fix of where the user is.
type Locator interface {
	CurrentPosition(ctx context.Context) (domain.GeoPoint, error)
}

// Clipboard receives text the user asked to copy.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// FlyOptions tune an animated camera move.
type FlyOptions struct {
	Duration      time.Duration
	EaseLinearity float64
}

// MapCamera is the live map instance a renderer hands to the map view.
type MapCamera interface {
	FlyTo(p domain.GeoPoint, zoom int, opts FlyOptions)
	SetView(p domain.GeoPoint, zoom int, duration time.Duration)
	ZoomIn()
	ZoomOut()
}

// EventBus carries session events from controllers to whoever renders them.
type EventBus interface {
	Publish(ctx context.Context, subject string, data []byte) error
	// Subscribe delivers every message whose subject matches pattern
	// (NATS wildcard syntax) until the returned function is called.
	Subscribe(pattern string, handler func(subject string, data []byte)) (func(), error)
}

// SessionStore keeps the last state of a session so a dropped connection can resume.
type SessionStore interface {
	Save(ctx context.Context, sessionID string, state []byte, ttl time.Duration) error
	Load(ctx context.Context, sessionID string) ([]byte, error)
	Delete(ctx context.Context, sessionID string) error
}

// Pinger is implemented by backends that can report whether they are reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
