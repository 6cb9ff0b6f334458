package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/samirrijal/geovocab/internal/adapters/geolocation"
	"github.com/samirrijal/geovocab/internal/core/domain"
	"github.com/samirrijal/geovocab/internal/core/page"
	"github.com/samirrijal/geovocab/internal/core/ports"
	"github.com/samirrijal/geovocab/internal/pkg/metrics"
)

var validate = validator.New()

// SessionSubject returns the bus subject for one kind of session event.
func SessionSubject(id, kind string) string {
	return "geovocab.session." + id + "." + kind
}

// SessionWildcard matches every event of a session.
func SessionWildcard(id string) string {
	return "geovocab.session." + id + ".>"
}

// clientAction is one message from the browser.
type clientAction struct {
	Type        string   `json:"type" validate:"required,oneof=ready click search input locate copy zoom_in zoom_out toggle_panel"`
	Lat         *float64 `json:"lat,omitempty"`
	Lon         *float64 `json:"lon,omitempty"`
	Text        string   `json:"text,omitempty" validate:"max=256"`
	Field       string   `json:"field,omitempty" validate:"omitempty,oneof=words geohash latitude longitude coordinates"`
	Error       string   `json:"error,omitempty" validate:"max=256"`
	Unsupported bool     `json:"unsupported,omitempty"`
}

func (a clientAction) point() *domain.GeoPoint {
	if a.Lat == nil || a.Lon == nil {
		return nil
	}
	return &domain.GeoPoint{Lat: *a.Lat, Lon: *a.Lon}
}

// serverEvent is one message to the browser.
type serverEvent struct {
	Type   string         `json:"type"`
	ID     string         `json:"id,omitempty"`
	State  *page.Snapshot `json:"state,omitempty"`
	Camera *cameraCommand `json:"camera,omitempty"`
	Text   string         `json:"text,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// cameraCommand mirrors the Leaflet call the browser should make.
type cameraCommand struct {
	Op            string  `json:"op"`
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
	Zoom          int     `json:"zoom"`
	Duration      float64 `json:"duration"` // seconds
	EaseLinearity float64 `json:"easeLinearity"`
}

// Session runs one page for one browser connection. Everything the page
// wants the browser to do goes out on the event bus.
type Session struct {
	id      string
	deps    *Dependencies
	ctrl    *page.Controller
	logger  *slog.Logger
	resumed bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSession creates a session. When requested names a saved session that
// still exists, its state is restored; otherwise a fresh id is issued.
func NewSession(ctx context.Context, deps *Dependencies, requested string) *Session {
	s := &Session{deps: deps}
	s.ctx, s.cancel = context.WithCancel(ctx)

	state, id, ok := s.restore(requested)
	if !ok {
		id = uuid.NewString()
		state = page.Initial()
	}
	s.id = id
	s.resumed = ok
	s.logger = deps.logger().With("session", id)

	opts := []page.Option{
		page.WithTimings(deps.timings()),
		page.WithInitialState(state),
		page.WithClipboard(busClipboard{s}),
		page.WithListener(s.onState),
		page.WithLogger(s.logger),
	}
	s.ctrl = page.NewController(deps.API, opts...)

	metrics.ActiveSessions.Inc()
	if ok {
		metrics.SessionsResumed.Inc()
	}
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Resumed reports whether the session continued a saved one.
func (s *Session) Resumed() bool { return s.resumed }

// Controller exposes the page controller.
func (s *Session) Controller() *page.Controller { return s.ctrl }

// Start announces the session and its current state to the browser.
func (s *Session) Start() {
	s.publish("session", serverEvent{Type: "session", ID: s.id})
	snap := s.ctrl.State().Snapshot()
	s.publish("state", serverEvent{Type: "state", State: &snap})
}

// Handle applies one raw client message. Lookups run in the background so
// a slow upstream never blocks later actions.
func (s *Session) Handle(raw []byte) error {
	var a clientAction
	if err := json.Unmarshal(raw, &a); err != nil {
		return errors.New("invalid JSON")
	}
	if err := validate.Struct(a); err != nil {
		return fmt.Errorf("invalid action: %w", err)
	}
	metrics.SessionActions.WithLabelValues(a.Type).Inc()

	switch a.Type {
	case "ready":
		s.ctrl.MountMap(busCamera{s})
	case "click":
		p := a.point()
		if p == nil {
			return errors.New("click needs lat and lon")
		}
		s.background(func() { s.ctrl.MapClick(s.ctx, p.Lat, p.Lon) })
	case "input":
		s.ctrl.SetSearchInput(a.Text)
	case "search":
		s.ctrl.SetSearchInput(a.Text)
		s.background(func() { s.ctrl.SubmitSearch(s.ctx) })
	case "locate":
		fix := geolocation.FromBrowser(a.point(), a.Error, a.Unsupported)
		s.background(func() { s.ctrl.LocateMe(s.ctx, fix) })
	case "copy":
		if a.Text == "" || a.Field == "" {
			return errors.New("copy needs text and field")
		}
		s.background(func() { s.ctrl.CopyToClipboard(s.ctx, a.Text, a.Field) })
	case "zoom_in":
		s.ctrl.ZoomIn()
	case "zoom_out":
		s.ctrl.ZoomOut()
	case "toggle_panel":
		s.ctrl.TogglePanel()
	}
	return nil
}

// Close drops pending work and stops the page. The saved state is kept
// until it expires so the browser can reconnect.
func (s *Session) Close() {
	s.cancel()
	s.ctrl.Close()
	s.wg.Wait()
	metrics.ActiveSessions.Dec()
}

func (s *Session) background(fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
}

func (s *Session) restore(requested string) (page.State, string, bool) {
	if s.deps.Sessions == nil || requested == "" {
		return page.State{}, "", false
	}
	id, err := uuid.Parse(requested)
	if err != nil {
		return page.State{}, "", false
	}

	ctx, cancel := context.WithTimeout(s.ctx, 2*time.Second)
	defer cancel()
	raw, err := s.deps.Sessions.Load(ctx, id.String())
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			s.deps.logger().Warn("session load failed", "session", id.String(), "error", err)
		}
		return page.State{}, "", false
	}

	var state page.State
	if err := json.Unmarshal(raw, &state); err != nil {
		s.deps.logger().Warn("session snapshot corrupt", "session", id.String(), "error", err)
		return page.State{}, "", false
	}
	return state.Resumed(), id.String(), true
}

// onState runs under the controller lock after every transition.
func (s *Session) onState(snap page.Snapshot) {
	s.publish("state", serverEvent{Type: "state", State: &snap})

	if s.deps.Sessions == nil {
		return
	}
	raw, err := json.Marshal(snap.State)
	if err != nil {
		s.logger.Error("encode session state", "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.deps.Sessions.Save(ctx, s.id, raw, s.deps.sessionTTL()); err != nil {
		s.logger.Warn("session save failed", "error", err)
	}
}

func (s *Session) publish(kind string, ev serverEvent) {
	if s.deps.Bus == nil {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		s.logger.Error("encode event", "kind", kind, "error", err)
		return
	}
	if err := s.deps.Bus.Publish(context.Background(), SessionSubject(s.id, kind), data); err != nil {
		s.logger.Warn("publish failed", "kind", kind, "error", err)
	}
}

// busCamera turns camera commands into events for the browser's Leaflet map.
type busCamera struct{ s *Session }

var _ ports.MapCamera = busCamera{}

func (c busCamera) FlyTo(p domain.GeoPoint, zoom int, opts ports.FlyOptions) {
	c.send(cameraCommand{
		Op: "flyTo", Lat: p.Lat, Lon: p.Lon, Zoom: zoom,
		Duration: opts.Duration.Seconds(), EaseLinearity: opts.EaseLinearity,
	})
}

func (c busCamera) SetView(p domain.GeoPoint, zoom int, d time.Duration) {
	c.send(cameraCommand{Op: "setView", Lat: p.Lat, Lon: p.Lon, Zoom: zoom, Duration: d.Seconds()})
}

func (c busCamera) ZoomIn()  { c.send(cameraCommand{Op: "zoomIn"}) }
func (c busCamera) ZoomOut() { c.send(cameraCommand{Op: "zoomOut"}) }

func (c busCamera) send(cmd cameraCommand) {
	c.s.publish("camera", serverEvent{Type: "camera", Camera: &cmd})
}

// busClipboard asks the browser to write to its clipboard.
type busClipboard struct{ s *Session }

func (c busClipboard) WriteText(_ context.Context, text string) error {
	c.s.publish("clipboard", serverEvent{Type: "clipboard", Text: text})
	return nil
}
