package page

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/samirrijal/geovocab/internal/core/domain"
	"github.com/samirrijal/geovocab/internal/core/mapview"
	"github.com/samirrijal/geovocab/internal/core/ports"
)

// CopiedResetAfter is how long the "copied" indicator stays on.
const CopiedResetAfter = 2 * time.Second

// Listener receives a snapshot after every transition, in order. It is called
// with the controller locked and must not call back into the controller.
type Listener func(Snapshot)

// Option configures a Controller.
type Option func(*Controller)

// WithListener sets the snapshot listener.
func WithListener(l Listener) Option {
	return func(c *Controller) { c.listener = l }
}

// WithClipboard sets where copied text goes.
func WithClipboard(cb ports.Clipboard) Option {
	return func(c *Controller) { c.clipboard = cb }
}

// WithTimings overrides the map camera timings.
func WithTimings(t mapview.Timings) Option {
	return func(c *Controller) { c.timings = t }
}

// WithCopyResetAfter overrides CopiedResetAfter.
func WithCopyResetAfter(d time.Duration) Option {
	return func(c *Controller) { c.copyResetAfter = d }
}

// WithInitialState starts the controller from a saved state.
func WithInitialState(s State) Option {
	return func(c *Controller) { c.state = s }
}

// WithLogger sets the controller's logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// Controller owns the state of one page and runs the side effects of each
// user action. Actions may run concurrently; none blocks or cancels another.
type Controller struct {
	api            ports.GeoVocabAPI
	clipboard      ports.Clipboard
	listener       Listener
	timings        mapview.Timings
	copyResetAfter time.Duration
	logger         *slog.Logger
	view           *mapview.View

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	state     State
	copyTimer *time.Timer
	closed    bool
}

// NewController creates a controller for a fresh page.
func NewController(api ports.GeoVocabAPI, opts ...Option) *Controller {
	c := &Controller{
		api:            api,
		timings:        mapview.DefaultTimings(),
		copyResetAfter: CopiedResetAfter,
		logger:         slog.Default(),
		state:          Initial(),
	}
	for _, o := range opts {
		o(c)
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.view = mapview.New(c.timings, c.AnimationComplete,
		mapview.OnClick(func(lat, lon float64) { c.MapClick(c.ctx, lat, lon) }),
		mapview.OnReady(func(ports.MapCamera) { c.dispatch(MapReady{}) }),
	)
	c.view.Sync(targetOf(c.state))
	return c
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// View returns the map view the controller drives.
func (c *Controller) View() *mapview.View { return c.view }

// MountMap hands the live camera to the map view.
func (c *Controller) MountMap(camera ports.MapCamera) {
	c.view.Mount(camera)
}

// MapClick looks up the phrase for a clicked point. If ctx is cancelled
// before the answer arrives, nothing more is dispatched.
func (c *Controller) MapClick(ctx context.Context, lat, lon float64) {
	c.dispatch(ClickStarted{Point: domain.GeoPoint{Lat: lat, Lon: lon}})

	res, err := c.api.WordsForCoordinates(ctx, lat, lon)
	if abandoned(ctx) {
		return
	}
	if err != nil {
		c.logger.WarnContext(ctx, "words lookup failed",
			"lat", lat, "lon", lon, "kind", domain.KindOf(err), "error", err)
		c.dispatch(WordsFailed{Message: domain.UserMessage(err, MsgWordsFailed), Kind: domain.KindOf(err)})
		return
	}
	c.dispatch(WordsLoaded{Result: *res})
}

// SetSearchInput records what is typed in the search box.
func (c *Controller) SetSearchInput(text string) {
	c.dispatch(SearchInputChanged{Text: text})
}

// SubmitSearch resolves the current search input. Blank input does nothing.
func (c *Controller) SubmitSearch(ctx context.Context) {
	c.mu.Lock()
	phrase := strings.TrimSpace(c.state.SearchInput)
	c.mu.Unlock()
	if phrase == "" {
		return
	}

	c.dispatch(SearchStarted{})

	res, err := c.api.LocationForWords(ctx, phrase)
	if abandoned(ctx) {
		return
	}
	if err != nil {
		c.logger.WarnContext(ctx, "location lookup failed",
			"words", phrase, "kind", domain.KindOf(err), "error", err)
		c.dispatch(LocationFailed{Message: domain.UserMessage(err, MsgLocationFailed), Kind: domain.KindOf(err)})
		return
	}
	c.dispatch(LocationLoaded{Result: *res})
}

// AnimationComplete is called by the map view when a fly-in ends.
func (c *Controller) AnimationComplete(seq uint64) {
	c.dispatch(AnimationCompleted{Seq: seq})
}

// LocateMe takes a one-shot fix from locator and looks it up like a click.
// A nil locator means geolocation is not available at all.
func (c *Controller) LocateMe(ctx context.Context, locator ports.Locator) {
	if locator == nil {
		c.dispatch(GeolocationUnsupported{})
		return
	}

	c.dispatch(LocateStarted{})

	p, err := locator.CurrentPosition(ctx)
	if abandoned(ctx) {
		return
	}
	if err != nil {
		c.logger.InfoContext(ctx, "geolocation failed", "error", err)
		msg := MsgLocationDenied
		if errors.Is(err, domain.ErrGeolocationUnsupported) {
			msg = MsgGeolocationUnsupported
		}
		c.dispatch(LocateFailed{Message: msg})
		return
	}

	c.dispatch(LocateSucceeded{Point: p})
	c.MapClick(ctx, p.Lat, p.Lon)
}

// CopyToClipboard writes text to the clipboard and flags field as copied
// for a short while.
func (c *Controller) CopyToClipboard(ctx context.Context, text, field string) {
	if c.clipboard != nil {
		if err := c.clipboard.WriteText(ctx, text); err != nil {
			c.logger.WarnContext(ctx, "clipboard write failed", "field", field, "error", err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.apply(Copied{Field: field})

	seq := c.state.CopySeq
	if c.copyTimer != nil {
		c.copyTimer.Stop()
	}
	c.copyTimer = time.AfterFunc(c.copyResetAfter, func() {
		c.dispatch(CopyExpired{Seq: seq})
	})
}

// ZoomIn zooms the map in.
func (c *Controller) ZoomIn() { c.view.ZoomIn() }

// ZoomOut zooms the map out.
func (c *Controller) ZoomOut() { c.view.ZoomOut() }

// TogglePanel opens or closes the result panel.
func (c *Controller) TogglePanel() { c.dispatch(PanelToggled{}) }

// Close stops timers and the map view. Later actions are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	if c.copyTimer != nil {
		c.copyTimer.Stop()
	}
	c.mu.Unlock()

	c.cancel()
	c.view.Close()
}

func (c *Controller) dispatch(a Action) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.apply(a)
}

// apply runs one transition and publishes it. Called with c.mu held.
func (c *Controller) apply(a Action) {
	c.state = Reduce(c.state, a)
	c.view.Sync(targetOf(c.state))
	if c.listener != nil {
		c.listener(c.state.Snapshot())
	}
}

// abandoned reports whether the caller gave up on a request. Its outcome is
// dropped so the state keeps showing what came before.
func abandoned(ctx context.Context) bool {
	return errors.Is(ctx.Err(), context.Canceled)
}

func targetOf(s State) mapview.Target {
	return mapview.Target{
		Position: s.MarkerPosition,
		Animate:  s.ShouldAnimate,
		Seq:      s.AnimationSeq,
	}
}
