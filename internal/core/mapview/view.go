// Package mapview drives the map camera for a page: it reports clicks to its
// owner and runs the two-stage fly-in when the owner selects a new point.
package mapview

import (
	"context"
	"sync"
	"time"

	"github.com/samirrijal/geovocab/internal/core/domain"
	"github.com/samirrijal/geovocab/internal/core/ports"
	"github.com/samirrijal/geovocab/internal/pkg/metrics"
)

// Zoom levels used by the camera.
const (
	WorldZoom  = 2
	TargetZoom = 14
	SnapZoom   = 13
)

// Timings holds the durations of the camera sequence.
type Timings struct {
	WorldFlight  time.Duration // zoom out to the world view
	WorldEase    float64
	TargetDelay  time.Duration // from sequence start to the second flight
	TargetFlight time.Duration // fly in to the target; completion fires after it
	TargetEase   float64
	Snap         time.Duration // direct move when no animation is requested
}

// DefaultTimings returns the timings the web page was tuned with.
func DefaultTimings() Timings {
	return Timings{
		WorldFlight:  1200 * time.Millisecond,
		WorldEase:    0.15,
		TargetDelay:  1300 * time.Millisecond,
		TargetFlight: 3200 * time.Millisecond,
		TargetEase:   0.08,
		Snap:         800 * time.Millisecond,
	}
}

// Target is what the owner wants the map to show. Seq changes every time the
// owner sets a position that should be flown to.
type Target struct {
	Position *domain.GeoPoint
	Animate  bool
	Seq      uint64
}

// Option configures a View.
type Option func(*View)

// OnClick sets the handler that receives clicked points.
func OnClick(fn func(lat, lon float64)) Option {
	return func(v *View) { v.onClick = fn }
}

// OnReady sets the handler that receives the camera once the map is mounted.
func OnReady(fn func(ports.MapCamera)) Option {
	return func(v *View) { v.onReady = fn }
}

// View owns the camera of one map. It is safe for concurrent use.
type View struct {
	mu      sync.Mutex
	timings Timings
	camera  ports.MapCamera
	closed  bool

	target     Target
	rendered   bool
	appliedPos *domain.GeoPoint
	appliedSeq uint64

	// running sequence, if any
	cancel  context.CancelFunc
	running bool
	wg      sync.WaitGroup

	onComplete func(seq uint64)
	onClick    func(lat, lon float64)
	onReady    func(ports.MapCamera)
}

// New creates an unmounted view. onComplete is called with the target's Seq
// when a cinematic sequence finishes; it is never called for a sequence that
// was superseded or cancelled.
func New(timings Timings, onComplete func(seq uint64), opts ...Option) *View {
	v := &View{timings: timings, onComplete: onComplete}
	for _, o := range opts {
		o(v)
	}
	return v
}

// Mount attaches the live camera. Until then targets are only recorded.
func (v *View) Mount(camera ports.MapCamera) {
	v.mu.Lock()
	if v.closed || v.camera != nil {
		v.mu.Unlock()
		return
	}
	v.camera = camera
	v.apply()
	onReady := v.onReady
	v.mu.Unlock()

	if onReady != nil {
		onReady(camera)
	}
}

// Mounted reports whether a camera is attached.
func (v *View) Mounted() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.camera != nil
}

// Animating reports whether a cinematic sequence is in flight.
func (v *View) Animating() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.running
}

// Click reports a clicked point to the owner.
func (v *View) Click(lat, lon float64) {
	if v.onClick != nil {
		v.onClick(lat, lon)
	}
}

// Sync brings the camera in line with the owner's target.
func (v *View) Sync(t Target) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.target = t
	if v.camera == nil {
		return
	}
	v.apply()
}

// ZoomIn zooms the mounted camera in by one level.
func (v *View) ZoomIn() {
	if cam := v.mountedCamera(); cam != nil {
		cam.ZoomIn()
	}
}

// ZoomOut zooms the mounted camera out by one level.
func (v *View) ZoomOut() {
	if cam := v.mountedCamera(); cam != nil {
		cam.ZoomOut()
	}
}

// Close cancels any running sequence and waits for it to exit.
func (v *View) Close() {
	v.mu.Lock()
	v.closed = true
	v.stop()
	v.mu.Unlock()
	v.wg.Wait()
}

func (v *View) mountedCamera() ports.MapCamera {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.camera
}

// apply must be called with v.mu held and a camera mounted.
func (v *View) apply() {
	t := v.target
	switch {
	case t.Position != nil && t.Animate && t.Seq != v.appliedSeq:
		if v.running {
			metrics.AnimationsSuperseded.Inc()
		}
		v.stop()
		v.start(*t.Position, t.Seq)

	case v.running && !t.Animate:
		metrics.AnimationsSuperseded.Inc()
		v.stop()
		if t.Position != nil {
			v.camera.SetView(*t.Position, SnapZoom, v.timings.Snap)
		}

	case !v.running && !samePoint(t.Position, v.appliedPos):
		if t.Position == nil {
			v.camera.SetView(domain.WorldCenter, WorldZoom, v.timings.Snap)
		} else {
			v.camera.SetView(*t.Position, SnapZoom, v.timings.Snap)
		}

	case !v.rendered:
		// first render with nothing selected
		v.camera.SetView(domain.WorldCenter, WorldZoom, 0)
	}

	v.rendered = true
	v.appliedSeq = t.Seq
	if t.Position != nil {
		p := *t.Position
		v.appliedPos = &p
	} else {
		v.appliedPos = nil
	}
}

// start issues the world flight and schedules the rest. Called with v.mu held.
func (v *View) start(target domain.GeoPoint, seq uint64) {
	metrics.AnimationsStarted.Inc()

	ctx, cancel := context.WithCancel(context.Background())
	v.cancel = cancel
	v.running = true

	v.camera.FlyTo(domain.WorldCenter, WorldZoom, ports.FlyOptions{
		Duration:      v.timings.WorldFlight,
		EaseLinearity: v.timings.WorldEase,
	})

	cam, tm := v.camera, v.timings
	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		defer cancel()

		if !sleep(ctx, tm.TargetDelay) {
			return
		}
		if !v.issue(ctx, func() {
			cam.FlyTo(target, TargetZoom, ports.FlyOptions{Duration: tm.TargetFlight, EaseLinearity: tm.TargetEase})
		}) {
			return
		}
		if !sleep(ctx, tm.TargetFlight) {
			return
		}
		v.finish(ctx, seq)
	}()
}

// stop cancels the running sequence. Called with v.mu held.
func (v *View) stop() {
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.running = false
}

// issue runs fn unless the sequence was cancelled. Cancellation happens under
// v.mu, so nothing reaches the camera after stop returns.
func (v *View) issue(ctx context.Context, fn func()) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if ctx.Err() != nil {
		return false
	}
	fn()
	return true
}

func (v *View) finish(ctx context.Context, seq uint64) {
	v.mu.Lock()
	if ctx.Err() != nil {
		v.mu.Unlock()
		return
	}
	v.running = false
	v.cancel = nil
	cb := v.onComplete
	v.mu.Unlock()

	if cb != nil {
		cb(seq)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func samePoint(a, b *domain.GeoPoint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
