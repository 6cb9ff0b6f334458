package main

import (
	"sync"
	"time"

	"github.com/samirrijal/geovocab/internal/core/domain"
	"github.com/samirrijal/geovocab/internal/core/ports"
)

const (
	minZoom = 1
	maxZoom = 18
)

// cameraView is what the terminal camera currently points at.
type cameraView struct {
	Center   domain.GeoPoint
	Zoom     int
	Flying   bool
	Duration time.Duration
}

type cameraMsg cameraView

// termCamera implements ports.MapCamera for the terminal map. Every move is
// handed to publish so the UI can redraw.
type termCamera struct {
	mu      sync.Mutex
	state   cameraView
	publish func(cameraView)
}

var _ ports.MapCamera = (*termCamera)(nil)

func newTermCamera(publish func(cameraView)) *termCamera {
	return &termCamera{state: cameraView{Center: domain.WorldCenter, Zoom: 2}, publish: publish}
}

func (c *termCamera) FlyTo(p domain.GeoPoint, zoom int, opts ports.FlyOptions) {
	c.move(cameraView{Center: p, Zoom: zoom, Flying: true, Duration: opts.Duration})
}

func (c *termCamera) SetView(p domain.GeoPoint, zoom int, duration time.Duration) {
	c.move(cameraView{Center: p, Zoom: zoom, Duration: duration})
}

func (c *termCamera) ZoomIn() {
	c.mu.Lock()
	z := min(c.state.Zoom+1, maxZoom)
	s := c.state
	c.mu.Unlock()
	s.Zoom, s.Flying = z, false
	c.move(s)
}

func (c *termCamera) ZoomOut() {
	c.mu.Lock()
	z := max(c.state.Zoom-1, minZoom)
	s := c.state
	c.mu.Unlock()
	s.Zoom, s.Flying = z, false
	c.move(s)
}

func (c *termCamera) move(s cameraView) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	if c.publish != nil {
		c.publish(s)
	}
}

// grid maps a point onto a w x h equirectangular character grid.
func grid(p domain.GeoPoint, w, h int) (x, y int) {
	x = int((p.Lon + 180) / 360 * float64(w-1))
	y = int((90 - p.Lat) / 180 * float64(h-1))
	return min(max(x, 0), w-1), min(max(y, 0), h-1)
}
