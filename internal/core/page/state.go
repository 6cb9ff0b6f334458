// Package page holds the state of one map page and the transitions user
// actions drive it through.
package page

import (
	"github.com/samirrijal/geovocab/internal/core/domain"
	"github.com/samirrijal/geovocab/internal/pkg/geospatial"
)

// User-facing messages.
const (
	MsgWordsFailed            = "Failed to get words for this location"
	MsgLocationFailed         = "Failed to find location"
	MsgLocationDenied         = "Unable to get your location. Please check permissions."
	MsgGeolocationUnsupported = "Geolocation is not supported by your browser"
)

// State is everything the page shows. It is a value: Reduce never mutates
// its input.
type State struct {
	MarkerPosition *domain.GeoPoint       `json:"markerPosition,omitempty"`
	UserLocation   *domain.GeoPoint       `json:"userLocation,omitempty"`
	SearchInput    string                 `json:"searchInput"`
	Result         *domain.GeoVocabResult `json:"result,omitempty"`
	Error          string                 `json:"error,omitempty"`
	ErrorKind      domain.ErrorKind       `json:"errorKind,omitempty"`
	Loading        bool                   `json:"loading"`
	Copied         string                 `json:"copied,omitempty"`
	CopySeq        uint64                 `json:"copySeq"`
	PanelOpen      bool                   `json:"panelOpen"`
	ShouldAnimate  bool                   `json:"shouldAnimate"`
	ShowMarker     bool                   `json:"showMarker"`
	MapReady       bool                   `json:"mapReady"`
	AnimationSeq   uint64                 `json:"animationSeq"`
}

// Initial returns the state of a freshly opened page.
func Initial() State {
	return State{PanelOpen: true, ShowMarker: true}
}

// Resumed drops everything in s that belonged to work that did not survive a
// reconnect: pending requests, running animations, the copy indicator and the
// mounted map.
func (s State) Resumed() State {
	s.Loading = false
	s.ShouldAnimate = false
	s.ShowMarker = true
	s.Copied = ""
	s.MapReady = false
	return s
}

// Panel is the result panel with coordinates already formatted.
type Panel struct {
	GeoVocab  string `json:"geoVocab"`
	GeoHash   string `json:"geoHash"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
	FromUser  string `json:"fromUser,omitempty"` // distance from the user's fix, when known
}

// Snapshot is what renderers receive after every transition.
type Snapshot struct {
	State
	Panel *Panel `json:"panel,omitempty"`
}

// Snapshot renders s for display.
func (s State) Snapshot() Snapshot {
	snap := Snapshot{State: s}
	if s.Result != nil {
		snap.Panel = &Panel{
			GeoVocab:  s.Result.GeoVocab,
			GeoHash:   s.Result.GeoHash,
			Latitude:  domain.FormatCoordinate(s.Result.Latitude),
			Longitude: domain.FormatCoordinate(s.Result.Longitude),
		}
		if s.UserLocation != nil {
			snap.Panel.FromUser = geospatial.FormatDistance(geospatial.Distance(*s.UserLocation, s.Result.Point()))
		}
	}
	return snap
}
