package page

import (
	"github.com/samirrijal/geovocab/internal/core/domain"
)

// Action is one user- or system-triggered transition.
type Action interface {
	action()
}

// ClickStarted: the user picked a point on the map.
type ClickStarted struct{ Point domain.GeoPoint }

// WordsLoaded: the phrase for the clicked point arrived.
type WordsLoaded struct{ Result domain.GeoVocabResult }

// WordsFailed: the phrase lookup failed.
type WordsFailed struct {
	Message string
	Kind    domain.ErrorKind
}

type SearchInputChanged struct{ Text string }

type SearchStarted struct{}

type LocationLoaded struct{ Result domain.GeoVocabResult }

type LocationFailed struct {
	Message string
	Kind    domain.ErrorKind
}

// AnimationCompleted carries the sequence number the map view finished.
type AnimationCompleted struct{ Seq uint64 }

type LocateStarted struct{}

type LocateSucceeded struct{ Point domain.GeoPoint }

type LocateFailed struct{ Message string }

type GeolocationUnsupported struct{}

// Copied: Field names what was copied ("words", "hash", "coordinates").
type Copied struct{ Field string }

type CopyExpired struct{ Seq uint64 }

type PanelToggled struct{}

type MapReady struct{}

func (ClickStarted) action()           {}
func (WordsLoaded) action()            {}
func (WordsFailed) action()            {}
func (SearchInputChanged) action()     {}
func (SearchStarted) action()          {}
func (LocationLoaded) action()         {}
func (LocationFailed) action()         {}
func (AnimationCompleted) action()     {}
func (LocateStarted) action()          {}
func (LocateSucceeded) action()        {}
func (LocateFailed) action()           {}
func (GeolocationUnsupported) action() {}
func (Copied) action()                 {}
func (CopyExpired) action()            {}
func (PanelToggled) action()           {}
func (MapReady) action()               {}

// Reduce returns the state that follows s after a.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case ClickStarted:
		p := a.Point
		s.MarkerPosition = &p
		s.clearError()
		s.Loading = true
		s.PanelOpen = true
		s.ShouldAnimate = true
		s.ShowMarker = false
		s.AnimationSeq++

	case WordsLoaded:
		r := a.Result
		s.Result = &r
		s.Loading = false

	case WordsFailed:
		s.fail(a.Message, a.Kind)

	case SearchInputChanged:
		s.SearchInput = a.Text

	case SearchStarted:
		s.clearError()
		s.Loading = true
		s.ShouldAnimate = true
		s.ShowMarker = false

	case LocationLoaded:
		r := a.Result
		p := r.Point()
		s.Result = &r
		s.MarkerPosition = &p
		s.PanelOpen = true
		s.Loading = false
		s.AnimationSeq++

	case LocationFailed:
		s.fail(a.Message, a.Kind)

	case AnimationCompleted:
		if a.Seq == s.AnimationSeq {
			s.ShowMarker = true
			s.ShouldAnimate = false
		}

	case LocateStarted:
		s.Loading = true

	case LocateSucceeded:
		p := a.Point
		s.UserLocation = &p

	case LocateFailed:
		s.Error = a.Message
		s.ErrorKind = domain.KindGeolocation
		s.Loading = false

	case GeolocationUnsupported:
		s.Error = MsgGeolocationUnsupported
		s.ErrorKind = domain.KindGeolocation

	case Copied:
		s.Copied = a.Field
		s.CopySeq++

	case CopyExpired:
		if a.Seq == s.CopySeq {
			s.Copied = ""
		}

	case PanelToggled:
		s.PanelOpen = !s.PanelOpen

	case MapReady:
		s.MapReady = true
	}
	return s
}

func (s *State) clearError() {
	s.Error = ""
	s.ErrorKind = ""
}

// fail records a failed lookup: the old result goes, the marker comes back
// and any fly-in is called off.
func (s *State) fail(msg string, kind domain.ErrorKind) {
	s.Error = msg
	s.ErrorKind = kind
	s.Result = nil
	s.ShouldAnimate = false
	s.ShowMarker = true
	s.Loading = false
}
