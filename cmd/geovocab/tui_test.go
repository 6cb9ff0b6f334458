package main

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/geovocab/internal/adapters/geolocation"
	"github.com/samirrijal/geovocab/internal/core/domain"
	"github.com/samirrijal/geovocab/internal/core/mapview"
	"github.com/samirrijal/geovocab/internal/core/page"
	"github.com/samirrijal/geovocab/internal/core/ports"
)

type fakeAPI struct {
	mu         sync.Mutex
	wordsCalls int
}

func (f *fakeAPI) WordsForCoordinates(_ context.Context, lat, lon float64) (*domain.GeoVocabResult, error) {
	f.mu.Lock()
	f.wordsCalls++
	f.mu.Unlock()
	res := paris
	return &res, nil
}

func (f *fakeAPI) LocationForWords(_ context.Context, phrase string) (*domain.GeoVocabResult, error) {
	if phrase != paris.GeoVocab {
		return nil, &domain.LookupError{Op: "location", Kind: domain.KindRejected, Status: 400, Message: "Invalid words"}
	}
	res := paris
	return &res, nil
}

func (f *fakeAPI) RegisterPremium(context.Context, string, string) (*domain.GeoVocabResult, error) {
	return nil, errors.New("not used")
}

type fakeClipboard struct {
	mu    sync.Mutex
	texts []string
}

func (f *fakeClipboard) WriteText(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	return nil
}

func (f *fakeClipboard) last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.texts) == 0 {
		return ""
	}
	return f.texts[len(f.texts)-1]
}

func testTimings() mapview.Timings {
	return mapview.Timings{
		WorldFlight:  time.Millisecond,
		TargetDelay:  5 * time.Millisecond,
		TargetFlight: 10 * time.Millisecond,
		Snap:         time.Millisecond,
	}
}

func newTestModel(t *testing.T, locator ports.Locator) (model, *fakeAPI, *fakeClipboard) {
	t.Helper()
	api, clip := &fakeAPI{}, &fakeClipboard{}
	m := newModel(context.Background(), api, locator, clip, logger, testTimings())
	t.Cleanup(m.close)
	return m, api, clip
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press feeds keys to m and runs the commands of shortcuts and submits.
// Cursor blink commands from the search box are skipped.
func press(t *testing.T, m model, keys ...string) model {
	t.Helper()
	for _, k := range keys {
		typing := m.input.Focused()
		next, cmd := m.Update(key(k))
		m = next.(model)
		if cmd == nil || k == "/" || (typing && k != "enter") {
			continue
		}
		cmd()
	}
	return m
}

// settle applies queued events until cond holds.
func settle(t *testing.T, m model, cond func(model) bool) model {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond(m) {
		select {
		case msg := <-m.events.ch:
			next, _ := m.Update(msg)
			m = next.(model)
		case <-deadline:
			t.Fatalf("timed out; snapshot %+v camera %+v", m.snap, m.cam)
		}
	}
	return m
}

func resultShown(m model) bool {
	return m.snap.Panel != nil && !m.snap.ShouldAnimate && m.cam.Zoom == mapview.TargetZoom
}

func TestModel_StartsOnWorld(t *testing.T) {
	m, _, _ := newTestModel(t, nil)

	assert.True(t, m.snap.MapReady)
	assert.Equal(t, domain.WorldCenter, m.cam.Center)
	assert.Equal(t, mapview.WorldZoom, m.cam.Zoom)
	assert.Contains(t, m.View(), "zoom 2")
}

func TestModel_CoordinatesActAsClick(t *testing.T) {
	m, api, _ := newTestModel(t, nil)

	m = press(t, m, "/", "48.8566, 2.3522", "enter")
	m = settle(t, m, resultShown)

	assert.Equal(t, "apple-river-stone", m.snap.Panel.GeoVocab)
	assert.Equal(t, paris.Point(), m.cam.Center)
	assert.Empty(t, m.input.Value())
	assert.Equal(t, 1, api.wordsCalls)
	assert.Contains(t, m.View(), "u09tvw0f")
}

func TestModel_PhraseSearch(t *testing.T) {
	m, api, _ := newTestModel(t, nil)

	m = press(t, m, "/", "apple-river-stone", "enter")
	m = settle(t, m, resultShown)

	require.NotNil(t, m.snap.MarkerPosition)
	assert.Equal(t, paris.Point(), *m.snap.MarkerPosition)
	assert.Equal(t, "apple-river-stone", m.snap.SearchInput)
	assert.Equal(t, 0, api.wordsCalls)
}

func TestModel_SearchRejected(t *testing.T) {
	m, _, _ := newTestModel(t, nil)

	m = press(t, m, "/", "nope", "enter")
	m = settle(t, m, func(m model) bool { return m.snap.Error != "" })

	assert.Equal(t, "Invalid words", m.snap.Error)
	assert.Nil(t, m.snap.Panel)
	assert.Contains(t, m.View(), "Invalid words")
}

func TestModel_LocateMe(t *testing.T) {
	m, api, _ := newTestModel(t, geolocation.Static(paris.Point()))

	m = press(t, m, "l")
	m = settle(t, m, func(m model) bool { return resultShown(m) && m.snap.UserLocation != nil })

	assert.Equal(t, 1, api.wordsCalls)
	assert.Equal(t, "0 m", m.snap.Panel.FromUser)
	assert.Contains(t, m.View(), "From you")
}

func TestModel_Copy(t *testing.T) {
	m, _, clip := newTestModel(t, nil)

	// nothing to copy yet
	m = press(t, m, "w")
	assert.Empty(t, clip.last())

	m = press(t, m, "/", "apple-river-stone", "enter")
	m = settle(t, m, resultShown)

	m = press(t, m, "w")
	m = settle(t, m, func(m model) bool { return m.snap.Copied == "words" })
	assert.Equal(t, "apple-river-stone", clip.last())
	assert.Contains(t, m.View(), "Copied!")

	m = press(t, m, "c")
	m = settle(t, m, func(m model) bool { return m.snap.Copied == "coordinates" })
	assert.Equal(t, "48.856600, 2.352200", clip.last())
}

func TestModel_TypingDoesNotTriggerShortcuts(t *testing.T) {
	m, _, _ := newTestModel(t, nil)

	m = press(t, m, "/", "q", "l")
	assert.False(t, m.quitting)
	assert.Equal(t, "ql", m.input.Value())

	m = press(t, m, "esc")
	assert.False(t, m.input.Focused())
}

func TestModel_PanelAndZoom(t *testing.T) {
	m, _, _ := newTestModel(t, nil)

	m = press(t, m, "p")
	m = settle(t, m, func(m model) bool { return !m.snap.PanelOpen })
	m = press(t, m, "p")
	m = settle(t, m, func(m model) bool { return m.snap.PanelOpen })

	m = press(t, m, "+")
	m = settle(t, m, func(m model) bool { return m.cam.Zoom == mapview.WorldZoom+1 })
	m = press(t, m, "-")
	settle(t, m, func(m model) bool { return m.cam.Zoom == mapview.WorldZoom })
}

func TestModel_Quit(t *testing.T) {
	m, _, _ := newTestModel(t, nil)

	next, cmd := m.Update(key("q"))
	m = next.(model)
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
	assert.Empty(t, m.View())
}

func TestParseCoordinates(t *testing.T) {
	tests := []struct {
		in       string
		lat, lon float64
		ok       bool
	}{
		{"48.8566, 2.3522", 48.8566, 2.3522, true},
		{"-33.8688 151.2093", -33.8688, 151.2093, true},
		{"0,0", 0, 0, true},
		{"48.8566, 362.3522", 48.8566, 362.3522, true},
		{"NaN, 0", 0, 0, false},
		{"apple-river-stone", 0, 0, false},
		{"1 2 3", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, tt := range tests {
		lat, lon, ok := parseCoordinates(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.Equal(t, tt.lat, lat, tt.in)
			assert.Equal(t, tt.lon, lon, tt.in)
		}
	}
}

func TestGrid(t *testing.T) {
	x, y := grid(domain.GeoPoint{Lat: 90, Lon: -180}, mapWidth, mapHeight)
	assert.Equal(t, 0, x)
	assert.Equal(t, 0, y)

	x, y = grid(domain.GeoPoint{Lat: -90, Lon: 180}, mapWidth, mapHeight)
	assert.Equal(t, mapWidth-1, x)
	assert.Equal(t, mapHeight-1, y)

	x, y = grid(domain.GeoPoint{Lat: 0, Lon: 0}, mapWidth, mapHeight)
	assert.Equal(t, mapWidth/2, x)
	assert.Equal(t, mapHeight/2, y)
}

func TestRenderMap_Marker(t *testing.T) {
	m, _, _ := newTestModel(t, nil)
	m = press(t, m, "/", "apple-river-stone", "enter")
	m = settle(t, m, resultShown)

	out := renderMap(m.snap, m.cam)
	assert.Len(t, strings.Split(out, "\n"), mapHeight)
	assert.Contains(t, out, "●")
	assert.Contains(t, out, "apple-river-stone")
}

func TestRenderMap_LoadingUntilMounted(t *testing.T) {
	out := renderMap(page.Initial().Snapshot(), cameraView{})
	assert.Contains(t, out, "Loading map...")
	assert.Len(t, strings.Split(out, "\n"), mapHeight)
	assert.NotContains(t, out, "·")
}

func TestPopup_StaysInsideMap(t *testing.T) {
	rows := make([][]string, 3)
	for y := range rows {
		rows[y] = strings.Split(strings.Repeat(".", 10), "")
	}

	popup(rows, 9, 0, "abcdef")

	assert.Equal(t, "....abcdef", strings.Join(rows[1], ""))
	assert.Equal(t, "..........", strings.Join(rows[0], ""))
}
