package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/samirrijal/geovocab/internal/core/domain"
	"github.com/samirrijal/geovocab/internal/core/page"
)

const (
	mapWidth  = 61
	mapHeight = 17
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	copiedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	faintStyle  = lipgloss.NewStyle().Faint(true)
	labelStyle  = lipgloss.NewStyle().Width(10).Foreground(lipgloss.Color("245"))
	markerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	userStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75"))
	mapStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(0, 1)
)

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("geovocab") + faintStyle.Render("  three words for every place") + "\n\n")
	b.WriteString(m.input.View() + "\n")

	switch {
	case m.snap.Loading:
		b.WriteString(m.spinner.View() + " looking up…\n")
	case m.snap.Error != "":
		b.WriteString(errorStyle.Render(m.snap.Error) + "\n")
	default:
		b.WriteString("\n")
	}

	b.WriteString(mapStyle.Render(renderMap(m.snap, m.cam)) + "\n")
	b.WriteString(faintStyle.Render(cameraLine(m.snap, m.cam)) + "\n")

	if p := m.snap.Panel; p != nil {
		if m.snap.PanelOpen {
			b.WriteString(panelStyle.Render(renderPanel(p, m.snap.Copied)) + "\n")
		} else {
			b.WriteString(faintStyle.Render("[p] show result") + "\n")
		}
	}

	b.WriteString(faintStyle.Render("/ search · enter go · l locate me · w/g/c copy · +/- zoom · p panel · q quit"))
	return b.String()
}

// renderMap draws the world with the marker, the user's fix and the camera
// center on it. The marker carries its phrase like a popup.
func renderMap(snap page.Snapshot, cam cameraView) string {
	if !snap.MapReady {
		return lipgloss.Place(mapWidth, mapHeight, lipgloss.Center, lipgloss.Center, "Loading map...")
	}

	rows := make([][]string, mapHeight)
	for y := range rows {
		rows[y] = make([]string, mapWidth)
		for x := range rows[y] {
			rows[y][x] = "·"
		}
	}

	put := func(p domain.GeoPoint, s string) {
		x, y := grid(p, mapWidth, mapHeight)
		rows[y][x] = s
	}
	put(cam.Center, "+")
	if snap.UserLocation != nil {
		put(*snap.UserLocation, userStyle.Render("◉"))
	}
	if snap.ShowMarker && snap.MarkerPosition != nil {
		put(*snap.MarkerPosition, markerStyle.Render("●"))
		if snap.Panel != nil {
			x, y := grid(*snap.MarkerPosition, mapWidth, mapHeight)
			popup(rows, x, y, snap.Panel.GeoVocab)
		}
	}

	lines := make([]string, mapHeight)
	for y, row := range rows {
		lines[y] = strings.Join(row, "")
	}
	return strings.Join(lines, "\n")
}

// popup writes text on the row above the marker at (x, y), or below it on
// the top row, kept inside the map.
func popup(rows [][]string, x, y int, text string) {
	ly := y - 1
	if ly < 0 {
		ly = y + 1
	}
	r := []rune(text)
	w := len(rows[ly])
	if len(r) > w {
		r = r[:w]
	}
	start := min(max(x-len(r)/2, 0), w-len(r))
	for i, c := range r {
		rows[ly][start+i] = string(c)
	}
}

func cameraLine(snap page.Snapshot, cam cameraView) string {
	at := domain.FormatCoordinate(cam.Center.Lat) + ", " + domain.FormatCoordinate(cam.Center.Lon)
	if snap.ShouldAnimate && cam.Flying {
		return fmt.Sprintf("flying to %s · zoom %d", at, cam.Zoom)
	}
	return fmt.Sprintf("%s · zoom %d", at, cam.Zoom)
}

func renderPanel(p *page.Panel, copied string) string {
	row := func(label, value, field string) string {
		line := labelStyle.Render(label) + value
		if field != "" && copied == field {
			line += "  " + copiedStyle.Render("Copied!")
		}
		return line
	}

	lines := []string{
		row("Words", p.GeoVocab, "words"),
		row("Geohash", p.GeoHash, "geohash"),
		row("Latitude", p.Latitude, "coordinates"),
		row("Longitude", p.Longitude, ""),
	}
	if p.FromUser != "" {
		lines = append(lines, row("From you", p.FromUser, ""))
	}
	return strings.Join(lines, "\n")
}
