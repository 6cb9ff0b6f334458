package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/samirrijal/geovocab/internal/adapters/clipboard"
	"github.com/samirrijal/geovocab/internal/adapters/geolocation"
	"github.com/samirrijal/geovocab/internal/core/domain"
	"github.com/samirrijal/geovocab/internal/core/mapview"
	"github.com/samirrijal/geovocab/internal/core/page"
	"github.com/samirrijal/geovocab/internal/core/ports"
	"github.com/samirrijal/geovocab/internal/pkg/config"
	"github.com/samirrijal/geovocab/internal/pkg/logging"
)

var logFile string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive map page",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func init() {
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "write interactive session logs to this file")
	tuiCmd.Flags().StringVar(&logFile, "log-file", "", "write interactive session logs to this file")
}

func runTUI(cmd *cobra.Command, args []string) error {
	api, err := newAPI()
	if err != nil {
		return err
	}

	// The alt screen owns the terminal, so logs only go to a file.
	tuiLogger := logger
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		tuiLogger = logging.New(f, cfg.Log.Level, "text")
	}

	var clip ports.Clipboard
	if clipboard.Available() {
		clip = clipboard.NewSystem()
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	m := newModel(ctx, api, locatorFromConfig(cfg), clip, tuiLogger, mapview.DefaultTimings())
	defer func() {
		cancel()
		m.close()
	}()

	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func locatorFromConfig(c *config.Config) ports.Locator {
	if c.Geolocation.Static {
		return geolocation.Static(domain.GeoPoint{Lat: c.Geolocation.Lat, Lon: c.Geolocation.Lon})
	}
	return geolocation.NewIPLocator(c.Geolocation.IPEndpoint, &http.Client{Timeout: 10 * time.Second})
}

type snapshotMsg page.Snapshot

// eventQueue carries controller and camera events into the Bubble Tea loop.
type eventQueue struct {
	ch   chan tea.Msg
	done chan struct{}
	once sync.Once
}

func newEventQueue() *eventQueue {
	return &eventQueue{ch: make(chan tea.Msg, 256), done: make(chan struct{})}
}

func (q *eventQueue) push(msg tea.Msg) {
	select {
	case q.ch <- msg:
	case <-q.done:
	}
}

// next waits for one event. Exactly one next is outstanding at a time.
func (q *eventQueue) next() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-q.ch:
			return msg
		case <-q.done:
			return nil
		}
	}
}

func (q *eventQueue) close() {
	q.once.Do(func() { close(q.done) })
}

type model struct {
	ctx     context.Context
	ctrl    *page.Controller
	locator ports.Locator
	events  *eventQueue

	input   textinput.Model
	spinner spinner.Model
	snap    page.Snapshot
	cam     cameraView
	width   int

	quitting bool
}

func newModel(ctx context.Context, api ports.GeoVocabAPI, locator ports.Locator, clip ports.Clipboard, logger *slog.Logger, timings mapview.Timings) model {
	events := newEventQueue()

	ti := textinput.New()
	ti.Placeholder = "apple-river-stone or 48.8566, 2.3522"
	ti.CharLimit = 256
	ti.Width = 40
	ti.Prompt = "› "

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	ctrl := page.NewController(api,
		page.WithListener(func(s page.Snapshot) { events.push(snapshotMsg(s)) }),
		page.WithClipboard(clip),
		page.WithTimings(timings),
		page.WithLogger(logger),
	)
	cam := newTermCamera(func(v cameraView) { events.push(cameraMsg(v)) })
	ctrl.MountMap(cam)

	return model{
		ctx:     ctx,
		ctrl:    ctrl,
		locator: locator,
		events:  events,
		input:   ti,
		spinner: sp,
		snap:    ctrl.State().Snapshot(),
		cam:     cam.state,
		width:   80,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.events.next())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case snapshotMsg:
		m.snap = page.Snapshot(msg)
		return m, m.events.next()

	case cameraMsg:
		m.cam = cameraView(msg)
		return m, m.events.next()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}

	if m.input.Focused() {
		switch msg.Type {
		case tea.KeyEsc:
			m.input.Blur()
			return m, nil
		case tea.KeyEnter:
			m.input.Blur()
			return m.submit()
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.ctrl.SetSearchInput(m.input.Value())
		return m, cmd
	}

	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "/", "s":
		return m, m.input.Focus()
	case "l":
		return m, m.run(func(ctx context.Context) { m.ctrl.LocateMe(ctx, m.locator) })
	case "w", "g", "c":
		return m, m.copy(msg.String())
	case "+", "=":
		return m, m.run(func(context.Context) { m.ctrl.ZoomIn() })
	case "-":
		return m, m.run(func(context.Context) { m.ctrl.ZoomOut() })
	case "p":
		m.ctrl.TogglePanel()
	}
	return m, nil
}

// submit treats "lat, lon" as a click on the map and anything else as a
// phrase search.
func (m model) submit() (tea.Model, tea.Cmd) {
	text := m.input.Value()
	if lat, lon, ok := parseCoordinates(text); ok {
		m.input.SetValue("")
		m.ctrl.SetSearchInput("")
		return m, m.run(func(ctx context.Context) { m.ctrl.MapClick(ctx, lat, lon) })
	}
	return m, m.run(func(ctx context.Context) { m.ctrl.SubmitSearch(ctx) })
}

func (m model) copy(key string) tea.Cmd {
	p := m.snap.Panel
	if p == nil {
		return nil
	}
	var text, field string
	switch key {
	case "w":
		text, field = p.GeoVocab, "words"
	case "g":
		text, field = p.GeoHash, "geohash"
	default:
		text, field = p.Latitude+", "+p.Longitude, "coordinates"
	}
	return m.run(func(ctx context.Context) { m.ctrl.CopyToClipboard(ctx, text, field) })
}

// run executes fn off the UI loop; its effects come back as snapshots.
func (m model) run(fn func(ctx context.Context)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		fn(ctx)
		return nil
	}
}

func (m model) close() {
	m.events.close()
	m.ctrl.Close()
}

func parseCoordinates(s string) (lat, lon float64, ok bool) {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, err := domain.ParseCoordinate(parts[0])
	if err != nil {
		return 0, 0, false
	}
	lon, err = domain.ParseCoordinate(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return lat, lon, true
}
