package tui

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"gallery-viewer/internal/layout"
	"gallery-viewer/internal/loader"
	"gallery-viewer/internal/logging"
	"gallery-viewer/internal/refresh"
	"gallery-viewer/internal/slideshow"
	"gallery-viewer/internal/thumbnail"
	"gallery-viewer/internal/viewer"
)

type phase int

const (
	phaseNavigating phase = iota
	phaseLoading
	phaseReady
	phaseError
)

// Rows taken by the header and footer around the grid.
const (
	headerRows = 1
	chromeRows = 2
)

// Approximate pixels per cell, used to turn drags into swipe distances.
const (
	cellWidthPx  = 8
	cellHeightPx = 16
)

// Options wires a Model.
type Options struct {
	// Context bounds every network call the viewer makes.
	Context  context.Context
	API      viewer.API
	Renewer  Renewer
	Images   loader.Fetcher
	Videos   loader.Fetcher
	Store    refresh.Store
	Resolver *thumbnail.Resolver
	// Start is the first URL visited: a renewal URL (/open?t=...) or a
	// landing URL (/site/index.html?folder=...&t=...).
	Start       string
	DownloadDir string
	VideoTiles  bool
	TileWidth   int
	Flow        layout.Flow
	Workers     int
}

type mousePoint struct{ x, y int }

// Model is the bubbletea model of the gallery viewer.
type Model struct {
	ctx    context.Context
	opts   Options
	keys   keyMap
	styles styles
	help   help.Model

	bus     *bus
	surface *surface
	toasts  *toaster
	nav     *navigator

	gen     int
	phase   phase
	token   string
	params  viewer.Params
	route   *viewer.ErrorRoute
	session *viewer.Session
	cancel  context.CancelFunc

	width, height int
	cursor        int
	grid          viewport.Model
	spinner       spinner.Model
	press         *mousePoint
}

// New creates a Model that starts by visiting opts.Start.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Store == nil {
		opts.Store = refresh.NewMemoryStore()
	}
	if opts.Resolver == nil {
		opts.Resolver = thumbnail.NewResolver(thumbnail.DefaultPolicy())
	}
	if opts.TileWidth <= 0 {
		opts.TileWidth = defaultTileWidth
	}
	if opts.DownloadDir == "" {
		opts.DownloadDir = "."
	}

	b := newBus()
	return Model{
		ctx:     ctx,
		opts:    opts,
		keys:    defaultKeyMap(),
		styles:  defaultStyles(),
		help:    help.New(),
		bus:     b,
		surface: &surface{bus: b},
		toasts:  &toaster{bus: b, now: time.Now},
		nav:     &navigator{bus: b},
		gen:     1,
		phase:   phaseNavigating,
		token:   tokenOf(opts.Start),
		cursor:  -1,
		grid:    viewport.New(0, 0),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(defaultStyles().Header)),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.bus.wait(m.ctx),
		resolveCmd(m.ctx, m.opts.Renewer, m.gen, m.opts.Start),
		m.spinner.Tick,
	)
}

// Close cancels the current session and waits for its loads.
func (m Model) Close() {
	if m.cancel != nil {
		m.cancel()
	}
	if m.session != nil {
		m.session.Close()
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg), nil
	case changedMsg:
		return m.handleChange()
	case landedMsg:
		return m.handleLanded(msg)
	case loadedMsg:
		return m.handleLoaded(msg), nil
	case downloadedMsg:
		m.handleDownloaded(msg)
		return m, nil
	case toastExpiredMsg:
		return m, nil
	case spinner.TickMsg:
		if m.phase != phaseNavigating && m.phase != phaseLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) masonry() layout.Masonry {
	return gridMasonry(m.width, m.opts.TileWidth, m.opts.Flow)
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.help.Width = width
	m.grid.Width = width
	m.grid.Height = max(1, height-chromeRows)
	if m.session != nil {
		m.session.Resize(m.masonry().Columns, m.opts.TileWidth)
	}
	m.refreshGrid()
}

// navigate abandons the current session and resolves target.
func (m Model) navigate(target string) (Model, tea.Cmd) {
	m.closeSession()
	m.gen++
	m.phase = phaseNavigating
	m.route = nil
	m.cursor = -1
	if t := tokenOf(target); t != "" {
		m.token = t
	}
	logging.Debug("tui: navigating to %s", target)
	return m, tea.Batch(resolveCmd(m.ctx, m.opts.Renewer, m.gen, target), m.spinner.Tick)
}

func (m *Model) closeSession() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if s := m.session; s != nil {
		m.session = nil
		go s.Close()
	}
	m.surface.reset()
	m.grid.SetContent("")
	m.grid.SetYOffset(0)
}

func (m Model) handleChange() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.bus.wait(m.ctx)}
	if target, ok := m.nav.take(); ok {
		var cmd tea.Cmd
		m, cmd = m.navigate(target)
		cmds = append(cmds, cmd)
	}
	m.refreshGrid()
	if _, left := m.toasts.current(); left > 0 {
		cmds = append(cmds, tea.Tick(left, func(time.Time) tea.Msg { return toastExpiredMsg{} }))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleLanded(msg landedMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.gen {
		return m, nil
	}
	if msg.route != nil {
		logging.Warn("tui: landing failed: %v", msg.route)
		m.phase = phaseError
		m.route = msg.route
		return m, nil
	}

	m.params = msg.params
	m.token = msg.params.Token
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel
	coord := refresh.New(m.opts.Store, m.nav, m.toasts, msg.params.Token)
	m.session = viewer.NewSession(viewer.Config{
		Params:     msg.params,
		API:        m.opts.API,
		Images:     m.opts.Images,
		Videos:     m.opts.Videos,
		Resolver:   m.opts.Resolver,
		Recovery:   coord,
		Surface:    m.surface,
		Notifier:   m.toasts,
		Masonry:    m.masonry(),
		VideoTiles: m.opts.VideoTiles,
		Workers:    m.opts.Workers,
		OnChange:   m.bus.poke,
	})
	m.phase = phaseLoading

	s, gen := m.session, m.gen
	return m, func() tea.Msg { return loadedMsg{gen: gen, err: s.Load(ctx)} }
}

func (m Model) handleLoaded(msg loadedMsg) Model {
	if msg.gen != m.gen {
		return m
	}
	var route *viewer.ErrorRoute
	switch {
	case msg.err == nil:
		m.phase = phaseReady
	case errors.Is(msg.err, viewer.ErrRedirected):
		// The navigator already holds the renewal URL.
	case errors.As(msg.err, &route):
		m.phase = phaseError
		m.route = route
	default:
		logging.Error("tui: load failed: %v", msg.err)
		m.phase = phaseError
		m.route = &viewer.ErrorRoute{Code: http.StatusInternalServerError, Reason: viewer.ReasonListFailed}
	}
	m.refreshGrid()
	return m
}

func (m *Model) refreshGrid() {
	if m.session == nil {
		return
	}
	boxes := m.session.Boxes()
	if order := m.session.Order(); m.cursor < 0 && order.Len() > 0 {
		m.cursor = order[0]
	}
	m.grid.SetContent(renderGrid(m.session.Tiles(), boxes, m.cursor, m.styles))

	top, bottom, ok := cursorRows(boxes, m.cursor)
	if !ok {
		return
	}
	switch {
	case top < m.grid.YOffset:
		m.grid.SetYOffset(top)
	case bottom > m.grid.YOffset+m.grid.Height:
		m.grid.SetYOffset(bottom - m.grid.Height)
	}
}

// modalOpen returns the slideshow when it is showing.
func (m Model) modalOpen() (*slideshow.Controller, bool) {
	if m.session == nil {
		return nil, false
	}
	ctrl := m.session.Slideshow()
	if ctrl == nil || !ctrl.IsOpen() {
		return nil, false
	}
	return ctrl, true
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit
	}

	if m.phase == phaseError {
		if key.Matches(msg, m.keys.Retry) && m.token != "" {
			return m.navigate(refresh.RenewalURL(m.token))
		}
		return m, nil
	}
	if m.session == nil {
		return m, nil
	}

	if ctrl, ok := m.modalOpen(); ok {
		switch {
		case key.Matches(msg, m.keys.Left):
			ctrl.HandleKey(slideshow.KeyArrowLeft)
		case key.Matches(msg, m.keys.Right):
			ctrl.HandleKey(slideshow.KeyArrowRight)
		case key.Matches(msg, m.keys.Close):
			ctrl.HandleKey(slideshow.KeyEscape)
		case key.Matches(msg, m.keys.Download):
			order := m.session.Order()
			if pos := ctrl.Position(); pos >= 0 && pos < order.Len() {
				return m, m.downloadOriginal(order[pos])
			}
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Left):
		m.move(dirLeft)
	case key.Matches(msg, m.keys.Right):
		m.move(dirRight)
	case key.Matches(msg, m.keys.Up):
		m.move(dirUp)
	case key.Matches(msg, m.keys.Down):
		m.move(dirDown)
	case key.Matches(msg, m.keys.Open):
		m.activate(m.cursor)
	case key.Matches(msg, m.keys.Retry):
		m.session.RetryTile(m.cursor)
	case key.Matches(msg, m.keys.Download):
		if m.cursor >= 0 {
			return m, m.downloadOriginal(m.cursor)
		}
	case key.Matches(msg, m.keys.Archive):
		return m, m.downloadArchive()
	}
	return m, nil
}

func (m *Model) move(d direction) {
	m.cursor = moveCursor(m.session.Order(), m.session.Boxes(), m.cursor, d)
	m.refreshGrid()
}

// activate opens a tile, or retries it when broken.
func (m *Model) activate(index int) {
	t, ok := m.session.Tile(index)
	if !ok {
		return
	}
	if t.Broken {
		m.session.RetryTile(index)
		return
	}
	m.session.OpenTile(index)
}

func (m Model) handleMouse(msg tea.MouseMsg) Model {
	if m.session == nil {
		return m
	}
	if ctrl, ok := m.modalOpen(); ok {
		return m.handleModalMouse(msg, ctrl)
	}

	if msg.Action != tea.MouseActionPress {
		return m
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.grid.SetYOffset(m.grid.YOffset - 3)
	case tea.MouseButtonWheelDown:
		m.grid.SetYOffset(m.grid.YOffset + 3)
	case tea.MouseButtonLeft:
		y := msg.Y - headerRows + m.grid.YOffset
		if idx, ok := hitTest(m.session.Boxes(), msg.X, y); ok {
			m.cursor = idx
			m.activate(idx)
			m.refreshGrid()
		}
	}
	return m
}

func (m Model) handleModalMouse(msg tea.MouseMsg, ctrl *slideshow.Controller) Model {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.press = &mousePoint{x: msg.X, y: msg.Y}
		}
	case tea.MouseActionRelease:
		start := m.press
		m.press = nil
		if start == nil {
			return m
		}
		dx, dy := msg.X-start.x, msg.Y-start.y
		if ctrl.HandleSwipe(dx*cellWidthPx, dy*cellHeightPx) {
			return m
		}
		if dx == 0 && dy == 0 {
			ctrl.HandleClick(m.clickTarget(msg.X, msg.Y))
		}
	}
	return m
}

func (m *Model) handleDownloaded(msg downloadedMsg) {
	switch {
	case msg.err == nil:
		logging.Info("tui: saved %s (%s)", msg.path, formatSize(msg.n))
		m.toasts.Toast("Saved "+msg.path, refresh.ToastDefault)
	case loader.IsAccessDenied(msg.err):
		// Recovery already redirected or toasted.
	default:
		logging.Warn("tui: download of %s failed: %v", msg.name, msg.err)
		m.toasts.Toast("Download failed: "+msg.name, refresh.ToastDefault)
	}
}
