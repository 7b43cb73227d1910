package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/ghdeck/internal/deck"
	"github.com/five82/ghdeck/internal/logtail"
	"github.com/five82/ghdeck/internal/settings"
	"github.com/five82/ghdeck/internal/state"
)

// Store is the part of state.Store the terminal deck reads.
type Store interface {
	Snapshot(filter settings.FilterState) state.Snapshot
	Refresh(ctx context.Context)
}

// URLSource resolves the URL a monitor key links to.
type URLSource interface {
	URL(id string) (string, bool)
}

// Options configures the UI.
type Options struct {
	Context    context.Context
	Host       *Host
	Dispatcher *deck.Dispatcher
	Store      Store
	URLs       URLSource
	LogPath    string
	ThemeName  string
	Clipboard  func(string) error
	Logger     *slog.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx        context.Context
	host       *Host
	dispatcher *deck.Dispatcher
	store      Store
	urls       URLSource
	logPath    string
	copyURL    func(string) error
	logger     *slog.Logger

	theme  Theme
	keys   keyMap
	help   help.Model
	width  int
	height int
	ready  bool

	focusRow int
	focusCol int
	showHelp bool

	snapshot state.Snapshot
	status   string
	logLines []string
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	copyFn := opts.Clipboard
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Dracula"
	}

	return Model{
		ctx:        ctx,
		host:       opts.Host,
		dispatcher: opts.Dispatcher,
		store:      opts.Store,
		urls:       opts.URLs,
		logPath:    opts.LogPath,
		copyURL:    copyFn,
		logger:     logger,
		theme:      GetTheme(themeName),
		keys:       DefaultKeyMap(),
		help:       help.New(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForChangeCmd(m.host),
		tickCmd(LogRefreshInterval),
		readLogCmd(m.logPath),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		return m, nil

	case hostChangedMsg:
		m.refreshSnapshot()
		return m, waitForChangeCmd(m.host)

	case tickMsg:
		m.refreshSnapshot()
		return m, tea.Batch(readLogCmd(m.logPath), tickCmd(LogRefreshInterval))

	case logTailMsg:
		if msg.err == nil {
			m.logLines = msg.lines
		}
		return m, nil

	case statusMsg:
		m.status = string(msg)
		return m, nil
	}

	return m, nil
}

func (m *Model) refreshSnapshot() {
	if m.store != nil {
		m.snapshot = m.store.Snapshot(settings.ShowAll)
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		// Any other key closes help.
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.Up):
		m.move(-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.move(1, 0)
	case key.Matches(msg, m.keys.Left):
		m.move(0, -1)
	case key.Matches(msg, m.keys.Right):
		m.move(0, 1)
	case key.Matches(msg, m.keys.Press):
		cell, ok := m.focused()
		if !ok || cell.Empty || m.dispatcher == nil {
			return m, nil
		}
		return m, pressCmd(m.ctx, m.dispatcher, cell.Button)
	case key.Matches(msg, m.keys.Copy):
		m.status = m.copyFocusedURL()
	case key.Matches(msg, m.keys.Refresh):
		if m.store == nil {
			return m, nil
		}
		m.status = "Refreshing…"
		return m, refreshCmd(m.ctx, m.store)
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
	}
	return m, nil
}

func (m *Model) move(dr, dc int) {
	if m.host == nil {
		return
	}
	grid := m.host.Grid()
	if len(grid) == 0 {
		return
	}
	m.focusRow = clamp(m.focusRow+dr, 0, len(grid)-1)
	m.focusCol = clamp(m.focusCol+dc, 0, len(grid[m.focusRow])-1)
}

func (m Model) focused() (Cell, bool) {
	if m.host == nil {
		return Cell{}, false
	}
	grid := m.host.Grid()
	if m.focusRow >= len(grid) || m.focusCol >= len(grid[m.focusRow]) {
		return Cell{}, false
	}
	return grid[m.focusRow][m.focusCol], true
}

func (m Model) focusedURL() (string, bool) {
	cell, ok := m.focused()
	if !ok || cell.Empty || cell.Button.Kind != deck.KindMonitor || m.urls == nil {
		return "", false
	}
	return m.urls.URL(cell.Button.ID)
}

func (m Model) copyFocusedURL() string {
	url, ok := m.focusedURL()
	if !ok {
		return "Nothing to copy"
	}
	if err := m.copyURL(url); err != nil {
		m.logger.Warn("copy to clipboard failed", "error", err)
		return fmt.Sprintf("Copy failed: %v", err)
	}
	return "Copied " + url
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Messages

type hostChangedMsg struct{}

type tickMsg time.Time

type statusMsg string

type logTailMsg struct {
	lines []string
	err   error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForChangeCmd(h *Host) tea.Cmd {
	if h == nil {
		return nil
	}
	return func() tea.Msg {
		<-h.Changes()
		return hostChangedMsg{}
	}
}

func readLogCmd(path string) tea.Cmd {
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		lines, err := logtail.Read(path, LogFooterLines)
		return logTailMsg{lines: lines, err: err}
	}
}

func pressCmd(ctx context.Context, d *deck.Dispatcher, b deck.Button) tea.Cmd {
	return func() tea.Msg {
		d.KeyDown(ctx, b)
		return nil
	}
}

func refreshCmd(ctx context.Context, s Store) tea.Cmd {
	return func() tea.Msg {
		s.Refresh(ctx)
		return statusMsg("Refreshed at " + time.Now().Format("15:04:05"))
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx is
// cancelled.
func Run(opts Options) error {
	if opts.Host == nil {
		return fmt.Errorf("ui requires a host")
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
