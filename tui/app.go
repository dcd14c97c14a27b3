// Package tui is the terminal watch view: every configured entity in one
// table, driven by the same engine that feeds the tray.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tonhe/hometray/internal/engine"
	"github.com/tonhe/hometray/tui/components"
	"github.com/tonhe/hometray/tui/keys"
	"github.com/tonhe/hometray/tui/styles"
	"github.com/tonhe/hometray/tui/views"
)

// AppState represents the current screen of the application.
type AppState int

const (
	StateEntities AppState = iota
	StateDetail
)

const actionTimeout = 15 * time.Second

// Engine is the part of engine.Manager the view drives.
type Engine interface {
	List() []string
	Snapshot(entityID string) (engine.EntitySnapshot, error)
	Get(entityID string) (*engine.Poller, bool)
	RefreshAll(ctx context.Context) error
	StopAll()
}

// Options configures the watch view.
type Options struct {
	Theme    string
	HubURL   string
	Interval time.Duration
	Version  string
}

// TickMsg triggers a periodic UI refresh to pick up new poll data.
type TickMsg struct{}

// ActionMsg reports the outcome of a toggle or refresh.
type ActionMsg struct {
	Action   string
	EntityID string
	Err      error
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	state    AppState
	theme    styles.Theme
	opts     Options
	engine   Engine
	entities views.EntitiesView
	detail   views.DetailView
	help     views.HelpView
	width    int
	height   int
	message  string
	isErr    bool
}

// NewAppModel creates a new AppModel over a running engine.
func NewAppModel(opts Options, eng Engine) AppModel {
	theme := styles.Resolve(opts.Theme)
	if opts.Interval <= 0 {
		opts.Interval = engine.DefaultInterval
	}
	m := AppModel{
		state:    StateEntities,
		theme:    theme,
		opts:     opts,
		engine:   eng,
		entities: views.NewEntitiesView(theme),
		detail:   views.NewDetailView(theme),
		help:     views.NewHelpView(theme),
	}
	m.entities.SetSnapshots(m.snapshots())
	return m
}

// Init returns the initial command to start the tick loop.
func (m AppModel) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}

func (m AppModel) snapshots() []engine.EntitySnapshot {
	ids := m.engine.List()
	out := make([]engine.EntitySnapshot, 0, len(ids))
	for _, id := range ids {
		if s, err := m.engine.Snapshot(id); err == nil {
			out = append(out, s)
		}
	}
	return out
}

func (m AppModel) toggleCmd(entityID string) tea.Cmd {
	p, ok := m.engine.Get(entityID)
	if !ok {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return ActionMsg{Action: "toggle", EntityID: entityID, Err: p.Toggle(ctx)}
	}
}

func (m AppModel) refreshCmd() tea.Cmd {
	eng := m.engine
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return ActionMsg{Action: "refresh", Err: eng.RefreshAll(ctx)}
	}
}

// Update handles messages and dispatches to the active view.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Body height = total - 1 (header) - 2 (status bar lines)
		m.entities.SetSize(msg.Width, msg.Height-3)
		m.detail.SetSize(msg.Width, msg.Height-3)
		m.help.SetSize(msg.Width, msg.Height-3)
		return m, nil

	case TickMsg:
		m.sync()
		return m, tickCmd()

	case ActionMsg:
		m.isErr = msg.Err != nil
		switch {
		case msg.Err != nil:
			m.message = fmt.Sprintf("%s failed: %v", msg.Action, msg.Err)
		case msg.EntityID != "":
			m.message = fmt.Sprintf("%s %s", msg.Action, msg.EntityID)
		default:
			m.message = msg.Action + " done"
		}
		m.sync()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.DefaultKeyMap.Quit) {
			m.engine.StopAll()
			return m, tea.Quit
		}
		if key.Matches(msg, keys.DefaultKeyMap.Help) {
			m.help.Toggle()
			return m, nil
		}
		if m.help.IsVisible() {
			if key.Matches(msg, keys.DefaultKeyMap.Escape) {
				m.help.Toggle()
			}
			return m, nil
		}

		switch m.state {
		case StateEntities:
			switch {
			case key.Matches(msg, keys.DefaultKeyMap.Toggle):
				if s, ok := m.entities.Selected(); ok {
					return m, m.toggleCmd(s.EntityID)
				}
				return m, nil
			case key.Matches(msg, keys.DefaultKeyMap.Refresh):
				return m, m.refreshCmd()
			case key.Matches(msg, keys.DefaultKeyMap.Detail):
				if s, ok := m.entities.Selected(); ok {
					m.detail.SetSnapshot(s)
					m.state = StateDetail
				}
				return m, nil
			}
			var cmd tea.Cmd
			m.entities, cmd = m.entities.Update(msg)
			return m, cmd

		case StateDetail:
			switch {
			case key.Matches(msg, keys.DefaultKeyMap.Toggle):
				return m, m.toggleCmd(m.detail.EntityID())
			case key.Matches(msg, keys.DefaultKeyMap.Refresh):
				return m, m.refreshCmd()
			}
			var (
				cmd  tea.Cmd
				back bool
			)
			m.detail, cmd, back = m.detail.Update(msg)
			if back {
				m.state = StateEntities
			}
			return m, cmd
		}
	}
	return m, nil
}

// sync pulls fresh snapshots from the engine into the views.
func (m *AppModel) sync() {
	snaps := m.snapshots()
	m.entities.SetSnapshots(snaps)
	if id := m.detail.EntityID(); id != "" {
		for _, s := range snaps {
			if s.EntityID == id {
				m.detail.SetSnapshot(s)
			}
		}
	}
}

// View renders the full application UI by composing header, body, and status.
func (m AppModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	snaps := m.snapshots()
	healthy := 0
	var lastPoll time.Time
	for _, s := range snaps {
		if s.LastError == nil && s.HasDisplay {
			healthy++
		}
		if s.LastPoll.After(lastPoll) {
			lastPoll = s.LastPoll
		}
	}
	header := components.RenderHeader(m.theme, m.opts.HubURL, healthy, len(snaps), m.width, m.opts.Version)

	var body string
	switch {
	case m.help.IsVisible():
		body = m.help.View()
	case m.state == StateDetail:
		body = m.detail.View()
	default:
		body = m.entities.View()
	}

	statusBar := components.RenderStatusBar(m.theme, m.opts.Interval, lastPoll, m.message, m.isErr, m.width)

	// Fill body to the available height between header and status bar
	bodyHeight := m.height - 1 - 2 // 1 header line, 2 status bar lines
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	bodyStyle := lipgloss.NewStyle().
		Width(m.width).
		Height(bodyHeight).
		Foreground(m.theme.Base05)

	return lipgloss.JoinVertical(lipgloss.Left, header, bodyStyle.Render(body), statusBar)
}
