package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/stillpath/journey/internal/journey"
	"github.com/stillpath/journey/internal/progress"
	"github.com/stillpath/journey/internal/tui/client"
	"github.com/stillpath/journey/internal/tui/theme"
	"github.com/stillpath/journey/internal/tui/views/events"
	"github.com/stillpath/journey/internal/tui/views/level"
	"github.com/stillpath/journey/internal/tui/views/path"
	"github.com/stillpath/journey/internal/tui/views/plan"
	"github.com/stillpath/journey/internal/tui/views/status"
	"github.com/stillpath/journey/internal/tui/views/xpbar"
)

// pathLevels is how many levels the path shows around the current one.
const pathLevels = 11

// Overlay identifies which modal is active.
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayLevel
	OverlayJournal
)

// Focus identifies the pane j/k moves in.
type Focus int

const (
	FocusPath Focus = iota
	FocusPlan
)

// API is the subset of the REST client the TUI uses.
type API interface {
	Progress(userID string) (*client.Standing, error)
	Plan(userID string) (*journey.JourneyLevel, error)
	Journey(from, to, current int) ([]journey.JourneyLevel, error)
	Complete(userID, activityType string) (*progress.ActivityResult, error)
	Policy() (*client.Policy, error)
	Realms() ([]journey.Realm, error)
}

// Stream is the live update feed.
type Stream interface {
	Listen(ctx context.Context) tea.Cmd
	ReadLoop(ctx context.Context) tea.Cmd
}

type catalogMsg struct {
	policy *client.Policy
	realms []journey.Realm
}

type loadedMsg struct {
	standing *client.Standing
	plan     *journey.JourneyLevel
	levels   []journey.JourneyLevel
}

type completedMsg struct {
	result *progress.ActivityResult
}

type errMsg struct {
	what string
	err  error
}

// Model is the root Bubble Tea model.
type Model struct {
	ws     Stream
	api    API
	userID string
	ctx    context.Context
	cancel context.CancelFunc

	keys   KeyMap
	help   help.Model
	width  int
	height int

	// Player state.
	progress *progress.Progress
	realms   []journey.Realm
	maxLevel int

	// Navigation.
	focus   Focus
	overlay Overlay
	busy    bool
	lastErr string

	// Sub-views.
	statusBar status.Model
	xp        xpbar.Model
	path      path.Model
	plan      plan.Model
	journal   events.Model
	detail    level.Model

	connected bool
}

// New creates the root model for userID.
func New(ws Stream, api API, userID string) Model {
	ctx, cancel := context.WithCancel(context.Background())
	m := Model{
		ws:        ws,
		api:       api,
		userID:    userID,
		ctx:       ctx,
		cancel:    cancel,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		statusBar: status.New(),
		xp:        xpbar.New(),
		path:      path.New(),
		plan:      plan.New(),
		journal:   events.New(),
	}
	m.statusBar.UserID = userID
	return m
}

// Init connects the stream and loads the catalog and the player.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.ws.Listen(m.ctx), m.loadCatalog(), m.load())
}

func (m Model) loadCatalog() tea.Cmd {
	api := m.api
	return func() tea.Msg {
		pol, err := api.Policy()
		if err != nil {
			return errMsg{what: "load policy", err: err}
		}
		realms, err := api.Realms()
		if err != nil {
			return errMsg{what: "load realms", err: err}
		}
		return catalogMsg{policy: pol, realms: realms}
	}
}

// load fetches the player's progress, today's plan and the surrounding path.
func (m Model) load() tea.Cmd {
	api, userID, maxLevel := m.api, m.userID, m.maxLevel
	return func() tea.Msg {
		st, err := api.Progress(userID)
		if err != nil {
			return errMsg{what: "load progress", err: err}
		}
		pl, err := api.Plan(userID)
		if err != nil {
			return errMsg{what: "load plan", err: err}
		}
		limit := maxLevel
		if limit == 0 {
			limit = st.Level + pathLevels
		}
		from, to := path.Window(st.Level, pathLevels, limit)
		levels, err := api.Journey(from, to, st.Level)
		if err != nil {
			return errMsg{what: "load path", err: err}
		}
		return loadedMsg{standing: st, plan: pl, levels: levels}
	}
}

func (m Model) complete(activityType string) tea.Cmd {
	api, userID := m.api, m.userID
	return func() tea.Msg {
		res, err := api.Complete(userID, activityType)
		if err != nil {
			return errMsg{what: "complete " + activityType, err: err}
		}
		return completedMsg{result: res}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statusBar.Width = msg.Width
		m.help.Width = msg.Width
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case xpbar.FrameMsg:
		var cmd tea.Cmd
		m.xp, cmd = m.xp.Update(msg)
		return m, cmd

	case catalogMsg:
		m.realms = msg.realms
		m.maxLevel = msg.policy.MaxLevel
		m.statusBar.MaxLevel = msg.policy.MaxLevel
		return m, nil

	case loadedMsg:
		m.busy = false
		return m, m.apply(msg)

	case completedMsg:
		m.busy = false
		m.lastErr = ""
		res := msg.result
		m.journal.Addf(events.KindXP, "+%d XP %s", res.XPAwarded, res.Activity.Name)
		if res.LevelsGained > 0 {
			m.journal.Addf(events.KindLevel, "reached level %d", res.Progress.Level)
		}
		return m, m.load()

	case errMsg:
		m.busy = false
		m.lastErr = fmt.Sprintf("%s: %v", msg.what, describe(msg.err))
		m.journal.Addf(events.KindError, "%s", m.lastErr)
		return m, nil

	case client.WSConnectedMsg:
		m.connected = true
		m.statusBar.Connected = true
		m.journal.Addf(events.KindConn, "connected")
		return m, m.ws.ReadLoop(m.ctx)

	case client.WSDisconnectedMsg:
		m.connected = false
		m.statusBar.Connected = false
		if msg.Err != nil {
			m.journal.Addf(events.KindConn, "disconnected: %v", msg.Err)
		}
		return m, m.ws.Listen(m.ctx)

	case client.WSSnapshotMsg:
		return m, m.ws.ReadLoop(m.ctx)

	case client.WSProgressMsg:
		cmds := []tea.Cmd{m.ws.ReadLoop(m.ctx)}
		if m.isSelf(msg.Payload.Progress.UserID) && m.changed(msg.Payload.Progress) {
			cmds = append(cmds, m.load())
		}
		return m, tea.Batch(cmds...)

	case client.WSLevelUpMsg:
		if m.isSelf(msg.Payload.UserID) {
			m.journal.Addf(events.KindLevel, "level %d → %d in %s", msg.Payload.From, msg.Payload.To, msg.Payload.RealmName)
		}
		return m, m.ws.ReadLoop(m.ctx)

	case client.WSTestResultMsg:
		if m.isSelf(msg.Payload.UserID) {
			verdict := "failed"
			if msg.Payload.Passed {
				verdict = "passed"
			}
			m.journal.Addf(events.KindTest, "%s level %d test with %d (+%d XP)",
				verdict, msg.Payload.Level, msg.Payload.Score, msg.Payload.XPAwarded)
		}
		return m, m.ws.ReadLoop(m.ctx)

	case client.WSErrorMsg:
		m.journal.Addf(events.KindError, "server: %s", msg.Payload.Message)
		return m, m.ws.ReadLoop(m.ctx)
	}

	return m, nil
}

func (m Model) isSelf(userID string) bool {
	return userID != "" && userID == m.userID
}

// changed reports whether p differs from what the UI last loaded. Our own
// completions come back over the stream after they were already applied.
func (m Model) changed(p *progress.Progress) bool {
	if m.progress == nil {
		return true
	}
	return p.XP != m.progress.XP ||
		p.Level != m.progress.Level ||
		len(p.CompletedToday) != len(m.progress.CompletedToday) ||
		p.LastActiveDay != m.progress.LastActiveDay
}

func (m *Model) apply(msg loadedMsg) tea.Cmd {
	p := msg.standing.Progress
	m.progress = &p
	m.lastErr = ""

	m.statusBar.Level = p.Level
	m.statusBar.Streak = p.Streak
	m.statusBar.LongestStreak = p.LongestStreak
	m.statusBar.Realm = m.realmFor(*msg.plan)

	m.path.SetLevels(msg.levels, p.Level)
	m.path.SetPassed(p.PassedTests)
	m.plan.SetLevel(*msg.plan)
	m.layout()

	if m.overlay == OverlayLevel {
		m.openLevel(m.detail.Level.Level)
	}
	return m.xp.SetProgress(msg.standing.Standing)
}

// realmFor prefers the catalog entry for its colors.
func (m Model) realmFor(jl journey.JourneyLevel) journey.Realm {
	for _, r := range m.realms {
		if r.ID == jl.RealmID {
			return r
		}
	}
	return journey.Realm{ID: jl.RealmID, Name: jl.RealmName}
}

// openLevel shows the overlay for level. The current level uses today's
// plan so completed activities are marked.
func (m *Model) openLevel(lvl int) {
	jl, ok := journey.JourneyLevel{}, false
	if lvl == m.plan.Level.Level {
		jl, ok = m.plan.Level, true
	} else {
		for _, candidate := range m.path.Levels {
			if candidate.Level == lvl {
				jl, ok = candidate, true
				break
			}
		}
	}
	if !ok || m.progress == nil {
		return
	}
	m.detail = level.New(jl, m.progress.Level, m.progress.HasPassed(lvl), m.width)
	m.overlay = OverlayLevel
}

func (m *Model) layout() {
	pathW, planW := m.paneWidths()
	m.path.Width = pathW
	m.plan.Width = planW
	m.xp.Width = max(m.width/3, 20)
	m.plan.Focused = m.focus == FocusPlan
}

func (m Model) paneWidths() (int, int) {
	w := max(m.width, 60)
	pathW := w * 11 / 20
	return pathW, w - pathW - 2
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.cancel()
		return m, tea.Quit
	}

	switch m.overlay {
	case OverlayJournal:
		switch {
		case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Journal):
			m.overlay = OverlayNone
		case key.Matches(msg, m.keys.Up):
			m.journal.ScrollUp(1)
		case key.Matches(msg, m.keys.Down):
			m.journal.ScrollDown(1)
		}
		return m, nil

	case OverlayLevel:
		switch {
		case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Enter):
			m.overlay = OverlayNone
		case key.Matches(msg, m.keys.Tab):
			m.overlay = OverlayNone
			m.focus = FocusPlan
			m.layout()
		case key.Matches(msg, m.keys.Complete):
			if m.progress != nil && m.detail.Level.Level == m.progress.Level {
				return m.completeSelected()
			}
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Tab):
		if m.focus == FocusPath {
			m.focus = FocusPlan
		} else {
			m.focus = FocusPath
		}
		m.layout()

	case key.Matches(msg, m.keys.Down):
		if m.focus == FocusPlan {
			m.plan.MoveDown()
		} else {
			m.path.MoveDown()
		}

	case key.Matches(msg, m.keys.Up):
		if m.focus == FocusPlan {
			m.plan.MoveUp()
		} else {
			m.path.MoveUp()
		}

	case key.Matches(msg, m.keys.Enter):
		if m.focus == FocusPlan {
			m.openLevel(m.plan.Level.Level)
		} else if sel, ok := m.path.Selected(); ok {
			m.openLevel(sel.Level)
		}

	case key.Matches(msg, m.keys.Complete):
		return m.completeSelected()

	case key.Matches(msg, m.keys.Refresh):
		m.busy = true
		return m, tea.Batch(m.loadCatalog(), m.load())

	case key.Matches(msg, m.keys.Journal):
		m.overlay = OverlayJournal
	}
	return m, nil
}

func (m Model) completeSelected() (tea.Model, tea.Cmd) {
	a, ok := m.plan.Selected()
	if !ok || m.busy {
		return m, nil
	}
	if a.CompletedToday {
		m.lastErr = a.Name + " is already done today"
		return m, nil
	}
	m.busy = true
	return m, m.complete(a.Type)
}

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	switch m.overlay {
	case OverlayLevel:
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.detail.View())
	case OverlayJournal:
		return m.journal.View(m.width, m.height)
	}

	sections := []string{m.statusBar.View(), "  " + m.xp.View()}
	if !m.connected {
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.ColorDanger).Bold(true).
			Render("  DISCONNECTED · Reconnecting to live updates..."))
	}
	if m.lastErr != "" {
		sections = append(sections, theme.StyleError.Render("  "+m.lastErr))
	}

	pathW, planW := m.paneWidths()
	pathPane := lipgloss.NewStyle().Width(pathW).Render(m.pathTitle() + "\n" + m.path.View())
	planPane := lipgloss.NewStyle().Width(planW).PaddingLeft(2).Render(m.plan.View())
	sections = append(sections, "", lipgloss.JoinHorizontal(lipgloss.Top, pathPane, planPane), "")

	footer := m.help.View(m.keys)
	if m.busy {
		footer = theme.StyleDimmed.Render("working... ") + footer
	}
	sections = append(sections, footer)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) pathTitle() string {
	title := "PATH"
	if m.focus == FocusPath {
		title = "▸ " + title
	}
	return theme.StyleHeader.Render(title)
}

// describe shortens API errors to the server's message.
func describe(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
