package tui

import (
	"context"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"codechat/internal/client"
)

// followThreshold is how many lines from the bottom still count as "at the
// bottom" for the auto-follow scroll policy.
const followThreshold = 3

// inputHeight is the textarea height in rows.
const inputHeight = 3

// streamEventMsg delivers one network event into the update loop.
type streamEventMsg client.Event

// Model is the bubbletea model for the terminal chat client. Every state
// mutation runs inside Update, so the Store has a single owner and needs no
// locking.
type Model struct {
	store   *client.Store
	gateway *client.Client
	logger  *slog.Logger

	input    textarea.Model
	viewport viewport.Model
	renderer *glamour.TermRenderer

	// In-flight stream. events is nil when idle; cancel tears the HTTP
	// request down on quit.
	events <-chan client.Event
	cancel context.CancelFunc

	follow bool
	width  int
	height int
	ready  bool
}

func New(gateway *client.Client, logger *slog.Logger) Model {
	input := textarea.New()
	input.Placeholder = "Type a message. Enter sends, /image <path> attaches."
	input.ShowLineNumbers = false
	input.SetHeight(inputHeight)
	input.CharLimit = 0
	input.Focus()

	return Model{
		store:   client.NewStore(),
		gateway: gateway,
		logger:  logger,
		input:   input,
		follow:  true,
	}
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		m.recomputeFollow()
		return m, cmd
	case streamEventMsg:
		return m.handleStreamEvent(client.Event(msg))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	chromeHeight := inputHeight + 4 // header, banner slot, help line
	vpHeight := msg.Height - chromeHeight
	if vpHeight < 1 {
		vpHeight = 1
	}

	if !m.ready {
		m.viewport = viewport.New(msg.Width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = msg.Width
		m.viewport.Height = vpHeight
	}
	m.input.SetWidth(msg.Width - 2)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(msg.Width-2),
	)
	if err != nil {
		m.logger.Error("markdown renderer init failed", "error", err)
	} else {
		m.renderer = renderer
	}

	m.refreshViewport()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit

	case "esc":
		m.store.DismissBanner()
		return m, nil

	case "tab":
		m.store.CycleSession()
		m.follow = true
		m.refreshViewport()
		return m, nil

	case "enter":
		return m.handleSubmit()

	case "pgup", "pgdown", "home", "end", "ctrl+u", "ctrl+d":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		m.recomputeFollow()
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.store.SetDraft(m.input.Value())
	return m, cmd
}

func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	trimmed := strings.TrimSpace(m.input.Value())
	if strings.HasPrefix(trimmed, "/") {
		return m.handleCommand(trimmed)
	}

	m.store.SetDraft(m.input.Value())
	dispatch, ok := m.store.Submit()
	if !ok {
		return m, nil
	}

	m.input.Reset()
	m.follow = true

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.events = m.gateway.Stream(ctx, dispatch)

	m.logger.Info("submitted",
		"session_id", dispatch.SessionID,
		"message_id", dispatch.MessageID,
		"transcript_len", len(dispatch.Transcript),
	)

	m.refreshViewport()
	return m, m.waitForEvent()
}

func (m Model) handleCommand(cmd string) (tea.Model, tea.Cmd) {
	name, arg, _ := strings.Cut(cmd, " ")
	switch name {
	case "/new":
		m.store.NewSession()
		m.follow = true
	case "/clear":
		m.store.ClearSessions()
		m.follow = true
	case "/image":
		arg = strings.TrimSpace(arg)
		if arg == "" {
			return m, nil
		}
		img, err := client.LoadImage(arg)
		if err != nil {
			m.logger.Error("image load failed", "path", arg, "error", err)
			return m, nil
		}
		m.store.AttachImage(img)
		m.input.Reset()
		m.store.SetDraft("")
		return m, nil
	default:
		return m, nil
	}

	m.input.Reset()
	m.store.SetDraft("")
	m.refreshViewport()
	return m, nil
}

func (m Model) handleStreamEvent(ev client.Event) (tea.Model, tea.Cmd) {
	switch ev.Kind {
	case client.EventChunk:
		m.store.ApplyChunk(ev.SessionID, ev.MessageID, ev.Text)
		m.refreshViewport()
		return m, m.waitForEvent()

	case client.EventFailure:
		m.store.ApplyFailure(ev.SessionID, ev.MessageID, ev.Text)
		m.logger.Warn("stream failed",
			"session_id", ev.SessionID, "message_id", ev.MessageID)

	case client.EventComplete:
		m.store.ApplyComplete(ev.SessionID, ev.MessageID)
	}

	m.events = nil
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.refreshViewport()
	return m, nil
}

// waitForEvent blocks on the stream channel off the update loop and feeds
// the next event back in as a message.
func (m Model) waitForEvent() tea.Cmd {
	ch := m.events
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return streamEventMsg(ev)
	}
}

// recomputeFollow re-derives the follow flag from the viewport position.
// Only explicit scroll input lands here, so reading upward detaches the view
// and scrolling back near the bottom re-attaches it.
func (m *Model) recomputeFollow() {
	dist := m.viewport.TotalLineCount() - (m.viewport.YOffset + m.viewport.Height)
	m.follow = dist <= followThreshold
}

func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	if m.follow {
		m.viewport.GotoBottom()
	}
}
