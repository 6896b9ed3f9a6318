// Package tui is the bubbletea shell around a session controller.
package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"pm-launchpad/internal/domain"
	"pm-launchpad/internal/session"
	"pm-launchpad/internal/views"
)

const (
	sidebarWidth = 30
	inputHeight  = 3
	headerHeight = 3
)

// Controller is the slice of *session.Controller the shell drives.
type Controller interface {
	views.ChatActions
	views.NavigationActions
	DismissNotice()
	Snapshot() session.Snapshot
}

// opDoneMsg reports that a controller operation dispatched as a tea.Cmd
// has returned.
type opDoneMsg struct {
	op string
}

// MarkdownFactory builds a renderer wrapping at width.
type MarkdownFactory func(width int) views.Markdown

// Model is the root bubbletea model.
type Model struct {
	ctx      context.Context
	ctrl     Controller
	log      zerolog.Logger
	styles   views.Styles
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	newMarkdown MarkdownFactory
	markdown    views.Markdown

	width, height int
	ready         bool
	lastView      domain.View
	lastMessages  int
}

type Option func(*Model)

func WithLogger(l zerolog.Logger) Option {
	return func(m *Model) {
		m.log = l
	}
}

// WithMarkdown replaces the glamour renderer factory.
func WithMarkdown(f MarkdownFactory) Option {
	return func(m *Model) {
		m.newMarkdown = f
	}
}

// WithCharLimit caps the length of a typed message.
func WithCharLimit(n int) Option {
	return func(m *Model) {
		if n > 0 {
			m.input.CharLimit = n
		}
	}
}

func New(ctx context.Context, ctrl Controller, opts ...Option) Model {
	styles := views.DefaultStyles()

	ti := textinput.New()
	ti.Placeholder = "Describe your business need... (Enter to send, Ctrl+C to exit)"
	ti.Prompt = "│ "
	ti.CharLimit = 4000
	ti.Width = 80
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#4F46E5"))

	m := Model{
		ctx:         ctx,
		ctrl:        ctrl,
		log:         zerolog.Nop(),
		styles:      styles,
		input:       ti,
		viewport:    viewport.New(80, 20),
		spinner:     sp,
		newMarkdown: glamourMarkdown,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

func glamourMarkdown(width int) views.Markdown {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return r
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m Model) dispatch(op string, fn func(ctx context.Context)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		fn(ctx)
		return opDoneMsg{op: op}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		model, cmd, handled := m.handleKey(msg)
		m = model
		if !handled {
			m, cmd = m.routeKey(msg)
		}
		m.syncContent()
		return m, cmd

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.syncContent()
		return m, cmd

	case opDoneMsg:
		m.log.Debug().Str("operation", msg.op).Msg("operation finished")
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	m.syncContent()
	return m, tea.Batch(cmds...)
}

// handleKey processes shell shortcuts. It reports false for keys that belong
// to the text input or the viewport.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	snap := m.ctrl.Snapshot()
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit, true
	case "esc":
		m.ctrl.DismissNotice()
		return m, nil, true
	case "f1":
		m.ctrl.SelectModule(domain.ModuleInitiation)
		return m, nil, true
	case "f2":
		m.ctrl.SelectModule(domain.ModuleStakeholderAnalysis)
		return m, nil, true
	case "f3":
		views.OpenDeliverable(m.ctrl, snap, domain.ViewCharter)
		return m, nil, true
	case "f4":
		views.OpenDeliverable(m.ctrl, snap, domain.ViewStakeholders)
		return m, nil, true
	case "ctrl+g":
		return m, m.primaryAction(snap), true
	case "enter":
		if snap.View != domain.ViewChat {
			return m, nil, true
		}
		text := strings.TrimSpace(m.input.Value())
		if text == "" || snap.Processing {
			return m, nil, true
		}
		m.input.Reset()
		return m, m.dispatch("chat", func(ctx context.Context) {
			m.ctrl.SubmitMessage(ctx, text)
		}), true
	}
	return m, nil, false
}

// routeKey sends a key the shell did not consume to one component. In the
// chat view typing belongs to the input and only paging scrolls the log; the
// deliverable views have no input, so keys scroll the viewport.
func (m Model) routeKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.ctrl.Snapshot().View != domain.ViewChat {
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	switch msg.Type {
	case tea.KeyPgUp, tea.KeyPgDown:
		m.viewport, cmd = m.viewport.Update(msg)
	default:
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m Model) primaryAction(snap session.Snapshot) tea.Cmd {
	switch snap.View {
	case domain.ViewCharter:
		return m.dispatch("charter", func(ctx context.Context) {
			views.RefreshCharter(ctx, m.ctrl)
		})
	case domain.ViewStakeholders:
		return m.dispatch("stakeholders", func(ctx context.Context) {
			views.RefineStakeholders(ctx, m.ctrl)
		})
	default:
		module := snap.Module
		return m.dispatch(strings.ToLower(views.ChatPrimaryLabel(module)), func(ctx context.Context) {
			views.RunChatPrimary(ctx, m.ctrl, module)
		})
	}
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	mainWidth := m.mainWidth()
	vpHeight := height - headerHeight - inputHeight - 2
	if vpHeight < 3 {
		vpHeight = 3
	}
	m.viewport.Width = mainWidth
	m.viewport.Height = vpHeight
	m.input.Width = mainWidth - 4
	if m.newMarkdown != nil {
		m.markdown = m.newMarkdown(mainWidth - 4)
	}
	m.ready = true
}

func (m Model) mainWidth() int {
	w := m.width - sidebarWidth - 2
	if w < 20 {
		w = 20
	}
	return w
}

// syncContent re-renders the scrollable body from a fresh snapshot and
// follows the conversation tail when new messages arrive.
func (m *Model) syncContent() {
	snap := m.ctrl.Snapshot()
	var body string
	switch snap.View {
	case domain.ViewCharter:
		body = views.Charter(m.styles, snap, m.viewport.Width)
	case domain.ViewStakeholders:
		body = views.Stakeholders(m.styles, snap, m.viewport.Width)
	default:
		body = views.ChatLog(m.styles, snap, m.markdown, m.spinner.View())
	}
	m.viewport.SetContent(body)

	switch {
	case snap.View != m.lastView:
		m.viewport.GotoTop()
		if snap.View == domain.ViewChat {
			m.viewport.GotoBottom()
		}
	case snap.View == domain.ViewChat && len(snap.State.Messages) != m.lastMessages:
		m.viewport.GotoBottom()
	}
	m.lastView = snap.View
	m.lastMessages = len(snap.State.Messages)
}

func (m Model) View() string {
	snap := m.ctrl.Snapshot()
	sidebar := lipgloss.NewStyle().Width(sidebarWidth).Render(views.Navigation(m.styles, snap))

	var main strings.Builder
	if banner := views.NoticeBanner(m.styles, snap.Notice, m.mainWidth()); banner != "" {
		main.WriteString(banner)
		main.WriteString("\n")
	}
	switch {
	case snap.View == domain.ViewChat:
		main.WriteString(views.ChatHeader(m.styles, snap))
		main.WriteString("\n")
		main.WriteString(m.viewport.View())
		main.WriteString("\n")
		main.WriteString(m.input.View())
	case snap.Processing:
		main.WriteString(views.BusyOverlay(m.styles, m.spinner.View(), m.viewport.Width, m.viewport.Height))
	default:
		main.WriteString(m.viewport.View())
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", main.String())
}

// Run starts the program and blocks until the user quits or ctx is done.
func Run(ctx context.Context, ctrl Controller, opts ...Option) error {
	p := tea.NewProgram(New(ctx, ctrl, opts...), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
