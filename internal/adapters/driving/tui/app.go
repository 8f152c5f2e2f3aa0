package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docchat/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/docchat/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docchat/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docchat/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docchat/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
)

// chromeLines is the height used by the header, prompt box, spinner line
// and status bar.
const chromeLines = 7

// App is the chat TUI following the Elm architecture.
type App struct {
	ports   *Ports
	session Session
	ctx     context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap

	transcript viewport.Model
	input      *input.PromptInput
	spinner    spinner.Model
	statusBar  *status.Bar

	title    string
	messages []domain.Message
	thinking bool
	err      error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a chat TUI for session.
func NewApp(ports *Ports, session Session) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}
	if err := session.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	bar := status.NewBar(s, km)
	bar.SetDocument(session.DocumentName)

	return &App{
		ports:      ports,
		session:    session,
		ctx:        context.Background(),
		styles:     s,
		keymap:     km,
		transcript: viewport.New(80, 17),
		input:      input.NewPromptInput(s),
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(s.Spinner)),
		statusBar:  bar,
		title:      "docchat",
	}, nil
}

// WithContext sets the context used for service calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init loads the chat history.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("docchat"),
		a.input.Init(),
		a.loadHistory(),
	)
}

func (a *App) loadHistory() tea.Cmd {
	ctx, chats, session := a.ctx, a.ports.Chats, a.session
	return func() tea.Msg {
		chat, err := chats.Get(ctx, session.ChatID, session.OwnerID)
		return messages.HistoryLoaded{Chat: chat, Err: err}
	}
}

func (a *App) send(prompt string) tea.Cmd {
	ctx, chats, session := a.ctx, a.ports.Chats, a.session
	return func() tea.Msg {
		result, err := chats.Send(ctx, driving.SendRequest{
			ChatID:     session.ChatID,
			OwnerID:    session.OwnerID,
			Prompt:     prompt,
			DocumentID: session.DocumentID,
		})
		return messages.ReplyReceived{Result: result, Err: err}
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.HistoryLoaded:
		if msg.Err != nil {
			a.setError(msg.Err)
			return a, nil
		}
		a.title = msg.Chat.Name
		a.messages = append([]domain.Message(nil), msg.Chat.Messages...)
		a.refreshTranscript()
		return a, nil

	case messages.ReplyReceived:
		a.thinking = false
		if msg.Err != nil {
			// The service saves nothing on failure, so the pending turn is dropped.
			if n := len(a.messages); n > 0 && a.messages[n-1].Role == domain.RoleUser {
				a.messages = a.messages[:n-1]
			}
			a.setError(msg.Err)
			a.refreshTranscript()
			return a, nil
		}
		a.err = nil
		a.statusBar.Clear()
		a.statusBar.SetGrounded(msg.Result.Grounded)
		a.messages = append(a.messages, msg.Result.Reply)
		a.refreshTranscript()
		return a, nil

	case spinner.TickMsg:
		if !a.thinking {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()

	switch {
	case keymap.Matches(keyStr, a.keymap.Quit):
		return a, tea.Quit

	case keymap.Matches(keyStr, a.keymap.ScrollUp):
		a.transcript.SetYOffset(a.transcript.YOffset - a.transcript.Height/2)
		return a, nil

	case keymap.Matches(keyStr, a.keymap.ScrollDown):
		a.transcript.SetYOffset(a.transcript.YOffset + a.transcript.Height/2)
		return a, nil

	case keymap.Matches(keyStr, a.keymap.Send):
		prompt := strings.TrimSpace(a.input.Value())
		if prompt == "" || a.thinking {
			return a, nil
		}
		a.input.Reset()
		a.thinking = true
		a.err = nil
		a.statusBar.SetState(status.StateThinking)
		a.messages = append(a.messages, domain.Message{Role: domain.RoleUser, Content: prompt})
		a.refreshTranscript()
		return a, tea.Batch(a.spinner.Tick, a.send(prompt))
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) setError(err error) {
	a.err = err
	a.statusBar.SetState(status.StateError)
	a.statusBar.SetMessage(err.Error())
}

// refreshTranscript re-renders the messages and scrolls to the newest.
func (a *App) refreshTranscript() {
	a.transcript.SetContent(a.renderMessages())
	a.transcript.GotoBottom()
}

func (a *App) renderMessages() string {
	if len(a.messages) == 0 {
		return a.styles.Muted.Render("No messages yet. Ask a question below.")
	}

	body := a.styles.Message.Width(a.transcript.Width)
	blocks := make([]string, 0, len(a.messages))
	for _, m := range a.messages {
		label := a.styles.AssistantLabel.Render("Assistant")
		if m.Role == domain.RoleUser {
			label = a.styles.UserLabel.Render("You")
		}
		blocks = append(blocks, label+"\n"+body.Render(m.Content))
	}
	return strings.Join(blocks, "\n\n")
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Loading..."
	}

	header := a.styles.Title.Render(a.title)
	activity := ""
	if a.thinking {
		activity = a.spinner.View() + a.styles.Muted.Render(" waiting for reply")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		a.transcript.View(),
		activity,
		a.input.View(),
		a.statusBar.View(),
	)
}

// SetDimensions resizes the layout.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true

	a.transcript.Width = width
	a.transcript.Height = max(3, height-chromeLines)
	a.input.SetWidth(width)
	a.statusBar.SetWidth(width)
	a.refreshTranscript()
}

// Messages returns the transcript shown to the user.
func (a *App) Messages() []domain.Message {
	return a.messages
}

// Thinking reports whether a reply is pending.
func (a *App) Thinking() bool {
	return a.thinking
}

// Err returns the last error.
func (a *App) Err() error {
	return a.err
}

// Title returns the chat name.
func (a *App) Title() string {
	return a.title
}
