// Package chat provides the conversational question view for the TUI.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docrag/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/docrag/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/docrag/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docrag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driving"
	"github.com/custodia-labs/docrag/internal/core/services"
)

// ErrNoChatSession indicates that no chat session was provided.
var ErrNoChatSession = errors.New("chat session is required")

// resetCommand clears the conversation when typed as a question.
const resetCommand = "/reset"

// chrome is the number of lines used by the title, input and status bar.
const chrome = 7

// turn is one question and its answer.
type turn struct {
	question string
	answer   *domain.Answer
	err      error
}

// View is the chat view: a scrolling transcript above a question input.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	input      *input.TextInput
	transcript viewport.Model
	spinner    spinner.Model
	statusbar  *status.Bar

	session driving.ChatSession
	ctx     context.Context

	turns  []turn
	asking bool
	width  int
	height int
	ready  bool
}

// NewView creates a chat view over session.
func NewView(s *styles.Styles, km *keymap.KeyMap, session driving.ChatSession) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(s.Title))

	return &View{
		styles:     s,
		keymap:     km,
		input:      input.New(s, "Ask:", "How do I paginate orders?"),
		transcript: viewport.New(80, 24-chrome),
		spinner:    sp,
		statusbar:  status.NewBar(s, km.ChatHelp()),
		session:    session,
		ctx:        context.Background(),
		width:      80,
		height:     24,
	}
}

// WithContext sets the context used for questions.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init starts the input cursor.
func (v *View) Init() tea.Cmd {
	return tea.Batch(v.input.Init(), v.input.Focus())
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case spinner.TickMsg:
		if !v.asking {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		v.statusbar.SetSpinner(v.spinner.View())
		return v, cmd
	}

	var cmd tea.Cmd
	v.transcript, cmd = v.transcript.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case keymap.Matches(msg.String(), v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case keymap.Matches(msg.String(), v.keymap.Reset):
		if !v.asking {
			v.Reset()
		}
		return v, nil
	case keymap.Matches(msg.String(), v.keymap.PageUp), keymap.Matches(msg.String(), v.keymap.PageDown):
		var cmd tea.Cmd
		v.transcript, cmd = v.transcript.Update(msg)
		return v, cmd
	case msg.Type == tea.KeyEnter:
		return v.submit()
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// submit sends the typed question, or handles exit and reset commands.
func (v *View) submit() (*View, tea.Cmd) {
	if v.asking {
		return v, nil
	}
	question := strings.TrimSpace(v.input.Value())
	switch {
	case question == "":
		return v, nil
	case services.IsExitCommand(question):
		return v, tea.Quit
	case question == resetCommand:
		v.Reset()
		return v, nil
	}

	v.input.Reset()
	v.turns = append(v.turns, turn{question: question})
	v.asking = true
	v.statusbar.SetState(status.StateAsking)
	v.refresh()
	return v, tea.Batch(v.ask(question), v.spinner.Tick)
}

// ask returns a command that answers question through the session.
func (v *View) ask(question string) tea.Cmd {
	session, ctx := v.session, v.ctx
	return func() tea.Msg {
		if session == nil {
			return messages.AnswerReceived{Question: question, Err: ErrNoChatSession}
		}
		answer, err := session.Ask(ctx, question)
		return messages.AnswerReceived{Question: question, Answer: answer, Err: err}
	}
}

func (v *View) handleAnswer(msg messages.AnswerReceived) {
	v.asking = false
	v.statusbar.SetSpinner("")

	if len(v.turns) == 0 || v.turns[len(v.turns)-1].question != msg.Question {
		return
	}
	last := &v.turns[len(v.turns)-1]
	last.answer, last.err = msg.Answer, msg.Err

	if msg.Err != nil {
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
	} else {
		v.statusbar.SetState(status.StateReady)
		v.statusbar.SetMessage(fmt.Sprintf("%d sources", len(msg.Answer.Results)))
	}
	v.refresh()
}

// refresh re-renders the transcript and scrolls to the newest turn.
func (v *View) refresh() {
	v.transcript.SetContent(v.renderTranscript())
	v.transcript.GotoBottom()
}

func (v *View) renderTranscript() string {
	if len(v.turns) == 0 {
		return v.styles.Muted.Render("Ask a question about the ingested documentation. " +
			"Follow-ups use the previous question as context.")
	}

	wrap := lipgloss.NewStyle().Width(max(v.width-4, 20))
	parts := make([]string, 0, len(v.turns)*3)
	for i := range v.turns {
		t := &v.turns[i]
		parts = append(parts, v.styles.Question.Render("You: "+t.question))

		switch {
		case t.err != nil:
			parts = append(parts, v.styles.Error.Render("  Error: "+t.err.Error()))
		case t.answer == nil:
			parts = append(parts, v.styles.Muted.Render("  ..."))
		default:
			parts = append(parts, v.styles.Answer.Render(wrap.Render(t.answer.Text)))
			if !t.answer.Generated && len(t.answer.Results) > 0 {
				parts = append(parts, v.styles.Warning.Render("  No LLM answer: showing the closest sections."))
			}
			parts = append(parts, v.renderSources(t.answer.Results))
		}
		parts = append(parts, "")
	}
	return strings.Join(parts, "\n")
}

func (v *View) renderSources(results []domain.SearchResult) string {
	if len(results) == 0 {
		return v.styles.Muted.Render("  No matching sections.")
	}
	lines := make([]string, 0, len(results))
	for i := range results {
		r := &results[i]
		line := fmt.Sprintf("  [%d] %s (%.3f) %s", i+1, list.SectionPath(r.Chunk.Headers), r.Distance, r.DocumentURI)
		lines = append(lines, v.styles.Section.Render(list.Truncate(line, max(v.width-2, 20))))
	}
	return strings.Join(lines, "\n")
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		v.styles.Title.Render("docrag chat"),
		"",
		v.transcript.View(),
		"",
		v.input.View(),
		v.statusbar.View(),
	)
}

// SetDimensions sizes the transcript to fill the space above the input.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.transcript.Width = width
	v.transcript.Height = max(height-chrome, 3)
	v.refresh()
}

// Reset clears the conversation and the session's follow-up context.
func (v *View) Reset() {
	if v.session != nil {
		v.session.Reset()
	}
	v.turns = nil
	v.asking = false
	v.input.Reset()
	v.statusbar.Clear()
	v.statusbar.SetSpinner("")
	v.statusbar.SetMessage("Conversation reset")
	v.refresh()
}

// Turns returns the number of questions asked since the last reset.
func (v *View) Turns() int {
	return len(v.turns)
}

// Asking reports whether a question is awaiting its answer.
func (v *View) Asking() bool {
	return v.asking
}

// Transcript returns the rendered conversation.
func (v *View) Transcript() string {
	return v.renderTranscript()
}
