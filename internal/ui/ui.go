// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/eventpilot/eventpilot/internal/types"
)

// Model is the Bubble Tea model for the event planner UI.
type Model struct {
	// UI Components
	textInput textinput.Model
	spinner   spinner.Model
	viewport  viewport.Model
	styles    Styles

	// State
	phase       types.SessionPhase
	messages    []chatMessage
	currentTool *toolExecution
	width       int
	height      int
	ready       bool
	quitting    bool
	err         error

	// Session hooks (injected)
	startSession func(query string) tea.Cmd
	sendReply    func(reply string)
	events       <-chan types.SessionEvent
	toolList     []string
}

// chatMessage represents a message in the chat history.
type chatMessage struct {
	role    string // "user", "assistant", "system", "tool", "summary"
	content string
	tool    *toolExecution
	summary *types.PlanSummary
}

// toolExecution tracks a tool call and its result.
type toolExecution struct {
	name     string
	args     map[string]any
	output   string
	success  bool
	error    string
	duration string
	done     bool
}

// Options configure a Model.
type Options struct {
	// StartSession kicks off a planning session for a query and returns
	// a Cmd that feeds SessionEvents back into Update.
	StartSession func(query string) tea.Cmd

	// SendReply delivers the user's answer when the planner asks a
	// clarifying question mid-session.
	SendReply func(reply string)

	// Events carries session events into the UI. The model listens on
	// it for the whole program lifetime.
	Events <-chan types.SessionEvent

	// ToolList is shown by the "tools" command.
	ToolList []string
}

// NewModel creates a new UI model.
func NewModel(opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = "Describe your event... (e.g., 'Plan a team lunch in Malad tomorrow for 6 people')"
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 80

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#2563EB"))

	vp := viewport.New(0, 0)
	vp.KeyMap = viewport.DefaultKeyMap()

	return Model{
		textInput:    ti,
		spinner:      s,
		viewport:     vp,
		styles:       DefaultStyles(),
		phase:        types.PhaseIdle,
		messages:     make([]chatMessage, 0),
		startSession: opts.StartSession,
		sendReply:    opts.SendReply,
		events:       opts.Events,
		toolList:     opts.ToolList,
	}
}

// WaitForEvent returns a Cmd that delivers the next session event from
// events. handleSessionEvent re-arms it after every delivery.
func WaitForEvent(events <-chan types.SessionEvent) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return types.SessionEvent{Phase: types.PhaseIdle}
		}
		return event
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		WaitForEvent(m.events),
	)
}

// headerHeight returns the number of terminal lines occupied by the banner.
func (m Model) headerHeight() int {
	banner := m.styles.BannerTitle.Render(Banner())
	return lipgloss.Height(banner) + 2 // +2 for the two "\n" after the banner
}

// footerHeight returns the number of terminal lines occupied by the input + help bar.
func (m Model) footerHeight() int {
	// 1 blank line + 1 prompt/input line + 1 newline + 1 help bar = 4
	return 4
}

// inputUnlocked reports whether the text input accepts typing.
func (m Model) inputUnlocked() bool {
	return m.phase == types.PhaseIdle || m.phase == types.PhaseAwaitingInput
}

// updateViewport rebuilds the viewport content and scrolls to the bottom.
func (m *Model) updateViewport() {
	var b strings.Builder

	for _, msg := range m.messages {
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n")
	}

	if m.currentTool != nil && !m.currentTool.done {
		b.WriteString(m.renderToolInProgress())
		b.WriteString("\n")
	}

	if m.phase != types.PhaseIdle && m.phase != types.PhaseAwaitingInput {
		b.WriteString(m.renderStatus())
		b.WriteString("\n")
	}

	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit

		case tea.KeyEnter:
			if !m.inputUnlocked() {
				return m, nil
			}

			query := strings.TrimSpace(m.textInput.Value())
			if query == "" {
				return m, nil
			}

			if m.phase == types.PhaseAwaitingInput {
				// Mid-session clarification answer.
				m.messages = append(m.messages, chatMessage{role: "user", content: query})
				m.textInput.SetValue("")
				m.phase = types.PhaseThinking
				m.updateViewport()
				if m.sendReply != nil {
					m.sendReply(query)
				}
				return m, m.spinner.Tick
			}

			if cmd := m.handleCommand(query); cmd != nil {
				m.updateViewport()
				return m, cmd
			}

			m.messages = append(m.messages, chatMessage{
				role:    "user",
				content: query,
			})

			m.textInput.SetValue("")
			m.phase = types.PhaseThinking
			m.updateViewport()

			if m.startSession != nil {
				cmds = append(cmds, m.startSession(query))
			}

			return m, tea.Batch(cmds...)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textInput.Width = msg.Width - 10

		vpWidth := msg.Width
		vpHeight := msg.Height - m.headerHeight() - m.footerHeight()
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(vpWidth, vpHeight)
			m.viewport.KeyMap = viewport.DefaultKeyMap()
		} else {
			m.viewport.Width = vpWidth
			m.viewport.Height = vpHeight
		}

		m.ready = true
		m.updateViewport()

	case types.SessionEvent:
		newModel, cmd := m.handleSessionEvent(msg)
		nm := newModel.(Model)
		nm.updateViewport()
		return nm, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
		// Refresh viewport to update spinner frame
		m.updateViewport()

	case errMsg:
		m.err = msg.err
		m.phase = types.PhaseError
		m.updateViewport()
	}

	// Forward key events to the input only when it is unlocked.
	if m.inputUnlocked() {
		var tiCmd tea.Cmd
		m.textInput, tiCmd = m.textInput.Update(msg)
		cmds = append(cmds, tiCmd)
	}

	var vpCmd tea.Cmd
	m.viewport, vpCmd = m.viewport.Update(msg)
	cmds = append(cmds, vpCmd)

	return m, tea.Batch(cmds...)
}

// errMsg wraps errors.
type errMsg struct{ err error }

// handleCommand processes special commands.
func (m *Model) handleCommand(input string) tea.Cmd {
	switch strings.ToLower(input) {
	case "exit", "quit", "q":
		m.quitting = true
		return tea.Quit

	case "clear":
		m.messages = make([]chatMessage, 0)
		m.textInput.SetValue("")
		return nil

	case "help", "?":
		m.messages = append(m.messages, chatMessage{
			role: "system",
			content: `Available commands:
  help, ?     Show this help
  clear       Clear chat history
  tools       List planning tools
  exit, quit  Exit the planner

Example requests:
  "Plan a team lunch in Malad tomorrow for 6 people"
  "Set up a dinner date in Bandra next Friday"
  "Organize a 3 hour workshop in Powai between Aug 20 and Aug 22"`,
		})
		m.textInput.SetValue("")
		return nil

	case "tools":
		content := "Available planning tools:\n\n  " + strings.Join(m.toolList, "\n  ")
		if len(m.toolList) == 0 {
			content = "No tools registered."
		}
		m.messages = append(m.messages, chatMessage{role: "system", content: content})
		m.textInput.SetValue("")
		return nil
	}

	return nil
}

// handleSessionEvent processes events from the planning session.
func (m Model) handleSessionEvent(event types.SessionEvent) (tea.Model, tea.Cmd) {
	m.phase = event.Phase

	switch event.Phase {
	case types.PhaseToolCall:
		if event.ToolCall != nil {
			m.currentTool = &toolExecution{
				name: event.ToolCall.Tool,
				args: event.ToolCall.Args,
			}
		}

	case types.PhaseToolExecuting:
		// Tool is running, spinner shows progress

	case types.PhaseAwaitingInput:
		// Input unlocks; the question itself arrived as a Responding
		// message just before this event.

	case types.PhaseResponding:
		if event.ToolResult != nil {
			tool := m.currentTool
			if tool == nil {
				tool = &toolExecution{name: event.ToolResult.Tool}
			}
			tool.success = event.ToolResult.Success
			tool.output = renderOutput(event.ToolResult.Output)
			tool.error = event.ToolResult.Error
			tool.duration = event.ToolResult.Duration.String()
			tool.done = true

			m.messages = append(m.messages, chatMessage{role: "tool", tool: tool})
			m.currentTool = nil
		}
		if event.Message != "" {
			m.messages = append(m.messages, chatMessage{
				role:    "assistant",
				content: event.Message,
			})
		}

	case types.PhaseDone:
		if event.Summary != nil {
			m.messages = append(m.messages, chatMessage{role: "summary", summary: event.Summary})
		} else if event.Message != "" {
			m.messages = append(m.messages, chatMessage{role: "assistant", content: event.Message})
		}
		m.phase = types.PhaseIdle

	case types.PhaseError:
		m.err = event.Err
		errText := "An error occurred"
		if event.Err != nil {
			errText = event.Err.Error()
		}
		m.messages = append(m.messages, chatMessage{
			role:    "system",
			content: fmt.Sprintf("Error: %s", errText),
		})
		m.phase = types.PhaseIdle
	}

	return m, tea.Batch(m.spinner.Tick, WaitForEvent(m.events))
}

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return m.styles.SystemMessage.Render("Goodbye!\n")
	}

	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder

	// Fixed header: banner
	b.WriteString(m.styles.BannerTitle.Render(Banner()))
	b.WriteString("\n\n")

	// Scrollable middle: viewport
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	// Fixed footer: input + help bar
	b.WriteString(m.styles.Prompt.Render("> "))
	if m.inputUnlocked() {
		b.WriteString(m.textInput.View())
	} else {
		b.WriteString(m.styles.StatusText.Render("(planning...)"))
	}
	b.WriteString("\n")
	b.WriteString(m.renderHelpBar())

	return m.styles.App.Render(b.String())
}

// renderMessage renders a single chat message.
func (m Model) renderMessage(msg chatMessage) string {
	switch msg.role {
	case "user":
		return m.styles.UserMessage.Render("You: " + msg.content)

	case "assistant":
		return m.styles.AssistantMessage.Render("Planner: " + msg.content)

	case "system":
		return m.styles.SystemMessage.Render(msg.content)

	case "tool":
		if msg.tool != nil {
			return m.renderToolResult(msg.tool)
		}

	case "summary":
		if msg.summary != nil {
			return m.renderSummary(msg.summary)
		}
	}
	return ""
}

// renderToolResult renders a completed tool execution.
func (m Model) renderToolResult(t *toolExecution) string {
	var b strings.Builder

	header := fmt.Sprintf("Tool: %s", t.name)
	b.WriteString(m.styles.ToolName.Render(header))

	if len(t.args) > 0 {
		args := make([]string, 0, len(t.args))
		for k, v := range t.args {
			args = append(args, fmt.Sprintf("%s=%v", k, v))
		}
		b.WriteString(" ")
		b.WriteString(m.styles.ToolParams.Render("(" + strings.Join(args, ", ") + ")"))
	}
	b.WriteString("\n")

	if t.success {
		b.WriteString(m.styles.ToolSuccess.Render("  Success"))
		if t.duration != "" && t.duration != "0s" {
			b.WriteString(m.styles.ToolParams.Render(fmt.Sprintf(" (%s)", t.duration)))
		}
		b.WriteString("\n")
		if t.output != "" {
			output := t.output
			if len(output) > 300 {
				output = output[:300] + "..."
			}
			lines := strings.Split(output, "\n")
			for _, line := range lines {
				if line != "" {
					b.WriteString(m.styles.ToolOutput.Render("  | " + line))
					b.WriteString("\n")
				}
			}
		}
	} else {
		b.WriteString(m.styles.ToolError.Render("  Failed: " + t.error))
		b.WriteString("\n")
	}

	return m.styles.ToolBox.Render(b.String())
}

// renderToolInProgress renders a tool that's currently executing.
func (m Model) renderToolInProgress() string {
	var b strings.Builder

	header := fmt.Sprintf("Tool: %s", m.currentTool.name)
	b.WriteString(m.styles.ToolName.Render(header))

	if len(m.currentTool.args) > 0 {
		args := make([]string, 0, len(m.currentTool.args))
		for k, v := range m.currentTool.args {
			args = append(args, fmt.Sprintf("%s=%v", k, v))
		}
		b.WriteString(" ")
		b.WriteString(m.styles.ToolParams.Render("(" + strings.Join(args, ", ") + ")"))
	}
	b.WriteString("\n")
	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(m.styles.StatusText.Render("Executing..."))

	return m.styles.ToolBox.Render(b.String())
}

// renderSummary renders the final plan.
func (m Model) renderSummary(s *types.PlanSummary) string {
	var b strings.Builder

	b.WriteString(m.styles.SummaryTitle.Render("Event Plan"))
	b.WriteString("\n")

	if s.EventName != "" {
		b.WriteString(m.summaryLine("Event", s.EventName))
	}
	if s.SelectedSlot != nil {
		b.WriteString(m.summaryLine("When",
			fmt.Sprintf("%s  %s - %s", s.SelectedSlot.Date, s.SelectedSlot.StartTime, s.SelectedSlot.EndTime)))
	}
	b.WriteString(m.summaryLine("Budget",
		fmt.Sprintf("%.2f %s (%.2f per person)", s.Budget.TotalBudget, s.Budget.Currency, s.Budget.PerPersonCost)))

	if len(s.Venues) > 0 {
		b.WriteString(m.styles.SummaryLabel.Render("Venues:"))
		b.WriteString("\n")
		for i, venue := range s.Venues {
			line := fmt.Sprintf("  %d. %s", i+1, venue.Name)
			if i < len(s.VenueBudgets) && s.VenueBudgets[i].Error == "" {
				line += fmt.Sprintf("  (~%.2f %s)",
					s.VenueBudgets[i].Estimate.TotalBudget, s.VenueBudgets[i].Estimate.Currency)
			}
			b.WriteString(m.styles.SummaryValue.Render(line))
			b.WriteString("\n")
		}
	}

	return m.styles.SummaryBox.Render(b.String())
}

func (m Model) summaryLine(label, value string) string {
	return m.styles.SummaryLabel.Render(label+": ") + m.styles.SummaryValue.Render(value) + "\n"
}

// renderStatus renders the current processing status.
func (m Model) renderStatus() string {
	return fmt.Sprintf("%s %s",
		m.spinner.View(),
		m.styles.StateLabel.Render(m.phase.String()+"..."),
	)
}

// renderHelpBar renders the bottom help bar.
func (m Model) renderHelpBar() string {
	help := []string{
		m.styles.HelpKey.Render("enter") + m.styles.HelpValue.Render(" send"),
		m.styles.HelpKey.Render("ctrl+c") + m.styles.HelpValue.Render(" quit"),
		m.styles.HelpKey.Render("help") + m.styles.HelpValue.Render(" commands"),
		m.styles.HelpKey.Render("tools") + m.styles.HelpValue.Render(" list tools"),
	}
	return m.styles.HelpBar.Render(strings.Join(help, "  |  "))
}

// renderOutput flattens a tool output map for display.
func renderOutput(output map[string]any) string {
	if len(output) == 0 {
		return ""
	}
	keys := make([]string, 0, len(output))
	for k := range output {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %v", k, output[k]))
	}
	return strings.Join(lines, "\n")
}
