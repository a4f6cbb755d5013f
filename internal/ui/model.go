// Copyright (c) 2024-2025 ip-repo
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/ip-repo/ollama-st-app/internal/model"
	"github.com/ip-repo/ollama-st-app/internal/session"
)

// =============================================================================
// UI MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat front end.
type Model struct {
	ctrl           *session.Controller
	styles         Styles
	renderMarkdown bool
	// defaultSystemMessage seeds new conversations when /new omits one.
	defaultSystemMessage string
	// checkServer probes the inference endpoint once at startup; nil
	// disables the probe.
	checkServer func() error

	viewport viewport.Model
	input    textinput.Model
	spin     spinner.Model
	renderer *glamour.TermRenderer

	width  int
	height int
	ready  bool

	// Submit holds the controller's lock for the whole exchange, so the UI
	// renders from this snapshot instead of calling accessors while busy.
	transcript  model.Transcript
	title       string
	description string
	modelName   string
	// sessionID is the controller's instance ID, shown abbreviated in the
	// status bar to tell session runs apart.
	sessionID string

	// pending holds the just-entered user message until the exchange
	// finishes; streaming accumulates the in-flight reply fragments.
	busy      bool
	pending   string
	streaming string
	notice    string
	// staleStore defers a watcher-triggered reload that arrived mid-stream.
	staleStore bool
	// overlay replaces the transcript view with command output (/chats,
	// /models, /help) until the next action.
	overlay string
}

// New creates the chat UI bound to a session controller.
func New(ctrl *session.Controller, theme string, renderMarkdown bool, defaultSystemMessage string, checkServer func() error) Model {
	styles := NewStyles(theme)

	input := textinput.New()
	input.Placeholder = "What is up?"
	input.Prompt = "> "
	input.PromptStyle = styles.InputPrompt
	input.Focus()
	input.CharLimit = 0

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := Model{
		ctrl:                 ctrl,
		styles:               styles,
		renderMarkdown:       renderMarkdown,
		defaultSystemMessage: defaultSystemMessage,
		checkServer:          checkServer,
		sessionID:            ctrl.ID(),
		input:                input,
		spin:                 spin,
	}
	m.snapshotSession()
	return m
}

// snapshotSession copies the controller state the view renders from. Never
// called while an exchange is in flight.
func (m *Model) snapshotSession() {
	m.transcript = m.ctrl.WorkingTranscript()
	m.title = m.ctrl.ActiveTitle()
	m.description = m.ctrl.ActiveDescription()
	m.modelName = m.ctrl.Model()
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.checkServerCmd())
}

// checkServerCmd probes the inference endpoint once and surfaces an
// unreachable server in the status line. Chat still fails per exchange with
// the usual error fragment; this just tells the user up front.
func (m Model) checkServerCmd() tea.Cmd {
	if m.checkServer == nil {
		return nil
	}
	check := m.checkServer
	return func() tea.Msg {
		if err := check(); err != nil {
			return NoticeMsg{Text: "ollama server is not reachable"}
		}
		return nil
	}
}

// chromeHeight is the number of rows used around the viewport: title,
// description, status bar, and the input line.
const chromeHeight = 4

// resize lays the components out for a new terminal size.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	vpHeight := height - chromeHeight
	if vpHeight < 1 {
		vpHeight = 1
	}

	if !m.ready {
		m.viewport = viewport.New(width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = vpHeight
	}
	m.input.Width = width - 4

	// Glamour wraps at render time, so the renderer follows the width.
	if m.renderMarkdown {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err == nil {
			m.renderer = renderer
		}
	}

	m.refreshViewport()
}
