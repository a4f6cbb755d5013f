// Copyright (c) 2024-2025 ip-repo
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ip-repo/ollama-st-app/internal/session"
	"github.com/ip-repo/ollama-st-app/internal/store"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEsc:
			if m.overlay != "" {
				m.overlay = ""
				m.refreshViewport()
				return m, nil
			}
			return m, tea.Quit
		case tea.KeyEnter:
			return m.handleInput()
		}

	case StreamTokenMsg:
		m.streaming += msg.Token
		m.refreshViewport()
		m.viewport.GotoBottom()
		return m, nil

	case ExchangeDoneMsg:
		m.busy = false
		m.pending = ""
		m.streaming = ""
		if msg.Err != nil {
			if errors.Is(msg.Err, session.ErrNoModel) {
				m.notice = "no ollama model found"
			} else {
				m.notice = m.styles.ErrorText.Render(msg.Err.Error())
			}
		}
		if m.staleStore {
			m.staleStore = false
			if err := m.ctrl.Refresh(); err != nil {
				m.notice = m.styles.ErrorText.Render(err.Error())
			}
		}
		m.snapshotSession()
		m.refreshViewport()
		m.viewport.GotoBottom()
		return m, nil

	case StoreChangedMsg:
		// The controller's lock is held for the whole exchange; defer the
		// reload until the stream finishes.
		if m.busy {
			m.staleStore = true
			return m, nil
		}
		if err := m.ctrl.Refresh(); err != nil {
			m.notice = m.styles.ErrorText.Render(err.Error())
		}
		m.snapshotSession()
		m.refreshViewport()
		return m, nil

	case NoticeMsg:
		m.notice = msg.Text
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// handleInput routes the entered line: slash commands mutate the session,
// anything else becomes a chat submission.
func (m Model) handleInput() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}

	if m.busy {
		m.notice = "still replying, wait for the current exchange to finish"
		return m, nil
	}

	m.input.Reset()
	m.notice = ""
	m.overlay = ""

	if cmd, ok := parseCommand(text); ok {
		return m.runCommand(cmd)
	}

	m.busy = true
	m.pending = text
	m.streaming = ""
	m.refreshViewport()
	m.viewport.GotoBottom()
	return m, tea.Batch(m.submitCmd(text), m.spin.Tick)
}

// submitCmd runs one full exchange off the UI goroutine. Fragments arrive
// separately through the controller's stream listener.
func (m Model) submitCmd(text string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		reply, err := ctrl.Submit(context.Background(), text)
		return ExchangeDoneMsg{Reply: reply, Err: err}
	}
}

// runCommand executes a parsed slash command.
func (m Model) runCommand(cmd Command) (tea.Model, tea.Cmd) {
	switch cmd.Name {
	case "new":
		name, systemMessage, description := splitNewArgs(cmd.Args)
		if systemMessage == "" {
			systemMessage = m.defaultSystemMessage
		}
		err := m.ctrl.CreateConversation(name, systemMessage, description)
		switch {
		case errors.Is(err, store.ErrDuplicateName), errors.Is(err, store.ErrEmptyName):
			m.notice = "Chat name already taken or empty."
		case err != nil:
			m.notice = m.styles.ErrorText.Render(err.Error())
		default:
			m.notice = m.styles.Notice.Render("created " + name)
		}

	case "open":
		if err := m.ctrl.SelectConversation(cmd.Args); err != nil {
			m.notice = "no conversation named " + cmd.Args
		}

	case "delete":
		if err := m.ctrl.DeleteConversation(cmd.Args); err != nil {
			m.notice = m.styles.ErrorText.Render(err.Error())
		} else {
			m.notice = m.styles.Notice.Render("deleted " + cmd.Args)
		}

	case "chats":
		m.overlay = m.renderChatList("Saved conversations", m.ctrl.ListConversationNames())

	case "search":
		m.overlay = m.renderChatList("Matches for "+cmd.Args, m.ctrl.Search(cmd.Args))

	case "model":
		if cmd.Args == "" {
			m.notice = "current model: " + m.ctrl.Model()
		} else {
			m.ctrl.SetModel(cmd.Args)
			m.notice = m.styles.Notice.Render("model set to " + cmd.Args)
		}

	case "models":
		m.overlay = m.renderNameList("Available models", m.ctrl.Models())

	case "help":
		m.overlay = helpText

	case "quit", "exit":
		return m, tea.Quit

	default:
		m.notice = "unknown command /" + cmd.Name + " (try /help)"
	}

	m.snapshotSession()
	m.refreshViewport()
	m.viewport.GotoBottom()
	return m, nil
}

// renderChatList formats conversation names for the overlay, each with a
// short preview of its content.
func (m Model) renderChatList(header string, names []string) string {
	var sb strings.Builder
	sb.WriteString(m.styles.ListHeader.Render(header))
	sb.WriteString("\n")
	if len(names) == 0 {
		sb.WriteString(m.styles.ListItem.Render("(none)"))
		return sb.String()
	}
	for _, name := range names {
		line := name
		if preview := m.ctrl.ConversationPreview(name, 48); preview != "" {
			line += "  " + m.styles.Description.Render(preview)
		}
		sb.WriteString(m.styles.ListItem.Render(line))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// renderNameList formats a plain name list for the overlay.
func (m Model) renderNameList(header string, names []string) string {
	var sb strings.Builder
	sb.WriteString(m.styles.ListHeader.Render(header))
	sb.WriteString("\n")
	if len(names) == 0 {
		sb.WriteString(m.styles.ListItem.Render("(none)"))
		return sb.String()
	}
	for _, name := range names {
		sb.WriteString(m.styles.ListItem.Render(name))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
