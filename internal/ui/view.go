// Copyright (c) 2024-2025 ip-repo
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"strings"

	"github.com/ip-repo/ollama-st-app/internal/model"
	"github.com/ip-repo/ollama-st-app/internal/util"
)

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "starting..."
	}

	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render(util.TruncateWidth(m.title, m.width)))
	sb.WriteString("\n")
	sb.WriteString(m.styles.Description.Render(util.TruncateWidth(m.description, m.width)))
	sb.WriteString("\n")
	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")
	sb.WriteString(m.statusBar())
	sb.WriteString("\n")
	sb.WriteString(m.input.View())
	return sb.String()
}

// statusBar renders the bottom status line: model, session identity, and
// the current notice or streaming indicator.
func (m Model) statusBar() string {
	left := " " + m.styles.StatusKey.Render("model") + " " + m.modelName +
		"  " + m.styles.StatusKey.Render("session") + " " + shortSessionID(m.sessionID)

	state := m.notice
	if m.busy {
		state = m.spin.View() + " replying"
	}

	bar := left
	if state != "" {
		bar += "  " + state
	}

	bar = util.TruncateWidth(bar, m.width)
	return m.styles.StatusBar.Render(util.PadRight(bar, m.width))
}

// shortSessionID abbreviates a session UUID to its first group.
func shortSessionID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// refreshViewport rebuilds the viewport content from the session snapshot,
// or from the command overlay when one is active.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	if m.overlay != "" {
		m.viewport.SetContent(m.overlay)
		return
	}
	m.viewport.SetContent(m.renderTranscript())
}

// renderTranscript formats the working transcript plus any in-flight
// exchange for the viewport.
func (m *Model) renderTranscript() string {
	var sb strings.Builder

	for _, msg := range m.transcript {
		// Conversations created without a system message carry an empty
		// system entry; there is nothing to show for it.
		if msg.IsEmpty() {
			continue
		}
		sb.WriteString(m.renderMessage(msg))
		sb.WriteString("\n")
	}

	if m.busy {
		if m.pending != "" {
			sb.WriteString(m.renderMessage(model.NewUserMessage(m.pending)))
			sb.WriteString("\n")
		}
		sb.WriteString(m.styles.AssistLabel.Render(model.RoleAssistant.DisplayName()))
		sb.WriteString("\n")
		sb.WriteString(m.streaming)
		sb.WriteString("\n")
	}

	return sb.String()
}

// renderMessage formats one transcript message with its role label.
// Assistant replies go through glamour when markdown rendering is on.
func (m *Model) renderMessage(msg model.Message) string {
	var sb strings.Builder

	switch msg.Role {
	case model.RoleUser:
		sb.WriteString(m.styles.UserLabel.Render(msg.Role.DisplayName()))
		sb.WriteString("\n")
		sb.WriteString(m.styles.UserText.Render(msg.Content))
	case model.RoleAssistant:
		sb.WriteString(m.styles.AssistLabel.Render(msg.Role.DisplayName()))
		sb.WriteString("\n")
		sb.WriteString(m.renderAssistantText(msg.Content))
	default:
		sb.WriteString(m.styles.SystemLabel.Render(msg.Role.DisplayName()))
		sb.WriteString("\n")
		sb.WriteString(m.styles.SystemText.Render(msg.Content))
	}

	sb.WriteString("\n")
	return sb.String()
}

// renderAssistantText renders a completed assistant reply, falling back to
// plain text when the renderer is unavailable or fails.
func (m *Model) renderAssistantText(content string) string {
	if m.renderer == nil {
		return content
	}
	rendered, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n")
}
