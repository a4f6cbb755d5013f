// Copyright (c) 2024-2025 ip-repo
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// STYLES
// =============================================================================

// Styles holds the lipgloss styles for one theme.
type Styles struct {
	Title       lipgloss.Style
	Description lipgloss.Style
	UserLabel   lipgloss.Style
	AssistLabel lipgloss.Style
	SystemLabel lipgloss.Style
	UserText    lipgloss.Style
	SystemText  lipgloss.Style
	StatusBar   lipgloss.Style
	StatusKey   lipgloss.Style
	Notice      lipgloss.Style
	ErrorText   lipgloss.Style
	InputPrompt lipgloss.Style
	ListItem    lipgloss.Style
	ListHeader  lipgloss.Style
}

// NewStyles builds the style set for a theme name ("dark" or "light").
func NewStyles(theme string) Styles {
	var (
		accent    = lipgloss.Color("12")
		secondary = lipgloss.Color("5")
		faint     = lipgloss.Color("8")
		danger    = lipgloss.Color("9")
		barBg     = lipgloss.Color("236")
		barFg     = lipgloss.Color("252")
	)
	if theme == "light" {
		accent = lipgloss.Color("4")
		secondary = lipgloss.Color("5")
		faint = lipgloss.Color("7")
		barBg = lipgloss.Color("254")
		barFg = lipgloss.Color("235")
	}

	return Styles{
		Title:       lipgloss.NewStyle().Bold(true).Foreground(accent),
		Description: lipgloss.NewStyle().Foreground(faint).Italic(true),
		UserLabel:   lipgloss.NewStyle().Bold(true).Foreground(secondary),
		AssistLabel: lipgloss.NewStyle().Bold(true).Foreground(accent),
		SystemLabel: lipgloss.NewStyle().Bold(true).Foreground(faint),
		UserText:    lipgloss.NewStyle(),
		SystemText:  lipgloss.NewStyle().Foreground(faint),
		StatusBar:   lipgloss.NewStyle().Background(barBg).Foreground(barFg),
		StatusKey:   lipgloss.NewStyle().Background(barBg).Foreground(accent).Bold(true),
		Notice:      lipgloss.NewStyle().Foreground(secondary),
		ErrorText:   lipgloss.NewStyle().Foreground(danger),
		InputPrompt: lipgloss.NewStyle().Foreground(accent).Bold(true),
		ListItem:    lipgloss.NewStyle().PaddingLeft(2),
		ListHeader:  lipgloss.NewStyle().Bold(true).Underline(true),
	}
}
