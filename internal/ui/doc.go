// Copyright (c) 2024-2025 ip-repo
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui provides the Bubble Tea chat front end.
//
// The UI is the session controller's external collaborator: it renders the
// working transcript, accepts input, and drives the engine exclusively
// through the controller's public operations. Session state stays in the
// controller; the UI keeps only a display snapshot, refreshed after every
// operation and never while an exchange is streaming.
//
// Slash commands manage conversations and models (/new, /open, /delete,
// /chats, /search, /model, /models, /help, /quit); any other input is
// submitted as a chat message.
package ui
