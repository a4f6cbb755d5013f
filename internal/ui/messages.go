// Copyright (c) 2024-2025 ip-repo
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

// =============================================================================
// MESSAGE TYPES
// =============================================================================

// StreamTokenMsg delivers one reply fragment while an exchange streams.
// Sent from the controller's stream listener via Program.Send.
type StreamTokenMsg struct {
	Token string
}

// ExchangeDoneMsg signals that a Submit call finished. Reply carries the
// full assistant text (possibly a terminal error fragment); Err is non-nil
// only for the no-model rejection or a storage failure.
type ExchangeDoneMsg struct {
	Reply string
	Err   error
}

// StoreChangedMsg signals that the backing conversations file changed on
// disk. Sent from the store watcher via Program.Send.
type StoreChangedMsg struct{}

// NoticeMsg displays a transient status line notice. Sent by the startup
// server probe.
type NoticeMsg struct {
	Text string
}
