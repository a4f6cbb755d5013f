// Copyright (c) 2024-2025 ip-repo
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session provides the session controller, the single stateful
// coordinator between the conversation store, the streaming completion
// client, and the UI.
//
// A Controller is a state machine over two states: no conversation selected
// (an unsaved scratch transcript) and an active conversation mirrored from
// the store. One exchange runs at a time; Submit blocks through the full
// streaming consumption before another call proceeds.
//
// # Key Types
//
//   - Controller: the session state machine
//   - Streamer: the streaming completion dependency
//
// # Usage
//
//	ctrl := session.New(st, client, models)
//	reply, err := ctrl.Submit(ctx, "Hello")
package session
