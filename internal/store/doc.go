// Copyright (c) 2024-2025 ip-repo
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides conversation persistence backed by a single JSON
// document.
//
// The document's top-level shape is a mapping of conversation name to
// {creation_date, messages, description}. Every save replaces the whole
// document atomically; a missing file means an empty store, not an error.
//
// # Key Types
//
//   - Store: the in-memory mapping plus its backing file
//   - Conversation: one named conversation with its transcript
//   - Watcher: optional fsnotify-based reload on external file changes
//
// # Usage
//
//	s, err := store.Open("~/.ollama-chat/chats.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	conv, err := s.Create("Team Chat", "Be helpful", "work stuff")
package store
