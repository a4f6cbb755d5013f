// Copyright (c) 2024-2025 ip-repo
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat transcripts.
//
// This package defines the core domain types shared by the store, the
// streaming client, and the session controller.
//
// # Key Types
//
//   - Message: a single role-tagged message ({role, content}), immutable
//     once appended to a transcript
//   - Transcript: the ordered message history of one conversation
//   - Role: message role enumeration (user, assistant, system)
//
// # Usage
//
// Build a transcript one exchange at a time:
//
//	t := model.Transcript{}
//	t = append(t, model.NewUserMessage("Hello"))
//	t = append(t, model.NewAssistantMessage("Hi there!"))
package model
