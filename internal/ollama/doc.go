// Copyright (c) 2024-2025 ip-repo
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with a local
// Ollama server: model discovery over /api/tags and streaming chat
// completions over /api/chat.
//
// # Key Types
//
//   - Client: the Ollama API client
//   - ClientConfig: endpoint, timeout, and stream pacing settings
//   - ModelInfo: one installed model as reported by /api/tags
//
// # Usage
//
//	client := ollama.NewClient()
//	models := client.AllowedModels(ctx, []string{"llava"})
//	for chunk := range client.ChatStream(ctx, models[0], transcript) {
//	    fmt.Print(chunk)
//	}
//
// Discovery degrades instead of failing: AllowedModels returns the single
// sentinel name NoModelSentinel when the server is unreachable. ChatStream
// never surfaces a Go error; failures become one terminal text fragment so
// the caller can treat them as the (degenerate) assistant reply.
package ollama
