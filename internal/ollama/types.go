// Copyright (c) 2024-2025 ip-repo
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"time"

	"github.com/ip-repo/ollama-st-app/internal/model"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// ChatRequest is the body of a POST /api/chat request.
type ChatRequest struct {
	Model    string           `json:"model"`
	Messages model.Transcript `json:"messages"`
	Stream   bool             `json:"stream"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ModelInfo describes one installed model as returned by /api/tags.
type ModelInfo struct {
	Name       string    `json:"name"`
	Model      string    `json:"model,omitempty"`
	ModifiedAt time.Time `json:"modified_at,omitempty"`
	Size       int64     `json:"size,omitempty"`
}

// ListModelsResponse is the body of a GET /api/tags response.
type ListModelsResponse struct {
	Models []ModelInfo `json:"models"`
}

// streamFrame is one newline-delimited JSON frame of a streaming chat
// response. Only the fields the engine consumes are decoded.
type streamFrame struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done bool `json:"done"`
}

// apiError is the error body Ollama returns on non-200 responses.
type apiError struct {
	Error string `json:"error"`
}
