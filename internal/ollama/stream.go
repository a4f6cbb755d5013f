// Copyright (c) 2024-2025 ip-repo
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/ip-repo/ollama-st-app/internal/model"
)

// Terminal fragments emitted when streaming fails. Callers treat them as the
// (degenerate) assistant reply, so the exact wording is part of the contract.
const (
	requestErrorFragment = "Got a request error.."
	generalErrorPrefix   = "General Error: \n"
)

// =============================================================================
// STREAMING CHAT
// =============================================================================

// ChatStream sends a streaming chat request carrying the full transcript and
// returns a channel of reply fragments. Concatenating all fragments in order
// reconstructs the complete assistant reply.
//
// The sequence is finite and non-restartable. Transport failure before or
// during streaming (connection refused, timeout, non-2xx status) delivers
// exactly one terminal fragment "Got a request error.."; any other failure,
// including a frame that does not parse as JSON, ends the stream with one
// terminal fragment "General Error: \n" followed by the error text. The
// channel is closed in every case and no Go error escapes. No retries are
// attempted.
func (c *Client) ChatStream(ctx context.Context, modelName string, transcript model.Transcript) <-chan string {
	ch := make(chan string)

	go func() {
		defer close(ch)

		if err := c.streamInto(ctx, modelName, transcript, ch); err != nil {
			emit(ctx, ch, errorFragment(err))
		}
	}()

	return ch
}

// streamInto performs the request and delivers content fragments to ch.
// Any returned error is translated into a terminal fragment by the caller.
func (c *Client) streamInto(ctx context.Context, modelName string, transcript model.Transcript, ch chan<- string) error {
	reqBody := ChatRequest{
		Model:    modelName,
		Messages: transcript,
		Stream:   true,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	// The shared client has a request timeout that would cut long streams
	// short. Streaming relies on the context for cancellation instead.
	streamClient := &http.Client{}

	resp, err := streamClient.Do(req)
	if err != nil {
		return ErrNotRunning
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if decErr := json.NewDecoder(resp.Body).Decode(&apiErr); decErr == nil && apiErr.Error != "" {
			return &ClientError{Type: ErrTypeConnection, Message: apiErr.Error}
		}
		return &ClientError{Type: ErrTypeConnection, Message: "stream request failed: " + resp.Status}
	}

	limiter := c.pacer()
	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 {
			var frame streamFrame
			if jsonErr := json.Unmarshal(line, &frame); jsonErr != nil {
				// A frame that does not decode ends the stream; the caller
				// turns this into the terminal general-error fragment.
				return jsonErr
			}
			if frame.Message.Content != "" {
				if !emit(ctx, ch, frame.Message.Content) {
					return nil
				}
				if limiter != nil {
					if waitErr := limiter.Wait(ctx); waitErr != nil {
						return nil
					}
				}
			}
			if frame.Done {
				return nil
			}
		}
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return &ClientError{Type: ErrTypeConnection, Message: "stream interrupted", Cause: err}
		}
	}
}

// pacer returns the inter-fragment rate limiter, or nil when pacing is off.
func (c *Client) pacer() *rate.Limiter {
	if c.config.StreamDelay <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(c.config.StreamDelay), 1)
}

// emit sends one fragment, giving up if the context ends first.
func emit(ctx context.Context, ch chan<- string, fragment string) bool {
	select {
	case ch <- fragment:
		return true
	case <-ctx.Done():
		return false
	}
}

// errorFragment maps a streaming failure to its terminal fragment text.
func errorFragment(err error) string {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		switch clientErr.Type {
		case ErrTypeNotRunning, ErrTypeTimeout, ErrTypeConnection:
			return requestErrorFragment
		}
	}
	return generalErrorPrefix + err.Error()
}
