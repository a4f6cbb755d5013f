// Copyright (c) 2024-2025 ip-repo
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/ip-repo/ollama-st-app/internal/model"
	"github.com/ip-repo/ollama-st-app/internal/ollama"
	"github.com/ip-repo/ollama-st-app/internal/store"
)

// Scratch-state identity shown while no conversation is selected.
const (
	ScratchTitle       = "General Chat (won't be saved)"
	ScratchDescription = "Create a chat by using the side panel"
)

// scratchCap bounds unsaved history growth: once the scratch transcript
// reaches this many messages it collapses to its most recent one. Saved
// conversations are never collapsed. The check runs after the user message
// is appended and before the assistant reply is, so the asymmetry is part
// of the observable behavior.
const scratchCap = 9

// ErrNoModel is returned by Submit when only the discovery sentinel is
// selected. No state changes and no network call is made.
var ErrNoModel = errors.New("no ollama model found")

// Streamer is the streaming completion dependency. The returned channel
// yields reply fragments and closes at end of stream; failures arrive as a
// terminal text fragment, never as a Go error.
type Streamer interface {
	ChatStream(ctx context.Context, model string, transcript model.Transcript) <-chan string
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller owns the working transcript and the active-conversation
// reference. All session state lives here; the UI reads through accessors
// and mutates only through operations.
type Controller struct {
	id       string
	store    *store.Store
	streamer Streamer

	mu          sync.Mutex
	models      []string
	model       string
	active      string // conversation name, "" while in scratch state
	working     model.Transcript
	title       string
	description string
	listener    func(fragment string)

	// version increases on every observable state change so the UI can
	// cheaply detect staleness.
	version atomic.Uint64
}

// New creates a controller in the scratch state. models comes from discovery
// with the sentinel fallback already applied, so the controller is
// constructible even when the model provider was unreachable.
func New(st *store.Store, streamer Streamer, models []string) *Controller {
	if len(models) == 0 {
		models = []string{ollama.NoModelSentinel}
	}

	return &Controller{
		id:          uuid.NewString(),
		store:       st,
		streamer:    streamer,
		models:      models,
		model:       models[0],
		title:       ScratchTitle,
		description: ScratchDescription,
	}
}

// ID returns the ephemeral identifier of this controller instance.
func (c *Controller) ID() string {
	return c.id
}

// Version returns the current state version. Any observable change bumps it.
func (c *Controller) Version() uint64 {
	return c.version.Load()
}

// SetStreamListener registers an observer called with each reply fragment as
// it arrives during Submit. The listener is for incremental rendering only;
// Submit still returns the full reply.
func (c *Controller) SetStreamListener(fn func(fragment string)) {
	c.mu.Lock()
	c.listener = fn
	c.mu.Unlock()
}

// =============================================================================
// MODEL SELECTION
// =============================================================================

// Models returns the selectable model names.
func (c *Controller) Models() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.models))
	copy(out, c.models)
	return out
}

// Model returns the currently selected model.
func (c *Controller) Model() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.model
}

// SetModel selects a model. Selection is unchecked; only Submit enforces
// the no-model sentinel.
func (c *Controller) SetModel(name string) {
	c.mu.Lock()
	c.model = name
	c.mu.Unlock()
	c.version.Add(1)
}

// =============================================================================
// CONVERSATION OPERATIONS
// =============================================================================

// ListConversationNames returns all stored names in creation order.
func (c *Controller) ListConversationNames() []string {
	return c.store.Names()
}

// Search returns the stored names containing query, case-insensitive, in
// creation order. An empty query returns all names.
func (c *Controller) Search(query string) []string {
	return c.store.Search(query)
}

// ConversationPreview returns a short text preview for a stored
// conversation: the first user message when there is one, otherwise the most
// recent message. Unknown names and empty transcripts yield "".
func (c *Controller) ConversationPreview(name string, maxLen int) string {
	conv, ok := c.store.Get(name)
	if !ok {
		return ""
	}
	if preview := conv.Messages.FirstUserPreview(maxLen); preview != "" {
		return preview
	}
	if last, ok := conv.Messages.Last(); ok {
		return last.Preview(maxLen)
	}
	return ""
}

// SelectConversation activates a stored conversation and mirrors its
// transcript into the working view.
func (c *Controller) SelectConversation(name string) error {
	conv, ok := c.store.Get(name)
	if !ok {
		return store.ErrNotFound
	}

	c.mu.Lock()
	c.active = name
	c.working = conv.Messages.Clone()
	c.title = name
	c.description = conv.Description
	c.mu.Unlock()
	c.version.Add(1)
	return nil
}

// CreateConversation creates and activates a conversation. The stored
// transcript already holds the system message; the working view starts
// empty for new-turn accumulation. Duplicate or empty names are rejected
// with no state change.
func (c *Controller) CreateConversation(name, systemMessage, description string) error {
	if _, err := c.store.Create(name, systemMessage, description); err != nil {
		return err
	}

	c.mu.Lock()
	c.active = name
	c.working = nil
	c.title = name
	c.description = description
	c.mu.Unlock()
	c.version.Add(1)
	return nil
}

// DeleteConversation removes a conversation. When the active one is
// deleted, the most recently created remaining conversation takes its
// place; with none left the session returns to the scratch state.
func (c *Controller) DeleteConversation(name string) error {
	if err := c.store.Delete(name); err != nil {
		return err
	}

	c.mu.Lock()
	wasActive := c.active == name
	c.mu.Unlock()

	if wasActive {
		c.repairSelection()
	}
	c.version.Add(1)
	return nil
}

// Refresh re-reads the store from disk and repairs the active selection
// with the same fallback rules as deletion. Used after the backing file
// changes externally.
func (c *Controller) Refresh() error {
	if err := c.store.Reload(); err != nil {
		return err
	}
	c.repairSelection()
	c.version.Add(1)
	return nil
}

// repairSelection re-establishes a valid active conversation: the current
// one if it still exists, else the most recently created, else scratch.
func (c *Controller) repairSelection() {
	c.mu.Lock()
	active := c.active
	c.mu.Unlock()

	if active != "" {
		if _, ok := c.store.Get(active); ok {
			// Re-mirror in case the transcript changed on disk.
			c.SelectConversation(active)
			return
		}
	}

	names := c.store.Names()
	if len(names) > 0 {
		c.SelectConversation(names[len(names)-1])
		return
	}

	c.mu.Lock()
	c.active = ""
	c.working = nil
	c.title = ScratchTitle
	c.description = ScratchDescription
	c.mu.Unlock()
}

// =============================================================================
// ACCESSORS
// =============================================================================

// WorkingTranscript returns a copy of the current working transcript.
func (c *Controller) WorkingTranscript() model.Transcript {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.working.Clone()
}

// ActiveTitle returns the active conversation name, or the scratch title.
func (c *Controller) ActiveTitle() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.title
}

// ActiveDescription returns the active conversation description, or the
// scratch description.
func (c *Controller) ActiveDescription() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.description
}

// HasActiveConversation reports whether a stored conversation is selected.
func (c *Controller) HasActiveConversation() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active != ""
}

// =============================================================================
// SUBMIT
// =============================================================================

// Submit runs one full exchange: append the user message, stream the
// completion over the whole working transcript, append the assistant reply,
// and persist when a conversation is active. Exchanges are serialized; a
// second Submit blocks until the first completes.
//
// The reply is returned even when it is a terminal error fragment from the
// streaming client. The only error classes Submit itself surfaces are the
// no-model rejection and a storage failure while persisting.
func (c *Controller) Submit(ctx context.Context, userText string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.model == ollama.NoModelSentinel {
		return "", ErrNoModel
	}

	c.working = append(c.working, model.NewUserMessage(userText))

	// Scratch transcripts are capped: at exactly scratchCap messages after
	// the user append, only the newest survives. Saved conversations grow
	// without bound.
	if c.active == "" && len(c.working) == scratchCap {
		c.working = model.Transcript{c.working[len(c.working)-1]}
	}
	c.version.Add(1)

	var reply strings.Builder
	for fragment := range c.streamer.ChatStream(ctx, c.model, c.working.Clone()) {
		reply.WriteString(fragment)
		if c.listener != nil {
			c.listener(fragment)
		}
	}

	fullReply := reply.String()
	c.working = append(c.working, model.NewAssistantMessage(fullReply))
	c.version.Add(1)

	if c.active != "" {
		if err := c.store.UpdateMessages(c.active, c.working); err != nil {
			return fullReply, err
		}
	}

	return fullReply, nil
}
