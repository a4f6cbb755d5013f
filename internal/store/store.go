// Copyright (c) 2024-2025 ip-repo
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ip-repo/ollama-st-app/internal/model"
	"github.com/ip-repo/ollama-st-app/internal/util"
)

// =============================================================================
// ERRORS
// =============================================================================

// Store errors. Use errors.Is to check for them.
var (
	ErrEmptyName     = &StoreError{Message: "conversation name is empty"}
	ErrDuplicateName = &StoreError{Message: "conversation name already taken"}
	ErrNotFound      = &StoreError{Message: "conversation not found"}
)

// StoreError represents a conversation store error.
type StoreError struct {
	Message string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing store errors.
func (e *StoreError) Is(target error) bool {
	t, ok := target.(*StoreError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is one persisted conversation. CreationDate is kept as the
// raw ISO-8601 string so documents written by other tools survive a
// round trip byte for byte.
type Conversation struct {
	CreationDate string           `json:"creation_date"`
	Messages     model.Transcript `json:"messages"`
	Description  string           `json:"description"`
}

// CreatedAt parses the creation date, accepting RFC 3339 and the
// timezone-less ISO-8601 variants other writers produce. A date that does
// not parse sorts before everything else.
func (c *Conversation) CreatedAt() time.Time {
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, c.CreationDate); err == nil {
			return t
		}
	}
	return time.Time{}
}

// =============================================================================
// STORE
// =============================================================================

// Store holds the full conversation mapping in memory and persists it as one
// JSON document. All methods are safe for concurrent use, though the engine
// serializes exchanges above this layer.
type Store struct {
	mu    sync.RWMutex
	path  string
	chats map[string]*Conversation
	// names in creation order, oldest first. The JSON map loses ordering,
	// so it is rebuilt from creation dates on every load.
	names []string
}

// Open loads the store from path. A missing file yields an empty store; an
// unreadable or corrupt file is an error.
func Open(path string) (*Store, error) {
	s := &Store{
		path:  path,
		chats: make(map[string]*Conversation),
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Reload re-reads the backing file, replacing the in-memory mapping. Used at
// open time and by the file watcher when the document changes externally.
func (s *Store) Reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.mu.Lock()
			s.chats = make(map[string]*Conversation)
			s.names = nil
			s.mu.Unlock()
			return nil
		}
		return fmt.Errorf("failed to read conversations file: %w", err)
	}

	chats := make(map[string]*Conversation)
	if err := json.Unmarshal(data, &chats); err != nil {
		return fmt.Errorf("failed to decode conversations file: %w", err)
	}

	s.mu.Lock()
	s.chats = chats
	s.names = orderedNames(chats)
	s.mu.Unlock()
	return nil
}

// orderedNames sorts names by creation date, oldest first, name as the
// tiebreaker so the order is deterministic.
func orderedNames(chats map[string]*Conversation) []string {
	names := make([]string, 0, len(chats))
	for name := range chats {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ti := chats[names[i]].CreatedAt()
		tj := chats[names[j]].CreatedAt()
		if ti.Equal(tj) {
			return names[i] < names[j]
		}
		return ti.Before(tj)
	})
	return names
}

// Save writes the full mapping to the backing file. The write is atomic:
// a concurrent reader observes either the previous document or the new one,
// never a partial file.
func (s *Store) Save() error {
	s.mu.RLock()
	data, err := json.Marshal(s.chats)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to encode conversations: %w", err)
	}

	if err := util.AtomicWriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write conversations file: %w", err)
	}
	return nil
}

// =============================================================================
// MUTATING OPERATIONS
// =============================================================================

// Create inserts a new conversation whose transcript holds only the system
// message, then saves. Fails with ErrEmptyName or ErrDuplicateName without
// touching the store.
func (s *Store) Create(name, systemMessage, description string) (*Conversation, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}

	s.mu.Lock()
	if _, exists := s.chats[name]; exists {
		s.mu.Unlock()
		return nil, ErrDuplicateName
	}
	conv := &Conversation{
		CreationDate: time.Now().Format(time.RFC3339Nano),
		Messages:     model.Transcript{model.NewSystemMessage(systemMessage)},
		Description:  description,
	}
	s.chats[name] = conv
	s.names = append(s.names, name)
	s.mu.Unlock()

	if err := s.Save(); err != nil {
		return nil, err
	}
	return conv, nil
}

// Delete removes a conversation and saves. Deleting an absent name is a
// no-op; the save still happens, mirroring the overwrite-always contract.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	if _, exists := s.chats[name]; exists {
		delete(s.chats, name)
		for i, n := range s.names {
			if n == name {
				s.names = append(s.names[:i], s.names[i+1:]...)
				break
			}
		}
	}
	s.mu.Unlock()

	return s.Save()
}

// UpdateMessages replaces a conversation's transcript and saves. This is the
// per-exchange persistence hook used by the session controller.
func (s *Store) UpdateMessages(name string, transcript model.Transcript) error {
	s.mu.Lock()
	conv, exists := s.chats[name]
	if !exists {
		s.mu.Unlock()
		return ErrNotFound
	}
	conv.Messages = transcript.Clone()
	s.mu.Unlock()

	return s.Save()
}

// =============================================================================
// READ OPERATIONS
// =============================================================================

// Get returns a conversation by name.
func (s *Store) Get(name string) (*Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.chats[name]
	return conv, ok
}

// Names returns all conversation names in creation order, oldest first.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of stored conversations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chats)
}

// Search returns the names containing query, case-insensitive, in the same
// order Names reports them. An empty query returns all names.
func (s *Store) Search(query string) []string {
	query = strings.ToLower(query)

	s.mu.RLock()
	defer s.mu.RUnlock()
	var results []string
	for _, name := range s.names {
		if query == "" || strings.Contains(strings.ToLower(name), query) {
			results = append(results, name)
		}
	}
	return results
}
