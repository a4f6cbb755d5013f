// Copyright (c) 2024-2025 ip-repo
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/ip-repo/ollama-st-app/internal/model"
	"github.com/ip-repo/ollama-st-app/internal/ollama"
	"github.com/ip-repo/ollama-st-app/internal/store"
)

// fakeStreamer replays canned fragments and records every transcript it was
// asked to complete.
type fakeStreamer struct {
	fragments   []string
	transcripts []model.Transcript
}

func (f *fakeStreamer) ChatStream(ctx context.Context, modelName string, transcript model.Transcript) <-chan string {
	f.transcripts = append(f.transcripts, transcript.Clone())

	ch := make(chan string)
	go func() {
		defer close(ch)
		for _, frag := range f.fragments {
			ch <- frag
		}
	}()
	return ch
}

func newTestController(t *testing.T, fragments []string) (*Controller, *fakeStreamer, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "chats.json"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	streamer := &fakeStreamer{fragments: fragments}
	return New(st, streamer, []string{"llama3.2:3b"}), streamer, st
}

// =============================================================================
// INITIAL STATE TESTS
// =============================================================================

func TestNew_StartsInScratchState(t *testing.T) {
	ctrl, _, _ := newTestController(t, nil)

	if ctrl.HasActiveConversation() {
		t.Error("a new controller should have no active conversation")
	}
	if got := ctrl.ActiveTitle(); got != ScratchTitle {
		t.Errorf("title = %q", got)
	}
	if got := ctrl.ActiveDescription(); got != ScratchDescription {
		t.Errorf("description = %q", got)
	}
	if len(ctrl.WorkingTranscript()) != 0 {
		t.Error("working transcript should start empty")
	}
	if ctrl.ID() == "" {
		t.Error("controller should carry an instance ID")
	}
}

func TestNew_EmptyModelListFallsBackToSentinel(t *testing.T) {
	st, _ := store.Open(filepath.Join(t.TempDir(), "chats.json"))
	ctrl := New(st, &fakeStreamer{}, nil)

	if got := ctrl.Model(); got != ollama.NoModelSentinel {
		t.Errorf("model = %q, want sentinel", got)
	}
}

// =============================================================================
// SUBMIT TESTS
// =============================================================================

func TestSubmit_ReassemblesFragments(t *testing.T) {
	ctrl, _, _ := newTestController(t, []string{"Hel", "lo", " there"})

	reply, err := ctrl.Submit(context.Background(), "Hi")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if reply != "Hello there" {
		t.Errorf("reply = %q, want %q", reply, "Hello there")
	}

	tr := ctrl.WorkingTranscript()
	if len(tr) != 2 {
		t.Fatalf("transcript length = %d, want 2", len(tr))
	}
	if tr[0].Role != model.RoleUser || tr[0].Content != "Hi" {
		t.Errorf("tr[0] = %+v", tr[0])
	}
	if tr[1].Role != model.RoleAssistant || tr[1].Content != "Hello there" {
		t.Errorf("tr[1] = %+v", tr[1])
	}
}

func TestSubmit_RejectsSentinelModel(t *testing.T) {
	ctrl, streamer, _ := newTestController(t, []string{"never"})
	ctrl.SetModel(ollama.NoModelSentinel)

	_, err := ctrl.Submit(context.Background(), "Hi")
	if !errors.Is(err, ErrNoModel) {
		t.Fatalf("err = %v, want ErrNoModel", err)
	}
	if len(ctrl.WorkingTranscript()) != 0 {
		t.Error("rejected submit must not change the transcript")
	}
	if len(streamer.transcripts) != 0 {
		t.Error("rejected submit must not reach the streaming client")
	}
}

func TestSubmit_ErrorFragmentIsTheReply(t *testing.T) {
	ctrl, _, _ := newTestController(t, []string{"Got a request error.."})

	reply, err := ctrl.Submit(context.Background(), "Hi")
	if err != nil {
		t.Fatalf("Submit should not fail on a transport error fragment: %v", err)
	}
	if reply != "Got a request error.." {
		t.Errorf("reply = %q", reply)
	}

	tr := ctrl.WorkingTranscript()
	if len(tr) != 2 || tr[1].Content != "Got a request error.." {
		t.Errorf("transcript = %+v", tr)
	}
}

func TestSubmit_SendsFullWorkingTranscript(t *testing.T) {
	ctrl, streamer, _ := newTestController(t, []string{"ok"})

	ctrl.Submit(context.Background(), "one")
	ctrl.Submit(context.Background(), "two")

	if len(streamer.transcripts) != 2 {
		t.Fatalf("streamer saw %d calls, want 2", len(streamer.transcripts))
	}
	// Second call carries user, assistant, user.
	second := streamer.transcripts[1]
	if len(second) != 3 {
		t.Fatalf("second call transcript length = %d, want 3", len(second))
	}
	if second[2].Content != "two" {
		t.Errorf("last message = %+v", second[2])
	}
}

func TestSubmit_StreamListenerSeesFragmentsInOrder(t *testing.T) {
	ctrl, _, _ := newTestController(t, []string{"a", "b", "c"})

	var seen []string
	ctrl.SetStreamListener(func(fragment string) {
		seen = append(seen, fragment)
	})

	ctrl.Submit(context.Background(), "Hi")

	if len(seen) != 3 || seen[0] != "a" || seen[1] != "b" || seen[2] != "c" {
		t.Errorf("listener saw %v", seen)
	}
}

// =============================================================================
// SCRATCH CAP TESTS
// =============================================================================

func TestSubmit_ScratchTranscriptCollapsesAtCap(t *testing.T) {
	ctrl, streamer, _ := newTestController(t, []string{"reply"})

	// Four full exchanges put eight messages in the scratch transcript.
	for i := 0; i < 4; i++ {
		if _, err := ctrl.Submit(context.Background(), "msg"); err != nil {
			t.Fatalf("Submit %d failed: %v", i, err)
		}
	}
	if got := len(ctrl.WorkingTranscript()); got != 8 {
		t.Fatalf("transcript length after 4 exchanges = %d, want 8", got)
	}

	// The fifth user message is the ninth entry: the transcript collapses
	// to just that message before the streaming call.
	if _, err := ctrl.Submit(context.Background(), "fifth"); err != nil {
		t.Fatalf("fifth Submit failed: %v", err)
	}

	fifth := streamer.transcripts[4]
	if len(fifth) != 1 {
		t.Fatalf("fifth streaming call saw transcript length %d, want 1", len(fifth))
	}
	if fifth[0].Role != model.RoleUser || fifth[0].Content != "fifth" {
		t.Errorf("surviving message = %+v", fifth[0])
	}

	if got := len(ctrl.WorkingTranscript()); got != 2 {
		t.Errorf("transcript length after collapse = %d, want 2", got)
	}
}

func TestSubmit_SavedConversationNeverCollapses(t *testing.T) {
	ctrl, streamer, _ := newTestController(t, []string{"reply"})
	if err := ctrl.CreateConversation("long chat", "sys", "desc"); err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}

	for i := 0; i < 6; i++ {
		if _, err := ctrl.Submit(context.Background(), "msg"); err != nil {
			t.Fatalf("Submit %d failed: %v", i, err)
		}
	}

	if got := len(ctrl.WorkingTranscript()); got != 12 {
		t.Errorf("transcript length = %d, want 12 (no collapse)", got)
	}
	last := streamer.transcripts[len(streamer.transcripts)-1]
	if len(last) != 11 {
		t.Errorf("final streaming call saw length %d, want 11", len(last))
	}
}

// =============================================================================
// CONVERSATION LIFECYCLE TESTS
// =============================================================================

func TestCreateThenSelect_FirstElementIsSystemMessage(t *testing.T) {
	ctrl, _, _ := newTestController(t, nil)

	if err := ctrl.CreateConversation("Team Chat", "Be concise", "work"); err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}
	if len(ctrl.WorkingTranscript()) != 0 {
		t.Error("working view should start empty after create")
	}
	if ctrl.ActiveTitle() != "Team Chat" {
		t.Errorf("title = %q", ctrl.ActiveTitle())
	}

	if err := ctrl.SelectConversation("Team Chat"); err != nil {
		t.Fatalf("SelectConversation failed: %v", err)
	}
	tr := ctrl.WorkingTranscript()
	if len(tr) != 1 || tr[0].Role != model.RoleSystem || tr[0].Content != "Be concise" {
		t.Errorf("transcript = %+v, want the system message first", tr)
	}
}

func TestCreateConversation_DuplicateRejectedWithoutStateChange(t *testing.T) {
	ctrl, _, _ := newTestController(t, nil)
	ctrl.CreateConversation("dup", "sys", "first")

	err := ctrl.CreateConversation("dup", "sys", "second")
	if !errors.Is(err, store.ErrDuplicateName) {
		t.Fatalf("err = %v, want ErrDuplicateName", err)
	}
	if ctrl.ActiveDescription() != "first" {
		t.Error("failed create must not change the active description")
	}
}

func TestConversationPreview(t *testing.T) {
	ctrl, _, _ := newTestController(t, []string{"A language."})
	if err := ctrl.CreateConversation("Team Chat", "Be concise", ""); err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}

	// Before any exchange the only content is the system message.
	if got := ctrl.ConversationPreview("Team Chat", 48); got != "Be concise" {
		t.Errorf("preview = %q, want the system message", got)
	}

	if _, err := ctrl.Submit(context.Background(), "What is Go?"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if got := ctrl.ConversationPreview("Team Chat", 48); got != "What is Go?" {
		t.Errorf("preview = %q, want the first user message", got)
	}

	if got := ctrl.ConversationPreview("ghost", 48); got != "" {
		t.Errorf("preview for unknown name = %q, want empty", got)
	}
}

func TestSelectConversation_UnknownNameFails(t *testing.T) {
	ctrl, _, _ := newTestController(t, nil)

	if err := ctrl.SelectConversation("ghost"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteActive_FallsBackToMostRecentlyCreated(t *testing.T) {
	ctrl, _, _ := newTestController(t, nil)
	ctrl.CreateConversation("first", "sys", "")
	ctrl.CreateConversation("second", "sys", "")
	ctrl.CreateConversation("third", "sys", "")
	ctrl.SelectConversation("second")

	if err := ctrl.DeleteConversation("second"); err != nil {
		t.Fatalf("DeleteConversation failed: %v", err)
	}
	if got := ctrl.ActiveTitle(); got != "third" {
		t.Errorf("active = %q, want the most recently created remaining", got)
	}
}

func TestDeleteLastConversation_ReturnsToScratchState(t *testing.T) {
	ctrl, _, _ := newTestController(t, nil)
	ctrl.CreateConversation("only", "sys", "desc")

	if err := ctrl.DeleteConversation("only"); err != nil {
		t.Fatalf("DeleteConversation failed: %v", err)
	}
	if ctrl.HasActiveConversation() {
		t.Error("controller should return to the scratch state")
	}
	if ctrl.ActiveTitle() != ScratchTitle {
		t.Errorf("title = %q", ctrl.ActiveTitle())
	}
	if len(ctrl.WorkingTranscript()) != 0 {
		t.Error("working transcript should be empty")
	}
}

func TestDeleteInactive_KeepsSelection(t *testing.T) {
	ctrl, _, _ := newTestController(t, nil)
	ctrl.CreateConversation("keep", "sys", "")
	ctrl.CreateConversation("drop", "sys", "")
	ctrl.SelectConversation("keep")

	ctrl.DeleteConversation("drop")

	if got := ctrl.ActiveTitle(); got != "keep" {
		t.Errorf("active = %q, want keep", got)
	}
}

// =============================================================================
// PERSISTENCE TESTS
// =============================================================================

func TestSubmit_PersistsActiveConversation(t *testing.T) {
	ctrl, _, st := newTestController(t, []string{"Hello there"})
	ctrl.CreateConversation("saved", "sys", "")

	if _, err := ctrl.Submit(context.Background(), "Hi"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	reloaded, err := store.Open(st.Path())
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	conv, ok := reloaded.Get("saved")
	if !ok {
		t.Fatal("conversation should be on disk")
	}
	if len(conv.Messages) != 2 || conv.Messages[1].Content != "Hello there" {
		t.Errorf("persisted transcript = %+v", conv.Messages)
	}
}

func TestSubmit_ScratchExchangeIsNotPersisted(t *testing.T) {
	ctrl, _, st := newTestController(t, []string{"reply"})

	if _, err := ctrl.Submit(context.Background(), "Hi"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if st.Len() != 0 {
		t.Error("scratch exchanges must not create store entries")
	}
}

// =============================================================================
// SEARCH AND VERSION TESTS
// =============================================================================

func TestSearch_DelegatesToStore(t *testing.T) {
	ctrl, _, _ := newTestController(t, nil)
	for _, name := range []string{"Team Chat", "general", "My Team"} {
		ctrl.CreateConversation(name, "sys", "")
	}

	got := ctrl.Search("team")
	if len(got) != 2 || got[0] != "Team Chat" || got[1] != "My Team" {
		t.Errorf("Search = %v", got)
	}
}

func TestVersion_BumpsOnStateChanges(t *testing.T) {
	ctrl, _, _ := newTestController(t, []string{"r"})

	v0 := ctrl.Version()
	ctrl.CreateConversation("c", "sys", "")
	if ctrl.Version() == v0 {
		t.Error("create should bump the version")
	}

	v1 := ctrl.Version()
	ctrl.Submit(context.Background(), "Hi")
	if ctrl.Version() <= v1 {
		t.Error("submit should bump the version")
	}
}

func TestRefresh_RepairsDeletedActiveConversation(t *testing.T) {
	ctrl, _, st := newTestController(t, nil)
	ctrl.CreateConversation("gone", "sys", "")

	// Another process rewrites the document without this conversation.
	other, _ := store.Open(st.Path())
	other.Delete("gone")

	if err := ctrl.Refresh(); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if ctrl.HasActiveConversation() {
		t.Error("active selection should fall back to scratch")
	}
	if ctrl.ActiveTitle() != ScratchTitle {
		t.Errorf("title = %q", ctrl.ActiveTitle())
	}
}
