// Copyright (c) 2024-2025 ip-repo
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import "testing"

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input    string
		wantOK   bool
		wantName string
		wantArgs string
	}{
		{"/help", true, "help", ""},
		{"/open Team Chat", true, "open", "Team Chat"},
		{"  /MODELS  ", true, "models", ""},
		{"hello there", false, "", ""},
		{"what is / in go?", false, "", ""},
	}

	for _, tc := range tests {
		cmd, ok := parseCommand(tc.input)
		if ok != tc.wantOK {
			t.Errorf("parseCommand(%q) ok = %v, want %v", tc.input, ok, tc.wantOK)
			continue
		}
		if !ok {
			continue
		}
		if cmd.Name != tc.wantName || cmd.Args != tc.wantArgs {
			t.Errorf("parseCommand(%q) = %+v, want name %q args %q", tc.input, cmd, tc.wantName, tc.wantArgs)
		}
	}
}

func TestSplitNewArgs(t *testing.T) {
	name, sys, desc := splitNewArgs("Team Chat | Be concise | work stuff")
	if name != "Team Chat" || sys != "Be concise" || desc != "work stuff" {
		t.Errorf("got %q %q %q", name, sys, desc)
	}

	name, sys, desc = splitNewArgs("Just A Name")
	if name != "Just A Name" || sys != "" || desc != "" {
		t.Errorf("got %q %q %q", name, sys, desc)
	}

	// A pipe inside the description is kept verbatim.
	_, _, desc = splitNewArgs("n | s | a | b")
	if desc != "a | b" {
		t.Errorf("description = %q", desc)
	}
}
