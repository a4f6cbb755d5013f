// Copyright (c) 2024-2025 ip-repo
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import "strings"

// =============================================================================
// SLASH COMMAND PARSING
// =============================================================================

// Command is a parsed slash command.
type Command struct {
	Name string
	Args string
}

// parseCommand splits "/name rest of line" into a Command. Returns false
// when the input is not a slash command and should be submitted as chat.
func parseCommand(input string) (Command, bool) {
	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(trimmed, "/") {
		return Command{}, false
	}

	name, args, _ := strings.Cut(trimmed[1:], " ")
	return Command{
		Name: strings.ToLower(name),
		Args: strings.TrimSpace(args),
	}, true
}

// splitNewArgs parses "/new name | system message | description". The name
// is required; the other two fields default to empty.
func splitNewArgs(args string) (name, systemMessage, description string) {
	parts := strings.SplitN(args, "|", 3)
	name = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		systemMessage = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		description = strings.TrimSpace(parts[2])
	}
	return name, systemMessage, description
}

const helpText = `Commands:
  /new <name> | <system message> | <description>   create a conversation
  /open <name>      switch to a saved conversation
  /delete <name>    delete a conversation
  /chats            list saved conversations
  /search <query>   find conversations by name
  /model <name>     select a model
  /models           list available models
  /help             show this help
  /quit             exit`
