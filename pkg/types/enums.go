package types

import "encoding/json"

// ItemType is the kind of a project item.
type ItemType string

// Item types.
const (
	ItemTypeNote      ItemType = "note"
	ItemTypeIDE       ItemType = "ide"
	ItemTypeFile      ItemType = "file"
	ItemTypeURL       ItemType = "url"
	ItemTypeRemoteIDE ItemType = "remote-ide"
	ItemTypeCommand   ItemType = "command"
)

var itemTypes = map[ItemType]bool{
	ItemTypeNote:      true,
	ItemTypeIDE:       true,
	ItemTypeFile:      true,
	ItemTypeURL:       true,
	ItemTypeRemoteIDE: true,
	ItemTypeCommand:   true,
}

// ParseItemType decodes a stored token. The boolean is false for unknown
// tokens, in which case ItemTypeNote is returned.
func ParseItemType(s string) (ItemType, bool) {
	t := ItemType(s)
	if itemTypes[t] {
		return t, true
	}
	return ItemTypeNote, false
}

// Valid reports whether t is a known item type.
func (t ItemType) Valid() bool { return itemTypes[t] }

func (t ItemType) String() string { return string(t) }

// UnmarshalJSON decodes an item type token. Unknown tokens become
// ItemTypeNote rather than failing the enclosing record.
func (t *ItemType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*t = ItemTypeNote
		return nil
	}
	*t, _ = ParseItemType(s)
	return nil
}

// CommandMode controls how a command item runs. The zero value means unset.
type CommandMode string

// Command modes.
const (
	CommandModeBackground CommandMode = "background"
	CommandModeOutput     CommandMode = "output"
)

// ParseCommandMode decodes a stored token. Unknown tokens yield the zero
// value and false.
func ParseCommandMode(s string) (CommandMode, bool) {
	switch m := CommandMode(s); m {
	case CommandModeBackground, CommandModeOutput:
		return m, true
	}
	return "", false
}

func (m CommandMode) String() string { return string(m) }

// UnmarshalJSON decodes a command mode token; unknown tokens decode to unset.
func (m *CommandMode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*m = ""
		return nil
	}
	*m, _ = ParseCommandMode(s)
	return nil
}

// CodingAgentType identifies the coding agent a launcher item starts. The
// zero value means unset.
type CodingAgentType string

// Coding agents.
const (
	CodingAgentClaudeCode CodingAgentType = "claude-code"
	CodingAgentOpencode   CodingAgentType = "opencode"
	CodingAgentGeminiCLI  CodingAgentType = "gemini-cli"
)

// ParseCodingAgentType decodes a stored token. Unknown tokens yield the zero
// value and false.
func ParseCodingAgentType(s string) (CodingAgentType, bool) {
	switch a := CodingAgentType(s); a {
	case CodingAgentClaudeCode, CodingAgentOpencode, CodingAgentGeminiCLI:
		return a, true
	}
	return "", false
}

func (a CodingAgentType) String() string { return string(a) }

// Command returns the executable name used to launch the agent.
func (a CodingAgentType) Command() string {
	switch a {
	case CodingAgentClaudeCode:
		return "claude"
	case CodingAgentOpencode:
		return "opencode"
	case CodingAgentGeminiCLI:
		return "gemini"
	}
	return ""
}

// UnmarshalJSON decodes a coding agent token; unknown tokens decode to unset.
func (a *CodingAgentType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*a = ""
		return nil
	}
	*a, _ = ParseCodingAgentType(s)
	return nil
}
