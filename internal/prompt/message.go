package prompt

import (
	"fmt"
	"strings"
)

// Role is the chat role a message is sent with
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ParseRole parses a role name, case-insensitively
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleSystem, RoleUser, RoleAssistant:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role: %q", s)
	}
}

// Message is one role-tagged chunk of rendered prompt
type Message struct {
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// HistoryEntry is one prior conversation turn
type HistoryEntry struct {
	Name    string `json:"name" yaml:"name"`
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// AsMap exposes the entry to templates and CEL predicates
func (h HistoryEntry) AsMap() map[string]any {
	return map[string]any{
		"name":    h.Name,
		"role":    string(h.Role),
		"content": h.Content,
	}
}
