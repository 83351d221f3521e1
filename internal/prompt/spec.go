package prompt

import (
	"fmt"
	"time"
)

// ContextSpec is the serializable form of a Context, as carried by render
// requests and context files.
type ContextSpec struct {
	Variables map[string]any `json:"variables,omitempty" yaml:"variables,omitempty"`
	History   []HistoryEntry `json:"history,omitempty" yaml:"history,omitempty"`
	Toggle    ToggleState    `json:"toggle,omitempty" yaml:"toggle,omitempty"`

	// Now pins the clock (RFC 3339); empty uses the wall clock
	Now string `json:"now,omitempty" yaml:"now,omitempty"`
	// Seed makes random and roll reproducible
	Seed *uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// Build turns the spec into a Context using the given tokenizer, which may be nil
func (s *ContextSpec) Build(tokenizer Tokenizer) (*Context, error) {
	ctx := &Context{
		Variables: s.Variables,
		Toggle:    s.Toggle,
		Tokenizer: tokenizer,
	}

	if len(s.History) > 0 {
		ctx.History = make([]HistoryEntry, len(s.History))
		for i, h := range s.History {
			role, err := ParseRole(string(h.Role))
			if err != nil {
				return nil, fmt.Errorf("history entry %d: %w", i, err)
			}
			h.Role = role
			ctx.History[i] = h
		}
	}

	if s.Now != "" {
		now, err := time.Parse(time.RFC3339Nano, s.Now)
		if err != nil {
			return nil, fmt.Errorf("invalid now %q: %w", s.Now, err)
		}
		ctx.Clock = FixedClock(now)
	}

	if s.Seed != nil {
		ctx.Random = NewSeededRandom(*s.Seed)
	}

	return ctx, nil
}
