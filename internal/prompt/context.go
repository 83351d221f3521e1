package prompt

import "time"

// ToggleState carries per-block runtime gating and parameter values
type ToggleState struct {
	Enabled map[BlockID]bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Values  map[BlockID]any  `json:"values,omitempty" yaml:"values,omitempty"`
}

// IsEnabled reports the gate for id; absent means disabled
func (t ToggleState) IsEnabled(id BlockID) bool {
	return t.Enabled[id]
}

// Value returns the parameter value stored for id
func (t ToggleState) Value(id BlockID) (any, bool) {
	v, ok := t.Values[id]
	return v, ok
}

// Context is the evaluation environment for one render call
type Context struct {
	Variables map[string]any
	History   []HistoryEntry
	Toggle    ToggleState

	// Optional capabilities; nil falls back to SystemClock and GlobalRandom.
	// A nil Tokenizer makes token_size fail.
	Tokenizer Tokenizer
	Clock     Clock
	Random    Random
}

// Now reads the context clock
func (c *Context) Now() time.Time {
	if c == nil || c.Clock == nil {
		return SystemClock.Now()
	}
	return c.Clock.Now()
}

// Rand returns the context random source
func (c *Context) Rand() Random {
	if c == nil || c.Random == nil {
		return GlobalRandom
	}
	return c.Random
}

// HistoryValues returns the history as template values, oldest first
func (c *Context) HistoryValues() []any {
	if c == nil {
		return nil
	}
	out := make([]any, len(c.History))
	for i, h := range c.History {
		out[i] = h.AsMap()
	}
	return out
}
