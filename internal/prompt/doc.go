// Package prompt defines the evaluation environment shared by every block
// renderer: variables, conversation history, toggle state and the injectable
// capabilities (tokenizer, clock, random source).
//
// A Context is read-only for the duration of a render call. Renderers never
// write to it, so one Context may be shared by concurrent renders.
//
// Example usage:
//
//	ctx := &prompt.Context{
//	    Variables: map[string]any{"char": "John"},
//	    History: []prompt.HistoryEntry{
//	        {Name: "John", Role: prompt.RoleUser, Content: "hi"},
//	    },
//	    Clock: prompt.FixedClock(time.Date(2024, 9, 12, 21, 14, 15, 0, time.UTC)),
//	}
package prompt
