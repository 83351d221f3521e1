// Package block implements the prompt block variants and their rendering.
//
// A Block is a tagged union over three kinds:
//   - plain: renders its template once
//   - history: renders its template once per context history entry, with
//     entry and index in scope, optionally filtered by a CEL selector
//   - toggle: renders only when the context toggle state enables its ID
//
// Example usage:
//
//	b, err := block.NewPlain("intro", prompt.RoleSystem, "{{char}} is {{description}}.")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	renderer := block.NewRenderer(nil, logger)
//	text, err := renderer.RenderPrompt(b, &prompt.Context{
//	    Variables: map[string]any{"char": "John", "description": "cool guy"},
//	})
//	// text: "John is cool guy."
//
// Blocks with DeleteUnnecessaryCharacters set have each produced string
// passed through Normalize before it is returned.
package block
