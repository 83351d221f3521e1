// Package template provides the expression engine used to render prompt
// block templates.
//
// Templates interpolate expressions between {{ and }}. An expression is a
// literal, a variable path or a macro, optionally piped through filters:
//
//	{{ char }}                                  # variable
//	{{ user.profile["name"] }}                  # dotted and bracket paths
//	{{ history[0].content }}                    # list index
//	{{ now }}                                   # macro, e.g. 2024-09-12T21:14:15.000Z
//	{{ ["apple", "kiwi"] | random }}            # filter on a list literal
//	{{ "1999-01-01" | date_from("2000-01-01") }} # "a year ago"
//
// Example usage:
//
//	engine := template.NewEngine()
//
//	ctx := &prompt.Context{
//	    Variables: map[string]any{"char": "John", "description": "cool guy"},
//	}
//
//	result, err := engine.Render("{{char}} is {{description}}.", ctx, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// Output: John is cool guy.
//
// A path that does not resolve renders as an empty string. Unknown filters
// or macros, syntax errors and filters given bad arguments fail the whole
// render with an *EvaluationError.
//
// Built-in macros:
//   - now - Current instant from the context clock, ISO-8601 UTC with milliseconds
//
// Built-in filters:
//   - date_from(compare, suppress=false) - Phrase from compare back to the piped date
//   - date_from_now(suppress=false) - date_from with compare = now
//   - date_to(compare, suppress=false) - Phrase from the piped date forward to compare
//   - date_to_now(suppress=false) - date_to with compare = now
//   - random - Uniformly chosen element of a list
//   - roll - Sum of dice for an expression like "2d4"
//   - token_size - Token count of a string using the context tokenizer
//
// Filters and macros are held per Engine; WithFilter and WithMacro extend a
// single engine without touching any other.
package template
