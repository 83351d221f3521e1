// Package cel provides a CEL (Common Expression Language) evaluator for
// selecting which history entries a history block renders.
//
// A selector sees the current entry as a string map, its position and the
// whole history:
//
//	entry   map(string, string)  # name, role, content
//	index   int                  # 0 is the oldest entry
//	history list(map(string, string))
//
// Example usage:
//
//	evaluator := cel.NewEvaluator()
//
//	keep, err := evaluator.Select(`entry.role == "user" && index >= size(history) - 4`, map[string]any{
//	    "entry":   map[string]string{"name": "John", "role": "user", "content": "hi"},
//	    "index":   3,
//	    "history": history,
//	})
//
// Supported operations:
//   - Comparisons: ==, !=, <, <=, >, >=
//   - Boolean logic: &&, ||, !
//   - String operations: contains, startsWith, endsWith, matches
//   - Arithmetic: +, -, *, /, %
//   - List operations: in, size
package cel
