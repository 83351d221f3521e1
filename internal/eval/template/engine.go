package template

import (
	"maps"
	"slices"
	"sync"

	"github.com/aescanero/dago-node-prompt/internal/prompt"
)

// Engine renders prompt templates
type Engine struct {
	filters map[string]Filter
	macros  map[string]MacroFunc
	cache   map[string]*Template
	mu      sync.RWMutex
}

// Option customizes an Engine
type Option func(*Engine)

// WithFilter adds or replaces a filter on this engine only
func WithFilter(name string, f Filter) Option {
	return func(e *Engine) {
		e.filters[name] = f
	}
}

// WithMacro adds or replaces a macro on this engine only
func WithMacro(name string, m MacroFunc) Option {
	return func(e *Engine) {
		e.macros[name] = m
	}
}

// NewEngine creates a new template engine with the built-in filters and macros
func NewEngine(opts ...Option) *Engine {
	engine := &Engine{
		filters: DefaultFilters(),
		macros:  DefaultMacros(),
		cache:   make(map[string]*Template),
	}

	for _, opt := range opts {
		opt(engine)
	}

	return engine
}

// Render renders a template against ctx. locals shadow context variables
// and are used for per-entry values such as entry and index.
func (e *Engine) Render(templateStr string, ctx *prompt.Context, locals map[string]any) (string, error) {
	// Get or compile template
	tmpl, err := e.getTemplate(templateStr)
	if err != nil {
		return "", err
	}

	// Execute the template
	s := &state{engine: e, ctx: ctx, locals: locals}
	result, err := s.eval(tmpl)
	if err != nil {
		return "", err
	}

	return result, nil
}

// getTemplate gets a parsed template from cache or parses it
func (e *Engine) getTemplate(templateStr string) (*Template, error) {
	// Check cache first (read lock)
	e.mu.RLock()
	if tmpl, ok := e.cache[templateStr]; ok {
		e.mu.RUnlock()
		return tmpl, nil
	}
	e.mu.RUnlock()

	// Parse and check the template
	tmpl, err := Parse(templateStr)
	if err != nil {
		return nil, err
	}
	if err := e.check(tmpl); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// Check again in case another goroutine parsed it
	if cached, ok := e.cache[templateStr]; ok {
		return cached, nil
	}
	e.cache[templateStr] = tmpl

	return tmpl, nil
}

// ValidateTemplate checks syntax, filter names, filter arity and macro
// names without rendering
func (e *Engine) ValidateTemplate(templateStr string) error {
	tmpl, err := Parse(templateStr)
	if err != nil {
		return err
	}
	return e.check(tmpl)
}

// ClearCache clears the parsed template cache
func (e *Engine) ClearCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache = make(map[string]*Template)
}

// Filters returns the names this engine resolves as filters
func (e *Engine) Filters() []string {
	return sortedKeys(e.filters)
}

// Macros returns the names this engine resolves as macros
func (e *Engine) Macros() []string {
	return sortedKeys(e.macros)
}

// check walks a parsed template and rejects unknown names
func (e *Engine) check(tmpl *Template) error {
	for _, n := range tmpl.nodes {
		if nd, ok := n.(exprNode); ok {
			if err := e.checkExpr(nd.expr); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Engine) checkExpr(ex expr) error {
	switch x := ex.(type) {
	case *listExpr:
		for _, item := range x.items {
			if err := e.checkExpr(item); err != nil {
				return err
			}
		}
	case *pathExpr:
		for _, step := range x.steps {
			if step.index != nil {
				if err := e.checkExpr(step.index); err != nil {
					return err
				}
			}
		}
	case *callExpr:
		if _, ok := e.macros[x.name]; !ok {
			return errorf(x.pos, "unknown macro %q", x.name)
		}
		if len(x.args) > 0 {
			return errorf(x.pos, "macro %q takes no arguments", x.name)
		}
	case *filterExpr:
		spec, ok := e.filters[x.name]
		if !ok {
			return errorf(x.pos, "unknown filter %q", x.name)
		}
		if len(x.args) < spec.MinArgs || len(x.args) > spec.MaxArgs {
			return errorf(x.pos, "filter %q expects %s, got %d", x.name, spec.arity(), len(x.args))
		}
		if err := e.checkExpr(x.target); err != nil {
			return err
		}
		for _, a := range x.args {
			if err := e.checkExpr(a); err != nil {
				return err
			}
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
