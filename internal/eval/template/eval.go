package template

import (
	"strings"

	"github.com/aescanero/dago-node-prompt/internal/prompt"
)

// historyVar is resolved from the context history unless shadowed
const historyVar = "history"

// state holds one evaluation of a template against a context
type state struct {
	engine *Engine
	ctx    *prompt.Context
	locals map[string]any
	out    strings.Builder
}

func (s *state) eval(tmpl *Template) (string, error) {
	for _, n := range tmpl.nodes {
		switch nd := n.(type) {
		case textNode:
			s.out.WriteString(string(nd))
		case exprNode:
			val, err := s.evalExpr(nd.expr)
			if err != nil {
				return "", err
			}
			s.out.WriteString(Stringify(val))
		}
	}
	return s.out.String(), nil
}

func (s *state) evalExpr(e expr) (any, error) {
	switch ex := e.(type) {
	case *literalExpr:
		return ex.value, nil

	case *listExpr:
		items := make([]any, 0, len(ex.items))
		for _, item := range ex.items {
			v, err := s.evalExpr(item)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return items, nil

	case *pathExpr:
		return s.evalPath(ex)

	case *callExpr:
		if len(ex.args) > 0 {
			return nil, errorf(ex.pos, "macro %q takes no arguments", ex.name)
		}
		return s.callMacro(ex.name, ex.pos)

	case *filterExpr:
		return s.evalFilter(ex)

	default:
		return nil, errorf(e.position(), "unsupported expression type: %T", e)
	}
}

func (s *state) evalPath(p *pathExpr) (any, error) {
	var cur any
	if _, ok := s.engine.macros[p.root]; ok {
		v, err := s.callMacro(p.root, p.pos)
		if err != nil {
			return nil, err
		}
		cur = v
	} else {
		cur = s.lookup(p.root)
	}

	for _, step := range p.steps {
		if IsUndefined(cur) || cur == nil {
			return Undefined, nil
		}
		if step.index == nil {
			cur = getField(cur, step.name)
			continue
		}
		key, err := s.evalExpr(step.index)
		if err != nil {
			return nil, err
		}
		cur = getIndex(cur, key)
	}
	return cur, nil
}

// lookup resolves a root name: locals, then context variables, then history
func (s *state) lookup(name string) any {
	if v, ok := s.locals[name]; ok {
		return v
	}
	if s.ctx != nil {
		if v, ok := s.ctx.Variables[name]; ok {
			return v
		}
		if name == historyVar {
			return s.ctx.HistoryValues()
		}
	}
	return Undefined
}

func (s *state) callMacro(name string, pos int) (any, error) {
	m, ok := s.engine.macros[name]
	if !ok {
		return nil, errorf(pos, "unknown macro %q", name)
	}
	v, err := m(s.ctx)
	if err != nil {
		return nil, wrapError(pos, err, "macro %q", name)
	}
	return v, nil
}

func (s *state) evalFilter(f *filterExpr) (any, error) {
	spec, ok := s.engine.filters[f.name]
	if !ok {
		return nil, errorf(f.pos, "unknown filter %q", f.name)
	}
	if len(f.args) < spec.MinArgs || len(f.args) > spec.MaxArgs {
		return nil, errorf(f.pos, "filter %q expects %s, got %d", f.name, spec.arity(), len(f.args))
	}

	in, err := s.evalExpr(f.target)
	if err != nil {
		return nil, err
	}
	args := make([]any, len(f.args))
	for i, a := range f.args {
		if args[i], err = s.evalExpr(a); err != nil {
			return nil, err
		}
	}

	if spec.Requires != nil {
		if err := spec.Requires(s.ctx); err != nil {
			return nil, wrapError(f.pos, err, "filter %q", f.name)
		}
	}
	if IsUndefined(in) {
		return Undefined, nil
	}
	out, err := spec.Fn(s.ctx, in, args)
	if err != nil {
		return nil, wrapError(f.pos, err, "filter %q", f.name)
	}
	return out, nil
}
