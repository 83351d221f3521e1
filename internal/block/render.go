package block

import (
	"fmt"
	"strings"

	"github.com/aescanero/dago-node-prompt/internal/eval/cel"
	"github.com/aescanero/dago-node-prompt/internal/eval/template"
	"github.com/aescanero/dago-node-prompt/internal/prompt"
	"go.uber.org/zap"
)

// Renderer renders blocks against a context. It holds only caches, so one
// Renderer can serve concurrent renders.
type Renderer struct {
	engine    *template.Engine
	selectors *cel.Evaluator
	logger    *zap.Logger
}

// NewRenderer creates a renderer. A nil engine uses the built-in filters and
// macros; a nil logger discards output.
func NewRenderer(engine *template.Engine, logger *zap.Logger) *Renderer {
	if engine == nil {
		engine = template.NewEngine()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{
		engine:    engine,
		selectors: cel.NewEvaluator(),
		logger:    logger,
	}
}

// Engine returns the template engine used by this renderer
func (r *Renderer) Engine() *template.Engine {
	return r.engine
}

// RenderMessages renders the block into role-tagged messages. Every message
// carries the block role; empty output yields no message.
func (r *Renderer) RenderMessages(b Block, ctx *prompt.Context) ([]prompt.Message, error) {
	parts, err := r.render(b, ctx)
	if err != nil {
		return nil, err
	}

	messages := make([]prompt.Message, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		messages = append(messages, prompt.Message{Role: b.Role, Content: part})
	}
	return messages, nil
}

// RenderPrompt renders the block into one string. Multiple message
// boundaries are joined with a single newline.
func (r *Renderer) RenderPrompt(b Block, ctx *prompt.Context) (string, error) {
	parts, err := r.render(b, ctx)
	if err != nil {
		return "", err
	}
	switch len(parts) {
	case 0:
		return "", nil
	case 1:
		return parts[0], nil
	}

	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, "\n"), nil
}

// render produces the post-processed text of each message the block emits
func (r *Renderer) render(b Block, ctx *prompt.Context) ([]string, error) {
	var (
		parts []string
		err   error
	)

	switch b.Kind {
	case KindPlain:
		parts, err = r.renderPlain(b, ctx)
	case KindHistory:
		parts, err = r.renderHistory(b, ctx)
	case KindToggle:
		parts, err = r.renderToggle(b, ctx)
	default:
		return nil, configErrorf(&b, "type", "unknown block type %q", b.Kind)
	}

	if err != nil {
		r.logger.Debug("block render failed",
			zap.String("block", b.Name),
			zap.String("kind", string(b.Kind)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("block %q: %w", b.Name, err)
	}

	if b.DeleteUnnecessaryCharacters {
		for i, part := range parts {
			parts[i] = Normalize(part)
		}
	}

	r.logger.Debug("block rendered",
		zap.String("block", b.Name),
		zap.String("kind", string(b.Kind)),
		zap.Int("parts", len(parts)),
	)
	return parts, nil
}

func (r *Renderer) renderPlain(b Block, ctx *prompt.Context) ([]string, error) {
	out, err := r.engine.Render(b.Template, ctx, nil)
	if err != nil {
		return nil, err
	}
	return []string{out}, nil
}

func (r *Renderer) renderToggle(b Block, ctx *prompt.Context) ([]string, error) {
	if ctx == nil || !ctx.Toggle.IsEnabled(b.ID) {
		r.logger.Debug("toggle disabled", zap.String("block", b.Name), zap.String("id", b.ID.String()))
		return nil, nil
	}

	value, hasValue := ctx.Toggle.Value(b.ID)
	if b.Toggle != nil && b.Toggle.Type == ToggleInput && !hasValue {
		r.logger.Debug("toggle has no input value", zap.String("block", b.Name), zap.String("id", b.ID.String()))
		return nil, nil
	}

	var locals map[string]any
	if hasValue {
		locals = map[string]any{"value": value}
	}
	out, err := r.engine.Render(b.Template, ctx, locals)
	if err != nil {
		return nil, err
	}
	return []string{out}, nil
}

func (r *Renderer) renderHistory(b Block, ctx *prompt.Context) ([]string, error) {
	if ctx == nil || len(ctx.History) == 0 {
		return nil, nil
	}

	tmpl := b.Template
	if strings.TrimSpace(tmpl) == "" {
		tmpl = defaultHistoryTemplate
	}

	var selector string
	historyRole := HistoryMessage
	if b.History != nil {
		selector = b.History.Select
		historyRole = b.History.Role
	}

	var celHistory []map[string]string
	if selector != "" {
		celHistory = make([]map[string]string, len(ctx.History))
		for i, h := range ctx.History {
			celHistory[i] = entryStrings(h)
		}
	}

	var outs []string
	for i, h := range ctx.History {
		if selector != "" {
			keep, err := r.selectors.Select(selector, map[string]any{
				cel.VarEntry:   celHistory[i],
				cel.VarIndex:   i,
				cel.VarHistory: celHistory,
			})
			if err != nil {
				return nil, &template.EvaluationError{Pos: -1, Msg: "history selector", Err: err}
			}
			if !keep {
				continue
			}
		}

		out, err := r.engine.Render(tmpl, ctx, map[string]any{
			"entry": h.AsMap(),
			"index": int64(i),
		})
		if err != nil {
			return nil, err
		}
		outs = append(outs, out)
	}

	if historyRole == HistoryMerge {
		if len(outs) == 0 {
			return nil, nil
		}
		return []string{strings.Join(outs, "\n")}, nil
	}
	return outs, nil
}

func entryStrings(h prompt.HistoryEntry) map[string]string {
	return map[string]string{
		"name":    h.Name,
		"role":    string(h.Role),
		"content": h.Content,
	}
}
