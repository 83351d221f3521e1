package assemble

import (
	"fmt"
	"strings"

	"github.com/aescanero/dago-node-prompt/internal/block"
	"github.com/aescanero/dago-node-prompt/internal/prompt"
	"go.uber.org/zap"
)

// Mode selects the output shape
type Mode string

const (
	// ModeMessages produces an ordered list of role-tagged messages
	ModeMessages Mode = "messages"

	// ModePrompt produces one flattened string
	ModePrompt Mode = "prompt"
)

// ParseMode parses a mode name; empty means messages
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeMessages:
		return ModeMessages, nil
	case ModePrompt:
		return ModePrompt, nil
	default:
		return "", fmt.Errorf("unknown render mode: %s", s)
	}
}

// Result is the output of one assembly
type Result struct {
	Mode     Mode             `json:"mode"`
	Messages []prompt.Message `json:"messages,omitempty"`
	Prompt   string           `json:"prompt,omitempty"`
}

// Assembler renders an ordered list of blocks into one output
type Assembler struct {
	renderer *block.Renderer
	logger   *zap.Logger
}

// NewAssembler creates a new assembler
func NewAssembler(renderer *block.Renderer, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if renderer == nil {
		renderer = block.NewRenderer(nil, logger)
	}
	return &Assembler{
		renderer: renderer,
		logger:   logger,
	}
}

// Assemble renders blocks in order. The first failing block fails the
// whole assembly; no partial output is returned.
func (a *Assembler) Assemble(mode Mode, blocks []block.Block, ctx *prompt.Context) (*Result, error) {
	a.logger.Debug("assembling prompt",
		zap.String("mode", string(mode)),
		zap.Int("blocks", len(blocks)),
	)

	result := &Result{Mode: mode}
	var err error

	switch mode {
	case ModeMessages:
		result.Messages, err = a.Messages(blocks, ctx)
	case ModePrompt:
		result.Prompt, err = a.Prompt(blocks, ctx)
	default:
		return nil, fmt.Errorf("unknown render mode: %s", mode)
	}

	if err != nil {
		a.logger.Error("assembly failed",
			zap.String("mode", string(mode)),
			zap.Error(err),
		)
		return nil, err
	}

	return result, nil
}

// Messages concatenates the messages of every block
func (a *Assembler) Messages(blocks []block.Block, ctx *prompt.Context) ([]prompt.Message, error) {
	messages := make([]prompt.Message, 0, len(blocks))
	for i, b := range blocks {
		msgs, err := a.renderer.RenderMessages(b, ctx)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		messages = append(messages, msgs...)
	}
	return messages, nil
}

// Prompt joins the non-empty prompts of every block with a newline
func (a *Assembler) Prompt(blocks []block.Block, ctx *prompt.Context) (string, error) {
	parts := make([]string, 0, len(blocks))
	for i, b := range blocks {
		text, err := a.renderer.RenderPrompt(b, ctx)
		if err != nil {
			return "", fmt.Errorf("block %d: %w", i, err)
		}
		if text == "" {
			continue
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n"), nil
}
