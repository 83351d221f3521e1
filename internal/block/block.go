package block

import (
	"sync"

	"github.com/aescanero/dago-node-prompt/internal/eval/cel"
	"github.com/aescanero/dago-node-prompt/internal/prompt"
)

// Kind tags the block variant
type Kind string

const (
	KindPlain   Kind = "plain"
	KindHistory Kind = "history"
	KindToggle  Kind = "toggle"
)

// HistoryRole describes how history entries are projected into output
type HistoryRole string

const (
	// HistoryMessage renders one message per selected entry
	HistoryMessage HistoryRole = "message"
	// HistoryMerge renders all selected entries into a single message
	HistoryMerge HistoryRole = "merge"
)

// ToggleType describes what gates a toggle block
type ToggleType string

const (
	// ToggleSingle is gated by the enabled flag alone
	ToggleSingle ToggleType = "single"
	// ToggleInput also needs a value in the toggle state, exposed as value
	ToggleInput ToggleType = "input"
)

// defaultHistoryTemplate is used by history blocks with an empty template
const defaultHistoryTemplate = "{{ entry.content }}"

// Block is one unit of prompt template content. Variant fields are set
// only for their Kind: History for KindHistory, Toggle for KindToggle.
// Blocks are treated as immutable values once built.
type Block struct {
	ID                          prompt.BlockID `json:"id,omitempty" yaml:"id,omitempty"`
	Kind                        Kind           `json:"type" yaml:"type"`
	Name                        string         `json:"name" yaml:"name"`
	Role                        prompt.Role    `json:"role" yaml:"role"`
	Template                    string         `json:"template" yaml:"template"`
	DeleteUnnecessaryCharacters bool           `json:"isDeleteUnnecessaryCharacters,omitempty" yaml:"isDeleteUnnecessaryCharacters,omitempty"`

	History *HistoryOptions `json:"history,omitempty" yaml:"history,omitempty"`
	Toggle  *ToggleOptions  `json:"toggle,omitempty" yaml:"toggle,omitempty"`
}

// HistoryOptions configures a history block
type HistoryOptions struct {
	Role HistoryRole `json:"historyRole" yaml:"historyRole"`
	// Select is an optional CEL predicate over entry, index and history
	Select string `json:"select,omitempty" yaml:"select,omitempty"`
}

// ToggleOptions configures a toggle block
type ToggleOptions struct {
	Type ToggleType `json:"toggleType" yaml:"toggleType"`
}

// Option adjusts a block under construction
type Option func(*Block)

// WithID sets the identity instead of generating one
func WithID(id prompt.BlockID) Option {
	return func(b *Block) {
		b.ID = id
	}
}

// WithDeleteUnnecessaryCharacters enables whitespace normalization
func WithDeleteUnnecessaryCharacters() Option {
	return func(b *Block) {
		b.DeleteUnnecessaryCharacters = true
	}
}

// WithSelect sets the history selector predicate
func WithSelect(expr string) Option {
	return func(b *Block) {
		if b.History != nil {
			b.History.Select = expr
		}
	}
}

// NewPlain builds a template-only block
func NewPlain(name string, role prompt.Role, template string, opts ...Option) (Block, error) {
	return build(Block{Kind: KindPlain, Name: name, Role: role, Template: template}, opts)
}

// NewHistory builds a block that projects the context history
func NewHistory(name string, role prompt.Role, template string, historyRole HistoryRole, opts ...Option) (Block, error) {
	return build(Block{
		Kind:     KindHistory,
		Name:     name,
		Role:     role,
		Template: template,
		History:  &HistoryOptions{Role: historyRole},
	}, opts)
}

// NewToggle builds a block gated by the toggle state under its ID
func NewToggle(name string, role prompt.Role, template string, toggleType ToggleType, opts ...Option) (Block, error) {
	return build(Block{
		Kind:     KindToggle,
		Name:     name,
		Role:     role,
		Template: template,
		Toggle:   &ToggleOptions{Type: toggleType},
	}, opts)
}

func build(b Block, opts []Option) (Block, error) {
	for _, opt := range opts {
		opt(&b)
	}
	if b.ID == "" {
		b.ID = prompt.NewBlockID()
	}
	if err := b.Validate(); err != nil {
		return Block{}, err
	}
	return b, nil
}

var selectorValidator = sync.OnceValue(cel.NewEvaluator)

// Validate checks the variant configuration. The role is normalized to its
// lower case form.
func (b *Block) Validate() error {
	role, err := prompt.ParseRole(string(b.Role))
	if err != nil {
		return configErrorf(b, "role", "%v", err)
	}
	b.Role = role

	switch b.Kind {
	case KindPlain:
		if b.History != nil || b.Toggle != nil {
			return configErrorf(b, "type", "plain block cannot carry history or toggle settings")
		}

	case KindHistory:
		if b.History == nil {
			return configErrorf(b, "history", "history block requires history settings")
		}
		if b.Toggle != nil {
			return configErrorf(b, "toggle", "history block cannot carry toggle settings")
		}
		switch b.History.Role {
		case HistoryMessage, HistoryMerge:
		default:
			return configErrorf(b, "historyRole", "unknown history role %q", b.History.Role)
		}
		if b.History.Select != "" {
			if err := selectorValidator().ValidateExpression(b.History.Select); err != nil {
				return configErrorf(b, "select", "%v", err)
			}
		}

	case KindToggle:
		if b.Toggle == nil {
			return configErrorf(b, "toggle", "toggle block requires toggle settings")
		}
		if b.History != nil {
			return configErrorf(b, "history", "toggle block cannot carry history settings")
		}
		if b.ID == "" {
			return configErrorf(b, "id", "toggle block requires a stable id")
		}
		switch b.Toggle.Type {
		case ToggleSingle, ToggleInput:
		default:
			return configErrorf(b, "toggleType", "unknown toggle type %q", b.Toggle.Type)
		}

	default:
		return configErrorf(b, "type", "unknown block type %q", b.Kind)
	}

	return nil
}
