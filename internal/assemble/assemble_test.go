package assemble

import (
	"errors"
	"testing"

	"github.com/aescanero/dago-node-prompt/internal/block"
	"github.com/aescanero/dago-node-prompt/internal/eval/template"
	"github.com/aescanero/dago-node-prompt/internal/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func mustBlock(t *testing.T, b block.Block, err error) block.Block {
	t.Helper()
	require.NoError(t, err)
	return b
}

func testBlocks(t *testing.T) []block.Block {
	t.Helper()
	return []block.Block{
		mustBlock(t, block.NewPlain("persona", prompt.RoleSystem, "You are {{char}}.")),
		mustBlock(t, block.NewToggle("secret", prompt.RoleSystem, "Keep it secret.", block.ToggleSingle, block.WithID("secret"))),
		mustBlock(t, block.NewHistory("chat", prompt.RoleUser, "{{entry.content}}", block.HistoryMessage)),
		mustBlock(t, block.NewPlain("ask", prompt.RoleUser, "Reply as {{char}}.")),
	}
}

func testContext() *prompt.Context {
	return &prompt.Context{
		Variables: map[string]any{"char": "John"},
		History: []prompt.HistoryEntry{
			{Name: "Ann", Role: prompt.RoleUser, Content: "hello"},
			{Name: "John", Role: prompt.RoleAssistant, Content: "hi"},
		},
	}
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeMessages, false},
		{"messages", ModeMessages, false},
		{" Prompt ", ModePrompt, false},
		{"chat", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAssembler_Messages(t *testing.T) {
	t.Parallel()
	a := NewAssembler(nil, zaptest.NewLogger(t))

	result, err := a.Assemble(ModeMessages, testBlocks(t), testContext())
	require.NoError(t, err)
	assert.Equal(t, ModeMessages, result.Mode)
	assert.Equal(t, []prompt.Message{
		{Role: prompt.RoleSystem, Content: "You are John."},
		{Role: prompt.RoleUser, Content: "hello"},
		{Role: prompt.RoleUser, Content: "hi"},
		{Role: prompt.RoleUser, Content: "Reply as John."},
	}, result.Messages)
	assert.Empty(t, result.Prompt)
}

func TestAssembler_Prompt(t *testing.T) {
	t.Parallel()
	a := NewAssembler(nil, zaptest.NewLogger(t))

	ctx := testContext()
	ctx.Toggle = prompt.ToggleState{Enabled: map[prompt.BlockID]bool{"secret": true}}

	result, err := a.Assemble(ModePrompt, testBlocks(t), ctx)
	require.NoError(t, err)
	assert.Equal(t, "You are John.\nKeep it secret.\nhello\nhi\nReply as John.", result.Prompt)
	assert.Nil(t, result.Messages)
}

func TestAssembler_FailsWithoutPartialOutput(t *testing.T) {
	t.Parallel()
	a := NewAssembler(nil, zaptest.NewLogger(t))

	blocks := append(testBlocks(t),
		mustBlock(t, block.NewPlain("broken", prompt.RoleUser, "{{ char | token_size }}")))

	for _, mode := range []Mode{ModeMessages, ModePrompt} {
		result, err := a.Assemble(mode, blocks, testContext())
		require.Error(t, err)
		assert.Nil(t, result)
		assert.True(t, errors.Is(err, template.ErrNoTokenizer))
		assert.Contains(t, err.Error(), "block 4")
	}
}

func TestAssembler_UnknownMode(t *testing.T) {
	t.Parallel()
	a := NewAssembler(nil, nil)

	_, err := a.Assemble(Mode("xml"), nil, testContext())
	assert.Error(t, err)
}

func TestAssembler_Empty(t *testing.T) {
	t.Parallel()
	a := NewAssembler(block.NewRenderer(nil, nil), nil)

	result, err := a.Assemble(ModePrompt, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "", result.Prompt)
}
