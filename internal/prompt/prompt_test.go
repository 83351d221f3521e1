package prompt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"system", RoleSystem, false},
		{" User ", RoleUser, false},
		{"ASSISTANT", RoleAssistant, false},
		{"narrator", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBlockID(t *testing.T) {
	t.Parallel()

	a, b := NewBlockID(), NewBlockID()
	assert.NotEqual(t, a, b)
	assert.Len(t, a.String(), 36)

	id, err := ParseBlockID("toggle-1")
	require.NoError(t, err)
	assert.Equal(t, BlockID("toggle-1"), id)

	_, err = ParseBlockID("")
	assert.Error(t, err)
}

func TestContext_NilSafe(t *testing.T) {
	t.Parallel()

	var ctx *Context
	assert.WithinDuration(t, time.Now(), ctx.Now(), time.Minute)
	assert.Equal(t, GlobalRandom, ctx.Rand())
	assert.Nil(t, ctx.HistoryValues())
}

func TestContext_HistoryValues(t *testing.T) {
	t.Parallel()

	ctx := &Context{History: []HistoryEntry{{Name: "Ann", Role: RoleUser, Content: "hi"}}}
	assert.Equal(t, []any{
		map[string]any{"name": "Ann", "role": "user", "content": "hi"},
	}, ctx.HistoryValues())
}

func TestToggleState(t *testing.T) {
	t.Parallel()

	var empty ToggleState
	assert.False(t, empty.IsEnabled("x"))
	_, ok := empty.Value("x")
	assert.False(t, ok)

	state := ToggleState{
		Enabled: map[BlockID]bool{"x": true},
		Values:  map[BlockID]any{"x": 3},
	}
	assert.True(t, state.IsEnabled("x"))
	v, ok := state.Value("x")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestSeededRandom(t *testing.T) {
	t.Parallel()

	draw := func(seed uint64) []int {
		r := NewSeededRandom(seed)
		out := make([]int, 20)
		for i := range out {
			out[i] = r.IntN(1000)
		}
		return out
	}

	assert.Equal(t, draw(1), draw(1))
	assert.NotEqual(t, draw(1), draw(2))
	for _, v := range draw(3) {
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 1000)
	}
}

func TestContextSpec_Build(t *testing.T) {
	t.Parallel()
	seed := uint64(42)
	tok := TokenizerFunc(func(s string) int { return len(s) })

	spec := ContextSpec{
		Variables: map[string]any{"char": "John"},
		History:   []HistoryEntry{{Name: "Ann", Role: RoleUser, Content: "hi"}},
		Toggle:    ToggleState{Enabled: map[BlockID]bool{"t": true}},
		Now:       "2024-09-12T21:14:15.000Z",
		Seed:      &seed,
	}

	ctx, err := spec.Build(tok)
	require.NoError(t, err)
	assert.Equal(t, "John", ctx.Variables["char"])
	assert.Len(t, ctx.History, 1)
	assert.True(t, ctx.Toggle.IsEnabled("t"))
	assert.Equal(t, 4, ctx.Tokenizer.CountTokens("John"))
	assert.True(t, ctx.Now().Equal(time.Date(2024, 9, 12, 21, 14, 15, 0, time.UTC)))

	other, err := spec.Build(nil)
	require.NoError(t, err)
	assert.Equal(t, ctx.Rand().IntN(1_000_000), other.Rand().IntN(1_000_000))
	assert.Nil(t, other.Tokenizer)
}

func TestContextSpec_BuildNormalizesHistoryRoles(t *testing.T) {
	t.Parallel()

	spec := ContextSpec{History: []HistoryEntry{{Name: "Ann", Role: "User", Content: "hi"}}}
	ctx, err := spec.Build(nil)
	require.NoError(t, err)
	assert.Equal(t, RoleUser, ctx.History[0].Role)
	assert.Equal(t, Role("User"), spec.History[0].Role, "the spec is left untouched")
}

func TestContextSpec_BuildErrors(t *testing.T) {
	t.Parallel()

	_, err := (&ContextSpec{Now: "yesterday"}).Build(nil)
	assert.Error(t, err)

	_, err = (&ContextSpec{History: []HistoryEntry{{Role: "narrator"}}}).Build(nil)
	assert.Error(t, err)

	ctx, err := (&ContextSpec{}).Build(nil)
	require.NoError(t, err)
	assert.Nil(t, ctx.Clock)
	assert.Nil(t, ctx.Random)
}
