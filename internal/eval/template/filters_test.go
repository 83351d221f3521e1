package template

import (
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/aescanero/dago-node-prompt/internal/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilters_DateFromAndTo(t *testing.T) {
	t.Parallel()
	engine := NewEngine()

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{"date_from earlier date", `{{ "1999-01-01" | date_from("2000-01-01") }}`, "a year ago"},
		{"date_from suppressed", `{{ "1999-01-01" | date_from("2000-01-01", true) }}`, "a year"},
		{"date_from explicit suffix", `{{ "1999-01-01" | date_from("2000-01-01", false) }}`, "a year ago"},
		{"date_to earlier date", `{{ "1999-01-01" | date_to("2000-01-01") }}`, "in a year"},
		{"date_to suppressed", `{{ "1999-01-01" | date_to("2000-01-01", true) }}`, "a year"},
		{"date_from later date", `{{ "2001-01-01" | date_from("2000-01-01") }}`, "in a year"},
		{"multiple years", `{{ "1990-06-01" | date_from("2000-06-01") }}`, "10 years ago"},
		{"months", `{{ "2024-01-15" | date_from("2024-04-15") }}`, "3 months ago"},
		{"days with time", `{{ "2024-01-12T10:00:00Z" | date_from("2024-01-15T10:00:00Z") }}`, "3 days ago"},
		{"variable input", `{{ birthday | date_from("2000-01-01") }}`, "a year ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.Render(tt.template, newContext(map[string]any{"birthday": "1999-01-01"}), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilters_DateRelativeToNow(t *testing.T) {
	t.Parallel()
	engine := NewEngine()
	ctx := &prompt.Context{
		Clock: prompt.FixedClock(time.Date(2024, 9, 12, 21, 14, 15, 0, time.UTC)),
		Variables: map[string]any{
			"posted":   time.Date(2024, 9, 12, 19, 14, 15, 0, time.UTC),
			"deadline": "2024-09-12T21:19:15Z",
		},
	}

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{"from now past", `{{ posted | date_from_now }}`, "2 hours ago"},
		{"from now suppressed", `{{ posted | date_from_now(true) }}`, "2 hours"},
		{"from now future", `{{ deadline | date_from_now }}`, "in 5 minutes"},
		{"to now past", `{{ posted | date_to_now }}`, "in 2 hours"},
		{"to now future", `{{ deadline | date_to_now }}`, "5 minutes ago"},
		{"now against itself", `{{ now | date_from_now }}`, "a few seconds ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.Render(tt.template, ctx, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilters_Random(t *testing.T) {
	t.Parallel()
	engine := NewEngine()
	ctx := &prompt.Context{
		Variables: map[string]any{"options": []string{"a", "b", "c", "d"}},
		Random:    prompt.NewSeededRandom(7),
	}

	const trials = 200
	counts := map[string]int{}
	for range trials {
		got, err := engine.Render(`{{ options | random }}`, ctx, nil)
		require.NoError(t, err)
		require.Contains(t, []string{"a", "b", "c", "d"}, got)
		counts[got]++
	}

	// Each option should land near 25% of the draws.
	for _, option := range []string{"a", "b", "c", "d"} {
		freq := float64(counts[option]) / trials
		assert.InDelta(t, 0.25, freq, 0.15, "option %q drawn %d times", option, counts[option])
	}
}

func TestFilters_RandomLiteralAndEmpty(t *testing.T) {
	t.Parallel()
	engine := NewEngine()
	ctx := &prompt.Context{Variables: map[string]any{"empty": []any{}}}

	got, err := engine.Render(`{{ ["only"] | random }}`, ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "only", got)

	got, err = engine.Render(`[{{ empty | random }}]`, ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", got)
}

func TestFilters_Roll(t *testing.T) {
	t.Parallel()
	engine := NewEngine()
	ctx := &prompt.Context{}

	seen := map[string]bool{}
	for range 200 {
		got, err := engine.Render(`{{ "2d4" | roll }}`, ctx, nil)
		require.NoError(t, err)
		require.Contains(t, []string{"2", "3", "4", "5", "6", "7", "8"}, got)
		seen[got] = true
	}
	assert.Greater(t, len(seen), 1, "roll should not always return the same total")

	tests := []struct {
		name     string
		template string
		min, max int64
	}{
		{"single die shorthand", `{{ "d6" | roll }}`, 1, 6},
		{"bare sides", `{{ 20 | roll }}`, 1, 20},
		{"upper case", `{{ "3D6" | roll }}`, 3, 18},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for range 50 {
				out, err := engine.Render(tt.template, ctx, nil)
				require.NoError(t, err)
				v, err := strconv.ParseInt(out, 10, 64)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, v, tt.min)
				assert.LessOrEqual(t, v, tt.max)
			}
		})
	}
}

func TestFilters_RollSeededIsReproducible(t *testing.T) {
	t.Parallel()
	engine := NewEngine()

	draw := func() []string {
		ctx := &prompt.Context{Random: prompt.NewSeededRandom(99)}
		var out []string
		for range 10 {
			got, err := engine.Render(`{{ "3d6" | roll }}`, ctx, nil)
			require.NoError(t, err)
			out = append(out, got)
		}
		return out
	}
	assert.Equal(t, draw(), draw())
}

func TestFilters_RollRejectsBadDice(t *testing.T) {
	t.Parallel()

	for _, in := range []any{"0d6", "2d0", "abc", "1001d6", true} {
		_, _, err := parseDice(in)
		assert.Error(t, err, "input %v", in)
	}
}

func TestFilters_TokenSize(t *testing.T) {
	t.Parallel()
	engine := NewEngine()
	words := prompt.TokenizerFunc(func(text string) int {
		return len(strings.Fields(text))
	})

	t.Run("counts with the context tokenizer", func(t *testing.T) {
		ctx := &prompt.Context{
			Variables: map[string]any{"bio": "John is a cool guy"},
			Tokenizer: words,
		}
		got, err := engine.Render(`{{ bio | token_size }}`, ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, "5", got)
	})

	t.Run("fails without a tokenizer", func(t *testing.T) {
		ctx := &prompt.Context{Variables: map[string]any{"bio": "John"}}
		_, err := engine.Render(`{{ bio | token_size }}`, ctx, nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNoTokenizer))

		var evalErr *EvaluationError
		require.ErrorAs(t, err, &evalErr)
		assert.Contains(t, evalErr.Error(), "token_size")
	})

	t.Run("undefined input still needs a tokenizer", func(t *testing.T) {
		_, err := engine.Render(`{{ missing | token_size }}`, &prompt.Context{}, nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNoTokenizer))
	})

	t.Run("undefined input with a tokenizer renders empty", func(t *testing.T) {
		got, err := engine.Render(`[{{ missing | token_size }}]`, &prompt.Context{Tokenizer: words}, nil)
		require.NoError(t, err)
		assert.Equal(t, "[]", got)
	})
}
