package template

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aescanero/dago-node-prompt/internal/prompt"
)

// FilterFunc transforms the piped value. args are already evaluated and
// their count is within the filter's declared arity.
type FilterFunc func(ctx *prompt.Context, in any, args []any) (any, error)

// Filter is a named filter with its accepted argument count
type Filter struct {
	MinArgs int
	MaxArgs int
	Fn      FilterFunc
	// Requires, when set, runs before Fn even for undefined input
	Requires func(ctx *prompt.Context) error
}

func (f Filter) arity() string {
	switch {
	case f.MinArgs == f.MaxArgs && f.MaxArgs == 0:
		return "no arguments"
	case f.MinArgs == f.MaxArgs:
		return fmt.Sprintf("%d argument(s)", f.MinArgs)
	default:
		return fmt.Sprintf("%d to %d arguments", f.MinArgs, f.MaxArgs)
	}
}

// MacroFunc produces a value with no receiver, e.g. now
type MacroFunc func(ctx *prompt.Context) (any, error)

// DefaultFilters returns a fresh copy of the built-in filters
func DefaultFilters() map[string]Filter {
	return map[string]Filter{
		"date_from":     {MinArgs: 1, MaxArgs: 2, Fn: dateFrom},
		"date_from_now": {MinArgs: 0, MaxArgs: 1, Fn: dateFromNow},
		"date_to":       {MinArgs: 1, MaxArgs: 2, Fn: dateTo},
		"date_to_now":   {MinArgs: 0, MaxArgs: 1, Fn: dateToNow},
		"random":        {Fn: randomChoice},
		"roll":          {Fn: roll},
		"token_size":    {Fn: tokenSize, Requires: requireTokenizer},
	}
}

// DefaultMacros returns a fresh copy of the built-in macros
func DefaultMacros() map[string]MacroFunc {
	return map[string]MacroFunc{
		"now": func(ctx *prompt.Context) (any, error) {
			return formatISO(ctx.Now()), nil
		},
	}
}

func dateFrom(_ *prompt.Context, in any, args []any) (any, error) {
	return relative(in, args[0], args[1:], false)
}

func dateFromNow(ctx *prompt.Context, in any, args []any) (any, error) {
	return relative(in, ctx.Now(), args, false)
}

func dateTo(_ *prompt.Context, in any, args []any) (any, error) {
	return relative(in, args[0], args[1:], true)
}

func dateToNow(ctx *prompt.Context, in any, args []any) (any, error) {
	return relative(in, ctx.Now(), args, true)
}

func relative(in, compare any, rest []any, forward bool) (any, error) {
	date, err := parseDate(in)
	if err != nil {
		return nil, err
	}
	ref, err := parseDate(compare)
	if err != nil {
		return nil, fmt.Errorf("compare date: %w", err)
	}
	suppress := false
	if len(rest) > 0 {
		b, ok := toBool(rest[0])
		if !ok {
			return nil, fmt.Errorf("suppress suffix must be a boolean, got %T", rest[0])
		}
		suppress = b
	}
	return relativeTime(date, ref, forward, suppress), nil
}

func randomChoice(ctx *prompt.Context, in any, _ []any) (any, error) {
	items, ok := asList(in)
	if !ok {
		return nil, fmt.Errorf("expects a list, got %T", in)
	}
	if len(items) == 0 {
		return Undefined, nil
	}
	return items[ctx.Rand().IntN(len(items))], nil
}

// maxDice bounds a roll so a template cannot stall the renderer
const maxDice = 1000

func roll(ctx *prompt.Context, in any, _ []any) (any, error) {
	count, sides, err := parseDice(in)
	if err != nil {
		return nil, err
	}
	rng := ctx.Rand()
	var total int64
	for range count {
		total += int64(rng.IntN(sides)) + 1
	}
	return total, nil
}

// parseDice accepts "NdM", "dM" or a bare number of sides
func parseDice(in any) (count, sides int, err error) {
	if n, ok := toInt(in); ok {
		count, sides = 1, int(n)
	} else {
		s, ok := in.(string)
		if !ok {
			return 0, 0, fmt.Errorf("expects a dice expression like \"2d6\", got %T", in)
		}
		s = strings.ToLower(strings.TrimSpace(s))
		c, m, found := strings.Cut(s, "d")
		if !found {
			c, m = "1", s
		}
		if c == "" {
			c = "1"
		}
		if count, err = strconv.Atoi(c); err != nil {
			return 0, 0, fmt.Errorf("invalid dice count in %q", s)
		}
		if sides, err = strconv.Atoi(m); err != nil {
			return 0, 0, fmt.Errorf("invalid dice sides in %q", s)
		}
	}
	if count < 1 || count > maxDice {
		return 0, 0, fmt.Errorf("dice count must be between 1 and %d, got %d", maxDice, count)
	}
	if sides < 1 {
		return 0, 0, fmt.Errorf("dice sides must be positive, got %d", sides)
	}
	return count, sides, nil
}

func requireTokenizer(ctx *prompt.Context) error {
	if ctx == nil || ctx.Tokenizer == nil {
		return ErrNoTokenizer
	}
	return nil
}

func tokenSize(ctx *prompt.Context, in any, _ []any) (any, error) {
	if err := requireTokenizer(ctx); err != nil {
		return nil, err
	}
	return int64(ctx.Tokenizer.CountTokens(Stringify(in))), nil
}
