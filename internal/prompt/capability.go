package prompt

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Tokenizer counts tokens for the token_size filter
type Tokenizer interface {
	CountTokens(text string) int
}

// TokenizerFunc adapts a function to Tokenizer
type TokenizerFunc func(text string) int

// CountTokens implements Tokenizer
func (f TokenizerFunc) CountTokens(text string) int {
	return f(text)
}

// Clock supplies the current instant to the now macro and *_now filters
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the wall clock
var SystemClock Clock = systemClock{}

// FixedClock always reports t
type FixedClock time.Time

// Now implements Clock
func (c FixedClock) Now() time.Time {
	return time.Time(c)
}

// Random is the source used by the random and roll filters.
// IntN returns a uniform value in [0, n).
type Random interface {
	IntN(n int) int
}

type globalRandom struct{}

func (globalRandom) IntN(n int) int { return rand.IntN(n) }

// GlobalRandom draws from the runtime's shared generator
var GlobalRandom Random = globalRandom{}

// seededRandom guards a seeded generator so a Context carrying it can still
// be shared between goroutines.
type seededRandom struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededRandom returns a reproducible Random
func NewSeededRandom(seed uint64) Random {
	return &seededRandom{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *seededRandom) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}
