// Package tokenizer counts tokens with a tiktoken BPE encoding for the
// token_size filter.
package tokenizer

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Tiktoken counts tokens with a named BPE encoding
type Tiktoken struct {
	encoding string
	enc      *tiktoken.Tiktoken
}

// New loads the encoding, e.g. cl100k_base or o200k_base
func New(encoding string) (*Tiktoken, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load encoding %s: %w", encoding, err)
	}
	return &Tiktoken{encoding: encoding, enc: enc}, nil
}

// ForModel loads the encoding registered for a model name
func ForModel(model string) (*Tiktoken, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, fmt.Errorf("no encoding for model %s: %w", model, err)
	}
	return &Tiktoken{encoding: model, enc: enc}, nil
}

// CountTokens implements prompt.Tokenizer. Special tokens are counted as
// plain text.
func (t *Tiktoken) CountTokens(text string) int {
	return len(t.enc.EncodeOrdinary(text))
}

// Encoding returns the name the tokenizer was loaded with
func (t *Tiktoken) Encoding() string {
	return t.encoding
}

// Whitespace approximates one token per whitespace separated word. It needs
// no BPE data and is used when no encoding is configured.
type Whitespace struct{}

// CountTokens implements prompt.Tokenizer
func (Whitespace) CountTokens(text string) int {
	return len(strings.Fields(text))
}
