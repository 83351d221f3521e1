package prompt

import (
	"fmt"

	"github.com/google/uuid"
)

// BlockID identifies a block for the lifetime of its definition. Toggle
// state is keyed by it, so it must never be reassigned.
type BlockID string

// NewBlockID returns a fresh random identifier
func NewBlockID() BlockID {
	return BlockID(uuid.NewString())
}

// ParseBlockID validates an identifier coming from storage or the wire
func ParseBlockID(s string) (BlockID, error) {
	if s == "" {
		return "", fmt.Errorf("block id is empty")
	}
	return BlockID(s), nil
}

func (id BlockID) String() string {
	return string(id)
}
