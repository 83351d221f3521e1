package block

import (
	"encoding/json"
	"fmt"
)

// UnmarshalJSON decodes and validates a block
func (b *Block) UnmarshalJSON(data []byte) error {
	type plain Block
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("failed to decode block: %w", err)
	}

	out := Block(decoded)
	if err := out.Validate(); err != nil {
		return err
	}

	*b = out
	return nil
}

// DecodeList decodes a JSON array of blocks
func DecodeList(data []byte) ([]Block, error) {
	var blocks []Block
	if err := json.Unmarshal(data, &blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}
