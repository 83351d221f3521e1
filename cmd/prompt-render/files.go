package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aescanero/dago-node-prompt/internal/block"
	"github.com/aescanero/dago-node-prompt/internal/prompt"
	"gopkg.in/yaml.v3"
)

// blockFile is the on-disk layout of a block definition file
type blockFile struct {
	Blocks []block.Block `json:"blocks" yaml:"blocks"`
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// decodeFile decodes JSON for .json files and YAML otherwise
func decodeFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	if isJSON(path) {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		return nil
	}

	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// readBlocks decodes a block file and validates every block. Blocks that
// fail validation are left out of the result and reported in invalid.
func readBlocks(path string) (blocks []block.Block, invalid []error, err error) {
	if isJSON(path) {
		// JSON blocks validate while decoding, so decode them one by one
		var f struct {
			Blocks []json.RawMessage `json:"blocks"`
		}
		if err := decodeFile(path, &f); err != nil {
			return nil, nil, err
		}
		for i, raw := range f.Blocks {
			var b block.Block
			if err := json.Unmarshal(raw, &b); err != nil {
				invalid = append(invalid, fmt.Errorf("block %d: %w", i, err))
				continue
			}
			blocks = append(blocks, b)
		}
	} else {
		var f blockFile
		if err := decodeFile(path, &f); err != nil {
			return nil, nil, err
		}
		for i := range f.Blocks {
			if err := f.Blocks[i].Validate(); err != nil {
				invalid = append(invalid, fmt.Errorf("block %d: %w", i, err))
				continue
			}
			blocks = append(blocks, f.Blocks[i])
		}
	}

	if len(blocks) == 0 && len(invalid) == 0 {
		return nil, nil, fmt.Errorf("%s defines no blocks", path)
	}
	return blocks, invalid, nil
}

// loadBlocks reads a block file and fails if any block is invalid
func loadBlocks(path string) ([]block.Block, error) {
	blocks, invalid, err := readBlocks(path)
	if err != nil {
		return nil, err
	}
	if len(invalid) > 0 {
		return nil, errors.Join(invalid...)
	}
	return blocks, nil
}

// loadContext reads a context file; an empty path yields an empty context
func loadContext(path string) (*prompt.ContextSpec, error) {
	spec := &prompt.ContextSpec{}
	if path == "" {
		return spec, nil
	}
	if err := decodeFile(path, spec); err != nil {
		return nil, err
	}
	return spec, nil
}
