package block

import "fmt"

// ConfigurationError reports a block whose variant settings are invalid.
// It is raised when a block is built or decoded, never while rendering.
type ConfigurationError struct {
	Block string
	Field string
	Msg   string
}

func (e *ConfigurationError) Error() string {
	if e.Block == "" {
		return fmt.Sprintf("invalid block: %s: %s", e.Field, e.Msg)
	}
	return fmt.Sprintf("invalid block %q: %s: %s", e.Block, e.Field, e.Msg)
}

func configErrorf(b *Block, field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Block: b.Name, Field: field, Msg: fmt.Sprintf(format, args...)}
}
