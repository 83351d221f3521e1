// Package assemble renders an ordered list of blocks into a complete prompt.
//
// Two output modes are supported:
//   - messages: the messages of every block, concatenated in block order
//   - prompt: the prompt of every block that produced text, joined by "\n"
//
// Example:
//
//	assembler := assemble.NewAssembler(block.NewRenderer(nil, logger), logger)
//	result, err := assembler.Assemble(assemble.ModeMessages, blocks, ctx)
package assemble
