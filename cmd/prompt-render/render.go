package main

import (
	"encoding/json"
	"fmt"

	"github.com/aescanero/dago-node-prompt/internal/assemble"
	"github.com/aescanero/dago-node-prompt/internal/block"
	"github.com/aescanero/dago-node-prompt/internal/prompt"
	"github.com/aescanero/dago-node-prompt/internal/tokenizer"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	renderBlocksPath  string
	renderContextPath string
	renderMode        string
	renderNow         string
	renderSeed        int64
	renderEncoding    string
	renderModel       string
	renderJSON        bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render blocks against a context",
	RunE: func(cmd *cobra.Command, args []string) error {
		if renderBlocksPath == "" {
			return fmt.Errorf("--blocks is required")
		}

		mode, err := assemble.ParseMode(renderMode)
		if err != nil {
			return err
		}

		blocks, err := loadBlocks(renderBlocksPath)
		if err != nil {
			return err
		}

		spec, err := loadContext(renderContextPath)
		if err != nil {
			return err
		}
		if renderNow != "" {
			spec.Now = renderNow
		}
		if cmd.Flags().Changed("seed") {
			seed := uint64(renderSeed)
			spec.Seed = &seed
		}

		ctx, err := spec.Build(newTokenizer(renderEncoding, renderModel))
		if err != nil {
			return err
		}

		assembler := assemble.NewAssembler(block.NewRenderer(nil, logger), logger)
		result, err := assembler.Assemble(mode, blocks, ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if renderJSON {
			data, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("encode result: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		if mode == assemble.ModePrompt {
			fmt.Fprintln(out, result.Prompt)
			return nil
		}
		for _, m := range result.Messages {
			fmt.Fprintf(out, "[%s]\n%s\n\n", m.Role, m.Content)
		}
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVarP(&renderBlocksPath, "blocks", "b", "", "Block definition file (YAML or JSON)")
	renderCmd.Flags().StringVarP(&renderContextPath, "context", "c", "", "Context file (YAML or JSON)")
	renderCmd.Flags().StringVarP(&renderMode, "mode", "m", "messages", "Output mode: messages, prompt")
	renderCmd.Flags().StringVar(&renderNow, "now", "", "Pin the clock (RFC 3339)")
	renderCmd.Flags().Int64Var(&renderSeed, "seed", 0, "Seed for random and roll")
	renderCmd.Flags().StringVar(&renderEncoding, "encoding", "cl100k_base", "Tokenizer encoding for token_size, empty counts words")
	renderCmd.Flags().StringVar(&renderModel, "model", "", "Pick the tokenizer encoding for a model name, overrides --encoding")
	renderCmd.Flags().BoolVar(&renderJSON, "json", false, "Print the result as JSON")
}

// newTokenizer loads a BPE encoding by model or encoding name, falling back
// to word counts
func newTokenizer(encoding, model string) prompt.Tokenizer {
	var (
		tok *tokenizer.Tiktoken
		err error
	)
	switch {
	case model != "":
		tok, err = tokenizer.ForModel(model)
	case encoding != "":
		tok, err = tokenizer.New(encoding)
	default:
		return tokenizer.Whitespace{}
	}
	if err != nil {
		logger.Warn("tokenizer unavailable, counting words instead",
			zap.String("encoding", encoding),
			zap.String("model", model),
			zap.Error(err),
		)
		return tokenizer.Whitespace{}
	}
	return tok
}
