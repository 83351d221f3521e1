package main

import (
	"errors"
	"fmt"

	"github.com/aescanero/dago-node-prompt/internal/eval/template"
	"github.com/spf13/cobra"
)

var validateBlocksPath string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check block definitions and their templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		if validateBlocksPath == "" {
			return fmt.Errorf("--blocks is required")
		}

		blocks, errs, err := readBlocks(validateBlocksPath)
		if err != nil {
			return err
		}

		engine := template.NewEngine()
		for _, b := range blocks {
			if err := engine.ValidateTemplate(b.Template); err != nil {
				errs = append(errs, fmt.Errorf("block %q: %w", b.Name, err))
			}
		}
		if len(errs) > 0 {
			return errors.Join(errs...)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%d block(s) OK\n", len(blocks))
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVarP(&validateBlocksPath, "blocks", "b", "", "Block definition file (YAML or JSON)")
}
